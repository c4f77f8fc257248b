package handler

import (
	"net/http"
	"testing"

	"github.com/naleksandarn/fermented-sausages/internal/curing/entity"
	"github.com/naleksandarn/fermented-sausages/internal/curing/repository"
	"github.com/naleksandarn/fermented-sausages/internal/curing/service"
	"github.com/naleksandarn/fermented-sausages/internal/curing/testutil"
)

func setupBatchHandlerTest(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	router := testutil.SetupRouter()

	repos := repository.NewRepositories(db)
	recorder := service.NewRecorderService(db, repos.Measurement)
	batchSvc := service.NewBatchService(db, repos.Batch, repos.Product, repos.Trolley)
	trolleySvc := service.NewTrolleyService(db, repos.Trolley)

	batchHandler := NewBatchHandler(batchSvc)
	measurementHandler := NewMeasurementHandler(recorder)
	packagingHandler := NewPackagingHandler(batchSvc, trolleySvc)

	api := testutil.AuthGroup(router, "/api/v1")
	api.GET("/batches", batchHandler.Dashboard)
	api.POST("/batches", batchHandler.Create)
	api.GET("/batches/:id/trolleys", batchHandler.TrolleyDetails)
	api.POST("/measurements", measurementHandler.Record)
	api.GET("/packaging/lookup", packagingHandler.Lookup)
	api.POST("/packaging/pack", packagingHandler.Pack)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

func TestBatchEndpointsRequireAuth(t *testing.T) {
	env := setupBatchHandlerTest(t)

	w := testutil.DoRequest(env.Router, "GET", "/api/v1/batches", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}
}

func TestCreateBatchEndpoint(t *testing.T) {
	env := setupBatchHandlerTest(t)
	token := testutil.DefaultTestToken()
	testutil.SeedProduct(t, env.DB, "prod-h-001", "KUL", "Kulen")

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/batches", map[string]interface{}{
		"productCode":    "KUL",
		"batchCode":      "KUL-2026-10",
		"lotNumber":      "L-011",
		"chamber":        "K1",
		"productionDate": "2026-08-28",
		"trolleyCount":   3,
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["batch_code"] != "KUL-2026-10" {
		t.Errorf("unexpected batch code %v", data["batch_code"])
	}

	// Trolley count is enforced by binding.
	w2 := testutil.DoRequest(env.Router, "POST", "/api/v1/batches", map[string]interface{}{
		"productCode":    "KUL",
		"batchCode":      "KUL-2026-11",
		"lotNumber":      "L-012",
		"productionDate": "2026-08-28",
		"trolleyCount":   0,
	}, token)
	if w2.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for zero trolleys, got %d", w2.Code)
	}
}

func TestRecordAndPackFlow(t *testing.T) {
	env := setupBatchHandlerTest(t)
	token := testutil.DefaultTestToken()

	testutil.SeedProduct(t, env.DB, "prod-h-002", "SRM", "Sremska")
	testutil.SeedBatch(t, env.DB, "batch-h-001", "prod-h-002", "SRM-2026-10", "L-020")
	testutil.SeedTrolley(t, env.DB, "trol-h-001", "batch-h-001", 1)

	// Baseline from the weighing station.
	w := testutil.DoRequest(env.Router, "POST", "/api/v1/measurements", map[string]interface{}{
		"trolleyId":        "trol-h-001",
		"weightProduction": 118.0,
		"stickCount":       8,
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("record: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	// Packaging station resolves the trolley by lot and number.
	w = testutil.DoRequest(env.Router, "GET", "/api/v1/packaging/lookup?lot=L-020&trolley=1", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("lookup: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["trolley_id"] != "trol-h-001" {
		t.Fatalf("lookup resolved wrong trolley: %v", data["trolley_id"])
	}

	// Weigh out; it was the only trolley, so the batch closes.
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/packaging/pack", map[string]interface{}{
		"trolleyId":   "trol-h-001",
		"weight": 95.0,
	}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("pack: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp = testutil.ParseResponse(w)
	data = resp["data"].(map[string]interface{})
	if data["batchClosed"] != true {
		t.Errorf("expected batchClosed=true, got %v", data["batchClosed"])
	}

	var batch entity.Batch
	env.DB.First(&batch, "id = ?", "batch-h-001")
	if batch.IsActive {
		t.Error("batch still active after packing its last trolley")
	}

	// A packed trolley is no longer resolvable at the packaging station.
	w = testutil.DoRequest(env.Router, "GET", "/api/v1/packaging/lookup?lot=L-020&trolley=1", nil, token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after packing, got %d", w.Code)
	}
}
