package service

import (
	"context"
	"testing"
	"time"

	"github.com/naleksandarn/fermented-sausages/internal/curing/entity"
	"github.com/naleksandarn/fermented-sausages/internal/curing/repository"
	"github.com/naleksandarn/fermented-sausages/internal/curing/testutil"
	"gorm.io/gorm"
)

func setupAnalyticsTest(t *testing.T) (*gorm.DB, *AnalyticsService, *BatchService) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	return db, NewAnalyticsService(repos.Analytics),
		NewBatchService(db, repos.Batch, repos.Product, repos.Trolley)
}

func seedMeasuredBatch(t *testing.T, db *gorm.DB) {
	t.Helper()
	testutil.SeedProduct(t, db, "prod-an-001", "KUL", "Kulen")
	testutil.SeedBatch(t, db, "batch-an-001", "prod-an-001", "KUL-2026-07", "L-970")
	tr := testutil.SeedTrolley(t, db, "trol-an-001", "batch-an-001", 1)
	tr.StickCount = 10
	db.Save(tr)
	db.Create(&entity.Measurement{
		ID: "meas-an-001", TrolleyID: tr.ID, Phase: entity.PhaseProduction,
		GrossWeight: f64(120), MeasuredAt: time.Now().Add(-48 * time.Hour),
	})
}

func TestAnalyticsSummaryActiveFloor(t *testing.T) {
	db, svc, _ := setupAnalyticsTest(t)
	seedMeasuredBatch(t, db)

	summary, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	if summary.KPI.TotalBatches != 1 || summary.KPI.TotalTrolleys != 1 {
		t.Errorf("unexpected KPI: %+v", summary.KPI)
	}
	if summary.KPI.TotalWeight != 120 {
		t.Errorf("expected latest gross 120, got %v", summary.KPI.TotalWeight)
	}

	if len(summary.ActiveBatches) != 1 {
		t.Fatalf("expected 1 active batch, got %d", len(summary.ActiveBatches))
	}
	// net = 120 - 40 tare - 10 sticks * 0.4
	if got := summary.ActiveBatches[0].TotalNetStart; got != 76 {
		t.Errorf("expected net start 76, got %v", got)
	}

	// No batch closed yet, so the history is empty.
	if len(summary.BatchHistory) != 0 {
		t.Errorf("expected empty history, got %d rows", len(summary.BatchHistory))
	}
}

func TestAnalyticsClosedBatchHistory(t *testing.T) {
	db, svc, batchSvc := setupAnalyticsTest(t)
	seedMeasuredBatch(t, db)

	// Weigh the trolley out; the batch closes and moves to the history.
	if _, err := batchSvc.Pack(context.Background(), &PackTrolleyRequest{TrolleyID: "trol-an-001", GrossWeight: 96}); err != nil {
		t.Fatalf("pack: %v", err)
	}

	summary, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if len(summary.ActiveBatches) != 0 {
		t.Errorf("expected no active batches, got %d", len(summary.ActiveBatches))
	}
	if len(summary.BatchHistory) != 1 {
		t.Fatalf("expected 1 history row, got %d", len(summary.BatchHistory))
	}
	h := summary.BatchHistory[0]
	if h.TotalNetIn != 76 {
		t.Errorf("expected net in 76, got %v", h.TotalNetIn)
	}
	// net out = 96 - 40 - 10 * 0.4
	if h.TotalNetOut != 52 {
		t.Errorf("expected net out 52, got %v", h.TotalNetOut)
	}
}

func TestAnalyticsExportWorkbook(t *testing.T) {
	db, svc, _ := setupAnalyticsTest(t)
	seedMeasuredBatch(t, db)

	f, filename, err := svc.Export(context.Background())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	defer f.Close()

	if filename == "" {
		t.Error("expected a filename")
	}
	got, err := f.GetCellValue("Active Batches", "A2")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if got != "KUL-2026-07" {
		t.Errorf("expected batch code in first data row, got %q", got)
	}
}
