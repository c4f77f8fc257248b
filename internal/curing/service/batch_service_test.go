package service

import (
	"context"
	"errors"
	"testing"

	"github.com/naleksandarn/fermented-sausages/internal/curing/entity"
	"github.com/naleksandarn/fermented-sausages/internal/curing/repository"
	"github.com/naleksandarn/fermented-sausages/internal/curing/testutil"
	"gorm.io/gorm"
)

func setupBatchTest(t *testing.T) (*gorm.DB, *BatchService) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	svc := NewBatchService(db, repos.Batch, repos.Product, repos.Trolley)
	return db, svc
}

func TestCreateBatchWithTrolleys(t *testing.T) {
	db, svc := setupBatchTest(t)
	ctx := context.Background()

	product := testutil.SeedProduct(t, db, "prod-bat-001", "SRM", "Sremska")
	product.DefaultTrolleyWeight = 42
	product.DefaultStickCount = 8
	db.Save(product)

	batch, err := svc.Create(ctx, &CreateBatchRequest{
		ProductCode:    product.Code,
		BatchCode:      "SRM-2026-03",
		LotNumber:      "L-200",
		Chamber:        "K2",
		ProductionDate: "2026-08-20",
		TrolleyCount:   5,
	})
	if err != nil {
		t.Fatalf("create batch: %v", err)
	}
	if !batch.IsActive {
		t.Error("new batch must be active")
	}

	var trolleys []entity.Trolley
	if err := db.Order("trolley_number").Find(&trolleys, "batch_id = ?", batch.ID).Error; err != nil {
		t.Fatalf("load trolleys: %v", err)
	}
	if len(trolleys) != 5 {
		t.Fatalf("expected 5 trolleys, got %d", len(trolleys))
	}
	for i, tr := range trolleys {
		if tr.TrolleyNumber != i+1 {
			t.Errorf("trolley %d numbered %d", i, tr.TrolleyNumber)
		}
		if tr.TareWeight != 42 || tr.StickCount != 8 {
			t.Errorf("trolley %d missing product defaults: tare=%v sticks=%d", i, tr.TareWeight, tr.StickCount)
		}
	}

	var notifs int64
	db.Model(&entity.Notification{}).Count(&notifs)
	if notifs != 2 {
		t.Errorf("expected notifications for admin and ceo, got %d", notifs)
	}
}

func TestCreateBatchUnknownProduct(t *testing.T) {
	db, svc := setupBatchTest(t)

	_, err := svc.Create(context.Background(), &CreateBatchRequest{
		ProductCode:    "no-such-product",
		BatchCode:      "X",
		LotNumber:      "L",
		ProductionDate: "2026-08-20",
		TrolleyCount:   2,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// Nothing may be left behind.
	var n int64
	db.Model(&entity.Batch{}).Count(&n)
	if n != 0 {
		t.Errorf("expected no batches, got %d", n)
	}
}

func TestCreateBatchBadDate(t *testing.T) {
	db, svc := setupBatchTest(t)
	testutil.SeedProduct(t, db, "prod-bat-002", "KUL", "Kulen")

	_, err := svc.Create(context.Background(), &CreateBatchRequest{
		ProductCode:    "KUL",
		BatchCode:      "X",
		LotNumber:      "L",
		ProductionDate: "20/08/2026",
		TrolleyCount:   1,
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestPackClosesBatchOnLastTrolley(t *testing.T) {
	db, svc := setupBatchTest(t)
	ctx := context.Background()

	testutil.SeedProduct(t, db, "prod-bat-003", "CAJ", "Cajna")
	testutil.SeedBatch(t, db, "batch-pack-001", "prod-bat-003", "CAJ-2026-01", "L-300")
	testutil.SeedTrolley(t, db, "trol-pack-001", "batch-pack-001", 1)
	testutil.SeedTrolley(t, db, "trol-pack-002", "batch-pack-001", 2)

	res, err := svc.Pack(ctx, &PackTrolleyRequest{TrolleyID: "trol-pack-001", GrossWeight: 95})
	if err != nil {
		t.Fatalf("pack first: %v", err)
	}
	if res.BatchClosed || res.UnpackedLeft != 1 {
		t.Fatalf("expected open batch with 1 left, got %+v", res)
	}

	res, err = svc.Pack(ctx, &PackTrolleyRequest{TrolleyID: "trol-pack-002", GrossWeight: 97})
	if err != nil {
		t.Fatalf("pack last: %v", err)
	}
	if !res.BatchClosed || res.UnpackedLeft != 0 {
		t.Fatalf("expected closed batch, got %+v", res)
	}

	var batch entity.Batch
	db.First(&batch, "id = ?", "batch-pack-001")
	if batch.IsActive {
		t.Error("batch still active after last trolley packed")
	}

	// Each packed trolley got a terminal reading.
	var terminal int64
	db.Model(&entity.Measurement{}).Where("phase = ?", entity.PhasePackaging).Count(&terminal)
	if terminal != 2 {
		t.Errorf("expected 2 terminal rows, got %d", terminal)
	}
}

func TestPackAlreadyPacked(t *testing.T) {
	db, svc := setupBatchTest(t)
	ctx := context.Background()

	testutil.SeedProduct(t, db, "prod-bat-004", "KOB", "Kobasica")
	testutil.SeedBatch(t, db, "batch-pack-002", "prod-bat-004", "KOB-2026-01", "L-400")
	testutil.SeedTrolley(t, db, "trol-pack-003", "batch-pack-002", 1)
	testutil.SeedTrolley(t, db, "trol-pack-004", "batch-pack-002", 2)

	if _, err := svc.Pack(ctx, &PackTrolleyRequest{TrolleyID: "trol-pack-003", GrossWeight: 90}); err != nil {
		t.Fatalf("pack: %v", err)
	}
	res, err := svc.Pack(ctx, &PackTrolleyRequest{TrolleyID: "trol-pack-003", GrossWeight: 91})
	if err != nil {
		t.Fatalf("repack: %v", err)
	}
	if !res.AlreadyProcessed {
		t.Error("expected AlreadyProcessed on second pack")
	}

	// The repeat attempt must not add a second terminal row.
	var terminal int64
	db.Model(&entity.Measurement{}).
		Where("trolley_id = ? AND phase = ?", "trol-pack-003", entity.PhasePackaging).
		Count(&terminal)
	if terminal != 1 {
		t.Errorf("expected 1 terminal row, got %d", terminal)
	}
}

func TestDeleteBatchCascades(t *testing.T) {
	db, svc := setupBatchTest(t)
	ctx := context.Background()

	testutil.SeedProduct(t, db, "prod-bat-005", "PAN", "Panceta")
	testutil.SeedBatch(t, db, "batch-del-001", "prod-bat-005", "PAN-2026-01", "L-500")
	trolley := testutil.SeedTrolley(t, db, "trol-del-001", "batch-del-001", 1)
	db.Create(&entity.Measurement{
		ID: "meas-del-001", TrolleyID: trolley.ID,
		Phase: entity.PhaseProduction, GrossWeight: f64(100),
		MeasuredAt: trolley.CreatedAt,
	})

	if err := svc.Delete(ctx, "batch-del-001"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var trolleys, measurements int64
	db.Model(&entity.Trolley{}).Count(&trolleys)
	db.Model(&entity.Measurement{}).Count(&measurements)
	if trolleys != 0 || measurements != 0 {
		t.Errorf("cascade incomplete: trolleys=%d measurements=%d", trolleys, measurements)
	}

	if err := svc.Delete(ctx, "batch-del-001"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestMoveBatchNotifies(t *testing.T) {
	db, svc := setupBatchTest(t)
	ctx := context.Background()

	testutil.SeedProduct(t, db, "prod-bat-006", "KUL", "Kulen")
	testutil.SeedBatch(t, db, "batch-move-001", "prod-bat-006", "KUL-2026-05", "L-600")

	if err := svc.Move(ctx, "batch-move-001", "K4"); err != nil {
		t.Fatalf("move: %v", err)
	}

	var batch entity.Batch
	db.First(&batch, "id = ?", "batch-move-001")
	if batch.CurrentChamber != "K4" {
		t.Errorf("expected chamber K4, got %s", batch.CurrentChamber)
	}

	var notifs int64
	db.Model(&entity.Notification{}).Count(&notifs)
	if notifs != 2 {
		t.Errorf("expected notifications for admin and ceo, got %d", notifs)
	}
}
