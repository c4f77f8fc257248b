package service

import (
	"context"
	"errors"
	"testing"

	"github.com/naleksandarn/fermented-sausages/internal/curing/repository"
	"github.com/naleksandarn/fermented-sausages/internal/curing/testutil"
	"gorm.io/gorm"
)

func setupTrolleyTest(t *testing.T) (*gorm.DB, *TrolleyService) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	return db, NewTrolleyService(db, repos.Trolley)
}

func TestAddTrolleyNumbering(t *testing.T) {
	db, svc := setupTrolleyTest(t)
	ctx := context.Background()

	testutil.SeedProduct(t, db, "prod-tr-001", "KUL", "Kulen")
	testutil.SeedBatch(t, db, "batch-tr-001", "prod-tr-001", "KUL-2026-02", "L-700")
	testutil.SeedTrolley(t, db, "trol-tr-001", "batch-tr-001", 1)
	testutil.SeedTrolley(t, db, "trol-tr-002", "batch-tr-001", 2)

	added, err := svc.Add(ctx, &AddTrolleyRequest{BatchID: "batch-tr-001"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if added.TrolleyNumber != 3 {
		t.Fatalf("expected number 3, got %d", added.TrolleyNumber)
	}
	if added.TareWeight != 40 || added.StickCount != 0 {
		t.Errorf("expected defaults 40/0, got %v/%d", added.TareWeight, added.StickCount)
	}

	// Removing the highest-numbered trolley retires its number.
	if err := svc.Remove(ctx, added.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	next, err := svc.Add(ctx, &AddTrolleyRequest{BatchID: "batch-tr-001"})
	if err != nil {
		t.Fatalf("re-add: %v", err)
	}
	if next.TrolleyNumber != 3 {
		t.Fatalf("expected max+1 = 3 after removing 3, got %d", next.TrolleyNumber)
	}
}

func TestAddTrolleyExplicitConfig(t *testing.T) {
	db, svc := setupTrolleyTest(t)
	ctx := context.Background()

	testutil.SeedProduct(t, db, "prod-tr-002", "SRM", "Sremska")
	testutil.SeedBatch(t, db, "batch-tr-002", "prod-tr-002", "SRM-2026-02", "L-800")

	added, err := svc.Add(ctx, &AddTrolleyRequest{
		BatchID:    "batch-tr-002",
		Tare:       f64(38.5),
		StickCount: iptr(14),
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if added.TrolleyNumber != 1 {
		t.Errorf("first trolley should be number 1, got %d", added.TrolleyNumber)
	}
	if added.TareWeight != 38.5 || added.StickCount != 14 {
		t.Errorf("explicit config lost: tare=%v sticks=%d", added.TareWeight, added.StickCount)
	}
}

func TestAddTrolleyUnknownBatch(t *testing.T) {
	_, svc := setupTrolleyTest(t)

	_, err := svc.Add(context.Background(), &AddTrolleyRequest{BatchID: "no-such-batch"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPackagingLookup(t *testing.T) {
	db, svc := setupTrolleyTest(t)
	ctx := context.Background()

	testutil.SeedProduct(t, db, "prod-tr-003", "CAJ", "Cajna")
	testutil.SeedBatch(t, db, "batch-tr-003", "prod-tr-003", "CAJ-2026-02", "L-900")
	testutil.SeedTrolley(t, db, "trol-tr-010", "batch-tr-003", 4)

	row, err := svc.PackagingLookup(ctx, "L-900", 4)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if row.TrolleyID != "trol-tr-010" {
		t.Errorf("expected trol-tr-010, got %s", row.TrolleyID)
	}

	if _, err := svc.PackagingLookup(ctx, "L-900", 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown trolley number, got %v", err)
	}
}
