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

func f64(v float64) *float64 { return &v }
func iptr(v int) *int        { return &v }

func setupRecorderTest(t *testing.T) (*gorm.DB, *RecorderService) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	return db, NewRecorderService(db, repos.Measurement)
}

func seedTrolleyChain(t *testing.T, db *gorm.DB) *entity.Trolley {
	t.Helper()
	testutil.SeedProduct(t, db, "prod-rec-001", "KUL", "Kulen")
	testutil.SeedBatch(t, db, "batch-rec-001", "prod-rec-001", "KUL-2026-01", "L-100")
	return testutil.SeedTrolley(t, db, "trol-rec-001", "batch-rec-001", 1)
}

func countMeasurements(t *testing.T, db *gorm.DB, trolleyID string, phase entity.Phase) int64 {
	t.Helper()
	var n int64
	err := db.Model(&entity.Measurement{}).
		Where("trolley_id = ? AND phase = ?", trolleyID, phase).
		Count(&n).Error
	if err != nil {
		t.Fatalf("count measurements: %v", err)
	}
	return n
}

func TestRecordBaselineUpsert(t *testing.T) {
	db, svc := setupRecorderTest(t)
	trolley := seedTrolleyChain(t, db)
	ctx := context.Background()

	err := svc.Record(ctx, &Submission{
		TrolleyID:        trolley.ID,
		WeightProduction: f64(120),
		Pieces:           iptr(24),
	})
	if err != nil {
		t.Fatalf("first baseline: %v", err)
	}

	// A second submission must update in place, never add a second row.
	err = svc.Record(ctx, &Submission{
		TrolleyID:        trolley.ID,
		WeightProduction: f64(125),
	})
	if err != nil {
		t.Fatalf("second baseline: %v", err)
	}

	if n := countMeasurements(t, db, trolley.ID, entity.PhaseProduction); n != 1 {
		t.Fatalf("expected 1 baseline row, got %d", n)
	}

	var baseline entity.Measurement
	if err := db.First(&baseline, "trolley_id = ? AND phase = ?", trolley.ID, entity.PhaseProduction).Error; err != nil {
		t.Fatalf("load baseline: %v", err)
	}
	if baseline.GrossWeight == nil || *baseline.GrossWeight != 125 {
		t.Errorf("expected gross 125, got %v", baseline.GrossWeight)
	}
	// The re-weigh carried no piece count, so the original one survives.
	if baseline.PieceCount == nil || *baseline.PieceCount != 24 {
		t.Errorf("expected piece count 24 preserved, got %v", baseline.PieceCount)
	}
}

func TestRecordMonitoringAppend(t *testing.T) {
	db, svc := setupRecorderTest(t)
	trolley := seedTrolleyChain(t, db)
	ctx := context.Background()

	if err := svc.Record(ctx, &Submission{TrolleyID: trolley.ID, WeightProduction: f64(120)}); err != nil {
		t.Fatalf("baseline: %v", err)
	}

	for i := 0; i < 3; i++ {
		err := svc.Record(ctx, &Submission{
			TrolleyID: trolley.ID,
			Weight:    f64(110 - float64(i)),
			PH:        f64(5.2),
			Phase:     "HOLDING",
		})
		if err != nil {
			t.Fatalf("monitoring %d: %v", i, err)
		}
	}

	if n := countMeasurements(t, db, trolley.ID, "HOLDING"); n != 3 {
		t.Fatalf("expected 3 monitoring rows, got %d", n)
	}
	if n := countMeasurements(t, db, trolley.ID, entity.PhaseProduction); n != 1 {
		t.Fatalf("expected baseline untouched, got %d rows", n)
	}

	// Every reading notifies both supervising roles.
	var notifs int64
	db.Model(&entity.Notification{}).Count(&notifs)
	if notifs != 6 {
		t.Errorf("expected 6 notifications, got %d", notifs)
	}
}

func TestRecordConfigOnlyUpdate(t *testing.T) {
	db, svc := setupRecorderTest(t)
	trolley := seedTrolleyChain(t, db)
	ctx := context.Background()

	// Set both fields, then update only the tare. The stick count must
	// survive the second submission.
	if err := svc.Record(ctx, &Submission{TrolleyID: trolley.ID, StickCount: iptr(12), Tare: f64(42)}); err != nil {
		t.Fatalf("config: %v", err)
	}
	if err := svc.Record(ctx, &Submission{TrolleyID: trolley.ID, Tare: f64(45)}); err != nil {
		t.Fatalf("tare only: %v", err)
	}

	var got entity.Trolley
	if err := db.First(&got, "id = ?", trolley.ID).Error; err != nil {
		t.Fatalf("load trolley: %v", err)
	}
	if got.StickCount != 12 {
		t.Errorf("expected stick count 12, got %d", got.StickCount)
	}
	if got.TareWeight != 45 {
		t.Errorf("expected tare 45, got %v", got.TareWeight)
	}

	// Config-only submissions write no measurement rows.
	var n int64
	db.Model(&entity.Measurement{}).Where("trolley_id = ?", trolley.ID).Count(&n)
	if n != 0 {
		t.Errorf("expected no measurement rows, got %d", n)
	}
}

func TestRecordPieceCountOnlyNeedsBaseline(t *testing.T) {
	db, svc := setupRecorderTest(t)
	trolley := seedTrolleyChain(t, db)
	ctx := context.Background()

	// No baseline yet: a pieces-only submission is a silent no-op.
	if err := svc.Record(ctx, &Submission{TrolleyID: trolley.ID, Pieces: iptr(30)}); err != nil {
		t.Fatalf("pieces without baseline: %v", err)
	}
	if n := countMeasurements(t, db, trolley.ID, entity.PhaseProduction); n != 0 {
		t.Fatalf("pieces-only created a baseline, rows=%d", n)
	}

	if err := svc.Record(ctx, &Submission{TrolleyID: trolley.ID, WeightProduction: f64(118)}); err != nil {
		t.Fatalf("baseline: %v", err)
	}
	if err := svc.Record(ctx, &Submission{TrolleyID: trolley.ID, Pieces: iptr(30)}); err != nil {
		t.Fatalf("pieces with baseline: %v", err)
	}

	var baseline entity.Measurement
	db.First(&baseline, "trolley_id = ? AND phase = ?", trolley.ID, entity.PhaseProduction)
	if baseline.PieceCount == nil || *baseline.PieceCount != 30 {
		t.Errorf("expected piece count 30, got %v", baseline.PieceCount)
	}
}

func TestRecordUnknownTrolley(t *testing.T) {
	_, svc := setupRecorderTest(t)

	err := svc.Record(context.Background(), &Submission{
		TrolleyID: "no-such-trolley",
		Weight:    f64(100),
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRecordCombinedSubmission(t *testing.T) {
	db, svc := setupRecorderTest(t)
	trolley := seedTrolleyChain(t, db)
	ctx := context.Background()

	// One station submission can carry config, baseline and a monitoring
	// reading together.
	err := svc.Record(ctx, &Submission{
		TrolleyID:        trolley.ID,
		Tare:             f64(41),
		StickCount:       iptr(10),
		WeightProduction: f64(130),
		Weight:           f64(129),
		PH:               f64(5.8),
		Phase:            "HOLDING",
	})
	if err != nil {
		t.Fatalf("combined submission: %v", err)
	}

	if n := countMeasurements(t, db, trolley.ID, entity.PhaseProduction); n != 1 {
		t.Errorf("expected 1 baseline row, got %d", n)
	}
	if n := countMeasurements(t, db, trolley.ID, "HOLDING"); n != 1 {
		t.Errorf("expected 1 monitoring row, got %d", n)
	}

	var got entity.Trolley
	db.First(&got, "id = ?", trolley.ID)
	if got.TareWeight != 41 || got.StickCount != 10 {
		t.Errorf("config not applied: tare=%v sticks=%d", got.TareWeight, got.StickCount)
	}
}

func TestCorrectAndRemoveMeasurement(t *testing.T) {
	db, svc := setupRecorderTest(t)
	trolley := seedTrolleyChain(t, db)
	ctx := context.Background()

	if err := svc.Record(ctx, &Submission{TrolleyID: trolley.ID, Weight: f64(99), PH: f64(5.1), Phase: "HOLDING"}); err != nil {
		t.Fatalf("record: %v", err)
	}

	var row entity.Measurement
	if err := db.First(&row, "trolley_id = ? AND phase = ?", trolley.ID, "HOLDING").Error; err != nil {
		t.Fatalf("load row: %v", err)
	}

	updated, err := svc.Correct(ctx, row.ID, &CorrectMeasurementRequest{
		GrossWeight: f64(101),
		PHValue:     f64(5.3),
	})
	if err != nil {
		t.Fatalf("correct: %v", err)
	}
	if updated.GrossWeight == nil || *updated.GrossWeight != 101 {
		t.Errorf("expected gross 101, got %v", updated.GrossWeight)
	}

	if err := svc.Remove(ctx, row.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := svc.Correct(ctx, row.ID, &CorrectMeasurementRequest{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
