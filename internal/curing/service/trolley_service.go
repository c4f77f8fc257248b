package service

import (
	"context"
	"fmt"

	"github.com/naleksandarn/fermented-sausages/internal/curing/entity"
	"github.com/naleksandarn/fermented-sausages/internal/curing/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TrolleyService manages trolleys within a batch and the packaging
// station's lookup views.
type TrolleyService struct {
	db   *gorm.DB
	repo *repository.TrolleyRepository
}

func NewTrolleyService(db *gorm.DB, repo *repository.TrolleyRepository) *TrolleyService {
	return &TrolleyService{db: db, repo: repo}
}

type AddTrolleyRequest struct {
	BatchID    string   `json:"batchId" binding:"required"`
	Tare       *float64 `json:"tare"`
	StickCount *int     `json:"sticks"`
}

// Add appends a trolley to a batch. The number is max+1 within the
// batch, computed under a row lock on the batch so two concurrent adds
// cannot collide; numbers are never reused after a removal.
func (s *TrolleyService) Add(ctx context.Context, req *AddTrolleyRequest) (*entity.Trolley, error) {
	tare := 40.0
	if req.Tare != nil {
		tare = *req.Tare
	}
	sticks := 0
	if req.StickCount != nil {
		sticks = *req.StickCount
	}

	trolley := &entity.Trolley{
		ID:         newID(),
		BatchID:    req.BatchID,
		TareWeight: tare,
		StickCount: sticks,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var batch entity.Batch
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&batch, "id = ?", req.BatchID).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("batch %s: %w", req.BatchID, ErrNotFound)
			}
			return err
		}

		var next int
		err = tx.Raw(`SELECT COALESCE(MAX(trolley_number), 0) + 1 FROM trolleys WHERE batch_id = ?`,
			req.BatchID).Scan(&next).Error
		if err != nil {
			return err
		}
		trolley.TrolleyNumber = next
		return tx.Create(trolley).Error
	})
	if err != nil {
		return nil, err
	}
	return trolley, nil
}

// Remove deletes a trolley and, through the foreign key, its
// measurements. The trolley's number stays retired.
func (s *TrolleyService) Remove(ctx context.Context, id string) error {
	return wrapRepoErr(s.repo.Delete(ctx, id))
}

func (s *TrolleyService) Get(ctx context.Context, id string) (*entity.Trolley, error) {
	trolley, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, wrapRepoErr(err)
	}
	return trolley, nil
}

// PackagingBatches lists active batches with their unpacked trolley
// counts, for the packaging station's batch picker.
func (s *TrolleyService) PackagingBatches(ctx context.Context) ([]repository.PackagingBatchRow, error) {
	return s.repo.PackagingBatches(ctx)
}

// PackagingLookup resolves a lot number and trolley number scanned at
// the packaging station into the trolley and its baseline reading.
func (s *TrolleyService) PackagingLookup(ctx context.Context, lot string, trolleyNumber int) (*repository.PackagingLookupRow, error) {
	row, err := s.repo.PackagingLookup(ctx, lot, trolleyNumber)
	if err != nil {
		return nil, wrapRepoErr(err)
	}
	return row, nil
}

func (s *TrolleyService) ListUnpacked(ctx context.Context, batchID string) ([]entity.Trolley, error) {
	return s.repo.ListUnpacked(ctx, batchID)
}
