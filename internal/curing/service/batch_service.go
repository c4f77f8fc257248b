package service

import (
	"context"
	"fmt"
	"time"

	"github.com/naleksandarn/fermented-sausages/internal/curing/entity"
	"github.com/naleksandarn/fermented-sausages/internal/curing/repository"
	"gorm.io/gorm"
)

// BatchService owns the batch lifecycle: creation with its initial
// trolley fleet, chamber moves, packaging and auto-close, and deletion.
type BatchService struct {
	db          *gorm.DB
	batchRepo   *repository.BatchRepository
	productRepo *repository.ProductRepository
	trolleyRepo *repository.TrolleyRepository
}

func NewBatchService(db *gorm.DB, batchRepo *repository.BatchRepository, productRepo *repository.ProductRepository, trolleyRepo *repository.TrolleyRepository) *BatchService {
	return &BatchService{db: db, batchRepo: batchRepo, productRepo: productRepo, trolleyRepo: trolleyRepo}
}

type CreateBatchRequest struct {
	ProductCode    string `json:"productCode" binding:"required"`
	BatchCode      string `json:"batchCode" binding:"required"`
	LotNumber      string `json:"lotNumber" binding:"required"`
	Chamber        string `json:"chamber"`
	ProductionDate string `json:"productionDate" binding:"required"`
	TrolleyCount   int    `json:"trolleyCount" binding:"required,min=1"`
}

// Create opens a batch together with its initial trolleys, numbered 1..N
// and seeded from the product defaults. The batch and its trolleys land
// atomically: a failure on trolley 7 leaves no batch behind.
func (s *BatchService) Create(ctx context.Context, req *CreateBatchRequest) (*entity.Batch, error) {
	product, err := s.productRepo.FindByCode(ctx, req.ProductCode)
	if err != nil {
		return nil, wrapRepoErr(fmt.Errorf("product %s: %w", req.ProductCode, err))
	}

	prodDate, err := time.Parse("2006-01-02", req.ProductionDate)
	if err != nil {
		return nil, fmt.Errorf("%w: productionDate must be YYYY-MM-DD", ErrValidation)
	}

	batch := &entity.Batch{
		ID:             newID(),
		ProductID:      product.ID,
		BatchCode:      req.BatchCode,
		LotNumber:      req.LotNumber,
		CurrentChamber: req.Chamber,
		ProductionDate: prodDate,
		IsActive:       true,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(batch).Error; err != nil {
			return err
		}
		for i := 1; i <= req.TrolleyCount; i++ {
			trolley := &entity.Trolley{
				ID:            newID(),
				BatchID:       batch.ID,
				TrolleyNumber: i,
				TareWeight:    product.DefaultTrolleyWeight,
				StickCount:    product.DefaultStickCount,
			}
			if err := tx.Create(trolley).Error; err != nil {
				return err
			}
		}
		msg := fmt.Sprintf("New batch created: %s (%s)", req.BatchCode, product.Name)
		for _, role := range []string{entity.RoleAdmin, entity.RoleCEO} {
			n := &entity.Notification{ID: newID(), TargetRole: role, Message: msg}
			if err := tx.Create(n).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, wrapRepoErr(repository.Translate(err))
	}
	return s.batchRepo.FindByID(ctx, batch.ID)
}

// Move updates the batch's current chamber and queues a notification for
// the supervising roles.
func (s *BatchService) Move(ctx context.Context, batchID, chamber string) error {
	batch, err := s.batchRepo.FindByID(ctx, batchID)
	if err != nil {
		return wrapRepoErr(err)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entity.Batch{}).Where("id = ?", batchID).Update("current_chamber", chamber)
		if res.Error != nil {
			return res.Error
		}
		msg := fmt.Sprintf("Batch %s moved to chamber %s", batch.BatchCode, chamber)
		for _, role := range []string{entity.RoleAdmin, entity.RoleCEO} {
			n := &entity.Notification{ID: newID(), TargetRole: role, Message: msg}
			if err := tx.Create(n).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// PackResult reports what a packaging action did to the batch.
type PackResult struct {
	TrolleyID        string `json:"trolleyId"`
	UnpackedLeft     int64  `json:"unpackedLeft"`
	BatchClosed      bool   `json:"batchClosed"`
	AlreadyProcessed bool   `json:"alreadyProcessed"`
}

type PackTrolleyRequest struct {
	TrolleyID   string     `json:"trolleyId" binding:"required"`
	GrossWeight float64    `json:"weight" binding:"required"`
	PHValue     *float64   `json:"ph"`
	MeasuredAt  *time.Time `json:"date"`
}

// Pack records the terminal reading for a trolley, marks it packed and,
// when it was the batch's last unpacked trolley, closes the batch. A
// trolley already packed is reported back rather than packed twice.
func (s *BatchService) Pack(ctx context.Context, req *PackTrolleyRequest) (*PackResult, error) {
	result := &PackResult{TrolleyID: req.TrolleyID}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var trolley entity.Trolley
		if err := tx.First(&trolley, "id = ?", req.TrolleyID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("trolley %s: %w", req.TrolleyID, ErrNotFound)
			}
			return err
		}
		if trolley.IsPacked {
			result.AlreadyProcessed = true
			return nil
		}

		measuredAt := time.Now()
		if req.MeasuredAt != nil {
			measuredAt = *req.MeasuredAt
		}
		m := &entity.Measurement{
			ID:          newID(),
			TrolleyID:   req.TrolleyID,
			Phase:       entity.PhasePackaging,
			GrossWeight: &req.GrossWeight,
			PHValue:     req.PHValue,
			MeasuredAt:  measuredAt,
		}
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		if err := tx.Model(&entity.Trolley{}).Where("id = ?", req.TrolleyID).Update("is_packed", true).Error; err != nil {
			return err
		}

		var unpacked int64
		err := tx.Model(&entity.Trolley{}).
			Where("batch_id = ? AND is_packed = FALSE", trolley.BatchID).
			Count(&unpacked).Error
		if err != nil {
			return err
		}
		result.UnpackedLeft = unpacked

		var bc repository.BatchContext
		if err := tx.Raw(`SELECT b.batch_code, t.trolley_number
			FROM trolleys t JOIN batches b ON t.batch_id = b.id
			WHERE t.id = ?`, req.TrolleyID).Scan(&bc).Error; err != nil {
			return err
		}
		messages := []string{
			fmt.Sprintf("Packaging (%s): trolley #%d packed, weighed out %.1f kg", bc.BatchCode, bc.TrolleyNumber, req.GrossWeight),
		}

		if unpacked == 0 {
			err := tx.Model(&entity.Batch{}).Where("id = ?", trolley.BatchID).Update("is_active", false).Error
			if err != nil {
				return err
			}
			result.BatchClosed = true
			messages = append(messages, fmt.Sprintf("Batch %s fully packed and closed", bc.BatchCode))
		}

		for _, msg := range messages {
			for _, role := range []string{entity.RoleAdmin, entity.RoleCEO} {
				n := &entity.Notification{ID: newID(), TargetRole: role, Message: msg}
				if err := tx.Create(n).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes a batch; the foreign keys cascade to trolleys and
// measurements.
func (s *BatchService) Delete(ctx context.Context, batchID string) error {
	return wrapRepoErr(s.batchRepo.Delete(ctx, batchID))
}

func (s *BatchService) Get(ctx context.Context, batchID string) (*entity.Batch, error) {
	batch, err := s.batchRepo.FindByID(ctx, batchID)
	if err != nil {
		return nil, wrapRepoErr(err)
	}
	return batch, nil
}

func (s *BatchService) Dashboard(ctx context.Context) ([]repository.DashboardRow, error) {
	return s.batchRepo.Dashboard(ctx)
}

func (s *BatchService) Archived(ctx context.Context) ([]repository.ArchivedRow, error) {
	return s.batchRepo.Archived(ctx)
}

func (s *BatchService) TrolleyDetails(ctx context.Context, batchID string) ([]repository.TrolleyDetailRow, error) {
	if _, err := s.batchRepo.FindByID(ctx, batchID); err != nil {
		return nil, wrapRepoErr(err)
	}
	return s.batchRepo.TrolleyDetails(ctx, batchID)
}

func (s *BatchService) MeasurementHistory(ctx context.Context, batchID string) ([]repository.HistoryRow, error) {
	if _, err := s.batchRepo.FindByID(ctx, batchID); err != nil {
		return nil, wrapRepoErr(err)
	}
	return s.batchRepo.MeasurementHistory(ctx, batchID)
}
