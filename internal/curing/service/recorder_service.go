package service

import (
	"context"
	"fmt"
	"time"

	"github.com/naleksandarn/fermented-sausages/internal/curing/entity"
	"github.com/naleksandarn/fermented-sausages/internal/curing/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Submission is one incoming reading from the weighing station. Every
// field except the trolley id is optional; which writes it triggers is
// decided by the branch table in Record.
type Submission struct {
	TrolleyID        string       `json:"trolleyId" binding:"required"`
	Weight           *float64     `json:"weight"`
	PH               *float64     `json:"ph"`
	Phase            entity.Phase `json:"phase"`
	Pieces           *int         `json:"pieces"`
	StickCount       *int         `json:"stickCount"`
	Tare             *float64     `json:"tare"`
	WeightProduction *float64     `json:"weightProduction"`
	Date             *time.Time   `json:"date"`
}

// RecorderService turns one submission into zero to three ledger/registry
// writes inside a single transaction. The same branch table serves the
// initial production reading and every later monitoring reading.
type RecorderService struct {
	db              *gorm.DB
	measurementRepo *repository.MeasurementRepository
}

func NewRecorderService(db *gorm.DB, measurementRepo *repository.MeasurementRepository) *RecorderService {
	return &RecorderService{db: db, measurementRepo: measurementRepo}
}

// Record applies a submission. The branches are evaluated in order and
// independently; a single submission may update the trolley config,
// upsert the baseline AND append a monitoring row. Any failure rolls the
// whole submission back.
func (s *RecorderService) Record(ctx context.Context, sub *Submission) error {
	measuredAt := time.Now()
	if sub.Date != nil {
		measuredAt = *sub.Date
	}

	hasWeight := sub.Weight != nil && *sub.Weight != 0
	hasPH := sub.PH != nil && *sub.PH != 0
	hasPieces := sub.Pieces != nil && *sub.Pieces != 0

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var trolley entity.Trolley
		if err := tx.First(&trolley, "id = ?", sub.TrolleyID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("trolley %s: %w", sub.TrolleyID, ErrNotFound)
			}
			return err
		}

		// 1. Trolley configuration: partial update, absent fields untouched.
		if sub.StickCount != nil || sub.Tare != nil {
			err := tx.Exec(`UPDATE trolleys
				SET stick_count = COALESCE(?, stick_count),
				    tare_weight = COALESCE(?, tare_weight),
				    updated_at = ?
				WHERE id = ?`,
				sub.StickCount, sub.Tare, time.Now(), sub.TrolleyID).Error
			if err != nil {
				return err
			}
		}

		// 2. Baseline upsert: a single conditional write against the
		// partial unique index on (trolley_id) WHERE phase = 'PRODUCTION',
		// so two racing submissions cannot produce duplicate baselines.
		// An existing row keeps its piece_count unless pieces is supplied.
		if sub.WeightProduction != nil {
			baseline := &entity.Measurement{
				ID:          newID(),
				TrolleyID:   sub.TrolleyID,
				Phase:       entity.PhaseProduction,
				GrossWeight: sub.WeightProduction,
				PieceCount:  sub.Pieces,
				MeasuredAt:  measuredAt,
			}
			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "trolley_id"}},
				TargetWhere: clause.Where{Exprs: []clause.Expression{
					clause.Eq{Column: clause.Column{Name: "phase"}, Value: string(entity.PhaseProduction)},
				}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"gross_weight": sub.WeightProduction,
					"piece_count":  gorm.Expr("COALESCE(EXCLUDED.piece_count, measurements.piece_count)"),
				}),
			}).Create(baseline).Error
			if err != nil {
				return err
			}
		} else if hasPieces && !hasWeight && !hasPH {
			// 3. Piece-count-only correction: touches an existing baseline
			// and nothing else. A baseline row is never created just to
			// hold a piece count, so zero rows affected is fine.
			err := tx.Model(&entity.Measurement{}).
				Where("trolley_id = ? AND phase = ?", sub.TrolleyID, entity.PhaseProduction).
				Update("piece_count", *sub.Pieces).Error
			if err != nil {
				return err
			}
		}

		// 4. Monitoring/terminal append: always a new row, regardless of
		// what branches 2-3 did.
		if hasWeight || hasPH {
			row := &entity.Measurement{
				ID:          newID(),
				TrolleyID:   sub.TrolleyID,
				Phase:       sub.Phase,
				GrossWeight: sub.Weight,
				PHValue:     sub.PH,
				PieceCount:  sub.Pieces,
				MeasuredAt:  measuredAt,
			}
			if err := tx.Create(row).Error; err != nil {
				return err
			}

			if err := s.queueReadingNotice(tx, &trolley, sub); err != nil {
				return err
			}
		}

		return nil
	})
}

// queueReadingNotice writes outbox rows describing a new reading. They
// ride in the recorder's transaction; delivery happens later through the
// dispatcher.
func (s *RecorderService) queueReadingNotice(tx *gorm.DB, trolley *entity.Trolley, sub *Submission) error {
	var bc repository.BatchContext
	res := tx.Raw(`
		SELECT b.batch_code, t.trolley_number
		FROM trolleys t
		JOIN batches b ON t.batch_id = b.id
		WHERE t.id = ?`, trolley.ID).Scan(&bc)
	if res.Error != nil {
		return res.Error
	}
	if bc.BatchCode == "" {
		return nil
	}

	details := ""
	if sub.PH != nil && *sub.PH != 0 {
		details = fmt.Sprintf("pH: %.2f", *sub.PH)
	}
	if sub.Weight != nil && *sub.Weight != 0 {
		if details != "" {
			details += ", "
		}
		details += fmt.Sprintf("weight: %.1fkg", *sub.Weight)
	}
	msg := fmt.Sprintf("New reading (%s, trolley #%d): %s", bc.BatchCode, bc.TrolleyNumber, details)

	for _, role := range []string{entity.RoleAdmin, entity.RoleCEO} {
		n := &entity.Notification{ID: newID(), TargetRole: role, Message: msg}
		if err := tx.Create(n).Error; err != nil {
			return err
		}
	}
	return nil
}

type CorrectMeasurementRequest struct {
	GrossWeight *float64   `json:"grossWeight"`
	PHValue     *float64   `json:"phValue"`
	PieceCount  *int       `json:"pieceCount"`
	MeasuredAt  *time.Time `json:"measuredAt"`
}

// Correct rewrites an existing ledger row in place. This is the manual
// fix-up path for typos; the phase tag stays as recorded.
func (s *RecorderService) Correct(ctx context.Context, id string, req *CorrectMeasurementRequest) (*entity.Measurement, error) {
	existing, err := s.measurementRepo.FindByID(ctx, id)
	if err != nil {
		return nil, wrapRepoErr(err)
	}
	measuredAt := existing.MeasuredAt
	if req.MeasuredAt != nil {
		measuredAt = *req.MeasuredAt
	}
	err = s.measurementRepo.UpdateRow(ctx, id, req.GrossWeight, req.PHValue, req.PieceCount, measuredAt)
	if err != nil {
		return nil, wrapRepoErr(err)
	}
	updated, err := s.measurementRepo.FindByID(ctx, id)
	if err != nil {
		return nil, wrapRepoErr(err)
	}
	return updated, nil
}

// Remove deletes a ledger row. Removing a baseline re-opens the trolley
// for a fresh initial reading.
func (s *RecorderService) Remove(ctx context.Context, id string) error {
	return wrapRepoErr(s.measurementRepo.Delete(ctx, id))
}

// History lists a trolley's ledger, oldest first.
func (s *RecorderService) History(ctx context.Context, trolleyID string) ([]entity.Measurement, error) {
	return s.measurementRepo.ListByTrolley(ctx, trolleyID)
}
