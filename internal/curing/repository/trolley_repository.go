package repository

import (
	"context"

	"github.com/naleksandarn/fermented-sausages/internal/curing/entity"
	"gorm.io/gorm"
)

type TrolleyRepository struct {
	db *gorm.DB
}

func NewTrolleyRepository(db *gorm.DB) *TrolleyRepository {
	return &TrolleyRepository{db: db}
}

func (r *TrolleyRepository) FindByID(ctx context.Context, id string) (*entity.Trolley, error) {
	var t entity.Trolley
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, Translate(err)
	}
	return &t, nil
}

func (r *TrolleyRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&entity.Trolley{}, "id = ?", id)
	if res.Error != nil {
		return Translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListUnpacked returns the trolleys of a batch still awaiting packaging.
func (r *TrolleyRepository) ListUnpacked(ctx context.Context, batchID string) ([]entity.Trolley, error) {
	var trolleys []entity.Trolley
	err := r.db.WithContext(ctx).
		Where("batch_id = ? AND is_packed = FALSE", batchID).
		Order("trolley_number ASC").
		Find(&trolleys).Error
	return trolleys, err
}

// PackagingBatchRow is one active batch that still has unpacked trolleys.
type PackagingBatchRow struct {
	ID          string `json:"id"`
	BatchCode   string `json:"batch_code"`
	LotNumber   string `json:"lot_number"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
}

func (r *TrolleyRepository) PackagingBatches(ctx context.Context) ([]PackagingBatchRow, error) {
	var rows []PackagingBatchRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT DISTINCT b.id, b.batch_code, b.lot_number, b.product_id, p.name AS product_name
		FROM batches b
		JOIN products p ON b.product_id = p.id
		JOIN trolleys t ON b.id = t.batch_id
		WHERE b.is_active = TRUE AND t.is_packed = FALSE
		ORDER BY b.batch_code ASC`).Scan(&rows).Error
	return rows, err
}

// PackagingLookupRow identifies an unpacked trolley by lot number and
// trolley number, for the scale-side packaging screen.
type PackagingLookupRow struct {
	TrolleyID     string   `json:"trolley_id"`
	TrolleyNumber int      `json:"trolley_number"`
	TareWeight    float64  `json:"tare_weight"`
	StickCount    int      `json:"stick_count"`
	BatchID       string   `json:"batch_id"`
	BatchCode     string   `json:"batch_code"`
	ProductID     string   `json:"product_id"`
	StartGross    *float64 `json:"start_gross"`
}

func (r *TrolleyRepository) PackagingLookup(ctx context.Context, lot string, trolleyNumber int) (*PackagingLookupRow, error) {
	var row PackagingLookupRow
	res := r.db.WithContext(ctx).Raw(`
		SELECT
			t.id AS trolley_id, t.trolley_number, t.tare_weight, t.stick_count,
			b.id AS batch_id, b.batch_code, b.product_id,
			(SELECT gross_weight FROM measurements m WHERE m.trolley_id = t.id AND m.phase = ? LIMIT 1) AS start_gross
		FROM trolleys t
		JOIN batches b ON t.batch_id = b.id
		WHERE b.lot_number = ? AND t.trolley_number = ? AND t.is_packed = FALSE AND b.is_active = TRUE`,
		entity.PhaseProduction, lot, trolleyNumber).Scan(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if row.TrolleyID == "" {
		return nil, ErrNotFound
	}
	return &row, nil
}

// BatchContext names the batch code and trolley number a trolley belongs
// to, for notification messages.
type BatchContext struct {
	BatchCode     string
	TrolleyNumber int
}
