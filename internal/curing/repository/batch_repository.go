package repository

import (
	"context"

	"github.com/naleksandarn/fermented-sausages/internal/curing/entity"
	"gorm.io/gorm"
)

type BatchRepository struct {
	db *gorm.DB
}

func NewBatchRepository(db *gorm.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

func (r *BatchRepository) FindByID(ctx context.Context, id string) (*entity.Batch, error) {
	var b entity.Batch
	if err := r.db.WithContext(ctx).Preload("Product").First(&b, "id = ?", id).Error; err != nil {
		return nil, Translate(err)
	}
	return &b, nil
}

// Delete removes the batch; trolleys and their measurements go with it
// through the cascading foreign keys.
func (r *BatchRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&entity.Batch{}, "id = ?", id)
	if res.Error != nil {
		return Translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DashboardRow is one active batch on the dashboard list, with derived
// age and remaining days against the product's target duration.
type DashboardRow struct {
	ID             string `json:"id"`
	BatchCode      string `json:"batch_code"`
	LotNumber      string `json:"lot_number"`
	CurrentChamber string `json:"current_chamber"`
	ProductName    string `json:"product_name"`
	TargetDuration int    `json:"target_duration_days"`
	TotalTrolleys  int    `json:"total_trolleys"`
	ActiveTrolleys int    `json:"active_trolleys"`
	DaysOld        int    `json:"days_old"`
	DaysRemaining  int    `json:"days_remaining"`
}

func (r *BatchRepository) Dashboard(ctx context.Context) ([]DashboardRow, error) {
	var rows []DashboardRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			b.id,
			b.batch_code,
			b.lot_number,
			b.current_chamber,
			p.name AS product_name,
			p.target_duration_days AS target_duration,
			COUNT(t.id) AS total_trolleys,
			COUNT(CASE WHEN t.is_packed = FALSE THEN 1 END) AS active_trolleys,
			(CURRENT_DATE - b.production_date) AS days_old,
			(p.target_duration_days - (CURRENT_DATE - b.production_date)) AS days_remaining
		FROM batches b
		JOIN products p ON b.product_id = p.id
		LEFT JOIN trolleys t ON b.id = t.batch_id
		WHERE b.is_active = TRUE
		GROUP BY b.id, b.batch_code, b.lot_number, b.current_chamber, p.name, p.target_duration_days, b.production_date
		ORDER BY b.production_date ASC`).Scan(&rows).Error
	return rows, err
}

// ArchivedRow is one closed batch in the archive list.
type ArchivedRow struct {
	ID          string `json:"id"`
	BatchCode   string `json:"batch_code"`
	LotNumber   string `json:"lot_number"`
	ProductName string `json:"product_name"`
}

func (r *BatchRepository) Archived(ctx context.Context) ([]ArchivedRow, error) {
	var rows []ArchivedRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT b.id, b.batch_code, b.lot_number, p.name AS product_name
		FROM batches b
		JOIN products p ON b.product_id = p.id
		WHERE b.is_active = FALSE
		ORDER BY b.production_date DESC
		LIMIT 100`).Scan(&rows).Error
	return rows, err
}

// TrolleyDetailRow is one trolley row of the per-batch detail view, with
// the baseline gross and the values of the most recent reading.
type TrolleyDetailRow struct {
	ID                string   `json:"id"`
	TrolleyNumber     int      `json:"trolley_number"`
	TareWeight        float64  `json:"tare_weight"`
	StickCount        int      `json:"stick_count"`
	DefaultPieceCount int      `json:"default_piece_count"`
	StartGross        *float64 `json:"start_gross"`
	CurrentGross      *float64 `json:"current_gross"`
	CurrentPieces     *int     `json:"current_pieces"`
	CurrentPH         *float64 `json:"current_ph"`
}

func (r *BatchRepository) TrolleyDetails(ctx context.Context, batchID string) ([]TrolleyDetailRow, error) {
	var rows []TrolleyDetailRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			t.id, t.trolley_number, t.tare_weight, t.stick_count, p.default_piece_count,
			(SELECT gross_weight FROM measurements m WHERE m.trolley_id = t.id AND m.phase = ? LIMIT 1) AS start_gross,
			(SELECT gross_weight FROM measurements m WHERE m.trolley_id = t.id ORDER BY m.measured_at DESC LIMIT 1) AS current_gross,
			(SELECT piece_count FROM measurements m WHERE m.trolley_id = t.id ORDER BY m.measured_at DESC LIMIT 1) AS current_pieces,
			(SELECT ph_value FROM measurements m WHERE m.trolley_id = t.id ORDER BY m.measured_at DESC LIMIT 1) AS current_ph
		FROM trolleys t
		JOIN batches b ON t.batch_id = b.id
		JOIN products p ON b.product_id = p.id
		WHERE t.batch_id = ?
		ORDER BY t.trolley_number ASC`, entity.PhaseProduction, batchID).Scan(&rows).Error
	return rows, err
}

// HistoryRow is one measurement of the per-batch history view, joined
// with the trolley configuration needed to derive net weights client-side.
type HistoryRow struct {
	MeasurementID string       `json:"measurement_id"`
	MeasuredAt    string       `json:"measured_at"`
	Phase         entity.Phase `json:"phase"`
	GrossWeight   *float64     `json:"gross_weight"`
	PHValue       *float64     `json:"ph_value"`
	PieceCount    *int         `json:"piece_count"`
	TrolleyNumber int          `json:"trolley_number"`
	TareWeight    float64      `json:"tare_weight"`
	StickCount    int          `json:"stick_count"`
	StartGross    *float64     `json:"start_gross"`
}

func (r *BatchRepository) MeasurementHistory(ctx context.Context, batchID string) ([]HistoryRow, error) {
	var rows []HistoryRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			m.id AS measurement_id, m.measured_at, m.phase, m.gross_weight, m.ph_value, m.piece_count,
			t.trolley_number, t.tare_weight, t.stick_count,
			(SELECT gross_weight FROM measurements sm WHERE sm.trolley_id = t.id AND sm.phase = ? LIMIT 1) AS start_gross
		FROM measurements m
		JOIN trolleys t ON m.trolley_id = t.id
		WHERE t.batch_id = ?
		ORDER BY m.measured_at DESC, t.trolley_number ASC`, entity.PhaseProduction, batchID).Scan(&rows).Error
	return rows, err
}
