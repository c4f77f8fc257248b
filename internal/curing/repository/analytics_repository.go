package repository

import (
	"context"

	"github.com/naleksandarn/fermented-sausages/internal/curing/entity"
	"gorm.io/gorm"
)

// AnalyticsRepository holds the read models behind the analytics screen.
// Everything is recomputed per call; there is deliberately no caching or
// incremental maintenance.
type AnalyticsRepository struct {
	db *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// KPI is the headline rollup over active batches.
type KPI struct {
	TotalBatches  int     `json:"totalBatches"`
	TotalTrolleys int     `json:"totalTrolleys"`
	TotalWeight   float64 `json:"totalWeight"`
}

func (r *AnalyticsRepository) KPI(ctx context.Context) (*KPI, error) {
	var kpi KPI
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			COUNT(DISTINCT b.id) AS total_batches,
			COUNT(t.id) AS total_trolleys
		FROM batches b
		LEFT JOIN trolleys t ON b.id = t.batch_id
		WHERE b.is_active = TRUE`).Scan(&kpi).Error
	if err != nil {
		return nil, err
	}

	// Sum of each trolley's most recent gross weight, active batches only.
	var totalWeight *float64
	err = r.db.WithContext(ctx).Raw(`
		SELECT SUM(m.gross_weight)
		FROM measurements m
		INNER JOIN (
			SELECT trolley_id, MAX(measured_at) AS max_date
			FROM measurements GROUP BY trolley_id
		) latest ON m.trolley_id = latest.trolley_id AND m.measured_at = latest.max_date
		JOIN trolleys t ON m.trolley_id = t.id
		JOIN batches b ON t.batch_id = b.id
		WHERE b.is_active = TRUE`).Scan(&totalWeight).Error
	if err != nil {
		return nil, err
	}
	if totalWeight != nil {
		kpi.TotalWeight = *totalWeight
	}
	return &kpi, nil
}

// ActiveBatchRow is one active batch in the analytics list, carrying the
// baseline net total alongside the schedule-derived columns.
type ActiveBatchRow struct {
	ID                     string  `json:"id"`
	BatchCode              string  `json:"batch_code"`
	ProductionDate         string  `json:"production_date"`
	LotNumber              string  `json:"lot_number"`
	ProductName            string  `json:"product_name"`
	TargetDurationDays     int     `json:"target_duration_days"`
	StandardLossPercentage float64 `json:"standard_loss_percentage"`
	DaysOld                int     `json:"days_old"`
	DaysRemaining          int     `json:"days_remaining"`
	TrolleyCount           int     `json:"trolley_count"`
	TotalNetStart          float64 `json:"total_net_start"`
}

func (r *AnalyticsRepository) ActiveBatches(ctx context.Context) ([]ActiveBatchRow, error) {
	var rows []ActiveBatchRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			b.id, b.batch_code, b.production_date, b.lot_number,
			p.name AS product_name,
			p.target_duration_days,
			p.standard_loss_percentage,
			(CURRENT_DATE - b.production_date) AS days_old,
			(p.target_duration_days - (CURRENT_DATE - b.production_date)) AS days_remaining,
			COUNT(t.id) AS trolley_count,
			SUM(COALESCE(start_m.gross_weight, 0) - t.tare_weight - (t.stick_count * ?::float8)) AS total_net_start
		FROM batches b
		JOIN products p ON b.product_id = p.id
		LEFT JOIN trolleys t ON b.id = t.batch_id
		LEFT JOIN measurements start_m ON start_m.trolley_id = t.id AND start_m.phase = ?
		WHERE b.is_active = TRUE
		GROUP BY b.id, p.name, p.target_duration_days, p.standard_loss_percentage, b.production_date, b.lot_number
		ORDER BY days_remaining ASC`,
		entity.StickUnitWeight, entity.PhaseProduction).Scan(&rows).Error
	return rows, err
}

// ProductStatRow aggregates trolley count and baseline net weight per
// product across active batches.
type ProductStatRow struct {
	Name                   string  `json:"name"`
	StandardLossPercentage float64 `json:"standard_loss_percentage"`
	TotalTrolleys          int     `json:"total_trolleys"`
	TotalNetStart          float64 `json:"total_net_start"`
}

func (r *AnalyticsRepository) ProductStats(ctx context.Context) ([]ProductStatRow, error) {
	var rows []ProductStatRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			p.name,
			p.standard_loss_percentage,
			COUNT(t.id) AS total_trolleys,
			SUM(COALESCE(start_m.gross_weight, 0) - t.tare_weight - (t.stick_count * ?::float8)) AS total_net_start
		FROM batches b
		JOIN products p ON b.product_id = p.id
		JOIN trolleys t ON b.id = t.batch_id
		LEFT JOIN measurements start_m ON start_m.trolley_id = t.id AND start_m.phase = ?
		WHERE b.is_active = TRUE
		GROUP BY p.name, p.standard_loss_percentage`,
		entity.StickUnitWeight, entity.PhaseProduction).Scan(&rows).Error
	return rows, err
}

// BatchHistoryRow compares baseline and terminal net totals for a closed
// batch. Batches whose terminal aggregate is zero (never weighed out) are
// excluded.
type BatchHistoryRow struct {
	BatchCode   string  `json:"batch_code"`
	ProductName string  `json:"product_name"`
	TotalNetIn  float64 `json:"total_net_in"`
	TotalNetOut float64 `json:"total_net_out"`
}

func (r *AnalyticsRepository) ClosedBatchHistory(ctx context.Context) ([]BatchHistoryRow, error) {
	var rows []BatchHistoryRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			b.batch_code,
			p.name AS product_name,
			SUM(COALESCE(start_m.gross_weight, 0) - t.tare_weight - (t.stick_count * ?::float8)) AS total_net_in,
			SUM(COALESCE(end_m.gross_weight, 0) - t.tare_weight - (t.stick_count * ?::float8)) AS total_net_out
		FROM batches b
		JOIN products p ON b.product_id = p.id
		JOIN trolleys t ON b.id = t.batch_id
		LEFT JOIN measurements start_m ON start_m.trolley_id = t.id AND start_m.phase = ?
		LEFT JOIN measurements end_m ON end_m.trolley_id = t.id AND end_m.phase = ?
		WHERE b.is_active = FALSE
		GROUP BY b.batch_code, p.name
		HAVING SUM(COALESCE(end_m.gross_weight, 0)) > 0
		ORDER BY b.batch_code DESC`,
		entity.StickUnitWeight, entity.StickUnitWeight,
		entity.PhaseProduction, entity.PhasePackaging).Scan(&rows).Error
	return rows, err
}

// CountRow is a generic (name, count) pair for the chart endpoints.
type CountRow struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func (r *AnalyticsRepository) TrolleysByProduct(ctx context.Context) ([]CountRow, error) {
	var rows []CountRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT p.name, COUNT(t.id) AS count
		FROM trolleys t
		JOIN batches b ON t.batch_id = b.id
		JOIN products p ON b.product_id = p.id
		WHERE b.is_active = TRUE
		GROUP BY p.name ORDER BY count DESC`).Scan(&rows).Error
	return rows, err
}

func (r *AnalyticsRepository) BatchesByProduct(ctx context.Context) ([]CountRow, error) {
	var rows []CountRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT p.name, COUNT(b.id) AS count
		FROM batches b
		JOIN products p ON b.product_id = p.id
		WHERE b.is_active = TRUE
		GROUP BY p.name`).Scan(&rows).Error
	return rows, err
}
