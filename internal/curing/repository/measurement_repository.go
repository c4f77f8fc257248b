package repository

import (
	"context"
	"time"

	"github.com/naleksandarn/fermented-sausages/internal/curing/entity"
	"gorm.io/gorm"
)

type MeasurementRepository struct {
	db *gorm.DB
}

func NewMeasurementRepository(db *gorm.DB) *MeasurementRepository {
	return &MeasurementRepository{db: db}
}

func (r *MeasurementRepository) FindByID(ctx context.Context, id string) (*entity.Measurement, error) {
	var m entity.Measurement
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, Translate(err)
	}
	return &m, nil
}

func (r *MeasurementRepository) ListByTrolley(ctx context.Context, trolleyID string) ([]entity.Measurement, error) {
	var ms []entity.Measurement
	err := r.db.WithContext(ctx).
		Where("trolley_id = ?", trolleyID).
		Order("measured_at DESC").
		Find(&ms).Error
	return ms, err
}

// UpdateRow overwrites the editable fields of a single measurement. This
// is the manual-correction path; it is a plain single-row update, not part
// of the recorder's transaction.
func (r *MeasurementRepository) UpdateRow(ctx context.Context, id string, gross *float64, ph *float64, pieces *int, measuredAt time.Time) error {
	res := r.db.WithContext(ctx).Model(&entity.Measurement{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"gross_weight": gross,
			"ph_value":     ph,
			"piece_count":  pieces,
			"measured_at":  measuredAt,
		})
	if res.Error != nil {
		return Translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MeasurementRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&entity.Measurement{}, "id = ?", id)
	if res.Error != nil {
		return Translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
