package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("integrity conflict")
)

// Repositories bundles the per-entity data access objects.
type Repositories struct {
	Product      *ProductRepository
	Batch        *BatchRepository
	Trolley      *TrolleyRepository
	Measurement  *MeasurementRepository
	User         *UserRepository
	Notification *NotificationRepository
	Analytics    *AnalyticsRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Product:      NewProductRepository(db),
		Batch:        NewBatchRepository(db),
		Trolley:      NewTrolleyRepository(db),
		Measurement:  NewMeasurementRepository(db),
		User:         NewUserRepository(db),
		Notification: NewNotificationRepository(db),
		Analytics:    NewAnalyticsRepository(db),
	}
}

// Translate maps driver-level errors onto the repository taxonomy.
// Requires gorm.Config.TranslateError so unique and foreign key
// violations surface as gorm sentinel errors.
func Translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrConflict
	default:
		return err
	}
}
