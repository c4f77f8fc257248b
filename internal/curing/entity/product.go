package entity

import "time"

// Product is a curing recipe template. Its default_* columns seed the
// trolleys created at batch creation time.
type Product struct {
	ID                     string    `json:"id" gorm:"primaryKey;size:32"`
	Code                   string    `json:"code" gorm:"size:32;not null;uniqueIndex"`
	Name                   string    `json:"name" gorm:"size:128;not null"`
	TargetDurationDays     int       `json:"target_duration_days" gorm:"not null;default:0"`
	StandardLossPercentage float64   `json:"standard_loss_percentage" gorm:"type:numeric(5,2);default:0"`
	DefaultTrolleyWeight   float64   `json:"default_trolley_weight" gorm:"type:numeric(8,2);default:40"`
	DefaultStickCount      int       `json:"default_stick_count" gorm:"default:0"`
	DefaultPieceCount      int       `json:"default_piece_count" gorm:"default:0"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}
