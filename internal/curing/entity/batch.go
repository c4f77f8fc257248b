package entity

import "time"

// Batch is one production run of a product. It owns its trolleys
// exclusively: deleting a batch cascades to trolleys and their
// measurements. is_active flips to false exactly once, when the last
// trolley is packed.
type Batch struct {
	ID             string    `json:"id" gorm:"primaryKey;size:32"`
	ProductID      string    `json:"product_id" gorm:"size:32;not null;index"`
	BatchCode      string    `json:"batch_code" gorm:"size:64;not null"`
	LotNumber      string    `json:"lot_number" gorm:"size:64;not null;index"`
	CurrentChamber string    `json:"current_chamber" gorm:"size:64"`
	ProductionDate time.Time `json:"production_date" gorm:"type:date;not null"`
	IsActive       bool      `json:"is_active" gorm:"not null;default:true;index"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Product  *Product  `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Trolleys []Trolley `json:"trolleys,omitempty" gorm:"foreignKey:BatchID;constraint:OnDelete:CASCADE"`
}

func (Batch) TableName() string {
	return "batches"
}

// Trolley is the physical carrier and the unit of weighing and packaging.
// trolley_number is assigned max+1 within the batch and never reused,
// even after deletions.
type Trolley struct {
	ID            string    `json:"id" gorm:"primaryKey;size:32"`
	BatchID       string    `json:"batch_id" gorm:"size:32;not null;index"`
	TrolleyNumber int       `json:"trolley_number" gorm:"not null"`
	TareWeight    float64   `json:"tare_weight" gorm:"type:numeric(8,2);not null;default:40"`
	StickCount    int       `json:"stick_count" gorm:"not null;default:0"`
	IsPacked      bool      `json:"is_packed" gorm:"not null;default:false;index"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Batch        *Batch        `json:"batch,omitempty" gorm:"foreignKey:BatchID"`
	Measurements []Measurement `json:"measurements,omitempty" gorm:"foreignKey:TrolleyID;constraint:OnDelete:CASCADE"`
}

func (Trolley) TableName() string {
	return "trolleys"
}
