package entity

import "time"

// Phase tags a measurement within the curing process. Two tags carry
// lifecycle meaning: PhaseProduction is the single start-of-process
// baseline per trolley, PhasePackaging is the terminal reading taken
// when a trolley is packed. Every other value is a free monitoring tag
// (e.g. "HOLDING") appended during the holding period.
type Phase string

const (
	PhaseProduction Phase = "PRODUCTION"
	PhasePackaging  Phase = "PACKAGING"
)

// IsBaseline reports whether the phase is the baseline tag.
func (p Phase) IsBaseline() bool {
	return p == PhaseProduction
}

// IsTerminal reports whether the phase is the packaging tag.
func (p Phase) IsTerminal() bool {
	return p == PhasePackaging
}

// StickUnitWeight is the fixed per-stick weight in kg used when deriving
// net weight: net = gross - tare - stick_count * StickUnitWeight.
const StickUnitWeight = 0.4

// Measurement is one ledger entry for a trolley. Baseline rows are
// upserted (at most one per trolley, enforced by a partial unique index);
// monitoring and terminal rows are append-only.
type Measurement struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	TrolleyID   string    `json:"trolley_id" gorm:"size:32;not null;index"`
	Phase       Phase     `json:"phase" gorm:"size:32;not null"`
	GrossWeight *float64  `json:"gross_weight" gorm:"type:numeric(10,2)"`
	PHValue     *float64  `json:"ph_value" gorm:"type:numeric(4,2)"`
	PieceCount  *int      `json:"piece_count"`
	MeasuredAt  time.Time `json:"measured_at" gorm:"not null;index"`
	CreatedAt   time.Time `json:"created_at"`

	Trolley *Trolley `json:"trolley,omitempty" gorm:"foreignKey:TrolleyID"`
}

func (Measurement) TableName() string {
	return "measurements"
}

// NetWeight derives the net weight of a reading against the trolley
// configuration it was taken on.
func NetWeight(gross, tare float64, stickCount int) float64 {
	return gross - tare - float64(stickCount)*StickUnitWeight
}
