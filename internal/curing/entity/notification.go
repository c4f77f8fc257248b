package entity

import "time"

// Notification is an outbox row. Business transactions insert it together
// with their own writes; the dispatcher delivers it out-of-band and marks
// it dispatched, so a delivery failure can never roll back the write that
// produced it.
type Notification struct {
	ID         string    `json:"id" gorm:"primaryKey;size:32"`
	TargetRole string    `json:"target_role" gorm:"size:32;not null;index"`
	Message    string    `json:"message" gorm:"type:text;not null"`
	IsRead     bool      `json:"is_read" gorm:"not null;default:false"`
	Dispatched bool      `json:"-" gorm:"not null;default:false;index"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
