package entity

import "time"

// User roles. There is no permission matrix beyond the role string; the
// UI decides what to render and the admin-only routes check the role.
const (
	RoleAdmin    = "admin"
	RoleCEO      = "ceo"
	RoleOperator = "operator"
)

type User struct {
	ID           string    `json:"id" gorm:"primaryKey;size:32"`
	Username     string    `json:"username" gorm:"size:64;not null;uniqueIndex"`
	PasswordHash string    `json:"-" gorm:"size:128;not null"`
	Role         string    `json:"role" gorm:"size:32;not null;default:operator"`
	FirstName    string    `json:"first_name" gorm:"size:64"`
	LastName     string    `json:"last_name" gorm:"size:64"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
