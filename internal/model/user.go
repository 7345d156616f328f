package model

import "time"

// Role classifies what a user is allowed to do beyond plain entry writing.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleSupervisor Role = "SUPERVISOR" // "Meister" in the plant
	RoleWorker     Role = "WORKER"
)

// User represents an employee account.
type User struct {
	ID           int64  `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"uniqueIndex;size:150;not null" json:"username"`
	DisplayName  string `gorm:"size:200" json:"display_name"`
	PasswordHash string `gorm:"size:128;not null" json:"-"`
	Role         Role   `gorm:"size:16;not null;default:WORKER" json:"role"`
	IsActive     bool   `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"-"`
}
