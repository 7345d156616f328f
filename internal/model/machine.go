package model

import "time"

// Machine represents a machine on the shop floor, e.g. "RBG-01" in "Halle 2".
type Machine struct {
	ID           int64  `gorm:"primaryKey" json:"id"`
	Name         string `gorm:"size:100;not null" json:"name"`
	Location     string `gorm:"size:100" json:"location"`
	Manufacturer string `gorm:"size:100" json:"manufacturer"`
	IsActive     bool   `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"-"`

	// Associations
	Entries []ShiftEntry `gorm:"foreignKey:MachineID" json:"-"`
}
