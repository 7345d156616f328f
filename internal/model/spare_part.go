package model

import "time"

// SparePart records spare-part consumption for one entry, one row per SAP
// number. Repeated consumption of the same part accumulates QuantityUsed and
// overwrites QuantityRemaining instead of creating a second row.
type SparePart struct {
	ID      int64 `gorm:"primaryKey" json:"id"`
	EntryID int64 `gorm:"not null;uniqueIndex:idx_spare_parts_entry_sap" json:"entry_id"`

	SAPNumber   string `gorm:"column:sap_number;size:50;not null;uniqueIndex:idx_spare_parts_entry_sap" json:"sap_number"`
	Description string `gorm:"size:255" json:"description"`

	QuantityUsed      int `gorm:"not null;default:0" json:"quantity_used"`
	QuantityRemaining int `gorm:"not null;default:0" json:"quantity_remaining"`

	CreatedByID *int64    `json:"created_by,omitempty"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"-"`

	// Associations
	Entry ShiftEntry `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
