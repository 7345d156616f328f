package model

import "time"

// Shift identifies the shift an event belongs to.
type Shift string

const (
	ShiftMorning Shift = "F" // Frühschicht
	ShiftLate    Shift = "S" // Spätschicht
	ShiftNight   Shift = "N" // Nachtschicht
)

// Category classifies the kind of event recorded in an entry.
type Category string

const (
	CategoryFault       Category = "STOER" // Störung
	CategoryMaintenance Category = "WART"  // Wartung
	CategoryRework      Category = "UMBAU" // Umbau
	CategoryInspection  Category = "KONT"  // Kontrolle / Inspektion
)

// Status is the processing state of an entry.
type Status string

const (
	StatusOpen       Status = "OFFEN"
	StatusInProgress Status = "IN_ARB"
	StatusDone       Status = "ERLED"
)

// ValidShift reports whether s is a known shift code.
func ValidShift(s Shift) bool {
	switch s {
	case ShiftMorning, ShiftLate, ShiftNight:
		return true
	}
	return false
}

// ValidCategory reports whether c is a known category code.
func ValidCategory(c Category) bool {
	switch c {
	case CategoryFault, CategoryMaintenance, CategoryRework, CategoryInspection:
		return true
	}
	return false
}

// ValidStatus reports whether st is a known status code.
func ValidStatus(st Status) bool {
	switch st {
	case StatusOpen, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// ShiftEntry describes one event at a machine (fault, maintenance, rework,
// inspection) within a shift. It is the central record of the logbook.
type ShiftEntry struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"-"`

	// Date and optional time of the event itself, not of record creation.
	Date      time.Time  `gorm:"type:date;not null;index" json:"date"`
	EventTime *time.Time `json:"event_time,omitempty"`

	Shift    Shift    `gorm:"size:1;not null;index" json:"shift"`
	Category Category `gorm:"size:10;not null;index" json:"category"`

	UserID    int64 `gorm:"not null;index" json:"user_id"`
	MachineID int64 `gorm:"not null;index" json:"machine_id"`

	Title           string `gorm:"size:200;not null" json:"title"`
	Description     string `gorm:"type:text" json:"description"`
	DurationMinutes *int   `json:"duration_minutes,omitempty"`
	Priority        int    `gorm:"not null;default:2" json:"priority"` // 1 = high, 2 = normal, 3 = low
	Status          Status `gorm:"size:10;not null;default:OFFEN;index" json:"status"`

	// Spare-part bookkeeping. Per-part data lives in SparePart rows; the flag
	// here marks that any consumption was recorded at all, and the processed
	// fields track the SAP booking confirmation by a supervisor or admin.
	// Serialized via the detail response only, behind the visibility rule.
	UsedSpareParts        bool       `gorm:"not null;default:false" json:"-"`
	SparePartsProcessed   bool       `gorm:"not null;default:false" json:"-"`
	SparePartsProcessedBy *int64     `json:"-"`
	SparePartsProcessedAt *time.Time `json:"-"`

	// Associations
	User       User              `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Machine    Machine           `gorm:"constraint:OnDelete:CASCADE" json:"machine"`
	SpareParts []SparePart       `gorm:"foreignKey:EntryID" json:"-"`
	Images     []ShiftEntryImage `gorm:"foreignKey:EntryID" json:"images"`
	Videos     []ShiftEntryVideo `gorm:"foreignKey:EntryID" json:"videos"`
	Updates    []ShiftEntryUpdate `gorm:"foreignKey:EntryID" json:"updates"`
	Likes      []Like            `gorm:"foreignKey:EntryID" json:"-"`
}
