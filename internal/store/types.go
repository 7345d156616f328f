package store

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"schichtbuch-backend/internal/model"
)

// ValidationError maps submitted field names to messages. The operation that
// produced it has not been performed.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("validation failed")
	for _, k := range keys {
		fmt.Fprintf(&b, "; %s: %s", k, e.Fields[k])
	}
	return b.String()
}

// NewValidationError returns an empty validation error to collect field
// messages into.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add records a message for a field; the first message per field wins.
func (e *ValidationError) Add(field, msg string) {
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// OrNil returns the error itself when any field message was recorded, and
// nil otherwise.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// MediaFile is an already stored upload to attach to an entry.
type MediaFile struct {
	Path    string // relative to the media root
	Comment string
}

// NewEntryInput carries the validated base fields for a new shift entry.
type NewEntryInput struct {
	Date            time.Time
	EventTime       *time.Time
	Shift           model.Shift
	MachineID       int64
	Category        model.Category
	Title           string
	Description     string
	DurationMinutes *int
	Priority        int
	Status          model.Status
}

// SparePartUsage is the spare-part portion of an update submission.
type SparePartUsage struct {
	Used              bool
	SAPNumber         string
	Description       string
	QuantityUsed      int
	QuantityRemaining *int
}

// EntryUpdateInput carries a follow-up submission for an existing entry.
type EntryUpdateInput struct {
	Comment    string
	ActionTime time.Time
	NewStatus  *model.Status
	SparePart  *SparePartUsage
}

// EntryFilter selects and pages the entry list.
type EntryFilter struct {
	MachineID *int64
	Status    model.Status
	Shift     model.Shift
	Category  model.Category
	From      *time.Time
	To        *time.Time
	Query     string // free text over title and description
	Page      int
	PageSize  int
}

// Dashboard aggregates the counters for the overview page.
type Dashboard struct {
	EntriesToday int64              `json:"entries_today"`
	EntriesWeek  int64              `json:"entries_week"`
	OpenEntries  int64              `json:"open_entries"`
	DoneEntries  int64              `json:"done_entries"`
	Latest       []model.ShiftEntry `json:"latest"`
}
