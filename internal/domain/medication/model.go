package medication

import (
	"time"

	"github.com/google/uuid"
)

// Medication types.
const (
	TypeScheduled  = "Scheduled"
	TypePRN        = "PRN"
	TypeControlled = "Controlled"
)

// ValidTimeSlots lists the administration slots in display order.
var ValidTimeSlots = []string{"Morning", "Noon", "Evening", "Night"}

// Medication maps to the medications table. TimeSlots is populated from the
// medication_time_slots join for Scheduled medications.
type Medication struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	ResidentID       uuid.UUID  `db:"resident_id" json:"resident_id"`
	MedicationName   string     `db:"medication_name" json:"medication_name"`
	Dosage           string     `db:"dosage" json:"dosage"`
	Instructions     string     `db:"instructions" json:"instructions"`
	MedicationType   string     `db:"medication_type" json:"medication_type"`
	MedicationForm   string     `db:"medication_form" json:"medication_form"`
	MedCount         *int       `db:"med_count" json:"med_count,omitempty"`
	DiscontinuedDate *time.Time `db:"discontinued_date" json:"discontinued_date,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	TimeSlots        []string   `db:"-" json:"time_slots,omitempty"`
}

// CreateRequest is the transport payload for creating a medication.
type CreateRequest struct {
	ResidentID     uuid.UUID `json:"resident_id"`
	MedicationName string    `json:"medication_name"`
	Dosage         string    `json:"dosage"`
	Instructions   string    `json:"instructions"`
	MedicationType string    `json:"medication_type"`
	MedicationForm string    `json:"medication_form"`
	MedCount       *int      `json:"med_count,omitempty"`
	TimeSlots      []string  `json:"time_slots,omitempty"`
}

// UpdateRequest carries the editable medication details.
type UpdateRequest struct {
	MedicationName string   `json:"medication_name"`
	Dosage         string   `json:"dosage"`
	Instructions   string   `json:"instructions"`
	TimeSlots      []string `json:"time_slots,omitempty"`
}

// DiscontinueRequest identifies a medication by resident and name, matching
// how charting clients refer to medications.
type DiscontinueRequest struct {
	ResidentName   string `json:"resident_name"`
	MedicationName string `json:"medication_name"`
	Date           string `json:"date"` // YYYY-MM-DD
}

// Grouped is the per-resident medication listing: Scheduled medications keyed
// by time slot, plus flat PRN and Controlled lists.
type Grouped struct {
	Scheduled  map[string][]*Medication `json:"scheduled"`
	PRN        []*Medication            `json:"prn"`
	Controlled []*Medication            `json:"controlled"`
}
