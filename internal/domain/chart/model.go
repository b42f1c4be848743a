package chart

import (
	"time"

	"github.com/google/uuid"
)

// ADLFields lists the adl_chart value columns in schema order. A day's save
// always writes every one of them.
var ADLFields = []string{
	"first_shift_sp",
	"second_shift_sp",
	"first_shift_activity1",
	"first_shift_activity2",
	"first_shift_activity3",
	"second_shift_activity4",
	"first_shift_bm",
	"second_shift_bm",
	"shower",
	"shampoo",
	"sponge_bath",
	"peri_care_am",
	"peri_care_pm",
	"oral_care_am",
	"oral_care_pm",
	"nail_care",
	"skin_care",
	"shave",
	"breakfast",
	"lunch",
	"dinner",
	"snack_am",
	"snack_pm",
	"water_intake",
}

// ADLRow is one resident-day of ADL charting. Values holds every field in
// ADLFields; absent entries read as empty strings.
type ADLRow struct {
	ID         uuid.UUID         `json:"id"`
	ResidentID uuid.UUID         `json:"resident_id"`
	ChartDate  string            `json:"chart_date"` // YYYY-MM-DD
	Values     map[string]string `json:"values"`
}

// EMARRow is one stored eMAR cell. Scheduled rows carry a YYYY-MM-DD
// ChartDate and a TimeSlot; PRN and Controlled rows carry a
// "YYYY-MM-DD HH:MM" ChartDate and a nil TimeSlot so the per-event rows are
// never coalesced by the storage unique index.
type EMARRow struct {
	ID             uuid.UUID `json:"id"`
	ResidentID     uuid.UUID `json:"resident_id"`
	MedicationID   uuid.UUID `json:"medication_id"`
	MedicationName string    `json:"medication_name"`
	ChartDate      string    `json:"chart_date"`
	TimeSlot       *string   `json:"time_slot,omitempty"`
	Administered   string    `json:"administered"`
	CurrentCount   *int      `json:"current_count,omitempty"`
	Notes          string    `json:"notes"`
}

// ADLEdit is one typed cell edit for the ADL grid.
type ADLEdit struct {
	Day   int    `json:"day"`
	Field string `json:"field"`
	Value string `json:"value"`
}

// EMAREdit is one typed cell edit for the eMAR grid. Medication and TimeSlot
// are names; resolution to ids happens inside the upsert.
type EMAREdit struct {
	Medication string `json:"medication"`
	TimeSlot   string `json:"time_slot"`
	Day        int    `json:"day"`
	Value      string `json:"value"`
}

// SaveResult reports the outcome of an eMAR batch save.
type SaveResult struct {
	Saved       int      `json:"saved"`
	Skipped     int      `json:"skipped"`
	SkippedKeys []string `json:"skipped_keys,omitempty"`
}

// MedicationInfo is the slice of the medication catalogue the projector
// needs.
type MedicationInfo struct {
	ID               uuid.UUID
	Name             string
	Dosage           string
	Instructions     string
	Type             string // Scheduled, PRN, Controlled
	TimeSlots        []string
	MedCount         *int
	DiscontinuedDate *time.Time
}

// AdministrationEvent is one PRN or Controlled administration. NewMedCount,
// when set, also updates the medication's remaining count in the same
// transaction.
type AdministrationEvent struct {
	ResidentID   uuid.UUID
	MedicationID uuid.UUID
	DateTime     string // YYYY-MM-DD HH:MM
	Administered string // administering staff initials
	Notes        string
	CurrentCount *int
	NewMedCount  *int
}

// Medication types as stored in the catalogue.
const (
	TypeScheduled  = "Scheduled"
	TypePRN        = "PRN"
	TypeControlled = "Controlled"
)

// Markers used by the monthly eMAR projection.
const (
	MarkerAdministered = "ADM"
	MarkerDiscontinued = "DC"
	lastProjectionDay  = 31
)

// ProjectionRow is one marker row of a projected medication: a time slot row
// for Scheduled medications, or the single event row (empty TimeSlot) for
// PRN and Controlled.
type ProjectionRow struct {
	TimeSlot string         `json:"time_slot,omitempty"`
	Days     map[int]string `json:"days"`
}

// ProjectedMedication is one medication's month of markers.
type ProjectedMedication struct {
	MedicationName   string           `json:"medication_name"`
	MedicationType   string           `json:"medication_type"`
	Dosage           string           `json:"dosage"`
	Instructions     string           `json:"instructions"`
	DiscontinuedDate string           `json:"discontinued_date,omitempty"`
	Rows             []*ProjectionRow `json:"rows"`
}

// MonthProjection is the read-side eMAR month for one resident.
type MonthProjection struct {
	YearMonth   string                 `json:"year_month"`
	Medications []*ProjectedMedication `json:"medications"`
}
