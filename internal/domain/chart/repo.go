package chart

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the storage surface for charting. Multi-statement
// operations run their own transaction internally.
type Repository interface {
	// ResolveResidentID maps a resident name to its id. Returns
	// pgx.ErrNoRows when the name is unknown.
	ResolveResidentID(ctx context.Context, name string) (uuid.UUID, error)

	// UpsertADLDays replaces the full value set for each given day in a
	// single transaction. Keys of days are YYYY-MM-DD dates; each value map
	// must contain every ADLFields entry.
	UpsertADLDays(ctx context.Context, residentID uuid.UUID, days map[string]map[string]string) error

	// UpsertEMAREntry saves one scheduled-medication cell, resolving the
	// resident and medication names inline. It reports the number of rows
	// written: zero means the names did not resolve and the cell was
	// skipped.
	UpsertEMAREntry(ctx context.Context, residentName, medicationName, chartDate, timeSlot, value string) (int64, error)

	// RecordEvent inserts one PRN or Controlled administration row and,
	// when the event carries a NewMedCount, updates the medication's
	// remaining count in the same transaction.
	RecordEvent(ctx context.Context, ev *AdministrationEvent) error

	// ADLMonth returns the resident's ADL rows for a YYYY-MM month,
	// ordered by chart date.
	ADLMonth(ctx context.Context, residentID uuid.UUID, yearMonth string) ([]*ADLRow, error)

	// ADLDay returns one resident-day, or pgx.ErrNoRows.
	ADLDay(ctx context.Context, residentID uuid.UUID, chartDate string) (*ADLRow, error)

	// EMARMonth returns the resident's eMAR rows for a YYYY-MM month,
	// scheduled and event rows alike.
	EMARMonth(ctx context.Context, residentID uuid.UUID, yearMonth string) ([]*EMARRow, error)

	// MedicationsForResident returns the resident's medication catalogue,
	// discontinued entries included.
	MedicationsForResident(ctx context.Context, residentID uuid.UUID) ([]*MedicationInfo, error)
}
