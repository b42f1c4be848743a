package medication

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	// Create inserts the medication and its time slot links in one
	// transaction.
	Create(ctx context.Context, m *Medication, slots []string) error
	GetByID(ctx context.Context, id uuid.UUID) (*Medication, error)
	GetByName(ctx context.Context, residentID uuid.UUID, name string) (*Medication, error)
	ListForResident(ctx context.Context, residentID uuid.UUID) ([]*Medication, error)
	// Update replaces the editable details and, when slots is non-nil, the
	// time slot links.
	Update(ctx context.Context, m *Medication, slots []string) error
	// Delete removes the medication, its slot links, and its chart rows in
	// one transaction.
	Delete(ctx context.Context, id uuid.UUID) error
	// Discontinue sets the discontinuation date guarded by
	// discontinued_date IS NULL. Returns the number of rows affected; 0
	// means the medication was missing or already discontinued.
	Discontinue(ctx context.Context, residentName, medicationName string, date time.Time) (int64, error)
	// DiscontinuedDates returns medication name -> discontinuation date for
	// every discontinued medication of the resident.
	DiscontinuedDates(ctx context.Context, residentID uuid.UUID) (map[string]time.Time, error)
	UpdateCount(ctx context.Context, id uuid.UUID, count int) error
}
