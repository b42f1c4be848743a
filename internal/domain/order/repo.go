package order

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	ListForResident(ctx context.Context, residentID uuid.UUID) ([]*Order, error)
	Update(ctx context.Context, o *Order) error
	// Delete removes the order and its administrations in one transaction.
	Delete(ctx context.Context, id uuid.UUID) error
	// Discontinue sets the discontinuation date guarded by
	// discontinued_date IS NULL. Returns the number of rows affected.
	Discontinue(ctx context.Context, id uuid.UUID, date time.Time) (int64, error)
	// RecordAdministration appends an administration row and advances
	// last_administered_date in one transaction.
	RecordAdministration(ctx context.Context, a *Administration) error
	// MonthAdministrations lists administrations for an order within the
	// given YYYY-MM month.
	MonthAdministrations(ctx context.Context, orderID uuid.UUID, yearMonth string) ([]*Administration, error)
}
