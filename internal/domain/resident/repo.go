package resident

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, r *Resident) error
	GetByID(ctx context.Context, id uuid.UUID) (*Resident, error)
	GetByName(ctx context.Context, name string) (*Resident, error)
	List(ctx context.Context, limit, offset int) ([]*Resident, int, error)
	ListNames(ctx context.Context) ([]string, error)
	Update(ctx context.Context, r *Resident) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int, error)
}
