package audit

import "context"

type Repository interface {
	Insert(ctx context.Context, e *Entry) error
	List(ctx context.Context, limit, offset int) ([]*Entry, int, error)
	ListByUsername(ctx context.Context, username string, limit, offset int) ([]*Entry, int, error)
}
