package resident

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/caretech/carechart/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const residentCols = `id, name, date_of_birth, level_of_care, created_at`

func (r *repoPG) scanRow(row pgx.Row) (*Resident, error) {
	var res Resident
	err := row.Scan(&res.ID, &res.Name, &res.DateOfBirth, &res.LevelOfCare, &res.CreatedAt)
	return &res, err
}

func (r *repoPG) Create(ctx context.Context, res *Resident) error {
	res.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO residents (id, name, date_of_birth, level_of_care)
		VALUES ($1, $2, $3, $4)`,
		res.ID, res.Name, res.DateOfBirth, res.LevelOfCare)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Resident, error) {
	return r.scanRow(r.conn(ctx).QueryRow(ctx,
		`SELECT `+residentCols+` FROM residents WHERE id = $1`, id))
}

func (r *repoPG) GetByName(ctx context.Context, name string) (*Resident, error) {
	return r.scanRow(r.conn(ctx).QueryRow(ctx,
		`SELECT `+residentCols+` FROM residents WHERE name = $1`, name))
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Resident, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM residents`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+residentCols+` FROM residents ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Resident
	for rows.Next() {
		res, err := r.scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, res)
	}
	return items, total, rows.Err()
}

func (r *repoPG) ListNames(ctx context.Context) ([]string, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT name FROM residents ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

func (r *repoPG) Update(ctx context.Context, res *Resident) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE residents SET name = $2, date_of_birth = $3, level_of_care = $4
		WHERE id = $1`,
		res.ID, res.Name, res.DateOfBirth, res.LevelOfCare)
	return err
}

// Delete removes the resident together with their charts, medications, and
// orders. The schema carries no ON DELETE CASCADE, so the dependents go
// first, inside one transaction.
func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	return db.RunInTx(ctx, r.pool, func(ctx context.Context) error {
		stmts := []string{
			`DELETE FROM emar_chart WHERE resident_id = $1`,
			`DELETE FROM adl_chart WHERE resident_id = $1`,
			`DELETE FROM medication_time_slots WHERE medication_id IN
				(SELECT id FROM medications WHERE resident_id = $1)`,
			`DELETE FROM medications WHERE resident_id = $1`,
			`DELETE FROM non_med_order_administrations WHERE resident_id = $1`,
			`DELETE FROM non_medication_orders WHERE resident_id = $1`,
			`DELETE FROM residents WHERE id = $1`,
		}
		for _, stmt := range stmts {
			if _, err := r.conn(ctx).Exec(ctx, stmt, id); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repoPG) Count(ctx context.Context) (int, error) {
	var total int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM residents`).Scan(&total)
	return total, err
}
