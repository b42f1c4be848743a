package order

import (
	"context"
	"time"

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

const orderCols = `id, resident_id, order_name, frequency, specific_days,
	special_instructions, discontinued_date, last_administered_date, created_at`

func (r *repoPG) scanRow(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.ResidentID, &o.OrderName, &o.Frequency, &o.SpecificDays,
		&o.SpecialInstructions, &o.DiscontinuedDate, &o.LastAdministeredDate, &o.CreatedAt)
	return &o, err
}

func (r *repoPG) Create(ctx context.Context, o *Order) error {
	o.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO non_medication_orders (id, resident_id, order_name, frequency, specific_days, special_instructions)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		o.ID, o.ResidentID, o.OrderName, o.Frequency, o.SpecificDays, o.SpecialInstructions)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	return r.scanRow(r.conn(ctx).QueryRow(ctx,
		`SELECT `+orderCols+` FROM non_medication_orders WHERE id = $1`, id))
}

func (r *repoPG) ListForResident(ctx context.Context, residentID uuid.UUID) ([]*Order, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+orderCols+` FROM non_medication_orders WHERE resident_id = $1 ORDER BY order_name`,
		residentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Order
	for rows.Next() {
		o, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	return items, rows.Err()
}

// Update leaves stored values in place for empty incoming fields, matching
// the COALESCE/NULLIF shape charting clients rely on for partial edits.
func (r *repoPG) Update(ctx context.Context, o *Order) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE non_medication_orders SET
			order_name = COALESCE(NULLIF($2, ''), order_name),
			frequency = COALESCE($3, frequency),
			specific_days = COALESCE(NULLIF($4, ''), specific_days),
			special_instructions = COALESCE(NULLIF($5, ''), special_instructions)
		WHERE id = $1`,
		o.ID, o.OrderName, o.Frequency, stringOrEmpty(o.SpecificDays), o.SpecialInstructions)
	return err
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	return db.RunInTx(ctx, r.pool, func(ctx context.Context) error {
		if _, err := r.conn(ctx).Exec(ctx,
			`DELETE FROM non_med_order_administrations WHERE order_id = $1`, id); err != nil {
			return err
		}
		_, err := r.conn(ctx).Exec(ctx, `DELETE FROM non_medication_orders WHERE id = $1`, id)
		return err
	})
}

func (r *repoPG) Discontinue(ctx context.Context, id uuid.UUID, date time.Time) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE non_medication_orders SET discontinued_date = $2
		WHERE id = $1 AND discontinued_date IS NULL`,
		id, date)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *repoPG) RecordAdministration(ctx context.Context, a *Administration) error {
	return db.RunInTx(ctx, r.pool, func(ctx context.Context) error {
		a.ID = uuid.New()
		if _, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO non_med_order_administrations (id, order_id, resident_id, administration_date, notes, initials)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			a.ID, a.OrderID, a.ResidentID, a.AdministrationDate, a.Notes, a.Initials); err != nil {
			return err
		}
		_, err := r.conn(ctx).Exec(ctx, `
			UPDATE non_medication_orders SET last_administered_date = $2 WHERE id = $1`,
			a.OrderID, a.AdministrationDate)
		return err
	})
}

func (r *repoPG) MonthAdministrations(ctx context.Context, orderID uuid.UUID, yearMonth string) ([]*Administration, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, order_id, resident_id, administration_date, notes, initials
		FROM non_med_order_administrations
		WHERE order_id = $1 AND to_char(administration_date, 'YYYY-MM') = $2
		ORDER BY administration_date`,
		orderID, yearMonth)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Administration
	for rows.Next() {
		var a Administration
		if err := rows.Scan(&a.ID, &a.OrderID, &a.ResidentID, &a.AdministrationDate, &a.Notes, &a.Initials); err != nil {
			return nil, err
		}
		items = append(items, &a)
	}
	return items, rows.Err()
}
