package medication

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

const medCols = `id, resident_id, medication_name, dosage, instructions,
	medication_type, medication_form, med_count, discontinued_date, created_at`

func (r *repoPG) scanRow(row pgx.Row) (*Medication, error) {
	var m Medication
	err := row.Scan(&m.ID, &m.ResidentID, &m.MedicationName, &m.Dosage, &m.Instructions,
		&m.MedicationType, &m.MedicationForm, &m.MedCount, &m.DiscontinuedDate, &m.CreatedAt)
	return &m, err
}

func (r *repoPG) Create(ctx context.Context, m *Medication, slots []string) error {
	return db.RunInTx(ctx, r.pool, func(ctx context.Context) error {
		m.ID = uuid.New()
		if _, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO medications (id, resident_id, medication_name, dosage, instructions,
				medication_type, medication_form, med_count)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			m.ID, m.ResidentID, m.MedicationName, m.Dosage, m.Instructions,
			m.MedicationType, m.MedicationForm, m.MedCount); err != nil {
			return err
		}
		return r.linkSlots(ctx, m.ID, slots)
	})
}

func (r *repoPG) linkSlots(ctx context.Context, medicationID uuid.UUID, slots []string) error {
	for _, slot := range slots {
		if _, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO medication_time_slots (medication_id, time_slot_id)
			SELECT $1, id FROM time_slots WHERE slot_name = $2
			ON CONFLICT DO NOTHING`,
			medicationID, slot); err != nil {
			return err
		}
	}
	return nil
}

func (r *repoPG) loadSlots(ctx context.Context, medicationID uuid.UUID) ([]string, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT ts.slot_name
		FROM medication_time_slots mts
		JOIN time_slots ts ON ts.id = mts.time_slot_id
		WHERE mts.medication_id = $1
		ORDER BY CASE ts.slot_name
			WHEN 'Morning' THEN 1 WHEN 'Noon' THEN 2
			WHEN 'Evening' THEN 3 WHEN 'Night' THEN 4 ELSE 5 END`,
		medicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var slots []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Medication, error) {
	m, err := r.scanRow(r.conn(ctx).QueryRow(ctx,
		`SELECT `+medCols+` FROM medications WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	m.TimeSlots, err = r.loadSlots(ctx, m.ID)
	return m, err
}

func (r *repoPG) GetByName(ctx context.Context, residentID uuid.UUID, name string) (*Medication, error) {
	m, err := r.scanRow(r.conn(ctx).QueryRow(ctx,
		`SELECT `+medCols+` FROM medications WHERE resident_id = $1 AND medication_name = $2`,
		residentID, name))
	if err != nil {
		return nil, err
	}
	m.TimeSlots, err = r.loadSlots(ctx, m.ID)
	return m, err
}

func (r *repoPG) ListForResident(ctx context.Context, residentID uuid.UUID) ([]*Medication, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+medCols+` FROM medications WHERE resident_id = $1 ORDER BY medication_name`,
		residentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Medication
	for rows.Next() {
		m, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, m := range items {
		if m.TimeSlots, err = r.loadSlots(ctx, m.ID); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (r *repoPG) Update(ctx context.Context, m *Medication, slots []string) error {
	return db.RunInTx(ctx, r.pool, func(ctx context.Context) error {
		if _, err := r.conn(ctx).Exec(ctx, `
			UPDATE medications SET medication_name = $2, dosage = $3, instructions = $4
			WHERE id = $1`,
			m.ID, m.MedicationName, m.Dosage, m.Instructions); err != nil {
			return err
		}
		if slots == nil {
			return nil
		}
		if _, err := r.conn(ctx).Exec(ctx,
			`DELETE FROM medication_time_slots WHERE medication_id = $1`, m.ID); err != nil {
			return err
		}
		return r.linkSlots(ctx, m.ID, slots)
	})
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	return db.RunInTx(ctx, r.pool, func(ctx context.Context) error {
		if _, err := r.conn(ctx).Exec(ctx,
			`DELETE FROM medication_time_slots WHERE medication_id = $1`, id); err != nil {
			return err
		}
		if _, err := r.conn(ctx).Exec(ctx,
			`DELETE FROM emar_chart WHERE medication_id = $1`, id); err != nil {
			return err
		}
		_, err := r.conn(ctx).Exec(ctx, `DELETE FROM medications WHERE id = $1`, id)
		return err
	})
}

func (r *repoPG) Discontinue(ctx context.Context, residentName, medicationName string, date time.Time) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE medications SET discontinued_date = $3
		WHERE medication_name = $2
		  AND resident_id = (SELECT id FROM residents WHERE name = $1)
		  AND discontinued_date IS NULL`,
		residentName, medicationName, date)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *repoPG) DiscontinuedDates(ctx context.Context, residentID uuid.UUID) (map[string]time.Time, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT medication_name, discontinued_date FROM medications
		WHERE resident_id = $1 AND discontinued_date IS NOT NULL`,
		residentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	dates := make(map[string]time.Time)
	for rows.Next() {
		var name string
		var d time.Time
		if err := rows.Scan(&name, &d); err != nil {
			return nil, err
		}
		dates[name] = d
	}
	return dates, rows.Err()
}

func (r *repoPG) UpdateCount(ctx context.Context, id uuid.UUID, count int) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE medications SET med_count = $2 WHERE id = $1`, id, count)
	return err
}
