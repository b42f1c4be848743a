package chart

import (
	"context"
	"fmt"
	"sort"
	"strings"

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

// adlUpsertSQL writes every value column so a day's save is a full row
// replace, never a merge with what was stored before.
var adlUpsertSQL = func() string {
	var b strings.Builder
	b.WriteString("INSERT INTO adl_chart (id, resident_id, chart_date")
	for _, f := range ADLFields {
		b.WriteString(", ")
		b.WriteString(f)
	}
	b.WriteString(") VALUES ($1, $2, $3")
	for i := range ADLFields {
		fmt.Fprintf(&b, ", $%d", i+4)
	}
	b.WriteString(") ON CONFLICT (resident_id, chart_date) DO UPDATE SET ")
	for i, f := range ADLFields {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s = EXCLUDED.%s", f, f)
	}
	return b.String()
}()

var adlSelectCols = func() string {
	return "id, resident_id, chart_date, " + strings.Join(ADLFields, ", ")
}()

func (r *repoPG) ResolveResidentID(ctx context.Context, name string) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.conn(ctx).QueryRow(ctx, `SELECT id FROM residents WHERE name = $1`, name).Scan(&id)
	return id, err
}

func (r *repoPG) UpsertADLDays(ctx context.Context, residentID uuid.UUID, days map[string]map[string]string) error {
	dates := make([]string, 0, len(days))
	for date := range days {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return db.RunInTx(ctx, r.pool, func(ctx context.Context) error {
		for _, date := range dates {
			values := days[date]
			args := make([]interface{}, 0, 3+len(ADLFields))
			args = append(args, uuid.New(), residentID, date)
			for _, f := range ADLFields {
				args = append(args, values[f])
			}
			if _, err := r.conn(ctx).Exec(ctx, adlUpsertSQL, args...); err != nil {
				return fmt.Errorf("save adl day %s: %w", date, err)
			}
		}
		return nil
	})
}

func (r *repoPG) UpsertEMAREntry(ctx context.Context, residentName, medicationName, chartDate, timeSlot, value string) (int64, error) {
	// Name resolution happens inside the statement; unknown names simply
	// write no rows.
	tag, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO emar_chart (id, resident_id, medication_id, chart_date, time_slot, administered)
		SELECT $1, r.id, m.id, $4, $5, $6
		FROM residents r
		JOIN medications m ON m.resident_id = r.id
		WHERE r.name = $2 AND m.medication_name = $3
		ON CONFLICT (resident_id, medication_id, chart_date, time_slot)
		DO UPDATE SET administered = EXCLUDED.administered`,
		uuid.New(), residentName, medicationName, chartDate, timeSlot, value)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *repoPG) RecordEvent(ctx context.Context, ev *AdministrationEvent) error {
	return db.RunInTx(ctx, r.pool, func(ctx context.Context) error {
		_, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO emar_chart (id, resident_id, medication_id, chart_date, time_slot, administered, current_count, notes)
			VALUES ($1, $2, $3, $4, NULL, $5, $6, $7)`,
			uuid.New(), ev.ResidentID, ev.MedicationID, ev.DateTime, ev.Administered, ev.CurrentCount, ev.Notes)
		if err != nil {
			return err
		}
		if ev.NewMedCount != nil {
			_, err = r.conn(ctx).Exec(ctx,
				`UPDATE medications SET med_count = $2 WHERE id = $1`,
				ev.MedicationID, *ev.NewMedCount)
		}
		return err
	})
}

func (r *repoPG) scanADLRow(row pgx.Row) (*ADLRow, error) {
	var a ADLRow
	values := make([]string, len(ADLFields))
	dest := make([]interface{}, 0, 3+len(ADLFields))
	dest = append(dest, &a.ID, &a.ResidentID, &a.ChartDate)
	for i := range values {
		dest = append(dest, &values[i])
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	a.Values = make(map[string]string, len(ADLFields))
	for i, f := range ADLFields {
		a.Values[f] = values[i]
	}
	return &a, nil
}

func (r *repoPG) ADLMonth(ctx context.Context, residentID uuid.UUID, yearMonth string) ([]*ADLRow, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+adlSelectCols+` FROM adl_chart
		 WHERE resident_id = $1 AND chart_date LIKE $2 || '-%'
		 ORDER BY chart_date`,
		residentID, yearMonth)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*ADLRow
	for rows.Next() {
		a, err := r.scanADLRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func (r *repoPG) ADLDay(ctx context.Context, residentID uuid.UUID, chartDate string) (*ADLRow, error) {
	return r.scanADLRow(r.conn(ctx).QueryRow(ctx,
		`SELECT `+adlSelectCols+` FROM adl_chart WHERE resident_id = $1 AND chart_date = $2`,
		residentID, chartDate))
}

func (r *repoPG) EMARMonth(ctx context.Context, residentID uuid.UUID, yearMonth string) ([]*EMARRow, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT e.id, e.resident_id, e.medication_id, m.medication_name,
		       e.chart_date, e.time_slot, e.administered, e.current_count, e.notes
		FROM emar_chart e
		JOIN medications m ON m.id = e.medication_id
		WHERE e.resident_id = $1 AND e.chart_date LIKE $2 || '-%'
		ORDER BY e.chart_date, m.medication_name`,
		residentID, yearMonth)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*EMARRow
	for rows.Next() {
		var e EMARRow
		if err := rows.Scan(&e.ID, &e.ResidentID, &e.MedicationID, &e.MedicationName,
			&e.ChartDate, &e.TimeSlot, &e.Administered, &e.CurrentCount, &e.Notes); err != nil {
			return nil, err
		}
		items = append(items, &e)
	}
	return items, rows.Err()
}

func (r *repoPG) MedicationsForResident(ctx context.Context, residentID uuid.UUID) ([]*MedicationInfo, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, medication_name, dosage, instructions, medication_type, med_count, discontinued_date
		FROM medications WHERE resident_id = $1 ORDER BY medication_name`,
		residentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*MedicationInfo
	for rows.Next() {
		var m MedicationInfo
		if err := rows.Scan(&m.ID, &m.Name, &m.Dosage, &m.Instructions, &m.Type,
			&m.MedCount, &m.DiscontinuedDate); err != nil {
			return nil, err
		}
		items = append(items, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, m := range items {
		if m.Type != TypeScheduled {
			continue
		}
		if m.TimeSlots, err = r.loadSlots(ctx, m.ID); err != nil {
			return nil, err
		}
	}
	return items, nil
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
