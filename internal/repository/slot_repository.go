package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/unifiedmentor/appointment-portal/internal/model"
)

type SlotRepository struct {
	pool *pgxpool.Pool
}

func NewSlotRepository(pool *pgxpool.Pool) *SlotRepository {
	return &SlotRepository{pool: pool}
}

const slotColumns = `id, teacher_id, teacher_name, slot_date, start_time, end_time, booked, created_at`

func scanSlot(row pgx.Row) (*model.AvailabilitySlot, error) {
	var slot model.AvailabilitySlot
	err := row.Scan(
		&slot.ID,
		&slot.TeacherID,
		&slot.TeacherName,
		&slot.Date,
		&slot.StartTime,
		&slot.EndTime,
		&slot.Booked,
		&slot.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

// Create inserts a new availability slot.
func (r *SlotRepository) Create(ctx context.Context, slot *model.AvailabilitySlot) error {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}

	query := `
		INSERT INTO availability_slots (id, teacher_id, teacher_name, slot_date, start_time, end_time, booked)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		slot.ID,
		slot.TeacherID,
		slot.TeacherName,
		slot.Date,
		slot.StartTime,
		slot.EndTime,
		slot.Booked,
	).Scan(&slot.CreatedAt)

	if err != nil {
		return fmt.Errorf("create slot: %w", err)
	}

	return nil
}

// GetByID fetches a slot by ID.
func (r *SlotRepository) GetByID(ctx context.Context, id string) (*model.AvailabilitySlot, error) {
	query := `SELECT ` + slotColumns + ` FROM availability_slots WHERE id = $1`

	slot, err := scanSlot(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get slot by id: %w", err)
	}

	return slot, nil
}

// ListByTeacher returns all of a teacher's slots, booked ones included.
func (r *SlotRepository) ListByTeacher(ctx context.Context, teacherID string) ([]*model.AvailabilitySlot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM availability_slots
		WHERE teacher_id = $1
		ORDER BY slot_date, start_time
	`

	return r.list(ctx, query, teacherID)
}

// ListOpenByTeacher returns a teacher's unbooked slots dated fromDate or
// later, ordered by date.
func (r *SlotRepository) ListOpenByTeacher(ctx context.Context, teacherID, fromDate string) ([]*model.AvailabilitySlot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM availability_slots
		WHERE teacher_id = $1
		  AND booked = false
		  AND slot_date >= $2
		ORDER BY slot_date, start_time
	`

	return r.list(ctx, query, teacherID, fromDate)
}

func (r *SlotRepository) list(ctx context.Context, query string, args ...interface{}) ([]*model.AvailabilitySlot, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()

	var slots []*model.AvailabilitySlot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slots: %w", err)
	}

	return slots, nil
}

// Delete removes a slot. A slot still referenced by a pending or confirmed
// appointment is refused, so an appointment can never be orphaned.
func (r *SlotRepository) Delete(ctx context.Context, id, teacherID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var ownerID string
	err = tx.QueryRow(ctx,
		`SELECT teacher_id FROM availability_slots WHERE id = $1 FOR UPDATE`, id,
	).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("lock slot: %w", err)
	}
	if ownerID != teacherID {
		return ErrNotFound
	}

	var active int
	err = tx.QueryRow(ctx,
		`SELECT count(*) FROM appointments WHERE slot_id = $1 AND status <> 'cancelled'`, id,
	).Scan(&active)
	if err != nil {
		return fmt.Errorf("count slot appointments: %w", err)
	}
	if active > 0 {
		return ErrSlotReferenced
	}

	if _, err := tx.Exec(ctx, `DELETE FROM availability_slots WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
