package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/unifiedmentor/appointment-portal/internal/model"
)

type AppointmentRepository struct {
	pool *pgxpool.Pool
}

func NewAppointmentRepository(pool *pgxpool.Pool) *AppointmentRepository {
	return &AppointmentRepository{pool: pool}
}

const appointmentColumns = `id, student_id, teacher_id, slot_id, slot_date, slot_time, purpose, status, created_at`

func scanAppointment(row pgx.Row) (*model.Appointment, error) {
	var appt model.Appointment
	err := row.Scan(
		&appt.ID,
		&appt.StudentID,
		&appt.TeacherID,
		&appt.SlotID,
		&appt.Date,
		&appt.Time,
		&appt.Purpose,
		&appt.Status,
		&appt.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

// CreateForSlot books a slot for a student. The slot row is locked for the
// duration of the check-and-insert, so two concurrent requests for the same
// slot cannot both succeed: the slot must be unbooked and carry no other
// non-cancelled appointment at insert time. Date, time and teacher are copied
// from the locked slot row.
func (r *AppointmentRepository) CreateForSlot(ctx context.Context, studentID, slotID, purpose string) (*model.Appointment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var slot model.AvailabilitySlot
	err = tx.QueryRow(ctx, `
		SELECT id, teacher_id, slot_date, start_time, booked
		FROM availability_slots
		WHERE id = $1
		FOR UPDATE
	`, slotID).Scan(&slot.ID, &slot.TeacherID, &slot.Date, &slot.StartTime, &slot.Booked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lock slot: %w", err)
	}

	if slot.Booked {
		return nil, ErrSlotUnavailable
	}

	var claimed int
	err = tx.QueryRow(ctx,
		`SELECT count(*) FROM appointments WHERE slot_id = $1 AND status <> 'cancelled'`,
		slotID,
	).Scan(&claimed)
	if err != nil {
		return nil, fmt.Errorf("count slot appointments: %w", err)
	}
	if claimed > 0 {
		return nil, ErrSlotUnavailable
	}

	appt := &model.Appointment{
		ID:        uuid.NewString(),
		StudentID: studentID,
		TeacherID: slot.TeacherID,
		SlotID:    slot.ID,
		Date:      slot.Date,
		Time:      slot.StartTime,
		Purpose:   purpose,
		Status:    model.AppointmentStatusPending,
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO appointments (id, student_id, teacher_id, slot_id, slot_date, slot_time, purpose, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`,
		appt.ID,
		appt.StudentID,
		appt.TeacherID,
		appt.SlotID,
		appt.Date,
		appt.Time,
		appt.Purpose,
		appt.Status,
	).Scan(&appt.CreatedAt)
	if err != nil {
		// The partial unique index on active appointments backstops the
		// row-lock check.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrSlotUnavailable
		}
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return appt, nil
}

// GetByID fetches an appointment by ID.
func (r *AppointmentRepository) GetByID(ctx context.Context, id string) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	appt, err := scanAppointment(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get appointment by id: %w", err)
	}

	return appt, nil
}

// TransitionStatus moves an appointment from one status to another and, when
// slotBooked is non-nil, writes the slot's booked flag in the same
// transaction. The status update is guarded on the expected current status,
// so a stale or illegal transition changes nothing.
func (r *AppointmentRepository) TransitionStatus(ctx context.Context, id string, from, to model.AppointmentStatus, slotBooked *bool) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var slotID string
	err = tx.QueryRow(ctx, `
		UPDATE appointments
		SET status = $1
		WHERE id = $2 AND status = $3
		RETURNING slot_id
	`, to, id, from).Scan(&slotID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Distinguish a missing appointment from one in the wrong state.
			var exists bool
			if checkErr := r.pool.QueryRow(ctx,
				`SELECT true FROM appointments WHERE id = $1`, id,
			).Scan(&exists); checkErr != nil {
				if errors.Is(checkErr, pgx.ErrNoRows) {
					return ErrNotFound
				}
				return fmt.Errorf("check appointment: %w", checkErr)
			}
			return ErrInvalidTransition
		}
		return fmt.Errorf("update appointment status: %w", err)
	}

	if slotBooked != nil {
		result, err := tx.Exec(ctx,
			`UPDATE availability_slots SET booked = $1 WHERE id = $2`,
			*slotBooked, slotID,
		)
		if err != nil {
			return fmt.Errorf("update slot booked flag: %w", err)
		}
		if result.RowsAffected() == 0 {
			return fmt.Errorf("update slot booked flag: %w", ErrNotFound)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// ListByStudent returns a student's appointments ordered by date, each with
// the teacher's display name joined in.
func (r *AppointmentRepository) ListByStudent(ctx context.Context, studentID string) ([]*model.Appointment, error) {
	query := `
		SELECT a.id, a.student_id, a.teacher_id, a.slot_id, a.slot_date, a.slot_time,
		       a.purpose, a.status, a.created_at,
		       coalesce(u.name, 'Unknown Teacher')
		FROM appointments a
		LEFT JOIN users u ON u.id = a.teacher_id
		WHERE a.student_id = $1
		ORDER BY a.slot_date, a.slot_time
	`

	rows, err := r.pool.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("list appointments by student: %w", err)
	}
	defer rows.Close()

	var appts []*model.Appointment
	for rows.Next() {
		var appt model.Appointment
		err := rows.Scan(
			&appt.ID,
			&appt.StudentID,
			&appt.TeacherID,
			&appt.SlotID,
			&appt.Date,
			&appt.Time,
			&appt.Purpose,
			&appt.Status,
			&appt.CreatedAt,
			&appt.TeacherName,
		)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		appts = append(appts, &appt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate appointments: %w", err)
	}

	return appts, nil
}

// ListByTeacher returns a teacher's appointments ordered by date, each with
// the student's display name joined in.
func (r *AppointmentRepository) ListByTeacher(ctx context.Context, teacherID string) ([]*model.Appointment, error) {
	query := `
		SELECT a.id, a.student_id, a.teacher_id, a.slot_id, a.slot_date, a.slot_time,
		       a.purpose, a.status, a.created_at,
		       coalesce(u.name, 'Unknown Student')
		FROM appointments a
		LEFT JOIN users u ON u.id = a.student_id
		WHERE a.teacher_id = $1
		ORDER BY a.slot_date, a.slot_time
	`

	rows, err := r.pool.Query(ctx, query, teacherID)
	if err != nil {
		return nil, fmt.Errorf("list appointments by teacher: %w", err)
	}
	defer rows.Close()

	var appts []*model.Appointment
	for rows.Next() {
		var appt model.Appointment
		err := rows.Scan(
			&appt.ID,
			&appt.StudentID,
			&appt.TeacherID,
			&appt.SlotID,
			&appt.Date,
			&appt.Time,
			&appt.Purpose,
			&appt.Status,
			&appt.CreatedAt,
			&appt.StudentName,
		)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		appts = append(appts, &appt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate appointments: %w", err)
	}

	return appts, nil
}

// CancelStalePending cancels pending appointments dated strictly before the
// given day and returns how many were touched. Pending requests never marked
// their slot booked, so no slot write is needed.
func (r *AppointmentRepository) CancelStalePending(ctx context.Context, before string) (int64, error) {
	query := `
		UPDATE appointments
		SET status = 'cancelled'
		WHERE status = 'pending' AND slot_date < $1
	`

	result, err := r.pool.Exec(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("cancel stale pending appointments: %w", err)
	}

	return result.RowsAffected(), nil
}
