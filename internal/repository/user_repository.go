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

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, name, email, password_hash, role, approved, department, subject, created_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Approved,
		&user.Department,
		&user.Subject,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts a new user. The ID is assigned here when the caller did not
// supply one.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	query := `
		INSERT INTO users (id, name, email, password_hash, role, approved, department, subject)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Approved,
		user.Department,
		user.Subject,
	).Scan(&user.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

// GetByID fetches a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}

	return user, nil
}

// GetByEmail fetches a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	return user, nil
}

// SetApproved flips a student's approval flag.
func (r *UserRepository) SetApproved(ctx context.Context, id string, approved bool) error {
	query := `UPDATE users SET approved = $1 WHERE id = $2 AND role = 'student'`

	result, err := r.pool.Exec(ctx, query, approved, id)
	if err != nil {
		return fmt.Errorf("set approved: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// ListPendingStudents returns students awaiting admin approval.
func (r *UserRepository) ListPendingStudents(ctx context.Context) ([]*model.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE role = 'student' AND approved = false
		ORDER BY created_at
	`

	return r.list(ctx, query)
}

// ListTeachers returns all teacher accounts.
func (r *UserRepository) ListTeachers(ctx context.Context) ([]*model.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE role = 'teacher'
		ORDER BY name
	`

	return r.list(ctx, query)
}

// SearchTeachers returns teachers whose name, subject or department contains
// the term, case-insensitively.
func (r *UserRepository) SearchTeachers(ctx context.Context, term string) ([]*model.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE role = 'teacher'
		  AND (name ILIKE '%' || $1 || '%'
		    OR subject ILIKE '%' || $1 || '%'
		    OR department ILIKE '%' || $1 || '%')
		ORDER BY name
	`

	return r.list(ctx, query, term)
}

func (r *UserRepository) list(ctx context.Context, query string, args ...interface{}) ([]*model.User, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

// DeleteTeacher removes a teacher row and the credential it carries. The
// delete is refused while any non-cancelled appointment still references the
// teacher, so record and credential always go together.
func (r *UserRepository) DeleteTeacher(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var role model.Role
	err = tx.QueryRow(ctx, `SELECT role FROM users WHERE id = $1 FOR UPDATE`, id).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("lock user: %w", err)
	}
	if role != model.RoleTeacher {
		return ErrNotFound
	}

	var active int
	err = tx.QueryRow(ctx,
		`SELECT count(*) FROM appointments WHERE teacher_id = $1 AND status <> 'cancelled'`,
		id,
	).Scan(&active)
	if err != nil {
		return fmt.Errorf("count teacher appointments: %w", err)
	}
	if active > 0 {
		return ErrTeacherReferenced
	}

	// The teacher's unbooked future slots go with the account; appointments
	// are history and stay.
	if _, err := tx.Exec(ctx, `DELETE FROM availability_slots WHERE teacher_id = $1`, id); err != nil {
		return fmt.Errorf("delete teacher slots: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete teacher: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
