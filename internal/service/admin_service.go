package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/unifiedmentor/appointment-portal/internal/crypto"
	"github.com/unifiedmentor/appointment-portal/internal/model"
)

// AdminService covers the administrator surface: student approvals and
// teacher account management.
type AdminService struct {
	users  UserStore
	logger *zap.Logger
}

func NewAdminService(users UserStore, logger *zap.Logger) *AdminService {
	return &AdminService{users: users, logger: logger}
}

// PendingStudents returns students awaiting approval.
func (s *AdminService) PendingStudents(ctx context.Context) ([]*model.User, error) {
	return s.users.ListPendingStudents(ctx)
}

// ApproveStudent grants a student access to the booking features.
func (s *AdminService) ApproveStudent(ctx context.Context, studentID string) error {
	if err := s.users.SetApproved(ctx, studentID, true); err != nil {
		return err
	}

	s.logger.Info("Student approved", zap.String("student_id", studentID))
	return nil
}

// CreateTeacher provisions a teacher account with its credential. Teachers
// are approved from the start.
func (s *AdminService) CreateTeacher(ctx context.Context, name, department, subject, email, password string) (*model.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return nil, ErrMissingFields
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	teacher := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleTeacher,
		Approved:     true,
		Department:   strings.TrimSpace(department),
		Subject:      strings.TrimSpace(subject),
	}

	if err := s.users.Create(ctx, teacher); err != nil {
		return nil, err
	}

	s.logger.Info("Teacher created",
		zap.String("teacher_id", teacher.ID),
		zap.String("email", teacher.Email),
		zap.String("subject", teacher.Subject),
	)

	return teacher, nil
}

// Teachers returns all teacher accounts.
func (s *AdminService) Teachers(ctx context.Context) ([]*model.User, error) {
	return s.users.ListTeachers(ctx)
}

// DeleteTeacher removes a teacher account together with its credential. The
// store refuses while the teacher still has non-cancelled appointments.
func (s *AdminService) DeleteTeacher(ctx context.Context, teacherID string) error {
	if err := s.users.DeleteTeacher(ctx, teacherID); err != nil {
		return err
	}

	s.logger.Info("Teacher deleted", zap.String("teacher_id", teacherID))
	return nil
}
