package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/unifiedmentor/appointment-portal/internal/auth"
	"github.com/unifiedmentor/appointment-portal/internal/crypto"
	"github.com/unifiedmentor/appointment-portal/internal/model"
	"github.com/unifiedmentor/appointment-portal/internal/repository"
)

// AuthService owns registration, sign-in and the admin account bootstrap.
type AuthService struct {
	users     UserStore
	jwtSecret string
	logger    *zap.Logger
}

func NewAuthService(users UserStore, jwtSecret string, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:     users,
		jwtSecret: jwtSecret,
		logger:    logger,
	}
}

// RegisterStudent creates an unapproved student account. The student can sign
// in only after an admin approves them.
func (s *AuthService) RegisterStudent(ctx context.Context, name, email, password string) (*model.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return nil, ErrMissingFields
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleStudent,
		Approved:     false,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("Student registered",
		zap.String("user_id", user.ID),
		zap.String("email", user.Email),
	)

	return user, nil
}

// Login verifies credentials and issues a session token. Unapproved students
// are refused with ErrNotApproved.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("get user: %w", err)
	}

	if err := crypto.CheckPassword(user.PasswordHash, password); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	if user.Role == model.RoleStudent && !user.Approved {
		return "", nil, ErrNotApproved
	}

	token, err := auth.NewSessionToken(s.jwtSecret, auth.DefaultTokenTTL, auth.Claims{
		UserID:   user.ID,
		Role:     user.Role,
		Approved: user.Approved,
	})
	if err != nil {
		return "", nil, fmt.Errorf("issue session token: %w", err)
	}

	s.logger.Info("User signed in",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)),
	)

	return token, user, nil
}

// CurrentUser resolves the user behind a session.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	return s.users.GetByID(ctx, userID)
}

// EnsureAdmin creates the configured admin account if it does not exist yet.
// Without a configured password no account is created.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("look up admin account: %w", err)
	}

	if password == "" {
		s.logger.Warn("Admin account missing and ADMIN_PASSWORD not set, skipping bootstrap",
			zap.String("email", email))
		return nil
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := &model.User{
		Name:         "Admin",
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		Approved:     true,
	}

	if err := s.users.Create(ctx, admin); err != nil {
		return fmt.Errorf("create admin account: %w", err)
	}

	s.logger.Info("Admin account bootstrapped", zap.String("email", email))
	return nil
}
