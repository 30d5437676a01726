package model

import "time"

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Approved     bool      `json:"approved"`
	Department   string    `json:"department,omitempty"` // teachers only
	Subject      string    `json:"subject,omitempty"`    // teachers only
	CreatedAt    time.Time `json:"created_at"`
}

// IsTeacher reports whether the user holds the teacher role.
func (u *User) IsTeacher() bool {
	return u.Role == RoleTeacher
}

// IsApprovedStudent reports whether the user is a student cleared for booking.
func (u *User) IsApprovedStudent() bool {
	return u.Role == RoleStudent && u.Approved
}
