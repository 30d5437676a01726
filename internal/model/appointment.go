package model

import (
	"errors"
	"time"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// Validation errors shared by slots and appointments.
var (
	ErrBadDate       = errors.New("invalid date, expected YYYY-MM-DD")
	ErrBadTime       = errors.New("invalid time, expected HH:MM")
	ErrBadTimeWindow = errors.New("start time must be before end time")
	ErrDateInPast    = errors.New("date is in the past")
)

// Appointment is a student's request against an availability slot. It is
// never deleted; cancellation is a status change.
type Appointment struct {
	ID        string            `json:"id"`
	StudentID string            `json:"student_id"`
	TeacherID string            `json:"teacher_id"`
	SlotID    string            `json:"slot_id"`
	Date      string            `json:"date"` // copied from the slot at booking time
	Time      string            `json:"time"`
	Purpose   string            `json:"purpose"`
	Status    AppointmentStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`

	// Display names filled by list queries, not stored on the row.
	StudentName string `json:"student_name,omitempty"`
	TeacherName string `json:"teacher_name,omitempty"`
}

// CanTransitionTo reports whether moving from s to next is a legal lifecycle
// step. The only legal moves are pending->confirmed, pending->cancelled and
// confirmed->cancelled; nothing leaves cancelled or re-enters pending.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	switch s {
	case AppointmentStatusPending:
		return next == AppointmentStatusConfirmed || next == AppointmentStatusCancelled
	case AppointmentStatusConfirmed:
		return next == AppointmentStatusCancelled
	default:
		return false
	}
}

// IsActive reports whether the appointment still claims its slot.
func (a *Appointment) IsActive() bool {
	return a.Status != AppointmentStatusCancelled
}
