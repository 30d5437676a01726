package model

import "time"

// Date and time-of-day formats used across slots and appointments.
const (
	DateFormat = "2006-01-02"
	TimeFormat = "15:04"
)

// AvailabilitySlot is a teacher-published time window open for booking.
// Booked mirrors the existence of a confirmed appointment for the slot.
type AvailabilitySlot struct {
	ID          string    `json:"id"`
	TeacherID   string    `json:"teacher_id"`
	TeacherName string    `json:"teacher_name"`
	Date        string    `json:"date"`       // YYYY-MM-DD
	StartTime   string    `json:"start_time"` // HH:MM
	EndTime     string    `json:"end_time"`   // HH:MM
	Booked      bool      `json:"booked"`
	CreatedAt   time.Time `json:"created_at"`
}

// Validate checks the slot's date and time window.
func (s *AvailabilitySlot) Validate(today string) error {
	if _, err := time.Parse(DateFormat, s.Date); err != nil {
		return ErrBadDate
	}
	start, err := time.Parse(TimeFormat, s.StartTime)
	if err != nil {
		return ErrBadTime
	}
	end, err := time.Parse(TimeFormat, s.EndTime)
	if err != nil {
		return ErrBadTime
	}
	if !start.Before(end) {
		return ErrBadTimeWindow
	}
	if s.Date < today {
		return ErrDateInPast
	}
	return nil
}
