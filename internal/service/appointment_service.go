package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/unifiedmentor/appointment-portal/internal/model"
	"github.com/unifiedmentor/appointment-portal/internal/repository"
)

// AppointmentService is the appointment lifecycle manager. Every transition
// pairs the appointment status write with the slot's booked flag inside one
// store transaction, so the two can never diverge.
type AppointmentService struct {
	appointments AppointmentStore
	slots        SlotStore
	logger       *zap.Logger
	now          func() time.Time
}

func NewAppointmentService(appointments AppointmentStore, slots SlotStore, logger *zap.Logger) *AppointmentService {
	return &AppointmentService{
		appointments: appointments,
		slots:        slots,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *AppointmentService) today() string {
	return s.now().Format(model.DateFormat)
}

// Request creates a pending appointment against an open slot. The store locks
// the slot row for the check-and-insert, so a slot that is booked or already
// claimed by another non-cancelled appointment is refused even under
// concurrent requests. The slot is not marked booked until the teacher
// approves.
func (s *AppointmentService) Request(ctx context.Context, studentID, slotID, purpose string) (*model.Appointment, error) {
	purpose = strings.TrimSpace(purpose)
	if purpose == "" {
		return nil, ErrPurposeRequired
	}

	slot, err := s.slots.GetByID(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if slot.Date < s.today() {
		return nil, fmt.Errorf("%w: slot date has passed", repository.ErrSlotUnavailable)
	}

	appt, err := s.appointments.CreateForSlot(ctx, studentID, slotID, purpose)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Appointment requested",
		zap.String("appointment_id", appt.ID),
		zap.String("student_id", studentID),
		zap.String("slot_id", slotID),
		zap.String("date", appt.Date),
	)

	return appt, nil
}

// Approve moves a pending appointment to confirmed and marks the slot booked
// in the same transaction. Only the owning teacher may approve.
func (s *AppointmentService) Approve(ctx context.Context, teacherID, appointmentID string) error {
	appt, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return err
	}
	if appt.TeacherID != teacherID {
		return ErrForbidden
	}
	if !appt.Status.CanTransitionTo(model.AppointmentStatusConfirmed) {
		return repository.ErrInvalidTransition
	}

	booked := true
	err = s.appointments.TransitionStatus(ctx, appointmentID,
		model.AppointmentStatusPending, model.AppointmentStatusConfirmed, &booked)
	if err != nil {
		return err
	}

	s.logger.Info("Appointment confirmed",
		zap.String("appointment_id", appointmentID),
		zap.String("teacher_id", teacherID),
		zap.String("slot_id", appt.SlotID),
	)

	return nil
}

// Cancel moves an appointment to cancelled. Cancelling a confirmed
// appointment frees its slot in the same transaction; cancelling a pending
// one deliberately leaves the slot untouched, since a pending request never
// marked it booked.
func (s *AppointmentService) Cancel(ctx context.Context, teacherID, appointmentID string) error {
	appt, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return err
	}
	if appt.TeacherID != teacherID {
		return ErrForbidden
	}

	switch appt.Status {
	case model.AppointmentStatusPending:
		err = s.appointments.TransitionStatus(ctx, appointmentID,
			model.AppointmentStatusPending, model.AppointmentStatusCancelled, nil)
	case model.AppointmentStatusConfirmed:
		booked := false
		err = s.appointments.TransitionStatus(ctx, appointmentID,
			model.AppointmentStatusConfirmed, model.AppointmentStatusCancelled, &booked)
	default:
		return repository.ErrInvalidTransition
	}
	if err != nil {
		return err
	}

	s.logger.Info("Appointment cancelled",
		zap.String("appointment_id", appointmentID),
		zap.String("teacher_id", teacherID),
		zap.String("was_status", string(appt.Status)),
	)

	return nil
}

// StudentAppointments lists a student's appointments with teacher names.
func (s *AppointmentService) StudentAppointments(ctx context.Context, studentID string) ([]*model.Appointment, error) {
	return s.appointments.ListByStudent(ctx, studentID)
}

// TeacherAppointments lists a teacher's appointments with student names.
func (s *AppointmentService) TeacherAppointments(ctx context.Context, teacherID string) ([]*model.Appointment, error) {
	return s.appointments.ListByTeacher(ctx, teacherID)
}

// SweepStalePending cancels pending requests whose date has passed. Run
// periodically by the background sweeper.
func (s *AppointmentService) SweepStalePending(ctx context.Context) (int64, error) {
	n, err := s.appointments.CancelStalePending(ctx, s.today())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("Cancelled stale pending appointments", zap.Int64("count", n))
	}
	return n, nil
}
