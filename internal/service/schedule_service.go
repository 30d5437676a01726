package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/unifiedmentor/appointment-portal/internal/model"
)

// ScheduleService manages teacher availability and the student-facing
// teacher directory.
type ScheduleService struct {
	users  UserStore
	slots  SlotStore
	logger *zap.Logger
	now    func() time.Time
}

func NewScheduleService(users UserStore, slots SlotStore, logger *zap.Logger) *ScheduleService {
	return &ScheduleService{
		users:  users,
		slots:  slots,
		logger: logger,
		now:    time.Now,
	}
}

func (s *ScheduleService) today() string {
	return s.now().Format(model.DateFormat)
}

// AddSlot publishes a new availability window for the teacher.
func (s *ScheduleService) AddSlot(ctx context.Context, teacher *model.User, date, startTime, endTime string) (*model.AvailabilitySlot, error) {
	slot := &model.AvailabilitySlot{
		TeacherID:   teacher.ID,
		TeacherName: teacher.Name,
		Date:        date,
		StartTime:   startTime,
		EndTime:     endTime,
		Booked:      false,
	}

	if err := slot.Validate(s.today()); err != nil {
		return nil, err
	}

	if err := s.slots.Create(ctx, slot); err != nil {
		return nil, err
	}

	s.logger.Info("Availability slot added",
		zap.String("slot_id", slot.ID),
		zap.String("teacher_id", teacher.ID),
		zap.String("date", slot.Date),
	)

	return slot, nil
}

// TeacherSlots returns all of a teacher's slots, booked ones included.
func (s *ScheduleService) TeacherSlots(ctx context.Context, teacherID string) ([]*model.AvailabilitySlot, error) {
	return s.slots.ListByTeacher(ctx, teacherID)
}

// OpenSlots returns a teacher's bookable slots: unbooked and dated today or
// later, ordered by date.
func (s *ScheduleService) OpenSlots(ctx context.Context, teacherID string) ([]*model.AvailabilitySlot, error) {
	return s.slots.ListOpenByTeacher(ctx, teacherID, s.today())
}

// DeleteSlot removes one of the teacher's own slots. Slots referenced by a
// pending or confirmed appointment are refused by the store.
func (s *ScheduleService) DeleteSlot(ctx context.Context, teacherID, slotID string) error {
	if err := s.slots.Delete(ctx, slotID, teacherID); err != nil {
		return err
	}

	s.logger.Info("Availability slot deleted",
		zap.String("slot_id", slotID),
		zap.String("teacher_id", teacherID),
	)

	return nil
}

// SearchTeachers matches the term against teacher name, subject and
// department, case-insensitively. A blank term lists all teachers.
func (s *ScheduleService) SearchTeachers(ctx context.Context, term string) ([]*model.User, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return s.users.ListTeachers(ctx)
	}
	return s.users.SearchTeachers(ctx, term)
}
