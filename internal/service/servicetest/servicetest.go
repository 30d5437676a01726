// Package servicetest provides in-memory store implementations for tests.
package servicetest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/unifiedmentor/appointment-portal/internal/model"
	"github.com/unifiedmentor/appointment-portal/internal/repository"
)

// In-memory stores mirroring the repository semantics, including the
// transactional guarantees of the pgx implementations.

type MemDB struct {
	mu    sync.Mutex
	users map[string]*model.User
	slots map[string]*model.AvailabilitySlot
	appts map[string]*model.Appointment
}

func NewMemDB() *MemDB {
	return &MemDB{
		users: make(map[string]*model.User),
		slots: make(map[string]*model.AvailabilitySlot),
		appts: make(map[string]*model.Appointment),
	}
}

func (db *MemDB) Stores() (*MemUserStore, *MemSlotStore, *MemAppointmentStore) {
	return &MemUserStore{db}, &MemSlotStore{db}, &MemAppointmentStore{db}
}

type MemUserStore struct{ db *MemDB }

func (s *MemUserStore) Create(_ context.Context, user *model.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, u := range s.db.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = time.Now()
	cp := *user
	s.db.users[user.ID] = &cp
	return nil
}

func (s *MemUserStore) GetByID(_ context.Context, id string) (*model.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *MemUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, u := range s.db.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *MemUserStore) SetApproved(_ context.Context, id string, approved bool) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[id]
	if !ok || u.Role != model.RoleStudent {
		return repository.ErrNotFound
	}
	u.Approved = approved
	return nil
}

func (s *MemUserStore) ListPendingStudents(_ context.Context) ([]*model.User, error) {
	return s.filter(func(u *model.User) bool {
		return u.Role == model.RoleStudent && !u.Approved
	}), nil
}

func (s *MemUserStore) ListTeachers(_ context.Context) ([]*model.User, error) {
	return s.filter(func(u *model.User) bool { return u.Role == model.RoleTeacher }), nil
}

func (s *MemUserStore) SearchTeachers(_ context.Context, term string) ([]*model.User, error) {
	term = strings.ToLower(term)
	return s.filter(func(u *model.User) bool {
		if u.Role != model.RoleTeacher {
			return false
		}
		return strings.Contains(strings.ToLower(u.Name), term) ||
			strings.Contains(strings.ToLower(u.Subject), term) ||
			strings.Contains(strings.ToLower(u.Department), term)
	}), nil
}

func (s *MemUserStore) filter(keep func(*model.User) bool) []*model.User {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []*model.User
	for _, u := range s.db.users {
		if keep(u) {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *MemUserStore) DeleteTeacher(_ context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[id]
	if !ok || u.Role != model.RoleTeacher {
		return repository.ErrNotFound
	}
	for _, a := range s.db.appts {
		if a.TeacherID == id && a.IsActive() {
			return repository.ErrTeacherReferenced
		}
	}
	for slotID, slot := range s.db.slots {
		if slot.TeacherID == id {
			delete(s.db.slots, slotID)
		}
	}
	delete(s.db.users, id)
	return nil
}

type MemSlotStore struct{ db *MemDB }

func (s *MemSlotStore) Create(_ context.Context, slot *model.AvailabilitySlot) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	slot.CreatedAt = time.Now()
	cp := *slot
	s.db.slots[slot.ID] = &cp
	return nil
}

func (s *MemSlotStore) GetByID(_ context.Context, id string) (*model.AvailabilitySlot, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	slot, ok := s.db.slots[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *slot
	return &cp, nil
}

func (s *MemSlotStore) ListByTeacher(_ context.Context, teacherID string) ([]*model.AvailabilitySlot, error) {
	return s.filter(func(slot *model.AvailabilitySlot) bool {
		return slot.TeacherID == teacherID
	}), nil
}

func (s *MemSlotStore) ListOpenByTeacher(_ context.Context, teacherID, fromDate string) ([]*model.AvailabilitySlot, error) {
	return s.filter(func(slot *model.AvailabilitySlot) bool {
		return slot.TeacherID == teacherID && !slot.Booked && slot.Date >= fromDate
	}), nil
}

func (s *MemSlotStore) filter(keep func(*model.AvailabilitySlot) bool) []*model.AvailabilitySlot {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []*model.AvailabilitySlot
	for _, slot := range s.db.slots {
		if keep(slot) {
			cp := *slot
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out
}

func (s *MemSlotStore) Delete(_ context.Context, id, teacherID string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	slot, ok := s.db.slots[id]
	if !ok || slot.TeacherID != teacherID {
		return repository.ErrNotFound
	}
	for _, a := range s.db.appts {
		if a.SlotID == id && a.IsActive() {
			return repository.ErrSlotReferenced
		}
	}
	delete(s.db.slots, id)
	return nil
}

type MemAppointmentStore struct{ db *MemDB }

func (s *MemAppointmentStore) CreateForSlot(_ context.Context, studentID, slotID, purpose string) (*model.Appointment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	slot, ok := s.db.slots[slotID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if slot.Booked {
		return nil, repository.ErrSlotUnavailable
	}
	for _, a := range s.db.appts {
		if a.SlotID == slotID && a.IsActive() {
			return nil, repository.ErrSlotUnavailable
		}
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
		CreatedAt: time.Now(),
	}
	cp := *appt
	s.db.appts[appt.ID] = &cp
	return appt, nil
}

func (s *MemAppointmentStore) GetByID(_ context.Context, id string) (*model.Appointment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	appt, ok := s.db.appts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *appt
	return &cp, nil
}

func (s *MemAppointmentStore) TransitionStatus(_ context.Context, id string, from, to model.AppointmentStatus, slotBooked *bool) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	appt, ok := s.db.appts[id]
	if !ok {
		return repository.ErrNotFound
	}
	if appt.Status != from {
		return repository.ErrInvalidTransition
	}
	appt.Status = to
	if slotBooked != nil {
		slot, ok := s.db.slots[appt.SlotID]
		if !ok {
			return repository.ErrNotFound
		}
		slot.Booked = *slotBooked
	}
	return nil
}

func (s *MemAppointmentStore) listBy(keep func(*model.Appointment) bool, nameOf func(*model.Appointment) string, setName func(*model.Appointment, string)) []*model.Appointment {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []*model.Appointment
	for _, a := range s.db.appts {
		if keep(a) {
			cp := *a
			if u, ok := s.db.users[nameOf(a)]; ok {
				setName(&cp, u.Name)
			}
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Time < out[j].Time
	})
	return out
}

func (s *MemAppointmentStore) ListByStudent(_ context.Context, studentID string) ([]*model.Appointment, error) {
	return s.listBy(
		func(a *model.Appointment) bool { return a.StudentID == studentID },
		func(a *model.Appointment) string { return a.TeacherID },
		func(a *model.Appointment, name string) { a.TeacherName = name },
	), nil
}

func (s *MemAppointmentStore) ListByTeacher(_ context.Context, teacherID string) ([]*model.Appointment, error) {
	return s.listBy(
		func(a *model.Appointment) bool { return a.TeacherID == teacherID },
		func(a *model.Appointment) string { return a.StudentID },
		func(a *model.Appointment, name string) { a.StudentName = name },
	), nil
}

func (s *MemAppointmentStore) CancelStalePending(_ context.Context, before string) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var n int64
	for _, a := range s.db.appts {
		if a.Status == model.AppointmentStatusPending && a.Date < before {
			a.Status = model.AppointmentStatusCancelled
			n++
		}
	}
	return n, nil
}
