package service

import (
	"context"

	"github.com/unifiedmentor/appointment-portal/internal/model"
)

// Store interfaces implemented by the pgx repositories. Services depend on
// these so the business rules can be exercised without a database.

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	SetApproved(ctx context.Context, id string, approved bool) error
	ListPendingStudents(ctx context.Context) ([]*model.User, error)
	ListTeachers(ctx context.Context) ([]*model.User, error)
	SearchTeachers(ctx context.Context, term string) ([]*model.User, error)
	DeleteTeacher(ctx context.Context, id string) error
}

type SlotStore interface {
	Create(ctx context.Context, slot *model.AvailabilitySlot) error
	GetByID(ctx context.Context, id string) (*model.AvailabilitySlot, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]*model.AvailabilitySlot, error)
	ListOpenByTeacher(ctx context.Context, teacherID, fromDate string) ([]*model.AvailabilitySlot, error)
	Delete(ctx context.Context, id, teacherID string) error
}

type AppointmentStore interface {
	CreateForSlot(ctx context.Context, studentID, slotID, purpose string) (*model.Appointment, error)
	GetByID(ctx context.Context, id string) (*model.Appointment, error)
	TransitionStatus(ctx context.Context, id string, from, to model.AppointmentStatus, slotBooked *bool) error
	ListByStudent(ctx context.Context, studentID string) ([]*model.Appointment, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]*model.Appointment, error)
	CancelStalePending(ctx context.Context, before string) (int64, error)
}
