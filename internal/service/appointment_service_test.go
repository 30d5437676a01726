package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unifiedmentor/appointment-portal/internal/model"
	"github.com/unifiedmentor/appointment-portal/internal/repository"
	"github.com/unifiedmentor/appointment-portal/internal/service/servicetest"
)

// portal wires every service over one in-memory store with a fixed clock.
type portal struct {
	auth         *AuthService
	admin        *AdminService
	schedule     *ScheduleService
	appointments *AppointmentService
	users        *servicetest.MemUserStore
}

func newPortal(t *testing.T) *portal {
	t.Helper()
	users, slots, appts := servicetest.NewMemDB().Stores()
	logger := zap.NewNop()

	p := &portal{
		auth:         NewAuthService(users, "test-secret", logger),
		admin:        NewAdminService(users, logger),
		schedule:     NewScheduleService(users, slots, logger),
		appointments: NewAppointmentService(appts, slots, logger),
		users:        users,
	}

	clock := func() time.Time { return time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC) }
	p.schedule.now = clock
	p.appointments.now = clock
	return p
}

func (p *portal) addTeacher(t *testing.T, name, department, subject string) *model.User {
	t.Helper()
	teacher, err := p.admin.CreateTeacher(context.Background(), name, department, subject,
		name+"@school.test", "teacherpass")
	require.NoError(t, err)
	return teacher
}

func (p *portal) addSlot(t *testing.T, teacher *model.User, date, start, end string) *model.AvailabilitySlot {
	t.Helper()
	slot, err := p.schedule.AddSlot(context.Background(), teacher, date, start, end)
	require.NoError(t, err)
	return slot
}

func TestLifecycleScenario(t *testing.T) {
	ctx := context.Background()
	p := newPortal(t)

	// Student registers and cannot sign in before approval.
	student, err := p.auth.RegisterStudent(ctx, "Sam", "sam@school.test", "studentpass")
	require.NoError(t, err)
	assert.False(t, student.Approved)

	_, _, err = p.auth.Login(ctx, "sam@school.test", "studentpass")
	assert.ErrorIs(t, err, ErrNotApproved)

	// Admin approves the student.
	pending, err := p.admin.PendingStudents(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.NoError(t, p.admin.ApproveStudent(ctx, student.ID))

	token, _, err := p.auth.Login(ctx, "sam@school.test", "studentpass")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	// Student searches for a Math teacher and finds the published slot.
	teacher := p.addTeacher(t, "Taylor", "Science", "Math")
	slot := p.addSlot(t, teacher, "2024-06-01", "09:00", "10:00")

	found, err := p.schedule.SearchTeachers(ctx, "math")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, teacher.ID, found[0].ID)

	open, err := p.schedule.OpenSlots(ctx, teacher.ID)
	require.NoError(t, err)
	require.Len(t, open, 1)

	// Student books; the teacher sees it pending.
	appt, err := p.appointments.Request(ctx, student.ID, slot.ID, "Algebra help")
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusPending, appt.Status)
	assert.Equal(t, "2024-06-01", appt.Date)
	assert.Equal(t, "09:00", appt.Time)

	teacherView, err := p.appointments.TeacherAppointments(ctx, teacher.ID)
	require.NoError(t, err)
	require.Len(t, teacherView, 1)
	assert.Equal(t, "Sam", teacherView[0].StudentName)

	// Pending request does not book the slot yet.
	got, err := p.schedule.OpenSlots(ctx, teacher.ID)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	// Teacher approves: appointment confirmed, slot booked.
	require.NoError(t, p.appointments.Approve(ctx, teacher.ID, appt.ID))

	studentView, err := p.appointments.StudentAppointments(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, studentView, 1)
	assert.Equal(t, model.AppointmentStatusConfirmed, studentView[0].Status)
	assert.Equal(t, "Taylor", studentView[0].TeacherName)

	open, err = p.schedule.OpenSlots(ctx, teacher.ID)
	require.NoError(t, err)
	assert.Empty(t, open)

	// Teacher cancels: appointment cancelled, slot freed.
	require.NoError(t, p.appointments.Cancel(ctx, teacher.ID, appt.ID))

	studentView, err = p.appointments.StudentAppointments(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCancelled, studentView[0].Status)

	open, err = p.schedule.OpenSlots(ctx, teacher.ID)
	require.NoError(t, err)
	assert.Len(t, open, 1)
}

func TestRequestRequiresPurpose(t *testing.T) {
	ctx := context.Background()
	p := newPortal(t)
	teacher := p.addTeacher(t, "Taylor", "Science", "Math")
	slot := p.addSlot(t, teacher, "2024-06-01", "09:00", "10:00")

	_, err := p.appointments.Request(ctx, "student-1", slot.ID, "   ")
	assert.ErrorIs(t, err, ErrPurposeRequired)
}

func TestRequestRejectsBookedSlot(t *testing.T) {
	ctx := context.Background()
	p := newPortal(t)
	teacher := p.addTeacher(t, "Taylor", "Science", "Math")
	slot := p.addSlot(t, teacher, "2024-06-01", "09:00", "10:00")

	appt, err := p.appointments.Request(ctx, "student-1", slot.ID, "Algebra help")
	require.NoError(t, err)
	require.NoError(t, p.appointments.Approve(ctx, teacher.ID, appt.ID))

	_, err = p.appointments.Request(ctx, "student-2", slot.ID, "Geometry help")
	assert.ErrorIs(t, err, repository.ErrSlotUnavailable)
}

func TestRequestRejectsAlreadyClaimedSlot(t *testing.T) {
	ctx := context.Background()
	p := newPortal(t)
	teacher := p.addTeacher(t, "Taylor", "Science", "Math")
	slot := p.addSlot(t, teacher, "2024-06-01", "09:00", "10:00")

	// A pending request already claims the slot even before approval.
	_, err := p.appointments.Request(ctx, "student-1", slot.ID, "Algebra help")
	require.NoError(t, err)

	_, err = p.appointments.Request(ctx, "student-2", slot.ID, "Geometry help")
	assert.ErrorIs(t, err, repository.ErrSlotUnavailable)
}

func TestRequestAllowedAfterCancellation(t *testing.T) {
	ctx := context.Background()
	p := newPortal(t)
	teacher := p.addTeacher(t, "Taylor", "Science", "Math")
	slot := p.addSlot(t, teacher, "2024-06-01", "09:00", "10:00")

	appt, err := p.appointments.Request(ctx, "student-1", slot.ID, "Algebra help")
	require.NoError(t, err)
	require.NoError(t, p.appointments.Cancel(ctx, teacher.ID, appt.ID))

	_, err = p.appointments.Request(ctx, "student-2", slot.ID, "Geometry help")
	assert.NoError(t, err)
}

func TestRequestRejectsPastSlot(t *testing.T) {
	ctx := context.Background()
	p := newPortal(t)
	teacher := p.addTeacher(t, "Taylor", "Science", "Math")
	slot := p.addSlot(t, teacher, "2024-05-21", "09:00", "10:00")

	// Move the clock past the slot date.
	p.appointments.now = func() time.Time { return time.Date(2024, 5, 25, 12, 0, 0, 0, time.UTC) }

	_, err := p.appointments.Request(ctx, "student-1", slot.ID, "Algebra help")
	assert.ErrorIs(t, err, repository.ErrSlotUnavailable)
}

func TestApproveRequiresOwningTeacher(t *testing.T) {
	ctx := context.Background()
	p := newPortal(t)
	teacher := p.addTeacher(t, "Taylor", "Science", "Math")
	other := p.addTeacher(t, "Jordan", "Arts", "History")
	slot := p.addSlot(t, teacher, "2024-06-01", "09:00", "10:00")

	appt, err := p.appointments.Request(ctx, "student-1", slot.ID, "Algebra help")
	require.NoError(t, err)

	assert.ErrorIs(t, p.appointments.Approve(ctx, other.ID, appt.ID), ErrForbidden)
	assert.ErrorIs(t, p.appointments.Cancel(ctx, other.ID, appt.ID), ErrForbidden)
}

func TestNoBackwardTransitions(t *testing.T) {
	ctx := context.Background()
	p := newPortal(t)
	teacher := p.addTeacher(t, "Taylor", "Science", "Math")
	slot := p.addSlot(t, teacher, "2024-06-01", "09:00", "10:00")

	appt, err := p.appointments.Request(ctx, "student-1", slot.ID, "Algebra help")
	require.NoError(t, err)
	require.NoError(t, p.appointments.Approve(ctx, teacher.ID, appt.ID))

	// confirmed -> confirmed is refused.
	assert.ErrorIs(t, p.appointments.Approve(ctx, teacher.ID, appt.ID), repository.ErrInvalidTransition)

	require.NoError(t, p.appointments.Cancel(ctx, teacher.ID, appt.ID))

	// Nothing leaves cancelled.
	assert.ErrorIs(t, p.appointments.Approve(ctx, teacher.ID, appt.ID), repository.ErrInvalidTransition)
	assert.ErrorIs(t, p.appointments.Cancel(ctx, teacher.ID, appt.ID), repository.ErrInvalidTransition)
}

func TestCancelPendingLeavesSlotOpen(t *testing.T) {
	ctx := context.Background()
	p := newPortal(t)
	teacher := p.addTeacher(t, "Taylor", "Science", "Math")
	slot := p.addSlot(t, teacher, "2024-06-01", "09:00", "10:00")

	appt, err := p.appointments.Request(ctx, "student-1", slot.ID, "Algebra help")
	require.NoError(t, err)
	require.NoError(t, p.appointments.Cancel(ctx, teacher.ID, appt.ID))

	// The slot was never booked, so it stays open.
	open, err := p.schedule.OpenSlots(ctx, teacher.ID)
	require.NoError(t, err)
	assert.Len(t, open, 1)
	assert.False(t, open[0].Booked)
}

func TestOpenSlotsExcludePastAndBooked(t *testing.T) {
	ctx := context.Background()
	p := newPortal(t)
	teacher := p.addTeacher(t, "Taylor", "Science", "Math")

	past := p.addSlot(t, teacher, "2024-05-20", "09:00", "10:00")
	booked := p.addSlot(t, teacher, "2024-06-01", "09:00", "10:00")
	future := p.addSlot(t, teacher, "2024-06-02", "11:00", "12:00")

	appt, err := p.appointments.Request(ctx, "student-1", booked.ID, "Algebra help")
	require.NoError(t, err)
	require.NoError(t, p.appointments.Approve(ctx, teacher.ID, appt.ID))

	p.schedule.now = func() time.Time { return time.Date(2024, 5, 21, 12, 0, 0, 0, time.UTC) }

	open, err := p.schedule.OpenSlots(ctx, teacher.ID)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, future.ID, open[0].ID)
	assert.NotEqual(t, past.ID, open[0].ID)
}

func TestDeleteSlotRejectedWhileReferenced(t *testing.T) {
	ctx := context.Background()
	p := newPortal(t)
	teacher := p.addTeacher(t, "Taylor", "Science", "Math")
	slot := p.addSlot(t, teacher, "2024-06-01", "09:00", "10:00")

	appt, err := p.appointments.Request(ctx, "student-1", slot.ID, "Algebra help")
	require.NoError(t, err)

	assert.ErrorIs(t, p.schedule.DeleteSlot(ctx, teacher.ID, slot.ID), repository.ErrSlotReferenced)

	// After cancellation the slot deletes cleanly.
	require.NoError(t, p.appointments.Cancel(ctx, teacher.ID, appt.ID))
	assert.NoError(t, p.schedule.DeleteSlot(ctx, teacher.ID, slot.ID))
}

func TestDeleteSlotRequiresOwner(t *testing.T) {
	ctx := context.Background()
	p := newPortal(t)
	teacher := p.addTeacher(t, "Taylor", "Science", "Math")
	other := p.addTeacher(t, "Jordan", "Arts", "History")
	slot := p.addSlot(t, teacher, "2024-06-01", "09:00", "10:00")

	assert.ErrorIs(t, p.schedule.DeleteSlot(ctx, other.ID, slot.ID), repository.ErrNotFound)
}

func TestDeleteTeacherBlockedByActiveAppointments(t *testing.T) {
	ctx := context.Background()
	p := newPortal(t)
	teacher := p.addTeacher(t, "Taylor", "Science", "Math")
	slot := p.addSlot(t, teacher, "2024-06-01", "09:00", "10:00")

	appt, err := p.appointments.Request(ctx, "student-1", slot.ID, "Algebra help")
	require.NoError(t, err)

	assert.ErrorIs(t, p.admin.DeleteTeacher(ctx, teacher.ID), repository.ErrTeacherReferenced)

	require.NoError(t, p.appointments.Cancel(ctx, teacher.ID, appt.ID))
	require.NoError(t, p.admin.DeleteTeacher(ctx, teacher.ID))

	_, err = p.users.GetByID(ctx, teacher.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSweepStalePending(t *testing.T) {
	ctx := context.Background()
	p := newPortal(t)
	teacher := p.addTeacher(t, "Taylor", "Science", "Math")
	stale := p.addSlot(t, teacher, "2024-05-21", "09:00", "10:00")
	fresh := p.addSlot(t, teacher, "2024-06-01", "09:00", "10:00")

	staleAppt, err := p.appointments.Request(ctx, "student-1", stale.ID, "Algebra help")
	require.NoError(t, err)
	freshAppt, err := p.appointments.Request(ctx, "student-1", fresh.ID, "Geometry help")
	require.NoError(t, err)

	p.appointments.now = func() time.Time { return time.Date(2024, 5, 25, 12, 0, 0, 0, time.UTC) }

	n, err := p.appointments.SweepStalePending(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := p.appointments.TeacherAppointments(ctx, teacher.ID)
	require.NoError(t, err)
	statuses := map[string]model.AppointmentStatus{}
	for _, a := range got {
		statuses[a.ID] = a.Status
	}
	assert.Equal(t, model.AppointmentStatusCancelled, statuses[staleAppt.ID])
	assert.Equal(t, model.AppointmentStatusPending, statuses[freshAppt.ID])
}

func TestSearchTeachersMatchesAllFields(t *testing.T) {
	ctx := context.Background()
	p := newPortal(t)
	p.addTeacher(t, "Taylor", "Science", "Math")
	p.addTeacher(t, "Jordan", "Arts", "History")

	byName, err := p.schedule.SearchTeachers(ctx, "TAYL")
	require.NoError(t, err)
	require.Len(t, byName, 1)

	byDept, err := p.schedule.SearchTeachers(ctx, "arts")
	require.NoError(t, err)
	require.Len(t, byDept, 1)
	assert.Equal(t, "Jordan", byDept[0].Name)

	all, err := p.schedule.SearchTeachers(ctx, "  ")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	none, err := p.schedule.SearchTeachers(ctx, "chemistry")
	require.NoError(t, err)
	assert.Empty(t, none)
}
