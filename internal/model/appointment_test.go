package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppointmentStatusTransitions(t *testing.T) {
	cases := []struct {
		from    AppointmentStatus
		to      AppointmentStatus
		allowed bool
	}{
		{AppointmentStatusPending, AppointmentStatusConfirmed, true},
		{AppointmentStatusPending, AppointmentStatusCancelled, true},
		{AppointmentStatusConfirmed, AppointmentStatusCancelled, true},
		{AppointmentStatusConfirmed, AppointmentStatusPending, false},
		{AppointmentStatusConfirmed, AppointmentStatusConfirmed, false},
		{AppointmentStatusCancelled, AppointmentStatusPending, false},
		{AppointmentStatusCancelled, AppointmentStatusConfirmed, false},
		{AppointmentStatusCancelled, AppointmentStatusCancelled, false},
		{AppointmentStatusPending, AppointmentStatusPending, false},
	}

	for _, tc := range cases {
		got := tc.from.CanTransitionTo(tc.to)
		assert.Equal(t, tc.allowed, got, "%s -> %s", tc.from, tc.to)
	}
}

func TestSlotValidate(t *testing.T) {
	today := "2024-06-01"

	valid := AvailabilitySlot{Date: "2024-06-01", StartTime: "09:00", EndTime: "10:00"}
	assert.NoError(t, valid.Validate(today))

	cases := []struct {
		name string
		slot AvailabilitySlot
		want error
	}{
		{"bad date", AvailabilitySlot{Date: "01-06-2024", StartTime: "09:00", EndTime: "10:00"}, ErrBadDate},
		{"bad start", AvailabilitySlot{Date: "2024-06-01", StartTime: "9am", EndTime: "10:00"}, ErrBadTime},
		{"bad end", AvailabilitySlot{Date: "2024-06-01", StartTime: "09:00", EndTime: "ten"}, ErrBadTime},
		{"inverted window", AvailabilitySlot{Date: "2024-06-01", StartTime: "10:00", EndTime: "09:00"}, ErrBadTimeWindow},
		{"zero-length window", AvailabilitySlot{Date: "2024-06-01", StartTime: "09:00", EndTime: "09:00"}, ErrBadTimeWindow},
		{"past date", AvailabilitySlot{Date: "2024-05-31", StartTime: "09:00", EndTime: "10:00"}, ErrDateInPast},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, tc.slot.Validate(today), tc.want)
		})
	}
}
