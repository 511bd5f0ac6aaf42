package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppointmentStatusTransitions(t *testing.T) {
	assert.True(t, AppointmentStatusPending.CanTransitionTo(AppointmentStatusConfirmed))
	assert.True(t, AppointmentStatusPending.CanTransitionTo(AppointmentStatusCanceled))
	assert.True(t, AppointmentStatusConfirmed.CanTransitionTo(AppointmentStatusCanceled))

	assert.False(t, AppointmentStatusConfirmed.CanTransitionTo(AppointmentStatusPending))
	assert.False(t, AppointmentStatusPending.CanTransitionTo(AppointmentStatusPending))

	// Canceled is terminal.
	assert.False(t, AppointmentStatusCanceled.CanTransitionTo(AppointmentStatusPending))
	assert.False(t, AppointmentStatusCanceled.CanTransitionTo(AppointmentStatusConfirmed))
	assert.False(t, AppointmentStatusCanceled.CanTransitionTo(AppointmentStatusCanceled))
}
