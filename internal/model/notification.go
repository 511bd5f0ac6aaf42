package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationAppointmentCreated   NotificationType = "appointment_created"
	NotificationAppointmentConfirmed NotificationType = "appointment_confirmed"
	NotificationAppointmentCanceled  NotificationType = "appointment_canceled"
	NotificationAppointmentEdited    NotificationType = "appointment_edited"
)

// Notification is one row per triggering appointment event, owned by a
// registered user.
type Notification struct {
	ID            uuid.UUID        `db:"id" json:"id"`
	UserID        uuid.UUID        `db:"user_id" json:"user_id"`
	AppointmentID *uuid.UUID       `db:"appointment_id" json:"appointment_id,omitempty"`
	Type          NotificationType `db:"type" json:"type"`
	Message       string           `db:"message" json:"message"`
	Read          bool             `db:"read" json:"read"`
	SentAt        time.Time        `db:"sent_at" json:"sent_at"`
}
