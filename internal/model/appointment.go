package model

import (
	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCanceled  AppointmentStatus = "canceled"
)

// CanTransitionTo reports whether the status change is allowed. Pending can be
// confirmed or canceled, confirmed can only be canceled, canceled is terminal.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	switch s {
	case AppointmentStatusPending:
		return next == AppointmentStatusConfirmed || next == AppointmentStatusCanceled
	case AppointmentStatusConfirmed:
		return next == AppointmentStatusCanceled
	default:
		return false
	}
}

// Appointment ties a client (registered user or guest contact) to a provider,
// date and time. Guest bookings carry contact details inline and a nil UserID.
type Appointment struct {
	Base
	UserID     *uuid.UUID        `db:"user_id" json:"user_id,omitempty"`
	ProviderID uuid.UUID         `db:"provider_id" json:"provider_id"`
	Date       string            `db:"date" json:"date"`
	Time       string            `db:"time" json:"time"`
	Service    string            `db:"service" json:"service"`
	Notes      string            `db:"notes" json:"notes,omitempty"`
	Phone      string            `db:"phone" json:"phone,omitempty"`
	Status     AppointmentStatus `db:"status" json:"status"`
	IsGuest    bool              `db:"is_guest" json:"is_guest"`
	GuestName  string            `db:"guest_name" json:"guest_name,omitempty"`
	GuestEmail string            `db:"guest_email" json:"guest_email,omitempty"`
	GuestPhone string            `db:"guest_phone" json:"guest_phone,omitempty"`
	ClientIP   string            `db:"client_ip" json:"client_ip,omitempty"`
}

type CreateAppointmentRequest struct {
	ProviderID uuid.UUID `json:"provider_id" binding:"required"`
	Date       string    `json:"date" binding:"required,datetime=2006-01-02"`
	Time       string    `json:"time" binding:"required,datetime=15:04"`
	Service    string    `json:"service" binding:"required,max=200"`
	Notes      string    `json:"notes" binding:"max=1000"`
	Phone      string    `json:"phone" binding:"omitempty,min=10,max=20"`
}

type UpdateAppointmentRequest struct {
	Date    *string `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Time    *string `json:"time" binding:"omitempty,datetime=15:04"`
	Service *string `json:"service" binding:"omitempty,max=200"`
	Notes   *string `json:"notes" binding:"omitempty,max=1000"`
}

// GuestBookingRequest is the public unauthenticated booking payload.
type GuestBookingRequest struct {
	ProviderID uuid.UUID `json:"provider_id" binding:"required"`
	Date       string    `json:"date" binding:"required,datetime=2006-01-02"`
	Time       string    `json:"time" binding:"required,datetime=15:04"`
	Service    string    `json:"service" binding:"required,max=200"`
	GuestName  string    `json:"guest_name" binding:"required,max=120"`
	GuestEmail string    `json:"guest_email" binding:"required,email"`
	GuestPhone string    `json:"guest_phone" binding:"required,min=10,max=20"`
	Notes      string    `json:"notes" binding:"max=1000"`
}

type AppointmentFilters struct {
	UserID     *uuid.UUID
	ProviderID *uuid.UUID
	Status     AppointmentStatus
	StartDate  string
	EndDate    string
}

// AppointmentDetail is an appointment joined with the display data of the
// involved parties, used for webhook payloads and report rows.
type AppointmentDetail struct {
	Appointment
	ClientName    string `db:"client_name" json:"client_name"`
	ClientEmail   string `db:"client_email" json:"client_email"`
	ClientPhone   string `db:"client_phone" json:"client_phone"`
	ProviderName  string `db:"provider_name" json:"provider_name"`
	ProviderEmail string `db:"provider_email" json:"provider_email"`
	ProviderPhone string `db:"provider_phone" json:"provider_phone"`
}
