package webhook

import (
	"strings"
	"time"

	"github.com/ruanmelo/agenda-api/internal/model"
)

// Party identifies one side of an appointment in the outbound payload.
type Party struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// AppointmentPayload is the body POSTed to {base}/webhook/appointments.
type AppointmentPayload struct {
	AppointmentID  string `json:"appointment_id"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	Service        string `json:"service"`
	Notes          string `json:"notes,omitempty"`
	Status         string `json:"status"`
	Client         Party  `json:"client"`
	Admin          Party  `json:"admin"`
	Timestamp      string `json:"timestamp"`
	IdempotencyKey string `json:"idempotency_key"`
	Meta           Meta   `json:"meta"`
}

type Meta struct {
	Source string `json:"source"`
	Type   string `json:"type"`
}

// ScheduledReportPayload is the body POSTed to {base}/webhook/scheduled-reports.
// Action is upsert, delete or trigger_now; delete carries only the id.
type ScheduledReportPayload struct {
	Action            string        `json:"action"`
	ScheduledReportID string        `json:"scheduled_report_id"`
	Name              string        `json:"name,omitempty"`
	ReportType        string        `json:"report_type,omitempty"`
	Frequency         string        `json:"frequency,omitempty"`
	ExecutionTime     string        `json:"execution_time,omitempty"`
	Recipients        []string      `json:"recipients,omitempty"`
	Format            string        `json:"format,omitempty"`
	Filters           model.JSONMap `json:"filters,omitempty"`
	UserID            string        `json:"user_id,omitempty"`
	Timestamp         string        `json:"timestamp"`
	IdempotencyKey    string        `json:"idempotency_key,omitempty"`
}

// sanitize strips angle brackets and trims whitespace before the value leaves
// the system.
func sanitize(s string) string {
	s = strings.ReplaceAll(s, "<", "")
	s = strings.ReplaceAll(s, ">", "")
	return strings.TrimSpace(s)
}

// BuildAppointmentPayload assembles the outbound body from an enriched
// appointment. Guest bookings report the client as "guest" with the inline
// contact details; appointments without a provider report the admin as
// "System".
func BuildAppointmentPayload(detail *model.AppointmentDetail, idempotencyKey string) *AppointmentPayload {
	client := Party{
		ID:    "guest",
		Name:  sanitize(detail.ClientName),
		Email: sanitize(detail.ClientEmail),
		Phone: detail.ClientPhone,
	}
	if detail.UserID != nil {
		client.ID = detail.UserID.String()
	}

	admin := Party{ID: "", Name: "System"}
	if detail.ProviderName != "" {
		admin = Party{
			ID:    detail.ProviderID.String(),
			Name:  sanitize(detail.ProviderName),
			Email: sanitize(detail.ProviderEmail),
			Phone: detail.ProviderPhone,
		}
	}

	bookingType := "user_booking"
	if detail.IsGuest {
		bookingType = "guest_booking"
	}

	return &AppointmentPayload{
		AppointmentID:  detail.ID.String(),
		Date:           detail.Date,
		Time:           detail.Time,
		Service:        sanitize(detail.Service),
		Notes:          sanitize(detail.Notes),
		Status:         string(detail.Status),
		Client:         client,
		Admin:          admin,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		IdempotencyKey: idempotencyKey,
		Meta:           Meta{Source: "agenda-api", Type: bookingType},
	}
}

// BuildScheduledReportPayload assembles the sync body for a report definition.
func BuildScheduledReportPayload(r *model.ScheduledReport, action, idempotencyKey string) *ScheduledReportPayload {
	p := &ScheduledReportPayload{
		Action:            action,
		ScheduledReportID: r.ID.String(),
		Timestamp:         time.Now().UTC().Format(time.RFC3339),
		IdempotencyKey:    idempotencyKey,
	}
	if action == "delete" {
		return p
	}

	p.Name = r.Name
	p.ReportType = r.ReportType
	p.Frequency = string(r.Frequency)
	p.ExecutionTime = r.ExecutionTime
	p.Recipients = r.Recipients
	p.Format = r.Format
	p.Filters = r.Filters
	p.UserID = r.UserID.String()
	return p
}
