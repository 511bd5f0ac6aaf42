package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type ReportFrequency string

const (
	ReportFrequencyDaily   ReportFrequency = "daily"
	ReportFrequencyWeekly  ReportFrequency = "weekly"
	ReportFrequencyMonthly ReportFrequency = "monthly"
)

type ReportStatus string

const (
	ReportStatusActive   ReportStatus = "active"
	ReportStatusInactive ReportStatus = "inactive"
)

// ScheduledReport is an admin-defined recurring export job. The definition is
// synced to the external automation endpoint on every upsert and delete; file
// generation and emailing happen there, not here.
type ScheduledReport struct {
	Base
	UserID        uuid.UUID       `db:"user_id" json:"user_id"`
	Name          string          `db:"name" json:"name"`
	ReportType    string          `db:"report_type" json:"report_type"`
	Frequency     ReportFrequency `db:"frequency" json:"frequency"`
	ExecutionTime string          `db:"execution_time" json:"execution_time"`
	Recipients    pq.StringArray  `db:"recipients" json:"recipients"`
	Format        string          `db:"format" json:"format"`
	Filters       JSONMap         `db:"filters" json:"filters,omitempty"`
	Status        ReportStatus    `db:"status" json:"status"`
	LastRunAt     *time.Time      `db:"last_run_at" json:"last_run_at,omitempty"`

	// Display fields computed on read, never persisted.
	NextExecution  *time.Time `db:"-" json:"next_execution,omitempty"`
	FrequencyText  string     `db:"-" json:"frequency_description,omitempty"`
	FrequencyLabel string     `db:"-" json:"frequency_label,omitempty"`
}

type CreateScheduledReportRequest struct {
	Name          string   `json:"name" binding:"required,max=120"`
	ReportType    string   `json:"report_type" binding:"required,oneof=appointments clients revenue"`
	Frequency     string   `json:"frequency" binding:"required,oneof=daily weekly monthly"`
	ExecutionTime string   `json:"execution_time" binding:"required,datetime=15:04"`
	Recipients    []string `json:"recipients" binding:"required,min=1,dive,email"`
	Format        string   `json:"format" binding:"required,oneof=csv xlsx pdf"`
	Filters       JSONMap  `json:"filters"`
}

type UpdateScheduledReportRequest struct {
	Name          *string  `json:"name" binding:"omitempty,max=120"`
	ReportType    *string  `json:"report_type" binding:"omitempty,oneof=appointments clients revenue"`
	Frequency     *string  `json:"frequency" binding:"omitempty,oneof=daily weekly monthly"`
	ExecutionTime *string  `json:"execution_time" binding:"omitempty,datetime=15:04"`
	Recipients    []string `json:"recipients" binding:"omitempty,min=1,dive,email"`
	Format        *string  `json:"format" binding:"omitempty,oneof=csv xlsx pdf"`
	Filters       JSONMap  `json:"filters"`
	Status        *string  `json:"status" binding:"omitempty,oneof=active inactive"`
}

type ExecutionStatus string

const (
	ExecutionStatusPending ExecutionStatus = "pending"
	ExecutionStatusSent    ExecutionStatus = "sent"
	ExecutionStatusFailed  ExecutionStatus = "failed"
)

// ReportExecution is an append-only history entry. A row starts out pending;
// the external system reports completion through the callback endpoint.
type ReportExecution struct {
	ID                uuid.UUID       `db:"id" json:"id"`
	ScheduledReportID uuid.UUID       `db:"scheduled_report_id" json:"scheduled_report_id"`
	ExecutedAt        time.Time       `db:"executed_at" json:"executed_at"`
	Status            ExecutionStatus `db:"status" json:"status"`
	RecipientsSent    pq.StringArray  `db:"recipients_sent" json:"recipients_sent"`
	FileURL           *string         `db:"file_url" json:"file_url,omitempty"`
}

// ReportQueryFilters narrows report data queries.
type ReportQueryFilters struct {
	StartDate  string
	EndDate    string
	Status     string
	ProviderID *uuid.UUID
}

// AppointmentReportRow is one line of the appointments report.
type AppointmentReportRow struct {
	ID           uuid.UUID         `db:"id" json:"id"`
	Date         string            `db:"date" json:"date"`
	Time         string            `db:"time" json:"time"`
	Status       AppointmentStatus `db:"status" json:"status"`
	Service      string            `db:"service" json:"service"`
	ClientName   string            `db:"client_name" json:"client_name"`
	ClientEmail  string            `db:"client_email" json:"client_email"`
	ClientPhone  string            `db:"client_phone" json:"client_phone"`
	ProviderName string            `db:"provider_name" json:"provider_name"`
	CreatedAt    time.Time         `db:"created_at" json:"created_at"`
}

// ClientReportRow aggregates a client's booking activity.
type ClientReportRow struct {
	ClientName            string `db:"client_name" json:"client_name"`
	ClientEmail           string `db:"client_email" json:"client_email"`
	ClientPhone           string `db:"client_phone" json:"client_phone"`
	TotalAppointments     int    `db:"total_appointments" json:"total_appointments"`
	ConfirmedAppointments int    `db:"confirmed_appointments" json:"confirmed_appointments"`
	CanceledAppointments  int    `db:"canceled_appointments" json:"canceled_appointments"`
	LastAppointment       string `db:"last_appointment" json:"last_appointment"`
	Services              string `db:"services" json:"services"`
}

// ReportSummary backs the dashboard counters.
type ReportSummary struct {
	Total     int `db:"total" json:"total"`
	Pending   int `db:"pending" json:"pending"`
	Confirmed int `db:"confirmed" json:"confirmed"`
	Canceled  int `db:"canceled" json:"canceled"`
}
