package webhook

import (
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/ruanmelo/agenda-api/internal/model"
)

func TestBuildAppointmentPayloadGuest(t *testing.T) {
	detail := &model.AppointmentDetail{
		Appointment: model.Appointment{
			Base:       model.Base{ID: uuid.New()},
			ProviderID: uuid.New(),
			Date:       "2025-04-01",
			Time:       "10:00",
			Service:    "Corte de cabelo",
			Status:     model.AppointmentStatusPending,
			IsGuest:    true,
		},
		ClientName:    "Maria Silva",
		ClientEmail:   "maria@example.com",
		ClientPhone:   "+5511999990000",
		ProviderName:  "João",
		ProviderEmail: "joao@example.com",
	}

	p := BuildAppointmentPayload(detail, "idem-123")

	assert.Equal(t, detail.ID.String(), p.AppointmentID)
	assert.Equal(t, "guest", p.Client.ID)
	assert.Equal(t, "Maria Silva", p.Client.Name)
	assert.Equal(t, detail.ProviderID.String(), p.Admin.ID)
	assert.Equal(t, "guest_booking", p.Meta.Type)
	assert.Equal(t, "agenda-api", p.Meta.Source)
	assert.Equal(t, "idem-123", p.IdempotencyKey)
	assert.Equal(t, "pending", p.Status)
}

func TestBuildAppointmentPayloadUser(t *testing.T) {
	userID := uuid.New()
	detail := &model.AppointmentDetail{
		Appointment: model.Appointment{
			Base:       model.Base{ID: uuid.New()},
			UserID:     &userID,
			ProviderID: uuid.New(),
			Date:       "2025-04-01",
			Time:       "14:00",
			Service:    "Consulta",
			Status:     model.AppointmentStatusConfirmed,
		},
		ClientName:   "Pedro",
		ProviderName: "Ana",
	}

	p := BuildAppointmentPayload(detail, "idem-456")

	assert.Equal(t, userID.String(), p.Client.ID)
	assert.Equal(t, "user_booking", p.Meta.Type)
	assert.Equal(t, "Ana", p.Admin.Name)
}

func TestBuildAppointmentPayloadNoProvider(t *testing.T) {
	detail := &model.AppointmentDetail{
		Appointment: model.Appointment{
			Base:    model.Base{ID: uuid.New()},
			Service: "Serviço",
			Status:  model.AppointmentStatusPending,
		},
	}

	p := BuildAppointmentPayload(detail, "k")

	assert.Equal(t, "System", p.Admin.Name)
	assert.Empty(t, p.Admin.ID)
}

func TestBuildAppointmentPayloadSanitizes(t *testing.T) {
	detail := &model.AppointmentDetail{
		Appointment: model.Appointment{
			Base:    model.Base{ID: uuid.New()},
			Service: "  <script>corte</script>  ",
			Notes:   "obs <b>importante</b>",
		},
		ClientName: "<Maria>",
	}

	p := BuildAppointmentPayload(detail, "k")

	assert.Equal(t, "scriptcorte/script", p.Service)
	assert.Equal(t, "obs bimportante/b", p.Notes)
	assert.Equal(t, "Maria", p.Client.Name)
}

func TestBuildScheduledReportPayloadDelete(t *testing.T) {
	r := &model.ScheduledReport{
		Base:       model.Base{ID: uuid.New()},
		Name:       "Relatório semanal",
		ReportType: "appointments",
	}

	p := BuildScheduledReportPayload(r, "delete", "k")

	assert.Equal(t, "delete", p.Action)
	assert.Equal(t, r.ID.String(), p.ScheduledReportID)
	assert.Empty(t, p.Name, "delete carries only the id")
	assert.Empty(t, p.ReportType)
}

func TestBuildScheduledReportPayloadUpsert(t *testing.T) {
	r := &model.ScheduledReport{
		Base:          model.Base{ID: uuid.New()},
		Name:          "Resumo diário",
		ReportType:    "summary",
		Frequency:     model.ReportFrequencyDaily,
		ExecutionTime: "08:00",
		Recipients:    pq.StringArray{"admin@example.com"},
		Format:        "pdf",
	}

	p := BuildScheduledReportPayload(r, "upsert", "k")

	assert.Equal(t, "upsert", p.Action)
	assert.Equal(t, "Resumo diário", p.Name)
	assert.Equal(t, "daily", p.Frequency)
	assert.Equal(t, []string{"admin@example.com"}, p.Recipients)
}
