package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/ruanmelo/agenda-api/internal/config"
	"github.com/ruanmelo/agenda-api/internal/model"
)

type Service interface {
	SendBookingConfirmation(ctx context.Context, apt *model.Appointment, providerName string) error
	SendCustom(ctx context.Context, to, subject, body string) error
}

type service struct {
	cfg    config.SMTPConfig
	logger zerolog.Logger
}

func NewService(cfg config.SMTPConfig, logger zerolog.Logger) Service {
	return &service{
		cfg:    cfg,
		logger: logger.With().Str("component", "email").Logger(),
	}
}

// SendBookingConfirmation mails the guest right after a booking succeeds. The
// confirmation number is the first segment of the appointment id, enough for
// support staff to look the record up.
func (s *service) SendBookingConfirmation(ctx context.Context, apt *model.Appointment, providerName string) error {
	if apt.GuestEmail == "" {
		return nil
	}

	confirmation := strings.ToUpper(apt.ID.String()[:8])

	body := fmt.Sprintf(`<h2>Agendamento confirmado!</h2>
<p>Olá %s,</p>
<p>Seu agendamento foi registrado com sucesso.</p>
<ul>
  <li><strong>Serviço:</strong> %s</li>
  <li><strong>Data:</strong> %s</li>
  <li><strong>Horário:</strong> %s</li>
  <li><strong>Profissional:</strong> %s</li>
  <li><strong>Número de confirmação:</strong> %s</li>
</ul>
<p>Até breve!</p>`, apt.GuestName, apt.Service, apt.Date, apt.Time, providerName, confirmation)

	return s.SendCustom(ctx, apt.GuestEmail, "Confirmação de agendamento", body)
}

func (s *service) SendCustom(_ context.Context, to, subject, body string) error {
	if s.cfg.Host == "" {
		s.logger.Warn().Str("to", to).Msg("smtp not configured, skipping email")
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.User, s.cfg.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info().Str("to", to).Str("subject", subject).Msg("email sent")
	return nil
}
