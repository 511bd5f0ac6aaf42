package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ruanmelo/agenda-api/internal/model"
	"github.com/ruanmelo/agenda-api/internal/repository"
)

// messages maps each appointment event to the text shown in the user's inbox.
var messages = map[model.NotificationType]string{
	model.NotificationAppointmentCreated:   "Novo agendamento criado com sucesso.",
	model.NotificationAppointmentConfirmed: "Seu agendamento foi confirmado!",
	model.NotificationAppointmentCanceled:  "Agendamento cancelado.",
	model.NotificationAppointmentEdited:    "Detalhes do agendamento foram atualizados.",
}

type Service interface {
	NotifyAppointmentEvent(ctx context.Context, userID uuid.UUID, appointmentID uuid.UUID, event model.NotificationType) error
	List(ctx context.Context, userID uuid.UUID) ([]*model.Notification, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo repository.NotificationRepository
}

func NewService(repo repository.NotificationRepository) Service {
	return &service{repo: repo}
}

func (s *service) NotifyAppointmentEvent(ctx context.Context, userID uuid.UUID, appointmentID uuid.UUID, event model.NotificationType) error {
	message, ok := messages[event]
	if !ok {
		return fmt.Errorf("unknown notification type: %s", event)
	}

	n := &model.Notification{
		ID:            uuid.New(),
		UserID:        userID,
		AppointmentID: &appointmentID,
		Type:          event,
		Message:       message,
		SentAt:        time.Now(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]*model.Notification, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.UnreadCount(ctx, userID)
}

func (s *service) MarkRead(ctx context.Context, id uuid.UUID) error {
	return s.repo.MarkRead(ctx, id)
}

func (s *service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
