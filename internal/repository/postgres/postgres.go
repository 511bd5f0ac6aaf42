package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/ruanmelo/agenda-api/internal/repository"
)

type userRepository struct {
	*BaseRepository
}

type appointmentRepository struct {
	*BaseRepository
}

type availabilityRepository struct {
	*BaseRepository
}

type notificationRepository struct {
	*BaseRepository
}

type reportRepository struct {
	*BaseRepository
}

func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{NewBaseRepository(db)}
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{NewBaseRepository(db)}
}

func NewAvailabilityRepository(db *sqlx.DB) repository.AvailabilityRepository {
	return &availabilityRepository{NewBaseRepository(db)}
}

func NewNotificationRepository(db *sqlx.DB) repository.NotificationRepository {
	return &notificationRepository{NewBaseRepository(db)}
}

func NewReportRepository(db *sqlx.DB) repository.ReportRepository {
	return &reportRepository{NewBaseRepository(db)}
}
