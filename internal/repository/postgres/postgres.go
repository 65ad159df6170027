package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/hebamio/midwife-api/internal/repository"
)

type midwifeRepository struct {
	BaseRepository
}

type appointmentRepository struct {
	BaseRepository
}

type leadRepository struct {
	BaseRepository
}

type clientRepository struct {
	BaseRepository
}

type phoneBookingRepository struct {
	BaseRepository
}

type userRepository struct {
	BaseRepository
}

type tokenRepository struct {
	BaseRepository
}

func NewMidwifeRepository(db *sqlx.DB) repository.MidwifeRepository {
	return &midwifeRepository{NewBaseRepository(db)}
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{NewBaseRepository(db)}
}

func NewLeadRepository(db *sqlx.DB) repository.LeadRepository {
	return &leadRepository{NewBaseRepository(db)}
}

func NewClientRepository(db *sqlx.DB) repository.ClientRepository {
	return &clientRepository{NewBaseRepository(db)}
}

func NewPhoneBookingRepository(db *sqlx.DB) repository.PhoneBookingRepository {
	return &phoneBookingRepository{NewBaseRepository(db)}
}

func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{NewBaseRepository(db)}
}

func NewTokenRepository(db *sqlx.DB) repository.TokenRepository {
	return &tokenRepository{NewBaseRepository(db)}
}
