package model

import (
	"github.com/google/uuid"
)

// PhoneBooking is a callback request: a caller asks the midwife to ring
// them back in a preferred time window. No timetable slot is consumed.
type PhoneBooking struct {
	Base
	MidwifeID   uuid.UUID `db:"midwife_id" json:"midwife_id"`
	Name        string    `db:"name" json:"name"`
	Phone       string    `db:"phone" json:"phone"`
	PreferredAt string    `db:"preferred_at" json:"preferred_at,omitempty"` // free text, e.g. "mornings"
	Topic       string    `db:"topic" json:"topic,omitempty"`
	Status      string    `db:"status" json:"status"`
}

const (
	PhoneBookingStatusOpen   = "open"
	PhoneBookingStatusClosed = "closed"
)

type CreatePhoneBookingRequest struct {
	MidwifeID   string `json:"midwife_id" binding:"required,uuid"`
	Name        string `json:"name" binding:"required"`
	Phone       string `json:"phone" binding:"required"`
	PreferredAt string `json:"preferred_at"`
	Topic       string `json:"topic" binding:"max=500"`
}

// CreatePrivateServiceBookingRequest books a privately billed service at a
// custom start time inside the midwife's published availability windows,
// rather than on a fixed timetable slot.
type CreatePrivateServiceBookingRequest struct {
	ClientID        string `json:"client_id" binding:"required,uuid"`
	ServiceCode     string `json:"service_code" binding:"required"`
	AppointmentDate string `json:"appointment_date" binding:"required,datekey"` // dd/mm/yyyy
	StartTime       string `json:"start_time" binding:"required,clock"`       // HH:MM
	Notes           string `json:"notes" binding:"max=1000"`
}

// PrivateServiceOptions lists the bookable start times for a private
// service on a given date.
type PrivateServiceOptions struct {
	MidwifeID       uuid.UUID `json:"midwife_id"`
	ServiceCode     string    `json:"service_code"`
	AppointmentDate string    `json:"appointment_date"`
	DurationMinutes int       `json:"duration"`
	StartTimes      []string  `json:"start_times"`
}
