package model

import (
	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusActive    AppointmentStatus = "active"
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// Valid reports whether the status is one of the known values.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusActive, AppointmentStatusPending, AppointmentStatusCancelled:
		return true
	}
	return false
}

type Appointment struct {
	Base
	MidwifeID       uuid.UUID         `db:"midwife_id" json:"midwife_id"`
	ClientID        uuid.UUID         `db:"client_id" json:"client_id"`
	ServiceCode     string            `db:"service_code" json:"service_code"`
	AppointmentDate string            `db:"appointment_date" json:"appointment_date"` // dd/mm/yyyy
	StartTime       string            `db:"start_time" json:"start_time"`             // HH:MM
	EndTime         string            `db:"end_time" json:"end_time"`                 // HH:MM
	DurationMinutes int               `db:"duration_minutes" json:"duration"`
	Status          AppointmentStatus `db:"status" json:"status"`
	Notes           string            `db:"notes" json:"notes,omitempty"`
	CancelReason    *string           `db:"cancel_reason" json:"cancel_reason,omitempty"`
}

type CreateAppointmentRequest struct {
	MidwifeID       string `json:"midwife_id" binding:"required,uuid"`
	ClientID        string `json:"client_id" binding:"required,uuid"`
	ServiceCode     string `json:"service_code" binding:"required"`
	AppointmentDate string `json:"appointment_date" binding:"required,datekey"`
	StartTime       string `json:"start_time" binding:"required,clock"`
	EndTime         string `json:"end_time" binding:"required,clock"`
	Notes           string `json:"notes" binding:"max=1000"`
}

type UpdateAppointmentRequest struct {
	Status       *AppointmentStatus `json:"status"`
	Notes        *string            `json:"notes"`
	CancelReason *string            `json:"cancel_reason"`
}

// RescheduleAppointmentRequest moves an appointment onto a new timetable
// slot. The target date must be valid for the service and the slot free.
type RescheduleAppointmentRequest struct {
	AppointmentDate string `json:"appointment_date" binding:"required,datekey"`
	StartTime       string `json:"start_time" binding:"required,clock"`
	EndTime         string `json:"end_time" binding:"required,clock"`
}

// ReactivateAppointmentRequest rebooks a cancelled appointment, optionally
// onto a different slot than the one it originally held.
type ReactivateAppointmentRequest struct {
	AppointmentDate string `json:"appointment_date" binding:"required,datekey"`
	StartTime       string `json:"start_time" binding:"required,clock"`
	EndTime         string `json:"end_time" binding:"required,clock"`
}

type BulkCancelRequest struct {
	AppointmentIDs []uuid.UUID `json:"appointment_ids" binding:"required,min=1"`
	Reason         string      `json:"reason"`
}

// BulkCancelResult reports per-ID outcomes of a bulk cancellation.
type BulkCancelResult struct {
	Cancelled []uuid.UUID          `json:"cancelled"`
	Skipped   map[uuid.UUID]string `json:"skipped,omitempty"`
}

type AppointmentFilters struct {
	MidwifeID   uuid.UUID
	ClientID    uuid.UUID
	ServiceCode string
	Status      AppointmentStatus
	FromDate    string // dd/mm/yyyy inclusive
	ToDate      string // dd/mm/yyyy inclusive
}

// MonthlyView is the availability payload for one service and month:
// every bookable date with the timetable slots still free on it.
type MonthlyView struct {
	MidwifeID   uuid.UUID         `json:"midwife_id"`
	ServiceCode string            `json:"service_code"`
	Year        int               `json:"year"`
	Month       int               `json:"month"`
	ValidDates  []string          `json:"valid_dates"`
	FreeSlots   map[string][]Slot `json:"free_slots"`
}
