package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/hebamio/midwife-api/internal/schedule"
)

// Timetable and Slot re-export the schedule engine's types so callers
// outside the booking path can stay on the model package.
type (
	Timetable = schedule.Timetable
	Slot      = schedule.Slot
)

// ServiceDurations maps a service code (A1, B1, C2, ...) to its duration
// in minutes.
type ServiceDurations map[string]int

type Midwife struct {
	Base
	UserID      uuid.UUID        `db:"user_id" json:"user_id"`
	FirstName   string           `db:"first_name" json:"first_name"`
	LastName    string           `db:"last_name" json:"last_name"`
	Email       string           `db:"email" json:"email"`
	Phone       string           `db:"phone" json:"phone,omitempty"`
	Region      string           `db:"region" json:"region,omitempty"`
	Bio         string           `db:"bio" json:"bio,omitempty"`
	Timezone    string           `db:"timezone" json:"timezone"`
	Timetable   Timetable        `db:"-" json:"timetable"`
	Durations   ServiceDurations `db:"-" json:"service_durations"`
	AcceptsNew  bool             `db:"accepts_new" json:"accepts_new"`
}

// Location resolves the midwife's configured timezone, falling back to
// local time when unset or unknown.
func (m *Midwife) Location() *time.Location {
	if m.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(m.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// ServiceDuration returns the configured duration for a service code, or
// zero when the midwife does not offer it.
func (m *Midwife) ServiceDuration(serviceCode string) int {
	return m.Durations[serviceCode]
}

type UpdateMidwifeRequest struct {
	FirstName  *string          `json:"first_name"`
	LastName   *string          `json:"last_name"`
	Phone      *string          `json:"phone"`
	Region     *string          `json:"region"`
	Bio        *string          `json:"bio"`
	Timezone   *string          `json:"timezone"`
	AcceptsNew *bool            `json:"accepts_new"`
	Timetable  Timetable        `json:"timetable,omitempty"`
	Durations  ServiceDurations `json:"service_durations,omitempty"`
}

// BookingPage is the public payload served to the booking screen for one
// midwife: profile basics plus everything needed to render slots.
type BookingPage struct {
	MidwifeID uuid.UUID        `json:"midwife_id"`
	Name      string           `json:"name"`
	Region    string           `json:"region,omitempty"`
	Bio       string           `json:"bio,omitempty"`
	Timetable Timetable        `json:"timetable"`
	Durations ServiceDurations `json:"service_durations"`
}
