package model

import (
	"github.com/google/uuid"
)

type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusConverted LeadStatus = "converted"
	LeadStatusDeclined  LeadStatus = "declined"
)

func (s LeadStatus) Valid() bool {
	switch s {
	case LeadStatusNew, LeadStatusContacted, LeadStatusConverted, LeadStatusDeclined:
		return true
	}
	return false
}

// Lead is a prospective patient who submitted an initial consultation
// request and has not yet been converted to an active client.
type Lead struct {
	Base
	MidwifeID   uuid.UUID  `db:"midwife_id" json:"midwife_id"`
	FirstName   string     `db:"first_name" json:"first_name"`
	LastName    string     `db:"last_name" json:"last_name"`
	Email       string     `db:"email" json:"email"`
	Phone       string     `db:"phone" json:"phone,omitempty"`
	ServiceCode string     `db:"service_code" json:"service_code,omitempty"`
	DueDate     *string    `db:"due_date" json:"due_date,omitempty"` // dd/mm/yyyy
	Message     string     `db:"message" json:"message,omitempty"`
	Status      LeadStatus `db:"status" json:"status"`
	ClientID    *uuid.UUID `db:"client_id" json:"client_id,omitempty"`
}

type CreateLeadRequest struct {
	MidwifeID   string `json:"midwife_id" binding:"required,uuid"`
	FirstName   string `json:"first_name" binding:"required"`
	LastName    string `json:"last_name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Phone       string `json:"phone"`
	ServiceCode string `json:"service_code"`
	DueDate     string `json:"due_date" binding:"omitempty,datekey"`
	Message     string `json:"message" binding:"max=2000"`
}

type UpdateLeadStatusRequest struct {
	Status LeadStatus `json:"status" binding:"required"`
}

// Client is a converted lead: an active patient of a midwife.
type Client struct {
	Base
	MidwifeID uuid.UUID `db:"midwife_id" json:"midwife_id"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	Email     string    `db:"email" json:"email"`
	Phone     string    `db:"phone" json:"phone,omitempty"`
}

// ClientName is the minimal projection served by the names lookup.
type ClientName struct {
	ID        uuid.UUID `db:"id" json:"id"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
}
