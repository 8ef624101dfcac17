package model

import (
	"time"

	"github.com/google/uuid"
)

// EmergencyContact is the one entity this service owns outright; there
// is no upstream endpoint for it.
type EmergencyContact struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PatientID int64     `db:"patient_id" json:"patient_id"`
	Name      string    `db:"name" json:"name"`
	Relation  string    `db:"relation" json:"relation"`
	Phone     string    `db:"phone" json:"phone"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ContactInput is a contact form submission before gateway validation.
// Phone may arrive with formatting; normalization strips it to digits.
type ContactInput struct {
	PatientID int64  `json:"patient_id"`
	Name      string `json:"name" validate:"required"`
	Relation  string `json:"relation" validate:"required"`
	Phone     string `json:"phone" validate:"required"`
}
