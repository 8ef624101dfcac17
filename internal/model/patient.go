package model

import "time"

type PatientStatus string

const (
	PatientStatusActive   PatientStatus = "active"
	PatientStatusInactive PatientStatus = "inactive"
)

// Patient mirrors the upstream user record. Patients are never
// hard-deleted; deactivation flips the status to inactive.
type Patient struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Email       string        `json:"email"`
	DateOfBirth string        `json:"date_of_birth"`
	Gender      string        `json:"gender"`
	Phone       string        `json:"phone"`
	Status      PatientStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
}

// Age derives the patient's age in whole years at the reference date.
// Age is never stored.
func (p *Patient) Age(ref time.Time) int {
	dob, err := time.Parse(DateFormat, p.DateOfBirth)
	if err != nil {
		return 0
	}
	years := ref.Year() - dob.Year()
	if ref.Month() < dob.Month() || (ref.Month() == dob.Month() && ref.Day() < dob.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

type UpdatePatientRequest struct {
	Name        *string        `json:"name"`
	DateOfBirth *string        `json:"date_of_birth"`
	Gender      *string        `json:"gender"`
	Phone       *string        `json:"phone"`
	Status      *PatientStatus `json:"status"`
}
