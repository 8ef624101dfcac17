package model

// MedicineStatus is derived from the prescription's date range against a
// reference date; it is never stored.
type MedicineStatus string

const (
	MedicineStatusUpcoming  MedicineStatus = "Upcoming"
	MedicineStatusActive    MedicineStatus = "Active"
	MedicineStatusCompleted MedicineStatus = "Completed"
)

// Medicine is a prescription entry, linked to the appointment during
// which it was prescribed.
type Medicine struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Dosage        string `json:"dosage"`
	Frequency     string `json:"frequency"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	Notes         string `json:"notes,omitempty"`
	PatientID     int64  `json:"patient_id"`
	DoctorID      int64  `json:"doctor_id"`
	AppointmentID int64  `json:"appointment_id"`

	// Status is filled in by the query engine at read time.
	Status MedicineStatus `json:"status,omitempty"`
}

// MedicationInput is a prescription form submission (manual entry or a
// transcribed prescription) before gateway validation.
type MedicationInput struct {
	Name          string `json:"name" validate:"required"`
	Dosage        string `json:"dosage" validate:"required"`
	Frequency     string `json:"frequency" validate:"required"`
	StartDate     string `json:"start_date" validate:"required"`
	EndDate       string `json:"end_date" validate:"required"`
	Notes         string `json:"notes"`
	PatientID     int64  `json:"patient_id"`
	DoctorID      int64  `json:"doctor_id"`
	AppointmentID int64  `json:"appointment_id"`
}
