package model

import "time"

// AppointmentStatus is an opaque label on this side of the boundary;
// transitions are driven by the upstream backend.
type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "Scheduled"
	AppointmentStatusConfirmed AppointmentStatus = "Confirmed"
	AppointmentStatusPending   AppointmentStatus = "Pending"
	AppointmentStatusCancelled AppointmentStatus = "Cancelled"
	AppointmentStatusCompleted AppointmentStatus = "Completed"
)

// Appointment carries its calendar date and time-of-day as separate
// strings, matching the upstream wire format. Both are local; see
// DateFormat.
type Appointment struct {
	ID          int64             `json:"id"`
	PatientID   int64             `json:"patient_id"`
	DoctorID    int64             `json:"doctor_id"`
	PatientName string            `json:"patient_name,omitempty"`
	Date        string            `json:"date"`
	Time        string            `json:"time"`
	Type        string            `json:"type,omitempty"`
	Notes       string            `json:"notes,omitempty"`
	Status      AppointmentStatus `json:"status"`
}

// StartsAt composes the appointment's local date and time in loc.
func (a *Appointment) StartsAt(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateFormat+" "+TimeFormat, a.Date+" "+a.Time, loc)
}

// AppointmentInput is the raw booking form submission, before the
// mutation gateway has validated and normalized it.
type AppointmentInput struct {
	PatientID   int64  `json:"patient_id" validate:"required"`
	DoctorID    int64  `json:"doctor_id"`
	PatientName string `json:"patient_name"`
	Type        string `json:"type" validate:"required"`
	Date        string `json:"date" validate:"required"`
	Time        string `json:"time" validate:"required"`
	Notes       string `json:"notes"`
}
