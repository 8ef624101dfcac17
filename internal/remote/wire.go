package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/akulbansal1/carelink/internal/model"
)

// flexInt tolerates the upstream's loose typing of numeric ids: it
// accepts a JSON number, a numeric string, or an empty string (decoded
// as zero). The looseness stops here; everything past the decode
// boundary sees an int64.
type flexInt int64

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*f = 0
			return nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("numeric field holds %q: %w", s, err)
		}
		*f = flexInt(n)
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexInt(n)
	return nil
}

type wirePatient struct {
	ID          flexInt `json:"id"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	DateOfBirth string  `json:"date_of_birth"`
	Gender      string  `json:"gender"`
	Phone       string  `json:"phone"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"created_at"`
}

func (w *wirePatient) toModel() (*model.Patient, error) {
	if w.ID == 0 {
		return nil, fmt.Errorf("patient record missing id")
	}
	status := model.PatientStatus(w.Status)
	if status == "" {
		status = model.PatientStatusActive
	}
	createdAt, _ := time.Parse(time.RFC3339, w.CreatedAt)
	return &model.Patient{
		ID:          int64(w.ID),
		Name:        w.Name,
		Email:       w.Email,
		DateOfBirth: w.DateOfBirth,
		Gender:      w.Gender,
		Phone:       w.Phone,
		Status:      status,
		CreatedAt:   createdAt,
	}, nil
}

type wireDoctor struct {
	ID       flexInt `json:"id"`
	Name     string  `json:"name"`
	Location string  `json:"location"`
}

func (w *wireDoctor) toModel() (*model.Doctor, error) {
	if w.ID == 0 {
		return nil, fmt.Errorf("doctor record missing id")
	}
	return &model.Doctor{ID: int64(w.ID), Name: w.Name, Location: w.Location}, nil
}

type wireAppointment struct {
	ID     flexInt `json:"id"`
	UserID flexInt `json:"user_id"`
	Doctor flexInt `json:"doctor_id"`
	Name   string  `json:"name"`
	Date   string  `json:"date"`
	Time   string  `json:"time"`
	Type   string  `json:"type"`
	Notes  string  `json:"notes"`
	Status string  `json:"status"`
}

func (w *wireAppointment) toModel() (*model.Appointment, error) {
	if w.ID == 0 {
		return nil, fmt.Errorf("appointment record missing id")
	}
	status := model.AppointmentStatus(w.Status)
	if status == "" {
		status = model.AppointmentStatusScheduled
	}
	return &model.Appointment{
		ID:          int64(w.ID),
		PatientID:   int64(w.UserID),
		DoctorID:    int64(w.Doctor),
		PatientName: w.Name,
		Date:        w.Date,
		Time:        w.Time,
		Type:        w.Type,
		Notes:       w.Notes,
		Status:      status,
	}, nil
}

type wireMedicine struct {
	ID            flexInt `json:"id"`
	Name          string  `json:"name"`
	Dosage        string  `json:"dosage"`
	Frequency     string  `json:"frequency"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	Notes         string  `json:"notes"`
	UserID        flexInt `json:"user_id"`
	DoctorID      flexInt `json:"doctor_id"`
	AppointmentID flexInt `json:"appointment_id"`
}

func (w *wireMedicine) toModel() (*model.Medicine, error) {
	if w.ID == 0 {
		return nil, fmt.Errorf("medicine record missing id")
	}
	return &model.Medicine{
		ID:            int64(w.ID),
		Name:          w.Name,
		Dosage:        w.Dosage,
		Frequency:     w.Frequency,
		StartDate:     w.StartDate,
		EndDate:       w.EndDate,
		Notes:         w.Notes,
		PatientID:     int64(w.UserID),
		DoctorID:      int64(w.DoctorID),
		AppointmentID: int64(w.AppointmentID),
	}, nil
}

// appointmentPayload is the upstream create body. Field names follow
// the backend contract, not this service's models.
type appointmentPayload struct {
	Name     string `json:"name"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Notes    string `json:"notes"`
	UserID   int64  `json:"user_id"`
	DoctorID int64  `json:"doctor_id"`
}

type medicinePayload struct {
	Name          string `json:"name"`
	Dosage        string `json:"dosage"`
	Frequency     string `json:"frequency"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	Notes         string `json:"notes"`
	UserID        int64  `json:"user_id"`
	DoctorID      int64  `json:"doctor_id"`
	AppointmentID int64  `json:"appointment_id"`
}

type doctorPayload struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

type patientPayload struct {
	Name        string `json:"name,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	Gender      string `json:"gender,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Status      string `json:"status,omitempty"`
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type wireAdmin struct {
	ID       flexInt `json:"id"`
	Name     string  `json:"name"`
	Location string  `json:"location"`
}
