// Package gateway validates and normalizes mutations before they are
// admitted to a record store or handed to the sync adapter. Validation
// is pure; a rejected input never reaches the network.
package gateway

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/akulbansal1/carelink/internal/model"
	apperrors "github.com/akulbansal1/carelink/pkg/errors"
)

// Gateway owns a validator instance and the clock/location used for
// "not in the past" checks. Now is injectable for tests.
type Gateway struct {
	validate *validator.Validate
	loc      *time.Location
	now      func() time.Time
}

func New(loc *time.Location) *Gateway {
	if loc == nil {
		loc = time.Local
	}
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Gateway{
		validate: v,
		loc:      loc,
		now:      time.Now,
	}
}

// WithClock fixes the gateway's notion of "now". Tests only.
func (g *Gateway) WithClock(now func() time.Time) *Gateway {
	g.now = now
	return g
}

// ValidateContact checks a contact submission and returns it
// normalized: trimmed strings, phone reduced to digits.
func (g *Gateway) ValidateContact(input model.ContactInput) (*model.ContactInput, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Relation = strings.TrimSpace(input.Relation)
	input.Phone = digitsOnly(input.Phone)

	fields := g.structFields(input)
	if input.Phone == "" && fields["phone"] == "" {
		fields["phone"] = "must contain digits"
	}
	if len(fields) > 0 {
		return nil, apperrors.NewValidationError(fields)
	}
	return &input, nil
}

// ValidateMedication checks a prescription submission. Both dates must
// parse and endDate must not precede startDate.
func (g *Gateway) ValidateMedication(input model.MedicationInput) (*model.MedicationInput, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Dosage = strings.TrimSpace(input.Dosage)
	input.Frequency = strings.TrimSpace(input.Frequency)
	input.Notes = strings.TrimSpace(input.Notes)

	fields := g.structFields(input)

	start, startErr := g.parseDate(input.StartDate)
	if startErr != nil && fields["start_date"] == "" {
		fields["start_date"] = "must be a valid date (YYYY-MM-DD)"
	}
	end, endErr := g.parseDate(input.EndDate)
	if endErr != nil && fields["end_date"] == "" {
		fields["end_date"] = "must be a valid date (YYYY-MM-DD)"
	}
	if startErr == nil && endErr == nil && end.Before(start) {
		fields["end_date"] = "must not be before start date"
	}

	if len(fields) > 0 {
		return nil, apperrors.NewValidationError(fields)
	}

	input.StartDate = start.Format(model.DateFormat)
	input.EndDate = end.Format(model.DateFormat)
	return &input, nil
}

// ValidateAppointment checks a booking submission. The composed local
// date-time must not be strictly before the current moment.
func (g *Gateway) ValidateAppointment(input model.AppointmentInput) (*model.AppointmentInput, error) {
	input.PatientName = strings.TrimSpace(input.PatientName)
	input.Type = strings.TrimSpace(input.Type)
	input.Notes = strings.TrimSpace(input.Notes)

	fields := g.structFields(input)

	date, dateErr := g.parseDate(input.Date)
	if dateErr != nil && fields["date"] == "" {
		fields["date"] = "must be a valid date (YYYY-MM-DD)"
	}
	clock, timeErr := parseTimeOfDay(input.Time)
	if timeErr != nil && fields["time"] == "" {
		fields["time"] = "must be a valid time (HH:mm or HH:mm:ss)"
	}

	if dateErr == nil && timeErr == nil {
		startsAt := date.Add(clock)
		if startsAt.Before(g.now().In(g.loc)) {
			fields["date"] = "must not be in the past"
		}
	}

	if len(fields) > 0 {
		return nil, apperrors.NewValidationError(fields)
	}

	input.Date = date.Format(model.DateFormat)
	input.Time = formatTimeOfDay(clock)
	return &input, nil
}

// structFields runs tag-based validation and flattens the result into a
// field → message map.
func (g *Gateway) structFields(input interface{}) map[string]string {
	fields := make(map[string]string)
	err := g.validate.Struct(input)
	if err == nil {
		return fields
	}
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			switch fe.Tag() {
			case "required":
				fields[fe.Field()] = "is required"
			default:
				fields[fe.Field()] = "is invalid"
			}
		}
	}
	return fields
}

func (g *Gateway) parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(model.DateFormat, strings.TrimSpace(s), g.loc)
}

// parseTimeOfDay accepts HH:mm or HH:mm:ss and returns the offset from
// midnight.
func parseTimeOfDay(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(model.TimeFormat, s)
	if err != nil {
		t, err = time.Parse("15:04", s)
		if err != nil {
			return 0, err
		}
	}
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second, nil
}

func formatTimeOfDay(d time.Duration) string {
	base := time.Date(0, 1, 1, 0, 0, 0, 0, time.UTC).Add(d)
	return base.Format(model.TimeFormat)
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
