package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatientAge(t *testing.T) {
	ref := time.Date(2025, 6, 27, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		dob  string
		want int
	}{
		{"birthday already passed this year", "1990-03-12", 35},
		{"birthday not yet reached", "1990-07-01", 34},
		{"birthday today", "1990-06-27", 35},
		{"unparseable date of birth", "not-a-date", 0},
		{"born after the reference date", "2030-01-01", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Patient{DateOfBirth: tt.dob}
			assert.Equal(t, tt.want, p.Age(ref))
		})
	}
}

func TestAppointmentStartsAt(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	a := &Appointment{Date: "2025-06-27", Time: "09:30:00"}
	startsAt, err := a.StartsAt(loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 27, 9, 30, 0, 0, loc), startsAt)

	a = &Appointment{Date: "2025-06-27", Time: "morning"}
	_, err = a.StartsAt(loc)
	assert.Error(t, err)
}
