package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akulbansal1/carelink/internal/model"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return NewEngine(loc)
}

func appt(id int64, date, tm string) *model.Appointment {
	return &model.Appointment{ID: id, Date: date, Time: tm, Status: model.AppointmentStatusScheduled}
}

func TestUpcomingAndPastPartition(t *testing.T) {
	e := newTestEngine(t)
	appointments := []*model.Appointment{
		appt(1, "2025-06-27", "09:00:00"),
		appt(2, "2020-01-01", "10:00:00"),
		appt(3, "2025-06-26", "23:59:00"),
		appt(4, "2025-07-01", "08:30:00"),
		appt(5, "2025-06-27", "09:00:00"),
	}

	upcoming := e.Upcoming(appointments, "2025-06-27")
	past := e.Past(appointments, "2025-06-27")

	seen := make(map[int64]int)
	for _, a := range upcoming {
		seen[a.ID]++
	}
	for _, a := range past {
		seen[a.ID]++
	}
	require.Len(t, seen, len(appointments))
	for id, n := range seen {
		assert.Equal(t, 1, n, "appointment %d appears exactly once", id)
	}
}

func TestUpcomingSortedAscendingWithIDTieBreak(t *testing.T) {
	e := newTestEngine(t)
	appointments := []*model.Appointment{
		appt(9, "2025-07-01", "09:00:00"),
		appt(3, "2025-06-28", "14:00:00"),
		appt(7, "2025-07-01", "09:00:00"),
		appt(4, "2025-06-28", "09:00:00"),
	}

	got := e.Upcoming(appointments, "2025-06-27")
	var ids []int64
	for _, a := range got {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []int64{4, 3, 7, 9}, ids)

	// Idempotent: second call yields the identical ordering.
	again := e.Upcoming(appointments, "2025-06-27")
	assert.Equal(t, got, again)
}

func TestPastSortedDescending(t *testing.T) {
	e := newTestEngine(t)
	appointments := []*model.Appointment{
		appt(1, "2024-01-01", "10:00:00"),
		appt(2, "2024-06-15", "08:00:00"),
		appt(3, "2024-06-15", "16:30:00"),
	}

	got := e.Past(appointments, "2025-01-01")
	var ids []int64
	for _, a := range got {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []int64{3, 2, 1}, ids)
}

func TestEndToEndScenario(t *testing.T) {
	e := newTestEngine(t)
	appointments := []*model.Appointment{
		{ID: 1, PatientID: 1, Date: "2025-06-27", Time: "09:00:00", Status: model.AppointmentStatusScheduled},
		{ID: 2, PatientID: 2, Date: "2020-01-01", Time: "10:00:00", Status: model.AppointmentStatusCompleted},
	}

	upcoming := e.Upcoming(appointments, "2025-06-27")
	require.Len(t, upcoming, 1)
	assert.Equal(t, int64(1), upcoming[0].ID)

	past := e.Past(appointments, "2025-06-27")
	require.Len(t, past, 1)
	assert.Equal(t, int64(2), past[0].ID)
}

func TestBucketByDateKeepsLocalCalendarDay(t *testing.T) {
	// A timezone far west of UTC: naive UTC parsing of "2025-06-27"
	// would render back as 2025-06-26 here.
	loc, err := time.LoadLocation("Pacific/Honolulu")
	require.NoError(t, err)
	e := NewEngine(loc)

	appointments := []*model.Appointment{
		appt(1, "2025-06-27", "09:00:00"),
		appt(2, "2025-06-27", "15:00:00"),
		appt(3, "2025-06-28", "10:00:00"),
	}

	buckets := e.BucketByDate(appointments)
	require.Len(t, buckets, 2)
	assert.Len(t, buckets["2025-06-27"], 2)
	assert.Len(t, buckets["2025-06-28"], 1)
	assert.NotContains(t, buckets, "2025-06-26")
}

func TestBucketByDateDropsUnparseable(t *testing.T) {
	e := newTestEngine(t)
	buckets := e.BucketByDate([]*model.Appointment{appt(1, "not-a-date", "09:00:00")})
	assert.Empty(t, buckets)
}

func TestDateRangeFilter(t *testing.T) {
	e := newTestEngine(t)
	appointments := []*model.Appointment{
		appt(1, "2025-06-01", "09:00:00"),
		appt(2, "2025-06-15", "09:00:00"),
		appt(3, "2025-06-30", "09:00:00"),
	}

	t.Run("inclusive bounds", func(t *testing.T) {
		got := e.DateRangeFilter(appointments, "2025-06-01", "2025-06-15")
		require.Len(t, got, 2)
		assert.Equal(t, int64(1), got[0].ID)
		assert.Equal(t, int64(2), got[1].ID)
	})

	t.Run("empty range passes through", func(t *testing.T) {
		got := e.DateRangeFilter(appointments, "", "")
		assert.Equal(t, appointments, got)
	})

	t.Run("open-ended start", func(t *testing.T) {
		got := e.DateRangeFilter(appointments, "", "2025-06-01")
		require.Len(t, got, 1)
		assert.Equal(t, int64(1), got[0].ID)
	})
}

func TestMedicineStatusBoundaries(t *testing.T) {
	e := newTestEngine(t)
	today := "2025-06-27"

	tests := []struct {
		name  string
		start string
		end   string
		want  model.MedicineStatus
	}{
		{"start equals end equals today", "2025-06-27", "2025-06-27", model.MedicineStatusActive},
		{"starts tomorrow", "2025-06-28", "2025-07-05", model.MedicineStatusUpcoming},
		{"ended yesterday", "2025-06-01", "2025-06-26", model.MedicineStatusCompleted},
		{"spans today", "2025-06-20", "2025-07-01", model.MedicineStatusActive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &model.Medicine{StartDate: tt.start, EndDate: tt.end}
			assert.Equal(t, tt.want, e.MedicineStatus(m, today))
		})
	}
}

func TestAnnotateMedicinesDoesNotMutateInput(t *testing.T) {
	e := newTestEngine(t)
	meds := []*model.Medicine{
		{ID: 1, Name: "Amoxicillin", StartDate: "2025-06-20", EndDate: "2025-07-01"},
	}

	annotated := e.AnnotateMedicines(meds, "2025-06-27")
	require.Len(t, annotated, 1)
	assert.Equal(t, model.MedicineStatusActive, annotated[0].Status)
	assert.Empty(t, meds[0].Status)
}

func TestSearch(t *testing.T) {
	contacts := []*model.EmergencyContact{
		{Name: "Sarah Johnson", Relation: "Sister", Phone: "+1 (555) 987-6543"},
		{Name: "Mike Chen", Relation: "Friend", Phone: "+1 (555) 123-4567"},
	}
	fields := func(c *model.EmergencyContact) []string {
		return []string{c.Name, c.Relation, c.Phone}
	}

	t.Run("case-insensitive name match", func(t *testing.T) {
		got := Search(contacts, fields, "sarah")
		require.Len(t, got, 1)
		assert.Equal(t, "Sarah Johnson", got[0].Name)
	})

	t.Run("substring phone match", func(t *testing.T) {
		got := Search(contacts, fields, "987")
		require.Len(t, got, 1)
		assert.Equal(t, "Sarah Johnson", got[0].Name)
	})

	t.Run("empty query passes through", func(t *testing.T) {
		assert.Equal(t, contacts, Search(contacts, fields, ""))
	})

	t.Run("order preserved", func(t *testing.T) {
		got := Search(contacts, fields, "555")
		require.Len(t, got, 2)
		assert.Equal(t, "Sarah Johnson", got[0].Name)
		assert.Equal(t, "Mike Chen", got[1].Name)
	})
}
