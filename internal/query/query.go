// Package query computes read-only derived views over snapshots of
// appointment and medicine collections. Every operation is pure and
// deterministic: same inputs, same output, fixed tie-breaks.
package query

import (
	"sort"
	"strings"
	"time"

	"github.com/akulbansal1/carelink/internal/model"
)

// Engine interprets calendar dates in a fixed location. All date
// comparisons are day-granular in that location, never UTC, so an
// appointment on "2025-06-27" stays on the 27th regardless of the
// runtime's offset.
type Engine struct {
	loc *time.Location
}

func NewEngine(loc *time.Location) *Engine {
	if loc == nil {
		loc = time.Local
	}
	return &Engine{loc: loc}
}

// day parses a calendar-date string at midnight in the engine's
// location and truncates to (year, month, day).
func (e *Engine) day(date string) (time.Time, bool) {
	t, err := time.ParseInLocation(model.DateFormat, strings.TrimSpace(date), e.loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Upcoming returns appointments on or after the reference date, sorted
// ascending by (date, time), id as tie-break.
func (e *Engine) Upcoming(appointments []*model.Appointment, referenceDate string) []*model.Appointment {
	ref, ok := e.day(referenceDate)
	if !ok {
		return nil
	}
	var out []*model.Appointment
	for _, a := range appointments {
		if d, ok := e.day(a.Date); ok && !d.Before(ref) {
			out = append(out, a)
		}
	}
	sortAppointments(out, false)
	return out
}

// Past returns appointments strictly before the reference date, sorted
// descending by (date, time), id as tie-break.
func (e *Engine) Past(appointments []*model.Appointment, referenceDate string) []*model.Appointment {
	ref, ok := e.day(referenceDate)
	if !ok {
		return nil
	}
	var out []*model.Appointment
	for _, a := range appointments {
		if d, ok := e.day(a.Date); ok && d.Before(ref) {
			out = append(out, a)
		}
	}
	sortAppointments(out, true)
	return out
}

// BucketByDate groups appointments by local calendar day. Bucket keys
// are the canonical YYYY-MM-DD rendering of the parsed date, so two
// representations of the same day land in one bucket and a day never
// leaks into its neighbours. Appointments with unparseable dates are
// dropped.
func (e *Engine) BucketByDate(appointments []*model.Appointment) map[string][]*model.Appointment {
	buckets := make(map[string][]*model.Appointment)
	for _, a := range appointments {
		d, ok := e.day(a.Date)
		if !ok {
			continue
		}
		key := d.Format(model.DateFormat)
		buckets[key] = append(buckets[key], a)
	}
	return buckets
}

// DateRangeFilter keeps appointments whose date falls within
// [start, end] inclusive. Empty or unparseable bounds apply no filter
// on that side; callers validate user-supplied bounds.
func (e *Engine) DateRangeFilter(appointments []*model.Appointment, start, end string) []*model.Appointment {
	if start == "" && end == "" {
		return appointments
	}
	from, hasFrom := e.day(start)
	to, hasTo := e.day(end)
	var out []*model.Appointment
	for _, a := range appointments {
		d, ok := e.day(a.Date)
		if !ok {
			continue
		}
		if hasFrom && d.Before(from) {
			continue
		}
		if hasTo && d.After(to) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// MedicineStatus derives the prescription state at the reference date.
// The active range is inclusive on both ends: start = end = today is
// Active.
func (e *Engine) MedicineStatus(m *model.Medicine, referenceDate string) model.MedicineStatus {
	ref, ok := e.day(referenceDate)
	if !ok {
		return model.MedicineStatusActive
	}
	if start, ok := e.day(m.StartDate); ok && ref.Before(start) {
		return model.MedicineStatusUpcoming
	}
	if end, ok := e.day(m.EndDate); ok && ref.After(end) {
		return model.MedicineStatusCompleted
	}
	return model.MedicineStatusActive
}

// AnnotateMedicines returns a copy of the collection with derived
// statuses filled in.
func (e *Engine) AnnotateMedicines(medicines []*model.Medicine, referenceDate string) []*model.Medicine {
	out := make([]*model.Medicine, 0, len(medicines))
	for _, m := range medicines {
		annotated := *m
		annotated.Status = e.MedicineStatus(m, referenceDate)
		out = append(out, &annotated)
	}
	return out
}

// Search filters a collection by case-insensitive substring match of
// query against the values produced by fields, preserving the original
// order. An empty query passes everything through.
func Search[T any](collection []T, fields func(T) []string, query string) []T {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return collection
	}
	var out []T
	for _, item := range collection {
		for _, v := range fields(item) {
			if strings.Contains(strings.ToLower(v), q) {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

func sortAppointments(appointments []*model.Appointment, descending bool) {
	sort.SliceStable(appointments, func(i, j int) bool {
		a, b := appointments[i], appointments[j]
		if descending {
			a, b = b, a
		}
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.Time != b.Time {
			return a.Time < b.Time
		}
		return a.ID < b.ID
	})
}
