package appointment

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akulbansal1/carelink/internal/gateway"
	"github.com/akulbansal1/carelink/internal/model"
	"github.com/akulbansal1/carelink/internal/notification"
	"github.com/akulbansal1/carelink/internal/query"
)

type fakeRegistry struct {
	appointments []*model.Appointment
	patients     []*model.Patient
	created      []*model.AppointmentInput
	nextID       int64
}

func (f *fakeRegistry) ListAppointments(context.Context) ([]*model.Appointment, error) {
	return f.appointments, nil
}

func (f *fakeRegistry) ListDoctorAppointments(_ context.Context, doctorID int64) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, a := range f.appointments {
		if a.DoctorID == doctorID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeRegistry) CreateAppointment(_ context.Context, input *model.AppointmentInput) (*model.Appointment, error) {
	f.created = append(f.created, input)
	f.nextID++
	appt := &model.Appointment{
		ID:          f.nextID + 100,
		PatientID:   input.PatientID,
		DoctorID:    input.DoctorID,
		PatientName: input.PatientName,
		Date:        input.Date,
		Time:        input.Time,
		Type:        input.Type,
		Notes:       input.Notes,
		Status:      model.AppointmentStatusScheduled,
	}
	f.appointments = append(f.appointments, appt)
	return appt, nil
}

func (f *fakeRegistry) ListPatients(context.Context) ([]*model.Patient, error) {
	return f.patients, nil
}

func newTestRouter(t *testing.T, registry *fakeRegistry) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	frozen := time.Date(2025, 6, 27, 12, 0, 0, 0, loc)

	gw := gateway.New(loc).WithClock(func() time.Time { return frozen })
	h := NewHandler(registry, query.NewEngine(loc), gw, notification.NewService(notification.SMTPConfig{}, loc), loc)
	h.now = func() time.Time { return frozen }
	t.Cleanup(h.Close)

	r := gin.New()
	api := r.Group("/api/v1")
	h.RegisterRoutes(api)
	h.RegisterAdminRoutes(api)
	return r
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    int               `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

func doRequest(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func seedRegistry() *fakeRegistry {
	return &fakeRegistry{
		appointments: []*model.Appointment{
			{ID: 1, PatientID: 1, DoctorID: 3, PatientName: "John Smith", Date: "2025-06-27", Time: "09:00:00", Status: model.AppointmentStatusScheduled},
			{ID: 2, PatientID: 2, DoctorID: 3, PatientName: "Sarah Johnson", Date: "2020-01-01", Time: "10:00:00", Status: model.AppointmentStatusCompleted},
			{ID: 3, PatientID: 1, DoctorID: 4, PatientName: "John Smith", Date: "2025-07-05", Time: "11:00:00", Status: model.AppointmentStatusPending},
		},
		patients: []*model.Patient{
			{ID: 1, Name: "John Smith", Email: "john@example.com"},
			{ID: 2, Name: "Sarah Johnson", Email: "sarah@example.com"},
		},
	}
}

func TestListAppointmentsUpcomingView(t *testing.T) {
	r := newTestRouter(t, seedRegistry())

	w, env := doRequest(t, r, http.MethodGet, "/api/v1/appointments?view=upcoming&ref=2025-06-27", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, env.Success)

	var got []*model.Appointment
	require.NoError(t, json.Unmarshal(env.Data, &got))
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(3), got[1].ID)
}

func TestListAppointmentsPastViewForPatient(t *testing.T) {
	r := newTestRouter(t, seedRegistry())

	w, env := doRequest(t, r, http.MethodGet, "/api/v1/appointments?view=past&ref=2025-06-27&patient_id=2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got []*model.Appointment
	require.NoError(t, json.Unmarshal(env.Data, &got))
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].ID)
}

func TestListAppointmentsSearch(t *testing.T) {
	r := newTestRouter(t, seedRegistry())

	_, env := doRequest(t, r, http.MethodGet, "/api/v1/appointments?q=sarah", nil)
	var got []*model.Appointment
	require.NoError(t, json.Unmarshal(env.Data, &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Sarah Johnson", got[0].PatientName)
}

func TestListAppointmentsRejectsBadDateBound(t *testing.T) {
	r := newTestRouter(t, seedRegistry())

	w, env := doRequest(t, r, http.MethodGet, "/api/v1/appointments?from=garbage", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Message, "invalid date bound")

	w, _ = doRequest(t, r, http.MethodGet, "/api/v1/appointments?from=2025-06-01&to=2025-06-30", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCalendarBucketsByDay(t *testing.T) {
	r := newTestRouter(t, seedRegistry())

	w, env := doRequest(t, r, http.MethodGet, "/api/v1/appointments/calendar", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var buckets map[string][]*model.Appointment
	require.NoError(t, json.Unmarshal(env.Data, &buckets))
	assert.Len(t, buckets["2025-06-27"], 1)
	assert.Len(t, buckets["2020-01-01"], 1)
	assert.Len(t, buckets["2025-07-05"], 1)
}

func TestCreateAppointmentRejectsPastDate(t *testing.T) {
	registry := seedRegistry()
	r := newTestRouter(t, registry)

	w, env := doRequest(t, r, http.MethodPost, "/api/v1/appointments", model.AppointmentInput{
		PatientID:   1,
		DoctorID:    3,
		PatientName: "John Smith",
		Type:        "Checkup",
		Date:        "2020-01-01",
		Time:        "10:00:00",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Fields["date"], "past")
	assert.Empty(t, registry.created, "nothing reaches the sync adapter")
}

func TestCreateAppointmentNormalizesAndPersists(t *testing.T) {
	registry := seedRegistry()
	r := newTestRouter(t, registry)

	w, env := doRequest(t, r, http.MethodPost, "/api/v1/appointments", model.AppointmentInput{
		PatientID:   1,
		DoctorID:    3,
		PatientName: "  John Smith ",
		Type:        "Checkup",
		Date:        "2025-07-10",
		Time:        "14:30",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	require.True(t, env.Success)

	require.Len(t, registry.created, 1)
	assert.Equal(t, "John Smith", registry.created[0].PatientName)
	assert.Equal(t, "14:30:00", registry.created[0].Time)

	var created model.Appointment
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, model.AppointmentStatusScheduled, created.Status)
}

func TestDoctorAppointmentsSplitsUpcomingAndPast(t *testing.T) {
	r := newTestRouter(t, seedRegistry())

	_, env := doRequest(t, r, http.MethodGet, "/api/v1/appointments/doctor/3?ref=2025-06-27", nil)
	var got struct {
		Upcoming []*model.Appointment `json:"upcoming"`
		Past     []*model.Appointment `json:"past"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &got))
	require.Len(t, got.Upcoming, 1)
	assert.Equal(t, int64(1), got.Upcoming[0].ID)
	require.Len(t, got.Past, 1)
	assert.Equal(t, int64(2), got.Past[0].ID)
}
