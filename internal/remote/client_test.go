package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akulbansal1/carelink/internal/model"
	apperrors "github.com/akulbansal1/carelink/pkg/errors"
	"github.com/akulbansal1/carelink/pkg/logger"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(Config{BaseURL: srv.URL}, nil)
	require.NoError(t, err)
	return c
}

func TestListPatientsDecodesAndCoercesIDs(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/users/", r.URL.Path)
		// Upstream sometimes sends ids as strings.
		w.Write([]byte(`[
			{"id": 1, "name": "John Smith", "date_of_birth": "1990-01-01", "status": "active"},
			{"id": "2", "name": "Sarah Johnson", "date_of_birth": "1985-03-12"}
		]`))
	}))

	patients, err := c.ListPatients(context.Background())
	require.NoError(t, err)
	require.Len(t, patients, 2)
	assert.Equal(t, int64(2), patients[1].ID)
	assert.Equal(t, model.PatientStatusActive, patients[1].Status, "missing status defaults to active")
}

func TestListPatientsFailsLoudlyOnMissingID(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"name": "No ID"}]`))
	}))

	_, err := c.ListPatients(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing id")
}

func TestRemoteErrorCarriesStatusAndMessage(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"detail": "maintenance window"}`))
	}))

	_, err := c.ListDoctors(context.Background())
	var remoteErr *apperrors.RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, http.StatusServiceUnavailable, remoteErr.Status)
	assert.Equal(t, "maintenance window", remoteErr.Message)
}

func TestListCacheServesRepeatCallsAndMutationInvalidates(t *testing.T) {
	var listCalls int
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			listCalls++
			w.Write([]byte(`[{"id": 1, "date": "2025-06-27", "time": "09:00:00"}]`))
		case r.Method == http.MethodPost:
			w.Write([]byte(`{"id": 2, "date": "2025-07-01", "time": "10:00:00", "user_id": 1}`))
		}
	}))

	ctx := context.Background()
	_, err := c.ListAppointments(ctx)
	require.NoError(t, err)
	_, err = c.ListAppointments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, listCalls, "second list served from cache")

	_, err = c.CreateAppointment(ctx, &model.AppointmentInput{
		PatientID: 1, PatientName: "John Smith", Date: "2025-07-01", Time: "10:00:00",
	})
	require.NoError(t, err)

	_, err = c.ListAppointments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, listCalls, "create invalidates the appointment lists")
}

func TestCreateAppointmentSendsUpstreamPayloadShape(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/appointments/", r.URL.Path)

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "John Smith", payload["name"])
		assert.Equal(t, "2025-07-01", payload["date"])
		assert.Equal(t, "10:00:00", payload["time"])
		assert.EqualValues(t, 1, payload["user_id"])
		assert.EqualValues(t, 2, payload["doctor_id"])

		w.Write([]byte(`{"id": 7, "user_id": 1, "doctor_id": 2, "date": "2025-07-01", "time": "10:00:00"}`))
	}))

	created, err := c.CreateAppointment(context.Background(), &model.AppointmentInput{
		PatientID:   1,
		DoctorID:    2,
		PatientName: "John Smith",
		Date:        "2025-07-01",
		Time:        "10:00:00",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), created.ID)
	assert.Equal(t, model.AppointmentStatusScheduled, created.Status)
}

func TestTranscribeForwardsMultipart(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/medicines/transcribe", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "prescription.webm", header.Filename)
		w.Write([]byte(`{"name": "Amoxicillin", "dosage": "500mg"}`))
	}))

	out, err := c.Transcribe(context.Background(), "prescription.webm", strings.NewReader("audio-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "Amoxicillin", out["name"])
}

func TestAdminLogin(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/auth/admin/login", r.URL.Path)
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		if payload["password"] != "correct" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message": "invalid credentials"}`))
			return
		}
		w.Write([]byte(`{"id": 3, "name": "Dr. Lee", "location": "Downtown Clinic"}`))
	}))

	profile, err := c.AdminLogin(context.Background(), "lee@clinic.test", "correct")
	require.NoError(t, err)
	assert.Equal(t, int64(3), profile.DoctorID)
	assert.Equal(t, "Dr. Lee", profile.Name)

	_, err = c.AdminLogin(context.Background(), "lee@clinic.test", "wrong")
	var remoteErr *apperrors.RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, http.StatusUnauthorized, remoteErr.Status)
}

func TestClientLogsUpstreamFailures(t *testing.T) {
	var buf bytes.Buffer
	lg := logger.NewLogger(&logger.Config{
		Level:      logger.WarnLevel,
		TimeFormat: time.RFC3339,
		Output:     &buf,
	})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/users/") {
			w.Write([]byte(`{not json`))
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{BaseURL: srv.URL}, lg)
	require.NoError(t, err)

	_, err = c.ListDoctors(context.Background())
	require.Error(t, err)
	assert.Contains(t, buf.String(), "upstream error response")

	buf.Reset()
	_, err = c.ListPatients(context.Background())
	require.Error(t, err)
	assert.Contains(t, buf.String(), "upstream decode failed")
}
