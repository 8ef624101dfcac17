// Package remote is the sync adapter: it translates validated mutations
// and list queries into calls against the upstream REST backend and
// decodes the responses into typed records. Malformed payloads fail
// loudly at this boundary instead of propagating into views.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/akulbansal1/carelink/internal/model"
	apperrors "github.com/akulbansal1/carelink/pkg/errors"
	"github.com/akulbansal1/carelink/pkg/logger"
)

const (
	defaultTimeout = 10 * time.Second

	// Lists are cached briefly to bound the refetch storm from views
	// mounting in quick succession; mutations invalidate their kind.
	listCacheTTL     = 15 * time.Second
	listCacheCleanup = time.Minute
)

type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client is a thin typed HTTP client. It never retries: callers observe
// a decoded value or a RemoteError and decide what to do.
type Client struct {
	http    *http.Client
	baseURL string
	lists   *cache.Cache
	logger  *logger.Logger
}

func NewClient(cfg Config, lg *logger.Logger) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("remote: base URL is required")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("remote: invalid base URL: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if lg == nil {
		lg = logger.NewLogger(nil)
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: base,
		lists:   cache.New(listCacheTTL, listCacheCleanup),
		logger:  lg,
	}, nil
}

// WithHTTPClient swaps the underlying http.Client. Tests only.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.http = h
	return c
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("remote: marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("remote: new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error(err, "upstream request failed", "method", method, "path", path)
		return &apperrors.RemoteError{Status: 0, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rerr := remoteErrorFrom(resp)
		c.logger.Warn("upstream error response", "method", method, "path", path, "status", resp.StatusCode)
		return rerr
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.logger.Error(err, "upstream decode failed", "method", method, "path", path)
		return fmt.Errorf("remote: decode %s %s: %w", method, path, err)
	}
	return nil
}

// remoteErrorFrom extracts the upstream's error message when it sends
// one, falling back to the HTTP status text.
func remoteErrorFrom(resp *http.Response) *apperrors.RemoteError {
	msg := http.StatusText(resp.StatusCode)
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err == nil && len(raw) > 0 {
		var body struct {
			Message string `json:"message"`
			Detail  string `json:"detail"`
		}
		if json.Unmarshal(raw, &body) == nil {
			if body.Message != "" {
				msg = body.Message
			} else if body.Detail != "" {
				msg = body.Detail
			}
		}
	}
	return &apperrors.RemoteError{Status: resp.StatusCode, Message: msg}
}

func decodeList[W any, M any](wires []W, convert func(*W) (M, error)) ([]M, error) {
	out := make([]M, 0, len(wires))
	for i := range wires {
		m, err := convert(&wires[i])
		if err != nil {
			return nil, fmt.Errorf("remote: record %d: %w", i, err)
		}
		out = append(out, m)
	}
	return out, nil
}

func listCached[M any](c *Client, ctx context.Context, key, path string, fetch func(context.Context, string) ([]M, error)) ([]M, error) {
	if cached, found := c.lists.Get(key); found {
		return cached.([]M), nil
	}
	items, err := fetch(ctx, path)
	if err != nil {
		return nil, err
	}
	c.lists.Set(key, items, cache.DefaultExpiration)
	return items, nil
}

func (c *Client) invalidate(kind string) {
	for key := range c.lists.Items() {
		if strings.HasPrefix(key, kind+":") {
			c.lists.Delete(key)
		}
	}
}

// Patients

func (c *Client) fetchPatients(ctx context.Context, path string) ([]*model.Patient, error) {
	var wires []wirePatient
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &wires); err != nil {
		return nil, err
	}
	return decodeList(wires, (*wirePatient).toModel)
}

func (c *Client) ListPatients(ctx context.Context) ([]*model.Patient, error) {
	return listCached(c, ctx, "patients:all", "/api/v1/users/", c.fetchPatients)
}

func (c *Client) UpdatePatient(ctx context.Context, id int64, req *model.UpdatePatientRequest) (*model.Patient, error) {
	payload := patientPayload{}
	if req.Name != nil {
		payload.Name = *req.Name
	}
	if req.DateOfBirth != nil {
		payload.DateOfBirth = *req.DateOfBirth
	}
	if req.Gender != nil {
		payload.Gender = *req.Gender
	}
	if req.Phone != nil {
		payload.Phone = *req.Phone
	}
	if req.Status != nil {
		payload.Status = string(*req.Status)
	}
	var wire wirePatient
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/v1/users/%d", id), payload, &wire); err != nil {
		return nil, err
	}
	c.invalidate("patients")
	return wire.toModel()
}

// Doctors

func (c *Client) fetchDoctors(ctx context.Context, path string) ([]*model.Doctor, error) {
	var wires []wireDoctor
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &wires); err != nil {
		return nil, err
	}
	return decodeList(wires, (*wireDoctor).toModel)
}

func (c *Client) ListDoctors(ctx context.Context) ([]*model.Doctor, error) {
	return listCached(c, ctx, "doctors:all", "/api/v1/doctors/", c.fetchDoctors)
}

func (c *Client) GetDoctor(ctx context.Context, id int64) (*model.Doctor, error) {
	var wire wireDoctor
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/v1/doctors/%d", id), nil, &wire); err != nil {
		return nil, err
	}
	return wire.toModel()
}

func (c *Client) UpdateDoctor(ctx context.Context, id int64, req *model.UpdateDoctorRequest) (*model.Doctor, error) {
	var wire wireDoctor
	payload := doctorPayload{Name: req.Name, Location: req.Location}
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/v1/doctors/%d", id), payload, &wire); err != nil {
		return nil, err
	}
	c.invalidate("doctors")
	return wire.toModel()
}

func (c *Client) DeleteDoctor(ctx context.Context, id int64) error {
	if err := c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/doctors/%d", id), nil, nil); err != nil {
		return err
	}
	c.invalidate("doctors")
	return nil
}

// Appointments

func (c *Client) fetchAppointments(ctx context.Context, path string) ([]*model.Appointment, error) {
	var wires []wireAppointment
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &wires); err != nil {
		return nil, err
	}
	return decodeList(wires, (*wireAppointment).toModel)
}

func (c *Client) ListAppointments(ctx context.Context) ([]*model.Appointment, error) {
	return listCached(c, ctx, "appointments:all", "/api/v1/appointments/", c.fetchAppointments)
}

func (c *Client) ListDoctorAppointments(ctx context.Context, doctorID int64) ([]*model.Appointment, error) {
	key := fmt.Sprintf("appointments:doctor:%d", doctorID)
	path := fmt.Sprintf("/api/v1/appointments/doctor/%d", doctorID)
	return listCached(c, ctx, key, path, c.fetchAppointments)
}

// CreateAppointment persists a gateway-normalized booking and returns
// the server-assigned record.
func (c *Client) CreateAppointment(ctx context.Context, input *model.AppointmentInput) (*model.Appointment, error) {
	payload := appointmentPayload{
		Name:     input.PatientName,
		Date:     input.Date,
		Time:     input.Time,
		Notes:    input.Notes,
		UserID:   input.PatientID,
		DoctorID: input.DoctorID,
	}
	var wire wireAppointment
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/appointments/", payload, &wire); err != nil {
		return nil, err
	}
	c.invalidate("appointments")
	return wire.toModel()
}

// Medicines

func (c *Client) fetchMedicines(ctx context.Context, path string) ([]*model.Medicine, error) {
	var wires []wireMedicine
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &wires); err != nil {
		return nil, err
	}
	return decodeList(wires, (*wireMedicine).toModel)
}

func (c *Client) ListMedicines(ctx context.Context) ([]*model.Medicine, error) {
	return listCached(c, ctx, "medicines:all", "/api/v1/medicines/", c.fetchMedicines)
}

func (c *Client) ListPatientMedicines(ctx context.Context, patientID int64) ([]*model.Medicine, error) {
	key := fmt.Sprintf("medicines:user:%d", patientID)
	path := fmt.Sprintf("/api/v1/medicines/user/%d", patientID)
	return listCached(c, ctx, key, path, c.fetchMedicines)
}

func (c *Client) CreateMedicine(ctx context.Context, input *model.MedicationInput) (*model.Medicine, error) {
	payload := medicinePayload{
		Name:          input.Name,
		Dosage:        input.Dosage,
		Frequency:     input.Frequency,
		StartDate:     input.StartDate,
		EndDate:       input.EndDate,
		Notes:         input.Notes,
		UserID:        input.PatientID,
		DoctorID:      input.DoctorID,
		AppointmentID: input.AppointmentID,
	}
	var wire wireMedicine
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/medicines/", payload, &wire); err != nil {
		return nil, err
	}
	c.invalidate("medicines")
	return wire.toModel()
}

// Transcribe forwards a recorded prescription to the upstream speech
// service and returns its raw response; the transcription internals are
// the backend's business.
func (c *Client) Transcribe(ctx context.Context, filename string, audio io.Reader) (model.JSONMap, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("remote: build multipart: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return nil, fmt.Errorf("remote: copy audio: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("remote: close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/medicines/transcribe", &buf)
	if err != nil {
		return nil, fmt.Errorf("remote: new request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &apperrors.RemoteError{Status: 0, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, remoteErrorFrom(resp)
	}
	var out model.JSONMap
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("remote: decode transcription: %w", err)
	}
	return out, nil
}

// Auth

// AdminProfile is the doctor identity behind an admin login.
type AdminProfile struct {
	DoctorID int64
	Name     string
	Location string
}

// AdminLogin submits the credentials upstream and returns the admin's
// doctor profile on success.
func (c *Client) AdminLogin(ctx context.Context, email, password string) (*AdminProfile, error) {
	var wire wireAdmin
	payload := loginPayload{Email: email, Password: password}
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/auth/admin/login", payload, &wire); err != nil {
		return nil, err
	}
	if wire.ID == 0 {
		return nil, fmt.Errorf("remote: login response missing doctor id")
	}
	return &AdminProfile{
		DoctorID: int64(wire.ID),
		Name:     wire.Name,
		Location: wire.Location,
	}, nil
}
