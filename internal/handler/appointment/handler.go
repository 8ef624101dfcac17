package appointment

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/akulbansal1/carelink/internal/gateway"
	"github.com/akulbansal1/carelink/internal/model"
	"github.com/akulbansal1/carelink/internal/notification"
	"github.com/akulbansal1/carelink/internal/query"
	"github.com/akulbansal1/carelink/internal/store"
	apperrors "github.com/akulbansal1/carelink/pkg/errors"
	"github.com/akulbansal1/carelink/pkg/httputil"
)

// Registry is the slice of the sync adapter this handler needs.
type Registry interface {
	ListAppointments(ctx context.Context) ([]*model.Appointment, error)
	ListDoctorAppointments(ctx context.Context, doctorID int64) ([]*model.Appointment, error)
	CreateAppointment(ctx context.Context, input *model.AppointmentInput) (*model.Appointment, error)
	ListPatients(ctx context.Context) ([]*model.Patient, error)
}

type Handler struct {
	registry Registry
	engine   *query.Engine
	gateway  *gateway.Gateway
	notifier notification.Service
	views    *viewCache
	loc      *time.Location
	now      func() time.Time
}

func NewHandler(registry Registry, engine *query.Engine, gw *gateway.Gateway, notifier notification.Service, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.Local
	}
	return &Handler{
		registry: registry,
		engine:   engine,
		gateway:  gw,
		notifier: notifier,
		views:    newViewCache(),
		loc:      loc,
		now:      time.Now,
	}
}

// Close tears down the per-doctor views and cancels their in-flight
// loads.
func (h *Handler) Close() {
	h.views.Close()
}

// loadAppointments refreshes the view that owns this doctor's snapshot
// (doctor 0 is the unscoped list) and returns it. Concurrent refreshes
// race safely: the view keeps only the latest generation.
func (h *Handler) loadAppointments(ctx context.Context, doctorID int64) ([]*model.Appointment, error) {
	view := h.views.view(doctorID)
	err := view.Load(func(loadCtx context.Context) ([]*model.Appointment, error) {
		if doctorID == 0 {
			return h.registry.ListAppointments(loadCtx)
		}
		return h.registry.ListDoctorAppointments(loadCtx, doctorID)
	})
	if err != nil {
		return nil, err
	}
	return view.Snapshot(), nil
}

func (h *Handler) referenceDate(c *gin.Context) string {
	if ref := c.Query("ref"); ref != "" {
		return ref
	}
	return h.now().In(h.loc).Format(model.DateFormat)
}

func (h *Handler) ListAppointments(c *gin.Context) {
	var doctorID int64
	if raw := c.Query("doctor_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httputil.RespondWithError(c, apperrors.NewBadRequest("invalid doctor ID", err))
			return
		}
		doctorID = id
	}

	appointments, err := h.loadAppointments(c.Request.Context(), doctorID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if raw := c.Query("patient_id"); raw != "" {
		patientID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httputil.RespondWithError(c, apperrors.NewBadRequest("invalid patient ID", err))
			return
		}
		var filtered []*model.Appointment
		for _, a := range appointments {
			if a.PatientID == patientID {
				filtered = append(filtered, a)
			}
		}
		appointments = filtered
	}

	from, to := c.Query("from"), c.Query("to")
	for _, bound := range []string{from, to} {
		if bound == "" {
			continue
		}
		if _, err := time.ParseInLocation(model.DateFormat, bound, h.loc); err != nil {
			httputil.RespondWithError(c, apperrors.NewBadRequest("invalid date bound", err))
			return
		}
	}
	appointments = h.engine.DateRangeFilter(appointments, from, to)

	ref := h.referenceDate(c)
	switch c.Query("view") {
	case "upcoming":
		appointments = h.engine.Upcoming(appointments, ref)
	case "past":
		appointments = h.engine.Past(appointments, ref)
	}

	appointments = query.Search(appointments, func(a *model.Appointment) []string {
		return []string{a.PatientName, a.Notes, a.Type}
	}, c.Query("q"))

	httputil.RespondWithSuccess(c, appointments)
}

// Calendar returns appointments bucketed by local calendar day, the
// shape the calendar widget consumes. A date query narrows the response
// to that day's bucket.
func (h *Handler) Calendar(c *gin.Context) {
	var doctorID int64
	if raw := c.Query("doctor_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httputil.RespondWithError(c, apperrors.NewBadRequest("invalid doctor ID", err))
			return
		}
		doctorID = id
	}

	appointments, err := h.loadAppointments(c.Request.Context(), doctorID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	buckets := h.engine.BucketByDate(appointments)
	if date := c.Query("date"); date != "" {
		httputil.RespondWithSuccess(c, gin.H{"date": date, "appointments": buckets[date]})
		return
	}
	httputil.RespondWithSuccess(c, buckets)
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	var input model.AppointmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest("invalid appointment payload", err))
		return
	}

	normalized, err := h.gateway.ValidateAppointment(input)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	created, err := h.registry.CreateAppointment(c.Request.Context(), normalized)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	h.views.put(created)
	h.notifyBooking(c.Request.Context(), created)

	httputil.RespondWithCreated(c, created)
}

// notifyBooking emails the patient a confirmation. Failures are logged
// and never fail the booking.
func (h *Handler) notifyBooking(ctx context.Context, appt *model.Appointment) {
	patients, err := h.registry.ListPatients(ctx)
	if err != nil {
		log.Warn().Err(err).Int64("appointment_id", appt.ID).Msg("skipping booking confirmation: patient lookup failed")
		return
	}
	var email string
	for _, p := range patients {
		if p.ID == appt.PatientID {
			email = p.Email
			break
		}
	}
	if err := h.notifier.SendAppointmentConfirmation(ctx, email, appt); err != nil {
		log.Warn().Err(err).Int64("appointment_id", appt.ID).Msg("failed to send booking confirmation")
	}
}

// DoctorAppointments is the admin dashboard's per-doctor list.
func (h *Handler) DoctorAppointments(c *gin.Context) {
	doctorID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest("invalid doctor ID", err))
		return
	}

	appointments, err := h.loadAppointments(c.Request.Context(), doctorID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	ref := h.referenceDate(c)
	httputil.RespondWithSuccess(c, gin.H{
		"upcoming": h.engine.Upcoming(appointments, ref),
		"past":     h.engine.Past(appointments, ref),
	})
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.GET("", h.ListAppointments)
		appointments.GET("/calendar", h.Calendar)
		appointments.POST("", h.CreateAppointment)
	}
}

func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.GET("/doctor/:id", h.DoctorAppointments)
	}
}

// viewCache lazily creates one appointment view per doctor scope.
type viewCache struct {
	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	views  map[int64]*store.View[int64, *model.Appointment]
}

func newViewCache() *viewCache {
	ctx, cancel := context.WithCancel(context.Background())
	return &viewCache{
		ctx:    ctx,
		cancel: cancel,
		views:  make(map[int64]*store.View[int64, *model.Appointment]),
	}
}

func (vc *viewCache) view(doctorID int64) *store.View[int64, *model.Appointment] {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	v, ok := vc.views[doctorID]
	if !ok {
		v = store.NewView(vc.ctx, func(a *model.Appointment) int64 { return a.ID })
		vc.views[doctorID] = v
	}
	return v
}

// put upserts a freshly created appointment into every scope that
// should show it.
func (vc *viewCache) put(appt *model.Appointment) {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	for doctorID, v := range vc.views {
		if doctorID == 0 || doctorID == appt.DoctorID {
			v.Put(appt)
		}
	}
}

func (vc *viewCache) Close() {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	vc.cancel()
	for _, v := range vc.views {
		v.Close()
	}
}
