package medicine

import (
	"context"
	"io"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/akulbansal1/carelink/internal/gateway"
	"github.com/akulbansal1/carelink/internal/model"
	"github.com/akulbansal1/carelink/internal/query"
	apperrors "github.com/akulbansal1/carelink/pkg/errors"
	"github.com/akulbansal1/carelink/pkg/httputil"
)

type Registry interface {
	ListMedicines(ctx context.Context) ([]*model.Medicine, error)
	ListPatientMedicines(ctx context.Context, patientID int64) ([]*model.Medicine, error)
	CreateMedicine(ctx context.Context, input *model.MedicationInput) (*model.Medicine, error)
	Transcribe(ctx context.Context, filename string, audio io.Reader) (model.JSONMap, error)
}

type Handler struct {
	registry Registry
	engine   *query.Engine
	gateway  *gateway.Gateway
	loc      *time.Location
	now      func() time.Time
}

func NewHandler(registry Registry, engine *query.Engine, gw *gateway.Gateway, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.Local
	}
	return &Handler{
		registry: registry,
		engine:   engine,
		gateway:  gw,
		loc:      loc,
		now:      time.Now,
	}
}

// ListMedicines returns prescriptions with their derived status
// (Upcoming, Active, Completed) at the reference date.
func (h *Handler) ListMedicines(c *gin.Context) {
	var (
		medicines []*model.Medicine
		err       error
	)
	if raw := c.Query("patient_id"); raw != "" {
		patientID, perr := strconv.ParseInt(raw, 10, 64)
		if perr != nil {
			httputil.RespondWithError(c, apperrors.NewBadRequest("invalid patient ID", perr))
			return
		}
		medicines, err = h.registry.ListPatientMedicines(c.Request.Context(), patientID)
	} else {
		medicines, err = h.registry.ListMedicines(c.Request.Context())
	}
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	ref := c.Query("ref")
	if ref == "" {
		ref = h.now().In(h.loc).Format(model.DateFormat)
	}
	medicines = h.engine.AnnotateMedicines(medicines, ref)

	medicines = query.Search(medicines, func(m *model.Medicine) []string {
		return []string{m.Name, m.Dosage, m.Frequency}
	}, c.Query("q"))

	httputil.RespondWithSuccess(c, medicines)
}

func (h *Handler) CreateMedicine(c *gin.Context) {
	var input model.MedicationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest("invalid medicine payload", err))
		return
	}

	normalized, err := h.gateway.ValidateMedication(input)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	created, err := h.registry.CreateMedicine(c.Request.Context(), normalized)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, created)
}

// Transcribe forwards a recorded prescription to the upstream speech
// service. The transcription result still goes through the normal
// validated create path before anything is persisted.
func (h *Handler) Transcribe(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest("audio file is required", err))
		return
	}
	defer file.Close()

	out, err := h.registry.Transcribe(c.Request.Context(), header.Filename, file)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, out)
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	medicines := r.Group("/medicines")
	{
		medicines.GET("", h.ListMedicines)
		medicines.POST("", h.CreateMedicine)
		medicines.POST("/transcribe", h.Transcribe)
	}
}
