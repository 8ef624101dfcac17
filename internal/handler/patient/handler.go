package patient

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/akulbansal1/carelink/internal/model"
	"github.com/akulbansal1/carelink/internal/query"
	apperrors "github.com/akulbansal1/carelink/pkg/errors"
	"github.com/akulbansal1/carelink/pkg/httputil"
)

// Registry is the slice of the sync adapter this handler needs.
type Registry interface {
	ListPatients(ctx context.Context) ([]*model.Patient, error)
	UpdatePatient(ctx context.Context, id int64, req *model.UpdatePatientRequest) (*model.Patient, error)
}

type Handler struct {
	registry Registry
	loc      *time.Location
	now      func() time.Time
}

func NewHandler(registry Registry, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.Local
	}
	return &Handler{registry: registry, loc: loc, now: time.Now}
}

// patientView decorates a record with its derived age. Age is computed
// per response from the date of birth and is never persisted.
type patientView struct {
	*model.Patient
	Age int `json:"age"`
}

func (h *Handler) view(p *model.Patient) patientView {
	return patientView{Patient: p, Age: p.Age(h.now().In(h.loc))}
}

func (h *Handler) ListPatients(c *gin.Context) {
	patients, err := h.registry.ListPatients(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	patients = query.Search(patients, func(p *model.Patient) []string {
		return []string{p.Name, p.Phone}
	}, c.Query("q"))

	views := make([]patientView, 0, len(patients))
	for _, p := range patients {
		views = append(views, h.view(p))
	}
	httputil.RespondWithSuccess(c, views)
}

func (h *Handler) GetPatient(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest("invalid patient ID", err))
		return
	}

	patients, err := h.registry.ListPatients(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	for _, p := range patients {
		if p.ID == id {
			httputil.RespondWithSuccess(c, h.view(p))
			return
		}
	}
	httputil.RespondWithError(c, apperrors.NewNotFound("patient", nil))
}

// UpdatePatient applies an admin edit. Patients are never hard-deleted;
// deactivation goes through here as a status change.
func (h *Handler) UpdatePatient(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest("invalid patient ID", err))
		return
	}

	var req model.UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest("invalid patient payload", err))
		return
	}

	patient, err := h.registry.UpdatePatient(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, h.view(patient))
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.GET("", h.ListPatients)
		patients.GET("/:id", h.GetPatient)
	}
}

func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.PATCH("/:id", h.UpdatePatient)
	}
}
