package contact

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/akulbansal1/carelink/internal/gateway"
	"github.com/akulbansal1/carelink/internal/model"
	"github.com/akulbansal1/carelink/internal/query"
	"github.com/akulbansal1/carelink/internal/repository"
	apperrors "github.com/akulbansal1/carelink/pkg/errors"
	"github.com/akulbansal1/carelink/pkg/httputil"
)

type Handler struct {
	repo    repository.ContactRepository
	gateway *gateway.Gateway
}

func NewHandler(repo repository.ContactRepository, gw *gateway.Gateway) *Handler {
	return &Handler{repo: repo, gateway: gw}
}

func (h *Handler) ListContacts(c *gin.Context) {
	patientID, err := strconv.ParseInt(c.Query("patient_id"), 10, 64)
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest("invalid patient ID", err))
		return
	}

	contacts, err := h.repo.List(c.Request.Context(), patientID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	contacts = query.Search(contacts, func(ct *model.EmergencyContact) []string {
		return []string{ct.Name, ct.Relation, ct.Phone}
	}, c.Query("q"))

	httputil.RespondWithSuccess(c, contacts)
}

func (h *Handler) CreateContact(c *gin.Context) {
	var input model.ContactInput
	if err := c.ShouldBindJSON(&input); err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest("invalid contact payload", err))
		return
	}

	normalized, err := h.gateway.ValidateContact(input)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	contact := &model.EmergencyContact{
		PatientID: normalized.PatientID,
		Name:      normalized.Name,
		Relation:  normalized.Relation,
		Phone:     normalized.Phone,
	}
	if err := h.repo.Create(c.Request.Context(), contact); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, contact)
}

func (h *Handler) UpdateContact(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest("invalid contact ID", err))
		return
	}

	var input model.ContactInput
	if err := c.ShouldBindJSON(&input); err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest("invalid contact payload", err))
		return
	}

	normalized, err := h.gateway.ValidateContact(input)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	contact, err := h.repo.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	contact.Name = normalized.Name
	contact.Relation = normalized.Relation
	contact.Phone = normalized.Phone

	if err := h.repo.Update(c.Request.Context(), contact); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, contact)
}

func (h *Handler) DeleteContact(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest("invalid contact ID", err))
		return
	}

	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"deleted": true})
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	contacts := r.Group("/contacts")
	{
		contacts.GET("", h.ListContacts)
		contacts.POST("", h.CreateContact)
		contacts.PUT("/:id", h.UpdateContact)
		contacts.DELETE("/:id", h.DeleteContact)
	}
}
