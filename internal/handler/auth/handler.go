package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/akulbansal1/carelink/internal/middleware"
	"github.com/akulbansal1/carelink/internal/model"
	"github.com/akulbansal1/carelink/internal/session"
	apperrors "github.com/akulbansal1/carelink/pkg/errors"
	"github.com/akulbansal1/carelink/pkg/httputil"
)

type Handler struct {
	sessions *session.Service
}

func NewHandler(sessions *session.Service) *Handler {
	return &Handler{sessions: sessions}
}

func (h *Handler) Login(c *gin.Context) {
	var req model.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest("invalid login payload", err))
		return
	}

	resp, err := h.sessions.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, resp)
}

func (h *Handler) Me(c *gin.Context) {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.ErrAuthRequired)
		return
	}
	httputil.RespondWithSuccess(c, sess)
}

func (h *Handler) Logout(c *gin.Context) {
	token := middleware.BearerToken(c)
	if err := h.sessions.Clear(c.Request.Context(), token); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"logged_out": true})
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/admin/login", h.Login)
	}
}

func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.GET("/me", h.Me)
		auth.POST("/logout", h.Logout)
	}
}
