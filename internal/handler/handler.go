package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler hosts the endpoints that belong to no entity.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data": gin.H{
			"status": "healthy",
		},
	})
}
