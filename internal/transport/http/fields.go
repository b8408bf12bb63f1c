package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/juva99/yoop-sub001/internal/service"
)

type FieldHandler struct {
	svc *service.SchedulingSvc
}

func NewFieldHandler(svc *service.SchedulingSvc) *FieldHandler {
	return &FieldHandler{svc: svc}
}

// POST /v1/fields (MANAGER/ADMIN)
func (h *FieldHandler) Create(c *gin.Context) {
	var in struct {
		Name    string `json:"name" binding:"required"`
		Address string `json:"address"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	f, err := h.svc.CreateField(c.Request.Context(), actor(c), in.Name, in.Address)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, f)
}

// GET /v1/fields
func (h *FieldHandler) List(c *gin.Context) {
	fields, err := h.svc.ListFields(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fields": fields})
}
