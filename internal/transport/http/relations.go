package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/juva99/yoop-sub001/internal/service"
)

type RelationHandler struct {
	svc *service.RelationSvc
}

func NewRelationHandler(svc *service.RelationSvc) *RelationHandler {
	return &RelationHandler{svc: svc}
}

// POST /v1/friends/requests
func (h *RelationHandler) Request(c *gin.Context) {
	var in struct {
		UserID string `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rel, err := h.svc.RequestFriend(c.Request.Context(), actor(c), in.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rel)
}

// POST /v1/friends/requests/:id/respond
func (h *RelationHandler) Respond(c *gin.Context) {
	var in struct {
		Decision string `json:"decision" binding:"required"` // APPROVED | REJECTED
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rel, err := h.svc.RespondFriend(c.Request.Context(), actor(c), c.Param("id"), in.Decision)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rel)
}

// DELETE /v1/friends/:userId
func (h *RelationHandler) Unfriend(c *gin.Context) {
	if err := h.svc.Unfriend(c.Request.Context(), actor(c), c.Param("userId")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /v1/friends
func (h *RelationHandler) List(c *gin.Context) {
	rels, err := h.svc.ListFriends(c.Request.Context(), actor(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"friends": rels})
}

// GET /v1/friends/requests
func (h *RelationHandler) Pending(c *gin.Context) {
	rels, err := h.svc.ListPendingRequests(c.Request.Context(), actor(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": rels})
}
