package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/juva99/yoop-sub001/internal/service"
)

type GameHandler struct {
	svc *service.SchedulingSvc
}

func NewGameHandler(svc *service.SchedulingSvc) *GameHandler {
	return &GameHandler{svc: svc}
}

// POST /v1/games
func (h *GameHandler) Create(c *gin.Context) {
	var in struct {
		FieldID         string `json:"field_id" binding:"required"`
		StartISO        string `json:"start_iso" binding:"required"` // RFC3339
		EndISO          string `json:"end_iso"   binding:"required"` // RFC3339
		MaxParticipants int    `json:"max_participants" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	g, err := h.svc.CreateGame(c.Request.Context(), actor(c), in.FieldID, in.StartISO, in.EndISO, in.MaxParticipants)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, g)
}

// POST /v1/games/:id/approve (field manager)
func (h *GameHandler) Approve(c *gin.Context) {
	g, err := h.svc.ApproveGame(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

// POST /v1/games/:id/reject (field manager)
func (h *GameHandler) Reject(c *gin.Context) {
	g, err := h.svc.RejectGame(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

// POST /v1/games/:id/cancel (creator or manager)
func (h *GameHandler) Cancel(c *gin.Context) {
	g, err := h.svc.CancelGame(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

// POST /v1/games/:id/reschedule (creator, pending games only)
func (h *GameHandler) Reschedule(c *gin.Context) {
	var in struct {
		StartISO string `json:"start_iso" binding:"required"`
		EndISO   string `json:"end_iso"   binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	g, err := h.svc.RescheduleGame(c.Request.Context(), actor(c), c.Param("id"), in.StartISO, in.EndISO)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

// POST /v1/games/:id/join
func (h *GameHandler) Join(c *gin.Context) {
	p, err := h.svc.JoinGame(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// POST /v1/games/:id/leave
func (h *GameHandler) Leave(c *gin.Context) {
	p, err := h.svc.LeaveGame(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// DELETE /v1/games/:id/participants/:userId (creator or manager)
func (h *GameHandler) RemoveParticipant(c *gin.Context) {
	p, err := h.svc.RemoveParticipant(c.Request.Context(), actor(c), c.Param("id"), c.Param("userId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// POST /v1/games/:id/transfer (creator)
func (h *GameHandler) Transfer(c *gin.Context) {
	var in struct {
		NewCreatorID string `json:"new_creator_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	g, err := h.svc.TransferCreator(c.Request.Context(), actor(c), c.Param("id"), in.NewCreatorID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

// GET /v1/games/:id
func (h *GameHandler) Get(c *gin.Context) {
	g, roster, err := h.svc.GetGame(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"game": g, "roster": roster})
}

// GET /v1/games?page=1&page_size=20&field_id=...&creator_id=...&day=RFC3339
func (h *GameHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	games, total, err := h.svc.ListGames(c.Request.Context(), int32(page-1), int32(size),
		c.Query("field_id"), c.Query("creator_id"), c.Query("day"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"games": games, "total": total})
}
