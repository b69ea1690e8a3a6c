package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rallyhq/rally/internal/app"
	"github.com/rallyhq/rally/internal/app/orch"
)

type RoomHandlers struct {
	Orch *orch.Orchestrator
}

// statusFor maps an operation error onto the API's status vocabulary:
// 401 for auth failures, 400 for everything else the client caused.
func statusFor(err error) int {
	if app.Kind(err) == app.KindAuth {
		return http.StatusUnauthorized
	}
	return http.StatusBadRequest
}

func (h *RoomHandlers) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rooms": h.Orch.PublicRooms()})
}

func (h *RoomHandlers) Create(c *gin.Context) {
	var req struct {
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad payload"})
		return
	}
	if err := h.Orch.CreateRoom(req.Name, req.Password); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"room": req.Name})
}
