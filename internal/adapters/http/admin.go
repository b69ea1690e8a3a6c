package http

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/rallyhq/rally/internal/app"
	"github.com/rallyhq/rally/internal/app/orch"
)

const adminSessionKey = "admin_token"

// AdminHandlers is a thin moderation shell: auth lives here, every room
// mutation is delegated to the coordinator.
type AdminHandlers struct {
	Orch     *orch.Orchestrator
	Tokens   *app.TokenStore
	Password string
}

// token pulls the bearer header first and falls back to the cookie
// session, so both API clients and the browser console work.
func (h *AdminHandlers) token(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if v, ok := sessions.Default(c).Get(adminSessionKey).(string); ok {
		return v
	}
	return ""
}

func (h *AdminHandlers) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !h.Tokens.Valid(h.token(c)) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": app.ErrUnauthenticated.Error()})
			return
		}
		c.Next()
	}
}

func (h *AdminHandlers) Login(c *gin.Context) {
	var req struct {
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad payload"})
		return
	}
	if h.Password == "" || req.Password != h.Password {
		log.Warn().Str("module", "adapters.http").Msg("failed admin login")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "wrong password"})
		return
	}

	token := h.Tokens.Issue()
	sess := sessions.Default(c)
	sess.Set(adminSessionKey, token)
	if err := sess.Save(); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("session save")
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *AdminHandlers) Logout(c *gin.Context) {
	h.Tokens.Revoke(h.token(c))
	sess := sessions.Default(c)
	sess.Delete(adminSessionKey)
	_ = sess.Save()
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *AdminHandlers) ListRooms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rooms": h.Orch.AdminRooms()})
}

func (h *AdminHandlers) CreateRoom(c *gin.Context) {
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

func (h *AdminHandlers) DeleteRoom(c *gin.Context) {
	if err := h.Orch.DeleteRoom(c.Param("name")); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *AdminHandlers) BlockAddress(c *gin.Context) {
	var req struct {
		Address string `json:"address"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad payload"})
		return
	}
	if err := h.Orch.BlockAddress(c.Param("name"), req.Address); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *AdminHandlers) UnblockAddress(c *gin.Context) {
	var req struct {
		Address string `json:"address"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad payload"})
		return
	}
	if err := h.Orch.UnblockAddress(c.Param("name"), req.Address); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
