package http

import (
	"context"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/rallyhq/rally/internal/adapters/signal"
	"github.com/rallyhq/rally/internal/app"
	"github.com/rallyhq/rally/internal/app/orch"
	"github.com/rallyhq/rally/internal/config"
)

// SetupRouter wires static hosting, the event WS endpoint and the REST
// surface onto one gin engine.
func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator, tokens *app.TokenStore) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("RallySessions", store))

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	ws := signal.NewEventWSController(o, cfg)
	rooms := &RoomHandlers{Orch: o}
	admin := &AdminHandlers{Orch: o, Tokens: tokens, Password: cfg.AdminPassword}

	api := r.Group("/api")
	api.GET("/ws/events", func(c *gin.Context) {
		ws.HandleEvents(ctx, c)
	})
	api.GET("/rooms", rooms.List)
	api.POST("/rooms", rooms.Create)

	api.POST("/admin/login", admin.Login)

	gated := api.Group("/admin", admin.AuthRequired())
	gated.POST("/logout", admin.Logout)
	gated.GET("/rooms", admin.ListRooms)
	gated.POST("/rooms", admin.CreateRoom)
	gated.DELETE("/rooms/:name", admin.DeleteRoom)
	gated.POST("/rooms/:name/block", admin.BlockAddress)
	gated.DELETE("/rooms/:name/block", admin.UnblockAddress)

	return r
}
