package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/belamverse/quickchat-backend/internal/auth"
	"github.com/belamverse/quickchat-backend/internal/config"
	"github.com/belamverse/quickchat-backend/internal/core"
	"github.com/belamverse/quickchat-backend/internal/store"
)

// NewServer builds the HTTP server: REST API for auth and room listing,
// plus the room-scoped WebSocket endpoint.
func NewServer(registry *core.Registry, authService *auth.Service, st store.Store, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery(), LoggerMiddleware(logger))

	r.GET("/health", healthHandler)

	apiHandlers := NewAPIHandlers(authService, logger)
	roomHandlers := NewRoomHandlers(st, logger)

	api := r.Group("/api")
	api.POST("/register", apiHandlers.Register)
	api.POST("/login", apiHandlers.Login)

	rooms := api.Group("/rooms", AuthMiddleware(authService, logger))
	rooms.GET("", roomHandlers.ListRooms)
	rooms.POST("", roomHandlers.CreateRoom)

	wsHandler := NewWSHandler(registry, authService, st, cfg, logger)
	r.GET("/ws/:room", wsHandler.Handle)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
