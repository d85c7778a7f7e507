package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"campusboard/internal/http/handlers"
	"campusboard/internal/http/middleware"
)

// NewRouter wires middleware and routes around the handler deps.
func NewRouter(deps *handlers.Context) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.Recovery(deps.Logger))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Request-ID"}
	r.Use(cors.New(corsConfig))

	h := handlers.NewApplicationHandler(deps)

	// health stays outside the rate limit
	r.GET("/health", h.Health)

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(deps.Cache, deps.Logger))
	{
		api.GET("/applications", h.List)
		api.GET("/applications/tabs", h.Tabs)

		api.POST("/applications/:id/withdraw", h.Withdraw)
		api.POST("/applications/:id/offer/accept", h.AcceptOffer)
		api.POST("/applications/:id/offer/reject", h.RejectOffer)
		api.POST("/applications/:id/follow-up", h.FollowUp)
		api.POST("/applications/:id/archive", h.Archive)

		api.GET("/applications/:id/notes", h.ListNotes)
		api.POST("/applications/:id/notes", h.AddNote)
	}

	return r
}
