// Package router assembles the gin engine and its route table.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"eventhub-be/internal/controllers"
	"eventhub-be/internal/middleware"
	"eventhub-be/internal/models"
	"eventhub-be/internal/service"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Logger       *zap.Logger
	AuthService  service.AuthService
	EventService service.EventService
	FrontendURL  string
	// Metrics default to the global prometheus registry when nil.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// New builds the engine serving the event API.
func New(d Deps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Registerer == nil {
		d.Registerer = prometheus.DefaultRegisterer
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}

	authController := controllers.NewAuthController(d.AuthService)
	eventController := controllers.NewEventController(d.EventService)
	qrcodeController := controllers.NewQRCodeController(d.EventService, d.FrontendURL)
	metrics := middleware.NewMetrics(d.Registerer)
	protect := middleware.AuthMiddleware(d.AuthService)

	router := gin.New()
	router.Use(
		middleware.RequestLogger(d.Logger, "/health", "/metrics"),
		middleware.Recovery(d.Logger),
		metrics.Handler(),
	)
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Not found"})
	})

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authController.Register)
			auth.POST("/login", authController.Login)
			auth.GET("/me", protect, authController.Me)
		}

		events := api.Group("/events")
		{
			// Public reads
			events.GET("", eventController.List)
			events.GET("/:id", eventController.Get)
			events.GET("/:id/qrcode", qrcodeController.GenerateQRCode)

			// Protected routes - require a bearer token
			events.POST("", protect, eventController.Create)
			events.GET("/my-events", protect, eventController.MyEvents)
			events.PUT("/join/:id", protect, eventController.Join)
			events.PUT("/:id", protect, eventController.Update)
			events.DELETE("/:id", protect, eventController.Delete)
		}
	}

	return router
}
