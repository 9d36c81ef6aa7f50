package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ukydev/autocare/internal/auth"
	"github.com/ukydev/autocare/internal/db"
	"github.com/ukydev/autocare/internal/middleware"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Auth        *auth.Service
	Users       db.UserCollection
	Vehicles    VehicleService
	Telemetry   TelemetryService
	Maintenance MaintenanceService
	// AuthLimiter throttles the login and register endpoints when set.
	AuthLimiter *middleware.RateLimiter
}

// NewRouter builds the HTTP API.
func NewRouter(deps Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authHandler := NewAuthHandler(deps.Auth, deps.Users)
	authGroup := router.Group("/api/auth")
	if deps.AuthLimiter != nil {
		authGroup.Use(deps.AuthLimiter.Middleware())
	}
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)

	vehicles := NewVehicleHandler(deps.Vehicles)
	telemetry := NewTelemetryHandler(deps.Telemetry)
	maintenance := NewMaintenanceHandler(deps.Maintenance)

	api := router.Group("/api", middleware.Authenticate(deps.Auth))
	{
		api.POST("/vehicles", vehicles.Create)
		api.GET("/vehicles", vehicles.List)
		api.GET("/vehicles/:id", vehicles.Get)
		api.DELETE("/vehicles/:id", vehicles.Delete)
		api.POST("/vehicles/:id/mileage", vehicles.RecordMileage)

		api.POST("/vehicles/:id/snapshots", telemetry.Ingest)
		api.GET("/vehicles/:id/snapshots", telemetry.History)
		api.GET("/vehicles/:id/health", telemetry.Health)
		api.GET("/vehicles/:id/maintenance", maintenance.ListByVehicle)

		api.POST("/maintenance", maintenance.Create)
		api.GET("/maintenance/upcoming", maintenance.Upcoming)
		api.POST("/maintenance/:id/schedule", maintenance.Schedule)
		api.POST("/maintenance/:id/status", maintenance.UpdateStatus)
	}

	return router
}
