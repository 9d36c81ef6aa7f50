// Package handlers exposes the services over HTTP with gin.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/autocare/internal/db"
	"github.com/ukydev/autocare/internal/health"
	"github.com/ukydev/autocare/internal/maintenance"
	"github.com/ukydev/autocare/internal/middleware"
	"github.com/ukydev/autocare/internal/models"
	"github.com/ukydev/autocare/internal/service"
)

// VehicleService is the vehicle API the handlers depend on.
type VehicleService interface {
	Create(ctx context.Context, userID string, vehicle *models.Vehicle) error
	List(ctx context.Context, userID string) ([]models.Vehicle, error)
	Get(ctx context.Context, userID, vehicleID string) (*models.Vehicle, error)
	Delete(ctx context.Context, userID, vehicleID string) error
	RecordMileage(ctx context.Context, userID, vehicleID string, value int) (*models.Vehicle, error)
}

// TelemetryService is the snapshot and health API the handlers depend on.
type TelemetryService interface {
	Ingest(ctx context.Context, snap *models.DiagnosticSnapshot) error
	Health(ctx context.Context, userID, vehicleID string) (*health.Report, error)
	History(ctx context.Context, userID, vehicleID string, from, to time.Time) ([]models.DiagnosticSnapshot, error)
}

// MaintenanceService is the maintenance API the handlers depend on.
type MaintenanceService interface {
	Create(ctx context.Context, userID string, rec *models.MaintenanceRecord) error
	List(ctx context.Context, userID, vehicleID string) ([]models.MaintenanceRecord, error)
	Schedule(ctx context.Context, userID, recordID string, interval int, unit models.FrequencyUnit) (*models.MaintenanceRecord, error)
	Transition(ctx context.Context, userID, recordID, event string) (*models.MaintenanceRecord, error)
	Upcoming(ctx context.Context, userID string) ([]maintenance.UpcomingItem, error)
}

// currentUser returns the authenticated user id, or aborts with 401.
func currentUser(c *gin.Context) (string, bool) {
	claims, ok := middleware.GetUserFromContext(c)
	if !ok || claims.UserID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return "", false
	}
	return claims.UserID, true
}

// respondError maps domain errors to HTTP status codes.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, db.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, db.ErrInvalidID),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrMileageRejected),
		errors.Is(err, maintenance.ErrUnsupportedUnit),
		errors.Is(err, maintenance.ErrInvalidTransition),
		errors.Is(err, models.ErrAmbiguousTrigger):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		log.WithError(err).WithField("path", c.FullPath()).Error("Request failed")
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
