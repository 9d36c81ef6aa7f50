package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ukydev/autocare/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TelemetryHandler struct {
	telemetry TelemetryService
}

func NewTelemetryHandler(telemetry TelemetryService) *TelemetryHandler {
	return &TelemetryHandler{telemetry: telemetry}
}

// Ingest stores a diagnostic snapshot posted for a vehicle.
// POST /api/vehicles/:id/snapshots
func (h *TelemetryHandler) Ingest(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	vehicleID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle ID"})
		return
	}
	owner, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var snap models.DiagnosticSnapshot
	if err := c.ShouldBindJSON(&snap); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	snap.ID = primitive.NilObjectID
	snap.VehicleID = vehicleID
	snap.UserID = owner

	if err := h.telemetry.Ingest(c.Request.Context(), &snap); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": snap})
}

// History lists snapshots, newest first, optionally bounded by RFC 3339
// from and to query parameters.
// GET /api/vehicles/:id/snapshots
func (h *TelemetryHandler) History(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	from, err := parseTimeParam(c, "from")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from: " + err.Error()})
		return
	}
	to, err := parseTimeParam(c, "to")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to: " + err.Error()})
		return
	}

	snapshots, err := h.telemetry.History(c.Request.Context(), userID, c.Param("id"), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": snapshots})
}

// Health scores the latest snapshot and lists recommended services.
// GET /api/vehicles/:id/health
func (h *TelemetryHandler) Health(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	report, err := h.telemetry.Health(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": report})
}

func parseTimeParam(c *gin.Context, name string) (time.Time, error) {
	value := c.Query(name)
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, value)
}
