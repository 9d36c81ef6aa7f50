package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ukydev/autocare/internal/models"
)

type MaintenanceHandler struct {
	maintenance MaintenanceService
}

func NewMaintenanceHandler(maintenance MaintenanceService) *MaintenanceHandler {
	return &MaintenanceHandler{maintenance: maintenance}
}

type scheduleRequest struct {
	Interval int                  `json:"interval" binding:"required,gt=0"`
	Unit     models.FrequencyUnit `json:"unit" binding:"required"`
}

type statusRequest struct {
	Event string `json:"event" binding:"required"`
}

// Create logs a maintenance record.
// POST /api/maintenance
func (h *MaintenanceHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var rec models.MaintenanceRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.maintenance.Create(c.Request.Context(), userID, &rec); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": rec})
}

// ListByVehicle returns a vehicle's service history.
// GET /api/vehicles/:id/maintenance
func (h *MaintenanceHandler) ListByVehicle(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	records, err := h.maintenance.List(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": records})
}

// Upcoming lists due maintenance across the user's vehicles.
// GET /api/maintenance/upcoming
func (h *MaintenanceHandler) Upcoming(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	items, err := h.maintenance.Upcoming(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

// Schedule sets the next reminder of a record.
// POST /api/maintenance/:id/schedule
func (h *MaintenanceHandler) Schedule(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a positive interval and a unit are required"})
		return
	}
	rec, err := h.maintenance.Schedule(c.Request.Context(), userID, c.Param("id"), req.Interval, req.Unit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rec})
}

// UpdateStatus applies a start, complete or cancel event.
// POST /api/maintenance/:id/status
func (h *MaintenanceHandler) UpdateStatus(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "event is required"})
		return
	}
	rec, err := h.maintenance.Transition(c.Request.Context(), userID, c.Param("id"), req.Event)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rec})
}
