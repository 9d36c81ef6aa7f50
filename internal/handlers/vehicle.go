package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ukydev/autocare/internal/models"
)

type VehicleHandler struct {
	vehicles VehicleService
}

func NewVehicleHandler(vehicles VehicleService) *VehicleHandler {
	return &VehicleHandler{vehicles: vehicles}
}

type createVehicleRequest struct {
	Make     string `json:"make" binding:"required"`
	Model    string `json:"model" binding:"required"`
	Year     int    `json:"year" binding:"required"`
	Nickname string `json:"nickname"`
	VIN      string `json:"vin"`
	Mileage  int    `json:"mileage"`
	Unit     string `json:"unit" binding:"omitempty,oneof=mi km"`
}

type mileageRequest struct {
	Value *int `json:"value" binding:"required"`
}

// Create registers a vehicle for the current user.
// POST /api/vehicles
func (h *VehicleHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req createVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vehicle := &models.Vehicle{
		Make:     req.Make,
		Model:    req.Model,
		Year:     req.Year,
		Nickname: req.Nickname,
		VIN:      req.VIN,
		Mileage:  models.MileageLog{Current: req.Mileage, Unit: req.Unit},
	}
	if err := h.vehicles.Create(c.Request.Context(), userID, vehicle); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": vehicle})
}

// List returns the current user's vehicles.
// GET /api/vehicles
func (h *VehicleHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	vehicles, err := h.vehicles.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": vehicles})
}

// Get returns one vehicle with its mileage history.
// GET /api/vehicles/:id
func (h *VehicleHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	vehicle, err := h.vehicles.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": vehicle})
}

// Delete removes a vehicle.
// DELETE /api/vehicles/:id
func (h *VehicleHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.vehicles.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RecordMileage appends a manual odometer reading. Readings that do not move
// forward are rejected with 400.
// POST /api/vehicles/:id/mileage
func (h *VehicleHandler) RecordMileage(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req mileageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "value is required"})
		return
	}
	vehicle, err := h.vehicles.RecordMileage(c.Request.Context(), userID, c.Param("id"), *req.Value)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": vehicle.Mileage})
}
