package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/autocare/internal/db"
	"github.com/ukydev/autocare/internal/mileage"
	"github.com/ukydev/autocare/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	minVehicleYear = 1900
	defaultUnit    = "mi"
)

type VehicleService struct {
	vehicles db.VehicleCollection
	guard    *mileage.Guard
	now      func() time.Time
}

func NewVehicleService(vehicles db.VehicleCollection) *VehicleService {
	return &VehicleService{
		vehicles: vehicles,
		guard:    mileage.NewGuard(vehicles),
		now:      time.Now,
	}
}

// Create registers a vehicle for userID. A non-zero starting odometer becomes
// the first ledger entry.
func (s *VehicleService) Create(ctx context.Context, userID string, vehicle *models.Vehicle) error {
	owner, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return fmt.Errorf("%w: user id", ErrInvalidInput)
	}
	vehicle.Make = strings.TrimSpace(vehicle.Make)
	vehicle.Model = strings.TrimSpace(vehicle.Model)
	if vehicle.Make == "" || vehicle.Model == "" {
		return fmt.Errorf("%w: make and model are required", ErrInvalidInput)
	}
	if maxYear := s.now().Year() + 1; vehicle.Year < minVehicleYear || vehicle.Year > maxYear {
		return fmt.Errorf("%w: year must be between %d and %d", ErrInvalidInput, minVehicleYear, maxYear)
	}
	if vehicle.Mileage.Current < 0 {
		return fmt.Errorf("%w: mileage cannot be negative", ErrInvalidInput)
	}

	vehicle.ID = primitive.NilObjectID
	vehicle.UserID = owner
	if vehicle.Mileage.Unit == "" {
		vehicle.Mileage.Unit = defaultUnit
	}
	vehicle.Mileage.History = nil
	if start := vehicle.Mileage.Current; start > 0 {
		mileage.Record(vehicle, start, models.SourceManual, s.now())
	}

	if err := s.vehicles.InsertVehicle(ctx, vehicle); err != nil {
		return fmt.Errorf("insert vehicle: %w", err)
	}
	log.WithFields(log.Fields{"vehicle_id": vehicle.ID.Hex(), "user_id": userID}).Info("Vehicle created")
	return nil
}

func (s *VehicleService) List(ctx context.Context, userID string) ([]models.Vehicle, error) {
	return s.vehicles.FindVehiclesByUser(ctx, userID)
}

func (s *VehicleService) Get(ctx context.Context, userID, vehicleID string) (*models.Vehicle, error) {
	return ownedVehicle(ctx, s.vehicles, userID, vehicleID)
}

// Delete removes one of userID's vehicles. Its snapshots and maintenance
// records are left in place.
func (s *VehicleService) Delete(ctx context.Context, userID, vehicleID string) error {
	if _, err := ownedVehicle(ctx, s.vehicles, userID, vehicleID); err != nil {
		return err
	}
	if err := s.vehicles.DeleteVehicle(ctx, vehicleID); err != nil {
		return fmt.Errorf("delete vehicle: %w", err)
	}
	log.WithFields(log.Fields{"vehicle_id": vehicleID, "user_id": userID}).Info("Vehicle deleted")
	return nil
}

// RecordMileage applies a manual odometer reading. A reading that does not
// move forward fails with ErrMileageRejected wrapping the mileage.Rejected.
func (s *VehicleService) RecordMileage(ctx context.Context, userID, vehicleID string, value int) (*models.Vehicle, error) {
	if _, err := ownedVehicle(ctx, s.vehicles, userID, vehicleID); err != nil {
		return nil, err
	}
	decision, vehicle, err := s.guard.Apply(ctx, vehicleID, value, models.SourceManual)
	if err != nil {
		return nil, err
	}
	if rejected, ok := decision.(mileage.Rejected); ok {
		return nil, fmt.Errorf("%w: %w", ErrMileageRejected, rejected)
	}
	return vehicle, nil
}
