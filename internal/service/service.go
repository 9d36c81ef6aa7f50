// Package service composes storage, the mileage guard and the pure scoring and
// scheduling packages into the operations exposed over HTTP and MQTT.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ukydev/autocare/internal/db"
	"github.com/ukydev/autocare/internal/health"
	"github.com/ukydev/autocare/internal/models"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrMileageRejected = errors.New("mileage rejected")
)

// HealthCache stores computed health reports by snapshot id. A miss is (nil, nil).
type HealthCache interface {
	Get(ctx context.Context, snapshotID string) (*health.Report, error)
	Set(ctx context.Context, snapshotID string, report *health.Report) error
}

// ownedVehicle loads a vehicle and hides it from anyone but its owner.
func ownedVehicle(ctx context.Context, vehicles db.VehicleCollection, userID, vehicleID string) (*models.Vehicle, error) {
	vehicle, err := vehicles.FindVehicleByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle.UserID.Hex() != userID {
		return nil, fmt.Errorf("vehicle %w", db.ErrNotFound)
	}
	return vehicle, nil
}
