package db

import (
	"context"
	"time"

	"github.com/ukydev/autocare/internal/models"
)

// SnapshotCollection defines the interface for diagnostic snapshot operations.
// Snapshots are insert-only.
type SnapshotCollection interface {
	InsertSnapshot(ctx context.Context, snapshot *models.DiagnosticSnapshot) error
	LatestSnapshot(ctx context.Context, vehicleID string) (*models.DiagnosticSnapshot, error)
	FindSnapshots(ctx context.Context, vehicleID string, from, to time.Time, limit int64) ([]models.DiagnosticSnapshot, error)
}

// VehicleCollection defines the interface for vehicle data operations.
type VehicleCollection interface {
	InsertVehicle(ctx context.Context, vehicle *models.Vehicle) error
	FindVehiclesByUser(ctx context.Context, userID string) ([]models.Vehicle, error)
	FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error)
	AppendMileage(ctx context.Context, id string, entry models.MileageEntry) error
	DeleteVehicle(ctx context.Context, id string) error
}

// MaintenanceCollection defines the interface for maintenance record operations.
type MaintenanceCollection interface {
	InsertMaintenance(ctx context.Context, record *models.MaintenanceRecord) error
	FindMaintenanceByID(ctx context.Context, id string) (*models.MaintenanceRecord, error)
	FindMaintenanceByVehicle(ctx context.Context, vehicleID string) ([]models.MaintenanceRecord, error)
	FindWithReminders(ctx context.Context, userID string) ([]models.MaintenanceRecord, error)
	UpdateReminder(ctx context.Context, id string, reminder models.Reminder) error
	UpdateStatus(ctx context.Context, id string, status models.MaintenanceStatus, reminder *models.Reminder) error
}
