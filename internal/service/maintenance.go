package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/autocare/internal/db"
	"github.com/ukydev/autocare/internal/maintenance"
	"github.com/ukydev/autocare/internal/mileage"
	"github.com/ukydev/autocare/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MaintenanceService struct {
	records  db.MaintenanceCollection
	vehicles db.VehicleCollection
	guard    *mileage.Guard
	now      func() time.Time
}

func NewMaintenanceService(records db.MaintenanceCollection, vehicles db.VehicleCollection) *MaintenanceService {
	return &MaintenanceService{
		records:  records,
		vehicles: vehicles,
		guard:    mileage.NewGuard(vehicles),
		now:      time.Now,
	}
}

// Create stores a maintenance record on one of userID's vehicles. A completed
// service logged at a higher odometer advances the vehicle's mileage.
func (s *MaintenanceService) Create(ctx context.Context, userID string, rec *models.MaintenanceRecord) error {
	owner, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return fmt.Errorf("%w: user id", ErrInvalidInput)
	}
	if !models.IsValidMaintenanceType(rec.Type) {
		return fmt.Errorf("%w: unknown maintenance type %q", ErrInvalidInput, rec.Type)
	}
	rec.Title = strings.TrimSpace(rec.Title)
	if rec.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if rec.Mileage < 0 {
		return fmt.Errorf("%w: mileage cannot be negative", ErrInvalidInput)
	}
	if rec.Reminder != nil && rec.Reminder.Frequency != nil {
		if err := validateFrequency(rec.Reminder.Frequency.Value, rec.Reminder.Frequency.Unit); err != nil {
			return err
		}
	}
	if _, err := ownedVehicle(ctx, s.vehicles, userID, rec.VehicleID.Hex()); err != nil {
		return err
	}

	rec.ID = primitive.NilObjectID
	rec.UserID = owner
	switch rec.Status {
	case "":
		rec.Status = models.StatusScheduled
	case models.StatusScheduled, models.StatusInProgress, models.StatusCompleted, models.StatusCancelled:
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, rec.Status)
	}
	if rec.Date.IsZero() {
		rec.Date = s.now()
	}
	if rec.Reminder != nil && rec.Reminder.NotificationType == "" {
		rec.Reminder.NotificationType = maintenance.DefaultNotificationType
	}

	if err := s.records.InsertMaintenance(ctx, rec); err != nil {
		return fmt.Errorf("insert maintenance record: %w", err)
	}
	return s.advanceMileage(ctx, rec)
}

// List returns a vehicle's service history, newest first.
func (s *MaintenanceService) List(ctx context.Context, userID, vehicleID string) ([]models.MaintenanceRecord, error) {
	if _, err := ownedVehicle(ctx, s.vehicles, userID, vehicleID); err != nil {
		return nil, err
	}
	return s.records.FindMaintenanceByVehicle(ctx, vehicleID)
}

// Schedule replaces the record's reminder with the next due point after it.
func (s *MaintenanceService) Schedule(ctx context.Context, userID, recordID string, interval int, unit models.FrequencyUnit) (*models.MaintenanceRecord, error) {
	if err := validateFrequency(interval, unit); err != nil {
		return nil, err
	}
	rec, err := s.ownedRecord(ctx, userID, recordID)
	if err != nil {
		return nil, err
	}
	reminder, err := maintenance.ScheduleNext(rec, interval, unit)
	if err != nil {
		return nil, err
	}
	if err := s.records.UpdateReminder(ctx, recordID, reminder); err != nil {
		return nil, fmt.Errorf("update reminder: %w", err)
	}
	return rec, nil
}

// Transition moves the record through its status workflow and persists the
// result, including a reminder rescheduled by completion.
func (s *MaintenanceService) Transition(ctx context.Context, userID, recordID, event string) (*models.MaintenanceRecord, error) {
	rec, err := s.ownedRecord(ctx, userID, recordID)
	if err != nil {
		return nil, err
	}
	if err := maintenance.Transition(ctx, rec, event); err != nil {
		return nil, err
	}
	if err := s.records.UpdateStatus(ctx, recordID, rec.Status, rec.Reminder); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	log.WithFields(log.Fields{"record_id": recordID, "event": event, "status": rec.Status}).Info("Maintenance status changed")

	if err := s.advanceMileage(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Upcoming lists userID's due maintenance across all of their vehicles.
func (s *MaintenanceService) Upcoming(ctx context.Context, userID string) ([]maintenance.UpcomingItem, error) {
	records, err := s.records.FindWithReminders(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load reminders: %w", err)
	}
	vehicles, err := s.vehicles.FindVehiclesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load vehicles: %w", err)
	}
	return maintenance.Upcoming(records, vehicles, s.now()), nil
}

func (s *MaintenanceService) ownedRecord(ctx context.Context, userID, recordID string) (*models.MaintenanceRecord, error) {
	rec, err := s.records.FindMaintenanceByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if rec.UserID.Hex() != userID {
		return nil, fmt.Errorf("maintenance record %w", db.ErrNotFound)
	}
	return rec, nil
}

// advanceMileage feeds a completed service's odometer to the ledger. A reading
// at or below the current mileage is ignored.
func (s *MaintenanceService) advanceMileage(ctx context.Context, rec *models.MaintenanceRecord) error {
	if rec.Status != models.StatusCompleted || rec.Mileage <= 0 {
		return nil
	}
	decision, _, err := s.guard.Apply(ctx, rec.VehicleID.Hex(), rec.Mileage, models.SourceService)
	if err != nil {
		return fmt.Errorf("advance mileage: %w", err)
	}
	log.WithFields(log.Fields{
		"record_id":  rec.ID.Hex(),
		"vehicle_id": rec.VehicleID.Hex(),
		"accepted":   decision.Accepted(),
	}).Debug("Service mileage offered to ledger")
	return nil
}

// validateFrequency rejects repeat intervals that completion could not reschedule.
func validateFrequency(value int, unit models.FrequencyUnit) error {
	if !unit.IsDistance() && !unit.IsTime() {
		return fmt.Errorf("%w: unsupported frequency unit %q", ErrInvalidInput, unit)
	}
	if value <= 0 {
		return fmt.Errorf("%w: frequency must be positive", ErrInvalidInput)
	}
	return nil
}
