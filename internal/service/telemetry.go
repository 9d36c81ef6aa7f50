package service

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/autocare/internal/db"
	"github.com/ukydev/autocare/internal/health"
	"github.com/ukydev/autocare/internal/mileage"
	"github.com/ukydev/autocare/internal/models"
)

// HistoryLimit caps the snapshots returned by a single history query.
const HistoryLimit = 500

type TelemetryService struct {
	snapshots db.SnapshotCollection
	vehicles  db.VehicleCollection
	guard     *mileage.Guard
	cache     HealthCache
	now       func() time.Time
}

// NewTelemetryService builds the service. cache may be nil.
func NewTelemetryService(snapshots db.SnapshotCollection, vehicles db.VehicleCollection, cache HealthCache) *TelemetryService {
	return &TelemetryService{
		snapshots: snapshots,
		vehicles:  vehicles,
		guard:     mileage.NewGuard(vehicles),
		cache:     cache,
		now:       time.Now,
	}
}

// Ingest stores a snapshot for a vehicle the snapshot's user owns, then offers
// its odometer reading to the mileage ledger.
func (s *TelemetryService) Ingest(ctx context.Context, snap *models.DiagnosticSnapshot) error {
	if snap.VehicleID.IsZero() || snap.UserID.IsZero() {
		return fmt.Errorf("%w: vehicle and user are required", ErrInvalidInput)
	}
	if snap.Mileage < 0 {
		return fmt.Errorf("%w: mileage cannot be negative", ErrInvalidInput)
	}
	vehicleID := snap.VehicleID.Hex()
	if _, err := ownedVehicle(ctx, s.vehicles, snap.UserID.Hex(), vehicleID); err != nil {
		return err
	}
	if snap.Timestamp.IsZero() {
		snap.Timestamp = s.now()
	}

	if err := s.snapshots.InsertSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}

	logger := log.WithFields(log.Fields{"vehicle_id": vehicleID, "snapshot_id": snap.ID.Hex()})
	if snap.Mileage > 0 {
		decision, _, err := s.guard.Apply(ctx, vehicleID, snap.Mileage, models.SourceOBD)
		if err != nil {
			return fmt.Errorf("advance mileage: %w", err)
		}
		logger = logger.WithField("mileage_accepted", decision.Accepted())
	}
	logger.Debug("Snapshot ingested")
	return nil
}

// Health analyzes the latest snapshot of a vehicle. Reports are cached by
// snapshot id; cache failures only cost a recomputation.
func (s *TelemetryService) Health(ctx context.Context, userID, vehicleID string) (*health.Report, error) {
	if _, err := ownedVehicle(ctx, s.vehicles, userID, vehicleID); err != nil {
		return nil, err
	}
	latest, err := s.snapshots.LatestSnapshot(ctx, vehicleID)
	if err != nil {
		return nil, err
	}

	key := latest.ID.Hex()
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key)
		if err != nil {
			log.WithError(err).WithField("snapshot_id", key).Warn("Health cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	report := health.Analyze(latest)
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, &report); err != nil {
			log.WithError(err).WithField("snapshot_id", key).Warn("Health cache write failed")
		}
	}
	return &report, nil
}

// History returns a vehicle's snapshots in [from, to], newest first. Zero
// bounds leave the range open.
func (s *TelemetryService) History(ctx context.Context, userID, vehicleID string, from, to time.Time) ([]models.DiagnosticSnapshot, error) {
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return nil, fmt.Errorf("%w: range end precedes start", ErrInvalidInput)
	}
	if _, err := ownedVehicle(ctx, s.vehicles, userID, vehicleID); err != nil {
		return nil, err
	}
	return s.snapshots.FindSnapshots(ctx, vehicleID, from, to, HistoryLimit)
}
