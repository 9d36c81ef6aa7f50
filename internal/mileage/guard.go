package mileage

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/autocare/internal/models"
)

// Decision is the outcome of a mileage update: Accepted or Rejected.
type Decision interface {
	Accepted() bool
}

// Accepted means the reading was appended to the ledger.
type Accepted struct {
	Previous int
	Current  int
}

// Rejected means the reading was refused and nothing was written.
type Rejected struct {
	Current  int
	Proposed int
	Reason   string
}

func (Accepted) Accepted() bool { return true }
func (Rejected) Accepted() bool { return false }

func (r Rejected) Error() string {
	return fmt.Sprintf("mileage rejected: %s", r.Reason)
}

// Check decides whether proposed may follow current.
func Check(current, proposed int) Decision {
	if proposed <= current {
		return Rejected{
			Current:  current,
			Proposed: proposed,
			Reason:   fmt.Sprintf("new mileage %d must exceed current mileage %d", proposed, current),
		}
	}
	return Accepted{Previous: current, Current: proposed}
}

// Store is what the guard needs from persistence.
type Store interface {
	FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error)
	AppendMileage(ctx context.Context, id string, entry models.MileageEntry) error
}

// Guard is the single writer of vehicle mileage. It reads the latest value,
// checks the proposed one and persists the ledger entry. The read and the write
// are not atomic: two concurrent higher readings may land out of order.
type Guard struct {
	store Store
	now   func() time.Time
}

func NewGuard(store Store) *Guard {
	return &Guard{store: store, now: time.Now}
}

// Apply advances vehicleID's mileage to value. A Rejected decision is returned
// with a nil error; errors are reserved for storage failures.
func (g *Guard) Apply(ctx context.Context, vehicleID string, value int, source models.MileageSource) (Decision, *models.Vehicle, error) {
	vehicle, err := g.store.FindVehicleByID(ctx, vehicleID)
	if err != nil {
		return nil, nil, fmt.Errorf("load vehicle: %w", err)
	}

	decision := Check(vehicle.Mileage.Current, value)
	if !decision.Accepted() {
		log.WithFields(log.Fields{
			"vehicle_id": vehicleID,
			"current":    vehicle.Mileage.Current,
			"proposed":   value,
			"source":     source,
		}).Debug("Mileage update rejected")
		return decision, vehicle, nil
	}

	Record(vehicle, value, source, g.now())
	entry := vehicle.Mileage.History[len(vehicle.Mileage.History)-1]
	if err := g.store.AppendMileage(ctx, vehicleID, entry); err != nil {
		return nil, nil, fmt.Errorf("append mileage: %w", err)
	}
	return decision, vehicle, nil
}
