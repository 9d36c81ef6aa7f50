package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ukydev/autocare/internal/db"
	"github.com/ukydev/autocare/internal/health"
	"github.com/ukydev/autocare/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memStore is an in-memory stand-in for the Mongo collections.
type memStore struct {
	mu        sync.Mutex
	vehicles  map[string]models.Vehicle
	snapshots []models.DiagnosticSnapshot
	records   map[string]models.MaintenanceRecord
	clock     time.Time
}

func newMemStore() *memStore {
	return &memStore{
		vehicles: make(map[string]models.Vehicle),
		records:  make(map[string]models.MaintenanceRecord),
		clock:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// tick returns a strictly increasing creation time.
func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memStore) InsertVehicle(ctx context.Context, vehicle *models.Vehicle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if vehicle.ID.IsZero() {
		vehicle.ID = primitive.NewObjectID()
	}
	vehicle.CreatedAt = m.tick()
	m.vehicles[vehicle.ID.Hex()] = *vehicle
	return nil
}

func (m *memStore) FindVehiclesByUser(ctx context.Context, userID string) ([]models.Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Vehicle, 0)
	for _, v := range m.vehicles {
		if v.UserID.Hex() == userID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vehicles[id]
	if !ok {
		return nil, fmt.Errorf("vehicle %w", db.ErrNotFound)
	}
	v.Mileage.History = append([]models.MileageEntry(nil), v.Mileage.History...)
	return &v, nil
}

func (m *memStore) AppendMileage(ctx context.Context, id string, entry models.MileageEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vehicles[id]
	if !ok {
		return fmt.Errorf("vehicle %w", db.ErrNotFound)
	}
	v.Mileage.Current = entry.Value
	v.Mileage.LastUpdated = entry.Date
	v.Mileage.History = append(append([]models.MileageEntry(nil), v.Mileage.History...), entry)
	m.vehicles[id] = v
	return nil
}

func (m *memStore) DeleteVehicle(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.vehicles[id]; !ok {
		return fmt.Errorf("vehicle %w", db.ErrNotFound)
	}
	delete(m.vehicles, id)
	return nil
}

func (m *memStore) InsertSnapshot(ctx context.Context, snapshot *models.DiagnosticSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if snapshot.ID.IsZero() {
		snapshot.ID = primitive.NewObjectID()
	}
	m.snapshots = append(m.snapshots, *snapshot)
	return nil
}

func (m *memStore) LatestSnapshot(ctx context.Context, vehicleID string) (*models.DiagnosticSnapshot, error) {
	found, _ := m.FindSnapshots(ctx, vehicleID, time.Time{}, time.Time{}, 1)
	if len(found) == 0 {
		return nil, fmt.Errorf("snapshot %w", db.ErrNotFound)
	}
	return &found[0], nil
}

func (m *memStore) FindSnapshots(ctx context.Context, vehicleID string, from, to time.Time, limit int64) ([]models.DiagnosticSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.DiagnosticSnapshot, 0)
	for _, s := range m.snapshots {
		if s.VehicleID.Hex() != vehicleID {
			continue
		}
		if (!from.IsZero() && s.Timestamp.Before(from)) || (!to.IsZero() && s.Timestamp.After(to)) {
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) InsertMaintenance(ctx context.Context, record *models.MaintenanceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if record.ID.IsZero() {
		record.ID = primitive.NewObjectID()
	}
	record.CreatedAt = m.tick()
	m.records[record.ID.Hex()] = *record
	return nil
}

func (m *memStore) FindMaintenanceByID(ctx context.Context, id string) (*models.MaintenanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, fmt.Errorf("maintenance record %w", db.ErrNotFound)
	}
	return &rec, nil
}

func (m *memStore) FindMaintenanceByVehicle(ctx context.Context, vehicleID string) ([]models.MaintenanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.MaintenanceRecord, 0)
	for _, rec := range m.records {
		if rec.VehicleID.Hex() == vehicleID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (m *memStore) FindWithReminders(ctx context.Context, userID string) ([]models.MaintenanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.MaintenanceRecord, 0)
	for _, rec := range m.records {
		if rec.UserID.Hex() == userID && rec.Reminder != nil && rec.Reminder.Enabled {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) UpdateReminder(ctx context.Context, id string, reminder models.Reminder) error {
	return m.update(id, func(rec *models.MaintenanceRecord) { rec.Reminder = &reminder })
}

func (m *memStore) UpdateStatus(ctx context.Context, id string, status models.MaintenanceStatus, reminder *models.Reminder) error {
	return m.update(id, func(rec *models.MaintenanceRecord) {
		rec.Status = status
		if reminder != nil {
			r := *reminder
			rec.Reminder = &r
		}
	})
}

func (m *memStore) update(id string, fn func(*models.MaintenanceRecord)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return fmt.Errorf("maintenance record %w", db.ErrNotFound)
	}
	fn(&rec)
	m.records[id] = rec
	return nil
}

// addVehicle seeds a vehicle owned by userID at the given mileage.
func (m *memStore) addVehicle(userID primitive.ObjectID, current int) models.Vehicle {
	v := models.Vehicle{
		UserID:  userID,
		Make:    "Toyota",
		Model:   "Corolla",
		Year:    2018,
		Mileage: models.MileageLog{Current: current, Unit: "mi"},
	}
	_ = m.InsertVehicle(context.Background(), &v)
	return v
}

type fakeCache struct {
	reports map[string]*health.Report
	gets    int
	sets    int
	getErr  error
}

func newFakeCache() *fakeCache {
	return &fakeCache{reports: make(map[string]*health.Report)}
}

func (f *fakeCache) Get(ctx context.Context, snapshotID string) (*health.Report, error) {
	f.gets++
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.reports[snapshotID], nil
}

func (f *fakeCache) Set(ctx context.Context, snapshotID string, report *health.Report) error {
	f.sets++
	f.reports[snapshotID] = report
	return nil
}
