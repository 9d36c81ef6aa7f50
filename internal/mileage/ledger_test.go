package mileage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/autocare/internal/models"
)

func TestRecord_AppendsAndAdvances(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := start.Add(48 * time.Hour)
	v := &models.Vehicle{Mileage: models.MileageLog{
		Current:     1000,
		LastUpdated: start,
		History:     []models.MileageEntry{{Value: 1000, Date: start, Source: models.SourceManual}},
	}}

	got := Record(v, 1500, models.SourceOBD, now)

	assert.Same(t, v, got)
	assert.Equal(t, 1500, v.Mileage.Current)
	assert.Equal(t, now, v.Mileage.LastUpdated)
	require.Len(t, v.Mileage.History, 2)
	assert.Equal(t, models.MileageEntry{Value: 1500, Date: now, Source: models.SourceOBD}, v.Mileage.History[1])
	assert.Equal(t, v.Mileage.Current, v.Mileage.History[len(v.Mileage.History)-1].Value)
}

func TestRecord_DoesNotValidate(t *testing.T) {
	v := &models.Vehicle{Mileage: models.MileageLog{Current: 1000}}
	Record(v, 900, models.SourceManual, time.Now())
	assert.Equal(t, 900, v.Mileage.Current, "ledger records regressions; the guard is responsible for rejecting them")
}

func TestCheck(t *testing.T) {
	d := Check(1000, 1500)
	assert.True(t, d.Accepted())
	assert.Equal(t, Accepted{Previous: 1000, Current: 1500}, d)

	for _, proposed := range []int{900, 1000} {
		d := Check(1000, proposed)
		assert.False(t, d.Accepted())
		rejected, ok := d.(Rejected)
		require.True(t, ok)
		assert.Equal(t, proposed, rejected.Proposed)
		assert.Contains(t, rejected.Error(), "must exceed current mileage 1000")
	}
}

type fakeStore struct {
	vehicle  *models.Vehicle
	findErr  error
	writeErr error
	appended []models.MileageEntry
}

func (f *fakeStore) FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	v := *f.vehicle
	v.Mileage.History = append([]models.MileageEntry(nil), f.vehicle.Mileage.History...)
	return &v, nil
}

func (f *fakeStore) AppendMileage(ctx context.Context, id string, entry models.MileageEntry) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.appended = append(f.appended, entry)
	return nil
}

func TestGuard_Accepts(t *testing.T) {
	store := &fakeStore{vehicle: &models.Vehicle{Mileage: models.MileageLog{Current: 1000}}}
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	g := NewGuard(store)
	g.now = func() time.Time { return fixed }

	decision, vehicle, err := g.Apply(context.Background(), "v1", 1500, models.SourceOBD)
	require.NoError(t, err)
	assert.True(t, decision.Accepted())
	assert.Equal(t, 1500, vehicle.Mileage.Current)
	assert.Equal(t, []models.MileageEntry{{Value: 1500, Date: fixed, Source: models.SourceOBD}}, store.appended)
}

func TestGuard_RejectsRegressionWithoutWriting(t *testing.T) {
	store := &fakeStore{vehicle: &models.Vehicle{Mileage: models.MileageLog{Current: 1000}}}

	decision, vehicle, err := NewGuard(store).Apply(context.Background(), "v1", 900, models.SourceManual)
	require.NoError(t, err)
	assert.False(t, decision.Accepted())
	assert.Equal(t, 1000, vehicle.Mileage.Current)
	assert.Empty(t, store.appended)
}

func TestGuard_StorageErrors(t *testing.T) {
	boom := errors.New("boom")

	_, _, err := NewGuard(&fakeStore{findErr: boom}).Apply(context.Background(), "v1", 10, models.SourceOBD)
	assert.ErrorIs(t, err, boom)

	store := &fakeStore{vehicle: &models.Vehicle{}, writeErr: boom}
	_, _, err = NewGuard(store).Apply(context.Background(), "v1", 10, models.SourceOBD)
	assert.ErrorIs(t, err, boom)
}
