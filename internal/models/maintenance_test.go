package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestReminderJSON_MileageTrigger(t *testing.T) {
	r := Reminder{
		Enabled:   true,
		Due:       DueByMileage{Mileage: 55000},
		Frequency: &Frequency{Value: 5000, Unit: UnitMiles},
	}
	data, err := json.Marshal(r)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, float64(55000), raw["dueMileage"])
	_, hasDate := raw["dueDate"]
	assert.False(t, hasDate)
	assert.Equal(t, true, raw["enabled"])
}

func TestReminderJSON_DateTrigger(t *testing.T) {
	due := time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC)
	data, err := json.Marshal(Reminder{Enabled: true, Due: DueByDate{Date: due}})
	require.NoError(t, err)

	var out Reminder
	require.NoError(t, json.Unmarshal(data, &out))
	got, ok := out.DueDate()
	require.True(t, ok)
	assert.True(t, due.Equal(got))
	_, ok = out.DueMileage()
	assert.False(t, ok)
}

func TestReminderJSON_BothTriggersRejected(t *testing.T) {
	var r Reminder
	err := json.Unmarshal([]byte(`{"enabled":true,"dueDate":"2024-04-15T00:00:00Z","dueMileage":1000}`), &r)
	assert.ErrorIs(t, err, ErrAmbiguousTrigger)
}

func TestReminderJSON_NoTrigger(t *testing.T) {
	var r Reminder
	require.NoError(t, json.Unmarshal([]byte(`{"enabled":true}`), &r))
	assert.True(t, r.Enabled)
	assert.Nil(t, r.Due)
}

func TestReminderBSON_RoundTripInsideRecord(t *testing.T) {
	rec := MaintenanceRecord{
		Type:    MaintenanceOilChange,
		Title:   "Oil change",
		Mileage: 50000,
		Reminder: &Reminder{
			Enabled:   true,
			Due:       DueByMileage{Mileage: 55000},
			Frequency: &Frequency{Value: 5000, Unit: UnitMiles},
		},
		Status: StatusCompleted,
	}
	data, err := bson.Marshal(rec)
	require.NoError(t, err)

	raw := bson.Raw(data)
	due, err := raw.LookupErr("reminder", "due_mileage")
	require.NoError(t, err, "reminder stored as sub-document")
	assert.EqualValues(t, 55000, due.Int32())
	_, err = raw.LookupErr("reminder", "due_date")
	assert.Error(t, err)

	var out MaintenanceRecord
	require.NoError(t, bson.Unmarshal(data, &out))
	require.NotNil(t, out.Reminder)
	mileage, ok := out.Reminder.DueMileage()
	require.True(t, ok)
	assert.Equal(t, 55000, mileage)
	assert.Equal(t, UnitMiles, out.Reminder.Frequency.Unit)
}

func TestFrequencyUnit_Classification(t *testing.T) {
	for _, u := range []FrequencyUnit{UnitMiles, UnitKilometers} {
		assert.True(t, u.IsDistance(), u)
		assert.False(t, u.IsTime(), u)
	}
	for _, u := range []FrequencyUnit{UnitDays, UnitMonths, UnitYears} {
		assert.True(t, u.IsTime(), u)
		assert.False(t, u.IsDistance(), u)
	}
	bogus := FrequencyUnit("fortnights")
	assert.False(t, bogus.IsTime())
	assert.False(t, bogus.IsDistance())
}

func TestIsValidMaintenanceType(t *testing.T) {
	assert.True(t, IsValidMaintenanceType(MaintenanceOilChange))
	assert.True(t, IsValidMaintenanceType(MaintenanceOther))
	assert.False(t, IsValidMaintenanceType("car_wash"))
}
