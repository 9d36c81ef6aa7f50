package maintenance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/autocare/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestScheduleNext_Miles(t *testing.T) {
	rec := &models.MaintenanceRecord{Mileage: 50000, Date: date(2024, 1, 1)}

	reminder, err := ScheduleNext(rec, 5000, models.UnitMiles)
	require.NoError(t, err)

	mileage, ok := reminder.DueMileage()
	require.True(t, ok)
	assert.Equal(t, 55000, mileage)
	_, ok = reminder.DueDate()
	assert.False(t, ok)
	assert.True(t, reminder.Enabled)
	assert.Equal(t, &models.Frequency{Value: 5000, Unit: models.UnitMiles}, reminder.Frequency)
	assert.Equal(t, &reminder, rec.Reminder)
}

func TestScheduleNext_KilometersNotConverted(t *testing.T) {
	rec := &models.MaintenanceRecord{Mileage: 10000}
	reminder, err := ScheduleNext(rec, 8000, models.UnitKilometers)
	require.NoError(t, err)
	mileage, _ := reminder.DueMileage()
	assert.Equal(t, 18000, mileage)
}

func TestScheduleNext_Calendar(t *testing.T) {
	tests := []struct {
		name     string
		from     time.Time
		interval int
		unit     models.FrequencyUnit
		want     time.Time
	}{
		{"three months", date(2024, 1, 15), 3, models.UnitMonths, date(2024, 4, 15)},
		{"days across month", date(2024, 1, 25), 10, models.UnitDays, date(2024, 2, 4)},
		{"one year", date(2023, 6, 1), 1, models.UnitYears, date(2024, 6, 1)},
		{"month end clamps to leap day", date(2024, 1, 31), 1, models.UnitMonths, date(2024, 2, 29)},
		{"month end clamps", date(2023, 1, 31), 1, models.UnitMonths, date(2023, 2, 28)},
		{"leap day plus a year", date(2024, 2, 29), 1, models.UnitYears, date(2025, 2, 28)},
		{"across year end", date(2024, 11, 30), 3, models.UnitMonths, date(2025, 2, 28)},
		{"31st into 30-day month", date(2024, 3, 31), 1, models.UnitMonths, date(2024, 4, 30)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &models.MaintenanceRecord{Mileage: 1000, Date: tt.from}
			reminder, err := ScheduleNext(rec, tt.interval, tt.unit)
			require.NoError(t, err)

			got, ok := reminder.DueDate()
			require.True(t, ok)
			assert.True(t, tt.want.Equal(got), "got %s want %s", got, tt.want)
			_, ok = reminder.DueMileage()
			assert.False(t, ok)
		})
	}
}

func TestScheduleNext_ReplacesPriorReminder(t *testing.T) {
	rec := &models.MaintenanceRecord{
		Mileage: 30000,
		Date:    date(2024, 1, 15),
		Reminder: &models.Reminder{
			Enabled:          false,
			Due:              models.DueByMileage{Mileage: 31000},
			NotificationType: "email",
			NotificationSent: true,
		},
	}

	_, err := ScheduleNext(rec, 6, models.UnitMonths)
	require.NoError(t, err)

	require.NotNil(t, rec.Reminder)
	assert.True(t, rec.Reminder.Enabled)
	assert.False(t, rec.Reminder.NotificationSent)
	assert.Equal(t, DefaultNotificationType, rec.Reminder.NotificationType)
	_, hasMileage := rec.Reminder.DueMileage()
	assert.False(t, hasMileage, "old mileage trigger must not survive")
	due, ok := rec.Reminder.DueDate()
	require.True(t, ok)
	assert.True(t, date(2024, 7, 15).Equal(due))
}

func TestScheduleNext_UnsupportedUnit(t *testing.T) {
	prior := &models.Reminder{Enabled: true, Due: models.DueByMileage{Mileage: 100}}
	rec := &models.MaintenanceRecord{Mileage: 50, Reminder: prior}

	_, err := ScheduleNext(rec, 2, "weeks")
	assert.ErrorIs(t, err, ErrUnsupportedUnit)
	assert.Same(t, prior, rec.Reminder, "record untouched on rejection")
}
