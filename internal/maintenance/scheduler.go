// Package maintenance schedules reminders on maintenance records and
// aggregates the upcoming maintenance across a user's vehicles.
package maintenance

import (
	"errors"
	"fmt"
	"time"

	"github.com/ukydev/autocare/internal/models"
)

// DefaultNotificationType is used for every newly scheduled reminder.
const DefaultNotificationType = "push"

var ErrUnsupportedUnit = errors.New("unsupported frequency unit")

// ScheduleNext computes the next due point of rec and replaces its reminder.
//
// Distance units produce a mileage trigger (rec.Mileage + interval, with no
// unit conversion). Calendar units advance rec.Date. Exactly one trigger is set;
// a reminder that should fire on whichever of date or mileage comes first is
// not supported.
func ScheduleNext(rec *models.MaintenanceRecord, interval int, unit models.FrequencyUnit) (models.Reminder, error) {
	var due models.DueTrigger
	switch {
	case unit.IsDistance():
		due = models.DueByMileage{Mileage: rec.Mileage + interval}
	case unit.IsTime():
		due = models.DueByDate{Date: advance(rec.Date, interval, unit)}
	default:
		return models.Reminder{}, fmt.Errorf("%w: %q", ErrUnsupportedUnit, unit)
	}

	reminder := models.Reminder{
		Enabled:          true,
		Due:              due,
		Frequency:        &models.Frequency{Value: interval, Unit: unit},
		NotificationType: DefaultNotificationType,
	}
	rec.Reminder = &reminder
	return reminder, nil
}

func advance(t time.Time, n int, unit models.FrequencyUnit) time.Time {
	switch unit {
	case models.UnitDays:
		return t.AddDate(0, 0, n)
	case models.UnitMonths:
		return addMonths(t, n)
	case models.UnitYears:
		return addMonths(t, 12*n)
	}
	return t
}

// addMonths moves t by n calendar months, clamping the day to the end of the
// target month: Jan 31 + 1 month is the last day of February.
func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysIn(first); d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

func daysIn(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}
