// Package mileage keeps the append-only odometer history of a vehicle.
package mileage

import (
	"time"

	"github.com/ukydev/autocare/internal/models"
)

// Record appends an odometer reading to v and makes it current.
//
// Record does not check that value moves forward. Callers go through Guard,
// which rejects regressions before the ledger is touched.
func Record(v *models.Vehicle, value int, source models.MileageSource, now time.Time) *models.Vehicle {
	v.Mileage.History = append(v.Mileage.History, models.MileageEntry{
		Value:  value,
		Date:   now,
		Source: source,
	})
	v.Mileage.Current = value
	v.Mileage.LastUpdated = now
	return v
}
