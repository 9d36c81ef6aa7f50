package maintenance

import (
	"sort"
	"time"

	"github.com/ukydev/autocare/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UpcomingItem is a due maintenance record enriched with its vehicle.
type UpcomingItem struct {
	models.MaintenanceRecord
	Vehicle        models.VehicleSummary `json:"vehicle"`
	MilesRemaining *int                  `json:"milesRemaining"`
}

// Upcoming selects the records whose reminder is still ahead of the user.
//
// Date reminders are kept while their date is not in the past; mileage
// reminders are always kept. Records whose vehicle is not in vehicles are
// dropped. Mileage items sort first (they have no date), by creation time;
// date items follow in due-date order.
func Upcoming(records []models.MaintenanceRecord, vehicles []models.Vehicle, now time.Time) []UpcomingItem {
	byID := make(map[primitive.ObjectID]*models.Vehicle, len(vehicles))
	for i := range vehicles {
		byID[vehicles[i].ID] = &vehicles[i]
	}

	items := make([]UpcomingItem, 0, len(records))
	for _, rec := range records {
		if rec.Reminder == nil || !rec.Reminder.Enabled {
			continue
		}
		vehicle, ok := byID[rec.VehicleID]
		if !ok {
			continue
		}

		item := UpcomingItem{MaintenanceRecord: rec, Vehicle: vehicle.Summary()}
		switch due := rec.Reminder.Due.(type) {
		case models.DueByDate:
			if due.Date.Before(now) {
				continue
			}
		case models.DueByMileage:
			remaining := due.Mileage - vehicle.Mileage.Current
			item.MilesRemaining = &remaining
		default:
			continue
		}
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		ad, aDated := a.Reminder.DueDate()
		bd, bDated := b.Reminder.DueDate()
		if aDated != bDated {
			return !aDated
		}
		if aDated && !ad.Equal(bd) {
			return ad.Before(bd)
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return items
}
