package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MileageSource records who reported an odometer reading.
type MileageSource string

const (
	SourceManual  MileageSource = "manual"
	SourceOBD     MileageSource = "obd"
	SourceService MileageSource = "service"
)

type MileageEntry struct {
	Value  int           `bson:"value" json:"value"`
	Date   time.Time     `bson:"date" json:"date"`
	Source MileageSource `bson:"source" json:"source"`
}

// MileageLog is the odometer aggregate of a vehicle. Current always equals the
// value of the last History entry.
type MileageLog struct {
	Current     int            `bson:"current" json:"current"`
	Unit        string         `bson:"unit" json:"unit"` // "mi" or "km"
	LastUpdated time.Time      `bson:"last_updated" json:"lastUpdated"`
	History     []MileageEntry `bson:"history" json:"history"`
}

// Vehicle is a vehicle owned by a single user.
type Vehicle struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"userId"`
	Make      string             `bson:"make" json:"make"`
	Model     string             `bson:"model" json:"model"`
	Year      int                `bson:"year" json:"year"`
	Nickname  string             `bson:"nickname,omitempty" json:"nickname,omitempty"`
	VIN       string             `bson:"vin,omitempty" json:"vin,omitempty"`
	Mileage   MileageLog         `bson:"mileage" json:"mileage"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}

// VehicleSummary is the vehicle context embedded in upcoming-maintenance items.
type VehicleSummary struct {
	ID             primitive.ObjectID `json:"id"`
	Make           string             `json:"make"`
	Model          string             `json:"model"`
	Year           int                `json:"year"`
	Nickname       string             `json:"nickname,omitempty"`
	CurrentMileage int                `json:"currentMileage"`
}

func (v *Vehicle) Summary() VehicleSummary {
	return VehicleSummary{
		ID:             v.ID,
		Make:           v.Make,
		Model:          v.Model,
		Year:           v.Year,
		Nickname:       v.Nickname,
		CurrentMileage: v.Mileage.Current,
	}
}
