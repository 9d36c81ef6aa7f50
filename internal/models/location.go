package models

// Location is the geolocation attached to a diagnostic snapshot.
type Location struct {
	Lat      float64 `bson:"lat" json:"lat"`
	Lon      float64 `bson:"lon" json:"lon"`
	Accuracy float64 `bson:"accuracy,omitempty" json:"accuracy,omitempty"` // meters
}
