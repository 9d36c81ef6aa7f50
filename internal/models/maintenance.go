package models

import (
	"encoding/json"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaintenanceType is a service category.
type MaintenanceType string

const (
	MaintenanceOilChange           MaintenanceType = "oil_change"
	MaintenanceTireRotation        MaintenanceType = "tire_rotation"
	MaintenanceBrakeService        MaintenanceType = "brake_service"
	MaintenanceBatteryService      MaintenanceType = "battery_service"
	MaintenanceInspection          MaintenanceType = "inspection"
	MaintenanceTransmissionService MaintenanceType = "transmission_service"
	MaintenanceCoolantFlush        MaintenanceType = "coolant_flush"
	MaintenanceAirFilter           MaintenanceType = "air_filter"
	MaintenanceRegistration        MaintenanceType = "registration"
	MaintenanceInsurance           MaintenanceType = "insurance"
	MaintenanceRepair              MaintenanceType = "repair"
	MaintenanceOther               MaintenanceType = "other"
)

// IsValidMaintenanceType checks a type against the known categories.
func IsValidMaintenanceType(t MaintenanceType) bool {
	switch t {
	case MaintenanceOilChange, MaintenanceTireRotation, MaintenanceBrakeService,
		MaintenanceBatteryService, MaintenanceInspection, MaintenanceTransmissionService,
		MaintenanceCoolantFlush, MaintenanceAirFilter, MaintenanceRegistration,
		MaintenanceInsurance, MaintenanceRepair, MaintenanceOther:
		return true
	default:
		return false
	}
}

// MaintenanceStatus is the lifecycle state of a maintenance record.
type MaintenanceStatus string

const (
	StatusScheduled  MaintenanceStatus = "scheduled"
	StatusInProgress MaintenanceStatus = "in_progress"
	StatusCompleted  MaintenanceStatus = "completed"
	StatusCancelled  MaintenanceStatus = "cancelled"
)

// FrequencyUnit is the granularity of a reminder interval.
type FrequencyUnit string

const (
	UnitDays       FrequencyUnit = "days"
	UnitMonths     FrequencyUnit = "months"
	UnitYears      FrequencyUnit = "years"
	UnitMiles      FrequencyUnit = "miles"
	UnitKilometers FrequencyUnit = "kilometers"
)

// IsDistance reports whether the unit schedules by odometer.
func (u FrequencyUnit) IsDistance() bool {
	return u == UnitMiles || u == UnitKilometers
}

// IsTime reports whether the unit schedules by calendar.
func (u FrequencyUnit) IsTime() bool {
	return u == UnitDays || u == UnitMonths || u == UnitYears
}

type Frequency struct {
	Value int           `bson:"value" json:"value"`
	Unit  FrequencyUnit `bson:"unit" json:"unit"`
}

type Cost struct {
	Amount   float64 `bson:"amount" json:"amount"`
	Currency string  `bson:"currency" json:"currency"`
}

type ServiceProvider struct {
	Name    string `bson:"name" json:"name"`
	Phone   string `bson:"phone,omitempty" json:"phone,omitempty"`
	Address string `bson:"address,omitempty" json:"address,omitempty"`
}

type Part struct {
	Name       string  `bson:"name" json:"name"`
	PartNumber string  `bson:"part_number,omitempty" json:"partNumber,omitempty"`
	Quantity   int     `bson:"quantity" json:"quantity"`
	Cost       float64 `bson:"cost,omitempty" json:"cost,omitempty"`
}

// DueTrigger is the single condition that makes a reminder due.
// It is either DueByDate or DueByMileage.
type DueTrigger interface {
	dueTrigger()
}

// DueByDate fires on a calendar date.
type DueByDate struct {
	Date time.Time
}

// DueByMileage fires when the odometer reaches Mileage.
type DueByMileage struct {
	Mileage int
}

func (DueByDate) dueTrigger()    {}
func (DueByMileage) dueTrigger() {}

// ErrAmbiguousTrigger is returned when a stored reminder carries both a due
// date and a due mileage.
var ErrAmbiguousTrigger = errors.New("reminder has both due date and due mileage")

// Reminder is the due-trigger sub-document of a maintenance record.
type Reminder struct {
	Enabled          bool
	Due              DueTrigger
	Frequency        *Frequency
	NotificationType string
	NotificationSent bool
}

// DueDate returns the trigger date for date-based reminders.
func (r Reminder) DueDate() (time.Time, bool) {
	d, ok := r.Due.(DueByDate)
	return d.Date, ok
}

// DueMileage returns the trigger odometer value for mileage-based reminders.
func (r Reminder) DueMileage() (int, bool) {
	m, ok := r.Due.(DueByMileage)
	return m.Mileage, ok
}

// reminderDoc is the stored and serialized form of a Reminder.
type reminderDoc struct {
	Enabled          bool       `bson:"enabled" json:"enabled"`
	DueDate          *time.Time `bson:"due_date,omitempty" json:"dueDate,omitempty"`
	DueMileage       *int       `bson:"due_mileage,omitempty" json:"dueMileage,omitempty"`
	Frequency        *Frequency `bson:"frequency,omitempty" json:"frequency,omitempty"`
	NotificationType string     `bson:"notification_type,omitempty" json:"notificationType,omitempty"`
	NotificationSent bool       `bson:"notification_sent" json:"notificationSent"`
}

func (r Reminder) toDoc() reminderDoc {
	doc := reminderDoc{
		Enabled:          r.Enabled,
		Frequency:        r.Frequency,
		NotificationType: r.NotificationType,
		NotificationSent: r.NotificationSent,
	}
	switch due := r.Due.(type) {
	case DueByDate:
		d := due.Date
		doc.DueDate = &d
	case DueByMileage:
		m := due.Mileage
		doc.DueMileage = &m
	}
	return doc
}

func (r *Reminder) fromDoc(doc reminderDoc) error {
	if doc.DueDate != nil && doc.DueMileage != nil {
		return ErrAmbiguousTrigger
	}
	r.Enabled = doc.Enabled
	r.Frequency = doc.Frequency
	r.NotificationType = doc.NotificationType
	r.NotificationSent = doc.NotificationSent
	r.Due = nil
	switch {
	case doc.DueDate != nil:
		r.Due = DueByDate{Date: *doc.DueDate}
	case doc.DueMileage != nil:
		r.Due = DueByMileage{Mileage: *doc.DueMileage}
	}
	return nil
}

func (r Reminder) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.toDoc())
}

func (r *Reminder) UnmarshalJSON(data []byte) error {
	var doc reminderDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	return r.fromDoc(doc)
}

func (r Reminder) MarshalBSON() ([]byte, error) {
	return bson.Marshal(r.toDoc())
}

func (r *Reminder) UnmarshalBSON(data []byte) error {
	var doc reminderDoc
	if err := bson.Unmarshal(data, &doc); err != nil {
		return err
	}
	return r.fromDoc(doc)
}

// MaintenanceRecord is a completed or scheduled service on a vehicle.
type MaintenanceRecord struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VehicleID   primitive.ObjectID `bson:"vehicle_id" json:"vehicleId"`
	UserID      primitive.ObjectID `bson:"user_id" json:"userId"`
	Type        MaintenanceType    `bson:"type" json:"type"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Mileage     int                `bson:"mileage" json:"mileage"`
	Date        time.Time          `bson:"date" json:"date"`
	Cost        Cost               `bson:"cost" json:"cost"`
	Provider    *ServiceProvider   `bson:"provider,omitempty" json:"provider,omitempty"`
	Parts       []Part             `bson:"parts,omitempty" json:"parts,omitempty"`
	Receipts    []string           `bson:"receipts,omitempty" json:"receipts,omitempty"`
	Reminder    *Reminder          `bson:"reminder,omitempty" json:"reminder,omitempty"`
	Status      MaintenanceStatus  `bson:"status" json:"status"`
	Notes       string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}
