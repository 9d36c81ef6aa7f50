package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Severity grades a diagnostic trouble code.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// DTCStatus is the lifecycle state reported for a trouble code.
type DTCStatus string

const (
	DTCStatusActive    DTCStatus = "active"
	DTCStatusPending   DTCStatus = "pending"
	DTCStatusPermanent DTCStatus = "permanent"
	DTCStatusCleared   DTCStatus = "cleared"
)

// DiagnosticTroubleCode is a fault code reported by onboard diagnostics.
type DiagnosticTroubleCode struct {
	Code        string    `bson:"code" json:"code"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	Severity    Severity  `bson:"severity,omitempty" json:"severity,omitempty"`
	Status      DTCStatus `bson:"status" json:"status"`
}

// Counts reports whether the code is live. Pending and cleared codes carry no signal.
func (d DiagnosticTroubleCode) Counts() bool {
	return d.Status == DTCStatusActive || d.Status == DTCStatusPermanent
}

type EngineReading struct {
	RPM         float64  `bson:"rpm,omitempty" json:"rpm,omitempty"`
	Temperature *float64 `bson:"temperature,omitempty" json:"temperature,omitempty"` // °F
	Load        float64  `bson:"load,omitempty" json:"load,omitempty"`               // percent
	Runtime     float64  `bson:"runtime,omitempty" json:"runtime,omitempty"`         // seconds
}

type FuelReading struct {
	Level       float64 `bson:"level,omitempty" json:"level,omitempty"` // percent
	Consumption float64 `bson:"consumption,omitempty" json:"consumption,omitempty"`
	Range       float64 `bson:"range,omitempty" json:"range,omitempty"`
	Pressure    float64 `bson:"pressure,omitempty" json:"pressure,omitempty"`
}

type BatteryReading struct {
	Voltage       *float64 `bson:"voltage,omitempty" json:"voltage,omitempty"`
	Current       float64  `bson:"current,omitempty" json:"current,omitempty"`
	Temperature   float64  `bson:"temperature,omitempty" json:"temperature,omitempty"`
	StateOfCharge float64  `bson:"state_of_charge,omitempty" json:"stateOfCharge,omitempty"`
}

type TransmissionReading struct {
	Temperature float64 `bson:"temperature,omitempty" json:"temperature,omitempty"`
	Gear        string  `bson:"gear,omitempty" json:"gear,omitempty"`
}

type BrakingReading struct {
	PadWear    float64 `bson:"pad_wear,omitempty" json:"padWear,omitempty"`       // percent remaining
	FluidLevel float64 `bson:"fluid_level,omitempty" json:"fluidLevel,omitempty"` // percent
	Pressure   float64 `bson:"pressure,omitempty" json:"pressure,omitempty"`
}

type EmissionsReading struct {
	CO2             float64 `bson:"co2,omitempty" json:"co2,omitempty"`
	NOx             float64 `bson:"nox,omitempty" json:"nox,omitempty"`
	O2SensorVoltage float64 `bson:"o2_sensor_voltage,omitempty" json:"o2SensorVoltage,omitempty"`
}

// TireReading is one wheel position. Pressure is in psi.
type TireReading struct {
	Pressure    *float64 `bson:"pressure,omitempty" json:"pressure,omitempty"`
	Temperature float64  `bson:"temperature,omitempty" json:"temperature,omitempty"`
	TreadDepth  float64  `bson:"tread_depth,omitempty" json:"treadDepth,omitempty"` // 32nds of an inch
}

// TirePosition names a wheel.
type TirePosition string

const (
	TireFrontLeft  TirePosition = "frontLeft"
	TireFrontRight TirePosition = "frontRight"
	TireRearLeft   TirePosition = "rearLeft"
	TireRearRight  TirePosition = "rearRight"
)

type TireSet struct {
	FrontLeft  *TireReading `bson:"front_left,omitempty" json:"frontLeft,omitempty"`
	FrontRight *TireReading `bson:"front_right,omitempty" json:"frontRight,omitempty"`
	RearLeft   *TireReading `bson:"rear_left,omitempty" json:"rearLeft,omitempty"`
	RearRight  *TireReading `bson:"rear_right,omitempty" json:"rearRight,omitempty"`
}

// PositionedTire pairs a reading with its wheel position.
type PositionedTire struct {
	Position TirePosition
	Reading  TireReading
}

// Positions returns the tires present in the set in fixed order:
// front left, front right, rear left, rear right.
func (t *TireSet) Positions() []PositionedTire {
	if t == nil {
		return nil
	}
	all := []struct {
		pos     TirePosition
		reading *TireReading
	}{
		{TireFrontLeft, t.FrontLeft},
		{TireFrontRight, t.FrontRight},
		{TireRearLeft, t.RearLeft},
		{TireRearRight, t.RearRight},
	}
	out := make([]PositionedTire, 0, len(all))
	for _, tire := range all {
		if tire.reading == nil {
			continue
		}
		out = append(out, PositionedTire{Position: tire.pos, Reading: *tire.reading})
	}
	return out
}

// TripSummary describes the drive that produced a snapshot.
type TripSummary struct {
	ID           string    `bson:"id" json:"id"`
	StartTime    time.Time `bson:"start_time" json:"startTime"`
	EndTime      time.Time `bson:"end_time,omitempty" json:"endTime,omitempty"`
	Duration     float64   `bson:"duration" json:"duration"`          // seconds
	Distance     float64   `bson:"distance" json:"distance"`          // miles
	AverageSpeed float64   `bson:"average_speed" json:"averageSpeed"` // mph
	MaxSpeed     float64   `bson:"max_speed" json:"maxSpeed"`
	FuelUsed     float64   `bson:"fuel_used,omitempty" json:"fuelUsed,omitempty"`     // gallons
	EnergyUsed   float64   `bson:"energy_used,omitempty" json:"energyUsed,omitempty"` // kWh
}

// DiagnosticSnapshot is one onboard-diagnostics reading. Snapshots are never
// mutated once stored.
type DiagnosticSnapshot struct {
	ID           primitive.ObjectID      `bson:"_id,omitempty" json:"id"`
	VehicleID    primitive.ObjectID      `bson:"vehicle_id" json:"vehicleId"`
	UserID       primitive.ObjectID      `bson:"user_id" json:"userId"`
	Timestamp    time.Time               `bson:"timestamp" json:"timestamp"`
	Mileage      int                     `bson:"mileage" json:"mileage"`
	Location     *Location               `bson:"location,omitempty" json:"location,omitempty"`
	Engine       *EngineReading          `bson:"engine,omitempty" json:"engine,omitempty"`
	Fuel         *FuelReading            `bson:"fuel,omitempty" json:"fuel,omitempty"`
	Battery      *BatteryReading         `bson:"battery,omitempty" json:"battery,omitempty"`
	Sensors      map[string]float64      `bson:"sensors,omitempty" json:"sensors,omitempty"`
	Transmission *TransmissionReading    `bson:"transmission,omitempty" json:"transmission,omitempty"`
	Braking      *BrakingReading         `bson:"braking,omitempty" json:"braking,omitempty"`
	Tires        *TireSet                `bson:"tires,omitempty" json:"tires,omitempty"`
	Emissions    *EmissionsReading       `bson:"emissions,omitempty" json:"emissions,omitempty"`
	DTCs         []DiagnosticTroubleCode `bson:"dtcs,omitempty" json:"dtcs,omitempty"`
	Trip         *TripSummary            `bson:"trip,omitempty" json:"trip,omitempty"`
}

// EngineTemperature returns the engine coolant temperature if the snapshot carries one.
func (s *DiagnosticSnapshot) EngineTemperature() (float64, bool) {
	if s.Engine == nil || s.Engine.Temperature == nil {
		return 0, false
	}
	return *s.Engine.Temperature, true
}

// BatteryVoltage returns the battery voltage if the snapshot carries one.
func (s *DiagnosticSnapshot) BatteryVoltage() (float64, bool) {
	if s.Battery == nil || s.Battery.Voltage == nil {
		return 0, false
	}
	return *s.Battery.Voltage, true
}

// Float returns a pointer to v, for building optional readings.
func Float(v float64) *float64 {
	return &v
}
