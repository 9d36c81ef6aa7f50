package health

import (
	"fmt"
	"time"

	"github.com/ukydev/autocare/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RecommendationType string

const (
	TypeFuelSystem         RecommendationType = "fuel_system"
	TypeAirFuelRatio       RecommendationType = "air_fuel_ratio"
	TypeIgnitionSystem     RecommendationType = "ignition_system"
	TypeAuxiliaryEmissions RecommendationType = "auxiliary_emissions"
	TypeCoolingSystem      RecommendationType = "cooling_system"
	TypeElectricalSystem   RecommendationType = "electrical_system"
	TypeTirePressure       RecommendationType = "tire_pressure"
)

// Urgency reuses the DTC severity scale.
type Urgency = models.Severity

const (
	EngineTempCritical     = 245.0 // °F
	BatteryVoltageCritical = 11.0  // V
)

type Recommendation struct {
	Type        RecommendationType `json:"type"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Urgency     Urgency            `json:"urgency"`
}

// Recommend lists the services a snapshot calls for, in rule order: trouble
// codes (in snapshot order), cooling, electrical, low tires, high tires.
func Recommend(snap *models.DiagnosticSnapshot) []Recommendation {
	recs := make([]Recommendation, 0)

	for _, dtc := range snap.DTCs {
		if !dtc.Counts() {
			continue
		}
		rule, ok := lookupDTC(dtc.Code)
		if !ok {
			continue
		}
		urgency := dtc.Severity
		if urgency == "" {
			urgency = models.SeverityLow
		}
		desc := fmt.Sprintf("%s (%s)", rule.Description, dtc.Code)
		if dtc.Description != "" {
			desc = fmt.Sprintf("%s (%s: %s)", rule.Description, dtc.Code, dtc.Description)
		}
		recs = append(recs, Recommendation{Type: rule.Type, Title: rule.Title, Description: desc, Urgency: urgency})
	}

	if temp, ok := snap.EngineTemperature(); ok && temp > EngineTempLimit {
		urgency := models.SeverityHigh
		if temp > EngineTempCritical {
			urgency = models.SeverityCritical
		}
		recs = append(recs, Recommendation{
			Type:        TypeCoolingSystem,
			Title:       "Cooling system inspection",
			Description: fmt.Sprintf("Engine temperature %.0f°F exceeds %.0f°F", temp, EngineTempLimit),
			Urgency:     urgency,
		})
	}

	if volts, ok := snap.BatteryVoltage(); ok && volts < BatteryVoltageFloor {
		urgency := models.SeverityMedium
		if volts < BatteryVoltageCritical {
			urgency = models.SeverityHigh
		}
		recs = append(recs, Recommendation{
			Type:        TypeElectricalSystem,
			Title:       "Battery and charging system test",
			Description: fmt.Sprintf("Battery voltage %.1fV is below %.1fV", volts, BatteryVoltageFloor),
			Urgency:     urgency,
		})
	}

	low, high := 0, 0
	for _, tire := range snap.Tires.Positions() {
		if tire.Reading.Pressure == nil {
			continue
		}
		switch psi := *tire.Reading.Pressure; {
		case psi < TirePressureMin:
			low++
		case psi > TirePressureMax:
			high++
		}
	}
	if low > 0 {
		recs = append(recs, Recommendation{
			Type:        TypeTirePressure,
			Title:       "Inflate tires",
			Description: fmt.Sprintf("%d %s below %.0f psi", low, tireNoun(low), TirePressureMin),
			Urgency:     models.SeverityMedium,
		})
	}
	if high > 0 {
		recs = append(recs, Recommendation{
			Type:        TypeTirePressure,
			Title:       "Reduce tire pressure",
			Description: fmt.Sprintf("%d %s above %.0f psi", high, tireNoun(high), TirePressureMax),
			Urgency:     models.SeverityMedium,
		})
	}

	return recs
}

func tireNoun(n int) string {
	if n == 1 {
		return "tire"
	}
	return "tires"
}

// Report is the health view served for a vehicle's latest snapshot.
type Report struct {
	SnapshotID      primitive.ObjectID `json:"snapshotId"`
	VehicleID       primitive.ObjectID `json:"vehicleId"`
	Timestamp       time.Time          `json:"timestamp"`
	Mileage         int                `json:"mileage"`
	Score           int                `json:"score"`
	Deductions      []Deduction        `json:"deductions"`
	Recommendations []Recommendation   `json:"recommendations"`
}

// Analyze runs the scorer and the recommendation engine over one snapshot.
func Analyze(snap *models.DiagnosticSnapshot) Report {
	score := Evaluate(snap)
	return Report{
		SnapshotID:      snap.ID,
		VehicleID:       snap.VehicleID,
		Timestamp:       snap.Timestamp,
		Mileage:         snap.Mileage,
		Score:           score.Score,
		Deductions:      score.Deductions,
		Recommendations: Recommend(snap),
	}
}
