// Package health derives a vehicle health score and recommended services from
// a diagnostic snapshot. Everything here is a pure function of the snapshot.
package health

import (
	"fmt"
	"math"

	"github.com/ukydev/autocare/internal/models"
)

const (
	MaxScore = 100

	EngineTempLimit   = 230.0 // °F
	EngineTempFactor  = 0.5   // points per °F above the limit
	EngineTempMaxLoss = 25.0

	BatteryVoltageFloor   = 12.0 // V
	BatteryVoltageFactor  = 10.0 // points per volt below the floor
	BatteryVoltageMaxLoss = 20.0

	TirePressureMin  = 28.0 // psi
	TirePressureMax  = 38.0
	TirePressureLoss = 5.0
)

var severityPoints = map[models.Severity]float64{
	models.SeverityCritical: 30,
	models.SeverityHigh:     20,
	models.SeverityMedium:   10,
	models.SeverityLow:      5,
}

const defaultSeverityPoints = 5.0

type Deduction struct {
	Reason string  `json:"reason"`
	Points float64 `json:"points"`
}

type Score struct {
	Score      int         `json:"score"`
	Deductions []Deduction `json:"deductions"`
}

// Evaluate scores a snapshot. Deductions are listed in evaluation order:
// trouble codes, engine temperature, battery voltage, then tires.
func Evaluate(snap *models.DiagnosticSnapshot) Score {
	deductions := make([]Deduction, 0)

	for _, dtc := range snap.DTCs {
		if !dtc.Counts() {
			continue
		}
		points, ok := severityPoints[dtc.Severity]
		if !ok {
			points = defaultSeverityPoints
		}
		deductions = append(deductions, Deduction{Reason: "DTC " + dtc.Code, Points: points})
	}

	if temp, ok := snap.EngineTemperature(); ok && temp > EngineTempLimit {
		deductions = append(deductions, Deduction{
			Reason: "High engine temperature",
			Points: math.Min(EngineTempMaxLoss, (temp-EngineTempLimit)*EngineTempFactor),
		})
	}

	if volts, ok := snap.BatteryVoltage(); ok && volts < BatteryVoltageFloor {
		deductions = append(deductions, Deduction{
			Reason: "Low battery voltage",
			Points: math.Min(BatteryVoltageMaxLoss, (BatteryVoltageFloor-volts)*BatteryVoltageFactor),
		})
	}

	for _, tire := range snap.Tires.Positions() {
		if tire.Reading.Pressure == nil {
			continue
		}
		psi := *tire.Reading.Pressure
		if psi < TirePressureMin || psi > TirePressureMax {
			deductions = append(deductions, Deduction{
				Reason: fmt.Sprintf("Tire pressure out of range: %s", tire.Position),
				Points: TirePressureLoss,
			})
		}
	}

	total := 0.0
	for _, d := range deductions {
		total += d.Points
	}
	return Score{Score: clamp(MaxScore - total), Deductions: deductions}
}

func clamp(v float64) int {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > MaxScore {
		return MaxScore
	}
	return int(v)
}
