package health

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/autocare/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRecommend_Nominal(t *testing.T) {
	recs := Recommend(nominalSnapshot())
	assert.Empty(t, recs)
	assert.NotNil(t, recs)
}

func TestRecommend_DTCBuckets(t *testing.T) {
	snap := nominalSnapshot()
	snap.DTCs = []models.DiagnosticTroubleCode{
		{Code: "P0420", Severity: models.SeverityMedium, Status: models.DTCStatusActive},
		{Code: "P0087", Severity: models.SeverityHigh, Status: models.DTCStatusActive},
		{Code: "P0201", Severity: models.SeverityHigh, Status: models.DTCStatusActive},
		{Code: "p0171", Severity: models.SeverityLow, Status: models.DTCStatusPermanent},
		{Code: "P0300", Severity: models.SeverityCritical, Status: models.DTCStatusActive},
		{Code: "P0301", Severity: models.SeverityCritical, Status: models.DTCStatusPending},
		{Code: "B1000", Severity: models.SeverityHigh, Status: models.DTCStatusActive},
		{Code: "P0500", Severity: models.SeverityHigh, Status: models.DTCStatusActive},
	}

	recs := Recommend(snap)
	require.Len(t, recs, 4)
	assert.Equal(t, TypeAuxiliaryEmissions, recs[0].Type)
	assert.Equal(t, models.SeverityMedium, recs[0].Urgency)
	assert.Equal(t, TypeFuelSystem, recs[1].Type)
	assert.Equal(t, models.SeverityHigh, recs[1].Urgency)
	assert.Equal(t, TypeAirFuelRatio, recs[2].Type)
	assert.Equal(t, models.SeverityLow, recs[2].Urgency)
	assert.Equal(t, TypeIgnitionSystem, recs[3].Type)
	assert.Equal(t, models.SeverityCritical, recs[3].Urgency)
	assert.Contains(t, recs[3].Description, "P0300")
}

func TestRecommend_DTCWithoutSeverity(t *testing.T) {
	snap := nominalSnapshot()
	snap.DTCs = []models.DiagnosticTroubleCode{{Code: "P0010", Status: models.DTCStatusActive, Description: "Camshaft actuator"}}

	recs := Recommend(snap)
	require.Len(t, recs, 1)
	assert.Equal(t, models.SeverityLow, recs[0].Urgency)
	assert.Contains(t, recs[0].Description, "Camshaft actuator")
}

func TestRecommend_Cooling(t *testing.T) {
	tests := []struct {
		temp    float64
		want    int
		urgency models.Severity
	}{
		{230, 0, ""},
		{231, 1, models.SeverityHigh},
		{245, 1, models.SeverityHigh},
		{246, 1, models.SeverityCritical},
	}
	for _, tt := range tests {
		snap := nominalSnapshot()
		snap.Engine.Temperature = models.Float(tt.temp)
		recs := Recommend(snap)
		require.Len(t, recs, tt.want, "temp %v", tt.temp)
		if tt.want == 1 {
			assert.Equal(t, TypeCoolingSystem, recs[0].Type)
			assert.Equal(t, tt.urgency, recs[0].Urgency, "temp %v", tt.temp)
		}
	}
}

func TestRecommend_Electrical(t *testing.T) {
	tests := []struct {
		volts   float64
		want    int
		urgency models.Severity
	}{
		{12.0, 0, ""},
		{11.9, 1, models.SeverityMedium},
		{11.0, 1, models.SeverityMedium},
		{10.9, 1, models.SeverityHigh},
	}
	for _, tt := range tests {
		snap := nominalSnapshot()
		snap.Battery.Voltage = models.Float(tt.volts)
		recs := Recommend(snap)
		require.Len(t, recs, tt.want, "volts %v", tt.volts)
		if tt.want == 1 {
			assert.Equal(t, TypeElectricalSystem, recs[0].Type)
			assert.Equal(t, tt.urgency, recs[0].Urgency, "volts %v", tt.volts)
		}
	}
}

func TestRecommend_TiresLowAndHighStaySeparate(t *testing.T) {
	snap := nominalSnapshot()
	snap.Tires.FrontLeft.Pressure = models.Float(24)
	snap.Tires.FrontRight.Pressure = models.Float(26)
	snap.Tires.RearLeft.Pressure = models.Float(41)

	recs := Recommend(snap)
	require.Len(t, recs, 2)
	assert.Equal(t, TypeTirePressure, recs[0].Type)
	assert.Equal(t, "Inflate tires", recs[0].Title)
	assert.Equal(t, "2 tires below 28 psi", recs[0].Description)
	assert.Equal(t, models.SeverityMedium, recs[0].Urgency)
	assert.Equal(t, TypeTirePressure, recs[1].Type)
	assert.Equal(t, "Reduce tire pressure", recs[1].Title)
	assert.Equal(t, "1 tire above 38 psi", recs[1].Description)
}

func TestRecommend_RuleOrder(t *testing.T) {
	snap := nominalSnapshot()
	snap.Engine.Temperature = models.Float(250)
	snap.Battery.Voltage = models.Float(11.5)
	snap.Tires.RearRight.Pressure = models.Float(20)
	snap.DTCs = []models.DiagnosticTroubleCode{{Code: "P0300", Severity: models.SeverityHigh, Status: models.DTCStatusActive}}

	recs := Recommend(snap)
	types := make([]RecommendationType, 0, len(recs))
	for _, r := range recs {
		types = append(types, r.Type)
	}
	assert.Equal(t, []RecommendationType{TypeIgnitionSystem, TypeCoolingSystem, TypeElectricalSystem, TypeTirePressure}, types)
}

func TestLookupDTC(t *testing.T) {
	rule, ok := lookupDTC(" p0455 ")
	require.True(t, ok)
	assert.Equal(t, TypeAuxiliaryEmissions, rule.Type)

	for _, code := range []string{"P0200", "P0700", "C0035", "U0100", ""} {
		_, ok := lookupDTC(code)
		assert.False(t, ok, code)
	}
}

func TestAnalyze(t *testing.T) {
	snap := nominalSnapshot()
	snap.ID = primitive.NewObjectID()
	snap.VehicleID = primitive.NewObjectID()
	snap.Timestamp = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	snap.Battery.Voltage = models.Float(11.5)

	report := Analyze(snap)
	assert.Equal(t, snap.ID, report.SnapshotID)
	assert.Equal(t, snap.VehicleID, report.VehicleID)
	assert.Equal(t, 42000, report.Mileage)
	assert.Equal(t, 95, report.Score)
	assert.Len(t, report.Deductions, 1)
	assert.Len(t, report.Recommendations, 1)
}
