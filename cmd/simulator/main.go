package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/autocare/internal/ingest"
	"github.com/ukydev/autocare/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Cities for starting positions
var cities = []models.Location{
	{Lat: 51.5074, Lon: -0.1278},   // London
	{Lat: 40.7128, Lon: -74.0060},  // New York
	{Lat: 40.4168, Lon: -3.7038},   // Madrid
	{Lat: 48.8566, Lon: 2.3522},    // Paris
	{Lat: 52.5200, Lon: 13.4050},   // Berlin
	{Lat: 34.0522, Lon: -118.2437}, // Los Angeles
	{Lat: 43.6532, Lon: -79.3832},  // Toronto
	{Lat: -37.8136, Lon: 144.9631}, // Melbourne
}

// Trouble codes the simulator can raise.
var troubleCodes = []models.DiagnosticTroubleCode{
	{Code: "P0087", Description: "Fuel rail pressure too low", Severity: models.SeverityCritical},
	{Code: "P0171", Description: "System too lean, bank 1", Severity: models.SeverityMedium},
	{Code: "P0301", Description: "Cylinder 1 misfire detected", Severity: models.SeverityHigh},
	{Code: "P0420", Description: "Catalyst efficiency below threshold", Severity: models.SeverityMedium},
	{Code: "P0562", Description: "System voltage low", Severity: models.SeverityLow},
}

const (
	dtcRaiseChance = 0.02
	dtcClearChance = 0.05
)

func jitterLocation(base models.Location, meters float64, rng *rand.Rand) models.Location {
	latMetersPerDeg := 111320.0
	lonMetersPerDeg := 111320.0 * math.Cos(base.Lat*math.Pi/180)
	dLat := (rng.Float64()*2 - 1) * (meters / latMetersPerDeg)
	dLon := (rng.Float64()*2 - 1) * (meters / lonMetersPerDeg)
	return models.Location{Lat: base.Lat + dLat, Lon: base.Lon + dLon}
}

// VehicleState is the simulated condition of one vehicle between ticks.
type VehicleState struct {
	VehicleID      primitive.ObjectID
	UserID         primitive.ObjectID
	Position       models.Location
	Odometer       float64 // miles
	SpeedMph       float64
	EngineTemp     float64 // °F
	BatteryVoltage float64
	Tires          [4]float64 // psi, front left to rear right
	DTCs           []models.DiagnosticTroubleCode
	Trip           models.TripSummary
}

func newVehicleState(vehicleID, userID primitive.ObjectID, odometer float64, rng *rand.Rand) *VehicleState {
	s := &VehicleState{
		VehicleID:      vehicleID,
		UserID:         userID,
		Position:       jitterLocation(cities[rng.Intn(len(cities))], 500, rng),
		Odometer:       odometer,
		SpeedMph:       25 + rng.Float64()*30,
		EngineTemp:     195 + rng.Float64()*15,
		BatteryVoltage: 12.4 + rng.Float64()*1.6,
	}
	for i := range s.Tires {
		s.Tires[i] = 30 + rng.Float64()*6
	}
	s.Trip = models.TripSummary{ID: uuid.NewString(), StartTime: time.Now()}
	return s
}

// step advances the vehicle by one tick of driving.
func (s *VehicleState) step(interval time.Duration, rng *rand.Rand) {
	s.SpeedMph = clamp(s.SpeedMph+(rng.Float64()*2-1)*3, 10, 75)
	miles := s.SpeedMph * interval.Hours()
	s.Odometer += miles
	s.Position = jitterLocation(s.Position, miles*1609.34, rng)

	s.EngineTemp = clamp(s.EngineTemp+(rng.Float64()*2-1)*4, 180, 260)
	s.BatteryVoltage = clamp(s.BatteryVoltage+(rng.Float64()*2-1)*0.1, 11.0, 14.6)
	for i := range s.Tires {
		// slow leak with occasional top-up
		s.Tires[i] -= rng.Float64() * 0.05
		if s.Tires[i] < 24 {
			s.Tires[i] = 35
		}
	}

	if rng.Float64() < dtcRaiseChance {
		dtc := troubleCodes[rng.Intn(len(troubleCodes))]
		dtc.Status = models.DTCStatusActive
		if rng.Intn(3) == 0 {
			dtc.Status = models.DTCStatusPending
		}
		s.DTCs = append(s.DTCs, dtc)
	}
	for i := range s.DTCs {
		if s.DTCs[i].Status != models.DTCStatusCleared && rng.Float64() < dtcClearChance {
			s.DTCs[i].Status = models.DTCStatusCleared
		}
	}

	s.Trip.Distance += miles
	s.Trip.Duration += interval.Seconds()
	s.Trip.MaxSpeed = math.Max(s.Trip.MaxSpeed, s.SpeedMph)
	if s.Trip.Duration > 0 {
		s.Trip.AverageSpeed = s.Trip.Distance / (s.Trip.Duration / 3600)
	}
}

// snapshot captures the current state as a diagnostic snapshot.
func (s *VehicleState) snapshot(now time.Time) *models.DiagnosticSnapshot {
	position := s.Position
	trip := s.Trip
	trip.EndTime = now
	return &models.DiagnosticSnapshot{
		VehicleID: s.VehicleID,
		UserID:    s.UserID,
		Timestamp: now,
		Mileage:   int(s.Odometer),
		Location:  &position,
		Engine:    &models.EngineReading{RPM: 800 + s.SpeedMph*35, Temperature: models.Float(round1(s.EngineTemp))},
		Battery:   &models.BatteryReading{Voltage: models.Float(round1(s.BatteryVoltage))},
		Tires: &models.TireSet{
			FrontLeft:  &models.TireReading{Pressure: models.Float(round1(s.Tires[0]))},
			FrontRight: &models.TireReading{Pressure: models.Float(round1(s.Tires[1]))},
			RearLeft:   &models.TireReading{Pressure: models.Float(round1(s.Tires[2]))},
			RearRight:  &models.TireReading{Pressure: models.Float(round1(s.Tires[3]))},
		},
		DTCs: append([]models.DiagnosticTroubleCode(nil), s.DTCs...),
		Trip: &trip,
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// --- API client ---

type apiClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func newAPIClient(baseURL, token string) *apiClient {
	return &apiClient{baseURL: baseURL, token: token, http: &http.Client{Timeout: 10 * time.Second}}
}

func (c *apiClient) post(path string, body interface{}, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("POST %s failed with status: %d", path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// login authenticates and keeps the token for later requests.
func (c *apiClient) login(email, password string) (primitive.ObjectID, error) {
	var resp models.LoginResponse
	if err := c.post("/auth/login", models.LoginRequest{Email: email, Password: password}, &resp); err != nil {
		return primitive.NilObjectID, fmt.Errorf("login: %w", err)
	}
	c.token = resp.Token
	return resp.User.ID, nil
}

func (c *apiClient) createVehicle(rng *rand.Rand) (*models.Vehicle, error) {
	makes := []string{"Ford", "Toyota", "Honda", "Subaru", "Mazda"}
	modelNames := []string{"Focus", "Corolla", "Civic", "Outback", "CX-5"}
	i := rng.Intn(len(makes))
	req := map[string]interface{}{
		"make":    makes[i],
		"model":   modelNames[i],
		"year":    2015 + rng.Intn(10),
		"mileage": 5000 + rng.Intn(80000),
	}

	var resp struct {
		Data models.Vehicle `json:"data"`
	}
	if err := c.post("/vehicles", req, &resp); err != nil {
		return nil, fmt.Errorf("create vehicle: %w", err)
	}
	log.WithFields(log.Fields{
		"vehicle_id": resp.Data.ID.Hex(),
		"make":       resp.Data.Make,
		"model":      resp.Data.Model,
	}).Info("Created vehicle")
	return &resp.Data, nil
}

// --- Publishers ---

type publisher interface {
	Publish(snap *models.DiagnosticSnapshot) error
}

type httpPublisher struct {
	api *apiClient
}

func (p *httpPublisher) Publish(snap *models.DiagnosticSnapshot) error {
	return p.api.post("/vehicles/"+snap.VehicleID.Hex()+"/snapshots", snap, nil)
}

type mqttPublisher struct {
	client mqtt.Client
	prefix string
	qos    byte
}

func newMQTTPublisher(broker, prefix string, qos byte) (*mqttPublisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID("autocare-sim-" + uuid.NewString()[:8]).
		SetAutoReconnect(true)
	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqtt connect to %s: timed out", broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", broker, err)
	}
	return &mqttPublisher{client: client, prefix: prefix, qos: qos}, nil
}

func (p *mqttPublisher) Publish(snap *models.DiagnosticSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	token := p.client.Publish(ingest.SnapshotTopic(p.prefix, snap.UserID, snap.VehicleID), p.qos, false, data)
	token.Wait()
	return token.Error()
}

func simulateVehicle(pub publisher, s *VehicleState, interval time.Duration, rng *rand.Rand) {
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for range tick.C {
		s.step(interval, rng)
		snap := s.snapshot(time.Now())
		if err := pub.Publish(snap); err != nil {
			log.WithError(err).WithField("vehicle_id", s.VehicleID.Hex()).Error("Failed to publish snapshot")
			continue
		}
		log.WithFields(log.Fields{
			"vehicle_id": s.VehicleID.Hex(),
			"mileage":    snap.Mileage,
			"dtcs":       len(snap.DTCs),
		}).Debug("Published snapshot")
	}
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			return n
		}
	}
	return def
}

func main() {
	apiURL := os.Getenv("API_BASE_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080/api"
	}
	fleetSize := envInt("FLEET_SIZE", 3)
	interval := time.Duration(envInt("SIM_TICK_SECONDS", 2)) * time.Second
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	api := newAPIClient(apiURL, os.Getenv("SIM_AUTH_TOKEN"))
	userID, err := primitive.ObjectIDFromHex(os.Getenv("SIM_USER_ID"))
	if email := os.Getenv("SIM_EMAIL"); email != "" {
		userID, err = api.login(email, os.Getenv("SIM_PASSWORD"))
	}
	if err != nil {
		log.WithError(err).Fatal("Set SIM_EMAIL and SIM_PASSWORD, or SIM_AUTH_TOKEN and SIM_USER_ID")
	}

	var pub publisher = &httpPublisher{api: api}
	if broker := os.Getenv("SIM_MQTT_BROKER"); broker != "" {
		prefix := os.Getenv("SIM_MQTT_PREFIX")
		if prefix == "" {
			prefix = "autocare/snapshots"
		}
		mp, err := newMQTTPublisher(broker, prefix, 1)
		if err != nil {
			log.WithError(err).Fatal("Failed to connect publisher")
		}
		defer mp.client.Disconnect(250)
		pub = mp
	}

	log.WithFields(log.Fields{
		"fleet_size": fleetSize,
		"api_url":    apiURL,
		"interval":   interval,
	}).Info("Starting diagnostics simulation")

	states := make([]*VehicleState, 0, fleetSize)
	for i := 0; i < fleetSize; i++ {
		vehicle, err := api.createVehicle(rng)
		if err != nil {
			log.WithError(err).Error("Failed to create vehicle")
			continue
		}
		states = append(states, newVehicleState(vehicle.ID, userID, float64(vehicle.Mileage.Current), rng))
	}
	if len(states) == 0 {
		log.Error("No vehicles created. Ensure credentials are valid and the API is reachable. Exiting.")
		return
	}

	for _, s := range states {
		// rand.Rand is not safe for concurrent use
		go simulateVehicle(pub, s, interval, rand.New(rand.NewSource(rng.Int63())))
	}

	log.WithField("vehicles", len(states)).Info("Snapshot simulation started")
	select {}
}
