// Package ingest receives diagnostic snapshots published by vehicles over MQTT.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/autocare/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const connectTimeout = 10 * time.Second

var (
	ErrBadTopic   = errors.New("topic does not end in user and vehicle ids")
	ErrBadPayload = errors.New("invalid snapshot payload")
)

// Ingester stores one snapshot.
type Ingester interface {
	Ingest(ctx context.Context, snap *models.DiagnosticSnapshot) error
}

type Config struct {
	Broker         string
	ClientID       string
	Username       string
	Password       string
	Topic          string
	QoS            byte
	HandlerTimeout time.Duration
}

// Subscriber feeds snapshots from an MQTT topic filter into an Ingester.
// The last two topic levels name the owner and the vehicle, e.g.
// autocare/snapshots/<userID>/<vehicleID>. The owner is taken from the topic,
// so the broker must restrict each client's publish ACL to its own user level.
type Subscriber struct {
	client   mqtt.Client
	cfg      Config
	ingester Ingester
}

func NewSubscriber(cfg Config, ingester Ingester) *Subscriber {
	s := &Subscriber{cfg: cfg, ingester: ingester}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetOnConnectHandler(s.onConnect).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.WithError(err).Warn("MQTT connection lost")
		})
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	s.client = mqtt.NewClient(opts)
	return s
}

// Start connects to the broker. Subscriptions are (re)established on every connect.
func (s *Subscriber) Start() error {
	token := s.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("mqtt connect to %s: timed out", s.cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect to %s: %w", s.cfg.Broker, err)
	}
	return nil
}

func (s *Subscriber) Stop() {
	s.client.Disconnect(250)
	log.Info("MQTT subscriber stopped")
}

func (s *Subscriber) onConnect(client mqtt.Client) {
	token := client.Subscribe(s.cfg.Topic, s.cfg.QoS, s.HandleMessage)
	token.Wait()
	if err := token.Error(); err != nil {
		log.WithError(err).WithField("topic", s.cfg.Topic).Error("MQTT subscribe failed")
		return
	}
	log.WithFields(log.Fields{"broker": s.cfg.Broker, "topic": s.cfg.Topic}).Info("MQTT subscribed")
}

// HandleMessage is the paho callback. It runs on the client's goroutine and
// bounds each ingest by the configured timeout.
func (s *Subscriber) HandleMessage(_ mqtt.Client, msg mqtt.Message) {
	timeout := s.cfg.HandlerTimeout
	if timeout <= 0 {
		timeout = connectTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.handle(ctx, msg.Topic(), msg.Payload()); err != nil {
		log.WithError(err).WithField("topic", msg.Topic()).Warn("Dropped MQTT snapshot")
	}
}

func (s *Subscriber) handle(ctx context.Context, topic string, payload []byte) error {
	userID, vehicleID, err := IDsFromTopic(topic)
	if err != nil {
		return err
	}
	snap, err := DecodeSnapshot(payload)
	if err != nil {
		return err
	}
	if !snap.UserID.IsZero() && snap.UserID != userID {
		return fmt.Errorf("%w: userId %s does not match topic", ErrBadPayload, snap.UserID.Hex())
	}
	if !snap.VehicleID.IsZero() && snap.VehicleID != vehicleID {
		return fmt.Errorf("%w: vehicleId %s does not match topic", ErrBadPayload, snap.VehicleID.Hex())
	}
	snap.UserID = userID
	snap.VehicleID = vehicleID
	return s.ingester.Ingest(ctx, snap)
}

// IDsFromTopic extracts the owner and vehicle ids from the last two topic levels.
func IDsFromTopic(topic string) (userID, vehicleID primitive.ObjectID, err error) {
	levels := strings.Split(topic, "/")
	if len(levels) < 2 {
		return primitive.NilObjectID, primitive.NilObjectID, fmt.Errorf("%w: %q", ErrBadTopic, topic)
	}
	userID, userErr := primitive.ObjectIDFromHex(levels[len(levels)-2])
	vehicleID, vehicleErr := primitive.ObjectIDFromHex(levels[len(levels)-1])
	if userErr != nil || vehicleErr != nil {
		return primitive.NilObjectID, primitive.NilObjectID, fmt.Errorf("%w: %q", ErrBadTopic, topic)
	}
	return userID, vehicleID, nil
}

// DecodeSnapshot parses a published snapshot. Storage assigns the id.
func DecodeSnapshot(payload []byte) (*models.DiagnosticSnapshot, error) {
	var snap models.DiagnosticSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	snap.ID = primitive.NilObjectID
	return &snap, nil
}

// SnapshotTopic is the topic a vehicle publishes on under prefix.
func SnapshotTopic(prefix string, userID, vehicleID primitive.ObjectID) string {
	return strings.TrimSuffix(prefix, "/") + "/" + userID.Hex() + "/" + vehicleID.Hex()
}
