package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ukydev/autocare/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidID     = errors.New("invalid id")
	ErrNilCollection = errors.New("mongo collection is nil")
)

// Collection names.
const (
	SnapshotsCollection = "snapshots"
	VehiclesCollection  = "vehicles"
	MaintenanceRecords  = "maintenance"
	UsersCollection     = "users"
)

// ConnectMongo connects to MongoDB and verifies the connection with a ping.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the indexes the read paths rely on.
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		SnapshotsCollection: {
			{Keys: bson.D{{Key: "vehicle_id", Value: 1}, {Key: "timestamp", Value: -1}}},
		},
		VehiclesCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
		},
		MaintenanceRecords: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "reminder.enabled", Value: 1}}},
			{Keys: bson.D{{Key: "vehicle_id", Value: 1}, {Key: "date", Value: -1}}},
		},
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}
	for name, idx := range indexes {
		if _, err := database.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// MongoCollection wraps a MongoDB collection. One instance serves one of the
// snapshot, vehicle or maintenance collections.
type MongoCollection struct {
	Collection *mongo.Collection
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w %q: %v", ErrInvalidID, id, err)
	}
	return oid, nil
}

func (c *MongoCollection) check() error {
	if c.Collection == nil {
		return ErrNilCollection
	}
	return nil
}

// findAll runs a query and decodes every result into out.
func (c *MongoCollection) findAll(ctx context.Context, filter interface{}, out interface{}, opts ...*options.FindOptions) error {
	cursor, err := c.Collection.Find(ctx, filter, opts...)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, out)
}

func (c *MongoCollection) findOne(ctx context.Context, filter interface{}, out interface{}, what string, opts ...*options.FindOneOptions) error {
	err := c.Collection.FindOne(ctx, filter, opts...).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s %w", what, ErrNotFound)
	}
	return err
}

// InsertSnapshot inserts a diagnostic snapshot and sets its ID.
func (c *MongoCollection) InsertSnapshot(ctx context.Context, snapshot *models.DiagnosticSnapshot) error {
	if err := c.check(); err != nil {
		return err
	}
	if snapshot.ID.IsZero() {
		snapshot.ID = primitive.NewObjectID()
	}
	_, err := c.Collection.InsertOne(ctx, snapshot)
	return err
}

// LatestSnapshot returns the most recent snapshot of a vehicle.
func (c *MongoCollection) LatestSnapshot(ctx context.Context, vehicleID string) (*models.DiagnosticSnapshot, error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	oid, err := objectID(vehicleID)
	if err != nil {
		return nil, err
	}
	var snapshot models.DiagnosticSnapshot
	opts := options.FindOne().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if err := c.findOne(ctx, bson.M{"vehicle_id": oid}, &snapshot, "snapshot", opts); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// FindSnapshots returns a vehicle's snapshots in [from, to], newest first.
// Zero times leave that side of the range open; a zero limit means no limit.
func (c *MongoCollection) FindSnapshots(ctx context.Context, vehicleID string, from, to time.Time, limit int64) ([]models.DiagnosticSnapshot, error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	oid, err := objectID(vehicleID)
	if err != nil {
		return nil, err
	}
	filter := bson.M{"vehicle_id": oid}
	if rng := timeRange(from, to); len(rng) > 0 {
		filter["timestamp"] = rng
	}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	snapshots := make([]models.DiagnosticSnapshot, 0)
	if err := c.findAll(ctx, filter, &snapshots, opts); err != nil {
		return nil, err
	}
	return snapshots, nil
}

func timeRange(from, to time.Time) bson.M {
	rng := bson.M{}
	if !from.IsZero() {
		rng["$gte"] = from
	}
	if !to.IsZero() {
		rng["$lte"] = to
	}
	return rng
}

// InsertVehicle inserts a vehicle record into the collection.
func (c *MongoCollection) InsertVehicle(ctx context.Context, vehicle *models.Vehicle) error {
	if err := c.check(); err != nil {
		return err
	}
	now := time.Now()
	if vehicle.ID.IsZero() {
		vehicle.ID = primitive.NewObjectID()
	}
	vehicle.CreatedAt = now
	vehicle.UpdatedAt = now
	_, err := c.Collection.InsertOne(ctx, vehicle)
	return err
}

// FindVehiclesByUser returns every vehicle owned by a user.
func (c *MongoCollection) FindVehiclesByUser(ctx context.Context, userID string) ([]models.Vehicle, error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	oid, err := objectID(userID)
	if err != nil {
		return nil, err
	}
	vehicles := make([]models.Vehicle, 0)
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	if err := c.findAll(ctx, bson.M{"user_id": oid}, &vehicles, opts); err != nil {
		return nil, err
	}
	return vehicles, nil
}

// FindVehicleByID finds a vehicle by its ID.
func (c *MongoCollection) FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var vehicle models.Vehicle
	if err := c.findOne(ctx, bson.M{"_id": oid}, &vehicle, "vehicle"); err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// AppendMileage pushes a ledger entry and makes it the current mileage.
func (c *MongoCollection) AppendMileage(ctx context.Context, id string, entry models.MileageEntry) error {
	if err := c.check(); err != nil {
		return err
	}
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	update := bson.M{
		"$set": bson.M{
			"mileage.current":      entry.Value,
			"mileage.last_updated": entry.Date,
			"updated_at":           time.Now(),
		},
		"$push": bson.M{"mileage.history": entry},
	}
	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("vehicle %w", ErrNotFound)
	}
	return nil
}

// DeleteVehicle deletes a vehicle by its ID.
func (c *MongoCollection) DeleteVehicle(ctx context.Context, id string) error {
	if err := c.check(); err != nil {
		return err
	}
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("vehicle %w", ErrNotFound)
	}
	return nil
}

// InsertMaintenance inserts a maintenance record into the collection.
func (c *MongoCollection) InsertMaintenance(ctx context.Context, record *models.MaintenanceRecord) error {
	if err := c.check(); err != nil {
		return err
	}
	now := time.Now()
	if record.ID.IsZero() {
		record.ID = primitive.NewObjectID()
	}
	record.CreatedAt = now
	record.UpdatedAt = now
	_, err := c.Collection.InsertOne(ctx, record)
	return err
}

// FindMaintenanceByID finds a maintenance record by its ID.
func (c *MongoCollection) FindMaintenanceByID(ctx context.Context, id string) (*models.MaintenanceRecord, error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var record models.MaintenanceRecord
	if err := c.findOne(ctx, bson.M{"_id": oid}, &record, "maintenance record"); err != nil {
		return nil, err
	}
	return &record, nil
}

// FindMaintenanceByVehicle returns a vehicle's service history, newest first.
func (c *MongoCollection) FindMaintenanceByVehicle(ctx context.Context, vehicleID string) ([]models.MaintenanceRecord, error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	oid, err := objectID(vehicleID)
	if err != nil {
		return nil, err
	}
	records := make([]models.MaintenanceRecord, 0)
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	if err := c.findAll(ctx, bson.M{"vehicle_id": oid}, &records, opts); err != nil {
		return nil, err
	}
	return records, nil
}

// FindWithReminders returns a user's records whose reminder is enabled.
func (c *MongoCollection) FindWithReminders(ctx context.Context, userID string) ([]models.MaintenanceRecord, error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	oid, err := objectID(userID)
	if err != nil {
		return nil, err
	}
	records := make([]models.MaintenanceRecord, 0)
	filter := bson.M{"user_id": oid, "reminder.enabled": true}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	if err := c.findAll(ctx, filter, &records, opts); err != nil {
		return nil, err
	}
	return records, nil
}

// UpdateReminder replaces the reminder sub-document of a record.
func (c *MongoCollection) UpdateReminder(ctx context.Context, id string, reminder models.Reminder) error {
	return c.updateFields(ctx, id, bson.M{"reminder": reminder})
}

// UpdateStatus sets a record's status and, when given, its reminder.
func (c *MongoCollection) UpdateStatus(ctx context.Context, id string, status models.MaintenanceStatus, reminder *models.Reminder) error {
	fields := bson.M{"status": status}
	if reminder != nil {
		fields["reminder"] = reminder
	}
	return c.updateFields(ctx, id, fields)
}

func (c *MongoCollection) updateFields(ctx context.Context, id string, fields bson.M) error {
	if err := c.check(); err != nil {
		return err
	}
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	fields["updated_at"] = time.Now()
	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("maintenance record %w", ErrNotFound)
	}
	return nil
}
