package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/autocare/internal/auth"
	"github.com/ukydev/autocare/internal/cache"
	"github.com/ukydev/autocare/internal/config"
	"github.com/ukydev/autocare/internal/db"
	"github.com/ukydev/autocare/internal/handlers"
	"github.com/ukydev/autocare/internal/ingest"
	"github.com/ukydev/autocare/internal/logging"
	"github.com/ukydev/autocare/internal/middleware"
	"github.com/ukydev/autocare/internal/service"
)

const (
	authRateLimit  = 20
	authRateWindow = time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := db.ConnectMongo(ctx, cfg.Mongo.URI)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.WithError(err).Warn("MongoDB disconnect failed")
		}
	}()
	log.WithField("database", cfg.Mongo.Database).Info("Connected to MongoDB")

	database := client.Database(cfg.Mongo.Database)
	if err := db.EnsureIndexes(ctx, database); err != nil {
		log.WithError(err).Fatal("Failed to create indexes")
	}

	snapshots := &db.MongoCollection{Collection: database.Collection(db.SnapshotsCollection)}
	vehicles := &db.MongoCollection{Collection: database.Collection(db.VehiclesCollection)}
	records := &db.MongoCollection{Collection: database.Collection(db.MaintenanceRecords)}
	users := &db.MongoUserCollection{Collection: database.Collection(db.UsersCollection)}

	var healthCache service.HealthCache
	if cfg.Redis.Enabled {
		c, err := cache.NewHealthCache(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.TTL,
		})
		if err != nil {
			log.WithError(err).Warn("Redis unavailable, health reports will not be cached")
		} else {
			defer c.Close()
			healthCache = c
			log.WithField("addr", cfg.Redis.Addr).Info("Health report cache enabled")
		}
	}

	authService, err := auth.NewService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		log.WithError(err).Fatal("Failed to create auth service")
	}

	telemetryService := service.NewTelemetryService(snapshots, vehicles, healthCache)
	vehicleService := service.NewVehicleService(vehicles)
	maintenanceService := service.NewMaintenanceService(records, vehicles)

	if cfg.MQTT.Enabled {
		subscriber := ingest.NewSubscriber(ingest.Config{
			Broker:         cfg.MQTT.Broker,
			ClientID:       cfg.MQTT.ClientID,
			Username:       cfg.MQTT.Username,
			Password:       cfg.MQTT.Password,
			Topic:          cfg.MQTT.Topic,
			QoS:            byte(cfg.MQTT.QoS),
			HandlerTimeout: cfg.MQTT.HandlerTimeout,
		}, telemetryService)
		if err := subscriber.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start MQTT subscriber")
		}
		defer subscriber.Stop()
	}

	gin.SetMode(cfg.Server.GinMode)
	router := handlers.NewRouter(handlers.Deps{
		Auth:        authService,
		Users:       users,
		Vehicles:    vehicleService,
		Telemetry:   telemetryService,
		Maintenance: maintenanceService,
		AuthLimiter: middleware.NewRateLimiter(authRateLimit, authRateWindow),
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()
	log.WithField("addr", server.Addr).Info("HTTP server listening")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}
}
