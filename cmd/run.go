package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"betpool/api"
	"betpool/application"
	"betpool/config"
	"betpool/database"
	"betpool/domain/interfaces"
	"betpool/infrastructure"
	"betpool/infrastructure/auth"
	"betpool/infrastructure/observability"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// ConfigureLogging applies the configured level and switches to JSON output in production
func ConfigureLogging(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warnf("Unknown LOG_LEVEL %q, falling back to info", cfg.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.IsProduction() {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

// NewApp wires the application core on top of db. Passing a nil publisher
// disables event delivery.
func NewApp(db *database.DB, publisher interfaces.EventPublisher, metrics *observability.Metrics) *application.App {
	cfg := config.Get()
	if publisher == nil {
		publisher = infrastructure.NewNoopEventPublisher()
	}

	uowFactory := infrastructure.NewUnitOfWorkFactory(db, publisher)
	var recorder application.MetricsRecorder
	if metrics != nil {
		recorder = metrics
	}
	return application.NewApp(
		uowFactory,
		auth.NewBcryptHasher(bcrypt.DefaultCost),
		auth.NewJWTIssuer(cfg.JWTSecret, cfg.TokenTTL),
		recorder,
	)
}

// Run initializes and starts the HTTP service
func Run(ctx context.Context) error {
	cfg := config.Get()
	ConfigureLogging(cfg)
	log.Infof("Starting betpool in %s mode...", cfg.Environment)

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully")

	metrics, err := observability.NewMetrics(ctx, observability.ExportConfig{
		ServiceName:  "betpool",
		Environment:  cfg.Environment,
		ExporterType: cfg.OTelExporterType,
		OTLPEndpoint: cfg.OTelOTLPEndpoint,
		Interval:     cfg.OTelExportInterval,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	metrics.SetGlobal()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metrics.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("Failed to shut down metrics provider")
		}
	}()

	publisher, closePublisher, err := newEventPublisher(ctx, cfg, metrics)
	if err != nil {
		return err
	}
	defer closePublisher()

	app := NewApp(db, publisher, metrics)
	router := api.NewRouter(app, metrics.Handler(), db.Health)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infof("HTTP server listening on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown did not complete cleanly")
	}

	log.Info("Shutdown completed")
	return nil
}

// newEventPublisher connects to NATS when servers are configured
func newEventPublisher(ctx context.Context, cfg *config.Config, metrics *observability.Metrics) (interfaces.EventPublisher, func(), error) {
	if cfg.NATSServers == "" {
		log.Warn("NATS_SERVERS not set, domain events will not be published")
		return infrastructure.NewNoopEventPublisher(), func() {}, nil
	}

	log.Info("Connecting to NATS...")
	client := infrastructure.NewNATSClient(cfg.NATSServers)
	if err := client.Connect(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	mapper := infrastructure.NewEventSubjectMapper()
	if err := client.EnsureStream(infrastructure.EventStreamName, mapper.GetAllSubjects()); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to ensure event stream: %w", err)
	}

	closeFn := func() {
		if err := client.Close(); err != nil {
			log.WithError(err).Warn("Failed to close NATS connection")
		}
	}
	return infrastructure.NewNATSEventPublisher(client, mapper, metrics), closeFn, nil
}
