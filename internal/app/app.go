package app

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"jsonschema-validation-service/internal/config"
	"jsonschema-validation-service/internal/events"
	"jsonschema-validation-service/internal/observability/logging"
	"jsonschema-validation-service/internal/observability/metrics"
	"jsonschema-validation-service/internal/schema"
)

// Application holds process-wide state for the service.
type Application struct {
	StartupTime time.Time
	Logger      zerolog.Logger
	Cfg         *config.Config
	Validator   *schema.Validator
	Catalog     *schema.Catalog
	Publisher   *events.Publisher
}

// New constructs a new Application from the provided configuration.
func New(cfg *config.Config) (*Application, error) {
	a := &Application{
		Cfg: cfg,
	}
	a.setupLogger()

	appLogger := a.Logger.With().
		Str("method", "New").
		Logger()

	v, err := schema.New(schema.Config{
		Engine:       cfg.Validation.Engine,
		Draft:        cfg.Validation.Draft,
		AssertFormat: cfg.Validation.AssertFormat,
		RegexpEngine: cfg.Validation.RegexpEngine,
		Locale:       cfg.Validation.Locale,
	})
	if err != nil {
		return nil, fmt.Errorf("configure validator: %w", err)
	}
	a.Validator = v

	a.Publisher = events.New(&events.Config{
		Enabled:      cfg.Kafka.Enabled,
		Brokers:      cfg.Kafka.Brokers,
		TopicValid:   cfg.Kafka.TopicValid,
		TopicInvalid: cfg.Kafka.TopicInvalid,
		Principal:    cfg.Kafka.Principal,
	})

	appLogger.Info().
		Str("engine", v.EngineName()).
		Msg("JSON schema validation service application created")
	return a, nil
}

// setupLogger configures zerolog for the service.
func (a *Application) setupLogger() {
	logging.Init(logging.Config{
		Level:      a.Cfg.Observability.LogLevel,
		Format:     a.Cfg.Observability.LogFormat,
		TimeFormat: time.RFC3339,
	})

	a.Logger = logging.Logger().With().
		Str("service", a.Cfg.Service.Name).
		Str("component", "application").
		Logger()

	a.Logger.Info().
		Str("logLevel", zerolog.GlobalLevel().String()).
		Str("logFormat", a.Cfg.Observability.LogFormat).
		Msg("Logger setup completed")
}

// Start loads the schema catalog. It must succeed before serving traffic.
func (a *Application) Start() error {
	startLogger := a.Logger.With().
		Str("method", "Start").
		Logger()

	a.StartupTime = time.Now().UTC()

	var (
		c   *schema.Catalog
		err error
	)
	if a.Cfg.Validation.CatalogFile != "" {
		c, err = schema.LoadCatalog(a.Cfg.Validation.CatalogFile)
	} else {
		c, err = schema.ScanCatalog(a.Cfg.Validation.SchemaDir)
	}
	if err != nil {
		startLogger.Error().Err(err).Msg("Failed to load schema catalog")
		return err
	}
	a.Catalog = c
	metrics.DefaultMetrics.SetCatalogSize(c.Len())

	startLogger.Info().
		Time("startupTime", a.StartupTime).
		Strs("schemas", c.Names()).
		Msg("JSON schema validation service starting")

	return nil
}

// Shutdown performs a best-effort cleanup before process exit.
func (a *Application) Shutdown() {
	shutdownLogger := a.Logger.With().
		Str("method", "Shutdown").
		Logger()

	if a.Publisher != nil {
		if err := a.Publisher.Close(); err != nil {
			shutdownLogger.Error().Err(err).Msg("Failed to close event publisher")
		}
	}
	shutdownLogger.Info().Msg("JSON schema validation service shutting down")
}
