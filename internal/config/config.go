package config

import (
	"os"
	"strconv"
	"strings"
)

// Config is the process configuration, read from the environment.
type Config struct {
	Service       ServiceConfig
	Observability ObservabilityConfig
	Validation    ValidationConfig
	Kafka         KafkaConfig
}

type ServiceConfig struct {
	Name     string
	HTTPPort string
	GRPCPort string
}

type ObservabilityConfig struct {
	LogLevel    string
	LogFormat   string
	MetricsPort string
}

type ValidationConfig struct {
	SchemaDir    string
	CatalogFile  string
	Engine       string
	Draft        string
	AssertFormat bool
	RegexpEngine string
	Locale       string
}

type KafkaConfig struct {
	Enabled      bool
	Brokers      []string
	TopicValid   string
	TopicInvalid string
	Principal    string
}

func Load() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:     envOrDefault("SERVICE_NAME", "jsonschema-validation-service"),
			HTTPPort: envOrDefault("HTTP_PORT", "8080"),
			GRPCPort: envOrDefault("GRPC_PORT", "50051"),
		},
		Observability: ObservabilityConfig{
			LogLevel:    envOrDefault("LOG_LEVEL", "info"),
			LogFormat:   envOrDefault("LOG_FORMAT", "json"),
			MetricsPort: envOrDefault("METRICS_PORT", "9090"),
		},
		Validation: ValidationConfig{
			SchemaDir:    envOrDefault("SCHEMA_DIR", "./schemas"),
			CatalogFile:  os.Getenv("SCHEMA_CATALOG"),
			Engine:       envOrDefault("SCHEMA_ENGINE", "santhosh"),
			Draft:        os.Getenv("SCHEMA_DRAFT"),
			AssertFormat: envBool("SCHEMA_ASSERT_FORMAT", false),
			RegexpEngine: envOrDefault("SCHEMA_REGEXP_ENGINE", "go"),
			Locale:       envOrDefault("SCHEMA_LOCALE", "en"),
		},
		Kafka: KafkaConfig{
			Enabled:      envBool("KAFKA_ENABLED", false),
			Brokers:      envList("KAFKA_BROKERS"),
			TopicValid:   envOrDefault("KAFKA_TOPIC_VALID", "schema.validation.valid"),
			TopicInvalid: envOrDefault("KAFKA_TOPIC_INVALID", "schema.validation.invalid"),
			Principal:    envOrDefault("KAFKA_PRINCIPAL", "svc-jsonschema-validation"),
		},
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
