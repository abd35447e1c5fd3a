package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Storage backends
const (
	BackendBadger   = "badger"
	BackendDynamoDB = "dynamodb"
	BackendMemory   = "memory"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port               string
	CORSAllowedOrigins []string
	MaxUploadBytes     int64

	// Logging configuration
	LogLevel  string
	LogFormat string

	// Storage configuration
	StoreBackend string
	BadgerPath   string

	// AWS configuration
	AWSRegion string

	// DynamoDB configuration
	DynamoDBApplicationsTable string
	DynamoDBServersTable      string

	// Event delivery configuration
	NATSURL           string
	NATSSubjectPrefix string
	EventQueueSize    int
	EventWorkers      int
}

// Overrides replace environment values before validation, typically from
// command-line flags. Empty fields are ignored.
type Overrides struct {
	Port         string
	LogLevel     string
	LogFormat    string
	StoreBackend string
}

func (o Overrides) apply(c *Config) {
	if o.Port != "" {
		c.Port = o.Port
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	if o.LogFormat != "" {
		c.LogFormat = strings.ToLower(o.LogFormat)
	}
	if o.StoreBackend != "" {
		c.StoreBackend = strings.ToLower(o.StoreBackend)
	}
}

// Load reads configuration from the .env file (if present) and the OS
// environment, then applies overrides. OS environment variables take
// precedence over .env values.
func Load(overrides Overrides) (*Config, error) {
	// Load .env file from the working directory (silently ignore if not found)
	_ = godotenv.Load(filepath.Join(".", ".env"))

	cfg := &Config{
		Port:               getEnvOrDefault("PORT", "3001"),
		CORSAllowedOrigins: splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:8000,http://127.0.0.1:8000")),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", "INFO"),
		LogFormat: strings.ToLower(getEnvOrDefault("LOG_FORMAT", "json")),

		StoreBackend: strings.ToLower(getEnvOrDefault("STORE_BACKEND", BackendBadger)),
		BadgerPath:   getEnvOrDefault("BADGER_PATH", filepath.Join(".", "data", "shutdown-manager")),

		AWSRegion: getEnvOrDefault("AWS_REGION", "us-east-1"),

		DynamoDBApplicationsTable: getEnvOrDefault("DYNAMODB_APPLICATIONS_TABLE", "ShutdownApplications"),
		DynamoDBServersTable:      getEnvOrDefault("DYNAMODB_SERVERS_TABLE", "ShutdownServers"),

		NATSURL:           os.Getenv("NATS_URL"),
		NATSSubjectPrefix: getEnvOrDefault("NATS_SUBJECT_PREFIX", "shutdown"),
	}

	var err error
	if cfg.MaxUploadBytes, err = getInt64OrDefault("MAX_UPLOAD_BYTES", 10<<20); err != nil {
		return nil, err
	}
	if cfg.EventQueueSize, err = getIntOrDefault("EVENT_QUEUE_SIZE", 100); err != nil {
		return nil, err
	}
	if cfg.EventWorkers, err = getIntOrDefault("EVENT_WORKERS", 2); err != nil {
		return nil, err
	}

	overrides.apply(cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks that all configuration values are usable
func (c *Config) validate() error {
	switch c.StoreBackend {
	case BackendBadger, BackendDynamoDB, BackendMemory:
	default:
		return fmt.Errorf("STORE_BACKEND must be one of badger, dynamodb, memory (got '%s')", c.StoreBackend)
	}

	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or text (got '%s')", c.LogFormat)
	}

	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("PORT must be a number between 1 and 65535 (got '%s')", c.Port)
	}

	if c.StoreBackend == BackendDynamoDB {
		var missing []string
		if c.DynamoDBApplicationsTable == "" {
			missing = append(missing, "DYNAMODB_APPLICATIONS_TABLE")
		}
		if c.DynamoDBServersTable == "" {
			missing = append(missing, "DYNAMODB_SERVERS_TABLE")
		}
		if len(missing) > 0 {
			return fmt.Errorf("missing required configuration values: %v", missing)
		}
	}

	if c.MaxUploadBytes < 1 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive (got %d)", c.MaxUploadBytes)
	}
	if c.EventQueueSize < 1 {
		return fmt.Errorf("EVENT_QUEUE_SIZE must be positive (got %d)", c.EventQueueSize)
	}
	if c.EventWorkers < 1 {
		return fmt.Errorf("EVENT_WORKERS must be positive (got %d)", c.EventWorkers)
	}
	return nil
}

// getEnvOrDefault returns the value of an environment variable or a default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer (got '%s')", key, raw)
	}
	return v, nil
}

func getInt64OrDefault(key string, defaultValue int64) (int64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer (got '%s')", key, raw)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// UsesNATS reports whether mutation events go to a NATS server
func (c *Config) UsesNATS() bool {
	return c.NATSURL != ""
}
