package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/couchcryptid/fleet-nox-analytics/internal/domain"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8080"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat       string        `envconfig:"LOG_FORMAT" default:"json"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	// MaxUploadBytes bounds a single multipart upload request.
	MaxUploadBytes int64 `envconfig:"MAX_UPLOAD_BYTES" default:"67108864"`

	// DefaultNOxThreshold is used when a ranking request carries no
	// threshold parameter.
	DefaultNOxThreshold float64 `envconfig:"DEFAULT_NOX_THRESHOLD" default:"50"`

	// SchemaConfigPath optionally points at a YAML file overriding the
	// normalizer's column aliases.
	SchemaConfigPath string `envconfig:"SCHEMA_CONFIG" default:""`

	SessionTTL     time.Duration `envconfig:"SESSION_TTL" default:"1h"`
	PlaybackWindow time.Duration `envconfig:"PLAYBACK_WINDOW" default:"5m"`
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("HTTP_ADDR is required")
	}
	if cfg.ShutdownTimeout <= 0 {
		return nil, errors.New("SHUTDOWN_TIMEOUT must be positive")
	}
	if cfg.MaxUploadBytes <= 0 {
		return nil, errors.New("MAX_UPLOAD_BYTES must be positive")
	}
	if cfg.PlaybackWindow <= 0 {
		return nil, errors.New("PLAYBACK_WINDOW must be positive")
	}

	return &cfg, nil
}

// schemaOverrides is the YAML shape of a schema configuration file. Empty
// fields keep their defaults.
type schemaOverrides struct {
	VehicleIDColumns []string `yaml:"vehicle_id_columns"`
	TimestampColumn  string   `yaml:"timestamp_column"`
	NOxColumn        string   `yaml:"nox_column"`
	O2Column         string   `yaml:"o2_column"`
	LatitudeColumn   string   `yaml:"latitude_column"`
	LongitudeColumn  string   `yaml:"longitude_column"`
	PositionColumn   string   `yaml:"position_column"`
}

// LoadSchema returns the normalizer schema, overlaying the YAML file at
// path over the defaults. An empty path yields the default schema.
func LoadSchema(path string) (domain.Schema, error) {
	schema := domain.DefaultSchema()
	if path == "" {
		return schema, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Schema{}, fmt.Errorf("read schema config: %w", err)
	}

	var ov schemaOverrides
	if err := yaml.Unmarshal(data, &ov); err != nil {
		return domain.Schema{}, fmt.Errorf("parse schema config: %w", err)
	}

	if len(ov.VehicleIDColumns) > 0 {
		schema.VehicleIDColumns = ov.VehicleIDColumns
	}
	if ov.TimestampColumn != "" {
		schema.TimestampColumn = ov.TimestampColumn
	}
	if ov.NOxColumn != "" {
		schema.NOxColumn = ov.NOxColumn
	}
	if ov.O2Column != "" {
		schema.O2Column = ov.O2Column
	}
	if ov.LatitudeColumn != "" {
		schema.LatitudeColumn = ov.LatitudeColumn
	}
	if ov.LongitudeColumn != "" {
		schema.LongitudeColumn = ov.LongitudeColumn
	}
	if ov.PositionColumn != "" {
		schema.PositionColumn = ov.PositionColumn
	}
	return schema, nil
}
