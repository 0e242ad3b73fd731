// Package config loads the golem CLI configuration.
//
// Values are layered, highest precedence first: command-line flags,
// GOLEM_ environment variables, the YAML config file, defaults.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"

	envPrefix = "GOLEM_"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all CLI configuration options.
type Config struct {
	Driver   string         `koanf:"driver"`
	Schema   string         `koanf:"schema"`
	Postgres PostgresConfig `koanf:"postgres"`
	Mongo    MongoConfig    `koanf:"mongo"`
	Log      LogConfig      `koanf:"log"`
}

type PostgresConfig struct {
	URL string `koanf:"url"`
}

type MongoConfig struct {
	URI      string `koanf:"uri"`
	Database string `koanf:"database"`
}

type LogConfig struct {
	Level string `koanf:"level"`
}

// Load loads configuration from the file at path (optional), the
// environment and flags. Only flags that were explicitly set override other
// sources; flag names map onto keys with "-" replaced by ".", so
// --postgres-url sets postgres.url and --log-level sets log.level.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Load defaults
	if err := k.Load(confmap.Provider(map[string]any{
		"driver":    DriverPostgres,
		"log.level": "info",
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Load the config file
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	// 3. Load environment variables
	// Transform: GOLEM_MONGO__DATABASE -> mongo.database
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Load flags
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "."), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the driver name and its connection settings.
func (c *Config) Validate() error {
	switch c.Driver {
	case DriverPostgres:
		if c.Postgres.URL == "" {
			return fmt.Errorf("%w: postgres.url is required", ErrInvalidConfig)
		}
	case DriverMongo:
		if c.Mongo.URI == "" {
			return fmt.Errorf("%w: mongo.uri is required", ErrInvalidConfig)
		}
		if c.Mongo.Database == "" {
			return fmt.Errorf("%w: mongo.database is required", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown driver %q (expected %s or %s)", ErrInvalidConfig, c.Driver, DriverPostgres, DriverMongo)
	}
	if c.Schema == "" {
		return fmt.Errorf("%w: schema is required", ErrInvalidConfig)
	}
	return nil
}

// LogLevel parses the configured log level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: log.level: %v", ErrInvalidConfig, err)
	}
	return level, nil
}
