package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config represents the application configuration structure
type Config struct {
	Environment string `default:"dev"`

	APIListenAddress  string   `default:":8080" split_words:"true"`
	APIAllowedOrigins []string `default:"*" split_words:"true"`

	MetricsListenAddress string `default:":9090" split_words:"true"`

	SessionLifetime        time.Duration `default:"12h" split_words:"true"`
	SessionCleanupInterval time.Duration `default:"1m" split_words:"true"`

	CredentialsFile     string `split_words:"true"`
	CredentialsHashCost int    `default:"10" split_words:"true"`

	LoginAttemptLimit  int           `default:"10" split_words:"true"`
	LoginAttemptWindow time.Duration `default:"1m" split_words:"true"`

	LiveKitURL              string        `envconfig:"LIVEKIT_URL" required:"true"`
	LiveKitAPIKey           string        `envconfig:"LIVEKIT_API_KEY" required:"true"`
	LiveKitAPISecret        string        `envconfig:"LIVEKIT_API_SECRET" required:"true"`
	LiveKitTokenTTL         time.Duration `envconfig:"LIVEKIT_TOKEN_TTL" default:"6h"`
	LiveKitRoomEmptyTimeout time.Duration `envconfig:"LIVEKIT_ROOM_EMPTY_TIMEOUT" default:"5m"`

	PlatformTimeout time.Duration `default:"10s" split_words:"true"`
}

// LoadFromEnv loads a new configuration structure using environment variables and an optional .env file
func LoadFromEnv() (*Config, error) {
	// Load a .env file if it exists
	_ = godotenv.Overload()

	// Load a new configuration structure using environment variables
	config := new(Config)
	if err := envconfig.Process("sb", config); err != nil {
		return nil, err
	}
	return config, nil
}

// IsEnvProduction returns whether the application runs in production mode
func (config *Config) IsEnvProduction() bool {
	return strings.EqualFold(config.Environment, "prod") || strings.EqualFold(config.Environment, "production")
}

// IsMetricsEnabled returns whether the Prometheus metrics endpoint should be served
func (config *Config) IsMetricsEnabled() bool {
	return config.MetricsListenAddress != ""
}

// String returns a representation of the configuration that is safe to log
func (config Config) String() string {
	if config.LiveKitAPISecret != "" {
		config.LiveKitAPISecret = "<redacted>"
	}
	type plain Config
	return fmt.Sprintf("%+v", plain(config))
}
