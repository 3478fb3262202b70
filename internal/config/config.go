// Package config loads server configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds everything the server needs at startup.
type Config struct {
	AppName string `envconfig:"APP_NAME" default:"Smarthome Auth"`
	Env     string `envconfig:"ENV" default:"DEV"`
	Port    int    `envconfig:"PORT" default:"8080"`
	BaseURL string `envconfig:"BASE_URL" default:"http://localhost:8080"`

	DatabaseDSN string `envconfig:"DATABASE_DSN" default:"file:auth.db"`

	BrokerURL     string `envconfig:"BROKER_URL" default:"tcp://localhost:1883"`
	RelayClientID string `envconfig:"RELAY_CLIENT_ID" default:"smarthome-auth"`

	CodeExpiry  time.Duration `envconfig:"CODE_EXPIRY" default:"600s"`
	TokenExpiry time.Duration `envconfig:"TOKEN_EXPIRY" default:"24h"`

	// DefaultRedirectURI is assigned to newly registered clients; for a
	// voice skill this is the platform's account-linking callback.
	DefaultRedirectURI string `envconfig:"DEFAULT_REDIRECT_URI" default:"https://pitangui.amazon.com/api/skill/link/M1YD9F7ZN5PH0C"`
	DefaultScope       string `envconfig:"DEFAULT_SCOPE" default:"email"`
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, fmt.Errorf("config.Load: %w", err)
	}
	return c, nil
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
