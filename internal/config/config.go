// Package config loads the server configuration from the environment.
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the widget server configuration. Everything comes from
// environment variables; there is no config file.
type Config struct {
	Addr            string `envconfig:"ADDR" default:":8080"`
	UpstreamBaseURL string `envconfig:"UPSTREAM_BASE_URL" default:"http://localhost:9000"`
	LogLevel        string `envconfig:"LOG_LEVEL" default:"INFO"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	return &cfg, nil
}
