// Package config loads process configuration from environment variables
// (spec.md §6: "Process configuration (environment): DB_URL (required),
// DB_SCHEMA (default npg_porch)"). The remaining fields are ambient additions
// this core needs to run as a process (bind address, log level, claim
// batch bounds, list result cap) and are not given literal names by spec.md;
// they follow the
// same unprefixed env-var convention.
//
// This mirrors the teacher's 12-factor env-var approach (internal/config)
// trimmed to this core's footprint: no file/HCL provider, since there is no
// multi-backend scheduler/TLS/object-store configuration to support here.
package config

import (
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config is the process configuration for cmd/porchd.
type Config struct {
	DBURL             string `koanf:"db_url"`
	DBSchema          string `koanf:"db_schema"`
	Bind              string `koanf:"bind"`
	LogLevel          string `koanf:"log_level"`
	ClaimDefaultLimit int    `koanf:"claim_default_limit"`
	ClaimMaxLimit     int    `koanf:"claim_max_limit"`
	MaxResultsLimit   int    `koanf:"max_results_limit"`
}

// Default returns the configuration's baseline values, overwritten by
// whatever environment variables are present.
func Default() *Config {
	return &Config{
		DBSchema:          "npg_porch",
		Bind:              "0.0.0.0:8000",
		LogLevel:          "info",
		ClaimDefaultLimit: 1,
		ClaimMaxLimit:     1000,
		MaxResultsLimit:   1000,
	}
}

// Load reads the environment into a Config built on top of Default.
func Load() (*Config, error) {
	cfg := Default()

	k := koanf.New(".")

	if err := k.Load(env.Provider("", "__", strings.ToLower), nil); err != nil {
		return nil, err
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
