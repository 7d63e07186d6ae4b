package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds the TOML-driven tool configuration: the backend the schema is
// read from and the backend predicates and migrations are expressed against.
type Config struct {
	Source          EndpointConfig `toml:"source"`
	Target          EndpointConfig `toml:"target"`
	OnUnconvertible string         `toml:"on_unconvertible"` // skip|error
}

// EndpointConfig identifies one database endpoint.
type EndpointConfig struct {
	Backend string `toml:"backend"` // postgres, mysql or sqlite
	DSN     string `toml:"dsn"`
	Schema  string `toml:"schema"` // empty means the backend default
}

// loadConfig reads a TOML config file and returns a Config with defaults
// applied. Unknown keys are rejected so typos fail loudly.
func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Config{
		OnUnconvertible: "skip",
	}
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if unknown := md.Undecoded(); len(unknown) > 0 {
		keys := make([]string, len(unknown))
		for i, k := range unknown {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}

	if cfg.Source.Backend == "" {
		return nil, fmt.Errorf("source.backend is required (must be postgres, mysql or sqlite)")
	}
	if _, err := newBackend(cfg.Source.Backend); err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}

	if cfg.Target.Backend == "" {
		cfg.Target.Backend = cfg.Source.Backend
	}
	if _, err := newBackend(cfg.Target.Backend); err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}

	switch cfg.OnUnconvertible {
	case "skip", "error":
	default:
		return nil, fmt.Errorf("on_unconvertible must be one of: skip, error")
	}

	return &cfg, nil
}

// sourceBackend returns the configured source backend.
func (c *Config) sourceBackend() Backend {
	b, _ := newBackend(c.Source.Backend)
	return b
}

// targetBackend returns the configured target backend.
func (c *Config) targetBackend() Backend {
	b, _ := newBackend(c.Target.Backend)
	return b
}
