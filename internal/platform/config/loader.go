package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Loader reads the YAML configuration file and applies environment
// overrides for values that should not live on disk.
type Loader struct {
	path      string
	useDotEnv bool
}

// NewLoader creates a loader for the given path. An empty path makes the
// loader search the default locations.
func NewLoader(path string) *Loader {
	return &Loader{
		path:      path,
		useDotEnv: true,
	}
}

// WithDotEnv toggles loading variables from a .env file before reading config.
func (l *Loader) WithDotEnv(enabled bool) *Loader {
	l.useDotEnv = enabled
	return l
}

// Result captures the loaded configuration and its origin path.
type Result struct {
	Config *Config
	Path   string
}

var searchPaths = []string{"config.yaml", "config.yml", "data/config.yaml"}

// Load reads configuration, falling back to defaults when no file exists.
func (l *Loader) Load() (*Result, error) {
	if l.useDotEnv {
		// Missing .env is fine, the process environment still applies.
		_ = godotenv.Load()
	}

	cfg := DefaultConfig()
	path := l.path

	if path == "" {
		for _, candidate := range searchPaths {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := l.validate(cfg); err != nil {
		return nil, err
	}

	return &Result{
		Config: cfg,
		Path:   path,
	}, nil
}

func (l *Loader) validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}
	if cfg.Scanner.Enabled && (cfg.Scanner.Port <= 0 || cfg.Scanner.Port > 65535) {
		return fmt.Errorf("invalid scanner port: %d", cfg.Scanner.Port)
	}
	if cfg.Backend.BaseURL == "" {
		return fmt.Errorf("backend base_url required")
	}
	if cfg.Scan.Cooldown <= 0 {
		return fmt.Errorf("scan cooldown must be positive")
	}
	return nil
}

// applyEnvOverrides lets deployment environments point at a different
// backend or redis instance without editing the config file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TIXGATE_BACKEND_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("TIXGATE_REDIS_ADDR"); v != "" {
		cfg.Session.Store.Redis.Addr = v
	}
	if v := os.Getenv("TIXGATE_REDIS_PASSWORD"); v != "" {
		cfg.Session.Store.Redis.Password = v
	}
	if v := os.Getenv("TIXGATE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}
