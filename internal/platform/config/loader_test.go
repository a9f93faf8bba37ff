package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoader_Load(t *testing.T) {
	tempDir := t.TempDir()
	configFile := filepath.Join(tempDir, "config.yaml")

	configContent := `
server:
  ip: "127.0.0.1"
  port: 8085
backend:
  base_url: "https://staging.tixclick.site/api"
  timeout: 5s
scan:
  cooldown: 2s
log:
  log_level: "debug"
  log_dir: ""
`

	err := os.WriteFile(configFile, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	loader := NewLoader(configFile).WithDotEnv(false)
	result, err := loader.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	cfg := result.Config

	if cfg.Server.IP != "127.0.0.1" {
		t.Errorf("expected server IP 127.0.0.1, got %s", cfg.Server.IP)
	}
	if cfg.Server.Port != 8085 {
		t.Errorf("expected server port 8085, got %d", cfg.Server.Port)
	}
	if cfg.Backend.BaseURL != "https://staging.tixclick.site/api" {
		t.Errorf("unexpected backend url: %s", cfg.Backend.BaseURL)
	}
	if cfg.Scan.Cooldown != 2*time.Second {
		t.Errorf("expected 2s cooldown, got %s", cfg.Scan.Cooldown)
	}
	// Untouched sections keep their defaults.
	if cfg.Scan.VerifyTimeout != 10*time.Second {
		t.Errorf("expected default verify timeout, got %s", cfg.Scan.VerifyTimeout)
	}
}

func TestLoader_LoadDefaults(t *testing.T) {
	tempDir := t.TempDir()
	oldWd, _ := os.Getwd()
	if err := os.Chdir(tempDir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	defer os.Chdir(oldWd)

	loader := NewLoader("").WithDotEnv(false)
	result, err := loader.Load()
	if err != nil {
		t.Fatalf("failed to load defaults: %v", err)
	}
	if result.Path != "" {
		t.Errorf("expected no config path, got %s", result.Path)
	}
	if result.Config.Backend.BaseURL != "https://tixclick.site/api" {
		t.Errorf("unexpected default backend url: %s", result.Config.Backend.BaseURL)
	}
	if result.Config.Scan.Cooldown != 3*time.Second {
		t.Errorf("expected default 3s cooldown, got %s", result.Config.Scan.Cooldown)
	}
}

func TestLoader_EnvOverride(t *testing.T) {
	t.Setenv("TIXGATE_BACKEND_URL", "https://override.example/api")

	tempDir := t.TempDir()
	oldWd, _ := os.Getwd()
	if err := os.Chdir(tempDir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	defer os.Chdir(oldWd)

	loader := NewLoader("").WithDotEnv(false)
	result, err := loader.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if result.Config.Backend.BaseURL != "https://override.example/api" {
		t.Errorf("env override not applied: %s", result.Config.Backend.BaseURL)
	}
}

func TestLoader_Validate(t *testing.T) {
	loader := NewLoader("")

	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name:    "valid config",
			config:  DefaultConfig(),
			wantErr: false,
		},
		{
			name: "invalid server port",
			config: func() *Config {
				cfg := DefaultConfig()
				cfg.Server.Port = 70000
				return cfg
			}(),
			wantErr: true,
		},
		{
			name: "invalid scanner port",
			config: func() *Config {
				cfg := DefaultConfig()
				cfg.Scanner.Port = 0
				return cfg
			}(),
			wantErr: true,
		},
		{
			name: "missing backend url",
			config: func() *Config {
				cfg := DefaultConfig()
				cfg.Backend.BaseURL = ""
				return cfg
			}(),
			wantErr: true,
		},
		{
			name: "non-positive cooldown",
			config: func() *Config {
				cfg := DefaultConfig()
				cfg.Scan.Cooldown = 0
				return cfg
			}(),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := loader.validate(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
