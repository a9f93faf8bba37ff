package config

import (
	"time"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Scanner ScannerConfig `yaml:"scanner"`
	Backend BackendConfig `yaml:"backend"`
	Session SessionConfig `yaml:"session"`
	Scan    ScanConfig    `yaml:"scan"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig describes the operator console HTTP endpoint.
type ServerConfig struct {
	IP   string `yaml:"ip"`
	Port int    `yaml:"port"`
}

// ScannerConfig describes the websocket feed the scanner devices dial.
type ScannerConfig struct {
	Enabled          bool          `yaml:"enabled"`
	IP               string        `yaml:"ip"`
	Port             int           `yaml:"port"`
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
}

// BackendConfig points at the ticketing platform API.
type BackendConfig struct {
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

// SessionConfig selects and tunes the credential store driver.
type SessionConfig struct {
	Store StoreConfig `yaml:"store"`
}

type StoreConfig struct {
	Driver string             `yaml:"driver"`
	TTL    time.Duration      `yaml:"ttl"`
	SQLite SQLiteStoreConfig  `yaml:"sqlite,omitempty"`
	Redis  RedisStoreConfig   `yaml:"redis,omitempty"`
	Memory *MemoryStoreConfig `yaml:"memory,omitempty"`
}

type SQLiteStoreConfig struct {
	DSN string `yaml:"dsn,omitempty"`
}

type RedisStoreConfig struct {
	Addr     string `yaml:"addr"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
	Prefix   string `yaml:"prefix,omitempty"`
}

type MemoryStoreConfig struct {
	GCInterval time.Duration `yaml:"gc_interval"`
}

// ScanConfig tunes the scan session state machine.
type ScanConfig struct {
	Cooldown      time.Duration `yaml:"cooldown"`
	VerifyTimeout time.Duration `yaml:"verify_timeout"`
	EventBuffer   int           `yaml:"event_buffer"`
}

type LogConfig struct {
	Level string `yaml:"log_level"`
	Dir   string `yaml:"log_dir"`
	File  string `yaml:"log_file"`
}
