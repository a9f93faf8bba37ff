package config

import "time"

// DefaultConfig returns the configuration used when no config file is found.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			IP:   "0.0.0.0",
			Port: 8080,
		},
		Scanner: ScannerConfig{
			Enabled:          true,
			IP:               "0.0.0.0",
			Port:             8090,
			HandshakeTimeout: 10 * time.Second,
		},
		Backend: BackendConfig{
			BaseURL:   "https://tixclick.site/api",
			Timeout:   10 * time.Second,
			UserAgent: "tixgate/1.0",
		},
		Session: SessionConfig{
			Store: StoreConfig{
				Driver: "sqlite",
				TTL:    24 * time.Hour,
				SQLite: SQLiteStoreConfig{
					DSN: "data/tixgate.db",
				},
			},
		},
		Scan: ScanConfig{
			Cooldown:      3 * time.Second,
			VerifyTimeout: 10 * time.Second,
			EventBuffer:   16,
		},
		Log: LogConfig{
			Level: "info",
			Dir:   "data/logs",
			File:  "tixgate.log",
		},
	}
}
