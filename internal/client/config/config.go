package config

import "time"

// Config holds runtime settings for the PeriodVault CLI.
//
// Fields:
//   - ServerEndpointAddr: base URL of the backend HTTP API.
//   - CacheDSN: path of the local SQLite cache database.
//   - RequestTimeout: per-request timeout for calls to the backend.
type Config struct {
	ServerEndpointAddr string
	CacheDSN           string
	RequestTimeout     time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://127.0.0.1:8080"
	c.CacheDSN = "periodvault.db"
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
