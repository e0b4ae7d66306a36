// Package config handles configuration for the client component,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the field client.
//
// Fields:
//   - ServerEndpointAddr: base URL of the inventory server.
//   - DatabaseDSN: path of the local SQLite replica file.
//   - RequestTimeout: per-request timeout for server calls.
//   - PingInterval: how often the connectivity watcher probes the server.
type Config struct {
	ServerEndpointAddr string
	DatabaseDSN        string
	RequestTimeout     time.Duration
	PingInterval       time.Duration
}

// LoadDefaults populates Config with sensible development defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://localhost:3000"
	c.DatabaseDSN = "inventory.db"
	c.RequestTimeout = 10 * time.Second
	c.PingInterval = 5 * time.Second
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
