// Package config defines the server configuration structure.
package config

import "time"

// ServerConfig is the root configuration for respcache-server.
type ServerConfig struct {
	Server  ServerSection  `koanf:"server"`
	Store   StoreSection   `koanf:"store"`
	Metrics MetricsSection `koanf:"metrics"`
	Log     LogSection     `koanf:"log"`
}

// ServerSection configures the protocol listener.
type ServerSection struct {
	// Addr is the TCP listen address.
	Addr string `koanf:"addr"`

	// ReadTimeout bounds reading a request once bytes start arriving.
	ReadTimeout time.Duration `koanf:"read_timeout"`

	// WriteTimeout bounds writing a reply.
	WriteTimeout time.Duration `koanf:"write_timeout"`

	// IdleTimeout bounds how long a connection may sit between
	// requests before it is closed.
	IdleTimeout time.Duration `koanf:"idle_timeout"`

	// RateLimit is the maximum requests per second per client IP.
	// 0 disables rate limiting.
	RateLimit int `koanf:"rate_limit"`
}

// StoreSection configures the in-memory store.
type StoreSection struct {
	// Shards is the shard count of the key map; must be a power of 2.
	Shards int `koanf:"shards"`
}

// MetricsSection configures the Prometheus endpoint.
type MetricsSection struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
