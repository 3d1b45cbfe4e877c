// Package config provides configuration management for the fabricshift CLI.
package config

// Defaults applied before any config file, env var, or flag.
const (
	DefaultVarcharLen  = 20
	DefaultOutput      = "auto"
	DefaultServerPort  = 8490
	DefaultHistoryPath = "fabricshift.db"
)

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	Port int `koanf:"port"`
}

// Config holds all CLI configuration options.
type Config struct {
	// VarcharLen is the width used when STR() becomes CAST(... AS VARCHAR(n)).
	VarcharLen   int           `koanf:"varchar_len"`
	HistoryPath  string        `koanf:"history_path"`
	History      bool          `koanf:"history"`
	Verbose      bool          `koanf:"verbose"`
	OutputFormat string        `koanf:"output"`
	Server       *ServerConfig `koanf:"server"`
}

// GetServerConfig returns the server config with defaults applied for any
// unset values.
func (c *Config) GetServerConfig() *ServerConfig {
	if c.Server == nil {
		return &ServerConfig{Port: DefaultServerPort}
	}
	srv := c.Server
	if srv.Port == 0 {
		srv.Port = DefaultServerPort
	}
	return srv
}
