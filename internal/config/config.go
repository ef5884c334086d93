package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	DatabasePath      string        `mapstructure:"database_path" yaml:"database_path"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`

	JWTSecret   string        `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	JWTIssuer   string        `mapstructure:"jwt_issuer" yaml:"jwt_issuer"`
	JWTAudience string        `mapstructure:"jwt_audience" yaml:"jwt_audience"`
	TokenTTL    time.Duration `mapstructure:"token_ttl" yaml:"token_ttl"`

	// AllowedOrigins lists host patterns accepted during the WebSocket
	// handshake. Empty means same-origin only.
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`

	MaxMessageBytes int64 `mapstructure:"max_message_bytes" yaml:"max_message_bytes"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		DatabasePath:      "quickchat.db",
		LogLevel:          "info",
		JWTSecret:         "change-me",
		JWTIssuer:         "quickchat",
		JWTAudience:       "quickchat",
		TokenTTL:          24 * time.Hour,
		AllowedOrigins:    []string{"localhost:*"},
		MaxMessageBytes:   1 << 16,
	}
}
