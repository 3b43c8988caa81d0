package config

import "time"

// ServerConfig holds HTTP API server configuration
type ServerConfig struct {
	// Listen host (empty binds all interfaces)
	Host string `mapstructure:"host"`

	// Listen port
	Port int `mapstructure:"port" validate:"required,min=1,max=65535"`

	// Request read/write timeouts
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// Grace period for in-flight requests on shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}
