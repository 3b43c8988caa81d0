package config

import "time"

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "postgres"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "dispatch"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "dispatch"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 25
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 5
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// Server defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}

	// Geocode defaults
	if cfg.Geocode.BaseURL == "" {
		cfg.Geocode.BaseURL = "https://nominatim.openstreetmap.org"
	}
	if cfg.Geocode.UserAgent == "" {
		cfg.Geocode.UserAgent = "dispatch-go/1.0"
	}
	if cfg.Geocode.Timeout == 0 {
		cfg.Geocode.Timeout = 10 * time.Second
	}
	if cfg.Geocode.RateLimit.Requests == 0 {
		cfg.Geocode.RateLimit.Requests = 1
	}
	if cfg.Geocode.RateLimit.Burst == 0 {
		cfg.Geocode.RateLimit.Burst = 1
	}
	if cfg.Geocode.Retry.MaxAttempts == 0 {
		cfg.Geocode.Retry.MaxAttempts = 3
	}
	if cfg.Geocode.Retry.BackoffBase == 0 {
		cfg.Geocode.Retry.BackoffBase = 1 * time.Second
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}
