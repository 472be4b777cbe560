package domain

import "time"

// Config represents the main engine configuration.
type Config struct {
	Gateway   GatewayConfig   `mapstructure:"gateway"`
	Backend   BackendConfig   `mapstructure:"backend"`
	Hospitals HospitalsConfig `mapstructure:"hospitals"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// GatewayConfig configures the local HTTP gateway the UI talks to.
type GatewayConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// BackendConfig configures the prediction backend client.
type BackendConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RetryCount    int           `mapstructure:"retry_count"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"`
	RateLimit     int           `mapstructure:"rate_limit"` // requests per second
	CacheMaxItems int           `mapstructure:"cache_max_items"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`
}

// HospitalsConfig configures hospital matching.
type HospitalsConfig struct {
	RadiusMeters     int    `mapstructure:"radius_meters"`
	OverpassEndpoint string `mapstructure:"overpass_endpoint"`
	// Fixed position used when the deployment has no live geolocation
	// source. Zero values mean "no static position configured".
	StaticLat float64 `mapstructure:"static_lat"`
	StaticLng float64 `mapstructure:"static_lng"`
}

// StorageConfig configures local persistence.
type StorageConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or text
}

// ConfigManager defines the interface for configuration management.
type ConfigManager interface {
	GetConfig() *Config
	GetGatewayConfig() *GatewayConfig
	GetBackendConfig() *BackendConfig
	Validate() error
}
