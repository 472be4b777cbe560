package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/symptoguide-engine/internal/domain"
)

// Manager implements the ConfigManager interface using Viper.
type Manager struct {
	config *domain.Config
}

// NewManager creates a new configuration manager.
func NewManager() (*Manager, error) {
	m := &Manager{}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from various sources.
func (m *Manager) loadConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/symptoguide-engine/")

	viper.SetEnvPrefix("SYMPTOGUIDE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	m.setDefaults()

	// Config file is optional; defaults and env vars cover everything.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := viper.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.config = config
	return nil
}

// setDefaults sets default configuration values.
func (m *Manager) setDefaults() {
	// Gateway defaults
	viper.SetDefault("gateway.host", "127.0.0.1")
	viper.SetDefault("gateway.port", 8090)
	viper.SetDefault("gateway.read_timeout", "30s")
	viper.SetDefault("gateway.write_timeout", "30s")
	viper.SetDefault("gateway.idle_timeout", "120s")

	// Prediction backend defaults
	viper.SetDefault("backend.base_url", "http://localhost:5000")
	viper.SetDefault("backend.timeout", "30s")
	viper.SetDefault("backend.retry_count", 3)
	viper.SetDefault("backend.retry_delay", "1s")
	viper.SetDefault("backend.rate_limit", 10)
	viper.SetDefault("backend.cache_max_items", 1000)
	viper.SetDefault("backend.cache_ttl", "24h")

	// Hospital matching defaults
	viper.SetDefault("hospitals.radius_meters", 20000)
	viper.SetDefault("hospitals.overpass_endpoint", "https://overpass-api.de/api/interpreter")
	viper.SetDefault("hospitals.static_lat", 0.0)
	viper.SetDefault("hospitals.static_lng", 0.0)

	// Storage defaults
	home, _ := os.UserHomeDir()
	viper.SetDefault("storage.data_dir", filepath.Join(home, ".symptoguide"))

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
}

// GetConfig returns the complete configuration.
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetGatewayConfig returns gateway configuration.
func (m *Manager) GetGatewayConfig() *domain.GatewayConfig {
	return &m.config.Gateway
}

// GetBackendConfig returns prediction backend configuration.
func (m *Manager) GetBackendConfig() *domain.BackendConfig {
	return &m.config.Backend
}

// PrefsDBPath returns the path to the preferences SQLite database.
func (m *Manager) PrefsDBPath() string {
	return filepath.Join(m.config.Storage.DataDir, "prefs.db")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func (m *Manager) EnsureDataDir() error {
	return os.MkdirAll(m.config.Storage.DataDir, 0755)
}

// Validate validates the configuration.
func (m *Manager) Validate() error {
	config := m.config

	if config.Gateway.Port <= 0 || config.Gateway.Port > 65535 {
		return fmt.Errorf("invalid gateway port: %d", config.Gateway.Port)
	}

	if config.Backend.BaseURL == "" {
		return fmt.Errorf("backend base URL is required")
	}
	if config.Backend.RetryCount < 0 {
		return fmt.Errorf("invalid backend retry count: %d", config.Backend.RetryCount)
	}
	if config.Backend.RateLimit <= 0 {
		return fmt.Errorf("invalid backend rate limit: %d", config.Backend.RateLimit)
	}

	if config.Hospitals.RadiusMeters <= 0 {
		return fmt.Errorf("invalid hospital search radius: %d", config.Hospitals.RadiusMeters)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	return nil
}
