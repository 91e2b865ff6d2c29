package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Quotes   Quotes   `mapstructure:"quotes"`
	Tax      Tax      `mapstructure:"tax"`
	Journal  Journal  `mapstructure:"journal"`
	Logger   Logger   `mapstructure:"logger"`
	Server   Server   `mapstructure:"server"`
	Database Database `mapstructure:"database"`
}

// Quotes holds the configuration for the market price client.
type Quotes struct {
	BaseURL        string  `mapstructure:"base_url"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
	TimeoutSec     int     `mapstructure:"timeout_sec"`
	CacheTTLSec    int     `mapstructure:"cache_ttl_sec"`
}

// Tax holds the capital-gains settings.
type Tax struct {
	Rate float64 `mapstructure:"rate"`
}

// Journal holds the configuration for the ledger engine.
type Journal struct {
	SnapshotIntervalSec int     `mapstructure:"snapshot_interval_sec"`
	InitialBalance      float64 `mapstructure:"initial_balance"` // seeds the setting on first run
}

// Server holds the configuration for the reporting API server.
type Server struct {
	Port int `mapstructure:"port"`
}

// Database holds the configuration for the database.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")    // or yaml, json

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("quotes.base_url", "https://query1.finance.yahoo.com")
	viper.SetDefault("quotes.rate_limit", 5) // requests per second
	viper.SetDefault("quotes.rate_limit_burst", 2)
	viper.SetDefault("quotes.timeout_sec", 10)
	viper.SetDefault("quotes.cache_ttl_sec", 300)
	viper.SetDefault("tax.rate", 0.26)
	viper.SetDefault("journal.snapshot_interval_sec", 3600)
	viper.SetDefault("journal.initial_balance", 0)
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("database.dsn", "journal.db")
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
