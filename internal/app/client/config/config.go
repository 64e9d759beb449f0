package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultServerAddress = "localhost:8080"
	defaultLogLevel      = "info"
	defaultEnv           = "local"
	defaultConfigDir     = ".contafeira"
	defaultSyncInterval  = 300 // seconds; the original app synced every 5 minutes
	defaultProbeInterval = 30
)

type Config struct {
	Env               string `mapstructure:"app_env"`
	ServerAddress     string `mapstructure:"server_address"`
	LogLevel          string `mapstructure:"log_level"`
	ConfigDir         string `mapstructure:"config_dir"`
	DataDir           string `mapstructure:"data_dir"`
	TokenPath         string `mapstructure:"token_path"`
	SyncInterval      int    `mapstructure:"sync_interval_seconds"`
	ProbeInterval     int    `mapstructure:"probe_interval_seconds"`
	EnableTLS         bool   `mapstructure:"enable_tls"`
	LowStockThreshold int64  `mapstructure:"low_stock_threshold"`
}

// MustLoad loads the client configuration from the environment, creating the
// config and data directories on first run.
func MustLoad() *Config {
	envPath := ".env"
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		envPath = "../.env"
	}
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			fmt.Printf("failed to load .env file: %v\n", err)
		}
	}

	viper.AutomaticEnv()

	viper.SetDefault("APP_ENV", defaultEnv)
	viper.SetDefault("SERVER_ADDRESS", defaultServerAddress)
	viper.SetDefault("LOG_LEVEL", defaultLogLevel)
	viper.SetDefault("CONFIG_DIR", defaultConfigDir)
	viper.SetDefault("SYNC_INTERVAL_SECONDS", defaultSyncInterval)
	viper.SetDefault("PROBE_INTERVAL_SECONDS", defaultProbeInterval)
	viper.SetDefault("ENABLE_TLS", false)
	viper.SetDefault("LOW_STOCK_THRESHOLD", 5)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	configDir := viper.GetString("CONFIG_DIR")
	if configDir == defaultConfigDir {
		configDir = filepath.Join(homeDir, configDir)
	}
	if err := os.MkdirAll(configDir, 0700); err != nil {
		fmt.Printf("failed to create config directory: %v\n", err)
	}

	dataDir := viper.GetString("DATA_DIR")
	if dataDir == "" {
		dataDir = filepath.Join(configDir, "data")
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		fmt.Printf("failed to create data directory: %v\n", err)
	}

	config := &Config{
		Env:               viper.GetString("APP_ENV"),
		ServerAddress:     viper.GetString("SERVER_ADDRESS"),
		LogLevel:          viper.GetString("LOG_LEVEL"),
		ConfigDir:         configDir,
		DataDir:           dataDir,
		TokenPath:         filepath.Join(configDir, "token"),
		SyncInterval:      viper.GetInt("SYNC_INTERVAL_SECONDS"),
		ProbeInterval:     viper.GetInt("PROBE_INTERVAL_SECONDS"),
		EnableTLS:         viper.GetBool("ENABLE_TLS"),
		LowStockThreshold: viper.GetInt64("LOW_STOCK_THRESHOLD"),
	}

	if err := config.validate(); err != nil {
		panic(fmt.Sprintf("invalid configuration: %v", err))
	}

	return config
}

func (c *Config) validate() error {
	if c.ServerAddress == "" {
		return fmt.Errorf("server_address must not be empty")
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	if c.SyncInterval <= 0 {
		return fmt.Errorf("sync_interval_seconds must be positive")
	}
	return nil
}

func (c *Config) IsProd() bool {
	return c.Env == "prod"
}

func (c *Config) IsDev() bool {
	return c.Env == "dev"
}

func (c *Config) IsLocal() bool {
	return c.Env == "local" || c.Env == ""
}
