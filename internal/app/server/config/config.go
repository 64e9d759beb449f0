package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"

	defaultRunAddress    = "localhost:8080"
	defaultMigrations    = "migrations"
	defaultSessionTTL    = 30 * 24 * time.Hour
	defaultTrialDuration = 7 * 24 * time.Hour
)

type Config struct {
	Env    string
	DB     db
	Server server
	Logger logger
	Trial  trial
}

type db struct {
	DatabaseURI string `env:"DATABASE_URI"`
	Migrations  string `env:"MIGRATIONS_PATH"`
}

type server struct {
	RunAddress string        `env:"RUN_ADDRESS"`
	SessionTTL time.Duration `env:"SESSION_TTL"`
}

type logger struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

type trial struct {
	Duration time.Duration `env:"TRIAL_DURATION"`
}

func MustLoad() *Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	viper.AutomaticEnv()
	viper.SetDefault("RUN_ADDRESS", defaultRunAddress)
	viper.SetDefault("MIGRATIONS_PATH", defaultMigrations)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("APP_ENV", EnvLocal)
	viper.SetDefault("SESSION_TTL", defaultSessionTTL)
	viper.SetDefault("TRIAL_DURATION", defaultTrialDuration)

	config := Config{
		Env: viper.GetString("APP_ENV"),
		DB: db{
			DatabaseURI: viper.GetString("DATABASE_URI"),
			Migrations:  viper.GetString("MIGRATIONS_PATH"),
		},
		Server: server{
			RunAddress: viper.GetString("RUN_ADDRESS"),
			SessionTTL: viper.GetDuration("SESSION_TTL"),
		},
		Logger: logger{LogLevel: viper.GetString("LOG_LEVEL")},
		Trial:  trial{Duration: viper.GetDuration("TRIAL_DURATION")},
	}

	if config.DB.DatabaseURI == "" {
		log.Fatalln("DATABASE_URI must be set")
	}

	return &config
}
