package config

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by the config.
const EnvPrefix = "LOCUS"

// Config holds the configuration settings of the place resolver and the lookup CLI.
//
// Fields:
// - Env: The current environment (local, development, production).
// - HealthPort: The port for the monitoring server.
// - APIKey: The Google Maps API key.
// - BaseURL: Overrides the place details API host, used against stubs.
// - Language: Optional language of the returned results.
// - Backend: The lookup backend to use (http, maps).
// - RateLimit: Requests per second enforced by the maps SDK backend.
// - LookupsPerSecond: Pace of lookups issued by the resolver, 0 disables pacing.
// - Workers: The number of concurrent resolver workers.
// - Interval: The duration between polls for new tasks.
// - BatchSize: The maximum number of tasks fetched per poll.
// - MaxAttempts: Tasks that failed this many times are no longer fetched.
// - Database: Configuration settings for the PostgreSQL database.
type Config struct {
	Env              string         `mapstructure:"env"`
	HealthPort       int            `mapstructure:"health_port"`
	APIKey           string         `mapstructure:"api_key"`
	BaseURL          string         `mapstructure:"base_url"`
	Language         string         `mapstructure:"language"`
	Backend          string         `mapstructure:"backend"`
	RateLimit        int            `mapstructure:"rate_limit"`
	LookupsPerSecond float64        `mapstructure:"lookups_per_second"`
	Workers          int            `mapstructure:"workers"`
	Interval         time.Duration  `mapstructure:"interval"`
	BatchSize        int            `mapstructure:"batch_size"`
	MaxAttempts      int            `mapstructure:"max_attempts"`
	Database         PostgresConfig `mapstructure:"db"`
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string `mapstructure:"host"`     // Host is the database server address.
	Port     string `mapstructure:"port"`     // Port is the database server port.
	User     string `mapstructure:"user"`     // User is the database user.
	Password string `mapstructure:"password"` // Password is the database user's password.
	Name     string `mapstructure:"name"`     // Name is the name of the database.
}

// MustLoad loads the configuration from .env, an optional config.yaml and LOCUS_* variables.
func MustLoad() *Config {
	return MustLoadViper(viper.New())
}

// MustLoadViper is MustLoad on a caller-provided viper instance, so that command line
// flags bound to it take precedence over the environment and the config file.
func MustLoadViper(v *viper.Viper) *Config {
	_ = godotenv.Load()

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("api_key", EnvPrefix+"_API_KEY", "GOOGLE_MAPS_API_KEY")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			panic("failed to read config file: " + err.Error())
		}
	}

	interval, err := time.ParseDuration(v.GetString("interval"))
	if err != nil {
		panic("failed to parse interval from configuration")
	}

	healthPort, err := strconv.Atoi(v.GetString("health_port"))
	if err != nil {
		panic("failed to parse port for monitoring server from configuration")
	}

	workers, err := strconv.Atoi(v.GetString("workers"))
	if err != nil {
		panic("failed to parse workers from configuration, must be an integer types")
	}

	batchSize, err := strconv.Atoi(v.GetString("batch_size"))
	if err != nil {
		panic("failed to parse batch size from configuration, must be an integer types")
	}

	maxAttempts, err := strconv.Atoi(v.GetString("max_attempts"))
	if err != nil {
		panic("failed to parse max attempts from configuration, must be an integer types")
	}

	rateLimit, err := strconv.Atoi(v.GetString("rate_limit"))
	if err != nil {
		panic("failed to parse rate limit from configuration, must be an integer types")
	}

	lookupsPerSecond, err := strconv.ParseFloat(v.GetString("lookups_per_second"), 64)
	if err != nil {
		panic("failed to parse lookups per second from configuration, must be a number")
	}

	return &Config{
		Env:              v.GetString("env"),
		HealthPort:       healthPort,
		APIKey:           v.GetString("api_key"),
		BaseURL:          v.GetString("base_url"),
		Language:         v.GetString("language"),
		Backend:          v.GetString("backend"),
		RateLimit:        rateLimit,
		LookupsPerSecond: lookupsPerSecond,
		Workers:          workers,
		Interval:         interval,
		BatchSize:        batchSize,
		MaxAttempts:      maxAttempts,
		Database: PostgresConfig{
			Host:     v.GetString("db.host"),
			Port:     v.GetString("db.port"),
			User:     v.GetString("db.user"),
			Password: v.GetString("db.password"),
			Name:     v.GetString("db.name"),
		},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "production")
	v.SetDefault("health_port", "8080")
	v.SetDefault("api_key", "")
	v.SetDefault("base_url", "")
	v.SetDefault("language", "")
	v.SetDefault("backend", "http")
	v.SetDefault("rate_limit", "0")
	v.SetDefault("lookups_per_second", "0")
	v.SetDefault("workers", "10")
	v.SetDefault("interval", "10m")
	v.SetDefault("batch_size", "100")
	v.SetDefault("max_attempts", "5")
	v.SetDefault("db.host", "")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "")
}
