package config

import (
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the configuration settings for the directory service.
//
// Fields:
// - Env: The current environment (e.g., local, development, production).
// - Port: The port for the monitoring server.
// - HTTPAddr: The listen address of the public API.
// - ProviderType: The type of geocoding provider to use (google, nominatim).
// - APIKey: The API key for the geocoding provider (required for Google).
// - Workers: The number of concurrent coordinate backfill workers.
// - Interval: The duration between backfill runs.
// - Radius: Search radii for the directory views.
// - Database: Configuration settings for the PostgreSQL database.
// - Redis: Configuration settings for the override store and geocode cache.
type Config struct {
	Env             string         `yaml:"env"`                  // Env is the current environment: local, development, production.
	Port            int            `yaml:"monitoring.port"`      // Port is the monitoring server port.
	HTTPAddr        string         `yaml:"http.addr"`            // HTTPAddr is the public API listen address.
	ProviderType    string         `yaml:"provider.type"`        // ProviderType specifies which geocoding provider to use.
	APIKey          string         `yaml:"provider.api_key"`     // The API key for accessing the geocoding provider.
	Workers         int            `yaml:"geocoder.workers"`     // The number of concurrent backfill workers.
	Interval        time.Duration  `yaml:"geocoder.interval"`    // The duration between backfill runs.
	AddrPrefix      string         `yaml:"addr_prefix"`          // Address prefix for more accurate geocoding.
	JWTSecret       string         `yaml:"auth.jwt_secret"`      // JWTSecret verifies bearer tokens.
	OverrideTTL     time.Duration  `yaml:"overrides.ttl"`        // OverrideTTL bounds the life of local overrides, 0 keeps them.
	GeocodeCacheTTL time.Duration  `yaml:"geocoder.cache_ttl"`   // GeocodeCacheTTL is the life of cached geocoding results.
	Radius          RadiusConfig   `yaml:"radius"`               // Radius holds the directory search radii.
	Database        PostgresConfig `yaml:"postgres"`             // Database holds the postgres database configuration.
	Redis           RedisConfig    `yaml:"redis"`                // Redis holds the redis configuration.
}

// RadiusConfig holds the search radii in kilometers used by the directory views.
type RadiusConfig struct {
	NearbyKm    float64 `yaml:"nearby_km"`    // NearbyKm applies to the default hospital listing.
	AmbulanceKm float64 `yaml:"ambulance_km"` // AmbulanceKm applies to the ambulance service listing.
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string `yaml:"host"`                        // Host is the database server address.
	Port     string `yaml:"port"     env-default:"5432"` // Port is the database server port.
	User     string `yaml:"user"`                        // User is the database user.
	Password string `yaml:"password"`                    // Password is the database user's password.
	Name     string `yaml:"db_name"`                     // Name is the name of the database.
}

// RedisConfig holds the connection settings for Redis.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

var defaults = map[string]string{
	"SWASTHYA_ENV_FILE":            ".env",
	"SWASTHYA_ENV":                 "production",
	"SWASTHYA_HEALTH_PORT":         "8080",
	"SWASTHYA_HTTP_ADDR":           ":8000",
	"SWASTHYA_PROVIDER_TYPE":       "nominatim",
	"SWASTHYA_WORKERS":             "2",
	"SWASTHYA_INTERVAL":            "10m",
	"SWASTHYA_ADDRESS_PREFIX":      "",
	"SWASTHYA_NEARBY_RADIUS_KM":    "25",
	"SWASTHYA_AMBULANCE_RADIUS_KM": "50",
	"SWASTHYA_OVERRIDE_TTL":        "0s",
	"SWASTHYA_GEOCODE_CACHE_TTL":   "720h",
	"DB_PORT":                      "5432",
	"REDIS_ADDR":                   "localhost:6379",
	"REDIS_DB":                     "0",
}

// MustLoad reads the optional env file and the process environment and returns a Config.
// It panics when a value cannot be parsed.
func MustLoad() *Config {
	env := viper.New()
	env.AutomaticEnv()
	for key, value := range defaults {
		env.SetDefault(key, value)
	}

	_ = godotenv.Load(env.GetString("SWASTHYA_ENV_FILE"))

	interval, err := time.ParseDuration(env.GetString("SWASTHYA_INTERVAL"))
	if err != nil {
		panic("failed to parse interval from configuration")
	}

	healthPort, err := strconv.Atoi(env.GetString("SWASTHYA_HEALTH_PORT"))
	if err != nil {
		panic("failed to parse port for monitoring server from configuration")
	}

	workers, err := strconv.Atoi(env.GetString("SWASTHYA_WORKERS"))
	if err != nil || workers < 1 {
		panic("failed to parse workers from configuration, must be a positive integer")
	}

	nearby, err := strconv.ParseFloat(env.GetString("SWASTHYA_NEARBY_RADIUS_KM"), 64)
	if err != nil || nearby < 0 {
		panic("failed to parse nearby radius from configuration")
	}

	ambulance, err := strconv.ParseFloat(env.GetString("SWASTHYA_AMBULANCE_RADIUS_KM"), 64)
	if err != nil || ambulance < 0 {
		panic("failed to parse ambulance radius from configuration")
	}

	overrideTTL, err := time.ParseDuration(env.GetString("SWASTHYA_OVERRIDE_TTL"))
	if err != nil {
		panic("failed to parse override ttl from configuration")
	}

	cacheTTL, err := time.ParseDuration(env.GetString("SWASTHYA_GEOCODE_CACHE_TTL"))
	if err != nil {
		panic("failed to parse geocode cache ttl from configuration")
	}

	redisDB, err := strconv.Atoi(env.GetString("REDIS_DB"))
	if err != nil {
		panic("failed to parse redis db from configuration")
	}

	return &Config{
		Env:             env.GetString("SWASTHYA_ENV"),
		Port:            healthPort,
		HTTPAddr:        env.GetString("SWASTHYA_HTTP_ADDR"),
		ProviderType:    env.GetString("SWASTHYA_PROVIDER_TYPE"),
		APIKey:          env.GetString("SWASTHYA_PROVIDER_KEY"),
		Workers:         workers,
		Interval:        interval,
		AddrPrefix:      env.GetString("SWASTHYA_ADDRESS_PREFIX"),
		JWTSecret:       env.GetString("SWASTHYA_JWT_SECRET"),
		OverrideTTL:     overrideTTL,
		GeocodeCacheTTL: cacheTTL,
		Radius: RadiusConfig{
			NearbyKm:    nearby,
			AmbulanceKm: ambulance,
		},
		Database: PostgresConfig{
			Host:     env.GetString("DB_HOST"),
			Port:     env.GetString("DB_PORT"),
			User:     env.GetString("DB_USERNAME"),
			Password: env.GetString("DB_PASSWORD"),
			Name:     env.GetString("DB_NAME"),
		},
		Redis: RedisConfig{
			Addr:     env.GetString("REDIS_ADDR"),
			Password: env.GetString("REDIS_PASSWORD"),
			DB:       redisDB,
		},
	}
}
