// Package config loads runtime configuration from environment variables.
package config

import (
	"context"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	// CheckWorkers is the number of dispatcher workers draining batched
	// status checks. Checks for one site always land on the same worker.
	CheckWorkers int `env:"CHECK_WORKERS, default=4"`

	// StoreBackend selects where sites live: "mongo" (default) or
	// "airtable", which serves sites straight from the hosted base.
	StoreBackend string `env:"STORE_BACKEND, default=mongo"`

	Mongo    MongoConfig
	Redis    RedisConfig
	Airtable AirtableConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=sfla_tracker"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// AirtableConfig points at the hosted record store, used by the KMZ sync and
// as the site store when STORE_BACKEND=airtable. APIKey empty means the
// hosted base is unavailable.
type AirtableConfig struct {
	BaseURL    string        `env:"AIRTABLE_BASE_URL, default=https://api.airtable.com/v0"`
	BaseID     string        `env:"AIRTABLE_BASE_ID"`
	APIKey     string        `env:"AIRTABLE_API_KEY"`
	SitesTable string        `env:"AIRTABLE_SITES_TABLE, default=Sites"`
	Timeout    time.Duration `env:"AIRTABLE_TIMEOUT, default=30s"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
