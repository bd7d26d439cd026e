package config

import (
	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	Server struct {
		Port   int    `env:"PORT" envDefault:"8080"`
		Origin string `env:"ORIGIN" envDefault:"http://localhost:3000"`
	}

	// PublicBaseURL is the externally reachable base URL used when deriving
	// share links for lists.
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`

	Store struct {
		// Backend selects the keyed store implementation: "redis" or
		// "memory" (memory is non-durable, local development only).
		Backend string `env:"STORE_BACKEND" envDefault:"redis"`
	}

	Redis struct {
		Host     string `env:"REDIS_HOST" envDefault:"localhost"`
		Port     int    `env:"REDIS_PORT" envDefault:"6379"`
		Password string `env:"REDIS_PASSWORD" envDefault:""`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
	}

	Telegram struct {
		BotToken string `env:"BOT_TOKEN,required"`
		// InitDataTTLSec bounds init-data age; 0 disables the expiration check.
		InitDataTTLSec int `env:"INIT_DATA_TTL_SEC" envDefault:"86400"`
		// NotificationsEnabled toggles claim notifications to list owners.
		NotificationsEnabled bool `env:"NOTIFICATIONS_ENABLED" envDefault:"true"`
	}
}

func Load() *Config {
	// Missing .env is fine; in production the variables are set directly.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		panic(err)
	}

	return cfg
}
