package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config carries everything the bot process reads from its environment.
type Config struct {
	Environment  string `env:"ENV" envDefault:"dev"`
	DiscordToken string `env:"DISCORD_TOKEN,required,notEmpty"`

	// GuildID scopes command registration to a single guild when set.
	// Useful in development where guild commands propagate instantly.
	GuildID string `env:"GUILD_ID"`

	SyncOnStart  bool `env:"SYNC_ON_START" envDefault:"true"`
	PruneUnknown bool `env:"PRUNE_UNKNOWN"`

	// ListenerAddr enables the admin HTTP listener when set, e.g. ":8089".
	ListenerAddr string `env:"LISTENER_ADDR"`
	ServiceToken string `env:"SERVICE_TOKEN"`

	// CacheBackend selects where command hashes persist between restarts:
	// memory, file or redis.
	CacheBackend string `env:"CACHE_BACKEND" envDefault:"memory"`
	StateDir     string `env:"STATE_DIR" envDefault:"."`

	Redis struct {
		Host string `env:"REDIS_HOST" envDefault:"localhost"`
		Port int    `env:"REDIS_PORT" envDefault:"6379"`
		Pool int    `env:"REDIS_POOL" envDefault:"5"`
	}
}

// Load reads the process environment into a Config. A .env file in the
// working directory is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	switch cfg.CacheBackend {
	case "memory", "file", "redis":
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}

	return cfg, nil
}
