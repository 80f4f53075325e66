package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreMemory   = "memory"
)

type APIConfig struct {
	Addr             string `env:"LABELSIM_API_ADDR" envDefault:":8080"`
	Port             string `env:"PORT"`
	Store            string `env:"LABELSIM_STORE" envDefault:"postgres"`
	DatabaseURL      string `env:"DATABASE_URL"`
	SQLitePath       string `env:"LABELSIM_SQLITE_PATH" envDefault:"labelsim.db"`
	ContentPath      string `env:"LABELSIM_CONTENT_PATH"`
	DiscordToken     string `env:"DISCORD_BOT_TOKEN"`
	DiscordChannelID string `env:"DISCORD_CHANNEL_ID"`
}

type CLIConfig struct {
	APIBaseURL  string `env:"LBL_API_BASE_URL" envDefault:"http://localhost:8080"`
	ContentPath string `env:"LABELSIM_CONTENT_PATH"`
}

func LoadAPIFromEnv() (APIConfig, error) {
	var cfg APIConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if p := strings.TrimSpace(cfg.Port); p != "" {
		if !strings.HasPrefix(p, ":") {
			p = ":" + p
		}
		cfg.Addr = p
	}
	cfg.DatabaseURL = strings.TrimSpace(cfg.DatabaseURL)
	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))

	switch cfg.Store {
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return cfg, fmt.Errorf("DATABASE_URL is required")
		}
	case StoreSQLite:
		if strings.TrimSpace(cfg.SQLitePath) == "" {
			return cfg, fmt.Errorf("LABELSIM_SQLITE_PATH is required")
		}
	case StoreMemory:
	default:
		return cfg, fmt.Errorf("LABELSIM_STORE must be postgres, sqlite or memory, got %q", cfg.Store)
	}
	if (cfg.DiscordToken == "") != (cfg.DiscordChannelID == "") {
		return cfg, fmt.Errorf("DISCORD_BOT_TOKEN and DISCORD_CHANNEL_ID must be set together")
	}
	return cfg, nil
}

func LoadCLIFromEnv() CLIConfig {
	var cfg CLIConfig
	if err := env.Parse(&cfg); err != nil {
		cfg = CLIConfig{APIBaseURL: "http://localhost:8080"}
	}
	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	return cfg
}
