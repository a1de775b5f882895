package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Source struct {
		BaseURL            string `toml:"base_url"`
		RefreshIntervalSec int    `toml:"refresh_interval_sec"`
		ProbeRetrySec      int    `toml:"probe_retry_sec"`
		FetchWorkers       int    `toml:"fetch_workers"`
		FetchRetries       int    `toml:"fetch_retries"`
		TimeoutSec         int    `toml:"timeout_sec"`
	} `toml:"source"`

	Filters struct {
		MinPrice   int64    `toml:"min_price"`
		MinFlip    int64    `toml:"min_flip"`
		MinSupply  int      `toml:"min_supply"`
		Categories []string `toml:"categories"`
		Exceptions []string `toml:"exceptions"`
	} `toml:"filters"`

	Alerts struct {
		WebhookURL      string   `toml:"webhook_url"`
		WebhookMentions []string `toml:"webhook_mentions"`
		Clipboard       bool     `toml:"clipboard"`
	} `toml:"alerts"`

	WSFeed struct {
		Enabled bool   `toml:"enabled"`
		Addr    string `toml:"addr"`
	} `toml:"wsfeed"`

	SQLite struct {
		Enabled bool   `toml:"enabled"`
		Path    string `toml:"path"`
	} `toml:"sqlite"`

	Redis struct {
		Enabled     bool   `toml:"enabled"`
		Addr        string `toml:"addr"`
		Password    string `toml:"password"`
		DB          int    `toml:"db"`
		Prefix      string `toml:"prefix"`
		TTLSeconds  int    `toml:"ttl_seconds"`
		FlipStream  string `toml:"flip_stream"`
		FlipChannel string `toml:"flip_channel"`
	} `toml:"redis"`

	Postgres struct {
		Enabled bool   `toml:"enabled"`
		DSN     string `toml:"dsn"`
	} `toml:"postgres"`
}

// Load reads the user config, falling back to the shipped default config when
// the user file does not exist. Having neither is a startup error.
func Load(path, fallback string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		log.Warn().Str("config", path).Str("fallback", fallback).Msg("user config not found, using defaults")
		if _, err := toml.DecodeFile(fallback, &cfg); err != nil {
			return nil, fmt.Errorf("no usable config (%s, %s): %w", path, fallback, err)
		}
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Source.RefreshIntervalSec <= 0 {
		cfg.Source.RefreshIntervalSec = 50
	}
	if cfg.Source.ProbeRetrySec <= 0 {
		cfg.Source.ProbeRetrySec = 5
	}
	if cfg.Source.FetchRetries <= 0 {
		cfg.Source.FetchRetries = 3
	}
	if cfg.Source.TimeoutSec <= 0 {
		cfg.Source.TimeoutSec = 10
	}
	if cfg.Filters.MinSupply <= 0 {
		cfg.Filters.MinSupply = 2
	}
	if cfg.SQLite.Enabled && strings.TrimSpace(cfg.SQLite.Path) == "" {
		cfg.SQLite.Path = "data/binflip.db"
	}
	if cfg.WSFeed.Enabled && strings.TrimSpace(cfg.WSFeed.Addr) == "" {
		cfg.WSFeed.Addr = ":8777"
	}
	if cfg.Redis.Enabled && strings.TrimSpace(cfg.Redis.Prefix) == "" {
		cfg.Redis.Prefix = "binflip"
	}
}

func validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Source.BaseURL) == "" {
		return errors.New("source.base_url is empty")
	}

	cfg.Filters.Categories = normalizeSet(cfg.Filters.Categories, true)
	if len(cfg.Filters.Categories) == 0 {
		return errors.New("filters.categories is empty")
	}
	// canonical item names are case sensitive, keep them as written
	cfg.Filters.Exceptions = normalizeSet(cfg.Filters.Exceptions, false)

	if cfg.Filters.MinPrice < 0 || cfg.Filters.MinFlip < 0 {
		return errors.New("filters.min_price and filters.min_flip must be >= 0")
	}
	if cfg.Redis.Enabled && strings.TrimSpace(cfg.Redis.Addr) == "" {
		return errors.New("redis.addr empty but enabled")
	}
	if cfg.Postgres.Enabled && strings.TrimSpace(cfg.Postgres.DSN) == "" {
		return errors.New("postgres.dsn empty but enabled")
	}
	return nil
}

func normalizeSet(in []string, lower bool) []string {
	out := make([]string, 0, len(in))
	seen := map[string]struct{}{}
	for _, s := range in {
		v := strings.TrimSpace(s)
		if lower {
			v = strings.ToLower(v)
		}
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// CategorySet returns the category allow-list as a set.
func (c *Config) CategorySet() map[string]struct{} {
	return toSet(c.Filters.Categories)
}

// ExceptionSet returns the canonical-name exception list as a set.
func (c *Config) ExceptionSet() map[string]struct{} {
	return toSet(c.Filters.Exceptions)
}

func toSet(in []string) map[string]struct{} {
	out := make(map[string]struct{}, len(in))
	for _, s := range in {
		out[s] = struct{}{}
	}
	return out
}
