// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package config loads server configuration from defaults, an optional YAML
// file, command-line flags and the environment, in that order of precedence
// (later sources win).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/holomush/grimhold/internal/game"
	"github.com/holomush/grimhold/internal/logging"
	"github.com/holomush/grimhold/internal/script"
)

// EnvPrefix prefixes every environment variable the server reads.
const EnvPrefix = "GRIMHOLD_"

// Config is the server configuration.
type Config struct {
	TickInterval time.Duration `koanf:"tick_interval" env:"TICK_INTERVAL"`
	LogFormat    string        `koanf:"log_format" env:"LOG_FORMAT"`
	LogLevel     string        `koanf:"log_level" env:"LOG_LEVEL"`
	MetricsAddr  string        `koanf:"metrics_addr" env:"METRICS_ADDR"`
	DatabaseURL  string        `koanf:"database_url" env:"DATABASE_URL"`
	// Catalog is a YAML effect catalog replacing the built-in one; empty
	// uses the built-in catalog.
	Catalog string `koanf:"catalog" env:"CATALOG"`
	// ScriptTimeout bounds each Lua effect hook.
	ScriptTimeout time.Duration `koanf:"script_timeout" env:"SCRIPT_TIMEOUT"`
	Game          Game          `koanf:"game" envPrefix:"GAME_"`
}

// Game holds gameplay tunables.
type Game struct {
	SaveGainCooldown time.Duration `koanf:"save_gain_cooldown" env:"SAVE_GAIN_COOLDOWN"`
	SaveGainMinLevel int           `koanf:"save_gain_min_level" env:"SAVE_GAIN_MIN_LEVEL"`
	AttackInterval   time.Duration `koanf:"attack_interval" env:"ATTACK_INTERVAL"`
	GroupBonus       float64       `koanf:"group_bonus" env:"GROUP_BONUS"`
	BonusExperience  float64       `koanf:"bonus_experience" env:"BONUS_EXPERIENCE"`
	// Holidays replaces the default calendar when non-empty. Holidays are
	// file-only.
	Holidays []Holiday `koanf:"holidays"`
}

// Holiday is a calendar entry; Date is "MM-DD".
type Holiday struct {
	Date     string `koanf:"date"`
	Greeting string `koanf:"greeting"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Config {
	s := game.DefaultSettings()
	return Config{
		TickInterval:  time.Second,
		LogFormat:     "json",
		LogLevel:      "info",
		MetricsAddr:   "127.0.0.1:9100",
		ScriptTimeout: script.DefaultTimeout,
		Game: Game{
			SaveGainCooldown: s.SaveGainCooldown,
			SaveGainMinLevel: s.SaveGainMinLevel,
			AttackInterval:   s.AttackInterval,
			GroupBonus:       s.GroupBonus,
			BonusExperience:  s.BonusExperience,
		},
	}
}

// RegisterFlags adds the flags Load understands to fs, defaulting to
// Defaults().
func RegisterFlags(fs *pflag.FlagSet) {
	d := Defaults()
	fs.Duration("tick-interval", d.TickInterval, "simulation tick interval")
	fs.String("log-format", d.LogFormat, "log format (json or text)")
	fs.String("log-level", d.LogLevel, "minimum log level (debug, info, warn, error)")
	fs.String("metrics-addr", d.MetricsAddr, "metrics/health HTTP address (empty = disabled)")
	fs.String("database-url", d.DatabaseURL, "PostgreSQL connection URL (empty = no persistence)")
	fs.String("catalog", d.Catalog, "effect catalog YAML (default: built-in)")
	fs.Duration("script-timeout", d.ScriptTimeout, "time limit for each Lua effect hook")
	fs.Float64("bonus-experience", d.Game.BonusExperience, "server-wide experience bonus multiplier")
}

// flagKeys maps flag names to configuration keys.
var flagKeys = map[string]string{
	"tick-interval":    "tick_interval",
	"log-format":       "log_format",
	"log-level":        "log_level",
	"metrics-addr":     "metrics_addr",
	"database-url":     "database_url",
	"catalog":          "catalog",
	"script-timeout":   "script_timeout",
	"bonus-experience": "game.bonus_experience",
}

// Load builds a Config. path may be empty to skip the file; flags may be nil.
// environ overrides the process environment when non-nil.
func Load(path string, flags *pflag.FlagSet, environ map[string]string) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, oops.Code("CONFIG_READ_FAILED").With("path", path).Wrap(err)
		}
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return Config{}, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	cfg := Defaults()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.Code("CONFIG_INVALID").With("path", path).Wrap(err)
	}

	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, oops.Code("CONFIG_ENV_INVALID").Wrap(err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	fail := func(key, format string, args ...any) error {
		return oops.Code("CONFIG_INVALID").With("key", key).Errorf(format, args...)
	}
	if c.TickInterval <= 0 {
		return fail("tick_interval", "tick interval must be positive, got %s", c.TickInterval)
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return fail("log_format", "log format must be 'json' or 'text', got %q", c.LogFormat)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fail("log_level", "unknown log level %q", c.LogLevel)
	}
	if c.ScriptTimeout <= 0 {
		return fail("script_timeout", "script timeout must be positive, got %s", c.ScriptTimeout)
	}
	if c.Game.SaveGainCooldown < 0 {
		return fail("game.save_gain_cooldown", "save gain cooldown cannot be negative")
	}
	if c.Game.AttackInterval <= 0 {
		return fail("game.attack_interval", "attack interval must be positive, got %s", c.Game.AttackInterval)
	}
	if c.Game.GroupBonus < 0 || c.Game.BonusExperience < 0 {
		return fail("game", "experience bonuses cannot be negative")
	}
	for i, h := range c.Game.Holidays {
		if _, err := parseHoliday(h); err != nil {
			return oops.Code("CONFIG_INVALID").With("key", fmt.Sprintf("game.holidays[%d]", i)).Wrap(err)
		}
	}
	return nil
}

func parseHoliday(h Holiday) (game.Holiday, error) {
	t, err := time.Parse("01-02", strings.TrimSpace(h.Date))
	if err != nil {
		return game.Holiday{}, oops.Errorf("holiday date %q is not MM-DD", h.Date)
	}
	return game.Holiday{Month: t.Month(), Day: t.Day(), Greeting: h.Greeting}, nil
}

// Settings converts the gameplay section into simulation settings.
func (c Config) Settings() game.Settings {
	s := game.DefaultSettings()
	s.SaveGainCooldown = c.Game.SaveGainCooldown
	s.SaveGainMinLevel = c.Game.SaveGainMinLevel
	s.AttackInterval = c.Game.AttackInterval
	s.GroupBonus = c.Game.GroupBonus
	s.BonusExperience = c.Game.BonusExperience
	if len(c.Game.Holidays) > 0 {
		s.Holidays = nil
		for _, h := range c.Game.Holidays {
			// Validate has already rejected bad dates.
			if hol, err := parseHoliday(h); err == nil {
				s.Holidays = append(s.Holidays, hol)
			}
		}
	}
	return s
}
