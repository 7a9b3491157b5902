// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/grimhold/internal/game"
	"github.com/holomush/grimhold/pkg/errutil"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "grimhold.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil, map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
	assert.Equal(t, game.DefaultSettings(), cfg.Settings())
}

func TestLoad_Precedence(t *testing.T) {
	path := writeConfig(t, `
tick_interval: 2s
log_format: text
database_url: postgres://file
game:
  group_bonus: 0.5
  attack_interval: 4s
  holidays:
    - date: "05-01"
      greeting: Happy May Day!
`)

	t.Run("file over defaults", func(t *testing.T) {
		cfg, err := Load(path, newFlags(t), map[string]string{})
		require.NoError(t, err)
		assert.Equal(t, 2*time.Second, cfg.TickInterval)
		assert.Equal(t, "text", cfg.LogFormat)
		assert.Equal(t, "postgres://file", cfg.DatabaseURL)
		assert.Equal(t, "127.0.0.1:9100", cfg.MetricsAddr)
		assert.InDelta(t, 0.5, cfg.Game.GroupBonus, 1e-9)
		assert.Equal(t, 4*time.Second, cfg.Game.AttackInterval)
		assert.Equal(t, 60*time.Second, cfg.Game.SaveGainCooldown)
	})

	t.Run("flags over file", func(t *testing.T) {
		cfg, err := Load(path, newFlags(t, "--tick-interval=500ms", "--bonus-experience=1"), map[string]string{})
		require.NoError(t, err)
		assert.Equal(t, 500*time.Millisecond, cfg.TickInterval)
		assert.Equal(t, "text", cfg.LogFormat)
		assert.InDelta(t, 1.0, cfg.Game.BonusExperience, 1e-9)
	})

	t.Run("environment over flags", func(t *testing.T) {
		cfg, err := Load(path, newFlags(t, "--database-url=postgres://flag"), map[string]string{
			"GRIMHOLD_DATABASE_URL":            "postgres://env",
			"GRIMHOLD_GAME_GROUP_BONUS":        "0.1",
			"GRIMHOLD_GAME_SAVE_GAIN_COOLDOWN": "30s",
		})
		require.NoError(t, err)
		assert.Equal(t, "postgres://env", cfg.DatabaseURL)
		assert.InDelta(t, 0.1, cfg.Game.GroupBonus, 1e-9)
		assert.Equal(t, 30*time.Second, cfg.Game.SaveGainCooldown)
	})

	t.Run("settings carry the calendar", func(t *testing.T) {
		cfg, err := Load(path, nil, map[string]string{})
		require.NoError(t, err)
		s := cfg.Settings()
		assert.Equal(t, []game.Holiday{{Month: time.May, Day: 1, Greeting: "Happy May Day!"}}, s.Holidays)
		assert.Equal(t, "Happy May Day!", s.HolidayOn(time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)))
		assert.Empty(t, s.HolidayOn(time.Date(2026, 12, 25, 8, 0, 0, 0, time.UTC)))
	})
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		environ map[string]string
		code    string
		key     string
	}{
		{name: "bad log format", body: "log_format: xml", code: "CONFIG_INVALID", key: "log_format"},
		{name: "bad log level", body: "log_level: loud", code: "CONFIG_INVALID", key: "log_level"},
		{name: "zero tick", body: "tick_interval: 0s", code: "CONFIG_INVALID", key: "tick_interval"},
		{name: "negative bonus", body: "game:\n  bonus_experience: -1", code: "CONFIG_INVALID", key: "game"},
		{
			name: "bad holiday",
			body: "game:\n  holidays:\n    - date: \"13-40\"\n      greeting: Never",
			code: "CONFIG_INVALID",
			key:  "game.holidays[0]",
		},
		{name: "bad environment", environ: map[string]string{"GRIMHOLD_TICK_INTERVAL": "soon"}, code: "CONFIG_ENV_INVALID"},
		{name: "malformed yaml", body: "tick_interval: [", code: "CONFIG_READ_FAILED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := ""
			if tt.body != "" {
				path = writeConfig(t, tt.body)
			}
			environ := tt.environ
			if environ == nil {
				environ = map[string]string{}
			}
			_, err := Load(path, nil, environ)
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, tt.code)
			if tt.key != "" {
				errutil.AssertErrorContext(t, err, "key", tt.key)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil, map[string]string{})
	errutil.AssertErrorCode(t, err, "CONFIG_READ_FAILED")
}
