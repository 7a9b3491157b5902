// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package store

import (
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/grimhold/pkg/errutil"
)

// fakeMigrate stands in for golang-migrate.
type fakeMigrate struct {
	upErr          error
	downErr        error
	stepsErr       error
	version        uint
	versionErr     error
	dirty          bool
	forceErr       error
	closeSourceErr error
	closeDBErr     error
}

func (m *fakeMigrate) Up() error                    { return m.upErr }
func (m *fakeMigrate) Down() error                  { return m.downErr }
func (m *fakeMigrate) Steps(int) error              { return m.stepsErr }
func (m *fakeMigrate) Version() (uint, bool, error) { return m.version, m.dirty, m.versionErr }
func (m *fakeMigrate) Force(int) error              { return m.forceErr }
func (m *fakeMigrate) Close() (error, error)        { return m.closeSourceErr, m.closeDBErr }

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u@h/db", migrateURL("postgres://u@h/db"))
	assert.Equal(t, "pgx5://u@h/db", migrateURL("postgresql://u@h/db"))
	assert.Equal(t, "pgx5://u@h/db", migrateURL("pgx5://u@h/db"))
}

func TestNewMigrator_InvalidURL(t *testing.T) {
	_, err := NewMigrator("badscheme://localhost:5432/grimhold")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "MIGRATION_INIT_FAILED")
}

func TestMigrator_Operations(t *testing.T) {
	boom := errors.New("database locked")
	tests := []struct {
		name     string
		fake     *fakeMigrate
		run      func(*Migrator) error
		wantCode string
	}{
		{"up", &fakeMigrate{}, (*Migrator).Up, ""},
		{"up no change", &fakeMigrate{upErr: migrate.ErrNoChange}, (*Migrator).Up, ""},
		{"up error", &fakeMigrate{upErr: boom}, (*Migrator).Up, "MIGRATION_UP_FAILED"},
		{"down no change", &fakeMigrate{downErr: migrate.ErrNoChange}, (*Migrator).Down, ""},
		{"down error", &fakeMigrate{downErr: boom}, (*Migrator).Down, "MIGRATION_DOWN_FAILED"},
		{"steps zero", &fakeMigrate{stepsErr: migrate.ErrNoChange}, func(m *Migrator) error { return m.Steps(0) }, ""},
		{"steps error", &fakeMigrate{stepsErr: boom}, func(m *Migrator) error { return m.Steps(2) }, "MIGRATION_STEPS_FAILED"},
		{"force", &fakeMigrate{}, func(m *Migrator) error { return m.Force(2) }, ""},
		{"force negative", &fakeMigrate{}, func(m *Migrator) error { return m.Force(-1) }, "INVALID_VERSION"},
		{"force error", &fakeMigrate{forceErr: boom}, func(m *Migrator) error { return m.Force(2) }, "MIGRATION_FORCE_FAILED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run(&Migrator{m: tt.fake})
			if tt.wantCode == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, tt.wantCode)
		})
	}
}

func TestMigrator_Version(t *testing.T) {
	v, dirty, err := (&Migrator{m: &fakeMigrate{version: 2, dirty: true}}).Version()
	require.NoError(t, err)
	assert.Equal(t, uint(2), v)
	assert.True(t, dirty)

	v, dirty, err = (&Migrator{m: &fakeMigrate{versionErr: migrate.ErrNilVersion}}).Version()
	require.NoError(t, err)
	assert.Zero(t, v)
	assert.False(t, dirty)

	_, _, err = (&Migrator{m: &fakeMigrate{versionErr: errors.New("connection lost")}}).Version()
	errutil.AssertErrorCode(t, err, "MIGRATION_VERSION_FAILED")
}

func TestMigrator_Close(t *testing.T) {
	require.NoError(t, (&Migrator{m: &fakeMigrate{}}).Close())

	err := (&Migrator{m: &fakeMigrate{closeSourceErr: errors.New("src")}}).Close()
	errutil.AssertErrorContext(t, err, "component", "source")

	err = (&Migrator{m: &fakeMigrate{closeDBErr: errors.New("db")}}).Close()
	errutil.AssertErrorContext(t, err, "component", "database")

	err = (&Migrator{m: &fakeMigrate{closeSourceErr: errors.New("src"), closeDBErr: errors.New("db")}}).Close()
	errutil.AssertErrorCode(t, err, "MIGRATION_CLOSE_FAILED")
	errutil.AssertErrorContext(t, err, "component", "both")
	assert.Contains(t, err.Error(), "src")
	assert.Contains(t, err.Error(), "db")
}

func TestMigrator_Status(t *testing.T) {
	tests := []struct {
		name string
		fake *fakeMigrate
		want Status
	}{
		{"fresh", &fakeMigrate{versionErr: migrate.ErrNilVersion}, Status{Pending: []uint{1, 2, 3}}},
		{"partial", &fakeMigrate{version: 1}, Status{Version: 1, Name: "000001_creature_saves", Applied: []uint{1}, Pending: []uint{2, 3}}},
		{"dirty", &fakeMigrate{version: 2, dirty: true}, Status{Version: 2, Name: "000002_host_effects", Dirty: true, Applied: []uint{1, 2}, Pending: []uint{3}}},
		{"latest", &fakeMigrate{version: 3}, Status{Version: 3, Name: "000003_death_log", Applied: []uint{1, 2, 3}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := (&Migrator{m: tt.fake}).Status()
			require.NoError(t, err)
			assert.Equal(t, tt.want, s)
		})
	}
}

func TestMigrator_StatusVersionError(t *testing.T) {
	_, err := (&Migrator{m: &fakeMigrate{versionErr: errors.New("connection lost")}}).Status()
	errutil.AssertErrorCode(t, err, "MIGRATION_VERSION_FAILED")
	errutil.AssertErrorContext(t, err, "operation", "read schema status")
}

func TestEmbeddedMigrations(t *testing.T) {
	first, err := embeddedMigrations()
	require.NoError(t, err)
	assert.Equal(t, []migration{
		{Version: 1, Name: "000001_creature_saves"},
		{Version: 2, Name: "000002_host_effects"},
		{Version: 3, Name: "000003_death_log"},
	}, first)

	first[0].Version = 99999
	second, err := embeddedMigrations()
	require.NoError(t, err)
	assert.Equal(t, uint(1), second[0].Version, "callers get a copy")
}
