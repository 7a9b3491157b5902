// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package store

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/holomush/grimhold/internal/effect"
	"github.com/holomush/grimhold/internal/world"
)

// StoredEffect is an effect as it is kept between sessions.
type StoredEffect struct {
	Name     string
	Duration int64
	Strength int
	Extra    int
}

// EffectRepository persists the effects on a host.
type EffectRepository interface {
	LoadEffects(ctx context.Context, hostID ulid.ULID) ([]StoredEffect, error)
	// StoreEffects replaces everything stored for the host.
	StoreEffects(ctx context.Context, hostID ulid.ULID, effects []StoredEffect) error
}

// Snapshot lists the effects on host worth storing. Effects held by an
// applier, such as those granted by worn items, come back with the item
// and are left out.
func Snapshot(host world.Host) []StoredEffect {
	var out []StoredEffect
	for _, e := range host.EffectList().All() {
		if e.HasApplier() {
			continue
		}
		out = append(out, StoredEffect{Name: e.Name, Duration: e.Duration, Strength: e.Strength, Extra: e.Extra})
	}
	return out
}

// Restore puts stored effects back on host through the registry. Effects
// that are no longer in the catalog, or that the registry refuses, are
// logged and skipped. It returns how many were restored.
func Restore(reg *effect.Registry, host world.Host, stored []StoredEffect, logger *slog.Logger) int {
	n := 0
	for _, s := range stored {
		if _, ok := reg.Catalog().Lookup(s.Name); !ok {
			logger.Warn("skipping stored effect missing from catalog",
				slog.String("effect", s.Name),
				slog.String("host", host.HostID().String()))
			continue
		}
		e := reg.Add(host, s.Name, s.Duration, s.Strength, effect.Applier{}, false, world.NoID)
		if e == nil {
			logger.Warn("stored effect refused",
				slog.String("effect", s.Name),
				slog.String("host", host.HostID().String()))
			continue
		}
		e.Extra = s.Extra
		n++
	}
	return n
}

// PostgresEffectRepository implements EffectRepository using PostgreSQL.
type PostgresEffectRepository struct {
	pool poolIface
}

// NewPostgresEffectRepository creates a new PostgreSQL effect repository.
func NewPostgresEffectRepository(pool poolIface) *PostgresEffectRepository {
	return &PostgresEffectRepository{pool: pool}
}

// LoadEffects reads a host's effects in the order they were stored.
func (r *PostgresEffectRepository) LoadEffects(ctx context.Context, hostID ulid.ULID) ([]StoredEffect, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT name, duration, strength, extra FROM host_effects WHERE host_id = $1 ORDER BY position`,
		hostID.String())
	if err != nil {
		return nil, oops.Code("EFFECT_LOAD_FAILED").
			With("operation", "load effects").
			With("host_id", hostID.String()).
			Wrap(err)
	}
	defer rows.Close()

	var out []StoredEffect
	for rows.Next() {
		var s StoredEffect
		if err := rows.Scan(&s.Name, &s.Duration, &s.Strength, &s.Extra); err != nil {
			return nil, oops.Code("EFFECT_LOAD_FAILED").
				With("operation", "scan effect row").
				With("host_id", hostID.String()).
				Wrap(err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("EFFECT_LOAD_FAILED").
			With("operation", "iterate effects").
			With("host_id", hostID.String()).
			Wrap(err)
	}
	return out, nil
}

// StoreEffects replaces a host's stored effects in one transaction.
func (r *PostgresEffectRepository) StoreEffects(ctx context.Context, hostID ulid.ULID, effects []StoredEffect) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM host_effects WHERE host_id = $1`, hostID.String()); err != nil {
			return oops.Code("EFFECT_STORE_FAILED").
				With("operation", "clear effects").
				With("host_id", hostID.String()).
				Wrap(err)
		}
		for i, s := range effects {
			_, err := tx.Exec(ctx,
				`INSERT INTO host_effects (host_id, position, name, duration, strength, extra)
				 VALUES ($1, $2, $3, $4, $5, $6)`,
				hostID.String(), i, s.Name, s.Duration, s.Strength, s.Extra)
			if err != nil {
				return oops.Code(classify(err, "EFFECT_STORE_FAILED")).
					With("operation", "store effect").
					With("host_id", hostID.String()).
					With("effect", s.Name).
					Wrap(err)
			}
		}
		return nil
	})
}
