// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/holomush/grimhold/internal/world"
)

// SaveRepository persists saving throw tables.
type SaveRepository interface {
	// LoadSaves returns the creature's table and whether one was stored.
	LoadSaves(ctx context.Context, creatureID ulid.ULID) (world.SaveTable, bool, error)
	StoreSaves(ctx context.Context, creatureID ulid.ULID, t world.SaveTable) error
}

// PostgresSaveRepository implements SaveRepository using PostgreSQL.
type PostgresSaveRepository struct {
	pool poolIface
}

// NewPostgresSaveRepository creates a new PostgreSQL save repository.
func NewPostgresSaveRepository(pool poolIface) *PostgresSaveRepository {
	return &PostgresSaveRepository{pool: pool}
}

// LoadSaves reads a creature's saving throws. Categories missing from the
// database keep their zero value; unknown categories are skipped.
func (r *PostgresSaveRepository) LoadSaves(ctx context.Context, creatureID ulid.ULID) (world.SaveTable, bool, error) {
	var t world.SaveTable
	rows, err := r.pool.Query(ctx,
		`SELECT category, chance, gained FROM creature_saves WHERE creature_id = $1`,
		creatureID.String())
	if err != nil {
		return t, false, oops.Code("SAVE_LOAD_FAILED").
			With("operation", "load saves").
			With("creature_id", creatureID.String()).
			Wrap(err)
	}
	defer rows.Close()

	found := false
	for rows.Next() {
		var name string
		var entry world.SaveEntry
		if err := rows.Scan(&name, &entry.Chance, &entry.Gained); err != nil {
			return t, false, oops.Code("SAVE_LOAD_FAILED").
				With("operation", "scan save row").
				With("creature_id", creatureID.String()).
				Wrap(err)
		}
		cat, ok := world.ParseSaveCategory(name)
		if !ok || t.Entry(cat) == nil {
			continue
		}
		*t.Entry(cat) = entry
		found = true
	}
	if err := rows.Err(); err != nil {
		return t, false, oops.Code("SAVE_LOAD_FAILED").
			With("operation", "iterate saves").
			With("creature_id", creatureID.String()).
			Wrap(err)
	}
	return t, found, nil
}

// StoreSaves writes every stored category in one transaction.
func (r *PostgresSaveRepository) StoreSaves(ctx context.Context, creatureID ulid.ULID, t world.SaveTable) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		for i, entry := range t {
			cat := world.SaveCategory(i)
			_, err := tx.Exec(ctx,
				`INSERT INTO creature_saves (creature_id, category, chance, gained)
				 VALUES ($1, $2, $3, $4)
				 ON CONFLICT (creature_id, category) DO UPDATE SET chance = $3, gained = $4`,
				creatureID.String(), cat.String(), entry.Chance, entry.Gained)
			if err != nil {
				return oops.Code(classify(err, "SAVE_STORE_FAILED")).
					With("operation", "store save").
					With("creature_id", creatureID.String()).
					With("category", cat.String()).
					Wrap(err)
			}
		}
		return nil
	})
}
