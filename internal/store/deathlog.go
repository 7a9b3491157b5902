// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package store

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/holomush/grimhold/internal/death"
	"github.com/holomush/grimhold/internal/game"
	"github.com/holomush/grimhold/internal/world"
)

// DeathLogRepository keeps the death audit log.
type DeathLogRepository interface {
	Append(ctx context.Context, r death.Record) error
	// Recent returns the newest records first. A zero victim matches
	// everyone.
	Recent(ctx context.Context, victim ulid.ULID, limit int) ([]death.Record, error)
}

// PostgresDeathLogRepository implements DeathLogRepository using PostgreSQL.
type PostgresDeathLogRepository struct {
	pool poolIface
}

// NewPostgresDeathLogRepository creates a new PostgreSQL death log repository.
func NewPostgresDeathLogRepository(pool poolIface) *PostgresDeathLogRepository {
	return &PostgresDeathLogRepository{pool: pool}
}

func nullableID(id ulid.ULID) *string {
	if id.IsZero() {
		return nil
	}
	s := id.String()
	return &s
}

func parseNullableID(s *string, field string) (ulid.ULID, error) {
	if s == nil {
		return world.NoID, nil
	}
	id, err := ulid.Parse(*s)
	if err != nil {
		return world.NoID, oops.With("operation", "parse "+field).With(field, *s).Wrap(err)
	}
	return id, nil
}

// Append writes one record.
func (r *PostgresDeathLogRepository) Append(ctx context.Context, rec death.Record) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO death_log (victim_id, victim_name, victim_kind, level, killer_id, killer_name,
		     killer_kind, cause, room_id, experience_lost, experience_awarded, died_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		rec.Victim.String(), rec.VictimName, int16(rec.VictimKind), rec.Level,
		nullableID(rec.Killer), rec.KillerName, int16(rec.KillerKind), int16(rec.Cause),
		nullableID(rec.Room), rec.ExperienceLost, rec.ExperienceAwarded, rec.At)
	if err != nil {
		return oops.Code(classify(err, "DEATH_LOG_APPEND_FAILED")).
			With("operation", "append death").
			With("victim_id", rec.Victim.String()).
			Wrap(err)
	}
	return nil
}

// Recent lists up to limit records, newest first.
func (r *PostgresDeathLogRepository) Recent(ctx context.Context, victim ulid.ULID, limit int) ([]death.Record, error) {
	if limit <= 0 {
		return nil, oops.Code("INVALID_LIMIT").Errorf("limit must be positive, got %d", limit)
	}
	rows, err := r.pool.Query(ctx,
		`SELECT victim_id, victim_name, victim_kind, level, killer_id, killer_name,
		        killer_kind, cause, room_id, experience_lost, experience_awarded, died_at
		 FROM death_log
		 WHERE $1::text IS NULL OR victim_id = $1
		 ORDER BY died_at DESC, id DESC
		 LIMIT $2`,
		nullableID(victim), limit)
	if err != nil {
		return nil, oops.Code("DEATH_LOG_QUERY_FAILED").With("operation", "list deaths").Wrap(err)
	}
	defer rows.Close()

	var out []death.Record
	for rows.Next() {
		var (
			rec                       death.Record
			victimID                  string
			killerID, roomID          *string
			victimKind, killerKind, c int16
		)
		if err := rows.Scan(&victimID, &rec.VictimName, &victimKind, &rec.Level, &killerID, &rec.KillerName,
			&killerKind, &c, &roomID, &rec.ExperienceLost, &rec.ExperienceAwarded, &rec.At); err != nil {
			return nil, oops.Code("DEATH_LOG_QUERY_FAILED").With("operation", "scan death row").Wrap(err)
		}
		if rec.Victim, err = ulid.Parse(victimID); err != nil {
			return nil, oops.Code("DEATH_LOG_CORRUPT").With("victim_id", victimID).Wrap(err)
		}
		if rec.Killer, err = parseNullableID(killerID, "killer_id"); err != nil {
			return nil, oops.Code("DEATH_LOG_CORRUPT").Wrap(err)
		}
		if rec.Room, err = parseNullableID(roomID, "room_id"); err != nil {
			return nil, oops.Code("DEATH_LOG_CORRUPT").Wrap(err)
		}
		rec.VictimKind = world.Kind(victimKind)
		rec.KillerKind = death.KillerKind(killerKind)
		rec.Cause = game.Cause(c)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("DEATH_LOG_QUERY_FAILED").With("operation", "iterate deaths").Wrap(err)
	}
	return out, nil
}
