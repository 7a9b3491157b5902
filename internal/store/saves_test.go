// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/grimhold/internal/world"
	"github.com/holomush/grimhold/pkg/errutil"
)

func TestPostgresSaveRepository_LoadSaves(t *testing.T) {
	id := world.NewID()
	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		want      world.SaveTable
		wantFound bool
		wantCode  string
	}{
		{
			name: "stored table",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows([]string{"category", "chance", "gained"}).
					AddRow("poison", 42, 2).
					AddRow("spell", 17, 0).
					AddRow("charisma", 99, 0)
				mock.ExpectQuery(`SELECT category, chance, gained FROM creature_saves`).
					WithArgs(id.String()).
					WillReturnRows(rows)
			},
			want: func() world.SaveTable {
				var t world.SaveTable
				t[world.SavePoison] = world.SaveEntry{Chance: 42, Gained: 2}
				t[world.SaveSpell] = world.SaveEntry{Chance: 17}
				return t
			}(),
			wantFound: true,
		},
		{
			name: "nothing stored",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT category, chance, gained FROM creature_saves`).
					WithArgs(id.String()).
					WillReturnRows(pgxmock.NewRows([]string{"category", "chance", "gained"}))
			},
		},
		{
			name: "database error",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT category, chance, gained FROM creature_saves`).
					WithArgs(id.String()).
					WillReturnError(errors.New("connection refused"))
			},
			wantCode: "SAVE_LOAD_FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()
			tt.setupMock(mock)

			got, found, err := NewPostgresSaveRepository(mock).LoadSaves(context.Background(), id)
			if tt.wantCode != "" {
				require.Error(t, err)
				errutil.AssertErrorCode(t, err, tt.wantCode)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
				assert.Equal(t, tt.wantFound, found)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresSaveRepository_StoreSaves(t *testing.T) {
	id := world.NewID()
	var table world.SaveTable
	for i := range table {
		table[i] = world.SaveEntry{Chance: 10 + i, Gained: i % 2}
	}

	t.Run("writes every category in one transaction", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin()
		for i, e := range table {
			mock.ExpectExec(`INSERT INTO creature_saves`).
				WithArgs(id.String(), world.SaveCategory(i).String(), e.Chance, e.Gained).
				WillReturnResult(pgxmock.NewResult("INSERT", 1))
		}
		mock.ExpectCommit()

		require.NoError(t, NewPostgresSaveRepository(mock).StoreSaves(context.Background(), id, table))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("constraint violation rolls back", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO creature_saves`).
			WithArgs(id.String(), "poison", table[0].Chance, table[0].Gained).
			WillReturnError(&pgconn.PgError{Code: pgerrcode.CheckViolation})
		mock.ExpectRollback()

		err = NewPostgresSaveRepository(mock).StoreSaves(context.Background(), id, table)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "CONSTRAINT_VIOLATION")
		errutil.AssertErrorContext(t, err, "category", "poison")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin fails", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin().WillReturnError(errors.New("pool closed"))

		err = NewPostgresSaveRepository(mock).StoreSaves(context.Background(), id, table)
		errutil.AssertErrorCode(t, err, "TX_BEGIN_FAILED")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
