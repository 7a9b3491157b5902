// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package errutil_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/grimhold/pkg/errutil"
)

func TestLogError_WithOopsError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	err := oops.Code("SAVE_LOAD_FAILED").
		With("creature_id", "01J0").
		Errorf("query failed")

	errutil.LogError(logger, "load saves", err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "load saves", entry["msg"])
	assert.Equal(t, "SAVE_LOAD_FAILED", entry["code"])
	assert.Equal(t, map[string]any{"creature_id": "01J0"}, entry["context"])
}

func TestLogError_WithStandardError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	errutil.LogError(logger, "operation failed", errors.New("standard error"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Contains(t, entry["error"], "standard error")
	assert.NotContains(t, entry, "code")
}

func TestLog_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	errutil.Log(context.Background(), logger, slog.LevelInfo, "quiet", errors.New("x"))
	assert.Zero(t, buf.Len())

	errutil.Log(context.Background(), logger, slog.LevelWarn, "record dropped", oops.Code("JOURNAL_FULL").Errorf("full"))
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "JOURNAL_FULL", entry["code"])
}

func TestCode(t *testing.T) {
	inner := oops.Code("CATALOG_INVALID").Errorf("bad catalog")
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"standard", errors.New("x"), ""},
		{"uncoded oops", oops.Errorf("x"), ""},
		{"coded", inner, "CATALOG_INVALID"},
		{"wrapped keeps innermost", oops.Code("ENGINE_INIT_FAILED").Wrap(inner), "CATALOG_INVALID"},
		{"uncoded wrapper", oops.With("operation", "load").Wrap(inner), "CATALOG_INVALID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errutil.Code(tt.err))
		})
	}
	assert.True(t, errutil.HasCode(inner, "CATALOG_INVALID"))
	assert.False(t, errutil.HasCode(nil, ""))
}
