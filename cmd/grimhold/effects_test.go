// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/grimhold/internal/effect"
	"github.com/holomush/grimhold/pkg/errutil"
)

func writeCatalog(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "effects.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestListEffects(t *testing.T) {
	catalog, err := effect.Default()
	require.NoError(t, err)

	t.Run("filters by pattern", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, listEffects(&buf, catalog, "wall-of-*"))

		out := buf.String()
		assert.Contains(t, out, "NAME")
		assert.Contains(t, out, "wall-of-fire")
		assert.Contains(t, out, "wall-of-thorns")
		assert.NotContains(t, out, "poison")
	})

	t.Run("reports no match", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, listEffects(&buf, catalog, "zzz*"))
		assert.Contains(t, buf.String(), `No effects match "zzz*"`)
	})

	t.Run("through the command", func(t *testing.T) {
		out, _, err := execute(t, "effects", "list", "poison")
		require.NoError(t, err)
		assert.Contains(t, out, "poison")
		assert.Contains(t, out, "negative")
	})
}

func TestShowEffect(t *testing.T) {
	catalog, err := effect.Default()
	require.NoError(t, err)

	t.Run("known effect", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, showEffect(&buf, catalog, "Berserk"))

		out := buf.String()
		assert.Contains(t, out, "Berserk (berserk)")
		assert.Contains(t, out, "strategy: stat-mod")
		assert.Contains(t, out, "stat:     strength")
	})

	t.Run("unknown effect", func(t *testing.T) {
		var buf bytes.Buffer
		err := showEffect(&buf, catalog, "gills")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "EFFECT_UNKNOWN")
	})
}

func TestEffectsValidate(t *testing.T) {
	good := writeCatalog(t, `version: 1.0.0
effects:
  - name: glow
    display: Glow
    type: positive
`)
	unknownStrategy := writeCatalog(t, `version: 1.0.0
effects:
  - name: glow
    display: Glow
    type: positive
    strategy: no-such-strategy
`)

	t.Run("valid catalog", func(t *testing.T) {
		out, _, err := execute(t, "effects", "validate", good)
		require.NoError(t, err)
		assert.Contains(t, out, good+": ok")
	})

	t.Run("unknown strategy fails", func(t *testing.T) {
		require.Error(t, validateCatalog(unknownStrategy))

		_, errOut, err := execute(t, "effects", "validate", good, unknownStrategy)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "CATALOG_INVALID")
		assert.Contains(t, errOut, unknownStrategy)
	})

	t.Run("built-in catalog passes", func(t *testing.T) {
		require.NoError(t, validateCatalog(filepath.Join("..", "..", "internal", "effect", "effects.yaml")))
	})
}

func TestEffectsSchema(t *testing.T) {
	t.Run("stdout", func(t *testing.T) {
		out, _, err := execute(t, "effects", "schema")
		require.NoError(t, err)

		var doc map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &doc))
		assert.NotEmpty(t, doc)
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "schemas", "effects.schema.json")
		_, _, err := execute(t, "effects", "schema", "-o", path)
		require.NoError(t, err)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, json.Valid(data))
	})
}
