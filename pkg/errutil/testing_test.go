// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package errutil_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"

	"github.com/holomush/grimhold/pkg/errutil"
)

// recordingT captures failures instead of failing the test.
type recordingT struct {
	errors []string
	failed bool
}

func (r *recordingT) Errorf(format string, args ...any) {
	r.errors = append(r.errors, fmt.Sprintf(format, args...))
}

func (r *recordingT) FailNow() {
	r.failed = true
	panic(r)
}

func (r *recordingT) Helper() {}

// run calls fn and reports whether it recorded any failure.
func run(fn func(t errutil.TestingT)) (rec *recordingT) {
	rec = &recordingT{}
	defer func() {
		if p := recover(); p != nil && p != rec {
			panic(p)
		}
	}()
	fn(rec)
	return rec
}

func (r *recordingT) ok() bool { return !r.failed && len(r.errors) == 0 }

func TestAssertErrorCode(t *testing.T) {
	coded := oops.Code("SAVE_TABLE_MISSING").Errorf("no saves")

	tests := []struct {
		name   string
		err    error
		code   string
		wantOK bool
	}{
		{"matching code", coded, "SAVE_TABLE_MISSING", true},
		{"wrapped keeps innermost", oops.With("creature", "aldo").Wrap(coded), "SAVE_TABLE_MISSING", true},
		{"different code", coded, "DB_UNAVAILABLE", false},
		{"plain error", errors.New("boom"), "SAVE_TABLE_MISSING", false},
		{"nil error", nil, "SAVE_TABLE_MISSING", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := run(func(rt errutil.TestingT) { errutil.AssertErrorCode(rt, tt.err, tt.code) })
			assert.Equal(t, tt.wantOK, rec.ok(), "recorded: %v", rec.errors)
		})
	}
}

func TestAssertErrorContext(t *testing.T) {
	err := oops.With("effect", "poison").With("strength", 12).Errorf("not applied")

	assert.True(t, run(func(rt errutil.TestingT) { errutil.AssertErrorContext(rt, err, "effect", "poison") }).ok())
	assert.True(t, run(func(rt errutil.TestingT) { errutil.AssertErrorContext(rt, err, "strength", 12) }).ok())
	assert.False(t, run(func(rt errutil.TestingT) { errutil.AssertErrorContext(rt, err, "effect", "disease") }).ok())
	assert.False(t, run(func(rt errutil.TestingT) { errutil.AssertErrorContext(rt, err, "host", "aldo") }).ok())
}
