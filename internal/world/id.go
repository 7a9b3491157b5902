// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package world contains the simulation's entity model: creatures, rooms,
// exits, objects and groups, all addressed by ULID handles through an Arena.
//
// Handles are weak references. Code holding a handle must resolve it through
// the Arena on every use and treat a failed lookup as "absent".
package world

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

var (
	entropy     = ulid.Monotonic(rand.Reader, 0)
	entropyLock sync.Mutex
)

// NoID is the zero handle. It never resolves.
var NoID ulid.ULID

// NewID generates a new entity handle.
func NewID() ulid.ULID {
	entropyLock.Lock()
	defer entropyLock.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy)
}

// ParseID parses a handle from its string form.
func ParseID(s string) (ulid.ULID, error) {
	id, err := ulid.Parse(s)
	if err != nil {
		return ulid.ULID{}, oops.Code("INVALID_ID").With("id", s).Wrap(err)
	}
	return id, nil
}

// CodeLifecycleCorruption marks a double registration or double teardown.
const CodeLifecycleCorruption = "LIFECYCLE_CORRUPTION"

// lifecycleViolation panics. Registering an entity twice or tearing one down
// twice means the bookkeeping is already inconsistent; continuing would
// corrupt it further.
func lifecycleViolation(op string, id ulid.ULID) {
	panic(oops.Code(CodeLifecycleCorruption).
		With("operation", op).
		With("id", id.String()).
		Errorf("lifecycle corruption: %s %s", op, id))
}
