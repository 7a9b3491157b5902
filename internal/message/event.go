// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package message formats and delivers text produced by the simulation.
package message

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Kind identifies how an event should be presented.
type Kind string

// Event kinds.
const (
	KindText  Kind = "text"
	KindRoom  Kind = "room"
	KindPaged Kind = "paged"
	KindAudit Kind = "audit"
)

// Event is one piece of output bound for a stream.
type Event struct {
	ID        ulid.ULID
	Stream    string
	Kind      Kind
	Timestamp time.Time
	// Actor caused the event; zero for the environment.
	Actor ulid.ULID
	Text  string
}

// CreatureStream names the stream a creature's session reads.
func CreatureStream(id ulid.ULID) string { return "char:" + id.String() }

// RoomStream names the stream room observers read.
func RoomStream(id ulid.ULID) string { return "room:" + id.String() }

// Sink accepts events for delivery.
type Sink interface {
	Publish(Event)
}
