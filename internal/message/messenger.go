// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package message

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/holomush/grimhold/internal/world"
)

// Messenger turns simulation output into events. Only players have
// sessions, so text addressed to a monster is discarded.
type Messenger struct {
	arena *world.Arena
	sink  Sink
	now   func() time.Time
}

// NewMessenger creates a Messenger. now defaults to time.Now.
func NewMessenger(arena *world.Arena, sink Sink, now func() time.Time) *Messenger {
	if now == nil {
		now = time.Now
	}
	return &Messenger{arena: arena, sink: sink, now: now}
}

func sprintf(format string, args []any) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

func (m *Messenger) publish(stream string, kind Kind, actor ulid.ULID, text string) {
	if m.sink == nil {
		return
	}
	m.sink.Publish(Event{
		ID:        world.NewID(),
		Stream:    stream,
		Kind:      kind,
		Timestamp: m.now(),
		Actor:     actor,
		Text:      text,
	})
}

// Print sends text to c.
func (m *Messenger) Print(c *world.Creature, format string, args ...any) {
	if c == nil || !c.IsPlayer() {
		return
	}
	m.publish(CreatureStream(c.ID), KindText, ulid.ULID{}, sprintf(format, args))
}

// Room sends text to every player in a room except those excluded, and to
// the room's observer stream.
func (m *Messenger) Room(roomID ulid.ULID, exclude []ulid.ULID, format string, args ...any) {
	text := sprintf(format, args)
	for _, c := range m.arena.Occupants(roomID) {
		if !c.IsPlayer() || slices.Contains(exclude, c.ID) {
			continue
		}
		m.publish(CreatureStream(c.ID), KindRoom, ulid.ULID{}, text)
	}
	m.publish(RoomStream(roomID), KindRoom, ulid.ULID{}, text)
}

// Act substitutes party tokens in template and sends the result to c.
func (m *Messenger) Act(c *world.Creature, template string, p Parties) {
	if template == "" {
		return
	}
	m.Print(c, "%s", Act(template, p))
}

// ActRoom substitutes party tokens and sends the result to c's room,
// excluding c.
func (m *Messenger) ActRoom(c *world.Creature, template string, p Parties) {
	if template == "" || c == nil {
		return
	}
	m.Room(c.Room, []ulid.ULID{c.ID}, "%s", Act(template, p))
}

// Pager collects lines for c and delivers them as one paged block.
func (m *Messenger) Pager(c *world.Creature) *Pager {
	return &Pager{m: m, to: c}
}

// Pager buffers long output.
type Pager struct {
	m     *Messenger
	to    *world.Creature
	lines []string
}

// Add appends a line.
func (p *Pager) Add(format string, args ...any) {
	p.lines = append(p.lines, sprintf(format, args))
}

// Len returns the number of buffered lines.
func (p *Pager) Len() int { return len(p.lines) }

// Flush delivers buffered lines and clears the buffer.
func (p *Pager) Flush() {
	if len(p.lines) == 0 || p.to == nil || !p.to.IsPlayer() {
		p.lines = nil
		return
	}
	p.m.publish(CreatureStream(p.to.ID), KindPaged, ulid.ULID{}, strings.Join(p.lines, "\n"))
	p.lines = nil
}
