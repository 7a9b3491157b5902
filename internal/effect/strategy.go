// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package effect

import (
	"github.com/oklog/ulid/v2"

	"github.com/holomush/grimhold/internal/game"
	"github.com/holomush/grimhold/internal/world"
)

// Applier is whatever caused an effect: a creature's spell or an item.
// At most one field is set.
type Applier struct {
	Creature *world.Creature
	Object   *world.Object
	// Keep retains the applier on the effect after it is added, locking the
	// effect against overwrite and removal. Only worn items should keep
	// their applier.
	Keep bool
}

// ByCreature returns an applier for c.
func ByCreature(c *world.Creature) Applier { return Applier{Creature: c} }

// ByObject returns an applier for an item. A worn item keeps its lock.
func ByObject(o *world.Object, worn bool) Applier { return Applier{Object: o, Keep: worn} }

// ID returns the applier's handle, or the zero handle.
func (a Applier) ID() ulid.ULID {
	switch {
	case a.Creature != nil:
		return a.Creature.ID
	case a.Object != nil:
		return a.Object.ID
	}
	return world.NoID
}

// IsZero reports whether nothing applied the effect.
func (a Applier) IsZero() bool { return a.Creature == nil && a.Object == nil }

// Call is the argument to every hook.
type Call struct {
	Ctx     *game.Context
	Host    world.Host
	Effect  *world.Effect
	Def     *Definition
	Applier Applier

	reg    *Registry
	cause  game.Cause
	harmed bool
}

// Creature returns the host as a creature, or nil for rooms and exits.
func (c *Call) Creature() *world.Creature {
	cr, _ := c.Host.(*world.Creature)
	return cr
}

// Registry returns the registry running the hook.
func (c *Call) Registry() *Registry { return c.reg }

// Harm records that the hook damaged the host. If the host's HP ends the
// pulse below 1, cause is recorded as the reason it died.
func (c *Call) Harm(cause game.Cause) {
	c.cause = cause
	c.harmed = true
}

// Strategy is the behavior bound to an effect kind. Every hook returns
// whether it succeeded; a failed Compute vetoes the effect and a failed
// Pulse ends it. Hooks must not block.
type Strategy interface {
	Compute(c *Call) bool
	PreApply(c *Call) bool
	Apply(c *Call) bool
	PostApply(c *Call) bool
	Pulse(c *Call) bool
	UnApply(c *Call) bool
}

// Base succeeds at every hook without doing anything. Embed it to
// implement only the hooks that matter.
type Base struct{}

// Compute implements Strategy.
func (Base) Compute(*Call) bool { return true }

// PreApply implements Strategy.
func (Base) PreApply(*Call) bool { return true }

// Apply implements Strategy.
func (Base) Apply(*Call) bool { return true }

// PostApply implements Strategy.
func (Base) PostApply(*Call) bool { return true }

// Pulse implements Strategy.
func (Base) Pulse(*Call) bool { return true }

// UnApply implements Strategy.
func (Base) UnApply(*Call) bool { return true }

var _ Strategy = Base{}
