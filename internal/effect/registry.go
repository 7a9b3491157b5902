// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package effect attaches, ages and removes named status effects on
// creatures, rooms and exits.
//
// Every kind of effect is described by a catalog Definition and driven by a
// Strategy. A Registry ties the two together and owns the index of rooms
// whose effects need pulsing.
package effect

import (
	"slices"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/holomush/grimhold/internal/game"
	"github.com/holomush/grimhold/internal/message"
	"github.com/holomush/grimhold/internal/script"
	"github.com/holomush/grimhold/internal/threat"
	"github.com/holomush/grimhold/internal/world"
	"github.com/holomush/grimhold/pkg/errutil"
)

// Computed asks Add to keep the value the effect's compute hook chose.
const Computed = -2

// Removal reasons, used as metric labels.
const (
	reasonExpired    = "expired"
	reasonDispelled  = "dispelled"
	reasonReplaced   = "replaced"
	reasonPulse      = "pulse"
	reasonOpposite   = "opposite"
	reasonCured      = "cured"
	reasonUnequipped = "unequipped"
)

// Registry applies catalog effects to hosts.
type Registry struct {
	ctx        *game.Context
	catalog    *Catalog
	ledgers    *threat.Ledgers
	strategies map[string]Strategy
	scripts    *script.StateFactory
	hooks      map[string]hookSet

	// rooms lists the rooms that have room or exit effects, in the order
	// they were first indexed.
	rooms []ulid.ULID
}

// Option configures a Registry.
type Option func(*Registry)

// WithStrategy binds name to s, replacing any built-in strategy of that
// name.
func WithStrategy(name string, s Strategy) Option {
	return func(r *Registry) { r.strategies[name] = s }
}

// WithScriptFactory sets the Lua state factory used for hook scripts.
func WithScriptFactory(f *script.StateFactory) Option {
	return func(r *Registry) { r.scripts = f }
}

// NewRegistry creates a registry for catalog. ledgers may be nil, in which
// case poison and walls credit no one. Every definition's strategy must
// exist and every hook script must compile.
func NewRegistry(ctx *game.Context, catalog *Catalog, ledgers *threat.Ledgers, opts ...Option) (*Registry, error) {
	if catalog == nil {
		var err error
		if catalog, err = Default(); err != nil {
			return nil, err
		}
	}
	r := &Registry{
		ctx:        ctx,
		catalog:    catalog,
		ledgers:    ledgers,
		strategies: builtins(),
		hooks:      make(map[string]hookSet),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.scripts == nil {
		r.scripts = script.NewStateFactory()
	}

	for _, name := range catalog.Names() {
		def, _ := catalog.Lookup(name)
		if _, ok := r.strategies[def.Strategy]; !ok {
			return nil, oops.Code("CATALOG_INVALID").
				With("effect", def.Name).
				With("strategy", def.Strategy).
				Errorf("effect %q uses unknown strategy %q", def.Name, def.Strategy)
		}
		if def.Scripts.IsZero() {
			continue
		}
		hooks, err := compileHooks(r.scripts, def)
		if err != nil {
			return nil, err
		}
		r.hooks[def.Name] = hooks
	}
	return r, nil
}

// Catalog returns the registry's catalog.
func (r *Registry) Catalog() *Catalog { return r.catalog }

func (r *Registry) strategy(def *Definition) Strategy {
	s := r.strategies[def.Strategy]
	if s == nil {
		s = Base{}
	}
	if hooks, ok := r.hooks[def.Name]; ok {
		return scripted{inner: s, hooks: hooks, factory: r.scripts}
	}
	return s
}

func (r *Registry) call(host world.Host, e *world.Effect, def *Definition, a Applier) *Call {
	return &Call{Ctx: r.ctx, Host: host, Effect: e, Def: def, Applier: a, reg: r}
}

// applierOf resolves an effect's stored applier handle.
func (r *Registry) applierOf(e *world.Effect) Applier {
	if !e.HasApplier() {
		return Applier{}
	}
	if c, ok := r.ctx.World.Creature(e.Applier); ok {
		return Applier{Creature: c, Keep: true}
	}
	if o, ok := r.ctx.World.Object(e.Applier); ok {
		return Applier{Object: o, Keep: true}
	}
	return Applier{}
}

// Add creates the named effect on host. duration and strength may be
// Computed to keep what the compute hook chose. It returns the new effect,
// or nil when the name is unknown, the compute hook vetoed it, or an
// existing effect could not be overwritten.
func (r *Registry) Add(host world.Host, name string, duration int64, strength int, applier Applier, announce bool, owner ulid.ULID) *world.Effect {
	def, ok := r.catalog.Lookup(name)
	if !ok {
		errutil.LogError(r.ctx.Log, "effect not added", oops.Code("EFFECT_UNKNOWN").
			With("effect", name).
			With("host", host.HostName()).
			Errorf("unknown effect %q", name))
		effectsRejected.WithLabelValues("unknown").Inc()
		return nil
	}

	now := r.ctx.Now()
	e := &world.Effect{
		Name:      def.Name,
		Bases:     slices.Clone(def.Bases),
		Duration:  duration,
		LastMod:   now,
		LastPulse: now,
		Applier:   applier.ID(),
		Owner:     owner,
	}
	if strength != Computed {
		e.Strength = strength
	}

	if !r.strategy(def).Compute(r.call(host, e, def, applier)) {
		effectsRejected.WithLabelValues("vetoed").Inc()
		return nil
	}
	if duration != Computed {
		e.Duration = duration
	}
	if strength != Computed {
		e.Strength = strength
	}
	if e.Duration < world.Permanent {
		e.Duration = r.ctx.Settings.UnknownEffectDuration
	}

	if !r.Insert(host, e, announce, applier) {
		return nil
	}
	return e
}

// AddPermanent adds a permanent effect.
func (r *Registry) AddPermanent(host world.Host, name string, strength int, applier Applier, announce bool) *world.Effect {
	return r.Add(host, name, world.Permanent, strength, applier, announce, world.NoID)
}

// WillOverwrite reports whether next may replace prev.
func WillOverwrite(next, prev *world.Effect) bool {
	switch {
	case prev.HasApplier():
		return false
	case next.IsPermanent() && !prev.IsPermanent():
		return true
	case next.Strength < prev.Strength:
		return false
	case prev.IsPermanent() && !next.IsPermanent():
		return false
	}
	return true
}

// Insert places an already computed effect on host, replacing any effect of
// the same name that it may overwrite. It reports whether e was inserted.
func (r *Registry) Insert(host world.Host, e *world.Effect, announce bool, applier Applier) bool {
	def, ok := r.catalog.Lookup(e.Name)
	if !ok {
		return false
	}
	list := host.EffectList()
	old := list.Get(e.Name)
	if old != nil && !WillOverwrite(e, old) {
		if cr, ok := host.(*world.Creature); ok && announce {
			r.ctx.Msg.Print(cr, "The effect didn't take hold.")
		}
		effectsRejected.WithLabelValues("overwrite").Inc()
		return false
	}

	s := r.strategy(def)
	call := r.call(host, e, def, applier)
	s.PreApply(call)
	if old != nil {
		r.remove(host, old, false, reasonReplaced, false)
	}
	if old == nil && announce {
		r.announce(host, def.Messages.SelfAdd, def.Messages.RoomAdd, applier.Creature)
	}
	s.Apply(call)
	list.Insert(e)
	r.index(host)
	s.PostApply(call)
	if !applier.Keep {
		e.Applier = world.NoID
	}
	effectsAdded.WithLabelValues(e.Name).Inc()
	return true
}

// Remove removes the named effect from host. Permanent effects are only
// removed when allowPermanent is set; a non-zero fromApplier restricts
// removal to effects that applier holds.
func (r *Registry) Remove(host world.Host, name string, announce, allowPermanent bool, fromApplier ulid.ULID) bool {
	e := host.EffectList().Get(name)
	if e == nil {
		return false
	}
	if e.IsPermanent() && !allowPermanent {
		return false
	}
	if !fromApplier.IsZero() && e.Applier != fromApplier {
		return false
	}
	return r.remove(host, e, announce, reasonDispelled, true)
}

// RemoveEffect removes e from host unconditionally. A worn item holding
// the effect breaks and is unequipped.
func (r *Registry) RemoveEffect(host world.Host, e *world.Effect, announce bool) bool {
	return r.remove(host, e, announce, reasonDispelled, true)
}

func (r *Registry) remove(host world.Host, e *world.Effect, announce bool, reason string, breakApplier bool) bool {
	list := host.EffectList()
	if !list.Contains(e) {
		return false
	}
	def, ok := r.catalog.Lookup(e.Name)
	if !ok {
		list.Remove(e)
		return true
	}
	applier := r.applierOf(e)
	if announce {
		r.announce(host, def.Messages.SelfDel, def.Messages.RoomDel, applier.Creature)
	}
	r.strategy(def).UnApply(r.call(host, e, def, applier))
	list.Remove(e)
	effectsRemoved.WithLabelValues(reason).Inc()

	if breakApplier && applier.Object != nil {
		if cr, ok := host.(*world.Creature); ok {
			r.breakWorn(cr, applier.Object)
		}
	}
	return true
}

// breakWorn destroys the item that was holding an effect on c.
func (r *Registry) breakWorn(c *world.Creature, o *world.Object) {
	loc, worn := r.ctx.World.SlotOf(c, o)
	if !worn {
		return
	}
	o.Shots = 0
	o.Broken = true
	r.ctx.World.Unequip(c, loc)
	c.Inventory = append(c.Inventory, o.ID)
	r.ctx.Msg.Print(c, "Your %s fell apart.", o.Name)
}

// RemoveOpposite removes the opposite of def from host, if present and not
// permanent.
func (r *Registry) RemoveOpposite(host world.Host, def *Definition) bool {
	if def.Opposite == "" {
		return false
	}
	e := host.EffectList().Get(def.Opposite)
	if e == nil || e.IsPermanent() {
		return false
	}
	return r.remove(host, e, true, reasonOpposite, true)
}

// RemoveAll removes every non-permanent effect that is base or counts as
// it, and returns how many went.
func (r *Registry) RemoveAll(host world.Host, base string, announce bool) int {
	n := 0
	for _, e := range host.EffectList().All() {
		if e.Matches(base) && !e.IsPermanent() && r.remove(host, e, announce, reasonCured, true) {
			n++
		}
	}
	return n
}

// CurePoison removes every poison.
func (r *Registry) CurePoison(host world.Host) bool { return r.RemoveAll(host, "poison", true) > 0 }

// CureDisease removes every disease.
func (r *Registry) CureDisease(host world.Host) bool { return r.RemoveAll(host, "disease", true) > 0 }

// RemoveCurse removes every curse.
func (r *Registry) RemoveCurse(host world.Host) bool { return r.RemoveAll(host, "curse", true) > 0 }

// IsPoisoned reports whether host carries any poison.
func IsPoisoned(host world.Host) bool { return host.EffectList().IsEffected("poison") }

// IsDiseased reports whether host carries any disease.
func IsDiseased(host world.Host) bool { return host.EffectList().IsEffected("disease") }

// IsCursed reports whether host carries any curse.
func IsCursed(host world.Host) bool { return host.EffectList().IsEffected("curse") }

// ClearOwner forgets owner on every effect of host, so damage those effects
// deal is no longer credited to anyone.
func (r *Registry) ClearOwner(host world.Host, owner ulid.ULID) int {
	n := 0
	for _, e := range host.EffectList().All() {
		if e.Owner == owner {
			e.Owner = world.NoID
			n++
		}
	}
	return n
}

// Dispel removes every effect whose name matches a glob pattern and
// returns the names removed.
func (r *Registry) Dispel(host world.Host, pattern string, allowPermanent bool) ([]string, error) {
	names, err := r.catalog.Match(pattern)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, name := range names {
		if r.Remove(host, name, true, allowPermanent, world.NoID) {
			out = append(out, name)
		}
	}
	return out, nil
}

// Copy gives to a copy of every effect on from. Copies carry no applier
// and go through the normal overwrite rules.
func (r *Registry) Copy(from, to world.Host) int {
	n := 0
	for _, e := range from.EffectList().All() {
		dup := *e
		dup.Bases = slices.Clone(e.Bases)
		dup.Applier = world.NoID
		if r.Insert(to, &dup, false, Applier{}) {
			n++
		}
	}
	return n
}

// EquipEffect grants the effect o carries to the creature wearing it. The
// item stays as the effect's applier until it is removed.
func (r *Registry) EquipEffect(c *world.Creature, o *world.Object) *world.Effect {
	if o.Effect == "" {
		return nil
	}
	def, ok := r.catalog.Lookup(o.Effect)
	if ok && def.NoObject {
		r.ctx.Log.Warn("item effect refused", "effect", o.Effect, "object", o.Name)
		effectsRejected.WithLabelValues("no_object").Inc()
		return nil
	}
	duration := o.EffectDuration
	if duration == 0 {
		duration = world.Permanent
	}
	return r.Add(c, o.Effect, duration, o.EffectStrength, ByObject(o, true), true, world.NoID)
}

// UnequipEffect removes the effect o granted to c without harming o.
func (r *Registry) UnequipEffect(c *world.Creature, o *world.Object) bool {
	if o.Effect == "" {
		return false
	}
	e := c.Effects.Get(o.Effect)
	if e == nil || e.Applier != o.ID {
		return false
	}
	return r.remove(c, e, true, reasonUnequipped, false)
}

// index records that host's room has room or exit effects.
func (r *Registry) index(host world.Host) {
	var id ulid.ULID
	switch h := host.(type) {
	case *world.Room:
		id = h.ID
	case *world.Exit:
		id = h.Room
	default:
		return
	}
	if !slices.Contains(r.rooms, id) {
		r.rooms = append(r.rooms, id)
	}
}

// IndexedRooms returns the rooms currently indexed for pulsing.
func (r *Registry) IndexedRooms() []ulid.ULID { return slices.Clone(r.rooms) }

// announce prints an effect's self line to a creature host and its room
// line to whoever else is present.
func (r *Registry) announce(host world.Host, self, room string, applier *world.Creature) {
	if cr, ok := host.(*world.Creature); ok {
		r.ctx.Msg.Act(cr, self, message.Parties{Actor: cr, Applier: applier})
	}
	r.echo(host, room, applier)
}

// echo sends a room line about host. For rooms and exits the actor tokens
// name the room or exit itself.
func (r *Registry) echo(host world.Host, template string, applier *world.Creature) {
	if template == "" {
		return
	}
	switch h := host.(type) {
	case *world.Creature:
		r.ctx.Msg.ActRoom(h, template, message.Parties{Actor: h, Applier: applier})
	case *world.Room:
		r.ctx.Msg.Room(h.ID, nil, "%s", placeText(template, h.Name, applier))
	case *world.Exit:
		r.ctx.Msg.Room(h.Room, nil, "%s", placeText(template, h.Name, applier))
	}
}

func placeText(template, name string, applier *world.Creature) string {
	text := strings.NewReplacer(
		"*LOW-ACTOR*", name,
		"*ACTOR*", message.Capitalize(name),
	).Replace(template)
	return message.Act(text, message.Parties{Applier: applier})
}
