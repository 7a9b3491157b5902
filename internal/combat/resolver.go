// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package combat resolves melee and spell exchanges: the attack roll, the
// damage a landing blow deals, what the defender's shields send back and
// who is left dead afterwards.
package combat

import (
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/holomush/grimhold/internal/effect"
	"github.com/holomush/grimhold/internal/game"
	"github.com/holomush/grimhold/internal/message"
	"github.com/holomush/grimhold/internal/save"
	"github.com/holomush/grimhold/internal/threat"
	"github.com/holomush/grimhold/internal/world"
)

const (
	cooldownRiposte = "riposte"
	cooldownSkill   = "skill"
)

// Reaper tears down the dead. Kill runs death handling for a victim whose
// HP has dropped below 1 and reports whether it did; Finalize removes what
// Kill left pending. Splitting the two lets an exchange in which both sides
// die report both deaths before either is removed.
type Reaper interface {
	Kill(victim, killer *world.Creature, cause game.Cause) bool
	Finalize(victim *world.Creature) bool
}

// Resolver runs combat exchanges.
type Resolver struct {
	ctx     *game.Context
	saves   *save.Engine
	effects *effect.Registry
	ledgers *threat.Ledgers
	reaper  Reaper
}

// New creates a Resolver.
func New(ctx *game.Context, saves *save.Engine, effects *effect.Registry, ledgers *threat.Ledgers, reaper Reaper) *Resolver {
	return &Resolver{ctx: ctx, saves: saves, effects: effects, ledgers: ledgers, reaper: reaper}
}

// Exchange is what one attack did.
type Exchange struct {
	Outcome Outcome
	Damage  Damage
	// Dealt is the HP the target actually lost.
	Dealt int
	// Riposte is the HP the attacker lost to a parry's counterattack.
	Riposte int
	Procs   []Proc
	// TargetDied and AttackerDied are settled after the whole exchange.
	TargetDied   bool
	AttackerDied bool
	Captured     bool
	// Wait is set when the attacker's timer had not run out.
	Wait time.Duration
	// Aborted is set when no attack was made at all.
	Aborted bool
}

func (r *Resolver) present(c *world.Creature) bool {
	return c != nil && !c.IsDead() && r.ctx.World.Exists(c.ID)
}

func (r *Resolver) msg() *message.Messenger { return r.ctx.Msg }

func ids(cs ...*world.Creature) []ulid.ULID {
	out := make([]ulid.ULID, 0, len(cs))
	for _, c := range cs {
		if c != nil {
			out = append(out, c.ID)
		}
	}
	return out
}

// Attack makes one melee attack. Deaths from either side, including an
// attacker killed by its target's shields, are settled once the exchange
// is over.
func (r *Resolver) Attack(attacker, target *world.Creature, kind AttackType) (x Exchange) {
	if !r.present(attacker) {
		return Exchange{Aborted: true}
	}
	if !r.present(target) || attacker.ID == target.ID || !r.ctx.World.SameRoom(attacker, target) {
		r.msg().Print(attacker, "You don't see that here.")
		return Exchange{Aborted: true}
	}
	if !r.CanAttack(attacker, target) {
		return Exchange{Aborted: true}
	}
	if wait := r.AttackWait(attacker); wait > 0 {
		r.PleaseWait(attacker, wait)
		return Exchange{Wait: wait}
	}
	r.UpdateAttackTimer(attacker)

	defer func() {
		x.TargetDied, x.AttackerDied = r.SimultaneousDeath(attacker, target)
	}()

	r.engage(attacker, target, kind == AttackNormal)

	weapon := r.weapon(attacker, kind)
	var flags Flags
	if attacker.IsMonster() {
		flags |= NoCritical | NoFumble
	}
	if kind == AttackKick {
		flags |= NoFumble
	}

	x.Outcome = r.ResolveAttack(attacker, target, weapon, flags)
	attacksTotal.WithLabelValues(x.Outcome.String()).Inc()
	r.ctx.Log.Debug("attack resolved",
		slog.String("attacker", attacker.ID.String()),
		slog.String("target", target.ID.String()),
		slog.String("kind", kind.String()),
		slog.String("outcome", x.Outcome.String()))

	switch {
	case x.Outcome.Lands():
		r.land(attacker, target, weapon, kind, &x)
	case x.Outcome == Fumble:
		r.fumble(attacker, weapon)
	case x.Outcome == Dodge:
		r.dodge(target, attacker)
	case x.Outcome == Parry:
		r.parry(target, attacker, &x)
	default:
		r.miss(attacker, target, weapon, kind)
	}
	r.wakeRoom(attacker.Room)
	return x
}

// MonsterRound lets monster m attack the top of its threat ledger. A pet's
// target is sometimes drawn to the player behind it.
func (r *Resolver) MonsterRound(m *world.Creature) Exchange {
	if !r.present(m) || !m.IsMonster() || m.Has(world.FlagUnconscious) || m.IsEffected("petrification") {
		return Exchange{Aborted: true}
	}
	target := r.ledgers.GetTarget(m, true)
	if target == nil {
		return Exchange{Aborted: true}
	}
	if target.IsPet() {
		if master, ok := r.ctx.World.Master(target); ok && r.present(master) && r.ctx.World.SameRoom(m, master) &&
			(r.ctx.Dice.Range(1, 100) < 20 || target.Intelligence.Cur() >= 150) {
			target = master
		}
	}
	if m.IsPet() && target.IsPlayer() {
		if room, ok := r.ctx.World.Room(m.Room); ok && room.Has(world.RoomSafe) {
			return Exchange{Aborted: true}
		}
	}
	return r.Attack(m, target, AttackNormal)
}

// CanAttack reports whether attacker may attack target at all, telling the
// attacker why not.
func (r *Resolver) CanAttack(attacker, target *world.Creature) bool {
	if target == nil {
		return false
	}
	w := r.ctx.World
	if attacker.IsMonster() {
		if !attacker.IsPet() {
			return true
		}
		master, ok := w.Master(attacker)
		if !ok {
			return true
		}
		if target.ID == master.ID {
			r.msg().Print(master, "Pets cannot attack their masters.")
			return false
		}
		return r.CanAttack(master, target)
	}

	if target.IsPet() && target.Master == attacker.ID && !attacker.IsStaff() {
		r.msg().Print(attacker, "You cannot attack your own pet.")
		return false
	}
	check := target
	if target.IsPet() {
		if master, ok := w.Master(target); ok {
			check = master
		}
	}
	if check.IsStaff() && !attacker.IsStaff() {
		r.msg().Print(attacker, "You are not allowed to attack %s.", target.Display())
		return false
	}
	if attacker.IsStaff() {
		return true
	}
	if !attacker.CanSee(target) {
		r.msg().Print(attacker, "You don't see that here.")
		return false
	}
	if check.IsPlayer() {
		if check.IsEffected("petrification") {
			r.msg().Print(attacker, "You can't attack %s! %s is petrified!", check.Display(), message.Capitalize(check.HeShe()))
			return false
		}
		if room, ok := w.Room(attacker.Room); ok && room.Has(world.RoomSafe) {
			r.msg().Print(attacker, "No killing allowed in this room.")
			return false
		}
	}
	return true
}

// engage puts the two sides on each other's ledgers.
func (r *Resolver) engage(attacker, target *world.Creature, announce bool) {
	switch {
	case attacker.IsPlayer() && target.IsMonster():
		if r.ledgers.AddEnemy(target, attacker, false) && announce {
			r.msg().Print(attacker, "You attack %s.", target.Display())
			r.msg().Room(attacker.Room, ids(attacker, target), "%s attacks %s.",
				message.Capitalize(attacker.Display()), target.Display())
		}
	case attacker.IsPlayer() && target.IsPlayer():
		if announce {
			r.msg().Print(target, "%s attacked you!", message.Capitalize(attacker.Display()))
			r.msg().Room(attacker.Room, ids(attacker, target), "%s attacked %s!",
				message.Capitalize(attacker.Display()), target.Display())
		}
	case attacker.IsMonster():
		r.ledgers.CheckTarget(target, attacker)
		if target.IsMonster() {
			r.ledgers.AddEnemy(target, attacker, false)
		}
	}
}

// weapon returns what attacker strikes with for kind: boots for a kick,
// otherwise the wielded weapon, and nil for bare hands.
func (r *Resolver) weapon(attacker *world.Creature, kind AttackType) *world.Object {
	loc := world.WearWield
	if kind == AttackKick {
		loc = world.WearFeet
	}
	o, ok := r.ctx.World.Equipped(attacker, loc)
	if !ok || o.Broken {
		return nil
	}
	return o
}

func verbs(kind AttackType) (you, they string) {
	switch kind {
	case AttackKick:
		return "kick", "kicks"
	case AttackBash:
		return "bash", "bashes"
	case AttackAmbush:
		return "ambush", "ambushes"
	default:
		return "hit", "hits"
	}
}

func (r *Resolver) land(attacker, target *world.Creature, weapon *world.Object, kind AttackType, x *Exchange) {
	d, shattered := r.computeDamage(attacker, target, weapon, kind, x.Outcome)
	d.IncludeBonus(1)
	x.Damage = d

	if x.Outcome == Block {
		r.msg().Print(attacker, "%s partially blocked your attack!", message.Capitalize(target.Display()))
		r.msg().Print(target, "You manage to partially block %s's attack!", attacker.Display())
	}
	you, they := verbs(kind)
	r.msg().Print(attacker, "You %s %s for %d damage.", you, target.Display(), d.Value)
	r.msg().Print(target, "%s %s you for %d damage!", message.Capitalize(attacker.Display()), they, d.Value)
	r.msg().Room(attacker.Room, ids(attacker, target), "%s %s %s.",
		message.Capitalize(attacker.Display()), they, target.Display())

	if target.IsPlayer() {
		r.DamageArmor(target)
	}
	if attacker.IsMonster() {
		x.Procs = append(x.Procs, r.monsterProcs(attacker, target)...)
	}
	r.reflect(d, attacker, target)
	if attacker.IsMonster() && r.tryToBlind(attacker, target, false, 0) {
		x.Procs = append(x.Procs, ProcBlind)
	}

	if attacker.IsPlayer() && weapon != nil {
		switch {
		case shattered:
			r.shatter(attacker, weapon)
		case kind != AttackKick && r.ctx.Dice.Range(0, 3) == 0 && weapon.DecShots():
			r.breakWeapon(attacker, weapon)
		}
	}

	if attacker.IsPlayer() && target.IsMonster() && kind != AttackKick {
		r.improve(attacker, &attacker.WeaponSkill, weaponName(weapon), true)
	}

	policy := CheckDie
	if target.IsPlayer() {
		policy = CheckDieOrCapture
	}
	applied := r.damage(attacker, target, d.Value, policy)
	x.Dealt = applied.Absorbed
	x.Captured = applied.Captured
}

func weaponName(w *world.Object) string {
	if w == nil || w.WeaponType == "" {
		return "bare-hand"
	}
	return w.WeaponType
}

func (r *Resolver) miss(attacker, target *world.Creature, weapon *world.Object, kind AttackType) {
	a := message.Capitalize(attacker.Display())
	switch kind {
	case AttackBash:
		r.msg().Print(attacker, "Your bash failed.")
		r.msg().Print(target, "%s tried to bash you.", a)
		r.msg().Room(attacker.Room, ids(attacker, target), "%s tried to bash %s.", a, target.Display())
	case AttackKick:
		r.msg().Print(attacker, "Your kick was ineffective.")
		r.msg().Print(target, "%s tried to kick you.", a)
		r.msg().Room(attacker.Room, ids(attacker, target), "%s tried to kick %s.", a, target.Display())
	case AttackAmbush:
		r.msg().Print(attacker, "Your ambush failed!")
		r.msg().Room(attacker.Room, ids(attacker), "%s's ambush was detected.", a)
		attacker.StartCooldown(world.CooldownAttack, r.ctx.Now(), 2*r.ctx.Settings.AttackInterval)
	default:
		r.msg().Print(attacker, "You missed.")
		r.msg().Print(target, "%s missed you.", a)
	}
	if !attacker.IsPet() {
		r.improve(target, &target.DefenseSkill, "defense", true)
	}
	if attacker.IsPlayer() && target.IsMonster() && kind != AttackKick {
		r.improve(attacker, &attacker.WeaponSkill, weaponName(weapon), false)
	}
}

func (r *Resolver) dodge(defender, attacker *world.Creature) {
	if !attacker.IsPet() {
		r.improve(defender, &defender.DefenseSkill, "defense", true)
	}
	defender.Clear(world.FlagHidden)
	d := message.Capitalize(defender.Display())
	room := ids(attacker, defender)
	switch r.ctx.Dice.Range(1, 3) {
	case 1:
		r.msg().Print(defender, "You barely manage to dodge %s's attack.", attacker.Display())
		r.msg().Print(attacker, "%s somehow manages to dodge your attack.", d)
		r.msg().Room(defender.Room, room, "%s barely dodges %s's attack.", d, attacker.Display())
	case 2:
		r.msg().Print(defender, "You deftly dodge %s's attack.", attacker.Display())
		r.msg().Print(attacker, "%s deftly dodges your attack.", d)
		r.msg().Room(defender.Room, room, "%s deftly dodges %s's attack.", d, attacker.Display())
	default:
		r.msg().Print(defender, "You dodge %s's attack.", attacker.Display())
		r.msg().Print(attacker, "%s dodges your attack.", d)
		r.msg().Room(defender.Room, room, "%s dodges %s's attack.", d, attacker.Display())
	}
}

// riposteFlags leave a counterattack only a hit or a plain miss.
const riposteFlags = DoubleMiss | NoDodge | NoParry | NoBlock | NoCritical | NoFumble | NoGlancing

func (r *Resolver) parry(defender, attacker *world.Creature, x *Exchange) {
	if !attacker.IsPet() {
		r.improve(defender, &defender.DefenseSkill, "defense", true)
	}
	if defender.IsPlayer() {
		interval := 6 * time.Second
		switch defender.Class {
		case "thief", "assassin", "fighter":
			interval = 9 * time.Second
		}
		defender.StartCooldown(cooldownRiposte, r.ctx.Now(), interval)
	} else {
		defender.Clear(world.FlagHidden)
	}

	weapon := r.weapon(defender, AttackNormal)
	result := Miss
	if (defender.IsPlayer() && weapon != nil) || (defender.IsMonster() && defender.Level >= 15) {
		result = r.ResolveAttack(defender, attacker, weapon, riposteFlags)
	}

	d := message.Capitalize(defender.Display())
	room := ids(attacker, defender)
	if !result.Lands() {
		r.msg().Print(defender, "You parry %s's attack.", attacker.Display())
		r.msg().Print(attacker, "%s parries your attack.", d)
		r.msg().Room(defender.Room, room, "%s parries %s's attack.", d, attacker.Display())
		return
	}

	dmg, _ := r.computeDamage(defender, attacker, weapon, AttackNormal, result)
	dmg.IncludeBonus(1)
	if defender.IsMonster() {
		dmg.Value = max(1, dmg.Value/2)
	}
	r.msg().Print(defender, "You side-step %s's attack and strike back for %d damage.", attacker.Display(), dmg.Value)
	r.msg().Print(attacker, "%s side-steps your attack and strikes you for %d damage.", d, dmg.Value)
	r.msg().Room(defender.Room, room, "%s side-steps %s's attack and strikes back.", d, attacker.Display())
	x.Riposte = r.damage(defender, attacker, dmg.Value, CheckDie).Absorbed
}

func (r *Resolver) fumble(attacker *world.Creature, weapon *world.Object) {
	r.msg().Print(attacker, "You FUMBLED your weapon.")
	r.msg().Room(attacker.Room, ids(attacker), "%s fumbled %s weapon.",
		message.Capitalize(attacker.Display()), attacker.HisHer())
	if weapon != nil {
		r.toInventory(attacker, weapon)
	}
}

// toInventory takes o off c and puts it in c's inventory.
func (r *Resolver) toInventory(c *world.Creature, o *world.Object) {
	loc, ok := r.ctx.World.SlotOf(c, o)
	if !ok {
		return
	}
	r.effects.UnequipEffect(c, o)
	r.ctx.World.Unequip(c, loc)
	c.Inventory = append(c.Inventory, o.ID)
}

// wakeRoom rouses sleepers from the noise of a fight.
func (r *Resolver) wakeRoom(roomID ulid.ULID) {
	for _, c := range r.ctx.World.Occupants(roomID) {
		if c.Has(world.FlagSleeping) {
			c.Clear(world.FlagSleeping)
			r.msg().Print(c, "Loud noises disturb your sleep.")
		}
	}
}

// Spell is an offensive spell's payload.
type Spell struct {
	Name   string
	Amount int
	Kind   Kind
	Realm  Realm
}

// SpellAttack hits target with offensive magic from caster. Spell saves,
// realm resistances and resist-magic reduce it; reflect-magic can send part
// of it back and kill the caster in the same exchange. Negative energy
// drains life to the caster.
func (r *Resolver) SpellAttack(caster, target *world.Creature, sp Spell) (x Exchange) {
	if !r.present(caster) {
		return Exchange{Aborted: true}
	}
	if !r.present(target) || !r.ctx.World.SameRoom(caster, target) {
		r.msg().Print(caster, "You don't see that here.")
		return Exchange{Aborted: true}
	}
	if caster.ID != target.ID && !r.CanAttack(caster, target) {
		return Exchange{Aborted: true}
	}
	defer func() {
		x.TargetDied, x.AttackerDied = r.SimultaneousDeath(caster, target)
	}()
	if caster.ID != target.ID {
		r.engage(caster, target, false)
	}

	kind := sp.Kind
	if kind == Physical {
		kind = Magical
	}
	d := Damage{Value: sp.Amount, Kind: kind, Realm: sp.Realm}
	r.modifyDamage(target, caster, &d, false)
	x.Outcome = Hit
	x.Damage = d

	name := sp.Name
	if name == "" {
		name = "spell"
	}
	r.msg().Print(caster, "Your %s hits %s for %d damage.", name, target.Display(), d.Value)
	r.msg().Print(target, "%s's %s hits you for %d damage!", message.Capitalize(caster.Display()), name, d.Value)
	r.msg().Room(caster.Room, ids(caster, target), "%s cast %s on %s.",
		message.Capitalize(caster.Display()), name, target.Display())

	if caster.ID != target.ID {
		r.reflect(d, caster, target)
	}
	if d.Drain > 0 && caster.HP.Cur() > 0 {
		gained := caster.HP.Increase(d.Drain)
		r.msg().Print(caster, "You drain %d hit points from %s.", gained, target.Display())
	}
	applied := r.damage(caster, target, d.Value, CheckDie)
	x.Dealt = applied.Absorbed
	return x
}
