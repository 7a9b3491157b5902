// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package combat

import (
	"log/slog"
	"time"

	"github.com/holomush/grimhold/internal/game"
	"github.com/holomush/grimhold/internal/message"
	"github.com/holomush/grimhold/internal/world"
)

// unconsciousFor is how long a captured player stays knocked out.
const unconsciousFor = 39 * time.Second

// DeathPolicy says what happens when damage leaves a target below 1 HP.
type DeathPolicy uint8

// Death policies.
const (
	// NoCheck leaves death to the caller.
	NoCheck DeathPolicy = iota
	CheckDie
	// CheckDieOrCapture lets police and greedy monsters knock a player out
	// instead of killing them.
	CheckDieOrCapture
)

// Applied is what ApplyDamage did.
type Applied struct {
	// Absorbed is the HP the target actually lost.
	Absorbed int
	Died     bool
	Captured bool
}

// ApplyDamage deals amount to target on behalf of source, which may be nil,
// and settles any death it causes.
func (r *Resolver) ApplyDamage(source, target *world.Creature, amount int, policy DeathPolicy) Applied {
	if !r.present(target) {
		return Applied{}
	}
	res := r.damage(source, target, amount, policy)
	if res.Died {
		r.reaper.Finalize(target)
	}
	return res
}

// damage deals amount without finalizing a death, so the caller can settle
// both sides of an exchange first.
func (r *Resolver) damage(source, target *world.Creature, amount int, policy DeathPolicy) Applied {
	if amount <= 0 || target.IsDead() {
		return Applied{}
	}
	m := max(0, min(target.HP.Cur(), amount))
	absorbed := target.HP.Decrease(amount)

	if source != nil && source.ID != target.ID {
		if target.IsMonster() {
			r.ledgers.AdjustThreat(target, source, int64(m), 1)
		}
		if source.IsMonster() {
			r.ledgers.AdjustContribution(source, target, int64(amount/2))
		}
		if source.IsPlayer() {
			source.Statistics.DamageDealt += int64(absorbed)
		}
	}
	if target.IsPlayer() {
		target.Statistics.DamageTaken += int64(absorbed)
	}
	damageDealt.Add(float64(absorbed))

	res := Applied{Absorbed: absorbed}
	switch policy {
	case CheckDie:
		res.Died = r.reaper.Kill(target, source, game.CauseCombat)
	case CheckDieOrCapture:
		res.Died, res.Captured = r.checkDieOrCapture(target, source)
	}
	return res
}

func captor(c *world.Creature) bool {
	return c != nil && c.IsMonster() && (c.Has(world.FlagPolice) || c.Has(world.FlagGreedy))
}

// checkDieOrCapture kills victim unless killer would rather haul it off.
// Police and greedy monsters knock a player out once it falls below a tenth
// of its HP.
func (r *Resolver) checkDieOrCapture(victim, killer *world.Creature) (died, captured bool) {
	if victim.HP.Cur() < 1 && (!captor(killer) || victim.IsMonster()) {
		return r.reaper.Kill(victim, killer, game.CauseCombat), false
	}
	if captor(killer) && victim.IsPlayer() && victim.HP.Cur() < victim.HP.Max()/10 {
		r.capture(victim, killer)
		return false, true
	}
	return false, false
}

func (r *Resolver) capture(victim, killer *world.Creature) {
	k := message.Capitalize(killer.Display())
	r.msg().Print(victim, "%s knocks you unconscious.", k)
	r.msg().Room(victim.Room, ids(victim, killer), "%s knocked %s unconscious.", k, victim.Display())
	victim.Set(world.FlagUnconscious)
	victim.StartCooldown(world.CooldownUnconscious, r.ctx.Now(), unconsciousFor)
	victim.HP.SetCur(max(1, victim.HP.Max()/20))
	r.ledgers.ClearEverywhere(victim)
	r.ledgers.ClearEnemy(killer, victim)

	if killer.Has(world.FlagPolice) {
		r.msg().Room(victim.Room, ids(victim, killer), "%s picks %s up and hauls %s off.", k, victim.Display(), victim.HimHer())
		if jail, ok := r.ctx.World.Room(r.ctx.World.Jail); ok {
			r.ctx.World.Move(victim, jail)
			victim.Set(world.FlagJailed)
		}
		capturesTotal.WithLabelValues("jailed").Inc()
		r.ctx.Log.Info("player captured",
			slog.String("player", victim.ID.String()),
			slog.String("captor", killer.ID.String()),
			slog.String("outcome", "jailed"))
		return
	}

	r.msg().Room(victim.Room, ids(victim, killer), "%s rummages through %s's inventory.", k, victim.Display())
	taken := victim.Coins
	killer.Coins += taken
	victim.Coins = 0
	capturesTotal.WithLabelValues("robbed").Inc()
	r.ctx.Log.Info("player captured",
		slog.String("player", victim.ID.String()),
		slog.String("captor", killer.ID.String()),
		slog.String("outcome", "robbed"),
		slog.Int64("coins", taken))
}

// SimultaneousDeath settles an exchange in which either side or both may
// have died. The target is checked before the attacker and neither is
// finalized until both checks are done.
func (r *Resolver) SimultaneousDeath(attacker, target *world.Creature) (targetDied, attackerDied bool) {
	targetDied = r.reaper.Kill(target, attacker, game.CauseCombat) || target.NeedsFinalize
	attackerDied = r.reaper.Kill(attacker, target, game.CauseCombat) || attacker.NeedsFinalize
	r.reaper.Finalize(target)
	r.reaper.Finalize(attacker)
	return targetDied, attackerDied
}

// Recover wakes c from a knockout once its time is up.
func (r *Resolver) Recover(c *world.Creature) bool {
	if !c.Has(world.FlagUnconscious) || c.IsDead() {
		return false
	}
	if c.CooldownRemaining(world.CooldownUnconscious, r.ctx.Now()) > 0 {
		return false
	}
	c.Clear(world.FlagUnconscious)
	r.msg().Print(c, "You regain consciousness.")
	r.msg().Room(c.Room, ids(c), "%s regains consciousness.", message.Capitalize(c.Display()))
	return true
}
