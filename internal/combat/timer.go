// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package combat

import (
	"math"
	"time"

	"github.com/holomush/grimhold/internal/world"
)

// AttackWait returns how long until c may attack again. Staff never wait.
func (r *Resolver) AttackWait(c *world.Creature) time.Duration {
	if c.IsStaff() {
		return 0
	}
	return c.CooldownRemaining(world.CooldownAttack, r.ctx.Now())
}

// UpdateAttackTimer restarts c's attack timer and returns its length. Haste
// takes a third off and slow adds a third; blindness and a death-sickness
// cough add to it.
func (r *Resolver) UpdateAttackTimer(c *world.Creature) time.Duration {
	delay := r.ctx.Settings.AttackInterval
	switch {
	case c.IsEffected("haste"):
		delay = delay * 2 / 3
	case c.IsEffected("slow"):
		delay = delay * 4 / 3
	}
	if e := c.Effects.Get("death-sickness"); e != nil && r.ctx.Dice.Range(1, 100) < e.Strength {
		r.msg().Print(c, "You cough heavily as you attack.")
		delay += time.Second
	}
	if c.IsEffected("blindness") {
		delay += 3 * time.Second
	}
	c.StartCooldown(world.CooldownAttack, r.ctx.Now(), delay)
	return delay
}

// PleaseWait tells c how much longer it has to wait, rounded up to whole
// seconds.
func (r *Resolver) PleaseWait(c *world.Creature, d time.Duration) {
	secs := int(math.Ceil(d.Seconds()))
	switch {
	case secs <= 1:
		r.msg().Print(c, "Please wait 1 more second.")
	case secs > 60:
		r.msg().Print(c, "Please wait %d:%02d more minutes.", secs/60, secs%60)
	default:
		r.msg().Print(c, "Please wait %d more seconds.", secs)
	}
}

// improve rolls for a trained skill to go up by one. Below 100 failures
// teach twice as fast as successes; above it half as fast. A skill stops
// rising at ten times the creature's level.
func (r *Resolver) improve(c *world.Creature, skill *int, name string, success bool) bool {
	if !c.IsPlayer() || c.Has(world.FlagJailed) {
		return false
	}
	now := r.ctx.Now()
	if c.CooldownRemaining(cooldownSkill, now) > 0 {
		return false
	}
	gained := *skill
	if gained >= c.Level*10 {
		return false
	}
	chance := (100 - gained/3) / 2
	if !success {
		if gained < 100 {
			chance *= 2
		} else {
			chance /= 2
		}
	}
	chance = max(chance, 3)
	if r.ctx.Dice.Range(1, 100) > chance {
		return false
	}

	if success {
		r.msg().Print(c, "Your practice pays off, you have become better at %s!", name)
	} else {
		r.msg().Print(c, "You learn from your mistakes, you have become better at %s!", name)
	}
	*skill++
	c.StartCooldown(cooldownSkill, now, time.Duration(min(10+gained/10, 150))*time.Second)
	skillGains.WithLabelValues(name).Inc()
	return true
}
