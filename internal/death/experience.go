// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package death

import (
	"log/slog"

	"github.com/oklog/ulid/v2"

	"github.com/holomush/grimhold/internal/effect"
	"github.com/holomush/grimhold/internal/world"
)

// Phase is the experience sweep an award came from.
type Phase uint8

// Phases, in the order they run.
const (
	PhaseGroup Phase = iota + 1
	PhaseIndividual
)

func (p Phase) String() string {
	if p == PhaseGroup {
		return "group"
	}
	return "individual"
}

// Award is one payout from a monster's death.
type Award struct {
	Player *world.Creature
	Phase  Phase
	// Effort is the contribution cleared from the ledger for this player,
	// pets included.
	Effort int64
	// Base is the share before level scaling and bonuses; Gained is what
	// was actually added to the player's experience.
	Base   int64
	Gained int64
}

// credit accumulates ledger contributions per player, in first-seen order.
type credit struct {
	order  []ulid.ULID
	effort map[ulid.ULID]int64
	player map[ulid.ULID]*world.Creature
	// viaPet is the pet that earned a player's whole credit, if any.
	viaPet map[ulid.ULID]*world.Creature
	direct map[ulid.ULID]bool
}

func newCredit() *credit {
	return &credit{
		effort: make(map[ulid.ULID]int64),
		player: make(map[ulid.ULID]*world.Creature),
		viaPet: make(map[ulid.ULID]*world.Creature),
		direct: make(map[ulid.ULID]bool),
	}
}

func (c *credit) add(p *world.Creature, n int64, pet *world.Creature) {
	if _, ok := c.player[p.ID]; !ok {
		c.order = append(c.order, p.ID)
		c.player[p.ID] = p
	}
	c.effort[p.ID] += n
	if pet == nil {
		c.direct[p.ID] = true
	} else if _, ok := c.viaPet[p.ID]; !ok {
		c.viaPet[p.ID] = pet
	}
}

// DistributeExperience pays out victim's experience to everyone on its
// ledger, clearing each entry as it is paid. A splitting group in the room
// with the killer is paid first; whoever remains is paid in proportion to
// the damage they did. Pets earn nothing.
func (d *Distributor) DistributeExperience(victim, killer *world.Creature) []Award {
	if victim.IsPet() || victim.IsPlayer() {
		return nil
	}
	var out []Award
	out = append(out, d.groupPhase(victim, killer)...)
	out = append(out, d.individualPhase(victim, killer)...)
	return out
}

func (d *Distributor) groupPhase(victim, killer *world.Creature) []Award {
	player, ok := d.ctx.World.PlayerBehind(killer)
	if !ok {
		return nil
	}
	g, ok := d.ctx.World.Group(player.Group)
	if !ok || !g.SplitExperience || !d.groupMateNearby(g, player) {
		return nil
	}

	cr := newCredit()
	members, totalLevel := 0, 0
	var total int64
	for _, id := range g.Members {
		m, ok := d.ctx.World.Creature(id)
		if !ok || !m.IsPlayer() || !d.ctx.World.SameRoom(victim, m) || !d.ledgers.IsEnemy(victim, m) {
			continue
		}
		members++
		totalLevel += max(1, m.Level)
		n := d.ledgers.ClearEnemy(victim, m)
		total += n
		cr.add(m, n, nil)
		for _, pid := range m.Pets {
			pet, ok := d.ctx.World.Creature(pid)
			if !ok || !d.ctx.World.SameRoom(victim, pet) || !d.ledgers.IsEnemy(victim, pet) {
				continue
			}
			n := d.ledgers.ClearEnemy(victim, pet)
			total += n
			cr.add(m, n, pet)
		}
	}
	if members == 0 {
		return nil
	}

	maxHP := max(1, victim.HP.Max())
	fraction := float64(min(total, int64(maxHP))) / float64(maxHP)
	pool := fraction * float64(victim.BaseExperience) * (1 + d.ctx.Settings.GroupBonus*float64(members-1))
	average := total / int64(len(cr.order))

	out := make([]Award, 0, len(cr.order))
	for _, id := range cr.order {
		p, effort := cr.player[id], cr.effort[id]
		gain := int64(float64(max(1, p.Level)) / float64(totalLevel) * pool)
		if effort < average/2 {
			d.msg().Print(p, "You receive reduced experience because you contributed less than half of the average effort.")
			gain = int64(float64(gain) * float64(effort) / float64(total))
		}
		gain = max(1, gain)
		out = append(out, Award{
			Player: p,
			Phase:  PhaseGroup,
			Effort: effort,
			Base:   gain,
			Gained: d.gainExperience(victim, killer, p, gain, PhaseGroup, nil),
		})
	}
	d.ctx.Log.Debug("group experience",
		slog.String("victim", victim.ID.String()),
		slog.String("group", g.ID.String()),
		slog.Int("members", members),
		slog.Int64("damage", total),
		slog.Float64("pool", pool))
	return out
}

// groupMateNearby reports whether some other member of g stands with p.
func (d *Distributor) groupMateNearby(g *world.Group, p *world.Creature) bool {
	for _, id := range g.Members {
		if id == p.ID {
			continue
		}
		if m, ok := d.ctx.World.Creature(id); ok && m.IsPlayer() && d.ctx.World.SameRoom(p, m) {
			return true
		}
	}
	return false
}

func (d *Distributor) individualPhase(victim, killer *world.Creature) []Award {
	t, ok := d.ledgers.Lookup(victim.ID)
	if !ok {
		return nil
	}
	cr := newCredit()
	for _, id := range t.IDs() {
		c, ok := d.ctx.World.Creature(id)
		if !ok {
			continue
		}
		switch {
		case c.IsPlayer():
			cr.add(c, d.ledgers.ClearEnemy(victim, c), nil)
		case c.IsPet():
			if p, ok := d.ctx.World.PlayerBehind(c); ok {
				cr.add(p, d.ledgers.ClearEnemy(victim, c), c)
			}
		}
	}

	exp := victim.BaseExperience
	maxHP := int64(max(1, victim.HP.Max()))
	out := make([]Award, 0, len(cr.order))
	for _, id := range cr.order {
		p, effort := cr.player[id], cr.effort[id]
		gain := min(max(0, exp*effort/maxHP), exp)
		if gain == 0 {
			continue
		}
		var pet *world.Creature
		if !cr.direct[id] {
			pet = cr.viaPet[id]
		}
		out = append(out, Award{
			Player: p,
			Phase:  PhaseIndividual,
			Effort: effort,
			Base:   gain,
			Gained: d.gainExperience(victim, killer, p, gain, PhaseIndividual, pet),
		})
	}
	return out
}

// levelScale shrinks awards for kills far from the player's level.
func levelScale(diff int) float64 {
	if diff < 0 {
		diff = -diff
	}
	switch {
	case diff <= 5:
		return 1
	case diff <= 8:
		return 0.9
	case diff <= 10:
		return 0.7
	case diff <= 15:
		return 0.5
	case diff <= 25:
		return 0.25
	default:
		return 0.1
	}
}

// gainExperience credits p with amount for victim's death after level
// scaling, then adds the holiday and server bonuses on top. It returns the
// total credited.
func (d *Distributor) gainExperience(victim, killer, p *world.Creature, amount int64, phase Phase, pet *world.Creature) int64 {
	if mult := levelScale(p.Level - victim.Level); mult < 1 {
		amount = max(1, int64(float64(amount)*mult))
	}

	var holiday, bonus int64
	greeting := d.ctx.Settings.HolidayOn(d.ctx.Now())
	if !victim.Has(world.FlagPermanent) {
		if greeting != "" {
			holiday = max(1, amount/2)
		}
		if b := d.ctx.Settings.BonusExperience; b > 0 {
			bonus = max(1, int64(float64(amount)*b))
		}
	}

	v := victim.Display()
	switch {
	case pet != nil:
		d.msg().Print(p, "Your %s earned you %d experience for the death of %s.", pet.Name, amount, v)
	case phase == PhaseGroup:
		d.msg().Print(p, "You gain %d group experience for the death of %s.", amount, v)
	case killer != nil && killer.ID != p.ID && !d.ctx.World.SameRoom(p, victim):
		d.msg().Print(p, "%s gained you %d experience for the death of %s.", killer.Name, amount, v)
	default:
		d.msg().Print(p, "You gain %d experience for the death of %s.", amount, v)
	}
	if holiday > 0 {
		d.msg().Print(p, "%s You gained an extra %d experience!", greeting, holiday)
	}
	if bonus > 0 {
		d.msg().Print(p, "You gained a bonus %d experience!", bonus)
	}

	total := amount + holiday + bonus
	p.Experience += total
	p.Statistics.ExperienceGained += total
	experienceAwarded.WithLabelValues(phase.String()).Add(float64(total))
	return total
}

// loseExperience takes a player's death penalty: a share of experience,
// death-sickness past level 6 and a chance to lose a point off each save.
// It returns the experience lost.
func (d *Distributor) loseExperience(c, killer *world.Creature) int64 {
	if killer != nil {
		if killer.Has(world.FlagNoExpLoss) {
			return 0
		}
		if m, ok := d.ctx.World.Master(killer); ok && m.IsStaff() {
			return 0
		}
	}
	if c.Level >= 7 {
		d.effects.Add(c, "death-sickness", effect.Computed, effect.Computed, effect.Applier{}, true, world.NoID)
	}

	var lost int64
	if c.Level < 10 {
		lost = c.Experience / 10
	} else {
		lost = max(c.Experience*2/100, 10000)
	}
	lost = min(lost, c.Experience)
	c.Experience -= lost
	c.Statistics.ExperienceLost += lost
	d.msg().Print(c, "You have lost %d experience.", lost)
	experienceLost.Add(float64(lost))

	d.saves.DeathPenalty(c)
	return lost
}
