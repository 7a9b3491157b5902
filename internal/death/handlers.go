// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package death

import (
	"github.com/holomush/grimhold/internal/game"
	"github.com/holomush/grimhold/internal/message"
	"github.com/holomush/grimhold/internal/world"
)

// monsterDeath dispatches a monster's death on who killed it. Every path
// ends in mobDeath.
func (d *Distributor) monsterDeath(victim, killer *world.Creature, kind KillerKind, rec *Record) {
	v := victim.Display()
	switch kind {
	case KillerPlayer:
		if victim.Master != killer.ID {
			d.msg().Print(killer, "You killed %s.", v)
			d.msg().Room(killer.Room, ids(killer), "%s killed %s.", message.Capitalize(killer.Display()), v)
		}
	case KillerPlayerPet:
		master, _ := d.ctx.World.Master(killer)
		d.msg().Room(killer.Room, nil, "%s's %s killed %s.", message.Capitalize(master.Display()), killer.Name, v)
	case KillerMonster, KillerMonsterPet:
		d.msg().Room(killer.Room, nil, "%s killed %s.", message.Capitalize(killer.Display()), v)
	default:
		d.msg().Room(victim.Room, nil, "%s %s", message.Capitalize(v), environmentalEnd(nil, rec.Cause))
	}
	rec.ExperienceAwarded = d.mobDeath(victim, killer)
}

// mobDeath is common to every monster death.
func (d *Distributor) mobDeath(victim, killer *world.Creature) int64 {
	var awarded int64
	for _, a := range d.DistributeExperience(victim, killer) {
		awarded += a.Gained
	}
	d.dropCorpse(victim, killer)
	d.cleanFollow(victim, killer)
	d.ctx.World.LeaveGroup(victim)
	return awarded
}

// cleanFollow detaches a dying pet from its master.
func (d *Distributor) cleanFollow(victim, killer *world.Creature) {
	master, ok := d.ctx.World.Master(victim)
	if !ok {
		return
	}
	if killer == nil || master.ID != killer.ID {
		d.msg().Print(master, "%s's body has been destroyed.", message.Capitalize(victim.Display()))
	}
	d.ctx.World.ReleasePet(victim)
}

// playerDeath dispatches a player's death on who killed it.
func (d *Distributor) playerDeath(victim, killer *world.Creature, kind KillerKind, cause game.Cause, rec *Record) {
	victim.Statistics.Deaths++
	if victim.IsStaff() {
		d.msg().Print(victim, "*** You just died ***")
		d.pending[victim.ID] = pending{staff: true}
		return
	}

	switch kind {
	case KillerPlayerPet:
		master, _ := d.ctx.World.Master(killer)
		d.msg().Room(victim.Room, nil, "### Sadly, %s was killed by %s's %s.", victim.Name, master.Name, killer.Name)
		d.ledgers.ClearEnemy(killer, victim)
		d.pkilled(victim, master)
	case KillerPlayer:
		d.msg().Print(killer, "You killed %s.", victim.Display())
		d.msg().Print(victim, "%s killed you.", message.Capitalize(killer.Display()))
		d.msg().Room(victim.Room, ids(victim, killer), "%s killed %s.", message.Capitalize(killer.Display()), victim.Display())
		if cause == game.CauseCombat {
			d.msg().Room(victim.Room, nil, "### Sadly, %s was %s by %s.", victim.Name, pkillVerb(killer), killer.Name)
		} else {
			d.msg().Room(victim.Room, nil, "### Sadly, %s %s", victim.Name, environmentalEnd(killer, cause))
		}
		d.pkilled(victim, killer)
	case KillerMonster, KillerMonsterPet:
		if cause != game.CauseCombat {
			rec.ExperienceLost = d.environmentalDeath(victim, killer, cause)
			return
		}
		d.msg().Print(victim, "%s killed you!", message.Capitalize(killer.Display()))
		d.msg().Room(victim.Room, ids(victim), "### Sadly, %s was killed by %s.", victim.Name, killer.Display())
		d.ledgers.ClearEnemy(killer, victim)
		rec.ExperienceLost = d.loseExperience(victim, killer)
		d.dropEquipment(victim, false, nil)
	default:
		rec.ExperienceLost = d.environmentalDeath(victim, nil, cause)
	}
}

// pkillVerb is how a player killer's deed is announced.
func pkillVerb(killer *world.Creature) string {
	switch {
	case killer.IsEffected("lycanthropy") && killer.Level >= 13:
		return "eaten"
	case killer.Class == "assassin" && killer.Level >= 13:
		return "assassinated"
	default:
		return "killed"
	}
}

// pkilled is the common end of a player killed by another player or a
// player's pet. There is no experience loss.
func (d *Distributor) pkilled(victim, killer *world.Creature) {
	d.clearAsPetEnemy(victim)
	d.clearAsPetEnemy(killer)
	d.dropEquipment(victim, !killer.IsStaff(), killer)
	d.pending[victim.ID] = pending{killedByPlayer: true}
}

// clearAsPetEnemy makes the pets in c's room stop fighting c.
func (d *Distributor) clearAsPetEnemy(c *world.Creature) {
	for _, m := range d.ctx.World.Occupants(c.Room) {
		if m.IsPet() {
			d.ledgers.ClearEnemy(m, c)
		}
	}
}

// environmentalDeath handles a player killed by something other than a
// blow: poison, disease, fire and the like. killer, when set, is the
// monster behind the cause.
func (d *Distributor) environmentalDeath(victim, killer *world.Creature, cause game.Cause) int64 {
	d.msg().Room(victim.Room, nil, "### Sadly, %s %s", victim.Name, environmentalEnd(killer, cause))
	lost := d.loseExperience(victim, killer)
	d.dropEquipment(victim, false, nil)
	return lost
}

// environmentalEnd finishes a death announcement for a cause. by names who
// was behind it when known.
func environmentalEnd(by *world.Creature, cause game.Cause) string {
	switch cause {
	case game.CausePoison:
		if by != nil {
			return "was poisoned to death by " + by.Display() + "."
		}
		return "was poisoned to death."
	case game.CauseDisease:
		return "died from disease."
	case game.CauseFire:
		return "was burned alive."
	case game.CauseThorns:
		return "was killed by a wall of thorns."
	default:
		return "died."
	}
}

// revive brings a dead player back. Staff stay where they fell; everyone
// else not in jail wakes up in limbo with their afflictions cured.
func (d *Distributor) revive(c *world.Creature, p pending) {
	c.DeathState = world.Alive
	c.Clear(world.FlagUnconscious)
	if p.staff {
		c.HP.SetCur(c.HP.Max())
		c.MP.SetCur(c.MP.Max())
		return
	}

	if limbo, ok := d.ctx.World.Room(d.ctx.World.Limbo); ok && !c.Has(world.FlagJailed) && c.Room != limbo.ID {
		from := c.Room
		d.ctx.World.Move(c, limbo)
		for _, id := range c.Pets {
			if pet, ok := d.ctx.World.Creature(id); ok && pet.Room == from {
				d.ctx.World.Move(pet, limbo)
			}
		}
	}

	d.effects.CurePoison(c)
	d.effects.CureDisease(c)
	d.effects.RemoveCurse(c)
	for _, name := range []string{"hold-person", "petrification", "confusion", "drunkenness"} {
		d.effects.Remove(c, name, false, true, world.NoID)
	}
	c.Clear(world.FlagHidden)

	if p.killedByPlayer {
		c.HP.SetCur(max(1, c.HP.Max()/2, c.HP.Cur()))
		c.MP.SetCur(max(c.MP.Cur(), c.MP.Max()/10))
	} else {
		c.HP.SetCur(c.HP.Max())
		c.MP.SetCur(c.MP.Max())
	}
	revivedTotal.Inc()
}
