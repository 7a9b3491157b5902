// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package death

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/grimhold/internal/combat"
	"github.com/holomush/grimhold/internal/dice"
	"github.com/holomush/grimhold/internal/effect"
	"github.com/holomush/grimhold/internal/game"
	"github.com/holomush/grimhold/internal/message"
	"github.com/holomush/grimhold/internal/save"
	"github.com/holomush/grimhold/internal/script"
	"github.com/holomush/grimhold/internal/threat"
	"github.com/holomush/grimhold/internal/world"
)

type fixture struct {
	ctx     *game.Context
	clock   *game.ManualClock
	rec     *message.Recorder
	room    *world.Room
	limbo   *world.Room
	ledgers *threat.Ledgers
	effects *effect.Registry
	d       *Distributor
}

var _ combat.Reaper = (*Distributor)(nil)

type journal struct{ records []Record }

func (j *journal) Record(r Record) { j.records = append(j.records, r) }

func newFixture(t *testing.T, src dice.Source, opts ...Option) *fixture {
	t.Helper()
	arena := world.NewArena()
	clock := game.NewManualClock(time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC))
	rec := &message.Recorder{}
	ctx := game.New(arena, clock, src, rec, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ledgers := threat.New(ctx)
	reg, err := effect.NewRegistry(ctx, nil, ledgers)
	require.NoError(t, err)
	limbo := arena.AddRoom(world.NewRoom("Limbo"))
	arena.Limbo = limbo.ID
	return &fixture{
		ctx:     ctx,
		clock:   clock,
		rec:     rec,
		room:    arena.AddRoom(world.NewRoom("Barrow Hall")),
		limbo:   limbo,
		ledgers: ledgers,
		effects: reg,
		d:       New(ctx, save.New(ctx), reg, ledgers, opts...),
	}
}

func (f *fixture) player(name string, level int) *world.Creature {
	return f.ctx.World.AddCreature(world.NewPlayer(name, level, 100), f.room)
}

// monster creates a 100 HP monster worth 1000 experience.
func (f *fixture) monster(name string, level int) *world.Creature {
	m := world.NewMonster(name, level, 100)
	m.BaseExperience = 1000
	return f.ctx.World.AddCreature(m, f.room)
}

func (f *fixture) hit(m, attacker *world.Creature, damage int64) {
	f.ledgers.AdjustThreat(m, attacker, damage, 1)
}

func (f *fixture) lines(c *world.Creature) []string {
	return f.rec.Lines(message.CreatureStream(c.ID))
}

func byName(awards []Award) map[string]Award {
	out := make(map[string]Award, len(awards))
	for _, a := range awards {
		out[a.Player.Name] = a
	}
	return out
}

const noLuck = dice.Fixed(9999)

func TestClassify(t *testing.T) {
	f := newFixture(t, noLuck)
	victim := f.monster("troll", 5)
	player := f.player("Ayla", 5)
	monster := f.monster("ogre", 5)
	wolf := f.monster("wolf", 5)
	f.ctx.World.AddPet(player, wolf)
	imp := f.monster("imp", 5)
	f.ctx.World.AddPet(monster, imp)

	tests := []struct {
		name   string
		killer *world.Creature
		want   KillerKind
	}{
		{"nil is the environment", nil, KillerEnvironment},
		{"self is the environment", victim, KillerEnvironment},
		{"player", player, KillerPlayer},
		{"monster", monster, KillerMonster},
		{"player's pet", wolf, KillerPlayerPet},
		{"monster's pet", imp, KillerMonsterPet},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.d.Classify(victim, tt.killer))
		})
	}
}

func TestKill_SplitsByDamageAmongUngroupedPlayers(t *testing.T) {
	f := newFixture(t, noLuck)
	m := f.monster("troll", 5)
	a := f.player("Ayla", 5)
	b := f.player("Bren", 5)
	f.hit(m, a, 60)
	f.hit(m, b, 40)
	m.HP.SetCur(0)

	require.True(t, f.d.Kill(m, a, game.CauseCombat))

	assert.Equal(t, int64(600), a.Experience)
	assert.Equal(t, int64(400), b.Experience)
	assert.Equal(t, 0, f.ledgers.Table(m).Len())
	assert.Contains(t, f.lines(a), "You killed a troll.")
	assert.Contains(t, f.lines(a), "You gain 600 experience for the death of a troll.")
	assert.Contains(t, f.lines(b), "You gain 400 experience for the death of a troll.")
	assert.Equal(t, 1, a.Statistics.Kills)
}

func TestDistributeExperience_IndividualPayoutCapped(t *testing.T) {
	f := newFixture(t, noLuck)
	m := f.monster("troll", 5)
	a := f.player("Ayla", 5)
	f.hit(m, a, 250)

	awards := f.d.DistributeExperience(m, a)

	require.Len(t, awards, 1)
	assert.Equal(t, PhaseIndividual, awards[0].Phase)
	assert.Equal(t, int64(250), awards[0].Effort)
	assert.Equal(t, m.BaseExperience, awards[0].Base)
}

func TestDistributeExperience_EntriesClearedOnce(t *testing.T) {
	f := newFixture(t, noLuck)
	m := f.monster("troll", 5)
	a := f.player("Ayla", 5)
	f.hit(m, a, 50)

	first := f.d.DistributeExperience(m, a)
	second := f.d.DistributeExperience(m, a)

	assert.Len(t, first, 1)
	assert.Empty(t, second)
	assert.Equal(t, int64(500), a.Experience)
}

func TestDistributeExperience_GroupPhase(t *testing.T) {
	f := newFixture(t, noLuck)
	m := f.monster("troll", 10)
	a := f.player("Ayla", 10)
	b := f.player("Bren", 10)
	c := f.player("Cato", 10)
	f.ctx.World.AddGroup(&world.Group{Leader: a.ID, Members: []ulid.ULID{a.ID, b.ID}, SplitExperience: true})
	f.hit(m, a, 50)
	f.hit(m, b, 50)
	f.hit(m, c, 20)

	got := byName(f.d.DistributeExperience(m, a))

	// 1000 × 1.0 × (1 + 0.25×1), shared equally by level.
	assert.Equal(t, Award{Player: a, Phase: PhaseGroup, Effort: 50, Base: 625, Gained: 625}, got["Ayla"])
	assert.Equal(t, int64(625), got["Bren"].Base)
	assert.Equal(t, PhaseIndividual, got["Cato"].Phase)
	assert.Equal(t, int64(200), got["Cato"].Base)
	assert.Contains(t, f.lines(b), "You gain 625 group experience for the death of a troll.")

	bound := int64(float64(m.BaseExperience) * (1 + f.ctx.Settings.GroupBonus))
	for _, aw := range got {
		assert.LessOrEqual(t, aw.Base, bound)
	}
}

func TestDistributeExperience_GroupPenalizesLowEffort(t *testing.T) {
	f := newFixture(t, noLuck)
	m := f.monster("troll", 10)
	a := f.player("Ayla", 10)
	b := f.player("Bren", 10)
	f.ctx.World.AddGroup(&world.Group{Leader: a.ID, Members: []ulid.ULID{a.ID, b.ID}, SplitExperience: true})
	f.hit(m, a, 90)
	f.hit(m, b, 10)

	got := byName(f.d.DistributeExperience(m, a))

	assert.Equal(t, int64(625), got["Ayla"].Base)
	assert.Equal(t, int64(62), got["Bren"].Base)
	assert.Contains(t, f.lines(b), "You receive reduced experience because you contributed less than half of the average effort.")
}

func TestDistributeExperience_GroupNeedsMateInRoom(t *testing.T) {
	f := newFixture(t, noLuck)
	m := f.monster("troll", 10)
	a := f.player("Ayla", 10)
	b := f.player("Bren", 10)
	f.ctx.World.AddGroup(&world.Group{Leader: a.ID, Members: []ulid.ULID{a.ID, b.ID}, SplitExperience: true})
	f.hit(m, a, 60)
	f.hit(m, b, 40)
	f.ctx.World.Move(b, f.limbo)

	got := byName(f.d.DistributeExperience(m, a))

	assert.Equal(t, PhaseIndividual, got["Ayla"].Phase)
	assert.Equal(t, int64(600), got["Ayla"].Base)
	assert.Equal(t, int64(400), got["Bren"].Base)
}

func TestDistributeExperience_PetPaysMaster(t *testing.T) {
	f := newFixture(t, noLuck)
	m := f.monster("troll", 5)
	a := f.player("Ayla", 5)
	wolf := f.monster("wolf", 5)
	f.ctx.World.AddPet(a, wolf)
	f.hit(m, wolf, 50)

	awards := f.d.DistributeExperience(m, wolf)

	require.Len(t, awards, 1)
	assert.Equal(t, a, awards[0].Player)
	assert.Equal(t, int64(500), a.Experience)
	assert.Contains(t, f.lines(a), "Your wolf earned you 500 experience for the death of a troll.")
}

func TestDistributeExperience_PetsGiveNothing(t *testing.T) {
	f := newFixture(t, noLuck)
	a := f.player("Ayla", 5)
	wolf := f.monster("wolf", 5)
	f.ctx.World.AddPet(f.player("Bren", 5), wolf)
	f.hit(wolf, a, 50)

	assert.Empty(t, f.d.DistributeExperience(wolf, a))
	assert.Zero(t, a.Experience)
}

func TestLevelScale(t *testing.T) {
	tests := []struct {
		diff int
		want float64
	}{
		{0, 1}, {5, 1}, {-5, 1}, {6, 0.9}, {8, 0.9}, {9, 0.7}, {10, 0.7},
		{11, 0.5}, {15, 0.5}, {16, 0.25}, {25, 0.25}, {26, 0.1}, {-40, 0.1},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, levelScale(tt.diff), 1e-9, "diff %d", tt.diff)
	}
}

func TestGainExperience_ScalingAndBonuses(t *testing.T) {
	tests := []struct {
		name      string
		level     int
		holiday   bool
		bonus     float64
		permanent bool
		want      int64
	}{
		{"plain", 5, false, 0, false, 500},
		{"far above the kill", 30, false, 0, false, 125},
		{"holiday", 5, true, 0, false, 750},
		{"server bonus", 5, false, 0.1, false, 550},
		{"both", 5, true, 0.1, false, 800},
		{"permanent monster suppresses both", 5, true, 0.1, true, 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, noLuck)
			if tt.holiday {
				f.clock.Set(time.Date(2026, 10, 31, 20, 0, 0, 0, time.UTC))
			}
			f.ctx.Settings.BonusExperience = tt.bonus
			m := f.monster("troll", 5)
			if tt.permanent {
				m.Set(world.FlagPermanent)
			}
			a := f.player("Ayla", tt.level)
			f.hit(m, a, 50)

			awards := f.d.DistributeExperience(m, a)

			require.Len(t, awards, 1)
			assert.Equal(t, int64(500), awards[0].Base)
			assert.Equal(t, tt.want, awards[0].Gained)
			assert.Equal(t, tt.want, a.Experience)
		})
	}
}

func TestKill_IsIdempotent(t *testing.T) {
	f := newFixture(t, noLuck)
	m := f.monster("troll", 5)
	a := f.player("Ayla", 5)
	m.Inventory = append(m.Inventory, f.ctx.World.AddObject(world.NewObject("a bone", world.ObjectMisc)).ID)
	f.hit(m, a, 60)
	m.HP.SetCur(0)
	calls := 0
	f.d.OnDeath("troll", HookFunc(func(*world.Creature, *world.Creature, game.Cause) bool {
		calls++
		return true
	}))

	require.True(t, f.d.Kill(m, a, game.CauseCombat))
	assert.False(t, f.d.Kill(m, a, game.CauseCombat))
	require.True(t, f.d.Finalize(m))
	assert.False(t, f.d.Finalize(m))
	assert.False(t, f.d.CheckDie(m, a, game.CauseCombat))

	assert.Equal(t, 1, calls)
	assert.Equal(t, int64(600), a.Experience)
	assert.Len(t, f.room.Objects, 1, "one corpse")
	assert.False(t, f.ctx.World.Exists(m.ID))
	assert.Equal(t, world.Finalized, m.DeathState)
}

func TestKill_AliveIsNoOp(t *testing.T) {
	f := newFixture(t, noLuck)
	m := f.monster("troll", 5)

	assert.False(t, f.d.Kill(m, nil, game.CauseCombat))
	assert.Equal(t, world.Alive, m.DeathState)
	assert.False(t, m.NeedsFinalize)
}

func TestFinalize_MonsterLeavesNoTraces(t *testing.T) {
	f := newFixture(t, noLuck)
	m := f.monster("spider", 5)
	a := f.player("Ayla", 5)
	wolf := f.monster("wolf", 5)
	f.ctx.World.AddPet(m, wolf)
	require.NotNil(t, f.effects.Add(a, "poison", 120, 3, effect.ByCreature(m), false, m.ID))
	f.hit(m, a, 10)
	m.HP.SetCur(0)

	require.True(t, f.d.CheckDie(m, a, game.CauseCombat))

	assert.False(t, f.ctx.World.Exists(m.ID))
	_, ok := f.ledgers.Lookup(m.ID)
	assert.False(t, ok)
	assert.NotContains(t, a.Threatened, m.ID)
	assert.Equal(t, world.NoID, a.Effects.Get("poison").Owner)
	assert.False(t, wolf.IsPet())
}

func TestDropCorpse(t *testing.T) {
	f := newFixture(t, noLuck)
	m := f.monster("troll", 5)
	a := f.player("Ayla", 5)
	club := f.ctx.World.AddObject(world.NewObject("a club", world.ObjectWeapon))
	f.ctx.World.Equip(m, club, world.WearWield)
	m.Inventory = append(m.Inventory, f.ctx.World.AddObject(world.NewObject("a bone", world.ObjectMisc)).ID)
	m.Coins = 25

	corpse := f.d.dropCorpse(m, a)

	require.NotNil(t, corpse)
	assert.True(t, corpse.Has(world.ObjCorpse))
	assert.Equal(t, "the corpse of a troll", corpse.Name)
	assert.Len(t, corpse.Contents, 3)
	assert.Equal(t, []ulid.ULID{corpse.ID}, f.room.Objects)
	assert.Zero(t, m.Coins)
	assert.True(t, m.Equipment[world.WearWield].IsZero())
	assert.Contains(t, f.lines(a), "A troll was carrying: a club, a bone, 25 gold coins.")
}

func TestDropCorpse_NoCorpseRoom(t *testing.T) {
	f := newFixture(t, noLuck)
	f.room.Flags |= world.RoomNoCorpse
	m := f.monster("troll", 5)
	m.Inventory = append(m.Inventory, f.ctx.World.AddObject(world.NewObject("a bone", world.ObjectMisc)).ID)

	assert.Nil(t, f.d.dropCorpse(m, nil))
	assert.Len(t, f.room.Objects, 1)
}

func TestKill_PlayerByMonster(t *testing.T) {
	f := newFixture(t, noLuck)
	m := f.monster("troll", 12)
	p := f.player("Ayla", 12)
	p.Experience = 100_000
	sword := f.ctx.World.AddObject(world.NewObject("a sword", world.ObjectWeapon))
	f.ctx.World.Equip(p, sword, world.WearWield)
	require.NotNil(t, f.effects.Add(p, "poison", 120, 3, effect.ByCreature(m), false, m.ID))
	f.ledgers.AddEnemy(m, p, false)
	p.HP.SetCur(0)

	require.True(t, f.d.Kill(p, m, game.CauseCombat))

	assert.Equal(t, world.Dying, p.DeathState)
	assert.Equal(t, int64(90_000), p.Experience)
	assert.Equal(t, int64(10_000), p.Statistics.ExperienceLost)
	assert.True(t, p.IsEffected("death-sickness"))
	assert.False(t, f.ledgers.IsEnemy(m, p))
	assert.Equal(t, []ulid.ULID{sword.ID}, f.room.Objects)
	assert.Contains(t, f.lines(p), "A troll killed you!")
	assert.Contains(t, f.lines(p), "You have lost 10000 experience.")

	require.True(t, f.d.Finalize(p))

	assert.Equal(t, world.Alive, p.DeathState)
	assert.Equal(t, f.limbo.ID, p.Room)
	assert.Equal(t, p.HP.Max(), p.HP.Cur())
	assert.False(t, p.IsEffected("poison"))
	assert.True(t, f.ctx.World.Exists(p.ID))
}

func TestLoseExperience(t *testing.T) {
	tests := []struct {
		name      string
		level     int
		exp       int64
		noExpLoss bool
		wantLost  int64
		wantSick  bool
	}{
		{"low level loses a tenth", 5, 1000, false, 100, false},
		{"level 7 gets death-sickness", 7, 1000, false, 100, true},
		{"level 10 loses at least 10000", 10, 50_000, false, 10_000, true},
		{"level 10 loses two percent", 20, 1_000_000, false, 20_000, true},
		{"never below zero", 10, 4000, false, 4000, true},
		{"no-loss killer", 20, 1_000_000, true, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, noLuck)
			m := f.monster("troll", tt.level)
			if tt.noExpLoss {
				m.Set(world.FlagNoExpLoss)
			}
			p := f.player("Ayla", tt.level)
			p.Experience = tt.exp

			assert.Equal(t, tt.wantLost, f.d.loseExperience(p, m))
			assert.Equal(t, tt.exp-tt.wantLost, p.Experience)
			assert.Equal(t, tt.wantSick, p.IsEffected("death-sickness"))
		})
	}
}

func TestLoseExperience_SavesMayDrop(t *testing.T) {
	f := newFixture(t, dice.Fixed(0))
	p := f.player("Ayla", 5)
	p.Experience = 1000

	f.d.loseExperience(p, nil)

	for _, s := range p.Saves {
		assert.Equal(t, 9, s.Chance)
	}
}

func TestKill_PlayerByPlayer(t *testing.T) {
	f := newFixture(t, dice.Fixed(0))
	a := f.player("Ayla", 10)
	b := f.player("Bren", 10)
	b.Experience = 50_000
	helm := f.ctx.World.AddObject(world.NewObject("a helm", world.ObjectArmor))
	f.ctx.World.Equip(b, helm, world.WearHead)
	b.HP.SetCur(-5)

	require.True(t, f.d.CheckDie(b, a, game.CauseCombat))

	assert.Equal(t, int64(50_000), b.Experience, "no loss to a player")
	assert.Equal(t, []ulid.ULID{helm.ID}, f.room.Objects)
	assert.Equal(t, 50, b.HP.Cur())
	assert.Equal(t, f.limbo.ID, b.Room)
	assert.Contains(t, f.lines(a), "You killed Bren.")
	assert.Contains(t, f.lines(a), "Bren dropped: a helm.")
	assert.Contains(t, f.lines(b), "Ayla killed you.")
}

func TestKill_PlayerByPetIsPlayerKill(t *testing.T) {
	f := newFixture(t, noLuck)
	a := f.player("Ayla", 10)
	wolf := f.monster("wolf", 5)
	f.ctx.World.AddPet(a, wolf)
	b := f.player("Bren", 10)
	b.Experience = 50_000
	f.ledgers.AddEnemy(wolf, b, false)
	b.HP.SetCur(0)

	require.True(t, f.d.CheckDie(b, wolf, game.CauseCombat))

	assert.Equal(t, int64(50_000), b.Experience)
	assert.False(t, f.ledgers.IsEnemy(wolf, b))
	assert.Contains(t, f.rec.Lines(message.RoomStream(f.room.ID)), "### Sadly, Bren was killed by Ayla's wolf.")
}

func TestKill_StaffKeepEverything(t *testing.T) {
	f := newFixture(t, noLuck)
	m := f.monster("troll", 5)
	p := f.player("Ayla", 20)
	p.Set(world.FlagStaff)
	p.Experience = 1_000_000
	p.HP.SetCur(0)

	require.True(t, f.d.CheckDie(p, m, game.CauseCombat))

	assert.Equal(t, int64(1_000_000), p.Experience)
	assert.Equal(t, f.room.ID, p.Room)
	assert.Equal(t, p.HP.Max(), p.HP.Cur())
	assert.Contains(t, f.lines(p), "*** You just died ***")
}

func TestCheckDie_Environmental(t *testing.T) {
	f := newFixture(t, noLuck)
	p := f.player("Ayla", 5)
	p.Experience = 1000
	p.HP.SetCur(0)

	require.True(t, f.ctx.Reaper.CheckDie(p, nil, game.CausePoison))

	assert.Equal(t, int64(900), p.Experience)
	assert.Contains(t, f.rec.Lines(message.RoomStream(f.room.ID)), "### Sadly, Ayla was poisoned to death.")
	assert.Equal(t, f.limbo.ID, p.Room)
}

func TestCheckDie_JailedStayInJail(t *testing.T) {
	f := newFixture(t, noLuck)
	p := f.player("Ayla", 5)
	p.Set(world.FlagJailed)
	p.HP.SetCur(0)

	require.True(t, f.d.CheckDie(p, nil, game.CauseDisease))

	assert.Equal(t, f.room.ID, p.Room)
}

func TestKill_PetVictimIsReleased(t *testing.T) {
	f := newFixture(t, noLuck)
	a := f.player("Ayla", 5)
	m := f.monster("troll", 5)
	wolf := f.monster("wolf", 5)
	f.ctx.World.AddPet(a, wolf)
	f.ledgers.AdjustThreat(wolf, m, 10, 1)
	wolf.HP.SetCur(0)

	require.True(t, f.d.CheckDie(wolf, m, game.CauseCombat))

	assert.Empty(t, a.Pets)
	assert.Contains(t, f.lines(a), "A wolf's body has been destroyed.")
	assert.Zero(t, a.Experience)
}

func TestKill_WritesJournal(t *testing.T) {
	j := &journal{}
	f := newFixture(t, noLuck, WithJournal(j))
	m := f.monster("troll", 5)
	a := f.player("Ayla", 5)
	f.hit(m, a, 100)
	m.HP.SetCur(0)

	require.True(t, f.d.CheckDie(m, a, game.CauseCombat))

	require.Len(t, j.records, 1)
	r := j.records[0]
	assert.Equal(t, m.ID, r.Victim)
	assert.Equal(t, KillerPlayer, r.KillerKind)
	assert.Equal(t, int64(1000), r.ExperienceAwarded)
	assert.Equal(t, f.room.ID, r.Room)
}

func TestScriptHook(t *testing.T) {
	f := newFixture(t, noLuck)
	h, err := ScriptHook(script.NewStateFactory(), f.ctx, "lich",
		`room(victim.name .. " crumbles to dust.") if killer ~= nil then send("The phylactery shatters.") end return true`)
	require.NoError(t, err)
	f.d.OnDeath("lich", h)
	m := f.monster("lich", 20)
	a := f.player("Ayla", 20)
	m.HP.SetCur(0)

	require.True(t, f.d.CheckDie(m, a, game.CauseCombat))

	assert.Contains(t, f.rec.Lines(message.RoomStream(f.room.ID)), "A lich crumbles to dust.")
	assert.Contains(t, f.lines(a), "The phylactery shatters.")
}

func TestScriptHook_CompileError(t *testing.T) {
	f := newFixture(t, noLuck)
	_, err := ScriptHook(script.NewStateFactory(), f.ctx, "broken", `this is not lua`)
	require.Error(t, err)
}
