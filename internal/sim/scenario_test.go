// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package sim_test

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/holomush/grimhold/internal/combat"
	"github.com/holomush/grimhold/internal/death"
	"github.com/holomush/grimhold/internal/dice"
	"github.com/holomush/grimhold/internal/effect"
	"github.com/holomush/grimhold/internal/game"
	"github.com/holomush/grimhold/internal/message"
	"github.com/holomush/grimhold/internal/sim"
	"github.com/holomush/grimhold/internal/world"
)

type recordingJournal struct{ records []death.Record }

func (j *recordingJournal) Record(r death.Record) { j.records = append(j.records, r) }

var _ = Describe("Combat scenarios", func() {
	var (
		clock   *game.ManualClock
		gctx    *game.Context
		rec     *message.Recorder
		journal *recordingJournal
		engine  *sim.Engine
		room    *world.Room
	)

	newWorld := func(src dice.Source, at time.Time) {
		clock = game.NewManualClock(at)
		rec = &message.Recorder{}
		gctx = game.New(world.NewArena(), clock, src, rec, slog.New(slog.NewTextHandler(io.Discard, nil)))
		gctx.World.Limbo = gctx.World.AddRoom(world.NewRoom("Limbo")).ID
		room = gctx.World.AddRoom(world.NewRoom("The Barrow Downs"))

		catalog, err := effect.Default()
		Expect(err).NotTo(HaveOccurred())
		journal = &recordingJournal{}
		engine, err = sim.New(gctx, sim.Options{Catalog: catalog, Journal: journal})
		Expect(err).NotTo(HaveOccurred())
	}

	addPlayer := func(name string, level int) *world.Creature {
		p := world.NewPlayer(name, level, 100)
		p.WeaponSkill = level * 10
		p.DefenseSkill = level * 10
		return gctx.World.AddCreature(p, room)
	}

	addMonster := func(name string, level, hp int) *world.Creature {
		m := world.NewMonster(name, level, hp)
		m.BaseExperience = 1000
		return gctx.World.AddCreature(m, room)
	}

	ordinaryDay := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	Describe("threat", func() {
		BeforeEach(func() { newWorld(dice.Fixed(0), ordinaryDay) })

		It("turns the monster on whoever hurt it most", func() {
			aldo := addPlayer("Aldo", 10)
			bree := addPlayer("Bree", 10)
			wight := addMonster("a barrow wight", 10, 100)

			engine.Ledgers().AdjustThreat(wight, aldo, 20, 1)
			engine.Ledgers().AdjustThreat(wight, bree, 45, 1)
			Expect(engine.Ledgers().GetTarget(wight, true)).To(Equal(bree))

			engine.Ledgers().AdjustThreat(wight, aldo, 40, 1)
			Expect(engine.Ledgers().GetTarget(wight, true)).To(Equal(aldo))
		})

		It("forgets a player who leaves the world", func() {
			aldo := addPlayer("Aldo", 10)
			wight := addMonster("a barrow wight", 10, 100)
			added, err := engine.AddEnemy(wight.ID, aldo.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(added).To(BeTrue())

			gctx.World.RemoveCreature(aldo.ID)
			Expect(engine.Ledgers().GetTarget(wight, true)).To(BeNil())
		})
	})

	Describe("experience", func() {
		It("pays individual killers by the share of damage they did", func() {
			newWorld(dice.Fixed(0), ordinaryDay)
			aldo := addPlayer("Aldo", 10)
			bree := addPlayer("Bree", 10)
			wight := addMonster("a barrow wight", 10, 100)
			engine.Ledgers().AdjustThreat(wight, aldo, 50, 1)
			engine.Ledgers().AdjustThreat(wight, bree, 50, 1)

			awards, err := engine.DistributeExperience(wight.ID, aldo.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(awards).To(HaveLen(2))
			for _, a := range awards {
				Expect(a.Phase).To(Equal(death.PhaseIndividual))
				Expect(a.Gained).To(Equal(int64(500)))
			}
		})

		It("pays a splitting group first, with the group bonus", func() {
			newWorld(dice.Fixed(0), ordinaryDay)
			aldo := addPlayer("Aldo", 10)
			bree := addPlayer("Bree", 10)
			gctx.World.AddGroup(&world.Group{Leader: aldo.ID, Members: []ulid.ULID{aldo.ID, bree.ID}, SplitExperience: true})
			wight := addMonster("a barrow wight", 10, 100)
			engine.Ledgers().AdjustThreat(wight, aldo, 50, 1)
			engine.Ledgers().AdjustThreat(wight, bree, 50, 1)

			awards, err := engine.DistributeExperience(wight.ID, aldo.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(awards).To(HaveLen(2))
			for _, a := range awards {
				Expect(a.Phase).To(Equal(death.PhaseGroup))
				Expect(a.Gained).To(Equal(int64(625)))
			}
			Expect(engine.Ledgers().HasEnemy(wight)).To(BeFalse())
		})

		It("adds half again on a holiday", func() {
			newWorld(dice.Fixed(0), time.Date(2026, 10, 31, 22, 0, 0, 0, time.UTC))
			aldo := addPlayer("Aldo", 10)
			wight := addMonster("a barrow wight", 10, 100)
			engine.Ledgers().AdjustThreat(wight, aldo, 100, 1)

			awards, err := engine.DistributeExperience(wight.ID, aldo.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(awards).To(HaveLen(1))
			Expect(awards[0].Gained).To(Equal(int64(1500)))
			Expect(rec.Lines(message.CreatureStream(aldo.ID))).To(ContainElement(ContainSubstring("Happy Halloween!")))
		})
	})

	Describe("a fight to the death", func() {
		It("ends with the monster gone, the kill journaled and the killer paid", func() {
			newWorld(dice.NewSource(7), ordinaryDay)
			aldo := addPlayer("Aldo", 20)
			rat := addMonster("a giant rat", 1, 10)
			_, err := engine.AddEnemy(rat.ID, aldo.ID)
			Expect(err).NotTo(HaveOccurred())

			for round := 0; round < 200 && gctx.World.Exists(rat.ID); round++ {
				_, _ = engine.Attack(aldo.ID, rat.ID, combat.AttackNormal)
				engine.Tick(context.Background())
				clock.Advance(gctx.Settings.AttackInterval)
			}

			Expect(gctx.World.Exists(rat.ID)).To(BeFalse())
			Expect(aldo.IsDead()).To(BeFalse())
			Expect(aldo.Statistics.Kills).To(Equal(1))
			Expect(aldo.Experience).To(BeNumerically(">", 0))

			Expect(journal.records).To(HaveLen(1))
			Expect(journal.records[0].Victim).To(Equal(rat.ID))
			Expect(journal.records[0].KillerKind).To(Equal(death.KillerPlayer))
			Expect(journal.records[0].Cause).To(Equal(game.CauseCombat))

			s, err := engine.Snapshot(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Monsters).To(BeZero())
			Expect(s.Fighting).To(BeZero())
		})
	})

	Describe("status effects", func() {
		BeforeEach(func() { newWorld(dice.Fixed(0), ordinaryDay) })

		It("wears off once its duration runs out", func() {
			aldo := addPlayer("Aldo", 10)
			_, err := engine.AddEffect(aldo.ID, "barkskin", 30, 5, world.NoID)
			Expect(err).NotTo(HaveOccurred())
			Expect(aldo.IsEffected("barkskin")).To(BeTrue())

			clock.Advance(31 * time.Second)
			engine.Tick(context.Background())
			Expect(aldo.IsEffected("barkskin")).To(BeFalse())
			Expect(rec.Lines(message.CreatureStream(aldo.ID))).To(ContainElement("Your barkskin erodes away."))
		})

		It("dispels by pattern but leaves permanent effects alone", func() {
			aldo := addPlayer("Aldo", 10)
			_, err := engine.AddEffect(aldo.ID, "armor", 60, 5, world.NoID)
			Expect(err).NotTo(HaveOccurred())
			_, err = engine.AddEffect(aldo.ID, "barkskin", world.Permanent, 5, world.NoID)
			Expect(err).NotTo(HaveOccurred())

			removed, err := engine.Dispel(aldo.ID, "*", false)
			Expect(err).NotTo(HaveOccurred())
			Expect(removed).To(ConsistOf("armor"))
			Expect(aldo.IsEffected("barkskin")).To(BeTrue())
		})
	})
})
