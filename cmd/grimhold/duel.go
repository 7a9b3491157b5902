// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/holomush/grimhold/internal/dice"
	"github.com/holomush/grimhold/internal/effect"
	"github.com/holomush/grimhold/internal/game"
	"github.com/holomush/grimhold/internal/message"
	"github.com/holomush/grimhold/internal/sim"
	"github.com/holomush/grimhold/internal/world"
)

// duelOptions describes a scripted fight between one player and one monster.
type duelOptions struct {
	Seed          uint64
	Rounds        int
	Attack        string
	PlayerName    string
	PlayerLevel   int
	PlayerHP      int
	MonsterName   string
	MonsterLevel  int
	MonsterHP     int
	MonsterDamage string
	Experience    int64
	// Effects are applied to the player before the first round.
	Effects []string
	Verbose bool
}

func defaultDuelOptions() duelOptions {
	return duelOptions{
		Seed:          1,
		Rounds:        100,
		Attack:        "normal",
		PlayerName:    "Aldo",
		PlayerLevel:   10,
		PlayerHP:      150,
		MonsterName:   "a cave troll",
		MonsterLevel:  10,
		MonsterHP:     120,
		MonsterDamage: "2d6+3",
		Experience:    800,
	}
}

// duelResult is how a duel ended.
type duelResult struct {
	Rounds       int
	Winner       string
	PlayerHP     int
	MonsterHP    int
	Experience   int64
	PlayerDeaths int
}

// NewDuelCmd creates the duel subcommand.
func NewDuelCmd() *cobra.Command {
	opts := defaultDuelOptions()
	cmd := &cobra.Command{
		Use:   "duel",
		Short: "Simulate a fight between a player and a monster",
		Long: `Run a deterministic fight between one player and one monster on a
manual clock, printing what the player sees each round. The same seed
always gives the same fight.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			catalog, err := loadCatalog(cfg)
			if err != nil {
				return err
			}
			settings := cfg.Settings()
			res, err := runDuel(cmd.Context(), cmd.OutOrStdout(), catalog, settings, opts)
			if err != nil {
				return err
			}
			printDuelResult(cmd.OutOrStdout(), res)
			return nil
		},
	}

	f := cmd.Flags()
	f.Uint64Var(&opts.Seed, "seed", opts.Seed, "random seed")
	f.IntVar(&opts.Rounds, "rounds", opts.Rounds, "maximum rounds")
	f.StringVar(&opts.Attack, "attack", opts.Attack, "player attack: normal, kick, bash or ambush")
	f.StringVar(&opts.PlayerName, "player", opts.PlayerName, "player name")
	f.IntVar(&opts.PlayerLevel, "player-level", opts.PlayerLevel, "player level")
	f.IntVar(&opts.PlayerHP, "player-hp", opts.PlayerHP, "player hit points")
	f.StringVar(&opts.MonsterName, "monster", opts.MonsterName, "monster name")
	f.IntVar(&opts.MonsterLevel, "monster-level", opts.MonsterLevel, "monster level")
	f.IntVar(&opts.MonsterHP, "monster-hp", opts.MonsterHP, "monster hit points")
	f.StringVar(&opts.MonsterDamage, "monster-damage", opts.MonsterDamage, "monster damage dice")
	f.Int64Var(&opts.Experience, "experience", opts.Experience, "experience the monster is worth")
	f.StringSliceVar(&opts.Effects, "effect", nil, "effect to put on the player first (repeatable)")
	f.BoolVarP(&opts.Verbose, "verbose", "v", false, "print every round")
	return cmd
}

// runDuel fights the duel on a private engine. Rounds are driven by Tick so
// the monster swings exactly as it would in a running world.
func runDuel(ctx context.Context, w io.Writer, catalog *effect.Catalog, settings game.Settings, opts duelOptions) (duelResult, error) {
	kind, err := sim.ParseAttackType(opts.Attack)
	if err != nil {
		return duelResult{}, err
	}
	damage, err := dice.Parse(opts.MonsterDamage)
	if err != nil {
		return duelResult{}, err
	}

	clock := game.NewManualClock(time.Date(2026, 1, 15, 20, 0, 0, 0, time.UTC))
	rec := &message.Recorder{}
	gctx := game.New(world.NewArena(), clock, dice.NewSource(opts.Seed), rec, slog.New(slog.DiscardHandler))
	gctx.Settings = settings

	engine, err := sim.New(gctx, sim.Options{Catalog: catalog})
	if err != nil {
		return duelResult{}, err
	}

	arena := gctx.World
	arena.Limbo = arena.AddRoom(world.NewRoom("Limbo")).ID
	room := arena.AddRoom(world.NewRoom("The Pit"))
	player := arena.AddCreature(world.NewPlayer(opts.PlayerName, opts.PlayerLevel, opts.PlayerHP), room)
	player.WeaponSkill = opts.PlayerLevel * 10
	player.DefenseSkill = opts.PlayerLevel * 10
	monster := world.NewMonster(opts.MonsterName, opts.MonsterLevel, opts.MonsterHP)
	monster.Damage = damage
	monster.BaseExperience = opts.Experience
	monster.WeaponSkill = opts.MonsterLevel * 10
	monster.DefenseSkill = opts.MonsterLevel * 10
	arena.AddCreature(monster, room)

	for _, name := range opts.Effects {
		if _, err := engine.AddEffect(player.ID, name, 0, 0, world.NoID); err != nil {
			return duelResult{}, err
		}
	}
	if _, err := engine.AddEnemy(monster.ID, player.ID); err != nil {
		return duelResult{}, err
	}

	stream := message.CreatureStream(player.ID)
	startXP := player.Experience
	res := duelResult{}
	for res.Rounds < opts.Rounds {
		if err := ctx.Err(); err != nil {
			return res, err //nolint:wrapcheck // cancellation passes through
		}
		res.Rounds++
		// An aborted swing still lets the monster take its turn.
		_, _ = engine.Attack(player.ID, monster.ID, kind)
		if arena.Exists(monster.ID) {
			engine.Tick(ctx)
		}

		if opts.Verbose {
			fmt.Fprintf(w, "-- round %d --\n", res.Rounds)
			for _, line := range rec.Lines(stream) {
				fmt.Fprintln(w, line)
			}
		}
		rec.Reset()

		if !arena.Exists(monster.ID) || player.Statistics.Deaths > 0 {
			break
		}
		clock.Advance(settings.AttackInterval)
	}

	res.PlayerHP = player.HP.Cur()
	res.PlayerDeaths = player.Statistics.Deaths
	res.Experience = player.Experience - startXP
	switch {
	case !arena.Exists(monster.ID):
		res.Winner = player.Name
	case player.Statistics.Deaths > 0:
		res.Winner = monster.Name
		res.MonsterHP = monster.HP.Cur()
	default:
		res.MonsterHP = monster.HP.Cur()
	}
	return res, nil
}

func printDuelResult(w io.Writer, res duelResult) {
	switch res.Winner {
	case "":
		fmt.Fprintf(w, "No one fell after %d rounds (player %d HP, monster %d HP).\n",
			res.Rounds, res.PlayerHP, res.MonsterHP)
	default:
		fmt.Fprintf(w, "%s wins after %d rounds.\n", message.Capitalize(res.Winner), res.Rounds)
	}
	if res.Experience != 0 {
		fmt.Fprintf(w, "Experience change: %+d\n", res.Experience)
	}
}
