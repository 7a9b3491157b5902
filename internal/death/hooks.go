// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package death

import (
	"context"
	"log/slog"

	lua "github.com/yuin/gopher-lua"

	"github.com/holomush/grimhold/internal/game"
	"github.com/holomush/grimhold/internal/message"
	"github.com/holomush/grimhold/internal/script"
	"github.com/holomush/grimhold/internal/world"
	"github.com/holomush/grimhold/pkg/errutil"
)

// Hook runs when a creature of a given name dies, before its death is
// handled. killer is nil for environmental deaths. Hooks must not block.
type Hook interface {
	OnDeath(victim, killer *world.Creature, cause game.Cause) bool
}

// HookFunc adapts a function to Hook.
type HookFunc func(victim, killer *world.Creature, cause game.Cause) bool

// OnDeath implements Hook.
func (f HookFunc) OnDeath(victim, killer *world.Creature, cause game.Cause) bool {
	return f(victim, killer, cause)
}

// OnDeath binds h to every creature named name.
func (d *Distributor) OnDeath(name string, h Hook) {
	d.hooks[name] = append(d.hooks[name], h)
}

func (d *Distributor) runHooks(victim, killer *world.Creature, cause game.Cause) {
	for _, h := range d.hooks[victim.Name] {
		if !h.OnDeath(victim, killer, cause) {
			d.ctx.Log.Warn("death hook failed",
				slog.String("victim", victim.ID.String()),
				slog.String("name", victim.Name))
		}
	}
}

// ScriptHook compiles a Lua death hook. The chunk sees the globals victim,
// killer (nil for environmental deaths) and cause, and can call send to
// print to the killer and room to print to the victim's room.
func ScriptHook(f *script.StateFactory, ctx *game.Context, name, src string) (Hook, error) {
	proto, err := f.Compile("death."+name, src)
	if err != nil {
		return nil, err
	}
	return HookFunc(func(victim, killer *world.Creature, cause game.Cause) bool {
		ok, err := f.Run(context.Background(), "death."+name, proto, func(L *lua.LState) {
			L.SetGlobal("victim", creatureTable(L, victim))
			if killer != nil {
				L.SetGlobal("killer", creatureTable(L, killer))
			} else {
				L.SetGlobal("killer", lua.LNil)
			}
			L.SetGlobal("cause", lua.LString(cause.String()))
			L.SetGlobal("send", L.NewFunction(func(L *lua.LState) int {
				if killer != nil {
					ctx.Msg.Print(killer, "%s", L.CheckString(1))
				}
				return 0
			}))
			L.SetGlobal("room", L.NewFunction(func(L *lua.LState) int {
				ctx.Msg.Room(victim.Room, nil, "%s", L.CheckString(1))
				return 0
			}))
		}, nil)
		if err != nil {
			errutil.LogError(ctx.Log, "death hook failed", err)
			return false
		}
		return ok
	}), nil
}

func creatureTable(L *lua.LState, c *world.Creature) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("name", lua.LString(message.Capitalize(c.Display())))
	t.RawSetString("level", lua.LNumber(c.Level))
	t.RawSetString("player", lua.LBool(c.IsPlayer()))
	t.RawSetString("max_hp", lua.LNumber(c.HP.Max()))
	return t
}
