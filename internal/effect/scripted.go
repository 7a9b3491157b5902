// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package effect

import (
	"context"

	lua "github.com/yuin/gopher-lua"

	"github.com/holomush/grimhold/internal/game"
	"github.com/holomush/grimhold/internal/message"
	"github.com/holomush/grimhold/internal/script"
	"github.com/holomush/grimhold/internal/world"
	"github.com/holomush/grimhold/pkg/errutil"
)

// Hook names, as used in script chunk names.
const (
	hookCompute   = "compute"
	hookPreApply  = "pre_apply"
	hookApply     = "apply"
	hookPostApply = "post_apply"
	hookPulse     = "pulse"
	hookUnApply   = "unapply"
)

type hookSet map[string]*lua.FunctionProto

func compileHooks(f *script.StateFactory, def *Definition) (hookSet, error) {
	sources := map[string]string{
		hookCompute:   def.Scripts.Compute,
		hookPreApply:  def.Scripts.PreApply,
		hookApply:     def.Scripts.Apply,
		hookPostApply: def.Scripts.PostApply,
		hookPulse:     def.Scripts.Pulse,
		hookUnApply:   def.Scripts.UnApply,
	}
	hooks := make(hookSet)
	for hook, src := range sources {
		if src == "" {
			continue
		}
		proto, err := f.Compile(def.Name+"."+hook, src)
		if err != nil {
			return nil, err
		}
		hooks[hook] = proto
	}
	return hooks, nil
}

// scripted runs an effect's Lua hooks after its strategy. A script only
// runs when the strategy's hook succeeded.
type scripted struct {
	inner   Strategy
	hooks   hookSet
	factory *script.StateFactory
}

func (s scripted) Compute(c *Call) bool   { return s.inner.Compute(c) && s.run(c, hookCompute) }
func (s scripted) PreApply(c *Call) bool  { return s.inner.PreApply(c) && s.run(c, hookPreApply) }
func (s scripted) Apply(c *Call) bool     { return s.inner.Apply(c) && s.run(c, hookApply) }
func (s scripted) PostApply(c *Call) bool { return s.inner.PostApply(c) && s.run(c, hookPostApply) }
func (s scripted) Pulse(c *Call) bool     { return s.inner.Pulse(c) && s.run(c, hookPulse) }
func (s scripted) UnApply(c *Call) bool   { return s.inner.UnApply(c) && s.run(c, hookUnApply) }

func (s scripted) run(c *Call, hook string) bool {
	proto, ok := s.hooks[hook]
	if !ok {
		return true
	}
	name := c.Def.Name + "." + hook
	ok, err := s.factory.Run(context.Background(), name, proto,
		func(L *lua.LState) { bindCall(L, c) },
		func(L *lua.LState) { collectEffect(L, c.Effect) },
	)
	if err != nil {
		errutil.LogError(c.Ctx.Log, "effect hook failed", err)
		return false
	}
	return ok
}

// bindCall exposes the call to a script as the globals effect, actor and
// applier plus a handful of functions.
func bindCall(L *lua.LState, c *Call) {
	fx := L.NewTable()
	fx.RawSetString("name", lua.LString(c.Effect.Name))
	fx.RawSetString("duration", lua.LNumber(c.Effect.Duration))
	fx.RawSetString("strength", lua.LNumber(c.Effect.Strength))
	fx.RawSetString("extra", lua.LNumber(c.Effect.Extra))
	L.SetGlobal("effect", fx)

	cr := c.Creature()
	if cr != nil {
		L.SetGlobal("actor", creatureTable(L, cr))
	} else {
		host := L.NewTable()
		host.RawSetString("name", lua.LString(c.Host.HostName()))
		host.RawSetString("level", lua.LNumber(0))
		L.SetGlobal("actor", host)
	}
	switch {
	case c.Applier.Creature != nil:
		L.SetGlobal("applier", creatureTable(L, c.Applier.Creature))
	case c.Applier.Object != nil:
		t := L.NewTable()
		t.RawSetString("name", lua.LString(c.Applier.Object.Name))
		t.RawSetString("object", lua.LTrue)
		L.SetGlobal("applier", t)
	default:
		L.SetGlobal("applier", lua.LNil)
	}

	L.SetGlobal("rand", L.NewFunction(func(L *lua.LState) int {
		lo, hi := L.CheckInt(1), L.CheckInt(2)
		L.Push(lua.LNumber(c.Ctx.Dice.Range(lo, hi)))
		return 1
	}))
	L.SetGlobal("send", L.NewFunction(func(L *lua.LState) int {
		if cr != nil {
			c.Ctx.Msg.Print(cr, "%s", L.CheckString(1))
		}
		return 0
	}))
	L.SetGlobal("room", L.NewFunction(func(L *lua.LState) int {
		c.reg.echo(c.Host, L.CheckString(1), c.Applier.Creature)
		return 0
	}))
	L.SetGlobal("damage", L.NewFunction(func(L *lua.LState) int {
		n := L.CheckInt(1)
		if cr != nil && n > 0 {
			cr.HP.Decrease(n)
			cr.Statistics.DamageTaken += int64(n)
			c.Harm(game.CauseEffect)
		}
		L.Push(lua.LNumber(hpOf(cr)))
		return 1
	}))
	L.SetGlobal("heal", L.NewFunction(func(L *lua.LState) int {
		n := L.CheckInt(1)
		healed := 0
		if cr != nil {
			healed = cr.HP.Increase(n)
		}
		L.Push(lua.LNumber(healed))
		return 1
	}))
	L.SetGlobal("is_effected", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(c.Host.EffectList().IsEffected(L.CheckString(1))))
		return 1
	}))
}

func creatureTable(L *lua.LState, cr *world.Creature) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("name", lua.LString(message.Capitalize(cr.Display())))
	t.RawSetString("level", lua.LNumber(cr.Level))
	t.RawSetString("hp", lua.LNumber(cr.HP.Cur()))
	t.RawSetString("max_hp", lua.LNumber(cr.HP.Max()))
	t.RawSetString("strength", lua.LNumber(cr.Strength.Cur()))
	t.RawSetString("dexterity", lua.LNumber(cr.Dexterity.Cur()))
	t.RawSetString("constitution", lua.LNumber(cr.Constitution.Cur()))
	t.RawSetString("intelligence", lua.LNumber(cr.Intelligence.Cur()))
	t.RawSetString("piety", lua.LNumber(cr.Piety.Cur()))
	t.RawSetString("player", lua.LBool(cr.IsPlayer()))
	return t
}

func hpOf(cr *world.Creature) int {
	if cr == nil {
		return 0
	}
	return cr.HP.Cur()
}

// collectEffect copies the script's edits to the effect table back.
func collectEffect(L *lua.LState, e *world.Effect) {
	fx, ok := L.GetGlobal("effect").(*lua.LTable)
	if !ok {
		return
	}
	if v, ok := fx.RawGetString("duration").(lua.LNumber); ok {
		e.Duration = int64(v)
	}
	if v, ok := fx.RawGetString("strength").(lua.LNumber); ok {
		e.Strength = int(v)
	}
	if v, ok := fx.RawGetString("extra").(lua.LNumber); ok {
		e.Extra = int(v)
	}
}
