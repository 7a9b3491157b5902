// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package script provides the sandboxed Lua runtime that effect hooks run in.
package script

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/samber/oops"
	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

// DefaultTimeout bounds a single hook invocation. Hooks must not block.
const DefaultTimeout = 50 * time.Millisecond

// safeLibrary is a Lua library that may be opened in a sandboxed state.
type safeLibrary struct {
	name string
	fn   lua.LGFunction
}

// defaultSafeLibraries returns the libraries hooks may use.
// Safe: base, table, string, math.
// Blocked: os, io, debug, package, coroutine.
func defaultSafeLibraries() []safeLibrary {
	return []safeLibrary{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	}
}

// unsafeBaseFunctions are removed from the base library after it opens.
var unsafeBaseFunctions = []string{"dofile", "loadfile", "loadstring", "load", "require"}

// StateFactory creates sandboxed Lua states and caches compiled chunks.
type StateFactory struct {
	libraries []safeLibrary
	timeout   time.Duration

	mu     sync.Mutex
	protos map[string]*lua.FunctionProto
}

// NewStateFactory creates a factory using DefaultTimeout.
func NewStateFactory() *StateFactory {
	return &StateFactory{
		libraries: defaultSafeLibraries(),
		timeout:   DefaultTimeout,
		protos:    make(map[string]*lua.FunctionProto),
	}
}

// WithTimeout returns f with a different per-call deadline.
func (f *StateFactory) WithTimeout(d time.Duration) *StateFactory {
	f.timeout = d
	return f
}

// NewState creates a fresh Lua state with only safe libraries loaded.
func (f *StateFactory) NewState(_ context.Context) (*lua.LState, error) {
	L := lua.NewState(lua.Options{
		SkipOpenLibs: true,
	})

	for _, lib := range f.libraries {
		if err := L.CallByParam(lua.P{
			Fn:      L.NewFunction(lib.fn),
			NRet:    0,
			Protect: true,
		}, lua.LString(lib.name)); err != nil {
			L.Close()
			return nil, oops.Code("SCRIPT_STATE_FAILED").
				With("library", lib.name).
				Wrapf(err, "failed to open library %s", lib.name)
		}
	}

	for _, fn := range unsafeBaseFunctions {
		L.SetGlobal(fn, lua.LNil)
	}

	return L, nil
}

// Compile parses src once and caches the result under name. Compiling the
// same name again returns the cached chunk.
func (f *StateFactory) Compile(name, src string) (*lua.FunctionProto, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.protos[name]; ok {
		return p, nil
	}
	chunk, err := parse.Parse(strings.NewReader(src), name)
	if err != nil {
		return nil, oops.Code("SCRIPT_INVALID").With("script", name).Wrap(err)
	}
	p, err := lua.Compile(chunk, name)
	if err != nil {
		return nil, oops.Code("SCRIPT_INVALID").With("script", name).Wrap(err)
	}
	f.protos[name] = p
	return p, nil
}

// Run executes a compiled chunk in a fresh state. bind installs globals
// before the chunk runs and collect reads results after it returns. The
// chunk's first return value is reported: false or a runtime error means
// the hook failed, anything else (including no value) means it succeeded.
func (f *StateFactory) Run(ctx context.Context, name string, proto *lua.FunctionProto,
	bind func(*lua.LState), collect func(*lua.LState),
) (bool, error) {
	L, err := f.NewState(ctx)
	if err != nil {
		return false, err
	}
	defer L.Close()

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	L.SetContext(ctx)

	if bind != nil {
		bind(L)
	}
	L.Push(L.NewFunctionFromProto(proto))
	if err := L.PCall(0, 1, nil); err != nil {
		return false, oops.Code("SCRIPT_FAILED").With("script", name).Wrap(err)
	}
	ret := L.Get(-1)
	L.Pop(1)
	if collect != nil {
		collect(L)
	}
	return ret == lua.LNil || lua.LVAsBool(ret), nil
}
