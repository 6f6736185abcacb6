// Package automation runs Lua parameter automation between blocks.
//
// A script defines
//
//	function automate(t, block)
//	  set("drive", 1 + 0.5 * math.sin(t))
//	  if block == 0 then preset(2) end
//	end
//
// where t is the stream time in seconds at the start of the block. Inside
// automate, set(key, value) writes a parameter, get(key) reads one and
// preset(i) selects a factory program.
package automation

import (
	"context"
	"errors"
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/cwbudde/algo-wasabi/plugin/params"
)

// EntryPoint is the Lua function called for every block.
const EntryPoint = "automate"

// ErrNoEntryPoint is returned by Compile when the script does not define
// EntryPoint as a function.
var ErrNoEntryPoint = errors.New("automation: script does not define function " + EntryPoint)

// Target receives the writes a script makes. *wasabi.Plugin implements it.
type Target interface {
	Params() *params.Store
	SetProgram(i int)
}

// Script is a compiled automation script. It is not safe for concurrent
// use; give each render its own Script.
type Script struct {
	state  *lua.LState
	fn     lua.LValue
	target Target
}

// Compile loads source into a fresh Lua state with the base, table,
// string and math libraries.
func Compile(source string) (*Script, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		if err := L.CallByParam(lua.P{Fn: L.NewFunction(lib.open), NRet: 0, Protect: true}, lua.LString(lib.name)); err != nil {
			L.Close()
			return nil, fmt.Errorf("automation: open %q: %w", lib.name, err)
		}
	}

	s := &Script{state: L}
	L.SetGlobal("set", L.NewFunction(s.luaSet))
	L.SetGlobal("get", L.NewFunction(s.luaGet))
	L.SetGlobal("preset", L.NewFunction(s.luaPreset))

	if err := L.DoString(source); err != nil {
		L.Close()
		return nil, fmt.Errorf("automation: %w", err)
	}

	s.fn = L.GetGlobal(EntryPoint)
	if s.fn.Type() != lua.LTFunction {
		L.Close()
		return nil, ErrNoEntryPoint
	}

	return s, nil
}

// Run calls automate(t, block) against target. ctx bounds the call; a
// cancelled context aborts a running script.
func (s *Script) Run(ctx context.Context, t float64, block int, target Target) error {
	if target == nil {
		return errors.New("automation: target must not be nil")
	}

	s.target = target
	s.state.SetContext(ctx)
	defer func() {
		s.state.RemoveContext()
		s.target = nil
	}()

	err := s.state.CallByParam(lua.P{Fn: s.fn, NRet: 0, Protect: true}, lua.LNumber(t), lua.LNumber(block))
	if err != nil {
		return fmt.Errorf("automation: block %d: %w", block, err)
	}

	return nil
}

// Close releases the Lua state.
func (s *Script) Close() {
	s.state.Close()
}

// store returns the parameter store of the current target. Scripts may
// only touch parameters from inside automate.
func (s *Script) store(L *lua.LState) *params.Store {
	if s.target == nil {
		L.RaiseError("parameters are only accessible inside %s", EntryPoint)
	}
	return s.target.Params()
}

func (s *Script) luaSet(L *lua.LState) int {
	key := L.CheckString(1)
	v := float64(L.CheckNumber(2))
	if err := s.store(L).SetByKey(key, v); err != nil {
		L.ArgError(1, err.Error())
	}
	return 0
}

func (s *Script) luaGet(L *lua.LState) int {
	key := L.CheckString(1)
	v, err := s.store(L).Get(key)
	if err != nil {
		L.ArgError(1, err.Error())
	}
	L.Push(lua.LNumber(v))
	return 1
}

func (s *Script) luaPreset(L *lua.LState) int {
	i := L.CheckInt(1)
	s.store(L)
	s.target.SetProgram(i)
	return 0
}
