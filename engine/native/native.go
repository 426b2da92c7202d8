// Package native registers the functions scripts use to observe and mutate
// the simulation state.
//
// Every native borrows the state from the handoff slot of the running step,
// performs one operation and converts its result through the bridge. Calling
// a native outside a step raises a script error.
package native

import (
	"fmt"

	"github.com/nathoo/ruinscript/engine/bridge"
	"github.com/nathoo/ruinscript/engine/effects"
	"github.com/nathoo/ruinscript/engine/handoff"
	"github.com/nathoo/ruinscript/engine/state"
	"github.com/nathoo/ruinscript/types"
	lua "github.com/yuin/gopher-lua"
)

// Env is the per-scope context captured by the natives.
type Env struct {
	Slot     *handoff.Slot[types.State]
	ScriptID string
	Args     map[string]types.Value
	Hooks    state.Hooks

	events []types.Event
	fault  error
}

// TakeEvents returns the events emitted since the last call and clears them.
func (e *Env) TakeEvents() []types.Event {
	evs := e.events
	e.events = nil
	return evs
}

// TakeFault returns the Go error behind the most recent script error raised
// by a native, and clears it.
func (e *Env) TakeFault() error {
	err := e.fault
	e.fault = nil
	return err
}

// Names lists every registered native, in registration order.
var Names = []string{
	"get_gvar", "set_gvar", "exist_gvar", "del_gvar",
	"get_var", "set_var", "exist_var", "del_var",
	"current_time", "self_id", "arg", "scene", "response", "randint",
	"has_item", "number_of_item", "receive_item", "remove_item", "receive_money",
	"gen_dungeons", "receive_quest_rewards",
	"start_custom_quest", "custom_quest_started", "complete_custom_quest", "custom_quest_completed",
}

// Register installs the natives as globals of L.
func Register(L *lua.LState, env *Env) {
	fns := map[string]lua.LGFunction{
		"get_gvar":   env.getGvar,
		"set_gvar":   env.setGvar,
		"exist_gvar": env.existGvar,
		"del_gvar":   env.delGvar,
		"get_var":    env.getVar,
		"set_var":    env.setVar,
		"exist_var":  env.existVar,
		"del_var":    env.delVar,

		"current_time": env.currentTime,
		"self_id":      env.selfID,
		"arg":          env.arg,
		"scene":        env.scene,
		"response":     env.response,
		"randint":      env.randint,

		"has_item":       env.numberOfItem,
		"number_of_item": env.numberOfItem,
		"receive_item":   env.receiveItem,
		"remove_item":    env.removeItem,
		"receive_money":  env.receiveMoney,

		"gen_dungeons":          env.genDungeons,
		"receive_quest_rewards": env.receiveQuestRewards,

		"start_custom_quest":     env.startCustomQuest,
		"custom_quest_started":   env.customQuestStarted,
		"complete_custom_quest":  env.completeCustomQuest,
		"custom_quest_completed": env.customQuestCompleted,
	}
	for _, name := range Names {
		L.SetGlobal(name, L.NewFunction(fns[name]))
	}
}

// borrow returns the handed-off state or raises a script error.
func (e *Env) borrow(L *lua.LState) *types.State {
	s, err := e.Slot.Borrow()
	if err != nil {
		e.raise(L, err)
	}
	return s
}

func (e *Env) raise(L *lua.LState, err error) {
	e.fault = err
	L.RaiseError("%s", err.Error())
}

// apply runs effects against the borrowed state, collecting events.
func (e *Env) apply(L *lua.LState, effs ...types.Effect) {
	s := e.borrow(L)
	evs, err := effects.Apply(s, e.Hooks, effs, effects.Context{ScriptID: e.ScriptID})
	e.events = append(e.events, evs...)
	if err != nil {
		e.raise(L, err)
	}
}

// checkValue converts argument n to a host Value.
func (e *Env) checkValue(L *lua.LState, n int) types.Value {
	v, err := bridge.ToHost(L.Get(n))
	if err != nil {
		e.fault = err
		L.ArgError(n, err.Error())
	}
	return v
}

// checkCount reads an optional positive count at argument n, defaulting to 1.
func (e *Env) checkCount(L *lua.LState, n int) int {
	v := e.checkValue(L, n)
	switch v.Kind {
	case types.KindNone:
		return 1
	case types.KindInt:
		return int(v.Int)
	default:
		L.ArgError(n, fmt.Sprintf("count must be an integer, got %s", v.Kind))
		return 0
	}
}

func (e *Env) checkInt(L *lua.LState, n int) int64 {
	v := e.checkValue(L, n)
	if v.Kind != types.KindInt {
		L.ArgError(n, fmt.Sprintf("integer expected, got %s", v.Kind))
	}
	return v.Int
}

func pushValue(L *lua.LState, v types.Value, ok bool) int {
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(bridge.ToScript(v))
	return 1
}

// Variables.

func (e *Env) getGvar(L *lua.LState) int {
	name := L.CheckString(1)
	v, ok := state.GlobalVar(e.borrow(L), name)
	return pushValue(L, v, ok)
}

func (e *Env) setGvar(L *lua.LState) int {
	name := L.CheckString(1)
	v := e.checkValue(L, 2)
	e.apply(L, types.Effect{Type: "set_gvar", Params: map[string]any{"name": name, "value": v}})
	return 0
}

func (e *Env) existGvar(L *lua.LState) int {
	name := L.CheckString(1)
	_, ok := state.GlobalVar(e.borrow(L), name)
	L.Push(lua.LBool(ok))
	return 1
}

func (e *Env) delGvar(L *lua.LState) int {
	name := L.CheckString(1)
	e.apply(L, types.Effect{Type: "del_gvar", Params: map[string]any{"name": name}})
	return 0
}

func (e *Env) getVar(L *lua.LState) int {
	name := L.CheckString(1)
	v, ok := state.LocalVar(e.borrow(L), e.ScriptID, name)
	return pushValue(L, v, ok)
}

func (e *Env) setVar(L *lua.LState) int {
	name := L.CheckString(1)
	v := e.checkValue(L, 2)
	e.apply(L, types.Effect{Type: "set_var", Params: map[string]any{"name": name, "value": v}})
	return 0
}

func (e *Env) existVar(L *lua.LState) int {
	name := L.CheckString(1)
	_, ok := state.LocalVar(e.borrow(L), e.ScriptID, name)
	L.Push(lua.LBool(ok))
	return 1
}

func (e *Env) delVar(L *lua.LState) int {
	name := L.CheckString(1)
	e.apply(L, types.Effect{Type: "del_var", Params: map[string]any{"name": name}})
	return 0
}

// Script context.

func (e *Env) currentTime(L *lua.LState) int {
	L.Push(lua.LNumber(e.borrow(L).Time))
	return 1
}

func (e *Env) selfID(L *lua.LState) int {
	L.Push(lua.LString(e.ScriptID))
	return 1
}

func (e *Env) arg(L *lua.LState) int {
	name := L.CheckString(1)
	v, ok := e.Args[name]
	return pushValue(L, v, ok)
}

func (e *Env) scene(L *lua.LState) int {
	L.Push(lua.LString(e.borrow(L).ScriptExec.Scene))
	return 1
}

// response takes the value written by the host before this resume. A second
// call in the same step returns nil.
func (e *Env) response(L *lua.LState) int {
	s := e.borrow(L)
	resp := s.ScriptExec.Response
	s.ScriptExec.Response = nil
	if resp == nil {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(bridge.ToScript(*resp))
	return 1
}

func (e *Env) randint(L *lua.LState) int {
	lo := e.checkInt(L, 1)
	hi := e.checkInt(L, 2)
	L.Push(lua.LNumber(state.RandInt(e.borrow(L), lo, hi)))
	return 1
}

// Inventory and money.

func (e *Env) numberOfItem(L *lua.LState) int {
	item := L.CheckString(1)
	L.Push(lua.LNumber(state.ItemCount(e.borrow(L), item)))
	return 1
}

func (e *Env) receiveItem(L *lua.LState) int {
	item := L.CheckString(1)
	n := e.checkCount(L, 2)
	e.apply(L, types.Effect{Type: "receive_item", Params: map[string]any{"item": item, "count": n}})
	return 0
}

func (e *Env) removeItem(L *lua.LState) int {
	item := L.CheckString(1)
	n := e.checkCount(L, 2)
	e.apply(L, types.Effect{Type: "remove_item", Params: map[string]any{"item": item, "count": n}})
	return 0
}

func (e *Env) receiveMoney(L *lua.LState) int {
	amount := e.checkInt(L, 1)
	e.apply(L, types.Effect{Type: "receive_money", Params: map[string]any{"amount": amount}})
	return 0
}

// World.

func (e *Env) genDungeons(L *lua.LState) int {
	e.apply(L, types.Effect{Type: "gen_dungeons"})
	return 0
}

func (e *Env) receiveQuestRewards(L *lua.LState) int {
	before := len(e.events)
	e.apply(L, types.Effect{Type: "receive_quest_rewards"})
	L.Push(lua.LBool(len(e.events) > before))
	return 1
}

// Custom quests.

func (e *Env) startCustomQuest(L *lua.LState) int {
	quest := L.CheckString(1)
	phase := L.OptString(2, "start")
	e.apply(L, types.Effect{Type: "start_custom_quest", Params: map[string]any{"quest": quest, "phase": phase}})
	return 0
}

func (e *Env) customQuestStarted(L *lua.LState) int {
	quest := L.CheckString(1)
	L.Push(lua.LBool(state.CustomQuestStarted(e.borrow(L), quest)))
	return 1
}

func (e *Env) completeCustomQuest(L *lua.LState) int {
	quest := L.CheckString(1)
	e.apply(L, types.Effect{Type: "complete_custom_quest", Params: map[string]any{"quest": quest}})
	return 0
}

func (e *Env) customQuestCompleted(L *lua.LState) int {
	quest := L.CheckString(1)
	L.Push(lua.LBool(state.CustomQuestCompleted(e.borrow(L), quest)))
	return 1
}
