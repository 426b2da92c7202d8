package native

import (
	"testing"

	"github.com/nathoo/ruinscript/engine/handoff"
	"github.com/nathoo/ruinscript/engine/state"
	"github.com/nathoo/ruinscript/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
)

type fixture struct {
	L     *lua.LState
	env   *Env
	state *types.State
}

func newFixture(t *testing.T, scriptID string) *fixture {
	t.Helper()
	L := lua.NewState()
	t.Cleanup(L.Close)

	env := &Env{
		Slot:     handoff.New(state.Placeholder),
		ScriptID: scriptID,
		Args:     map[string]types.Value{"arg0": types.String("abc")},
		Hooks:    state.DefaultHooks{MaxDungeons: 1},
	}
	Register(L, env)
	s := state.NewState(state.Options{Seed: 1, Money: 10, Time: 77, Items: map[string]int{"herb": 2}})
	return &fixture{L: L, env: env, state: s}
}

// run executes code with the state handed off, as a script step would.
func (f *fixture) run(code string) error {
	return f.env.Slot.Enter(f.state, func() error {
		return f.L.DoString(code)
	})
}

func (f *fixture) global(name string) lua.LValue {
	return f.L.GetGlobal(name)
}

func TestRegister_AllNamesDefined(t *testing.T) {
	f := newFixture(t, "s")
	for _, name := range Names {
		assert.Equal(t, lua.LTFunction, f.global(name).Type(), name)
	}
}

func TestNatives_WithoutHandoff(t *testing.T) {
	f := newFixture(t, "s")

	err := f.L.DoString(`get_gvar("x")`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no handoff active")
	assert.ErrorIs(t, f.env.TakeFault(), handoff.ErrNoHandoff)
}

func TestGlobalVars(t *testing.T) {
	f := newFixture(t, "s")

	require.NoError(t, f.run(`
		missing = get_gvar("x")
		set_gvar("x", 30)
		got = get_gvar("x")
		exists = exist_gvar("x")
		del_gvar("x")
		gone = exist_gvar("x")
	`))

	assert.Equal(t, lua.LNil, f.global("missing"))
	assert.Equal(t, lua.LNumber(30), f.global("got"))
	assert.Equal(t, lua.LTrue, f.global("exists"))
	assert.Equal(t, lua.LFalse, f.global("gone"))
}

func TestLocalVars_ScopedToScript(t *testing.T) {
	f := newFixture(t, "elder")

	require.NoError(t, f.run(`set_var("visits", 1)`))

	v, ok := state.LocalVar(f.state, "elder", "visits")
	require.True(t, ok)
	assert.Equal(t, types.Int(1), v)
	_, ok = state.GlobalVar(f.state, "visits")
	assert.False(t, ok)
}

func TestSetGvar_RejectsTables(t *testing.T) {
	f := newFixture(t, "s")

	err := f.run(`set_gvar("x", {})`)
	require.Error(t, err)
	_, ok := state.GlobalVar(f.state, "x")
	assert.False(t, ok)
}

func TestContextNatives(t *testing.T) {
	f := newFixture(t, "elder")
	f.state.ScriptExec.Scene = "village"

	require.NoError(t, f.run(`
		t = current_time()
		id = self_id()
		a = arg("arg0")
		none = arg("missing")
		sc = scene()
	`))

	assert.Equal(t, lua.LNumber(77), f.global("t"))
	assert.Equal(t, lua.LString("elder"), f.global("id"))
	assert.Equal(t, lua.LString("abc"), f.global("a"))
	assert.Equal(t, lua.LNil, f.global("none"))
	assert.Equal(t, lua.LString("village"), f.global("sc"))
}

func TestResponse_ReadOnce(t *testing.T) {
	f := newFixture(t, "s")
	resp := types.Int(1)
	f.state.ScriptExec.Response = &resp

	require.NoError(t, f.run(`
		first = response()
		second = response()
	`))

	assert.Equal(t, lua.LNumber(1), f.global("first"))
	assert.Equal(t, lua.LNil, f.global("second"))
	assert.Nil(t, f.state.ScriptExec.Response)
}

func TestInventory(t *testing.T) {
	f := newFixture(t, "s")

	require.NoError(t, f.run(`
		before = has_item("herb")
		receive_item("herb", 3)
		remove_item("herb")
		after = number_of_item("herb")
		receive_money(5)
	`))

	assert.Equal(t, lua.LNumber(2), f.global("before"))
	assert.Equal(t, lua.LNumber(4), f.global("after"))
	assert.Equal(t, int64(15), f.state.Player.Money)

	evs := f.env.TakeEvents()
	require.Len(t, evs, 3)
	assert.Equal(t, "item_received", evs[0].Type)
	assert.Equal(t, "item_removed", evs[1].Type)
	assert.Equal(t, "money_received", evs[2].Type)
	assert.Empty(t, f.env.TakeEvents())
}

func TestRemoveItem_AbsentRaises(t *testing.T) {
	f := newFixture(t, "s")

	err := f.run(`remove_item("sword", 1)`)
	require.Error(t, err)
	assert.ErrorIs(t, f.env.TakeFault(), state.ErrNotEnoughItems)
}

func TestRandint_Deterministic(t *testing.T) {
	a := newFixture(t, "s")
	b := newFixture(t, "s")

	require.NoError(t, a.run(`r = randint(1, 100)`))
	require.NoError(t, b.run(`r = randint(1, 100)`))

	assert.Equal(t, a.global("r"), b.global("r"))
	assert.NotZero(t, a.state.RNGPosition)
}

func TestWorldAndQuests(t *testing.T) {
	f := newFixture(t, "s")

	require.NoError(t, f.run(`
		gen_dungeons()
		paid = receive_quest_rewards()
		start_custom_quest("rescue", "start")
		started = custom_quest_started("rescue")
		complete_custom_quest("rescue")
		done = custom_quest_completed("rescue")
	`))

	assert.Equal(t, []string{"dungeon-1"}, f.state.Dungeons)
	assert.Equal(t, lua.LFalse, f.global("paid"))
	assert.Equal(t, lua.LTrue, f.global("started"))
	assert.Equal(t, lua.LTrue, f.global("done"))
}
