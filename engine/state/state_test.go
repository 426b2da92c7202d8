package state

import (
	"errors"
	"testing"

	"github.com/nathoo/ruinscript/types"
)

func TestNewState_EmptyNamespaces(t *testing.T) {
	s := NewState(Options{})

	if len(s.Vars.Global) != 0 {
		t.Errorf("expected empty globals, got %v", s.Vars.Global)
	}
	if len(s.Vars.Local) != 0 {
		t.Errorf("expected empty locals, got %v", s.Vars.Local)
	}
	if s.ScriptExec.CurrentScriptID != "" {
		t.Errorf("expected no running script, got %q", s.ScriptExec.CurrentScriptID)
	}
}

func TestNewState_AppliesOptions(t *testing.T) {
	s := NewState(Options{Seed: 9, Money: 120, Time: 3600, Items: map[string]int{"herb": 2, "junk": 0}})

	if s.Player.Money != 120 {
		t.Errorf("expected 120 money, got %d", s.Player.Money)
	}
	if s.Time != 3600 {
		t.Errorf("expected time 3600, got %d", s.Time)
	}
	if s.RNGSeed != 9 {
		t.Errorf("expected seed 9, got %d", s.RNGSeed)
	}
	if got := ItemCount(s, "herb"); got != 2 {
		t.Errorf("expected 2 herbs, got %d", got)
	}
	if _, ok := s.Player.Inventory["junk"]; ok {
		t.Error("zero-count items should not be stored")
	}
}

func TestGlobalVar_UnsetReportsMissing(t *testing.T) {
	s := NewState(Options{})

	if _, ok := GlobalVar(s, "nonexistent"); ok {
		t.Error("expected unset global to be missing")
	}
}

func TestGlobalVar_SetAndGet(t *testing.T) {
	s := NewState(Options{})
	SetGlobalVar(s, "x", types.Int(1))

	v, ok := GlobalVar(s, "x")
	if !ok || !v.Equal(types.Int(1)) {
		t.Errorf("expected Int(1), got %v (found=%v)", v, ok)
	}
}

func TestGlobalVar_NilMapIsInitialized(t *testing.T) {
	s := &types.State{}
	SetGlobalVar(s, "x", types.String("a"))

	if v, _ := GlobalVar(s, "x"); !v.Equal(types.String("a")) {
		t.Errorf("expected \"a\", got %v", v)
	}
}

func TestRemoveGlobalVar(t *testing.T) {
	s := NewState(Options{})
	SetGlobalVar(s, "x", types.Bool(true))

	if !RemoveGlobalVar(s, "x") {
		t.Fatal("expected removal of existing var to succeed")
	}
	if RemoveGlobalVar(s, "x") {
		t.Error("expected second removal to report missing")
	}
}

func TestLocalVar_IsolatedPerScript(t *testing.T) {
	s := NewState(Options{})
	SetLocalVar(s, "script-a", "x", types.Int(1))

	if _, ok := LocalVar(s, "script-b", "x"); ok {
		t.Error("local var of script-a leaked into script-b")
	}
	v, ok := LocalVar(s, "script-a", "x")
	if !ok || !v.Equal(types.Int(1)) {
		t.Errorf("expected Int(1) in script-a, got %v", v)
	}
	if _, ok := GlobalVar(s, "x"); ok {
		t.Error("local var leaked into globals")
	}
}

func TestRemoveLocalVar_DropsEmptyNamespace(t *testing.T) {
	s := NewState(Options{})
	SetLocalVar(s, "a", "x", types.Int(1))

	if !RemoveLocalVar(s, "a", "x") {
		t.Fatal("expected removal to succeed")
	}
	if _, ok := s.Vars.Local["a"]; ok {
		t.Error("expected empty namespace to be dropped")
	}
	if RemoveLocalVar(s, "a", "x") {
		t.Error("expected removal from missing namespace to fail")
	}
}

func TestAddItem_Accumulates(t *testing.T) {
	s := NewState(Options{})
	AddItem(s, "herb", 2)
	AddItem(s, "herb", 3)
	AddItem(s, "herb", 0)

	if got := ItemCount(s, "herb"); got != 5 {
		t.Errorf("expected 5, got %d", got)
	}
}

func TestRemoveItem_Partial(t *testing.T) {
	s := NewState(Options{Items: map[string]int{"herb": 5}})

	if err := RemoveItem(s, "herb", 2); err != nil {
		t.Fatalf("RemoveItem failed: %v", err)
	}
	if got := ItemCount(s, "herb"); got != 3 {
		t.Errorf("expected 3 left, got %d", got)
	}
}

func TestRemoveItem_AllDeletesEntry(t *testing.T) {
	s := NewState(Options{Items: map[string]int{"herb": 2}})

	if err := RemoveItem(s, "herb", 2); err != nil {
		t.Fatalf("RemoveItem failed: %v", err)
	}
	if _, ok := s.Player.Inventory["herb"]; ok {
		t.Error("expected herb entry to be deleted")
	}
}

func TestRemoveItem_AbsentFails(t *testing.T) {
	s := NewState(Options{Items: map[string]int{"herb": 1}})

	err := RemoveItem(s, "herb", 2)
	if !errors.Is(err, ErrNotEnoughItems) {
		t.Fatalf("expected ErrNotEnoughItems, got %v", err)
	}
	if got := ItemCount(s, "herb"); got != 1 {
		t.Errorf("failed removal changed inventory: %d", got)
	}
}

func TestRemoveItem_NonPositiveCount(t *testing.T) {
	s := NewState(Options{Items: map[string]int{"herb": 1}})

	if err := RemoveItem(s, "herb", 0); err == nil {
		t.Error("expected error for zero count")
	}
}

func TestCustomQuests(t *testing.T) {
	s := NewState(Options{})
	s.Quests.Custom["rescue"] = "start"
	s.Quests.Completed = append(s.Quests.Completed, "escort")

	if !CustomQuestStarted(s, "rescue") {
		t.Error("expected rescue to be started")
	}
	if CustomQuestCompleted(s, "rescue") {
		t.Error("rescue should not be completed")
	}
	if !CustomQuestCompleted(s, "escort") {
		t.Error("expected escort to be completed")
	}
}

func TestClearScriptExec(t *testing.T) {
	s := NewState(Options{})
	resp := types.Int(1)
	s.ScriptExec = types.ScriptExec{
		CurrentScriptID: "x",
		TargetChara:     "npc",
		Response:        &resp,
		Talking:         true,
		Dialog:          true,
	}

	ClearScriptExec(s)

	if s.ScriptExec != (types.ScriptExec{}) {
		t.Errorf("expected zero ScriptExec, got %+v", s.ScriptExec)
	}
}

func TestPlaceholder_IndependentMaps(t *testing.T) {
	a := Placeholder()
	b := Placeholder()
	SetGlobalVar(&a, "x", types.Int(1))

	if _, ok := GlobalVar(&b, "x"); ok {
		t.Error("placeholders share variable maps")
	}
}

func TestDefaultHooks_GenDungeons(t *testing.T) {
	s := NewState(Options{})
	h := DefaultHooks{MaxDungeons: 3}

	created := h.GenDungeons(s)
	if len(created) != 3 || len(s.Dungeons) != 3 {
		t.Fatalf("expected 3 dungeons, got created=%v all=%v", created, s.Dungeons)
	}
	if again := h.GenDungeons(s); len(again) != 0 {
		t.Errorf("expected no new dungeons at the cap, got %v", again)
	}
}

func TestDefaultHooks_UpdateTownQuests_FillsBoard(t *testing.T) {
	s := NewState(Options{Seed: 3})
	h := DefaultHooks{BoardSize: 2}

	h.UpdateTownQuests(s)
	if len(s.Quests.Town) != 2 {
		t.Fatalf("expected 2 quests, got %d", len(s.Quests.Town))
	}
	for _, q := range s.Quests.Town {
		if q.Reward < 50 || q.Reward > 200 {
			t.Errorf("reward out of range: %d", q.Reward)
		}
	}

	s.Quests.Town[0].Accepted = true
	h.UpdateTownQuests(s)
	if len(s.Quests.Town) != 3 {
		t.Errorf("expected board refilled to 3 quests, got %d", len(s.Quests.Town))
	}
}

func TestDefaultHooks_ReceiveQuestRewards(t *testing.T) {
	s := NewState(Options{Money: 10})
	s.Quests.Town = []types.TownQuest{
		{ID: "a", Reward: 100, Accepted: true, Completed: true},
		{ID: "b", Reward: 50, Accepted: true},
	}
	h := DefaultHooks{}

	amount, ok := h.ReceiveQuestRewards(s)
	if !ok || amount != 100 {
		t.Fatalf("expected 100 paid, got %d (ok=%v)", amount, ok)
	}
	if s.Player.Money != 110 {
		t.Errorf("expected 110 money, got %d", s.Player.Money)
	}
	if len(s.Quests.Town) != 1 || s.Quests.Town[0].ID != "b" {
		t.Errorf("expected only quest b left, got %+v", s.Quests.Town)
	}
	if _, ok := h.ReceiveQuestRewards(s); ok {
		t.Error("expected nothing due on second call")
	}
}
