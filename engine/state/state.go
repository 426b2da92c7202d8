// Package state manages the mutable simulation state: script variables,
// the player's purse and inventory, quests and the script execution record.
package state

import (
	"errors"
	"fmt"
	"slices"

	"github.com/nathoo/ruinscript/types"
)

// ResultVar is the reserved global that mirrors the last script response
// in legacy-compatible installations.
const ResultVar = "?"

var ErrNotEnoughItems = errors.New("not enough items")

// Options seed a fresh state.
type Options struct {
	Seed  int64
	Money int64
	Time  int64
	Items map[string]int
}

// NewState creates a fresh simulation state with empty variable namespaces.
func NewState(opts Options) *types.State {
	s := Placeholder()
	s.Player.Money = opts.Money
	s.Time = opts.Time
	s.RNGSeed = opts.Seed
	for id, n := range opts.Items {
		if n > 0 {
			s.Player.Inventory[id] = n
		}
	}
	return &s
}

// Placeholder returns an empty state value. It stands in for the real state
// while the real one is handed to a running script.
func Placeholder() types.State {
	return types.State{
		Player: types.Player{Inventory: map[string]int{}},
		Vars: types.Variables{
			Global: map[string]types.Value{},
			Local:  map[string]map[string]types.Value{},
		},
		Dungeons: []string{},
		Quests: types.Quests{
			Town:      []types.TownQuest{},
			Custom:    map[string]string{},
			Completed: []string{},
		},
	}
}

// GlobalVar returns a global variable and whether it exists.
func GlobalVar(s *types.State, name string) (types.Value, bool) {
	v, ok := s.Vars.Global[name]
	return v, ok
}

// SetGlobalVar sets a global variable.
func SetGlobalVar(s *types.State, name string, v types.Value) {
	if s.Vars.Global == nil {
		s.Vars.Global = map[string]types.Value{}
	}
	s.Vars.Global[name] = v
}

// RemoveGlobalVar deletes a global variable. Returns false if it was unset.
func RemoveGlobalVar(s *types.State, name string) bool {
	if _, ok := s.Vars.Global[name]; !ok {
		return false
	}
	delete(s.Vars.Global, name)
	return true
}

// LocalVar returns a variable from the namespace of scriptID.
func LocalVar(s *types.State, scriptID, name string) (types.Value, bool) {
	v, ok := s.Vars.Local[scriptID][name]
	return v, ok
}

// SetLocalVar sets a variable in the namespace of scriptID.
func SetLocalVar(s *types.State, scriptID, name string, v types.Value) {
	if s.Vars.Local == nil {
		s.Vars.Local = map[string]map[string]types.Value{}
	}
	ns, ok := s.Vars.Local[scriptID]
	if !ok {
		ns = map[string]types.Value{}
		s.Vars.Local[scriptID] = ns
	}
	ns[name] = v
}

// RemoveLocalVar deletes a variable from the namespace of scriptID.
func RemoveLocalVar(s *types.State, scriptID, name string) bool {
	ns, ok := s.Vars.Local[scriptID]
	if !ok {
		return false
	}
	if _, ok := ns[name]; !ok {
		return false
	}
	delete(ns, name)
	if len(ns) == 0 {
		delete(s.Vars.Local, scriptID)
	}
	return true
}

// ItemCount returns how many of an item the player carries.
func ItemCount(s *types.State, itemID string) int {
	return s.Player.Inventory[itemID]
}

// AddItem puts n items into the player's inventory.
func AddItem(s *types.State, itemID string, n int) {
	if n <= 0 {
		return
	}
	if s.Player.Inventory == nil {
		s.Player.Inventory = map[string]int{}
	}
	s.Player.Inventory[itemID] += n
}

// RemoveItem takes n items from the player's inventory. Nothing changes when
// the player carries fewer than n.
func RemoveItem(s *types.State, itemID string, n int) error {
	have := s.Player.Inventory[itemID]
	if n <= 0 {
		return fmt.Errorf("remove %d %s: count must be positive", n, itemID)
	}
	if have < n {
		return fmt.Errorf("remove %d %s (have %d): %w", n, itemID, have, ErrNotEnoughItems)
	}
	if have == n {
		delete(s.Player.Inventory, itemID)
	} else {
		s.Player.Inventory[itemID] = have - n
	}
	return nil
}

// CustomQuestStarted reports whether a custom quest is in progress.
func CustomQuestStarted(s *types.State, id string) bool {
	_, ok := s.Quests.Custom[id]
	return ok
}

// CustomQuestCompleted reports whether a custom quest was completed.
func CustomQuestCompleted(s *types.State, id string) bool {
	return slices.Contains(s.Quests.Completed, id)
}

// ClearScriptExec resets the script execution record.
func ClearScriptExec(s *types.State) {
	s.ScriptExec = types.ScriptExec{}
}
