// Package effects implements centralized state mutation via the Apply function.
// Every effect type is one atomic operation. No logic in effects.
package effects

import (
	"fmt"

	"github.com/nathoo/ruinscript/engine/state"
	"github.com/nathoo/ruinscript/types"
)

// Context carries the identity of the script applying the effects.
type Context struct {
	ScriptID string // namespace for set_var / del_var
}

// Apply applies a list of effects to the game state, mutating it.
// Returns the events emitted. On error, effects before the failing one stay
// applied and the failing one leaves the state untouched.
func Apply(s *types.State, hooks state.Hooks, effects []types.Effect, ctx Context) ([]types.Event, error) {
	var events []types.Event

	for _, eff := range effects {
		switch eff.Type {
		case "set_gvar":
			name, _ := eff.Params["name"].(string)
			state.SetGlobalVar(s, name, toValue(eff.Params["value"]))

		case "del_gvar":
			name, _ := eff.Params["name"].(string)
			state.RemoveGlobalVar(s, name)

		case "set_var":
			name, _ := eff.Params["name"].(string)
			state.SetLocalVar(s, ctx.ScriptID, name, toValue(eff.Params["value"]))

		case "del_var":
			name, _ := eff.Params["name"].(string)
			state.RemoveLocalVar(s, ctx.ScriptID, name)

		case "receive_item":
			item, _ := eff.Params["item"].(string)
			count := toInt(eff.Params["count"])
			if count <= 0 {
				return events, fmt.Errorf("receive_item %s: count must be positive, got %d", item, count)
			}
			state.AddItem(s, item, count)
			events = append(events, types.Event{
				Type: "item_received",
				Data: map[string]any{"item": item, "count": count},
			})

		case "remove_item":
			item, _ := eff.Params["item"].(string)
			count := toInt(eff.Params["count"])
			if err := state.RemoveItem(s, item, count); err != nil {
				return events, err
			}
			events = append(events, types.Event{
				Type: "item_removed",
				Data: map[string]any{"item": item, "count": count},
			})

		case "receive_money":
			amount := toInt64(eff.Params["amount"])
			s.Player.Money += amount
			events = append(events, types.Event{
				Type: "money_received",
				Data: map[string]any{"amount": amount},
			})

		case "gen_dungeons":
			created := hooks.GenDungeons(s)
			events = append(events, types.Event{
				Type: "dungeons_generated",
				Data: map[string]any{"dungeons": created},
			})

		case "update_town_quests":
			before := len(s.Quests.Town)
			hooks.UpdateTownQuests(s)
			if added := len(s.Quests.Town) - before; added > 0 {
				events = append(events, types.Event{
					Type: "town_quests_updated",
					Data: map[string]any{"added": added},
				})
			}

		case "receive_quest_rewards":
			amount, ok := hooks.ReceiveQuestRewards(s)
			if ok {
				events = append(events, types.Event{
					Type: "quest_rewards_received",
					Data: map[string]any{"amount": amount},
				})
			}

		case "start_custom_quest":
			quest, _ := eff.Params["quest"].(string)
			phase, _ := eff.Params["phase"].(string)
			if s.Quests.Custom == nil {
				s.Quests.Custom = map[string]string{}
			}
			_, existed := s.Quests.Custom[quest]
			s.Quests.Custom[quest] = phase
			if !existed {
				events = append(events, types.Event{
					Type: "custom_quest_started",
					Data: map[string]any{"quest": quest, "phase": phase},
				})
			}

		case "complete_custom_quest":
			quest, _ := eff.Params["quest"].(string)
			delete(s.Quests.Custom, quest)
			if !state.CustomQuestCompleted(s, quest) {
				s.Quests.Completed = append(s.Quests.Completed, quest)
			}
			events = append(events, types.Event{
				Type: "custom_quest_completed",
				Data: map[string]any{"quest": quest},
			})

		default:
			return events, fmt.Errorf("unknown effect type %q", eff.Type)
		}
	}

	return events, nil
}

func toValue(v any) types.Value {
	switch x := v.(type) {
	case types.Value:
		return x
	case bool:
		return types.Bool(x)
	case string:
		return types.String(x)
	case int:
		return types.Int(int64(x))
	case int64:
		return types.Int(x)
	default:
		return types.None()
	}
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	default:
		return 0
	}
}
