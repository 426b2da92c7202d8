// Package events turns the events emitted by effects into player-facing
// notices. Front ends render notices between dialogue lines.
package events

import (
	"fmt"
	"strings"

	"github.com/nathoo/ruinscript/types"
)

// Describe renders an event as a one-line notice. The second result is false
// for events that have nothing to tell the player.
func Describe(ev types.Event) (string, bool) {
	switch ev.Type {
	case "item_received":
		return fmt.Sprintf("Received %v x %v.", ev.Data["item"], ev.Data["count"]), true
	case "item_removed":
		return fmt.Sprintf("Handed over %v x %v.", ev.Data["item"], ev.Data["count"]), true
	case "money_received":
		return fmt.Sprintf("Received %v gold.", ev.Data["amount"]), true
	case "quest_rewards_received":
		return fmt.Sprintf("Quest rewards: %v gold.", ev.Data["amount"]), true
	case "dungeons_generated":
		ids, _ := ev.Data["dungeons"].([]string)
		if len(ids) == 0 {
			return "", false
		}
		return "New dungeons discovered: " + strings.Join(ids, ", ") + ".", true
	case "custom_quest_started":
		return fmt.Sprintf("Quest started: %v.", ev.Data["quest"]), true
	case "custom_quest_completed":
		return fmt.Sprintf("Quest completed: %v.", ev.Data["quest"]), true
	default:
		return "", false
	}
}

// Notices describes every event in order, skipping silent ones.
func Notices(evs []types.Event) []string {
	var out []string
	for _, ev := range evs {
		if line, ok := Describe(ev); ok {
			out = append(out, line)
		}
	}
	return out
}
