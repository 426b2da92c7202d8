package state

import (
	"fmt"

	"github.com/nathoo/ruinscript/types"
)

// Hooks are the simulation-side collaborators that scripts reach through
// native functions. Dungeon generation and quest bookkeeping belong to the
// game; the engine only calls into them.
type Hooks interface {
	// GenDungeons creates dungeons around the current region and returns
	// the ids of the new ones.
	GenDungeons(s *types.State) []string
	// UpdateTownQuests refreshes the quest board before it is shown.
	UpdateTownQuests(s *types.State)
	// ReceiveQuestRewards pays out completed town quests. It returns the
	// money paid and false if nothing was due.
	ReceiveQuestRewards(s *types.State) (int64, bool)
}

// DefaultHooks is a small self-contained implementation of Hooks.
type DefaultHooks struct {
	MaxDungeons int // upper bound of generated dungeons
	BoardSize   int // open quests kept on the town board
}

var _ Hooks = DefaultHooks{}

func (h DefaultHooks) GenDungeons(s *types.State) []string {
	var created []string
	for len(s.Dungeons) < h.MaxDungeons {
		id := fmt.Sprintf("dungeon-%d", len(s.Dungeons)+1)
		s.Dungeons = append(s.Dungeons, id)
		created = append(created, id)
	}
	return created
}

func (h DefaultHooks) UpdateTownQuests(s *types.State) {
	open := 0
	for _, q := range s.Quests.Town {
		if !q.Accepted {
			open++
		}
	}
	for ; open < h.BoardSize; open++ {
		s.Quests.Town = append(s.Quests.Town, types.TownQuest{
			ID:     fmt.Sprintf("town-quest-%d", RandInt(s, 1, 1_000_000)),
			Reward: RandInt(s, 50, 200),
		})
	}
}

func (h DefaultHooks) ReceiveQuestRewards(s *types.State) (int64, bool) {
	var total int64
	paid := false
	kept := s.Quests.Town[:0]
	for _, q := range s.Quests.Town {
		if q.Completed {
			total += q.Reward
			paid = true
			continue
		}
		kept = append(kept, q)
	}
	s.Quests.Town = kept
	s.Player.Money += total
	return total, paid
}
