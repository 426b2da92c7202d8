package events

import (
	"testing"

	"github.com/nathoo/ruinscript/types"
)

func TestDescribe_ItemReceived(t *testing.T) {
	line, ok := Describe(types.Event{
		Type: "item_received",
		Data: map[string]any{"item": "herb", "count": 2},
	})
	if !ok {
		t.Fatal("expected item_received to be described")
	}
	if line != "Received herb x 2." {
		t.Errorf("unexpected line %q", line)
	}
}

func TestDescribe_EmptyDungeonListIsSilent(t *testing.T) {
	_, ok := Describe(types.Event{
		Type: "dungeons_generated",
		Data: map[string]any{"dungeons": []string(nil)},
	})
	if ok {
		t.Error("expected no notice when nothing was generated")
	}
}

func TestDescribe_UnknownIsSilent(t *testing.T) {
	if _, ok := Describe(types.Event{Type: "something_else"}); ok {
		t.Error("expected unknown events to be silent")
	}
}

func TestNotices_PreservesOrder(t *testing.T) {
	evs := []types.Event{
		{Type: "money_received", Data: map[string]any{"amount": int64(30)}},
		{Type: "unknown"},
		{Type: "custom_quest_started", Data: map[string]any{"quest": "rescue"}},
	}

	got := Notices(evs)
	want := []string{"Received 30 gold.", "Quest started: rescue."}
	if len(got) != len(want) {
		t.Fatalf("expected %d notices, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("notice %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}
