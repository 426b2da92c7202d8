// Package types defines the shared data structures for the ruinscript engine.
// Apart from Value (value.go), this file contains only type definitions.
package types

// CharaID identifies a character in the simulation. The empty ID means none.
type CharaID string

// YieldTag selects the variant of a ScriptYield.
type YieldTag string

const (
	YieldTalk        YieldTag = "Talk"
	YieldShopBuy     YieldTag = "ShopBuy"
	YieldShopSell    YieldTag = "ShopSell"
	YieldQuestOffer  YieldTag = "QuestOffer"
	YieldQuestReport YieldTag = "QuestReport"
)

// TalkText is the payload of a Talk suspension.
type TalkText struct {
	TextID      string
	Choices     []string
	TargetChara CharaID // overrides the script's target when non-empty
}

// ScriptYield describes why a script paused. Talk is set only for YieldTalk.
type ScriptYield struct {
	Tag  YieldTag
	Talk *TalkText
}

// ScriptExec tracks the script run currently attached to the state.
type ScriptExec struct {
	CurrentScriptID string  `json:"current_script_id,omitempty"`
	TargetChara     CharaID `json:"target_chara,omitempty"`
	Scene           string  `json:"scene,omitempty"`
	Response        *Value  `json:"response,omitempty"` // written before resume, taken by response()
	YieldResult     Value   `json:"yield_result"`       // last response fed to the script
	Talking         bool    `json:"talking,omitempty"`  // a talk window is open
	Dialog          bool    `json:"dialog,omitempty"`   // a non-talk dialog is open
}

// Variables holds script variables: one global namespace and one namespace
// per script id.
type Variables struct {
	Global map[string]Value            `json:"global"`
	Local  map[string]map[string]Value `json:"local"`
}

// Player holds the player's purse and inventory (item id → count).
type Player struct {
	Money     int64          `json:"money"`
	Inventory map[string]int `json:"inventory"`
}

// TownQuest is a quest offered on a town board.
type TownQuest struct {
	ID        string `json:"id"`
	Reward    int64  `json:"reward"`
	Accepted  bool   `json:"accepted,omitempty"`
	Completed bool   `json:"completed,omitempty"`
}

// Quests holds town board quests and script-driven custom quests.
type Quests struct {
	Town      []TownQuest       `json:"town"`
	Custom    map[string]string `json:"custom"` // id → phase
	Completed []string          `json:"completed"`
}

// State is the complete mutable simulation state.
type State struct {
	Player      Player     `json:"player"`
	Vars        Variables  `json:"vars"`
	Time        int64      `json:"time"` // game seconds
	Dungeons    []string   `json:"dungeons"`
	Quests      Quests     `json:"quests"`
	ScriptExec  ScriptExec `json:"script_exec"`
	RNGSeed     int64      `json:"rng_seed"`
	RNGPosition int64      `json:"rng_position"`
}

// Effect is a single atomic state mutation instruction.
type Effect struct {
	Type   string
	Params map[string]any
}

// Event is emitted after an effect is applied.
type Event struct {
	Type string
	Data map[string]any
}
