package wsui

// Client message types.
const (
	TypeStart   = "start"
	TypeRespond = "respond"
	TypeClose   = "close"
	TypeAbandon = "abandon"
)

// Server message types.
const (
	TypeTalk   = "talk"
	TypeUpdate = "update"
	TypeDialog = "dialog"
	TypeQuit   = "quit"
	TypeError  = "error"
)

// ClientMsg is a message from the remote surface.
type ClientMsg struct {
	Type   string `json:"type"`
	Input  string `json:"input,omitempty"`  // start: "id" or "!id(a='x')"
	Chara  string `json:"chara,omitempty"`  // start
	Scene  string `json:"scene,omitempty"`  // start
	Choice *int   `json:"choice,omitempty"` // respond: 0-based choice index
}

// ServerMsg tells the remote surface what to show.
type ServerMsg struct {
	Type    string   `json:"type"`
	Run     string   `json:"run,omitempty"`
	Chara   string   `json:"chara,omitempty"`
	TextID  string   `json:"text_id,omitempty"`
	Text    string   `json:"text,omitempty"`
	Choices []string `json:"choices,omitempty"`
	Dialog  string   `json:"dialog,omitempty"` // shop_buy, shop_sell, quest_offer, quest_report
	Notices []string `json:"notices,omitempty"`
	Error   string   `json:"error,omitempty"`
}
