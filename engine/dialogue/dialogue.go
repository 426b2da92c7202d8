// Package dialogue describes the UI surfaces a script asks the host to open
// and the outcome of advancing a script.
package dialogue

import (
	"errors"
	"fmt"

	"github.com/nathoo/ruinscript/types"
)

var (
	ErrNoTarget      = errors.New("dialog needs a target character")
	ErrChoiceInvalid = errors.New("choice out of range")
)

// Kind is the kind of dialog a script asks to open.
type Kind int

const (
	Talk Kind = iota
	ShopBuy
	ShopSell
	QuestOffer
	QuestReport
)

var kindNames = [...]string{"talk", "shop_buy", "shop_sell", "quest_offer", "quest_report"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Request asks the host to open a dialog.
type Request struct {
	Kind  Kind
	Chara types.CharaID   // the character the dialog is with, if any
	Talk  *types.TalkText // set for Talk
}

// Outcome says what the host does after an advance.
type Outcome int

const (
	// Continue: keep the current surface; a new Request may have been issued.
	Continue Outcome = iota
	// UpdateTalkText: replace the text of the open talk window.
	UpdateTalkText
	// Quit: the script ended or failed; close script surfaces.
	Quit
)

func (o Outcome) String() string {
	switch o {
	case Continue:
		return "continue"
	case UpdateTalkText:
		return "update_talk_text"
	case Quit:
		return "quit"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result is the outcome of one advance.
type Result struct {
	Outcome Outcome
	Request *Request        // set when a dialog should open
	Talk    *types.TalkText // set for UpdateTalkText
	Events  []types.Event   // emitted by the script during the advance
	Err     error           // why the run ended, for Quit after a failure
}

// RequestFor maps a non-talk yield to the dialog it opens. Shops need a
// target character.
func RequestFor(y *types.ScriptYield, target types.CharaID) (*Request, error) {
	switch y.Tag {
	case types.YieldTalk:
		chara := target
		if y.Talk != nil && y.Talk.TargetChara != "" {
			chara = y.Talk.TargetChara
		}
		return &Request{Kind: Talk, Chara: chara, Talk: y.Talk}, nil
	case types.YieldShopBuy, types.YieldShopSell:
		if target == "" {
			return nil, fmt.Errorf("%s: %w", y.Tag, ErrNoTarget)
		}
		kind := ShopBuy
		if y.Tag == types.YieldShopSell {
			kind = ShopSell
		}
		return &Request{Kind: kind, Chara: target}, nil
	case types.YieldQuestOffer:
		return &Request{Kind: QuestOffer, Chara: target}, nil
	case types.YieldQuestReport:
		return &Request{Kind: QuestReport, Chara: target}, nil
	default:
		return nil, fmt.Errorf("unknown yield tag %q", y.Tag)
	}
}

// ChoiceResponse validates a choice index for a talk and returns the value
// the script resumes with. A talk without choices accepts no index and
// resumes with None.
func ChoiceResponse(talk *types.TalkText, index int) (types.Value, error) {
	if talk == nil || len(talk.Choices) == 0 {
		return types.None(), nil
	}
	if index < 0 || index >= len(talk.Choices) {
		return types.None(), fmt.Errorf("choice %d of %d: %w", index, len(talk.Choices), ErrChoiceInvalid)
	}
	return types.Int(int64(index)), nil
}
