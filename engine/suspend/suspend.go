// Package suspend defines the wire form of a ScriptYield.
//
// A script suspends by yielding a table. The table is converted to a JSON
// document, validated against yield.schema.json and decoded into a
// types.ScriptYield. The wire form is
//
//	{"tag": "Talk", "talk": {"text_id": "...", "choices": [...], "target_chara": null}}
//
// Only Talk carries a payload. The legacy tag "Quest" decodes as QuestOffer.
package suspend

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nathoo/ruinscript/types"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed yield.schema.json
var schemaJSON string

var ErrInvalid = errors.New("invalid script yield")

var schema = jsonschema.MustCompileString("yield.schema.json", schemaJSON)

const legacyQuestTag = "Quest"

type wireTalk struct {
	TextID      string   `json:"text_id"`
	Choices     []string `json:"choices"`
	TargetChara *string  `json:"target_chara"`
}

type wireYield struct {
	Tag  string    `json:"tag"`
	Talk *wireTalk `json:"talk,omitempty"`
}

// Decode validates a wire document and converts it to a ScriptYield.
func Decode(data []byte) (*types.ScriptYield, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	var w wireYield
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	tag := types.YieldTag(w.Tag)
	if w.Tag == legacyQuestTag {
		tag = types.YieldQuestOffer
	}
	y := &types.ScriptYield{Tag: tag}
	if tag == types.YieldTalk {
		talk := &types.TalkText{
			TextID:  w.Talk.TextID,
			Choices: w.Talk.Choices,
		}
		if talk.Choices == nil {
			talk.Choices = []string{}
		}
		if w.Talk.TargetChara != nil {
			talk.TargetChara = types.CharaID(*w.Talk.TargetChara)
		}
		y.Talk = talk
	}
	return y, nil
}

// DecodeTree marshals a JSON-compatible tree and decodes it.
func DecodeTree(tree any) (*types.ScriptYield, error) {
	data, err := json.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return Decode(data)
}

// Encode converts a ScriptYield to its wire document.
func Encode(y *types.ScriptYield) ([]byte, error) {
	if y == nil {
		return nil, fmt.Errorf("%w: nil yield", ErrInvalid)
	}
	w := wireYield{Tag: string(y.Tag)}
	if y.Tag == types.YieldTalk {
		if y.Talk == nil {
			return nil, fmt.Errorf("%w: Talk without text", ErrInvalid)
		}
		wt := &wireTalk{TextID: y.Talk.TextID, Choices: y.Talk.Choices}
		if wt.Choices == nil {
			wt.Choices = []string{}
		}
		if y.Talk.TargetChara != "" {
			target := string(y.Talk.TargetChara)
			wt.TargetChara = &target
		}
		w.Talk = wt
	}
	return json.Marshal(w)
}
