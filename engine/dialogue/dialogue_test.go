package dialogue

import (
	"errors"
	"testing"

	"github.com/nathoo/ruinscript/types"
)

func TestRequestFor_TalkUsesScriptTarget(t *testing.T) {
	y := &types.ScriptYield{Tag: types.YieldTalk, Talk: &types.TalkText{TextID: "hi"}}

	req, err := RequestFor(y, "elder")
	if err != nil {
		t.Fatalf("RequestFor failed: %v", err)
	}
	if req.Kind != Talk || req.Chara != "elder" {
		t.Errorf("expected talk with elder, got %+v", req)
	}
	if req.Talk.TextID != "hi" {
		t.Errorf("expected text hi, got %q", req.Talk.TextID)
	}
}

func TestRequestFor_TalkTargetOverride(t *testing.T) {
	y := &types.ScriptYield{Tag: types.YieldTalk, Talk: &types.TalkText{TextID: "hi", TargetChara: "guard"}}

	req, _ := RequestFor(y, "elder")
	if req.Chara != "guard" {
		t.Errorf("expected guard, got %q", req.Chara)
	}
}

func TestRequestFor_ShopNeedsTarget(t *testing.T) {
	for _, tag := range []types.YieldTag{types.YieldShopBuy, types.YieldShopSell} {
		_, err := RequestFor(&types.ScriptYield{Tag: tag}, "")
		if !errors.Is(err, ErrNoTarget) {
			t.Errorf("%s: expected ErrNoTarget, got %v", tag, err)
		}
	}
}

func TestRequestFor_Kinds(t *testing.T) {
	cases := map[types.YieldTag]Kind{
		types.YieldShopBuy:     ShopBuy,
		types.YieldShopSell:    ShopSell,
		types.YieldQuestOffer:  QuestOffer,
		types.YieldQuestReport: QuestReport,
	}
	for tag, want := range cases {
		req, err := RequestFor(&types.ScriptYield{Tag: tag}, "merchant")
		if err != nil {
			t.Fatalf("%s: %v", tag, err)
		}
		if req.Kind != want {
			t.Errorf("%s: expected %v, got %v", tag, want, req.Kind)
		}
		if req.Chara != "merchant" {
			t.Errorf("%s: expected merchant, got %q", tag, req.Chara)
		}
	}
}

func TestRequestFor_UnknownTag(t *testing.T) {
	if _, err := RequestFor(&types.ScriptYield{Tag: "Dance"}, "x"); err == nil {
		t.Error("expected error for unknown tag")
	}
}

func TestChoiceResponse(t *testing.T) {
	talk := &types.TalkText{TextID: "q", Choices: []string{"yes", "no"}}

	v, err := ChoiceResponse(talk, 1)
	if err != nil {
		t.Fatalf("ChoiceResponse failed: %v", err)
	}
	if !v.Equal(types.Int(1)) {
		t.Errorf("expected Int(1), got %v", v)
	}

	if _, err := ChoiceResponse(talk, 2); !errors.Is(err, ErrChoiceInvalid) {
		t.Errorf("expected ErrChoiceInvalid, got %v", err)
	}
	if _, err := ChoiceResponse(talk, -1); !errors.Is(err, ErrChoiceInvalid) {
		t.Errorf("expected ErrChoiceInvalid, got %v", err)
	}
}

func TestChoiceResponse_NoChoices(t *testing.T) {
	v, err := ChoiceResponse(&types.TalkText{TextID: "q"}, 5)
	if err != nil {
		t.Fatalf("ChoiceResponse failed: %v", err)
	}
	if !v.IsNone() {
		t.Errorf("expected None, got %v", v)
	}
}

func TestStrings(t *testing.T) {
	if ShopSell.String() != "shop_sell" {
		t.Errorf("unexpected %q", ShopSell.String())
	}
	if Quit.String() != "quit" {
		t.Errorf("unexpected %q", Quit.String())
	}
}
