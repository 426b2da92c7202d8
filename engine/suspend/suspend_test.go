package suspend

import (
	"testing"

	"github.com/nathoo/ruinscript/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_Talk(t *testing.T) {
	y, err := Decode([]byte(`{"tag":"Talk","talk":{"text_id":"greet","choices":["yes","no"],"target_chara":"elder"}}`))
	require.NoError(t, err)

	assert.Equal(t, types.YieldTalk, y.Tag)
	require.NotNil(t, y.Talk)
	assert.Equal(t, "greet", y.Talk.TextID)
	assert.Equal(t, []string{"yes", "no"}, y.Talk.Choices)
	assert.Equal(t, types.CharaID("elder"), y.Talk.TargetChara)
}

func TestDecode_TalkDefaults(t *testing.T) {
	y, err := Decode([]byte(`{"tag":"Talk","talk":{"text_id":"greet"}}`))
	require.NoError(t, err)

	assert.Equal(t, []string{}, y.Talk.Choices)
	assert.Equal(t, types.CharaID(""), y.Talk.TargetChara)
}

func TestDecode_PayloadlessTags(t *testing.T) {
	for _, tag := range []types.YieldTag{
		types.YieldShopBuy, types.YieldShopSell, types.YieldQuestOffer, types.YieldQuestReport,
	} {
		t.Run(string(tag), func(t *testing.T) {
			y, err := Decode([]byte(`{"tag":"` + string(tag) + `"}`))
			require.NoError(t, err)
			assert.Equal(t, tag, y.Tag)
			assert.Nil(t, y.Talk)
		})
	}
}

func TestDecode_LegacyQuestTag(t *testing.T) {
	y, err := Decode([]byte(`{"tag":"Quest"}`))
	require.NoError(t, err)
	assert.Equal(t, types.YieldQuestOffer, y.Tag)
}

func TestDecode_Invalid(t *testing.T) {
	cases := map[string]string{
		"not json":          `{`,
		"missing tag":       `{}`,
		"unknown tag":       `{"tag":"Dance"}`,
		"talk without body": `{"tag":"Talk"}`,
		"text id not str":   `{"tag":"Talk","talk":{"text_id":3}}`,
		"choice not str":    `{"tag":"Talk","talk":{"text_id":"a","choices":[1]}}`,
		"extra field":       `{"tag":"ShopBuy","price":3}`,
		"payload on shop":   `{"tag":"ShopBuy","talk":{"text_id":"a"}}`,
		"array":             `[]`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(doc))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestDecodeTree(t *testing.T) {
	y, err := DecodeTree(map[string]any{
		"tag":  "Talk",
		"talk": map[string]any{"text_id": "a", "choices": []any{}},
	})
	require.NoError(t, err)
	assert.Equal(t, "a", y.Talk.TextID)
	assert.Empty(t, y.Talk.Choices)
}

func TestEncodeDecode(t *testing.T) {
	orig := &types.ScriptYield{
		Tag:  types.YieldTalk,
		Talk: &types.TalkText{TextID: "greet", Choices: []string{"a"}, TargetChara: "npc"},
	}

	data, err := Encode(orig)
	require.NoError(t, err)
	back, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, orig, back)
}

func TestEncode_TalkWithoutText(t *testing.T) {
	_, err := Encode(&types.ScriptYield{Tag: types.YieldTalk})
	assert.ErrorIs(t, err, ErrInvalid)
}
