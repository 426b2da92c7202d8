package loader

import (
	"testing"

	"github.com/nathoo/ruinscript/types"
)

func TestParseInput_PlainID(t *testing.T) {
	for _, in := range []string{"example-id", "!example-id", "  elder  "} {
		got, err := ParseInput(in)
		if err != nil {
			t.Fatalf("ParseInput(%q) failed: %v", in, err)
		}
		if len(got.Args) != 0 {
			t.Errorf("ParseInput(%q) args = %v, want none", in, got.Args)
		}
	}

	got, _ := ParseInput("!example-id")
	if got.ScriptID != "example-id" {
		t.Errorf("ScriptID = %q, want example-id", got.ScriptID)
	}
}

func TestParseInput_WithArgs(t *testing.T) {
	got, err := ParseInput("!example-id(arg0 ='(abc)', arg1= 42 )")
	if err != nil {
		t.Fatalf("ParseInput failed: %v", err)
	}
	if got.ScriptID != "example-id" {
		t.Errorf("ScriptID = %q", got.ScriptID)
	}
	if v := got.Args["arg0"]; !v.Equal(types.String("(abc)")) {
		t.Errorf("arg0 = %v", v)
	}
	if v := got.Args["arg1"]; !v.Equal(types.Int(42)) {
		t.Errorf("arg1 = %v", v)
	}
}

func TestParseInput_NegativeAndEmptyString(t *testing.T) {
	got, err := ParseInput("s(n=-3, s='')")
	if err != nil {
		t.Fatalf("ParseInput failed: %v", err)
	}
	if v := got.Args["n"]; !v.Equal(types.Int(-3)) {
		t.Errorf("n = %v", v)
	}
	if v := got.Args["s"]; !v.Equal(types.String("")) {
		t.Errorf("s = %v", v)
	}
}

func TestParseInput_EmptyArgList(t *testing.T) {
	got, err := ParseInput("s()")
	if err != nil {
		t.Fatalf("ParseInput failed: %v", err)
	}
	if len(got.Args) != 0 {
		t.Errorf("expected no args, got %v", got.Args)
	}
}

func TestParseInput_Invalid(t *testing.T) {
	cases := []string{
		"",
		"has space",
		"s(a)",
		"s(a=)",
		"s(a='open)",
		"s(a=1 b=2)",
		"s(a=1,)",
		"s(1a=2)",
		"s(a=x)",
		"s(a=1",
	}
	for _, in := range cases {
		if _, err := ParseInput(in); err == nil {
			t.Errorf("ParseInput(%q) should fail", in)
		}
	}
}
