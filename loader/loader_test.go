package loader

import (
	"errors"
	"strings"
	"testing"
)

func TestLoad_Village(t *testing.T) {
	lib, err := Load("testdata/village")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	ids := lib.IDs()
	if len(ids) != 2 || ids[0] != "elder" || ids[1] != "merchant" {
		t.Errorf("IDs = %v, want [elder merchant]", ids)
	}
	src, err := lib.Source("elder")
	if err != nil {
		t.Fatalf("Source failed: %v", err)
	}
	if !strings.Contains(src, "rrscript_main") {
		t.Errorf("unexpected elder source %q", src)
	}
	if got := lib.Text("elder.bye"); got != "Safe travels." {
		t.Errorf("Text(elder.bye) = %q", got)
	}
}

func TestLibrary_UnknownTextFallsBackToID(t *testing.T) {
	lib := &Library{Texts: map[string]string{}}

	if got := lib.Text("nope"); got != "nope" {
		t.Errorf("Text(nope) = %q, want nope", got)
	}
}

func TestLibrary_SourceUnknown(t *testing.T) {
	lib, err := Load("testdata/village")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	_, err = lib.Source("dragon")
	if !errors.Is(err, ErrNoObject) {
		t.Errorf("expected ErrNoObject, got %v", err)
	}
}

func TestLoad_NoScripts_Fails(t *testing.T) {
	if _, err := Load("testdata/empty"); err == nil {
		t.Error("expected error for directory without scripts")
	}
}

func TestLoad_MissingDir_Fails(t *testing.T) {
	if _, err := Load("testdata/does-not-exist"); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestLoad_NoTextsFile(t *testing.T) {
	lib, err := Load("testdata/broken")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(lib.Texts) != 0 {
		t.Errorf("expected no texts, got %v", lib.Texts)
	}
}
