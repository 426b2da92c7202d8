// Package loader reads a script library from disk: one Lua file per script
// and a text catalog mapping text ids to display text.
package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// TextsFile is the name of the text catalog inside a library directory.
const TextsFile = "texts.yaml"

var ErrNoObject = errors.New("no such script")

// Library is an immutable set of scripts and texts.
type Library struct {
	Dir     string
	Scripts map[string]string // id → Lua source
	Texts   map[string]string // text id → display text
}

// Load reads all .lua files from dir and the optional text catalog. A
// script's id is its file name without the extension.
func Load(dir string) (*Library, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading script directory %s: %w", dir, err)
	}

	lib := &Library{
		Dir:     dir,
		Scripts: map[string]string{},
		Texts:   map[string]string{},
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".lua") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", e.Name(), err)
		}
		lib.Scripts[strings.TrimSuffix(e.Name(), ".lua")] = string(data)
	}
	if len(lib.Scripts) == 0 {
		return nil, fmt.Errorf("no .lua files found in %s", dir)
	}

	raw, err := os.ReadFile(filepath.Join(dir, TextsFile))
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading %s: %w", TextsFile, err)
	default:
		if err := yaml.Unmarshal(raw, &lib.Texts); err != nil {
			return nil, fmt.Errorf("%s: %w", TextsFile, err)
		}
		if lib.Texts == nil {
			lib.Texts = map[string]string{}
		}
	}

	return lib, nil
}

// Source returns the source of a script.
func (l *Library) Source(id string) (string, error) {
	src, ok := l.Scripts[id]
	if !ok {
		return "", fmt.Errorf("script %q: %w", id, ErrNoObject)
	}
	return src, nil
}

// Text returns the display text for a text id. Unknown ids are shown as
// themselves.
func (l *Library) Text(id string) string {
	if t, ok := l.Texts[id]; ok {
		return strings.TrimRight(t, "\n")
	}
	return id
}

// IDs returns the script ids in sorted order.
func (l *Library) IDs() []string {
	ids := make([]string, 0, len(l.Scripts))
	for id := range l.Scripts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
