// Package save implements compressed JSON serialization of the simulation
// state. A running script cannot be saved, so ScriptExec is never stored.
package save

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/nathoo/ruinscript/types"
)

// Version is the save format version written by Save.
const Version = 1

// Ext is the file extension of save files.
const Ext = ".json.zst"

var ErrVersion = errors.New("unsupported save version")

// SaveData is the JSON-serializable save format.
type SaveData struct {
	Version int         `json:"version"`
	SavedAt time.Time   `json:"saved_at"`
	State   types.State `json:"state"`
}

// Save serializes the state to zstd-compressed JSON.
func Save(s *types.State) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode(&buf, s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Load decompresses and decodes save data.
func Load(data []byte) (*SaveData, error) {
	return decode(bytes.NewReader(data))
}

// ApplySave copies loaded save data onto a state. The script run, if any,
// is dropped.
func ApplySave(s *types.State, sd *SaveData) {
	*s = sd.State
	s.ScriptExec = types.ScriptExec{}
}

// WriteFile saves the state to path, creating parent directories.
func WriteFile(path string, s *types.State) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if err := encode(f, s); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// ReadFile loads save data from path.
func ReadFile(path string) (*SaveData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return decode(f)
}

// Path returns the save file path for a save name.
func Path(dir, name string) string {
	if name == "" {
		name = "quicksave"
	}
	return filepath.Join(dir, name+Ext)
}

func encode(w io.Writer, s *types.State) error {
	sd := SaveData{
		Version: Version,
		SavedAt: time.Now().UTC(),
		State:   *s,
	}
	sd.State.ScriptExec = types.ScriptExec{}

	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(enc)
	if err := json.NewEncoder(bw).Encode(&sd); err != nil {
		_ = enc.Close()
		return fmt.Errorf("encode save: %w", err)
	}
	if err := bw.Flush(); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

func decode(r io.Reader) (*SaveData, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var sd SaveData
	if err := json.NewDecoder(dec).Decode(&sd); err != nil {
		return nil, fmt.Errorf("decode save: %w", err)
	}
	if sd.Version != Version {
		return nil, fmt.Errorf("version %d: %w", sd.Version, ErrVersion)
	}
	normalize(&sd.State)
	return &sd, nil
}

// normalize ensures maps and slices are never nil after load.
func normalize(s *types.State) {
	if s.Player.Inventory == nil {
		s.Player.Inventory = map[string]int{}
	}
	if s.Vars.Global == nil {
		s.Vars.Global = map[string]types.Value{}
	}
	if s.Vars.Local == nil {
		s.Vars.Local = map[string]map[string]types.Value{}
	}
	if s.Dungeons == nil {
		s.Dungeons = []string{}
	}
	if s.Quests.Town == nil {
		s.Quests.Town = []types.TownQuest{}
	}
	if s.Quests.Custom == nil {
		s.Quests.Custom = map[string]string{}
	}
	if s.Quests.Completed == nil {
		s.Quests.Completed = []string{}
	}
	s.ScriptExec = types.ScriptExec{}
}
