// Package save implements JSON serialization of a run: its action log and
// a snapshot, with replay verification on load.
package save

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/OranPie/rulatro/engine"
	"github.com/OranPie/rulatro/engine/rules"
	"github.com/OranPie/rulatro/types"
)

// Version is the save format version.
const Version = "1"

// ErrMismatch is returned when replaying a save does not reproduce its
// snapshot.
var ErrMismatch = errors.New("replay does not match saved snapshot")

// SaveData is the JSON-serializable save format.
type SaveData struct {
	Version  string           `json:"version"`
	RunID    string           `json:"run_id"`
	Seed     int64            `json:"seed"`
	Actions  []engine.Command `json:"actions"`
	Snapshot *types.RunState  `json:"snapshot"`
}

// NewRunID returns a fresh run id.
func NewRunID() string {
	return uuid.NewString()
}

// Save serializes the engine's action log and current snapshot. An empty
// runID gets a fresh one.
func Save(e *engine.Engine, runID string) ([]byte, error) {
	if runID == "" {
		runID = NewRunID()
	}
	snap := e.Snapshot()
	data := SaveData{
		Version:  Version,
		RunID:    runID,
		Seed:     snap.Seed,
		Actions:  e.History(),
		Snapshot: snap,
	}
	return json.MarshalIndent(data, "", "  ")
}

// Load deserializes JSON bytes into SaveData.
func Load(data []byte) (*SaveData, error) {
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, err
	}
	if sd.Version != Version {
		return nil, fmt.Errorf("unsupported save version %q", sd.Version)
	}
	if sd.Actions == nil {
		sd.Actions = []engine.Command{}
	}
	return &sd, nil
}

// Replay applies the saved action log to a fresh engine. When the save
// carries a snapshot, the replayed run must match it.
func Replay(tbl *rules.Table, sd *SaveData, opts ...engine.Option) (*engine.Engine, error) {
	e := engine.New(tbl, sd.Seed, opts...)
	for i, c := range sd.Actions {
		if _, err := e.Do(c); err != nil {
			return e, fmt.Errorf("action %d (%s): %w", i, c, err)
		}
	}
	if sd.Snapshot == nil {
		return e, nil
	}
	got, err := json.Marshal(e.Snapshot())
	if err != nil {
		return e, err
	}
	want, err := json.Marshal(sd.Snapshot)
	if err != nil {
		return e, err
	}
	if !bytes.Equal(got, want) {
		return e, ErrMismatch
	}
	return e, nil
}

// Resume restores the saved snapshot directly, without replaying.
func Resume(tbl *rules.Table, sd *SaveData, opts ...engine.Option) (*engine.Engine, error) {
	if sd.Snapshot == nil {
		return nil, errors.New("save has no snapshot")
	}
	e := engine.New(tbl, sd.Seed, opts...)
	e.Restore(sd.Snapshot, sd.Actions...)
	return e, nil
}
