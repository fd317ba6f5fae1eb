package evolution

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/wonny/vigil/internal/contracts"
)

// StateStore persists the evolution cooldown state as a flat JSON file.
type StateStore struct {
	path string
	log  zerolog.Logger
}

// NewStateStore creates a store backed by the given file path.
func NewStateStore(path string, log zerolog.Logger) *StateStore {
	return &StateStore{
		path: path,
		log:  log.With().Str("component", "evolution.state").Logger(),
	}
}

// Load reads the persisted state. A missing file yields the zero state.
func (s *StateStore) Load() (contracts.EvolutionState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return contracts.EvolutionState{}, nil
		}
		return contracts.EvolutionState{}, fmt.Errorf("read evolution state: %w", err)
	}

	var state contracts.EvolutionState
	if err := json.Unmarshal(data, &state); err != nil {
		return contracts.EvolutionState{}, fmt.Errorf("parse evolution state %s: %w", s.path, err)
	}
	return state, nil
}

// Save overwrites the persisted state. Callers invoke this only when a
// weight change was actually applied.
func (s *StateStore) Save(state contracts.EvolutionState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal evolution state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("write evolution state: %w", err)
	}

	s.log.Info().Str("path", s.path).Str("last_weight_update_date", state.LastWeightUpdateDate).Msg("evolution state saved")
	return nil
}
