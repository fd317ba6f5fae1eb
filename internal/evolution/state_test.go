package evolution

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/vigil/internal/contracts"
)

func TestStateStore_MissingFileYieldsZeroState(t *testing.T) {
	store := NewStateStore(filepath.Join(t.TempDir(), "state.json"), zerolog.Nop())

	state, err := store.Load()

	require.NoError(t, err)
	assert.Equal(t, contracts.EvolutionState{}, state)
}

func TestStateStore_SaveThenLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	store := NewStateStore(path, zerolog.Nop())

	saved := contracts.EvolutionState{LastWeightUpdateDate: "2026-01-15"}
	require.NoError(t, store.Save(saved))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)
}

func TestStateStore_CorruptFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	store := NewStateStore(path, zerolog.Nop())

	_, err := store.Load()
	assert.Error(t, err)
}
