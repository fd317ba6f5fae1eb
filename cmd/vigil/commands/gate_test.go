package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeHealthScore(t *testing.T, score int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "health_score.json")
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf(`{"health_score": %d}`, score)), 0644))
	return path
}

func TestGate_Banding(t *testing.T) {
	tests := []struct {
		score    int
		wantFail bool
	}{
		{100, false},
		{85, false},
		{84, false},
		{70, false},
		{69, false},
		{50, false},
		{49, true},
		{0, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("score %d", tt.score), func(t *testing.T) {
			path := writeHealthScore(t, tt.score)

			err := runGate(&cobra.Command{}, []string{path})
			if tt.wantFail {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGate_MissingFile(t *testing.T) {
	err := runGate(&cobra.Command{}, []string{filepath.Join(t.TempDir(), "absent.json")})
	assert.Error(t, err)
}

func TestGate_MalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "health_score.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0644))

	err := runGate(&cobra.Command{}, []string{path})
	assert.Error(t, err)
}
