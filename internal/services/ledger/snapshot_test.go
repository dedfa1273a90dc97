package ledger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type headline struct {
	Title string `json:"title"`
	Views string `json:"views"`
}

func writeSnapshot(t *testing.T, dir, name string, items []headline, mod time.Time) {
	t.Helper()
	data, err := json.Marshal(items)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	require.NoError(t, os.Chtimes(path, mod, mod))
}

func TestIsDuplicateSnapshot(t *testing.T) {
	base := time.Date(2026, 10, 19, 7, 0, 0, 0, time.UTC)
	previous := []headline{{Title: "Model A ships", Views: "1k"}, {Title: "Agents everywhere", Views: "900"}}

	tests := []struct {
		name      string
		setup     func(t *testing.T, dir string)
		candidate []headline
		want      bool
	}{
		{
			name:      "empty directory is not a duplicate",
			setup:     func(t *testing.T, dir string) {},
			candidate: previous,
			want:      false,
		},
		{
			name: "identical payload is a duplicate",
			setup: func(t *testing.T, dir string) {
				writeSnapshot(t, dir, "ai_trend_1.json", previous, base)
			},
			candidate: previous,
			want:      true,
		},
		{
			name: "reordered payload counts as changed",
			setup: func(t *testing.T, dir string) {
				writeSnapshot(t, dir, "ai_trend_1.json", previous, base)
			},
			candidate: []headline{previous[1], previous[0]},
			want:      false,
		},
		{
			name: "empty prior snapshot is not a duplicate",
			setup: func(t *testing.T, dir string) {
				writeSnapshot(t, dir, "ai_trend_1.json", []headline{}, base)
			},
			candidate: []headline{},
			want:      false,
		},
		{
			name: "only the newest snapshot is compared",
			setup: func(t *testing.T, dir string) {
				writeSnapshot(t, dir, "ai_trend_1.json", previous, base)
				writeSnapshot(t, dir, "ai_trend_2.json", []headline{{Title: "Newer"}}, base.Add(time.Hour))
			},
			candidate: previous,
			want:      false,
		},
		{
			name: "unreadable latest snapshot is not a duplicate",
			setup: func(t *testing.T, dir string) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0644))
			},
			candidate: previous,
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			tt.setup(t, dir)

			got, err := IsDuplicateSnapshot(dir, tt.candidate, DecodeJSON[[]headline])
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLatestSnapshot_MissingDir(t *testing.T) {
	path, err := LatestSnapshot(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, path)
}
