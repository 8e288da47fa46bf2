package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_Load(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 10, cfg.Round.MaxParticipants)
	require.Equal(t, 2, cfg.Round.MinParticipants)
	require.Greater(t, cfg.Round.CancelAfter.Duration, cfg.Round.DrawAfter.Duration)

	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[Round]
TicketPrice = 2.5
DrawAfter = "30m"
CancelAfter = "45m"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err = Load(path)
	require.NoError(t, err)
	require.Equal(t, 2.5, cfg.Round.TicketPrice)
	require.Equal(t, 30*time.Minute, cfg.Round.DrawAfter.Duration)
	require.Equal(t, 45*time.Minute, cfg.Round.CancelAfter.Duration)

	// Untouched fields keep their defaults.
	require.Equal(t, 10, cfg.Round.MaxParticipants)
}

func Test_Load_RejectsInvertedWindows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[Round]
DrawAfter = "2h"
CancelAfter = "1h"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := Load(path)
	require.Error(t, err)
}
