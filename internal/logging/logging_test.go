package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{" INFO ", zerolog.InfoLevel},
		{"error", zerolog.ErrorLevel},
		{"none", zerolog.Disabled},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err)
		require.Equal(t, tt.want, got)
	}
	_, err := ParseLevel("loud")
	require.Error(t, err)
}

func TestSetupWritesToFile(t *testing.T) {
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})

	path := filepath.Join(t.TempDir(), "flowerfield.log")
	closeFn, err := Setup("info", path)
	require.NoError(t, err)
	log.Info().Str("component", "test").Msg("hello")
	log.Debug().Msg("hidden")
	closeFn()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"message":"hello"`)
	require.NotContains(t, string(data), "hidden")
}

func TestSetupRejectsUnknownLevel(t *testing.T) {
	_, err := Setup("chatty", "")
	require.Error(t, err)
}
