package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	f := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f.Int("port", 8080, "")
	f.String("db", "", "")
	f.Bool("watch", false, "")
	f.CountP("verbose", "v", "")
	require.NoError(t, f.Parse(args))
	return f
}

func TestDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.toml"), nil)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "inbox", cfg.Inbox)
	assert.Empty(t, cfg.DB)
	assert.False(t, cfg.Watch)
}

func TestPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brandos-canvas.toml")
	require.NoError(t, os.WriteFile(path, []byte("port = 7000\ndb = \"file.db\"\ninbox = \"drop\"\n"), 0o644))
	t.Setenv("BRANDOS_CANVAS_DB", "env.db")

	cfg, err := LoadFile(path, flags(t, "--port", "9090", "-vv"))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port, "flag beats file")
	assert.Equal(t, "env.db", cfg.DB, "env beats file")
	assert.Equal(t, "drop", cfg.Inbox, "file beats default")
	assert.Equal(t, 2, cfg.VerboseCnt)
}

func TestUnchangedFlagKeepsLowerLayer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brandos-canvas.toml")
	require.NoError(t, os.WriteFile(path, []byte("port = 7000\n"), 0o644))

	cfg, err := LoadFile(path, flags(t))
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Port)
}

func TestInvalidPort(t *testing.T) {
	t.Setenv("BRANDOS_CANVAS_PORT", "0")
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.toml"), nil)
	assert.Error(t, err)
}
