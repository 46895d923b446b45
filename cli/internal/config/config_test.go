package config

import (
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useMemFs(t *testing.T) afero.Fs {
	t.Helper()
	prev := AppFs
	AppFs = afero.NewMemMapFs()
	t.Cleanup(func() { AppFs = prev })

	for _, k := range []string{"DATABASE_URL", "SEQUEL_SCHEMA_PATH", "SEQUEL_DATABASE"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	return AppFs
}

func TestLoadDefaults(t *testing.T) {
	useMemFs(t)

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "schema.sequel", cfg.SchemaPath)
	assert.Equal(t, "./models", cfg.OutputPath)
	assert.Equal(t, "models", cfg.Package)
	assert.Equal(t, "app.db", cfg.Database)
	assert.Equal(t, "sqlite3", cfg.Driver)
	assert.False(t, cfg.DropUnknownTables)
	assert.Empty(t, cfg.File)
}

func TestLoadFileAndEnv(t *testing.T) {
	fs := useMemFs(t)
	require.NoError(t, afero.WriteFile(fs, "custom.yaml", []byte(
		"schema_path: db/app.sequel\ndriver: sqlite\ndrop_unknown_tables: true\n"), 0o644))

	t.Setenv("SEQUEL_SCHEMA_PATH", "override.sequel")

	cfg, err := Load(viper.New(), "custom.yaml")
	require.NoError(t, err)
	assert.Equal(t, "override.sequel", cfg.SchemaPath)
	assert.Equal(t, "sqlite", cfg.Driver)
	assert.True(t, cfg.DropUnknownTables)
	assert.Equal(t, "custom.yaml", cfg.File)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	useMemFs(t)

	_, err := Load(viper.New(), "missing.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.yaml")
}

func TestDotEnvDatabaseURL(t *testing.T) {
	fs := useMemFs(t)
	require.NoError(t, afero.WriteFile(fs, ".env", []byte("DATABASE_URL=sqlite://from-env.db\n"), 0o644))

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "from-env.db", cfg.Database)

	require.NoError(t, afero.WriteFile(fs, ".env.local", []byte("DATABASE_URL=\"file:local.db?mode=rwc\"\n"), 0o644))
	cfg, err = Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "file:local.db?mode=rwc", cfg.Database)
}

func TestSaveRoundTrip(t *testing.T) {
	useMemFs(t)

	in := &Config{SchemaPath: "schema.sequel", OutputPath: "./gen", Package: "gen", Database: "data.db", Driver: "sqlite"}
	require.NoError(t, Save(in, "project/.sequel.yaml"))

	out, err := Load(viper.New(), "project/.sequel.yaml")
	require.NoError(t, err)
	assert.Equal(t, "./gen", out.OutputPath)
	assert.Equal(t, "gen", out.Package)
	assert.Equal(t, "data.db", out.Database)
	assert.Equal(t, "sqlite", out.Driver)
}

func TestDatabasePath(t *testing.T) {
	tests := map[string]string{
		"sqlite://app.db":     "app.db",
		"sqlite:app.db":       "app.db",
		"sqlite3:///tmp/a.db": "/tmp/a.db",
		"file:x.db?mode=ro":   "file:x.db?mode=ro",
		":memory:":            ":memory:",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, DatabasePath(in))
		})
	}
}
