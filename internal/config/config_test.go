package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestLoad_Defaults(t *testing.T) {
	resetViper(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, "./", cfg.Server.BaseDir)
	assert.False(t, cfg.Server.Diff)
	assert.False(t, cfg.Server.NoOpen)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_ViperOverrides(t *testing.T) {
	resetViper(t)

	viper.Set("server.port", 8000)
	viper.Set("server.diff", true)
	viper.Set("server.no_open", true)
	viper.Set("server.base_dir", "./public")
	viper.Set("log.level", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.True(t, cfg.Server.Diff)
	assert.True(t, cfg.Server.NoOpen)
	assert.Equal(t, "./public", cfg.Server.BaseDir)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_RejectsInvalidPort(t *testing.T) {
	resetViper(t)

	viper.Set("server.port", 70000)
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not in valid range")
}

func TestLoad_RejectsUnknownLogLevel(t *testing.T) {
	resetViper(t)

	viper.Set("log.level", "verbose")
	_, err := Load()
	require.Error(t, err)
}

func TestLoad_RejectsUnknownLogFormat(t *testing.T) {
	resetViper(t)

	viper.Set("log.format", "xml")
	_, err := Load()
	require.Error(t, err)
}

func TestResolveBaseDir_Relative(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	resolved, err := ResolveBaseDir("./")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(resolved))

	canonical, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Equal(t, canonical, resolved)
}

func TestResolveBaseDir_MissingFails(t *testing.T) {
	_, err := ResolveBaseDir(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func TestResolveBaseDir_FileFails(t *testing.T) {
	file := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	_, err := ResolveBaseDir(file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestResolveBaseDir_ResolvesSymlinks(t *testing.T) {
	dir := t.TempDir()
	real := filepath.Join(dir, "real")
	link := filepath.Join(dir, "link")
	require.NoError(t, os.Mkdir(real, 0o755))
	require.NoError(t, os.Symlink(real, link))

	resolved, err := ResolveBaseDir(link)
	require.NoError(t, err)

	canonical, err := filepath.EvalSymlinks(real)
	require.NoError(t, err)
	assert.Equal(t, canonical, resolved)
}
