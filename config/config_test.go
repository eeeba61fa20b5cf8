package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridianchain/keystore/config"
)

func TestDefaultConfigWithHome(t *testing.T) {
	home := t.TempDir()
	cfg := config.DefaultConfigWithHome(home)
	require.Equal(t, home, cfg.KeystoreDir)
	require.Equal(t, filepath.Join(home, "keys"), cfg.KeyDirectory)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	home := t.TempDir()
	configFile := filepath.Join(home, "keystored.conf")
	content := "loglevel=debug\nlogformat=logfmt\nkey-dir=" + filepath.Join(home, "secure") + "\n"
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0600))

	cfg, err := config.LoadConfig(configFile)
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "logfmt", cfg.LogFormat)
	require.Equal(t, filepath.Join(home, "secure"), cfg.KeyDirectory)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "nope.conf"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.KeyDirectory = ""
	require.Error(t, cfg.Validate())
}
