package config

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	t.Setenv("CONFIGURATION_DIRECTORY", "")
	t.Setenv("PORT", "")
	t.Setenv("STATE_DIRECTORY", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.HTTP.Port)
	assert.Equal(t, DefaultExpiry, cfg.Auth.JWT.Expiry)
	assert.Equal(t, DefaultBackupPath, cfg.Backup.Path)
	assert.Equal(t, "konsum.db", cfg.Database.Path)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"http": {"port": 8888},
		"auth": {
			"jwt": {"expiresIn": "2h", "audience": "konsum"},
			"users": {"alice": {"password": "x", "entitlements": ["konsum"]}}
		},
		"backup": {"path": "/var/backups/konsum.txt"}
	}`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8888, cfg.HTTP.Port)
	assert.Equal(t, "2h", cfg.Auth.JWT.Expiry)
	assert.Equal(t, "konsum", cfg.Auth.JWT.Audience)
	assert.Equal(t, "/var/backups/konsum.txt", cfg.Backup.Path)
	assert.Equal(t, []string{"konsum"}, cfg.Auth.Users["alice"].Entitlements)
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "no-such-config.json"))
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.HTTP.Port)
}

func TestConfigurationDirectoryFallback(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"http": {"port": 9999}}`), 0644))
	t.Setenv("CONFIGURATION_DIRECTORY", dir)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.HTTP.Port)
}

func TestPortEnvironmentOverride(t *testing.T) {
	t.Setenv("PORT", "4711")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 4711, cfg.HTTP.Port)
}

func TestPortEnvironmentInvalid(t *testing.T) {
	tests := []string{"abc", "0", "-1", "80x"}
	for _, port := range tests {
		t.Run(port, func(t *testing.T) {
			t.Setenv("PORT", port)

			_, err := Load("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "PORT must be a positive integer")
		})
	}
}

func TestStateDirectory(t *testing.T) {
	t.Setenv("STATE_DIRECTORY", "/var/lib/konsum")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/konsum/konsum.db", cfg.Database.Path)
}

func TestLoadKeysInlinePEM(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	cfg := Default()
	cfg.Auth.JWT.PrivateKey = string(pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	}))
	require.NoError(t, cfg.LoadKeys())

	require.NotNil(t, cfg.PrivateKey())
	require.NotNil(t, cfg.PublicKey())
	assert.Equal(t, &key.PublicKey, cfg.PublicKey())
}

func TestLoadKeysFromFile(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "private.pem")
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	}), 0600))

	cfg := Default()
	cfg.Auth.JWT.PrivateKey = path
	require.NoError(t, cfg.LoadKeys())

	require.NotNil(t, cfg.PrivateKey())
	assert.Equal(t, &key.PublicKey, cfg.PublicKey())
}
