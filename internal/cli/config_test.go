package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	c, err := loadConfig(env.Options{Environment: map[string]string{}})
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", c.ServerURL)
	assert.Equal(t, "text", c.Output)
	assert.Equal(t, 24*time.Hour, c.TokenTTL)
	assert.Equal(t, "token", filepath.Base(c.TokenFile))
	assert.Equal(t, ".settlectl", filepath.Base(filepath.Dir(c.TokenFile)))
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	c, err := loadConfig(env.Options{Environment: map[string]string{
		"SETTLE_SERVER":     "http://settle.internal:9000",
		"SETTLE_TOKEN_FILE": "/tmp/settle-token",
		"SETTLE_OUTPUT":     "json",
		"SETTLE_JWT_SECRET": "shared",
		"SETTLE_TOKEN_TTL":  "90m",
	}})
	require.NoError(t, err)

	assert.Equal(t, "http://settle.internal:9000", c.ServerURL)
	assert.Equal(t, "/tmp/settle-token", c.TokenFile)
	assert.Equal(t, "json", c.Output)
	assert.Equal(t, "shared", c.JWTSecret)
	assert.Equal(t, 90*time.Minute, c.TokenTTL)
}

func TestLoadConfigRejectsBadDuration(t *testing.T) {
	_, err := loadConfig(env.Options{Environment: map[string]string{"SETTLE_TOKEN_TTL": "soon"}})
	assert.Error(t, err)
}

func TestTokenFileRoundTrip(t *testing.T) {
	c := &Config{TokenFile: filepath.Join(t.TempDir(), "nested", "token")}

	require.NoError(t, c.LoadToken())
	assert.Empty(t, c.Token, "missing file is not an error")

	require.NoError(t, c.SaveToken("abc.def.ghi"))
	info, err := os.Stat(c.TokenFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded := &Config{TokenFile: c.TokenFile}
	require.NoError(t, loaded.LoadToken())
	assert.Equal(t, "abc.def.ghi", loaded.Token)
}

func TestExplicitTokenWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(path, []byte("from-file"), 0o600))

	c := &Config{Token: "from-flag", TokenFile: path}
	require.NoError(t, c.LoadToken())
	assert.Equal(t, "from-flag", c.Token)
}
