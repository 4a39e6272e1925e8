package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/plyr-settlement/internal/model"
)

const ownerHex = "0x000000000000000000000000000000000000a0a0"

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{"SETTLE_OWNER_ADDRESS": ownerHex})
	require.NoError(t, err)

	owner := model.MustParseAddress(ownerHex)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, StorageMemory, cfg.StorageType)
	assert.Equal(t, model.DefaultPlatformFee, cfg.PlatformFee)
	assert.Equal(t, model.DefaultNameSuffix, cfg.NameSuffix)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, owner, cfg.Deployer)
	assert.Equal(t, owner, cfg.FeeTo)
	assert.True(t, cfg.Operator.IsZero())
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, 30*time.Second, cfg.WriteTimeout)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)

	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"SETTLE_OWNER_ADDRESS":    ownerHex,
		"SETTLE_OPERATOR_ADDRESS": "0x000000000000000000000000000000000000b0b0",
		"SETTLE_FEE_TO_ADDRESS":   "0x000000000000000000000000000000000000fee0",
		"SETTLE_STORAGE_TYPE":     "Redis",
		"SETTLE_REDIS_URL":        "redis://cache:6379/1",
		"SETTLE_PLATFORM_FEE":     "5",
		"SETTLE_KAFKA_BROKERS":    "k1:9092,k2:9092",
		"SETTLE_LOG_LEVEL":        "debug",
		"SETTLE_TOKEN_TTL":        "30m",
		"SETTLE_SHUTDOWN_TIMEOUT": "5s",
	})
	require.NoError(t, err)

	assert.Equal(t, StorageRedis, cfg.StorageType)
	assert.Equal(t, "redis://cache:6379/1", cfg.RedisURL)
	assert.Equal(t, uint64(5), cfg.PlatformFee)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, model.MustParseAddress("0x000000000000000000000000000000000000fee0"), cfg.FeeTo)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
}

func TestLoadRequiresOwner(t *testing.T) {
	_, err := LoadFrom(map[string]string{})
	assert.Error(t, err)
}

func TestLoadRejectsMalformedAddress(t *testing.T) {
	_, err := LoadFrom(map[string]string{"SETTLE_OWNER_ADDRESS": "0x1234"})
	assert.Error(t, err)
}

func TestValidateCollectsErrors(t *testing.T) {
	_, err := LoadFrom(map[string]string{
		"SETTLE_OWNER_ADDRESS": ownerHex,
		"SETTLE_STORAGE_TYPE":  "postgres",
		"SETTLE_PLATFORM_FEE":  "101",
		"SETTLE_PORT":          "0",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SETTLE_STORAGE_TYPE")
	assert.Contains(t, err.Error(), "SETTLE_PLATFORM_FEE")
	assert.Contains(t, err.Error(), "SETTLE_PORT")
}
