package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partial-trueskill/server/trueskill"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("STORE", "memory")
	t.Setenv("PORT", "")
	t.Setenv("TRUESKILL_BETA", "")
	t.Setenv("TRUESKILL_TAU", "")
	t.Setenv("DEFAULT_MEAN", "")
	t.Setenv("DEFAULT_VARIANCE", "")
	t.Setenv("AUTO_REGISTER", "")
	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "memory", cfg.Store)
	assert.Equal(t, trueskill.DefaultParameters(), cfg.Ladder.Parameters)
	assert.Equal(t, 25.0, cfg.Ladder.DefaultMean)
	assert.False(t, cfg.Ladder.AutoRegister)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("STORE", "MEMORY")
	t.Setenv("PORT", "9090")
	t.Setenv("TRUESKILL_BETA", "4")
	t.Setenv("TRUESKILL_TAU", "0")
	t.Setenv("DEFAULT_MEAN", "1500")
	t.Setenv("DEFAULT_VARIANCE", "oops")
	t.Setenv("AUTO_REGISTER", "yes")
	t.Setenv("DEBUG", "1")
	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 4.0, cfg.Ladder.Parameters.Beta())
	assert.Equal(t, 0.0, cfg.Ladder.Parameters.Tau())
	assert.Equal(t, 1500.0, cfg.Ladder.DefaultMean)
	assert.Equal(t, 25.0/3.0, cfg.Ladder.DefaultVariance)
	assert.True(t, cfg.Ladder.AutoRegister)
	assert.True(t, cfg.Ladder.Debug)
}

func TestLoadConfigErrors(t *testing.T) {
	t.Setenv("STORE", "postgres")
	t.Setenv("DATABASE_URL", "")
	_, err := loadConfig()
	assert.Error(t, err)

	t.Setenv("STORE", "redis")
	_, err = loadConfig()
	assert.Error(t, err)

	t.Setenv("STORE", "memory")
	t.Setenv("TRUESKILL_BETA", "-1")
	_, err = loadConfig()
	assert.ErrorIs(t, err, trueskill.ErrInvalidParameters)
}

func TestMemoryOverrideSkipsDatabaseURL(t *testing.T) {
	t.Setenv("STORE", "postgres")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("TRUESKILL_BETA", "")
	t.Setenv("TRUESKILL_TAU", "")
	cfg, err := readConfig()
	require.NoError(t, err)
	assert.Error(t, cfg.validate())

	cfg.Store = "memory"
	assert.NoError(t, cfg.validate())
}

func TestEnvHelpers(t *testing.T) {
	assert.Equal(t, 7, atoiDef("7", 1))
	assert.Equal(t, 1, atoiDef("x", 1))
	assert.Equal(t, 1, atoiDef("", 1))
	assert.Equal(t, 2.5, floatDef(" 2.5 ", 0))
	assert.True(t, asBool("On"))
	assert.False(t, asBool("0"))
}
