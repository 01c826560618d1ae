package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 3388, cfg.Port)
	require.Equal(t, "0.0.0.0", cfg.Host)
	require.Equal(t, int64(50), cfg.TickMs)
	require.Equal(t, 2000, cfg.MaxConns)
	require.Equal(t, 2.0, cfg.BaseShieldRegen)
	require.Equal(t, "config/balance.yaml", cfg.BalancePath)
}

func TestLoadReadsEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "7000")
	t.Setenv("GALAXY_SEED", "42")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 7000, cfg.Port)
	require.Equal(t, int64(42), cfg.GalaxySeed)
}

func TestLoadRejectsPortOutOfRange(t *testing.T) {
	t.Setenv("PORT", "99999")
	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsNonPositiveTickMs(t *testing.T) {
	t.Setenv("TICK_MS", "0")
	_, err := Load()
	require.Error(t, err)
}

func TestAddrCombinesHostAndPort(t *testing.T) {
	cfg := &Config{Host: "127.0.0.1", Port: 8080}
	require.Equal(t, "127.0.0.1:8080", cfg.Addr())
}

func TestBaseMiningTimeConvertsMillisecondDefault(t *testing.T) {
	os.Unsetenv("BASE_MINING_TIME_MS")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, int64(4000), cfg.BaseMiningTime.Milliseconds())
}
