package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestResolveDamageShieldFirst(t *testing.T) {
	res := ResolveDamage(100, 30, 20)
	require.Equal(t, 100.0, res.HullAfter)
	require.Equal(t, 10.0, res.ShieldAfter)
	require.True(t, res.IsShieldHit)
}

func TestResolveDamageOverflowsToHull(t *testing.T) {
	res := ResolveDamage(100, 10, 30)
	require.Equal(t, 80.0, res.HullAfter)
	require.Equal(t, 0.0, res.ShieldAfter)
	require.True(t, res.IsShieldHit)
}

func TestResolveDamageHullNeverNegative(t *testing.T) {
	res := ResolveDamage(5, 0, 100)
	require.Equal(t, 0.0, res.HullAfter)
}

func TestRegenShieldRespectsCooldown(t *testing.T) {
	now := time.Now()
	lastHit := now.Add(-1 * time.Second)
	got := RegenShield(10, 50, 5, lastHit, now, time.Second)
	require.Equal(t, 10.0, got, "regen should not apply inside the cooldown window")

	lastHit = now.Add(-5 * time.Second)
	got = RegenShield(10, 50, 5, lastHit, now, time.Second)
	require.Equal(t, 15.0, got)
}

func TestWeaponCooldownScalesDownWithTier(t *testing.T) {
	t1 := WeaponCooldown(1000, 1.5, 1, 0)
	t3 := WeaponCooldown(1000, 1.5, 3, 0)
	require.Greater(t, t1, t3)
}

func TestWeaponCooldownReductionShrinksFurther(t *testing.T) {
	base := WeaponCooldown(1000, 1.5, 1, 0)
	reduced := WeaponCooldown(1000, 1.5, 1, 0.5)
	require.Greater(t, base, reduced)
}
