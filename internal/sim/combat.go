/*
File: internal/sim/combat.go
Description:
    The combat model spec.md §4.6 defines: shield-first damage
    resolution, shield regen, and weapon cooldown scaling. Pure functions
    so they're trivially unit-testable without standing up an Engine.
*/
package sim

import "time"

// DamageResult is what a weapon hit resolves to.
type DamageResult struct {
	HullAfter    float64
	ShieldAfter  float64
	IsShieldHit  bool
}

// ResolveDamage applies dmg to shield first, overflow to hull, per
// spec.md §4.6: "Shield absorbs damage first at 100% up to its current
// value; overflow goes to hull."
func ResolveDamage(hullCur, shieldCur, dmg float64) DamageResult {
	if dmg <= 0 {
		return DamageResult{HullAfter: hullCur, ShieldAfter: shieldCur}
	}
	absorbed := dmg
	if absorbed > shieldCur {
		absorbed = shieldCur
	}
	shieldAfter := shieldCur - absorbed
	overflow := dmg - absorbed
	hullAfter := hullCur - overflow
	if hullAfter < 0 {
		hullAfter = 0
	}
	return DamageResult{
		HullAfter:   hullAfter,
		ShieldAfter: shieldAfter,
		IsShieldHit: absorbed > 0,
	}
}

// ShieldRegenCooldown is spec.md's R_COOLDOWN: how long after the last
// shield hit before regen resumes.
const ShieldRegenCooldown = 3 * time.Second

// RegenShield advances shield toward max at rate per second, only if the
// cooldown window since the last hit has elapsed.
func RegenShield(shieldCur, shieldMax, ratePerSec float64, lastHitAt time.Time, now time.Time, dt time.Duration) float64 {
	if now.Sub(lastHitAt) < ShieldRegenCooldown {
		return shieldCur
	}
	shieldCur += ratePerSec * dt.Seconds()
	if shieldCur > shieldMax {
		shieldCur = shieldMax
	}
	return shieldCur
}

// WeaponCooldown returns the fire cooldown for a weapon tier after the
// energy core's cooldown-reduction fraction is applied (spec.md §4.6).
func WeaponCooldown(baseCooldownMs int64, tierMultiplier float64, weaponTier int, cooldownReduction float64) time.Duration {
	mult := 1.0
	for i := 1; i < weaponTier; i++ {
		mult /= tierMultiplier
	}
	ms := float64(baseCooldownMs) * mult * (1 - cooldownReduction)
	if ms < 1 {
		ms = 1
	}
	return time.Duration(ms) * time.Millisecond
}
