/*
Package balance
File: internal/balance/balance.go
Description:
    Shared constants, tier tables, and upgrade cost tables (component C11).

    This is the one config surface that keeps the teacher's own idiom:
    a YAML file loaded wholesale at boot and swappable on SIGHUP, the same
    shape as EverforgeWorks-Galaxies-Server's internal/game.LoadConfig.
    Everything else (ports, DSNs, TTLs) goes through internal/config
    instead, because those are process knobs, not game-design tables.
*/
package balance

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"gopkg.in/yaml.v3"
)

// Component identifies one of the eight upgradeable ship systems.
type Component string

const (
	ComponentEngine     Component = "engine"
	ComponentWeapon     Component = "weapon"
	ComponentShield     Component = "shield"
	ComponentMining     Component = "mining"
	ComponentCargo      Component = "cargo"
	ComponentRadar      Component = "radar"
	ComponentEnergyCore Component = "energy_core"
	ComponentHull       Component = "hull"
)

// MaxTier is the highest upgrade level any component can reach.
const MaxTier = 5

// UpgradeCost is one rung of a component's upgrade ladder.
type UpgradeCost struct {
	Credits   int64          `yaml:"credits" json:"credits"`
	Resources map[string]int `yaml:"resources" json:"resources"`
}

// WeaponSpec holds the tier-1 baseline for a weapon type; spec.md's
// value(tier) = base * MULT^(tier-1) rule scales these at lookup time.
type WeaponSpec struct {
	BaseDamage          float64 `yaml:"base_damage"`
	BaseCooldownMs       int64   `yaml:"base_cooldown_ms"`
	BaseProjectileSpeed float64 `yaml:"base_projectile_speed"`
}

type boostTable struct {
	DurationMs      []int64   `yaml:"duration_ms"`
	CooldownMs      []int64   `yaml:"cooldown_ms"`
	SpeedMultiplier []float64 `yaml:"speed_multiplier"`
}

type energyCoreTable struct {
	CooldownReduction []float64  `yaml:"cooldown_reduction"`
	ShieldRegenBonus  []float64  `yaml:"shield_regen_bonus"`
	Boost             boostTable `yaml:"boost"`
}

// Table is the fully parsed contents of balance.yaml.
type Table struct {
	TierMultiplier       float64                          `yaml:"tier_multiplier"`
	ShieldTierMultiplier float64                          `yaml:"shield_tier_multiplier"`
	CargoCapacity        []int                            `yaml:"cargo_capacity"`
	EnergyCore           energyCoreTable                  `yaml:"energy_core"`
	UpgradeRequirements  map[Component][]UpgradeCost       `yaml:"upgrade_requirements"`
	Weapons              map[string]WeaponSpec            `yaml:"weapons"`
}

// Store holds the live balance table behind an atomic pointer so the sim
// tick and HTTP handlers can read it lock-free while a SIGHUP reload swaps
// it out underneath them.
type Store struct {
	path string
	cur  atomic.Pointer[Table]
	mu   sync.Mutex // serializes reloads; reads never block on this
}

// NewStore loads path once and returns a ready Store.
func NewStore(path string) (*Store, error) {
	s := &Store{path: path}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads the YAML file from disk and atomically swaps the table.
// Safe to call concurrently with Get from any goroutine (e.g. a SIGHUP
// handler racing the sim tick).
func (s *Store) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("balance: read %s: %w", s.path, err)
	}
	var t Table
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return fmt.Errorf("balance: parse %s: %w", s.path, err)
	}
	if err := t.validate(); err != nil {
		return fmt.Errorf("balance: invalid table: %w", err)
	}
	s.cur.Store(&t)
	return nil
}

// Get returns the current table. The returned pointer is immutable;
// callers must not mutate it.
func (s *Store) Get() *Table {
	return s.cur.Load()
}

func (t *Table) validate() error {
	if t.TierMultiplier <= 0 {
		return fmt.Errorf("tier_multiplier must be positive")
	}
	if len(t.CargoCapacity) < MaxTier {
		return fmt.Errorf("cargo_capacity must have %d entries", MaxTier)
	}
	for _, c := range []Component{ComponentEngine, ComponentWeapon, ComponentShield,
		ComponentMining, ComponentCargo, ComponentRadar, ComponentEnergyCore, ComponentHull} {
		if len(t.UpgradeRequirements[c]) < MaxTier {
			return fmt.Errorf("upgrade_requirements[%s] must have %d entries", c, MaxTier)
		}
	}
	return nil
}

// clampTier folds an out-of-range tier into [1, MaxTier].
func clampTier(tier int) int {
	if tier < 1 {
		return 1
	}
	if tier > MaxTier {
		return MaxTier
	}
	return tier
}

// Scaled applies the uniform value(tier) = base * MULT^(tier-1) rule.
func (t *Table) Scaled(base float64, tier int) float64 {
	tier = clampTier(tier)
	mult := 1.0
	for i := 1; i < tier; i++ {
		mult *= t.TierMultiplier
	}
	return base * mult
}

// ScaledShield is Scaled using the shield-specific multiplier.
func (t *Table) ScaledShield(base float64, tier int) float64 {
	tier = clampTier(tier)
	mult := 1.0
	for i := 1; i < tier; i++ {
		mult *= t.ShieldTierMultiplier
	}
	return base * mult
}

// CargoMax returns the cargo capacity for a given cargo tier.
func (t *Table) CargoMax(tier int) int {
	tier = clampTier(tier)
	return t.CargoCapacity[tier-1]
}

// CooldownReduction returns the fractional weapon-cooldown discount an
// energy core of the given tier grants.
func (t *Table) CooldownReduction(tier int) float64 {
	tier = clampTier(tier)
	if tier-1 < len(t.EnergyCore.CooldownReduction) {
		return t.EnergyCore.CooldownReduction[tier-1]
	}
	return 0
}

// ShieldRegenBonus returns the extra shield regen per second an energy
// core of the given tier grants.
func (t *Table) ShieldRegenBonus(tier int) float64 {
	tier = clampTier(tier)
	if tier-1 < len(t.EnergyCore.ShieldRegenBonus) {
		return t.EnergyCore.ShieldRegenBonus[tier-1]
	}
	return 0
}

// BoostParams returns the boost duration, cooldown, and speed multiplier
// for an energy core of the given tier.
func (t *Table) BoostParams(tier int) (durationMs, cooldownMs int64, speedMult float64) {
	tier = clampTier(tier)
	i := tier - 1
	if i < len(t.EnergyCore.Boost.DurationMs) {
		durationMs = t.EnergyCore.Boost.DurationMs[i]
	}
	if i < len(t.EnergyCore.Boost.CooldownMs) {
		cooldownMs = t.EnergyCore.Boost.CooldownMs[i]
	}
	speedMult = 1.0
	if i < len(t.EnergyCore.Boost.SpeedMultiplier) {
		speedMult = t.EnergyCore.Boost.SpeedMultiplier[i]
	}
	return
}

// UpgradeCostFor returns the credits/resource cost to upgrade component c
// from currentTier to currentTier+1. ok is false at MaxTier.
func (t *Table) UpgradeCostFor(c Component, currentTier int) (UpgradeCost, bool) {
	if currentTier < 1 || currentTier >= MaxTier {
		return UpgradeCost{}, false
	}
	rungs := t.UpgradeRequirements[c]
	if currentTier >= len(rungs) {
		return UpgradeCost{}, false
	}
	return rungs[currentTier], true // rungs[n] is the cost of tier n->n+1; rungs[0] is unused
}

// Weapon returns the tier-1 baseline spec for a weapon type.
func (t *Table) Weapon(weaponType string) (WeaponSpec, bool) {
	w, ok := t.Weapons[weaponType]
	return w, ok
}
