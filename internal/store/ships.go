package store

import (
	"fmt"

	"gorm.io/gorm"
)

// NewShipParams seeds a freshly-registered ship (spec.md §4.4 register).
type NewShipParams struct {
	SpawnX, SpawnY   float64
	HullMax, ShieldMax float64
	WeaponType       string
}

// CreateShip inserts the default ship row for a brand-new user.
func (s *Store) CreateShip(userID uint64, p NewShipParams) (*Ship, error) {
	ship := &Ship{
		UserID:        userID,
		PosX:          p.SpawnX,
		PosY:          p.SpawnY,
		HullCurrent:   p.HullMax,
		HullMax:       p.HullMax,
		ShieldCurrent: p.ShieldMax,
		ShieldMax:     p.ShieldMax,
		EngineTier:     1,
		WeaponTier:     1,
		ShieldTier:     1,
		MiningTier:     1,
		CargoTier:      1,
		RadarTier:      1,
		EnergyCoreTier: 1,
		HullTier:       1,
		WeaponType:     p.WeaponType,
	}
	if err := s.db.Create(ship).Error; err != nil {
		return nil, fmt.Errorf("store: create ship: %w", err)
	}
	return ship, nil
}

// GetShip loads a ship row by owner.
func (s *Store) GetShip(userID uint64) (*Ship, error) {
	var ship Ship
	if err := s.db.First(&ship, "user_id = ?", userID).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &ship, nil
}

// ReconcileMax updates hull_max/shield_max in place if they don't match
// the tier formula's current output, and tops current HP/shield up by
// the same delta so an upgrade never reduces a player's effective health.
// Called on every login per spec.md §4.3's self-healing requirement.
func (s *Store) ReconcileMax(userID uint64, wantHullMax, wantShieldMax float64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var ship Ship
		if err := tx.First(&ship, "user_id = ?", userID).Error; err != nil {
			return translateNotFound(err)
		}
		dirty := false
		if ship.HullMax != wantHullMax {
			ship.HullCurrent += wantHullMax - ship.HullMax
			ship.HullMax = wantHullMax
			dirty = true
		}
		if ship.ShieldMax != wantShieldMax {
			ship.ShieldCurrent += wantShieldMax - ship.ShieldMax
			ship.ShieldMax = wantShieldMax
			dirty = true
		}
		if ship.HullCurrent > ship.HullMax {
			ship.HullCurrent = ship.HullMax
		}
		if ship.ShieldCurrent > ship.ShieldMax {
			ship.ShieldCurrent = ship.ShieldMax
		}
		if !dirty {
			return nil
		}
		return tx.Save(&ship).Error
	})
}

// SaveShipPosition is a best-effort write on disconnect or periodic
// persistence flush (spec.md §4.3); callers log failures rather than
// propagate them.
func (s *Store) SaveShipPosition(userID uint64, x, y, vx, vy, rotation float64, sectorX, sectorY int) error {
	return s.db.Model(&Ship{}).Where("user_id = ?", userID).Updates(map[string]any{
		"pos_x": x, "pos_y": y, "vel_x": vx, "vel_y": vy,
		"rotation": rotation, "last_sector_x": sectorX, "last_sector_y": sectorY,
	}).Error
}

// SetHullShield persists combat/repair outcomes.
func (s *Store) SetHullShield(userID uint64, hull, shield float64) error {
	return s.db.Model(&Ship{}).Where("user_id = ?", userID).Updates(map[string]any{
		"hull_current": hull, "shield_current": shield,
	}).Error
}

// SetCredits persists a wallet balance change in isolation (used outside
// the market/upgrade transactions, e.g. mining payouts).
func (s *Store) SetCredits(userID uint64, credits int64) error {
	if credits < 0 {
		return fmt.Errorf("store: credits must be non-negative, got %d", credits)
	}
	return s.db.Model(&Ship{}).Where("user_id = ?", userID).Update("credits", credits).Error
}

// AddCredits atomically increments a wallet balance (loot payouts,
// market sale proceeds) without a read-modify-write race.
func (s *Store) AddCredits(userID uint64, delta int64) error {
	return s.db.Model(&Ship{}).Where("user_id = ?", userID).
		Update("credits", gorm.Expr("credits + ?", delta)).Error
}

// SetCosmetic updates ship:setColor / ship:setProfile columns.
func (s *Store) SetCosmetic(userID uint64, colorID, profileID *int) error {
	updates := map[string]any{}
	if colorID != nil {
		updates["color_id"] = *colorID
	}
	if profileID != nil {
		updates["profile_id"] = *profileID
	}
	if len(updates) == 0 {
		return nil
	}
	return s.db.Model(&Ship{}).Where("user_id = ?", userID).Updates(updates).Error
}

// UpgradeResult is returned by Upgrade with the post-upgrade ship state.
type UpgradeResult struct {
	Ship *Ship
}

// allowedTierFields whitelists the column names Upgrade may increment,
// since tierField is interpolated into a gorm.Expr SQL fragment.
var allowedTierFields = map[string]bool{
	"engine_tier": true, "weapon_tier": true, "shield_tier": true,
	"mining_tier": true, "cargo_tier": true, "radar_tier": true,
	"energy_core_tier": true, "hull_tier": true,
}

// ErrInsufficientCredits/ErrInsufficientResources are returned by Upgrade.
var (
	ErrInsufficientCredits   = fmt.Errorf("insufficient credits")
	ErrInsufficientResources = fmt.Errorf("insufficient resources")
)

// Upgrade atomically debits credits and resources and bumps a component's
// tier, then lets the caller recompute hull/shield max via ReconcileMax
// (spec.md §4.3's {verify credits and resource costs, debit both, bump
// tier, recompute max HP/shield} contract).
func (s *Store) Upgrade(userID uint64, component string, costCredits int64, costResources map[string]int, tierField string) (*UpgradeResult, error) {
	if !allowedTierFields[tierField] {
		return nil, fmt.Errorf("store: unknown tier field %q", tierField)
	}
	var out UpgradeResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var ship Ship
		if err := tx.First(&ship, "user_id = ?", userID).Error; err != nil {
			return translateNotFound(err)
		}
		if ship.Credits < costCredits {
			return ErrInsufficientCredits
		}
		for res, qty := range costResources {
			var item InventoryItem
			err := tx.First(&item, "user_id = ? AND resource_type = ?", userID, res).Error
			if err != nil || item.Quantity < int64(qty) {
				return ErrInsufficientResources
			}
		}
		for res, qty := range costResources {
			if err := tx.Model(&InventoryItem{}).
				Where("user_id = ? AND resource_type = ?", userID, res).
				Update("quantity", gorm.Expr("quantity - ?", qty)).Error; err != nil {
				return fmt.Errorf("store: debit resource %s: %w", res, err)
			}
		}
		ship.Credits -= costCredits
		if err := tx.Model(&Ship{}).Where("user_id = ?", userID).
			Updates(map[string]any{"credits": ship.Credits, tierField: gorm.Expr(tierField + " + 1")}).Error; err != nil {
			return fmt.Errorf("store: apply upgrade: %w", err)
		}
		if err := tx.First(&ship, "user_id = ?", userID).Error; err != nil {
			return err
		}
		out.Ship = &ship
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
