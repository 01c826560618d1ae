/*
Package shipsvc
File: internal/shipsvc/shipsvc.go
Description:
    Component C5's ship:upgrade/setProfile/setColor commands — thin
    wrappers over internal/store's already-transactional Upgrade/
    SetCosmetic, the same "mutate via store, then sync the live sim
    mirror and announce" shape internal/market/internal/fleet use.
    Grounded on spec.md §4.3's upgrade contract ("verify credits and
    resource costs, debit both, bump tier, recompute max HP/shield").
*/
package shipsvc

import (
	"github.com/voidreach/starforge/internal/apperr"
	"github.com/voidreach/starforge/internal/balance"
	"github.com/voidreach/starforge/internal/protocol"
	"github.com/voidreach/starforge/internal/sim"
	"github.com/voidreach/starforge/internal/store"
)

// tierFields maps a balance.Component to its ships-table tier column;
// syncPlayer sets the matching in-memory tier field on a live sim.Player.
var tierFields = map[balance.Component]string{
	balance.ComponentEngine:     "engine_tier",
	balance.ComponentWeapon:     "weapon_tier",
	balance.ComponentShield:     "shield_tier",
	balance.ComponentMining:     "mining_tier",
	balance.ComponentCargo:      "cargo_tier",
	balance.ComponentRadar:      "radar_tier",
	balance.ComponentEnergyCore: "energy_core_tier",
	balance.ComponentHull:       "hull_tier",
}

// Service wraps ship upgrade/cosmetic mutations for the connection
// router.
type Service struct {
	st     *store.Store
	bal    *balance.Store
	engine *sim.Engine
}

// NewService wires a ready-to-use Service.
func NewService(st *store.Store, bal *balance.Store, engine *sim.Engine) *Service {
	return &Service{st: st, bal: bal, engine: engine}
}

// Upgrade bumps one ship component a single tier, charging credits and
// resources per the balance table (ship:upgrade).
func (s *Service) Upgrade(userID uint64, component string) (*store.Ship, error) {
	comp := balance.Component(component)
	tierField, ok := tierFields[comp]
	if !ok {
		return nil, apperr.Validation("unknown ship component")
	}

	ship, err := s.st.GetShip(userID)
	if err != nil {
		return nil, apperr.Persistence("failed to load ship", err)
	}
	currentTier := currentTierOf(ship, comp)

	table := s.bal.Get()
	cost, ok := table.UpgradeCostFor(comp, currentTier)
	if !ok {
		return nil, apperr.State("component already at max tier")
	}

	res, err := s.st.Upgrade(userID, component, cost.Credits, cost.Resources, tierField)
	if err != nil {
		return nil, translateErr(err)
	}

	wantHull := table.Scaled(s.engine.Config().DefaultHullHP, res.Ship.HullTier)
	wantShield := table.ScaledShield(s.engine.Config().DefaultShieldHP, res.Ship.ShieldTier)
	if err := s.st.ReconcileMax(userID, wantHull, wantShield); err != nil {
		return nil, apperr.Persistence("failed to reconcile ship stats", err)
	}
	res.Ship, err = s.st.GetShip(userID)
	if err != nil {
		return nil, apperr.Persistence("failed to reload ship", err)
	}

	s.syncPlayer(userID, res.Ship)
	return res.Ship, nil
}

func currentTierOf(ship *store.Ship, comp balance.Component) int {
	switch comp {
	case balance.ComponentEngine:
		return ship.EngineTier
	case balance.ComponentWeapon:
		return ship.WeaponTier
	case balance.ComponentShield:
		return ship.ShieldTier
	case balance.ComponentMining:
		return ship.MiningTier
	case balance.ComponentCargo:
		return ship.CargoTier
	case balance.ComponentRadar:
		return ship.RadarTier
	case balance.ComponentEnergyCore:
		return ship.EnergyCoreTier
	case balance.ComponentHull:
		return ship.HullTier
	default:
		return 1
	}
}

// syncPlayer mirrors a freshly-persisted ship's tiers/hull/shield onto
// the live sim.Player, so the upgrade takes effect immediately without
// waiting for the next login.
func (s *Service) syncPlayer(userID uint64, ship *store.Ship) {
	s.engine.WithLock(func() {
		p, ok := s.engine.Player(userID)
		if !ok {
			return
		}
		p.EngineTier, p.WeaponTier, p.ShieldTier = ship.EngineTier, ship.WeaponTier, ship.ShieldTier
		p.MiningTier, p.CargoTier, p.RadarTier = ship.MiningTier, ship.CargoTier, ship.RadarTier
		p.EnergyCoreTier, p.HullTier = ship.EnergyCoreTier, ship.HullTier
		p.HullMax, p.ShieldMax = ship.HullMax, ship.ShieldMax
		p.Credits = ship.Credits
		p.Dirty = true
	})
	s.engine.EmitToPlayer(userID, protocol.EventShipUpdate, ship)
}

// SetCosmetic updates colorId/profileId and announces the change to
// nearby peers (ship:setColor / ship:setProfile).
func (s *Service) SetCosmetic(userID uint64, colorID, profileID *int) error {
	if err := s.st.SetCosmetic(userID, colorID, profileID); err != nil {
		return apperr.Persistence("failed to update cosmetic", err)
	}
	var x, y float64
	online := false
	s.engine.WithLock(func() {
		if p, ok := s.engine.Player(userID); ok {
			p.Dirty = true
			x, y, online = p.X, p.Y, true
		}
	})
	s.engine.EmitToPlayer(userID, protocol.EventShipUpdate, nil)
	if online {
		s.engine.BroadcastNear(x, y, userID, protocol.EventShipUpdate, map[string]any{
			"userId": userID, "colorId": colorID, "profileId": profileID,
		})
	}
	return nil
}

func translateErr(err error) error {
	switch err {
	case store.ErrInsufficientCredits:
		return apperr.State("insufficient credits")
	case store.ErrInsufficientResources:
		return apperr.State("insufficient resources")
	case store.ErrNotFound:
		return apperr.Validation("ship not found")
	default:
		return apperr.Persistence("upgrade failed", err)
	}
}
