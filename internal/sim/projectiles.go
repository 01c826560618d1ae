/*
File: internal/sim/projectiles.go
Description:
    Weapon fire, projectile advance (tick phase 4), and area-effect aging
    (tick phase 5), per spec.md §4.6.
*/
package sim

import (
	"fmt"
	"math"
	"time"

	"github.com/voidreach/starforge/internal/protocol"
)

var projectileSeq uint64

func nextProjectileID() string {
	projectileSeq++
	return fmt.Sprintf("proj-%d", projectileSeq)
}

// tryFireLocked resolves a player's weapon:fire intent, respecting its
// cooldown (spec.md §4.6: baseCooldown / MULT^(tier-1) * (1-reduction)).
func (e *Engine) tryFireLocked(p *Player, now time.Time) {
	table := e.bal.Get()
	spec, ok := table.Weapons[p.WeaponType]
	if !ok {
		return
	}
	cooldownReduction := table.CooldownReduction(p.EnergyCoreTier)
	cooldown := WeaponCooldown(spec.BaseCooldownMs, table.TierMultiplier, p.WeaponTier, cooldownReduction)
	if now.Sub(p.LastFireAt) < cooldown {
		return
	}
	p.LastFireAt = now

	damage := table.Scaled(spec.BaseDamage, p.WeaponTier)
	speed := spec.BaseProjectileSpeed
	proj := &Projectile{
		ID:        nextProjectileID(),
		OwnerID:   p.UserID,
		X:         p.X,
		Y:         p.Y,
		VX:        math.Cos(p.Rotation) * speed,
		VY:        math.Sin(p.Rotation) * speed,
		Damage:    damage,
		ExpiresAt: now.Add(3 * time.Second),
	}
	e.projectiles[proj.ID] = proj
	e.broadcastNear(p.X, p.Y, p.UserID, protocol.EventWeaponFire, map[string]any{
		"ownerId": p.UserID, "x": p.X, "y": p.Y, "rotation": p.Rotation,
	})
}

func (e *Engine) fireNPCProjectile(n *NPC, target *Player, now time.Time) {
	_ = target
	proj := &Projectile{
		ID:         nextProjectileID(),
		OwnerID:    0,
		OwnerIsNPC: true,
		X:          n.X,
		Y:          n.Y,
		VX:         math.Cos(n.Rotation) * npcProjectileSpeed,
		VY:         math.Sin(n.Rotation) * npcProjectileSpeed,
		Damage:     npcProjectileDamage,
		ExpiresAt:  now.Add(3 * time.Second),
		TargetNPC:  n.ID,
	}
	e.projectiles[proj.ID] = proj
}

func (e *Engine) advanceProjectiles(dt time.Duration, now time.Time) {
	for id, proj := range e.projectiles {
		if now.After(proj.ExpiresAt) {
			delete(e.projectiles, id)
			continue
		}
		proj.X += proj.VX * dt.Seconds()
		proj.Y += proj.VY * dt.Seconds()

		if proj.OwnerIsNPC {
			if target, ok := e.nearestPlayerWithinRadius(proj.X, proj.Y, 30); ok {
				e.applyDamageLocked(target, proj.Damage, now)
				delete(e.projectiles, id)
			}
			continue
		}
		if n, ok := e.nearestNPCWithinRadius(proj.X, proj.Y, 30); ok {
			e.applyNPCDamage(n, proj.Damage)
			delete(e.projectiles, id)
		}
	}
}

func (e *Engine) nearestPlayerWithinRadius(x, y, radius float64) (*Player, bool) {
	var best *Player
	bestDist := radius
	for _, p := range e.players {
		d := math.Hypot(p.X-x, p.Y-y)
		if d <= bestDist {
			best = p
			bestDist = d
		}
	}
	return best, best != nil
}

func (e *Engine) nearestNPCWithinRadius(x, y, radius float64) (*NPC, bool) {
	var best *NPC
	bestDist := radius
	for _, n := range e.npcs {
		if n.State == NPCDead {
			continue
		}
		d := math.Hypot(n.X-x, n.Y-y)
		if d <= bestDist {
			best = n
			bestDist = d
		}
	}
	return best, best != nil
}

func (e *Engine) applyNPCDamage(n *NPC, dmg float64) {
	res := ResolveDamage(n.HullCurrent, n.ShieldCurrent, dmg)
	n.HullCurrent = res.HullAfter
	n.ShieldCurrent = res.ShieldAfter
}

// tickAreaEffects ages and applies web-snare/acid-puddle style zones
// (tick phase 5), removing any that have expired.
func (e *Engine) tickAreaEffects(now time.Time) {
	for id, ae := range e.areaEffects {
		if now.After(ae.ExpiresAt) {
			delete(e.areaEffects, id)
			continue
		}
		for _, p := range e.players {
			d := math.Hypot(p.X-ae.X, p.Y-ae.Y)
			if d > ae.Radius {
				continue
			}
			if ae.DPS > 0 {
				e.applyDamageLocked(p, ae.DPS*0.05, now) // one sim.tickOnce call ~= TICK_MS; coarse per-application tick
			}
			if ae.SlowFactor > 0 {
				p.VX *= (1 - ae.SlowFactor)
				p.VY *= (1 - ae.SlowFactor)
			}
		}
	}
}
