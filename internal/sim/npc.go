/*
File: internal/sim/npc.go
Description:
    NPC AI, phase 3 of the tick (spec.md §4.6). Each NPC runs one state
    machine step per tick: IDLE/PATROL read the spatial index for a
    nearby player to engage; ENGAGE/FLANK chase and fire; RETREAT flies
    a low-hull NPC opposite its current heading; DEAD is terminal. The state machine
    is monotonic toward DEAD per spec.md's state-machine invariant.
*/
package sim

import (
	"math"
	"time"

	"github.com/voidreach/starforge/internal/spatial"
)

const (
	npcAggroRange   = 900.0
	npcRetreatHull  = 0.25 // fraction of max hull that triggers retreat
	npcPatrolSpeed  = 60.0
	npcEngageSpeed  = 140.0
	npcFireCooldown = 800 * time.Millisecond
	npcFireRange    = 500.0
	npcProjectileDamage = 8.0
	npcProjectileSpeed  = 400.0
)

// SpawnNPC adds an AI ship to the simulation at the given position.
func (e *Engine) SpawnNPC(id, faction string, x, y, hullMax, shieldMax float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := &NPC{
		ID: id, Faction: faction, X: x, Y: y,
		HullCurrent: hullMax, HullMax: hullMax,
		ShieldCurrent: shieldMax, ShieldMax: shieldMax,
		State: NPCPatrol,
	}
	e.npcs[id] = n
	e.grid.Insert(id, spatial.KindNPC, spatial.Point{X: x, Y: y})
}

func (e *Engine) runNPCAI(dt time.Duration, now time.Time) {
	for id, n := range e.npcs {
		if n.State == NPCDead {
			continue
		}
		e.stepNPC(id, n, dt, now)
	}
}

func (e *Engine) stepNPC(id string, n *NPC, dt time.Duration, now time.Time) {
	if n.HullCurrent <= 0 {
		n.State = NPCDead
		e.grid.Remove(id)
		e.spawnWreckage(n)
		return
	}
	if n.HullCurrent < n.HullMax*npcRetreatHull && n.State != NPCRetreat {
		n.State = NPCRetreat
	}

	switch n.State {
	case NPCIdle, NPCPatrol:
		n.HasTarget = false
		if hit, ok := e.grid.Nearest(spatial.Point{X: n.X, Y: n.Y}, spatial.KindPlayer, 3); ok && hit.Distance <= npcAggroRange {
			n.TargetID = parsePlayerEntityID(hit.ID)
			n.HasTarget = true
			n.State = NPCEngage
			break
		}
		n.State = NPCPatrol
		n.VX = math.Cos(float64(now.UnixNano())/1e9) * npcPatrolSpeed * 0.1
		n.VY = math.Sin(float64(now.UnixNano())/1e9) * npcPatrolSpeed * 0.1

	case NPCEngage, NPCFlank:
		target, ok := e.players[n.TargetID]
		if !ok {
			n.State = NPCPatrol
			break
		}
		dx, dy := target.X-n.X, target.Y-n.Y
		dist := math.Hypot(dx, dy)
		if dist > npcAggroRange*1.5 {
			n.State = NPCPatrol
			n.HasTarget = false
			break
		}
		if dist > 1 {
			n.VX = dx / dist * npcEngageSpeed
			n.VY = dy / dist * npcEngageSpeed
			n.Rotation = math.Atan2(dy, dx)
		}
		if dist <= npcFireRange && now.Sub(n.LastFireAt) >= npcFireCooldown {
			e.fireNPCProjectile(n, target, now)
			n.LastFireAt = now
		}

	case NPCRetreat:
		n.VX = -math.Cos(n.Rotation) * npcEngageSpeed
		n.VY = -math.Sin(n.Rotation) * npcEngageSpeed
		if n.HullCurrent > n.HullMax*npcRetreatHull*2 {
			n.State = NPCPatrol
		}
	}

	n.X += n.VX * dt.Seconds()
	n.Y += n.VY * dt.Seconds()
	e.grid.Move(id, spatial.Point{X: n.X, Y: n.Y})
}

func parsePlayerEntityID(entityID string) uint64 {
	var id uint64
	for i := len("player:"); i < len(entityID); i++ {
		c := entityID[i]
		if c < '0' || c > '9' {
			return 0
		}
		id = id*10 + uint64(c-'0')
	}
	return id
}
