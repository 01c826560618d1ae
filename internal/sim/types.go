/*
File: internal/sim/types.go
Description:
    In-memory entity state for component C6. Player/NPC/Projectile/
    AreaEffect mirror spec.md §3's live (non-persisted) objects; only
    Player's ship fields are ever written back to internal/store, and
    only through the persistence batch phase.
*/
package sim

import "time"

// LifeState is a player's coarse status (spec.md §4.6 state machines).
type LifeState int

const (
	LifeAlive LifeState = iota
	LifeDead
	LifeInvulnerable
	LifeInTransit
)

// NPCState is one node of an NPC's monotonic-toward-DEAD state machine.
type NPCState int

const (
	NPCIdle NPCState = iota
	NPCPatrol
	NPCEngage
	NPCFlank
	NPCRetreat
	NPCDead
)

// Intent is one client-issued command queued for the next tick's input
// integration phase. Connection readers post these through Engine.Post;
// only the sim goroutine ever drains the channel.
type Intent struct {
	UserID   uint64
	Thrust   float64 // -1..1
	Rotation float64 // radians, absolute heading
	Boost    bool
	Fire     bool
}

// Player is the tick-local mirror of one connected ship.
type Player struct {
	UserID   uint64
	Username string

	X, Y         float64
	VX, VY       float64
	Rotation     float64
	SectorX, SectorY int

	HullCurrent, HullMax     float64
	ShieldCurrent, ShieldMax float64
	Credits                  int64

	EngineTier, WeaponTier, ShieldTier     int
	MiningTier, CargoTier, RadarTier       int
	EnergyCoreTier, HullTier               int
	WeaponType                             string

	Life             LifeState
	InvulnerableUntil time.Time

	BoostActive    bool
	BoostUntil     time.Time
	BoostCooldownUntil time.Time

	LastShieldHitAt time.Time
	LastFireAt      time.Time

	Dirty bool // needs a persistence flush

	pendingIntent Intent
}

// NPC is an AI-controlled ship.
type NPC struct {
	ID       string
	Faction  string
	X, Y     float64
	VX, VY   float64
	Rotation float64

	HullCurrent, HullMax     float64
	ShieldCurrent, ShieldMax float64

	State      NPCState
	TargetID   uint64
	HasTarget  bool
	LastFireAt time.Time
}

// Projectile is a server-owned, engine-fired shot.
type Projectile struct {
	ID         string
	OwnerID    uint64
	OwnerIsNPC bool
	X, Y       float64
	VX, VY     float64
	Damage     float64
	ExpiresAt  time.Time
	TargetNPC  string // empty if untargeted
}

// AreaEffect is a timed zone (web-snare, acid puddle, ...).
type AreaEffect struct {
	ID         string
	Kind       string
	X, Y       float64
	Radius     float64
	ExpiresAt  time.Time
	DPS        float64
	SlowFactor float64
}

// Wreckage is a transient server-owned entity dropped by an NPC on
// death, collectible until DecaysAt (spec.md §5 "Wreckage").
type Wreckage struct {
	ID        string
	X, Y      float64
	Credits   int64
	Resources map[string]int64
	Relics    []string
	DecaysAt  time.Time
}
