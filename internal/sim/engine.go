/*
Package sim
File: internal/sim/engine.go
Description:
    Component C6 — the fixed-tick simulation engine. Generalizes the
    teacher's main.go heartbeat (`time.NewTicker` driving a single
    broadcast) into the full phase-ordered tick spec.md §4.6 requires,
    with catch-up capped at 3 ticks (spec.md §5) and per-tick panic
    recovery so one bad NPC or handler never takes down the loop.
    Recovery is not per entity: a panic is logged and the rest of that
    tick's phases, for every entity, are skipped.

    All mutable sim state (players, NPCs, projectiles, area effects, the
    spatial index) is owned by the sim goroutine; everything else talks
    to it either through Post (a buffered intent queue drained at phase
    1) or through WithLock (used by internal/mining, internal/loot,
    internal/wormhole, internal/shipsvc, internal/dispatch for state that
    must be mutated under the same lock the tick holds).
*/
package sim

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/voidreach/starforge/internal/balance"
	"github.com/voidreach/starforge/internal/config"
	"github.com/voidreach/starforge/internal/interest"
	"github.com/voidreach/starforge/internal/logging"
	"github.com/voidreach/starforge/internal/protocol"
	"github.com/voidreach/starforge/internal/spatial"
	"github.com/voidreach/starforge/internal/store"
	"github.com/voidreach/starforge/internal/worldgen"
)

// Sender delivers an event to one connected player; internal/transport's
// Hub implements this over live connections.
type Sender interface {
	EmitTo(userID uint64, event string, payload any)
}

// WormholeTicker advances wormhole transit state once per tick (spec.md
// §4.6 phase 7); internal/wormhole implements this.
type WormholeTicker interface {
	Tick(now time.Time)
}

const maxCatchUpTicks = 3

// gravityConstant scales star pull; tuned so a tier-1 ship at
// STAR_SIZE_MAX*2 feels a gentle drift, not a sudden yank.
const gravityConstant = 4.0e6

// dragPerTick is applied every tick regardless of dt to keep velocity
// decay tick-rate-stable at the configured TICK_MS.
const dragPerTick = 0.985

// Engine owns every piece of live, non-persisted game state.
type Engine struct {
	mu sync.Mutex

	players      map[uint64]*Player
	npcs         map[string]*NPC
	projectiles  map[string]*Projectile
	areaEffects  map[string]*AreaEffect
	wreckages    map[string]*Wreckage

	grid     *spatial.Grid
	interest *interest.Manager
	gen      *worldgen.Generator

	bal *balance.Store
	st  *store.Store
	cfg *config.Config

	sender    Sender
	wormholes WormholeTicker

	intents chan Intent

	log       *logging.Logger
	tickCount uint64
	startedAt time.Time

	lastPersistAt time.Time
}

// NewEngine builds an Engine. sender may be nil until a transport layer
// is wired up (tests run without one).
func NewEngine(cfg *config.Config, bal *balance.Store, st *store.Store, gen *worldgen.Generator) *Engine {
	grid := spatial.NewGrid(cfg.SectorSize)
	return &Engine{
		players:     make(map[uint64]*Player),
		npcs:        make(map[string]*NPC),
		projectiles: make(map[string]*Projectile),
		areaEffects: make(map[string]*AreaEffect),
		wreckages:   make(map[string]*Wreckage),
		grid:        grid,
		interest:    interest.New(grid),
		gen:         gen,
		bal:         bal,
		st:          st,
		cfg:         cfg,
		intents:     make(chan Intent, 1024),
		log:         logging.For("sim"),
		startedAt:   time.Now(),
	}
}

// SetSender wires the outbound delivery channel (internal/transport's Hub).
func (e *Engine) SetSender(s Sender) { e.sender = s }

// SetWormholeTicker wires phase 7 of the tick to internal/wormhole.
func (e *Engine) SetWormholeTicker(w WormholeTicker) { e.wormholes = w }

// Grid exposes the shared spatial index to AI and the interest manager's
// callers; it must only be mutated from the sim goroutine.
func (e *Engine) Grid() *spatial.Grid { return e.grid }

// Generator exposes the world generator (used by wormhole nearest-search
// and mining object lookups).
func (e *Engine) Generator() *worldgen.Generator { return e.gen }

// Balance exposes the tier table store.
func (e *Engine) Balance() *balance.Store { return e.bal }

// Store exposes the persistence layer.
func (e *Engine) Store() *store.Store { return e.st }

// Config exposes process configuration.
func (e *Engine) Config() *config.Config { return e.cfg }

// WithLock runs fn holding the same mutex the tick loop holds, so
// out-of-band completions (mining, loot, wormhole transit) can safely
// touch player/NPC state between ticks.
func (e *Engine) WithLock(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn()
}

// Player looks up a connected player's live state. Must be called
// within WithLock (or from the tick goroutine).
func (e *Engine) Player(userID uint64) (*Player, bool) {
	p, ok := e.players[userID]
	return p, ok
}

// NPC looks up a live AI ship's state by id. Must be called within
// WithLock (or from the tick goroutine).
func (e *Engine) NPC(id string) (*NPC, bool) {
	n, ok := e.npcs[id]
	return n, ok
}

// Wreckage looks up a live wreckage by id. Must be called within
// WithLock (or from the tick goroutine).
func (e *Engine) Wreckage(id string) (*Wreckage, bool) {
	w, ok := e.wreckages[id]
	return w, ok
}

// RemoveWreckage deletes a wreckage (collected or decayed) and takes it
// out of the spatial index. Must be called within WithLock.
func (e *Engine) RemoveWreckage(id string) {
	delete(e.wreckages, id)
	e.grid.Remove(id)
}

// Uptime reports how long ago the engine started (spec.md §6 /health).
func (e *Engine) Uptime() time.Duration { return time.Since(e.startedAt) }

// Join adds a freshly authenticated player to the live simulation.
func (e *Engine) Join(p *Player) {
	e.mu.Lock()
	e.players[p.UserID] = p
	e.grid.Insert(interest.PlayerEntityID(p.UserID), spatial.KindPlayer, spatial.Point{X: p.X, Y: p.Y})
	e.mu.Unlock()
	e.broadcastNear(p.X, p.Y, p.UserID, protocol.EventPlayerJoin, map[string]any{"userId": p.UserID, "username": p.Username})
}

// Leave removes a disconnected player from the simulation, best-effort
// persists its final position, and notifies nearby peers (spec.md §5
// cancellation semantics).
func (e *Engine) Leave(userID uint64) {
	e.mu.Lock()
	p, ok := e.players[userID]
	if ok {
		delete(e.players, userID)
		e.grid.Remove(interest.PlayerEntityID(userID))
	}
	e.mu.Unlock()
	if !ok {
		return
	}
	if err := e.st.SaveShipPosition(userID, p.X, p.Y, p.VX, p.VY, p.Rotation, p.SectorX, p.SectorY); err != nil {
		e.log.Warnf("save position on disconnect failed for user=%d: %v", userID, err)
	}
	e.broadcastNear(p.X, p.Y, userID, protocol.EventPlayerLeave, map[string]any{"userId": userID})
}

// Post enqueues a client intent for the next input-integration phase.
// Non-blocking: if the queue is saturated the new intent is dropped and
// a warning logged; intents already queued are kept, and drainIntents
// keeps only the last queued intent per player.
func (e *Engine) Post(in Intent) {
	select {
	case e.intents <- in:
	default:
		e.log.Warnf("intent queue full, dropping intent for user=%d", in.UserID)
	}
}

// Run drives the fixed-tick loop until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) {
	tickDur := time.Duration(e.cfg.TickMs) * time.Millisecond
	ticker := time.NewTicker(tickDur)
	defer ticker.Stop()
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			elapsed := now.Sub(last)
			last = now
			ticks := int(elapsed / tickDur)
			if ticks < 1 {
				ticks = 1
			}
			if ticks > maxCatchUpTicks {
				ticks = maxCatchUpTicks
			}
			for i := 0; i < ticks; i++ {
				e.tickOnce(tickDur)
			}
		}
	}
}

// Tick runs exactly one simulation step using the configured tick
// duration. Exposed for callers (and tests) outside this package that
// need a deterministic step without spinning up Run's ticker goroutine.
func (e *Engine) Tick() {
	e.tickOnce(time.Duration(e.cfg.TickMs) * time.Millisecond)
}

func (e *Engine) tickOnce(dt time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Errorf("tick %d panicked, skipping: %v", e.tickCount, r)
		}
	}()

	e.mu.Lock()
	defer e.mu.Unlock()

	e.tickCount++
	now := time.Now()

	e.drainIntents()
	e.integrateInput(dt, now)
	e.applyPhysics(dt)
	e.runNPCAI(dt, now)
	e.advanceProjectiles(dt, now)
	e.tickAreaEffects(now)
	e.tickWreckageDecay(now)
	e.tickHazards(dt)
	e.tickShieldRegen(dt, now)
	if e.wormholes != nil {
		e.wormholes.Tick(now)
	}
	// Marketplace cleanup: no-op. spec.md §4.6 phase 8 only applies when
	// listings carry a TTL, which this implementation does not model.

	e.flushOutbox()

	persistInterval := time.Duration(e.cfg.PersistMs) * time.Millisecond
	if now.Sub(e.lastPersistAt) >= persistInterval {
		e.persistDirtyLocked()
		e.lastPersistAt = now
	}
}

func (e *Engine) drainIntents() {
	for {
		select {
		case in := <-e.intents:
			if p, ok := e.players[in.UserID]; ok {
				p.pendingIntent = in
			}
		default:
			return
		}
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (e *Engine) integrateInput(dt time.Duration, now time.Time) {
	table := e.bal.Get()
	for _, p := range e.players {
		if p.Life == LifeInTransit || p.Life == LifeDead {
			continue
		}
		in := p.pendingIntent
		p.Rotation = in.Rotation

		if p.BoostActive && now.After(p.BoostUntil) {
			p.BoostActive = false
		}
		if in.Boost && !p.BoostActive && now.After(p.BoostCooldownUntil) {
			durMs, cdMs, _ := table.BoostParams(p.EnergyCoreTier)
			p.BoostActive = true
			p.BoostUntil = now.Add(time.Duration(durMs) * time.Millisecond)
			p.BoostCooldownUntil = p.BoostUntil.Add(time.Duration(cdMs) * time.Millisecond)
		}

		speedMult := 1.0
		if p.BoostActive {
			_, _, mult := table.BoostParams(p.EnergyCoreTier)
			speedMult = mult
		}

		maxSpeed := table.Scaled(e.cfg.BaseSpeed, p.EngineTier)
		thrust := clamp(in.Thrust, -1, 1)
		p.VX += math.Cos(p.Rotation) * thrust * maxSpeed * speedMult * dt.Seconds()
		p.VY += math.Sin(p.Rotation) * thrust * maxSpeed * speedMult * dt.Seconds()

		if in.Fire {
			e.tryFireLocked(p, now)
		}
		if p.Life == LifeInvulnerable && now.After(p.InvulnerableUntil) {
			p.Life = LifeAlive
		}
	}
}

func (e *Engine) applyPhysics(dt time.Duration) {
	for _, p := range e.players {
		if p.Life == LifeInTransit {
			continue // skip physics integration during wormhole transit
		}
		p.VX *= dragPerTick
		p.VY *= dragPerTick

		if e.gen != nil {
			sector := e.gen.Sector(p.SectorX, p.SectorY)
			if sector.Star != nil {
				dx := sector.Star.X - p.X
				dy := sector.Star.Y - p.Y
				distSq := dx*dx + dy*dy
				if distSq > 1 {
					dist := math.Sqrt(distSq)
					pullReduction := 1.0 / float64(p.EngineTier)
					pull := gravityConstant / distSq * pullReduction
					p.VX += (dx / dist) * pull * dt.Seconds()
					p.VY += (dy / dist) * pull * dt.Seconds()
				}
			}
		}

		p.X += p.VX * dt.Seconds()
		p.Y += p.VY * dt.Seconds()

		if e.gen != nil {
			p.SectorX, p.SectorY = e.gen.SectorCoordsFor(p.X, p.Y)
		}
		e.grid.Move(interest.PlayerEntityID(p.UserID), spatial.Point{X: p.X, Y: p.Y})
		p.Dirty = true
	}
}

func (e *Engine) tickHazards(dt time.Duration) {
	if e.gen == nil {
		return
	}
	for _, p := range e.players {
		sector := e.gen.Sector(p.SectorX, p.SectorY)
		if sector.Star == nil {
			continue
		}
		dx := p.X - sector.Star.X
		dy := p.Y - sector.Star.Y
		dist := math.Hypot(dx, dy)
		hazardRadius := e.cfg.StarSizeMax * 1.5
		if dist < hazardRadius && dist > 0 {
			proximity := 1 - dist/hazardRadius
			damage := proximity * 40 * dt.Seconds()
			e.applyDamageLocked(p, damage, time.Now())
		}
	}
}

// tickShieldRegen applies spec.md §4.6's "R = R_base + energyCoreBonus[tier]
// per second while not hit in the last R_COOLDOWN" to every living player.
func (e *Engine) tickShieldRegen(dt time.Duration, now time.Time) {
	table := e.bal.Get()
	for _, p := range e.players {
		if p.Life == LifeInTransit || p.Life == LifeDead {
			continue
		}
		rate := e.cfg.BaseShieldRegen + table.ShieldRegenBonus(p.EnergyCoreTier)
		after := RegenShield(p.ShieldCurrent, p.ShieldMax, rate, p.LastShieldHitAt, now, dt)
		if after != p.ShieldCurrent {
			p.ShieldCurrent = after
			p.Dirty = true
		}
	}
}

// applyDamageLocked resolves damage through shield-then-hull and marks
// the last-hit timestamp used by shield regen (spec.md §4.6).
func (e *Engine) applyDamageLocked(p *Player, dmg float64, now time.Time) {
	res := ResolveDamage(p.HullCurrent, p.ShieldCurrent, dmg)
	p.HullCurrent = res.HullAfter
	p.ShieldCurrent = res.ShieldAfter
	if res.IsShieldHit {
		p.LastShieldHitAt = now
	}
	p.Dirty = true
	if p.HullCurrent <= 0 && p.Life != LifeDead {
		p.Life = LifeDead
	}
}

// BroadcastAll delivers event to every connected player, regardless of
// position. Used for server-wide state that isn't spatially scoped
// (e.g. marketplace listings).
func (e *Engine) BroadcastAll(event string, payload any) {
	if e.sender == nil {
		return
	}
	e.mu.Lock()
	ids := make([]uint64, 0, len(e.players))
	for id := range e.players {
		ids = append(ids, id)
	}
	e.mu.Unlock()
	for _, id := range ids {
		e.sender.EmitTo(id, event, payload)
	}
}

// EmitToPlayer delivers event directly to one player's connection,
// bypassing interest filtering. Used by out-of-band completions (mining,
// loot, market, wormhole transit) where the result belongs to exactly
// one recipient regardless of who else is nearby.
func (e *Engine) EmitToPlayer(userID uint64, event string, payload any) {
	if e.sender == nil {
		return
	}
	e.sender.EmitTo(userID, event, payload)
}

// BroadcastNear delivers event to every player within originUserID's
// radar interest radius, excluding originUserID itself. Used for
// spatially scoped pushes a command handler triggers outside the tick
// loop (e.g. chat:send, spec.md §4.5: "broadcast to interest set").
func (e *Engine) BroadcastNear(x, y float64, originUserID uint64, event string, payload any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.broadcastNear(x, y, originUserID, event, payload)
}

func (e *Engine) broadcastNear(x, y float64, originUserID uint64, event string, payload any) {
	if e.sender == nil {
		return
	}
	p, ok := e.players[originUserID]
	radius := e.cfg.BaseRadarRange * 2
	if ok {
		table := e.bal.Get()
		radius = interest.Radius(e.cfg.BaseRadarRange, table.TierMultiplier, p.RadarTier)
	}
	for _, userID := range e.interest.Recipients(spatial.Point{X: x, Y: y}, radius, originUserID) {
		e.sender.EmitTo(userID, event, payload)
	}
}

func (e *Engine) flushOutbox() {
	if e.sender == nil {
		return
	}
	table := e.bal.Get()
	for _, p := range e.players {
		radius := interest.Radius(e.cfg.BaseRadarRange, table.TierMultiplier, p.RadarTier)
		payload := playerStatePayload(p)
		for _, userID := range e.interest.Recipients(spatial.Point{X: p.X, Y: p.Y}, radius, p.UserID) {
			e.sender.EmitTo(userID, protocol.EventPlayerState, payload)
		}
	}
}

func playerStatePayload(p *Player) map[string]any {
	return map[string]any{
		"userId":   p.UserID,
		"x":        p.X,
		"y":        p.Y,
		"vx":       p.VX,
		"vy":       p.VY,
		"rotation": p.Rotation,
		"hull":     p.HullCurrent,
		"shield":   p.ShieldCurrent,
	}
}

func (e *Engine) persistDirtyLocked() {
	for _, p := range e.players {
		if !p.Dirty {
			continue
		}
		if err := e.st.SaveShipPosition(p.UserID, p.X, p.Y, p.VX, p.VY, p.Rotation, p.SectorX, p.SectorY); err != nil {
			e.log.Warnf("persist position failed for user=%d: %v", p.UserID, err)
			continue
		}
		if err := e.st.SetHullShield(p.UserID, p.HullCurrent, p.ShieldCurrent); err != nil {
			e.log.Warnf("persist hull/shield failed for user=%d: %v", p.UserID, err)
			continue
		}
		p.Dirty = false
	}
}
