/*
Package mining
File: internal/mining/mining.go
Description:
    Component C7's mining half. A session binds (userId, objectId,
    startAt, miningTier); completion is scheduled with time.AfterFunc
    and re-validates depletion/cargo room at fire time since both can
    change while the timer is pending (spec.md §4.7: "Depletion is
    checked on start and on complete (race-safe)"). Movement never
    cancels a session (beam lock); only an explicit mining:cancel or
    disconnect does.
*/
package mining

import (
	"math"
	"sync"
	"time"

	"github.com/voidreach/starforge/internal/apperr"
	"github.com/voidreach/starforge/internal/balance"
	"github.com/voidreach/starforge/internal/config"
	"github.com/voidreach/starforge/internal/logging"
	"github.com/voidreach/starforge/internal/protocol"
	"github.com/voidreach/starforge/internal/sim"
	"github.com/voidreach/starforge/internal/store"
	"github.com/voidreach/starforge/internal/worldgen"
)

// MiningRange is how close a ship must be to a resource object to start
// mining it.
const MiningRange = 180.0

// Session is one in-progress mining operation.
type Session struct {
	UserID     uint64
	ObjectID   string
	StartAt    time.Time
	MiningTier int
	Duration   time.Duration
}

// Manager tracks at most one active session per player.
type Manager struct {
	mu       sync.Mutex
	sessions map[uint64]*Session
	timers   map[uint64]*time.Timer

	engine *sim.Engine
	st     *store.Store
	bal    *balance.Store
	gen    *worldgen.Generator
	cfg    *config.Config
	log    *logging.Logger
}

// NewManager wires a mining Manager bound to a live simulation engine.
func NewManager(engine *sim.Engine, st *store.Store, bal *balance.Store, gen *worldgen.Generator, cfg *config.Config) *Manager {
	return &Manager{
		sessions: make(map[uint64]*Session),
		timers:   make(map[uint64]*time.Timer),
		engine:   engine,
		st:       st,
		bal:      bal,
		gen:      gen,
		cfg:      cfg,
		log:      logging.For("mining"),
	}
}

func duration(base time.Duration, tierMultiplier float64, tier int) time.Duration {
	mult := 1.0
	for i := 1; i < tier; i++ {
		mult *= tierMultiplier
	}
	return time.Duration(float64(base) / mult)
}

func yield(base int, tierMultiplier float64, tier int) int64 {
	mult := 1.0
	for i := 1; i < tier; i++ {
		mult *= tierMultiplier
	}
	y := int64(math.Floor(float64(base) * mult))
	if y < 1 {
		y = 1
	}
	return y
}

// Start begins a mining session against objectID for userID.
func (m *Manager) Start(userID uint64, objectID string) (*Session, error) {
	m.mu.Lock()
	if _, active := m.sessions[userID]; active {
		m.mu.Unlock()
		return nil, apperr.State("already mining")
	}
	m.mu.Unlock()

	depleted, err := m.st.IsDepleted(objectID)
	if err != nil {
		return nil, apperr.Persistence("failed to check depletion", err)
	}
	if depleted {
		return nil, apperr.State("resource depleted")
	}

	sx, sy, kind, index, ok := worldgen.ParseObjectID(objectID)
	if !ok || kind != worldgen.KindAsteroid {
		return nil, apperr.Validation("unknown mining target")
	}
	asteroid, found := m.gen.FindAsteroid(sx, sy, index)
	if !found {
		return nil, apperr.Validation("unknown mining target")
	}

	var playerX, playerY float64
	var miningTier, cargoTier int
	var cargoCurrent int64
	m.engine.WithLock(func() {
		p, ok := m.engine.Player(userID)
		if !ok {
			return
		}
		playerX, playerY = p.X, p.Y
		miningTier, cargoTier = p.MiningTier, p.CargoTier
	})
	starSec := m.gen.Sector(sx, sy)
	var starX, starY float64
	if starSec.Star != nil {
		starX, starY = starSec.Star.X, starSec.Star.Y
	}
	ax, ay := asteroid.PositionAt(starX, starY, 0)
	dist := math.Hypot(playerX-ax, playerY-ay)
	if dist > MiningRange {
		return nil, apperr.State("too far from resource")
	}

	cargoCurrent, err = m.st.InventoryTotal(userID)
	if err != nil {
		return nil, apperr.Persistence("failed to check cargo", err)
	}
	table := m.bal.Get()
	if cargoCurrent >= int64(table.CargoMax(cargoTier)) {
		return nil, apperr.State("cargo hold full")
	}

	sess := &Session{
		UserID: userID, ObjectID: objectID, StartAt: time.Now(),
		MiningTier: miningTier,
		Duration:   duration(m.cfg.BaseMiningTime, table.TierMultiplier, miningTier),
	}

	m.mu.Lock()
	m.sessions[userID] = sess
	m.timers[userID] = time.AfterFunc(sess.Duration, func() { m.complete(userID) })
	m.mu.Unlock()

	return sess, nil
}

// Cancel clears an in-progress session, leaving no state (spec.md §4.7).
func (m *Manager) Cancel(userID uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.timers[userID]; ok {
		t.Stop()
		delete(m.timers, userID)
	}
	delete(m.sessions, userID)
}

func (m *Manager) complete(userID uint64) {
	m.mu.Lock()
	sess, ok := m.sessions[userID]
	if ok {
		delete(m.sessions, userID)
		delete(m.timers, userID)
	}
	m.mu.Unlock()
	if !ok {
		return
	}

	depleted, err := m.st.IsDepleted(sess.ObjectID)
	if err != nil {
		m.log.Errorf("depletion re-check failed for %s: %v", sess.ObjectID, err)
		return
	}
	if depleted {
		return
	}

	sx, sy, _, index, ok := worldgen.ParseObjectID(sess.ObjectID)
	if !ok {
		return
	}
	asteroid, found := m.gen.FindAsteroid(sx, sy, index)
	if !found || len(asteroid.Resources) == 0 {
		return
	}
	resource := asteroid.Resources[time.Now().UnixNano()%int64(len(asteroid.Resources))]

	table := m.bal.Get()
	var cargoTier int
	m.engine.WithLock(func() {
		if p, ok := m.engine.Player(userID); ok {
			cargoTier = p.CargoTier
		}
	})
	cargoCurrent, err := m.st.InventoryTotal(userID)
	if err != nil {
		m.log.Errorf("cargo check failed on mining complete: %v", err)
		return
	}
	remaining := int64(table.CargoMax(cargoTier)) - cargoCurrent
	qty := yield(m.cfg.BaseMiningYield, table.TierMultiplier, sess.MiningTier)
	if qty > remaining {
		qty = remaining
	}
	if qty <= 0 {
		return
	}

	if err := m.st.CompleteMining(userID, resource, qty, sess.ObjectID); err != nil {
		m.log.Errorf("failed to complete mining for user=%d: %v", userID, err)
		return
	}

	m.engine.EmitToPlayer(userID, protocol.EventMiningComplete, map[string]any{
		"objectId": sess.ObjectID, "resource": resource, "quantity": qty,
	})
}
