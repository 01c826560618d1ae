/*
Package loot
File: internal/loot/loot.go
Description:
    Component C7's loot half. Same shape as internal/mining but bound to
    a transient, server-owned sim.Wreckage instead of a procedural
    worldgen object (spec.md §4.7: "Same shape as mining but bound to a
    transient wreckage entity").
*/
package loot

import (
	"math"
	"sync"
	"time"

	"github.com/voidreach/starforge/internal/apperr"
	"github.com/voidreach/starforge/internal/logging"
	"github.com/voidreach/starforge/internal/protocol"
	"github.com/voidreach/starforge/internal/sim"
	"github.com/voidreach/starforge/internal/store"
)

// CollectRange is how close a ship must be to a wreckage to loot it.
const CollectRange = 180.0

// CollectDuration is the fixed time a loot collection takes.
const CollectDuration = 2 * time.Second

// Session is one in-progress loot collection.
type Session struct {
	UserID      uint64
	WreckageID  string
	StartAt     time.Time
}

// Manager tracks at most one active loot session per player.
type Manager struct {
	mu       sync.Mutex
	sessions map[uint64]*Session
	timers   map[uint64]*time.Timer

	engine *sim.Engine
	st     *store.Store
	log    *logging.Logger
}

// NewManager wires a loot Manager bound to a live simulation engine.
func NewManager(engine *sim.Engine, st *store.Store) *Manager {
	return &Manager{
		sessions: make(map[uint64]*Session),
		timers:   make(map[uint64]*time.Timer),
		engine:   engine,
		st:       st,
		log:      logging.For("loot"),
	}
}

// Start begins collecting wreckageID for userID.
func (m *Manager) Start(userID uint64, wreckageID string) (*Session, error) {
	m.mu.Lock()
	if _, active := m.sessions[userID]; active {
		m.mu.Unlock()
		return nil, apperr.State("already collecting loot")
	}
	m.mu.Unlock()

	var playerX, playerY float64
	var cargoTier int
	var wreckX, wreckY float64
	var found bool
	m.engine.WithLock(func() {
		p, ok := m.engine.Player(userID)
		if !ok {
			return
		}
		playerX, playerY = p.X, p.Y
		cargoTier = p.CargoTier
		w, ok := m.engine.Wreckage(wreckageID)
		if !ok {
			return
		}
		wreckX, wreckY = w.X, w.Y
		found = true
	})
	if !found {
		return nil, apperr.Validation("wreckage no longer exists")
	}
	if dist := math.Hypot(playerX-wreckX, playerY-wreckY); dist > CollectRange {
		return nil, apperr.State("too far from wreckage")
	}

	cargoCurrent, err := m.st.InventoryTotal(userID)
	if err != nil {
		return nil, apperr.Persistence("failed to check cargo", err)
	}
	table := m.engine.Balance().Get()
	if cargoCurrent >= int64(table.CargoMax(cargoTier)) {
		return nil, apperr.State("cargo hold full")
	}

	sess := &Session{UserID: userID, WreckageID: wreckageID, StartAt: time.Now()}
	m.mu.Lock()
	m.sessions[userID] = sess
	m.timers[userID] = time.AfterFunc(CollectDuration, func() { m.complete(userID) })
	m.mu.Unlock()

	return sess, nil
}

// Cancel clears an in-progress collection, leaving the wreckage intact.
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

	var credits int64
	var resources map[string]int64
	var relics []string
	var found bool
	m.engine.WithLock(func() {
		w, ok := m.engine.Wreckage(sess.WreckageID)
		if !ok {
			return
		}
		credits, resources, relics = w.Credits, w.Resources, w.Relics
		m.engine.RemoveWreckage(sess.WreckageID)
		found = true
	})
	if !found {
		// Decayed or already collected by someone else; silently drop.
		return
	}

	if credits > 0 {
		if err := m.st.AddCredits(userID, credits); err != nil {
			m.log.Errorf("failed to credit loot for user=%d: %v", userID, err)
			return
		}
	}
	if len(resources) > 0 {
		var cargoTier int
		m.engine.WithLock(func() {
			if p, ok := m.engine.Player(userID); ok {
				cargoTier = p.CargoTier
			}
		})
		cargoCurrent, err := m.st.InventoryTotal(userID)
		if err != nil {
			m.log.Errorf("cargo check failed on loot complete: %v", err)
			return
		}
		cargoMax := int64(m.engine.Balance().Get().CargoMax(cargoTier))
		for res, qty := range resources {
			remaining := cargoMax - cargoCurrent
			if remaining <= 0 {
				break
			}
			if qty > remaining {
				qty = remaining
			}
			if err := m.st.AddInventory(userID, res, qty); err != nil {
				m.log.Errorf("failed to credit loot resource for user=%d: %v", userID, err)
				return
			}
			cargoCurrent += qty
		}
	}
	for _, relic := range relics {
		if err := m.st.GrantRelic(userID, relic); err != nil {
			m.log.Errorf("failed to grant relic for user=%d: %v", userID, err)
			return
		}
	}

	m.engine.EmitToPlayer(userID, protocol.EventLootComplete, map[string]any{
		"wreckageId": sess.WreckageID, "credits": credits, "resources": resources, "relics": relics,
	})
}
