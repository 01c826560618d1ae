/*
Package wormhole
File: internal/wormhole/wormhole.go
Description:
    Component C8's two-phase transit protocol (spec.md §4.8). Unlike
    internal/mining and internal/loot, timeouts here are advanced from
    the tick loop rather than time.AfterFunc: Manager implements
    sim.WormholeTicker and is wired via Engine.SetWormholeTicker, so
    selection-timeout and transit-completion checks run as tick phase 7
    (spec.md §4.6 phase list), matching "wormhole tick: advance selection
    timeout; complete transits whose elapsed >= duration" exactly.
*/
package wormhole

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/voidreach/starforge/internal/apperr"
	"github.com/voidreach/starforge/internal/config"
	"github.com/voidreach/starforge/internal/logging"
	"github.com/voidreach/starforge/internal/protocol"
	"github.com/voidreach/starforge/internal/sim"
	"github.com/voidreach/starforge/internal/store"
	"github.com/voidreach/starforge/internal/worldgen"
)

// Phase is a transit's sub-state.
type Phase int

const (
	PhaseSelecting Phase = iota
	PhaseTransit
)

// Destination is one candidate exit point offered to the player.
type Destination struct {
	ID      string  `json:"id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Distance float64 `json:"distance"`
	SectorX int     `json:"sectorX"`
	SectorY int     `json:"sectorY"`
}

// Transit is one player's in-progress wormhole crossing.
type Transit struct {
	UserID              uint64
	Phase               Phase
	EntryWormholeID     string
	EntryX, EntryY      float64
	Destinations        []Destination
	DestinationID       string
	TransitStartAt      time.Time
	SelectionDeadlineAt time.Time
}

// Manager tracks at most one active transit per player.
type Manager struct {
	mu       sync.Mutex
	transits map[uint64]*Transit

	engine *sim.Engine
	st     *store.Store
	gen    *worldgen.Generator
	cfg    *config.Config
	log    *logging.Logger
}

// NewManager wires a wormhole Manager bound to a live simulation engine.
func NewManager(engine *sim.Engine, st *store.Store, gen *worldgen.Generator, cfg *config.Config) *Manager {
	return &Manager{
		transits: make(map[uint64]*Transit),
		engine:   engine,
		st:       st,
		gen:      gen,
		cfg:      cfg,
		log:      logging.For("wormhole"),
	}
}

// Enter validates proximity and relic ownership, then offers the 5
// nearest wormholes (excluding the entry one) as destinations.
func (m *Manager) Enter(userID uint64, wormholeID string) ([]Destination, error) {
	m.mu.Lock()
	if _, active := m.transits[userID]; active {
		m.mu.Unlock()
		return nil, apperr.State("already in wormhole transit")
	}
	m.mu.Unlock()

	has, err := m.st.HasRelic(userID, "WORMHOLE_GEM")
	if err != nil {
		return nil, apperr.Persistence("failed to check relics", err)
	}
	if !has {
		return nil, apperr.State("wormhole gem required")
	}

	sx, sy, kind, _, ok := worldgen.ParseObjectID(wormholeID)
	if !ok || kind != worldgen.KindWormhole {
		return nil, apperr.Validation("unknown wormhole")
	}
	wh, found := m.gen.FindWormhole(sx, sy)
	if !found || wh.ID != wormholeID {
		return nil, apperr.Validation("unknown wormhole")
	}

	var playerX, playerY float64
	m.engine.WithLock(func() {
		p, ok := m.engine.Player(userID)
		if ok {
			playerX, playerY = p.X, p.Y
		}
	})
	if dist := math.Hypot(playerX-wh.X, playerY-wh.Y); dist > m.cfg.WormholeRange+wh.Size {
		return nil, apperr.State("too far from wormhole")
	}

	destinations := m.nearestWormholes(sx, sy, wormholeID, 5, 20)
	if len(destinations) == 0 {
		return nil, apperr.State("no destination wormholes available")
	}

	now := time.Now()
	tr := &Transit{
		UserID: userID, Phase: PhaseSelecting,
		EntryWormholeID: wormholeID, EntryX: wh.X, EntryY: wh.Y,
		Destinations:        destinations,
		SelectionDeadlineAt: now.Add(m.cfg.SelectionTimeout),
	}
	m.mu.Lock()
	m.transits[userID] = tr
	m.mu.Unlock()

	m.engine.WithLock(func() {
		if p, ok := m.engine.Player(userID); ok {
			p.Life = sim.LifeInTransit
		}
	})

	return destinations, nil
}

// nearestWormholes performs an outward ring expansion over sector
// coordinates around (sx, sy), collecting every generated wormhole other
// than excludeID, and returns the n closest by Euclidean distance.
func (m *Manager) nearestWormholes(sx, sy int, excludeID string, n, maxRings int) []Destination {
	origin := m.gen.Sector(sx, sy)
	var originX, originY float64
	if origin.Wormhole != nil {
		originX, originY = origin.Wormhole.X, origin.Wormhole.Y
	}

	var found []Destination
	for ring := 0; ring <= maxRings; ring++ {
		for dx := -ring; dx <= ring; dx++ {
			for dy := -ring; dy <= ring; dy++ {
				if ring > 0 && dx != -ring && dx != ring && dy != -ring && dy != ring {
					continue
				}
				csx, csy := sx+dx, sy+dy
				wh, ok := m.gen.FindWormhole(csx, csy)
				if !ok || wh.ID == excludeID {
					continue
				}
				found = append(found, Destination{
					ID: wh.ID, X: wh.X, Y: wh.Y,
					Distance: math.Hypot(wh.X-originX, wh.Y-originY),
					SectorX:  csx, SectorY: csy,
				})
			}
		}
		if len(found) >= n {
			break
		}
	}

	sortDestinationsByDistance(found)
	if len(found) > n {
		found = found[:n]
	}
	return found
}

func sortDestinationsByDistance(d []Destination) {
	for i := 1; i < len(d); i++ {
		for j := i; j > 0 && d[j].Distance < d[j-1].Distance; j-- {
			d[j], d[j-1] = d[j-1], d[j]
		}
	}
}

// SelectDestination commits a player to one of the offered destinations.
func (m *Manager) SelectDestination(userID uint64, destinationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tr, ok := m.transits[userID]
	if !ok || tr.Phase != PhaseSelecting {
		return apperr.State("no active wormhole selection")
	}
	found := false
	for _, d := range tr.Destinations {
		if d.ID == destinationID {
			found = true
			break
		}
	}
	if !found {
		return apperr.Validation("destination not offered")
	}
	tr.DestinationID = destinationID
	tr.Phase = PhaseTransit
	tr.TransitStartAt = time.Now()
	return nil
}

// Cancel frees a selecting transit. Valid only before a destination has
// been chosen (spec.md §4.8 step 4).
func (m *Manager) Cancel(userID uint64) error {
	m.mu.Lock()
	tr, ok := m.transits[userID]
	if !ok || tr.Phase != PhaseSelecting {
		m.mu.Unlock()
		return apperr.State("no active wormhole selection")
	}
	delete(m.transits, userID)
	m.mu.Unlock()

	m.engine.WithLock(func() {
		if p, ok := m.engine.Player(userID); ok && p.Life == sim.LifeInTransit {
			p.Life = sim.LifeAlive
		}
	})
	return nil
}

// GetProgress reports a user's active transit, if any.
func (m *Manager) GetProgress(userID uint64) (*Transit, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tr, ok := m.transits[userID]
	return tr, ok
}

// GetNearestPosition reports the nearest wormhole to a player's current
// position, searching outward from their current sector.
func (m *Manager) GetNearestPosition(userID uint64) (Destination, bool) {
	var px, py float64
	var sx, sy int
	m.engine.WithLock(func() {
		p, ok := m.engine.Player(userID)
		if !ok {
			return
		}
		px, py = p.X, p.Y
		sx, sy = m.gen.SectorCoordsFor(px, py)
	})
	var best Destination
	found := false
	for ring := 0; ring <= 20; ring++ {
		// Every cell of this ring is at least (ring-1) sectors away, so
		// once that exceeds the best distance no farther ring can win.
		if found && float64(ring-1)*m.gen.SectorSize() > best.Distance {
			break
		}
		for dx := -ring; dx <= ring; dx++ {
			for dy := -ring; dy <= ring; dy++ {
				if ring > 0 && dx != -ring && dx != ring && dy != -ring && dy != ring {
					continue
				}
				wh, ok := m.gen.FindWormhole(sx+dx, sy+dy)
				if !ok {
					continue
				}
				if d := math.Hypot(wh.X-px, wh.Y-py); !found || d < best.Distance {
					best = Destination{
						ID: wh.ID, X: wh.X, Y: wh.Y, Distance: d,
						SectorX: sx + dx, SectorY: sy + dy,
					}
					found = true
				}
			}
		}
	}
	return best, found
}

// Tick advances every active transit (sim.WormholeTicker): selecting
// transits past their deadline auto-cancel, and transit-phase crossings
// past TRANSIT_DURATION complete.
func (m *Manager) Tick(now time.Time) {
	m.mu.Lock()
	var toComplete []*Transit
	for userID, tr := range m.transits {
		switch tr.Phase {
		case PhaseSelecting:
			if now.After(tr.SelectionDeadlineAt) {
				delete(m.transits, userID)
			}
		case PhaseTransit:
			if now.Sub(tr.TransitStartAt) >= m.cfg.TransitDuration {
				toComplete = append(toComplete, tr)
				delete(m.transits, userID)
			}
		}
	}
	m.mu.Unlock()

	for _, tr := range toComplete {
		m.complete(tr, now)
	}
}

func (m *Manager) complete(tr *Transit, now time.Time) {
	var dest Destination
	for _, d := range tr.Destinations {
		if d.ID == tr.DestinationID {
			dest = d
			break
		}
	}
	wh, ok := m.gen.FindWormhole(dest.SectorX, dest.SectorY)
	size := 20.0
	if ok {
		size = wh.Size
	}

	angle := rand.Float64() * 2 * math.Pi
	exitX := dest.X + math.Cos(angle)*(m.cfg.ExitOffset+size)
	exitY := dest.Y + math.Sin(angle)*(m.cfg.ExitOffset+size)

	m.engine.WithLock(func() {
		p, ok := m.engine.Player(tr.UserID)
		if !ok {
			return
		}
		p.X, p.Y = exitX, exitY
		p.SectorX, p.SectorY = m.gen.SectorCoordsFor(exitX, exitY)
		p.VX, p.VY = 0, 0
		p.Life = sim.LifeInvulnerable
		p.InvulnerableUntil = now.Add(m.cfg.RespawnInvulnerability)
		p.Dirty = true
	})

	m.engine.EmitToPlayer(tr.UserID, protocol.EventWormholeExitComplete, map[string]any{
		"position": map[string]float64{"x": exitX, "y": exitY},
	})
}
