/*
Package spatial
File: internal/spatial/grid.go
Description:
    Component C2 — a uniform-grid spatial index over the live entities
    (players, NPCs, projectiles, area effects). Cell size equals
    spec.md's SECTOR_SIZE so the index lines up one-to-one with
    internal/worldgen's procedural sectors.

    Grounded on the teacher's CalculateDistance (internal/game/mechanics.go)
    for the Euclidean math; the insert/move/remove/query/nearest shape is
    new, built directly from spec.md §4.2's operation list since nothing
    in the teacher or the rest of the pack implements a spatial grid.
*/
package spatial

import (
	"math"
	"sort"
	"sync"
)

// Kind tags what sort of thing an indexed id refers to.
type Kind string

const (
	KindPlayer     Kind = "player"
	KindNPC        Kind = "npc"
	KindProjectile Kind = "projectile"
	KindAreaEffect Kind = "area_effect"
	KindWreckage   Kind = "wreckage"
)

// Point is a world-space position.
type Point struct {
	X, Y float64
}

// Distance returns the Euclidean distance between two points (grounded on
// the teacher's CalculateDistance, generalized from int64-rounded ship
// coordinates to float world coordinates).
func Distance(a, b Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return math.Sqrt(dx*dx + dy*dy)
}

type cellKey struct{ cx, cy int }

type entry struct {
	id   string
	kind Kind
	pos  Point
}

// Grid is a uniform-grid hash over live entities. All mutating methods
// are safe for concurrent use; per spec.md §5 only the sim thread is
// expected to call them, but the lock keeps Query safe for the interest
// manager to call from the same thread without extra coordination.
type Grid struct {
	cellSize float64

	mu    sync.RWMutex
	cells map[cellKey]map[string]*entry
	byID  map[string]*entry
}

// NewGrid builds a Grid with the given cell size (spec.md's SECTOR_SIZE).
func NewGrid(cellSize float64) *Grid {
	return &Grid{
		cellSize: cellSize,
		cells:    make(map[cellKey]map[string]*entry),
		byID:     make(map[string]*entry),
	}
}

func (g *Grid) cellOf(p Point) cellKey {
	return cellKey{
		cx: int(math.Floor(p.X / g.cellSize)),
		cy: int(math.Floor(p.Y / g.cellSize)),
	}
}

// Insert adds an entity at pos. Re-inserting an existing id moves it.
func (g *Grid) Insert(id string, kind Kind, pos Point) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if old, ok := g.byID[id]; ok {
		g.removeLocked(old)
	}
	e := &entry{id: id, kind: kind, pos: pos}
	g.byID[id] = e
	ck := g.cellOf(pos)
	bucket := g.cells[ck]
	if bucket == nil {
		bucket = make(map[string]*entry)
		g.cells[ck] = bucket
	}
	bucket[id] = e
}

// Move relocates an already-inserted entity, rebucketing only when the
// cell actually changes (spec.md §4.2: "rebuckets only on cell change").
func (g *Grid) Move(id string, newPos Point) {
	g.mu.Lock()
	defer g.mu.Unlock()
	e, ok := g.byID[id]
	if !ok {
		return
	}
	oldCell := g.cellOf(e.pos)
	newCell := g.cellOf(newPos)
	e.pos = newPos
	if oldCell == newCell {
		return
	}
	if bucket := g.cells[oldCell]; bucket != nil {
		delete(bucket, id)
		if len(bucket) == 0 {
			delete(g.cells, oldCell)
		}
	}
	bucket := g.cells[newCell]
	if bucket == nil {
		bucket = make(map[string]*entry)
		g.cells[newCell] = bucket
	}
	bucket[id] = e
}

// Remove deletes an entity from the index.
func (g *Grid) Remove(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if e, ok := g.byID[id]; ok {
		g.removeLocked(e)
	}
}

func (g *Grid) removeLocked(e *entry) {
	delete(g.byID, e.id)
	ck := g.cellOf(e.pos)
	if bucket := g.cells[ck]; bucket != nil {
		delete(bucket, e.id)
		if len(bucket) == 0 {
			delete(g.cells, ck)
		}
	}
}

// Hit is one result of a Query or Nearest call.
type Hit struct {
	ID       string
	Kind     Kind
	Pos      Point
	Distance float64
}

// Query returns every entity within radius of center, visiting at most
// ((2r/cell)+1)^2 cells per spec.md §4.2.
func (g *Grid) Query(center Point, radius float64) []Hit {
	g.mu.RLock()
	defer g.mu.RUnlock()

	minCell := g.cellOf(Point{center.X - radius, center.Y - radius})
	maxCell := g.cellOf(Point{center.X + radius, center.Y + radius})

	var hits []Hit
	for cx := minCell.cx; cx <= maxCell.cx; cx++ {
		for cy := minCell.cy; cy <= maxCell.cy; cy++ {
			bucket := g.cells[cellKey{cx, cy}]
			for _, e := range bucket {
				d := Distance(center, e.pos)
				if d <= radius {
					hits = append(hits, Hit{ID: e.id, Kind: e.kind, Pos: e.pos, Distance: d})
				}
			}
		}
	}
	// Stable order: ascending distance, then id, so equal-distance ties
	// behave reproducibly (spec.md §4.2).
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].ID < hits[j].ID
	})
	return hits
}

// Nearest performs an outward ring (Moore neighborhood) expansion up to
// expand cells, looking for the closest entity of the given kind. Ties
// break on ascending entity id (spec.md §4.2).
func (g *Grid) Nearest(center Point, kind Kind, expand int) (Hit, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	origin := g.cellOf(center)
	var best *Hit
	foundAtRing := -1

	for ring := 0; ring <= expand; ring++ {
		// Once a candidate has been found, scan exactly one more ring —
		// an object just across a cell boundary can still be closer —
		// then stop.
		if foundAtRing >= 0 && ring > foundAtRing+1 {
			break
		}
		for cx := origin.cx - ring; cx <= origin.cx+ring; cx++ {
			for cy := origin.cy - ring; cy <= origin.cy+ring; cy++ {
				// Only visit the outer shell of this ring; inner cells
				// were already visited on a smaller ring.
				if ring > 0 && cx != origin.cx-ring && cx != origin.cx+ring &&
					cy != origin.cy-ring && cy != origin.cy+ring {
					continue
				}
				bucket := g.cells[cellKey{cx, cy}]
				for _, e := range bucket {
					if e.kind != kind {
						continue
					}
					d := Distance(center, e.pos)
					if best == nil || d < best.Distance || (d == best.Distance && e.id < best.ID) {
						best = &Hit{ID: e.id, Kind: e.kind, Pos: e.pos, Distance: d}
					}
					if foundAtRing < 0 {
						foundAtRing = ring
					}
				}
			}
		}
	}
	if best == nil {
		return Hit{}, false
	}
	return *best, true
}

// Len reports how many entities are currently indexed (diagnostics only).
func (g *Grid) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.byID)
}
