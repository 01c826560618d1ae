/*
Package worldgen
File: internal/worldgen/worldgen.go
Description:
    Component C1 — the deterministic procedural world model. A sector's
    contents are a pure function of (seed, sx, sy); the same inputs must
    yield bit-identical output across processes (spec.md §4.1, §8
    property 3).

    Grounded on lukechampine.com/blake3, the exact dependency
    Vitadek-OwnWorld uses to turn (seed, coordinates) into deterministic
    randomness (see its hashBLAKE3 / efficiency-seed helpers). Each
    generated object gets its own PRNG seeded from a mix of the galaxy
    seed, the sector coordinates, the object kind, and its index — so
    adding one more asteroid to a sector never reshuffles the others.
*/
package worldgen

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"

	"lukechampine.com/blake3"
)

// Kind tags the category of a generated sector object.
type Kind string

const (
	KindStar      Kind = "star"
	KindPlanet    Kind = "planet"
	KindAsteroid  Kind = "asteroid"
	KindWormhole  Kind = "wormhole"
	KindStation   Kind = "station"
)

// originExclusionRadiusSectors names the star exclusion that keeps
// deep-space spawn possible: spec.md §3 invariant 7 requires spawn points
// more than STAR_SIZE_MAX*2 from any star, so Sector never rolls a star
// for the origin sector (0,0). Sector checks (0,0) directly and does not
// read this constant.
const originExclusionRadiusSectors = 1

// Star is the (at most one) gravity well anchoring a sector's orbitals.
type Star struct {
	ID   string
	X, Y float64
	Size float64
}

// Planet orbits a star on a fixed elliptical path; its live position is
// computed on demand from wall-clock time, never stored (spec.md §3).
type Planet struct {
	ID            string
	OrbitRadius   float64
	Eccentricity  float64
	AngularVelRad float64 // radians per second
	StartPhase    float64 // radians
	Size          float64
}

// PositionAt returns the planet's world position at simulation time t
// (seconds since epoch), orbiting the given star center.
func (p Planet) PositionAt(starX, starY float64, tSeconds float64) (x, y float64) {
	theta := p.StartPhase + p.AngularVelRad*tSeconds
	rx := p.OrbitRadius
	ry := p.OrbitRadius * (1 - p.Eccentricity)
	return starX + math.Cos(theta)*rx, starY + math.Sin(theta)*ry
}

// Asteroid is either orbital (belt-like, like a Planet) or free-floating
// (fixed in the world frame).
type Asteroid struct {
	ID       string
	Orbital  bool
	Size     float64
	Resources []string

	// Orbital fields, valid only when Orbital is true.
	OrbitRadius   float64
	AngularVelRad float64
	StartPhase    float64

	// Free-floating fields, valid only when Orbital is false.
	X, Y float64
}

// PositionAt mirrors Planet.PositionAt for orbital asteroids; for free
// asteroids it returns the fixed X/Y regardless of t.
func (a Asteroid) PositionAt(starX, starY float64, tSeconds float64) (x, y float64) {
	if !a.Orbital {
		return a.X, a.Y
	}
	theta := a.StartPhase + a.AngularVelRad*tSeconds
	return starX + math.Cos(theta)*a.OrbitRadius, starY + math.Sin(theta)*a.OrbitRadius
}

// Wormhole is a fixed-position transit anchor. DestinationHint is stored
// for lore only — spec.md §9 notes actual destination selection happens
// at entry time via nearest-wormhole search, so this field has no
// runtime effect and is never read by internal/wormhole.
type Wormhole struct {
	ID              string
	X, Y            float64
	Size            float64
	DestinationHint [2]int // (sx, sy) of a "suggested" sector; cosmetic only
}

// Station is a fixed trade hub.
type Station struct {
	ID   string
	X, Y float64
	Size float64
}

// Sector is the deterministic content of one (sx, sy) cell.
type Sector struct {
	SX, SY    int
	Star      *Star
	Planets   []Planet
	Asteroids []Asteroid
	Wormhole  *Wormhole
	Station   *Station
}

// Generator produces deterministic Sectors from a galaxy seed.
type Generator struct {
	seed       int64
	sectorSize float64
	starSizeMax float64
}

// New builds a Generator. sectorSize is spec.md's SECTOR_SIZE; starSizeMax
// bounds star radius and gates deep-space spawn exclusion.
func New(seed int64, sectorSize, starSizeMax float64) *Generator {
	return &Generator{seed: seed, sectorSize: sectorSize, starSizeMax: starSizeMax}
}

// objectID matches spec.md §3's stable id shape: sector_sx_sy_kind_index.
func objectID(sx, sy int, kind Kind, index int) string {
	return fmt.Sprintf("sector_%d_%d_%s_%d", sx, sy, kind, index)
}

// objectRand derives a reproducible uint64 from (seed, sx, sy, kind, index)
// via BLAKE3, then a *rand.Rand seeded from it for that object's rolls.
// Two processes given the same inputs always produce the same stream.
func (g *Generator) objectRand(sx, sy int, kind Kind, index int) *rand.Rand {
	buf := make([]byte, 0, 32)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(g.seed))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(int64(sx)))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(int64(sy)))
	buf = append(buf, []byte(kind)...)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(int64(index)))

	sum := blake3.Sum256(buf)
	seed := int64(binary.LittleEndian.Uint64(sum[:8]))
	return rand.New(rand.NewSource(seed))
}

// Sector generates the deterministic content of cell (sx, sy). Calling
// this twice with the same (seed, sx, sy) — in this process or any
// other — returns bit-identical results (spec.md §4.1 contract).
func (g *Generator) Sector(sx, sy int) Sector {
	sec := Sector{SX: sx, SY: sy}

	originSX, originSY := sx == 0, sy == 0
	isOrigin := originSX && originSY

	// 1. Star: low probability, excluded at the origin so a deep-space
	// spawn point always exists near (0,0).
	starRoll := g.objectRand(sx, sy, KindStar, 0)
	hasStar := !isOrigin && starRoll.Float64() < 0.18
	var starX, starY float64
	if hasStar {
		starX = float64(sx)*g.sectorSize + starRoll.Float64()*g.sectorSize
		starY = float64(sy)*g.sectorSize + starRoll.Float64()*g.sectorSize
		size := g.starSizeMax * (0.4 + starRoll.Float64()*0.6)
		sec.Star = &Star{ID: objectID(sx, sy, KindStar, 0), X: starX, Y: starY, Size: size}
	} else {
		// Still need a nominal center for sectors without a star, purely
		// to place free asteroids consistently.
		starX = float64(sx)*g.sectorSize + g.sectorSize/2
		starY = float64(sy)*g.sectorSize + g.sectorSize/2
	}

	// 2. Planets, only if a star exists.
	if sec.Star != nil {
		pr := g.objectRand(sx, sy, KindPlanet, -1)
		n := pr.Intn(4) // 0-3 planets
		for i := 0; i < n; i++ {
			r := g.objectRand(sx, sy, KindPlanet, i)
			planet := Planet{
				ID:            objectID(sx, sy, KindPlanet, i),
				OrbitRadius:   sec.Star.Size*2 + r.Float64()*g.sectorSize*0.35,
				Eccentricity:  r.Float64() * 0.4,
				AngularVelRad: (0.02 + r.Float64()*0.06) / 60,
				StartPhase:    r.Float64() * 2 * math.Pi,
				Size:          20 + r.Float64()*60,
			}
			sec.Planets = append(sec.Planets, planet)
		}
	}

	// 3. Asteroids: some orbital (belt-like, requires a star), some free.
	ar := g.objectRand(sx, sy, KindAsteroid, -1)
	m := 3 + ar.Intn(6) // 3-8 asteroids
	for i := 0; i < m; i++ {
		r := g.objectRand(sx, sy, KindAsteroid, i)
		resources := pickResources(r)
		orbital := sec.Star != nil && r.Float64() < 0.5
		a := Asteroid{
			ID:        objectID(sx, sy, KindAsteroid, i),
			Orbital:   orbital,
			Size:      8 + r.Float64()*24,
			Resources: resources,
		}
		if orbital {
			a.OrbitRadius = sec.Star.Size*1.5 + r.Float64()*g.sectorSize*0.45
			a.AngularVelRad = (0.01 + r.Float64()*0.04) / 60
			a.StartPhase = r.Float64() * 2 * math.Pi
		} else {
			a.X = float64(sx)*g.sectorSize + r.Float64()*g.sectorSize
			a.Y = float64(sy)*g.sectorSize + r.Float64()*g.sectorSize
		}
		sec.Asteroids = append(sec.Asteroids, a)
	}

	// 4. Wormhole: 0-1 per sector.
	wr := g.objectRand(sx, sy, KindWormhole, 0)
	if wr.Float64() < 0.12 {
		hintSX := sx + wr.Intn(21) - 10
		hintSY := sy + wr.Intn(21) - 10
		sec.Wormhole = &Wormhole{
			ID:              objectID(sx, sy, KindWormhole, 0),
			X:               float64(sx)*g.sectorSize + wr.Float64()*g.sectorSize,
			Y:               float64(sy)*g.sectorSize + wr.Float64()*g.sectorSize,
			Size:            25 + wr.Float64()*15,
			DestinationHint: [2]int{hintSX, hintSY},
		}
	}

	// 5. Station: 0-1 per sector.
	str := g.objectRand(sx, sy, KindStation, 0)
	if str.Float64() < 0.08 {
		sec.Station = &Station{
			ID:   objectID(sx, sy, KindStation, 0),
			X:    float64(sx)*g.sectorSize + str.Float64()*g.sectorSize,
			Y:    float64(sy)*g.sectorSize + str.Float64()*g.sectorSize,
			Size: 40,
		}
	}

	return sec
}

var resourcePool = []string{"IRON", "TITANIUM", "ICE", "PLASMA", "RELIC_ALLOY"}

// pickResources rolls 1-2 resource types an asteroid can yield, weighting
// the rare RELIC_ALLOY far below the common metals.
func pickResources(r *rand.Rand) []string {
	out := []string{resourcePool[r.Intn(3)]} // IRON/TITANIUM/ICE dominate
	if r.Float64() < 0.15 {
		out = append(out, "PLASMA")
	}
	if r.Float64() < 0.03 {
		out = append(out, "RELIC_ALLOY")
	}
	return out
}

// SectorCoordsFor returns the sector containing world point (x, y).
func (g *Generator) SectorCoordsFor(x, y float64) (sx, sy int) {
	return int(math.Floor(x / g.sectorSize)), int(math.Floor(y / g.sectorSize))
}

// SectorSize exposes the configured cell size (used by internal/spatial).
func (g *Generator) SectorSize() float64 { return g.sectorSize }

// ParseObjectID recovers the sector coordinates and kind encoded in an
// object id produced by objectID, so a handler that only has the id
// string (e.g. mining:start {objectId}) can regenerate that object
// deterministically via Sector. Kind values never contain "_", so a
// plain split on "_" is unambiguous.
func ParseObjectID(id string) (sx, sy int, kind Kind, index int, ok bool) {
	parts := strings.Split(id, "_")
	if len(parts) != 5 || parts[0] != "sector" {
		return 0, 0, "", 0, false
	}
	sx, errX := strconv.Atoi(parts[1])
	sy, errY := strconv.Atoi(parts[2])
	index, errI := strconv.Atoi(parts[4])
	if errX != nil || errY != nil || errI != nil {
		return 0, 0, "", 0, false
	}
	return sx, sy, Kind(parts[3]), index, true
}

// FindAsteroid regenerates sector (sx, sy) and returns its asteroid at
// index, if the sector has that many asteroids.
func (g *Generator) FindAsteroid(sx, sy, index int) (Asteroid, bool) {
	sec := g.Sector(sx, sy)
	if index < 0 || index >= len(sec.Asteroids) {
		return Asteroid{}, false
	}
	return sec.Asteroids[index], true
}

// FindWormhole regenerates sector (sx, sy) and returns its wormhole, if
// it has one (wormholes are 0-or-1 per sector, so objectID always gives
// them index 0 and no index is taken here).
func (g *Generator) FindWormhole(sx, sy int) (Wormhole, bool) {
	sec := g.Sector(sx, sy)
	if sec.Wormhole == nil {
		return Wormhole{}, false
	}
	return *sec.Wormhole, true
}
