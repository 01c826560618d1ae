/*
File: internal/sim/spawn.go
Description:
    Implements internal/auth.SpawnLocator: picks a deep-space point in
    the origin sector, which worldgen guarantees never rolls a star
    (spec.md §3 invariant 7 — spawn points stay STAR_SIZE_MAX*2 away from
    any star).
*/
package sim

import (
	"math/rand"

	"github.com/voidreach/starforge/internal/worldgen"
)

// Spawner picks spawn points in the galaxy's origin sector.
type Spawner struct {
	gen        *worldgen.Generator
	sectorSize float64
}

// NewSpawner builds a Spawner bound to gen.
func NewSpawner(gen *worldgen.Generator, sectorSize float64) *Spawner {
	return &Spawner{gen: gen, sectorSize: sectorSize}
}

// PickSpawn returns a random point in the central half of the origin
// sector (0,0), at least a quarter sector from each of its edges. The
// origin sector never rolls a star; its free-floating asteroids are not
// avoided.
func (s *Spawner) PickSpawn() (x, y float64) {
	half := s.sectorSize / 2
	x = half + (rand.Float64()*2-1)*half*0.5
	y = half + (rand.Float64()*2-1)*half*0.5
	return x, y
}
