/*
Package interest
File: internal/interest/interest.go
Description:
    Component C9 — who hears what. Interest radius per spec.md §4.9 is
    `BASE_RADAR_RANGE × MULT^(radarTier−1) × 2`; recipients are found by
    querying internal/spatial's grid around the broadcast origin and
    filtering to players, the same "enumerate candidate cells, filter by
    Euclidean distance" shape the grid already implements.
*/
package interest

import (
	"strconv"

	"github.com/voidreach/starforge/internal/spatial"
)

// Radius computes a player's broadcast interest radius for their
// current radar tier.
func Radius(baseRadarRange, tierMultiplier float64, radarTier int) float64 {
	mult := 1.0
	for i := 1; i < radarTier; i++ {
		mult *= tierMultiplier
	}
	return baseRadarRange * mult * 2
}

// Manager finds broadcast recipients using the shared spatial grid.
type Manager struct {
	grid *spatial.Grid
}

// New builds a Manager over grid (the same grid the sim engine and NPC
// AI use for proximity queries — interest never mutates it).
func New(grid *spatial.Grid) *Manager {
	return &Manager{grid: grid}
}

// PlayerEntityID is the spatial-grid entity id for a player, kept
// distinct from NPC/projectile/area-effect ids sharing the same grid.
func PlayerEntityID(userID uint64) string {
	return "player:" + strconv.FormatUint(userID, 10)
}

// Recipients returns every player (other than excludeUserID) whose
// position falls within radius of origin.
func (m *Manager) Recipients(origin spatial.Point, radius float64, excludeUserID uint64) []uint64 {
	hits := m.grid.Query(origin, radius)
	out := make([]uint64, 0, len(hits))
	excludeID := PlayerEntityID(excludeUserID)
	for _, h := range hits {
		if h.Kind != spatial.KindPlayer || h.ID == excludeID {
			continue
		}
		id, err := strconv.ParseUint(h.ID[len("player:"):], 10, 64)
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	return out
}
