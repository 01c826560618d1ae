package interest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voidreach/starforge/internal/spatial"
)

func TestRadiusScalesWithTier(t *testing.T) {
	r1 := Radius(600, 1.5, 1)
	r2 := Radius(600, 1.5, 2)
	require.Equal(t, 1200.0, r1)
	require.InDelta(t, 1800.0, r2, 0.0001)
}

func TestRecipientsExcludesSelfAndFiltersKind(t *testing.T) {
	grid := spatial.NewGrid(500)
	grid.Insert(PlayerEntityID(1), spatial.KindPlayer, spatial.Point{X: 0, Y: 0})
	grid.Insert(PlayerEntityID(2), spatial.KindPlayer, spatial.Point{X: 10, Y: 10})
	grid.Insert("npc:1", spatial.KindNPC, spatial.Point{X: 5, Y: 5})

	m := New(grid)
	recipients := m.Recipients(spatial.Point{X: 0, Y: 0}, 1000, 1)
	require.Equal(t, []uint64{2}, recipients)
}
