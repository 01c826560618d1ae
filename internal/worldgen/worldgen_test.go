package worldgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSectorIsDeterministic(t *testing.T) {
	g1 := New(42, 2000, 220)
	g2 := New(42, 2000, 220)

	s1 := g1.Sector(3, -1)
	s2 := g2.Sector(3, -1)

	require.Equal(t, s1.SX, s2.SX)
	require.Equal(t, s1.SY, s2.SY)
	assert.Equal(t, idList(s1), idList(s2), "sector content must be bit-identical across generators")
}

func TestSectorAddingObjectsIsStable(t *testing.T) {
	// Sanity: two different sectors don't collide on ids.
	g := New(42, 2000, 220)
	a := g.Sector(0, 0)
	b := g.Sector(1, 0)
	assert.NotEqual(t, idList(a), idList(b))
}

func TestOriginSectorNeverHasAStar(t *testing.T) {
	g := New(7, 2000, 220)
	s := g.Sector(0, 0)
	assert.Nil(t, s.Star, "origin sector must stay clear for deep-space spawn")
}

func TestDifferentSeedsDiverge(t *testing.T) {
	g1 := New(1, 2000, 220)
	g2 := New(2, 2000, 220)
	s1 := g1.Sector(5, 5)
	s2 := g2.Sector(5, 5)
	assert.NotEqual(t, idList(s1), idList(s2))
}

func TestParseObjectIDRoundTrips(t *testing.T) {
	g := New(42, 2000, 220)
	sec := g.Sector(-3, 7)
	require.NotEmpty(t, sec.Asteroids, "need at least one asteroid to round-trip")

	id := sec.Asteroids[0].ID
	sx, sy, kind, index, ok := ParseObjectID(id)
	require.True(t, ok)
	require.Equal(t, -3, sx)
	require.Equal(t, 7, sy)
	require.Equal(t, KindAsteroid, kind)

	got, found := g.FindAsteroid(sx, sy, index)
	require.True(t, found)
	require.Equal(t, id, got.ID)
}

func TestParseObjectIDRejectsGarbage(t *testing.T) {
	_, _, _, _, ok := ParseObjectID("not-an-object-id")
	require.False(t, ok)
}

func idList(s Sector) []string {
	var ids []string
	if s.Star != nil {
		ids = append(ids, s.Star.ID)
	}
	for _, p := range s.Planets {
		ids = append(ids, p.ID)
	}
	for _, a := range s.Asteroids {
		ids = append(ids, a.ID)
	}
	if s.Wormhole != nil {
		ids = append(ids, s.Wormhole.ID)
	}
	if s.Station != nil {
		ids = append(ids, s.Station.ID)
	}
	return ids
}
