package wormhole

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/voidreach/starforge/internal/balance"
	"github.com/voidreach/starforge/internal/config"
	"github.com/voidreach/starforge/internal/sim"
	"github.com/voidreach/starforge/internal/store"
	"github.com/voidreach/starforge/internal/worldgen"
)

type nullSender struct{}

func (nullSender) EmitTo(userID uint64, event string, payload any) {}

func newTestManager(t *testing.T) (*Manager, *sim.Engine, *store.Store, uint64, string) {
	t.Helper()
	cfg := &config.Config{
		SectorSize: 2000, BaseRadarRange: 600, BaseSpeed: 180,
		StarSizeMax: 220, TickMs: 50, PersistMs: 5000,
		WormholeRange: 200, SelectionTimeout: 30 * time.Millisecond,
		TransitDuration: 20 * time.Millisecond, ExitOffset: 120,
		RespawnInvulnerability: 3 * time.Second,
	}
	bal, err := balance.NewStore("../../config/balance.yaml")
	require.NoError(t, err)
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	gen := worldgen.New(1, cfg.SectorSize, cfg.StarSizeMax)
	engine := sim.NewEngine(cfg, bal, st, gen)
	engine.SetSender(nullSender{})

	u, err := st.CreateUser("voyager", "hash")
	require.NoError(t, err)
	_, err = st.CreateShip(u.ID, store.NewShipParams{HullMax: 100, ShieldMax: 50, WeaponType: "BLASTER"})
	require.NoError(t, err)
	require.NoError(t, st.GrantRelic(u.ID, "WORMHOLE_GEM"))

	var entryID string
	var entryX, entryY float64
	for sy := -15; sy <= 15 && entryID == ""; sy++ {
		for sx := -15; sx <= 15; sx++ {
			if wh, ok := gen.FindWormhole(sx, sy); ok {
				entryID, entryX, entryY = wh.ID, wh.X, wh.Y
				break
			}
		}
	}
	require.NotEmpty(t, entryID, "need a discoverable wormhole for tests")

	p := &sim.Player{
		UserID: u.ID, HullCurrent: 100, HullMax: 100, ShieldCurrent: 50, ShieldMax: 50,
		WeaponType: "BLASTER", EngineTier: 1, X: entryX, Y: entryY,
	}
	engine.Join(p)

	mgr := NewManager(engine, st, gen, cfg)
	return mgr, engine, st, u.ID, entryID
}

func TestEnterRequiresRelic(t *testing.T) {
	mgr, engine, st, _, entryID := newTestManager(t)

	// A player with no WORMHOLE_GEM must be rejected regardless of
	// position, since the relic check runs before the distance check.
	u, err := st.CreateUser("no-gem", "hash")
	require.NoError(t, err)
	_, err = st.CreateShip(u.ID, store.NewShipParams{HullMax: 100, ShieldMax: 50, WeaponType: "BLASTER"})
	require.NoError(t, err)
	engine.Join(&sim.Player{UserID: u.ID, HullCurrent: 100, HullMax: 100, ShieldCurrent: 50, ShieldMax: 50, WeaponType: "BLASTER", EngineTier: 1})

	_, err = mgr.Enter(u.ID, entryID)
	require.Error(t, err)
}

func TestEnterReturnsDestinationsExcludingEntry(t *testing.T) {
	mgr, _, _, userID, entryID := newTestManager(t)

	destinations, err := mgr.Enter(userID, entryID)
	require.NoError(t, err)
	require.NotEmpty(t, destinations)
	for _, d := range destinations {
		require.NotEqual(t, entryID, d.ID)
	}
}

func TestFullTransitFlowExitsNearDestination(t *testing.T) {
	mgr, engine, _, userID, entryID := newTestManager(t)

	destinations, err := mgr.Enter(userID, entryID)
	require.NoError(t, err)
	require.NotEmpty(t, destinations)
	dest := destinations[0]

	require.NoError(t, mgr.SelectDestination(userID, dest.ID))

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mgr.Tick(time.Now())
		if _, active := mgr.GetProgress(userID); !active {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	var px, py float64
	var life sim.LifeState
	engine.WithLock(func() {
		p, ok := engine.Player(userID)
		require.True(t, ok)
		px, py = p.X, p.Y
		life = p.Life
	})
	require.Equal(t, sim.LifeInvulnerable, life)

	dx, dy := px-dest.X, py-dest.Y
	dist := dx*dx + dy*dy
	// exit distance is ExitOffset + destination wormhole size, and size
	// is generated in [25, 40); a generous upper bound avoids coupling
	// this test to that exact range.
	maxDist := 250.0
	require.LessOrEqual(t, dist, maxDist*maxDist)
}

func TestSelectDestinationRejectsUnlistedID(t *testing.T) {
	mgr, _, _, userID, entryID := newTestManager(t)
	_, err := mgr.Enter(userID, entryID)
	require.NoError(t, err)

	err = mgr.SelectDestination(userID, "not-a-real-destination")
	require.Error(t, err)
}

func TestCancelOnlyValidDuringSelecting(t *testing.T) {
	mgr, _, _, userID, entryID := newTestManager(t)
	destinations, err := mgr.Enter(userID, entryID)
	require.NoError(t, err)

	require.NoError(t, mgr.SelectDestination(userID, destinations[0].ID))
	require.Error(t, mgr.Cancel(userID))
}

func TestSelectionTimeoutAutoCancels(t *testing.T) {
	mgr, _, _, userID, entryID := newTestManager(t)
	_, err := mgr.Enter(userID, entryID)
	require.NoError(t, err)

	time.Sleep(40 * time.Millisecond)
	mgr.Tick(time.Now())

	_, active := mgr.GetProgress(userID)
	require.False(t, active)
}
