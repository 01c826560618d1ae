package loot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/voidreach/starforge/internal/balance"
	"github.com/voidreach/starforge/internal/config"
	"github.com/voidreach/starforge/internal/sim"
	"github.com/voidreach/starforge/internal/spatial"
	"github.com/voidreach/starforge/internal/store"
	"github.com/voidreach/starforge/internal/worldgen"
)

type nullSender struct{}

func (nullSender) EmitTo(userID uint64, event string, payload any) {}

func newTestManager(t *testing.T) (*Manager, *sim.Engine, *store.Store, uint64) {
	t.Helper()
	cfg := &config.Config{
		SectorSize: 2000, BaseRadarRange: 600, BaseSpeed: 180,
		StarSizeMax: 220, TickMs: 50, PersistMs: 5000,
	}
	bal, err := balance.NewStore("../../config/balance.yaml")
	require.NoError(t, err)
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	gen := worldgen.New(1, cfg.SectorSize, cfg.StarSizeMax)
	engine := sim.NewEngine(cfg, bal, st, gen)
	engine.SetSender(nullSender{})

	u, err := st.CreateUser("looter", "hash")
	require.NoError(t, err)
	_, err = st.CreateShip(u.ID, store.NewShipParams{HullMax: 100, ShieldMax: 50, WeaponType: "BLASTER"})
	require.NoError(t, err)

	p := &sim.Player{
		UserID: u.ID, HullCurrent: 100, HullMax: 100, ShieldCurrent: 50, ShieldMax: 50,
		WeaponType: "BLASTER", EngineTier: 1,
	}
	engine.Join(p)

	return NewManager(engine, st), engine, st, u.ID
}

// spawnWreckageNear spawns a zero-hull NPC at (x, y) and drives two
// ticks so the AI death path spawns a wreckage there, returning its id.
func spawnWreckageNear(t *testing.T, engine *sim.Engine, x, y float64) string {
	t.Helper()
	engine.SpawnNPC("dead-npc", "pirate", x, y, 40, 20)
	engine.WithLock(func() {
		n, ok := engine.NPC("dead-npc")
		require.True(t, ok)
		n.HullCurrent = 0
	})
	engine.Tick()
	engine.Tick()

	var id string
	engine.WithLock(func() {
		hit, ok := engine.Grid().Nearest(spatial.Point{X: x, Y: y}, spatial.KindWreckage, 5)
		if ok {
			id = hit.ID
		}
	})
	return id
}

func TestStartRejectsWhenTooFar(t *testing.T) {
	mgr, engine, _, userID := newTestManager(t)
	wreckageID := spawnWreckageNear(t, engine, 5000, 5000)
	require.NotEmpty(t, wreckageID)

	_, err := mgr.Start(userID, wreckageID)
	require.Error(t, err)
}

func TestStartAndCompleteCreditsLootAndRemovesWreckage(t *testing.T) {
	mgr, engine, st, userID := newTestManager(t)
	wreckageID := spawnWreckageNear(t, engine, 0, 0)
	require.NotEmpty(t, wreckageID)

	sess, err := mgr.Start(userID, wreckageID)
	require.NoError(t, err)
	require.Equal(t, wreckageID, sess.WreckageID)

	time.Sleep(CollectDuration + 20*time.Millisecond)

	var stillThere bool
	engine.WithLock(func() {
		_, stillThere = engine.Wreckage(wreckageID)
	})
	require.False(t, stillThere)

	ship, err := st.GetShip(userID)
	require.NoError(t, err)
	require.Greater(t, ship.Credits, int64(0))
}

func TestStartRejectsDuplicateSession(t *testing.T) {
	mgr, engine, _, userID := newTestManager(t)
	wreckageID := spawnWreckageNear(t, engine, 0, 0)
	require.NotEmpty(t, wreckageID)

	_, err := mgr.Start(userID, wreckageID)
	require.NoError(t, err)

	_, err = mgr.Start(userID, wreckageID)
	require.Error(t, err)

	mgr.Cancel(userID)
}

func TestCancelIsIdempotent(t *testing.T) {
	_, engine, st, userID := newTestManager(t)
	mgr := NewManager(engine, st)
	mgr.Cancel(userID)
	mgr.Cancel(userID)
}
