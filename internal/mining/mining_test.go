package mining

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
		BaseMiningTime: 10 * time.Millisecond, BaseMiningYield: 4,
	}
	bal, err := balance.NewStore("../../config/balance.yaml")
	require.NoError(t, err)
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	gen := worldgen.New(1, cfg.SectorSize, cfg.StarSizeMax)
	engine := sim.NewEngine(cfg, bal, st, gen)
	engine.SetSender(nullSender{})

	u, err := st.CreateUser("miner", "hash")
	require.NoError(t, err)
	_, err = st.CreateShip(u.ID, store.NewShipParams{HullMax: 100, ShieldMax: 50, WeaponType: "BLASTER"})
	require.NoError(t, err)

	// Find a sector with at least one asteroid near the origin.
	var objectID string
	var targetSX, targetSY int
	for sy := -5; sy <= 5 && objectID == ""; sy++ {
		for sx := -5; sx <= 5; sx++ {
			sec := gen.Sector(sx, sy)
			if len(sec.Asteroids) > 0 {
				objectID = sec.Asteroids[0].ID
				targetSX, targetSY = sx, sy
				break
			}
		}
	}
	require.NotEmpty(t, objectID, "need a sector with an asteroid for tests")

	asteroid, found := gen.FindAsteroid(targetSX, targetSY, 0)
	require.True(t, found)
	sec := gen.Sector(targetSX, targetSY)
	var starX, starY float64
	if sec.Star != nil {
		starX, starY = sec.Star.X, sec.Star.Y
	}
	ax, ay := asteroid.PositionAt(starX, starY, 0)

	p := &sim.Player{
		UserID: u.ID, HullCurrent: 100, HullMax: 100, ShieldCurrent: 50, ShieldMax: 50,
		WeaponType: "BLASTER", EngineTier: 1, MiningTier: 1, CargoTier: 1,
		X: ax, Y: ay,
	}
	engine.Join(p)

	mgr := NewManager(engine, st, bal, gen, cfg)
	return mgr, engine, st, u.ID, objectID
}

func TestStartRejectsWhenTooFar(t *testing.T) {
	mgr, engine, st, userID, objectID := newTestManager(t)
	_ = st
	engine.WithLock(func() {
		p, _ := engine.Player(userID)
		p.X += MiningRange * 10
		p.Y += MiningRange * 10
	})

	_, err := mgr.Start(userID, objectID)
	require.Error(t, err)
}

func TestStartAndCompleteCreditsInventoryAndDepletesObject(t *testing.T) {
	mgr, _, st, userID, objectID := newTestManager(t)

	sess, err := mgr.Start(userID, objectID)
	require.NoError(t, err)
	require.Equal(t, objectID, sess.ObjectID)

	time.Sleep(sess.Duration + 20*time.Millisecond)

	total, err := st.InventoryTotal(userID)
	require.NoError(t, err)
	require.Greater(t, total, int64(0))

	depleted, err := st.IsDepleted(objectID)
	require.NoError(t, err)
	require.True(t, depleted)
}

func TestStartRejectsDuplicateSession(t *testing.T) {
	mgr, _, _, userID, objectID := newTestManager(t)

	_, err := mgr.Start(userID, objectID)
	require.NoError(t, err)

	_, err = mgr.Start(userID, objectID)
	require.Error(t, err)

	mgr.Cancel(userID)
}

func TestStartRejectsAlreadyDepletedObject(t *testing.T) {
	mgr, _, st, userID, objectID := newTestManager(t)
	require.NoError(t, st.MarkDepleted(objectID))

	_, err := mgr.Start(userID, objectID)
	require.Error(t, err)
}

func TestCancelIsIdempotent(t *testing.T) {
	mgr, _, _, userID, _ := newTestManager(t)
	mgr.Cancel(userID)
	mgr.Cancel(userID)
}
