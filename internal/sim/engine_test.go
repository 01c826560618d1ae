package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/voidreach/starforge/internal/balance"
	"github.com/voidreach/starforge/internal/config"
	"github.com/voidreach/starforge/internal/store"
	"github.com/voidreach/starforge/internal/worldgen"
)

type nullSender struct{ sent []string }

func (s *nullSender) EmitTo(userID uint64, event string, payload any) {
	s.sent = append(s.sent, event)
}

func newTestEngine(t *testing.T) (*Engine, *store.Store) {
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
	return NewEngine(cfg, bal, st, gen), st
}

func TestJoinInsertsIntoGridAndLeaveRemoves(t *testing.T) {
	e, st := newTestEngine(t)
	u, err := st.CreateUser("pilot", "hash")
	require.NoError(t, err)
	_, err = st.CreateShip(u.ID, store.NewShipParams{HullMax: 100, ShieldMax: 50, WeaponType: "BLASTER"})
	require.NoError(t, err)

	p := &Player{UserID: u.ID, HullCurrent: 100, HullMax: 100, ShieldCurrent: 50, ShieldMax: 50, WeaponType: "BLASTER", EngineTier: 1}
	e.Join(p)
	require.Equal(t, 1, e.Grid().Len())

	e.Leave(u.ID)
	require.Equal(t, 0, e.Grid().Len())

	got, err := st.GetShip(u.ID)
	require.NoError(t, err)
	require.Equal(t, p.X, got.PosX)
}

func TestTickOnceIntegratesMovement(t *testing.T) {
	e, st := newTestEngine(t)
	u, _ := st.CreateUser("mover", "hash")
	st.CreateShip(u.ID, store.NewShipParams{HullMax: 100, ShieldMax: 50, WeaponType: "BLASTER"})

	p := &Player{UserID: u.ID, HullCurrent: 100, HullMax: 100, ShieldCurrent: 50, ShieldMax: 50, WeaponType: "BLASTER", EngineTier: 1}
	e.Join(p)
	e.Post(Intent{UserID: u.ID, Thrust: 1, Rotation: 0})

	dt := time.Duration(e.cfg.TickMs) * time.Millisecond
	e.tickOnce(dt)

	got, ok := e.Player(u.ID)
	require.True(t, ok)
	require.Greater(t, got.VX, 0.0)
	require.Greater(t, got.X, 0.0)
}

func TestTickOnceRunsManyTicksWithoutPanic(t *testing.T) {
	e, st := newTestEngine(t)
	u, _ := st.CreateUser("survivor", "hash")
	st.CreateShip(u.ID, store.NewShipParams{HullMax: 100, ShieldMax: 50, WeaponType: "BLASTER"})
	p := &Player{UserID: u.ID, HullCurrent: 100, HullMax: 100, ShieldCurrent: 50, ShieldMax: 50, WeaponType: "BLASTER", EngineTier: 1}
	e.Join(p)
	e.SpawnNPC("npc-1", "pirate", 300, 300, 40, 10)

	dt := time.Duration(e.cfg.TickMs) * time.Millisecond
	for i := 0; i < 50; i++ {
		e.Post(Intent{UserID: u.ID, Thrust: 1, Rotation: float64(i) * 0.01})
		e.tickOnce(dt)
	}

	_, ok := e.Player(u.ID)
	require.True(t, ok)
}
