package market

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voidreach/starforge/internal/balance"
	"github.com/voidreach/starforge/internal/config"
	"github.com/voidreach/starforge/internal/sim"
	"github.com/voidreach/starforge/internal/store"
	"github.com/voidreach/starforge/internal/worldgen"
)

type recordingSender struct{ events []string }

func (r *recordingSender) EmitTo(userID uint64, event string, payload any) {
	r.events = append(r.events, event)
}

func newTestService(t *testing.T) (*Service, *store.Store, *recordingSender) {
	t.Helper()
	cfg := &config.Config{SectorSize: 2000, BaseRadarRange: 600, BaseSpeed: 180, StarSizeMax: 220, TickMs: 50, PersistMs: 5000}
	bal, err := balance.NewStore("../../config/balance.yaml")
	require.NoError(t, err)
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	gen := worldgen.New(1, cfg.SectorSize, cfg.StarSizeMax)
	engine := sim.NewEngine(cfg, bal, st, gen)
	sender := &recordingSender{}
	engine.SetSender(sender)

	return NewService(st, engine), st, sender
}

func TestListBuyCancelBroadcastUpdates(t *testing.T) {
	svc, st, sender := newTestService(t)

	seller, err := st.CreateUser("seller", "hash")
	require.NoError(t, err)
	buyer, err := st.CreateUser("buyer", "hash")
	require.NoError(t, err)
	_, err = st.CreateShip(seller.ID, store.NewShipParams{HullMax: 100, ShieldMax: 50})
	require.NoError(t, err)
	_, err = st.CreateShip(buyer.ID, store.NewShipParams{HullMax: 100, ShieldMax: 50})
	require.NoError(t, err)
	require.NoError(t, st.SetCredits(buyer.ID, 100))
	require.NoError(t, st.AddInventory(seller.ID, "IRON", 10))

	listing, err := svc.List(seller.ID, "seller", "IRON", 10, 2)
	require.NoError(t, err)
	require.NotEmpty(t, sender.events)

	before := len(sender.events)
	_, err = svc.Buy(buyer.ID, listing.ID, 5, 999, 0)
	require.NoError(t, err)
	require.Greater(t, len(sender.events), before)

	listings, err := svc.GetListings()
	require.NoError(t, err)
	require.Len(t, listings, 1)

	before = len(sender.events)
	_, err = svc.Cancel(seller.ID, listings[0].ID)
	require.NoError(t, err)
	require.Greater(t, len(sender.events), before)
}

func TestBuyTranslatesCargoFullError(t *testing.T) {
	svc, st, _ := newTestService(t)
	seller, _ := st.CreateUser("s", "hash")
	buyer, _ := st.CreateUser("b", "hash")
	st.CreateShip(seller.ID, store.NewShipParams{HullMax: 100, ShieldMax: 50})
	st.CreateShip(buyer.ID, store.NewShipParams{HullMax: 100, ShieldMax: 50})
	require.NoError(t, st.SetCredits(buyer.ID, 1000))
	require.NoError(t, st.AddInventory(seller.ID, "IRON", 10))

	listing, err := svc.List(seller.ID, "s", "IRON", 10, 1)
	require.NoError(t, err)

	_, err = svc.Buy(buyer.ID, listing.ID, 5, 2, 2)
	require.Error(t, err)
}
