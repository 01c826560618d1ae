package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	return s
}

func TestMarketplaceAtomicBuy(t *testing.T) {
	s := newTestStore(t)

	seller, err := s.CreateUser("seller", "hash")
	require.NoError(t, err)
	buyer, err := s.CreateUser("buyer", "hash")
	require.NoError(t, err)

	_, err = s.CreateShip(seller.ID, NewShipParams{HullMax: 100, ShieldMax: 50})
	require.NoError(t, err)
	_, err = s.CreateShip(buyer.ID, NewShipParams{HullMax: 100, ShieldMax: 50})
	require.NoError(t, err)
	require.NoError(t, s.SetCredits(buyer.ID, 15))

	require.NoError(t, s.AddInventory(seller.ID, "IRON", 10))
	listing, err := s.ListItem(seller.ID, "seller", "IRON", 10, 3)
	require.NoError(t, err)

	res, err := s.BuyItem(buyer.ID, listing.ID, 5, 999, 0)
	require.NoError(t, err)
	require.Equal(t, int64(5), res.PurchasedQty)
	require.Equal(t, int64(15), res.TotalCost)
	require.False(t, res.ListingDeleted)

	buyerShip, err := s.GetShip(buyer.ID)
	require.NoError(t, err)
	require.Equal(t, int64(0), buyerShip.Credits)

	sellerShip, err := s.GetShip(seller.ID)
	require.NoError(t, err)
	require.Equal(t, int64(15), sellerShip.Credits)

	listings, err := s.GetListings()
	require.NoError(t, err)
	require.Len(t, listings, 1)
	require.Equal(t, int64(5), listings[0].Quantity)

	// Second buy of 5 more should fail: buyer has 0 credits now.
	_, err = s.BuyItem(buyer.ID, listing.ID, 5, 999, 0)
	require.ErrorIs(t, err, ErrInsufficientCredits)
}

func TestCancelListingReturnsExactQuantity(t *testing.T) {
	s := newTestStore(t)
	seller, err := s.CreateUser("seller2", "hash")
	require.NoError(t, err)
	_, err = s.CreateShip(seller.ID, NewShipParams{HullMax: 100, ShieldMax: 50})
	require.NoError(t, err)
	require.NoError(t, s.AddInventory(seller.ID, "IRON", 10))

	listing, err := s.ListItem(seller.ID, "seller2", "IRON", 10, 1)
	require.NoError(t, err)

	_, err = s.CancelListing(seller.ID, listing.ID)
	require.NoError(t, err)

	total, err := s.InventoryTotal(seller.ID)
	require.NoError(t, err)
	require.Equal(t, int64(10), total)
}

func TestBuyItemExactCreditsLeavesZero(t *testing.T) {
	s := newTestStore(t)
	seller, _ := s.CreateUser("s3", "hash")
	buyer, _ := s.CreateUser("b3", "hash")
	s.CreateShip(seller.ID, NewShipParams{HullMax: 100, ShieldMax: 50})
	s.CreateShip(buyer.ID, NewShipParams{HullMax: 100, ShieldMax: 50})
	require.NoError(t, s.SetCredits(buyer.ID, 30))
	require.NoError(t, s.AddInventory(seller.ID, "IRON", 10))

	listing, err := s.ListItem(seller.ID, "s3", "IRON", 10, 3)
	require.NoError(t, err)

	res, err := s.BuyItem(buyer.ID, listing.ID, 10, 999, 0)
	require.NoError(t, err)
	require.True(t, res.ListingDeleted)

	buyerShip, _ := s.GetShip(buyer.ID)
	require.Equal(t, int64(0), buyerShip.Credits)
}

func TestUpgradeAtomic(t *testing.T) {
	s := newTestStore(t)
	u, _ := s.CreateUser("u1", "hash")
	s.CreateShip(u.ID, NewShipParams{HullMax: 100, ShieldMax: 50})
	require.NoError(t, s.SetCredits(u.ID, 1000))
	require.NoError(t, s.AddInventory(u.ID, "IRON", 20))

	res, err := s.Upgrade(u.ID, "engine", 800, map[string]int{"IRON": 20}, "engine_tier")
	require.NoError(t, err)
	require.Equal(t, 2, res.Ship.EngineTier)
	require.Equal(t, int64(200), res.Ship.Credits)

	total, err := s.InventoryTotal(u.ID)
	require.NoError(t, err)
	require.Equal(t, int64(0), total)
}

func TestFleetJoinCapacity(t *testing.T) {
	s := newTestStore(t)
	leader, _ := s.CreateUser("lead", "hash")
	fleet, err := s.CreateFleet("Voidrunners", leader.ID)
	require.NoError(t, err)

	for i := 0; i < MaxFleetMembers-1; i++ {
		member, _ := s.CreateUser(string(rune('a'+i))+"mem", "hash")
		require.NoError(t, s.JoinFleet(fleet.ID, member.ID))
	}

	overflow, _ := s.CreateUser("overflow", "hash")
	err = s.JoinFleet(fleet.ID, overflow.ID)
	require.ErrorIs(t, err, ErrFleetFull)
}

func TestCompleteMiningCreditsAndDepletesAtomically(t *testing.T) {
	s := newTestStore(t)
	u, _ := s.CreateUser("miner", "hash")

	depleted, err := s.IsDepleted("sector_0_0_asteroid_1")
	require.NoError(t, err)
	require.False(t, depleted)

	require.NoError(t, s.CompleteMining(u.ID, "IRON", 5, "sector_0_0_asteroid_1"))

	total, err := s.InventoryTotal(u.ID)
	require.NoError(t, err)
	require.Equal(t, int64(5), total)

	depleted, err = s.IsDepleted("sector_0_0_asteroid_1")
	require.NoError(t, err)
	require.True(t, depleted)

	// Calling again (e.g. a racing retry) must not error.
	require.NoError(t, s.MarkDepleted("sector_0_0_asteroid_1"))
}
