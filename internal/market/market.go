/*
Package market
File: internal/market/market.go
Description:
    Component C7's marketplace half: a thin wrapper over the already
    transactional internal/store listing operations (spec.md §4.5: "thin
    wrappers over 4.3"), adding the market:update broadcast trigger every
    mutation needs. Grounded on the teacher's economy.go heartbeat, which
    also separated "mutate the shared market state" from "tell everyone
    it changed" — here the latter runs through sim.Engine.BroadcastAll
    since a marketplace listing isn't scoped to any one position.
*/
package market

import (
	"errors"

	"github.com/voidreach/starforge/internal/apperr"
	"github.com/voidreach/starforge/internal/protocol"
	"github.com/voidreach/starforge/internal/sim"
	"github.com/voidreach/starforge/internal/store"
)

// translateErr maps store sentinel errors onto the stable client-facing
// taxonomy spec.md §7 expects (e.g. "Listing not found").
func translateErr(err error) error {
	switch {
	case errors.Is(err, store.ErrListingGone):
		return apperr.Validation("Listing not found")
	case errors.Is(err, store.ErrCargoFull):
		return apperr.State("cargo hold full")
	case errors.Is(err, store.ErrInsufficientCredits):
		return apperr.State("insufficient credits")
	case errors.Is(err, store.ErrInsufficientResources):
		return apperr.State("insufficient resources")
	case errors.Is(err, store.ErrNotFound):
		return apperr.Validation("not found")
	default:
		return apperr.Persistence("marketplace operation failed", err)
	}
}

// Service wraps internal/store's marketplace transactions with the
// broadcast side effect every mutation requires.
type Service struct {
	st     *store.Store
	engine *sim.Engine
}

// NewService wires a market Service bound to a live simulation engine.
func NewService(st *store.Store, engine *sim.Engine) *Service {
	return &Service{st: st, engine: engine}
}

// List creates a listing and announces it.
func (s *Service) List(sellerID uint64, sellerName, resourceType string, qty, pricePerUnit int64) (*store.MarketListing, error) {
	listing, err := s.st.ListItem(sellerID, sellerName, resourceType, qty, pricePerUnit)
	if err != nil {
		return nil, translateErr(err)
	}
	s.broadcastUpdate()
	return listing, nil
}

// Buy purchases up to qty units of a listing and announces the result.
func (s *Service) Buy(buyerID, listingID uint64, qty int64, cargoMax, cargoCurrent int64) (*store.BuyResult, error) {
	res, err := s.st.BuyItem(buyerID, listingID, qty, cargoMax, cargoCurrent)
	if err != nil {
		return nil, translateErr(err)
	}
	s.broadcastUpdate()
	return res, nil
}

// Cancel withdraws a listing and returns the unsold quantity to the
// seller's inventory, then announces the result.
func (s *Service) Cancel(sellerID, listingID uint64) (*store.MarketListing, error) {
	listing, err := s.st.CancelListing(sellerID, listingID)
	if err != nil {
		return nil, translateErr(err)
	}
	s.broadcastUpdate()
	return listing, nil
}

// GetListings returns every active listing.
func (s *Service) GetListings() ([]store.MarketListing, error) {
	return s.st.GetListings()
}

// GetMyListings returns a seller's own active listings.
func (s *Service) GetMyListings(sellerID uint64) ([]store.MarketListing, error) {
	return s.st.GetMyListings(sellerID)
}

func (s *Service) broadcastUpdate() {
	listings, err := s.st.GetListings()
	if err != nil {
		return
	}
	s.engine.BroadcastAll(protocol.EventMarketUpdate, map[string]any{"listings": listings})
}
