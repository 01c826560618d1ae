/*
File: internal/dispatch/market_handlers.go
Description:
    market:list/buy/cancel/getListings/getMyListings (spec.md §4.3's
    marketplace). internal/market already handles the broadcast side
    effect; these handlers only decode, validate, gather the caller's
    cargo numbers Buy needs, and reply on error or with the requested
    listing set.
*/
package dispatch

import (
	"github.com/voidreach/starforge/internal/apperr"
	"github.com/voidreach/starforge/internal/protocol"
	"github.com/voidreach/starforge/internal/transport"
	"github.com/voidreach/starforge/internal/validate"
)

func (r *Router) handleMarketList(c *transport.Conn, data []byte) {
	var payload validate.MarketList
	if err := decode(data, &payload); err != nil {
		c.EmitError(protocol.EventMarketError, apperr.ClientMessage(err))
		return
	}
	if err := r.val.Struct(payload); err != nil {
		c.EmitError(protocol.EventMarketError, apperr.ClientMessage(err))
		return
	}
	if _, err := r.market.List(c.UserID(), c.Username(), payload.ResourceType, payload.Quantity, payload.PricePerUnit); err != nil {
		c.EmitError(protocol.EventMarketError, apperr.ClientMessage(err))
		return
	}
}

func (r *Router) handleMarketBuy(c *transport.Conn, data []byte) {
	var payload validate.MarketBuy
	if err := decode(data, &payload); err != nil {
		c.EmitError(protocol.EventMarketError, apperr.ClientMessage(err))
		return
	}
	if err := r.val.Struct(payload); err != nil {
		c.EmitError(protocol.EventMarketError, apperr.ClientMessage(err))
		return
	}

	cargoMax, cargoCurrent, err := r.cargoRoom(c.UserID())
	if err != nil {
		c.EmitError(protocol.EventMarketError, apperr.ClientMessage(err))
		return
	}
	if _, err := r.market.Buy(c.UserID(), payload.ListingID, payload.Quantity, cargoMax, cargoCurrent); err != nil {
		c.EmitError(protocol.EventMarketError, apperr.ClientMessage(err))
		return
	}
}

func (r *Router) handleMarketCancel(c *transport.Conn, data []byte) {
	var payload validate.MarketCancel
	if err := decode(data, &payload); err != nil {
		c.EmitError(protocol.EventMarketError, apperr.ClientMessage(err))
		return
	}
	if err := r.val.Struct(payload); err != nil {
		c.EmitError(protocol.EventMarketError, apperr.ClientMessage(err))
		return
	}
	if _, err := r.market.Cancel(c.UserID(), payload.ListingID); err != nil {
		c.EmitError(protocol.EventMarketError, apperr.ClientMessage(err))
		return
	}
}

func (r *Router) handleMarketGetListings(c *transport.Conn) {
	listings, err := r.market.GetListings()
	if err != nil {
		c.EmitError(protocol.EventMarketError, apperr.ClientMessage(err))
		return
	}
	c.Emit(protocol.EventMarketListings, map[string]any{"listings": listings})
}

func (r *Router) handleMarketGetMine(c *transport.Conn) {
	listings, err := r.market.GetMyListings(c.UserID())
	if err != nil {
		c.EmitError(protocol.EventMarketError, apperr.ClientMessage(err))
		return
	}
	c.Emit(protocol.EventMarketListings, map[string]any{"listings": listings})
}

// cargoRoom reads a connected player's cargo tier from the live sim
// mirror and turns it into the (max, current) pair market:buy's cargo
// check needs.
func (r *Router) cargoRoom(userID uint64) (cargoMax, cargoCurrent int64, err error) {
	var cargoTier int
	r.engine.WithLock(func() {
		if p, ok := r.engine.Player(userID); ok {
			cargoTier = p.CargoTier
		}
	})
	cargoCurrent, err = r.st.InventoryTotal(userID)
	if err != nil {
		return 0, 0, apperr.Persistence("failed to check cargo", err)
	}
	table := r.engine.Balance().Get()
	return int64(table.CargoMax(cargoTier)), cargoCurrent, nil
}
