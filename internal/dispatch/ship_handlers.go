/*
File: internal/dispatch/ship_handlers.go
Description:
    ship:upgrade / ship:setProfile / ship:setColor (spec.md §4.3), thin
    decode-validate-call wrappers over internal/shipsvc; the ship:update
    broadcast itself is shipsvc's job.
*/
package dispatch

import (
	"github.com/voidreach/starforge/internal/apperr"
	"github.com/voidreach/starforge/internal/protocol"
	"github.com/voidreach/starforge/internal/transport"
	"github.com/voidreach/starforge/internal/validate"
)

func (r *Router) handleShipUpgrade(c *transport.Conn, data []byte) {
	var payload validate.ShipUpgrade
	if err := decode(data, &payload); err != nil {
		c.EmitError(protocol.EventShipError, apperr.ClientMessage(err))
		return
	}
	if err := r.val.Struct(payload); err != nil {
		c.EmitError(protocol.EventShipError, apperr.ClientMessage(err))
		return
	}
	if _, err := r.ships.Upgrade(c.UserID(), payload.Component); err != nil {
		c.EmitError(protocol.EventShipError, apperr.ClientMessage(err))
		return
	}
}

func (r *Router) handleShipSetProfile(c *transport.Conn, data []byte) {
	var payload validate.ShipSetProfile
	if err := decode(data, &payload); err != nil {
		c.EmitError(protocol.EventShipError, apperr.ClientMessage(err))
		return
	}
	if err := r.val.Struct(payload); err != nil {
		c.EmitError(protocol.EventShipError, apperr.ClientMessage(err))
		return
	}
	if err := r.ships.SetCosmetic(c.UserID(), nil, &payload.ProfileID); err != nil {
		c.EmitError(protocol.EventShipError, apperr.ClientMessage(err))
		return
	}
}

func (r *Router) handleShipSetColor(c *transport.Conn, data []byte) {
	var payload validate.ShipSetColor
	if err := decode(data, &payload); err != nil {
		c.EmitError(protocol.EventShipError, apperr.ClientMessage(err))
		return
	}
	if err := r.val.Struct(payload); err != nil {
		c.EmitError(protocol.EventShipError, apperr.ClientMessage(err))
		return
	}
	if err := r.ships.SetCosmetic(c.UserID(), &payload.ColorID, nil); err != nil {
		c.EmitError(protocol.EventShipError, apperr.ClientMessage(err))
		return
	}
}
