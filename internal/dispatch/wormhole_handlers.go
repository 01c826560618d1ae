/*
File: internal/dispatch/wormhole_handlers.go
Description:
    wormhole:enter/selectDestination/cancel/getProgress/getNearestPosition
    (spec.md §4.8). enter replies with the offered destination list;
    selectDestination/cancel ack by echoing the same event name back
    (spec.md's example traces say only "ack", with no dedicated event
    name, so the request event doubles as its own acknowledgement).
*/
package dispatch

import (
	"github.com/voidreach/starforge/internal/apperr"
	"github.com/voidreach/starforge/internal/protocol"
	"github.com/voidreach/starforge/internal/transport"
	"github.com/voidreach/starforge/internal/validate"
)

func (r *Router) handleWormholeEnter(c *transport.Conn, data []byte) {
	var payload validate.WormholeEnter
	if err := decode(data, &payload); err != nil {
		c.EmitError(protocol.EventWormholeError, apperr.ClientMessage(err))
		return
	}
	if err := r.val.Struct(payload); err != nil {
		c.EmitError(protocol.EventWormholeError, apperr.ClientMessage(err))
		return
	}
	destinations, err := r.wormhole.Enter(c.UserID(), payload.WormholeID)
	if err != nil {
		c.EmitError(protocol.EventWormholeError, apperr.ClientMessage(err))
		return
	}
	c.Emit(protocol.EventWormholeDestinations, map[string]any{"destinations": destinations})
}

func (r *Router) handleWormholeSelect(c *transport.Conn, data []byte) {
	var payload validate.WormholeSelectDestination
	if err := decode(data, &payload); err != nil {
		c.EmitError(protocol.EventWormholeError, apperr.ClientMessage(err))
		return
	}
	if err := r.val.Struct(payload); err != nil {
		c.EmitError(protocol.EventWormholeError, apperr.ClientMessage(err))
		return
	}
	if err := r.wormhole.SelectDestination(c.UserID(), payload.DestinationID); err != nil {
		c.EmitError(protocol.EventWormholeError, apperr.ClientMessage(err))
		return
	}
	c.Emit(protocol.EventWormholeSelectDestination, map[string]bool{"ok": true})
}

func (r *Router) handleWormholeCancel(c *transport.Conn) {
	if err := r.wormhole.Cancel(c.UserID()); err != nil {
		c.EmitError(protocol.EventWormholeError, apperr.ClientMessage(err))
		return
	}
	c.Emit(protocol.EventWormholeCancel, map[string]bool{"ok": true})
}

func (r *Router) handleWormholeGetProgress(c *transport.Conn) {
	tr, ok := r.wormhole.GetProgress(c.UserID())
	if !ok {
		c.Emit(protocol.EventWormholeProgress, map[string]any{"active": false})
		return
	}
	c.Emit(protocol.EventWormholeProgress, map[string]any{
		"active": true, "phase": tr.Phase, "destinationId": tr.DestinationID,
	})
}

func (r *Router) handleWormholeGetNearest(c *transport.Conn) {
	dest, ok := r.wormhole.GetNearestPosition(c.UserID())
	if !ok {
		c.Emit(protocol.EventWormholeGetNearest, map[string]any{"found": false})
		return
	}
	c.Emit(protocol.EventWormholeGetNearest, map[string]any{"found": true, "destination": dest})
}
