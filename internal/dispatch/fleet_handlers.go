/*
File: internal/dispatch/fleet_handlers.go
Description:
    fleet:create/invite/accept/decline/kick/leave/chat/getData (spec.md
    §4.5). internal/fleet pushes fleet:data to every affected member
    itself; these handlers only need to echo the result back to the
    caller for the synchronous operations (create, accept, getData).
*/
package dispatch

import (
	"github.com/voidreach/starforge/internal/apperr"
	"github.com/voidreach/starforge/internal/protocol"
	"github.com/voidreach/starforge/internal/transport"
	"github.com/voidreach/starforge/internal/validate"
)

func (r *Router) handleFleetCreate(c *transport.Conn, data []byte) {
	var payload validate.FleetCreate
	if err := decode(data, &payload); err != nil {
		c.EmitError(protocol.EventFleetError, apperr.ClientMessage(err))
		return
	}
	if err := r.val.Struct(payload); err != nil {
		c.EmitError(protocol.EventFleetError, apperr.ClientMessage(err))
		return
	}
	fleetData, err := r.fleet.Create(c.UserID(), payload.Name)
	if err != nil {
		c.EmitError(protocol.EventFleetError, apperr.ClientMessage(err))
		return
	}
	c.Emit(protocol.EventFleetData, fleetData)
}

func (r *Router) handleFleetInvite(c *transport.Conn, data []byte) {
	var payload validate.FleetInvite
	if err := decode(data, &payload); err != nil {
		c.EmitError(protocol.EventFleetError, apperr.ClientMessage(err))
		return
	}
	if err := r.val.Struct(payload); err != nil {
		c.EmitError(protocol.EventFleetError, apperr.ClientMessage(err))
		return
	}
	if err := r.fleet.Invite(c.UserID(), payload.Username); err != nil {
		c.EmitError(protocol.EventFleetError, apperr.ClientMessage(err))
		return
	}
}

func (r *Router) handleFleetAccept(c *transport.Conn) {
	fleetData, err := r.fleet.Accept(c.UserID())
	if err != nil {
		c.EmitError(protocol.EventFleetError, apperr.ClientMessage(err))
		return
	}
	c.Emit(protocol.EventFleetData, fleetData)
}

func (r *Router) handleFleetDecline(c *transport.Conn) {
	if err := r.fleet.Decline(c.UserID()); err != nil {
		c.EmitError(protocol.EventFleetError, apperr.ClientMessage(err))
		return
	}
}

func (r *Router) handleFleetKick(c *transport.Conn, data []byte) {
	var payload validate.FleetKick
	if err := decode(data, &payload); err != nil {
		c.EmitError(protocol.EventFleetError, apperr.ClientMessage(err))
		return
	}
	if err := r.val.Struct(payload); err != nil {
		c.EmitError(protocol.EventFleetError, apperr.ClientMessage(err))
		return
	}
	if err := r.fleet.Kick(c.UserID(), payload.TargetUserID); err != nil {
		c.EmitError(protocol.EventFleetError, apperr.ClientMessage(err))
		return
	}
}

func (r *Router) handleFleetLeave(c *transport.Conn) {
	if err := r.fleet.Leave(c.UserID()); err != nil {
		c.EmitError(protocol.EventFleetError, apperr.ClientMessage(err))
		return
	}
}

func (r *Router) handleFleetChat(c *transport.Conn, data []byte) {
	var payload validate.ChatSend
	if err := decode(data, &payload); err != nil {
		c.EmitError(protocol.EventFleetError, apperr.ClientMessage(err))
		return
	}
	if err := r.val.Struct(payload); err != nil {
		c.EmitError(protocol.EventFleetError, apperr.ClientMessage(err))
		return
	}
	if err := r.fleet.Chat(c.UserID(), payload.Message); err != nil {
		c.EmitError(protocol.EventFleetError, apperr.ClientMessage(err))
		return
	}
}

func (r *Router) handleFleetGetData(c *transport.Conn) {
	fleetData, err := r.fleet.GetData(c.UserID())
	if err != nil {
		c.EmitError(protocol.EventFleetError, apperr.ClientMessage(err))
		return
	}
	c.Emit(protocol.EventFleetData, fleetData)
}
