/*
File: internal/dispatch/resource_handlers.go
Description:
    mining:start / loot:collect (spec.md §4.7). mining:cancel/loot has no
    dedicated cancel event for loot in spec.md's command list, so a
    disconnect is the only way an in-progress collection ends early; a
    loot:collect sent while one is already running is rejected.
*/
package dispatch

import (
	"github.com/voidreach/starforge/internal/apperr"
	"github.com/voidreach/starforge/internal/protocol"
	"github.com/voidreach/starforge/internal/transport"
	"github.com/voidreach/starforge/internal/validate"
)

func (r *Router) handleMiningStart(c *transport.Conn, data []byte) {
	var payload validate.MiningStart
	if err := decode(data, &payload); err != nil {
		c.EmitError(protocol.EventMiningError, apperr.ClientMessage(err))
		return
	}
	if err := r.val.Struct(payload); err != nil {
		c.EmitError(protocol.EventMiningError, apperr.ClientMessage(err))
		return
	}
	sess, err := r.mining.Start(c.UserID(), payload.ObjectID)
	if err != nil {
		c.EmitError(protocol.EventMiningError, apperr.ClientMessage(err))
		return
	}
	c.Emit(protocol.EventMiningStarted, map[string]any{
		"objectId": sess.ObjectID, "durationMs": sess.Duration.Milliseconds(),
	})
}

func (r *Router) handleLootCollect(c *transport.Conn, data []byte) {
	var payload validate.LootCollect
	if err := decode(data, &payload); err != nil {
		c.EmitError(protocol.EventLootError, apperr.ClientMessage(err))
		return
	}
	if err := r.val.Struct(payload); err != nil {
		c.EmitError(protocol.EventLootError, apperr.ClientMessage(err))
		return
	}
	if _, err := r.loot.Start(c.UserID(), payload.WreckageID); err != nil {
		c.EmitError(protocol.EventLootError, apperr.ClientMessage(err))
		return
	}
}
