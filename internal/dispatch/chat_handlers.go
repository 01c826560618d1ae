/*
File: internal/dispatch/chat_handlers.go
Description:
    chat:send (spec.md §4.5: "per-sender rate limit; broadcast to
    interest set"). Reuses auth.IPLimiter's token bucket keyed by user
    id instead of IP, and internal/sim's radar-interest broadcast rather
    than a server-wide one, consistent with how player:state already
    scopes visibility.
*/
package dispatch

import (
	"strconv"

	"github.com/voidreach/starforge/internal/apperr"
	"github.com/voidreach/starforge/internal/protocol"
	"github.com/voidreach/starforge/internal/transport"
	"github.com/voidreach/starforge/internal/validate"
)

func (r *Router) handleChatSend(c *transport.Conn, data []byte) {
	userID := c.UserID()
	if !r.chatLimiter.Allow(strconv.FormatUint(userID, 10)) {
		c.EmitError(protocol.EventChatMessage, "sending messages too quickly")
		return
	}

	var payload validate.ChatSend
	if err := decode(data, &payload); err != nil {
		c.EmitError(protocol.EventChatMessage, apperr.ClientMessage(err))
		return
	}
	if err := r.val.Struct(payload); err != nil {
		c.EmitError(protocol.EventChatMessage, apperr.ClientMessage(err))
		return
	}

	var x, y float64
	r.engine.WithLock(func() {
		if p, ok := r.engine.Player(userID); ok {
			x, y = p.X, p.Y
		}
	})

	r.engine.BroadcastNear(x, y, userID, protocol.EventChatMessage, map[string]any{
		"userId": userID, "username": c.Username(), "message": payload.Message,
	})
}
