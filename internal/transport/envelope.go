package transport

import (
	"encoding/json"

	"github.com/voidreach/starforge/internal/protocol"
)

func decodeEnvelope(raw []byte) (event string, data []byte, err error) {
	var env protocol.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", nil, err
	}
	return env.Event, env.Data, nil
}

// Emit encodes payload under event and enqueues it for delivery to c.
func (c *Conn) Emit(event string, payload any) {
	env, err := protocol.Encode(event, payload)
	if err != nil {
		c.hub.log.Errorf("encode %s: %v", event, err)
		return
	}
	raw, err := json.Marshal(env)
	if err != nil {
		c.hub.log.Errorf("marshal envelope %s: %v", event, err)
		return
	}
	c.Send(raw)
}

// EmitError sends a {event}:error {message} envelope to this connection
// only (spec.md §7: validation/state errors never broadcast).
func (c *Conn) EmitError(event, message string) {
	c.Emit(event, protocol.ErrorPayload{Message: message})
}
