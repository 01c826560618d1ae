/*
Package protocol
File: internal/protocol/protocol.go
Description:
    The wire envelope and event name constants for spec.md §6's
    transport: a single long-lived bidirectional JSON stream per client,
    `{event, data}` both ways. Centralizing event names here is how
    internal/transport's dispatch table and any future client stub stay
    in lockstep (see internal/audit's pair-audit check).
*/
package protocol

import "encoding/json"

// Envelope is the one message shape used in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Event name constants, namespaced per spec.md §6.
const (
	EventPing = "ping"
	EventPong = "pong"

	EventAuthRegister = "auth:register"
	EventAuthLogin    = "auth:login"
	EventAuthValidate = "auth:validate"
	EventAuthSuccess  = "auth:success"
	EventAuthError    = "auth:error"

	EventPlayerJoin  = "player:join"
	EventPlayerLeave = "player:leave"
	EventPlayerState = "player:state"

	EventShipSetProfile = "ship:setProfile"
	EventShipSetColor   = "ship:setColor"
	EventShipUpgrade    = "ship:upgrade"
	EventShipUpdate     = "ship:update"
	EventShipError      = "ship:error"

	EventMovementUpdate = "movement:update"

	EventWeaponFire  = "weapon:fire"
	EventCombatHit   = "combat:hit"
	EventCombatError = "combat:error"

	EventWorldState           = "world:state"
	EventWorldSector          = "world:sector"
	EventWorldObjectDepleted  = "world:objectDepleted"
	EventWorldWreckageSpawned = "world:wreckageSpawned"

	EventMiningStart   = "mining:start"
	EventMiningStarted = "mining:started"
	EventMiningCancel  = "mining:cancel"
	EventMiningComplete = "mining:complete"
	EventMiningError   = "mining:error"

	EventLootCollect  = "loot:collect"
	EventLootComplete = "loot:complete"
	EventLootError    = "loot:error"

	EventMarketList         = "market:list"
	EventMarketBuy          = "market:buy"
	EventMarketCancel       = "market:cancel"
	EventMarketGetListings  = "market:getListings"
	EventMarketGetMine      = "market:getMyListings"
	EventMarketListings     = "market:listings"
	EventMarketUpdate       = "market:update"
	EventMarketError        = "market:error"

	EventFleetCreate  = "fleet:create"
	EventFleetInvite  = "fleet:invite"
	EventFleetAccept  = "fleet:accept"
	EventFleetDecline = "fleet:decline"
	EventFleetKick    = "fleet:kick"
	EventFleetLeave   = "fleet:leave"
	EventFleetChat    = "fleet:chat"
	EventFleetGetData = "fleet:getData"
	EventFleetData    = "fleet:data"
	EventFleetError   = "fleet:error"

	EventWormholeEnter             = "wormhole:enter"
	EventWormholeSelectDestination = "wormhole:selectDestination"
	EventWormholeCancel            = "wormhole:cancel"
	EventWormholeGetProgress       = "wormhole:getProgress"
	EventWormholeGetNearest        = "wormhole:getNearestPosition"
	EventWormholeDestinations      = "wormhole:destinations"
	EventWormholeProgress          = "wormhole:progress"
	EventWormholeExitComplete      = "wormhole:exitComplete"
	EventWormholeError             = "wormhole:error"

	EventChatSend    = "chat:send"
	EventChatMessage = "chat:message"

	EventEmotePlay = "emote:play"
)

// InboundEvents lists every event a client may send (spec.md §4.5's
// per-command contract). internal/audit's MissingHandlers can diff a
// list like this against a set of registered handlers; nothing in the
// tree runs that diff on this list.
var InboundEvents = []string{
	EventPing,
	EventAuthRegister, EventAuthLogin, EventAuthValidate,
	EventShipSetProfile, EventShipSetColor, EventShipUpgrade,
	EventMovementUpdate,
	EventWeaponFire,
	EventMiningStart, EventMiningCancel,
	EventLootCollect,
	EventMarketList, EventMarketBuy, EventMarketCancel, EventMarketGetListings, EventMarketGetMine,
	EventFleetCreate, EventFleetInvite, EventFleetAccept, EventFleetDecline, EventFleetKick, EventFleetLeave, EventFleetChat, EventFleetGetData,
	EventWormholeEnter, EventWormholeSelectDestination, EventWormholeCancel, EventWormholeGetProgress, EventWormholeGetNearest,
	EventChatSend,
}

// OutboundEvents lists every event the server may push. internal/audit's
// ScanEmittedEvents and MissingEmissions can check a list like this
// against the Emit-family call sites in the source tree; nothing in the
// tree runs that check on this list, and some entries (e.g.
// EventCombatHit, EventWorldState) have no call site.
var OutboundEvents = []string{
	EventPong,
	EventAuthSuccess, EventAuthError,
	EventPlayerJoin, EventPlayerLeave, EventPlayerState,
	EventShipUpdate, EventShipError,
	EventCombatHit, EventCombatError,
	EventWorldState, EventWorldSector, EventWorldObjectDepleted, EventWorldWreckageSpawned,
	EventMiningStarted, EventMiningComplete, EventMiningError,
	EventLootComplete, EventLootError,
	EventMarketListings, EventMarketUpdate, EventMarketError,
	EventFleetData, EventFleetError,
	EventWormholeDestinations, EventWormholeProgress, EventWormholeExitComplete, EventWormholeError,
	EventChatMessage,
	EventEmotePlay,
}

// Encode marshals a payload into an Envelope ready to send on the wire.
func Encode(event string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Event: event, Data: raw}, nil
}

// ErrorPayload is the {message} shape sent with every `*:error` event.
type ErrorPayload struct {
	Message string `json:"message"`
}
