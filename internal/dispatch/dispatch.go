/*
Package dispatch
File: internal/dispatch/dispatch.go
Description:
    Component C5's connection router — the composition root spec.md's
    REDESIGN FLAGS calls for in place of the source's ambient globals
    (a single ServerContext-like Router threaded with every service,
    rather than package-level state). Implements internal/transport's
    Dispatcher: one inbound envelope in, one decode+validate+service
    call+reply out, per spec.md §4.5's "C5 decodes -> validates with
    C11 -> mutates C3/C6 -> replies/broadcasts" pipeline.
*/
package dispatch

import (
	"encoding/json"
	"time"

	"github.com/voidreach/starforge/internal/apperr"
	"github.com/voidreach/starforge/internal/auth"
	"github.com/voidreach/starforge/internal/fleet"
	"github.com/voidreach/starforge/internal/logging"
	"github.com/voidreach/starforge/internal/loot"
	"github.com/voidreach/starforge/internal/market"
	"github.com/voidreach/starforge/internal/mining"
	"github.com/voidreach/starforge/internal/protocol"
	"github.com/voidreach/starforge/internal/shipsvc"
	"github.com/voidreach/starforge/internal/sim"
	"github.com/voidreach/starforge/internal/store"
	"github.com/voidreach/starforge/internal/transport"
	"github.com/voidreach/starforge/internal/validate"
	"github.com/voidreach/starforge/internal/wormhole"
)

// ChatRatePerMin bounds how many chat:send commands one connected user
// may issue per minute (spec.md §4.5: "chat:send — per-sender rate
// limit; broadcast to interest set").
const ChatRatePerMin = 20

// Router wires every built service to the events spec.md §4.5 names,
// and is the one place those services meet internal/transport.
type Router struct {
	log *logging.Logger

	auth     *auth.Service
	ships    *shipsvc.Service
	mining   *mining.Manager
	loot     *loot.Manager
	market   *market.Service
	fleet    *fleet.Manager
	wormhole *wormhole.Manager

	engine *sim.Engine
	st     *store.Store
	val    *validate.V

	// chatLimiter reuses auth.IPLimiter's generic string-keyed token
	// bucket, keyed by user id instead of IP; chat:send rate limiting
	// is the same "N events per minute per key" shape login/register
	// already need.
	chatLimiter *auth.IPLimiter
}

// New wires a ready-to-use Router.
func New(authSvc *auth.Service, ships *shipsvc.Service, miningMgr *mining.Manager, lootMgr *loot.Manager, marketSvc *market.Service, fleetMgr *fleet.Manager, wormholeMgr *wormhole.Manager, engine *sim.Engine, st *store.Store) *Router {
	return &Router{
		log:         logging.For("dispatch"),
		auth:        authSvc,
		ships:       ships,
		mining:      miningMgr,
		loot:        lootMgr,
		market:      marketSvc,
		fleet:       fleetMgr,
		wormhole:    wormholeMgr,
		engine:      engine,
		st:          st,
		val:         validate.New(),
		chatLimiter: auth.NewIPLimiter(ChatRatePerMin),
	}
}

// Dispatch implements transport.Dispatcher: decode, enforce the UNAUTH/
// AUTH connection gate (spec.md §4.5), and route to one handler. A
// panic from any handler is recovered and logged rather than taking
// down the read pump (spec.md §4.6's tick failure semantics, applied
// here to command handling too).
func (r *Router) Dispatch(c *transport.Conn, event string, data []byte) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Errorf("panic handling %s: %v", event, rec)
		}
	}()

	if !c.IsAuth() {
		switch event {
		case protocol.EventPing, protocol.EventAuthRegister, protocol.EventAuthLogin, protocol.EventAuthValidate:
		default:
			c.EmitError(protocol.EventAuthError, "authentication required")
			return
		}
	}

	switch event {
	case protocol.EventPing:
		c.Emit(protocol.EventPong, map[string]int64{"ts": time.Now().UnixMilli()})

	case protocol.EventAuthRegister:
		r.handleAuthRegister(c, data)
	case protocol.EventAuthLogin:
		r.handleAuthLogin(c, data)
	case protocol.EventAuthValidate:
		r.handleAuthValidate(c, data)

	case protocol.EventShipUpgrade:
		r.handleShipUpgrade(c, data)
	case protocol.EventShipSetProfile:
		r.handleShipSetProfile(c, data)
	case protocol.EventShipSetColor:
		r.handleShipSetColor(c, data)

	case protocol.EventMovementUpdate:
		r.handleMovementUpdate(c, data)
	case protocol.EventWeaponFire:
		r.handleWeaponFire(c, data)

	case protocol.EventMiningStart:
		r.handleMiningStart(c, data)
	case protocol.EventMiningCancel:
		r.mining.Cancel(c.UserID())

	case protocol.EventLootCollect:
		r.handleLootCollect(c, data)

	case protocol.EventMarketList:
		r.handleMarketList(c, data)
	case protocol.EventMarketBuy:
		r.handleMarketBuy(c, data)
	case protocol.EventMarketCancel:
		r.handleMarketCancel(c, data)
	case protocol.EventMarketGetListings:
		r.handleMarketGetListings(c)
	case protocol.EventMarketGetMine:
		r.handleMarketGetMine(c)

	case protocol.EventFleetCreate:
		r.handleFleetCreate(c, data)
	case protocol.EventFleetInvite:
		r.handleFleetInvite(c, data)
	case protocol.EventFleetAccept:
		r.handleFleetAccept(c)
	case protocol.EventFleetDecline:
		r.handleFleetDecline(c)
	case protocol.EventFleetKick:
		r.handleFleetKick(c, data)
	case protocol.EventFleetLeave:
		r.handleFleetLeave(c)
	case protocol.EventFleetChat:
		r.handleFleetChat(c, data)
	case protocol.EventFleetGetData:
		r.handleFleetGetData(c)

	case protocol.EventWormholeEnter:
		r.handleWormholeEnter(c, data)
	case protocol.EventWormholeSelectDestination:
		r.handleWormholeSelect(c, data)
	case protocol.EventWormholeCancel:
		r.handleWormholeCancel(c)
	case protocol.EventWormholeGetProgress:
		r.handleWormholeGetProgress(c)
	case protocol.EventWormholeGetNearest:
		r.handleWormholeGetNearest(c)

	case protocol.EventChatSend:
		r.handleChatSend(c, data)

	default:
		r.log.Debugf("no handler for event %s", event)
	}
}

// OnDisconnect releases everything tied to one connection's user: any
// in-flight mining/loot/wormhole session and the live sim.Player.
func (r *Router) OnDisconnect(c *transport.Conn) {
	userID := c.UserID()
	if userID == 0 {
		return
	}
	r.mining.Cancel(userID)
	r.loot.Cancel(userID)
	_ = r.wormhole.Cancel(userID)
	r.engine.Leave(userID)
}

// decode unmarshals an inbound payload, surfacing malformed JSON as a
// ProtocolError (spec.md §7) rather than letting it panic further in.
func decode(data []byte, v any) error {
	if len(data) == 0 {
		return apperr.Protocol("missing payload")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return apperr.Protocol("malformed payload")
	}
	return nil
}
