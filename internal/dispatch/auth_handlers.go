/*
File: internal/dispatch/auth_handlers.go
Description:
    auth:register/login/validate (spec.md §4.4) plus the glue those
    three share: turning a freshly authenticated user into a live
    sim.Player and flipping the connection from UNAUTH to AUTH.
*/
package dispatch

import (
	"github.com/voidreach/starforge/internal/apperr"
	"github.com/voidreach/starforge/internal/protocol"
	"github.com/voidreach/starforge/internal/sim"
	"github.com/voidreach/starforge/internal/store"
	"github.com/voidreach/starforge/internal/transport"
	"github.com/voidreach/starforge/internal/validate"
)

func (r *Router) handleAuthRegister(c *transport.Conn, data []byte) {
	var payload validate.AuthRegister
	if err := decode(data, &payload); err != nil {
		c.EmitError(protocol.EventAuthError, apperr.ClientMessage(err))
		return
	}
	if err := r.val.Struct(payload); err != nil {
		c.EmitError(protocol.EventAuthError, apperr.ClientMessage(err))
		return
	}
	res, err := r.auth.Register(c.RemoteAddr(), payload.Username, payload.Password)
	if err != nil {
		c.EmitError(protocol.EventAuthError, apperr.ClientMessage(err))
		return
	}
	r.completeAuth(c, res.UserID, payload.Username, res.Token, res.Ship)
}

func (r *Router) handleAuthLogin(c *transport.Conn, data []byte) {
	var payload validate.AuthLogin
	if err := decode(data, &payload); err != nil {
		c.EmitError(protocol.EventAuthError, apperr.ClientMessage(err))
		return
	}
	if err := r.val.Struct(payload); err != nil {
		c.EmitError(protocol.EventAuthError, apperr.ClientMessage(err))
		return
	}
	res, err := r.auth.Login(c.RemoteAddr(), payload.Username, payload.Password)
	if err != nil {
		c.EmitError(protocol.EventAuthError, apperr.ClientMessage(err))
		return
	}
	r.completeAuth(c, res.UserID, payload.Username, res.Token, res.Ship)
}

func (r *Router) handleAuthValidate(c *transport.Conn, data []byte) {
	var payload validate.AuthValidate
	if err := decode(data, &payload); err != nil {
		c.EmitError(protocol.EventAuthError, apperr.ClientMessage(err))
		return
	}
	if err := r.val.Struct(payload); err != nil {
		c.EmitError(protocol.EventAuthError, apperr.ClientMessage(err))
		return
	}
	sess, err := r.auth.Validate(payload.Token)
	if err != nil {
		c.EmitError(protocol.EventAuthError, apperr.ClientMessage(err))
		return
	}
	ship, err := r.st.GetShip(sess.UserID)
	if err != nil {
		c.EmitError(protocol.EventAuthError, "failed to load ship")
		return
	}
	r.completeAuth(c, sess.UserID, sess.Username, payload.Token, ship)
}

// completeAuth is the shared tail of register/login/validate: ensure the
// sim has a live Player for this user, flip the connection to AUTH, and
// reply auth:success.
func (r *Router) completeAuth(c *transport.Conn, userID uint64, username, token string, ship *store.Ship) {
	r.joinIfAbsent(userID, username, ship)
	c.Authenticate(userID, username, token)
	c.Emit(protocol.EventAuthSuccess, map[string]any{
		"token": token, "player": ship,
	})
}

// joinIfAbsent adds userID to the live simulation if it isn't already
// there (a reconnect via auth:validate finds the player already joined
// under a prior connection and leaves it untouched).
func (r *Router) joinIfAbsent(userID uint64, username string, ship *store.Ship) {
	var exists bool
	r.engine.WithLock(func() {
		_, exists = r.engine.Player(userID)
	})
	if exists {
		return
	}
	r.engine.Join(&sim.Player{
		UserID: userID, Username: username,
		X: ship.PosX, Y: ship.PosY, VX: ship.VelX, VY: ship.VelY, Rotation: ship.Rotation,
		SectorX: ship.LastSectorX, SectorY: ship.LastSectorY,
		HullCurrent: ship.HullCurrent, HullMax: ship.HullMax,
		ShieldCurrent: ship.ShieldCurrent, ShieldMax: ship.ShieldMax,
		Credits: ship.Credits,
		EngineTier: ship.EngineTier, WeaponTier: ship.WeaponTier, ShieldTier: ship.ShieldTier,
		MiningTier: ship.MiningTier, CargoTier: ship.CargoTier, RadarTier: ship.RadarTier,
		EnergyCoreTier: ship.EnergyCoreTier, HullTier: ship.HullTier,
		WeaponType: ship.WeaponType,
		Life:       sim.LifeAlive,
	})
}
