/*
Package auth
File: internal/auth/auth.go
Description:
    Component C4 — registration, login, and token validation. Wraps
    internal/store's user/ship tables with password hashing, a spawn
    pick, session issuance, and per-IP rate limits, the way the teacher's
    handlers.go sits directly on top of its state.go rather than
    introducing a service layer of its own; here the equivalent surface
    is just wider because spec.md's auth flow is.
*/
package auth

import (
	"github.com/go-playground/validator/v10"

	"github.com/voidreach/starforge/internal/apperr"
	"github.com/voidreach/starforge/internal/balance"
	"github.com/voidreach/starforge/internal/store"
)

// SpawnLocator picks a spawn point for a brand new ship. Implemented by
// internal/sim using worldgen+spatial so a fresh player never lands on
// top of a star or another ship; kept as an interface here so this
// package never imports worldgen/spatial directly.
type SpawnLocator interface {
	PickSpawn() (x, y float64)
}

// Service implements register/login/validate against a Store, a balance
// table (for starting hull/shield), a SessionStore, and rate limiters.
type Service struct {
	store    *store.Store
	balance  *balance.Store
	sessions *SessionStore
	spawn    SpawnLocator

	defaultHullHP   float64
	defaultShieldHP float64

	loginLimiter    *IPLimiter
	registerLimiter *IPLimiter

	validate *validator.Validate
}

// NewService wires a ready-to-use auth Service. defaultHullHP and
// defaultShieldHP are the tier-1 baselines from spec.md §6
// (DEFAULT_HULL_HP/DEFAULT_SHIELD_HP) that balance's tier multiplier
// scales for higher hull/shield tiers.
func NewService(st *store.Store, bal *balance.Store, sessions *SessionStore, spawn SpawnLocator, defaultHullHP, defaultShieldHP float64, loginPerMin, registerPerMin int) *Service {
	return &Service{
		store:           st,
		balance:         bal,
		sessions:        sessions,
		spawn:           spawn,
		defaultHullHP:   defaultHullHP,
		defaultShieldHP: defaultShieldHP,
		loginLimiter:    NewIPLimiter(loginPerMin),
		registerLimiter: NewIPLimiter(registerPerMin),
		validate:        validator.New(),
	}
}

// Result is returned by Register and Login: a bearer token plus enough
// player state for the client's initial world:state payload.
type Result struct {
	Token  string
	UserID uint64
	Ship   *store.Ship
}

const defaultWeaponType = "BLASTER"

// Register validates the username/password, creates the user and its
// ship, and returns a session (spec.md §4.4 register).
func (s *Service) Register(ip, username, password string) (*Result, error) {
	if !s.registerLimiter.Allow(ip) {
		return nil, apperr.Auth("too many registration attempts, try again later")
	}
	if err := s.validateCredentials(username, password); err != nil {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, apperr.Internal("failed to hash password", err)
	}

	user, err := s.store.CreateUser(username, hash)
	if err != nil {
		if err == store.ErrDuplicateUsername {
			return nil, apperr.Validation("username already taken")
		}
		return nil, apperr.Persistence("failed to create user", err)
	}

	x, y := s.spawn.PickSpawn()
	table := s.balance.Get()
	hullMax := table.Scaled(s.defaultHullHP, 1)
	shieldMax := table.ScaledShield(s.defaultShieldHP, 1)

	ship, err := s.store.CreateShip(user.ID, store.NewShipParams{
		SpawnX: x, SpawnY: y,
		HullMax: hullMax, ShieldMax: shieldMax,
		WeaponType: defaultWeaponType,
	})
	if err != nil {
		return nil, apperr.Persistence("failed to create ship", err)
	}

	token, err := s.sessions.Create(user.ID, user.Username)
	if err != nil {
		return nil, apperr.Internal("failed to create session", err)
	}
	return &Result{Token: token, UserID: user.ID, Ship: ship}, nil
}

// Login validates credentials, reconciles hull/shield max against the
// current tier tables, and issues a fresh session (spec.md §4.4 login).
func (s *Service) Login(ip, username, password string) (*Result, error) {
	if !s.loginLimiter.Allow(ip) {
		return nil, apperr.Auth("too many login attempts, try again later")
	}

	user, err := s.store.GetUserByUsername(username)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, apperr.Auth("invalid username or password")
		}
		return nil, apperr.Persistence("failed to look up user", err)
	}
	if !VerifyPassword(user.PasswordHash, password) {
		return nil, apperr.Auth("invalid username or password")
	}

	ship, err := s.store.GetShip(user.ID)
	if err != nil {
		return nil, apperr.Persistence("failed to load ship", err)
	}

	table := s.balance.Get()
	wantHull := table.Scaled(s.defaultHullHP, ship.HullTier)
	wantShield := table.ScaledShield(s.defaultShieldHP, ship.ShieldTier)
	if err := s.store.ReconcileMax(user.ID, wantHull, wantShield); err != nil {
		return nil, apperr.Persistence("failed to reconcile ship stats", err)
	}
	ship, err = s.store.GetShip(user.ID)
	if err != nil {
		return nil, apperr.Persistence("failed to reload ship", err)
	}

	token, err := s.sessions.Create(user.ID, user.Username)
	if err != nil {
		return nil, apperr.Internal("failed to create session", err)
	}
	return &Result{Token: token, UserID: user.ID, Ship: ship}, nil
}

// Validate resolves a bearer token to its session, refreshing its TTL.
func (s *Service) Validate(token string) (Session, error) {
	sess, ok := s.sessions.Validate(token)
	if !ok {
		return Session{}, apperr.Auth("session expired or invalid")
	}
	return sess, nil
}

// Logout revokes a bearer token immediately.
func (s *Service) Logout(token string) {
	s.sessions.Revoke(token)
}

func (s *Service) validateCredentials(username, password string) error {
	if err := s.validate.Var(username, "required,alphanum,min=3,max=20"); err != nil {
		return apperr.Validation("username must be 3-20 alphanumeric characters")
	}
	if err := s.validate.Var(password, "required,min=8,max=128"); err != nil {
		return apperr.Validation("password must be at least 8 characters")
	}
	return nil
}
