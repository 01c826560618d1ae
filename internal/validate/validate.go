/*
Package validate
File: internal/validate/validate.go
Description:
    Component C11 — shared input validators for inbound command payloads.
    internal/auth already reaches for go-playground/validator/v10 for
    username/password shape checks; this package generalizes the same
    library to every other command the connection router decodes
    (spec.md §4.5's "C5 decodes → validates with C11 → mutates C3"),
    catching malformed payloads, out-of-range numerics, unknown enum
    values and negative quantities before they reach a handler
    (spec.md §7's ValidationError class).
*/
package validate

import (
	"errors"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/voidreach/starforge/internal/apperr"
)

// resourceTypes mirrors worldgen's resource pool (IRON/TITANIUM/ICE/
// PLASMA/RELIC_ALLOY); duplicated here rather than imported so this
// package stays a leaf dependency every command struct (and the
// dispatch table) can use without pulling in worldgen/spatial.
var resourceTypes = map[string]bool{
	"IRON": true, "TITANIUM": true, "ICE": true, "PLASMA": true, "RELIC_ALLOY": true,
}

// V wraps a configured validator.Validate with the custom tags this
// module's command payloads need.
type V struct {
	v *validator.Validate
}

// New builds a ready-to-use V.
func New() *V {
	v := validator.New()
	v.RegisterValidation("finite", isFinite)
	v.RegisterValidation("resourcetype", isResourceType)
	return &V{v: v}
}

func isFinite(fl validator.FieldLevel) bool {
	f := fl.Field().Float()
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func isResourceType(fl validator.FieldLevel) bool {
	return resourceTypes[strings.ToUpper(fl.Field().String())]
}

// Struct validates payload against its `validate:"..."` tags, returning
// a stable apperr.Validation on the first failing field.
func (vl *V) Struct(payload any) error {
	if err := vl.v.Struct(payload); err != nil {
		return apperr.Validation(firstMessage(err))
	}
	return nil
}

func firstMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return "invalid field: " + verrs[0].Field()
	}
	return "invalid payload"
}

// AuthRegister is the auth:register command payload.
type AuthRegister struct {
	Username string `validate:"required,alphanum,min=3,max=20"`
	Password string `validate:"required,min=8,max=128"`
}

// AuthLogin is the auth:login command payload.
type AuthLogin struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

// AuthValidate is the auth:validate command payload.
type AuthValidate struct {
	Token string `validate:"required"`
}

// MovementUpdate is the movement:update command payload. The engine
// integrates thrust/rotation/boost intents rather than trusting a
// client-reported position (spec.md §2's "server owns all simulation
// truth"), so this mirrors sim.Intent's shape rather than the raw
// {x,y,vx,vy,rotation} spec.md §4.5 sketches; the server still clamps
// speed and broadcasts the resulting authoritative position.
type MovementUpdate struct {
	Thrust   float64 `validate:"finite,gte=-1,lte=1"`
	Rotation float64 `validate:"finite"`
	Boost    bool
}

// WeaponFire is the weapon:fire command payload.
type WeaponFire struct {
	Rotation float64 `validate:"finite"`
}

// MiningStart is the mining:start command payload.
type MiningStart struct {
	ObjectID string `validate:"required"`
}

// LootCollect is the loot:collect command payload.
type LootCollect struct {
	WreckageID string `validate:"required"`
}

// MarketList is the market:list command payload.
type MarketList struct {
	ResourceType string `validate:"required,resourcetype"`
	Quantity     int64  `validate:"required,gt=0"`
	PricePerUnit int64  `validate:"required,gt=0"`
}

// MarketBuy is the market:buy command payload.
type MarketBuy struct {
	ListingID uint64 `validate:"required"`
	Quantity  int64  `validate:"required,gt=0"`
}

// MarketCancel is the market:cancel command payload.
type MarketCancel struct {
	ListingID uint64 `validate:"required"`
}

// WormholeEnter is the wormhole:enter command payload.
type WormholeEnter struct {
	WormholeID string `validate:"required"`
}

// WormholeSelectDestination is the wormhole:selectDestination payload.
type WormholeSelectDestination struct {
	DestinationID string `validate:"required"`
}

// FleetInvite is the fleet:invite command payload.
type FleetInvite struct {
	Username string `validate:"required,alphanum,min=3,max=20"`
}

// FleetCreate is the fleet:create command payload.
type FleetCreate struct {
	Name string `validate:"required,min=1,max=40"`
}

// FleetKick is the fleet:kick command payload.
type FleetKick struct {
	TargetUserID uint64 `validate:"required"`
}

// ShipUpgrade is the ship:upgrade command payload.
type ShipUpgrade struct {
	Component string `validate:"required"`
}

// ShipSetProfile is the ship:setProfile command payload.
type ShipSetProfile struct {
	ProfileID int `validate:"gte=0"`
}

// ShipSetColor is the ship:setColor command payload.
type ShipSetColor struct {
	ColorID int `validate:"gte=0"`
}

// ChatSend is the chat:send command payload.
type ChatSend struct {
	Message string `validate:"required,max=500"`
}
