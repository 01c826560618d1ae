package validate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voidreach/starforge/internal/apperr"
)

func TestMovementUpdateRejectsNonFiniteValues(t *testing.T) {
	v := New()
	err := v.Struct(MovementUpdate{Thrust: math.NaN(), Rotation: 1})
	require.Error(t, err)
	require.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestMovementUpdateAcceptsFiniteValues(t *testing.T) {
	v := New()
	require.NoError(t, v.Struct(MovementUpdate{Thrust: 0.5, Rotation: 3.14, Boost: true}))
}

func TestMovementUpdateRejectsOutOfRangeThrust(t *testing.T) {
	v := New()
	err := v.Struct(MovementUpdate{Thrust: 2, Rotation: 0})
	require.Error(t, err)
}

func TestMarketListRejectsUnknownResourceType(t *testing.T) {
	v := New()
	err := v.Struct(MarketList{ResourceType: "GOLD_DOUBLOON", Quantity: 5, PricePerUnit: 2})
	require.Error(t, err)
}

func TestMarketListRejectsNonPositiveQuantity(t *testing.T) {
	v := New()
	err := v.Struct(MarketList{ResourceType: "IRON", Quantity: 0, PricePerUnit: 2})
	require.Error(t, err)
}

func TestMarketListAcceptsValidPayload(t *testing.T) {
	v := New()
	require.NoError(t, v.Struct(MarketList{ResourceType: "iron", Quantity: 5, PricePerUnit: 2}))
}

func TestMiningStartRejectsEmptyObjectID(t *testing.T) {
	v := New()
	err := v.Struct(MiningStart{ObjectID: ""})
	require.Error(t, err)
}

func TestFleetInviteRejectsShortUsername(t *testing.T) {
	v := New()
	err := v.Struct(FleetInvite{Username: "ab"})
	require.Error(t, err)
}
