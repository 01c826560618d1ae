package apperr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsKindMatchesWrappedKind(t *testing.T) {
	err := Validation("username too short")
	require.True(t, IsKind(err, KindValidation))
	require.False(t, IsKind(err, KindAuth))
}

func TestIsKindFalseForPlainError(t *testing.T) {
	require.False(t, IsKind(errors.New("boom"), KindInternal))
}

func TestClientMessageReturnsStableMessageForMostKinds(t *testing.T) {
	err := Auth("invalid credentials")
	require.Equal(t, "invalid credentials", ClientMessage(err))
}

func TestClientMessageHidesPersistenceAndInternalCauses(t *testing.T) {
	err := Persistence("failed to save ship", errors.New("disk full"))
	require.Equal(t, "Something went wrong, please try again", ClientMessage(err))

	err = Internal("tick panic", errors.New("index out of range"))
	require.Equal(t, "Something went wrong, please try again", ClientMessage(err))
}

func TestClientMessageFallsBackForUnknownErrors(t *testing.T) {
	require.Equal(t, "Something went wrong, please try again", ClientMessage(errors.New("plain")))
}

func TestErrorUnwrapExposesCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Persistence("failed to save ship", cause)
	require.ErrorIs(t, err, cause)
}

func TestErrorStringIncludesKindAndMessage(t *testing.T) {
	err := New(KindProtocol, "malformed payload")
	require.Equal(t, "ProtocolError: malformed payload", err.Error())
}
