package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/voidreach/starforge/internal/balance"
	"github.com/voidreach/starforge/internal/store"
)

type fixedSpawn struct{ x, y float64 }

func (f fixedSpawn) PickSpawn() (float64, float64) { return f.x, f.y }

func newTestService(t *testing.T) *Service {
	t.Helper()
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	bal, err := balance.NewStore("../../config/balance.yaml")
	require.NoError(t, err)
	sessions := NewSessionStore(time.Hour)
	return NewService(st, bal, sessions, fixedSpawn{x: 100, y: 200}, 100, 50, 100, 100)
}

func TestRegisterThenLogin(t *testing.T) {
	svc := newTestService(t)

	reg, err := svc.Register("1.2.3.4", "pilot1", "hunter22")
	require.NoError(t, err)
	require.NotEmpty(t, reg.Token)
	require.Equal(t, 100.0, reg.Ship.PosX)
	require.Equal(t, 200.0, reg.Ship.PosY)

	sess, err := svc.Validate(reg.Token)
	require.NoError(t, err)
	require.Equal(t, reg.UserID, sess.UserID)

	login, err := svc.Login("1.2.3.4", "pilot1", "hunter22")
	require.NoError(t, err)
	require.NotEqual(t, reg.Token, login.Token)
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Register("1.2.3.4", "pilot2", "hunter22")
	require.NoError(t, err)
	_, err = svc.Register("1.2.3.5", "pilot2", "anotherpass")
	require.Error(t, err)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Register("1.2.3.4", "pilot3", "short")
	require.Error(t, err)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Register("1.2.3.4", "pilot4", "hunter22")
	require.NoError(t, err)
	_, err = svc.Login("1.2.3.4", "pilot4", "wrongpass")
	require.Error(t, err)
}

func TestValidateRejectsUnknownToken(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Validate("not-a-real-token")
	require.Error(t, err)
}

func TestLogoutRevokesToken(t *testing.T) {
	svc := newTestService(t)
	reg, err := svc.Register("1.2.3.4", "pilot5", "hunter22")
	require.NoError(t, err)

	svc.Logout(reg.Token)
	_, err = svc.Validate(reg.Token)
	require.Error(t, err)
}

func TestLoginRateLimited(t *testing.T) {
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	bal, err := balance.NewStore("../../config/balance.yaml")
	require.NoError(t, err)
	svc := NewService(st, bal, NewSessionStore(time.Hour), fixedSpawn{}, 100, 50, 1, 1)

	_, err = svc.Register("9.9.9.9", "ratelimited", "hunter22")
	require.NoError(t, err)

	_, err = svc.Login("9.9.9.9", "ratelimited", "hunter22")
	require.NoError(t, err)

	_, err = svc.Login("9.9.9.9", "ratelimited", "hunter22")
	require.Error(t, err)
}
