package audit

import (
	"net/http/httptest"
	"testing"
	"time"

	"encoding/json"

	"github.com/stretchr/testify/require"

	"github.com/voidreach/starforge/internal/protocol"
)

type fakeUptime struct{ d time.Duration }

func (f fakeUptime) Uptime() time.Duration { return f.d }

func TestHealthHandlerReportsOkAndUptime(t *testing.T) {
	h := HealthHandler(fakeUptime{d: 90 * time.Second})
	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	h(rec, req)

	require.Equal(t, 200, rec.Code)
	var got HealthPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.True(t, got.OK)
	require.InDelta(t, 90.0, got.UptimeSec, 0.01)
}

func TestLoadProtocolConstantsResolvesKnownEvent(t *testing.T) {
	constants, err := LoadProtocolConstants("../protocol/protocol.go")
	require.NoError(t, err)
	require.Equal(t, "mining:complete", constants["EventMiningComplete"])
	require.Equal(t, "market:update", constants["EventMarketUpdate"])
}

func TestScanEmittedEventsFindsKnownEmissionSites(t *testing.T) {
	constants, err := LoadProtocolConstants("../protocol/protocol.go")
	require.NoError(t, err)
	emitted, err := ScanEmittedEvents("..", constants)
	require.NoError(t, err)

	// these are all emitted directly via protocol.EventXxx constants in
	// already-built session managers (mining/loot/wormhole/fleet).
	require.True(t, emitted[protocol.EventMiningComplete])
	require.True(t, emitted[protocol.EventLootComplete])
	require.True(t, emitted[protocol.EventWormholeExitComplete])
	require.True(t, emitted[protocol.EventFleetInvite])
	require.True(t, emitted[protocol.EventMarketUpdate])
}

func TestMissingEmissionsExcludesKnownExceptions(t *testing.T) {
	emitted := map[string]bool{"a": true}
	exceptions := map[string]bool{"b": true}
	missing := MissingEmissions([]string{"a", "b", "c"}, emitted, exceptions)
	require.Equal(t, []string{"c"}, missing)
}

func TestMissingHandlersExcludesKnownExceptions(t *testing.T) {
	registered := map[string]bool{"x": true}
	exceptions := map[string]bool{"y": true}
	missing := MissingHandlers([]string{"x", "y", "z"}, registered, exceptions)
	require.Equal(t, []string{"z"}, missing)
}
