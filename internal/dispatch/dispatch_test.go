package dispatch

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/voidreach/starforge/internal/auth"
	"github.com/voidreach/starforge/internal/balance"
	"github.com/voidreach/starforge/internal/config"
	"github.com/voidreach/starforge/internal/fleet"
	"github.com/voidreach/starforge/internal/loot"
	"github.com/voidreach/starforge/internal/market"
	"github.com/voidreach/starforge/internal/mining"
	"github.com/voidreach/starforge/internal/shipsvc"
	"github.com/voidreach/starforge/internal/sim"
	"github.com/voidreach/starforge/internal/store"
	"github.com/voidreach/starforge/internal/transport"
	"github.com/voidreach/starforge/internal/worldgen"
	"github.com/voidreach/starforge/internal/wormhole"
)

// testServer wires the whole command path (store, sim engine, every
// service, the Router, and a real transport.Hub over a real websocket)
// the way cmd/starforge's serve command does.
type testServer struct {
	url    string
	server *httptest.Server
	st     *store.Store
	engine *sim.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := &config.Config{
		SectorSize: 2000, BaseRadarRange: 600, BaseSpeed: 180, StarSizeMax: 220,
		TickMs: 50, PersistMs: 5000, DefaultHullHP: 100, DefaultShieldHP: 50,
		SelectionTimeout: 15 * time.Second, TransitDuration: 6 * time.Second,
		WormholeRange: 200, ExitOffset: 120, RespawnInvulnerability: 3 * time.Second,
		BaseMiningTime: 50 * time.Millisecond, BaseMiningYield: 5,
	}
	bal, err := balance.NewStore("../../config/balance.yaml")
	require.NoError(t, err)
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	gen := worldgen.New(1, cfg.SectorSize, cfg.StarSizeMax)
	engine := sim.NewEngine(cfg, bal, st, gen)

	sessions := auth.NewSessionStore(cfg.TokenExpiry)
	spawner := sim.NewSpawner(gen, cfg.SectorSize)
	authSvc := auth.NewService(st, bal, sessions, spawner, cfg.DefaultHullHP, cfg.DefaultShieldHP, 100, 100)
	shipSvc := shipsvc.NewService(st, bal, engine)
	miningMgr := mining.NewManager(engine, st, bal, gen, cfg)
	lootMgr := loot.NewManager(engine, st)
	marketSvc := market.NewService(st, engine)
	fleetMgr := fleet.NewManager(st, engine)
	wormholeMgr := wormhole.NewManager(engine, st, gen, cfg)

	router := New(authSvc, shipSvc, miningMgr, lootMgr, marketSvc, fleetMgr, wormholeMgr, engine, st)

	hub := transport.NewHub(100, router)
	engine.SetSender(hub)
	go hub.Run()

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWs))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	return &testServer{url: url, server: server, st: st, engine: engine}
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	env := map[string]any{"event": event, "data": json.RawMessage(raw)}
	out, err := json.Marshal(env)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, out))
}

func recv(t *testing.T, conn *websocket.Conn) (string, map[string]any) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var env struct {
		Event string         `json:"event"`
		Data  map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &env))
	return env.Event, env.Data
}

func TestRegisterSucceedsAndAuthenticatesConnection(t *testing.T) {
	ts := newTestServer(t)
	conn := dial(t, ts.url)

	send(t, conn, "auth:register", map[string]any{"username": "voyager1", "password": "hunter22"})
	event, data := recv(t, conn)
	require.Equal(t, "auth:success", event)
	require.NotEmpty(t, data["token"])
}

func TestUnauthenticatedCommandIsRejected(t *testing.T) {
	ts := newTestServer(t)
	conn := dial(t, ts.url)

	send(t, conn, "ship:upgrade", map[string]any{"component": "engine"})
	event, _ := recv(t, conn)
	require.Equal(t, "auth:error", event)
}

func TestPingReceivesPong(t *testing.T) {
	ts := newTestServer(t)
	conn := dial(t, ts.url)

	send(t, conn, "ping", map[string]any{})
	event, _ := recv(t, conn)
	require.Equal(t, "pong", event)
}
