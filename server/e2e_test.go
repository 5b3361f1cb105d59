package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lguibr/tetris/bollywood"
	"github.com/lguibr/tetris/game"
	"github.com/lguibr/tetris/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"
)

// E2ESetupResult holds a running engine, session manager and HTTP server.
type E2ESetupResult struct {
	Engine            *bollywood.Engine
	SessionManagerPID *bollywood.PID
	Server            *httptest.Server
	WsURL             string
	Origin            string
}

func SetupE2ETest(t *testing.T, cfg utils.Config) E2ESetupResult {
	t.Helper()
	engine := bollywood.NewEngine()
	managerPID := engine.Spawn(bollywood.NewProps(game.NewSessionManagerProducer(engine, cfg)))
	require.NotNil(t, managerPID)

	s := httptest.NewServer(New(engine, managerPID, cfg).Routes())
	return E2ESetupResult{
		Engine:            engine,
		SessionManagerPID: managerPID,
		Server:            s,
		WsURL:             "ws" + strings.TrimPrefix(s.URL, "http") + "/subscribe",
		Origin:            "http://localhost/",
	}
}

func TeardownE2ETest(t *testing.T, setup E2ESetupResult) {
	t.Helper()
	setup.Server.Close()
	setup.Engine.Shutdown(2 * time.Second)
}

func e2eConfig() utils.Config {
	cfg := utils.DefaultConfig()
	cfg.GameTickPeriod = time.Hour
	cfg.MaxSessions = 2
	cfg.PieceSeed = 1
	return cfg
}

// nextState skips frames until a gameState arrives.
func nextState(t *testing.T, ws *websocket.Conn) game.GameStateMessage {
	t.Helper()
	for {
		msgType, raw := receiveType(t, ws)
		if msgType != "gameState" {
			continue
		}
		var state game.GameStateMessage
		require.NoError(t, json.Unmarshal(raw, &state))
		return state
	}
}

func minCol(blocks []game.Block) int {
	m := blocks[0].Col
	for _, b := range blocks[1:] {
		if b.Col < m {
			m = b.Col
		}
	}
	return m
}

func TestE2E_PlayOverWebSocket(t *testing.T) {
	setup := SetupE2ETest(t, e2eConfig())
	defer TeardownE2ETest(t, setup)

	ws, err := websocket.Dial(setup.WsURL, "", setup.Origin)
	require.NoError(t, err)
	defer ws.Close()

	msgType, _ := receiveType(t, ws)
	require.Equal(t, "sessionInfo", msgType)

	initial := nextState(t, ws)
	assert.Equal(t, game.Running, initial.RunState)
	require.Len(t, initial.Piece, 4)
	assert.Len(t, initial.Board, utils.BoardHeight)

	require.NoError(t, websocket.JSON.Send(ws, game.KeyMessage{Key: "ArrowLeft"}))
	moved := nextState(t, ws)
	assert.Equal(t, minCol(initial.Piece)-1, minCol(moved.Piece))

	require.NoError(t, websocket.JSON.Send(ws, game.KeyMessage{Key: " "}))
	dropped := nextState(t, ws)
	assert.Equal(t, 1, dropped.PiecesLocked)

	require.NoError(t, websocket.JSON.Send(ws, game.KeyMessage{Key: "p"}))
	assert.Equal(t, game.Paused, nextState(t, ws).RunState)
}

func TestE2E_SessionListAndRelease(t *testing.T) {
	setup := SetupE2ETest(t, e2eConfig())
	defer TeardownE2ETest(t, setup)

	ws, err := websocket.Dial(setup.WsURL, "", setup.Origin)
	require.NoError(t, err)
	msgType, raw := receiveType(t, ws)
	require.Equal(t, "sessionInfo", msgType)
	var info game.SessionInfoMessage
	require.NoError(t, json.Unmarshal(raw, &info))

	sessions := func() []game.SessionInfo {
		resp, err := http.Get(setup.Server.URL + "/")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var list game.SessionListResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
		return list.Sessions
	}

	list := sessions()
	require.Len(t, list, 1)
	assert.Equal(t, info.SessionID, list[0].ID)

	require.NoError(t, ws.Close())
	assert.Eventually(t, func() bool { return len(sessions()) == 0 }, 2*time.Second, 20*time.Millisecond)
}

func TestE2E_MaxSessions(t *testing.T) {
	setup := SetupE2ETest(t, e2eConfig())
	defer TeardownE2ETest(t, setup)

	var conns []*websocket.Conn
	defer func() {
		for _, c := range conns {
			c.Close()
		}
	}()
	for i := 0; i < 2; i++ {
		ws, err := websocket.Dial(setup.WsURL, "", setup.Origin)
		require.NoError(t, err)
		conns = append(conns, ws)
		msgType, _ := receiveType(t, ws)
		require.Equal(t, "sessionInfo", msgType)
	}

	ws, err := websocket.Dial(setup.WsURL, "", setup.Origin)
	require.NoError(t, err)
	conns = append(conns, ws)
	msgType, _ := receiveType(t, ws)
	assert.Equal(t, "error", msgType)
}
