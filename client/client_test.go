package client

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lguibr/tetris/game"
	"github.com/lguibr/tetris/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"
)

func TestKeyDecoder(t *testing.T) {
	testCases := []struct {
		input string
		keys  []string
		quit  bool
	}{
		{"a", []string{"ArrowLeft"}, false},
		{"D", []string{"ArrowRight"}, false},
		{"ws", []string{"ArrowUp", "ArrowDown"}, false},
		{" pr", []string{" ", "p", "r"}, false},
		{"\x1b[A\x1b[D", []string{"ArrowUp", "ArrowLeft"}, false},
		{"\x1bOC", []string{"ArrowRight"}, false},
		{"\x1b[Z", nil, false},
		{"xyz", nil, false},
		{"aq", []string{"ArrowLeft"}, true},
		{"\x03", nil, true},
	}
	for _, tc := range testCases {
		var d keyDecoder
		var keys []string
		quit := false
		for i := 0; i < len(tc.input); i++ {
			key, q := d.Feed(tc.input[i])
			if q {
				quit = true
				break
			}
			if key != "" {
				keys = append(keys, key)
			}
		}
		assert.Equal(t, tc.keys, keys, "input %q", tc.input)
		assert.Equal(t, tc.quit, quit, "input %q", tc.input)
	}
}

// fakeServer sends a session and one state, forwards two keys, then hangs up.
func fakeServer(t *testing.T, full bool, keys chan<- string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(websocket.Handler(func(ws *websocket.Conn) {
		if full {
			websocket.JSON.Send(ws, game.ErrorMessage{MessageType: "error", Reason: "server full"})
			return
		}
		websocket.JSON.Send(ws, game.SessionInfoMessage{MessageType: "sessionInfo", SessionID: "s-1"})
		engine := game.NewEngine(utils.DefaultConfig(), nil)
		websocket.JSON.Send(ws, game.NewGameStateMessage(engine.Snapshot()))
		for i := 0; i < 2; i++ {
			var msg game.KeyMessage
			if err := websocket.JSON.Receive(ws, &msg); err != nil {
				return
			}
			keys <- msg.Key
		}
	}))
}

func dialTest(t *testing.T, srv *httptest.Server, out *bytes.Buffer) *Client {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, err := websocket.Dial(url, "", "http://localhost/")
	require.NoError(t, err)
	return newClient(conn, out, func() {}, false)
}

func TestClient_ReceiveDrawsStateAndForwardsKeys(t *testing.T) {
	keys := make(chan string, 4)
	srv := fakeServer(t, false, keys)
	defer srv.Close()

	out := &bytes.Buffer{}
	c := dialTest(t, srv, out)
	defer c.Close()

	recvDone := make(chan error, 1)
	go func() { recvDone <- c.Receive() }()

	require.NoError(t, c.Play(context.Background(), strings.NewReader("a\x1b[Aq")))
	assert.Equal(t, "ArrowLeft", <-keys)
	assert.Equal(t, "ArrowUp", <-keys)

	select {
	case err := <-recvDone:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("receive loop did not end")
	}
	assert.Equal(t, "s-1", c.SessionID())
	assert.Contains(t, out.String(), "Score: 0")
	assert.Contains(t, out.String(), "[]")
}

func TestClient_ServerFull(t *testing.T) {
	srv := fakeServer(t, true, nil)
	defer srv.Close()

	c := dialTest(t, srv, &bytes.Buffer{})
	defer c.Close()
	assert.ErrorIs(t, c.Receive(), ErrServerFull)
}

func TestClient_IgnoresUnknownMessages(t *testing.T) {
	c := newClient(nil, &bytes.Buffer{}, func() {}, false)
	assert.NoError(t, c.handleMessage([]byte(`{"messageType":"other"}`)))
	assert.NoError(t, c.handleMessage([]byte(`not json`)))
	assert.EqualError(t, c.handleMessage([]byte(`{"messageType":"error","reason":"boom"}`)), "boom")
}
