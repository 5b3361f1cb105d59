package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/lguibr/tetris/game"
	"golang.org/x/net/websocket"
)

const writeTimeout = 5 * time.Second

// wsSubscriber writes game states to one connection. All writes to the
// connection go through send so frames never interleave.
type wsSubscriber struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
}

func newWSSubscriber(id string, conn *websocket.Conn) *wsSubscriber {
	return &wsSubscriber{id: id, conn: conn}
}

func (s *wsSubscriber) ID() string { return s.id }

func (s *wsSubscriber) SendState(state game.GameState) error {
	return s.send(game.NewGameStateMessage(state))
}

func (s *wsSubscriber) send(v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return fmt.Errorf("subscriber %s: connection closed", s.id)
	}
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := websocket.JSON.Send(s.conn, v); err != nil {
		return fmt.Errorf("subscriber %s: %w", s.id, err)
	}
	return nil
}

// detach stops further writes; the connection itself is closed by its handler.
func (s *wsSubscriber) detach() {
	s.mu.Lock()
	s.conn = nil
	s.mu.Unlock()
}
