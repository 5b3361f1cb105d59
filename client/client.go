// Package client is a terminal front end for a remote game server.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/lguibr/asciiring/helpers"
	"github.com/lguibr/tetris/game"
	"github.com/lguibr/tetris/logging"
	"github.com/lguibr/tetris/render"
	"golang.org/x/net/websocket"
)

// ErrServerFull is returned when the server refuses the session.
var ErrServerFull = errors.New("server full")

// Client owns one websocket session.
type Client struct {
	conn      *websocket.Conn
	out       io.Writer
	clear     func()
	color     bool
	sessionID string
}

// Dial connects to ws://addr/subscribe.
func Dial(addr string) (*Client, error) {
	conn, err := websocket.Dial(fmt.Sprintf("ws://%s/subscribe", addr), "", "http://localhost/")
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return newClient(conn, os.Stdout, helpers.ClearScreen, true), nil
}

func newClient(conn *websocket.Conn, out io.Writer, clear func(), color bool) *Client {
	return &Client{conn: conn, out: out, clear: clear, color: color}
}

// Close closes the connection.
func (c *Client) Close() error { return c.conn.Close() }

// SessionID is set once the server has assigned a session.
func (c *Client) SessionID() string { return c.sessionID }

// SendKey sends one key name to the server.
func (c *Client) SendKey(key string) error {
	return websocket.JSON.Send(c.conn, game.KeyMessage{Key: key})
}

// Receive draws every incoming state until the connection ends.
func (c *Client) Receive() error {
	for {
		var raw []byte
		if err := websocket.Message.Receive(c.conn, &raw); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if err := c.handleMessage(raw); err != nil {
			return err
		}
	}
}

func (c *Client) handleMessage(raw []byte) error {
	var header game.MessageHeader
	if err := json.Unmarshal(raw, &header); err != nil {
		logging.Warnf("Client: undecodable message: %v", err)
		return nil
	}
	switch header.MessageType {
	case "sessionInfo":
		var info game.SessionInfoMessage
		if err := json.Unmarshal(raw, &info); err != nil {
			return err
		}
		c.sessionID = info.SessionID
	case "gameState":
		var msg game.GameStateMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return err
		}
		c.clear()
		fmt.Fprint(c.out, render.RenderToASCII(msg.GameState, c.color))
	case "error":
		var msg game.ErrorMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return err
		}
		if msg.Reason == "server full" {
			return ErrServerFull
		}
		return errors.New(msg.Reason)
	default:
		logging.Debugf("Client: ignoring message type %q", header.MessageType)
	}
	return nil
}

// Play reads keys from in until quit, EOF or ctx is cancelled.
func (c *Client) Play(ctx context.Context, in io.Reader) error {
	var decoder keyDecoder
	buf := make([]byte, 1)
	for ctx.Err() == nil {
		n, err := in.Read(buf)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if n == 0 {
			continue
		}
		key, quit := decoder.Feed(buf[0])
		if quit {
			return nil
		}
		if key == "" {
			continue
		}
		if err := c.SendKey(key); err != nil {
			return fmt.Errorf("send key: %w", err)
		}
	}
	return nil
}

// Run connects, switches stdin to raw mode and plays until the user quits
// or the server closes the session.
func Run(ctx context.Context, addr string) error {
	c, err := Dial(addr)
	if err != nil {
		return err
	}
	defer c.Close()

	restore, err := setRawMode(int(os.Stdin.Fd()))
	if err != nil {
		return fmt.Errorf("raw mode: %w", err)
	}
	defer restore()

	recvErr := make(chan error, 1)
	go func() { recvErr <- c.Receive() }()
	playErr := make(chan error, 1)
	go func() { playErr <- c.Play(ctx, os.Stdin) }()

	select {
	case <-ctx.Done():
		return nil
	case err := <-recvErr:
		return err
	case err := <-playErr:
		return err
	}
}
