// File: game/messages.go
package game

import (
	"time"

	"github.com/lguibr/tetris/bollywood"
)

// --- Message Header ---
// Used for identifying message types after unmarshalling from JSON
type MessageHeader struct {
	MessageType string `json:"messageType"`
}

// --- WebSocket Messages (Client <-> Server) ---

// KeyMessage is the only inbound message: a key name such as "ArrowLeft" or " ".
type KeyMessage struct {
	Key string `json:"key"`
}

// SessionInfoMessage tells a client which session it was given.
type SessionInfoMessage struct {
	MessageType string `json:"messageType"` // "sessionInfo"
	SessionID   string `json:"sessionId"`
}

// GameStateMessage carries a full snapshot after every state change.
type GameStateMessage struct {
	MessageType string `json:"messageType"` // "gameState"
	GameState
}

// ErrorMessage is sent before the server closes a connection it cannot serve.
type ErrorMessage struct {
	MessageType string `json:"messageType"` // "error"
	Reason      string `json:"reason"`
}

func NewGameStateMessage(state GameState) GameStateMessage {
	return GameStateMessage{MessageType: "gameState", GameState: state}
}

// --- Actor Messages (Internal Communication) ---

// --- GameActor Messages ---

// CommandMessage delivers one input command to the GameActor.
type CommandMessage struct {
	Command Command
}

// GameTick is sent by the GameActor's own ticker.
type GameTick struct{}

// Subscribe registers a state listener; it receives the current state immediately.
type Subscribe struct {
	Subscriber Subscriber
}

// Unsubscribe removes a listener by ID.
type Unsubscribe struct {
	ID string
}

// GetStateRequest asks for the current GameState (used via Ask).
type GetStateRequest struct{}

// --- SessionManagerActor Messages ---

// CreateSessionRequest asks the manager to start a new game for ReplyTo.
type CreateSessionRequest struct {
	ReplyTo *bollywood.PID
}

// SessionAssigned is the reply to CreateSessionRequest. GamePID is nil when the server is full.
type SessionAssigned struct {
	ID      string
	GamePID *bollywood.PID
}

// CloseSessionRequest stops the game of a session.
type CloseSessionRequest struct {
	ID string
}

// GetSessionListRequest asks for all running sessions (used via Ask).
type GetSessionListRequest struct{}

// SessionInfo describes one running session.
type SessionInfo struct {
	ID        string    `json:"id"`
	GamePID   string    `json:"gamePid"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionListResponse is the reply to GetSessionListRequest.
type SessionListResponse struct {
	Sessions []SessionInfo `json:"sessions"`
}
