// File: game/session_manager.go
package game

import (
	"fmt"
	"runtime/debug"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/kamstrup/intmap"
	"github.com/lguibr/tetris/bollywood"
	"github.com/lguibr/tetris/logging"
	"github.com/lguibr/tetris/utils"
)

// sessionEntry holds information about an active game session.
type sessionEntry struct {
	key       uint64
	id        string
	pid       *bollywood.PID
	createdAt time.Time
}

// SessionManagerActor gives every connection a private GameActor and keeps
// at most cfg.MaxSessions of them running.
type SessionManagerActor struct {
	engine   *bollywood.Engine
	cfg      utils.Config
	producer func() bollywood.Producer
	sessions *intmap.Map[uint64, *sessionEntry] // keyed by creation order
	nextKey  uint64
	selfPID  *bollywood.PID
}

// NewSessionManagerProducer creates a producer for the SessionManagerActor.
func NewSessionManagerProducer(engine *bollywood.Engine, cfg utils.Config) bollywood.Producer {
	return newSessionManagerProducer(engine, cfg, func() bollywood.Producer {
		return NewGameActorProducer(engine, cfg, nil)
	})
}

// newSessionManagerProducer lets tests substitute the game actor.
func newSessionManagerProducer(engine *bollywood.Engine, cfg utils.Config, gameProducer func() bollywood.Producer) bollywood.Producer {
	return func() bollywood.Actor {
		return &SessionManagerActor{
			engine:   engine,
			cfg:      cfg,
			producer: gameProducer,
			sessions: intmap.New[uint64, *sessionEntry](cfg.MaxSessions),
			nextKey:  1,
		}
	}
}

// Receive Method
func (a *SessionManagerActor) Receive(ctx bollywood.Context) {
	defer func() {
		if r := recover(); r != nil {
			logging.Errorf("PANIC recovered in SessionManagerActor %s Receive: %v\nStack trace:\n%s", a.selfPID, r, string(debug.Stack()))
			if ctx.RequestID() != "" {
				ctx.Reply(fmt.Errorf("session manager panicked: %v", r))
			}
		}
	}()

	if a.selfPID == nil {
		a.selfPID = ctx.Self()
	}

	switch msg := ctx.Message().(type) {
	case bollywood.Started:
		logging.Infof("SessionManagerActor %s: Started. Max sessions %d.", a.selfPID, a.cfg.MaxSessions)

	case CreateSessionRequest:
		a.handleCreateSession(ctx, msg.ReplyTo)

	case CloseSessionRequest:
		a.handleCloseSession(msg.ID)

	case GetSessionListRequest:
		a.handleGetSessionList(ctx)

	case bollywood.Stopping:
		logging.Infof("SessionManagerActor %s: Stopping. Shutting down %d sessions.", a.selfPID, a.sessions.Len())
		pidsToStop := make([]*bollywood.PID, 0, a.sessions.Len())
		a.sessions.ForEach(func(_ uint64, entry *sessionEntry) bool {
			pidsToStop = append(pidsToStop, entry.pid)
			return true
		})
		a.sessions.Clear()
		for _, pid := range pidsToStop {
			a.engine.Stop(pid)
		}

	case bollywood.Stopped:
		logging.Infof("SessionManagerActor %s: Stopped.", a.selfPID)

	default:
		logging.Warnf("SessionManagerActor %s: Received unknown message type: %T", a.selfPID, msg)
		if ctx.RequestID() != "" {
			ctx.Reply(fmt.Errorf("unknown message type: %T", msg))
		}
	}
}

// Handler Methods

func (a *SessionManagerActor) handleCreateSession(ctx bollywood.Context, replyTo *bollywood.PID) {
	// Ask callers have no PID; they get the reply through ctx.Reply.
	reply := func(resp SessionAssigned) {
		if ctx.RequestID() != "" {
			ctx.Reply(resp)
			return
		}
		a.engine.Send(replyTo, resp, a.selfPID)
	}
	if replyTo == nil && ctx.RequestID() == "" {
		return
	}

	if a.sessions.Len() >= a.cfg.MaxSessions {
		logging.Warnf("SessionManagerActor %s: Max sessions (%d) reached. Rejecting request from %s.", a.selfPID, a.cfg.MaxSessions, replyTo)
		reply(SessionAssigned{})
		return
	}

	gamePID := a.engine.Spawn(bollywood.NewProps(a.producer()))
	if gamePID == nil {
		logging.Errorf("SessionManagerActor %s: Failed to spawn GameActor. Replying nil to %s.", a.selfPID, replyTo)
		reply(SessionAssigned{})
		return
	}

	entry := &sessionEntry{
		key:       a.nextKey,
		id:        uuid.New().String(),
		pid:       gamePID,
		createdAt: time.Now(),
	}
	a.nextKey++
	a.sessions.Put(entry.key, entry)
	logging.Infof("SessionManagerActor %s: Session %s started on %s (%d active).", a.selfPID, entry.id, gamePID, a.sessions.Len())
	reply(SessionAssigned{ID: entry.id, GamePID: gamePID})
}

func (a *SessionManagerActor) handleCloseSession(id string) {
	var found *sessionEntry
	a.sessions.ForEach(func(_ uint64, entry *sessionEntry) bool {
		if entry.id == id {
			found = entry
			return false
		}
		return true
	})
	if found == nil {
		return // Already removed.
	}
	a.sessions.Del(found.key)
	logging.Infof("SessionManagerActor %s: Session %s closed (%d active).", a.selfPID, id, a.sessions.Len())
	a.engine.Stop(found.pid)
}

func (a *SessionManagerActor) handleGetSessionList(ctx bollywood.Context) {
	entries := make([]*sessionEntry, 0, a.sessions.Len())
	a.sessions.ForEach(func(_ uint64, entry *sessionEntry) bool {
		entries = append(entries, entry)
		return true
	})
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

	response := SessionListResponse{Sessions: make([]SessionInfo, 0, len(entries))}
	for _, entry := range entries {
		response.Sessions = append(response.Sessions, SessionInfo{
			ID:        entry.id,
			GamePID:   entry.pid.String(),
			CreatedAt: entry.createdAt,
		})
	}

	if ctx.RequestID() != "" {
		ctx.Reply(response)
	} else {
		logging.Warnf("SessionManagerActor %s received GetSessionListRequest not via Ask.", a.selfPID)
	}
}
