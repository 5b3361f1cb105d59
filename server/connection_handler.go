package server

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/lguibr/tetris/bollywood"
	"github.com/lguibr/tetris/game"
	"github.com/lguibr/tetris/logging"
	"golang.org/x/net/websocket"
)

// errActorStopping marks cleanup that was started by the Stopping message.
var errActorStopping = errors.New("connection handler actor stopping")

var errReadLoopExited = errors.New("read loop exited")

// ConnectionHandlerActor manages a single WebSocket connection lifecycle:
// it asks for a session, subscribes the connection to the game and turns
// inbound keys into commands.
type ConnectionHandlerActor struct {
	conn              *websocket.Conn
	engine            *bollywood.Engine
	sessionManagerPID *bollywood.PID
	gameActorPID      *bollywood.PID
	sessionID         string
	subscriber        *wsSubscriber
	selfPID           *bollywood.PID
	connAddr          string
	readTimeout       time.Duration
	stopReadLoop      chan struct{}
	readLoopExited    chan struct{}
	readLoopStarted   bool
	done              chan struct{}
	closeOnce         sync.Once
}

// ConnectionHandlerArgs holds arguments for creating the actor.
type ConnectionHandlerArgs struct {
	Conn              *websocket.Conn
	Engine            *bollywood.Engine
	SessionManagerPID *bollywood.PID
	ReadTimeout       time.Duration
	Done              chan struct{} // closed once the actor has stopped
}

// NewConnectionHandlerProducer creates a producer for ConnectionHandlerActor.
func NewConnectionHandlerProducer(args ConnectionHandlerArgs) bollywood.Producer {
	return func() bollywood.Actor {
		addr := "unknown"
		if args.Conn != nil && args.Conn.Request() != nil {
			addr = args.Conn.Request().RemoteAddr
		}
		readTimeout := args.ReadTimeout
		if readTimeout <= 0 {
			readTimeout = 90 * time.Second
		}
		return &ConnectionHandlerActor{
			conn:              args.Conn,
			engine:            args.Engine,
			sessionManagerPID: args.SessionManagerPID,
			connAddr:          addr,
			readTimeout:       readTimeout,
			stopReadLoop:      make(chan struct{}),
			readLoopExited:    make(chan struct{}),
			done:              args.Done,
		}
	}
}

// Receive handles messages for the ConnectionHandlerActor.
func (a *ConnectionHandlerActor) Receive(ctx bollywood.Context) {
	defer func() {
		if r := recover(); r != nil {
			logging.Errorf("PANIC recovered in ConnectionHandlerActor %s Receive: %v\nStack trace:\n%s", a.connAddr, r, string(debug.Stack()))
			a.cleanup(fmt.Errorf("panic in Receive: %v", r))
		}
	}()

	if a.selfPID == nil {
		a.selfPID = ctx.Self()
	}

	switch msg := ctx.Message().(type) {
	case bollywood.Started:
		if a.sessionManagerPID == nil {
			logging.Errorf("ConnectionHandlerActor %s: No SessionManagerPID. Stopping.", a.connAddr)
			a.cleanup(errors.New("missing SessionManagerPID"))
			return
		}
		a.engine.Send(a.sessionManagerPID, game.CreateSessionRequest{ReplyTo: a.selfPID}, a.selfPID)

	case game.SessionAssigned:
		a.handleSessionAssigned(msg)

	case game.KeyMessage:
		if a.gameActorPID == nil {
			return
		}
		if cmd, ok := game.CommandFromKey(msg.Key); ok {
			a.engine.Send(a.gameActorPID, game.CommandMessage{Command: cmd}, a.selfPID)
		} else {
			logging.Debugf("ConnectionHandlerActor %s: Ignoring key %q.", a.connAddr, msg.Key)
		}

	case error:
		if !errors.Is(msg, errReadLoopExited) {
			logging.Warnf("ConnectionHandlerActor %s: %v. Cleaning up.", a.connAddr, msg)
		}
		a.cleanup(msg)

	case bollywood.Stopping:
		a.signalAndWaitForReadLoop()
		a.performCleanupActions(errActorStopping)

	case bollywood.Stopped:
		a.closeOnce.Do(func() {
			if a.done != nil {
				close(a.done)
			}
		})

	default:
		logging.Warnf("ConnectionHandlerActor %s: Received unexpected message type: %T", a.connAddr, msg)
	}
}

func (a *ConnectionHandlerActor) handleSessionAssigned(msg game.SessionAssigned) {
	if a.conn == nil {
		// Connection already gone; give the session back.
		if msg.GamePID != nil {
			a.engine.Send(a.sessionManagerPID, game.CloseSessionRequest{ID: msg.ID}, a.selfPID)
		}
		return
	}
	if msg.GamePID == nil {
		logging.Warnf("ConnectionHandlerActor %s: No session available. Closing connection.", a.connAddr)
		_ = newWSSubscriber("", a.conn).send(game.ErrorMessage{MessageType: "error", Reason: "server full"})
		a.cleanup(errors.New("session assignment failed (nil PID)"))
		return
	}

	a.gameActorPID = msg.GamePID
	a.sessionID = msg.ID
	a.subscriber = newWSSubscriber(msg.ID, a.conn)
	if err := a.subscriber.send(game.SessionInfoMessage{MessageType: "sessionInfo", SessionID: msg.ID}); err != nil {
		a.cleanup(err)
		return
	}
	a.engine.Send(a.gameActorPID, game.Subscribe{Subscriber: a.subscriber}, a.selfPID)

	a.readLoopStarted = true
	go a.readLoop(a.conn, a.engine, a.selfPID)
}

// readLoop decodes inbound key messages and hands them to the actor.
func (a *ConnectionHandlerActor) readLoop(conn *websocket.Conn, engine *bollywood.Engine, selfPID *bollywood.PID) {
	defer func() {
		if r := recover(); r != nil {
			logging.Errorf("PANIC recovered in ConnectionHandlerActor %s readLoop: %v\nStack trace:\n%s", a.connAddr, r, string(debug.Stack()))
		}
		close(a.readLoopExited)
		engine.Send(selfPID, errReadLoopExited, nil)
	}()

	for {
		select {
		case <-a.stopReadLoop:
			return
		default:
		}

		var msg game.KeyMessage
		_ = conn.SetReadDeadline(time.Now().Add(a.readTimeout))
		err := websocket.JSON.Receive(conn, &msg)
		if err != nil {
			select {
			case <-a.stopReadLoop:
			default:
				logging.Debugf("ConnectionHandlerActor %s: Read error: %v. Exiting read loop.", a.connAddr, err)
			}
			return
		}
		engine.Send(selfPID, msg, nil)
	}
}

// signalAndWaitForReadLoop tells the readLoop goroutine to exit and waits for confirmation.
func (a *ConnectionHandlerActor) signalAndWaitForReadLoop() {
	select {
	case <-a.stopReadLoop:
		return
	default:
		close(a.stopReadLoop)
	}

	// Closing the connection unblocks Receive.
	if a.conn != nil {
		_ = a.conn.Close()
	}
	if !a.readLoopStarted {
		return
	}
	select {
	case <-a.readLoopExited:
	case <-time.After(2 * time.Second):
		logging.Warnf("ConnectionHandlerActor %s: Timeout waiting for read loop to exit.", a.connAddr)
	}
}

// cleanup is called when the connection terminates or the session cannot be served.
func (a *ConnectionHandlerActor) cleanup(reason error) {
	a.signalAndWaitForReadLoop()
	a.performCleanupActions(reason)
	if !errors.Is(reason, errActorStopping) && a.engine != nil && a.selfPID != nil {
		a.engine.Stop(a.selfPID)
	}
}

// performCleanupActions releases the session and drops the connection. It is idempotent.
func (a *ConnectionHandlerActor) performCleanupActions(reason error) {
	if a.subscriber != nil {
		a.subscriber.detach()
	}
	if a.gameActorPID != nil && a.engine != nil {
		logging.Infof("ConnectionHandlerActor %s: Releasing session %s (%v).", a.connAddr, a.sessionID, reason)
		a.engine.Send(a.gameActorPID, game.Unsubscribe{ID: a.sessionID}, a.selfPID)
		a.engine.Send(a.sessionManagerPID, game.CloseSessionRequest{ID: a.sessionID}, a.selfPID)
		a.gameActorPID = nil
	}
	if a.conn != nil {
		_ = a.conn.Close()
		a.conn = nil
	}
}
