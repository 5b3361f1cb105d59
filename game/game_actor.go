// File: game/game_actor.go
package game

import (
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/lguibr/tetris/bollywood"
	"github.com/lguibr/tetris/logging"
	"github.com/lguibr/tetris/utils"
)

// GameActor owns one Engine. Its mailbox serializes commands and ticks, so
// the engine only ever sees one caller at a time.
type GameActor struct {
	cfg     utils.Config
	engine  *bollywood.Engine
	game    *Engine
	selfPID *bollywood.PID

	subscribers map[string]Subscriber

	tickerMu     sync.Mutex
	ticker       *time.Ticker
	tickPeriod   time.Duration
	stopTickerCh chan struct{}
}

// NewGameActorProducer creates a producer for the GameActor. A nil factory
// draws shapes from cfg.PieceSeed.
func NewGameActorProducer(engine *bollywood.Engine, cfg utils.Config, factory *PieceFactory) bollywood.Producer {
	return func() bollywood.Actor {
		return &GameActor{
			cfg:          cfg,
			engine:       engine,
			game:         NewEngine(cfg, factory),
			subscribers:  make(map[string]Subscriber),
			stopTickerCh: make(chan struct{}),
		}
	}
}

// Receive is the main message handler for the GameActor.
func (a *GameActor) Receive(ctx bollywood.Context) {
	defer func() {
		if r := recover(); r != nil {
			logging.Errorf("PANIC recovered in GameActor %s Receive: %v\nStack trace:\n%s", a.selfPID, r, string(debug.Stack()))
			if ctx.RequestID() != "" {
				ctx.Reply(fmt.Errorf("game actor panicked: %v", r))
			}
		}
	}()

	if a.selfPID == nil {
		a.selfPID = ctx.Self()
	}

	switch msg := ctx.Message().(type) {
	case bollywood.Started:
		logging.Infof("GameActor %s: Started.", a.selfPID)
		a.startTicker()

	case GameTick:
		if a.game.RunState() != Running {
			return
		}
		a.game.Tick()
		a.afterChange()

	case CommandMessage:
		logging.Debugf("GameActor %s: Command %s.", a.selfPID, msg.Command)
		a.game.Apply(msg.Command)
		a.afterChange()

	case Subscribe:
		a.handleSubscribe(msg.Subscriber)

	case Unsubscribe:
		if _, ok := a.subscribers[msg.ID]; ok {
			delete(a.subscribers, msg.ID)
			logging.Infof("GameActor %s: Subscriber %s removed.", a.selfPID, msg.ID)
		}

	case GetStateRequest:
		if ctx.RequestID() != "" {
			ctx.Reply(a.game.Snapshot())
		} else {
			logging.Warnf("GameActor %s received GetStateRequest not via Ask.", a.selfPID)
		}

	case bollywood.Stopping:
		logging.Infof("GameActor %s: Stopping. Final score %d.", a.selfPID, a.game.Score())
		a.stopTicker()
		a.subscribers = make(map[string]Subscriber)

	case bollywood.Stopped:
		logging.Infof("GameActor %s: Stopped.", a.selfPID)

	default:
		logging.Warnf("GameActor %s: Received unknown message type: %T", a.selfPID, msg)
		if ctx.RequestID() != "" {
			ctx.Reply(fmt.Errorf("unknown message type: %T", msg))
		}
	}
}

// afterChange re-arms the ticker for the current speed and broadcasts.
func (a *GameActor) afterChange() {
	a.rearmTicker(a.game.TickPeriod())
	a.broadcastGameState()
}

// startTicker sends GameTick to the actor's own mailbox at the engine's tick period.
func (a *GameActor) startTicker() {
	a.tickerMu.Lock()
	defer a.tickerMu.Unlock()
	if a.ticker != nil {
		return
	}

	a.tickPeriod = a.game.TickPeriod()
	a.ticker = time.NewTicker(a.tickPeriod)
	tickerCh := a.ticker.C
	stopCh := a.stopTickerCh
	engine, self := a.engine, a.selfPID

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logging.Errorf("PANIC recovered in GameActor %s Ticker: %v", self, r)
			}
		}()
		for {
			select {
			case <-stopCh:
				return
			case <-tickerCh:
				engine.Send(self, GameTick{}, nil)
			}
		}
	}()
}

func (a *GameActor) rearmTicker(period time.Duration) {
	a.tickerMu.Lock()
	defer a.tickerMu.Unlock()
	if a.ticker == nil || period == a.tickPeriod {
		return
	}
	logging.Debugf("GameActor %s: Tick period %v -> %v.", a.selfPID, a.tickPeriod, period)
	a.tickPeriod = period
	a.ticker.Reset(period)
}

func (a *GameActor) stopTicker() {
	a.tickerMu.Lock()
	defer a.tickerMu.Unlock()
	if a.ticker == nil {
		return
	}
	a.ticker.Stop()
	select {
	case <-a.stopTickerCh:
	default:
		close(a.stopTickerCh)
	}
	a.ticker = nil
}
