// File: game/game_actor_broadcast.go
package game

import (
	"github.com/lguibr/tetris/logging"
)

// Subscriber receives a GameState after every change. SendState is called
// from the GameActor's goroutine; an error unsubscribes it.
type Subscriber interface {
	ID() string
	SendState(state GameState) error
}

func (a *GameActor) handleSubscribe(sub Subscriber) {
	if sub == nil {
		return
	}
	a.subscribers[sub.ID()] = sub
	logging.Infof("GameActor %s: Subscriber %s added (%d total).", a.selfPID, sub.ID(), len(a.subscribers))
	if err := sub.SendState(a.game.Snapshot()); err != nil {
		logging.Warnf("GameActor %s: Initial state to %s failed: %v", a.selfPID, sub.ID(), err)
		delete(a.subscribers, sub.ID())
	}
}

// broadcastGameState sends the current snapshot to every subscriber.
func (a *GameActor) broadcastGameState() {
	if len(a.subscribers) == 0 {
		return
	}
	state := a.game.Snapshot()
	for id, sub := range a.subscribers {
		if err := sub.SendState(state); err != nil {
			logging.Warnf("GameActor %s: Dropping subscriber %s: %v", a.selfPID, id, err)
			delete(a.subscribers, id)
		}
	}
}

// ChannelSubscriber hands states to an in-process consumer. When the
// consumer falls behind, the oldest pending state is replaced by the newest.
type ChannelSubscriber struct {
	id string
	ch chan GameState
}

func NewChannelSubscriber(id string, buffer int) *ChannelSubscriber {
	if buffer < 1 {
		buffer = 1
	}
	return &ChannelSubscriber{id: id, ch: make(chan GameState, buffer)}
}

func (s *ChannelSubscriber) ID() string { return s.id }

func (s *ChannelSubscriber) SendState(state GameState) error {
	for {
		select {
		case s.ch <- state:
			return nil
		default:
		}
		select {
		case <-s.ch:
		default:
		}
	}
}

// States is never closed.
func (s *ChannelSubscriber) States() <-chan GameState { return s.ch }
