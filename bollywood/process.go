// File: bollywood/process.go
package bollywood

import (
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/lguibr/tetris/logging"
)

const defaultMailboxSize = 1024

// process represents the running instance of an actor, including its state and mailbox.
type process struct {
	engine   *Engine
	pid      *PID
	actor    Actor
	mailbox  chan *messageEnvelope
	props    *Props
	stopCh   chan struct{} // Signal to stop the run loop
	stopOnce sync.Once
	stopped  atomic.Bool
}

func newProcess(engine *Engine, pid *PID, props *Props) *process {
	return &process{
		engine:  engine,
		pid:     pid,
		props:   props,
		mailbox: make(chan *messageEnvelope, defaultMailboxSize),
		stopCh:  make(chan struct{}),
	}
}

func (p *process) closeStop() {
	p.stopOnce.Do(func() { close(p.stopCh) })
}

// sendEnvelope puts a message into the actor's mailbox without blocking the sender.
func (p *process) sendEnvelope(envelope *messageEnvelope) {
	if p.stopped.Load() && !isSystemMessage(envelope.Message) {
		return
	}

	select {
	case p.mailbox <- envelope:
	default:
		logging.Warnf("Actor %s mailbox full, dropping message type %T", p.pid, envelope.Message)
	}
}

// run is the main loop for the actor process.
func (p *process) run() {
	var stoppingInvoked bool

	// Defer final cleanup and Stopped message
	defer func() {
		p.stopped.Store(true)
		defer func() {
			if r := recover(); r != nil {
				logging.Errorf("Actor %s panicked during Stopped processing: %v", p.pid, r)
			}
			p.engine.remove(p.pid)
		}()
		if p.actor != nil {
			if !stoppingInvoked {
				p.invokeReceive(&messageEnvelope{Message: Stopping{}})
			}
			p.invokeReceive(&messageEnvelope{Message: Stopped{}})
		}
	}()

	// Defer panic recovery for the main loop and actor initialization
	defer func() {
		if r := recover(); r != nil {
			logging.Errorf("Actor %s panicked: %v\nStack trace:\n%s", p.pid, r, string(debug.Stack()))
			p.closeStop()
		}
	}()

	p.actor = p.props.Produce()
	if p.actor == nil {
		panic("bollywood: producer returned nil actor for " + p.pid.ID)
	}

	for {
		select {
		case <-p.stopCh:
			if p.stopped.CompareAndSwap(false, true) && !stoppingInvoked {
				p.invokeReceive(&messageEnvelope{Message: Stopping{}})
				stoppingInvoked = true
			}
			return

		case envelope := <-p.mailbox:
			switch envelope.Message.(type) {
			case Stopping:
				if !stoppingInvoked {
					p.invokeReceive(envelope)
					stoppingInvoked = true
				}
				p.stopped.Store(true)
				p.closeStop()
			case Stopped:
				logging.Warnf("Actor %s received unexpected Stopped message via mailbox.", p.pid)
			default:
				if p.stopped.Load() {
					continue
				}
				p.invokeReceive(envelope)
			}
		}
	}
}

// invokeReceive calls the actor's Receive method within a protected context.
func (p *process) invokeReceive(envelope *messageEnvelope) {
	ctx := &context{
		engine:    p.engine,
		self:      p.pid,
		sender:    envelope.Sender,
		message:   envelope.Message,
		requestID: envelope.RequestID,
		replyCh:   envelope.replyCh,
	}

	defer func() {
		if r := recover(); r != nil {
			logging.Errorf("Actor %s panicked during Receive(%T): %v\nStack trace:\n%s", p.pid, envelope.Message, r, string(debug.Stack()))
		}
	}()
	p.actor.Receive(ctx)
}
