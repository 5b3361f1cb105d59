package bollywood

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lguibr/tetris/logging"
)

// ErrAskTimeout is returned by Ask when the target does not reply in time.
var ErrAskTimeout = errors.New("bollywood: ask timed out")

// ErrActorNotFound is returned by Ask when the PID is unknown to the engine.
var ErrActorNotFound = errors.New("bollywood: actor not found")

// Engine manages the lifecycle and message dispatching for actors.
type Engine struct {
	pidCounter uint64
	reqCounter uint64
	actors     map[string]*process
	mu         sync.RWMutex // Protects the actors map
	stopping   atomic.Bool  // Indicates if the engine is shutting down
}

// NewEngine creates a new actor engine.
func NewEngine() *Engine {
	return &Engine{
		actors: make(map[string]*process),
	}
}

// nextPID generates a unique process ID.
func (e *Engine) nextPID() *PID {
	id := atomic.AddUint64(&e.pidCounter, 1)
	return &PID{ID: fmt.Sprintf("actor-%d", id)}
}

// Spawn creates and starts a new actor based on the provided Props.
// It returns the PID of the newly created actor.
func (e *Engine) Spawn(props *Props) *PID {
	if e.stopping.Load() {
		logging.Warnf("Engine is stopping, cannot spawn new actors")
		return nil
	}

	pid := e.nextPID()
	proc := newProcess(e, pid, props)

	e.mu.Lock()
	e.actors[pid.ID] = proc
	e.mu.Unlock()

	go proc.run()

	e.Send(pid, Started{}, nil)

	return pid
}

// Send delivers a message to the actor identified by the PID.
// sender can be nil if the message originates from outside the actor system.
func (e *Engine) Send(pid *PID, message interface{}, sender *PID) {
	if pid == nil {
		return
	}
	if e.stopping.Load() && !isSystemMessage(message) {
		return
	}

	e.mu.RLock()
	proc, ok := e.actors[pid.ID]
	e.mu.RUnlock()

	if ok {
		proc.sendEnvelope(&messageEnvelope{Sender: sender, Message: message})
	}
}

// Ask sends a message and waits for the actor to call ctx.Reply.
func (e *Engine) Ask(pid *PID, message interface{}, timeout time.Duration) (interface{}, error) {
	if pid == nil {
		return nil, ErrActorNotFound
	}
	e.mu.RLock()
	proc, ok := e.actors[pid.ID]
	e.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("ask %s: %w", pid, ErrActorNotFound)
	}

	replyCh := make(chan interface{}, 1)
	reqID := fmt.Sprintf("req-%d", atomic.AddUint64(&e.reqCounter, 1))
	proc.sendEnvelope(&messageEnvelope{Message: message, RequestID: reqID, replyCh: replyCh})

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case reply := <-replyCh:
		if err, isErr := reply.(error); isErr {
			return nil, err
		}
		return reply, nil
	case <-timer.C:
		return nil, fmt.Errorf("ask %s (%T): %w", pid, message, ErrAskTimeout)
	}
}

// Stop requests an actor to stop processing messages and shut down.
// The actor will process a Stopping message, followed by a Stopped message
// after its goroutine exits.
func (e *Engine) Stop(pid *PID) {
	if pid == nil {
		return
	}
	e.mu.RLock()
	proc, ok := e.actors[pid.ID]
	e.mu.RUnlock()

	if ok {
		e.Send(pid, Stopping{}, nil)
		// Guarantees termination even when the mailbox is full.
		proc.closeStop()
	}
}

// remove removes an actor process from the engine's tracking.
// This is called internally by the process when it fully stops.
func (e *Engine) remove(pid *PID) {
	e.mu.Lock()
	delete(e.actors, pid.ID)
	e.mu.Unlock()
}

// ActorCount reports how many actors are still registered.
func (e *Engine) ActorCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.actors)
}

// Shutdown stops all actors and waits for them to terminate gracefully.
func (e *Engine) Shutdown(timeout time.Duration) {
	if !e.stopping.CompareAndSwap(false, true) {
		logging.Warnf("Engine already shutting down")
		return
	}
	logging.Infof("Engine shutdown initiated...")

	e.mu.RLock()
	pidsToStop := make([]*PID, 0, len(e.actors))
	for _, proc := range e.actors {
		pidsToStop = append(pidsToStop, proc.pid)
	}
	e.mu.RUnlock()

	logging.Debugf("Stopping %d actors...", len(pidsToStop))
	for _, pid := range pidsToStop {
		e.Stop(pid)
	}

	// Wait for actors to be removed (simple polling)
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if e.ActorCount() == 0 {
			logging.Debugf("All actors stopped.")
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	e.mu.Lock()
	if remaining := len(e.actors); remaining > 0 {
		remainingActors := make([]string, 0, remaining)
		for pidStr := range e.actors {
			remainingActors = append(remainingActors, pidStr)
		}
		logging.Warnf("Engine shutdown timeout: %d actors did not stop gracefully: %v", remaining, remainingActors)
		e.actors = make(map[string]*process)
	}
	e.mu.Unlock()

	logging.Infof("Engine shutdown complete.")
}
