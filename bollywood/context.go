package bollywood

// Context provides information and capabilities to an Actor during message processing.
type Context interface {
	// Engine returns the Actor Engine managing this actor.
	Engine() *Engine
	// Self returns the PID of the actor processing the message.
	Self() *PID
	// Sender returns the PID of the actor that sent the message, if available.
	Sender() *PID
	// Message returns the actual message being processed.
	Message() interface{}
	// RequestID is non-empty when the message was delivered through Engine.Ask.
	RequestID() string
	// Reply answers an Ask. It is a no-op for plain Send messages and after the first reply.
	Reply(response interface{})
}

// context implements the Context interface.
type context struct {
	engine    *Engine
	self      *PID
	sender    *PID
	message   interface{}
	requestID string
	replyCh   chan interface{}
}

func (c *context) Engine() *Engine      { return c.engine }
func (c *context) Self() *PID           { return c.self }
func (c *context) Sender() *PID         { return c.sender }
func (c *context) Message() interface{} { return c.message }
func (c *context) RequestID() string    { return c.requestID }

func (c *context) Reply(response interface{}) {
	if c.replyCh == nil {
		return
	}
	select {
	case c.replyCh <- response:
	default:
	}
	c.replyCh = nil
}
