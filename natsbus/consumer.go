package natsbus

import (
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"

	"github.com/xinjiayu/rxbridge"
)

// Consumer receives the messages sent to one address.
//
// Consumer implements rxbridge.PushSource[*Message].
type Consumer struct {
	bus     *Bus
	address string
	slots   rxbridge.HandlerSlots[*Message]

	mu  sync.Mutex
	sub *nats.Subscription
}

var _ rxbridge.PushSource[*Message] = (*Consumer)(nil)

// Address returns the address the consumer listens on.
func (c *Consumer) Address() string {
	return c.address
}

// Handler sets the message handler. A non-nil handler registers the consumer;
// nil unregisters it. Registration failures go to the exception handler.
func (c *Consumer) Handler(handler func(*Message)) {
	c.slots.Handler(handler)

	if handler == nil {
		if err := c.Unregister(); err != nil {
			c.bus.logger.Warn("consumer unregister failed", "address", c.address, "error", err)
		}
		return
	}

	if err := c.register(); err != nil {
		c.bus.logger.Error("consumer registration failed", "address", c.address, "error", err)
		c.slots.Fail(err)
	}
}

// ExceptionHandler sets the handler for registration and delivery failures.
func (c *Consumer) ExceptionHandler(handler func(error)) {
	c.slots.ExceptionHandler(handler)
}

// EndHandler sets the handler called once the consumer is unregistered.
func (c *Consumer) EndHandler(handler func()) {
	c.slots.EndHandler(handler)
}

// IsRegistered reports whether the NATS subscription is live.
func (c *Consumer) IsRegistered() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sub != nil && c.sub.IsValid()
}

// Unregister removes the subscription and fires the end handler. Calling it
// on an unregistered consumer does nothing.
func (c *Consumer) Unregister() error {
	c.mu.Lock()
	sub := c.sub
	c.sub = nil
	c.mu.Unlock()

	if sub == nil {
		return nil
	}

	err := sub.Unsubscribe()
	c.bus.logger.Debug("consumer unregistered", "address", c.address)
	c.slots.End()

	if err != nil {
		return fmt.Errorf("unregister consumer on %q: %w", c.address, err)
	}
	return nil
}

func (c *Consumer) register() error {
	if c.address == "" {
		return &rxbridge.UsageError{Op: "register", Err: ErrAddressRequired}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sub != nil {
		return nil
	}

	deliver := func(m *nats.Msg) {
		c.slots.Emit(newMessage(m))
	}

	var (
		sub *nats.Subscription
		err error
	)
	if c.bus.cfg.Broadcast {
		sub, err = c.bus.nc.Subscribe(c.address, deliver)
	} else {
		sub, err = c.bus.nc.QueueSubscribe(c.address, c.bus.cfg.QueueGroup, deliver)
	}
	if err != nil {
		return fmt.Errorf("register consumer on %q: %w", c.address, err)
	}

	// Make sure the server knows about the interest before returning, so that
	// messages sent after registration are not lost.
	if err := c.bus.nc.Flush(); err != nil {
		c.bus.logger.Warn("flush after registration failed", "address", c.address, "error", err)
	}

	c.sub = sub
	c.bus.logger.Debug("consumer registered", "address", c.address, "queue", c.bus.cfg.QueueGroup)
	return nil
}

// BodyStream adapts the consumer to a push source of message bodies.
func (c *Consumer) BodyStream() rxbridge.PushSource[[]byte] {
	return &bodyStream{consumer: c}
}

type bodyStream struct {
	consumer *Consumer
}

func (b *bodyStream) Handler(handler func([]byte)) {
	if handler == nil {
		b.consumer.Handler(nil)
		return
	}
	b.consumer.Handler(func(m *Message) {
		handler(m.Body)
	})
}

func (b *bodyStream) ExceptionHandler(handler func(error)) {
	b.consumer.ExceptionHandler(handler)
}

func (b *bodyStream) EndHandler(handler func()) {
	b.consumer.EndHandler(handler)
}
