package natsbus

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/xinjiayu/rxbridge"
	"github.com/xinjiayu/rxbridge/internal/logging"
	"github.com/xinjiayu/rxbridge/internal/metrics"
	"github.com/xinjiayu/rxbridge/types"
)

// Bus sends messages and registers consumers over a NATS connection.
//
// The connection is owned by the caller; the bus never closes it.
type Bus struct {
	nc      *nats.Conn
	cfg     Config
	logger  types.Logger
	metrics types.MetricsCollector
}

// New creates a bus on top of an established NATS connection.
func New(nc *nats.Conn, opts ...Option) (*Bus, error) {
	if nc == nil {
		return nil, ErrConnectionRequired
	}

	b := &Bus{
		nc:      nc,
		cfg:     DefaultConfig(),
		logger:  logging.NewNop(),
		metrics: metrics.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	b.cfg.SetDefaults()

	return b, nil
}

// Config returns the effective configuration.
func (b *Bus) Config() Config {
	return b.cfg
}

// Publish sends body to address without waiting for a reply.
func (b *Bus) Publish(address string, body []byte) error {
	if address == "" {
		return &rxbridge.UsageError{Op: "publish", Err: ErrAddressRequired}
	}
	if err := b.nc.Publish(address, body); err != nil {
		return fmt.Errorf("publish to %q: %w", address, err)
	}

	return nil
}

// Send delivers body to one consumer of address.
//
// With a nil reply the message is sent fire-and-forget. Otherwise the reply,
// or the failure (timeout, no responders, closed connection), is handed to
// reply exactly once from a separate goroutine.
func (b *Bus) Send(address string, body []byte, opts DeliveryOptions, reply rxbridge.Callback[*Message]) error {
	return b.send(context.Background(), address, body, opts, reply)
}

func (b *Bus) send(ctx context.Context, address string, body []byte, opts DeliveryOptions, reply rxbridge.Callback[*Message]) error {
	if address == "" {
		return &rxbridge.UsageError{Op: "send", Err: ErrAddressRequired}
	}

	msg := nats.NewMsg(address)
	msg.Data = body
	for k, v := range opts.Headers {
		msg.Header.Set(k, v)
	}

	if reply == nil {
		if err := b.nc.PublishMsg(msg); err != nil {
			return fmt.Errorf("send to %q: %w", address, err)
		}
		return nil
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = b.cfg.RequestTimeout
	}

	go func() {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		resp, err := b.nc.RequestMsgWithContext(ctx, msg)
		if err != nil {
			b.logger.Debug("request failed", "address", address, "error", err)
			reply(nil, fmt.Errorf("request to %q: %w", address, err))
			return
		}
		reply(newMessage(resp), nil)
	}()

	return nil
}

// Request returns a cold observable: every subscription sends one request to
// address and yields the reply followed by completion, or the failure.
// Disposing the subscription abandons the pending request.
func (b *Bus) Request(address string, body []byte, opts DeliveryOptions) *rxbridge.Observable[*Message] {
	return rxbridge.Create(func(observer rxbridge.Observer[*Message]) (rxbridge.TeardownFunc, error) {
		ctx, cancel := context.WithCancel(context.Background())
		if err := b.send(ctx, address, body, opts, rxbridge.ToCallback(observer)); err != nil {
			cancel()
			return nil, err
		}
		return rxbridge.TeardownFunc(cancel), nil
	}, b.observableOptions("request:"+address)...)
}

// Consumer returns an unregistered consumer for address. It registers once an
// item handler is set.
func (b *Bus) Consumer(address string) *Consumer {
	return &Consumer{bus: b, address: address}
}

// Observe registers a consumer on address and adapts it to an observable. The
// consumer is unregistered when the subscription is disposed.
func (b *Bus) Observe(address string) (*Consumer, *rxbridge.Observable[*Message]) {
	consumer := b.Consumer(address)
	return consumer, rxbridge.ToObservable[*Message](consumer, b.observableOptions(address)...)
}

func (b *Bus) observableOptions(name string) []rxbridge.Option {
	return []rxbridge.Option{
		rxbridge.WithName(name),
		rxbridge.WithLogger(b.logger),
		rxbridge.WithMetrics(b.metrics),
	}
}
