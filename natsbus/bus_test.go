package natsbus

import (
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xinjiayu/rxbridge"
)

const waitFor = 5 * time.Second

func TestNew(t *testing.T) {
	t.Run("nil connection", func(t *testing.T) {
		_, err := New(nil)
		require.ErrorIs(t, err, ErrConnectionRequired)
	})

	t.Run("defaults", func(t *testing.T) {
		bus := newTestBus(t, WithConfig(Config{QueueGroup: "billing"}))
		cfg := bus.Config()
		assert.Equal(t, "billing", cfg.QueueGroup)
		assert.Equal(t, defaultRequestTimeout, cfg.RequestTimeout)
	})
}

func TestBus_ObserveConsumer(t *testing.T) {
	t.Run("message then unregister completes once", func(t *testing.T) {
		bus := newTestBus(t)
		consumer, obs := bus.Observe("X")

		rec := &recorder[*Message]{}
		sub, err := obs.Subscribe(rec)
		require.NoError(t, err)
		require.True(t, consumer.IsRegistered())

		require.NoError(t, bus.Publish("X", []byte("m1")))
		require.Eventually(t, func() bool { return len(rec.Items()) == 1 }, waitFor, 10*time.Millisecond)
		assert.Equal(t, "m1", string(rec.Items()[0].Body))
		assert.Equal(t, "X", rec.Items()[0].Address)

		require.NoError(t, consumer.Unregister())
		assert.Equal(t, 1, rec.Completions())
		assert.Empty(t, rec.Errors())
		assert.Equal(t, rxbridge.StateCompleted, sub.State())
		assert.False(t, consumer.IsRegistered())

		// a second unregister is a no-op
		require.NoError(t, consumer.Unregister())
		assert.Equal(t, 1, rec.Completions())
	})

	t.Run("dispose unregisters the consumer", func(t *testing.T) {
		bus := newTestBus(t)
		consumer, obs := bus.Observe("orders")

		rec := &recorder[*Message]{}
		sub, err := obs.Subscribe(rec)
		require.NoError(t, err)
		require.True(t, consumer.IsRegistered())

		sub.Unsubscribe()
		sub.Unsubscribe()

		assert.False(t, consumer.IsRegistered())
		assert.Equal(t, rxbridge.StateDisposed, sub.State())

		require.NoError(t, bus.Publish("orders", []byte("late")))
		require.NoError(t, bus.nc.Flush())
		time.Sleep(50 * time.Millisecond)
		assert.Empty(t, rec.Items())
		assert.Zero(t, rec.Completions())
	})

	t.Run("second subscription is rejected", func(t *testing.T) {
		bus := newTestBus(t)
		_, obs := bus.Observe("orders")

		sub, err := obs.Subscribe(&recorder[*Message]{})
		require.NoError(t, err)
		defer sub.Unsubscribe()

		_, err = obs.Subscribe(&recorder[*Message]{})
		require.ErrorIs(t, err, rxbridge.ErrAlreadySubscribed)

		var usage *rxbridge.UsageError
		require.ErrorAs(t, err, &usage)
	})

	t.Run("empty address fails the subscription", func(t *testing.T) {
		bus := newTestBus(t)
		_, obs := bus.Observe("")

		rec := &recorder[*Message]{}
		sub, err := obs.Subscribe(rec)
		require.NoError(t, err)

		require.Len(t, rec.Errors(), 1)
		assert.ErrorIs(t, rec.Errors()[0], ErrAddressRequired)
		assert.Equal(t, rxbridge.StateErrored, sub.State())
	})
}

func TestBus_BodyStream(t *testing.T) {
	bus := newTestBus(t)
	consumer := bus.Consumer("ticks")

	rec := &recorder[string]{}
	bodies := rxbridge.ToObservable(consumer.BodyStream(), rxbridge.WithName("ticks"))
	texts := rxbridge.Map(bodies, func(b []byte) (string, error) { return string(b), nil })
	_, err := texts.Take(3).Subscribe(rec)
	require.NoError(t, err)

	for _, body := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, bus.Publish("ticks", []byte(body)))
	}

	require.Eventually(t, func() bool { return rec.Completions() == 1 }, waitFor, 10*time.Millisecond)
	assert.Equal(t, []string{"a", "b", "c"}, rec.Items())
	require.Eventually(t, func() bool { return !consumer.IsRegistered() }, waitFor, 10*time.Millisecond)
}

func TestBus_Send(t *testing.T) {
	t.Run("reply through ToCallback", func(t *testing.T) {
		bus := newTestBus(t)
		echo := bus.Consumer("ping")
		echo.Handler(func(m *Message) {
			_ = m.Reply([]byte("pong:" + string(m.Body) + ":" + m.Header.Get("Trace-Id")))
		})
		t.Cleanup(func() { _ = echo.Unregister() })

		rec := &recorder[*Message]{}
		opts := DeliveryOptions{Headers: map[string]string{"Trace-Id": "42"}}
		require.NoError(t, bus.Send("ping", []byte("hi"), opts, rxbridge.ToCallback[*Message](rec)))

		require.Eventually(t, func() bool { return rec.Completions() == 1 }, waitFor, 10*time.Millisecond)
		require.Len(t, rec.Items(), 1)
		assert.Equal(t, "pong:hi:42", string(rec.Items()[0].Body))
		assert.Empty(t, rec.Errors())
	})

	t.Run("reply through observable callback", func(t *testing.T) {
		bus := newTestBus(t)
		echo := bus.Consumer("ping")
		echo.Handler(func(m *Message) { _ = m.Reply([]byte("pong")) })
		t.Cleanup(func() { _ = echo.Unregister() })

		cb := rxbridge.ObservableCallback[*Message]()
		rec := &recorder[*Message]{}
		_, err := cb.Subscribe(rec)
		require.NoError(t, err)

		require.NoError(t, bus.Send("ping", nil, DeliveryOptions{}, cb.AsCallback()))

		require.Eventually(t, func() bool { return rec.Completions() == 1 }, waitFor, 10*time.Millisecond)
		require.Len(t, rec.Items(), 1)
		assert.Equal(t, "pong", string(rec.Items()[0].Body))
	})

	t.Run("no responders is delivered as error", func(t *testing.T) {
		bus := newTestBus(t)

		rec := &recorder[*Message]{}
		require.NoError(t, bus.Send("nobody", []byte("hi"), DeliveryOptions{Timeout: time.Second}, rxbridge.ToCallback[*Message](rec)))

		require.Eventually(t, func() bool { return len(rec.Errors()) == 1 }, waitFor, 10*time.Millisecond)
		assert.True(t, errors.Is(rec.Errors()[0], nats.ErrNoResponders))
		assert.Empty(t, rec.Items())
		assert.Zero(t, rec.Completions())
	})

	t.Run("fire and forget", func(t *testing.T) {
		bus := newTestBus(t)
		consumer, obs := bus.Observe("audit")
		rec := &recorder[*Message]{}
		_, err := obs.Subscribe(rec)
		require.NoError(t, err)
		t.Cleanup(func() { _ = consumer.Unregister() })

		require.NoError(t, bus.Send("audit", []byte("entry"), DeliveryOptions{}, nil))
		require.Eventually(t, func() bool { return len(rec.Items()) == 1 }, waitFor, 10*time.Millisecond)
		assert.Equal(t, "", rec.Items()[0].ReplyAddress())
		assert.ErrorIs(t, rec.Items()[0].Reply([]byte("x")), ErrNoReplyAddress)
	})

	t.Run("empty address", func(t *testing.T) {
		bus := newTestBus(t)
		err := bus.Send("", nil, DeliveryOptions{}, nil)
		require.ErrorIs(t, err, ErrAddressRequired)
		require.ErrorIs(t, bus.Publish("", nil), ErrAddressRequired)
	})
}

func TestBus_Request(t *testing.T) {
	t.Run("each subscription sends one request", func(t *testing.T) {
		bus := newTestBus(t)
		echo := bus.Consumer("time")
		echo.Handler(func(m *Message) { _ = m.Reply([]byte("now")) })
		t.Cleanup(func() { _ = echo.Unregister() })

		req := bus.Request("time", nil, DeliveryOptions{})
		for i := 0; i < 2; i++ {
			rec := &recorder[*Message]{}
			_, err := req.Subscribe(rec)
			require.NoError(t, err)
			require.Eventually(t, func() bool { return rec.Completions() == 1 }, waitFor, 10*time.Millisecond)
			require.Len(t, rec.Items(), 1)
			assert.Equal(t, "now", string(rec.Items()[0].Body))
		}
	})

	t.Run("dispose abandons the request", func(t *testing.T) {
		bus := newTestBus(t)
		received := make(chan struct{}, 1)
		slow := bus.Consumer("slow")
		slow.Handler(func(m *Message) { received <- struct{}{} })
		t.Cleanup(func() { _ = slow.Unregister() })

		rec := &recorder[*Message]{}
		sub, err := bus.Request("slow", nil, DeliveryOptions{Timeout: 10 * time.Second}).Subscribe(rec)
		require.NoError(t, err)

		select {
		case <-received:
		case <-time.After(waitFor):
			t.Fatal("request never reached the consumer")
		}
		sub.Unsubscribe()

		time.Sleep(50 * time.Millisecond)
		assert.Empty(t, rec.Items())
		assert.Empty(t, rec.Errors())
		assert.Zero(t, rec.Completions())
	})

	t.Run("empty address fails synchronously", func(t *testing.T) {
		bus := newTestBus(t)
		_, err := bus.Request("", nil, DeliveryOptions{}).Subscribe(&recorder[*Message]{})
		require.ErrorIs(t, err, ErrAddressRequired)
	})
}
