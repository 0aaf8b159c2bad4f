// Package wsstream exposes a WebSocket connection as a push source of frames.
package wsstream

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"golang.org/x/net/websocket"

	"github.com/xinjiayu/rxbridge"
	"github.com/xinjiayu/rxbridge/internal/logging"
	"github.com/xinjiayu/rxbridge/types"
)

// ErrClosed is returned when writing to a closed stream.
var ErrClosed = errors.New("websocket stream closed")

// Option configures a Stream.
type Option func(*Stream)

// WithLogger sets the stream logger.
func WithLogger(logger types.Logger) Option {
	return func(s *Stream) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Stream reads frames from a WebSocket connection and pushes them to its
// handlers. Reading starts when the first item handler is set.
//
// A clean close by the peer, or a local Close, fires the end handler. Any
// other read failure goes to the exception handler. Either way the pump stops.
type Stream struct {
	conn   *websocket.Conn
	slots  rxbridge.HandlerSlots[[]byte]
	logger types.Logger

	start   sync.Once
	closed  atomic.Bool
	done    chan struct{}
	writeMu sync.Mutex
}

var _ rxbridge.PushSource[[]byte] = (*Stream)(nil)

// New wraps conn. The stream owns the connection from now on.
func New(conn *websocket.Conn, opts ...Option) *Stream {
	s := &Stream{
		conn:   conn,
		logger: logging.NewNop(),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Handler sets the frame handler and starts the read pump on first use.
func (s *Stream) Handler(handler func([]byte)) {
	s.slots.Handler(handler)
	if handler != nil {
		s.start.Do(func() {
			go s.pump()
		})
	}
}

// ExceptionHandler sets the read failure handler.
func (s *Stream) ExceptionHandler(handler func(error)) {
	s.slots.ExceptionHandler(handler)
}

// EndHandler sets the handler fired when the connection ends.
func (s *Stream) EndHandler(handler func()) {
	s.slots.EndHandler(handler)
}

// Done is closed once the read pump has stopped.
func (s *Stream) Done() <-chan struct{} {
	return s.done
}

// Write sends one binary frame.
func (s *Stream) Write(frame []byte) error {
	if s.closed.Load() {
		return ErrClosed
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := websocket.Message.Send(s.conn, frame); err != nil {
		return fmt.Errorf("write websocket frame: %w", err)
	}
	return nil
}

// Close closes the connection. Closing twice is a no-op.
func (s *Stream) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.conn.Close()
}

func (s *Stream) pump() {
	defer close(s.done)

	for {
		var frame []byte
		err := websocket.Message.Receive(s.conn, &frame)
		if err == nil {
			s.slots.Emit(frame)
			continue
		}

		if errors.Is(err, io.EOF) || s.closed.Load() {
			s.logger.Debug("websocket stream ended", "remote", s.remote())
			s.slots.End()
			return
		}

		s.logger.Warn("websocket read failed", "remote", s.remote(), "error", err)
		s.slots.Fail(fmt.Errorf("read websocket frame: %w", err))
		return
	}
}

func (s *Stream) remote() string {
	if addr := s.conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}
