package rxbridge

import (
	"sync"
	"sync/atomic"

	"github.com/xinjiayu/rxbridge/types"
)

// subscriber 包装观察者并维护订阅状态机
//
// Unsubscribed -> Active -> {Completed, Errored, Disposed}，终止状态不可离开。
// 进入终止状态后释放函数只执行一次。
type subscriber[T any] struct {
	observer Observer[T]
	config   *Config
	state    atomic.Int32

	mu       sync.Mutex
	teardown TeardownFunc
}

func newSubscriber[T any](observer Observer[T], config *Config) *subscriber[T] {
	return &subscriber[T]{observer: observer, config: config}
}

// OnNext 仅在Active状态下转发
func (s *subscriber[T]) OnNext(value T) {
	if s.State() != StateActive {
		return
	}
	s.config.Metrics.RecordEvent(s.config.Name, types.EventNext)
	s.observer.OnNext(value)
}

// OnError 进入Errored状态并转发错误
func (s *subscriber[T]) OnError(err error) {
	if !s.state.CompareAndSwap(int32(StateActive), int32(StateErrored)) {
		return
	}
	s.config.Metrics.RecordEvent(s.config.Name, types.EventError)
	s.observer.OnError(err)
	s.release()
}

// OnCompleted 进入Completed状态并转发完成信号
func (s *subscriber[T]) OnCompleted() {
	if !s.state.CompareAndSwap(int32(StateActive), int32(StateCompleted)) {
		return
	}
	s.config.Metrics.RecordEvent(s.config.Name, types.EventCompleted)
	s.observer.OnCompleted()
	s.release()
}

// Unsubscribe 进入Disposed状态；终止状态下为空操作
func (s *subscriber[T]) Unsubscribe() {
	if !s.state.CompareAndSwap(int32(StateActive), int32(StateDisposed)) {
		return
	}
	s.config.Metrics.RecordDisposal(s.config.Name)
	s.config.Logger.Debug("subscription disposed", "adapter", s.config.Name)
	s.release()
}

// IsUnsubscribed 检查是否已处于终止状态
func (s *subscriber[T]) IsUnsubscribed() bool {
	return s.State().IsTerminal()
}

// State 当前状态
func (s *subscriber[T]) State() State {
	return State(s.state.Load())
}

func (s *subscriber[T]) activate() {
	s.state.Store(int32(StateActive))
}

// attach 保存订阅函数返回的释放函数；订阅期间已终止则立即释放
func (s *subscriber[T]) attach(teardown TeardownFunc) {
	s.mu.Lock()
	s.teardown = teardown
	s.mu.Unlock()

	if s.State().IsTerminal() {
		s.release()
	}
}

func (s *subscriber[T]) release() {
	s.mu.Lock()
	teardown := s.teardown
	s.teardown = nil
	s.mu.Unlock()

	if teardown == nil {
		return
	}
	if r := SafeExecute(teardown); r != nil {
		s.config.Logger.Error("teardown panicked", "adapter", s.config.Name, "panic", r)
	}
}
