package rxbridge

import (
	"sync"
	"sync/atomic"
)

// PushSource 推送式数据源
//
// 每个通道（数据、错误、结束）最多只有一个处理函数，重复注册会覆盖之前的处理函数，
// 设置为nil即停止该通道的投递。
type PushSource[T any] interface {
	Handler(handler func(T))
	ExceptionHandler(handler func(error))
	EndHandler(handler func())
}

// HandlerSlots 三个单槽处理函数，零值可用
//
// 推送源实现可以内嵌HandlerSlots，并通过Emit/Fail/End投递事件。
// 清除处理函数返回后，之后发起的投递都不会再到达旧的处理函数。
type HandlerSlots[T any] struct {
	mu   sync.RWMutex
	item func(T)
	fail func(error)
	end  func()
}

var _ PushSource[struct{}] = (*HandlerSlots[struct{}])(nil)

// Handler 设置数据处理函数
func (s *HandlerSlots[T]) Handler(handler func(T)) {
	s.mu.Lock()
	s.item = handler
	s.mu.Unlock()
}

// ExceptionHandler 设置错误处理函数
func (s *HandlerSlots[T]) ExceptionHandler(handler func(error)) {
	s.mu.Lock()
	s.fail = handler
	s.mu.Unlock()
}

// EndHandler 设置结束处理函数
func (s *HandlerSlots[T]) EndHandler(handler func()) {
	s.mu.Lock()
	s.end = handler
	s.mu.Unlock()
}

// HasHandler 检查是否设置了数据处理函数
func (s *HandlerSlots[T]) HasHandler() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.item != nil
}

// Emit 投递一个数据，未设置处理函数时返回false
func (s *HandlerSlots[T]) Emit(item T) bool {
	s.mu.RLock()
	handler := s.item
	s.mu.RUnlock()

	if handler == nil {
		return false
	}
	handler(item)
	return true
}

// Fail 投递一个错误，未设置处理函数时返回false
func (s *HandlerSlots[T]) Fail(err error) bool {
	s.mu.RLock()
	handler := s.fail
	s.mu.RUnlock()

	if handler == nil {
		return false
	}
	handler(err)
	return true
}

// End 投递结束信号，未设置处理函数时返回false
func (s *HandlerSlots[T]) End() bool {
	s.mu.RLock()
	handler := s.end
	s.mu.RUnlock()

	if handler == nil {
		return false
	}
	handler()
	return true
}

// ToObservable 把推送源适配为只允许一次订阅的Observable
//
// 订阅时在源上注册三个处理函数；释放时把三个处理函数都清除。
// 适配之后不应再直接使用源的处理函数。第二次订阅返回UsageError（ErrAlreadySubscribed）。
func ToObservable[T any](source PushSource[T], options ...Option) *Observable[T] {
	config := newConfig("stream", options)
	var subscribed atomic.Bool

	return &Observable[T]{
		config: config,
		source: func(observer Observer[T]) (TeardownFunc, error) {
			if source == nil {
				return nil, usageError("toObservable", ErrNilSource)
			}
			if !subscribed.CompareAndSwap(false, true) {
				config.Metrics.RecordRejected(config.Name)
				config.Logger.Warn("rejected second subscription", "adapter", config.Name)
				return nil, usageError("subscribe", ErrAlreadySubscribed)
			}

			// 数据处理函数最后注册：某些源在设置数据处理函数时开始投递
			source.ExceptionHandler(observer.OnError)
			source.EndHandler(observer.OnCompleted)
			source.Handler(observer.OnNext)
			config.Logger.Debug("push source subscribed", "adapter", config.Name)

			return func() {
				// 清除数据处理函数可能触发结束处理函数，此时订阅已终止，不会再转发
				source.Handler(nil)
				source.EndHandler(nil)
				source.ExceptionHandler(nil)
				config.Logger.Debug("push source handlers cleared", "adapter", config.Name)
			}, nil
		},
	}
}
