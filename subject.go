// Subject implementations for rxbridge
// 实现PublishSubject以及由单次回调驱动的CallbackSubject
package rxbridge

import (
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v4"
)

// ============================================================================
// PublishSubject - 发布主题
// ============================================================================

// PublishSubject 发布主题，只向当前订阅者广播新的事件，不缓存也不重放
//
// 终止后订阅的观察者立即收到终止信号。OnNext/OnError/OnCompleted的调用方
// 需要自行保证串行调用。
type PublishSubject[T any] struct {
	observers *xsync.Map[uint64, Observer[T]]
	nextID    atomic.Uint64

	mu    sync.Mutex
	state atomic.Int32
	err   error

	obs *Observable[T]
}

// NewPublishSubject 创建新的发布主题
func NewPublishSubject[T any](options ...Option) *PublishSubject[T] {
	ps := &PublishSubject[T]{
		observers: xsync.NewMap[uint64, Observer[T]](),
	}
	ps.state.Store(int32(StateActive))
	ps.obs = &Observable[T]{
		source: ps.subscribe,
		config: newConfig("subject", options),
	}
	return ps
}

func (ps *PublishSubject[T]) subscribe(observer Observer[T]) (TeardownFunc, error) {
	ps.mu.Lock()
	switch State(ps.state.Load()) {
	case StateCompleted:
		ps.mu.Unlock()
		observer.OnCompleted()
		return nil, nil
	case StateErrored:
		err := ps.err
		ps.mu.Unlock()
		observer.OnError(err)
		return nil, nil
	}

	id := ps.nextID.Add(1)
	ps.observers.Store(id, observer)
	ps.mu.Unlock()

	return func() {
		ps.observers.Delete(id)
	}, nil
}

// Subscribe 订阅观察者
func (ps *PublishSubject[T]) Subscribe(observer Observer[T]) (Subscription, error) {
	return ps.obs.Subscribe(observer)
}

// SubscribeFunc 使用回调函数订阅
func (ps *PublishSubject[T]) SubscribeFunc(onNext OnNext[T], onError OnError, onComplete OnComplete) (Subscription, error) {
	return ps.obs.SubscribeFunc(onNext, onError, onComplete)
}

// AsObservable 返回主题的Observable视图，可继续组合操作符
func (ps *PublishSubject[T]) AsObservable() *Observable[T] {
	return ps.obs
}

// OnNext 广播下一个值
func (ps *PublishSubject[T]) OnNext(value T) {
	if State(ps.state.Load()) != StateActive {
		return
	}

	ps.observers.Range(func(_ uint64, observer Observer[T]) bool {
		observer.OnNext(value)
		return true
	})
}

// OnError 广播错误并终止
func (ps *PublishSubject[T]) OnError(err error) {
	ps.mu.Lock()
	if !ps.state.CompareAndSwap(int32(StateActive), int32(StateErrored)) {
		ps.mu.Unlock()
		return
	}
	ps.err = err
	ps.mu.Unlock()

	ps.observers.Range(func(_ uint64, observer Observer[T]) bool {
		observer.OnError(err)
		return true
	})
}

// OnCompleted 广播完成信号并终止
func (ps *PublishSubject[T]) OnCompleted() {
	ps.mu.Lock()
	if !ps.state.CompareAndSwap(int32(StateActive), int32(StateCompleted)) {
		ps.mu.Unlock()
		return
	}
	ps.mu.Unlock()

	ps.observers.Range(func(_ uint64, observer Observer[T]) bool {
		observer.OnCompleted()
		return true
	})
}

// State 主题状态：Active、Completed或Errored
func (ps *PublishSubject[T]) State() State {
	return State(ps.state.Load())
}

// HasObservers 检查是否有观察者
func (ps *PublishSubject[T]) HasObservers() bool {
	return ps.observers.Size() > 0
}

// ObserverCount 获取观察者数量
func (ps *PublishSubject[T]) ObserverCount() int {
	return ps.observers.Size()
}

// ============================================================================
// CallbackSubject - 回调主题
// ============================================================================

// CallbackSubject 由一次异步应答驱动的发布主题
//
// AsCallback返回的回调可注册为某个异步调用的应答处理函数，
// 应答会以事件的形式广播给所有当前订阅者。
type CallbackSubject[T any] struct {
	*PublishSubject[T]
}

// ObservableCallback 创建回调主题
func ObservableCallback[T any](options ...Option) *CallbackSubject[T] {
	opts := append([]Option{WithName("callback")}, options...)
	return &CallbackSubject[T]{PublishSubject: NewPublishSubject[T](opts...)}
}

// AsCallback 返回驱动该主题的完成回调
func (cs *CallbackSubject[T]) AsCallback() Callback[T] {
	return ToCallback[T](cs.PublishSubject)
}
