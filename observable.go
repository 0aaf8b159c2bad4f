// Observable implementation for rxbridge
// 基于订阅函数（返回释放函数）的惰性Observable实现
package rxbridge

import (
	"sync"

	"github.com/xinjiayu/rxbridge/internal/metrics"
)

// ============================================================================
// Item 通知
// ============================================================================

// Item 表示流中的一个通知：值、错误或完成
type Item[T any] struct {
	Value T
	Error error
	Done  bool
}

// IsError 检查项目是否包含错误
func (item Item[T]) IsError() bool {
	return item.Error != nil
}

// IsCompleted 检查项目是否为完成信号
func (item Item[T]) IsCompleted() bool {
	return item.Done && item.Error == nil
}

// ============================================================================
// Observable 核心实现
// ============================================================================

// Observable 惰性可观察序列，每次订阅调用一次订阅函数
type Observable[T any] struct {
	source OnSubscribe[T]
	config *Config
}

// Create 使用订阅函数创建Observable
func Create[T any](source OnSubscribe[T], options ...Option) *Observable[T] {
	return &Observable[T]{
		source: source,
		config: newConfig("observable", options),
	}
}

// derive 创建派生Observable，沿用日志配置但不重复计数
func derive[T, U any](parent *Observable[T], source OnSubscribe[U]) *Observable[U] {
	return &Observable[U]{
		source: source,
		config: &Config{
			Name:    parent.config.Name,
			Logger:  parent.config.Logger,
			Metrics: metrics.NewNop(),
		},
	}
}

// Subscribe 订阅观察者
//
// 订阅函数返回的错误（例如重复订阅）会同步返回，此时观察者不会收到任何通知。
func (o *Observable[T]) Subscribe(observer Observer[T]) (Subscription, error) {
	if observer == nil {
		return nil, usageError("subscribe", ErrNilObserver)
	}

	sub := newSubscriber(observer, o.config)
	sub.activate()

	teardown, err := o.source(sub)
	if err != nil {
		sub.state.Store(int32(StateDisposed))
		return nil, err
	}

	o.config.Metrics.RecordSubscription(o.config.Name)
	sub.attach(teardown)
	return sub, nil
}

// SubscribeFunc 使用回调函数订阅
func (o *Observable[T]) SubscribeFunc(onNext OnNext[T], onError OnError, onComplete OnComplete) (Subscription, error) {
	return o.Subscribe(NewObserver(onNext, onError, onComplete))
}

// ToChannel 订阅并把通知写入channel
//
// 终止通知之后或取消订阅后channel被关闭。缓冲区满时投递会阻塞，
// 直到消费者读取或订阅被取消。
func (o *Observable[T]) ToChannel(buffer int) (<-chan Item[T], Subscription, error) {
	if buffer < 0 {
		buffer = 0
	}

	ch := make(chan Item[T], buffer)
	done := make(chan struct{})
	var (
		mu     sync.Mutex
		closed bool
		once   sync.Once
	)

	send := func(item Item[T]) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case ch <- item:
		case <-done:
		}
	}
	finish := func() {
		once.Do(func() {
			close(done)
			mu.Lock()
			closed = true
			close(ch)
			mu.Unlock()
		})
	}

	sub, err := o.Subscribe(NewObserver(
		func(value T) { send(Item[T]{Value: value}) },
		func(err error) {
			send(Item[T]{Error: err, Done: true})
			finish()
		},
		func() {
			send(Item[T]{Done: true})
			finish()
		},
	))
	if err != nil {
		finish()
		return nil, nil, err
	}

	return ch, &channelSubscription{Subscription: sub, finish: finish}, nil
}

type channelSubscription struct {
	Subscription
	finish func()
}

func (c *channelSubscription) Unsubscribe() {
	c.Subscription.Unsubscribe()
	c.finish()
}
