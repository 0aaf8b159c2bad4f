// Package rxbridge bridges push-based, callback-driven sources to reactive observables
// 将回调驱动的推送式数据源桥接为响应式Observable，并将Observer还原为单一完成回调
package rxbridge

import (
	"sync"
	"sync/atomic"
)

// ============================================================================
// 函数类型定义
// ============================================================================

// OnNext 处理下一个值的函数
type OnNext[T any] func(value T)

// OnError 处理错误的函数
type OnError func(err error)

// OnComplete 处理完成的函数
type OnComplete func()

// TeardownFunc 订阅函数返回的资源释放函数
type TeardownFunc func()

// OnSubscribe 订阅函数：注册观察者并返回释放函数，失败时返回UsageError
type OnSubscribe[T any] func(observer Observer[T]) (TeardownFunc, error)

// ============================================================================
// Observer 观察者
// ============================================================================

// Observer 观察者接口，三通道协议 next/error/completed
//
// onError或onCompleted之后不会再收到任何通知。
type Observer[T any] interface {
	OnNext(value T)
	OnError(err error)
	OnCompleted()
}

// callbackObserver 由回调函数构成的观察者
type callbackObserver[T any] struct {
	onNext     OnNext[T]
	onError    OnError
	onComplete OnComplete
}

// NewObserver 使用回调函数创建观察者，nil回调会被忽略
func NewObserver[T any](onNext OnNext[T], onError OnError, onComplete OnComplete) Observer[T] {
	return &callbackObserver[T]{onNext: onNext, onError: onError, onComplete: onComplete}
}

func (o *callbackObserver[T]) OnNext(value T) {
	if o.onNext != nil {
		o.onNext(value)
	}
}

func (o *callbackObserver[T]) OnError(err error) {
	if o.onError != nil {
		o.onError(err)
	}
}

func (o *callbackObserver[T]) OnCompleted() {
	if o.onComplete != nil {
		o.onComplete()
	}
}

// ============================================================================
// 生命周期管理
// ============================================================================

// State 订阅状态
type State int32

const (
	// StateUnsubscribed 尚未订阅
	StateUnsubscribed State = iota
	// StateActive 订阅中
	StateActive
	// StateCompleted 已完成
	StateCompleted
	// StateErrored 已出错
	StateErrored
	// StateDisposed 已被订阅者释放
	StateDisposed
)

// IsTerminal 是否为终止状态
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateErrored || s == StateDisposed
}

func (s State) String() string {
	switch s {
	case StateUnsubscribed:
		return "unsubscribed"
	case StateActive:
		return "active"
	case StateCompleted:
		return "completed"
	case StateErrored:
		return "errored"
	case StateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// Subscription 订阅接口，管理订阅的生命周期
type Subscription interface {
	// Unsubscribe 取消订阅，重复调用是安全的
	Unsubscribe()
	// IsUnsubscribed 检查是否已取消订阅（包括自然终止）
	IsUnsubscribed() bool
	// State 当前状态
	State() State
}

// Disposable 可释放资源的接口
type Disposable interface {
	// Dispose 释放资源
	Dispose()
	// IsDisposed 检查是否已释放
	IsDisposed() bool
}

// CompositeDisposable 组合式资源管理器
type CompositeDisposable struct {
	mu        sync.Mutex
	disposed  bool
	resources []Disposable
}

// NewCompositeDisposable 创建组合式资源管理器
func NewCompositeDisposable() *CompositeDisposable {
	return &CompositeDisposable{}
}

// Add 添加可释放资源，已释放时立即释放新资源
func (cd *CompositeDisposable) Add(disposable Disposable) {
	cd.mu.Lock()
	if cd.disposed {
		cd.mu.Unlock()
		disposable.Dispose()
		return
	}
	cd.resources = append(cd.resources, disposable)
	cd.mu.Unlock()
}

// Dispose 释放所有资源
func (cd *CompositeDisposable) Dispose() {
	cd.mu.Lock()
	if cd.disposed {
		cd.mu.Unlock()
		return
	}
	cd.disposed = true
	resources := cd.resources
	cd.resources = nil
	cd.mu.Unlock()

	for _, resource := range resources {
		resource.Dispose()
	}
}

// IsDisposed 检查是否已释放
func (cd *CompositeDisposable) IsDisposed() bool {
	cd.mu.Lock()
	defer cd.mu.Unlock()
	return cd.disposed
}

// baseDisposable 基础可释放资源实现
type baseDisposable struct {
	disposed int32
	action   func()
}

// NewDisposable 创建只执行一次action的可释放资源
func NewDisposable(action func()) Disposable {
	return &baseDisposable{action: action}
}

// Dispose 释放资源
func (d *baseDisposable) Dispose() {
	if atomic.CompareAndSwapInt32(&d.disposed, 0, 1) {
		if d.action != nil {
			d.action()
		}
	}
}

// IsDisposed 检查是否已释放
func (d *baseDisposable) IsDisposed() bool {
	return atomic.LoadInt32(&d.disposed) == 1
}

// subscriptionDisposable 把Subscription适配为Disposable
type subscriptionDisposable struct {
	sub Subscription
}

// AsDisposable 把订阅放入CompositeDisposable
func AsDisposable(sub Subscription) Disposable {
	return subscriptionDisposable{sub: sub}
}

func (d subscriptionDisposable) Dispose()         { d.sub.Unsubscribe() }
func (d subscriptionDisposable) IsDisposed() bool { return d.sub.IsUnsubscribed() }

// ============================================================================
// 工具函数
// ============================================================================

// SafeExecute 安全执行函数，捕获panic
func SafeExecute(action func()) (recovered interface{}) {
	defer func() {
		if r := recover(); r != nil {
			recovered = r
		}
	}()

	action()
	return nil
}
