package rxbridge

import "reflect"

// Callback 请求/应答风格的完成回调：结果与错误二选一
type Callback[T any] func(result T, cause error)

// ToCallback 把观察者适配为完成回调
//
// cause为nil且result非nil时依次调用OnNext(result)、OnCompleted()；
// 否则调用OnError(cause)，result与cause均为nil时投递ReplyError(ErrNilReply)。
// 每个逻辑请求只应调用一次返回的回调。observer不能为nil。
func ToCallback[T any](observer Observer[T]) Callback[T] {
	if observer == nil {
		panic(usageError("toCallback", ErrNilObserver))
	}

	return func(result T, cause error) {
		if cause == nil && !isNil(result) {
			observer.OnNext(result)
			observer.OnCompleted()
			return
		}
		if cause == nil {
			cause = &ReplyError{Err: ErrNilReply}
		}
		observer.OnError(cause)
	}
}

// ToCallbackFuncs 把回调函数适配为完成回调
//
// 经由ObservableCallback实现，回调被多次调用时只有第一次生效。
func ToCallbackFuncs[T any](onNext OnNext[T], onError OnError, onComplete OnComplete, options ...Option) Callback[T] {
	subject := ObservableCallback[T](options...)
	// 主题上的订阅不会失败
	_, _ = subject.SubscribeFunc(onNext, onError, onComplete)
	return subject.AsCallback()
}

// isNil 判断任意类型的值是否为nil
func isNil(value any) bool {
	if value == nil {
		return true
	}

	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	default:
		return false
	}
}
