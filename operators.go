// Operators for rxbridge
// 常用操作符：Map、Filter、Take、BufferWithTime
package rxbridge

import (
	"sync"
	"sync/atomic"
	"time"
)

// Map 转换操作符，转换函数返回错误时以该错误终止序列
func Map[T, U any](o *Observable[T], transform func(T) (U, error)) *Observable[U] {
	return derive(o, func(observer Observer[U]) (TeardownFunc, error) {
		sub, err := o.Subscribe(NewObserver(
			func(value T) {
				result, err := transform(value)
				if err != nil {
					observer.OnError(err)
					return
				}
				observer.OnNext(result)
			},
			observer.OnError,
			observer.OnCompleted,
		))
		if err != nil {
			return nil, err
		}
		return sub.Unsubscribe, nil
	})
}

// Filter 过滤操作符
func (o *Observable[T]) Filter(predicate func(T) bool) *Observable[T] {
	return derive(o, func(observer Observer[T]) (TeardownFunc, error) {
		sub, err := o.Subscribe(NewObserver(
			func(value T) {
				if predicate(value) {
					observer.OnNext(value)
				}
			},
			observer.OnError,
			observer.OnCompleted,
		))
		if err != nil {
			return nil, err
		}
		return sub.Unsubscribe, nil
	})
}

// Take 取前N个元素后完成，并释放上游订阅
func (o *Observable[T]) Take(count int) *Observable[T] {
	return derive(o, func(observer Observer[T]) (TeardownFunc, error) {
		if count <= 0 {
			observer.OnCompleted()
			return nil, nil
		}

		var taken atomic.Int64
		sub, err := o.Subscribe(NewObserver(
			func(value T) {
				n := taken.Add(1)
				if n > int64(count) {
					return
				}
				observer.OnNext(value)
				if n == int64(count) {
					// 下游完成后会执行释放函数，从而取消上游订阅
					observer.OnCompleted()
				}
			},
			observer.OnError,
			observer.OnCompleted,
		))
		if err != nil {
			return nil, err
		}
		return sub.Unsubscribe, nil
	})
}

// BufferWithTime 按时间窗口收集元素，窗口非空时发射切片
//
// 定时由注入的Timer驱动；上游完成时先发射剩余元素再完成。
func BufferWithTime[T any](o *Observable[T], timespan time.Duration, timer Timer) *Observable[[]T] {
	return derive(o, func(observer Observer[[]T]) (TeardownFunc, error) {
		var (
			mu      sync.Mutex
			emitMu  sync.Mutex
			buffer  []T
			timerID atomic.Uint64
			stopped atomic.Bool
		)

		flush := func() {
			emitMu.Lock()
			defer emitMu.Unlock()

			mu.Lock()
			batch := buffer
			buffer = nil
			mu.Unlock()

			if len(batch) > 0 {
				observer.OnNext(batch)
			}
		}

		var tick func()
		tick = func() {
			if stopped.Load() {
				return
			}
			flush()
			if !stopped.Load() {
				timerID.Store(uint64(timer.SetTimer(timespan, tick)))
			}
		}

		stop := func() {
			if stopped.CompareAndSwap(false, true) {
				timer.CancelTimer(TimerID(timerID.Load()))
			}
		}

		timerID.Store(uint64(timer.SetTimer(timespan, tick)))

		sub, err := o.Subscribe(NewObserver(
			func(value T) {
				mu.Lock()
				buffer = append(buffer, value)
				mu.Unlock()
			},
			func(err error) {
				stop()
				emitMu.Lock()
				defer emitMu.Unlock()
				observer.OnError(err)
			},
			func() {
				stop()
				flush()
				emitMu.Lock()
				defer emitMu.Unlock()
				observer.OnCompleted()
			},
		))
		if err != nil {
			stop()
			return nil, err
		}

		return func() {
			stop()
			sub.Unsubscribe()
		}, nil
	})
}
