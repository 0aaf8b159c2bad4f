package rxbridge

import (
	"fmt"
	"sync"
)

// recorder 记录观察者收到的所有通知
type recorder[T any] struct {
	mu     sync.Mutex
	events []string
	items  []T
	errs   []error
	done   int
}

func newRecorder[T any]() *recorder[T] {
	return &recorder[T]{}
}

func (r *recorder[T]) OnNext(value T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, fmt.Sprintf("next:%v", value))
	r.items = append(r.items, value)
}

func (r *recorder[T]) OnError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, fmt.Sprintf("error:%v", err))
	r.errs = append(r.errs, err)
}

func (r *recorder[T]) OnCompleted() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "completed")
	r.done++
}

func (r *recorder[T]) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	copy(out, r.events)
	return out
}

func (r *recorder[T]) Items() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]T, len(r.items))
	copy(out, r.items)
	return out
}

func (r *recorder[T]) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]error, len(r.errs))
	copy(out, r.errs)
	return out
}

func (r *recorder[T]) Completions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}

// countingSource 记录处理函数设置次数的推送源
type countingSource[T any] struct {
	HandlerSlots[T]

	mu     sync.Mutex
	clears int
	sets   int
}

func (s *countingSource[T]) Handler(handler func(T)) {
	s.count(handler == nil)
	s.HandlerSlots.Handler(handler)
}

func (s *countingSource[T]) ExceptionHandler(handler func(error)) {
	s.count(handler == nil)
	s.HandlerSlots.ExceptionHandler(handler)
}

func (s *countingSource[T]) EndHandler(handler func()) {
	s.count(handler == nil)
	s.HandlerSlots.EndHandler(handler)
}

func (s *countingSource[T]) count(clear bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if clear {
		s.clears++
	} else {
		s.sets++
	}
}

func (s *countingSource[T]) Counts() (sets, clears int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sets, s.clears
}
