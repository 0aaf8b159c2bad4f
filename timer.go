package rxbridge

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v4"
)

// ============================================================================
// 定时器服务
// ============================================================================

// TimerID 定时器标识
type TimerID uint64

// Timer 定时器服务，以依赖注入方式提供给需要延迟执行的组件
type Timer interface {
	// SetTimer 在delay之后执行action，返回定时器标识
	SetTimer(delay time.Duration, action func()) TimerID
	// CancelTimer 取消尚未触发的定时器，已触发或未知的定时器返回false
	CancelTimer(id TimerID) bool
}

// timerEntry 正在等待的定时器
type timerEntry struct {
	mu    sync.Mutex
	timer *time.Timer
}

// timerService 基于time.AfterFunc的定时器服务
type timerService struct {
	nextID atomic.Uint64
	timers *xsync.Map[TimerID, *timerEntry]
}

// NewTimerService 创建定时器服务
func NewTimerService() Timer {
	return &timerService{
		timers: xsync.NewMap[TimerID, *timerEntry](),
	}
}

// SetTimer 延迟调度一个任务
func (s *timerService) SetTimer(delay time.Duration, action func()) TimerID {
	id := TimerID(s.nextID.Add(1))
	entry := &timerEntry{}

	// 先登记再启动，保证回调总能找到自己的记录
	entry.mu.Lock()
	s.timers.Store(id, entry)
	entry.timer = time.AfterFunc(delay, func() {
		if _, ok := s.timers.LoadAndDelete(id); ok {
			action()
		}
	})
	entry.mu.Unlock()

	return id
}

// CancelTimer 取消定时器
func (s *timerService) CancelTimer(id TimerID) bool {
	entry, ok := s.timers.LoadAndDelete(id)
	if !ok {
		return false
	}

	entry.mu.Lock()
	entry.timer.Stop()
	entry.mu.Unlock()
	return true
}

// Pending 返回尚未触发的定时器数量
func (s *timerService) Pending() int {
	return s.timers.Size()
}
