// Package timer 工单计时引擎。
// 内部以秒级精度累计时长，仅在落库边界向下取整为分钟。
// Elapsed 允许渲染/轮询路径并发读取，与用户操作路径的写入互斥。
package timer

import (
	"errors"
	"sync"
	"time"
)

// Clock 注入时钟，便于确定性测试
type Clock interface {
	Now() time.Time
}

// SystemClock 真实时钟
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// State 计时器状态
type State string

const (
	StateStopped   State = "STOPPED"
	StateRunning   State = "RUNNING"
	StatePaused    State = "PAUSED"
	StateCompleted State = "COMPLETED"
	StateCancelled State = "CANCELLED"
)

var (
	ErrAlreadyRunning  = errors.New("计时器已在运行")
	ErrNotRunning      = errors.New("计时器未在运行")
	ErrAlreadyTerminal = errors.New("计时器已结束")
)

// Timer 单个工单的计时器
type Timer struct {
	mu        sync.Mutex
	clock     Clock
	state     State
	base      time.Duration // 历史运行区间累计
	startedAt time.Time     // 仅运行中有效
}

// New 创建停止状态的计时器
func New(clock Clock) *Timer {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Timer{clock: clock, state: StateStopped}
}

// Restore 从持久化字段重建计时器。
// 运行中的计时器按落库的起始时间续算。
func Restore(clock Clock, state State, baseSeconds int64, startedAt *time.Time) *Timer {
	t := New(clock)
	t.state = state
	t.base = time.Duration(baseSeconds) * time.Second
	if state == StateRunning {
		if startedAt == nil {
			// 落库数据缺起始时间，按暂停处理，避免凭空放大时长
			t.state = StatePaused
		} else {
			t.startedAt = *startedAt
		}
	}
	return t
}

// Start 启动或恢复计时，要求停止或暂停状态
func (t *Timer) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch t.state {
	case StateRunning:
		return ErrAlreadyRunning
	case StateCompleted, StateCancelled:
		return ErrAlreadyTerminal
	}
	t.state = StateRunning
	t.startedAt = t.clock.Now()
	return nil
}

// Pause 暂停计时，把当前运行区间折算进累计时长
func (t *Timer) Pause() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StateRunning {
		return ErrNotRunning
	}
	t.fold()
	t.state = StatePaused
	return nil
}

// Elapsed 当前累计时长，任意状态可读
func (t *Timer) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == StateRunning {
		return t.base + t.clock.Now().Sub(t.startedAt)
	}
	return t.base
}

// Complete 结束计时并返回落库用的整分钟数（向下取整）
func (t *Timer) Complete() (int, error) {
	return t.finalize(StateCompleted)
}

// Cancel 取消计时。已计时长保留，看板对取消的工单仍展示真实工时。
func (t *Timer) Cancel() (int, error) {
	return t.finalize(StateCancelled)
}

func (t *Timer) finalize(terminal State) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == StateCompleted || t.state == StateCancelled {
		return 0, ErrAlreadyTerminal
	}
	if t.state == StateRunning {
		t.fold()
	}
	t.state = terminal
	return int(t.base / time.Minute), nil
}

// fold 把运行区间并入累计时长，调用方须持锁且状态为 RUNNING
func (t *Timer) fold() {
	t.base += t.clock.Now().Sub(t.startedAt)
	t.startedAt = time.Time{}
}

// Reset 显式清零，回到停止状态。这是唯一允许回退累计时长的操作。
func (t *Timer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = StateStopped
	t.base = 0
	t.startedAt = time.Time{}
}

// State 当前状态
func (t *Timer) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Running 是否在运行
func (t *Timer) Running() bool {
	return t.State() == StateRunning
}

// Snapshot 持久化视图：状态、累计秒数、运行起点
func (t *Timer) Snapshot() (State, int64, *time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	var startedAt *time.Time
	if t.state == StateRunning {
		at := t.startedAt
		startedAt = &at
	}
	return t.state, int64(t.base / time.Second), startedAt
}
