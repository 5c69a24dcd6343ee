package refresh

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// countFetch 记录调用次数的拉取桩
type countFetch struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *countFetch) fetch(ctx context.Context, _ Filters) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

func (f *countFetch) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// 开启自动刷新开关但不真正起循环，用超长周期避免ticker触发
func enableAuto(c *Coordinator) {
	c.StartAuto(context.Background(), time.Hour, Filters{})
}

func TestRequestRunsFetch(t *testing.T) {
	clock := newFakeClock()
	f := &countFetch{}
	c := NewCoordinator(f.fetch, clock, nil, 800*time.Millisecond)
	enableAuto(c)

	ran, err := c.Request(context.Background(), Filters{}, false)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if !ran || f.count() != 1 {
		t.Errorf("ran=%v calls=%d, want true/1", ran, f.count())
	}
}

func TestNonForcedNoOpWhileAutoDisabled(t *testing.T) {
	f := &countFetch{}
	c := NewCoordinator(f.fetch, newFakeClock(), nil, 0)

	ran, _ := c.Request(context.Background(), Filters{}, false)
	if ran || f.count() != 0 {
		t.Errorf("自动刷新关闭时非强制调用应忽略: ran=%v calls=%d", ran, f.count())
	}

	// 强制调用不受开关限制
	ran, _ = c.Request(context.Background(), Filters{}, true)
	if !ran || f.count() != 1 {
		t.Errorf("force call: ran=%v calls=%d, want true/1", ran, f.count())
	}
}

func TestIntervalGate(t *testing.T) {
	clock := newFakeClock()
	f := &countFetch{}
	c := NewCoordinator(f.fetch, clock, nil, 800*time.Millisecond)
	enableAuto(c)

	ctx := context.Background()
	c.Request(ctx, Filters{}, false)

	// 200ms后再次请求：间隔内，忽略
	clock.Advance(200 * time.Millisecond)
	ran, _ := c.Request(ctx, Filters{}, false)
	if ran {
		t.Error("interval 内的非强制请求应忽略")
	}

	// 900ms后：放行
	clock.Advance(700 * time.Millisecond)
	ran, _ = c.Request(ctx, Filters{}, false)
	if !ran {
		t.Error("超过 interval 的请求应放行")
	}
	if f.count() != 2 {
		t.Errorf("calls = %d, want 2", f.count())
	}
}

func TestForceBypassesIntervalGate(t *testing.T) {
	clock := newFakeClock()
	f := &countFetch{}
	c := NewCoordinator(f.fetch, clock, nil, 800*time.Millisecond)
	enableAuto(c)

	ctx := context.Background()
	c.Request(ctx, Filters{}, false)
	clock.Advance(100 * time.Millisecond)

	ran, _ := c.Request(ctx, Filters{}, true)
	if !ran || f.count() != 2 {
		t.Errorf("force within interval: ran=%v calls=%d, want true/2", ran, f.count())
	}
}

func TestInFlightGateNeverBypassed(t *testing.T) {
	clock := newFakeClock()
	block := make(chan struct{})
	entered := make(chan struct{})
	var enteredOnce sync.Once
	fetch := func(ctx context.Context, _ Filters) error {
		enteredOnce.Do(func() { close(entered) })
		<-block
		return nil
	}
	c := NewCoordinator(fetch, clock, nil, 800*time.Millisecond)
	enableAuto(c)

	ctx := context.Background()
	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		c.Request(ctx, Filters{}, false)
	}()
	<-entered

	// 在途期间强制请求也要忽略
	ran, _ := c.Request(ctx, Filters{}, true)
	if ran {
		t.Error("在途刷新存在时 force 请求也应忽略")
	}

	close(block)
	<-firstDone

	// 完成后强制请求放行
	ran, _ = c.Request(ctx, Filters{}, true)
	if !ran {
		t.Error("在途刷新结束后请求应放行")
	}
}

func TestFailedFetchDoesNotBlockFutureRequests(t *testing.T) {
	clock := newFakeClock()
	f := &countFetch{err: errors.New("connection refused")}
	c := NewCoordinator(f.fetch, clock, nil, 800*time.Millisecond)
	enableAuto(c)

	ctx := context.Background()
	ran, err := c.Request(ctx, Filters{}, false)
	if !ran || err == nil {
		t.Fatalf("ran=%v err=%v, want true/non-nil", ran, err)
	}

	// 失败同样推进完成时间：间隔内被限流
	clock.Advance(100 * time.Millisecond)
	if ran, _ := c.Request(ctx, Filters{}, false); ran {
		t.Error("失败后的请求仍应受间隔限流")
	}

	// 间隔过后恢复可用
	clock.Advance(time.Second)
	if ran, _ := c.Request(ctx, Filters{}, false); !ran {
		t.Error("失败不应永久阻塞后续刷新")
	}
}

func TestStopAutoDisablesNonForced(t *testing.T) {
	clock := newFakeClock()
	f := &countFetch{}
	c := NewCoordinator(f.fetch, clock, nil, 800*time.Millisecond)
	enableAuto(c)
	if !c.AutoEnabled() {
		t.Fatal("auto not enabled")
	}
	c.StopAuto()
	if c.AutoEnabled() {
		t.Fatal("auto still enabled after StopAuto")
	}

	clock.Advance(time.Hour)
	ran, _ := c.Request(context.Background(), Filters{}, false)
	if ran {
		t.Error("自动刷新停止后非强制调用应忽略，即使间隔已过")
	}
}

func TestStartAutoZeroIntervalFallsBack(t *testing.T) {
	f := &countFetch{}
	c := NewCoordinator(f.fetch, newFakeClock(), nil, 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	// 零周期不允许传给ticker，回落到默认周期
	c.StartAuto(ctx, 0, Filters{})
	defer c.StopAuto()
	if !c.AutoEnabled() {
		t.Fatal("auto not enabled")
	}
}

func TestAutoRefreshLoopTicks(t *testing.T) {
	clock := newFakeClock()
	f := &countFetch{}
	c := NewCoordinator(f.fetch, clock, nil, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.StartAuto(ctx, 5*time.Millisecond, Filters{})
	defer c.StopAuto()

	deadline := time.After(2 * time.Second)
	for f.count() == 0 {
		select {
		case <-deadline:
			t.Fatal("auto refresh loop never fetched")
		default:
			clock.Advance(time.Second)
			time.Sleep(time.Millisecond)
		}
	}
}
