// Package refresh 看板数据刷新协调器。
// 用互斥标志串行化刷新：任意时刻至多一个在途刷新，非强制调用受最小间隔限制。
package refresh

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultMinInterval 两次刷新之间的最小间隔
const DefaultMinInterval = 800 * time.Millisecond

// DefaultAutoInterval 自动刷新的默认周期
const DefaultAutoInterval = 5 * time.Second

// Clock 注入时钟，便于确定性测试
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Filters 刷新范围过滤
type Filters struct {
	Status       string
	WorkCenterID string
	Keyword      string
}

// FetchFunc 实际的数据拉取，由调用方委托给后端存储
type FetchFunc func(ctx context.Context, f Filters) error

// Coordinator 刷新协调器
type Coordinator struct {
	fetch       FetchFunc
	clock       Clock
	logger      *zap.Logger
	minInterval time.Duration

	mu       sync.Mutex
	inFlight bool
	lastDone time.Time
	hasDone  bool
	auto     bool
	stopCh   chan struct{}
}

// NewCoordinator 创建协调器，minInterval<=0 时取默认800ms
func NewCoordinator(fetch FetchFunc, clock Clock, logger *zap.Logger, minInterval time.Duration) *Coordinator {
	if clock == nil {
		clock = systemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if minInterval <= 0 {
		minInterval = DefaultMinInterval
	}
	return &Coordinator{
		fetch:       fetch,
		clock:       clock,
		logger:      logger,
		minInterval: minInterval,
	}
}

// Request 请求一次刷新，返回是否真正执行了拉取。
// 在途刷新存在时直接忽略（不排队）。非强制调用还要求自动刷新已开启
// 且距上次刷新完成超过最小间隔；force 只绕过间隔与开关，不绕过在途标志。
// 拉取的错误原样返回给调用方，协调器不重试。
func (c *Coordinator) Request(ctx context.Context, filters Filters, force bool) (bool, error) {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		c.logger.Debug("refresh skipped: in flight")
		return false, nil
	}
	if !force {
		if !c.auto {
			c.mu.Unlock()
			c.logger.Debug("refresh skipped: auto refresh disabled")
			return false, nil
		}
		if c.hasDone && c.clock.Now().Sub(c.lastDone) < c.minInterval {
			c.mu.Unlock()
			c.logger.Debug("refresh skipped: within min interval")
			return false, nil
		}
	}
	c.inFlight = true
	c.mu.Unlock()

	err := c.fetch(ctx, filters)

	// 无论成败都清在途标志并推进完成时间，失败的拉取只被限流，不会永久阻塞
	c.mu.Lock()
	c.inFlight = false
	c.lastDone = c.clock.Now()
	c.hasDone = true
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("refresh fetch failed", zap.Error(err))
		return true, err
	}
	return true, nil
}

// StartAuto 启动周期自动刷新，every<=0 时取默认5s。重复调用只生效一次。
func (c *Coordinator) StartAuto(ctx context.Context, every time.Duration, filters Filters) {
	if every <= 0 {
		every = DefaultAutoInterval
	}
	c.mu.Lock()
	if c.auto {
		c.mu.Unlock()
		return
	}
	c.auto = true
	c.stopCh = make(chan struct{})
	stopCh := c.stopCh
	c.mu.Unlock()

	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.Request(ctx, filters, false)
			case <-stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// StopAuto 停止自动刷新；停止后非强制调用全部忽略
func (c *Coordinator) StopAuto() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.auto {
		return
	}
	c.auto = false
	close(c.stopCh)
	c.stopCh = nil
}

// AutoEnabled 自动刷新是否开启
func (c *Coordinator) AutoEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.auto
}
