package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/bitfantasy/nimo-mes/internal/mes/availability"
	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/refresh"
	"github.com/bitfantasy/nimo-mes/internal/mes/schedule"
	"github.com/bitfantasy/nimo-mes/internal/mes/sse"
	"github.com/bitfantasy/nimo-mes/internal/mes/timer"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// snapshotCacheTTL 快照缓存有效期
const snapshotCacheTTL = 30 * time.Second

// ComponentView 物料充足度投影
type ComponentView struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	SKU          string             `json:"sku"`
	Available    float64            `json:"available"`
	ToConsume    float64            `json:"to_consume"`
	Remaining    float64            `json:"remaining"`
	Unit         string             `json:"unit"`
	MinThreshold float64            `json:"min_threshold"`
	Level        availability.Level `json:"level"`
}

// OrderView 排序后的订单投影
type OrderView struct {
	ID            string          `json:"id"`
	OrderNumber   string          `json:"order_number"`
	ProductName   string          `json:"product_name"`
	Quantity      int             `json:"quantity"`
	Status        entity.Status   `json:"status"`
	Priority      entity.Priority `json:"priority"`
	PriorityScore int             `json:"priority_score"`
	DueDate       *time.Time      `json:"due_date"`
	Ready         bool            `json:"ready"`
	Components    []ComponentView `json:"components"`
	WorkOrders    int             `json:"work_orders"`
}

// Snapshot 看板快照：按优先级排序的订单队列与物料充足度
type Snapshot struct {
	Orders      []OrderView `json:"orders"`
	GeneratedAt time.Time   `json:"generated_at"`
}

// DashboardService 看板快照服务。
// 重建经由刷新协调器限流；排序与充足度每次重建时全量重算。
type DashboardService struct {
	orders      OrderStore
	clock       timer.Clock
	rdb         *redis.Client
	hub         *sse.Hub
	logger      *zap.Logger
	coordinator *refresh.Coordinator

	mu      sync.RWMutex
	current *Snapshot
}

func NewDashboardService(orders OrderStore, clock timer.Clock, rdb *redis.Client, hub *sse.Hub, logger *zap.Logger, minInterval time.Duration) *DashboardService {
	if clock == nil {
		clock = timer.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &DashboardService{
		orders: orders,
		clock:  clock,
		rdb:    rdb,
		hub:    hub,
		logger: logger,
	}
	s.coordinator = refresh.NewCoordinator(s.rebuild, clock, logger, minInterval)
	return s
}

// RequestRefresh 请求刷新快照，返回是否真正触发了重建
func (s *DashboardService) RequestRefresh(ctx context.Context, filters refresh.Filters, force bool) (bool, error) {
	return s.coordinator.Request(ctx, filters, force)
}

// StartAutoRefresh 开启周期自动刷新。循环持有自己的context，与请求生命周期无关。
func (s *DashboardService) StartAutoRefresh(every time.Duration) {
	s.coordinator.StartAuto(context.Background(), every, refresh.Filters{})
}

// StopAutoRefresh 关闭自动刷新
func (s *DashboardService) StopAutoRefresh() {
	s.coordinator.StopAuto()
}

// GetSnapshot 取当前快照：优先redis缓存，其次内存，都没有则强制重建一次
func (s *DashboardService) GetSnapshot(ctx context.Context) (*Snapshot, error) {
	if s.rdb != nil {
		raw, err := s.rdb.Get(ctx, snapshotCacheKey).Bytes()
		if err == nil {
			var snap Snapshot
			if jerr := json.Unmarshal(raw, &snap); jerr == nil {
				return &snap, nil
			}
		}
	}

	s.mu.RLock()
	current := s.current
	s.mu.RUnlock()
	if current != nil {
		return current, nil
	}

	// 冷启动：同步重建一次，不走协调器的限流
	if err := s.rebuild(ctx, refresh.Filters{}); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, nil
}

// rebuild 从存储重建快照并更新缓存，是刷新协调器委托的拉取动作
func (s *DashboardService) rebuild(ctx context.Context, _ refresh.Filters) error {
	orders, err := s.orders.ListActive()
	if err != nil {
		return &TransportError{Op: "load orders", Err: err}
	}

	ranked := schedule.Rank(orders)
	views := make([]OrderView, 0, len(ranked))
	for i := range ranked {
		o := &ranked[i]
		components := make([]ComponentView, 0, len(o.Components))
		for j := range o.Components {
			c := &o.Components[j]
			components = append(components, ComponentView{
				ID:           c.ID,
				Name:         c.Name,
				SKU:          c.SKU,
				Available:    c.Available,
				ToConsume:    c.ToConsume,
				Remaining:    c.Remaining(),
				Unit:         c.Unit,
				MinThreshold: c.MinThreshold,
				Level:        availability.EvaluateComponent(c),
			})
		}
		views = append(views, OrderView{
			ID:            o.ID,
			OrderNumber:   o.OrderNumber,
			ProductName:   o.ProductName,
			Quantity:      o.Quantity,
			Status:        o.Status,
			Priority:      o.Priority,
			PriorityScore: o.PriorityScore,
			DueDate:       o.DueDate,
			Ready:         availability.OrderReady(o.Components),
			Components:    components,
			WorkOrders:    len(o.WorkOrders),
		})
	}

	snap := &Snapshot{Orders: views, GeneratedAt: s.clock.Now()}

	s.mu.Lock()
	s.current = snap
	s.mu.Unlock()

	if s.rdb != nil {
		if raw, jerr := json.Marshal(snap); jerr == nil {
			s.rdb.Set(ctx, snapshotCacheKey, raw, snapshotCacheTTL)
		}
	}
	if s.hub != nil {
		s.hub.PublishQueueRefreshed()
	}
	return nil
}
