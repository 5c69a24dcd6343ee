package service

import (
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-mes/internal/config"
	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/bitfantasy/nimo-mes/internal/mes/sse"
	"github.com/bitfantasy/nimo-mes/internal/mes/timer"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// OrderStore 制造订单存储边界
type OrderStore interface {
	Create(o *entity.ManufacturingOrder) error
	GetByID(id string) (*entity.ManufacturingOrder, error)
	Update(o *entity.ManufacturingOrder) error
	UpdateStatus(id string, status entity.Status) error
	List(params repository.OrderListParams) ([]entity.ManufacturingOrder, int64, error)
	ListActive() ([]entity.ManufacturingOrder, error)
	CreateComponent(c *entity.Component) error
	UpdateComponent(c *entity.Component) error
}

// WorkOrderStore 工单存储边界
type WorkOrderStore interface {
	Create(w *entity.WorkOrder) error
	GetByID(id string) (*entity.WorkOrder, error)
	Update(w *entity.WorkOrder) error
	ListByOrder(orderID string) ([]entity.WorkOrder, error)
	List(params repository.WorkOrderListParams) ([]entity.WorkOrder, int64, error)
}

// TransportError 存储访问失败，内容不做解释，原样上抛
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("存储访问失败: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// snapshotCacheKey 看板快照的redis键
const snapshotCacheKey = "mes:dashboard:snapshot"

// Services MES 服务集合
type Services struct {
	Order      *OrderService
	WorkOrder  *WorkOrderService
	WorkCenter *WorkCenterService
	Dashboard  *DashboardService
}

// NewServices 创建服务集合。rdb 允许为 nil（测试环境不接缓存）。
func NewServices(repos *repository.Repositories, rdb *redis.Client, hub *sse.Hub, logger *zap.Logger, cfg *config.Config) *Services {
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := timer.SystemClock{}
	var minInterval time.Duration
	if cfg != nil {
		minInterval = cfg.Refresh.MinInterval
	}
	return &Services{
		Order:      NewOrderService(repos.Order, clock, rdb, hub),
		WorkOrder:  NewWorkOrderService(repos.WorkOrder, clock, rdb, hub),
		WorkCenter: NewWorkCenterService(repos.WorkCenter),
		Dashboard:  NewDashboardService(repos.Order, clock, rdb, hub, logger, minInterval),
	}
}
