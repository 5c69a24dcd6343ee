package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-mes/internal/mes/availability"
	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/lifecycle"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/bitfantasy/nimo-mes/internal/mes/sse"
	"github.com/bitfantasy/nimo-mes/internal/mes/timer"
	"github.com/redis/go-redis/v9"
)

// OrderService 订单与工单的生命周期编排：状态流转、计时联动、落库与事件发布
type OrderService struct {
	orders OrderStore
	clock  timer.Clock
	rdb    *redis.Client
	hub    *sse.Hub
}

func NewOrderService(orders OrderStore, clock timer.Clock, rdb *redis.Client, hub *sse.Hub) *OrderService {
	if clock == nil {
		clock = timer.SystemClock{}
	}
	return &OrderService{
		orders: orders,
		clock:  clock,
		rdb:    rdb,
		hub:    hub,
	}
}

type ComponentRequest struct {
	Name         string  `json:"name" binding:"required"`
	SKU          string  `json:"sku" binding:"required"`
	Available    float64 `json:"available"`
	ToConsume    float64 `json:"to_consume"`
	Unit         string  `json:"unit"`
	MinThreshold float64 `json:"min_threshold"`
}

type CreateOrderRequest struct {
	ProductID     string             `json:"product_id" binding:"required"`
	ProductCode   string             `json:"product_code"`
	ProductName   string             `json:"product_name"`
	Quantity      int                `json:"quantity" binding:"required"`
	Priority      string             `json:"priority"`
	PriorityScore int                `json:"priority_score"`
	DueDate       string             `json:"due_date"` // YYYY-MM-DD
	AssigneeID    string             `json:"assignee_id"`
	Notes         string             `json:"notes"`
	Components    []ComponentRequest `json:"components"`
}

// Create 创建制造订单，数量与SKU唯一性在这里校验
func (s *OrderService) Create(ctx context.Context, req CreateOrderRequest, userID string) (*entity.ManufacturingOrder, error) {
	number := fmt.Sprintf("MO-%s%04d", s.clock.Now().Format("20060102"), s.clock.Now().UnixNano()%10000)

	order, err := entity.NewManufacturingOrder(number, req.ProductID, req.Quantity, userID)
	if err != nil {
		return nil, err
	}
	order.ProductCode = req.ProductCode
	order.ProductName = req.ProductName
	order.AssigneeID = req.AssigneeID
	order.Notes = req.Notes
	if req.Priority != "" {
		order.Priority = entity.Priority(req.Priority)
	}
	order.PriorityScore = req.PriorityScore
	if req.DueDate != "" {
		t, perr := time.Parse("2006-01-02", req.DueDate)
		if perr == nil {
			order.DueDate = &t
		}
	}

	for _, cr := range req.Components {
		c, cerr := entity.NewComponent(order.ID, cr.Name, cr.SKU, cr.Available, cr.ToConsume, cr.Unit)
		if cerr != nil {
			return nil, cerr
		}
		c.MinThreshold = cr.MinThreshold
		if aerr := order.AddComponent(*c); aerr != nil {
			return nil, aerr
		}
	}

	if err := s.orders.Create(order); err != nil {
		return nil, &TransportError{Op: "create order", Err: err}
	}
	s.invalidateSnapshot(ctx)
	return order, nil
}

func (s *OrderService) Get(id string) (*entity.ManufacturingOrder, error) {
	order, err := s.orders.GetByID(id)
	if err != nil {
		return nil, &TransportError{Op: "load order", Err: err}
	}
	return order, nil
}

func (s *OrderService) List(params repository.OrderListParams) ([]entity.ManufacturingOrder, int64, error) {
	orders, total, err := s.orders.List(params)
	if err != nil {
		return nil, 0, &TransportError{Op: "list orders", Err: err}
	}
	return orders, total, nil
}

// AddComponent 为订单追加物料，同一订单内SKU必须唯一
func (s *OrderService) AddComponent(ctx context.Context, orderID string, req ComponentRequest) (*entity.Component, error) {
	order, err := s.orders.GetByID(orderID)
	if err != nil {
		return nil, &TransportError{Op: "load order", Err: err}
	}
	c, cerr := entity.NewComponent(order.ID, req.Name, req.SKU, req.Available, req.ToConsume, req.Unit)
	if cerr != nil {
		return nil, cerr
	}
	c.MinThreshold = req.MinThreshold
	if aerr := order.AddComponent(*c); aerr != nil {
		return nil, aerr
	}
	if err := s.orders.CreateComponent(c); err != nil {
		return nil, &TransportError{Op: "create component", Err: err}
	}
	s.invalidateSnapshot(ctx)
	return c, nil
}

type UpdateComponentRequest struct {
	Available    *float64 `json:"available"`
	ToConsume    *float64 `json:"to_consume"`
	MinThreshold *float64 `json:"min_threshold"`
}

// UpdateComponent 调整物料数量
func (s *OrderService) UpdateComponent(ctx context.Context, orderID, componentID string, req UpdateComponentRequest) (*entity.Component, error) {
	order, err := s.orders.GetByID(orderID)
	if err != nil {
		return nil, &TransportError{Op: "load order", Err: err}
	}
	var target *entity.Component
	for i := range order.Components {
		if order.Components[i].ID == componentID {
			target = &order.Components[i]
			break
		}
	}
	if target == nil {
		return nil, &TransportError{Op: "load component", Err: fmt.Errorf("物料不存在: %s", componentID)}
	}
	if req.Available != nil {
		if *req.Available < 0 {
			return nil, &entity.ValidationError{Field: "available", Reason: "可用量不能为负"}
		}
		target.Available = *req.Available
	}
	if req.ToConsume != nil {
		if *req.ToConsume < 0 {
			return nil, &entity.ValidationError{Field: "to_consume", Reason: "消耗量不能为负"}
		}
		target.ToConsume = *req.ToConsume
	}
	if req.MinThreshold != nil {
		if *req.MinThreshold < 0 {
			return nil, &entity.ValidationError{Field: "min_threshold", Reason: "告警阈值不能为负"}
		}
		target.MinThreshold = *req.MinThreshold
	}
	if err := s.orders.UpdateComponent(target); err != nil {
		return nil, &TransportError{Op: "update component", Err: err}
	}
	s.invalidateSnapshot(ctx)
	return target, nil
}

// ComponentAvailability 单个物料的充足度结果
type ComponentAvailability struct {
	ComponentID string             `json:"component_id"`
	SKU         string             `json:"sku"`
	Name        string             `json:"name"`
	Remaining   float64            `json:"remaining"`
	Level       availability.Level `json:"level"`
}

// OrderAvailability 订单维度的充足度结果
type OrderAvailability struct {
	OrderID    string                  `json:"order_id"`
	Ready      bool                    `json:"ready"`
	Components []ComponentAvailability `json:"components"`
}

// Availability 重算订单全部物料的充足度，结果不落库
func (s *OrderService) Availability(orderID string) (*OrderAvailability, error) {
	order, err := s.orders.GetByID(orderID)
	if err != nil {
		return nil, &TransportError{Op: "load order", Err: err}
	}
	result := &OrderAvailability{
		OrderID:    order.ID,
		Ready:      availability.OrderReady(order.Components),
		Components: make([]ComponentAvailability, 0, len(order.Components)),
	}
	for i := range order.Components {
		c := &order.Components[i]
		result.Components = append(result.Components, ComponentAvailability{
			ComponentID: c.ID,
			SKU:         c.SKU,
			Name:        c.Name,
			Remaining:   c.Remaining(),
			Level:       availability.EvaluateComponent(c),
		})
	}
	return result, nil
}

// TransitionOrder 制造订单状态流转。
// 订单取消不级联取消其工单：保留已发生作业的审计记录，每个工单由调用方单独取消。
func (s *OrderService) TransitionOrder(ctx context.Context, id string, target entity.Status) (*entity.ManufacturingOrder, error) {
	order, err := s.orders.GetByID(id)
	if err != nil {
		return nil, &TransportError{Op: "load order", Err: err}
	}
	next, terr := lifecycle.Transition(order.Status, target)
	if terr != nil {
		return nil, terr
	}
	order.Status = next
	if err := s.orders.UpdateStatus(order.ID, next); err != nil {
		return nil, &TransportError{Op: "persist order status", Err: err}
	}
	if s.hub != nil {
		s.hub.PublishOrderUpdate(order.ID, order.OrderNumber, string(next))
	}
	s.invalidateSnapshot(ctx)
	return order, nil
}

// invalidateSnapshot 变更后删掉看板快照缓存
func (s *OrderService) invalidateSnapshot(ctx context.Context) {
	if s.rdb != nil {
		s.rdb.Del(ctx, snapshotCacheKey)
	}
}
