package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/lifecycle"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/bitfantasy/nimo-mes/internal/mes/schedule"
	"github.com/bitfantasy/nimo-mes/internal/mes/sse"
	"github.com/bitfantasy/nimo-mes/internal/mes/timer"
	"github.com/redis/go-redis/v9"
)

// WorkOrderService 工单生命周期与计时联动。
// 实际工时只允许经计时引擎推进，状态流转触发计时器的启停。
type WorkOrderService struct {
	workOrders WorkOrderStore
	clock      timer.Clock
	rdb        *redis.Client
	hub        *sse.Hub

	// 工单计时器注册表，按需从持久化字段恢复
	timerMu sync.Mutex
	timers  map[string]*timer.Timer
}

func NewWorkOrderService(workOrders WorkOrderStore, clock timer.Clock, rdb *redis.Client, hub *sse.Hub) *WorkOrderService {
	if clock == nil {
		clock = timer.SystemClock{}
	}
	return &WorkOrderService{
		workOrders: workOrders,
		clock:      clock,
		rdb:        rdb,
		hub:        hub,
		timers:     make(map[string]*timer.Timer),
	}
}

type CreateWorkOrderRequest struct {
	Operation        string `json:"operation" binding:"required"`
	WorkCenterID     string `json:"work_center_id"`
	EstimatedMinutes int    `json:"estimated_minutes"`
	Priority         string `json:"priority"`
	PriorityScore    int    `json:"priority_score"`
	DueDate          string `json:"due_date"` // YYYY-MM-DD
	AssignedUserID   string `json:"assigned_user_id"`
}

// Create 在制造订单下创建工单，计时器随工单隐式创建（停止状态）
func (s *WorkOrderService) Create(ctx context.Context, orderID string, req CreateWorkOrderRequest) (*entity.WorkOrder, error) {
	number := fmt.Sprintf("WO-%s%04d", s.clock.Now().Format("20060102"), s.clock.Now().UnixNano()%10000)
	wo, err := entity.NewWorkOrder(orderID, number, req.Operation, req.WorkCenterID, req.EstimatedMinutes)
	if err != nil {
		return nil, err
	}
	if req.Priority != "" {
		wo.Priority = entity.Priority(req.Priority)
	}
	wo.PriorityScore = req.PriorityScore
	wo.AssignedUserID = req.AssignedUserID
	if req.DueDate != "" {
		t, perr := time.Parse("2006-01-02", req.DueDate)
		if perr == nil {
			wo.DueDate = &t
		}
	}
	if err := s.workOrders.Create(wo); err != nil {
		return nil, &TransportError{Op: "create work order", Err: err}
	}
	s.invalidateSnapshot(ctx)
	return wo, nil
}

func (s *WorkOrderService) Get(id string) (*entity.WorkOrder, error) {
	wo, err := s.workOrders.GetByID(id)
	if err != nil {
		return nil, &TransportError{Op: "load work order", Err: err}
	}
	return wo, nil
}

func (s *WorkOrderService) List(params repository.WorkOrderListParams) ([]entity.WorkOrder, int64, error) {
	workOrders, total, err := s.workOrders.List(params)
	if err != nil {
		return nil, 0, &TransportError{Op: "list work orders", Err: err}
	}
	return workOrders, total, nil
}

// Queue 订单下的工单执行队列，按优先级排序
func (s *WorkOrderService) Queue(orderID string) ([]entity.WorkOrder, error) {
	workOrders, err := s.workOrders.ListByOrder(orderID)
	if err != nil {
		return nil, &TransportError{Op: "list work orders by order", Err: err}
	}
	return schedule.RankWorkOrders(workOrders), nil
}

// Transition 工单状态流转，联动计时器：
// 进入 IN_PROGRESS 启动计时；经 TO_CLOSE/DONE/CANCELLED 离开时停表并把
// 已计时长折算进实际工时。校验失败时工单与计时器都保持原状。
func (s *WorkOrderService) Transition(ctx context.Context, id string, target entity.Status) (*entity.WorkOrder, error) {
	wo, err := s.workOrders.GetByID(id)
	if err != nil {
		return nil, &TransportError{Op: "load work order", Err: err}
	}
	next, terr := lifecycle.Transition(wo.Status, target)
	if terr != nil {
		return nil, terr
	}

	t := s.timerFor(wo)
	switch next {
	case entity.StatusInProgress:
		if serr := t.Start(); serr != nil && !errors.Is(serr, timer.ErrAlreadyRunning) {
			return nil, serr
		}
	case entity.StatusToClose:
		if perr := t.Pause(); perr != nil && !errors.Is(perr, timer.ErrNotRunning) {
			return nil, perr
		}
		wo.ActualMinutes = int(t.Elapsed() / time.Minute)
	case entity.StatusDone:
		minutes, cerr := t.Complete()
		if cerr != nil {
			if !errors.Is(cerr, timer.ErrAlreadyTerminal) {
				return nil, cerr
			}
			// 上次落库失败后重试：计时器已结束，从累计时长重新折算
			minutes = int(t.Elapsed() / time.Minute)
		}
		wo.ActualMinutes = minutes
	case entity.StatusCancelled:
		// 取消保留已计工时，看板展示取消工单的真实时长
		minutes, cerr := t.Cancel()
		if cerr != nil {
			if !errors.Is(cerr, timer.ErrAlreadyTerminal) {
				return nil, cerr
			}
			minutes = int(t.Elapsed() / time.Minute)
		}
		wo.ActualMinutes = minutes
	}

	wo.Status = next
	s.syncTimer(wo, t)
	if err := s.workOrders.Update(wo); err != nil {
		return nil, &TransportError{Op: "persist work order", Err: err}
	}
	if s.hub != nil {
		s.hub.PublishWorkOrderUpdate(wo.OrderID, wo.ID, string(next))
	}
	s.invalidateSnapshot(ctx)
	return wo, nil
}

// PauseTimer 生产中临时停表（休息、换班），不改变工单状态
func (s *WorkOrderService) PauseTimer(ctx context.Context, id string) (*entity.WorkOrder, error) {
	wo, err := s.workOrders.GetByID(id)
	if err != nil {
		return nil, &TransportError{Op: "load work order", Err: err}
	}
	t := s.timerFor(wo)
	if perr := t.Pause(); perr != nil {
		return nil, perr
	}
	wo.ActualMinutes = int(t.Elapsed() / time.Minute)
	s.syncTimer(wo, t)
	if err := s.workOrders.Update(wo); err != nil {
		return nil, &TransportError{Op: "persist work order", Err: err}
	}
	return wo, nil
}

// ResumeTimer 恢复计时
func (s *WorkOrderService) ResumeTimer(ctx context.Context, id string) (*entity.WorkOrder, error) {
	wo, err := s.workOrders.GetByID(id)
	if err != nil {
		return nil, &TransportError{Op: "load work order", Err: err}
	}
	t := s.timerFor(wo)
	if serr := t.Start(); serr != nil {
		return nil, serr
	}
	s.syncTimer(wo, t)
	if err := s.workOrders.Update(wo); err != nil {
		return nil, &TransportError{Op: "persist work order", Err: err}
	}
	return wo, nil
}

// ElapsedSeconds 当前累计秒数，供看板轮询展示
func (s *WorkOrderService) ElapsedSeconds(id string) (int64, error) {
	wo, err := s.workOrders.GetByID(id)
	if err != nil {
		return 0, &TransportError{Op: "load work order", Err: err}
	}
	t := s.timerFor(wo)
	return int64(t.Elapsed() / time.Second), nil
}

// timerFor 取工单计时器，没有则从持久化字段恢复
func (s *WorkOrderService) timerFor(wo *entity.WorkOrder) *timer.Timer {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	if t, ok := s.timers[wo.ID]; ok {
		return t
	}
	t := timer.Restore(s.clock, timer.State(wo.TimerState), wo.TimerBaseSeconds, wo.TimerStartedAt)
	s.timers[wo.ID] = t
	return t
}

// syncTimer 把计时器现场写回工单的持久化字段
func (s *WorkOrderService) syncTimer(wo *entity.WorkOrder, t *timer.Timer) {
	state, baseSeconds, startedAt := t.Snapshot()
	wo.TimerState = string(state)
	wo.TimerBaseSeconds = baseSeconds
	wo.TimerStartedAt = startedAt
}

func (s *WorkOrderService) invalidateSnapshot(ctx context.Context) {
	if s.rdb != nil {
		s.rdb.Del(ctx, snapshotCacheKey)
	}
}
