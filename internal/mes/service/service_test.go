package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"gorm.io/gorm"
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

// fakeOrderStore 内存订单存储
type fakeOrderStore struct {
	mu     sync.Mutex
	orders map[string]*entity.ManufacturingOrder
	// 模拟存储故障
	failOp string
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: make(map[string]*entity.ManufacturingOrder)}
}

func (s *fakeOrderStore) Create(o *entity.ManufacturingOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOp == "create" {
		return fmt.Errorf("connection refused")
	}
	cp := *o
	s.orders[o.ID] = &cp
	return nil
}

func (s *fakeOrderStore) GetByID(id string) (*entity.ManufacturingOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *o
	cp.Components = append([]entity.Component(nil), o.Components...)
	cp.WorkOrders = append([]entity.WorkOrder(nil), o.WorkOrders...)
	return &cp, nil
}

func (s *fakeOrderStore) Update(o *entity.ManufacturingOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[o.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *o
	s.orders[o.ID] = &cp
	return nil
}

func (s *fakeOrderStore) UpdateStatus(id string, status entity.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOp == "update_status" {
		return fmt.Errorf("connection refused")
	}
	o, ok := s.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	o.Status = status
	return nil
}

func (s *fakeOrderStore) List(params repository.OrderListParams) ([]entity.ManufacturingOrder, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.ManufacturingOrder
	for _, o := range s.orders {
		if params.Status != "" && string(o.Status) != params.Status {
			continue
		}
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (s *fakeOrderStore) ListActive() ([]entity.ManufacturingOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOp == "list_active" {
		return nil, fmt.Errorf("connection refused")
	}
	var out []entity.ManufacturingOrder
	for _, o := range s.orders {
		if o.Status.IsTerminal() {
			continue
		}
		cp := *o
		cp.Components = append([]entity.Component(nil), o.Components...)
		cp.WorkOrders = append([]entity.WorkOrder(nil), o.WorkOrders...)
		out = append(out, cp)
	}
	return out, nil
}

func (s *fakeOrderStore) CreateComponent(c *entity.Component) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[c.OrderID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	o.Components = append(o.Components, *c)
	return nil
}

func (s *fakeOrderStore) UpdateComponent(c *entity.Component) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[c.OrderID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range o.Components {
		if o.Components[i].ID == c.ID {
			o.Components[i] = *c
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// fakeWorkOrderStore 内存工单存储
type fakeWorkOrderStore struct {
	mu         sync.Mutex
	workOrders map[string]*entity.WorkOrder
	// 模拟落库故障：>0 时 Update 失败并递减
	failUpdates int
}

func newFakeWorkOrderStore() *fakeWorkOrderStore {
	return &fakeWorkOrderStore{workOrders: make(map[string]*entity.WorkOrder)}
}

func (s *fakeWorkOrderStore) Create(w *entity.WorkOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *w
	s.workOrders[w.ID] = &cp
	return nil
}

func (s *fakeWorkOrderStore) GetByID(id string) (*entity.WorkOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workOrders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *w
	return &cp, nil
}

func (s *fakeWorkOrderStore) Update(w *entity.WorkOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUpdates > 0 {
		s.failUpdates--
		return fmt.Errorf("connection refused")
	}
	if _, ok := s.workOrders[w.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *w
	s.workOrders[w.ID] = &cp
	return nil
}

func (s *fakeWorkOrderStore) ListByOrder(orderID string) ([]entity.WorkOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.WorkOrder
	for _, w := range s.workOrders {
		if w.OrderID == orderID {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (s *fakeWorkOrderStore) List(params repository.WorkOrderListParams) ([]entity.WorkOrder, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.WorkOrder
	for _, w := range s.workOrders {
		if params.Status != "" && string(w.Status) != params.Status {
			continue
		}
		out = append(out, *w)
	}
	return out, int64(len(out)), nil
}
