package service

import (
	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/google/uuid"
)

// WorkCenterStore 工作中心存储边界
type WorkCenterStore interface {
	Create(w *entity.WorkCenter) error
	GetByID(id string) (*entity.WorkCenter, error)
	List() ([]entity.WorkCenter, error)
}

// WorkCenterService 工作中心维护，只做引用数据管理
type WorkCenterService struct {
	centers WorkCenterStore
}

func NewWorkCenterService(centers WorkCenterStore) *WorkCenterService {
	return &WorkCenterService{centers: centers}
}

type CreateWorkCenterRequest struct {
	Code     string `json:"code" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Location string `json:"location"`
}

func (s *WorkCenterService) Create(req CreateWorkCenterRequest) (*entity.WorkCenter, error) {
	w := &entity.WorkCenter{
		ID:       uuid.New().String(),
		Code:     req.Code,
		Name:     req.Name,
		Location: req.Location,
	}
	if err := s.centers.Create(w); err != nil {
		return nil, &TransportError{Op: "create work center", Err: err}
	}
	return w, nil
}

func (s *WorkCenterService) Get(id string) (*entity.WorkCenter, error) {
	w, err := s.centers.GetByID(id)
	if err != nil {
		return nil, &TransportError{Op: "load work center", Err: err}
	}
	return w, nil
}

func (s *WorkCenterService) List() ([]entity.WorkCenter, error) {
	centers, err := s.centers.List()
	if err != nil {
		return nil, &TransportError{Op: "list work centers", Err: err}
	}
	return centers, nil
}
