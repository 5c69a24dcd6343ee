package handler

import (
	"errors"
	"net/http"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/lifecycle"
	"github.com/bitfantasy/nimo-mes/internal/mes/service"
	"github.com/bitfantasy/nimo-mes/internal/mes/sse"
	"github.com/bitfantasy/nimo-mes/internal/mes/timer"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handlers MES HTTP处理器集合
type Handlers struct {
	Order      *OrderHandler
	WorkOrder  *WorkOrderHandler
	WorkCenter *WorkCenterHandler
	Dashboard  *DashboardHandler
}

func NewHandlers(services *service.Services, hub *sse.Hub) *Handlers {
	return &Handlers{
		Order:      NewOrderHandler(services.Order),
		WorkOrder:  NewWorkOrderHandler(services.WorkOrder),
		WorkCenter: NewWorkCenterHandler(services.WorkCenter),
		Dashboard:  NewDashboardHandler(services.Dashboard, hub),
	}
}

// respondError 按错误类型映射HTTP响应
func respondError(c *gin.Context, err error) {
	var verr *entity.ValidationError
	var ierr *lifecycle.InvalidTransitionError
	var terr *service.TransportError

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
	case errors.As(err, &ierr):
		c.JSON(http.StatusBadRequest, gin.H{"code": 10004, "message": err.Error()})
	case errors.Is(err, timer.ErrAlreadyRunning),
		errors.Is(err, timer.ErrNotRunning),
		errors.Is(err, timer.ErrAlreadyTerminal):
		c.JSON(http.StatusBadRequest, gin.H{"code": 10005, "message": err.Error()})
	case errors.As(err, &terr):
		if errors.Is(terr.Err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": 10002, "message": "记录不存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"code": 50001, "message": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"code": 50001, "message": err.Error()})
	}
}
