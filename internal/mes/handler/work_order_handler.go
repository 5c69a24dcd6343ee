package handler

import (
	"net/http"
	"strconv"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/bitfantasy/nimo-mes/internal/mes/service"
	"github.com/gin-gonic/gin"
)

type WorkOrderHandler struct {
	svc *service.WorkOrderService
}

func NewWorkOrderHandler(svc *service.WorkOrderService) *WorkOrderHandler {
	return &WorkOrderHandler{svc: svc}
}

// Create 在制造订单下创建工单，路由 /orders/:id/work-orders
func (h *WorkOrderHandler) Create(c *gin.Context) {
	var req service.CreateWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
		return
	}
	wo, err := h.svc.Create(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": wo})
}

func (h *WorkOrderHandler) Get(c *gin.Context) {
	wo, err := h.svc.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": wo})
}

func (h *WorkOrderHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	params := repository.WorkOrderListParams{
		Status:       c.Query("status"),
		WorkCenterID: c.Query("work_center_id"),
		Keyword:      c.Query("keyword"),
		Page:         page,
		Size:         size,
	}
	workOrders, total, err := h.svc.List(params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": gin.H{"items": workOrders, "total": total, "page": page, "size": size}})
}

// Queue 订单下按优先级排序的工单队列，路由 /orders/:id/work-orders
func (h *WorkOrderHandler) Queue(c *gin.Context) {
	workOrders, err := h.svc.Queue(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": workOrders})
}

// Elapsed 当前累计秒数，看板轮询用
func (h *WorkOrderHandler) Elapsed(c *gin.Context) {
	seconds, err := h.svc.ElapsedSeconds(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": gin.H{"elapsed_seconds": seconds}})
}

func (h *WorkOrderHandler) PauseTimer(c *gin.Context) {
	wo, err := h.svc.PauseTimer(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": wo})
}

func (h *WorkOrderHandler) ResumeTimer(c *gin.Context) {
	wo, err := h.svc.ResumeTimer(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": wo})
}

func (h *WorkOrderHandler) transition(c *gin.Context, target entity.Status) {
	wo, err := h.svc.Transition(c.Request.Context(), c.Param("id"), target)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": wo})
}

func (h *WorkOrderHandler) Confirm(c *gin.Context)  { h.transition(c, entity.StatusConfirmed) }
func (h *WorkOrderHandler) Start(c *gin.Context)    { h.transition(c, entity.StatusInProgress) }
func (h *WorkOrderHandler) Close(c *gin.Context)    { h.transition(c, entity.StatusToClose) }
func (h *WorkOrderHandler) Complete(c *gin.Context) { h.transition(c, entity.StatusDone) }
func (h *WorkOrderHandler) Cancel(c *gin.Context)   { h.transition(c, entity.StatusCancelled) }
