package handler

import (
	"net/http"
	"strconv"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/bitfantasy/nimo-mes/internal/mes/service"
	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	svc *service.OrderService
}

func NewOrderHandler(svc *service.OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

func (h *OrderHandler) Create(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
		return
	}
	userID, _ := c.Get("user_id")
	order, err := h.svc.Create(c.Request.Context(), req, userID.(string))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": order})
}

func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.svc.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": order})
}

func (h *OrderHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	params := repository.OrderListParams{
		Status:    c.Query("status"),
		ProductID: c.Query("product_id"),
		Keyword:   c.Query("keyword"),
		Page:      page,
		Size:      size,
	}
	orders, total, err := h.svc.List(params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": gin.H{"items": orders, "total": total, "page": page, "size": size}})
}

func (h *OrderHandler) AddComponent(c *gin.Context) {
	var req service.ComponentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
		return
	}
	component, err := h.svc.AddComponent(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": component})
}

func (h *OrderHandler) UpdateComponent(c *gin.Context) {
	var req service.UpdateComponentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
		return
	}
	component, err := h.svc.UpdateComponent(c.Request.Context(), c.Param("id"), c.Param("componentId"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": component})
}

// Availability 重算订单物料充足度
func (h *OrderHandler) Availability(c *gin.Context) {
	result, err := h.svc.Availability(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": result})
}

func (h *OrderHandler) transition(c *gin.Context, target entity.Status) {
	order, err := h.svc.TransitionOrder(c.Request.Context(), c.Param("id"), target)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": order})
}

func (h *OrderHandler) Confirm(c *gin.Context)  { h.transition(c, entity.StatusConfirmed) }
func (h *OrderHandler) Start(c *gin.Context)    { h.transition(c, entity.StatusInProgress) }
func (h *OrderHandler) Close(c *gin.Context)    { h.transition(c, entity.StatusToClose) }
func (h *OrderHandler) Complete(c *gin.Context) { h.transition(c, entity.StatusDone) }
func (h *OrderHandler) Cancel(c *gin.Context)   { h.transition(c, entity.StatusCancelled) }
