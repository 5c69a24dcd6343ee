package handler

import (
	"net/http"

	"github.com/bitfantasy/nimo-mes/internal/mes/service"
	"github.com/gin-gonic/gin"
)

type WorkCenterHandler struct {
	svc *service.WorkCenterService
}

func NewWorkCenterHandler(svc *service.WorkCenterService) *WorkCenterHandler {
	return &WorkCenterHandler{svc: svc}
}

func (h *WorkCenterHandler) Create(c *gin.Context) {
	var req service.CreateWorkCenterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
		return
	}
	center, err := h.svc.Create(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": center})
}

func (h *WorkCenterHandler) Get(c *gin.Context) {
	center, err := h.svc.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": center})
}

func (h *WorkCenterHandler) List(c *gin.Context) {
	centers, err := h.svc.List()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": centers})
}
