package handler

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/bitfantasy/nimo-mes/internal/mes/refresh"
	"github.com/bitfantasy/nimo-mes/internal/mes/service"
	"github.com/bitfantasy/nimo-mes/internal/mes/sse"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type DashboardHandler struct {
	svc *service.DashboardService
	hub *sse.Hub
}

func NewDashboardHandler(svc *service.DashboardService, hub *sse.Hub) *DashboardHandler {
	return &DashboardHandler{svc: svc, hub: hub}
}

// Snapshot 当前看板快照：排序后的订单队列与物料充足度
func (h *DashboardHandler) Snapshot(c *gin.Context) {
	snap, err := h.svc.GetSnapshot(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": snap})
}

// Refresh 请求刷新快照。force=true 绕过最小间隔，但不绕过在途刷新。
func (h *DashboardHandler) Refresh(c *gin.Context) {
	force, _ := strconv.ParseBool(c.DefaultQuery("force", "false"))
	filters := refresh.Filters{
		Status:       c.Query("status"),
		WorkCenterID: c.Query("work_center_id"),
		Keyword:      c.Query("keyword"),
	}
	ran, err := h.svc.RequestRefresh(c.Request.Context(), filters, force)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": gin.H{"refreshed": ran}})
}

// StartAutoRefresh 开启周期自动刷新，interval_seconds 默认5秒
func (h *DashboardHandler) StartAutoRefresh(c *gin.Context) {
	seconds, _ := strconv.Atoi(c.DefaultQuery("interval_seconds", "5"))
	if seconds <= 0 {
		seconds = 5
	}
	h.svc.StartAutoRefresh(time.Duration(seconds) * time.Second)
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success"})
}

func (h *DashboardHandler) StopAutoRefresh(c *gin.Context) {
	h.svc.StopAutoRefresh()
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success"})
}

// Stream SSE事件流，推送订单/工单状态变更与队列刷新事件
func (h *DashboardHandler) Stream(c *gin.Context) {
	client := &sse.Client{
		ID:     uuid.New().String(),
		UserID: c.GetString("user_id"),
		Events: make(chan sse.Event, 16),
	}
	h.hub.Register(client)
	defer h.hub.Unregister(client.ID)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-client.Events:
			if !ok {
				return false
			}
			c.SSEvent(ev.EventType, ev.Data)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
