// Package schedule 计算待执行队列的排序。
// 排序是纯投影：不修改输入，且对相等键保持稳定，避免看板重复刷新时跳动。
package schedule

import (
	"sort"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
)

// 档位与数值分的换算。数值越小越紧急：<=10 紧急，11-49 较急，>=50 普通。
const (
	scoreUrgent = 5
	scoreHigh   = 30
	scoreNormal = 50
	scoreLow    = 80
)

// EffectiveScore 归一化优先级：显式数值分优先，否则按档位换算
func EffectiveScore(p entity.Priority, score int) int {
	if score > 0 {
		return score
	}
	switch p {
	case entity.PriorityUrgent:
		return scoreUrgent
	case entity.PriorityHigh:
		return scoreHigh
	case entity.PriorityLow:
		return scoreLow
	default:
		return scoreNormal
	}
}

type sortKey struct {
	score       int
	hasDue      bool
	dueUnix     int64
	orderNumber string
}

// keyLess 排序键：(优先级升序, 截止日期升序, 订单号升序)，无截止日期排最后
func keyLess(a, b sortKey) bool {
	if a.score != b.score {
		return a.score < b.score
	}
	if a.hasDue != b.hasDue {
		return a.hasDue
	}
	if a.hasDue && a.dueUnix != b.dueUnix {
		return a.dueUnix < b.dueUnix
	}
	return a.orderNumber < b.orderNumber
}

func orderKey(o *entity.ManufacturingOrder) sortKey {
	k := sortKey{
		score:       EffectiveScore(o.Priority, o.PriorityScore),
		orderNumber: o.OrderNumber,
	}
	if o.DueDate != nil {
		k.hasDue = true
		k.dueUnix = o.DueDate.Unix()
	}
	return k
}

func workOrderKey(w *entity.WorkOrder) sortKey {
	k := sortKey{
		score:       EffectiveScore(w.Priority, w.PriorityScore),
		orderNumber: w.OrderNumber,
	}
	if w.DueDate != nil {
		k.hasDue = true
		k.dueUnix = w.DueDate.Unix()
	}
	return k
}

// Rank 返回制造订单的排序副本，不修改输入
func Rank(orders []entity.ManufacturingOrder) []entity.ManufacturingOrder {
	ranked := make([]entity.ManufacturingOrder, len(orders))
	copy(ranked, orders)
	sort.SliceStable(ranked, func(i, j int) bool {
		return keyLess(orderKey(&ranked[i]), orderKey(&ranked[j]))
	})
	return ranked
}

// RankWorkOrders 返回工单的排序副本，不修改输入
func RankWorkOrders(workOrders []entity.WorkOrder) []entity.WorkOrder {
	ranked := make([]entity.WorkOrder, len(workOrders))
	copy(ranked, workOrders)
	sort.SliceStable(ranked, func(i, j int) bool {
		return keyLess(workOrderKey(&ranked[i]), workOrderKey(&ranked[j]))
	})
	return ranked
}
