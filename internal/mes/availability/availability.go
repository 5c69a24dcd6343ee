// Package availability 集中定义物料充足度判定，所有展示与调度逻辑共用同一口径。
package availability

import "github.com/bitfantasy/nimo-mes/internal/mes/entity"

// Level 物料充足度
type Level string

const (
	LevelSufficient   Level = "SUFFICIENT"   // 充足
	LevelLow          Level = "LOW"          // 偏低
	LevelInsufficient Level = "INSUFFICIENT" // 不足
)

// Evaluate 按 (可用量, 消耗量, 告警阈值) 计算充足度
func Evaluate(available, toConsume, minThreshold float64) Level {
	remaining := available - toConsume
	switch {
	case remaining < 0:
		return LevelInsufficient
	case remaining <= minThreshold:
		return LevelLow
	default:
		return LevelSufficient
	}
}

// EvaluateComponent 对单个物料求充足度
func EvaluateComponent(c *entity.Component) Level {
	return Evaluate(c.Available, c.ToConsume, c.MinThreshold)
}

// OrderReady 订单可执行判定：任一物料不足即不可执行。
// 每次调用重新计算，不做缓存。
func OrderReady(components []entity.Component) bool {
	for i := range components {
		if EvaluateComponent(&components[i]) == LevelInsufficient {
			return false
		}
	}
	return true
}
