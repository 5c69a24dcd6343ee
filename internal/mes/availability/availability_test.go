package availability

import (
	"testing"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
)

func TestEvaluate(t *testing.T) {
	cases := []struct {
		name         string
		available    float64
		toConsume    float64
		minThreshold float64
		want         Level
	}{
		{"剩余高于阈值", 50, 20, 10, LevelSufficient},
		{"剩余在阈值内", 50, 45, 10, LevelLow},
		{"剩余为负", 50, 60, 10, LevelInsufficient},
		{"剩余恰为零", 50, 50, 10, LevelLow},
		{"剩余恰为阈值", 60, 50, 10, LevelLow},
		{"零阈值剩余为零", 50, 50, 0, LevelLow},
		{"零阈值有剩余", 50, 40, 0, LevelSufficient},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Evaluate(tc.available, tc.toConsume, tc.minThreshold)
			if got != tc.want {
				t.Errorf("Evaluate(%v, %v, %v) = %s, want %s", tc.available, tc.toConsume, tc.minThreshold, got, tc.want)
			}
		})
	}
}

// 消耗量单调上升时状态只会恶化，不会从不足回到偏低/充足
func TestEvaluateMonotonic(t *testing.T) {
	const available, minThreshold = 100.0, 10.0
	rank := map[Level]int{LevelSufficient: 0, LevelLow: 1, LevelInsufficient: 2}

	prev := Evaluate(available, 0, minThreshold)
	for toConsume := 1.0; toConsume <= 150; toConsume++ {
		got := Evaluate(available, toConsume, minThreshold)
		if rank[got] < rank[prev] {
			t.Fatalf("toConsume=%v: level improved from %s to %s", toConsume, prev, got)
		}
		prev = got
	}
}

func TestOrderReady(t *testing.T) {
	sufficient := entity.Component{SKU: "A", Available: 50, ToConsume: 20, MinThreshold: 10}
	low := entity.Component{SKU: "B", Available: 50, ToConsume: 45, MinThreshold: 10}
	insufficient := entity.Component{SKU: "C", Available: 50, ToConsume: 60, MinThreshold: 10}

	if !OrderReady([]entity.Component{sufficient, low}) {
		t.Error("订单物料充足或偏低时应当可执行")
	}
	if OrderReady([]entity.Component{sufficient, insufficient}) {
		t.Error("存在不足物料时订单不可执行")
	}
	if !OrderReady(nil) {
		t.Error("无物料的订单默认可执行")
	}
}
