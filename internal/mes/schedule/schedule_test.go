package schedule

import (
	"testing"
	"time"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
)

func datePtr(s string) *time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return &t
}

func TestEffectiveScore(t *testing.T) {
	cases := []struct {
		priority entity.Priority
		score    int
		want     int
	}{
		{entity.PriorityUrgent, 0, 5},
		{entity.PriorityHigh, 0, 30},
		{entity.PriorityNormal, 0, 50},
		{entity.PriorityLow, 0, 80},
		{entity.PriorityLow, 3, 3}, // 显式数值分优先于档位
		{entity.PriorityUrgent, 99, 99},
	}
	for _, tc := range cases {
		if got := EffectiveScore(tc.priority, tc.score); got != tc.want {
			t.Errorf("EffectiveScore(%s, %d) = %d, want %d", tc.priority, tc.score, got, tc.want)
		}
	}
}

func TestRankMixedRepresentations(t *testing.T) {
	orders := []entity.ManufacturingOrder{
		{OrderNumber: "MO-3", Priority: entity.PriorityNormal},
		{OrderNumber: "MO-1", Priority: entity.PriorityLow, PriorityScore: 8}, // 数值分紧急
		{OrderNumber: "MO-2", Priority: entity.PriorityUrgent},
		{OrderNumber: "MO-4", Priority: entity.PriorityHigh},
	}
	ranked := Rank(orders)
	want := []string{"MO-2", "MO-1", "MO-4", "MO-3"}
	for i, w := range want {
		if ranked[i].OrderNumber != w {
			t.Fatalf("position %d = %s, want %s", i, ranked[i].OrderNumber, w)
		}
	}
}

func TestRankDueDateThenOrderNumber(t *testing.T) {
	orders := []entity.ManufacturingOrder{
		{OrderNumber: "MO-C", Priority: entity.PriorityHigh},                               // 无截止日期排最后
		{OrderNumber: "MO-B", Priority: entity.PriorityHigh, DueDate: datePtr("2026-09-10")},
		{OrderNumber: "MO-A", Priority: entity.PriorityHigh, DueDate: datePtr("2026-09-10")},
		{OrderNumber: "MO-D", Priority: entity.PriorityHigh, DueDate: datePtr("2026-09-05")},
	}
	ranked := Rank(orders)
	want := []string{"MO-D", "MO-A", "MO-B", "MO-C"}
	for i, w := range want {
		if ranked[i].OrderNumber != w {
			t.Fatalf("position %d = %s, want %s", i, ranked[i].OrderNumber, w)
		}
	}
}

func TestRankIsStableAndPure(t *testing.T) {
	orders := []entity.ManufacturingOrder{
		{OrderNumber: "MO-2", Priority: entity.PriorityNormal},
		{OrderNumber: "MO-1", Priority: entity.PriorityUrgent},
		{OrderNumber: "MO-3", Priority: entity.PriorityNormal},
	}

	first := Rank(orders)
	second := Rank(orders)
	if len(first) != len(second) {
		t.Fatalf("ranked lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].OrderNumber != second[i].OrderNumber {
			t.Errorf("position %d differs between runs: %s vs %s", i, first[i].OrderNumber, second[i].OrderNumber)
		}
	}

	// 输入不被修改
	if orders[0].OrderNumber != "MO-2" || orders[1].OrderNumber != "MO-1" {
		t.Error("Rank mutated its input")
	}
}

func TestRankWorkOrders(t *testing.T) {
	workOrders := []entity.WorkOrder{
		{OrderNumber: "WO-2", Priority: entity.PriorityNormal},
		{OrderNumber: "WO-1", Priority: entity.PriorityUrgent},
	}
	ranked := RankWorkOrders(workOrders)
	if ranked[0].OrderNumber != "WO-1" {
		t.Errorf("first = %s, want WO-1", ranked[0].OrderNumber)
	}
}
