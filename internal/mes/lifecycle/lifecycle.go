// Package lifecycle 统一管理订单与工单的状态流转。
// 所有调用方通过 Transition 校验流转，不允许各自内联判断状态。
package lifecycle

import (
	"fmt"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
)

// validNext 合法流转表。DONE 与 CANCELLED 为终态，无出边。
var validNext = map[entity.Status]map[entity.Status]bool{
	entity.StatusDraft:      {entity.StatusConfirmed: true, entity.StatusCancelled: true},
	entity.StatusConfirmed:  {entity.StatusInProgress: true, entity.StatusCancelled: true},
	entity.StatusInProgress: {entity.StatusToClose: true, entity.StatusCancelled: true},
	entity.StatusToClose:    {entity.StatusDone: true, entity.StatusCancelled: true},
	entity.StatusDone:       {},
	entity.StatusCancelled:  {},
}

// InvalidTransitionError 非法状态流转
type InvalidTransitionError struct {
	From entity.Status
	To   entity.Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("非法状态流转: %s -> %s", e.From, e.To)
}

// CanTransition 判断是否允许从 from 流转到 to
func CanTransition(from, to entity.Status) bool {
	return validNext[from][to]
}

// Transition 校验并返回新状态，失败时原状态不变
func Transition(current, target entity.Status) (entity.Status, error) {
	if !CanTransition(current, target) {
		return current, &InvalidTransitionError{From: current, To: target}
	}
	return target, nil
}
