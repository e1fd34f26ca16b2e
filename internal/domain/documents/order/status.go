package order

import (
	"context"

	"github.com/looplab/fsm"

	"tradelink/internal/core/apperror"
)

// Status is the order lifecycle state.
type Status string

const (
	StatusPending           Status = "pending"
	StatusApproved          Status = "approved"
	StatusDispatched        Status = "dispatched"
	StatusDelivered         Status = "delivered"
	StatusCancelled         Status = "cancelled"
	StatusPartiallyReturned Status = "partially_returned"
	StatusReturned          Status = "returned"
)

// ValidStatus reports whether s is a known status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusApproved, StatusDispatched, StatusDelivered,
		StatusCancelled, StatusPartiallyReturned, StatusReturned:
		return true
	}
	return false
}

// Lifecycle events.
const (
	EventApprove       = "approve"
	EventDispatch      = "dispatch"
	EventDeliver       = "deliver"
	EventCancel        = "cancel"
	EventReturnPartial = "return_partial"
	EventReturnFull    = "return_full"
)

// eventForTarget maps a requested target status to the lifecycle event.
var eventForTarget = map[Status]string{
	StatusApproved:          EventApprove,
	StatusDispatched:        EventDispatch,
	StatusDelivered:         EventDeliver,
	StatusCancelled:         EventCancel,
	StatusPartiallyReturned: EventReturnPartial,
	StatusReturned:          EventReturnFull,
}

// newStatusMachine builds the lifecycle state machine seeded at current.
//
//	pending -> approved -> dispatched -> delivered
//	pending/approved -> cancelled
//	approved/dispatched/delivered -> partially_returned -> returned
//	approved/dispatched/delivered -> returned
func newStatusMachine(current Status) *fsm.FSM {
	return fsm.NewFSM(
		string(current),
		fsm.Events{
			{Name: EventApprove, Src: []string{string(StatusPending)}, Dst: string(StatusApproved)},
			{Name: EventDispatch, Src: []string{string(StatusApproved)}, Dst: string(StatusDispatched)},
			{Name: EventDeliver, Src: []string{string(StatusDispatched)}, Dst: string(StatusDelivered)},
			{Name: EventCancel, Src: []string{string(StatusPending), string(StatusApproved)}, Dst: string(StatusCancelled)},
			{Name: EventReturnPartial, Src: returnableStatuses, Dst: string(StatusPartiallyReturned)},
			{Name: EventReturnFull, Src: returnableStatuses, Dst: string(StatusReturned)},
		},
		fsm.Callbacks{},
	)
}

// ChangeStatus transitions the order to the target status.
// Disallowed transitions return CodeInvalidStatusChange.
func (o *Order) ChangeStatus(ctx context.Context, target Status) error {
	if o.Status == target {
		return nil
	}

	event, ok := eventForTarget[target]
	if !ok {
		return apperror.NewInvalidStatusChange(string(o.Status), string(target))
	}

	machine := newStatusMachine(o.Status)
	if err := machine.Event(ctx, event); err != nil {
		return apperror.NewInvalidStatusChange(string(o.Status), string(target))
	}

	o.Status = Status(machine.Current())
	o.Touch()
	return nil
}

// CanChangeStatus reports whether the transition is allowed.
func (o *Order) CanChangeStatus(target Status) bool {
	if o.Status == target {
		return true
	}
	event, ok := eventForTarget[target]
	if !ok {
		return false
	}
	return newStatusMachine(o.Status).Can(event)
}

// returnableStatuses are the states a return may be registered from.
// Stock is committed once an order is approved, so returns are accepted
// before delivery too.
var returnableStatuses = []string{
	string(StatusApproved),
	string(StatusDispatched),
	string(StatusDelivered),
	string(StatusPartiallyReturned),
}

// IsReturnable reports whether returns may be registered against the order.
func (o *Order) IsReturnable() bool {
	switch o.Status {
	case StatusApproved, StatusDispatched, StatusDelivered, StatusPartiallyReturned:
		return true
	}
	return false
}
