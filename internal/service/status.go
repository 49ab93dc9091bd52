package service

import (
	"github.com/iliyamo/food-court-orders/internal/model"
	"github.com/iliyamo/food-court-orders/internal/repository"
)

// Status enforces the order lifecycle: received → making → done, strictly
// linear. Paid is terminal and immutable through both operations here.
type Status struct {
	Orders *repository.OrderRepo
}

// NewStatus constructs the state machine over the ledger repo.
func NewStatus(orders *repository.OrderRepo) *Status {
	return &Status{Orders: orders}
}

// Advance moves an order one step forward and persists it. done and paid
// have no successor; advancing them is a no-op that returns the order
// unchanged rather than an error, so a double-click on the ops board is
// harmless.
func (s *Status) Advance(storeName, oid string) (model.Order, error) {
	return s.Orders.Update(storeName, oid, func(o *model.Order) error {
		switch o.Status {
		case model.StatusReceived:
			o.Status = model.StatusMaking
		case model.StatusMaking:
			o.Status = model.StatusDone
		}
		return nil
	})
}

// SetStatus is the seller override for mis-clicked orders: it moves an order
// to any of the three non-terminal states regardless of its current state.
// The UI only offers it for finished orders, but the server deliberately
// stays permissive (see DESIGN.md); the one hard rule is that paid can never
// be a target.
func (s *Status) SetStatus(storeName, oid string, target int) (model.Order, error) {
	if !model.ValidOverrideStatus(target) {
		return model.Order{}, newValidationError("bad status")
	}
	return s.Orders.Update(storeName, oid, func(o *model.Order) error {
		o.Status = target
		return nil
	})
}
