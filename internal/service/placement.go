package service

import (
	"fmt"

	"github.com/iliyamo/food-court-orders/internal/model"
	"github.com/iliyamo/food-court-orders/internal/repository"
)

// Line is one requested item tagged with the store that sells it. Both wire
// shapes of the checkout body are normalized into a []Line at the boundary
// before this package sees them.
type Line struct {
	StoreName string
	ItemName  string
}

// CreatedOrder pairs an order with the store it was created in, for the
// multi-store checkout response.
type CreatedOrder struct {
	StoreName string      `json:"storeName"`
	Order     model.Order `json:"order"`
}

// PartialFailure reports a multi-store checkout that validated fully but
// failed while committing one store's ledger. Orders created for earlier
// stores are NOT rolled back; callers must surface them alongside the
// failure instead of pretending nothing happened.
type PartialFailure struct {
	Created   []CreatedOrder // orders that were committed before the failure
	StoreName string         // the store whose commit failed
	Err       error
}

func (e *PartialFailure) Error() string {
	return fmt.Sprintf("placement failed for store %s after %d order(s) created: %v",
		e.StoreName, len(e.Created), e.Err)
}

func (e *PartialFailure) Unwrap() error { return e.Err }

// Placement runs the checkout pipeline: group a cart by store, validate
// every group, then create one order per store.
type Placement struct {
	Stores *repository.StoreRepo
	Orders *repository.OrderRepo
}

// NewPlacement constructs the pipeline over its repositories.
func NewPlacement(stores *repository.StoreRepo, orders *repository.OrderRepo) *Placement {
	return &Placement{Stores: stores, Orders: orders}
}

// ItemNotFoundError names the store and item that failed menu validation so
// the client can pinpoint the bad cart entry.
type ItemNotFoundError struct {
	StoreName string
	ItemName  string
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("item %q not found in store %q", e.ItemName, e.StoreName)
}

// StoreNotFoundError names the store a cart entry referenced that has no
// record. Wraps repository.ErrStoreNotFound so errors.Is keeps working.
type StoreNotFoundError struct {
	StoreName string
}

func (e *StoreNotFoundError) Error() string {
	return fmt.Sprintf("store %q not found", e.StoreName)
}

func (e *StoreNotFoundError) Unwrap() error { return repository.ErrStoreNotFound }

// Place validates the whole cart, then creates one order per store.
//
// Validation is all-or-nothing: every group is checked against its store's
// current catalog before any ledger is touched, so a bad item in one store
// blocks the entire checkout. Commits are per store and independent — each
// store's lock is taken one at a time, and a failure writing a later
// store's ledger does not roll back earlier stores. That case returns
// *PartialFailure carrying the orders already created.
func (p *Placement) Place(lines []Line, clientUsername string) ([]CreatedOrder, error) {
	if len(lines) == 0 {
		return nil, newValidationError("no items in order")
	}
	for _, l := range lines {
		if l.StoreName == "" {
			return nil, newValidationError("line missing store name")
		}
		if l.ItemName == "" {
			return nil, newValidationError("line missing item name")
		}
	}

	// Group by store, preserving first-seen store order so the response is
	// stable for the client.
	groups := make(map[string][]string)
	var order []string
	for _, l := range lines {
		if _, ok := groups[l.StoreName]; !ok {
			order = append(order, l.StoreName)
		}
		groups[l.StoreName] = append(groups[l.StoreName], l.ItemName)
	}

	// Validate every group before creating anything.
	for _, storeName := range order {
		store, err := p.Stores.Get(storeName)
		if err != nil {
			if err == repository.ErrStoreNotFound {
				return nil, &StoreNotFoundError{StoreName: storeName}
			}
			return nil, err
		}
		for _, item := range groups[storeName] {
			if !store.MenuHas(item) {
				return nil, &ItemNotFoundError{StoreName: storeName, ItemName: item}
			}
		}
	}

	// Commit group by group. Only one store's lock is held at a time.
	created := make([]CreatedOrder, 0, len(order))
	for _, storeName := range order {
		o, err := p.Orders.Append(storeName, groups[storeName], clientUsername)
		if err != nil {
			return created, &PartialFailure{Created: created, StoreName: storeName, Err: err}
		}
		created = append(created, CreatedOrder{StoreName: storeName, Order: o})
	}
	return created, nil
}
