package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/iliyamo/food-court-orders/internal/model"
	"github.com/iliyamo/food-court-orders/internal/utils"
)

// oidRetries bounds the regeneration loop when a freshly minted external id
// collides with one already in the ledger.
const oidRetries = 8

// OrderRepo owns the per-store ledgers: one JSON array file per store name
// under dir, rewritten wholesale on every mutation. All writes for a store
// run under that store's mutex from the shared KeyedMutex, which is the
// serialization point the whole service depends on.
type OrderRepo struct {
	dir    string
	locks  *KeyedMutex
	newOID func() (string, error) // replaceable in tests to force collisions
	now    func() time.Time
}

// NewOrderRepo returns a ledger repo rooted at dir. The KeyedMutex must be
// the same instance the store repo uses.
func NewOrderRepo(dir string, locks *KeyedMutex) *OrderRepo {
	return &OrderRepo{
		dir:    dir,
		locks:  locks,
		newOID: utils.NewOrderOID,
		now:    time.Now,
	}
}

func (r *OrderRepo) path(storeName string) string {
	return filepath.Join(r.dir, "orders-"+storeName+".json")
}

// load reads a store's ledger. A missing file is an empty ledger, not an
// error: stores get their first ledger file on their first order.
func (r *OrderRepo) load(storeName string) ([]model.Order, error) {
	b, err := os.ReadFile(r.path(storeName))
	if err != nil {
		if os.IsNotExist(err) {
			return []model.Order{}, nil
		}
		return nil, err
	}
	var orders []model.Order
	if err := json.Unmarshal(b, &orders); err != nil {
		return nil, fmt.Errorf("ledger %s: %w", storeName, err)
	}
	return orders, nil
}

func (r *OrderRepo) save(storeName string, orders []model.Order) error {
	b, err := json.MarshalIndent(orders, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(r.path(storeName), b, 0o644)
}

// Append creates one order with status received at the tail of the store's
// ledger and returns it. The sequence id is max(existing)+1 computed inside
// the lock, so N concurrent appends always yield N distinct consecutive ids.
// The external id is regenerated on collision up to oidRetries times.
func (r *OrderRepo) Append(storeName string, items []string, clientUsername string) (model.Order, error) {
	unlock := r.locks.Lock(storeName)
	defer unlock()

	orders, err := r.load(storeName)
	if err != nil {
		return model.Order{}, err
	}

	next := 1
	for i := range orders {
		if orders[i].SequenceID >= next {
			next = orders[i].SequenceID + 1
		}
	}

	oid, err := r.freshOID(orders)
	if err != nil {
		return model.Order{}, err
	}

	order := model.Order{
		CreatedAt:      r.now().UTC().Format(time.RFC3339),
		SequenceID:     next,
		OID:            oid,
		Items:          items,
		Status:         model.StatusReceived,
		ClientUsername: clientUsername,
	}
	orders = append(orders, order)
	if err := r.save(storeName, orders); err != nil {
		return model.Order{}, err
	}
	return order, nil
}

// freshOID mints external ids until one is unused in the ledger. Collisions
// are statistically rare but must never silently alias two orders.
func (r *OrderRepo) freshOID(orders []model.Order) (string, error) {
	for i := 0; i < oidRetries; i++ {
		oid, err := r.newOID()
		if err != nil {
			return "", err
		}
		taken := false
		for j := range orders {
			if orders[j].OID == oid {
				taken = true
				break
			}
		}
		if !taken {
			return oid, nil
		}
	}
	return "", ErrOIDExhausted
}

// List returns every order in a store's ledger in append order.
func (r *OrderRepo) List(storeName string) ([]model.Order, error) {
	unlock := r.locks.Lock(storeName)
	defer unlock()
	return r.load(storeName)
}

// Update applies fn to the order with the given external id and persists the
// ledger. fn may reject the mutation by returning an error, in which case
// nothing is written.
func (r *OrderRepo) Update(storeName, oid string, fn func(*model.Order) error) (model.Order, error) {
	unlock := r.locks.Lock(storeName)
	defer unlock()

	orders, err := r.load(storeName)
	if err != nil {
		return model.Order{}, err
	}
	for i := range orders {
		if orders[i].OID != oid {
			continue
		}
		if err := fn(&orders[i]); err != nil {
			return model.Order{}, err
		}
		if err := r.save(storeName, orders); err != nil {
			return model.Order{}, err
		}
		return orders[i], nil
	}
	return model.Order{}, ErrOrderNotFound
}

// CountActive returns how many of the store's orders are still queued
// (received or making). This is the derived queueCount the registry overlays
// on every listing.
func (r *OrderRepo) CountActive(storeName string) (int, error) {
	orders, err := r.List(storeName)
	if err != nil {
		return 0, err
	}
	n := 0
	for i := range orders {
		if orders[i].Active() {
			n++
		}
	}
	return n, nil
}

// Clear truncates a store's ledger to empty. Sequence ids restart at 1
// afterwards; that reset is deliberate and documented, not an oversight.
func (r *OrderRepo) Clear(storeName string) error {
	unlock := r.locks.Lock(storeName)
	defer unlock()
	return r.save(storeName, []model.Order{})
}

// StoreNames lists every store that currently has a ledger file. Used by the
// maintenance sweep, which must clear stores it has never seen an order for
// in this process lifetime.
func (r *OrderRepo) StoreNames() ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		n := e.Name()
		if strings.HasPrefix(n, "orders-") && strings.HasSuffix(n, ".json") {
			names = append(names, strings.TrimSuffix(strings.TrimPrefix(n, "orders-"), ".json"))
		}
	}
	return names, nil
}

// SetOIDSource replaces the external-id generator. Tests use it to force
// collisions deterministically.
func (r *OrderRepo) SetOIDSource(fn func() (string, error)) { r.newOID = fn }

// SetClock replaces the timestamp source. Tests use it for stable output.
func (r *OrderRepo) SetClock(fn func() time.Time) { r.now = fn }
