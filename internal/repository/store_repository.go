package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/iliyamo/food-court-orders/internal/model"
)

// EditCommand is the closed set of mutations a seller may apply to their
// store record. Keeping this a tagged variant instead of a generic
// property-path setter means an unknown field can never be reached from
// client input; the boundary either produces one of these or rejects the
// request outright.
type EditCommand interface{ isEditCommand() }

// RenameStore changes the display name. The file key stays the original
// store name, which is the partition key for the ledger and must not move.
type RenameStore struct{ Name string }

// SetCuisine changes the cuisine label.
type SetCuisine struct{ Cuisine string }

// ReplaceMenu swaps the whole catalog. The boundary validates the items
// before constructing this command.
type ReplaceMenu struct{ Menu []model.MenuItem }

// SetReceivingOrders toggles whether the store accepts new orders.
type SetReceivingOrders struct{ Receiving bool }

func (RenameStore) isEditCommand()        {}
func (SetCuisine) isEditCommand()         {}
func (ReplaceMenu) isEditCommand()        {}
func (SetReceivingOrders) isEditCommand() {}

// StoreRepo owns the store records: one pretty-printed JSON file per store
// under dir. Reads of different stores are independent; every mutation runs
// under the store's mutex shared with the ledger repo.
type StoreRepo struct {
	dir    string
	locks  *KeyedMutex
	orders *OrderRepo
}

// NewStoreRepo returns a store repo rooted at dir. locks must be the same
// instance the ledger repo uses; orders supplies the derived queue counts.
func NewStoreRepo(dir string, locks *KeyedMutex, orders *OrderRepo) *StoreRepo {
	return &StoreRepo{dir: dir, locks: locks, orders: orders}
}

func (r *StoreRepo) path(name string) string {
	return filepath.Join(r.dir, name+".json")
}

// Get loads one store record by name.
func (r *StoreRepo) Get(name string) (model.Store, error) {
	b, err := os.ReadFile(r.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return model.Store{}, ErrStoreNotFound
		}
		return model.Store{}, err
	}
	var s model.Store
	if err := json.Unmarshal(b, &s); err != nil {
		return model.Store{}, fmt.Errorf("store %s: %w", name, err)
	}
	return s, nil
}

// Exists reports whether a record is present for the store name.
func (r *StoreRepo) Exists(name string) bool {
	_, err := os.Stat(r.path(name))
	return err == nil
}

func (r *StoreRepo) save(name string, s model.Store) error {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(r.path(name), b, 0o644)
}

// ListAll reads every store record and overlays the live queue count from
// each store's ledger. Unreadable files are skipped rather than failing the
// whole listing; a single corrupt record must not take the storefront down.
func (r *StoreRepo) ListAll() ([]model.Store, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []model.Store{}, nil
		}
		return nil, err
	}
	stores := make([]model.Store, 0, len(entries))
	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".json")
		s, err := r.Get(name)
		if err != nil {
			continue
		}
		if n, err := r.orders.CountActive(s.Name); err == nil {
			s.Status.QueueCount = n
		}
		stores = append(stores, s)
	}
	return stores, nil
}

// ApplyEdit runs one command against the store record under its mutex and
// returns the updated store. The command set is exhaustive; an unknown
// concrete type is a programming error, not client input, so it panics.
func (r *StoreRepo) ApplyEdit(name string, cmd EditCommand) (model.Store, error) {
	unlock := r.locks.Lock(name)
	defer unlock()

	s, err := r.Get(name)
	if err != nil {
		return model.Store{}, err
	}
	switch c := cmd.(type) {
	case RenameStore:
		s.Name = c.Name
	case SetCuisine:
		s.Cuisine = c.Cuisine
	case ReplaceMenu:
		s.Menu = c.Menu
	case SetReceivingOrders:
		s.Status.ReceivingOrders = c.Receiving
	default:
		panic(fmt.Sprintf("unhandled edit command %T", cmd))
	}
	if err := r.save(name, s); err != nil {
		return model.Store{}, err
	}
	return s, nil
}
