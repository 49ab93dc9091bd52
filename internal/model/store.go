package model

// Store is one tenant of the food court. The name doubles as the partition
// key for both the catalog file and the order ledger, so it never changes
// outside the rename edit, which rewrites the record under the same file
// name.
//
// Fields:
//  ID       – numeric identifier assigned at provisioning time.
//  Name     – unique store name; partition key for catalog and ledger.
//  Cuisine  – free-form cuisine label shown by the storefront.
//  Menu     – full catalog; replaced wholesale by the menu edit.
//  Status   – live flags plus the derived queue view.
type Store struct {
	ID      int         `json:"id"`
	Name    string      `json:"name"`
	Cuisine string      `json:"cuisine"`
	Menu    []MenuItem  `json:"menu"`
	Status  StoreStatus `json:"status"`
}

// MenuItem is a single catalog entry. Price stays a string on the wire
// because the storefront renders it verbatim; edit validation guarantees it
// is numeric.
type MenuItem struct {
	Name        string `json:"name"`
	Price       string `json:"price"`
	Description string `json:"description"`
}

// StoreStatus carries the operational flags of a store. QueueCount is not
// stored truth: every read of the registry recomputes it from the store's
// ledger (orders still received or making), so the persisted value is only
// a stale hint.
type StoreStatus struct {
	IsOnline        bool `json:"isOnline"`
	ReceivingOrders bool `json:"receivingOrders"`
	QueueCount      int  `json:"queueCount"`
	QueueTimeMin    int  `json:"queueTimeMin"`
}

// MenuHas reports whether the catalog contains an item with the given name.
func (s *Store) MenuHas(name string) bool {
	for _, m := range s.Menu {
		if m.Name == name {
			return true
		}
	}
	return false
}
