package model

// Order statuses form a strictly linear pipeline. Paid is terminal and is
// never produced by this service; it exists so ledgers written by the
// accounting side stay readable.
const (
	StatusReceived = 1
	StatusMaking   = 2
	StatusDone     = 3
	StatusPaid     = 4
)

// Order is one row of a store's ledger. The json tags match the wire format
// the storefront and ops board already consume.
//
// Fields:
//  CreatedAt      – RFC3339 UTC timestamp of placement.
//  SequenceID     – per-store monotonic id; next id = max(existing)+1.
//  OID            – short random public identifier, unique within the ledger.
//  Items          – flattened item names; a quantity of two means two entries.
//  Status         – one of the Status* constants.
//  ClientUsername – the customer who placed the order.
type Order struct {
	CreatedAt      string   `json:"time"`
	SequenceID     int      `json:"id"`
	OID            string   `json:"oid"`
	Items          []string `json:"items"`
	Status         int      `json:"status"`
	ClientUsername string   `json:"clientUsername"`
}

// Active reports whether the order still occupies the store's queue, i.e.
// it has been received but not finished.
func (o *Order) Active() bool {
	return o.Status == StatusReceived || o.Status == StatusMaking
}

// ValidOverrideStatus reports whether s is a legal target for the seller
// status override (paid is excluded on purpose).
func ValidOverrideStatus(s int) bool {
	return s == StatusReceived || s == StatusMaking || s == StatusDone
}
