// Package repository implements the file-backed persistence layer: a
// read-only CSV credential table per role, one JSON record per store and one
// JSON ledger per store. Sentinel errors defined here let handlers map
// failures onto HTTP statuses without string matching.
package repository

import "errors"

// ErrUserNotFound is returned when no row of the role's credential table
// matches the username. Handlers must answer it exactly like a wrong
// password so the API never confirms which usernames exist.
var ErrUserNotFound = errors.New("user not found")

// ErrStoreNotFound is returned when no record exists for a store name.
// Handlers translate this into an HTTP 404 response.
var ErrStoreNotFound = errors.New("store not found")

// ErrOrderNotFound is returned when a ledger holds no order with the given
// external id. Handlers translate this into an HTTP 404 response.
var ErrOrderNotFound = errors.New("order not found")

// ErrOIDExhausted is returned when the ledger could not mint a fresh
// external id within the retry budget. Practically unreachable below a few
// thousand live orders per store; handlers report it as a server error.
var ErrOIDExhausted = errors.New("could not allocate an unused order id")
