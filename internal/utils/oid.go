package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// NewOrderOID mints the short public identifier for an order: two random
// bytes rendered as four hex characters. The space is tiny (65536 values)
// so the ledger code regenerates on collision rather than trusting luck.
func NewOrderOID() (string, error) {
	buf := make([]byte, 2)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
