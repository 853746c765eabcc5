package service

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Sentinel errors surfaced to handlers. Every failure path leaves the data
// model in its pre-call state; failed operations never persist partial writes.
var (
	// ErrInsufficientStock aborts any outbound movement larger than the
	// current stock level.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInvalidQuantity rejects zero or negative quantities.
	ErrInvalidQuantity = errors.New("quantity must be positive")

	// ErrInvalidAmount rejects zero or negative money amounts.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrBatchNotOpen rejects mutations of a batch that is no longer in progress.
	ErrBatchNotOpen = errors.New("processing batch is not in progress")

	// ErrBatchEmpty rejects completing a batch without processed products.
	ErrBatchEmpty = errors.New("processing batch has no processed products")

	ErrNotFound = errors.New("record not found")
)

// isDuplicateKey reports whether err is a unique-constraint violation.
// Covers gorm's translated error and the raw Postgres message.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "duplicate key")
}
