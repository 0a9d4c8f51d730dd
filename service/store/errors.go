package store

import "errors"

var (
	// ErrCardNotFound is returned when the referenced card does not exist.
	ErrCardNotFound = errors.New("store: card not found")

	// ErrTransactionNotFound is returned when the referenced transaction
	// does not exist.
	ErrTransactionNotFound = errors.New("store: transaction not found")

	// ErrPolicyNotFound is returned when the referenced expense policy does
	// not exist.
	ErrPolicyNotFound = errors.New("store: policy not found")

	// ErrStatusFinal is returned by SetTransactionStatus when the
	// transaction already reached a terminal status.
	ErrStatusFinal = errors.New("store: transaction status is final")
)
