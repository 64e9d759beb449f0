package client

import (
	"errors"
	"fmt"
)

// Error taxonomy for local operations. Connectivity failures never surface
// through ledger or catalog calls; they stay inside the sync engine.
var (
	// ErrNotFound: the referenced record does not exist in the active
	// tenant's scope. No partial effect.
	ErrNotFound = errors.New("record not found")

	// ErrValidation: the operation was rejected before any write.
	ErrValidation = errors.New("validation failed")

	// ErrConnectivity: the remote store is unreachable. Only the sync engine
	// ever sees this.
	ErrConnectivity = errors.New("remote store unreachable")

	// ErrStorage: the local store failed to persist. Fatal to the attempted
	// operation, not retried automatically.
	ErrStorage = errors.New("local storage failure")

	// ErrNoSession: tenant identity is not resolved yet. Reads must report
	// this instead of returning an empty-but-valid result, so a flash of
	// zero state is never mistaken for "no data".
	ErrNoSession = errors.New("no active session")
)

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorage, op, err)
}

func validationErr(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}
