package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition is returned for clock-in while clocked in and
	// clock-out while clocked out
	ErrInvalidTransition = errors.New("invalid clock transition")
	ErrUserNotFound      = errors.New("user not found")
	ErrProjectNotFound   = errors.New("project not found")
)

// StoreError reports a persistence failure. A transition that returns it
// changed no state.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error during %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func storeError(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}
