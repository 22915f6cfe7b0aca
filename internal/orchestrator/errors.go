package orchestrator

import (
	"errors"
	"fmt"
)

var (
	// ErrBusy is returned when a top-level command is already running
	ErrBusy = errors.New("another command is in progress")
	// ErrGuardRejected wraps the reason an operation was not started
	ErrGuardRejected = errors.New("operation rejected")
	// ErrNodeBusy is returned when another operation holds the node
	ErrNodeBusy = fmt.Errorf("%w: operation already in progress", ErrGuardRejected)
	// ErrDiscoveryEmpty is returned by Load when no repository qualifies
	ErrDiscoveryEmpty = errors.New("no repositories found")
)

// AggregateError reports a failure of the bulk dispatch itself. Per
// repository failures are never reported this way.
type AggregateError struct {
	Op    Op
	Cause any
}

func (e *AggregateError) Error() string {
	return fmt.Sprintf("%s for all repositories failed: %v", e.Op, e.Cause)
}

// Unwrap exposes the cause when it is an error
func (e *AggregateError) Unwrap() error {
	if err, ok := e.Cause.(error); ok {
		return err
	}
	return nil
}

func rejected(reason string) error {
	return fmt.Errorf("%w: %s", ErrGuardRejected, reason)
}
