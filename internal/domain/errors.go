package domain

import (
	"errors"
	"fmt"
)

// ErrItemNotFound reports a catalog lookup for an id this system has never
// persisted.
var ErrItemNotFound = errors.New("item not found")

// ConfigError indicates a missing or unusable piece of startup configuration.
// It is fatal: no pipeline run is attempted when construction fails with it.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration for %s: %s", e.Field, e.Reason)
}

// AuthError indicates the market API credential is absent or was rejected.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("market API authorization failed: %s", e.Reason)
}

// UpstreamError carries a non-success HTTP status from the market API along
// with the response body text.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("market API returned status %d: %s", e.Status, e.Body)
}

// TransportError wraps a network-level failure, including context
// cancellation of an in-flight page fetch.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("market API request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// PersistenceError wraps a store write or schema failure. ItemID is the item
// whose write failed, or zero for non-item operations (schema, search).
type PersistenceError struct {
	Op     string
	ItemID int64
	Err    error
}

func (e *PersistenceError) Error() string {
	if e.ItemID != 0 {
		return fmt.Sprintf("%s failed for item %d: %v", e.Op, e.ItemID, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// ValidationError indicates malformed caller input, such as a non-positive
// category code or an unparsable limit.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
