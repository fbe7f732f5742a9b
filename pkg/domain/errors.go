package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnauthenticated is returned when an anonymous actor attempts a mutation.
	ErrUnauthenticated = errors.New("authentication credentials were not provided")
	// ErrForbidden is returned when an authenticated actor lacks the required role or ownership.
	ErrForbidden = errors.New("you do not have permission to perform this action")
)

// NotFoundError is returned when the addressed record does not exist or is
// not visible to the caller.
type NotFoundError struct {
	Entity EntityType
	Key    string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.Key)
}

// ConflictError reports a duplicate identity key.
type ConflictError struct {
	Entity EntityType
	Key    string
}

func (e ConflictError) Error() string {
	return fmt.Sprintf("%s already exists: %s", e.Entity, e.Key)
}

// InUseError reports a delete blocked by a dependent record.
type InUseError struct {
	Entity EntityType
	Key    string
	By     EntityType
	ByKey  string
}

func (e InUseError) Error() string {
	return fmt.Sprintf("%s %s is still referenced by %s %s", e.Entity, e.Key, e.By, e.ByKey)
}

// ReferenceError is returned when a foreign reference in a payload cannot be
// resolved.
type ReferenceError struct {
	Entity EntityType
	Key    string
}

func (e ReferenceError) Error() string {
	return fmt.Sprintf("%s does not exist: %s", e.Entity, e.Key)
}

// IdentityChangeError is returned when an update tries to alter an identity key.
type IdentityChangeError struct {
	Entity EntityType
}

func (e IdentityChangeError) Error() string {
	return "can not change id in an update operation"
}

// BatchError aggregates the per-item failures of a bulk operation.
type BatchError struct {
	Messages []string
}

func (e *BatchError) Error() string {
	return strings.Join(e.Messages, "; ")
}

// Add records a failure for the item at index.
func (e *BatchError) Add(index int, err error) {
	e.Messages = append(e.Messages, fmt.Sprintf("item %d: %s", index, err.Error()))
}

// Empty reports whether no failure was recorded.
func (e *BatchError) Empty() bool {
	return e == nil || len(e.Messages) == 0
}
