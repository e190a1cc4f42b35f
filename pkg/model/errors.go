package model

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the core. EmptyJoin is not one of them: a missing
// join document is an empty result.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrStoreUnavailable  = errors.New("store unavailable")
)

type NotFoundError struct {
	What string // biome, analysis, go-terms, ...
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.What, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func NotFound(what, key string) error {
	return &NotFoundError{What: what, Key: key}
}

func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidIdentifier, fmt.Sprintf(format, args...))
}

// StoreError wraps a failure of one of the backing stores.
type StoreError struct {
	Store string // "relational" or "document"
	Op    string
	Err   error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s store: %s: %v", e.Store, e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return target == ErrStoreUnavailable
}

func RelationalError(op string, err error) error {
	return &StoreError{Store: "relational", Op: op, Err: err}
}

func DocumentError(op string, err error) error {
	return &StoreError{Store: "document", Op: op, Err: err}
}
