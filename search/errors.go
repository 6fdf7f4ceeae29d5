package search

import (
	"errors"
	"fmt"
)

var (
	// ErrConnection marks an unreachable backend. Remote adapters
	// retry a bounded number of times before surfacing it.
	ErrConnection = errors.New("search engine unreachable")
	// ErrQuery marks malformed or unsupported filter/sort syntax.
	// Never retried.
	ErrQuery = errors.New("search query rejected")
	// ErrIndexNotFound marks a missing collection. Remote adapters
	// treat it as an empty result; the embedded adapter surfaces it.
	ErrIndexNotFound = errors.New("search index not found")
	// ErrUnknownAdapter marks an adapter name that is neither
	// built-in nor registered. There is no fallback to the default.
	ErrUnknownAdapter = errors.New("unknown search adapter")
)

// EngineError is the uniform wrapper applied once at the adapter
// boundary. It carries the adapter name, the operation that failed and
// the backend cause, and propagates unchanged through the translator,
// normalizer and manager layers.
type EngineError struct {
	Adapter string
	Op      string
	Err     error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Adapter, e.Op, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// WrapErr wraps err into an EngineError unless it already is one.
func WrapErr(adapter, op string, err error) error {
	if err == nil {
		return nil
	}
	var ee *EngineError
	if errors.As(err, &ee) {
		return err
	}
	return &EngineError{Adapter: adapter, Op: op, Err: err}
}
