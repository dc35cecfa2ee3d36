package core

import (
	"errors"
	"fmt"
)

var (
	ErrForbidden = errors.New("the article belongs to another author")
	ErrNotFound  = errors.New("article not found")
	ErrSlugTaken = errors.New("the slug is used by another article")
)

type StoreErrorKind int

const (
	QueryFailed StoreErrorKind = iota
	WriteFailed
)

func (k StoreErrorKind) String() string {
	switch k {
	case QueryFailed:
		return "query failed"
	case WriteFailed:
		return "write failed"
	default:
		return "unknown"
	}
}

// StoreError wraps a failure of the document store.
type StoreError struct {
	Kind StoreErrorKind
	Op   string
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func queryError(op string, err error) error {
	return &StoreError{Kind: QueryFailed, Op: op, Err: err}
}

func writeError(op string, err error) error {
	return &StoreError{Kind: WriteFailed, Op: op, Err: err}
}

// IsQueryError reports whether err is a StoreError of kind QueryFailed.
func IsQueryError(err error) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Kind == QueryFailed
}

// IsWriteError reports whether err is a StoreError of kind WriteFailed.
func IsWriteError(err error) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Kind == WriteFailed
}
