// Package docstore is the boundary to the schemaless document database.
//
// Documents live in collections and are addressed by a store-assigned id. Queries combine
// equality filters with an optional ordering and limit. A query which filters on one field
// and orders by another needs a composite index, just like the hosted document databases
// this interface is modeled on.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"
)

var (
	ErrIndexUnavailable = errors.New("the query requires an index which is not available")
	ErrNotFound         = errors.New("document not found")
)

// Document is a raw document. Field values are bool, string, int64, float64, Timestamp or nil.
type Document struct {
	ID     string
	Fields map[string]any
}

type Op int

const (
	Equal Op = iota
)

type Filter struct {
	Field string
	Op    Op
	Value any
}

func Where(field string, op Op, value any) Filter {
	return Filter{Field: field, Op: op, Value: value}
}

type Order struct {
	Field string
	Desc  bool
}

type Query struct {
	Collection string
	Filters    []Filter
	OrderBy    *Order
	Limit      int // <= 0 means no limit
}

// Index is a composite index: equality on FilterField, ordering by OrderField.
type Index struct {
	Collection  string
	FilterField string
	OrderField  string
}

func (i Index) String() string {
	return fmt.Sprintf("%s(%s, %s)", i.Collection, i.FilterField, i.OrderField)
}

// Store is implemented by the document database adapters.
type Store interface {
	Get(ctx context.Context, collection, id string) (Document, error)
	Query(ctx context.Context, q Query) ([]Document, error)
	Insert(ctx context.Context, collection string, fields map[string]any) (string, error)
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	EnsureIndex(ctx context.Context, index Index) error
}

// RequiredIndexes returns the composite indexes a query needs.
func RequiredIndexes(q Query) []Index {
	if q.OrderBy == nil {
		return nil
	}
	var indexes []Index
	for _, f := range q.Filters {
		if f.Field != q.OrderBy.Field {
			indexes = append(indexes, Index{q.Collection, f.Field, q.OrderBy.Field})
		}
	}
	return indexes
}

var fieldRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidField reports whether name can be used as a field name.
func ValidField(name string) bool {
	return fieldRegex.MatchString(name)
}

func validateQuery(q Query) error {
	if q.Collection == "" {
		return errors.New("collection is required")
	}
	for _, f := range q.Filters {
		if !ValidField(f.Field) {
			return fmt.Errorf("invalid field name %q", f.Field)
		}
		if f.Op != Equal {
			return fmt.Errorf("unsupported operator %d", f.Op)
		}
	}
	if q.OrderBy != nil && !ValidField(q.OrderBy.Field) {
		return fmt.Errorf("invalid field name %q", q.OrderBy.Field)
	}
	return nil
}

// Validate checks collection and field names of a query.
func (q Query) Validate() error {
	return validateQuery(q)
}

// ValidateFields checks field names and value types, and resolves ServerTimestamp sentinels to now.
// It returns a copy.
func ValidateFields(fields map[string]any, now time.Time) (map[string]any, error) {
	var result = make(map[string]any, len(fields))
	var ts = TimestampOf(now)
	for name, value := range fields {
		if !ValidField(name) {
			return nil, fmt.Errorf("invalid field name %q", name)
		}
		v, err := NormalizeValue(value)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		if _, ok := v.(serverTimestamp); ok {
			v = ts
		}
		result[name] = v
	}
	return result, nil
}

// NormalizeValue maps Go values to the types a Document may contain.
func NormalizeValue(value any) (any, error) {
	switch v := value.(type) {
	case nil, bool, string, int64, float64, Timestamp, serverTimestamp:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case float32:
		return float64(v), nil
	case time.Time:
		return TimestampOf(v), nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", value)
	}
}
