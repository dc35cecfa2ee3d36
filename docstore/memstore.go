package docstore

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemStore is an in-memory Store. It checks composite indexes like the persistent stores do.
type MemStore struct {
	Now func() time.Time // defaults to time.Now

	mu          sync.RWMutex
	collections map[string]map[string]map[string]any // collection -> id -> fields
	indexes     map[Index]struct{}
	seq         map[string]int64 // insertion order, tie breaker for equal order values
	next        int64
}

func NewMemStore() *MemStore {
	return &MemStore{
		collections: make(map[string]map[string]map[string]any),
		indexes:     make(map[Index]struct{}),
		seq:         make(map[string]int64),
	}
}

func (s *MemStore) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *MemStore) EnsureIndex(ctx context.Context, index Index) error {
	if !ValidField(index.FilterField) || !ValidField(index.OrderField) {
		return fmt.Errorf("invalid index %s", index)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indexes[index] = struct{}{}
	return nil
}

// Get returns ErrNotFound if the document does not exist.
func (s *MemStore) Get(ctx context.Context, collection, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	fields, ok := s.collections[collection][id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return Document{ID: id, Fields: maps.Clone(fields)}, nil
}

func (s *MemStore) Query(ctx context.Context, q Query) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, index := range RequiredIndexes(q) {
		if _, ok := s.indexes[index]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrIndexUnavailable, index)
		}
	}

	var docs []Document
	for id, fields := range s.collections[q.Collection] {
		if matches(fields, q.Filters) {
			docs = append(docs, Document{ID: id, Fields: maps.Clone(fields)})
		}
	}

	sort.SliceStable(docs, func(i, j int) bool {
		if q.OrderBy != nil {
			c := compareValues(docs[i].Fields[q.OrderBy.Field], docs[j].Fields[q.OrderBy.Field])
			if q.OrderBy.Desc {
				c = -c
			}
			if c != 0 {
				return c < 0
			}
		}
		return s.seq[docs[i].ID] < s.seq[docs[j].ID]
	})

	if q.Limit > 0 && len(docs) > q.Limit {
		docs = docs[:q.Limit]
	}
	return docs, nil
}

func (s *MemStore) Insert(ctx context.Context, collection string, fields map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fields, err := ValidateFields(fields, s.now())
	if err != nil {
		return "", err
	}

	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]map[string]any)
	}
	s.collections[collection][id] = fields
	s.next++
	s.seq[id] = s.next
	return id, nil
}

// Update merges fields into an existing document.
func (s *MemStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fields, err := ValidateFields(fields, s.now())
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.collections[collection][id]
	if !ok {
		return ErrNotFound
	}
	maps.Copy(existing, fields)
	return nil
}

// Delete succeeds if the document does not exist.
func (s *MemStore) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections[collection], id)
	delete(s.seq, id)
	return nil
}

func matches(fields map[string]any, filters []Filter) bool {
	for _, f := range filters {
		value, ok := fields[f.Field]
		if !ok {
			return false
		}
		want, err := NormalizeValue(f.Value)
		if err != nil {
			return false
		}
		if compareValues(value, want) != 0 || typeRank(value) != typeRank(want) {
			return false
		}
	}
	return true
}

// typeRank orders values of different types: nil < bool < number < string < timestamp.
func typeRank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case int64, float64:
		return 2
	case string:
		return 3
	case Timestamp:
		return 4
	default:
		return 5
	}
}

func compareValues(a, b any) int {
	if ra, rb := typeRank(a), typeRank(b); ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch a := a.(type) {
	case bool:
		b := b.(bool)
		switch {
		case a == b:
			return 0
		case !a:
			return -1
		default:
			return 1
		}
	case int64, float64:
		fa, fb := toFloat(a), toFloat(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	case string:
		b := b.(string)
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		default:
			return 0
		}
	case Timestamp:
		return a.Compare(b.(Timestamp))
	default:
		return 0
	}
}

func toFloat(v any) float64 {
	switch v := v.(type) {
	case int64:
		return float64(v)
	case float64:
		return v
	default:
		return 0
	}
}
