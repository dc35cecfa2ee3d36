package docstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*MemStore, *time.Time) {
	t.Helper()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemStore()
	s.Now = func() time.Time { return now }
	return s, &now
}

func TestMemStore_InsertResolvesServerTimestamp(t *testing.T) {
	s, now := newTestStore(t)
	ctx := context.Background()

	id, err := s.Insert(ctx, "articles", map[string]any{
		"title":     "Hello",
		"createdAt": ServerTimestamp,
		"updatedAt": ServerTimestamp,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	docs, err := s.Query(ctx, Query{Collection: "articles"})
	require.NoError(t, err)
	require.Len(t, docs, 1)

	assert.Equal(t, id, docs[0].ID)
	assert.Equal(t, TimestampOf(*now), docs[0].Fields["createdAt"])
	assert.Equal(t, docs[0].Fields["createdAt"], docs[0].Fields["updatedAt"])
}

func TestMemStore_QueryRequiresCompositeIndex(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	q := Query{
		Collection: "articles",
		Filters:    []Filter{Where("isPublished", Equal, true)},
		OrderBy:    &Order{Field: "createdAt", Desc: true},
	}

	_, err := s.Query(ctx, q)
	assert.ErrorIs(t, err, ErrIndexUnavailable)

	require.NoError(t, s.EnsureIndex(ctx, Index{"articles", "isPublished", "createdAt"}))

	_, err = s.Query(ctx, q)
	assert.NoError(t, err)

	// no index needed for a single field
	_, err = s.Query(ctx, Query{Collection: "articles", OrderBy: &Order{Field: "createdAt"}})
	assert.NoError(t, err)
	_, err = s.Query(ctx, Query{Collection: "articles", Filters: []Filter{Where("slug", Equal, "a")}})
	assert.NoError(t, err)
}

func TestMemStore_FilterOrderLimit(t *testing.T) {
	s, now := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.EnsureIndex(ctx, Index{"articles", "isPublished", "createdAt"}))

	for i, published := range []bool{true, false, true, true} {
		*now = now.Add(time.Minute)
		_, err := s.Insert(ctx, "articles", map[string]any{
			"n":           i,
			"isPublished": published,
			"createdAt":   ServerTimestamp,
		})
		require.NoError(t, err)
	}

	docs, err := s.Query(ctx, Query{
		Collection: "articles",
		Filters:    []Filter{Where("isPublished", Equal, true)},
		OrderBy:    &Order{Field: "createdAt", Desc: true},
		Limit:      2,
	})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, int64(3), docs[0].Fields["n"])
	assert.Equal(t, int64(2), docs[1].Fields["n"])
}

func TestMemStore_FilterDoesNotMatchOtherTypes(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.Insert(ctx, "c", map[string]any{"v": "1"})
	require.NoError(t, err)
	_, err = s.Insert(ctx, "c", map[string]any{"v": 1})
	require.NoError(t, err)

	docs, err := s.Query(ctx, Query{Collection: "c", Filters: []Filter{Where("v", Equal, 1)}})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, int64(1), docs[0].Fields["v"])
}

func TestMemStore_UpdateMerges(t *testing.T) {
	s, now := newTestStore(t)
	ctx := context.Background()

	id, err := s.Insert(ctx, "c", map[string]any{"a": "x", "b": "y", "createdAt": ServerTimestamp})
	require.NoError(t, err)
	created := TimestampOf(*now)

	*now = now.Add(time.Second)
	require.NoError(t, s.Update(ctx, "c", id, map[string]any{"b": "z", "updatedAt": ServerTimestamp}))

	docs, err := s.Query(ctx, Query{Collection: "c"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "x", docs[0].Fields["a"])
	assert.Equal(t, "z", docs[0].Fields["b"])
	assert.Equal(t, created, docs[0].Fields["createdAt"])
	assert.Equal(t, TimestampOf(*now), docs[0].Fields["updatedAt"])

	err = s.Update(ctx, "c", "missing", map[string]any{"a": "b"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemStore_Get(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	id, err := s.Insert(ctx, "c", map[string]any{"a": "x"})
	require.NoError(t, err)

	doc, err := s.Get(ctx, "c", id)
	require.NoError(t, err)
	assert.Equal(t, id, doc.ID)
	assert.Equal(t, "x", doc.Fields["a"])

	_, err = s.Get(ctx, "c", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(ctx, "other", id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemStore_DeleteIsIdempotent(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	id, err := s.Insert(ctx, "c", map[string]any{"a": "x"})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, "c", id))
	require.NoError(t, s.Delete(ctx, "c", id))
	require.NoError(t, s.Delete(ctx, "nothing", "here"))

	docs, err := s.Query(ctx, Query{Collection: "c"})
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestMemStore_ReturnsCopies(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.Insert(ctx, "c", map[string]any{"a": "x"})
	require.NoError(t, err)

	docs, err := s.Query(ctx, Query{Collection: "c"})
	require.NoError(t, err)
	docs[0].Fields["a"] = "changed"

	docs, err = s.Query(ctx, Query{Collection: "c"})
	require.NoError(t, err)
	assert.Equal(t, "x", docs[0].Fields["a"])
}

func TestMemStore_RejectsInvalidInput(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.Insert(ctx, "c", map[string]any{"bad field": "x"})
	assert.Error(t, err)

	_, err = s.Insert(ctx, "c", map[string]any{"a": []string{"x"}})
	assert.Error(t, err)

	_, err = s.Query(ctx, Query{})
	assert.Error(t, err)

	_, err = s.Query(ctx, Query{Collection: "c", OrderBy: &Order{Field: "a; DROP"}})
	assert.Error(t, err)
}

func TestMemStore_CanceledContext(t *testing.T) {
	s, _ := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Query(ctx, Query{Collection: "c"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTimestamp(t *testing.T) {
	tm := time.Date(2024, 1, 2, 3, 4, 5, 6, time.UTC)
	ts := TimestampOf(tm)
	assert.True(t, tm.Equal(ts.Time()))
	assert.True(t, time.Unix(0, 0).Equal(Timestamp{}.Time()), "the zero value is the epoch")
	assert.True(t, IsPending(ServerTimestamp))
	assert.False(t, IsPending(Timestamp{}))
	assert.False(t, IsPending(nil))

	later := TimestampOf(tm.Add(time.Nanosecond))
	assert.Equal(t, -1, ts.Compare(later))
	assert.Equal(t, 1, later.Compare(ts))
	assert.Equal(t, 0, ts.Compare(ts))
}

func TestRequiredIndexes(t *testing.T) {
	assert.Nil(t, RequiredIndexes(Query{Collection: "c", Filters: []Filter{Where("a", Equal, 1)}}))
	assert.Empty(t, RequiredIndexes(Query{Collection: "c", Filters: []Filter{Where("a", Equal, 1)}, OrderBy: &Order{Field: "a"}}))
	assert.Equal(t,
		[]Index{{"c", "a", "b"}},
		RequiredIndexes(Query{Collection: "c", Filters: []Filter{Where("a", Equal, 1)}, OrderBy: &Order{Field: "b"}}),
	)
}
