package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleRecords() []Record {
	names := []string{"region", "sales", "day"}
	return []Record{
		NewRecord(names, []any{"E", "10", "2023-01-01"}),
		NewRecord(names, []any{"W", "5", ""}),
		NewRecord(names, []any{"E", "3", "2023-01-03"}),
	}
}

func TestInsertManyAndFind(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	coll := s.Collection("tables")

	n, err := coll.InsertMany(ctx, sampleRecords())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	got, err := coll.Find(ctx, nil, nil)
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Insertion order and field order survive the round trip.
	assert.Equal(t, []string{"region", "sales", "day"}, got[0].Names())
	assert.Equal(t, []Field{{"region", "E"}, {"sales", "10"}, {"day", "2023-01-01"}}, got[0].Fields)
	assert.Equal(t, []Field{{"region", "W"}, {"sales", "5"}, {"day", ""}}, got[1].Fields)
	assert.Less(t, got[0].ID, got[1].ID)
	assert.Less(t, got[1].ID, got[2].ID)
}

func TestFindFilterAndProjection(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	coll := s.Collection("tables")
	_, err := coll.InsertMany(ctx, sampleRecords())
	require.NoError(t, err)

	got, err := coll.Find(ctx, Filter{"region": "E"}, []string{"sales"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []Field{{"sales", "10"}}, got[0].Fields)
	assert.Equal(t, []Field{{"sales", "3"}}, got[1].Fields)

	// Printed-form comparison lets a number match its text.
	got, err = coll.Find(ctx, Filter{"sales": 5}, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = coll.Find(ctx, Filter{"missing": "x"}, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCollectionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.Collection("a").InsertMany(ctx, sampleRecords())
	require.NoError(t, err)
	_, err = s.Collection("ab").InsertMany(ctx, sampleRecords()[:1])
	require.NoError(t, err)

	n, err := s.Collection("a").Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = s.Collection("ab").Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	names, err := s.Collections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "ab"}, names)
}

func TestDrop(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	coll := s.Collection("tables")
	_, err := coll.InsertMany(ctx, sampleRecords())
	require.NoError(t, err)

	require.NoError(t, coll.Drop(ctx))
	n, err := coll.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	// The collection keeps working after a drop.
	_, err = coll.InsertMany(ctx, sampleRecords()[:1])
	require.NoError(t, err)
	n, err = coll.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestInvalidCollection(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	for _, name := range []string{"", "  ", "a/b"} {
		_, err := s.Collection(name).InsertMany(ctx, sampleRecords())
		assert.True(t, errors.Is(err, ErrInvalidCollection), "name %q", name)
	}
}

func TestClosedStore(t *testing.T) {
	ctx := context.Background()
	s, err := Open(Options{InMemory: true})
	require.NoError(t, err)
	_, err = s.Collection("tables").InsertMany(ctx, sampleRecords())
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "second close is a no-op")

	assert.ErrorIs(t, s.Ping(ctx), ErrClosed)
	_, err = s.Collection("tables").Find(ctx, nil, nil)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestCanceledContext(t *testing.T) {
	s := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Collection("tables").InsertMany(ctx, sampleRecords())
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.Ping(ctx), context.Canceled)
}

func TestPersistentStoreReopens(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := Open(Options{Dir: dir})
	require.NoError(t, err)
	_, err = s.Collection("tables").InsertMany(ctx, sampleRecords())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(Options{Dir: dir})
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Collection("tables").Find(ctx, nil, nil)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	// IDs keep growing across reopen.
	more := sampleRecords()[:1]
	_, err = s.Collection("tables").InsertMany(ctx, more)
	require.NoError(t, err)
	assert.Greater(t, more[0].ID, got[2].ID)
}

func TestRecordHelpers(t *testing.T) {
	r := NewRecord([]string{"a", "b"}, []any{1})
	v, ok := r.Get("b")
	assert.True(t, ok)
	assert.Nil(t, v)

	r.Set("a", 2)
	r.Set("c", 3)
	assert.Equal(t, []string{"a", "b", "c"}, r.Names())
	v, _ = r.Get("a")
	assert.Equal(t, 2, v)

	_, ok = r.Get("z")
	assert.False(t, ok)
}
