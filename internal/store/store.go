package store

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

const (
	docPrefix = "doc/"
	seqPrefix = "seq/"

	// seqBandwidth is how many record IDs a collection leases at once.
	seqBandwidth = 256
)

var (
	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("store is closed")
	// ErrInvalidCollection rejects empty names and names containing '/'.
	ErrInvalidCollection = errors.New("invalid collection name")
)

// Options configures Open.
type Options struct {
	// Dir is the badger directory. Ignored when InMemory is set.
	Dir      string
	InMemory bool
	Logger   *slog.Logger
}

// Filter selects records whose fields equal the given values. Values are
// compared by their printed form, so 10 and "10" match.
type Filter map[string]any

// Store is a document store of named collections on top of badger. It is
// safe for concurrent use.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	mu   sync.Mutex
	seqs map[string]*badger.Sequence
}

// Open opens or creates the store.
func Open(opts Options) (*Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "store"))

	bopts := badger.DefaultOptions(opts.Dir)
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	}
	bopts = bopts.WithLogger(badgerLogger{logger: logger})

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open badger store: %w", err)
	}

	logger.Info("record store opened",
		slog.String("dir", opts.Dir),
		slog.Bool("in_memory", opts.InMemory))

	return &Store{
		db:     db,
		logger: logger,
		seqs:   make(map[string]*badger.Sequence),
	}, nil
}

// Collection returns a handle on name. The collection exists once a record
// has been inserted into it.
func (s *Store) Collection(name string) *Collection {
	return &Collection{store: s, name: name}
}

// Collections lists the names of non-empty collections, sorted.
func (s *Store) Collections(ctx context.Context) ([]string, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: []byte(docPrefix)})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			rest := bytes.TrimPrefix(it.Item().Key(), []byte(docPrefix))
			if i := bytes.IndexByte(rest, '/'); i > 0 {
				seen[string(rest[:i])] = struct{}{}
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out, nil
}

// Ping reports whether the store can serve reads.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	return s.db.View(func(*badger.Txn) error { return nil })
}

// Size returns the LSM and value log sizes in bytes. Both are zero after
// Close.
func (s *Store) Size() (lsm, vlog int64) {
	if s.db.IsClosed() {
		return 0, 0
	}
	return s.db.Size()
}

// Close releases leased sequences and closes badger.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db.IsClosed() {
		return nil
	}
	var errs []error
	for name, seq := range s.seqs {
		if err := seq.Release(); err != nil {
			errs = append(errs, fmt.Errorf("release sequence %s: %w", name, err))
		}
	}
	s.seqs = make(map[string]*badger.Sequence)
	if err := s.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close badger: %w", err))
	}
	s.logger.Info("record store closed")
	return errors.Join(errs...)
}

func (s *Store) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return ErrClosed
	}
	return nil
}

func (s *Store) sequence(collection string) (*badger.Sequence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq, ok := s.seqs[collection]; ok {
		return seq, nil
	}
	seq, err := s.db.GetSequence([]byte(seqPrefix+collection), seqBandwidth)
	if err != nil {
		return nil, fmt.Errorf("lease sequence: %w", err)
	}
	s.seqs[collection] = seq
	return seq, nil
}

// Collection is a handle on a named set of records.
type Collection struct {
	store *Store
	name  string
}

// Name returns the collection name.
func (c *Collection) Name() string { return c.name }

func (c *Collection) prefix() []byte {
	return []byte(docPrefix + c.name + "/")
}

func (c *Collection) key(id uint64) []byte {
	k := c.prefix()
	return binary.BigEndian.AppendUint64(k, id)
}

func (c *Collection) validate(ctx context.Context) error {
	if err := c.store.check(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(c.name) == "" || strings.ContainsRune(c.name, '/') {
		return fmt.Errorf("%w: %q", ErrInvalidCollection, c.name)
	}
	return nil
}

// InsertMany appends records in order and returns how many were written.
func (c *Collection) InsertMany(ctx context.Context, records []Record) (int, error) {
	if err := c.validate(ctx); err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}

	seq, err := c.store.sequence(c.name)
	if err != nil {
		return 0, err
	}

	wb := c.store.db.NewWriteBatch()
	defer wb.Cancel()

	for i := range records {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		id, err := seq.Next()
		if err != nil {
			return 0, fmt.Errorf("next record id: %w", err)
		}
		data, err := json.Marshal(records[i])
		if err != nil {
			return 0, fmt.Errorf("encode record %d: %w", i, err)
		}
		if err := wb.Set(c.key(id), data); err != nil {
			return 0, fmt.Errorf("stage record %d: %w", i, err)
		}
		records[i].ID = id
	}
	if err := wb.Flush(); err != nil {
		return 0, fmt.Errorf("write records: %w", err)
	}

	c.store.logger.DebugContext(ctx, "records inserted",
		slog.String("collection", c.name),
		slog.Int("count", len(records)))
	return len(records), nil
}

// Find returns matching records in insertion order, reduced to projection
// when it is not empty.
func (c *Collection) Find(ctx context.Context, filter Filter, projection []string) ([]Record, error) {
	if err := c.validate(ctx); err != nil {
		return nil, err
	}

	var out []Record
	err := c.store.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = c.prefix()
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			var rec Record
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return fmt.Errorf("decode %s: %w", item.Key(), err)
			}
			rec.ID = binary.BigEndian.Uint64(item.Key()[len(opts.Prefix):])
			if !filter.matches(rec) {
				continue
			}
			out = append(out, rec.project(projection))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", c.name, err)
	}
	return out, nil
}

// Count returns the number of records in the collection.
func (c *Collection) Count(ctx context.Context) (int, error) {
	if err := c.validate(ctx); err != nil {
		return 0, err
	}
	n := 0
	err := c.store.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: c.prefix()})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", c.name, err)
	}
	return n, nil
}

// Drop removes every record of the collection.
func (c *Collection) Drop(ctx context.Context) error {
	if err := c.validate(ctx); err != nil {
		return err
	}

	var keys [][]byte
	err := c.store.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: c.prefix()})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("drop %s: %w", c.name, err)
	}

	wb := c.store.db.NewWriteBatch()
	defer wb.Cancel()
	for _, k := range keys {
		if err := wb.Delete(k); err != nil {
			return fmt.Errorf("drop %s: %w", c.name, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("drop %s: %w", c.name, err)
	}

	c.store.logger.InfoContext(ctx, "collection dropped",
		slog.String("collection", c.name),
		slog.Int("records", len(keys)))
	return nil
}

func (f Filter) matches(r Record) bool {
	for name, want := range f {
		got, ok := r.Get(name)
		if !ok || fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}
