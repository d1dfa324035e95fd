package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"tortillometro/internal/domain/entries"
	"tortillometro/internal/domain/storage"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memStore is an in-memory entries.Store with the same ordering and
// not-found behaviour as the Postgres repository.
type memStore struct {
	mu      sync.Mutex
	rows    map[string]entries.Entry
	seq     int
	clock   time.Time
	failAll error
	failDel error
}

func newMemStore() *memStore {
	return &memStore{
		rows:  make(map[string]entries.Entry),
		clock: time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC),
	}
}

func (s *memStore) List(ctx context.Context) ([]entries.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll != nil {
		return nil, s.failAll
	}

	list := make([]entries.Entry, 0, len(s.rows))
	for _, e := range s.rows {
		list = append(list, e)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Rating != list[j].Rating {
			return list[i].Rating > list[j].Rating
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

func (s *memStore) Create(ctx context.Context, e *entries.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll != nil {
		return s.failAll
	}

	s.seq++
	s.clock = s.clock.Add(time.Minute)
	e.ID = fmt.Sprintf("00000000-0000-4000-8000-%012d", s.seq)
	e.CreatedAt = s.clock
	s.rows[e.ID] = *e
	return nil
}

func (s *memStore) GetByID(ctx context.Context, id string) (*entries.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll != nil {
		return nil, s.failAll
	}

	e, ok := s.rows[id]
	if !ok {
		return nil, entries.ErrEntryNotFound
	}
	return &e, nil
}

func (s *memStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDel != nil {
		return s.failDel
	}
	if _, ok := s.rows[id]; !ok {
		return entries.ErrEntryNotFound
	}
	delete(s.rows, id)
	return nil
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

// pausingStore holds its first List call, after the rows were read, until
// release is closed. read is closed once that call has its rows.
type pausingStore struct {
	*memStore
	once    sync.Once
	read    chan struct{}
	release chan struct{}
}

func newPausingStore() *pausingStore {
	return &pausingStore{
		memStore: newMemStore(),
		read:     make(chan struct{}),
		release:  make(chan struct{}),
	}
}

func (s *pausingStore) List(ctx context.Context) ([]entries.Entry, error) {
	list, err := s.memStore.List(ctx)
	s.once.Do(func() {
		close(s.read)
		<-s.release
	})
	return list, err
}

// memCache mirrors cache.EntryCache: lists are kept per generation and
// Invalidate moves to the next one.
type memCache struct {
	mu          sync.Mutex
	gen         int64
	lists       map[int64][]entries.Entry
	invalidated int
	err         error
}

func (c *memCache) List(ctx context.Context) ([]entries.Entry, int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, 0, false, c.err
	}
	list, ok := c.lists[c.gen]
	return list, c.gen, ok, nil
}

func (c *memCache) StoreList(ctx context.Context, gen int64, list []entries.Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	if c.lists == nil {
		c.lists = make(map[int64][]entries.Entry)
	}
	c.lists[gen] = list
	return nil
}

func (c *memCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated++
	c.gen++
	return c.err
}

func (c *memCache) cached() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.lists[c.gen]
	return ok
}

var errStoreDown = errors.New("connection refused")

func newTestApplication(t *testing.T, store entries.Store) *application {
	t.Helper()

	return &application{
		config: config{env: "test"},
		logger: zap.NewNop().Sugar(),
		store:  &storage.Container{Entries: store},
	}
}

func executeRequest(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "10.0.0.1:1234"

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v))
	return v
}
