// Package assetcache is the offline cache for the application shell: named,
// versioned stores of fetched responses, a worker with an install / activate
// lifecycle and a request-interception policy, and a registration that swaps
// generations.
package assetcache

import (
	"bytes"
	"io"
	"net/http"
	"slices"
	"strconv"
	"sync"

	"github.com/patrickmn/go-cache"
)

// Entry is a stored response.
type Entry struct {
	Status int
	Header http.Header
	Body   []byte
}

func (e Entry) response(req *http.Request) *http.Response {
	h := e.Header.Clone()
	if h == nil {
		h = make(http.Header)
	}
	h.Set(HeaderCache, "hit")
	return &http.Response{
		Status:        strconv.Itoa(e.Status) + " " + http.StatusText(e.Status),
		StatusCode:    e.Status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        h,
		Body:          io.NopCloser(bytes.NewReader(e.Body)),
		ContentLength: int64(len(e.Body)),
		Request:       req,
	}
}

// HeaderCache marks responses served from a store.
const HeaderCache = "X-Asset-Cache"

// Store is one named generation. Entries never expire; a generation is
// dropped whole by Storage.Delete.
type Store struct {
	name    string
	entries *cache.Cache
}

func (s *Store) Name() string { return s.name }

func (s *Store) Put(key string, e Entry) {
	s.entries.Set(key, e, cache.NoExpiration)
}

func (s *Store) Match(key string) (Entry, bool) {
	v, ok := s.entries.Get(key)
	if !ok {
		return Entry{}, false
	}
	return v.(Entry), true
}

func (s *Store) Len() int { return s.entries.ItemCount() }

// Storage holds every named store, like the browser's cache storage.
type Storage struct {
	mu     sync.Mutex
	stores map[string]*Store
}

func NewStorage() *Storage {
	return &Storage{stores: make(map[string]*Store)}
}

// Open returns the store called name, creating it if needed.
func (s *Storage) Open(name string) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.stores[name]; ok {
		return st
	}
	st := &Store{name: name, entries: cache.New(cache.NoExpiration, 0)}
	s.stores[name] = st
	return st
}

func (s *Storage) Has(name string) bool {
	_, ok := s.Lookup(name)
	return ok
}

// Lookup returns an existing store without creating one.
func (s *Storage) Lookup(name string) (*Store, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stores[name]
	return st, ok
}

// Keys lists store names in sorted order.
func (s *Storage) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.stores))
	for name := range s.stores {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

func (s *Storage) Delete(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stores[name]
	if ok {
		st.entries.Flush()
		delete(s.stores, name)
	}
	return ok
}
