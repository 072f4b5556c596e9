package assetcache

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/GregMSThompson/moneylog/internal/errs"
	"github.com/GregMSThompson/moneylog/pkg/logger"
)

type State string

const (
	StateNew        State = "new"
	StateInstalling State = "installing"
	StateInstalled  State = "installed"
	StateActivating State = "activating"
	StateActivated  State = "activated"
	StateRedundant  State = "redundant"
)

type Strategy string

const (
	CacheFirst   Strategy = "cache-first"
	NetworkFirst Strategy = "network-first"
)

func ParseStrategy(s string) Strategy {
	if strings.EqualFold(strings.TrimSpace(s), string(NetworkFirst)) {
		return NetworkFirst
	}
	return CacheFirst
}

// Config describes one cache generation.
type Config struct {
	Prefix   string
	Version  string
	Origin   *url.URL // manifest entries resolve against it
	Manifest []string
	Strategy Strategy
	// BypassHosts are never intercepted (the remote data API).
	BypassHosts []string
}

func (c Config) CacheName() string {
	return c.Prefix + "-" + c.Version
}

// Worker owns one generation. It implements http.RoundTripper so it can sit
// under an http.Client or a reverse proxy.
type Worker struct {
	cfg     Config
	storage *Storage
	next    http.RoundTripper

	mu    sync.RWMutex
	state State
}

func NewWorker(cfg Config, storage *Storage, next http.RoundTripper) *Worker {
	if next == nil {
		next = http.DefaultTransport
	}
	return &Worker{cfg: cfg, storage: storage, next: next, state: StateNew}
}

func (w *Worker) CacheName() string { return w.cfg.CacheName() }

func (w *Worker) State() State {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state
}

func (w *Worker) setState(s State) {
	w.mu.Lock()
	w.state = s
	w.mu.Unlock()
}

// Install fetches every manifest URL into the worker's store. It is all or
// nothing: on any failure the store is deleted and the worker is redundant.
func (w *Worker) Install(ctx context.Context) error {
	log := logger.FromContext(ctx).With("cache", w.CacheName())
	w.setState(StateInstalling)

	name := w.CacheName()
	existed := w.storage.Has(name)
	store := w.storage.Open(name)
	for _, raw := range w.cfg.Manifest {
		key, err := w.resolve(raw)
		if err == nil {
			err = w.fetchInto(ctx, store, key)
		}
		if err != nil {
			if !existed {
				w.storage.Delete(name)
			}
			w.setState(StateRedundant)
			log.Warn("asset cache install failed", "url", raw, "error", err)
			return errs.NewExternalServiceError("asset origin", true, fmt.Errorf("install %s: %w", raw, err))
		}
	}
	w.setState(StateInstalled)
	log.Info("asset cache installed", "entries", store.Len())
	return nil
}

func (w *Worker) fetchInto(ctx context.Context, store *Store, key string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, key, nil)
	if err != nil {
		return err
	}
	resp, err := w.next.RoundTrip(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	store.Put(key, Entry{Status: resp.StatusCode, Header: resp.Header.Clone(), Body: body})
	return nil
}

// Activate takes control and deletes every other generation.
func (w *Worker) Activate(ctx context.Context) error {
	if st := w.State(); st != StateInstalled {
		return errs.NewValidationError("cannot activate worker in state " + string(st))
	}
	w.setState(StateActivating)
	current := w.CacheName()
	for _, name := range w.storage.Keys() {
		if name != current {
			w.storage.Delete(name)
			logger.FromContext(ctx).Info("asset cache deleted", "cache", name)
		}
	}
	w.setState(StateActivated)
	return nil
}

// RoundTrip applies the interception policy. Until the worker is activated
// every request goes straight to the network.
func (w *Worker) RoundTrip(req *http.Request) (*http.Response, error) {
	if !w.intercepts(req) {
		return w.next.RoundTrip(req)
	}
	store, ok := w.storage.Lookup(w.CacheName())
	if !ok {
		return w.next.RoundTrip(req)
	}
	key := cacheKey(req.URL)
	log := logger.FromContext(req.Context())

	switch w.cfg.Strategy {
	case NetworkFirst:
		resp, err := w.next.RoundTrip(req)
		if err != nil {
			if e, ok := store.Match(key); ok {
				log.Debug("asset served from cache after network failure", "url", key)
				return e.response(req), nil
			}
			return nil, err
		}
		return w.refresh(store, key, resp, log)
	default:
		if e, ok := store.Match(key); ok {
			return e.response(req), nil
		}
		return w.next.RoundTrip(req)
	}
}

func (w *Worker) intercepts(req *http.Request) bool {
	if w.State() != StateActivated {
		return false
	}
	if req.Method != http.MethodGet || req.URL == nil {
		return false
	}
	if req.URL.Scheme == "blob" {
		return false
	}
	host := req.URL.Hostname()
	for _, h := range w.cfg.BypassHosts {
		if strings.EqualFold(host, h) {
			return false
		}
	}
	return true
}

// refresh stores a successful network response and hands back an equivalent
// one whose body has not been consumed.
func (w *Worker) refresh(store *Store, key string, resp *http.Response, log *slog.Logger) (*http.Response, error) {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp, nil
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}
	store.Put(key, Entry{Status: resp.StatusCode, Header: resp.Header.Clone(), Body: body})
	log.Debug("asset cache refreshed", "url", key)
	resp.Body = io.NopCloser(bytes.NewReader(body))
	resp.ContentLength = int64(len(body))
	return resp, nil
}

func (w *Worker) resolve(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if w.cfg.Origin != nil {
		u = w.cfg.Origin.ResolveReference(u)
	}
	return cacheKey(u), nil
}

func cacheKey(u *url.URL) string {
	c := *u
	c.Fragment = ""
	c.RawFragment = ""
	return c.String()
}
