package assetcache

import (
	"context"
	"net/http"
	"sync"

	"github.com/GregMSThompson/moneylog/pkg/logger"
)

// Registration tracks the active worker and, after an update, the installed
// one waiting to take over. The first install activates immediately; later
// ones wait for Promote so a running shell is not swapped underneath a user.
type Registration struct {
	storage *Storage
	next    http.RoundTripper

	mu       sync.Mutex
	active   *Worker
	waiting  *Worker
	onUpdate []func(*Worker)
}

func NewRegistration(storage *Storage, next http.RoundTripper) *Registration {
	if next == nil {
		next = http.DefaultTransport
	}
	return &Registration{storage: storage, next: next}
}

// OnUpdateFound registers fn to run when a new generation is installed and
// waiting.
func (r *Registration) OnUpdateFound(fn func(*Worker)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onUpdate = append(r.onUpdate, fn)
}

// Update installs cfg's generation. Installing the generation that is already
// active is a no-op. A failed install leaves the active worker serving.
func (r *Registration) Update(ctx context.Context, cfg Config) (*Worker, error) {
	r.mu.Lock()
	active := r.active
	r.mu.Unlock()
	if active != nil && active.CacheName() == cfg.CacheName() {
		return active, nil
	}

	w := NewWorker(cfg, r.storage, r.next)
	if err := w.Install(ctx); err != nil {
		return nil, err
	}

	r.mu.Lock()
	if r.active == nil {
		r.waiting = w
		r.mu.Unlock()
		return w, r.Promote(ctx)
	}
	r.waiting = w
	hooks := append([]func(*Worker){}, r.onUpdate...)
	r.mu.Unlock()

	logger.FromContext(ctx).Info("asset cache update found", "cache", w.CacheName())
	for _, fn := range hooks {
		fn(w)
	}
	return w, nil
}

// Promote activates the waiting worker, if any.
func (r *Registration) Promote(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.waiting == nil {
		return nil
	}
	if err := r.waiting.Activate(ctx); err != nil {
		return err
	}
	if r.active != nil {
		r.active.setState(StateRedundant)
	}
	r.active, r.waiting = r.waiting, nil
	return nil
}

func (r *Registration) Active() *Worker {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

func (r *Registration) Waiting() *Worker {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.waiting
}

// RoundTrip routes through the active worker, or straight to the network
// before anything is installed.
func (r *Registration) RoundTrip(req *http.Request) (*http.Response, error) {
	if w := r.Active(); w != nil {
		return w.RoundTrip(req)
	}
	return r.next.RoundTrip(req)
}
