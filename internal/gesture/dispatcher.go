package gesture

import "sync"

type Phase string

const (
	PhaseStart Phase = "start"
	PhaseMove  Phase = "move"
	PhaseEnd   Phase = "end"
)

// Target is the surface a touch event was delivered to.
type Target string

const (
	TargetPage     Target = "page"
	TargetLightbox Target = "lightbox"
)

// Event is one touch event. For PhaseEnd, Touches holds the changed
// (lifted) touches.
type Event struct {
	Target  Target  `json:"target"`
	Phase   Phase   `json:"phase"`
	Touches []Point `json:"touches"`
}

type Handler func(Event)

// Dispatcher routes touch events to handlers attached by the view that owns
// them. Attach returns the matching detach; Close detaches everything.
type Dispatcher struct {
	mu       sync.Mutex
	handlers map[Target]map[int]Handler
	next     int
	closed   bool
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[Target]map[int]Handler)}
}

func (d *Dispatcher) Attach(target Target, h Handler) (detach func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return func() {}
	}
	id := d.next
	d.next++
	if d.handlers[target] == nil {
		d.handlers[target] = make(map[int]Handler)
	}
	d.handlers[target][id] = h

	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			defer d.mu.Unlock()
			delete(d.handlers[target], id)
		})
	}
}

// Dispatch delivers ev to every handler of its target and reports whether
// anyone was listening. Handlers run outside the lock.
func (d *Dispatcher) Dispatch(ev Event) bool {
	d.mu.Lock()
	hs := make([]Handler, 0, len(d.handlers[ev.Target]))
	for _, h := range d.handlers[ev.Target] {
		hs = append(hs, h)
	}
	d.mu.Unlock()

	for _, h := range hs {
		h(ev)
	}
	return len(hs) > 0
}

// Listeners counts handlers attached to target.
func (d *Dispatcher) Listeners(target Target) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.handlers[target])
}

func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.handlers = make(map[Target]map[int]Handler)
}
