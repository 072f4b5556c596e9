// Package view holds per-client presentation state: which tab is showing,
// the chart's type and last rendered dataset, and the image lightbox. Touch
// input reaches it only through the session's gesture.Dispatcher.
package view

import (
	"slices"
	"sync"
	"time"

	"github.com/GregMSThompson/moneylog/internal/errs"
	"github.com/GregMSThompson/moneylog/internal/gesture"
	"github.com/GregMSThompson/moneylog/internal/ledger"
	"github.com/GregMSThompson/moneylog/internal/models"
	"github.com/GregMSThompson/moneylog/internal/services"
)

type Tab string

const (
	TabList     Tab = "list"
	TabIncome   Tab = "income"
	TabChart    Tab = "chart"
	TabWish     Tab = "wish"
	TabSettings Tab = "settings"
)

const DefaultChartDebounce = 350 * time.Millisecond

// Tabs is the swipe order. Without wishes the wish tab is left out.
func Tabs(wishes bool) []Tab {
	if wishes {
		return []Tab{TabList, TabIncome, TabChart, TabWish, TabSettings}
	}
	return []Tab{TabList, TabIncome, TabChart, TabSettings}
}

type chartSource interface {
	Chart(typ models.EntryType) ledger.ChartDataset
	Subscribe(fn func(services.Change)) func()
}

type Options struct {
	Tabs     []Tab
	Swipe    gesture.SwipeConfig
	Debounce time.Duration
}

// Lightbox is the enlarged-image overlay.
type Lightbox struct {
	Open     bool         `json:"open"`
	ImageURL string       `json:"imageUrl,omitempty"`
	Zoom     gesture.Zoom `json:"zoom"`
}

// State is what GET /api/view returns.
type State struct {
	Tab          Tab                 `json:"tab"`
	Tabs         []Tab               `json:"tabs"`
	ChartType    models.EntryType    `json:"chartType"`
	Chart        ledger.ChartDataset `json:"chart"`
	ChartPending bool                `json:"chartPending"`
	ChartRenders int                 `json:"chartRenders"`
	Lightbox     Lightbox            `json:"lightbox"`
}

type Session struct {
	src   chartSource
	opts  Options
	input *gesture.Dispatcher

	mu         sync.Mutex
	active     int
	chartType  models.EntryType
	chart      ledger.ChartDataset
	renders    int
	timer      *time.Timer
	pending    bool
	gen        uint64
	zoom       *gesture.Zoom
	lightbox   bool
	imageURL   string
	swipeStart *gesture.Point

	detach []func()
	closed bool
}

func NewSession(src chartSource, opts Options) *Session {
	if len(opts.Tabs) == 0 {
		opts.Tabs = Tabs(true)
	}
	if opts.Swipe == (gesture.SwipeConfig{}) {
		opts.Swipe = gesture.DefaultSwipe
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultChartDebounce
	}
	s := &Session{
		src:       src,
		opts:      opts,
		input:     gesture.NewDispatcher(),
		chartType: models.EntryExpense,
		chart:     ledger.ChartDataset{Buckets: []ledger.ChartBucket{}, Hidden: true},
		zoom:      gesture.NewZoom(),
	}
	s.detach = append(s.detach,
		s.input.Attach(gesture.TargetPage, s.onPageTouch),
		s.input.Attach(gesture.TargetLightbox, s.onLightboxTouch),
		src.Subscribe(s.onChange),
	)
	return s
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Tab:          s.opts.Tabs[s.active],
		Tabs:         slices.Clone(s.opts.Tabs),
		ChartType:    s.chartType,
		Chart:        s.chart,
		ChartPending: s.pending,
		ChartRenders: s.renders,
		Lightbox:     Lightbox{Open: s.lightbox, ImageURL: s.imageURL, Zoom: *s.zoom},
	}
}

// SelectTab shows tab. Arriving at the chart tab schedules a redraw.
func (s *Session) SelectTab(tab Tab) error {
	i := slices.Index(s.opts.Tabs, tab)
	if i < 0 {
		return errs.NewValidationError("unknown tab: " + string(tab))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setActive(i)
	return nil
}

func (s *Session) setActive(i int) {
	changed := i != s.active
	s.active = i
	if changed && s.opts.Tabs[i] == TabChart {
		s.scheduleLocked()
	}
}

// SetChartType scopes the chart to one entry type ("" for all).
func (s *Session) SetChartType(typ models.EntryType) error {
	switch typ {
	case "", models.EntryExpense, models.EntryIncome, models.EntryPointReward:
	default:
		return errs.NewValidationError("unknown entry type: " + string(typ))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if typ == s.chartType {
		return nil
	}
	s.chartType = typ
	if s.onChartLocked() {
		s.scheduleLocked()
	}
	return nil
}

// Touch feeds one touch event through the dispatcher. It reports whether
// anything was attached to the event's target.
func (s *Session) Touch(ev gesture.Event) bool {
	return s.input.Dispatch(ev)
}

func (s *Session) onPageTouch(ev gesture.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lightbox || len(ev.Touches) == 0 {
		return
	}
	switch ev.Phase {
	case gesture.PhaseStart:
		p := ev.Touches[0]
		s.swipeStart = &p
	case gesture.PhaseEnd:
		if s.swipeStart == nil {
			return
		}
		d := s.opts.Swipe.Classify(*s.swipeStart, ev.Touches[0])
		s.swipeStart = nil
		s.setActive(gesture.Step(s.active, len(s.opts.Tabs), d))
	}
}

func (s *Session) onLightboxTouch(ev gesture.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.lightbox {
		return
	}
	switch ev.Phase {
	case gesture.PhaseStart:
		s.zoom.Start(ev.Touches)
	case gesture.PhaseMove:
		s.zoom.Move(ev.Touches)
	case gesture.PhaseEnd:
		s.zoom.End()
	}
}

// OpenLightbox shows imageURL unzoomed.
func (s *Session) OpenLightbox(imageURL string) error {
	if imageURL == "" {
		return errs.NewValidationError("image url is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lightbox = true
	s.imageURL = imageURL
	s.zoom.Reset()
	return nil
}

func (s *Session) CloseLightbox() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lightbox = false
	s.imageURL = ""
	s.zoom.Reset()
}

func (s *Session) onChange(ch services.Change) {
	switch ch {
	case services.ChangeEntries, services.ChangeFilter:
	default:
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.onChartLocked() {
		s.scheduleLocked()
	}
}

func (s *Session) onChartLocked() bool {
	return s.opts.Tabs[s.active] == TabChart
}

// scheduleLocked restarts the debounce timer; bursts collapse into one render.
func (s *Session) scheduleLocked() {
	if s.closed {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.pending = true
	s.gen++
	s.timer = time.AfterFunc(s.opts.Debounce, s.render)
}

func (s *Session) render() {
	s.mu.Lock()
	if !s.pending || s.closed {
		s.mu.Unlock()
		return
	}
	typ, gen := s.chartType, s.gen
	s.mu.Unlock()

	ds := s.src.Chart(typ)

	s.mu.Lock()
	defer s.mu.Unlock()
	// A change while computing has scheduled a newer render; keep it pending.
	if s.closed || s.gen != gen {
		return
	}
	s.pending = false
	s.chart = ds
	s.renders++
}

// Flush renders a pending chart immediately.
func (s *Session) Flush() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()
	s.render()
}

// Close stops the pending redraw and detaches every input and observer.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
	}
	detach := s.detach
	s.detach = nil
	s.mu.Unlock()

	for _, fn := range detach {
		fn()
	}
	s.input.Close()
}
