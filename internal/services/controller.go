package services

import (
	"context"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/GregMSThompson/moneylog/internal/dto"
	"github.com/GregMSThompson/moneylog/internal/errs"
	"github.com/GregMSThompson/moneylog/internal/imaging"
	"github.com/GregMSThompson/moneylog/internal/ledger"
	"github.com/GregMSThompson/moneylog/internal/models"
	"github.com/GregMSThompson/moneylog/pkg/logger"
)

type remoteAPI interface {
	Init(ctx context.Context) (dto.InitResponse, error)
	GetLogs(ctx context.Context) ([]dto.LogRecord, error)
	Post(ctx context.Context, payload dto.ActionPayload) (dto.ActionResponse, error)
}

type snapshotStore interface {
	LoadCategories(ctx context.Context) ([]models.Category, bool, error)
	LoadPayments(ctx context.Context) ([]string, bool, error)
	LoadLogs(ctx context.Context) ([]models.LedgerEntry, bool, error)
	SaveCategories(ctx context.Context, categories []models.Category) error
	SavePayments(ctx context.Context, payments []string) error
	SaveLogs(ctx context.Context, entries []models.LedgerEntry) error
}

type accessKeyStore interface {
	GetAccessKey(ctx context.Context) (string, error)
	SetAccessKey(ctx context.Context, key string) error
	ClearAccessKey(ctx context.Context) error
}

// Change names the part of state an observer should re-derive.
type Change string

const (
	ChangeEntries  Change = "entries"
	ChangeSettings Change = "settings"
	ChangeWishes   Change = "wishes"
	ChangeFilter   Change = "filter"
	ChangeAccess   Change = "access"
)

// State is the in-memory mirror of the remote data plus local UI inputs.
type State struct {
	Categories []models.Category
	Payments   []string
	Wishes     []models.Wish
	Entries    []models.LedgerEntry
	Filter     models.Filter
	AccessKey  string
	LastSync   time.Time
}

type ControllerOptions struct {
	Dialect           dto.Dialect
	Location          *time.Location
	Now               func() time.Time
	NoticeTTL         time.Duration
	Image             imaging.Options
	KeyLogoutOnAbsent bool
}

type controller struct {
	api     remoteAPI
	snap    snapshotStore
	keys    accessKeyStore
	opts    ControllerOptions
	notices *noticeBoard
	busy    atomic.Bool

	mu    sync.RWMutex
	state State

	obsMu     sync.Mutex
	observers map[int]func(Change)
	nextObs   int
}

func NewController(api remoteAPI, snap snapshotStore, keys accessKeyStore, opts ControllerOptions) *controller {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Dialect.Name == "" {
		opts.Dialect = dto.DialectWish
	}
	return &controller{
		api:       api,
		snap:      snap,
		keys:      keys,
		opts:      opts,
		notices:   NewNoticeBoard(opts.NoticeTTL),
		observers: make(map[int]func(Change)),
	}
}

func (c *controller) now() time.Time {
	return c.opts.Now().In(c.opts.Location)
}

// Snapshot returns a copy of the current state.
func (c *controller) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.state
	s.Categories = slices.Clone(s.Categories)
	s.Payments = slices.Clone(s.Payments)
	s.Wishes = slices.Clone(s.Wishes)
	s.Entries = slices.Clone(s.Entries)
	return s
}

func (c *controller) Dialect() dto.Dialect { return c.opts.Dialect }

func (c *controller) EditMode() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.AccessKey != ""
}

func (c *controller) Busy() bool { return c.busy.Load() }

func (c *controller) Notices() []Notice { return c.notices.Active() }

func (c *controller) Notify(level NoticeLevel, msg string) Notice {
	return c.notices.Push(level, msg)
}

// Subscribe registers fn for state changes and returns its unsubscribe.
// Observers run synchronously after the state lock is released.
func (c *controller) Subscribe(fn func(Change)) func() {
	c.obsMu.Lock()
	defer c.obsMu.Unlock()
	id := c.nextObs
	c.nextObs++
	c.observers[id] = fn
	return func() {
		c.obsMu.Lock()
		defer c.obsMu.Unlock()
		delete(c.observers, id)
	}
}

func (c *controller) notify(changes ...Change) {
	c.obsMu.Lock()
	fns := make([]func(Change), 0, len(c.observers))
	for _, fn := range c.observers {
		fns = append(fns, fn)
	}
	c.obsMu.Unlock()
	for _, ch := range changes {
		for _, fn := range fns {
			fn(ch)
		}
	}
}

// Start runs the startup sequence: stored key, local snapshot, default date
// window, then a remote sync. A failed sync leaves the snapshot state in place.
func (c *controller) Start(ctx context.Context) error {
	log := logger.FromContext(ctx)

	if key, err := c.keys.GetAccessKey(ctx); err != nil {
		log.Warn("stored access key unavailable", "error", err)
	} else {
		c.mu.Lock()
		c.state.AccessKey = key
		c.mu.Unlock()
	}

	c.loadSnapshot(ctx)

	start, end := ledger.DefaultWindow(c.now())
	c.mu.Lock()
	c.state.Filter = models.Filter{Start: start, End: end}
	c.mu.Unlock()
	c.notify(ChangeSettings, ChangeEntries, ChangeFilter)

	return c.Sync(ctx)
}

func (c *controller) loadSnapshot(ctx context.Context) {
	log := logger.FromContext(ctx)

	cats, okCats, err := c.snap.LoadCategories(ctx)
	if err != nil {
		log.Warn("snapshot categories unreadable", "error", err)
	}
	pays, okPays, err := c.snap.LoadPayments(ctx)
	if err != nil {
		log.Warn("snapshot payments unreadable", "error", err)
	}
	logs, okLogs, err := c.snap.LoadLogs(ctx)
	if err != nil {
		log.Warn("snapshot logs unreadable", "error", err)
	}

	c.mu.Lock()
	if okCats {
		c.state.Categories = cats
	}
	if okPays {
		c.state.Payments = pays
	}
	if okLogs {
		c.state.Entries = logs
	}
	c.mu.Unlock()
	log.Info("snapshot loaded", "categories", len(cats), "payments", len(pays), "entries", len(logs))
}

// Sync fetches settings then entries. Each step that succeeds replaces its
// part of state and the snapshot; a failure keeps what is there and raises a
// notice.
func (c *controller) Sync(ctx context.Context) error {
	if err := c.refreshSettings(ctx); err != nil {
		c.notices.Push(NoticeError, "sync failed: "+err.Error())
		return err
	}
	if err := c.refreshLogs(ctx); err != nil {
		c.notices.Push(NoticeError, "sync failed: "+err.Error())
		return err
	}
	c.mu.Lock()
	c.state.LastSync = c.now()
	c.mu.Unlock()
	return nil
}

func (c *controller) refreshSettings(ctx context.Context) error {
	log := logger.FromContext(ctx)
	resp, err := c.api.Init(ctx)
	if err != nil {
		log.Warn("init failed", "error", err)
		return err
	}

	cats := make([]models.Category, 0, len(resp.Categories))
	for _, rec := range resp.Categories {
		cats = append(cats, ledger.NormalizeCategory(rec.Main, rec.Subs, models.EntryType(rec.Type)))
	}
	cats = ledger.UniqueByMain(cats)
	pays := resp.PaymentNames()

	var wishes []models.Wish
	if resp.WishList != nil {
		wishes = make([]models.Wish, 0, len(resp.WishList))
		for _, rec := range resp.WishList {
			w, err := rec.ToModel()
			if err != nil {
				log.Warn("skipping wish row", "error", err)
				continue
			}
			wishes = append(wishes, w)
		}
	}

	c.mu.Lock()
	c.state.Categories = cats
	c.state.Payments = pays
	if wishes != nil {
		c.state.Wishes = wishes
	}
	c.mu.Unlock()

	if err := c.snap.SaveCategories(ctx, cats); err != nil {
		log.Warn("snapshot categories not saved", "error", err)
	}
	if err := c.snap.SavePayments(ctx, pays); err != nil {
		log.Warn("snapshot payments not saved", "error", err)
	}
	c.notify(ChangeSettings, ChangeWishes)
	return nil
}

func (c *controller) refreshLogs(ctx context.Context) error {
	log := logger.FromContext(ctx)
	rows, err := c.api.GetLogs(ctx)
	if err != nil {
		log.Warn("getLogs failed", "error", err)
		return err
	}

	entries := make([]models.LedgerEntry, 0, len(rows))
	for _, r := range rows {
		e, err := r.ToModel()
		if err != nil {
			log.Warn("skipping log row", "error", err)
			continue
		}
		entries = append(entries, e)
	}

	c.mu.Lock()
	c.state.Entries = entries
	c.mu.Unlock()

	if err := c.snap.SaveLogs(ctx, entries); err != nil {
		log.Warn("snapshot logs not saved", "error", err)
	}
	c.notify(ChangeEntries)
	return nil
}

// ApplyAccessKey handles the key query parameter. present reports whether
// the parameter was in the URL at all.
func (c *controller) ApplyAccessKey(ctx context.Context, present bool, value string) error {
	value = strings.TrimSpace(value)

	c.mu.RLock()
	current := c.state.AccessKey
	c.mu.RUnlock()

	var next string
	switch {
	case present && value != "":
		next = value
	case present:
		next = ""
	case c.opts.KeyLogoutOnAbsent:
		next = ""
	default:
		return nil
	}
	if next == current {
		return nil
	}

	if err := c.keys.SetAccessKey(ctx, next); err != nil {
		return err
	}
	c.mu.Lock()
	c.state.AccessKey = next
	c.mu.Unlock()

	logger.FromContext(ctx).Info("access key updated", "edit_mode", next != "")
	c.notify(ChangeAccess)
	return nil
}

// mutate runs one remote change: edit mode is required, validate runs
// before anything is sent, and at most one change is in flight. After a
// successful change the whole state is re-fetched.
func (c *controller) mutate(ctx context.Context, op string, validate func() error, send func(key string) error) error {
	log := logger.FromContext(ctx).With("operation", op)

	c.mu.RLock()
	key := c.state.AccessKey
	c.mu.RUnlock()
	if key == "" {
		return errs.NewReadOnlyError()
	}
	if validate != nil {
		if err := validate(); err != nil {
			c.notices.Push(NoticeWarn, err.Error())
			return err
		}
	}
	if !c.busy.CompareAndSwap(false, true) {
		return errs.NewBusyError()
	}
	defer c.busy.Store(false)

	c.notices.Push(NoticeInfo, "saving...")
	if err := send(key); err != nil {
		log.Warn("change rejected", "error", err)
		c.notices.Push(NoticeError, err.Error())
		return err
	}

	if err := c.Sync(ctx); err != nil {
		log.Warn("change saved but refresh failed", "error", err)
		return nil
	}
	c.notices.Push(NoticeSuccess, "done")
	log.Info("change saved")
	return nil
}

func (c *controller) requireEditMode() error {
	if !c.EditMode() {
		return errs.NewReadOnlyError()
	}
	return nil
}
