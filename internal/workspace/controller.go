package workspace

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"atelier/internal/history"
	"atelier/internal/logging"
	"atelier/internal/snapshot"
)

const defaultDebounce = 1500 * time.Millisecond

// Options configures a Controller. Fallback, Chat, and Content are
// required; Assets and Logger may be nil. A nil Durable starts the
// controller in fallback mode, for callers whose database never opened.
type Options struct {
	Durable      history.Repository
	Fallback     history.Repository
	Chat         ChatState
	Content      ContentState
	Assets       AssetCleaner
	Logger       *slog.Logger
	DefaultTitle string
	Debounce     time.Duration
}

// Controller owns the active session and mediates between the live state
// providers and the session repositories.
type Controller struct {
	durable      history.Repository
	fallback     history.Repository
	chat         ChatState
	content      ContentState
	assets       AssetCleaner
	logger       *slog.Logger
	defaultTitle string
	debounce     time.Duration

	degraded  atomic.Bool
	hydrating atomic.Bool

	// opMu serializes persist and session-switch operations so a flush can
	// never interleave with a hydration's provider writes.
	opMu sync.Mutex

	mu         sync.Mutex
	activeID   string
	records    []history.Record
	byID       map[string]history.Record
	query      string
	hydrateSeq uint64

	timerMu sync.Mutex
	timer   *time.Timer

	unsubscribe []func()
	initialized bool
	closed      bool
}

// NewController wires a controller to its providers and repositories. Call
// Start before use and Close on shutdown.
func NewController(opts Options) (*Controller, error) {
	if opts.Fallback == nil {
		return nil, errors.New("workspace: fallback repository is required")
	}
	if opts.Chat == nil || opts.Content == nil {
		return nil, errors.New("workspace: chat and content providers are required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	title := strings.TrimSpace(opts.DefaultTitle)
	if title == "" {
		title = "New Conversation"
	}
	c := &Controller{
		durable:      opts.Durable,
		fallback:     opts.Fallback,
		chat:         opts.Chat,
		content:      opts.Content,
		assets:       opts.Assets,
		logger:       logging.NewComponentLogger(logger, "workspace"),
		defaultTitle: title,
		debounce:     debounce,
		byID:         make(map[string]history.Record),
	}
	if c.durable == nil {
		c.durable = opts.Fallback
		c.degraded.Store(true)
	}
	return c, nil
}

// Start loads the session list, hydrates the newest session (creating one
// when the store is empty), and begins watching the providers for changes.
// Once Start succeeds, further calls are no-ops.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.initialized {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	if err := c.refreshRecords(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	var newest string
	if len(c.records) > 0 {
		newest = c.records[0].ID
	}
	c.mu.Unlock()

	if newest == "" {
		if err := c.createAndActivate(ctx); err != nil {
			return err
		}
	} else if err := c.hydrate(ctx, newest); err != nil {
		return err
	}

	c.unsubscribe = append(c.unsubscribe,
		c.chat.Subscribe(c.SchedulePersist),
		c.content.Subscribe(c.SchedulePersist),
	)

	c.mu.Lock()
	c.initialized = true
	c.mu.Unlock()
	return nil
}

// Close stops watching providers, cancels any pending persist timer, and
// flushes the active session one last time.
func (c *Controller) Close(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	for _, cancel := range c.unsubscribe {
		cancel()
	}
	c.unsubscribe = nil
	c.stopTimer()
	return c.FlushPersist(ctx)
}

// ActiveID returns the id of the currently hydrated session.
func (c *Controller) ActiveID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeID
}

// Degraded reports whether the controller has failed over to the in-memory
// fallback repository. Failover is permanent for the process lifetime.
func (c *Controller) Degraded() bool {
	return c.degraded.Load()
}

// Sessions returns the session records matching the current search query,
// newest first. A blank query returns everything.
func (c *Controller) Sessions(ctx context.Context) ([]history.Record, error) {
	c.mu.Lock()
	query := c.query
	c.mu.Unlock()

	var records []history.Record
	err := c.run(func(repo history.Repository) error {
		var runErr error
		records, runErr = repo.Search(ctx, query)
		return runErr
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// SetSearchQuery updates the title filter applied by Sessions.
func (c *Controller) SetSearchQuery(query string) {
	c.mu.Lock()
	c.query = strings.TrimSpace(query)
	c.mu.Unlock()
}

// SchedulePersist arms the debounced persist of the active session. Calls
// made while a hydration is applying provider state are ignored so loading
// a session does not immediately write it back.
func (c *Controller) SchedulePersist() {
	if c.hydrating.Load() {
		return
	}
	c.timerMu.Lock()
	defer c.timerMu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.debounce, func() {
		if err := c.FlushPersist(context.Background()); err != nil {
			c.logger.Warn("debounced persist failed", logging.Error(err))
		}
	})
}

// FlushPersist writes the active session immediately, cancelling any
// pending debounce timer.
func (c *Controller) FlushPersist(ctx context.Context) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	return c.persistLocked(ctx)
}

// SelectSession flushes the outgoing session and hydrates the requested
// one. Selecting the active session is a no-op. When switches race, the
// most recently requested session wins.
func (c *Controller) SelectSession(ctx context.Context, id string) error {
	c.mu.Lock()
	active := c.activeID
	c.mu.Unlock()
	if id == active {
		return nil
	}

	c.opMu.Lock()
	err := c.persistLocked(ctx)
	c.opMu.Unlock()
	if err != nil {
		return err
	}
	return c.hydrate(ctx, id)
}

// CreateSession flushes the current session, creates a fresh one with the
// default title, and makes it active.
func (c *Controller) CreateSession(ctx context.Context) (string, error) {
	c.opMu.Lock()
	err := c.persistLocked(ctx)
	c.opMu.Unlock()
	if err != nil {
		return "", err
	}
	if err := c.createAndActivate(ctx); err != nil {
		return "", err
	}
	return c.ActiveID(), nil
}

// RenameSession sets a session's title. Blank titles fall back to the
// default title; renaming an unknown id is a no-op.
func (c *Controller) RenameSession(ctx context.Context, id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		title = c.defaultTitle
	}
	err := c.run(func(repo history.Repository) error {
		return repo.Rename(ctx, id, title)
	})
	if err != nil {
		return err
	}
	return c.refreshRecords(ctx)
}

// DeleteSession removes a session and its assets. Deleting the active
// session (or the last remaining one) creates and activates a fresh
// session so the workspace is never left without one.
func (c *Controller) DeleteSession(ctx context.Context, id string) error {
	err := c.run(func(repo history.Repository) error {
		return repo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	if c.assets != nil {
		if err := c.assets.RemoveSessionAssets(id); err != nil {
			c.logger.Warn("asset cleanup failed",
				logging.String(logging.FieldSessionID, id),
				logging.Error(err))
		}
	}
	if err := c.refreshRecords(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	wasActive := id == c.activeID
	remaining := len(c.records)
	c.mu.Unlock()

	if wasActive || remaining == 0 {
		return c.createAndActivate(ctx)
	}
	return nil
}

// createAndActivate inserts a fresh session and hydrates it.
func (c *Controller) createAndActivate(ctx context.Context) error {
	record := history.NewRecord(c.defaultTitle)
	err := c.run(func(repo history.Repository) error {
		return repo.Upsert(ctx, record, snapshot.Empty())
	})
	if err != nil {
		return err
	}
	if err := c.refreshRecords(ctx); err != nil {
		return err
	}
	return c.hydrate(ctx, record.ID)
}

// hydrate loads a session snapshot and applies it to the providers. When
// hydrations overlap, only the most recently requested one applies; the
// earlier load's result is discarded.
func (c *Controller) hydrate(ctx context.Context, id string) error {
	c.mu.Lock()
	c.hydrateSeq++
	seq := c.hydrateSeq
	c.mu.Unlock()

	c.hydrating.Store(true)
	defer func() {
		c.mu.Lock()
		current := seq == c.hydrateSeq
		c.mu.Unlock()
		if current {
			c.hydrating.Store(false)
		}
	}()

	var entry *history.Entry
	err := c.run(func(repo history.Repository) error {
		var runErr error
		entry, runErr = repo.Load(ctx, id)
		return runErr
	})
	if err != nil {
		return err
	}

	snap := snapshot.Empty()
	if entry != nil {
		snap = entry.Snapshot
	} else {
		c.logger.Warn("hydrating unknown session, starting empty",
			logging.String(logging.FieldSessionID, id))
	}

	// Hold opMu across the staleness re-check and the provider writes so a
	// newer hydration cannot land between them and get overwritten.
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	if seq != c.hydrateSeq {
		c.mu.Unlock()
		c.logger.Debug("stale hydration discarded",
			logging.String(logging.FieldSessionID, id))
		return nil
	}
	c.activeID = id
	c.mu.Unlock()

	c.chat.SetMessages(snap.Messages)
	c.content.HydrateFromSnapshot(snap.Content)
	return nil
}

// persistLocked writes the active session. Callers hold opMu.
func (c *Controller) persistLocked(ctx context.Context) error {
	c.stopTimer()

	c.mu.Lock()
	id := c.activeID
	record, known := c.byID[id]
	c.mu.Unlock()
	if id == "" {
		return nil
	}

	now := time.Now().UTC()
	if !known {
		record = history.Record{ID: id, Title: c.defaultTitle, CreatedAt: now}
	}
	record.UpdatedAt = now

	snap := snapshot.Snapshot{
		Messages: c.chat.Messages(),
		Content:  c.content.Snapshot(),
	}
	err := c.run(func(repo history.Repository) error {
		return repo.Upsert(ctx, record, snap)
	})
	if err != nil {
		return err
	}
	return c.refreshRecords(ctx)
}

// refreshRecords reloads the full session list into the controller cache.
func (c *Controller) refreshRecords(ctx context.Context) error {
	var records []history.Record
	err := c.run(func(repo history.Repository) error {
		var runErr error
		records, runErr = repo.List(ctx)
		return runErr
	})
	if err != nil {
		return err
	}

	byID := make(map[string]history.Record, len(records))
	for _, record := range records {
		byID[record.ID] = record
	}

	c.mu.Lock()
	c.records = records
	c.byID = byID
	c.mu.Unlock()
	return nil
}

// run executes op against the durable repository, failing over to the
// fallback on the first durable error. Once degraded the controller never
// returns to the durable store.
func (c *Controller) run(op func(history.Repository) error) error {
	if c.degraded.Load() {
		return op(c.fallback)
	}
	err := op(c.durable)
	if err == nil {
		return nil
	}
	c.degraded.Store(true)
	c.logger.Warn("durable store failed, switching to in-memory fallback",
		logging.Error(err))
	return op(c.fallback)
}

func (c *Controller) stopTimer() {
	c.timerMu.Lock()
	defer c.timerMu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
