package bot

import (
	"context"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"github.com/Franca20/telegram-motorista-bot/internal/infrastructure/config"
	"github.com/Franca20/telegram-motorista-bot/internal/infrastructure/telegram"
)

// Loop states reported by State.
const (
	StatePolling = "polling"
	StateBackoff = "backoff"
)

// Fetcher retrieves queued updates from the Bot API. Implemented by
// telegram.Client.
type Fetcher interface {
	GetUpdates(ctx context.Context, offset int64) ([]telegram.Update, error)
}

// Handler consumes one update. Implemented by Router.
type Handler interface {
	HandleUpdate(ctx context.Context, upd telegram.Update)
}

// Loop polls the Bot API and feeds updates to the handler.
//
// Delivery is at-least-once: the loop tracks the highest update_id it has
// dispatched and skips anything at or below that watermark, so a batch
// that is re-fetched after a crash of the send path is not reprocessed.
// Updates inside a batch are dispatched in ascending update_id order.
//
// Fetch failures put the loop into backoff: after MaxFetchAttempts
// consecutive failures it waits one retry delay and starts a fresh
// attempt window. The loop only exits when ctx is cancelled.
type Loop struct {
	fetcher   Fetcher
	handler   Handler
	cfg       config.IngestionConfig
	delay     time.Duration
	telemetry Telemetry
	logger    Logger

	mu         sync.RWMutex
	lastSeenID int64
	state      string

	// sleep is replaced in tests to avoid real waiting.
	sleep func(ctx context.Context, d time.Duration)
}

// NewLoop builds the ingestion loop. Telemetry may be nil.
func NewLoop(fetcher Fetcher, handler Handler, cfg config.IngestionConfig, delay time.Duration, telemetry Telemetry, logger Logger) *Loop {
	if logger == nil {
		logger = noopLogger{}
	}

	return &Loop{
		fetcher:   fetcher,
		handler:   handler,
		cfg:       cfg,
		delay:     delay,
		telemetry: telemetry,
		logger:    logger,
		state:     StatePolling,
		sleep:     sleepCtx,
	}
}

// Run polls until ctx is cancelled. The returned error is always
// ctx.Err(); no fetch or handler failure terminates the loop.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info("ingestion starting")

	if l.cfg.ClearOnStart {
		l.clearBacklog(ctx)
	}

	l.logger.Info("ingestion ready")

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		updates, err := l.fetchWithRetry(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			l.setState(StateBackoff)
			l.logger.Warn("fetch window exhausted, backing off", "error", err)
			l.sleep(ctx, l.delay)
			continue
		}
		l.setState(StatePolling)

		processed := l.dispatchBatch(ctx, updates)

		if l.telemetry != nil {
			l.telemetry.WritePollMetric(len(updates), processed, l.LastSeenID())
		}
	}
}

// fetchWithRetry calls getUpdates up to MaxFetchAttempts times with a
// fixed delay between failures.
func (l *Loop) fetchWithRetry(ctx context.Context) ([]telegram.Update, error) {
	var lastErr error

	for attempt := 1; attempt <= l.cfg.MaxFetchAttempts; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		updates, err := l.fetcher.GetUpdates(ctx, l.nextOffset())
		if err == nil {
			return updates, nil
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		lastErr = err
		l.logger.Warn("fetch failed",
			"attempt", attempt,
			"max_attempts", l.cfg.MaxFetchAttempts,
			"error", err)

		if attempt < l.cfg.MaxFetchAttempts {
			l.sleep(ctx, l.delay)
		}
	}

	return nil, lastErr
}

// dispatchBatch hands new updates to the handler in ascending update_id
// order and returns how many were dispatched. Already-seen ids are
// skipped; each dispatch is isolated so a panicking handler only loses
// its own event.
func (l *Loop) dispatchBatch(ctx context.Context, updates []telegram.Update) int {
	if len(updates) == 0 {
		return 0
	}

	sorted := make([]telegram.Update, len(updates))
	copy(sorted, updates)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].UpdateID < sorted[j].UpdateID
	})

	processed := 0
	for _, upd := range sorted {
		if upd.UpdateID <= l.LastSeenID() {
			continue
		}
		l.dispatch(ctx, upd)
		l.setLastSeenID(upd.UpdateID)
		processed++
	}

	return processed
}

// dispatch runs the handler for one update, containing panics. The
// watermark still advances for a panicked update so the loop cannot wedge
// on a single poison message.
func (l *Loop) dispatch(ctx context.Context, upd telegram.Update) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("handler panicked",
				"update_id", upd.UpdateID,
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()

	l.handler.HandleUpdate(ctx, upd)
}

// clearBacklog discards updates queued while the bot was down by
// acknowledging past them. With KeepLastN > 0 the newest N updates are
// left queued for the first regular poll. A failed clear is logged and
// startup continues with the backlog intact.
func (l *Loop) clearBacklog(ctx context.Context) {
	updates, err := l.fetcher.GetUpdates(ctx, 0)
	if err != nil {
		l.logger.Warn("backlog clear failed", "error", err)
		return
	}
	if len(updates) == 0 {
		l.logger.Info("no queued backlog to clear")
		return
	}

	maxID := updates[0].UpdateID
	for _, upd := range updates[1:] {
		if upd.UpdateID > maxID {
			maxID = upd.UpdateID
		}
	}

	offset := maxID + 1
	if l.cfg.KeepLastN > 0 {
		offset = maxID - int64(l.cfg.KeepLastN-1)
		if offset < 0 {
			offset = 0
		}
	}

	if _, err := l.fetcher.GetUpdates(ctx, offset); err != nil {
		l.logger.Warn("backlog acknowledge failed", "error", err)
		return
	}

	l.logger.Info("backlog cleared", "offset", offset, "kept", l.cfg.KeepLastN)
}

// nextOffset returns the getUpdates offset acknowledging everything
// already dispatched, or 0 before the first dispatch.
func (l *Loop) nextOffset() int64 {
	last := l.LastSeenID()
	if last == 0 {
		return 0
	}
	return last + 1
}

// LastSeenID returns the highest dispatched update_id.
func (l *Loop) LastSeenID() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lastSeenID
}

func (l *Loop) setLastSeenID(id int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastSeenID = id
}

// State reports whether the loop is polling normally or backing off
// after exhausted fetch attempts.
func (l *Loop) State() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

func (l *Loop) setState(state string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state = state
}

// sleepCtx waits for d or until ctx is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
