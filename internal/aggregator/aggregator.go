// Package aggregator merges photos that the chat transport delivers as a
// labeled burst into one logical receipt batch. The transport never signals
// "batch complete"; completion is inferred from idle time, bounded by a
// ceiling so user-visible latency stays predictable.
package aggregator

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Config tunes batch completion detection.
type Config struct {
	// MaxWait is the ceiling on total collection time for one batch.
	MaxWait time.Duration
	// PollInterval is how often the wait loop re-checks the batch.
	PollInterval time.Duration
	// IdleThreshold is how long the batch must stay quiet to be complete.
	IdleThreshold time.Duration
}

// DefaultConfig matches grouped-upload delivery behavior: photos of one
// burst land within hundreds of milliseconds, so one second of silence is a
// safe completion signal, capped at three seconds.
func DefaultConfig() Config {
	return Config{
		MaxWait:       3 * time.Second,
		PollInterval:  500 * time.Millisecond,
		IdleThreshold: time.Second,
	}
}

type batch struct {
	photos    [][]byte
	firstSeen time.Time
	lastSeen  time.Time
}

// Aggregator owns the in-flight batch buffers. Each instance is independent;
// there is no process-wide state.
type Aggregator struct {
	cfg    Config
	clock  Clock
	logger *slog.Logger

	mu      sync.Mutex
	batches map[string]*batch
}

// New creates an aggregator. A nil logger falls back to slog.Default and a
// nil clock to the system clock.
func New(cfg Config, clock Clock, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = SystemClock
	}
	if cfg.MaxWait <= 0 {
		cfg = DefaultConfig()
	}
	return &Aggregator{
		cfg:     cfg,
		clock:   clock,
		logger:  logger,
		batches: map[string]*batch{},
	}
}

// Add buffers photo under batchKey, starting a new batch if the key is
// unseen. It returns true when this call started the batch; the caller is
// expected to spawn exactly one AwaitCompletion task in that case.
func (a *Aggregator) Add(batchKey string, photo []byte) bool {
	now := a.clock.Now()

	a.mu.Lock()
	defer a.mu.Unlock()

	b, ok := a.batches[batchKey]
	if !ok {
		a.batches[batchKey] = &batch{
			photos:    [][]byte{photo},
			firstSeen: now,
			lastSeen:  now,
		}
		a.logger.Info("aggregator.batch.start", "batch_key", batchKey)
		return true
	}
	b.photos = append(b.photos, photo)
	b.lastSeen = now
	a.logger.Debug("aggregator.batch.append", "batch_key", batchKey, "photos", len(b.photos))
	return false
}

// Size reports the current photo count of a batch, zero if unknown.
func (a *Aggregator) Size(batchKey string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if b, ok := a.batches[batchKey]; ok {
		return len(b.photos)
	}
	return 0
}

// AwaitCompletion blocks until the batch is complete: either IdleThreshold
// has passed since the last append, or MaxWait since the batch started. The
// batch entry is removed atomically on completion; a batch already consumed
// by another trigger yields nil, which callers must treat as nothing to
// process. The mutex is never held across a poll wait.
func (a *Aggregator) AwaitCompletion(ctx context.Context, batchKey string) [][]byte {
	for {
		select {
		case <-ctx.Done():
			return a.take(batchKey)
		case <-a.clock.After(a.cfg.PollInterval):
		}

		a.mu.Lock()
		b, ok := a.batches[batchKey]
		if !ok {
			a.mu.Unlock()
			return nil
		}
		now := a.clock.Now()
		done := now.Sub(b.lastSeen) >= a.cfg.IdleThreshold ||
			now.Sub(b.firstSeen) >= a.cfg.MaxWait
		a.mu.Unlock()

		if done {
			photos := a.take(batchKey)
			if photos != nil {
				a.logger.Info("aggregator.batch.complete",
					"batch_key", batchKey, "photos", len(photos))
			}
			return photos
		}
	}
}

// take removes and returns the batch photos, nil if already consumed.
func (a *Aggregator) take(batchKey string) [][]byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	b, ok := a.batches[batchKey]
	if !ok {
		return nil
	}
	delete(a.batches, batchKey)
	return b.photos
}
