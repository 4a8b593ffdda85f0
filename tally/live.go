// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/danielhkuo/campus-vote/metrics"
)

// Computer produces a full tally.
type Computer interface {
	Compute(ctx context.Context) (*Result, error)
}

// Update is one change to the live view: a new tally, or the error that
// replaced it.
type Update struct {
	Result *Result
	Err    error
}

// Live keeps the most recent tally for the live results view. Every refresh
// recomputes from scratch; starting a refresh cancels the one in flight, and
// an older refresh never replaces a newer published result. A failed refresh
// is published too and clears the previous tally.
type Live struct {
	computer Computer
	logger   *slog.Logger
	metrics  *metrics.Metrics

	mu      sync.Mutex
	gen     uint64
	cancel  context.CancelFunc
	current Update
	subs    map[chan Update]struct{}
}

func NewLive(computer Computer, logger *slog.Logger, m *metrics.Metrics) *Live {
	if logger == nil {
		logger = slog.Default()
	}
	return &Live{
		computer: computer,
		logger:   logger,
		metrics:  m,
		subs:     make(map[chan Update]struct{}),
	}
}

// Refresh recomputes the tally and publishes the outcome. It returns
// ErrSuperseded if another refresh started before this one completed.
//
// The computation is detached from ctx cancellation: only a newer refresh
// abandons it. ctx values are kept.
func (l *Live) Refresh(ctx context.Context) (*Result, error) {
	l.mu.Lock()
	l.gen++
	gen := l.gen
	if l.cancel != nil {
		l.cancel()
	}
	ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	l.cancel = cancel
	l.mu.Unlock()
	defer cancel()

	start := time.Now()
	result, err := l.computer.Compute(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()

	if gen != l.gen {
		l.metrics.ObserveTally(metrics.OutcomeSuperseded, time.Since(start))
		return nil, ErrSuperseded
	}
	l.cancel = nil

	if err != nil {
		l.publish(Update{Err: err})
		return nil, err
	}
	l.publish(Update{Result: result})
	return result, nil
}

// publish replaces the current update and hands it to every subscriber.
// Callers hold l.mu.
func (l *Live) publish(u Update) {
	l.current = u
	for ch := range l.subs {
		// Drop an unread older update so slow readers only see the newest
		select {
		case <-ch:
		default:
		}
		ch <- u
	}
}

// Latest returns the newest published tally, or nil before the first one
// and after a failed refresh.
func (l *Live) Latest() *Result {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current.Result
}

// Current returns the newest published update. Both fields are nil before
// the first refresh completes.
func (l *Live) Current() Update {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}

// Subscribe returns a channel receiving each newly published update and a
// function that ends the subscription.
func (l *Live) Subscribe() (<-chan Update, func()) {
	ch := make(chan Update, 1)

	l.mu.Lock()
	l.subs[ch] = struct{}{}
	l.mu.Unlock()
	l.metrics.SubscriberJoined()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.subs, ch)
			l.mu.Unlock()
			l.metrics.SubscriberLeft()
		})
	}
}

// Run refreshes once immediately, then on every tick of interval and every
// event, until ctx is done. Refreshes run concurrently; newer ones win.
// Refreshes already started finish before Run returns.
func (l *Live) Run(ctx context.Context, interval time.Duration, events <-chan struct{}) {
	var wg sync.WaitGroup
	defer wg.Wait()

	refresh := func(reason string) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.Refresh(ctx); err != nil &&
				!errors.Is(err, ErrSuperseded) && ctx.Err() == nil {
				l.logger.Warn("live tally refresh failed", "trigger", reason, "error", err)
			}
		}()
	}

	var tick <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	refresh("start")
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			refresh("poll")
		case _, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			refresh("ballot")
		}
	}
}
