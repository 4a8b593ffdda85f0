// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/campus-vote/metrics"
	"github.com/danielhkuo/campus-vote/models"
)

const defaultFetchTimeout = 10 * time.Second

// Source supplies the data a tally is computed from.
type Source interface {
	FetchCandidates(ctx context.Context) ([]models.Candidate, error)
	FetchDigitalBallots(ctx context.Context) ([]models.DigitalBallot, error)
	FetchPhysicalBallotRecords(ctx context.Context) ([]models.PhysicalBallotRecord, error)
}

// Result is one full tally.
type Result struct {
	Counts     Counts
	Positions  []PositionResult
	ComputedAt time.Time
}

// Options configures an Engine. Zero values fall back to defaults.
type Options struct {
	FetchTimeout time.Duration
	Decoder      Decoder
	Logger       *slog.Logger
	Metrics      *metrics.Metrics
}

// Engine recomputes the whole tally from its source on every call.
type Engine struct {
	source    Source
	persister Persister
	timeout   time.Duration
	decoder   Decoder
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

func NewEngine(source Source, persister Persister, opts Options) *Engine {
	e := &Engine{
		source:    source,
		persister: persister,
		timeout:   opts.FetchTimeout,
		decoder:   opts.Decoder,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
	}
	if e.timeout <= 0 {
		e.timeout = defaultFetchTimeout
	}
	if e.decoder == nil {
		e.decoder = JSONDecoder{}
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Compute fetches candidates and both ballot sources, then tallies them.
// A failed fetch returns ErrDataUnavailable and no result.
func (e *Engine) Compute(ctx context.Context) (*Result, error) {
	start := time.Now()

	in, err := e.fetch(ctx)
	if err != nil {
		if ctx.Err() != nil {
			// Caller gave up; not a data source failure
			return nil, ctx.Err()
		}
		e.metrics.ObserveTally(metrics.OutcomeUnavailable, time.Since(start))
		e.logger.Error("tally data fetch failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrDataUnavailable, err)
	}

	counts := ComputeVoteCounts(in, e.decoder, e.logger)
	result := &Result{
		Counts:     counts,
		Positions:  BuildPositionResults(in.Candidates, counts.ByCandidate),
		ComputedAt: time.Now().UTC(),
	}

	e.metrics.SetSkipped(metrics.ReasonMalformed, counts.MalformedRecords)
	e.metrics.SetSkipped(metrics.ReasonUnresolved, counts.UnresolvedEntries)
	e.metrics.SetSkipped(metrics.ReasonUnknownCandidate, counts.UnknownBallots)
	e.metrics.ObserveTally(metrics.OutcomeOK, time.Since(start))

	return result, nil
}

// fetch loads all three inputs concurrently under the fetch timeout.
func (e *Engine) fetch(ctx context.Context) (Inputs, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	var in Inputs
	g.Go(func() error {
		candidates, err := e.source.FetchCandidates(ctx)
		if err != nil {
			return fmt.Errorf("fetch candidates: %w", err)
		}
		in.Candidates = candidates
		return nil
	})
	g.Go(func() error {
		ballots, err := e.source.FetchDigitalBallots(ctx)
		if err != nil {
			return fmt.Errorf("fetch digital ballots: %w", err)
		}
		in.DigitalBallots = ballots
		return nil
	})
	g.Go(func() error {
		records, err := e.source.FetchPhysicalBallotRecords(ctx)
		if err != nil {
			return fmt.Errorf("fetch physical ballots: %w", err)
		}
		in.PhysicalRecords = records
		return nil
	})

	if err := g.Wait(); err != nil {
		return Inputs{}, err
	}
	return in, nil
}

// Post writes result as a new official snapshot.
func (e *Engine) Post(ctx context.Context, result *Result) (string, error) {
	id, err := PostOfficialResults(ctx, e.persister, result)
	if err != nil {
		e.logger.Error("failed to post official results", "error", err)
		return "", err
	}
	e.metrics.IncrementSnapshots()
	e.logger.Info("official results posted", "snapshot_id", id, "total_votes", result.Counts.Total)
	return id, nil
}
