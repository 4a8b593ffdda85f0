// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/campus-vote/models"
)

// Persister stores official results snapshots. Snapshots are append-only.
type Persister interface {
	PersistOfficialResults(ctx context.Context, snap models.OfficialResultsSnapshot) (string, error)
}

// NewSnapshot builds an official snapshot of result with a fresh ID.
func NewSnapshot(result *Result, postedAt time.Time) models.OfficialResultsSnapshot {
	return models.OfficialResultsSnapshot{
		ID:         uuid.NewString(),
		PostedAt:   postedAt,
		TotalVotes: result.Counts.Total,
		Positions:  Present(result.Positions),
	}
}

// PostOfficialResults writes a new snapshot of result and returns its ID.
// Every call creates a new snapshot; posting the same tally twice yields two.
// Persistence errors are returned as-is.
func PostOfficialResults(ctx context.Context, p Persister, result *Result) (string, error) {
	if result == nil {
		return "", errors.New("no tally to post")
	}
	return p.PersistOfficialResults(ctx, NewSnapshot(result, time.Now().UTC()))
}
