// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/danielhkuo/campus-vote/models"
)

var ErrNotFound = errors.New("not found")

// Store reads tally inputs from and writes official results to the
// election database.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// FetchCandidates returns all candidates in creation order.
func (s *Store) FetchCandidates(ctx context.Context) ([]models.Candidate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, position, photo_url, created_at
		FROM candidate
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	candidates := []models.Candidate{}
	for rows.Next() {
		var c models.Candidate
		if err := rows.Scan(&c.ID, &c.Name, &c.Position, &c.PhotoURL, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, c)
	}

	return candidates, rows.Err()
}

// FetchDigitalBallots returns every digital vote row.
func (s *Store) FetchDigitalBallots(ctx context.Context) ([]models.DigitalBallot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, candidate_id, voter_id, cast_at
		FROM vote
		ORDER BY cast_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query votes: %w", err)
	}
	defer rows.Close()

	ballots := []models.DigitalBallot{}
	for rows.Next() {
		var b models.DigitalBallot
		if err := rows.Scan(&b.ID, &b.CandidateID, &b.VoterID, &b.CastAt); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		ballots = append(ballots, b)
	}

	return ballots, rows.Err()
}

// FetchPhysicalBallotRecords returns paper ballots with their raw payloads.
func (s *Store) FetchPhysicalBallotRecords(ctx context.Context) ([]models.PhysicalBallotRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, payload, recorded_at
		FROM physical_ballot
		ORDER BY recorded_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query physical ballots: %w", err)
	}
	defer rows.Close()

	records := []models.PhysicalBallotRecord{}
	for rows.Next() {
		var rec models.PhysicalBallotRecord
		var payload []byte
		if err := rows.Scan(&rec.ID, &payload, &rec.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan physical ballot: %w", err)
		}
		rec.Payload = json.RawMessage(payload)
		records = append(records, rec)
	}

	return records, rows.Err()
}

// PersistOfficialResults inserts snap as a new row. Existing snapshots are
// never updated. Database errors are returned unwrapped.
func (s *Store) PersistOfficialResults(ctx context.Context, snap models.OfficialResultsSnapshot) (string, error) {
	payload, err := json.Marshal(snap.Positions)
	if err != nil {
		return "", fmt.Errorf("failed to encode results: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO official_results (id, posted_at, total_votes, payload)
		VALUES ($1, $2, $3, $4)
	`, snap.ID, snap.PostedAt, snap.TotalVotes, string(payload))
	if err != nil {
		return "", err
	}

	return snap.ID, nil
}

// ListOfficialResults returns all posted snapshots, newest first.
func (s *Store) ListOfficialResults(ctx context.Context) ([]models.OfficialResultsSnapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, posted_at, total_votes, payload
		FROM official_results
		ORDER BY posted_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query official results: %w", err)
	}
	defer rows.Close()

	snapshots := []models.OfficialResultsSnapshot{}
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snap)
	}

	return snapshots, rows.Err()
}

// GetOfficialResults returns one snapshot or ErrNotFound.
func (s *Store) GetOfficialResults(ctx context.Context, id string) (models.OfficialResultsSnapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, posted_at, total_votes, payload
		FROM official_results
		WHERE id = $1
	`, id)

	snap, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.OfficialResultsSnapshot{}, ErrNotFound
	}
	return snap, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner) (models.OfficialResultsSnapshot, error) {
	var snap models.OfficialResultsSnapshot
	var payload []byte
	if err := row.Scan(&snap.ID, &snap.PostedAt, &snap.TotalVotes, &payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return snap, err
		}
		return snap, fmt.Errorf("failed to scan official results: %w", err)
	}
	if err := json.Unmarshal(payload, &snap.Positions); err != nil {
		return snap, fmt.Errorf("failed to parse official results payload: %w", err)
	}
	return snap, nil
}
