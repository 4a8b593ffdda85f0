// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"log/slog"

	"github.com/danielhkuo/campus-vote/models"
)

// Inputs is the read-only data a tally is computed from.
type Inputs struct {
	Candidates      []models.Candidate
	DigitalBallots  []models.DigitalBallot
	PhysicalRecords []models.PhysicalBallotRecord
}

// Counts holds votes per candidate ID plus what was skipped along the way.
type Counts struct {
	ByCandidate map[string]int

	// Total is the sum of all resolved votes, digital and physical
	Total int

	UnknownBallots    int // digital ballots for a candidate ID not in the list
	MalformedRecords  int // physical records that failed to decode
	UnresolvedEntries int // physical entries with no matching (position, name)

	// Decode errors, one *MalformedBallotError per skipped record
	Errors []error
}

// candidateKey reconciles paper ballots, which name candidates rather than
// reference their IDs.
type candidateKey struct {
	position string
	name     string
}

// ComputeVoteCounts tallies digital and physical ballots per candidate.
// Every candidate starts at zero. Digital ballots for unknown candidate IDs
// are ignored. Physical records that fail to decode, and entries that match
// no (position, name) pair, are skipped. None of these are errors.
func ComputeVoteCounts(in Inputs, dec Decoder, logger *slog.Logger) Counts {
	if dec == nil {
		dec = JSONDecoder{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	counts := Counts{ByCandidate: make(map[string]int, len(in.Candidates))}

	// Duplicate (position, name) pairs resolve to the last candidate listed
	byKey := make(map[candidateKey]string, len(in.Candidates))
	for _, c := range in.Candidates {
		counts.ByCandidate[c.ID] = 0
		byKey[candidateKey{position: c.Position, name: c.Name}] = c.ID
	}

	for _, b := range in.DigitalBallots {
		if _, ok := counts.ByCandidate[b.CandidateID]; !ok {
			counts.UnknownBallots++
			logger.Debug("ignoring ballot for unknown candidate",
				"ballot_id", b.ID,
				"candidate_id", b.CandidateID,
			)
			continue
		}
		counts.ByCandidate[b.CandidateID]++
		counts.Total++
	}

	for _, rec := range decodeAll(in.PhysicalRecords, dec) {
		if rec.err != nil {
			counts.MalformedRecords++
			counts.Errors = append(counts.Errors, rec.err)
			logger.Warn("skipping physical ballot", "record_id", rec.id, "error", rec.err)
			continue
		}

		for position, name := range rec.choices {
			id, ok := byKey[candidateKey{position: position, name: name}]
			if !ok {
				counts.UnresolvedEntries++
				logger.Debug("unresolved physical ballot entry",
					"record_id", rec.id,
					"position", position,
					"name", name,
				)
				continue
			}
			counts.ByCandidate[id]++
			counts.Total++
		}
	}

	return counts
}
