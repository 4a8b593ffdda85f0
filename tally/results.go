// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"math"
	"sort"

	"github.com/danielhkuo/campus-vote/models"
)

// CandidateResult is one candidate's standing within its position.
type CandidateResult struct {
	Candidate  models.Candidate
	Votes      int
	Percentage float64 // unrounded share of the position total, 0-100
	Rank       int
	IsTied     bool
}

// PositionResult groups the ranked candidates running for one position.
type PositionResult struct {
	Position   string
	TotalVotes int
	Candidates []CandidateResult
}

// BuildPositionResults groups candidates by position in order of first
// appearance, then ranks each group by descending votes.
//
// Equal counts keep their input order and share a rank (1, 1, 3). A
// candidate is tied when another candidate in the same position has the
// same non-zero count; shared zero counts are not ties.
func BuildPositionResults(candidates []models.Candidate, votes map[string]int) []PositionResult {
	var order []string
	groups := make(map[string][]models.Candidate)
	for _, c := range candidates {
		if _, seen := groups[c.Position]; !seen {
			order = append(order, c.Position)
		}
		groups[c.Position] = append(groups[c.Position], c)
	}

	results := make([]PositionResult, 0, len(order))
	for _, position := range order {
		results = append(results, rankPosition(position, groups[position], votes))
	}
	return results
}

func rankPosition(position string, candidates []models.Candidate, votes map[string]int) PositionResult {
	total := 0
	for _, c := range candidates {
		total += votes[c.ID]
	}

	entries := make([]CandidateResult, len(candidates))
	for i, c := range candidates {
		n := votes[c.ID]
		pct := 0.0
		if total > 0 {
			pct = float64(n) / float64(total) * 100
		}
		entries[i] = CandidateResult{Candidate: c, Votes: n, Percentage: pct}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Votes > entries[j].Votes
	})

	sameCount := make(map[int]int, len(entries))
	for _, e := range entries {
		sameCount[e.Votes]++
	}

	for i := range entries {
		if i > 0 && entries[i].Votes == entries[i-1].Votes {
			entries[i].Rank = entries[i-1].Rank
		} else {
			entries[i].Rank = i + 1
		}
		entries[i].IsTied = entries[i].Votes > 0 && sameCount[entries[i].Votes] > 1
	}

	return PositionResult{
		Position:   position,
		TotalVotes: total,
		Candidates: entries,
	}
}

// Present converts position results to their display form, rounding
// percentages to one decimal place.
func Present(positions []PositionResult) []models.PositionResult {
	out := make([]models.PositionResult, len(positions))
	for i, p := range positions {
		cands := make([]models.CandidateResult, len(p.Candidates))
		for j, c := range p.Candidates {
			cands[j] = models.CandidateResult{
				CandidateID: c.Candidate.ID,
				Name:        c.Candidate.Name,
				PhotoURL:    c.Candidate.PhotoURL,
				Votes:       c.Votes,
				Percentage:  roundPercentage(c.Percentage),
				Rank:        c.Rank,
				IsTied:      c.IsTied,
			}
		}
		out[i] = models.PositionResult{
			Position:   p.Position,
			TotalVotes: p.TotalVotes,
			Candidates: cands,
		}
	}
	return out
}

func roundPercentage(p float64) float64 {
	return math.Round(p*10) / 10
}
