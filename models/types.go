// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"encoding/json"
	"time"
)

// Request types

type CreateCandidateRequest struct {
	Name     string `json:"name"`
	Position string `json:"position"`
	PhotoURL string `json:"photo_url"`
}

type RegisterVoterRequest struct {
	StudentID string `json:"student_id"`
	FullName  string `json:"full_name"`
	Email     string `json:"email"`
}

// position -> candidate_id
type CastBallotRequest struct {
	StudentID  string            `json:"student_id"`
	Selections map[string]string `json:"selections"`
}

// position -> candidate name, as written on the paper ballot
type RecordPhysicalBallotRequest struct {
	Choices map[string]string `json:"choices"`
}

// Response types

type CreateCandidateResponse struct {
	CandidateID string `json:"candidate_id"`
}

type RegisterVoterResponse struct {
	VoterID string `json:"voter_id"`
}

type CastBallotResponse struct {
	BallotIDs []string `json:"ballot_ids"`
	Message   string   `json:"message"`
}

type RecordPhysicalBallotResponse struct {
	RecordID string `json:"record_id"`
}

type PostResultsResponse struct {
	SnapshotID string `json:"snapshot_id"`
	TotalVotes int    `json:"total_votes"`
}

type LiveResultsResponse struct {
	ComputedAt        time.Time        `json:"computed_at"`
	TotalVotes        int              `json:"total_votes"`
	Turnout           string           `json:"turnout"`
	MalformedRecords  int              `json:"malformed_records"`
	UnresolvedEntries int              `json:"unresolved_entries"`
	Positions         []PositionResult `json:"positions"`
}

// Domain types

type Candidate struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Position  string    `json:"position"`
	PhotoURL  string    `json:"photo_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Voter struct {
	ID           string    `json:"id"`
	StudentID    string    `json:"student_id"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email,omitempty"`
	HasVoted     bool      `json:"has_voted"`
	RegisteredAt time.Time `json:"registered_at"`
}

type DigitalBallot struct {
	ID          string    `json:"id"`
	CandidateID string    `json:"candidate_id"`
	VoterID     string    `json:"-"` // Never expose in JSON
	CastAt      time.Time `json:"cast_at"`
}

// PhysicalBallotRecord is one in-person voter's full paper ballot. Payload
// is either a JSON object or a JSON string holding one.
type PhysicalBallotRecord struct {
	ID         string          `json:"id"`
	Payload    json.RawMessage `json:"payload"`
	RecordedAt time.Time       `json:"recorded_at"`
}

// Result types

type CandidateResult struct {
	CandidateID string  `json:"candidate_id"`
	Name        string  `json:"name"`
	PhotoURL    string  `json:"photo_url,omitempty"`
	Votes       int     `json:"votes"`
	Percentage  float64 `json:"percentage"` // one decimal place
	Rank        int     `json:"rank"`       // competition ranking, 1-indexed
	IsTied      bool    `json:"is_tied"`
}

type PositionResult struct {
	Position   string            `json:"position"`
	TotalVotes int               `json:"total_votes"`
	Candidates []CandidateResult `json:"candidates"`
}

// OfficialResultsSnapshot is written once per post and never updated.
type OfficialResultsSnapshot struct {
	ID         string           `json:"id"`
	PostedAt   time.Time        `json:"posted_at"`
	TotalVotes int              `json:"total_votes"`
	Positions  []PositionResult `json:"positions"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
