// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreateCandidateRequest: name, position, photo_url
  - RegisterVoterRequest: student_id, full_name, email
  - CastBallotRequest: student_id, selections (position -> candidate_id)
  - RecordPhysicalBallotRequest: choices (position -> candidate name)

# Response Types

Types for JSON responses:

  - CreateCandidateResponse: candidate_id
  - RegisterVoterResponse: voter_id
  - CastBallotResponse: ballot_ids, message
  - RecordPhysicalBallotResponse: record_id
  - PostResultsResponse: snapshot_id, total_votes
  - LiveResultsResponse: positions, totals, skipped record counters
  - ErrorResponse: error, message

# Domain Types

  - Candidate: a person running for a position
  - Voter: a registered student and their has_voted flag
  - DigitalBallot: one online vote for one candidate
  - PhysicalBallotRecord: one paper ballot, position -> candidate name
  - PositionResult / CandidateResult: presentation form of a tally
  - OfficialResultsSnapshot: immutable posted results
*/
package models
