// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the campus-vote API.

# Handler Types

  - CandidateHandler: candidate registry (create, list, delete)
  - VoterHandler: voter registration and listing
  - BallotHandler: digital ballots and paper ballot entry
  - ResultsHandler: live tally, result stream, official results

Admin checks happen in the router (middleware.RequireAdmin); handlers assume
the caller is allowed.

# Ballots

A digital ballot selects one candidate id per position:

	POST /ballots {"student_id": "...", "selections": {"President": "<candidate id>"}}

Every selection must name a candidate running for that position. The vote
rows and the voter's has_voted flag are written in one transaction, so a
voter can cast at most one ballot.

A paper ballot names candidates as written:

	POST /physical-ballots {"choices": {"President": "Alice Chen"}}

Names are matched to candidates only when the tally runs.

Both ballot kinds publish a notify event so the live tally refreshes.

# Results

GET /results/live recomputes the tally and answers 503 when its data cannot
be loaded. GET /results/stream sends a "results" event each time the live
view publishes a new tally; GET /results/ws sends the same tallies as
websocket JSON messages. POST /results/official stores a new immutable
snapshot on every call.
*/
package handlers
