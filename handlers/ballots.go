// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/danielhkuo/campus-vote/auth"
	"github.com/danielhkuo/campus-vote/cliparse"
	"github.com/danielhkuo/campus-vote/db"
	"github.com/danielhkuo/campus-vote/middleware"
	"github.com/danielhkuo/campus-vote/models"
	"github.com/danielhkuo/campus-vote/notify"
)

type BallotHandler struct {
	db     *sql.DB
	cfg    cliparse.Config
	events notify.Publisher
}

func NewBallotHandler(db *sql.DB, cfg cliparse.Config, events notify.Publisher) *BallotHandler {
	return &BallotHandler{db: db, cfg: cfg, events: events}
}

// CastBallot handles POST /ballots
// A voter casts their whole digital ballot at once; a second ballot is rejected.
func (h *BallotHandler) CastBallot(w http.ResponseWriter, r *http.Request) {
	var req models.CastBallotRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.StudentID = strings.TrimSpace(req.StudentID)
	if req.StudentID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "student_id is required")
		return
	}
	if len(req.Selections) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "selections must contain at least one position")
		return
	}

	var voterID string
	var hasVoted bool
	err := h.db.QueryRow(`
		SELECT id, has_voted FROM voter WHERE student_id = $1
	`, req.StudentID).Scan(&voterID, &hasVoted)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Voter not registered")
		return
	}
	if err != nil {
		slog.Error("failed to query voter", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if hasVoted {
		middleware.ErrorResponse(w, http.StatusConflict, "Voter has already voted")
		return
	}

	// Positions in a stable order so ballot_ids line up across retries
	positions := make([]string, 0, len(req.Selections))
	for position := range req.Selections {
		positions = append(positions, position)
	}
	sort.Strings(positions)

	ipHash := auth.HashIP(middleware.GetClientIP(r), h.cfg.IPHashSalt)
	now := time.Now().UTC()

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	// Flip has_voted first; a concurrent ballot for the same voter loses here
	res, err := tx.Exec(`
		UPDATE voter SET has_voted = $1 WHERE id = $2 AND has_voted = $3
	`, true, voterID, false)
	if err != nil {
		slog.Error("failed to mark voter", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to cast ballot")
		return
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		middleware.ErrorResponse(w, http.StatusConflict, "Voter has already voted")
		return
	}

	candidateQuery := `SELECT position FROM candidate WHERE id = $1`
	if h.cfg.DatabaseType == db.DialectPostgres {
		// Blocks candidate deletion until this ballot commits
		candidateQuery += ` FOR SHARE`
	}
	// Each selection must name a candidate running for that position. Checked
	// inside the transaction so a candidate deleted meanwhile is not voted for.
	for _, position := range positions {
		candidateID := req.Selections[position]
		var candidatePosition string
		err := tx.QueryRow(candidateQuery, candidateID).Scan(&candidatePosition)

		if err == sql.ErrNoRows {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Unknown candidate: "+candidateID)
			return
		}
		if err != nil {
			slog.Error("failed to query candidate", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		if candidatePosition != position {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Candidate is not running for "+position)
			return
		}
	}

	ballotIDs := make([]string, 0, len(positions))
	for _, position := range positions {
		ballotID, err := auth.GenerateID(16)
		if err != nil {
			slog.Error("failed to generate ballot ID", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to cast ballot")
			return
		}

		_, err = tx.Exec(`
			INSERT INTO vote (id, candidate_id, voter_id, position, cast_at, ip_hash)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, ballotID, req.Selections[position], voterID, position, now, ipHash)
		if err != nil {
			slog.Error("failed to insert vote", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to cast ballot")
			return
		}
		ballotIDs = append(ballotIDs, ballotID)
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit ballot", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to cast ballot")
		return
	}

	slog.Info("ballot cast", "voter_id", voterID, "positions", len(ballotIDs))
	h.events.Publish()

	middleware.JSONResponse(w, http.StatusCreated, models.CastBallotResponse{
		BallotIDs: ballotIDs,
		Message:   "Ballot cast successfully",
	})
}

// RecordPhysicalBallot handles POST /physical-ballots
// The paper ballot is stored with positions and names trimmed; names are
// matched at tally time.
func (h *BallotHandler) RecordPhysicalBallot(w http.ResponseWriter, r *http.Request) {
	var req models.RecordPhysicalBallotRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if len(req.Choices) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "choices must contain at least one position")
		return
	}

	choices := make(map[string]string, len(req.Choices))
	for position, name := range req.Choices {
		position = strings.TrimSpace(position)
		name = strings.TrimSpace(name)
		if position == "" || name == "" {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Each choice needs a position and a name")
			return
		}
		if _, dup := choices[position]; dup {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Duplicate position: "+position)
			return
		}
		choices[position] = name
	}

	payload, err := json.Marshal(choices)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid choices")
		return
	}

	recordID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate record ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record ballot")
		return
	}

	_, err = h.db.Exec(`
		INSERT INTO physical_ballot (id, payload, recorded_at)
		VALUES ($1, $2, $3)
	`, recordID, string(payload), time.Now().UTC())

	if err != nil {
		slog.Error("failed to insert physical ballot", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record ballot")
		return
	}

	slog.Info("physical ballot recorded", "record_id", recordID, "positions", len(choices))
	h.events.Publish()

	middleware.JSONResponse(w, http.StatusCreated, models.RecordPhysicalBallotResponse{
		RecordID: recordID,
	})
}
