// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/campus-vote/auth"
	"github.com/danielhkuo/campus-vote/middleware"
	"github.com/danielhkuo/campus-vote/models"
	"github.com/danielhkuo/campus-vote/notify"
	"github.com/danielhkuo/campus-vote/store"
)

type CandidateHandler struct {
	db     *sql.DB
	store  *store.Store
	events notify.Publisher
}

func NewCandidateHandler(db *sql.DB, events notify.Publisher) *CandidateHandler {
	return &CandidateHandler{db: db, store: store.New(db), events: events}
}

// CreateCandidate handles POST /candidates
func (h *CandidateHandler) CreateCandidate(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCandidateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Names and positions are the join key for paper ballots, so trim them
	req.Name = strings.TrimSpace(req.Name)
	req.Position = strings.TrimSpace(req.Position)
	if req.Name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Position == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "position is required")
		return
	}

	candidateID, err := auth.GenerateID(12)
	if err != nil {
		slog.Error("failed to generate candidate ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create candidate")
		return
	}

	_, err = h.db.Exec(`
		INSERT INTO candidate (id, name, position, photo_url, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, candidateID, req.Name, req.Position, req.PhotoURL, time.Now().UTC())

	if err != nil {
		slog.Error("failed to insert candidate", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create candidate")
		return
	}

	slog.Info("candidate created", "candidate_id", candidateID, "position", req.Position)
	h.events.Publish()

	middleware.JSONResponse(w, http.StatusCreated, models.CreateCandidateResponse{
		CandidateID: candidateID,
	})
}

// ListCandidates handles GET /candidates
func (h *CandidateHandler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	candidates, err := h.store.FetchCandidates(r.Context())
	if err != nil {
		slog.Error("failed to list candidates", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, candidates)
}

// DeleteCandidate handles DELETE /candidates/{id}
// Votes already cast for the candidate stay on record and are no longer counted.
func (h *CandidateHandler) DeleteCandidate(w http.ResponseWriter, r *http.Request) {
	candidateID := r.PathValue("id")
	if candidateID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "candidate id is required")
		return
	}

	res, err := h.db.Exec(`DELETE FROM candidate WHERE id = $1`, candidateID)
	if err != nil {
		slog.Error("failed to delete candidate", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	n, err := res.RowsAffected()
	if err != nil {
		slog.Error("failed to read affected rows", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if n == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Candidate not found")
		return
	}

	slog.Info("candidate deleted", "candidate_id", candidateID)
	h.events.Publish()

	w.WriteHeader(http.StatusNoContent)
}
