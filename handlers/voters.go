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
)

type VoterHandler struct {
	db *sql.DB
}

func NewVoterHandler(db *sql.DB) *VoterHandler {
	return &VoterHandler{db: db}
}

// RegisterVoter handles POST /voters/register
func (h *VoterHandler) RegisterVoter(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterVoterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.StudentID = strings.TrimSpace(req.StudentID)
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(req.Email)
	if req.StudentID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "student_id is required")
		return
	}
	if req.FullName == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "full_name is required")
		return
	}

	var exists bool
	err := h.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM voter WHERE student_id = $1)
	`, req.StudentID).Scan(&exists)
	if err != nil {
		slog.Error("failed to check voter", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if exists {
		middleware.ErrorResponse(w, http.StatusConflict, "Student ID already registered")
		return
	}

	voterID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate voter ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register voter")
		return
	}

	_, err = h.db.Exec(`
		INSERT INTO voter (id, student_id, full_name, email, has_voted, registered_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, voterID, req.StudentID, req.FullName, req.Email, false, time.Now().UTC())

	if err != nil {
		slog.Error("failed to insert voter", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register voter")
		return
	}

	slog.Info("voter registered", "voter_id", voterID)

	middleware.JSONResponse(w, http.StatusCreated, models.RegisterVoterResponse{
		VoterID: voterID,
	})
}

// ListVoters handles GET /voters
func (h *VoterHandler) ListVoters(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.QueryContext(r.Context(), `
		SELECT id, student_id, full_name, email, has_voted, registered_at
		FROM voter
		ORDER BY registered_at, id
	`)
	if err != nil {
		slog.Error("failed to query voters", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	voters := []models.Voter{}
	for rows.Next() {
		var v models.Voter
		if err := rows.Scan(&v.ID, &v.StudentID, &v.FullName, &v.Email, &v.HasVoted, &v.RegisteredAt); err != nil {
			slog.Error("failed to scan voter", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		voters = append(voters, v)
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to read voters", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, voters)
}
