// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/gorilla/websocket"

	"github.com/danielhkuo/campus-vote/middleware"
	"github.com/danielhkuo/campus-vote/models"
	"github.com/danielhkuo/campus-vote/store"
	"github.com/danielhkuo/campus-vote/tally"
)

// ResultsEngine computes tallies and posts them as official results.
type ResultsEngine interface {
	Compute(ctx context.Context) (*tally.Result, error)
	Post(ctx context.Context, result *tally.Result) (string, error)
}

// SnapshotReader reads posted official results.
type SnapshotReader interface {
	ListOfficialResults(ctx context.Context) ([]models.OfficialResultsSnapshot, error)
	GetOfficialResults(ctx context.Context, id string) (models.OfficialResultsSnapshot, error)
}

type ResultsHandler struct {
	engine    ResultsEngine
	live      *tally.Live
	snapshots SnapshotReader
}

func NewResultsHandler(engine ResultsEngine, live *tally.Live, snapshots SnapshotReader) *ResultsHandler {
	return &ResultsHandler{engine: engine, live: live, snapshots: snapshots}
}

// GetLiveResults handles GET /results/live
// Every request recomputes the tally from the database. The shared live view
// behind the streams is refreshed by Live.Run, not by requests.
func (h *ResultsHandler) GetLiveResults(w http.ResponseWriter, r *http.Request) {
	result, err := h.engine.Compute(r.Context())
	if err != nil {
		writeTallyError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, liveResponse(result))
}

// StreamResults handles GET /results/stream
// Sends a "results" server-sent event for every published live tally, and an
// "unavailable" event when a refresh fails.
func (h *ResultsHandler) StreamResults(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	updates, unsubscribe := h.live.Subscribe()
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := writeLiveEvent(w, h.live.Current()); err != nil {
		return
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case update := <-updates:
			if err := writeLiveEvent(w, update); err != nil {
				slog.Warn("results stream write failed", "error", err)
				return
			}
			flusher.Flush()
		}
	}
}

// wsReadLimit caps client frames; clients only send close and pong frames.
const wsReadLimit = 512

// WebSocketResults handles GET /results/ws
// Same feed as StreamResults: one JSON message per published live tally, or
// {"error":"Results unavailable"} when a refresh fails.
func (h *ResultsHandler) WebSocketResults(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{EnableCompression: true}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(wsReadLimit)

	updates, unsubscribe := h.live.Subscribe()
	defer unsubscribe()

	// Reads only notice the client going away
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if _, payload, ok := liveMessage(h.live.Current()); ok {
		if err := conn.WriteJSON(payload); err != nil {
			return
		}
	}

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case update := <-updates:
			_, payload, ok := liveMessage(update)
			if !ok {
				continue
			}
			if err := conn.WriteJSON(payload); err != nil {
				slog.Warn("results websocket write failed", "error", err)
				return
			}
		}
	}
}

// PostOfficialResults handles POST /results/official
// Computes a fresh tally and stores it as a new snapshot.
func (h *ResultsHandler) PostOfficialResults(w http.ResponseWriter, r *http.Request) {
	result, err := h.engine.Compute(r.Context())
	if err != nil {
		writeTallyError(w, r, err)
		return
	}

	snapshotID, err := h.engine.Post(r.Context(), result)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to post results")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.PostResultsResponse{
		SnapshotID: snapshotID,
		TotalVotes: result.Counts.Total,
	})
}

// ListOfficialResults handles GET /results/official
func (h *ResultsHandler) ListOfficialResults(w http.ResponseWriter, r *http.Request) {
	snapshots, err := h.snapshots.ListOfficialResults(r.Context())
	if err != nil {
		slog.Error("failed to list official results", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, snapshots)
}

// GetOfficialResults handles GET /results/official/{id}
func (h *ResultsHandler) GetOfficialResults(w http.ResponseWriter, r *http.Request) {
	snapshotID := r.PathValue("id")
	if snapshotID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "snapshot id is required")
		return
	}

	snapshot, err := h.snapshots.GetOfficialResults(r.Context(), snapshotID)
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Snapshot not found")
		return
	}
	if err != nil {
		slog.Error("failed to get official results", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, snapshot)
}

func writeTallyError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, tally.ErrDataUnavailable):
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Results unavailable")
	case r.Context().Err() != nil:
		// Client went away; nobody reads this
		slog.Debug("tally abandoned", "path", r.URL.Path, "error", err)
	default:
		slog.Error("failed to compute tally", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to compute results")
	}
}

func liveResponse(result *tally.Result) models.LiveResultsResponse {
	total := result.Counts.Total
	return models.LiveResultsResponse{
		ComputedAt:        result.ComputedAt,
		TotalVotes:        total,
		Turnout:           fmt.Sprintf("%s %s counted", humanize.Comma(int64(total)), english.PluralWord(total, "vote", "")),
		MalformedRecords:  result.Counts.MalformedRecords,
		UnresolvedEntries: result.Counts.UnresolvedEntries,
		Positions:         tally.Present(result.Positions),
	}
}

// liveMessage is the stream event name and payload for u. ok is false when
// there is nothing to send yet.
func liveMessage(u tally.Update) (event string, payload interface{}, ok bool) {
	switch {
	case u.Err != nil:
		return "unavailable", models.ErrorResponse{Error: "Results unavailable"}, true
	case u.Result != nil:
		return "results", liveResponse(u.Result), true
	}
	return "", nil, false
}

func writeLiveEvent(w http.ResponseWriter, u tally.Update) error {
	event, payload, ok := liveMessage(u)
	if !ok {
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}
