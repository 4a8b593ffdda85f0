// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielhkuo/campus-vote/cliparse"
	"github.com/danielhkuo/campus-vote/handlers"
	"github.com/danielhkuo/campus-vote/middleware"
	"github.com/danielhkuo/campus-vote/notify"
	"github.com/danielhkuo/campus-vote/store"
	"github.com/danielhkuo/campus-vote/tally"
)

// Deps are the long-lived services shared by the handlers.
type Deps struct {
	Engine   *tally.Engine
	Live     *tally.Live
	Events   notify.Publisher
	Gatherer prometheus.Gatherer // defaults to prometheus.DefaultGatherer
}

func NewRouter(db *sql.DB, cfg cliparse.Config, deps Deps) *http.ServeMux {
	mux := http.NewServeMux()

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// Initialize handlers
	candidateHandler := handlers.NewCandidateHandler(db, deps.Events)
	voterHandler := handlers.NewVoterHandler(db)
	ballotHandler := handlers.NewBallotHandler(db, cfg, deps.Events)
	resultsHandler := handlers.NewResultsHandler(deps.Engine, deps.Live, store.New(db))

	admin := func(next http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireAdmin(cfg.ElectionName, cfg.AdminKeySalt, next))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Prometheus scrape endpoint
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// Candidate registry
	mux.HandleFunc("POST /candidates", admin(candidateHandler.CreateCandidate))
	mux.HandleFunc("GET /candidates", middleware.WithLogging(candidateHandler.ListCandidates))
	mux.HandleFunc("DELETE /candidates/{id}", admin(candidateHandler.DeleteCandidate))

	// Voters
	mux.HandleFunc("POST /voters/register", middleware.WithLogging(voterHandler.RegisterVoter))
	mux.HandleFunc("GET /voters", admin(voterHandler.ListVoters))

	// Ballots
	mux.HandleFunc("POST /ballots", middleware.WithLogging(ballotHandler.CastBallot))
	mux.HandleFunc("POST /physical-ballots", admin(ballotHandler.RecordPhysicalBallot))

	// Results
	mux.HandleFunc("GET /results/live", middleware.WithLogging(resultsHandler.GetLiveResults))
	mux.HandleFunc("GET /results/stream", middleware.WithLogging(resultsHandler.StreamResults))
	mux.HandleFunc("GET /results/ws", middleware.WithLogging(resultsHandler.WebSocketResults))
	mux.HandleFunc("POST /results/official", admin(resultsHandler.PostOfficialResults))
	mux.HandleFunc("GET /results/official", middleware.WithLogging(resultsHandler.ListOfficialResults))
	mux.HandleFunc("GET /results/official/{id}", middleware.WithLogging(resultsHandler.GetOfficialResults))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("campus-vote API v1"))
	})

	return mux
}
