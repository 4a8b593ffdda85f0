// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the campus-vote API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg, router.Deps{Engine: engine, Live: live, Events: hub})

# Endpoints

Health and metrics:

	GET /health
	GET /metrics

Candidates (writes require X-Admin-Key):

	POST   /candidates      - Register a candidate
	GET    /candidates      - List candidates
	DELETE /candidates/{id} - Remove a candidate

Voters:

	POST /voters/register - Self-registration
	GET  /voters          - List voters (admin)

Ballots:

	POST /ballots          - Cast a digital ballot
	POST /physical-ballots - Enter a paper ballot (admin)

Results:

	GET  /results/live          - Recompute and return the live tally
	GET  /results/stream        - Live tally as server-sent events
	GET  /results/ws            - Live tally over a websocket
	POST /results/official      - Post official results (admin)
	GET  /results/official      - List posted snapshots
	GET  /results/official/{id} - One posted snapshot
*/
package router
