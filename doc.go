// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the campus-vote API server.

campus-vote runs a small campus election: a candidate registry, one digital
ballot per registered student, admin entry of paper ballots, a live tally
that merges both ballot sources, and append-only official results.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=election.db ADMIN_KEY_SALT=... go run .

Or against PostgreSQL:

	go run . -t postgres -d "postgres://..." -admin-salt ...

Values may also come from a .env file (-env-file, default ".env").

# Configuration

Required settings:

  - DATABASE_URL (-d): connection string or sqlite file path
  - ADMIN_KEY_SALT (-admin-salt): Secret for admin key HMAC

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - IP_HASH_SALT (-ip-salt): Secret for voter IP hashes (default: admin salt)
  - ELECTION_NAME (-election): Election the admin key is bound to
  - POLL_INTERVAL (-poll-interval): Live tally refresh period (default: 15s)
  - FETCH_TIMEOUT (-fetch-timeout): Tally data fetch timeout (default: 10s)

Run with -print-admin-key to print the X-Admin-Key value and exit.

# Architecture

  - tally: vote counting, ranking, official snapshots, live recomputation
  - store: SQL data source and snapshot persister for the tally
  - notify: ballot-insert notifications that trigger live refreshes
  - metrics: Prometheus collectors, served on /metrics
  - handlers: HTTP request handlers (candidates, voters, ballots, results)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, admin guard, JSON helpers
  - models: Request/response types
  - auth: ID generation, admin keys, IP hashing
  - db: Schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
