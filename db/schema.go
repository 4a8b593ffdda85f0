// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Supported dialects. Each is also the database/sql driver name.
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB, dialect string) error {
	var stmts string
	switch dialect {
	case DialectPostgres:
		stmts = postgresSchema
	case DialectSQLite:
		stmts = sqliteSchema
	default:
		return fmt.Errorf("unsupported database type %q", dialect)
	}

	// One statement per Exec; not every driver accepts a batch
	for _, stmt := range strings.Split(stmts, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

const postgresSchema = `
-- Candidates
CREATE TABLE IF NOT EXISTS candidate (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    position TEXT NOT NULL,
    photo_url TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_candidate_position ON candidate(position);

-- Voters
CREATE TABLE IF NOT EXISTS voter (
    id TEXT PRIMARY KEY,
    student_id TEXT NOT NULL UNIQUE,
    full_name TEXT NOT NULL,
    email TEXT NOT NULL DEFAULT '',
    has_voted BOOLEAN NOT NULL DEFAULT FALSE,
    registered_at TIMESTAMP NOT NULL DEFAULT NOW()
);

-- Digital ballots, one row per selection. candidate_id is not a foreign
-- key: ballots for deleted candidates are kept and ignored when tallying.
CREATE TABLE IF NOT EXISTS vote (
    id TEXT PRIMARY KEY,
    candidate_id TEXT NOT NULL,
    voter_id TEXT NOT NULL REFERENCES voter(id) ON DELETE CASCADE,
    position TEXT NOT NULL,
    cast_at TIMESTAMP NOT NULL DEFAULT NOW(),
    ip_hash TEXT,
    UNIQUE (voter_id, position)
);

CREATE INDEX IF NOT EXISTS idx_vote_candidate_id ON vote(candidate_id);

-- Physical ballots
CREATE TABLE IF NOT EXISTS physical_ballot (
    id TEXT PRIMARY KEY,
    payload TEXT NOT NULL,
    recorded_at TIMESTAMP NOT NULL DEFAULT NOW()
);

-- Official results (append-only)
CREATE TABLE IF NOT EXISTS official_results (
    id TEXT PRIMARY KEY,
    posted_at TIMESTAMP NOT NULL DEFAULT NOW(),
    total_votes INTEGER NOT NULL,
    payload JSONB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_official_results_posted_at ON official_results(posted_at)
`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS candidate (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    position TEXT NOT NULL,
    photo_url TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_candidate_position ON candidate(position);

CREATE TABLE IF NOT EXISTS voter (
    id TEXT PRIMARY KEY,
    student_id TEXT NOT NULL UNIQUE,
    full_name TEXT NOT NULL,
    email TEXT NOT NULL DEFAULT '',
    has_voted BOOLEAN NOT NULL DEFAULT FALSE,
    registered_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS vote (
    id TEXT PRIMARY KEY,
    candidate_id TEXT NOT NULL,
    voter_id TEXT NOT NULL REFERENCES voter(id) ON DELETE CASCADE,
    position TEXT NOT NULL,
    cast_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    ip_hash TEXT,
    UNIQUE (voter_id, position)
);

CREATE INDEX IF NOT EXISTS idx_vote_candidate_id ON vote(candidate_id);

CREATE TABLE IF NOT EXISTS physical_ballot (
    id TEXT PRIMARY KEY,
    payload TEXT NOT NULL,
    recorded_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS official_results (
    id TEXT PRIMARY KEY,
    posted_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    total_votes INTEGER NOT NULL,
    payload TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_official_results_posted_at ON official_results(posted_at)
`
