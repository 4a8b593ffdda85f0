// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation.

# Schema Creation

CreateSchema initializes all required tables for a dialect:

	if err := db.CreateSchema(conn, db.DialectPostgres); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
Both "postgres" (lib/pq) and "sqlite" (modernc.org/sqlite) are supported;
the dialect name is also the driver name passed to sql.Open.

# Tables

  - candidate: Candidates and the position they run for
  - voter: Registered voters and their has_voted flag
  - vote: Digital ballots, one row per selection
  - physical_ballot: Paper ballots, JSON payload of position -> name
  - official_results: Append-only posted results

# Relationships

	voter 1──* vote
	vote *──1 candidate (by id, not enforced)

vote.candidate_id deliberately has no foreign key so deleting a candidate
keeps its ballots on record.
*/
package db
