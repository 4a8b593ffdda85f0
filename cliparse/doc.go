// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: Database connection string (required)
  - DatabaseType: "sqlite" (default) or "postgres"
  - AdminKeySalt: Secret for admin key HMAC (required)
  - IPHashSalt: Secret for ballot IP hashes (default: AdminKeySalt)
  - ElectionName: Election the admin key is issued for (default: campus-election)
  - PollInterval: Live results refresh period (default: 15s)
  - FetchTimeout: Limit on tally data fetches (default: 10s)

# CLI Flags

	-p                Server port
	-d                Database URL
	-t                Database type
	-election         Election name
	-poll-interval    Live results refresh interval
	-fetch-timeout    Tally data fetch timeout
	-admin-salt       Admin key salt
	-ip-salt          IP hash salt
	-env-file         Env file to load (default: .env)
	-print-admin-key  Print the admin key and exit

# Environment Variables

Flags fall back to environment variables:

	PORT           → -p
	DATABASE_URL   → -d
	DATABASE_TYPE  → -t
	ELECTION_NAME  → -election
	POLL_INTERVAL  → -poll-interval
	FETCH_TIMEOUT  → -fetch-timeout
	ADMIN_KEY_SALT → -admin-salt
	IP_HASH_SALT   → -ip-salt

CLI flags take precedence over environment variables, which take precedence
over the env file (loaded with godotenv; a missing file is ignored).
*/
package cliparse
