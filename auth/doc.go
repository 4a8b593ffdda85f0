// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides admin key, ID, and IP hashing utilities.

# Admin Keys

Admin keys use HMAC-SHA256 over the election name:

	adminKey := auth.GenerateAdminKey(cfg.ElectionName, cfg.AdminKeySalt)
	err := auth.ValidateAdminKey(cfg.ElectionName, adminKey, cfg.AdminKeySalt)

The key is URL-safe base64 encoded without padding. The same election name and
salt always produce the same key, so nothing is stored. Run the server with
-print-admin-key to obtain it.

# ID Generation

Random hex IDs for database records:

	id, err := auth.GenerateID(16)  // 32 hex characters

# IP Hashing

Ballots record a salted IP hash instead of the address:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
