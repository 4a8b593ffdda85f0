// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/danielhkuo/campus-vote/auth"
	"github.com/danielhkuo/campus-vote/cliparse"
	"github.com/danielhkuo/campus-vote/db"
)

// QuietLogger discards everything; pass it where a test does not care about logs.
var QuietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// SetupTestDB creates a fresh in-memory sqlite database with the full schema.
// The pool is limited to one connection so every query sees the same database.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := sql.Open(db.DialectSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn, db.DialectSQLite); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3318,
		DatabaseURL:  ":memory:",
		DatabaseType: db.DialectSQLite,
		AdminKeySalt: "test-admin-salt",
		IPHashSalt:   "test-ip-salt",
		ElectionName: "test-election",
		PollInterval: time.Minute,
		FetchTimeout: 5 * time.Second,
	}
}

// AdminHeaders returns the X-Admin-Key header for cfg
func AdminHeaders(cfg cliparse.Config) map[string]string {
	return map[string]string{
		"X-Admin-Key": auth.GenerateAdminKey(cfg.ElectionName, cfg.AdminKeySalt),
	}
}

// CreateTestCandidate inserts a candidate and returns its ID
func CreateTestCandidate(t *testing.T, conn *sql.DB, name, position string) string {
	t.Helper()

	candidateID, _ := auth.GenerateID(12)
	_, err := conn.Exec(`
		INSERT INTO candidate (id, name, position, photo_url, created_at)
		VALUES ($1, $2, $3, '', $4)
	`, candidateID, name, position, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test candidate: %v", err)
	}

	return candidateID
}

// CreateTestVoter registers a voter and returns the voter ID
func CreateTestVoter(t *testing.T, conn *sql.DB, studentID, fullName string) string {
	t.Helper()

	voterID, _ := auth.GenerateID(16)
	_, err := conn.Exec(`
		INSERT INTO voter (id, student_id, full_name, email, has_voted, registered_at)
		VALUES ($1, $2, $3, '', $4, $5)
	`, voterID, studentID, fullName, false, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test voter: %v", err)
	}

	return voterID
}

// CastTestVote inserts one digital vote row directly, bypassing has_voted
func CastTestVote(t *testing.T, conn *sql.DB, voterID, candidateID, position string) string {
	t.Helper()

	voteID, _ := auth.GenerateID(16)
	_, err := conn.Exec(`
		INSERT INTO vote (id, candidate_id, voter_id, position, cast_at)
		VALUES ($1, $2, $3, $4, $5)
	`, voteID, candidateID, voterID, position, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test vote: %v", err)
	}

	return voteID
}

// RecordTestPhysicalBallot stores payload verbatim as a paper ballot
func RecordTestPhysicalBallot(t *testing.T, conn *sql.DB, payload string) string {
	t.Helper()

	recordID, _ := auth.GenerateID(16)
	_, err := conn.Exec(`
		INSERT INTO physical_ballot (id, payload, recorded_at)
		VALUES ($1, $2, $3)
	`, recordID, payload, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test physical ballot: %v", err)
	}

	return recordID
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
