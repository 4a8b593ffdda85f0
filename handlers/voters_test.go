// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/campus-vote/models"
	"github.com/danielhkuo/campus-vote/testutil"
)

func TestRegisterVoter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewVoterHandler(db)

	testutil.CreateTestVoter(t, db, "S-100", "Existing Student")

	tests := []struct {
		name           string
		requestBody    interface{}
		expectedStatus int
	}{
		{
			name: "valid registration",
			requestBody: models.RegisterVoterRequest{
				StudentID: "S-200",
				FullName:  "New Student",
				Email:     "new@campus.edu",
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "duplicate student id",
			requestBody: models.RegisterVoterRequest{
				StudentID: "S-100",
				FullName:  "Someone Else",
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "duplicate after trimming",
			requestBody: models.RegisterVoterRequest{
				StudentID: " S-200 ",
				FullName:  "Same Student",
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "missing student id",
			requestBody:    models.RegisterVoterRequest{FullName: "No ID"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing full name",
			requestBody:    models.RegisterVoterRequest{StudentID: "S-300"},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/voters/register", tt.requestBody, nil)
			w := httptest.NewRecorder()

			handler.RegisterVoter(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedStatus == http.StatusCreated {
				var resp models.RegisterVoterResponse
				testutil.AssertJSON(t, w, &resp)
				if resp.VoterID == "" {
					t.Error("Expected non-empty voter_id")
				}
			}
		})
	}
}

func TestListVoters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewVoterHandler(db)

	testutil.CreateTestVoter(t, db, "S-1", "First")
	voted := testutil.CreateTestVoter(t, db, "S-2", "Second")
	if _, err := db.Exec("UPDATE voter SET has_voted = $1 WHERE id = $2", true, voted); err != nil {
		t.Fatalf("Failed to mark voter: %v", err)
	}

	w := httptest.NewRecorder()
	handler.ListVoters(w, httptest.NewRequest("GET", "/voters", nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var voters []models.Voter
	testutil.AssertJSON(t, w, &voters)

	if len(voters) != 2 {
		t.Fatalf("Expected 2 voters, got %d", len(voters))
	}
	if voters[0].StudentID != "S-1" || voters[0].HasVoted {
		t.Errorf("Unexpected first voter: %+v", voters[0])
	}
	if voters[1].StudentID != "S-2" || !voters[1].HasVoted {
		t.Errorf("Unexpected second voter: %+v", voters[1])
	}
}
