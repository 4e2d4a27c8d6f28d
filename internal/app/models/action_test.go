package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseActionType(t *testing.T) {
	got, err := ParseActionType("club_creation")
	require.NoError(t, err)
	assert.Equal(t, ActionClubCreation, got)

	for in, want := range map[string]ActionType{
		"ClubCreation":   ActionClubCreation,
		"EventApproval":  ActionEventApproval,
		"event-approval": ActionEventApproval,
		" Funding ":      ActionFunding,
		"DeleteClub":     ActionDeleteClub,
	} {
		got, err := ParseActionType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err = ParseActionType("ROOM_BOOKING")
	assert.ErrorIs(t, err, ErrUnknownActionType)
	_, err = ParseActionType("")
	assert.ErrorIs(t, err, ErrUnknownActionType)
}

func TestParseDecision(t *testing.T) {
	for in, want := range map[string]Decision{
		"APPROVED": DecisionApprove,
		"Approved": DecisionApprove,
		"approve":  DecisionApprove,
		"Rejected": DecisionReject,
		"REJECT":   DecisionReject,
	} {
		got, ok := ParseDecision(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := ParseDecision("Pending")
	assert.False(t, ok)
}

func TestDecodeAction_ClubCreation(t *testing.T) {
	a, err := DecodeAction(ActionClubCreation, json.RawMessage(`{"name":"Chess Club","founder":7}`))
	require.NoError(t, err)

	cc, ok := a.(ClubCreation)
	require.True(t, ok)
	assert.Equal(t, "Chess Club", cc.Name)
	assert.Equal(t, int64(7), cc.Founder)
	assert.Equal(t, SubmitterUser, a.SubmitterKind())
	assert.Equal(t, CapSystemAdmin, a.RequiredCapability())
}

func TestDecodeAction_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		t       ActionType
		payload string
		field   string
	}{
		{"missing founder", ActionClubCreation, `{"name":"Chess"}`, "Founder"},
		{"missing name", ActionClubCreation, `{"founder":7}`, "Name"},
		{"end before start", ActionEventApproval, `{"clubId":1,"name":"Gala","venueId":2,"start":"2026-05-01T20:00:00Z","end":"2026-05-01T18:00:00Z"}`, "End"},
		{"negative amount", ActionFunding, `{"clubId":1,"amount":-5,"purpose":"Boards"}`, "Amount"},
		{"zero club", ActionDeleteClub, `{"clubId":0}`, "ClubID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeAction(tt.t, json.RawMessage(tt.payload))
			var perr *PayloadError
			require.True(t, errors.As(err, &perr), "got %v", err)
			assert.Contains(t, perr.Fields, tt.field)
		})
	}
}

func TestDecodeAction_MalformedJSON(t *testing.T) {
	for _, raw := range []string{``, `not json`, `{"clubId":1,"extra":true}`} {
		_, err := DecodeAction(ActionDeleteClub, json.RawMessage(raw))
		var perr *PayloadError
		assert.True(t, errors.As(err, &perr), "payload %q", raw)
	}
}

func TestDecodeAction_UnknownType(t *testing.T) {
	_, err := DecodeAction(ActionType("NOPE"), json.RawMessage(`{}`))
	assert.ErrorIs(t, err, ErrUnknownActionType)
}

func TestEncodeAction_RoundTripsEventApproval(t *testing.T) {
	start := time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)
	in := EventApproval{ClubID: 3, Name: "Gala", VenueID: 2, Start: start, End: start.Add(2 * time.Hour)}

	raw, err := EncodeAction(in)
	require.NoError(t, err)

	out, err := DecodeAction(ActionEventApproval, raw)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	club, ok := OwningClub(out)
	assert.True(t, ok)
	assert.Equal(t, int64(3), club)
}

func TestExplicitListDedup(t *testing.T) {
	l := ExplicitList{UserIDs: []int64{4, 2, 4, 0, -1, 2, 9}}
	assert.Equal(t, []int64{4, 2, 9}, l.Dedup())
}

func TestDecisionStatus(t *testing.T) {
	s, ok := DecisionApprove.Status()
	assert.True(t, ok)
	assert.Equal(t, StatusApproved, s)
	assert.True(t, s.IsTerminal())

	_, ok = Decision("MAYBE").Status()
	assert.False(t, ok)
	assert.False(t, StatusPending.IsTerminal())
}
