package models

import (
	"encoding/json"
	"time"
)

// Request is a ledger entry asking for a privileged action
type Request struct {
	ID            int64           `json:"id" db:"id"`
	SubmitterKind SubmitterKind   `json:"submitterKind" db:"submitter_kind"`
	SubmitterID   int64           `json:"submitterId" db:"submitter_id"`
	ActionType    ActionType      `json:"actionType" db:"action_type"`
	Status        RequestStatus   `json:"status" db:"status"`
	Payload       json.RawMessage `json:"payload" db:"payload"`
	SubmittedAt   time.Time       `json:"submittedAt" db:"submitted_at"`
	DecidedAt     *time.Time      `json:"decidedAt,omitempty" db:"decided_at"`
	DecidedBy     *int64          `json:"decidedBy,omitempty" db:"decided_by"`
}

// RequestFilter narrows request listings
type RequestFilter struct {
	Status     *RequestStatus
	ActionType *ActionType
	// VisibleTo limits results to one user's own requests and those of the
	// clubs they run. Nil means no restriction.
	VisibleTo *RequestVisibility
	Page      int
	Size      int
}

// RequestVisibility is the set of submitters whose requests a reader may see
type RequestVisibility struct {
	UserID  int64
	ClubIDs []int64
}

// Allows reports whether a request filed by the given submitter is visible
func (v RequestVisibility) Allows(kind SubmitterKind, submitterID int64) bool {
	switch kind {
	case SubmitterUser:
		return submitterID == v.UserID
	case SubmitterClub:
		for _, id := range v.ClubIDs {
			if id == submitterID {
				return true
			}
		}
	}
	return false
}
