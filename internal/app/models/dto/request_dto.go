package dto

import (
	"encoding/json"

	"github.com/yigit/clubhub/internal/app/models"
)

// SubmitRequestRequest is the body of POST /requests/:submitterId
type SubmitRequestRequest struct {
	ActionType string          `json:"actionType" binding:"required"`
	Payload    json.RawMessage `json:"payload" binding:"required"`
}

// DecideRequestRequest is the body of PUT /requests/:id/decision
type DecideRequestRequest struct {
	Decision string `json:"decision" binding:"required,notblank"`
}

// RequestResponse is the API shape of a ledger entry
type RequestResponse struct {
	ID            int64           `json:"id"`
	SubmitterKind string          `json:"submitterKind"`
	SubmitterID   int64           `json:"submitterId"`
	ActionType    string          `json:"actionType"`
	Status        string          `json:"status"`
	Payload       json.RawMessage `json:"payload"`
	SubmittedAt   string          `json:"submittedAt"`
	DecidedAt     *string         `json:"decidedAt,omitempty"`
	DecidedBy     *int64          `json:"decidedBy,omitempty"`
}

// FromRequest converts a models.Request to its response
func FromRequest(r *models.Request) RequestResponse {
	resp := RequestResponse{
		ID:            r.ID,
		SubmitterKind: string(r.SubmitterKind),
		SubmitterID:   r.SubmitterID,
		ActionType:    string(r.ActionType),
		Status:        string(r.Status),
		Payload:       r.Payload,
		SubmittedAt:   formatTime(r.SubmittedAt),
		DecidedBy:     r.DecidedBy,
	}
	if r.DecidedAt != nil {
		s := formatTime(*r.DecidedAt)
		resp.DecidedAt = &s
	}
	return resp
}

// FromRequests converts a slice of requests
func FromRequests(rs []*models.Request) []RequestResponse {
	out := make([]RequestResponse, 0, len(rs))
	for _, r := range rs {
		out = append(out, FromRequest(r))
	}
	return out
}
