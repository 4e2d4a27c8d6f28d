package models

// UserCategory classifies a user account
type UserCategory string

const (
	CategoryStudent UserCategory = "STUDENT"
	CategoryStaff   UserCategory = "STAFF"
	// CategorySU marks student union staff, who hold system-wide privileges
	CategorySU UserCategory = "SU"
)

// Valid reports whether c is a known category
func (c UserCategory) Valid() bool {
	switch c {
	case CategoryStudent, CategoryStaff, CategorySU:
		return true
	}
	return false
}

// SubmitterKind tells whether a request was filed by a user or a club
type SubmitterKind string

const (
	SubmitterUser SubmitterKind = "USER"
	SubmitterClub SubmitterKind = "CLUB"
)

// ActionType names the privileged action a request asks for
type ActionType string

const (
	ActionClubCreation  ActionType = "CLUB_CREATION"
	ActionEventApproval ActionType = "EVENT_APPROVAL"
	ActionFunding       ActionType = "FUNDING"
	ActionDeleteClub    ActionType = "DELETE_CLUB"
)

// RequestStatus is the lifecycle state of a request
type RequestStatus string

const (
	StatusPending  RequestStatus = "PENDING"
	StatusApproved RequestStatus = "APPROVED"
	StatusRejected RequestStatus = "REJECTED"
)

// IsTerminal reports whether no further transition is allowed
func (s RequestStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Decision is the verdict a privileged actor gives on a pending request
type Decision string

const (
	DecisionApprove Decision = "APPROVED"
	DecisionReject  Decision = "REJECTED"
)

// ParseDecision accepts APPROVED/REJECTED in any case, plus the verbs
// APPROVE and REJECT
func ParseDecision(s string) (Decision, bool) {
	switch nameKey(s) {
	case "APPROVED", "APPROVE":
		return DecisionApprove, true
	case "REJECTED", "REJECT":
		return DecisionReject, true
	}
	return "", false
}

// Status returns the terminal request status for the decision
func (d Decision) Status() (RequestStatus, bool) {
	switch d {
	case DecisionApprove:
		return StatusApproved, true
	case DecisionReject:
		return StatusRejected, true
	}
	return "", false
}

// PresidentRole is the executive role that must always remain filled in a club
const PresidentRole = "President"
