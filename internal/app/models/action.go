package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Capability is a named privilege checked by the authorization gate
type Capability string

const (
	CapSystemAdmin Capability = "SYSTEM_ADMIN"
	CapClubAdmin   Capability = "CLUB_ADMIN"
)

// Action is the closed set of request payloads. Every variant lives in this
// file; the unexported marker keeps other packages from adding more.
type Action interface {
	Type() ActionType
	RequiredCapability() Capability
	SubmitterKind() SubmitterKind
	isAction()
}

// ClubCreation asks for a new club founded by an existing user
type ClubCreation struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"max=5000"`
	ContactInfo string `json:"contactInfo" validate:"max=255"`
	Founder     int64  `json:"founder" validate:"required,gt=0"`
}

// EventApproval asks for a club event with its venue booking
type EventApproval struct {
	ClubID      int64     `json:"clubId" validate:"required,gt=0"`
	Name        string    `json:"name" validate:"required,max=255"`
	Description string    `json:"description" validate:"max=5000"`
	VenueID     int64     `json:"venueId" validate:"required,gt=0"`
	Start       time.Time `json:"start" validate:"required"`
	End         time.Time `json:"end" validate:"required,gtfield=Start"`
}

// Funding asks for money for a club; approval records the decision only
type Funding struct {
	ClubID  int64   `json:"clubId" validate:"required,gt=0"`
	Amount  float64 `json:"amount" validate:"required,gt=0"`
	Purpose string  `json:"purpose" validate:"required,max=2000"`
}

// DeleteClub asks for a club and everything it owns to be removed
type DeleteClub struct {
	ClubID int64 `json:"clubId" validate:"required,gt=0"`
}

func (ClubCreation) Type() ActionType  { return ActionClubCreation }
func (EventApproval) Type() ActionType { return ActionEventApproval }
func (Funding) Type() ActionType       { return ActionFunding }
func (DeleteClub) Type() ActionType    { return ActionDeleteClub }

func (ClubCreation) RequiredCapability() Capability  { return CapSystemAdmin }
func (EventApproval) RequiredCapability() Capability { return CapSystemAdmin }
func (Funding) RequiredCapability() Capability       { return CapSystemAdmin }
func (DeleteClub) RequiredCapability() Capability    { return CapSystemAdmin }

func (ClubCreation) SubmitterKind() SubmitterKind  { return SubmitterUser }
func (EventApproval) SubmitterKind() SubmitterKind { return SubmitterClub }
func (Funding) SubmitterKind() SubmitterKind       { return SubmitterClub }
func (DeleteClub) SubmitterKind() SubmitterKind    { return SubmitterClub }

func (ClubCreation) isAction()  {}
func (EventApproval) isAction() {}
func (Funding) isAction()       {}
func (DeleteClub) isAction()    {}

// OwningClub returns the club a club-submitted action is about
func OwningClub(a Action) (int64, bool) {
	switch v := a.(type) {
	case EventApproval:
		return v.ClubID, true
	case Funding:
		return v.ClubID, true
	case DeleteClub:
		return v.ClubID, true
	}
	return 0, false
}

// ErrUnknownActionType is returned for action types outside the closed set
var ErrUnknownActionType = errors.New("unknown action type")

var payloadValidator = validator.New(validator.WithRequiredStructEnabled())

// actionTypesByKey indexes the action types by their name with case and
// separators removed, so CLUB_CREATION, club-creation and ClubCreation agree.
var actionTypesByKey = map[string]ActionType{
	"CLUBCREATION":  ActionClubCreation,
	"EVENTAPPROVAL": ActionEventApproval,
	"FUNDING":       ActionFunding,
	"DELETECLUB":    ActionDeleteClub,
}

// ParseActionType resolves the wire name of an action type
func ParseActionType(s string) (ActionType, error) {
	if t, ok := actionTypesByKey[nameKey(s)]; ok {
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownActionType, s)
}

func nameKey(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '_' || r == '-' || r == ' ' {
			return -1
		}
		return r
	}, strings.ToUpper(strings.TrimSpace(s)))
}

// PayloadError describes why a payload does not match its action's schema
type PayloadError struct {
	ActionType ActionType
	Fields     map[string]string
	Err        error
}

func (e *PayloadError) Error() string {
	if len(e.Fields) > 0 {
		parts := make([]string, 0, len(e.Fields))
		for f, tag := range e.Fields {
			parts = append(parts, f+" ("+tag+")")
		}
		return fmt.Sprintf("invalid %s payload: %s", e.ActionType, strings.Join(parts, ", "))
	}
	return fmt.Sprintf("invalid %s payload: %v", e.ActionType, e.Err)
}

func (e *PayloadError) Unwrap() error { return e.Err }

// DecodeAction turns a stored or submitted payload into its typed variant and
// validates it. Unknown fields are rejected.
func DecodeAction(t ActionType, raw json.RawMessage) (Action, error) {
	var action Action
	var err error
	switch t {
	case ActionClubCreation:
		action, err = decodeInto[ClubCreation](raw)
	case ActionEventApproval:
		action, err = decodeInto[EventApproval](raw)
	case ActionFunding:
		action, err = decodeInto[Funding](raw)
	case ActionDeleteClub:
		action, err = decodeInto[DeleteClub](raw)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownActionType, t)
	}
	if err != nil {
		return nil, &PayloadError{ActionType: t, Err: err}
	}

	if err := payloadValidator.Struct(action); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Field()] = fe.Tag()
			}
			return nil, &PayloadError{ActionType: t, Fields: fields, Err: err}
		}
		return nil, &PayloadError{ActionType: t, Err: err}
	}
	return action, nil
}

func decodeInto[T Action](raw json.RawMessage) (T, error) {
	var v T
	if len(bytes.TrimSpace(raw)) == 0 {
		return v, errors.New("payload is empty")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return v, err
	}
	return v, nil
}

// EncodeAction returns the canonical JSON stored for a validated action
func EncodeAction(a Action) (json.RawMessage, error) {
	b, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", a.Type(), err)
	}
	return b, nil
}
