package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/clubhub/internal/app/auth"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
	"github.com/yigit/clubhub/internal/pkg/email"
	"github.com/yigit/clubhub/internal/pkg/events"
)

// RequestService is the request ledger and approval dispatcher
type RequestService interface {
	Submit(ctx context.Context, actor auth.Actor, submitterID int64, actionType string, payload json.RawMessage) (*models.Request, error)
	Decide(ctx context.Context, actor auth.Actor, requestID int64, decision models.Decision) (*models.Request, error)
	Get(ctx context.Context, actor auth.Actor, id int64) (*models.Request, error)
	List(ctx context.Context, actor auth.Actor, filter models.RequestFilter) ([]*models.Request, int64, error)
}

type requestServiceImpl struct {
	tx            txRunner
	requests      requestStore
	users         userStore
	clubs         clubStore
	lifecycle     LifecycleService
	notifications NotificationService
	gate          *auth.Gate
	publisher     events.Publisher
	mailer        email.EmailService
	logger        zerolog.Logger
	now           func() time.Time
}

// NewRequestService creates a new RequestService. mailer may be nil.
func NewRequestService(
	tx txRunner,
	requests requestStore,
	users userStore,
	clubs clubStore,
	lifecycle LifecycleService,
	notifications NotificationService,
	gate *auth.Gate,
	publisher events.Publisher,
	mailer email.EmailService,
	logger zerolog.Logger,
) RequestService {
	return &requestServiceImpl{
		tx:            tx,
		requests:      requests,
		users:         users,
		clubs:         clubs,
		lifecycle:     lifecycle,
		notifications: notifications,
		gate:          gate,
		publisher:     publisher,
		mailer:        mailer,
		logger:        logger,
		now:           time.Now,
	}
}

// Submit validates the payload against its action type and records a
// PENDING request. CLUB_CREATION is filed by a user (submitterID is a user id);
// every other action is filed by a club. Nothing is authorized here: the
// capability check happens when the request is decided.
func (s *requestServiceImpl) Submit(ctx context.Context, actor auth.Actor, submitterID int64, actionType string, payload json.RawMessage) (*models.Request, error) {
	t, err := models.ParseActionType(actionType)
	if err != nil {
		return nil, apperrors.NewInvalidActionError(err.Error())
	}

	action, err := models.DecodeAction(t, payload)
	if err != nil {
		return nil, payloadValidationError(err)
	}

	kind := action.SubmitterKind()
	switch kind {
	case models.SubmitterUser:
		if _, err := s.users.GetByID(ctx, submitterID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.NewValidationError(fmt.Sprintf("submitting user %d does not exist", submitterID))
			}
			return nil, err
		}
	case models.SubmitterClub:
		if clubID, ok := models.OwningClub(action); ok && clubID != submitterID {
			return nil, apperrors.NewValidationError(fmt.Sprintf("payload club %d does not match submitting club %d", clubID, submitterID))
		}
		exists, err := s.clubs.Exists(ctx, submitterID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, apperrors.NewValidationError(fmt.Sprintf("submitting club %d does not exist", submitterID))
		}
	}

	canonical, err := models.EncodeAction(action)
	if err != nil {
		return nil, err
	}

	req, err := s.requests.Create(ctx, &models.Request{
		SubmitterKind: kind,
		SubmitterID:   submitterID,
		ActionType:    t,
		Status:        models.StatusPending,
		Payload:       canonical,
		SubmittedAt:   s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("requestID", req.ID).
		Str("actionType", string(t)).
		Str("submitterKind", string(kind)).
		Int64("submitterID", submitterID).
		Int64("filedBy", actor.UserID).
		Msg("Request submitted")

	publishAll(ctx, s.publisher, s.logger, events.New(events.TypeRequestSubmitted, req.ID, map[string]interface{}{
		"actionType":  t,
		"submitterId": submitterID,
	}))
	return req, nil
}

func payloadValidationError(err error) error {
	if errors.Is(err, models.ErrUnknownActionType) {
		return apperrors.NewInvalidActionError(err.Error())
	}
	var perr *models.PayloadError
	if errors.As(err, &perr) && len(perr.Fields) > 0 {
		details := make(map[string]interface{}, len(perr.Fields))
		for f, tag := range perr.Fields {
			details[f] = tag
		}
		return apperrors.NewCustomError(apperrors.ErrValidationFailed, perr.Error()).WithDetails(details)
	}
	return apperrors.NewValidationError(err.Error())
}

// Decide moves a PENDING request to its terminal status. On approval the
// action is executed in the same transaction as the status change; if it
// fails the request stays PENDING and ActionFailed is returned.
func (s *requestServiceImpl) Decide(ctx context.Context, actor auth.Actor, requestID int64, decision models.Decision) (*models.Request, error) {
	status, ok := decision.Status()
	if !ok {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown decision %q", decision))
	}

	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	action, err := models.DecodeAction(req.ActionType, req.Payload)
	if err != nil {
		if errors.Is(err, models.ErrUnknownActionType) {
			return nil, apperrors.NewInvalidActionError(err.Error())
		}
		// A stored payload that no longer decodes can still be rejected.
		if status == models.StatusApproved {
			return nil, apperrors.NewActionFailedError(fmt.Sprintf("request %d payload is unreadable", requestID), err)
		}
	}

	capability := models.CapSystemAdmin
	if action != nil {
		capability = action.RequiredCapability()
	}
	if err := s.gate.Require(actor, capability, auth.GlobalScope()); err != nil {
		return nil, err
	}

	var decided *models.Request
	var effects []events.Event
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		updated, changed, err := s.requests.TransitionFromPending(ctx, requestID, status, actor.UserID, s.now().UTC())
		if err != nil {
			return err
		}
		if !changed {
			return apperrors.NewInvalidStateError(fmt.Sprintf("request %d has already been decided", requestID))
		}

		if status == models.StatusApproved {
			effects, err = s.dispatch(ctx, action)
			if err != nil {
				if errors.Is(err, apperrors.ErrInvalidAction) {
					return err
				}
				return apperrors.NewActionFailedError(fmt.Sprintf("%s handler failed for request %d", req.ActionType, requestID), err)
			}
		}

		if err := s.notifyOutcome(ctx, updated); err != nil {
			return fmt.Errorf("notify outcome of request %d: %w", requestID, err)
		}

		decided = updated
		return nil
	})
	if err != nil {
		s.logger.Warn().Err(err).Int64("requestID", requestID).Str("decision", string(decision)).Msg("Request decision not applied")
		return nil, err
	}

	s.logger.Info().
		Int64("requestID", decided.ID).
		Str("actionType", string(decided.ActionType)).
		Str("status", string(decided.Status)).
		Int64("decidedBy", actor.UserID).
		Msg("Request decided")

	evts := append([]events.Event{events.New(events.TypeRequestDecided, decided.ID, map[string]interface{}{
		"actionType": decided.ActionType,
		"status":     decided.Status,
		"decidedBy":  actor.UserID,
	})}, effects...)
	publishAll(ctx, s.publisher, s.logger, evts...)

	s.emailSubmitter(ctx, decided)
	return decided, nil
}

// dispatch runs the approval handler of action. The switch covers every
// variant of models.Action.
func (s *requestServiceImpl) dispatch(ctx context.Context, action models.Action) ([]events.Event, error) {
	switch a := action.(type) {
	case models.ClubCreation:
		club, err := s.lifecycle.CreateClub(ctx, a)
		if err != nil {
			return nil, err
		}
		return []events.Event{events.New(events.TypeClubCreated, club.ID, map[string]interface{}{
			"name":    club.Name,
			"founder": a.Founder,
		})}, nil
	case models.EventApproval:
		event, err := s.lifecycle.CreateEvent(ctx, a)
		if err != nil {
			return nil, err
		}
		return []events.Event{events.New(events.TypeEventCreated, event.ID, map[string]interface{}{
			"clubId":  event.ClubID,
			"venueId": a.VenueID,
		})}, nil
	case models.Funding:
		return nil, nil
	case models.DeleteClub:
		report, err := s.lifecycle.DeleteClub(ctx, a.ClubID)
		if err != nil {
			return nil, err
		}
		return []events.Event{events.New(events.TypeClubDeleted, a.ClubID, report)}, nil
	default:
		return nil, apperrors.NewInvalidActionError(fmt.Sprintf("no handler for action %T", action))
	}
}

func (s *requestServiceImpl) notifyOutcome(ctx context.Context, req *models.Request) error {
	var audience models.Audience
	switch req.SubmitterKind {
	case models.SubmitterUser:
		audience = models.ExplicitList{UserIDs: []int64{req.SubmitterID}}
	case models.SubmitterClub:
		exists, err := s.clubs.Exists(ctx, req.SubmitterID)
		if err != nil {
			return err
		}
		if !exists {
			return nil
		}
		audience = models.ClubExecutives{ClubID: req.SubmitterID}
	default:
		return nil
	}

	title := fmt.Sprintf("Request #%d %s", req.ID, outcomeWord(req.Status))
	content := fmt.Sprintf("Your %s request #%d was %s.", req.ActionType, req.ID, outcomeWord(req.Status))
	_, err := s.notifications.NotifySystem(ctx, audience, title, content)
	return err
}

func outcomeWord(status models.RequestStatus) string {
	if status == models.StatusApproved {
		return "approved"
	}
	return "rejected"
}

func (s *requestServiceImpl) emailSubmitter(ctx context.Context, req *models.Request) {
	if s.mailer == nil || req.SubmitterKind != models.SubmitterUser {
		return
	}

	user, err := s.users.GetByID(ctx, req.SubmitterID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("requestID", req.ID).Msg("Decision email skipped: submitter lookup failed")
		return
	}

	err = s.mailer.SendDecisionEmail(user.Email, user.FullName(), email.DecisionMail{
		RequestID:  req.ID,
		ActionType: string(req.ActionType),
		Status:     string(req.Status),
	})
	if err != nil {
		s.logger.Warn().Err(err).Int64("requestID", req.ID).Msg("Decision email not delivered")
	}
}

// visibility returns nil for system admins, who read the whole ledger
func visibility(actor auth.Actor) *models.RequestVisibility {
	if actor.IsSystemAdmin() {
		return nil
	}
	v := &models.RequestVisibility{UserID: actor.UserID}
	for clubID := range actor.ExecutiveRoles {
		v.ClubIDs = append(v.ClubIDs, clubID)
	}
	sort.Slice(v.ClubIDs, func(i, j int) bool { return v.ClubIDs[i] < v.ClubIDs[j] })
	return v
}

// Get returns one request. Besides system admins, only the submitting user
// or an executive of the submitting club may read it.
func (s *requestServiceImpl) Get(ctx context.Context, actor auth.Actor, id int64) (*models.Request, error) {
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v := visibility(actor); v != nil && !v.Allows(req.SubmitterKind, req.SubmitterID) {
		return nil, apperrors.NewUnauthorizedError(fmt.Sprintf("request %d belongs to another submitter", id))
	}
	return req, nil
}

// List returns requests matching filter, newest first, restricted to what
// actor may read
func (s *requestServiceImpl) List(ctx context.Context, actor auth.Actor, filter models.RequestFilter) ([]*models.Request, int64, error) {
	filter.VisibleTo = visibility(actor)
	return s.requests.List(ctx, filter)
}
