package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/clubhub/internal/app/auth"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
	"github.com/yigit/clubhub/internal/pkg/events"
)

// EventService defines operations on club events
type EventService interface {
	Get(ctx context.Context, id int64) (*models.Event, error)
	ListByClub(ctx context.Context, clubID int64) ([]*models.Event, error)
	RSVP(ctx context.Context, actor auth.Actor, eventID int64) error
	CancelRSVP(ctx context.Context, actor auth.Actor, eventID int64) error
	Delete(ctx context.Context, actor auth.Actor, eventID int64) (models.CascadeReport, error)
}

type eventServiceImpl struct {
	events    eventStore
	clubs     clubStore
	lifecycle LifecycleService
	gate      *auth.Gate
	publisher events.Publisher
	logger    zerolog.Logger
}

// NewEventService creates a new EventService
func NewEventService(
	eventRepo eventStore,
	clubs clubStore,
	lifecycle LifecycleService,
	gate *auth.Gate,
	publisher events.Publisher,
	logger zerolog.Logger,
) EventService {
	return &eventServiceImpl{
		events:    eventRepo,
		clubs:     clubs,
		lifecycle: lifecycle,
		gate:      gate,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *eventServiceImpl) Get(ctx context.Context, id int64) (*models.Event, error) {
	return s.events.GetByID(ctx, id)
}

func (s *eventServiceImpl) ListByClub(ctx context.Context, clubID int64) ([]*models.Event, error) {
	exists, err := s.clubs.Exists(ctx, clubID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("club %d not found", clubID))
	}
	return s.events.ListByClub(ctx, clubID)
}

// RSVP records that the actor will attend
func (s *eventServiceImpl) RSVP(ctx context.Context, actor auth.Actor, eventID int64) error {
	if err := s.events.AddRSVP(ctx, actor.UserID, eventID); err != nil {
		if errors.Is(err, apperrors.ErrConflictInvariant) {
			return apperrors.NewConflictError(fmt.Sprintf("user %d already responded to event %d", actor.UserID, eventID))
		}
		return err
	}
	return nil
}

// CancelRSVP withdraws the actor's RSVP
func (s *eventServiceImpl) CancelRSVP(ctx context.Context, actor auth.Actor, eventID int64) error {
	n, err := s.events.RemoveRSVP(ctx, actor.UserID, eventID)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("user %d has no RSVP for event %d", actor.UserID, eventID))
	}
	return nil
}

// Delete removes an event with its bookings. Only an admin of the owning club may do so.
func (s *eventServiceImpl) Delete(ctx context.Context, actor auth.Actor, eventID int64) (models.CascadeReport, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return models.CascadeReport{}, err
	}
	if err := s.gate.Require(actor, models.CapClubAdmin, auth.ClubScope(event.ClubID)); err != nil {
		return models.CascadeReport{}, err
	}

	report, err := s.lifecycle.DeleteEvent(ctx, eventID)
	if err != nil {
		return models.CascadeReport{}, err
	}

	s.logger.Info().Int64("eventID", eventID).Int64("clubID", event.ClubID).Int64("actorID", actor.UserID).Msg("Event deleted")
	publishAll(ctx, s.publisher, s.logger, events.New(events.TypeEventDeleted, eventID, map[string]interface{}{
		"clubId": event.ClubID,
		"report": report,
	}))
	return report, nil
}
