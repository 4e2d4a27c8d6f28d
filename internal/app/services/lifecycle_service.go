package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
)

// LifecycleService creates and removes clubs and events together with every
// row that depends on them. Each operation is one transaction; when called
// inside an existing transaction it joins it.
type LifecycleService interface {
	CreateClub(ctx context.Context, payload models.ClubCreation) (*models.Club, error)
	CreateEvent(ctx context.Context, payload models.EventApproval) (*models.Event, error)
	DeleteClub(ctx context.Context, clubID int64) (models.CascadeReport, error)
	DeleteEvent(ctx context.Context, eventID int64) (models.CascadeReport, error)
}

type lifecycleServiceImpl struct {
	tx            txRunner
	users         userStore
	clubs         clubStore
	executives    executiveStore
	events        eventStore
	venues        venueStore
	reservations  reservationStore
	notifications notificationStore
	logger        zerolog.Logger
}

// NewLifecycleService creates a new LifecycleService
func NewLifecycleService(
	tx txRunner,
	users userStore,
	clubs clubStore,
	executives executiveStore,
	events eventStore,
	venues venueStore,
	reservations reservationStore,
	notifications notificationStore,
	logger zerolog.Logger,
) LifecycleService {
	return &lifecycleServiceImpl{
		tx:            tx,
		users:         users,
		clubs:         clubs,
		executives:    executives,
		events:        events,
		venues:        venues,
		reservations:  reservations,
		notifications: notifications,
		logger:        logger,
	}
}

// CreateClub creates the club with its founder as first member and President
func (s *lifecycleServiceImpl) CreateClub(ctx context.Context, payload models.ClubCreation) (*models.Club, error) {
	name := strings.TrimSpace(payload.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("club name is required")
	}

	var club *models.Club
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.users.GetByID(ctx, payload.Founder); err != nil {
			return err
		}

		created, err := s.clubs.Create(ctx, &models.Club{
			Name:        name,
			Description: payload.Description,
			ContactInfo: payload.ContactInfo,
		})
		if err != nil {
			return err
		}

		if err := s.clubs.AddMember(ctx, payload.Founder, created.ID); err != nil {
			return fmt.Errorf("add founder membership: %w", err)
		}

		role := models.PresidentRole
		if err := s.executives.Upsert(ctx, payload.Founder, created.ID, &role); err != nil {
			return fmt.Errorf("add founder as president: %w", err)
		}

		club = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("clubID", club.ID).Int64("founderID", payload.Founder).Msg("Club created")
	return club, nil
}

// CreateEvent creates the event and its reservation. A booking that overlaps
// another booking of the same venue is rejected and nothing is kept.
func (s *lifecycleServiceImpl) CreateEvent(ctx context.Context, payload models.EventApproval) (*models.Event, error) {
	if !payload.End.After(payload.Start) {
		return nil, apperrors.NewValidationError("event end must be after its start")
	}

	var event *models.Event
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.clubs.LockByID(ctx, payload.ClubID); err != nil {
			return err
		}

		if _, err := s.venues.LockByID(ctx, payload.VenueID); err != nil {
			return err
		}

		overlap, err := s.reservations.HasOverlap(ctx, payload.VenueID, payload.Start, payload.End)
		if err != nil {
			return fmt.Errorf("check venue availability: %w", err)
		}
		if overlap {
			return apperrors.NewConflictError(fmt.Sprintf("venue %d is already booked between %s and %s",
				payload.VenueID, payload.Start.Format("2006-01-02 15:04"), payload.End.Format("2006-01-02 15:04")))
		}

		created, err := s.events.Create(ctx, &models.Event{
			ClubID:      payload.ClubID,
			Name:        payload.Name,
			Description: payload.Description,
		})
		if err != nil {
			return err
		}

		res, err := s.reservations.Create(ctx, &models.Reservation{
			EventID:  created.ID,
			VenueID:  payload.VenueID,
			StartsAt: payload.Start,
			EndsAt:   payload.End,
		})
		if err != nil {
			return fmt.Errorf("reserve venue: %w", err)
		}

		created.Reservation = res
		event = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("eventID", event.ID).Int64("clubID", event.ClubID).Int64("venueID", payload.VenueID).Msg("Event created")
	return event, nil
}

// DeleteEvent removes an event with its RSVPs and reservation
func (s *lifecycleServiceImpl) DeleteEvent(ctx context.Context, eventID int64) (models.CascadeReport, error) {
	var report models.CascadeReport
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.events.LockByID(ctx, eventID); err != nil {
			return err
		}
		r, err := s.deleteEventRows(ctx, eventID)
		report = r
		return err
	})
	if err != nil {
		return models.CascadeReport{}, err
	}
	return report, nil
}

func (s *lifecycleServiceImpl) deleteEventRows(ctx context.Context, eventID int64) (models.CascadeReport, error) {
	var report models.CascadeReport
	var err error

	if report.RSVPs, err = s.events.DeleteRSVPs(ctx, eventID); err != nil {
		return report, fmt.Errorf("delete rsvps of event %d: %w", eventID, err)
	}
	if report.Reservations, err = s.reservations.DeleteByEvent(ctx, eventID); err != nil {
		return report, fmt.Errorf("delete reservation of event %d: %w", eventID, err)
	}
	if report.Events, err = s.events.Delete(ctx, eventID); err != nil {
		return report, fmt.Errorf("delete event %d: %w", eventID, err)
	}
	return report, nil
}

// DeleteClub removes a club and everything that references it. The club row
// and then its event rows are locked first, so concurrent inserts of
// memberships, events or RSVPs wait for the cascade instead of racing it.
func (s *lifecycleServiceImpl) DeleteClub(ctx context.Context, clubID int64) (models.CascadeReport, error) {
	var report models.CascadeReport
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		report = models.CascadeReport{}

		if _, err := s.clubs.LockByID(ctx, clubID); err != nil {
			return err
		}

		eventIDs, err := s.events.LockIDsByClub(ctx, clubID)
		if err != nil {
			return fmt.Errorf("list events of club %d: %w", clubID, err)
		}
		for _, id := range eventIDs {
			r, err := s.deleteEventRows(ctx, id)
			if err != nil {
				return err
			}
			report.Add(r)
		}

		if report.NotificationRecipients, report.Notifications, err = s.notifications.DeleteByClub(ctx, clubID); err != nil {
			return fmt.Errorf("delete notifications of club %d: %w", clubID, err)
		}
		if report.Memberships, err = s.clubs.DeleteMemberships(ctx, clubID); err != nil {
			return fmt.Errorf("delete memberships of club %d: %w", clubID, err)
		}
		if report.Executives, err = s.executives.DeleteByClub(ctx, clubID); err != nil {
			return fmt.Errorf("delete executives of club %d: %w", clubID, err)
		}
		if _, err := s.clubs.Delete(ctx, clubID); err != nil {
			return fmt.Errorf("delete club %d: %w", clubID, err)
		}
		return nil
	})
	if err != nil {
		return models.CascadeReport{}, err
	}

	s.logger.Info().
		Int64("clubID", clubID).
		Int64("events", report.Events).
		Int64("rsvps", report.RSVPs).
		Int64("reservations", report.Reservations).
		Int64("notifications", report.Notifications).
		Int64("memberships", report.Memberships).
		Int64("executives", report.Executives).
		Msg("Club deleted")
	return report, nil
}
