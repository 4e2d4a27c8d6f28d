package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/clubhub/internal/app/auth"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
	"github.com/yigit/clubhub/internal/pkg/events"
	"github.com/yigit/clubhub/internal/pkg/filestorage"
)

// ClubService defines club administration operations
type ClubService interface {
	Get(ctx context.Context, id int64) (*models.Club, error)
	List(ctx context.Context, page, size int) ([]*models.Club, int64, error)
	Members(ctx context.Context, clubID int64, page, size int) ([]*models.ClubMember, int64, error)
	Join(ctx context.Context, actor auth.Actor, clubID int64) error
	Leave(ctx context.Context, actor auth.Actor, clubID int64) error
	AddExecutive(ctx context.Context, actor auth.Actor, clubID, userID int64, role *string) error
	RemoveExecutive(ctx context.Context, actor auth.Actor, clubID, userID int64) error
	UpdateImage(ctx context.Context, actor auth.Actor, clubID int64, file *multipart.FileHeader) (*models.Club, error)
	Delete(ctx context.Context, actor auth.Actor, clubID int64) (models.CascadeReport, error)
}

type clubServiceImpl struct {
	tx         txRunner
	clubs      clubStore
	executives executiveStore
	lifecycle  LifecycleService
	images     imageStore
	gate       *auth.Gate
	publisher  events.Publisher
	logger     zerolog.Logger
}

// NewClubService creates a new ClubService
func NewClubService(
	tx txRunner,
	clubs clubStore,
	executives executiveStore,
	lifecycle LifecycleService,
	images imageStore,
	gate *auth.Gate,
	publisher events.Publisher,
	logger zerolog.Logger,
) ClubService {
	return &clubServiceImpl{
		tx:         tx,
		clubs:      clubs,
		executives: executives,
		lifecycle:  lifecycle,
		images:     images,
		gate:       gate,
		publisher:  publisher,
		logger:     logger,
	}
}

// Get returns a club by ID
func (s *clubServiceImpl) Get(ctx context.Context, id int64) (*models.Club, error) {
	return s.clubs.GetByID(ctx, id)
}

// List returns a page of clubs
func (s *clubServiceImpl) List(ctx context.Context, page, size int) ([]*models.Club, int64, error) {
	return s.clubs.List(ctx, page, size)
}

// Members returns a page of club members
func (s *clubServiceImpl) Members(ctx context.Context, clubID int64, page, size int) ([]*models.ClubMember, int64, error) {
	exists, err := s.clubs.Exists(ctx, clubID)
	if err != nil {
		return nil, 0, err
	}
	if !exists {
		return nil, 0, apperrors.NewNotFoundError(fmt.Sprintf("club %d not found", clubID))
	}
	return s.clubs.Members(ctx, clubID, page, size)
}

// Join makes the actor a member of the club
func (s *clubServiceImpl) Join(ctx context.Context, actor auth.Actor, clubID int64) error {
	exists, err := s.clubs.Exists(ctx, clubID)
	if err != nil {
		return err
	}
	if !exists {
		return apperrors.NewNotFoundError(fmt.Sprintf("club %d not found", clubID))
	}

	if err := s.clubs.AddMember(ctx, actor.UserID, clubID); err != nil {
		if errors.Is(err, apperrors.ErrConflictInvariant) {
			return apperrors.NewConflictError(fmt.Sprintf("user %d is already a member of club %d", actor.UserID, clubID))
		}
		return err
	}

	s.logger.Info().Int64("clubID", clubID).Int64("userID", actor.UserID).Msg("Member joined club")
	return nil
}

// Leave removes the actor's membership and any executive seat. The last
// President cannot leave.
func (s *clubServiceImpl) Leave(ctx context.Context, actor auth.Actor, clubID int64) error {
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		execs, err := s.executives.LockByClub(ctx, clubID)
		if err != nil {
			return err
		}
		if target := findExecutive(execs, actor.UserID); target != nil {
			if err := guardLastPresident(execs, target, nil); err != nil {
				return err
			}
			if _, err := s.executives.Delete(ctx, actor.UserID, clubID); err != nil {
				return err
			}
		}

		n, err := s.clubs.RemoveMember(ctx, actor.UserID, clubID)
		if err != nil {
			return err
		}
		if n == 0 {
			return apperrors.NewNotFoundError(fmt.Sprintf("user %d is not a member of club %d", actor.UserID, clubID))
		}
		return nil
	})
}

// AddExecutive seats a user as executive, making them a member if needed.
// An existing executive gets the new role.
func (s *clubServiceImpl) AddExecutive(ctx context.Context, actor auth.Actor, clubID, userID int64, role *string) error {
	if err := s.gate.Require(actor, models.CapClubAdmin, auth.ClubScope(clubID)); err != nil {
		return err
	}
	if role != nil {
		trimmed := strings.TrimSpace(*role)
		if trimmed == "" {
			role = nil
		} else {
			role = &trimmed
		}
	}

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.clubs.LockByID(ctx, clubID); err != nil {
			return err
		}
		execs, err := s.executives.LockByClub(ctx, clubID)
		if err != nil {
			return err
		}
		if target := findExecutive(execs, userID); target != nil {
			if err := guardLastPresident(execs, target, role); err != nil {
				return err
			}
		}

		if err := s.clubs.EnsureMember(ctx, userID, clubID); err != nil {
			return err
		}
		return s.executives.Upsert(ctx, userID, clubID, role)
	})
	if err != nil {
		return err
	}

	s.logger.Info().Int64("clubID", clubID).Int64("userID", userID).Int64("actorID", actor.UserID).Msg("Executive assigned")
	return nil
}

// RemoveExecutive drops a user's executive seat. The club's last President
// cannot be removed, whoever asks.
func (s *clubServiceImpl) RemoveExecutive(ctx context.Context, actor auth.Actor, clubID, userID int64) error {
	if err := s.gate.Require(actor, models.CapClubAdmin, auth.ClubScope(clubID)); err != nil {
		return err
	}

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		execs, err := s.executives.LockByClub(ctx, clubID)
		if err != nil {
			return err
		}
		target := findExecutive(execs, userID)
		if target == nil {
			return apperrors.NewNotFoundError(fmt.Sprintf("user %d is not an executive of club %d", userID, clubID))
		}
		if err := guardLastPresident(execs, target, nil); err != nil {
			return err
		}
		_, err = s.executives.Delete(ctx, userID, clubID)
		return err
	})
	if err != nil {
		return err
	}

	s.logger.Info().Int64("clubID", clubID).Int64("userID", userID).Int64("actorID", actor.UserID).Msg("Executive removed")
	return nil
}

func findExecutive(execs []*models.Executive, userID int64) *models.Executive {
	for _, e := range execs {
		if e.UserID == userID {
			return e
		}
	}
	return nil
}

// guardLastPresident rejects moving target to newRole when that would leave
// the club without a President.
func guardLastPresident(execs []*models.Executive, target *models.Executive, newRole *string) error {
	if !target.IsPresident() {
		return nil
	}
	if newRole != nil && *newRole == models.PresidentRole {
		return nil
	}

	presidents := 0
	for _, e := range execs {
		if e.IsPresident() {
			presidents++
		}
	}
	if presidents <= 1 {
		return apperrors.NewConflictError(fmt.Sprintf("user %d is the last President of club %d", target.UserID, target.ClubID))
	}
	return nil
}

// UpdateImage replaces the club image
func (s *clubServiceImpl) UpdateImage(ctx context.Context, actor auth.Actor, clubID int64, file *multipart.FileHeader) (*models.Club, error) {
	if err := s.gate.Require(actor, models.CapClubAdmin, auth.ClubScope(clubID)); err != nil {
		return nil, err
	}

	club, err := s.clubs.GetByID(ctx, clubID)
	if err != nil {
		return nil, err
	}

	url, err := s.images.SaveFileWithPath(file, fmt.Sprintf("clubs/%d", clubID))
	if err != nil {
		if errors.Is(err, filestorage.ErrUnsupportedFileType) || errors.Is(err, filestorage.ErrFileTooLarge) {
			return nil, apperrors.NewValidationError(err.Error())
		}
		return nil, fmt.Errorf("store club image: %w", err)
	}

	if err := s.clubs.UpdateImage(ctx, clubID, &url); err != nil {
		if delErr := s.images.DeleteFile(url); delErr != nil {
			s.logger.Warn().Err(delErr).Str("url", url).Msg("Failed to remove orphaned club image")
		}
		return nil, err
	}

	if club.Image != nil && *club.Image != "" {
		if err := s.images.DeleteFile(*club.Image); err != nil {
			s.logger.Warn().Err(err).Str("url", *club.Image).Msg("Failed to remove previous club image")
		}
	}

	club.Image = &url
	return club, nil
}

// Delete removes the club and everything that depends on it
func (s *clubServiceImpl) Delete(ctx context.Context, actor auth.Actor, clubID int64) (models.CascadeReport, error) {
	if err := s.gate.Require(actor, models.CapSystemAdmin, auth.GlobalScope()); err != nil {
		return models.CascadeReport{}, err
	}

	report, err := s.lifecycle.DeleteClub(ctx, clubID)
	if err != nil {
		return models.CascadeReport{}, err
	}

	publishAll(ctx, s.publisher, s.logger, events.New(events.TypeClubDeleted, clubID, report))
	return report, nil
}
