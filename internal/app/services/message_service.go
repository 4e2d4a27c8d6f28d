package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/clubhub/internal/app/auth"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
	"github.com/yigit/clubhub/internal/pkg/cache"
)

// MaxMessageLength bounds a single message body
const MaxMessageLength = 4000

// MessageService handles the threads between users and the student union
type MessageService interface {
	Send(ctx context.Context, actor auth.Actor, participantID int64, content string) (*models.Message, error)
	Thread(ctx context.Context, actor auth.Actor, participantID int64) ([]*models.Message, error)
	Threads(ctx context.Context, actor auth.Actor) ([]*models.ThreadSummary, error)
}

type messageServiceImpl struct {
	tx            txRunner
	messages      messageStore
	users         userStore
	notifications NotificationService
	threads       cache.ThreadCache
	gate          *auth.Gate
	logger        zerolog.Logger
}

// NewMessageService creates a new MessageService. threads may be nil, in
// which case every existence check goes to the database.
func NewMessageService(
	tx txRunner,
	messages messageStore,
	users userStore,
	notifications NotificationService,
	threads cache.ThreadCache,
	gate *auth.Gate,
	logger zerolog.Logger,
) MessageService {
	return &messageServiceImpl{
		tx:            tx,
		messages:      messages,
		users:         users,
		notifications: notifications,
		threads:       threads,
		gate:          gate,
		logger:        logger,
	}
}

func (s *messageServiceImpl) canAccess(actor auth.Actor, participantID int64) error {
	if actor.UserID == participantID {
		return nil
	}
	return s.gate.Require(actor, models.CapSystemAdmin, auth.GlobalScope())
}

// knownThread reports a positive cache hit. A miss or a cache error says
// nothing and the database decides.
func (s *messageServiceImpl) knownThread(ctx context.Context, participantID int64) bool {
	if s.threads == nil {
		return false
	}
	known, err := s.threads.Has(ctx, participantID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("participantID", participantID).Msg("Thread cache lookup failed")
		return false
	}
	return known
}

// Send appends a message to the participant's thread. The first message a
// participant writes alerts every SU user.
func (s *messageServiceImpl) Send(ctx context.Context, actor auth.Actor, participantID int64, content string) (*models.Message, error) {
	if err := s.canAccess(actor, participantID); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("message content is required")
	}
	if len(content) > MaxMessageLength {
		return nil, apperrors.NewValidationError(fmt.Sprintf("message exceeds %d characters", MaxMessageLength))
	}

	participant, err := s.users.GetByID(ctx, participantID)
	if err != nil {
		return nil, err
	}
	if participant.Category == models.CategorySU {
		return nil, apperrors.NewValidationError("threads belong to non-SU users")
	}

	known := s.knownThread(ctx, participantID)

	var msg *models.Message
	var existed bool
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		existed = known
		if !existed {
			// Serializes first messages of one thread so only one of them alerts the SU
			if err := s.messages.LockThread(ctx, participantID); err != nil {
				return err
			}
			found, err := s.messages.ThreadExists(ctx, participantID)
			if err != nil {
				return err
			}
			existed = found
		}

		created, err := s.messages.Create(ctx, &models.Message{
			ParticipantID: participantID,
			SenderID:      actor.UserID,
			Content:       content,
		})
		if err != nil {
			return err
		}

		if !existed && !actor.IsSystemAdmin() {
			_, err := s.notifications.NotifySystem(ctx, models.AllSU{},
				"New message thread",
				fmt.Sprintf("%s started a conversation with the student union.", participant.FullName()))
			if err != nil {
				return err
			}
		}

		msg = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !existed && s.threads != nil {
		if err := s.threads.Add(ctx, participantID); err != nil {
			s.logger.Warn().Err(err).Int64("participantID", participantID).Msg("Failed to record thread in cache")
		}
	}

	s.logger.Debug().Int64("messageID", msg.ID).Int64("participantID", participantID).Bool("newThread", !existed).Msg("Message sent")
	return msg, nil
}

// Thread returns every message of one thread, oldest first
func (s *messageServiceImpl) Thread(ctx context.Context, actor auth.Actor, participantID int64) ([]*models.Message, error) {
	if err := s.canAccess(actor, participantID); err != nil {
		return nil, err
	}
	return s.messages.Thread(ctx, participantID)
}

// Threads lists all threads with their last activity. SU only.
func (s *messageServiceImpl) Threads(ctx context.Context, actor auth.Actor) ([]*models.ThreadSummary, error) {
	if err := s.gate.Require(actor, models.CapSystemAdmin, auth.GlobalScope()); err != nil {
		return nil, err
	}
	return s.messages.Threads(ctx)
}
