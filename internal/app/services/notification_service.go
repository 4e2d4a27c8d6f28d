package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/clubhub/internal/app/auth"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/db"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
	"github.com/yigit/clubhub/internal/pkg/events"
)

// NotificationService fans notifications out to a snapshot of recipients
type NotificationService interface {
	// Notify sends on behalf of actor after checking the audience capability
	Notify(ctx context.Context, actor auth.Actor, audience models.Audience, title, content string) (*models.Notification, error)
	// NotifySystem sends without a sender or authorization. An audience that
	// resolves to nobody is not an error; nothing is kept and nil is returned.
	NotifySystem(ctx context.Context, audience models.Audience, title, content string) (*models.Notification, error)
	MarkRead(ctx context.Context, actor auth.Actor, notificationID, userID int64) error
	Inbox(ctx context.Context, userID int64, page, size int) ([]*models.InboxItem, int64, error)
}

type notificationServiceImpl struct {
	tx            txRunner
	notifications notificationStore
	gate          *auth.Gate
	publisher     events.Publisher
	live          livePusher
	logger        zerolog.Logger
}

// PushTypeNotification tags live frames carrying a new notification
const PushTypeNotification = "notification"

// NewNotificationService creates a new NotificationService. live may be nil.
func NewNotificationService(
	tx txRunner,
	notifications notificationStore,
	gate *auth.Gate,
	publisher events.Publisher,
	live livePusher,
	logger zerolog.Logger,
) NotificationService {
	return &notificationServiceImpl{
		tx:            tx,
		notifications: notifications,
		gate:          gate,
		publisher:     publisher,
		live:          live,
		logger:        logger,
	}
}

func (s *notificationServiceImpl) authorize(actor auth.Actor, audience models.Audience) error {
	switch a := audience.(type) {
	case models.AllStudents:
		return s.gate.Require(actor, models.CapSystemAdmin, auth.GlobalScope())
	case models.ClubMembers:
		return s.gate.Require(actor, models.CapClubAdmin, auth.ClubScope(a.ClubID))
	case models.ExplicitList:
		return s.gate.Require(actor, models.CapSystemAdmin, auth.GlobalScope())
	default:
		return apperrors.NewUnauthorizedError(fmt.Sprintf("audience %T cannot be targeted directly", audience))
	}
}

// Notify creates a notification and its recipients in one transaction
func (s *notificationServiceImpl) Notify(ctx context.Context, actor auth.Actor, audience models.Audience, title, content string) (*models.Notification, error) {
	if err := s.authorize(actor, audience); err != nil {
		return nil, err
	}

	sender := actor.UserID
	n, err := s.send(ctx, &sender, audience, title, content, false)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("notificationID", n.ID).
		Int64("senderID", sender).
		Int64("recipients", n.RecipientCount).
		Str("audience", audienceName(audience)).
		Msg("Notification sent")

	publishAll(ctx, s.publisher, s.logger, events.New(events.TypeNotificationCreated, n.ID, map[string]interface{}{
		"audience":   audienceName(audience),
		"recipients": n.RecipientCount,
	}))
	return n, nil
}

// NotifySystem creates a sender-less notification. Callers may already hold a
// transaction; the notification then commits or rolls back with it.
func (s *notificationServiceImpl) NotifySystem(ctx context.Context, audience models.Audience, title, content string) (*models.Notification, error) {
	n, err := s.send(ctx, nil, audience, title, content, true)
	if err != nil {
		return nil, err
	}
	if n == nil {
		s.logger.Debug().Str("audience", audienceName(audience)).Msg("System notification skipped: empty audience")
	}
	return n, nil
}

func (s *notificationServiceImpl) send(ctx context.Context, senderID *int64, audience models.Audience, title, content string, allowEmpty bool) (*models.Notification, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.NewValidationError("notification title is required")
	}
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.NewValidationError("notification content is required")
	}

	n := &models.Notification{
		SenderID: senderID,
		Title:    title,
		Content:  content,
	}

	switch a := audience.(type) {
	case models.ClubMembers:
		n.ClubID = &a.ClubID
	case models.ClubExecutives:
		n.ClubID = &a.ClubID
	case models.ExplicitList:
		ids := a.Dedup()
		if len(ids) == 0 {
			if allowEmpty {
				return nil, nil
			}
			return nil, apperrors.NewValidationError("recipient list is empty")
		}
		audience = models.ExplicitList{UserIDs: ids}
	case nil:
		return nil, apperrors.NewValidationError("audience is required")
	}

	var result *models.Notification
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		created, err := s.notifications.Create(ctx, n)
		if err != nil {
			return err
		}

		count, err := s.notifications.MaterializeRecipients(ctx, created.ID, audience)
		if err != nil {
			return err
		}

		if count == 0 {
			if !allowEmpty {
				return apperrors.NewValidationError(fmt.Sprintf("audience %s has no recipients", audienceName(audience)))
			}
			return s.notifications.Delete(ctx, created.ID)
		}

		created.RecipientCount = count
		result = created
		s.schedulePush(ctx, created)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// MarkRead flags one delivery as read. Only the recipient or an SU may do so.
func (s *notificationServiceImpl) MarkRead(ctx context.Context, actor auth.Actor, notificationID, userID int64) error {
	if actor.UserID != userID {
		if err := s.gate.Require(actor, models.CapSystemAdmin, auth.GlobalScope()); err != nil {
			return err
		}
	}

	affected, err := s.notifications.MarkRead(ctx, notificationID, userID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("notification %d has no recipient %d", notificationID, userID))
	}
	return nil
}

// Inbox lists a user's notifications, newest first
func (s *notificationServiceImpl) Inbox(ctx context.Context, userID int64, page, size int) ([]*models.InboxItem, int64, error) {
	return s.notifications.Inbox(ctx, userID, page, size)
}

func audienceName(audience models.Audience) string {
	switch a := audience.(type) {
	case models.AllStudents:
		return "all-students"
	case models.AllSU:
		return "all-su"
	case models.ClubMembers:
		return fmt.Sprintf("club-members:%d", a.ClubID)
	case models.ClubExecutives:
		return fmt.Sprintf("club-executives:%d", a.ClubID)
	case models.ExplicitList:
		return fmt.Sprintf("explicit:%d", len(a.UserIDs))
	default:
		return fmt.Sprintf("%T", audience)
	}
}

// schedulePush sends the notification to recipients that are online once the
// surrounding transaction commits. Push is best effort.
func (s *notificationServiceImpl) schedulePush(ctx context.Context, n *models.Notification) {
	if s.live == nil {
		return
	}
	online := s.live.Online()
	if len(online) == 0 {
		return
	}

	targets, err := s.notifications.RecipientsAmong(ctx, n.ID, online)
	if err != nil {
		s.logger.Warn().Err(err).Int64("notificationID", n.ID).Msg("Failed to resolve live recipients")
		return
	}
	if len(targets) == 0 {
		return
	}

	pushed := *n
	db.AfterCommit(ctx, func() {
		s.live.Push(targets, PushTypeNotification, &pushed)
	})
}
