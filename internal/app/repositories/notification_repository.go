package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/db"
	"github.com/yigit/clubhub/internal/pkg/dberrors"
	"github.com/yigit/clubhub/internal/pkg/helpers"
)

// NotificationRepository handles notifications and their recipient rows
type NotificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

// Create inserts the notification row
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	sql, args, err := psql.Insert("notifications").
		Columns("sender_id", "club_id", "title", "content").
		Values(n.SenderID, n.ClubID, n.Title, n.Content).
		Suffix("RETURNING id, posted_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build create notification query: %w", err)
	}

	out := *n
	if err := db.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, sql, args...).Scan(&out.ID, &out.PostedAt); err != nil {
		return nil, dberrors.Map(err, "notification", 0)
	}
	return &out, nil
}

// audienceSelect returns the user-id query for an audience, built with '?'
// placeholders for embedding into INSERT ... SELECT
func audienceSelect(notificationID int64, audience models.Audience) (squirrel.SelectBuilder, error) {
	nid := squirrel.Expr("?::bigint", notificationID)
	switch a := audience.(type) {
	case models.AllStudents:
		return squirrel.Select().Column(nid).Column("u.id").From("users u").
			Where(squirrel.Eq{"u.category": models.CategoryStudent}), nil
	case models.AllSU:
		return squirrel.Select().Column(nid).Column("u.id").From("users u").
			Where(squirrel.Eq{"u.category": models.CategorySU}), nil
	case models.ClubMembers:
		return squirrel.Select().Column(nid).Column("m.user_id").From("memberships m").
			Where(squirrel.Eq{"m.club_id": a.ClubID}), nil
	case models.ClubExecutives:
		return squirrel.Select().Column(nid).Column("e.user_id").From("executives e").
			Where(squirrel.Eq{"e.club_id": a.ClubID}), nil
	case models.ExplicitList:
		// unnest keeps unknown ids so the foreign key rejects them
		return squirrel.Select().Column(nid).Column(squirrel.Expr("unnest(?::bigint[])", a.Dedup())), nil
	default:
		return squirrel.SelectBuilder{}, fmt.Errorf("unsupported audience %T", audience)
	}
}

// MaterializeRecipients inserts one unread recipient row per audience member
// and returns how many were created
func (r *NotificationRepository) MaterializeRecipients(ctx context.Context, notificationID int64, audience models.Audience) (int64, error) {
	sel, err := audienceSelect(notificationID, audience)
	if err != nil {
		return 0, err
	}
	n, err := execAffected(ctx, db.QuerierFromCtx(ctx, r.pool),
		psql.Insert("notification_recipients").Columns("notification_id", "user_id").Select(sel).
			Suffix("ON CONFLICT DO NOTHING"),
		"materialize recipients")
	if err != nil {
		return 0, dberrors.Map(err, "notification recipient", notificationID)
	}
	return n, nil
}

// MarkRead flags a delivery as read and returns the affected row count
func (r *NotificationRepository) MarkRead(ctx context.Context, notificationID, userID int64) (int64, error) {
	n, err := execAffected(ctx, db.QuerierFromCtx(ctx, r.pool),
		psql.Update("notification_recipients").Set("is_read", true).
			Where("notification_id = ? AND user_id = ?", notificationID, userID),
		"mark notification read")
	if err != nil {
		return 0, dberrors.Map(err, "notification recipient", notificationID)
	}
	return n, nil
}

// DeleteByClub removes the club's notifications together with their
// recipient rows. Returns (recipients, notifications) removed.
func (r *NotificationRepository) DeleteByClub(ctx context.Context, clubID int64) (int64, int64, error) {
	q := db.QuerierFromCtx(ctx, r.pool)

	recipients, err := execAffected(ctx, q,
		psql.Delete("notification_recipients").
			Where("notification_id IN (SELECT id FROM notifications WHERE club_id = ?)", clubID),
		"delete club notification recipients")
	if err != nil {
		return 0, 0, dberrors.Map(err, "notification recipient", clubID)
	}

	notifications, err := execAffected(ctx, q,
		psql.Delete("notifications").Where("club_id = ?", clubID), "delete club notifications")
	if err != nil {
		return 0, 0, dberrors.Map(err, "notification", clubID)
	}
	return recipients, notifications, nil
}

// Inbox returns a page of a user's notifications, newest first
func (r *NotificationRepository) Inbox(ctx context.Context, userID int64, page, size int) ([]*models.InboxItem, int64, error) {
	q := db.QuerierFromCtx(ctx, r.pool)
	total, err := count(ctx, q, psql.Select("COUNT(*)").From("notification_recipients").Where("user_id = ?", userID), "inbox")
	if err != nil {
		return nil, 0, err
	}

	offset, limit := helpers.CalculateOffsetLimit(page, size)
	sql, args, err := psql.Select("n.id", "n.sender_id", "n.club_id", "n.title", "n.content", "n.posted_at", "nr.is_read").
		From("notification_recipients nr").
		Join("notifications n ON n.id = nr.notification_id").
		Where("nr.user_id = ?", userID).
		OrderBy("n.posted_at DESC", "n.id DESC").
		Offset(offset).Limit(limit).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build inbox query: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*models.InboxItem
	for rows.Next() {
		var it models.InboxItem
		if err := rows.Scan(&it.ID, &it.SenderID, &it.ClubID, &it.Title, &it.Content, &it.PostedAt, &it.IsRead); err != nil {
			return nil, 0, fmt.Errorf("scan inbox item: %w", err)
		}
		items = append(items, &it)
	}
	return items, total, rows.Err()
}

// Delete removes a notification that has no recipient rows
func (r *NotificationRepository) Delete(ctx context.Context, id int64) error {
	_, err := execAffected(ctx, db.QuerierFromCtx(ctx, r.pool), psql.Delete("notifications").Where("id = ?", id), "delete notification")
	if err != nil {
		return dberrors.Map(err, "notification", id)
	}
	return nil
}

// RecipientsAmong returns which of userIDs received the notification
func (r *NotificationRepository) RecipientsAmong(ctx context.Context, notificationID int64, userIDs []int64) ([]int64, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	sql, args, err := psql.Select("user_id").From("notification_recipients").
		Where("notification_id = ?", notificationID).
		Where("user_id = ANY(?)", userIDs).
		OrderBy("user_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build recipients query: %w", err)
	}
	rows, err := db.QuerierFromCtx(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("scan recipient ids: %w", err)
	}
	return ids, nil
}
