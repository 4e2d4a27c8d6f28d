package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/db"
	"github.com/yigit/clubhub/internal/pkg/dberrors"
)

// MessageRepository stores SU threads
type MessageRepository struct {
	pool *pgxpool.Pool
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(pool *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{pool: pool}
}

// Create appends a message to a thread
func (r *MessageRepository) Create(ctx context.Context, m *models.Message) (*models.Message, error) {
	sql, args, err := psql.Insert("messages").
		Columns("participant_id", "sender_id", "content").
		Values(m.ParticipantID, m.SenderID, m.Content).
		Suffix("RETURNING id, sent_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build create message query: %w", err)
	}

	out := *m
	if err := db.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, sql, args...).Scan(&out.ID, &out.SentAt); err != nil {
		return nil, dberrors.Map(err, "message", 0)
	}
	return &out, nil
}

// ThreadExists reports whether the participant's thread has any message
func (r *MessageRepository) ThreadExists(ctx context.Context, participantID int64) (bool, error) {
	return exists(ctx, db.QuerierFromCtx(ctx, r.pool),
		psql.Select("1").From("messages").Where("participant_id = ?", participantID), "thread exists")
}

// threadLockSpace is the first key of the advisory locks taken per thread
const threadLockSpace int32 = 0x4d534754

// LockThread holds a transaction-scoped advisory lock on the participant's
// thread. Ids beyond int32 share keys, which only adds waiting.
func (r *MessageRepository) LockThread(ctx context.Context, participantID int64) error {
	if _, err := db.QuerierFromCtx(ctx, r.pool).Exec(ctx,
		"SELECT pg_advisory_xact_lock($1, $2)", threadLockSpace, int32(participantID)); err != nil {
		return fmt.Errorf("lock thread %d: %w", participantID, err)
	}
	return nil
}

// Thread returns a thread in chronological order
func (r *MessageRepository) Thread(ctx context.Context, participantID int64) ([]*models.Message, error) {
	sql, args, err := psql.Select("id", "participant_id", "sender_id", "content", "sent_at").
		From("messages").Where("participant_id = ?", participantID).
		OrderBy("sent_at", "id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build thread query: %w", err)
	}
	rows, err := db.QuerierFromCtx(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToAddrOfStructByPos[models.Message])
}

// Threads summarizes every thread, most recently active first
func (r *MessageRepository) Threads(ctx context.Context) ([]*models.ThreadSummary, error) {
	sql, args, err := psql.Select("participant_id", "COUNT(*)", "MAX(sent_at)").
		From("messages").GroupBy("participant_id").
		OrderBy("MAX(sent_at) DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build threads query: %w", err)
	}
	rows, err := db.QuerierFromCtx(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToAddrOfStructByPos[models.ThreadSummary])
}

// ParticipantIDs lists every participant that has a thread
func (r *MessageRepository) ParticipantIDs(ctx context.Context) ([]int64, error) {
	sql, args, err := psql.Select("DISTINCT participant_id").From("messages").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build participant ids query: %w", err)
	}
	rows, err := db.QuerierFromCtx(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}
