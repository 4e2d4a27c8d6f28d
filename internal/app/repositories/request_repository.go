package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/db"
	"github.com/yigit/clubhub/internal/pkg/dberrors"
	"github.com/yigit/clubhub/internal/pkg/helpers"
)

var requestColumns = []string{
	"id", "submitter_kind", "submitter_id", "action_type", "status",
	"payload", "submitted_at", "decided_at", "decided_by",
}

// RequestRepository stores the request ledger
type RequestRepository struct {
	pool *pgxpool.Pool
}

// NewRequestRepository creates a new RequestRepository
func NewRequestRepository(pool *pgxpool.Pool) *RequestRepository {
	return &RequestRepository{pool: pool}
}

func scanRequest(row pgx.Row) (*models.Request, error) {
	var r models.Request
	var payload []byte
	err := row.Scan(&r.ID, &r.SubmitterKind, &r.SubmitterID, &r.ActionType, &r.Status,
		&payload, &r.SubmittedAt, &r.DecidedAt, &r.DecidedBy)
	if err != nil {
		return nil, err
	}
	r.Payload = payload
	return &r, nil
}

// Create inserts a pending request
func (r *RequestRepository) Create(ctx context.Context, req *models.Request) (*models.Request, error) {
	sql, args, err := psql.Insert("requests").
		Columns("submitter_kind", "submitter_id", "action_type", "status", "payload", "submitted_at").
		Values(req.SubmitterKind, req.SubmitterID, req.ActionType, models.StatusPending, []byte(req.Payload), req.SubmittedAt).
		Suffix("RETURNING " + strings.Join(requestColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build create request query: %w", err)
	}

	created, err := scanRequest(db.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, dberrors.Map(err, "request", 0)
	}
	return created, nil
}

// GetByID retrieves a request by ID
func (r *RequestRepository) GetByID(ctx context.Context, id int64) (*models.Request, error) {
	sql, args, err := psql.Select(requestColumns...).From("requests").Where("id = ?", id).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get request query: %w", err)
	}
	req, err := scanRequest(db.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, dberrors.Map(err, "request", id)
	}
	return req, nil
}

// TransitionFromPending moves a pending request to a terminal status. It
// reports false when the request is no longer pending; the row lock taken by
// the UPDATE makes concurrent callers observe exactly one success.
func (r *RequestRepository) TransitionFromPending(ctx context.Context, id int64, status models.RequestStatus, decidedBy int64, at time.Time) (*models.Request, bool, error) {
	sql, args, err := psql.Update("requests").
		Set("status", status).
		Set("decided_at", at).
		Set("decided_by", decidedBy).
		Where(squirrel.Eq{"id": id, "status": models.StatusPending}).
		Suffix("RETURNING " + strings.Join(requestColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("build transition request query: %w", err)
	}

	req, err := scanRequest(db.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, dberrors.Map(err, "request", id)
	}
	return req, true, nil
}

// List returns a page of requests, newest first
func (r *RequestRepository) List(ctx context.Context, filter models.RequestFilter) ([]*models.Request, int64, error) {
	where := squirrel.And{}
	if filter.Status != nil {
		where = append(where, squirrel.Eq{"status": *filter.Status})
	}
	if filter.ActionType != nil {
		where = append(where, squirrel.Eq{"action_type": *filter.ActionType})
	}
	if v := filter.VisibleTo; v != nil {
		visible := squirrel.Or{squirrel.Eq{"submitter_kind": models.SubmitterUser, "submitter_id": v.UserID}}
		if len(v.ClubIDs) > 0 {
			visible = append(visible, squirrel.Eq{"submitter_kind": models.SubmitterClub, "submitter_id": v.ClubIDs})
		}
		where = append(where, visible)
	}

	q := db.QuerierFromCtx(ctx, r.pool)
	total, err := count(ctx, q, psql.Select("COUNT(*)").From("requests").Where(where), "requests")
	if err != nil {
		return nil, 0, err
	}

	offset, limit := helpers.CalculateOffsetLimit(filter.Page, filter.Size)
	sql, args, err := psql.Select(requestColumns...).From("requests").Where(where).
		OrderBy("submitted_at DESC", "id DESC").
		Offset(offset).Limit(limit).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list requests query: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*models.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan request: %w", err)
		}
		out = append(out, req)
	}
	return out, total, rows.Err()
}
