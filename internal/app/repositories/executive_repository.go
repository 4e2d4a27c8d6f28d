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

// ExecutiveRepository handles club executives
type ExecutiveRepository struct {
	pool *pgxpool.Pool
}

// NewExecutiveRepository creates a new ExecutiveRepository
func NewExecutiveRepository(pool *pgxpool.Pool) *ExecutiveRepository {
	return &ExecutiveRepository{pool: pool}
}

// Upsert makes the user an executive of the club with the given role
func (r *ExecutiveRepository) Upsert(ctx context.Context, userID, clubID int64, role *string) error {
	_, err := execAffected(ctx, db.QuerierFromCtx(ctx, r.pool),
		psql.Insert("executives").Columns("user_id", "club_id", "role").Values(userID, clubID, role).
			Suffix("ON CONFLICT (user_id, club_id) DO UPDATE SET role = EXCLUDED.role"),
		"upsert executive")
	if err != nil {
		return dberrors.Map(err, "executive", clubID)
	}
	return nil
}

// LockByClub returns the club's executives, locking their rows until the
// transaction ends
func (r *ExecutiveRepository) LockByClub(ctx context.Context, clubID int64) ([]*models.Executive, error) {
	sql, args, err := psql.Select("user_id", "club_id", "role").From("executives").
		Where("club_id = ?", clubID).OrderBy("user_id").Suffix("FOR UPDATE").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build lock executives query: %w", err)
	}
	rows, err := db.QuerierFromCtx(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, dberrors.Map(err, "executive", clubID)
	}
	return pgx.CollectRows(rows, pgx.RowToAddrOfStructByPos[models.Executive])
}

// Delete removes one executive and returns the affected row count
func (r *ExecutiveRepository) Delete(ctx context.Context, userID, clubID int64) (int64, error) {
	n, err := execAffected(ctx, db.QuerierFromCtx(ctx, r.pool),
		psql.Delete("executives").Where("user_id = ? AND club_id = ?", userID, clubID), "delete executive")
	if err != nil {
		return 0, dberrors.Map(err, "executive", clubID)
	}
	return n, nil
}

// DeleteByClub removes every executive of a club
func (r *ExecutiveRepository) DeleteByClub(ctx context.Context, clubID int64) (int64, error) {
	n, err := execAffected(ctx, db.QuerierFromCtx(ctx, r.pool),
		psql.Delete("executives").Where("club_id = ?", clubID), "delete club executives")
	if err != nil {
		return 0, dberrors.Map(err, "executive", clubID)
	}
	return n, nil
}

// RolesByUser maps club id to the role held there. Executives without a role
// are left out.
func (r *ExecutiveRepository) RolesByUser(ctx context.Context, userID int64) (map[int64]string, error) {
	sql, args, err := psql.Select("club_id", "role").From("executives").
		Where("user_id = ? AND role IS NOT NULL", userID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build executive roles query: %w", err)
	}
	rows, err := db.QuerierFromCtx(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	roles := make(map[int64]string)
	for rows.Next() {
		var clubID int64
		var role string
		if err := rows.Scan(&clubID, &role); err != nil {
			return nil, fmt.Errorf("scan executive role: %w", err)
		}
		roles[clubID] = role
	}
	return roles, rows.Err()
}
