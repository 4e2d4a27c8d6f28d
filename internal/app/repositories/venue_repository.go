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

// VenueRepository reads the seeded venues table
type VenueRepository struct {
	pool *pgxpool.Pool
}

// NewVenueRepository creates a new VenueRepository
func NewVenueRepository(pool *pgxpool.Pool) *VenueRepository {
	return &VenueRepository{pool: pool}
}

// LockByID returns the venue and holds its row lock until the transaction ends.
// Booking checks run under this lock so two overlapping bookings serialize.
func (r *VenueRepository) LockByID(ctx context.Context, id int64) (*models.Venue, error) {
	sql, args, err := psql.Select("id", "name", "capacity").From("venues").
		Where("id = ?", id).Suffix("FOR UPDATE").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build lock venue query: %w", err)
	}

	var v models.Venue
	if err := db.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, sql, args...).Scan(&v.ID, &v.Name, &v.Capacity); err != nil {
		return nil, dberrors.Map(err, "venue", id)
	}
	return &v, nil
}

// List returns all venues
func (r *VenueRepository) List(ctx context.Context) ([]*models.Venue, error) {
	sql, args, err := psql.Select("id", "name", "capacity").From("venues").OrderBy("name").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list venues query: %w", err)
	}
	rows, err := db.QuerierFromCtx(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToAddrOfStructByPos[models.Venue])
}

// Upsert inserts a venue or updates its capacity
func (r *VenueRepository) Upsert(ctx context.Context, name string, capacity int) error {
	_, err := execAffected(ctx, db.QuerierFromCtx(ctx, r.pool),
		psql.Insert("venues").Columns("name", "capacity").Values(name, capacity).
			Suffix("ON CONFLICT (name) DO UPDATE SET capacity = EXCLUDED.capacity"),
		"upsert venue")
	return err
}
