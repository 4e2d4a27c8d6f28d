package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/db"
	"github.com/yigit/clubhub/internal/pkg/dberrors"
)

// ReservationRepository handles venue bookings
type ReservationRepository struct {
	pool *pgxpool.Pool
}

// NewReservationRepository creates a new ReservationRepository
func NewReservationRepository(pool *pgxpool.Pool) *ReservationRepository {
	return &ReservationRepository{pool: pool}
}

// Create books a venue for an event
func (r *ReservationRepository) Create(ctx context.Context, res *models.Reservation) (*models.Reservation, error) {
	sql, args, err := psql.Insert("reservations").
		Columns("event_id", "venue_id", "starts_at", "ends_at").
		Values(res.EventID, res.VenueID, res.StartsAt, res.EndsAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build create reservation query: %w", err)
	}

	out := *res
	if err := db.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, sql, args...).Scan(&out.ID); err != nil {
		return nil, dberrors.Map(err, "reservation", 0)
	}
	return &out, nil
}

// HasOverlap reports whether the venue already has a booking intersecting
// [start, end). Touching intervals do not overlap.
func (r *ReservationRepository) HasOverlap(ctx context.Context, venueID int64, start, end time.Time) (bool, error) {
	return exists(ctx, db.QuerierFromCtx(ctx, r.pool),
		psql.Select("1").From("reservations").
			Where("venue_id = ? AND starts_at < ? AND ends_at > ?", venueID, end, start),
		"reservation overlap")
}

// DeleteByEvent removes the reservation of an event
func (r *ReservationRepository) DeleteByEvent(ctx context.Context, eventID int64) (int64, error) {
	n, err := execAffected(ctx, db.QuerierFromCtx(ctx, r.pool),
		psql.Delete("reservations").Where("event_id = ?", eventID), "delete reservation")
	if err != nil {
		return 0, dberrors.Map(err, "reservation", eventID)
	}
	return n, nil
}
