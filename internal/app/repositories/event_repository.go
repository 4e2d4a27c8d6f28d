package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/db"
	"github.com/yigit/clubhub/internal/pkg/dberrors"
)

var eventColumns = []string{"id", "club_id", "name", "description", "image", "created_at"}

// EventRepository handles events and their RSVPs
type EventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

func scanEvent(row pgx.Row) (*models.Event, error) {
	var e models.Event
	if err := row.Scan(&e.ID, &e.ClubID, &e.Name, &e.Description, &e.Image, &e.CreatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts an event
func (r *EventRepository) Create(ctx context.Context, e *models.Event) (*models.Event, error) {
	sql, args, err := psql.Insert("events").
		Columns("club_id", "name", "description").
		Values(e.ClubID, e.Name, e.Description).
		Suffix("RETURNING " + strings.Join(eventColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build create event query: %w", err)
	}
	created, err := scanEvent(db.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, dberrors.Map(err, "event", 0)
	}
	return created, nil
}

// GetByID retrieves an event with its reservation and RSVP count
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	sql, args, err := psql.Select(
		"e.id", "e.club_id", "e.name", "e.description", "e.image", "e.created_at",
		"r.id", "r.venue_id", "r.starts_at", "r.ends_at",
		"(SELECT COUNT(*) FROM rsvps WHERE event_id = e.id)",
	).From("events e").
		LeftJoin("reservations r ON r.event_id = e.id").
		Where("e.id = ?", id).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get event query: %w", err)
	}

	var e models.Event
	var resID, venueID *int64
	var res models.Reservation
	var startsAt, endsAt *time.Time
	err = db.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, sql, args...).Scan(
		&e.ID, &e.ClubID, &e.Name, &e.Description, &e.Image, &e.CreatedAt,
		&resID, &venueID, &startsAt, &endsAt, &e.RSVPCount,
	)
	if err != nil {
		return nil, dberrors.Map(err, "event", id)
	}
	if resID != nil {
		res.ID, res.EventID, res.VenueID = *resID, e.ID, *venueID
		res.StartsAt, res.EndsAt = *startsAt, *endsAt
		e.Reservation = &res
	}
	return &e, nil
}

// LockByID retrieves an event and holds its row lock until the transaction ends
func (r *EventRepository) LockByID(ctx context.Context, id int64) (*models.Event, error) {
	sql, args, err := psql.Select(eventColumns...).From("events").Where("id = ?", id).Suffix("FOR UPDATE").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build lock event query: %w", err)
	}
	e, err := scanEvent(db.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, dberrors.Map(err, "event", id)
	}
	return e, nil
}

// ListByClub returns a club's events, newest first
func (r *EventRepository) ListByClub(ctx context.Context, clubID int64) ([]*models.Event, error) {
	sql, args, err := psql.Select(eventColumns...).From("events").
		Where("club_id = ?", clubID).OrderBy("created_at DESC", "id DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list events query: %w", err)
	}
	rows, err := db.QuerierFromCtx(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// LockIDsByClub returns the ids of a club's events and row-locks them in id
// order. RSVP inserts against those events wait until the transaction ends.
func (r *EventRepository) LockIDsByClub(ctx context.Context, clubID int64) ([]int64, error) {
	sql, args, err := psql.Select("id").From("events").Where("club_id = ?", clubID).
		OrderBy("id").Suffix("FOR UPDATE").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build event ids query: %w", err)
	}
	rows, err := db.QuerierFromCtx(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}

// Delete removes the event row. RSVPs and the reservation must already be gone.
func (r *EventRepository) Delete(ctx context.Context, id int64) (int64, error) {
	n, err := execAffected(ctx, db.QuerierFromCtx(ctx, r.pool), psql.Delete("events").Where("id = ?", id), "delete event")
	if err != nil {
		return 0, dberrors.Map(err, "event", id)
	}
	return n, nil
}

// AddRSVP records attendance. A repeated RSVP maps to a conflict.
func (r *EventRepository) AddRSVP(ctx context.Context, userID, eventID int64) error {
	_, err := execAffected(ctx, db.QuerierFromCtx(ctx, r.pool),
		psql.Insert("rsvps").Columns("user_id", "event_id").Values(userID, eventID), "add rsvp")
	if err != nil {
		return dberrors.Map(err, "rsvp", eventID)
	}
	return nil
}

// RemoveRSVP deletes one RSVP and returns the affected row count
func (r *EventRepository) RemoveRSVP(ctx context.Context, userID, eventID int64) (int64, error) {
	n, err := execAffected(ctx, db.QuerierFromCtx(ctx, r.pool),
		psql.Delete("rsvps").Where("user_id = ? AND event_id = ?", userID, eventID), "remove rsvp")
	if err != nil {
		return 0, dberrors.Map(err, "rsvp", eventID)
	}
	return n, nil
}

// DeleteRSVPs removes every RSVP of an event
func (r *EventRepository) DeleteRSVPs(ctx context.Context, eventID int64) (int64, error) {
	n, err := execAffected(ctx, db.QuerierFromCtx(ctx, r.pool),
		psql.Delete("rsvps").Where("event_id = ?", eventID), "delete rsvps")
	if err != nil {
		return 0, dberrors.Map(err, "rsvp", eventID)
	}
	return n, nil
}
