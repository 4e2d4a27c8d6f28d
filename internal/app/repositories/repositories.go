package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/clubhub/internal/db"
)

// psql builds statements with PostgreSQL placeholders. Sub-selects embedded in
// INSERT ... SELECT use plain squirrel.Select so placeholders are numbered once.
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository         *UserRepository
	VenueRepository        *VenueRepository
	RequestRepository      *RequestRepository
	ClubRepository         *ClubRepository
	ExecutiveRepository    *ExecutiveRepository
	EventRepository        *EventRepository
	ReservationRepository  *ReservationRepository
	NotificationRepository *NotificationRepository
	MessageRepository      *MessageRepository
}

// NewRepositories initializes all repositories
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:         NewUserRepository(pool),
		VenueRepository:        NewVenueRepository(pool),
		RequestRepository:      NewRequestRepository(pool),
		ClubRepository:         NewClubRepository(pool),
		ExecutiveRepository:    NewExecutiveRepository(pool),
		EventRepository:        NewEventRepository(pool),
		ReservationRepository:  NewReservationRepository(pool),
		NotificationRepository: NewNotificationRepository(pool),
		MessageRepository:      NewMessageRepository(pool),
	}
}

// execAffected runs a write statement and returns the affected row count
func execAffected(ctx context.Context, q db.Querier, b squirrel.Sqlizer, what string) (int64, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build %s query: %w", what, err)
	}
	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// exists runs a SELECT EXISTS(...) around the given query
func exists(ctx context.Context, q db.Querier, b squirrel.SelectBuilder, what string) (bool, error) {
	inner, args, err := b.ToSql()
	if err != nil {
		return false, fmt.Errorf("build %s query: %w", what, err)
	}
	var ok bool
	if err := q.QueryRow(ctx, "SELECT EXISTS("+inner+")", args...).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// count runs a COUNT(*) query
func count(ctx context.Context, q db.Querier, b squirrel.SelectBuilder, what string) (int64, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build %s count query: %w", what, err)
	}
	var n int64
	if err := q.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
