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

var userColumns = []string{"id", "email", "password", "first_name", "last_name", "category", "created_at"}

// UserRepository handles database operations for users
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Email, &u.Password, &u.FirstName, &u.LastName, &u.Category, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a user and returns its id
func (r *UserRepository) Create(ctx context.Context, u *models.User) (int64, error) {
	sql, args, err := psql.Insert("users").
		Columns("email", "password", "first_name", "last_name", "category").
		Values(u.Email, u.Password, u.FirstName, u.LastName, u.Category).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build create user query: %w", err)
	}

	var id int64
	if err := db.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return 0, dberrors.Map(err, "user", 0)
	}
	return id, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	sql, args, err := psql.Select(userColumns...).From("users").Where("id = ?", id).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get user query: %w", err)
	}
	u, err := scanUser(db.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, dberrors.Map(err, "user", id)
	}
	return u, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	sql, args, err := psql.Select(userColumns...).From("users").Where("lower(email) = lower(?)", email).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get user by email query: %w", err)
	}
	u, err := scanUser(db.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, dberrors.Map(err, "user", 0)
	}
	return u, nil
}

// EmailExists checks whether a user with the email exists
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	return exists(ctx, db.QuerierFromCtx(ctx, r.pool),
		psql.Select("1").From("users").Where("lower(email) = lower(?)", email), "user email exists")
}

// IDsByCategory lists the ids of users in a category
func (r *UserRepository) IDsByCategory(ctx context.Context, category models.UserCategory) ([]int64, error) {
	sql, args, err := psql.Select("id").From("users").Where("category = ?", category).OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build users by category query: %w", err)
	}
	rows, err := db.QuerierFromCtx(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("scan user ids: %w", err)
	}
	return ids, nil
}
