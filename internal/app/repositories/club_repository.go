package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/db"
	"github.com/yigit/clubhub/internal/pkg/dberrors"
	"github.com/yigit/clubhub/internal/pkg/helpers"
)

var clubColumns = []string{"id", "name", "description", "contact_info", "image", "created_at"}

// ClubRepository handles clubs and their memberships
type ClubRepository struct {
	pool *pgxpool.Pool
}

// NewClubRepository creates a new ClubRepository
func NewClubRepository(pool *pgxpool.Pool) *ClubRepository {
	return &ClubRepository{pool: pool}
}

func scanClub(row pgx.Row) (*models.Club, error) {
	var c models.Club
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.ContactInfo, &c.Image, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a club. A duplicate name maps to a conflict.
func (r *ClubRepository) Create(ctx context.Context, c *models.Club) (*models.Club, error) {
	sql, args, err := psql.Insert("clubs").
		Columns("name", "description", "contact_info").
		Values(c.Name, c.Description, c.ContactInfo).
		Suffix("RETURNING " + strings.Join(clubColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build create club query: %w", err)
	}

	created, err := scanClub(db.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, dberrors.Map(err, "club", 0)
	}
	return created, nil
}

// GetByID retrieves a club by ID
func (r *ClubRepository) GetByID(ctx context.Context, id int64) (*models.Club, error) {
	return r.get(ctx, id, "")
}

// LockByID retrieves a club and holds its row lock until the transaction ends
func (r *ClubRepository) LockByID(ctx context.Context, id int64) (*models.Club, error) {
	return r.get(ctx, id, "FOR UPDATE")
}

func (r *ClubRepository) get(ctx context.Context, id int64, suffix string) (*models.Club, error) {
	b := psql.Select(clubColumns...).From("clubs").Where("id = ?", id)
	if suffix != "" {
		b = b.Suffix(suffix)
	}
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get club query: %w", err)
	}
	c, err := scanClub(db.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, dberrors.Map(err, "club", id)
	}
	return c, nil
}

// Exists checks whether the club exists
func (r *ClubRepository) Exists(ctx context.Context, id int64) (bool, error) {
	return exists(ctx, db.QuerierFromCtx(ctx, r.pool), psql.Select("1").From("clubs").Where("id = ?", id), "club exists")
}

// List returns a page of clubs ordered by name
func (r *ClubRepository) List(ctx context.Context, page, size int) ([]*models.Club, int64, error) {
	q := db.QuerierFromCtx(ctx, r.pool)
	total, err := count(ctx, q, psql.Select("COUNT(*)").From("clubs"), "clubs")
	if err != nil {
		return nil, 0, err
	}

	offset, limit := helpers.CalculateOffsetLimit(page, size)
	sql, args, err := psql.Select(clubColumns...).From("clubs").OrderBy("name").Offset(offset).Limit(limit).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list clubs query: %w", err)
	}
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var clubs []*models.Club
	for rows.Next() {
		c, err := scanClub(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan club: %w", err)
		}
		clubs = append(clubs, c)
	}
	return clubs, total, rows.Err()
}

// UpdateImage sets or clears the club image
func (r *ClubRepository) UpdateImage(ctx context.Context, id int64, image *string) error {
	n, err := execAffected(ctx, db.QuerierFromCtx(ctx, r.pool),
		psql.Update("clubs").Set("image", image).Where("id = ?", id), "update club image")
	if err != nil {
		return dberrors.Map(err, "club", id)
	}
	if n == 0 {
		return dberrors.Map(pgx.ErrNoRows, "club", id)
	}
	return nil
}

// Delete removes the club row. Dependents must already be gone.
func (r *ClubRepository) Delete(ctx context.Context, id int64) (int64, error) {
	n, err := execAffected(ctx, db.QuerierFromCtx(ctx, r.pool), psql.Delete("clubs").Where("id = ?", id), "delete club")
	if err != nil {
		return 0, dberrors.Map(err, "club", id)
	}
	return n, nil
}

// AddMember inserts a membership. An existing membership maps to a conflict.
func (r *ClubRepository) AddMember(ctx context.Context, userID, clubID int64) error {
	_, err := execAffected(ctx, db.QuerierFromCtx(ctx, r.pool),
		psql.Insert("memberships").Columns("user_id", "club_id").Values(userID, clubID), "add member")
	if err != nil {
		return dberrors.Map(err, "membership", clubID)
	}
	return nil
}

// EnsureMember inserts a membership unless one exists
func (r *ClubRepository) EnsureMember(ctx context.Context, userID, clubID int64) error {
	_, err := execAffected(ctx, db.QuerierFromCtx(ctx, r.pool),
		psql.Insert("memberships").Columns("user_id", "club_id").Values(userID, clubID).
			Suffix("ON CONFLICT (user_id, club_id) DO NOTHING"), "ensure member")
	if err != nil {
		return dberrors.Map(err, "membership", clubID)
	}
	return nil
}

// RemoveMember deletes one membership and returns the affected row count
func (r *ClubRepository) RemoveMember(ctx context.Context, userID, clubID int64) (int64, error) {
	n, err := execAffected(ctx, db.QuerierFromCtx(ctx, r.pool),
		psql.Delete("memberships").Where("user_id = ? AND club_id = ?", userID, clubID), "remove member")
	if err != nil {
		return 0, dberrors.Map(err, "membership", clubID)
	}
	return n, nil
}

// IsMember checks whether the user belongs to the club
func (r *ClubRepository) IsMember(ctx context.Context, userID, clubID int64) (bool, error) {
	return exists(ctx, db.QuerierFromCtx(ctx, r.pool),
		psql.Select("1").From("memberships").Where("user_id = ? AND club_id = ?", userID, clubID), "membership exists")
}

// DeleteMemberships removes every membership of a club
func (r *ClubRepository) DeleteMemberships(ctx context.Context, clubID int64) (int64, error) {
	n, err := execAffected(ctx, db.QuerierFromCtx(ctx, r.pool),
		psql.Delete("memberships").Where("club_id = ?", clubID), "delete memberships")
	if err != nil {
		return 0, dberrors.Map(err, "membership", clubID)
	}
	return n, nil
}

// Members returns a page of members with any executive role they hold
func (r *ClubRepository) Members(ctx context.Context, clubID int64, page, size int) ([]*models.ClubMember, int64, error) {
	q := db.QuerierFromCtx(ctx, r.pool)
	total, err := count(ctx, q, psql.Select("COUNT(*)").From("memberships").Where("club_id = ?", clubID), "members")
	if err != nil {
		return nil, 0, err
	}

	offset, limit := helpers.CalculateOffsetLimit(page, size)
	sql, args, err := psql.Select(
		"u.id", "u.email", "u.first_name", "u.last_name", "u.category", "u.created_at",
		"m.joined_at", "e.role",
	).From("memberships m").
		Join("users u ON u.id = m.user_id").
		LeftJoin("executives e ON e.user_id = m.user_id AND e.club_id = m.club_id").
		Where("m.club_id = ?", clubID).
		OrderBy("m.joined_at", "u.id").
		Offset(offset).Limit(limit).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build club members query: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var members []*models.ClubMember
	for rows.Next() {
		var m models.ClubMember
		if err := rows.Scan(&m.User.ID, &m.User.Email, &m.User.FirstName, &m.User.LastName,
			&m.User.Category, &m.User.CreatedAt, &m.JoinedAt, &m.Role); err != nil {
			return nil, 0, fmt.Errorf("scan club member: %w", err)
		}
		members = append(members, &m)
	}
	return members, total, rows.Err()
}
