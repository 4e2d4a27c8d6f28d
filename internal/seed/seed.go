package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/pkg/auth"
)

// Venue is a bookable location created on first start
type Venue struct {
	Name     string
	Capacity int
}

// DefaultVenues are upserted on every start
var DefaultVenues = []Venue{
	{Name: "Main Auditorium", Capacity: 400},
	{Name: "Seminar Room A", Capacity: 40},
	{Name: "Seminar Room B", Capacity: 40},
	{Name: "Sports Hall", Capacity: 250},
	{Name: "Open Air Stage", Capacity: 600},
}

// Admin describes the bootstrap Student Union account
type Admin struct {
	Email    string
	Password string
}

// VenueWriter upserts venues by name
type VenueWriter interface {
	Upsert(ctx context.Context, name string, capacity int) error
}

// UserWriter is the subset of the user repository the seeder needs
type UserWriter interface {
	Create(ctx context.Context, u *models.User) (int64, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	IDsByCategory(ctx context.Context, category models.UserCategory) ([]int64, error)
}

// CreateDefaultData upserts the default venues and, when no Student Union
// account exists yet, creates one from admin. Failures are collected so one
// bad row does not stop the rest.
func CreateDefaultData(ctx context.Context, venues VenueWriter, users UserWriter, admin Admin, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default data (venues, SU account)...")
	var finalErr error

	for _, v := range DefaultVenues {
		if err := venues.Upsert(ctx, v.Name, v.Capacity); err != nil {
			lgr.Error().Err(err).Str("venue", v.Name).Msg("Error creating venue")
			finalErr = errors.Join(finalErr, err)
		}
	}

	if err := ensureAdmin(ctx, users, admin, lgr); err != nil {
		finalErr = errors.Join(finalErr, err)
	}

	if finalErr != nil {
		return finalErr
	}
	lgr.Info().Int("venues", len(DefaultVenues)).Msg("Default data check/creation finished")
	return nil
}

func ensureAdmin(ctx context.Context, users UserWriter, admin Admin, lgr zerolog.Logger) error {
	existing, err := users.IDsByCategory(ctx, models.CategorySU)
	if err != nil {
		return fmt.Errorf("list SU accounts: %w", err)
	}
	if len(existing) > 0 {
		lgr.Debug().Int("count", len(existing)).Msg("SU account already present, skipping admin seed")
		return nil
	}

	if admin.Email == "" || admin.Password == "" {
		lgr.Warn().Msg("No SU account exists and SEED_ADMIN_EMAIL/SEED_ADMIN_PASSWORD are not set")
		return nil
	}

	taken, err := users.EmailExists(ctx, admin.Email)
	if err != nil {
		return fmt.Errorf("check admin email: %w", err)
	}
	if taken {
		lgr.Warn().Str("email", admin.Email).Msg("Admin email belongs to a non-SU user, not promoting it")
		return nil
	}

	hash, err := auth.HashPassword(admin.Password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	id, err := users.Create(ctx, &models.User{
		Email:     admin.Email,
		Password:  hash,
		FirstName: "Student",
		LastName:  "Union",
		Category:  models.CategorySU,
	})
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	lgr.Info().Int64("userID", id).Str("email", admin.Email).Msg("Created SU admin account")
	return nil
}
