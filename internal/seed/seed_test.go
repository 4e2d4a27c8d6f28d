package seed

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/pkg/auth"
)

type fakeVenues struct {
	names []string
	err   error
}

func (f *fakeVenues) Upsert(_ context.Context, name string, _ int) error {
	f.names = append(f.names, name)
	return f.err
}

type fakeUsers struct {
	su      []int64
	emails  map[string]bool
	created []*models.User
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) (int64, error) {
	f.created = append(f.created, u)
	return int64(len(f.created)), nil
}

func (f *fakeUsers) EmailExists(_ context.Context, email string) (bool, error) {
	return f.emails[email], nil
}

func (f *fakeUsers) IDsByCategory(_ context.Context, _ models.UserCategory) ([]int64, error) {
	return f.su, nil
}

func TestCreateDefaultData_CreatesVenuesAndAdmin(t *testing.T) {
	venues := &fakeVenues{}
	users := &fakeUsers{emails: map[string]bool{}}

	err := CreateDefaultData(context.Background(), venues, users, Admin{Email: "su@campus.edu", Password: "s3cret-pass"}, zerolog.Nop())
	require.NoError(t, err)

	assert.Len(t, venues.names, len(DefaultVenues))
	require.Len(t, users.created, 1)
	admin := users.created[0]
	assert.Equal(t, models.CategorySU, admin.Category)
	assert.NotEqual(t, "s3cret-pass", admin.Password)
	assert.True(t, auth.CheckPassword(admin.Password, "s3cret-pass"))
}

func TestCreateDefaultData_ExistingSUSkipsAdmin(t *testing.T) {
	users := &fakeUsers{su: []int64{1}}

	err := CreateDefaultData(context.Background(), &fakeVenues{}, users, Admin{Email: "su@campus.edu", Password: "x"}, zerolog.Nop())
	require.NoError(t, err)
	assert.Empty(t, users.created)
}

func TestCreateDefaultData_NoPasswordSkipsAdmin(t *testing.T) {
	users := &fakeUsers{emails: map[string]bool{}}

	err := CreateDefaultData(context.Background(), &fakeVenues{}, users, Admin{Email: "su@campus.edu"}, zerolog.Nop())
	require.NoError(t, err)
	assert.Empty(t, users.created)
}

func TestCreateDefaultData_EmailTakenByStudent(t *testing.T) {
	users := &fakeUsers{emails: map[string]bool{"su@campus.edu": true}}

	err := CreateDefaultData(context.Background(), &fakeVenues{}, users, Admin{Email: "su@campus.edu", Password: "x"}, zerolog.Nop())
	require.NoError(t, err)
	assert.Empty(t, users.created)
}

func TestCreateDefaultData_CollectsVenueErrors(t *testing.T) {
	venues := &fakeVenues{err: errors.New("db down")}
	users := &fakeUsers{su: []int64{1}}

	err := CreateDefaultData(context.Background(), venues, users, Admin{}, zerolog.Nop())
	assert.Error(t, err)
	assert.Len(t, venues.names, len(DefaultVenues), "every venue is attempted")
}
