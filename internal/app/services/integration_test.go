package services_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/yigit/clubhub/internal/app/auth"
	"github.com/yigit/clubhub/internal/app/migrations"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/repositories"
	"github.com/yigit/clubhub/internal/app/services"
	"github.com/yigit/clubhub/internal/db"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
	"github.com/yigit/clubhub/internal/pkg/email"
	"github.com/yigit/clubhub/internal/pkg/events"
)

var (
	pgOnce sync.Once
	pgDSN  string
	pgErr  error
)

// setupPool starts one PostgreSQL container for the package run and applies
// the embedded migrations. Tests share the database and isolate by unique names.
func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	pgOnce.Do(func() { pgDSN, pgErr = startPostgres() })
	require.NoError(t, pgErr)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pool, err := pgxpool.New(ctx, pgDSN)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func startPostgres() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:17-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "clubhub",
				"POSTGRES_PASSWORD": "clubhub",
				"POSTGRES_DB":       "clubhub",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	if err != nil {
		return "", fmt.Errorf("start container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return "", fmt.Errorf("mapped port: %w", err)
	}
	dsn := fmt.Sprintf("postgres://clubhub:clubhub@%s:%s/clubhub?sslmode=disable", host, port.Port())

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return "", fmt.Errorf("connect: %w", err)
	}
	defer pool.Close()

	if err := migrations.NewMigrator(pool, zerolog.Nop()).Up(ctx); err != nil {
		return "", err
	}
	return dsn, nil
}

type stack struct {
	pool          *pgxpool.Pool
	repos         *repositories.Repositories
	requests      services.RequestService
	notifications services.NotificationService
	messages      services.MessageService
}

func newStack(t *testing.T) *stack {
	pool := setupPool(t)
	repos := repositories.NewRepositories(pool)
	tx := db.NewTxManager(pool)
	gate := auth.NewGate()
	pub := events.NopPublisher{}
	log := zerolog.Nop()

	lifecycle := services.NewLifecycleService(tx, repos.UserRepository, repos.ClubRepository, repos.ExecutiveRepository,
		repos.EventRepository, repos.VenueRepository, repos.ReservationRepository, repos.NotificationRepository, log)
	notifications := services.NewNotificationService(tx, repos.NotificationRepository, gate, pub, nil, log)
	mailer := email.NewEmailService(email.SMTPConfig{}, log)
	requests := services.NewRequestService(tx, repos.RequestRepository, repos.UserRepository, repos.ClubRepository,
		lifecycle, notifications, gate, pub, mailer, log)

	messages := services.NewMessageService(tx, repos.MessageRepository, repos.UserRepository, notifications, nil, gate, log)

	return &stack{pool: pool, repos: repos, requests: requests, notifications: notifications, messages: messages}
}

func (s *stack) user(t *testing.T, category models.UserCategory) int64 {
	t.Helper()
	id, err := s.repos.UserRepository.Create(context.Background(), &models.User{
		Email:     uuid.NewString() + "@campus.edu",
		Password:  "x",
		FirstName: "Test",
		LastName:  "User",
		Category:  category,
	})
	require.NoError(t, err)
	return id
}

func (s *stack) count(t *testing.T, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.pool.QueryRow(context.Background(), query, args...).Scan(&n))
	return n
}

func payload(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

// approvedClub runs a ClubCreation request end to end and returns the new club id
func (s *stack) approvedClub(t *testing.T, founder int64, admin auth.Actor) int64 {
	t.Helper()
	ctx := context.Background()
	name := "Club " + uuid.NewString()

	req, err := s.requests.Submit(ctx, auth.Actor{UserID: founder, Category: models.CategoryStudent}, founder,
		string(models.ActionClubCreation), payload(t, models.ClubCreation{Name: name, Founder: founder}))
	require.NoError(t, err)

	decided, err := s.requests.Decide(ctx, admin, req.ID, models.DecisionApprove)
	require.NoError(t, err)
	require.Equal(t, models.StatusApproved, decided.Status)

	var clubID int64
	require.NoError(t, s.pool.QueryRow(ctx, "SELECT id FROM clubs WHERE name = $1", name).Scan(&clubID))
	return clubID
}

// approvedEvent runs an EventApproval request for clubID on a slot reserved for that club
func (s *stack) approvedEvent(t *testing.T, clubID int64, president, admin auth.Actor) int64 {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, s.repos.VenueRepository.Upsert(ctx, "Integration Hall", 100))
	var venueID int64
	require.NoError(t, s.pool.QueryRow(ctx, "SELECT id FROM venues WHERE name = 'Integration Hall'").Scan(&venueID))

	// One far-future slot per club on the shared venue
	start := time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(clubID) * 24 * time.Hour)
	req, err := s.requests.Submit(ctx, president, clubID, string(models.ActionEventApproval), payload(t, models.EventApproval{
		ClubID: clubID, Name: "Launch night", VenueID: venueID, Start: start, End: start.Add(2 * time.Hour),
	}))
	require.NoError(t, err)
	_, err = s.requests.Decide(ctx, admin, req.ID, models.DecisionApprove)
	require.NoError(t, err)

	var eventID int64
	require.NoError(t, s.pool.QueryRow(ctx, "SELECT id FROM events WHERE club_id = $1", clubID).Scan(&eventID))
	return eventID
}

func TestIntegration_ClubLifecycleCascade(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	su := auth.Actor{UserID: s.user(t, models.CategorySU), Category: models.CategorySU}
	founder := s.user(t, models.CategoryStudent)

	clubID := s.approvedClub(t, founder, su)
	assert.Equal(t, int64(1), s.count(t, "SELECT count(*) FROM memberships WHERE club_id = $1 AND user_id = $2", clubID, founder))
	assert.Equal(t, int64(1), s.count(t, "SELECT count(*) FROM executives WHERE club_id = $1 AND user_id = $2 AND role = $3",
		clubID, founder, models.PresidentRole))

	president := auth.Actor{UserID: founder, Category: models.CategoryStudent, ExecutiveRoles: map[int64]string{clubID: models.PresidentRole}}

	eventIDs := []int64{s.approvedEvent(t, clubID, president, su)}

	for i := 0; i < 3; i++ {
		member := s.user(t, models.CategoryStudent)
		require.NoError(t, s.repos.ClubRepository.AddMember(ctx, member, clubID))
		require.NoError(t, s.repos.EventRepository.AddRSVP(ctx, member, eventIDs[0]))
	}
	_, err := s.notifications.Notify(ctx, president, models.ClubMembers{ClubID: clubID}, "Welcome", "See you at launch night")
	require.NoError(t, err)

	var notificationIDs []int64
	rows, err := s.pool.Query(ctx, "SELECT id FROM notifications WHERE club_id = $1", clubID)
	require.NoError(t, err)
	for rows.Next() {
		var id int64
		require.NoError(t, rows.Scan(&id))
		notificationIDs = append(notificationIDs, id)
	}
	require.NoError(t, rows.Err())
	require.NotEmpty(t, notificationIDs)

	deleteReq, err := s.requests.Submit(ctx, president, clubID, string(models.ActionDeleteClub), payload(t, models.DeleteClub{ClubID: clubID}))
	require.NoError(t, err)
	_, err = s.requests.Decide(ctx, su, deleteReq.ID, models.DecisionApprove)
	require.NoError(t, err)

	assert.Zero(t, s.count(t, "SELECT count(*) FROM clubs WHERE id = $1", clubID))
	assert.Zero(t, s.count(t, "SELECT count(*) FROM memberships WHERE club_id = $1", clubID))
	assert.Zero(t, s.count(t, "SELECT count(*) FROM executives WHERE club_id = $1", clubID))
	assert.Zero(t, s.count(t, "SELECT count(*) FROM events WHERE club_id = $1", clubID))
	assert.Zero(t, s.count(t, "SELECT count(*) FROM reservations WHERE event_id = ANY($1)", eventIDs))
	assert.Zero(t, s.count(t, "SELECT count(*) FROM rsvps WHERE event_id = ANY($1)", eventIDs))
	assert.Zero(t, s.count(t, "SELECT count(*) FROM notifications WHERE club_id = $1", clubID))
	assert.Zero(t, s.count(t, "SELECT count(*) FROM notification_recipients WHERE notification_id = ANY($1)", notificationIDs))

	// The audit trail survives the club
	assert.Equal(t, int64(2), s.count(t, "SELECT count(*) FROM requests WHERE submitter_kind = 'CLUB' AND submitter_id = $1 AND status = 'APPROVED'", clubID))
}

func TestIntegration_ConcurrentDecideHasOneWinner(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	su := auth.Actor{UserID: s.user(t, models.CategorySU), Category: models.CategorySU}
	founder := s.user(t, models.CategoryStudent)
	clubID := s.approvedClub(t, founder, su)
	president := auth.Actor{UserID: founder, Category: models.CategoryStudent, ExecutiveRoles: map[int64]string{clubID: models.PresidentRole}}

	req, err := s.requests.Submit(ctx, president, clubID, string(models.ActionFunding),
		payload(t, models.Funding{ClubID: clubID, Amount: 250, Purpose: "Posters"}))
	require.NoError(t, err)

	const deciders = 8
	errs := make([]error, deciders)
	var wg sync.WaitGroup
	for i := 0; i < deciders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			decision := models.DecisionApprove
			if i%2 == 1 {
				decision = models.DecisionReject
			}
			_, errs[i] = s.requests.Decide(ctx, su, req.ID, decision)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, apperrors.ErrInvalidState)
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, int64(1), s.count(t, "SELECT count(*) FROM requests WHERE id = $1 AND status <> 'PENDING'", req.ID))
}

func TestIntegration_ClubMembersFanOut(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	su := auth.Actor{UserID: s.user(t, models.CategorySU), Category: models.CategorySU}
	founder := s.user(t, models.CategoryStudent)
	clubID := s.approvedClub(t, founder, su)

	for i := 0; i < 4; i++ {
		require.NoError(t, s.repos.ClubRepository.AddMember(ctx, s.user(t, models.CategoryStudent), clubID))
	}

	n, err := s.notifications.Notify(ctx, su, models.ClubMembers{ClubID: clubID}, "Reminder", "Dues are due")
	require.NoError(t, err)

	// founder plus four members
	assert.Equal(t, int64(5), n.RecipientCount)
	assert.Equal(t, int64(5), s.count(t, "SELECT count(*) FROM notification_recipients WHERE notification_id = $1", n.ID))
	assert.Zero(t, s.count(t, "SELECT count(*) FROM notification_recipients WHERE notification_id = $1 AND is_read", n.ID))

	require.NoError(t, s.notifications.MarkRead(ctx, auth.Actor{UserID: founder, Category: models.CategoryStudent}, n.ID, founder))
	assert.Equal(t, int64(1), s.count(t, "SELECT count(*) FROM notification_recipients WHERE notification_id = $1 AND is_read", n.ID))
}

func TestIntegration_DeleteClubWaitsForInFlightRSVP(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	su := auth.Actor{UserID: s.user(t, models.CategorySU), Category: models.CategorySU}
	founder := s.user(t, models.CategoryStudent)
	clubID := s.approvedClub(t, founder, su)
	president := auth.Actor{UserID: founder, Category: models.CategoryStudent, ExecutiveRoles: map[int64]string{clubID: models.PresidentRole}}
	eventID := s.approvedEvent(t, clubID, president, su)

	deleteReq, err := s.requests.Submit(ctx, president, clubID, string(models.ActionDeleteClub), payload(t, models.DeleteClub{ClubID: clubID}))
	require.NoError(t, err)

	// An RSVP inserted by another session but not yet committed
	other, err := s.pool.Begin(ctx)
	require.NoError(t, err)
	defer other.Rollback(ctx) //nolint:errcheck
	_, err = other.Exec(ctx, "INSERT INTO rsvps (user_id, event_id) VALUES ($1, $2)", s.user(t, models.CategoryStudent), eventID)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := s.requests.Decide(ctx, su, deleteReq.ID, models.DecisionApprove)
		done <- err
	}()

	select {
	case err := <-done:
		t.Fatalf("cascade finished while an RSVP insert held the event: %v", err)
	case <-time.After(300 * time.Millisecond):
	}
	require.NoError(t, other.Commit(ctx))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("cascade did not finish after the RSVP committed")
	}
	assert.Zero(t, s.count(t, "SELECT count(*) FROM clubs WHERE id = $1", clubID))
	assert.Zero(t, s.count(t, "SELECT count(*) FROM rsvps WHERE event_id = $1", eventID))
	assert.Zero(t, s.count(t, "SELECT count(*) FROM events WHERE id = $1", eventID))
}

func TestIntegration_AllStudentsIsASnapshot(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	su := auth.Actor{UserID: s.user(t, models.CategorySU), Category: models.CategorySU}
	s.user(t, models.CategoryStudent)
	s.user(t, models.CategoryStaff)

	students := s.count(t, "SELECT count(*) FROM users WHERE category = 'STUDENT'")
	n, err := s.notifications.Notify(ctx, su, models.AllStudents{}, "Elections", "Voting opens Monday")
	require.NoError(t, err)
	assert.Equal(t, students, n.RecipientCount)
	assert.Equal(t, students, s.count(t, "SELECT count(*) FROM notification_recipients WHERE notification_id = $1", n.ID))
	assert.Zero(t, s.count(t, `SELECT count(*) FROM notification_recipients r JOIN users u ON u.id = r.user_id
		WHERE r.notification_id = $1 AND u.category <> 'STUDENT'`, n.ID))

	newcomer := s.user(t, models.CategoryStudent)

	assert.Equal(t, students, s.count(t, "SELECT count(*) FROM notification_recipients WHERE notification_id = $1", n.ID))
	inbox, total, err := s.notifications.Inbox(ctx, newcomer, 1, 20)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, inbox)
}

func TestIntegration_RequestListScopedToReader(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	su := auth.Actor{UserID: s.user(t, models.CategorySU), Category: models.CategorySU}

	founderA := s.user(t, models.CategoryStudent)
	clubA := s.approvedClub(t, founderA, su)
	founderB := s.user(t, models.CategoryStudent)
	clubB := s.approvedClub(t, founderB, su)
	presidentA := auth.Actor{UserID: founderA, Category: models.CategoryStudent, ExecutiveRoles: map[int64]string{clubA: models.PresidentRole}}

	for _, clubID := range []int64{clubA, clubB} {
		_, err := s.requests.Submit(ctx, su, clubID, string(models.ActionFunding),
			payload(t, models.Funding{ClubID: clubID, Amount: 40, Purpose: "Flyers"}))
		require.NoError(t, err)
	}

	reqs, total, err := s.requests.List(ctx, presidentA, models.RequestFilter{Page: 1, Size: 50})
	require.NoError(t, err)
	// founder A's club creation plus club A's funding request
	assert.Equal(t, int64(2), total)
	for _, r := range reqs {
		ownUser := r.SubmitterKind == models.SubmitterUser && r.SubmitterID == founderA
		ownClub := r.SubmitterKind == models.SubmitterClub && r.SubmitterID == clubA
		assert.True(t, ownUser || ownClub, "request %d from %s %d", r.ID, r.SubmitterKind, r.SubmitterID)
	}

	_, total, err = s.requests.List(ctx, auth.Actor{UserID: s.user(t, models.CategoryStudent), Category: models.CategoryStudent},
		models.RequestFilter{Page: 1, Size: 50})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestIntegration_ConcurrentFirstMessagesAlertOnce(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	s.user(t, models.CategorySU)

	surname := uuid.NewString()
	participant, err := s.repos.UserRepository.Create(ctx, &models.User{
		Email:     surname + "@campus.edu",
		Password:  "x",
		FirstName: "Thread",
		LastName:  surname,
		Category:  models.CategoryStudent,
	})
	require.NoError(t, err)
	actor := auth.Actor{UserID: participant, Category: models.CategoryStudent}

	const senders = 6
	var wg sync.WaitGroup
	errs := make(chan error, senders)
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.messages.Send(ctx, actor, participant, fmt.Sprintf("hello %d", i))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.Equal(t, int64(senders), s.count(t, "SELECT count(*) FROM messages WHERE participant_id = $1", participant))
	assert.Equal(t, int64(1), s.count(t,
		"SELECT count(*) FROM notifications WHERE title = 'New message thread' AND content LIKE '%' || $1 || '%'", surname))
}
