package services

import (
	"context"
	"mime/multipart"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/yigit/clubhub/internal/app/auth"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/pkg/events"
)

// passthroughTx runs fn directly; rolled back state is not simulated.
type passthroughTx struct {
	calls int
}

func (p *passthroughTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	p.calls++
	return fn(ctx)
}

type recordingPublisher struct {
	published []events.Event
}

func (r *recordingPublisher) Publish(_ context.Context, evt events.Event) error {
	r.published = append(r.published, evt)
	return nil
}

func (r *recordingPublisher) Close() error { return nil }

func (r *recordingPublisher) types() []string {
	out := make([]string, 0, len(r.published))
	for _, e := range r.published {
		out = append(out, e.Type)
	}
	return out
}

func suActor(id int64) auth.Actor {
	return auth.Actor{UserID: id, Category: models.CategorySU}
}

func studentActor(id int64, roles map[int64]string) auth.Actor {
	return auth.Actor{UserID: id, Category: models.CategoryStudent, ExecutiveRoles: roles}
}

func strPtr(s string) *string { return &s }

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

type mockClubStore struct{ mock.Mock }

func (m *mockClubStore) Create(ctx context.Context, c *models.Club) (*models.Club, error) {
	args := m.Called(ctx, c)
	out, _ := args.Get(0).(*models.Club)
	return out, args.Error(1)
}

func (m *mockClubStore) GetByID(ctx context.Context, id int64) (*models.Club, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(*models.Club)
	return out, args.Error(1)
}

func (m *mockClubStore) LockByID(ctx context.Context, id int64) (*models.Club, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(*models.Club)
	return out, args.Error(1)
}

func (m *mockClubStore) Exists(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockClubStore) List(ctx context.Context, page, size int) ([]*models.Club, int64, error) {
	args := m.Called(ctx, page, size)
	out, _ := args.Get(0).([]*models.Club)
	return out, args.Get(1).(int64), args.Error(2)
}

func (m *mockClubStore) UpdateImage(ctx context.Context, id int64, image *string) error {
	return m.Called(ctx, id, image).Error(0)
}

func (m *mockClubStore) Delete(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockClubStore) AddMember(ctx context.Context, userID, clubID int64) error {
	return m.Called(ctx, userID, clubID).Error(0)
}

func (m *mockClubStore) EnsureMember(ctx context.Context, userID, clubID int64) error {
	return m.Called(ctx, userID, clubID).Error(0)
}

func (m *mockClubStore) RemoveMember(ctx context.Context, userID, clubID int64) (int64, error) {
	args := m.Called(ctx, userID, clubID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockClubStore) DeleteMemberships(ctx context.Context, clubID int64) (int64, error) {
	args := m.Called(ctx, clubID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockClubStore) Members(ctx context.Context, clubID int64, page, size int) ([]*models.ClubMember, int64, error) {
	args := m.Called(ctx, clubID, page, size)
	out, _ := args.Get(0).([]*models.ClubMember)
	return out, args.Get(1).(int64), args.Error(2)
}

type mockExecutiveStore struct{ mock.Mock }

func (m *mockExecutiveStore) Upsert(ctx context.Context, userID, clubID int64, role *string) error {
	return m.Called(ctx, userID, clubID, role).Error(0)
}

func (m *mockExecutiveStore) LockByClub(ctx context.Context, clubID int64) ([]*models.Executive, error) {
	args := m.Called(ctx, clubID)
	out, _ := args.Get(0).([]*models.Executive)
	return out, args.Error(1)
}

func (m *mockExecutiveStore) Delete(ctx context.Context, userID, clubID int64) (int64, error) {
	args := m.Called(ctx, userID, clubID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockExecutiveStore) DeleteByClub(ctx context.Context, clubID int64) (int64, error) {
	args := m.Called(ctx, clubID)
	return args.Get(0).(int64), args.Error(1)
}

type mockEventStore struct{ mock.Mock }

func (m *mockEventStore) Create(ctx context.Context, e *models.Event) (*models.Event, error) {
	args := m.Called(ctx, e)
	out, _ := args.Get(0).(*models.Event)
	return out, args.Error(1)
}

func (m *mockEventStore) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(*models.Event)
	return out, args.Error(1)
}

func (m *mockEventStore) LockByID(ctx context.Context, id int64) (*models.Event, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(*models.Event)
	return out, args.Error(1)
}

func (m *mockEventStore) ListByClub(ctx context.Context, clubID int64) ([]*models.Event, error) {
	args := m.Called(ctx, clubID)
	out, _ := args.Get(0).([]*models.Event)
	return out, args.Error(1)
}

func (m *mockEventStore) LockIDsByClub(ctx context.Context, clubID int64) ([]int64, error) {
	args := m.Called(ctx, clubID)
	out, _ := args.Get(0).([]int64)
	return out, args.Error(1)
}

func (m *mockEventStore) Delete(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockEventStore) AddRSVP(ctx context.Context, userID, eventID int64) error {
	return m.Called(ctx, userID, eventID).Error(0)
}

func (m *mockEventStore) RemoveRSVP(ctx context.Context, userID, eventID int64) (int64, error) {
	args := m.Called(ctx, userID, eventID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockEventStore) DeleteRSVPs(ctx context.Context, eventID int64) (int64, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).(int64), args.Error(1)
}

type mockVenueStore struct{ mock.Mock }

func (m *mockVenueStore) LockByID(ctx context.Context, id int64) (*models.Venue, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(*models.Venue)
	return out, args.Error(1)
}

type mockReservationStore struct{ mock.Mock }

func (m *mockReservationStore) Create(ctx context.Context, r *models.Reservation) (*models.Reservation, error) {
	args := m.Called(ctx, r)
	out, _ := args.Get(0).(*models.Reservation)
	return out, args.Error(1)
}

func (m *mockReservationStore) HasOverlap(ctx context.Context, venueID int64, start, end time.Time) (bool, error) {
	args := m.Called(ctx, venueID, start, end)
	return args.Bool(0), args.Error(1)
}

func (m *mockReservationStore) DeleteByEvent(ctx context.Context, eventID int64) (int64, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).(int64), args.Error(1)
}

type mockNotificationStore struct{ mock.Mock }

func (m *mockNotificationStore) Create(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	args := m.Called(ctx, n)
	out, _ := args.Get(0).(*models.Notification)
	return out, args.Error(1)
}

func (m *mockNotificationStore) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockNotificationStore) MaterializeRecipients(ctx context.Context, notificationID int64, audience models.Audience) (int64, error) {
	args := m.Called(ctx, notificationID, audience)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockNotificationStore) MarkRead(ctx context.Context, notificationID, userID int64) (int64, error) {
	args := m.Called(ctx, notificationID, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockNotificationStore) DeleteByClub(ctx context.Context, clubID int64) (int64, int64, error) {
	args := m.Called(ctx, clubID)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

func (m *mockNotificationStore) RecipientsAmong(ctx context.Context, notificationID int64, userIDs []int64) ([]int64, error) {
	args := m.Called(ctx, notificationID, userIDs)
	out, _ := args.Get(0).([]int64)
	return out, args.Error(1)
}

func (m *mockNotificationStore) Inbox(ctx context.Context, userID int64, page, size int) ([]*models.InboxItem, int64, error) {
	args := m.Called(ctx, userID, page, size)
	out, _ := args.Get(0).([]*models.InboxItem)
	return out, args.Get(1).(int64), args.Error(2)
}

type mockMessageStore struct{ mock.Mock }

func (m *mockMessageStore) Create(ctx context.Context, msg *models.Message) (*models.Message, error) {
	args := m.Called(ctx, msg)
	out, _ := args.Get(0).(*models.Message)
	return out, args.Error(1)
}

func (m *mockMessageStore) ThreadExists(ctx context.Context, participantID int64) (bool, error) {
	args := m.Called(ctx, participantID)
	return args.Bool(0), args.Error(1)
}

func (m *mockMessageStore) LockThread(ctx context.Context, participantID int64) error {
	return m.Called(ctx, participantID).Error(0)
}

func (m *mockMessageStore) Thread(ctx context.Context, participantID int64) ([]*models.Message, error) {
	args := m.Called(ctx, participantID)
	out, _ := args.Get(0).([]*models.Message)
	return out, args.Error(1)
}

func (m *mockMessageStore) Threads(ctx context.Context) ([]*models.ThreadSummary, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]*models.ThreadSummary)
	return out, args.Error(1)
}

type mockImageStore struct{ mock.Mock }

func (m *mockImageStore) SaveFileWithPath(fileHeader *multipart.FileHeader, subPath string) (string, error) {
	args := m.Called(fileHeader, subPath)
	return args.String(0), args.Error(1)
}

func (m *mockImageStore) DeleteFile(fileURL string) error {
	return m.Called(fileURL).Error(0)
}

type mockLifecycle struct{ mock.Mock }

func (m *mockLifecycle) CreateClub(ctx context.Context, payload models.ClubCreation) (*models.Club, error) {
	args := m.Called(ctx, payload)
	out, _ := args.Get(0).(*models.Club)
	return out, args.Error(1)
}

func (m *mockLifecycle) CreateEvent(ctx context.Context, payload models.EventApproval) (*models.Event, error) {
	args := m.Called(ctx, payload)
	out, _ := args.Get(0).(*models.Event)
	return out, args.Error(1)
}

func (m *mockLifecycle) DeleteClub(ctx context.Context, clubID int64) (models.CascadeReport, error) {
	args := m.Called(ctx, clubID)
	return args.Get(0).(models.CascadeReport), args.Error(1)
}

func (m *mockLifecycle) DeleteEvent(ctx context.Context, eventID int64) (models.CascadeReport, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).(models.CascadeReport), args.Error(1)
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) Notify(ctx context.Context, actor auth.Actor, audience models.Audience, title, content string) (*models.Notification, error) {
	args := m.Called(ctx, actor, audience, title, content)
	out, _ := args.Get(0).(*models.Notification)
	return out, args.Error(1)
}

func (m *mockNotifier) NotifySystem(ctx context.Context, audience models.Audience, title, content string) (*models.Notification, error) {
	args := m.Called(ctx, audience, title, content)
	out, _ := args.Get(0).(*models.Notification)
	return out, args.Error(1)
}

func (m *mockNotifier) MarkRead(ctx context.Context, actor auth.Actor, notificationID, userID int64) error {
	return m.Called(ctx, actor, notificationID, userID).Error(0)
}

func (m *mockNotifier) Inbox(ctx context.Context, userID int64, page, size int) ([]*models.InboxItem, int64, error) {
	args := m.Called(ctx, userID, page, size)
	out, _ := args.Get(0).([]*models.InboxItem)
	return out, args.Get(1).(int64), args.Error(2)
}

type mockThreadCache struct{ mock.Mock }

func (m *mockThreadCache) Has(ctx context.Context, participantID int64) (bool, error) {
	args := m.Called(ctx, participantID)
	return args.Bool(0), args.Error(1)
}

func (m *mockThreadCache) Add(ctx context.Context, participantIDs ...int64) error {
	args := m.Called(ctx, participantIDs)
	return args.Error(0)
}
