package services

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yigit/clubhub/internal/app/auth"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
	"github.com/yigit/clubhub/internal/pkg/cache"
)

type messageFixture struct {
	messages *mockMessageStore
	users    *mockUserStore
	notifier *mockNotifier
	cache    *mockThreadCache
}

func (f *messageFixture) service(withCache bool) MessageService {
	var threads cache.ThreadCache
	if withCache {
		threads = f.cache
	}
	return NewMessageService(&passthroughTx{}, f.messages, f.users, f.notifier, threads, auth.NewGate(), zerolog.Nop())
}

func newMessageFixture() *messageFixture {
	f := &messageFixture{
		messages: &mockMessageStore{},
		users:    &mockUserStore{},
		notifier: &mockNotifier{},
		cache:    &mockThreadCache{},
	}
	f.users.On("GetByID", mock.Anything, int64(5)).
		Return(&models.User{ID: 5, FirstName: "Ada", LastName: "Lovelace", Category: models.CategoryStudent}, nil)
	f.messages.On("LockThread", mock.Anything, int64(5)).Return(nil).Maybe()
	f.messages.On("Create", mock.Anything, mock.Anything).Return(&models.Message{ID: 1, ParticipantID: 5}, nil)
	return f
}

func TestSend_FirstMessageAlertsSU(t *testing.T) {
	f := newMessageFixture()
	f.cache.On("Has", mock.Anything, int64(5)).Return(false, nil)
	f.messages.On("ThreadExists", mock.Anything, int64(5)).Return(false, nil)
	f.notifier.On("NotifySystem", mock.Anything, models.AllSU{}, "New message thread", mock.Anything).
		Return(&models.Notification{ID: 3}, nil).Once()
	f.cache.On("Add", mock.Anything, []int64{5}).Return(nil)

	_, err := f.service(true).Send(context.Background(), studentActor(5, nil), 5, "Hello SU")
	require.NoError(t, err)
	f.notifier.AssertExpectations(t)
	f.cache.AssertExpectations(t)
}

func TestSend_CacheHitSkipsDatabaseAndAlert(t *testing.T) {
	f := newMessageFixture()
	f.cache.On("Has", mock.Anything, int64(5)).Return(true, nil)

	_, err := f.service(true).Send(context.Background(), studentActor(5, nil), 5, "Again")
	require.NoError(t, err)
	f.messages.AssertNotCalled(t, "LockThread", mock.Anything, mock.Anything)
	f.messages.AssertNotCalled(t, "ThreadExists", mock.Anything, mock.Anything)
	f.notifier.AssertNotCalled(t, "NotifySystem", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSend_ThreadLockedBeforeExistenceCheck(t *testing.T) {
	f := newMessageFixture()
	f.messages.On("ThreadExists", mock.Anything, int64(5)).Return(true, nil)

	_, err := f.service(false).Send(context.Background(), studentActor(5, nil), 5, "Second")
	require.NoError(t, err)

	var order []string
	for _, c := range f.messages.Calls {
		order = append(order, c.Method)
	}
	assert.Equal(t, []string{"LockThread", "ThreadExists", "Create"}, order)
	f.notifier.AssertNotCalled(t, "NotifySystem", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSend_LockFailureAbortsSend(t *testing.T) {
	f := &messageFixture{messages: &mockMessageStore{}, users: &mockUserStore{}, notifier: &mockNotifier{}}
	f.users.On("GetByID", mock.Anything, int64(5)).
		Return(&models.User{ID: 5, FirstName: "Ada", LastName: "Lovelace", Category: models.CategoryStudent}, nil)
	f.messages.On("LockThread", mock.Anything, int64(5)).Return(errors.New("lock timeout"))

	_, err := f.service(false).Send(context.Background(), studentActor(5, nil), 5, "Hello")
	require.Error(t, err)
	f.messages.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSend_CacheErrorFallsBackToDatabase(t *testing.T) {
	f := newMessageFixture()
	f.cache.On("Has", mock.Anything, int64(5)).Return(false, errors.New("redis down"))
	f.messages.On("ThreadExists", mock.Anything, int64(5)).Return(true, nil)

	_, err := f.service(true).Send(context.Background(), studentActor(5, nil), 5, "Still here")
	require.NoError(t, err)
	f.messages.AssertCalled(t, "ThreadExists", mock.Anything, int64(5))
}

func TestSend_WithoutCache(t *testing.T) {
	f := newMessageFixture()
	f.messages.On("ThreadExists", mock.Anything, int64(5)).Return(false, nil)

	// an SU opening a thread does not alert the SU
	_, err := f.service(false).Send(context.Background(), suActor(1), 5, "We saw your request")
	require.NoError(t, err)
	f.notifier.AssertNotCalled(t, "NotifySystem", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSend_Rejections(t *testing.T) {
	f := newMessageFixture()
	svc := f.service(false)

	_, err := svc.Send(context.Background(), studentActor(6, nil), 5, "peeking")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = svc.Send(context.Background(), studentActor(5, nil), 5, "   ")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestThreads_SUOnly(t *testing.T) {
	f := newMessageFixture()
	f.messages.On("Threads", mock.Anything).Return([]*models.ThreadSummary{{ParticipantID: 5, MessageCount: 2}}, nil)
	svc := f.service(false)

	_, err := svc.Threads(context.Background(), studentActor(5, nil))
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	threads, err := svc.Threads(context.Background(), suActor(1))
	require.NoError(t, err)
	assert.Len(t, threads, 1)
}
