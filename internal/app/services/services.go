// Package services holds the business logic behind the HTTP controllers.
//
// Services depend on the small store interfaces below rather than on concrete
// repositories. Multi-step writes go through a txRunner; stores read the open
// transaction from the context, so nested service calls share one transaction.
package services

import (
	"context"
	"mime/multipart"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/pkg/events"
)

type txRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type userStore interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type clubStore interface {
	Create(ctx context.Context, c *models.Club) (*models.Club, error)
	GetByID(ctx context.Context, id int64) (*models.Club, error)
	LockByID(ctx context.Context, id int64) (*models.Club, error)
	Exists(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, page, size int) ([]*models.Club, int64, error)
	UpdateImage(ctx context.Context, id int64, image *string) error
	Delete(ctx context.Context, id int64) (int64, error)
	AddMember(ctx context.Context, userID, clubID int64) error
	EnsureMember(ctx context.Context, userID, clubID int64) error
	RemoveMember(ctx context.Context, userID, clubID int64) (int64, error)
	DeleteMemberships(ctx context.Context, clubID int64) (int64, error)
	Members(ctx context.Context, clubID int64, page, size int) ([]*models.ClubMember, int64, error)
}

type executiveStore interface {
	Upsert(ctx context.Context, userID, clubID int64, role *string) error
	LockByClub(ctx context.Context, clubID int64) ([]*models.Executive, error)
	Delete(ctx context.Context, userID, clubID int64) (int64, error)
	DeleteByClub(ctx context.Context, clubID int64) (int64, error)
}

type eventStore interface {
	Create(ctx context.Context, e *models.Event) (*models.Event, error)
	GetByID(ctx context.Context, id int64) (*models.Event, error)
	LockByID(ctx context.Context, id int64) (*models.Event, error)
	ListByClub(ctx context.Context, clubID int64) ([]*models.Event, error)
	LockIDsByClub(ctx context.Context, clubID int64) ([]int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
	AddRSVP(ctx context.Context, userID, eventID int64) error
	RemoveRSVP(ctx context.Context, userID, eventID int64) (int64, error)
	DeleteRSVPs(ctx context.Context, eventID int64) (int64, error)
}

type venueStore interface {
	LockByID(ctx context.Context, id int64) (*models.Venue, error)
}

type reservationStore interface {
	Create(ctx context.Context, r *models.Reservation) (*models.Reservation, error)
	HasOverlap(ctx context.Context, venueID int64, start, end time.Time) (bool, error)
	DeleteByEvent(ctx context.Context, eventID int64) (int64, error)
}

type requestStore interface {
	Create(ctx context.Context, r *models.Request) (*models.Request, error)
	GetByID(ctx context.Context, id int64) (*models.Request, error)
	TransitionFromPending(ctx context.Context, id int64, status models.RequestStatus, decidedBy int64, at time.Time) (*models.Request, bool, error)
	List(ctx context.Context, filter models.RequestFilter) ([]*models.Request, int64, error)
}

type notificationStore interface {
	Create(ctx context.Context, n *models.Notification) (*models.Notification, error)
	Delete(ctx context.Context, id int64) error
	MaterializeRecipients(ctx context.Context, notificationID int64, audience models.Audience) (int64, error)
	MarkRead(ctx context.Context, notificationID, userID int64) (int64, error)
	DeleteByClub(ctx context.Context, clubID int64) (int64, int64, error)
	Inbox(ctx context.Context, userID int64, page, size int) ([]*models.InboxItem, int64, error)
	RecipientsAmong(ctx context.Context, notificationID int64, userIDs []int64) ([]int64, error)
}

// livePusher delivers realtime frames to connected users
type livePusher interface {
	Online() []int64
	Push(userIDs []int64, eventType string, data interface{})
}

type messageStore interface {
	Create(ctx context.Context, m *models.Message) (*models.Message, error)
	ThreadExists(ctx context.Context, participantID int64) (bool, error)
	LockThread(ctx context.Context, participantID int64) error
	Thread(ctx context.Context, participantID int64) ([]*models.Message, error)
	Threads(ctx context.Context) ([]*models.ThreadSummary, error)
}

type imageStore interface {
	SaveFileWithPath(fileHeader *multipart.FileHeader, subPath string) (string, error)
	DeleteFile(fileURL string) error
}

// publishAll sends domain events after a commit. Delivery is best effort: the
// database is the source of truth, so failures are only logged.
func publishAll(ctx context.Context, p events.Publisher, log zerolog.Logger, evts ...events.Event) {
	for _, evt := range evts {
		if err := p.Publish(ctx, evt); err != nil {
			log.Warn().Err(err).Str("eventType", evt.Type).Int64("entityID", evt.EntityID).Msg("Failed to publish domain event")
		}
	}
}
