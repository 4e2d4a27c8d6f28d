package models

import "time"

// Notification is a message broadcast to a snapshot of recipients
type Notification struct {
	ID             int64     `json:"id" db:"id"`
	SenderID       *int64    `json:"senderId,omitempty" db:"sender_id"`
	ClubID         *int64    `json:"clubId,omitempty" db:"club_id"`
	Title          string    `json:"title" db:"title"`
	Content        string    `json:"content" db:"content"`
	PostedAt       time.Time `json:"postedAt" db:"posted_at"`
	RecipientCount int64     `json:"recipientCount"`
}

// NotificationRecipient is one delivery of a notification
type NotificationRecipient struct {
	NotificationID int64 `json:"notificationId" db:"notification_id"`
	UserID         int64 `json:"userId" db:"user_id"`
	IsRead         bool  `json:"isRead" db:"is_read"`
}

// InboxItem is a notification as seen by one recipient
type InboxItem struct {
	Notification
	IsRead bool `json:"isRead"`
}

// Audience selects who receives a notification. Resolution happens at send
// time; later joins do not receive earlier notifications.
type Audience interface {
	isAudience()
}

// AllStudents targets every user in the STUDENT category
type AllStudents struct{}

// ClubMembers targets every member of one club
type ClubMembers struct {
	ClubID int64
}

// ExplicitList targets the given users
type ExplicitList struct {
	UserIDs []int64
}

// AllSU targets every student union user
type AllSU struct{}

// ClubExecutives targets the executives of one club
type ClubExecutives struct {
	ClubID int64
}

func (AllStudents) isAudience()    {}
func (ClubMembers) isAudience()    {}
func (ExplicitList) isAudience()   {}
func (AllSU) isAudience()          {}
func (ClubExecutives) isAudience() {}

// Dedup returns the ids without duplicates or non-positive values, order preserved
func (l ExplicitList) Dedup() []int64 {
	seen := make(map[int64]struct{}, len(l.UserIDs))
	out := make([]int64, 0, len(l.UserIDs))
	for _, id := range l.UserIDs {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
