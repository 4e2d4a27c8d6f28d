package models

import "time"

// Event is a club activity
type Event struct {
	ID          int64     `json:"id" db:"id"`
	ClubID      int64     `json:"clubId" db:"club_id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Image       *string   `json:"image,omitempty" db:"image"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`

	Reservation *Reservation `json:"reservation,omitempty"`
	RSVPCount   int64        `json:"rsvpCount"`
}

// Reservation books a venue for an event
type Reservation struct {
	ID       int64     `json:"id" db:"id"`
	EventID  int64     `json:"eventId" db:"event_id"`
	VenueID  int64     `json:"venueId" db:"venue_id"`
	StartsAt time.Time `json:"startsAt" db:"starts_at"`
	EndsAt   time.Time `json:"endsAt" db:"ends_at"`
}

// RSVP records a user's intent to attend an event
type RSVP struct {
	UserID    int64     `json:"userId" db:"user_id"`
	EventID   int64     `json:"eventId" db:"event_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// CascadeReport counts the rows removed by a cascading delete
type CascadeReport struct {
	Events                 int64 `json:"events"`
	Reservations           int64 `json:"reservations"`
	RSVPs                  int64 `json:"rsvps"`
	Notifications          int64 `json:"notifications"`
	NotificationRecipients int64 `json:"notificationRecipients"`
	Memberships            int64 `json:"memberships"`
	Executives             int64 `json:"executives"`
}

// Add accumulates another report into r
func (r *CascadeReport) Add(o CascadeReport) {
	r.Events += o.Events
	r.Reservations += o.Reservations
	r.RSVPs += o.RSVPs
	r.Notifications += o.Notifications
	r.NotificationRecipients += o.NotificationRecipients
	r.Memberships += o.Memberships
	r.Executives += o.Executives
}
