package dto

import (
	"time"

	"github.com/yigit/clubhub/internal/app/models"
)

const timeLayout = time.RFC3339

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// ClubResponse is the API shape of a club
type ClubResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	ContactInfo string  `json:"contactInfo"`
	Image       *string `json:"image,omitempty"`
	CreatedAt   string  `json:"createdAt"`
}

// FromClub converts a models.Club to its response
func FromClub(c *models.Club) ClubResponse {
	return ClubResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		ContactInfo: c.ContactInfo,
		Image:       c.Image,
		CreatedAt:   formatTime(c.CreatedAt),
	}
}

// FromClubs converts a slice of clubs
func FromClubs(cs []*models.Club) []ClubResponse {
	out := make([]ClubResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, FromClub(c))
	}
	return out
}

// ClubMemberResponse is a member with an optional executive role
type ClubMemberResponse struct {
	User     UserResponse `json:"user"`
	JoinedAt string       `json:"joinedAt"`
	Role     *string      `json:"role,omitempty"`
}

// FromClubMembers converts club members
func FromClubMembers(ms []*models.ClubMember) []ClubMemberResponse {
	out := make([]ClubMemberResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, ClubMemberResponse{
			User:     FromUser(&m.User),
			JoinedAt: formatTime(m.JoinedAt),
			Role:     m.Role,
		})
	}
	return out
}

// FromUser converts a user to the public user shape
func FromUser(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Category:  string(u.Category),
	}
}

// AddExecutiveRequest is the body of POST /clubs/:id/executives
type AddExecutiveRequest struct {
	UserID int64   `json:"userId" binding:"required,min=1"`
	Role   *string `json:"role" binding:"omitempty,max=64"`
}

// EventResponse is the API shape of an event
type EventResponse struct {
	ID          int64                `json:"id"`
	ClubID      int64                `json:"clubId"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Image       *string              `json:"image,omitempty"`
	CreatedAt   string               `json:"createdAt"`
	Reservation *ReservationResponse `json:"reservation,omitempty"`
	RSVPCount   int64                `json:"rsvpCount"`
}

// ReservationResponse is the API shape of a venue booking
type ReservationResponse struct {
	VenueID  int64  `json:"venueId"`
	StartsAt string `json:"startsAt"`
	EndsAt   string `json:"endsAt"`
}

// FromEvent converts a models.Event to its response
func FromEvent(e *models.Event) EventResponse {
	resp := EventResponse{
		ID:          e.ID,
		ClubID:      e.ClubID,
		Name:        e.Name,
		Description: e.Description,
		Image:       e.Image,
		CreatedAt:   formatTime(e.CreatedAt),
		RSVPCount:   e.RSVPCount,
	}
	if e.Reservation != nil {
		resp.Reservation = &ReservationResponse{
			VenueID:  e.Reservation.VenueID,
			StartsAt: formatTime(e.Reservation.StartsAt),
			EndsAt:   formatTime(e.Reservation.EndsAt),
		}
	}
	return resp
}

// FromEvents converts a slice of events
func FromEvents(es []*models.Event) []EventResponse {
	out := make([]EventResponse, 0, len(es))
	for _, e := range es {
		out = append(out, FromEvent(e))
	}
	return out
}
