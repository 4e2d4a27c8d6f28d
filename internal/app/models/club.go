package models

import "time"

// Club represents a student club
type Club struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	ContactInfo string    `json:"contactInfo" db:"contact_info"`
	Image       *string   `json:"image,omitempty" db:"image"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// Membership links a user to a club
type Membership struct {
	UserID   int64     `json:"userId" db:"user_id"`
	ClubID   int64     `json:"clubId" db:"club_id"`
	JoinedAt time.Time `json:"joinedAt" db:"joined_at"`
}

// Executive is a club officer; Role may be unset
type Executive struct {
	UserID int64   `json:"userId" db:"user_id"`
	ClubID int64   `json:"clubId" db:"club_id"`
	Role   *string `json:"role,omitempty" db:"role"`
}

// IsPresident reports whether the executive holds the President role
func (e *Executive) IsPresident() bool {
	return e.Role != nil && *e.Role == PresidentRole
}

// ClubMember is a member of a club along with any executive role held
type ClubMember struct {
	User     User      `json:"user"`
	JoinedAt time.Time `json:"joinedAt"`
	Role     *string   `json:"role,omitempty"`
}
