package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID        int64        `json:"id" db:"id"`
	Email     string       `json:"email" db:"email"`
	Password  string       `json:"-" db:"password"`
	FirstName string       `json:"firstName" db:"first_name"`
	LastName  string       `json:"lastName" db:"last_name"`
	Category  UserCategory `json:"category" db:"category"`
	CreatedAt time.Time    `json:"createdAt" db:"created_at"`
}

// FullName joins first and last name
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// Venue is a bookable campus location
type Venue struct {
	ID       int64  `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	Capacity int    `json:"capacity" db:"capacity"`
}
