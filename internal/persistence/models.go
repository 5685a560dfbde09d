package persistence

import "time"

// User represents an account in the calendar domain.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Event represents a dated calendar entry owned by a single user.
//
// Date carries only the calendar date (time part zero); Time carries only
// the time of day on the zero date. Both are timezone-free wall values.
type Event struct {
	ID          string
	OwnerID     string
	Title       string
	Description string
	Category    string
	Date        time.Time
	Time        time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Session represents an authentication session persisted for a user.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}
