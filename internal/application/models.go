package application

import "time"

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID   string
	Username string
}

// User represents an account exposed by the application services.
type User struct {
	ID        string
	Username  string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserCredentials models the authentication attributes persisted for a user.
type UserCredentials struct {
	User         User
	PasswordHash string
}

// Session represents an authenticated session issued to a user.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

// SignupParams captures the data required to register a new account.
type SignupParams struct {
	Username string
	Email    string
	Password string
}

// AuthenticateParams captures the data required to authenticate a user.
type AuthenticateParams struct {
	Email    string
	Password string
}

// AuthenticateResult captures the outcome of a successful authentication attempt.
type AuthenticateResult struct {
	User    User
	Session Session
}

// Event represents a calendar entry owned by a single user.
//
// Date holds only the calendar date; Time holds only the time of day on the
// zero date. Both are timezone-free wall clock values.
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

// StartsAt combines the event's date and time into a single instant.
func (e Event) StartsAt() time.Time {
	return time.Date(
		e.Date.Year(), e.Date.Month(), e.Date.Day(),
		e.Time.Hour(), e.Time.Minute(), 0, 0, time.UTC,
	)
}

// EventInput captures caller provided event fields. Date and Time arrive as
// the raw form strings and are parsed as 2006-01-02 and 15:04.
type EventInput struct {
	Title       string
	Description string
	Category    string
	Date        string
	Time        string
}

// CreateEventParams wraps the data required to create an event.
type CreateEventParams struct {
	Principal Principal
	Input     EventInput
}

// UpdateEventParams wraps the data required to update an existing event.
type UpdateEventParams struct {
	Principal Principal
	EventID   string
	Input     EventInput
}

// ListEventsParams wraps the data required to list the caller's events.
type ListEventsParams struct {
	Principal Principal
	Search    string
	Category  string
}

// FeedEntry is one element of the calendar widget's JSON feed.
type FeedEntry struct {
	Title       string `json:"title"`
	Start       string `json:"start"`
	Description string `json:"description"`
	Color       string `json:"color"`
}
