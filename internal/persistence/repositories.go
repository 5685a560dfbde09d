package persistence

import "context"
import "time"

// UserRepository exposes the persistence operations for user accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
}

// EventFilter narrows owner-scoped event queries.
type EventFilter struct {
	Search   string
	Category string
}

// EventRepository stores calendar events. Update and delete are owner
// scoped: the owner check and the mutation happen in one statement so a
// concurrent delete cannot slip between check and write.
type EventRepository interface {
	CreateEvent(ctx context.Context, event Event) error
	GetEvent(ctx context.Context, id string) (Event, error)
	ListEventsForOwner(ctx context.Context, ownerID string, filter EventFilter) ([]Event, error)
	UpdateOwnedEvent(ctx context.Context, event Event) error
	DeleteOwnedEvent(ctx context.Context, id, ownerID string) error
}

// SessionRepository stores authentication session state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}
