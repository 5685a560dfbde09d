package main

import (
	"context"
	"errors"
	"time"

	"github.com/example/event-calendar/internal/application"
	"github.com/example/event-calendar/internal/persistence"
)

// mapPersistenceError translates persistence sentinels into the
// application layer's error vocabulary.
func mapPersistenceError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, persistence.ErrNotFound):
		return application.ErrNotFound
	case errors.Is(err, persistence.ErrDuplicate):
		return application.ErrAlreadyExists
	default:
		return err
	}
}

type userAccountsAdapter struct {
	repo persistence.UserRepository
}

func newUserAccountsAdapter(repo persistence.UserRepository) *userAccountsAdapter {
	return &userAccountsAdapter{repo: repo}
}

func (a *userAccountsAdapter) CreateUser(ctx context.Context, user application.User, passwordHash string) (application.User, error) {
	record := persistence.User{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: passwordHash,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
	if err := a.repo.CreateUser(ctx, record); err != nil {
		return application.User{}, mapPersistenceError(err)
	}
	stored, err := a.repo.GetUser(ctx, user.ID)
	if err != nil {
		return application.User{}, mapPersistenceError(err)
	}
	return toApplicationUser(stored), nil
}

func (a *userAccountsAdapter) GetUser(ctx context.Context, id string) (application.User, error) {
	stored, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return application.User{}, mapPersistenceError(err)
	}
	return toApplicationUser(stored), nil
}

func (a *userAccountsAdapter) GetUserCredentialsByEmail(ctx context.Context, email string) (application.UserCredentials, error) {
	stored, err := a.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return application.UserCredentials{}, mapPersistenceError(err)
	}
	return application.UserCredentials{
		User:         toApplicationUser(stored),
		PasswordHash: stored.PasswordHash,
	}, nil
}

type eventRepositoryAdapter struct {
	repo persistence.EventRepository
}

func newEventRepositoryAdapter(repo persistence.EventRepository) *eventRepositoryAdapter {
	return &eventRepositoryAdapter{repo: repo}
}

func (a *eventRepositoryAdapter) CreateEvent(ctx context.Context, event application.Event) (application.Event, error) {
	if err := a.repo.CreateEvent(ctx, toPersistenceEvent(event)); err != nil {
		return application.Event{}, mapPersistenceError(err)
	}
	stored, err := a.repo.GetEvent(ctx, event.ID)
	if err != nil {
		return application.Event{}, mapPersistenceError(err)
	}
	return toApplicationEvent(stored), nil
}

func (a *eventRepositoryAdapter) ListEventsForOwner(ctx context.Context, ownerID, search, category string) ([]application.Event, error) {
	records, err := a.repo.ListEventsForOwner(ctx, ownerID, persistence.EventFilter{
		Search:   search,
		Category: category,
	})
	if err != nil {
		return nil, mapPersistenceError(err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	events := make([]application.Event, 0, len(records))
	for _, record := range records {
		events = append(events, toApplicationEvent(record))
	}
	return events, nil
}

func (a *eventRepositoryAdapter) UpdateOwnedEvent(ctx context.Context, event application.Event) (application.Event, error) {
	if err := a.repo.UpdateOwnedEvent(ctx, toPersistenceEvent(event)); err != nil {
		return application.Event{}, mapPersistenceError(err)
	}
	stored, err := a.repo.GetEvent(ctx, event.ID)
	if err != nil {
		return application.Event{}, mapPersistenceError(err)
	}
	return toApplicationEvent(stored), nil
}

func (a *eventRepositoryAdapter) DeleteOwnedEvent(ctx context.Context, id, ownerID string) error {
	return mapPersistenceError(a.repo.DeleteOwnedEvent(ctx, id, ownerID))
}

type sessionRepositoryAdapter struct {
	repo persistence.SessionRepository
}

func newSessionRepositoryAdapter(repo persistence.SessionRepository) *sessionRepositoryAdapter {
	return &sessionRepositoryAdapter{repo: repo}
}

func (a *sessionRepositoryAdapter) CreateSession(ctx context.Context, session application.Session) (application.Session, error) {
	stored, err := a.repo.CreateSession(ctx, toPersistenceSession(session))
	if err != nil {
		return application.Session{}, mapPersistenceError(err)
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) GetSession(ctx context.Context, token string) (application.Session, error) {
	stored, err := a.repo.GetSession(ctx, token)
	if err != nil {
		return application.Session{}, mapPersistenceError(err)
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (application.Session, error) {
	stored, err := a.repo.RevokeSession(ctx, token, revokedAt)
	if err != nil {
		return application.Session{}, mapPersistenceError(err)
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	return mapPersistenceError(a.repo.DeleteExpiredSessions(ctx, reference))
}

func toApplicationUser(record persistence.User) application.User {
	return application.User{
		ID:        record.ID,
		Username:  record.Username,
		Email:     record.Email,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}

func toApplicationEvent(record persistence.Event) application.Event {
	return application.Event{
		ID:          record.ID,
		OwnerID:     record.OwnerID,
		Title:       record.Title,
		Description: record.Description,
		Category:    record.Category,
		Date:        record.Date,
		Time:        record.Time,
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
	}
}

func toPersistenceEvent(event application.Event) persistence.Event {
	return persistence.Event{
		ID:          event.ID,
		OwnerID:     event.OwnerID,
		Title:       event.Title,
		Description: event.Description,
		Category:    event.Category,
		Date:        event.Date,
		Time:        event.Time,
		CreatedAt:   event.CreatedAt,
		UpdatedAt:   event.UpdatedAt,
	}
}

func toApplicationSession(record persistence.Session) application.Session {
	return application.Session{
		ID:        record.ID,
		UserID:    record.UserID,
		Token:     record.Token,
		ExpiresAt: record.ExpiresAt,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
		RevokedAt: cloneTime(record.RevokedAt),
	}
}

func toPersistenceSession(session application.Session) persistence.Session {
	return persistence.Session{
		ID:        session.ID,
		UserID:    session.UserID,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
		RevokedAt: cloneTime(session.RevokedAt),
	}
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}
