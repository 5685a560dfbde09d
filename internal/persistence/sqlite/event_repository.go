package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/event-calendar/internal/persistence"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// EventRepository implements persistence.EventRepository using SQLite.
type EventRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewEventRepository creates a new SQLite event repository.
func NewEventRepository(pool *ConnectionPool) *EventRepository {
	return &EventRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateEvent inserts a new event into the database.
func (r *EventRepository) CreateEvent(ctx context.Context, event persistence.Event) error {
	if event.ID == "" || event.OwnerID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	if event.UpdatedAt.IsZero() {
		event.UpdatedAt = event.CreatedAt
	}

	query := `
		INSERT INTO events (id, owner_id, title, description, category, event_date, event_time, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		event.ID,
		event.OwnerID,
		event.Title,
		event.Description,
		event.Category,
		event.Date.Format(dateLayout),
		event.Time.Format(timeLayout),
		event.CreatedAt.Format(time.RFC3339),
		event.UpdatedAt.Format(time.RFC3339),
	)

	if err != nil {
		return r.mapper.MapError(err)
	}

	return nil
}

// GetEvent retrieves an event by ID regardless of owner. Callers enforcing
// ownership should prefer the owner-scoped operations.
func (r *EventRepository) GetEvent(ctx context.Context, id string) (persistence.Event, error) {
	if id == "" {
		return persistence.Event{}, persistence.ErrNotFound
	}

	query := `
		SELECT id, owner_id, title, description, category, event_date, event_time, created_at, updated_at
		FROM events
		WHERE id = ?
	`

	row := r.helper.QueryRow(ctx, query, id)

	event, err := scanEvent(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Event{}, persistence.ErrNotFound
		}
		return persistence.Event{}, r.mapper.MapError(err)
	}

	return event, nil
}

// ListEventsForOwner returns the owner's events ordered by date then time.
// The search filter matches the title case-insensitively as a substring;
// the category filter matches exactly. Equal date+time rows keep storage
// order: there is deliberately no tertiary sort key.
func (r *EventRepository) ListEventsForOwner(ctx context.Context, ownerID string, filter persistence.EventFilter) ([]persistence.Event, error) {
	if ownerID == "" {
		return nil, nil
	}

	query := `
		SELECT id, owner_id, title, description, category, event_date, event_time, created_at, updated_at
		FROM events
		WHERE owner_id = ?
	`
	args := []any{ownerID}

	if search := strings.TrimSpace(filter.Search); search != "" {
		query += ` AND title LIKE ? ESCAPE '\'`
		args = append(args, "%"+escapeLike(search)+"%")
	}
	if filter.Category != "" {
		query += ` AND category = ?`
		args = append(args, filter.Category)
	}

	query += ` ORDER BY event_date ASC, event_time ASC`

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var events []persistence.Event
	for rows.Next() {
		event, err := scanEvent(rows.Scan)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return events, nil
}

// UpdateOwnedEvent overwrites the mutable fields of an event. The owner
// check is part of the UPDATE's WHERE clause, so a row owned by someone
// else and a missing row are indistinguishable: both return ErrNotFound.
func (r *EventRepository) UpdateOwnedEvent(ctx context.Context, event persistence.Event) error {
	if event.ID == "" || event.OwnerID == "" {
		return persistence.ErrNotFound
	}

	event.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE events
		SET title = ?, description = ?, category = ?, event_date = ?, event_time = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?
	`

	result, err := r.helper.Exec(ctx, query,
		event.Title,
		event.Description,
		event.Category,
		event.Date.Format(dateLayout),
		event.Time.Format(timeLayout),
		event.UpdatedAt.Format(time.RFC3339),
		event.ID,
		event.OwnerID,
	)

	if err != nil {
		return r.mapper.MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}

	return nil
}

// DeleteOwnedEvent removes an event owned by ownerID. Missing and
// non-owned rows both return ErrNotFound.
func (r *EventRepository) DeleteOwnedEvent(ctx context.Context, id, ownerID string) error {
	if id == "" || ownerID == "" {
		return persistence.ErrNotFound
	}

	result, err := r.helper.Exec(ctx, `DELETE FROM events WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return r.mapper.MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}

	return nil
}

func scanEvent(scan func(dest ...any) error) (persistence.Event, error) {
	var event persistence.Event
	var dateStr, timeStr, createdAtStr, updatedAtStr string

	err := scan(
		&event.ID,
		&event.OwnerID,
		&event.Title,
		&event.Description,
		&event.Category,
		&dateStr,
		&timeStr,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.Event{}, err
	}

	if event.Date, err = time.Parse(dateLayout, dateStr); err != nil {
		return persistence.Event{}, fmt.Errorf("failed to parse event_date: %w", err)
	}
	if event.Time, err = time.Parse(timeLayout, timeStr); err != nil {
		return persistence.Event{}, fmt.Errorf("failed to parse event_time: %w", err)
	}
	if event.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return persistence.Event{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if event.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
		return persistence.Event{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return event, nil
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
