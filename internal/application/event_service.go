package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"

	// DefaultCategory is assigned when the caller leaves the category blank.
	DefaultCategory = "Personal"
)

// categoryColors drives the calendar widget's event coloring. Categories
// outside this table fall back to defaultEventColor.
var categoryColors = map[string]string{
	"Personal": "#3498db",
	"Work":     "#9b59b6",
	"Urgent":   "#e74c3c",
	"Shopping": "#2ecc71",
}

const defaultEventColor = "#808080"

// CategoryColor returns the feed color for a category, falling back to a
// neutral gray for unrecognized ones.
func CategoryColor(category string) string {
	if color, ok := categoryColors[category]; ok {
		return color
	}
	return defaultEventColor
}

// EventRepository captures the persistence operations needed by the event
// service. UpdateOwnedEvent and DeleteOwnedEvent carry the ownership check
// into the mutation itself so the check and the write cannot be split.
type EventRepository interface {
	CreateEvent(ctx context.Context, event Event) (Event, error)
	ListEventsForOwner(ctx context.Context, ownerID, search, category string) ([]Event, error)
	UpdateOwnedEvent(ctx context.Context, event Event) (Event, error)
	DeleteOwnedEvent(ctx context.Context, id, ownerID string) error
}

// EventService orchestrates validation, ownership scoping, and persistence
// for calendar events. Every operation takes the caller's principal
// explicitly; there is no ambient current user.
type EventService struct {
	events      EventRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewEventService wires dependencies for the event service.
func NewEventService(events EventRepository, idGenerator func() string, now func() time.Time) *EventService {
	return NewEventServiceWithLogger(events, idGenerator, now, nil)
}

// NewEventServiceWithLogger constructs an EventService with a specified logger.
func NewEventServiceWithLogger(events EventRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *EventService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &EventService{
		events:      events,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *EventService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "EventService", operation, attrs...)
}

// List returns the caller's events ordered by date then time. Search
// narrows by case-insensitive title substring, category by exact match.
// Each call runs a fresh query; the result is never a live cursor.
func (s *EventService) List(ctx context.Context, params ListEventsParams) ([]Event, error) {
	if s == nil {
		return nil, fmt.Errorf("EventService is nil")
	}
	if params.Principal.UserID == "" {
		return nil, ErrUnauthorized
	}
	if s.events == nil {
		return nil, nil
	}

	events, err := s.events.ListEventsForOwner(ctx, params.Principal.UserID, strings.TrimSpace(params.Search), params.Category)
	if err != nil {
		s.loggerWith(ctx, "List", "owner_id", params.Principal.UserID).
			ErrorContext(ctx, "failed to list events", "error", err)
		return nil, err
	}

	return events, nil
}

// Create validates input and persists a new event owned by the caller.
func (s *EventService) Create(ctx context.Context, params CreateEventParams) (event Event, err error) {
	if s == nil {
		err = fmt.Errorf("EventService is nil")
		return
	}
	if params.Principal.UserID == "" {
		err = ErrUnauthorized
		return
	}

	logger := s.loggerWith(ctx, "Create", "owner_id", params.Principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create event", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("event_id", event.ID).InfoContext(ctx, "event created")
	}()

	normalized, vErr := normalizeEventInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	now := s.now()
	candidate := Event{
		ID:          s.idGenerator(),
		OwnerID:     params.Principal.UserID,
		Title:       normalized.title,
		Description: normalized.description,
		Category:    normalized.category,
		Date:        normalized.date,
		Time:        normalized.timeOfDay,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if s.events == nil {
		event = candidate
		return
	}

	event, err = s.events.CreateEvent(ctx, candidate)
	return
}

// Update overwrites the mutable fields of an event the caller owns. A
// missing event and an event owned by someone else both return ErrNotFound.
func (s *EventService) Update(ctx context.Context, params UpdateEventParams) (event Event, err error) {
	if s == nil {
		err = fmt.Errorf("EventService is nil")
		return
	}
	if params.Principal.UserID == "" {
		err = ErrUnauthorized
		return
	}
	if s.events == nil {
		err = fmt.Errorf("event repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "Update", "owner_id", params.Principal.UserID, "event_id", params.EventID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update event", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "event updated")
	}()

	normalized, vErr := normalizeEventInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	event, err = s.events.UpdateOwnedEvent(ctx, Event{
		ID:          params.EventID,
		OwnerID:     params.Principal.UserID,
		Title:       normalized.title,
		Description: normalized.description,
		Category:    normalized.category,
		Date:        normalized.date,
		Time:        normalized.timeOfDay,
		UpdatedAt:   s.now(),
	})
	if err != nil {
		event = Event{}
	}
	return
}

// Delete permanently removes an event the caller owns. The failure mode is
// identical for missing and non-owned events, and repeating a delete
// always reports ErrNotFound.
func (s *EventService) Delete(ctx context.Context, principal Principal, eventID string) error {
	if s == nil {
		return fmt.Errorf("EventService is nil")
	}
	if principal.UserID == "" {
		return ErrUnauthorized
	}
	if s.events == nil {
		return fmt.Errorf("event repository not configured")
	}

	logger := s.loggerWith(ctx, "Delete", "owner_id", principal.UserID, "event_id", eventID)

	if err := s.events.DeleteOwnedEvent(ctx, eventID, principal.UserID); err != nil {
		if errors.Is(err, ErrNotFound) {
			logger.ErrorContext(ctx, "event not found or not owned", "error", err, "error_kind", ErrorKind(err))
			return ErrNotFound
		}
		logger.ErrorContext(ctx, "failed to delete event", "error", err)
		return err
	}

	logger.InfoContext(ctx, "event deleted")
	return nil
}

// CalendarFeed projects the caller's full event list into the shape the
// calendar widget consumes. No filters apply.
func (s *EventService) CalendarFeed(ctx context.Context, principal Principal) ([]FeedEntry, error) {
	events, err := s.List(ctx, ListEventsParams{Principal: principal})
	if err != nil {
		return nil, err
	}

	feed := make([]FeedEntry, 0, len(events))
	for _, event := range events {
		feed = append(feed, FeedEntry{
			Title:       event.Title,
			Start:       event.StartsAt().Format("2006-01-02T15:04:05"),
			Description: event.Description,
			Color:       CategoryColor(event.Category),
		})
	}

	return feed, nil
}

type normalizedEventInput struct {
	title       string
	description string
	category    string
	date        time.Time
	timeOfDay   time.Time
}

func normalizeEventInput(input EventInput) (normalizedEventInput, *ValidationError) {
	vErr := &ValidationError{}
	normalized := normalizedEventInput{
		title:       strings.TrimSpace(input.Title),
		description: strings.TrimSpace(input.Description),
		category:    strings.TrimSpace(input.Category),
	}

	if normalized.title == "" {
		vErr.add("title", "title is required")
	}
	if normalized.category == "" {
		normalized.category = DefaultCategory
	}

	if dateStr := strings.TrimSpace(input.Date); dateStr == "" {
		vErr.add("date", "date is required")
	} else if parsed, err := time.Parse(dateLayout, dateStr); err != nil {
		vErr.add("date", "date must be in YYYY-MM-DD format")
	} else {
		normalized.date = parsed
	}

	if timeStr := strings.TrimSpace(input.Time); timeStr == "" {
		vErr.add("time", "time is required")
	} else if parsed, err := time.Parse(timeLayout, timeStr); err != nil {
		vErr.add("time", "time must be in HH:MM format")
	} else {
		normalized.timeOfDay = parsed
	}

	return normalized, vErr
}
