package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/csrf"

	"github.com/example/event-calendar/internal/application"
)

type eventService interface {
	List(ctx context.Context, params application.ListEventsParams) ([]application.Event, error)
	Create(ctx context.Context, params application.CreateEventParams) (application.Event, error)
	Update(ctx context.Context, params application.UpdateEventParams) (application.Event, error)
	Delete(ctx context.Context, principal application.Principal, eventID string) error
	CalendarFeed(ctx context.Context, principal application.Principal) ([]application.FeedEntry, error)
}

// EventHandler serves the event list, calendar page, JSON feed, and the
// add/edit/delete form submissions.
type EventHandler struct {
	service  eventService
	renderer *renderer
	logger   *slog.Logger
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(service eventService, renderer *renderer, logger *slog.Logger) *EventHandler {
	base := defaultLogger(logger)
	return &EventHandler{service: service, renderer: renderer, logger: base}
}

func (h *EventHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "EventHandler", operation, attrs...)
}

// eventView is the template-facing projection of an event. Date and Time
// are preformatted so the same values feed both display and form inputs.
type eventView struct {
	ID          string
	Title       string
	Description string
	Category    string
	Date        string
	Time        string
}

// knownCategories populates the category selects. The category set is open;
// these are only the suggested values.
var knownCategories = []string{"Personal", "Work", "Urgent", "Shopping"}

type indexData struct {
	Events     []eventView
	Search     string
	Category   string
	Categories []string
}

// Index renders the list view, honoring the search and category filters.
func (h *EventHandler) Index(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		redirectToLogin(w, r)
		return
	}

	search := r.URL.Query().Get("search")
	category := r.URL.Query().Get("category")

	events, err := h.service.List(r.Context(), application.ListEventsParams{
		Principal: principal,
		Search:    search,
		Category:  category,
	})
	if err != nil {
		h.log(r.Context(), "Index").ErrorContext(r.Context(), "failed to list events", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	views := make([]eventView, 0, len(events))
	for _, event := range events {
		views = append(views, eventView{
			ID:          event.ID,
			Title:       event.Title,
			Description: event.Description,
			Category:    event.Category,
			Date:        event.Date.Format("2006-01-02"),
			Time:        event.Time.Format("15:04"),
		})
	}

	h.renderer.renderPage(w, r, http.StatusOK, "index.html", pageData{
		Title:     "My Events",
		CSRFField: csrf.TemplateField(r),
		Data: indexData{
			Events:     views,
			Search:     search,
			Category:   category,
			Categories: knownCategories,
		},
	})
}

// CalendarPage renders the calendar shell; the widget loads its events
// from the JSON feed.
func (h *EventHandler) CalendarPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := PrincipalFromContext(r.Context()); !ok {
		redirectToLogin(w, r)
		return
	}

	h.renderer.renderPage(w, r, http.StatusOK, "calendar.html", pageData{
		Title:     "Calendar",
		CSRFField: csrf.TemplateField(r),
	})
}

// APIEvents returns the caller's events as a plain JSON array for the
// calendar widget. All owned events are returned in one response.
func (h *EventHandler) APIEvents(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		redirectToLogin(w, r)
		return
	}

	feed, err := h.service.CalendarFeed(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "APIEvents").ErrorContext(r.Context(), "failed to build calendar feed", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.renderer.writeJSON(r.Context(), w, http.StatusOK, feed)
}

// Add handles the add-event form submission.
func (h *EventHandler) Add(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		redirectToLogin(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	event, err := h.service.Create(r.Context(), application.CreateEventParams{
		Principal: principal,
		Input:     eventInputFromForm(r),
	})
	if err != nil {
		h.log(r.Context(), "Add").InfoContext(r.Context(), "event creation rejected", "error_kind", application.ErrorKind(err))
		setFlash(w, "danger", flashMessageFor(err))
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	setFlash(w, "success", "Event '"+event.Title+"' added!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Edit handles the edit-event form submission.
func (h *EventHandler) Edit(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		redirectToLogin(w, r)
		return
	}

	eventID, ok := EventIDFromContext(r.Context())
	if !ok || eventID == "" {
		http.NotFound(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	event, err := h.service.Update(r.Context(), application.UpdateEventParams{
		Principal: principal,
		EventID:   eventID,
		Input:     eventInputFromForm(r),
	})
	if err != nil {
		h.log(r.Context(), "Edit", "event_id", eventID).
			InfoContext(r.Context(), "event update rejected", "error_kind", application.ErrorKind(err))
		setFlash(w, "danger", flashMessageFor(err))
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	setFlash(w, "success", "Event '"+event.Title+"' updated!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Delete handles the delete-event form submission.
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		redirectToLogin(w, r)
		return
	}

	eventID, ok := EventIDFromContext(r.Context())
	if !ok || eventID == "" {
		http.NotFound(w, r)
		return
	}

	if err := h.service.Delete(r.Context(), principal, eventID); err != nil {
		h.log(r.Context(), "Delete", "event_id", eventID).
			InfoContext(r.Context(), "event deletion rejected", "error_kind", application.ErrorKind(err))
		setFlash(w, "danger", flashMessageFor(err))
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	setFlash(w, "success", "Event deleted.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func eventInputFromForm(r *http.Request) application.EventInput {
	return application.EventInput{
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		Category:    r.PostFormValue("category"),
		Date:        r.PostFormValue("date"),
		Time:        r.PostFormValue("time"),
	}
}
