// Package http provides the web surface of the event calendar.
//
// The router exposes the following routes:
//   - GET /: protected list view with optional `search` and `category`
//     query filters.
//   - GET /calendar: protected calendar page shell; the embedded widget
//     loads its data from the JSON feed.
//   - GET /api/events: protected JSON array of
//     {"title","start","description","color"} objects covering every event
//     the caller owns, with no pagination.
//   - POST /add, POST /edit/{id}, POST /delete/{id}: protected form
//     submissions mutating the caller's events. Outcomes surface as a
//     flash message on the next rendered page.
//   - GET|POST /login, GET|POST /signup, GET /logout: public
//     authentication routes. Authenticated users visiting login or signup
//     are redirected home.
//
// Protected routes redirect anonymous requests to /login?next=<path> and
// the login handler honors the preserved destination. All forms embed a
// gorilla/csrf token; page templates are compiled into the binary.
package http
