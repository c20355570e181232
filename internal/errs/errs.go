// Package errs defines the error shapes returned to API clients.
//
// Every error that reaches the HTTP layer is converted into an HTTPError so
// the admin UI, overlays and the Stream Deck plugin receive one consistent
// JSON structure with optional field-level errors.
package errs
