// Package service contains the business logic.
//
// It sits between the handler and repository layers. Handlers pass it
// validated payloads; services talk to the repositories, keep the runtime
// overlay and quiz state, schedule delayed jobs and broadcast changes to the
// overlays through the hub.
//
// Services depend on the small interfaces in interfaces.go rather than on
// concrete repositories so they can be tested with in-memory fakes.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/deppfellow/obs-live-suite/internal/errs"
	"github.com/deppfellow/obs-live-suite/internal/hub"
	"github.com/deppfellow/obs-live-suite/internal/model"
	"github.com/deppfellow/obs-live-suite/internal/repository"
	"github.com/rs/zerolog"
)

// clock is replaced in tests.
type clock func() time.Time

// broadcastTimeout bounds a single hub publish.
const broadcastTimeout = 2 * time.Second

// publish broadcasts on the hub and logs failures. Overlay changes are
// applied in memory first; a failed broadcast must not fail the request.
func publish(b hub.Broadcaster, logger *zerolog.Logger, channel hub.Channel, typ string, payload any) {
	ctx, cancel := context.WithTimeout(context.Background(), broadcastTimeout)
	defer cancel()

	if err := b.Publish(ctx, channel, typ, payload); err != nil {
		logger.Error().
			Err(err).
			Str("channel", string(channel)).
			Str("type", typ).
			Msg("failed to broadcast")
	}
}

// listParams converts the bound query into repository paging.
func listParams(p *model.ListPayload) repository.ListParams {
	return repository.ListParams{Page: p.Page, Limit: p.Limit, Search: p.Search}.Normalize()
}

// conflict builds a 409 with a stable code.
func conflict(code, message string) error {
	return errs.NewConflictError(message, true, &code)
}

// badRequest builds a 400 with a stable code.
func badRequest(code, message string) error {
	return errs.NewBadRequestError(message, true, &code, nil, nil)
}

func notFound(code, message string) error {
	return errs.NewNotFoundError(message, true, &code)
}

// isHTTPError reports whether err already carries a client status.
func isHTTPError(err error) bool {
	var httpErr *errs.HTTPError
	return errors.As(err, &httpErr)
}
