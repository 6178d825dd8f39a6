package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/domain"
)

// errNoActor means a protected handler ran without the auth middleware.
var errNoActor = errors.New("no authenticated actor in request context")

// dateLayouts are the accepted forms of a due date.
var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"}

// requireActor returns the authenticated actor or writes a 401.
func requireActor(w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	actor, ok := shared.ActorFromContext(r.Context())
	if !ok || actor.ID == uuid.Nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Not authorized", errNoActor)
		return domain.Actor{}, false
	}
	return actor, true
}

// getPathUUID parses the named chi path parameter as a UUID.
func getPathUUID(r *http.Request, param string) (uuid.UUID, error) {
	raw := chi.URLParam(r, param)
	if raw == "" {
		return uuid.Nil, domain.NewValidationError(param, "is required", domain.ErrInvalidID)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(param, "has invalid format", domain.ErrInvalidID)
	}
	return id, nil
}

// parseDate accepts RFC 3339 timestamps or plain dates, returned in UTC.
func parseDate(field, raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, domain.NewValidationError(field, "must be a date (YYYY-MM-DD or RFC 3339)", nil)
}

// decodeAndValidate decodes the JSON body into v and runs its validation tags.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := shared.DecodeJSON(w, r, v); err != nil {
		HandleAPIError(w, r, err)
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		HandleAPIError(w, r, err)
		return false
	}
	return true
}

// HandleAPIError writes the status and safe message for err and logs the
// redacted detail.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)
	var opts []shared.ResponseOption
	if status == http.StatusForbidden || status == http.StatusUnauthorized {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err, opts...)
}
