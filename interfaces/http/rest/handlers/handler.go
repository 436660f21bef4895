// Package handlers serves the /api/v2 resources. Every handler reads the
// caller from the auth middleware and reports failures through the shared
// error handler.
package handlers

import (
	"errors"
	"net/http"

	"promptbuilder/pkg/auth"
	"promptbuilder/pkg/common"
	pkgerrors "promptbuilder/pkg/errors"
)

// currentUser returns the authenticated caller's id
func currentUser(r *http.Request) (string, error) {
	user, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		return "", pkgerrors.NewUnauthorizedError("authentication required")
	}
	return user.UserID, nil
}

// decodeBody parses a JSON body into v, mapping failures to validation errors
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}, maxBytes int64) error {
	err := common.ParseJSONBody(w, r, v, maxBytes)
	if err == nil {
		return nil
	}

	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, common.ErrEmptyBody):
		return pkgerrors.NewValidationError("request body is required")
	case errors.As(err, &tooLarge):
		return pkgerrors.NewValidationError("request body is too large").WithCode(pkgerrors.CodeDocumentTooLarge)
	default:
		return pkgerrors.NewValidationError("invalid request body").WithCause(err)
	}
}
