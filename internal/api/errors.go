package api

import (
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/wtsi-npg/npg_porch_go/internal/porcherr"
)

// statusFor maps a porcherr.Kind to the HTTP status spec.md §7 assigns it.
func statusFor(kind porcherr.Kind) int {
	switch kind {
	case porcherr.KindBadTokenFormat, porcherr.KindUnknownToken, porcherr.KindRevokedToken,
		porcherr.KindRoleNotAllowed, porcherr.KindNoBoundPipeline, porcherr.KindPipelineMismatch:
		return http.StatusForbidden
	case porcherr.KindNotFound:
		return http.StatusNotFound
	case porcherr.KindConflict:
		return http.StatusConflict
	case porcherr.KindMissingField:
		return http.StatusBadRequest
	case porcherr.KindInvalidArgument:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// statusAndMessage extracts the HTTP status and a safe-to-surface message
// for err. The literal bearer token never appears in a porcherr.Error's
// Message (authz never puts it there), so surfacing Message directly is
// safe; Cause, which may carry driver internals, is never surfaced.
func statusAndMessage(err error) (int, string) {
	status := statusFor(porcherr.KindOf(err))

	message := err.Error()
	var perr *porcherr.Error
	if errors.As(err, &perr) {
		message = perr.Message
	}

	return status, message
}

// asHumaError translates a porcherr (or any error) into a huma.StatusError
// carrying the correct status code (spec.md §7).
func asHumaError(err error) error {
	status, message := statusAndMessage(err)
	return huma.NewError(status, message)
}
