// Package porcherr defines the typed error taxonomy shared by the core
// service packages (authz, taskservice, pipelineservice) and the HTTP
// gateway that translates it to status codes.
//
// This generalizes the sentinel-error idiom used by internal/storage
// (ErrEntityNotFound, ErrEntityExists, ErrInternal) to the full set of
// error kinds the core can produce.
package porcherr

import (
	"errors"
	"fmt"
)

// Kind identifies the category of a porcherr.Error. The gateway maps each
// Kind to exactly one HTTP status code.
type Kind string

const (
	KindBadTokenFormat    Kind = "BadTokenFormat"
	KindUnknownToken      Kind = "UnknownToken"
	KindRevokedToken      Kind = "RevokedToken"
	KindRoleNotAllowed    Kind = "RoleNotAllowed"
	KindNoBoundPipeline   Kind = "NoBoundPipeline"
	KindPipelineMismatch  Kind = "PipelineMismatch"
	KindNotFound          Kind = "NotFound"
	KindConflict          Kind = "Conflict"
	KindMissingField      Kind = "MissingField"
	KindInvalidArgument   Kind = "InvalidArgument"
	KindTransientConflict Kind = "TransientConflict"
	KindInternal          Kind = "Internal"
)

// Error is a taxonomy-tagged error. Cause, when present, is preserved for
// %w unwrapping but never rendered to callers outside the process (in
// particular, the bearer token string must never reach Cause's message).
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an Error of the given kind with a message meant to be safe to
// surface to API callers.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an Error of the given kind around a lower-level cause. The
// cause is kept for logging/unwrapping but Message is what callers see.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf extracts the Kind from err if it is (or wraps) a *Error, otherwise
// KindInternal.
func KindOf(err error) Kind {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Kind
	}
	return KindInternal
}

// Is reports whether err is (or wraps) a *Error of the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
