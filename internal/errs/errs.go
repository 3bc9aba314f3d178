// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package errs defines the coded errors shared by the holokit packages.
//
// Every constructor returns an oops error carrying one of the Code* values,
// so callers branch on the code rather than on message text.
package errs

import (
	"github.com/samber/oops"
)

// Error codes.
const (
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeInvalidState    = "INVALID_STATE"
	CodeUnhandled       = "UNHANDLED"
	CodeNotFound        = "NOT_FOUND"
	CodeStorage         = "STORAGE"
	CodeScript          = "SCRIPT"
)

// InvalidArgument reports a rejected input value.
func InvalidArgument(field string, value any, format string, args ...any) error {
	return oops.Code(CodeInvalidArgument).
		With("field", field).
		With("value", value).
		Errorf(format, args...)
}

// InvalidState reports an operation attempted from the wrong lifecycle state.
func InvalidState(operation, state string) error {
	return oops.Code(CodeInvalidState).
		With("operation", operation).
		With("state", state).
		Errorf("%s not allowed in state %s", operation, state)
}

// Unhandled reports a notification that had no handler to receive it.
func Unhandled(notification string) error {
	return oops.Code(CodeUnhandled).
		With("notification", notification).
		Errorf("no handler for %s", notification)
}

// NotFound reports a missing entity.
func NotFound(kind, id string) error {
	return oops.Code(CodeNotFound).
		With("kind", kind).
		With("id", id).
		Errorf("%s %s not found", kind, id)
}

// Storage wraps a persistence failure.
func Storage(operation string, cause error) error {
	return oops.Code(CodeStorage).
		With("operation", operation).
		Wrap(cause)
}

// Script wraps a failure raised by a sandboxed script.
func Script(name string, cause error) error {
	return oops.Code(CodeScript).
		In("script").
		With("script", name).
		Wrap(cause)
}

// HasCode reports whether err is an oops error carrying code.
func HasCode(err error, code string) bool {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return false
	}
	return oopsErr.Code() == code
}
