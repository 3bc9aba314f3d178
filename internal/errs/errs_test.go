// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package errs_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/holokit/internal/errs"
)

func TestConstructors_Codes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"invalid argument", errs.InvalidArgument("amount", -1, "amount must be non-negative"), errs.CodeInvalidArgument},
		{"invalid state", errs.InvalidState("bind", "bound"), errs.CodeInvalidState},
		{"unhandled", errs.Unhandled("achievement.achieved"), errs.CodeUnhandled},
		{"not found", errs.NotFound("save game", "abc"), errs.CodeNotFound},
		{"storage", errs.Storage("save", errors.New("disk full")), errs.CodeStorage},
		{"script", errs.Script("first-blood", errors.New("boom")), errs.CodeScript},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs.AssertCode(t, tt.err, tt.code)
			assert.True(t, errs.HasCode(tt.err, tt.code))
		})
	}
}

func TestInvalidState_Context(t *testing.T) {
	err := errs.InvalidState("unbind", "unbound")
	errs.AssertContext(t, err, "operation", "unbind")
	errs.AssertContext(t, err, "state", "unbound")
	assert.Contains(t, err.Error(), "unbind not allowed in state unbound")
}

func TestStorage_Unwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := errs.Storage("load", cause)
	assert.ErrorIs(t, err, cause)
}

func TestHasCode_StandardError(t *testing.T) {
	assert.False(t, errs.HasCode(errors.New("plain"), errs.CodeStorage))
	assert.False(t, errs.HasCode(nil, errs.CodeStorage))
}

func TestLogError_WithOopsError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	err := oops.Code("TEST_ERROR").
		With("key", "value").
		Hint("try again").
		Errorf("something failed")

	errs.LogError(logger, "operation failed", err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "operation failed", entry["msg"])
	assert.Equal(t, "TEST_ERROR", entry["code"])
	assert.Equal(t, "try again", entry["hint"])
}

func TestLogError_WithStandardError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	errs.LogError(logger, "operation failed", errors.New("standard error"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Contains(t, entry["error"], "standard error")
	assert.NotContains(t, entry, "code")
}
