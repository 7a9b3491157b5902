// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package sim

import (
	"github.com/samber/oops"

	"github.com/holomush/grimhold/internal/world"
	"github.com/holomush/grimhold/pkg/errutil"
)

// Error codes for command failures.
const (
	CodeNotFound      = "NOT_FOUND"
	CodeInvalidArgs   = "INVALID_ARGS"
	CodeEffectUnknown = "EFFECT_UNKNOWN"
	CodeNotApplied    = "NOT_APPLIED"
	CodeAborted       = "ABORTED"
)

// ErrNotFound reports a handle that does not resolve.
func ErrNotFound(kind, id string) error {
	return oops.Code(CodeNotFound).
		With("kind", kind).
		With("id", id).
		Errorf("%s %s not found", kind, id)
}

// ErrInvalidArgs reports a malformed command.
func ErrInvalidArgs(op, usage string) error {
	return oops.Code(CodeInvalidArgs).
		With("operation", op).
		With("usage", usage).
		Errorf("invalid arguments")
}

// ErrEffectUnknown reports an effect name missing from the catalog.
func ErrEffectUnknown(name string) error {
	return oops.Code(CodeEffectUnknown).
		With("effect", name).
		Errorf("unknown effect %q", name)
}

// ErrNotApplied reports an effect that was refused, overwritten or locked.
func ErrNotApplied(op, effect string, host world.Host) error {
	return oops.Code(CodeNotApplied).
		With("operation", op).
		With("effect", effect).
		With("host", host.HostID().String()).
		Errorf("%s %s on %s had no effect", op, effect, host.HostName())
}

// ErrAborted reports a combat action that never happened.
func ErrAborted(op string) error {
	return oops.Code(CodeAborted).
		With("operation", op).
		Errorf("%s aborted", op)
}

// PlayerMessage extracts a player-facing message from an error.
func PlayerMessage(err error) string {
	if err == nil {
		return "Something went wrong. Try again."
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return "Something went wrong. Try again."
	}

	switch errutil.Code(err) {
	case CodeNotFound:
		return "You don't see that here."
	case CodeInvalidArgs:
		if usage, ok := oopsErr.Context()["usage"].(string); ok && usage != "" {
			return "Usage: " + usage
		}
		return "Invalid arguments."
	case CodeEffectUnknown:
		return "There is no such effect."
	case CodeNotApplied:
		return "Nothing happens."
	case CodeAborted:
		return "You can't do that right now."
	case "ENGINE_STOPPED", "ENGINE_TIMEOUT":
		return "The world is not responding. Try again."
	default:
		return "Something went wrong. Try again."
	}
}
