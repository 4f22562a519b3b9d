// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mockstream

import "errors"

var (
	// ErrInjected matches every failure produced by a FailingStream,
	// regardless of the kind and message it was scripted with. It lets
	// callers detect "this came from the failure script" without knowing
	// the script: errors.Is(err, ErrInjected).
	ErrInjected = errors.New("mockstream: injected failure")
)

// Error is the failure a FailingStream injects into Read and Write.
//
// Kind carries the categorical identity and is reachable through
// errors.Is/errors.As via Unwrap; Message carries the human-readable text.
// Either may be empty: a nil Kind failure still matches ErrInjected, and an
// empty Message falls back to the kind's text.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Kind != nil {
		return e.Kind.Error()
	}
	return ErrInjected.Error()
}

// Unwrap exposes Kind, so errors.Is(err, kind) matches the scripted kind.
func (e *Error) Unwrap() error { return e.Kind }

// Is reports whether target is ErrInjected. Kind matching is handled by
// Unwrap; this only adds the package-level identity.
func (e *Error) Is(target error) bool { return target == ErrInjected }
