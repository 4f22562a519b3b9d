// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mockstream

import (
	"io"
)

// FailingStream injects a scripted failure into Read and Write until a
// countdown is exhausted, then behaves as an exhausted stream.
//
// Semantics:
//   - One countdown is shared by Read and Write: each failing call of
//     either kind consumes one remaining failure.
//   - While failures remain, Read and Write return (0, *Error) carrying the
//     scripted kind and message. errors.Is on the result matches both the
//     kind and ErrInjected, which keeps an injected failure distinguishable
//     from io.EOF.
//   - Once exhausted, Read returns (0, io.EOF) and Write discards p and
//     returns (len(p), nil). Exhaustion is permanent.
//   - repeat == 0 constructs a stream that is exhausted from the start.
//   - repeat < 0 never exhausts: every call keeps failing.
//   - Flush always succeeds and does not consume the countdown.
//
// Composed behind io.MultiReader between healthy streams, a FailingStream
// yields its scripted failures and then lets the chain proceed past it,
// which is the shape of a retry-loop test.
type FailingStream struct {
	kind      error
	message   string
	remaining int
	opts      Options
}

// NewFailing returns a stream whose reads and writes fail with an Error
// built from kind and message until repeat failures have been consumed.
// A negative repeat fails forever.
func NewFailing(kind error, message string, repeat int, opts ...Option) *FailingStream {
	o := defaultOptions
	for _, fn := range opts {
		fn(&o)
	}
	return &FailingStream{kind: kind, message: message, remaining: repeat, opts: o}
}

// Clone returns an independent copy holding the current countdown. The
// copy fails and exhausts on its own; the original is unaffected.
func (f *FailingStream) Clone() *FailingStream {
	c := *f
	return &c
}

// Remaining reports how many failures are still scripted. Negative means
// unlimited.
func (f *FailingStream) Remaining() int { return f.remaining }

// Read consumes one scripted failure, or reports end of stream once the
// countdown is exhausted. The buffer is never filled.
func (f *FailingStream) Read(p []byte) (int, error) {
	if err := f.next(); err != nil {
		f.trace("read", 0, err)
		return 0, err
	}
	f.trace("read", 0, io.EOF)
	return 0, io.EOF
}

// Write consumes one scripted failure; once the countdown is exhausted it
// discards p and reports full success.
func (f *FailingStream) Write(p []byte) (int, error) {
	if err := f.next(); err != nil {
		f.trace("write", 0, err)
		return 0, err
	}
	f.trace("write", len(p), nil)
	return len(p), nil
}

// Flush never fails, whatever the countdown state.
func (f *FailingStream) Flush() error { return nil }

// next returns the next scripted failure, or nil once exhausted.
func (f *FailingStream) next() error {
	if f.remaining == 0 {
		return nil
	}
	if f.remaining > 0 {
		f.remaining--
	}
	return &Error{Kind: f.kind, Message: f.message}
}

func (f *FailingStream) trace(op string, n int, err error) {
	f.opts.Logger.Debug().
		Int("n", n).
		Int("remaining", f.remaining).
		Err(err).
		Msg(op)
}
