// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mockstream

import (
	"time"

	"github.com/rs/zerolog"
)

// Options configures mock stream behavior.
type Options struct {
	// Nonblock makes an empty read queue surface iox.ErrWouldBlock instead
	// of io.EOF (until PushEOF), and makes reads that leave bytes queued
	// return iox.ErrMore. It emulates a non-blocking transport for code
	// written against iox control-flow semantics.
	Nonblock bool

	// WaitDelay controls how a read blocked by SharedStream.WaitFor polls:
	//   - zero: yield (runtime.Gosched) between polls
	//   - positive: sleep for the duration between polls
	// In Nonblock mode a gated read returns ErrWouldBlock instead of polling.
	WaitDelay time.Duration

	// Logger receives one debug event per operation (reads, writes, pushes,
	// pops, gate arming). Useful when a test scripted against the stream
	// fails and the call sequence is in question.
	Logger zerolog.Logger
}

var defaultOptions = Options{
	Nonblock:  false,
	WaitDelay: 0, // default: yield
	Logger:    zerolog.Nop(),
}

type Option func(*Options)

// WithNonblock makes the stream emulate a non-blocking transport: empty
// reads return iox.ErrWouldBlock until PushEOF and partial drains return
// iox.ErrMore.
func WithNonblock() Option {
	return func(o *Options) { o.Nonblock = true }
}

// WithBlock restores the default blocking emulation (empty reads return
// io.EOF, gated reads poll).
func WithBlock() Option {
	return func(o *Options) { o.Nonblock = false }
}

// WithWaitDelay sets the poll interval used while a WaitFor gate is armed.
func WithWaitDelay(d time.Duration) Option {
	return func(o *Options) { o.WaitDelay = d }
}

// WithLogger attaches a logger that traces every operation at debug level.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}
