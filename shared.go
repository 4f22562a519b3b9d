// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mockstream

import (
	"bytes"
	"io"
	"runtime"
	"sync"
	"time"

	"go.uber.org/atomic"
)

// SharedStream is a cloneable handle to one mutex-guarded stream. Clones
// share the scripted input, the captured output, and the WaitFor gate, so
// any handle can feed or inspect the stream from any goroutine.
//
// Each call holds the mutex for its own duration only: two concurrent
// writes land whole and in some order, but there is no atomicity across
// calls. Callers that need a cross-call ordering coordinate it themselves.
// A panic raised while the mutex is held propagates to the calling
// goroutine and fails the test; it is never swallowed.
type SharedStream struct {
	inner *sharedInner
}

type sharedInner struct {
	mu sync.Mutex
	st Stream

	// WaitFor gate. The armed flag is polled lock-free by readers so a
	// blocked read never starves the writer that will satisfy it; the
	// expected bytes are guarded by mu.
	gate   *atomic.Bool
	expect []byte
}

// NewShared returns a handle to a fresh, empty shared stream.
func NewShared(opts ...Option) *SharedStream {
	o := defaultOptions
	for _, fn := range opts {
		fn(&o)
	}
	return &SharedStream{inner: &sharedInner{
		st:   Stream{opts: o},
		gate: atomic.NewBool(false),
	}}
}

// Clone returns another handle to the same underlying stream. No data is
// copied: bytes pushed or written through one handle are visible through
// all of them.
func (s *SharedStream) Clone() *SharedStream {
	return &SharedStream{inner: s.inner}
}

// Read behaves like Stream.Read under the handle's mutex. While a WaitFor
// gate is armed it waits, polling per WithWaitDelay, until a write
// satisfies the gate; in Nonblock mode it returns (0, ErrWouldBlock)
// instead of waiting.
func (s *SharedStream) Read(p []byte) (int, error) {
	in := s.inner
	for in.gate.Load() {
		if !in.waitOnce() {
			return 0, ErrWouldBlock
		}
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.st.Read(p)
}

// waitOnce reports whether the caller should keep waiting.
func (in *sharedInner) waitOnce() bool {
	if in.st.opts.Nonblock {
		return false
	}
	if in.st.opts.WaitDelay <= 0 {
		// Cooperative yield so the goroutine that will satisfy the gate
		// gets scheduled.
		runtime.Gosched()
		return true
	}
	time.Sleep(in.st.opts.WaitDelay)
	return true
}

// Write appends p under the handle's mutex. When a WaitFor gate is armed
// and the captured output now contains the expected bytes, the gate clears
// and blocked readers proceed.
func (s *SharedStream) Write(p []byte) (int, error) {
	in := s.inner
	in.mu.Lock()
	defer in.mu.Unlock()
	n, err := in.st.Write(p)
	if in.gate.Load() && bytes.Contains(in.st.PeekBytesWritten(), in.expect) {
		in.expect = nil
		in.gate.Store(false)
	}
	return n, err
}

// Flush is a no-op, like Stream.Flush.
func (s *SharedStream) Flush() error {
	s.inner.mu.Lock()
	defer s.inner.mu.Unlock()
	return s.inner.st.Flush()
}

// PushBytesToRead queues a copy of p for all handles.
func (s *SharedStream) PushBytesToRead(p []byte) {
	s.inner.mu.Lock()
	defer s.inner.mu.Unlock()
	s.inner.st.PushBytesToRead(p)
}

// PushEOF marks the shared scripted input complete.
func (s *SharedStream) PushEOF() {
	s.inner.mu.Lock()
	defer s.inner.mu.Unlock()
	s.inner.st.PushEOF()
}

// PopBytesWritten drains the captured output shared by all handles.
func (s *SharedStream) PopBytesWritten() []byte {
	s.inner.mu.Lock()
	defer s.inner.mu.Unlock()
	return s.inner.st.PopBytesWritten()
}

// PeekBytesWritten returns a copy of the captured output. Unlike
// Stream.PeekBytesWritten it does not borrow the internal buffer: a
// borrowed slice would race with writes through other handles.
func (s *SharedStream) PeekBytesWritten() []byte {
	s.inner.mu.Lock()
	defer s.inner.mu.Unlock()
	return append([]byte(nil), s.inner.st.PeekBytesWritten()...)
}

// WriteTo drains the shared queued input into dst under the handle's
// mutex. It is read-path, so it waits on an armed WaitFor gate the same
// way Read does. dst must not be a handle to the same shared stream: its
// Write would deadlock on the held mutex.
func (s *SharedStream) WriteTo(dst io.Writer) (int64, error) {
	in := s.inner
	for in.gate.Load() {
		if !in.waitOnce() {
			return 0, ErrWouldBlock
		}
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.st.WriteTo(dst)
}

// ReadFrom reads src until io.EOF, capturing everything into the shared
// written-bytes buffer. Each chunk is written under its own mutex window,
// so writes from other handles may interleave between chunks and a chunk
// that completes a WaitFor expectation clears the gate.
func (s *SharedStream) ReadFrom(src io.Reader) (int64, error) {
	buf := make([]byte, 32*1024)
	var total int64
	for {
		n, err := src.Read(buf)
		if n > 0 {
			_, _ = s.Write(buf[:n]) // never fails
			total += int64(n)
		}
		if err != nil {
			if err == io.EOF {
				return total, nil
			}
			// Propagate semantic control-flow unchanged.
			return total, err
		}
		if n == 0 {
			// Guard against broken Readers that violate the io.Reader contract
			// by returning (0, nil) on a non-empty buffer.
			return total, io.ErrNoProgress
		}
	}
}

// WaitFor blocks until the captured output contains expected, arming a gate
// that also makes reads from every handle wait until then. Output that
// already contains expected leaves the gate unarmed, and an empty expected
// never arms. Only the read path is gated; writes, pushes, and pops proceed
// so a writer can satisfy the gate. In non-blocking mode WaitFor arms and
// returns immediately; reads report ErrWouldBlock until a write satisfies
// the gate.
func (s *SharedStream) WaitFor(expected []byte) {
	in := s.inner
	in.mu.Lock()
	if bytes.Contains(in.st.PeekBytesWritten(), expected) {
		in.st.opts.Logger.Debug().Int("n", len(expected)).Bool("armed", false).Msg("waitfor")
		in.mu.Unlock()
		return
	}
	in.expect = append([]byte(nil), expected...)
	in.gate.Store(true)
	in.st.opts.Logger.Debug().Int("n", len(expected)).Bool("armed", true).Msg("waitfor")
	in.mu.Unlock()

	for in.gate.Load() {
		if !in.waitOnce() {
			return
		}
	}
}
