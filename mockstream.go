// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package mockstream provides controllable in-memory byte streams for tests,
// exposed via io.Reader and io.Writer.
//
// Semantics and design:
//   - Scripted input: PushBytesToRead queues bytes that later Read calls
//     drain in FIFO order. An empty queue reads as io.EOF for that call only;
//     pushing more bytes makes subsequent reads succeed again.
//   - Captured output: Write appends to an in-memory buffer that tests
//     inspect with PeekBytesWritten or drain with PopBytesWritten. Writes
//     always succeed in full.
//   - Non-blocking first: with WithNonblock, iox.ErrWouldBlock and iox.ErrMore
//     are surfaced as control-flow signals (re-exposed as
//     mockstream.ErrWouldBlock / mockstream.ErrMore), so code written against
//     non-blocking transports can be driven without one. PushEOF turns "no
//     data yet" into a definitive end of input.
//   - io compatibility: Stream, SharedStream, and FailingStream implement the
//     standard io interfaces; Read honors io.Reader buffer semantics and
//     WriteTo honors io.Writer short-write contracts, so the mocks compose
//     with io.MultiReader, io.Copy, and iox.Copy.
//
// Stream is single-owner. SharedStream hands out cloneable handles to one
// shared stream for multi-goroutine tests. FailingStream injects a scripted
// number of failures before behaving as an exhausted stream. All operations
// are synchronous and complete immediately; there is no transport underneath.

package mockstream

import (
	"io"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/mockstream/internal/fifo"
)

// ReadWriteFlusher is the surface a mock stream presents to code under
// test: standard io.ReadWriter plus an explicit Flush.
type ReadWriteFlusher interface {
	io.ReadWriter
	Flush() error
}

// New returns an empty Stream.
func New(opts ...Option) *Stream {
	o := defaultOptions
	for _, fn := range opts {
		fn(&o)
	}
	return &Stream{opts: o}
}

// Stream is a single-owner in-memory byte stream: reads drain a scripted
// input queue and writes accumulate into a captured output buffer. It is
// not safe for concurrent use; NewShared wraps one behind a mutex.
type Stream struct {
	rq   fifo.Queue // scripted input, drained by Read
	wq   fifo.Queue // captured output, drained by PopBytesWritten
	eof  bool       // input script complete
	opts Options

	// reusable scratch buffer for the ReadFrom fast path
	rfbuf []byte
}

// Read copies up to len(p) queued bytes into p, consuming them. A
// zero-length p returns (0, nil) and consumes nothing.
//
// An empty queue reads as (0, io.EOF). The EOF is per-call, not terminal:
// PushBytesToRead makes subsequent reads succeed again.
//
// Non-blocking mode (WithNonblock): an empty queue reads as
// (0, ErrWouldBlock) until PushEOF and as (0, io.EOF) after; a read that
// leaves bytes queued returns (n, ErrMore).
func (s *Stream) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if s.rq.Len() == 0 {
		if s.opts.Nonblock && !s.eof {
			s.trace("read", 0, ErrWouldBlock)
			return 0, ErrWouldBlock
		}
		s.trace("read", 0, io.EOF)
		return 0, io.EOF
	}
	n := s.rq.Read(p)
	if s.opts.Nonblock && s.rq.Len() > 0 {
		s.trace("read", n, ErrMore)
		return n, ErrMore
	}
	s.trace("read", n, nil)
	return n, nil
}

// Write appends p to the captured output and returns (len(p), nil). Writes
// never fail and are never partial.
func (s *Stream) Write(p []byte) (int, error) {
	s.wq.Push(p)
	s.trace("write", len(p), nil)
	return len(p), nil
}

// Flush is a no-op: written bytes are already visible to PeekBytesWritten
// and PopBytesWritten.
func (s *Stream) Flush() error {
	s.trace("flush", 0, nil)
	return nil
}

// PushBytesToRead queues a copy of p behind any bytes Read has not yet
// consumed.
func (s *Stream) PushBytesToRead(p []byte) {
	s.rq.Push(p)
	s.trace("push", len(p), nil)
}

// PushEOF marks the scripted input complete. Queued bytes still drain
// first. In non-blocking mode an empty queue then reads as io.EOF instead
// of ErrWouldBlock; the default mode already reads io.EOF when empty.
func (s *Stream) PushEOF() {
	s.eof = true
	s.trace("eof", 0, nil)
}

// PopBytesWritten returns everything written since the previous call, in
// write order, and clears the captured output. The caller owns the
// returned slice. Nothing written yields an empty slice.
func (s *Stream) PopBytesWritten() []byte {
	b := s.wq.Take()
	s.trace("pop", len(b), nil)
	return b
}

// PeekBytesWritten returns everything written since the last
// PopBytesWritten without clearing it. The returned slice is valid until
// the next Write or PopBytesWritten.
func (s *Stream) PeekBytesWritten() []byte {
	return s.wq.Bytes()
}

// WriteTo implements io.WriterTo. It drains the queued input into dst and
// returns the number of bytes written, honoring the io.Writer short-write
// contract. Semantic control-flow errors from dst propagate unchanged with
// the progress count.
//
// Non-blocking mode: an empty queue before PushEOF returns
// (0, ErrWouldBlock) so iox.Copy reports "retry later" instead of a silent
// zero-byte success.
func (s *Stream) WriteTo(dst io.Writer) (int64, error) {
	if s.rq.Len() == 0 && s.opts.Nonblock && !s.eof {
		return 0, ErrWouldBlock
	}
	var total int64
	for s.rq.Len() > 0 {
		wn, we := dst.Write(s.rq.Bytes())
		if wn > 0 {
			s.rq.Advance(wn)
			total += int64(wn)
		}
		if we != nil {
			// Propagate semantic control-flow unchanged.
			return total, we
		}
		if wn == 0 {
			// Avoid spinning on pathological writers.
			return total, io.ErrShortWrite
		}
	}
	s.trace("writeto", int(total), nil)
	return total, nil
}

// ReadFrom implements io.ReaderFrom. It reads src until io.EOF, capturing
// everything into the written-bytes buffer as if each chunk had been passed
// to Write, and returns the number of bytes captured. Semantic control-flow
// errors from src propagate unchanged with the progress count.
func (s *Stream) ReadFrom(src io.Reader) (int64, error) {
	// Reuse a per-stream scratch buffer across calls; only the capture
	// buffer itself grows.
	if s.rfbuf == nil {
		s.rfbuf = make([]byte, 32*1024)
	}
	var total int64
	for {
		n, err := src.Read(s.rfbuf)
		if n > 0 {
			s.wq.Push(s.rfbuf[:n])
			total += int64(n)
		}
		if err != nil {
			if err == io.EOF {
				s.trace("readfrom", int(total), nil)
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

func (s *Stream) trace(op string, n int, err error) {
	s.opts.Logger.Debug().
		Int("n", n).
		Int("queued", s.rq.Len()).
		Int("captured", s.wq.Len()).
		Err(err).
		Msg(op)
}

// These are provided as package-level aliases so callers can reference the
// semantic control-flow errors without importing iox directly.
var (
	// ErrWouldBlock means “no further progress without waiting”.
	//
	// It is an expected, non-failure control-flow signal for non-blocking I/O.
	// Any returned byte count (n) still represents real progress.
	//
	// Caller action: stop the current attempt and retry later. A mock stream
	// returns it only in Nonblock mode, either because the input queue is
	// empty before PushEOF or because a WaitFor gate is armed.
	ErrWouldBlock = iox.ErrWouldBlock

	// ErrMore means “this completion is usable and more completions will follow”.
	//
	// It is not io.EOF and not “try later”. The operation remains active and
	// additional data is expected from the same ongoing operation. A mock
	// stream returns it in Nonblock mode when a read leaves bytes queued.
	//
	// Caller action: process the returned bytes, then call again to obtain
	// the next chunk.
	ErrMore = iox.ErrMore
)

// Compile-time conformance with the io interfaces the mocks substitute for,
// including the fast paths io.Copy and iox.Copy select.
var (
	_ io.ReadWriter    = (*Stream)(nil)
	_ io.WriterTo      = (*Stream)(nil)
	_ io.ReaderFrom    = (*Stream)(nil)
	_ ReadWriteFlusher = (*Stream)(nil)

	_ io.ReadWriter    = (*SharedStream)(nil)
	_ io.WriterTo      = (*SharedStream)(nil)
	_ io.ReaderFrom    = (*SharedStream)(nil)
	_ ReadWriteFlusher = (*SharedStream)(nil)

	_ io.ReadWriter    = (*FailingStream)(nil)
	_ ReadWriteFlusher = (*FailingStream)(nil)
)
