// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package fifo provides a growable byte queue consumed from the front.
//
// The queue is an append-only slice plus a read offset. A fully drained
// queue rewinds to the start of its backing array before the next push, and
// a partially drained queue slides the pending bytes to the front instead of
// growing when capacity would otherwise be exceeded. Steady push/drain
// cycles therefore reuse capacity and stay allocation-free.
package fifo

// Queue is a byte FIFO. The zero value is an empty queue ready for use.
type Queue struct {
	buf []byte
	off int
}

// Len returns the number of pending (pushed but not consumed) bytes.
func (q *Queue) Len() int { return len(q.buf) - q.off }

// Push appends a copy of p behind the pending bytes.
func (q *Queue) Push(p []byte) {
	if len(p) == 0 {
		return
	}
	if q.off == len(q.buf) {
		// Fully drained: rewind and reuse capacity.
		q.buf = q.buf[:0]
		q.off = 0
	} else if q.off > 0 && len(q.buf)+len(p) > cap(q.buf) {
		// Slide pending bytes to the front before append would grow.
		n := copy(q.buf, q.buf[q.off:])
		q.buf = q.buf[:n]
		q.off = 0
	}
	q.buf = append(q.buf, p...)
}

// Read copies up to len(p) pending bytes into p and consumes them. It
// returns the number of bytes copied; zero means the queue is empty or p
// has zero length.
func (q *Queue) Read(p []byte) int {
	n := copy(p, q.buf[q.off:])
	q.off += n
	return n
}

// Bytes returns the pending bytes without consuming them. The slice is
// valid until the next mutation of the queue.
func (q *Queue) Bytes() []byte { return q.buf[q.off:] }

// Advance consumes n pending bytes without copying. It panics when n is
// negative or exceeds Len.
func (q *Queue) Advance(n int) {
	if n < 0 || n > q.Len() {
		panic("fifo: advance out of range")
	}
	q.off += n
}

// Take detaches and returns the pending bytes, leaving the queue empty.
// The caller owns the returned slice; the queue no longer references its
// backing array, so the next Push starts a fresh one.
func (q *Queue) Take() []byte {
	b := q.buf[q.off:]
	q.buf, q.off = nil, 0
	return b
}
