package mockstream_test

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"code.hybscloud.com/mockstream"
)

func TestOptions_Setters(t *testing.T) {
	var o mockstream.Options

	mockstream.WithNonblock()(&o)
	if !o.Nonblock {
		t.Fatalf("WithNonblock did not set Nonblock")
	}
	mockstream.WithBlock()(&o)
	if o.Nonblock {
		t.Fatalf("WithBlock did not clear Nonblock")
	}
	mockstream.WithWaitDelay(3 * time.Millisecond)(&o)
	if o.WaitDelay != 3*time.Millisecond {
		t.Fatalf("WaitDelay=%v, want 3ms", o.WaitDelay)
	}

	var buf bytes.Buffer
	mockstream.WithLogger(zerolog.New(&buf))(&o)
	o.Logger.Debug().Msg("probe")
	if buf.Len() == 0 {
		t.Fatalf("WithLogger did not install the logger")
	}
}

func TestOptions_DefaultIsBlocking(t *testing.T) {
	s := mockstream.New()
	_, err := s.Read(make([]byte, 1))
	if !errors.Is(err, io.EOF) {
		t.Fatalf("default empty read err=%v, want io.EOF", err)
	}
}

func TestOptions_LastOptionWins(t *testing.T) {
	s := mockstream.New(mockstream.WithNonblock(), mockstream.WithBlock())
	_, err := s.Read(make([]byte, 1))
	if !errors.Is(err, io.EOF) {
		t.Fatalf("empty read err=%v, want io.EOF after WithBlock", err)
	}

	s = mockstream.New(mockstream.WithBlock(), mockstream.WithNonblock())
	_, err = s.Read(make([]byte, 1))
	if !errors.Is(err, mockstream.ErrWouldBlock) {
		t.Fatalf("empty read err=%v, want ErrWouldBlock after WithNonblock", err)
	}
}

func TestOptions_ApplyToEveryStreamKind(t *testing.T) {
	if _, err := mockstream.New(mockstream.WithNonblock()).Read(make([]byte, 1)); !errors.Is(err, mockstream.ErrWouldBlock) {
		t.Fatalf("Stream: err=%v, want ErrWouldBlock", err)
	}
	if _, err := mockstream.NewShared(mockstream.WithNonblock()).Read(make([]byte, 1)); !errors.Is(err, mockstream.ErrWouldBlock) {
		t.Fatalf("SharedStream: err=%v, want ErrWouldBlock", err)
	}

	var buf bytes.Buffer
	f := mockstream.NewFailing(io.EOF, "x", 1, mockstream.WithLogger(zerolog.New(&buf)))
	_, _ = f.Read(make([]byte, 1))
	if buf.Len() == 0 {
		t.Fatalf("FailingStream ignored WithLogger")
	}
}
