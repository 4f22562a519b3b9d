package mockstream_test

import (
	"errors"
	"io"
	"testing"

	"code.hybscloud.com/mockstream"
)

func TestError_RendersMessageFirst(t *testing.T) {
	err := &mockstream.Error{Kind: io.ErrClosedPipe, Message: "cable unplugged"}
	if got := err.Error(); got != "cable unplugged" {
		t.Fatalf("Error()=%q, want %q", got, "cable unplugged")
	}
}

func TestError_FallsBackToKindText(t *testing.T) {
	err := &mockstream.Error{Kind: io.ErrClosedPipe}
	if got := err.Error(); got != io.ErrClosedPipe.Error() {
		t.Fatalf("Error()=%q, want %q", got, io.ErrClosedPipe.Error())
	}
}

func TestError_FallsBackToInjectedText(t *testing.T) {
	err := &mockstream.Error{}
	if got := err.Error(); got != mockstream.ErrInjected.Error() {
		t.Fatalf("Error()=%q, want %q", got, mockstream.ErrInjected.Error())
	}
}

func TestError_UnwrapExposesKind(t *testing.T) {
	kind := errors.New("connection reset")
	err := &mockstream.Error{Kind: kind, Message: "m"}
	if !errors.Is(err, kind) {
		t.Fatalf("errors.Is(err, kind)=false, want true")
	}
	if got := errors.Unwrap(err); got != kind {
		t.Fatalf("Unwrap()=%v, want %v", got, kind)
	}
}

func TestError_MatchesInjectedSentinel(t *testing.T) {
	err := &mockstream.Error{Kind: io.EOF}
	if !errors.Is(err, mockstream.ErrInjected) {
		t.Fatalf("errors.Is(err, ErrInjected)=false, want true")
	}
}

func TestError_AsRecoversConcreteType(t *testing.T) {
	var wrapped error = &mockstream.Error{Kind: io.ErrNoProgress, Message: "m"}

	var ie *mockstream.Error
	if !errors.As(wrapped, &ie) {
		t.Fatalf("errors.As=false, want true")
	}
	if ie.Kind != io.ErrNoProgress || ie.Message != "m" {
		t.Fatalf("recovered %+v", ie)
	}
}

func TestError_PlainEOFIsNotInjected(t *testing.T) {
	f := mockstream.NewFailing(errors.New("boom"), "", 0)
	_, err := f.Read(make([]byte, 1))
	if !errors.Is(err, io.EOF) {
		t.Fatalf("err=%v, want io.EOF", err)
	}
	if errors.Is(err, mockstream.ErrInjected) {
		t.Fatalf("exhausted read must not report an injected failure")
	}
}
