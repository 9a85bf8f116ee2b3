package share

import (
	"bytes"
	"errors"
	"testing"
)

type stubSharer struct {
	err    error
	shared []Payload
}

func (s *stubSharer) Share(p Payload) error {
	s.shared = append(s.shared, p)
	return s.err
}

func TestPayload_Text(t *testing.T) {
	if got := (Payload{Label: "Home", URL: "https://x"}).Text(); got != "Home: https://x" {
		t.Errorf("Unexpected text %q", got)
	}
	if got := (Payload{URL: "https://x"}).Text(); got != "https://x" {
		t.Errorf("Unexpected text %q", got)
	}
}

func TestWriterSharer(t *testing.T) {
	var buf bytes.Buffer
	if err := (WriterSharer{W: &buf}).Share(Payload{Label: "Home", URL: "https://x"}); err != nil {
		t.Fatalf("Share failed: %v", err)
	}
	if buf.String() != "Home: https://x\n" {
		t.Errorf("Unexpected output %q", buf.String())
	}
}

func TestFallbackSharer(t *testing.T) {
	primary := &stubSharer{err: ErrUnsupported}
	secondary := &stubSharer{}
	s := FallbackSharer{Primary: primary, Secondary: secondary}

	if err := s.Share(Payload{URL: "https://x"}); err != nil {
		t.Fatalf("Expected fallback to succeed, got %v", err)
	}
	if len(secondary.shared) != 1 {
		t.Errorf("Expected secondary to be used")
	}
}

func TestFallbackSharer_OtherErrorsPropagate(t *testing.T) {
	boom := errors.New("boom")
	secondary := &stubSharer{}
	s := FallbackSharer{Primary: &stubSharer{err: boom}, Secondary: secondary}

	if err := s.Share(Payload{URL: "https://x"}); !errors.Is(err, boom) {
		t.Errorf("Expected primary error, got %v", err)
	}
	if len(secondary.shared) != 0 {
		t.Errorf("Secondary should not be used for other errors")
	}
}
