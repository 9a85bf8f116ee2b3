package share

import (
	"errors"
	"fmt"
	"io"

	"github.com/atotto/clipboard"
)

// ErrUnsupported is returned when no clipboard is available.
var ErrUnsupported = errors.New("clipboard not available on this system")

// Payload is what gets shared for one button.
type Payload struct {
	Label string
	URL   string
}

// Text renders the payload the way it is handed to other apps.
func (p Payload) Text() string {
	if p.Label == "" {
		return p.URL
	}
	return fmt.Sprintf("%s: %s", p.Label, p.URL)
}

// Sharer hands a payload to something outside the process.
type Sharer interface {
	Share(p Payload) error
}

// ClipboardSharer copies payloads to the system clipboard.
type ClipboardSharer struct{}

func (ClipboardSharer) Share(p Payload) error {
	if clipboard.Unsupported {
		return ErrUnsupported
	}
	if err := clipboard.WriteAll(p.Text()); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	return nil
}

// WriterSharer prints payloads, one per line.
type WriterSharer struct {
	W io.Writer
}

func (s WriterSharer) Share(p Payload) error {
	_, err := fmt.Fprintln(s.W, p.Text())
	return err
}

// FallbackSharer tries Primary and falls back to Secondary when Primary
// reports the clipboard is unsupported.
type FallbackSharer struct {
	Primary   Sharer
	Secondary Sharer
}

func (s FallbackSharer) Share(p Payload) error {
	err := s.Primary.Share(p)
	if errors.Is(err, ErrUnsupported) && s.Secondary != nil {
		return s.Secondary.Share(p)
	}
	return err
}

// Default returns the clipboard sharer with a fallback to w.
func Default(w io.Writer) Sharer {
	return FallbackSharer{Primary: ClipboardSharer{}, Secondary: WriterSharer{W: w}}
}
