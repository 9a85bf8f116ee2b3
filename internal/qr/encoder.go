package qr

import (
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru"
	qrcode "github.com/skip2/go-qrcode"
)

// Encoder renders URLs as QR codes. Rendered PNGs are cached by (url, size).
type Encoder struct {
	level qrcode.RecoveryLevel
	size  int
	cache *lru.Cache
}

type cacheKey struct {
	url  string
	size int
}

// NewEncoder creates an encoder with the given recovery level name
// ("low", "medium", "high", "highest"), default PNG size and cache size.
func NewEncoder(recovery string, size, cacheSize int) (*Encoder, error) {
	level, err := ParseRecovery(recovery)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		return nil, fmt.Errorf("invalid QR size: %d", size)
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create QR cache: %w", err)
	}
	return &Encoder{level: level, size: size, cache: cache}, nil
}

// ParseRecovery maps a recovery level name to its qrcode constant.
func ParseRecovery(name string) (qrcode.RecoveryLevel, error) {
	switch strings.ToLower(name) {
	case "low":
		return qrcode.Low, nil
	case "", "medium":
		return qrcode.Medium, nil
	case "high":
		return qrcode.High, nil
	case "highest":
		return qrcode.Highest, nil
	}
	return 0, fmt.Errorf("unknown QR recovery level %q", name)
}

// PNG encodes url as a PNG image. A size of 0 uses the default size.
func (e *Encoder) PNG(url string, size int) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("cannot encode empty URL")
	}
	if size <= 0 {
		size = e.size
	}

	key := cacheKey{url: url, size: size}
	if cached, ok := e.cache.Get(key); ok {
		return cached.([]byte), nil
	}

	png, err := qrcode.Encode(url, e.level, size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}
	e.cache.Add(key, png)
	return png, nil
}

// Terminal renders url with half-block characters for display in a terminal.
func (e *Encoder) Terminal(url string) (string, error) {
	if url == "" {
		return "", fmt.Errorf("cannot encode empty URL")
	}
	code, err := qrcode.New(url, e.level)
	if err != nil {
		return "", fmt.Errorf("failed to encode QR code: %w", err)
	}
	return code.ToSmallString(false), nil
}

// Cached returns the number of cached PNGs.
func (e *Encoder) Cached() int {
	return e.cache.Len()
}
