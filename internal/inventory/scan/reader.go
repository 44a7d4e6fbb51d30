package scan

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"strings"
	"sync"
	"time"
)

// ErrNoCode is returned by a decoder when the image holds no readable code
var ErrNoCode = errors.New("no code found")

// Decoder extracts a tag string from a barcode image
type Decoder interface {
	Decode(ctx context.Context, image io.Reader) (string, error)
}

// RFIDReader reads a tag from an RFID antenna
type RFIDReader interface {
	Read(ctx context.Context) (string, error)
}

// SimulatedRFIDReader stands in for scanner hardware. It waits roughly one
// read cycle and returns a tag drawn from a fixed pool.
type SimulatedRFIDReader struct {
	tags  []string
	delay time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulatedRFIDReader creates a simulated reader over the given tag pool
func NewSimulatedRFIDReader(tags []string, delay time.Duration) *SimulatedRFIDReader {
	return &SimulatedRFIDReader{
		tags:  tags,
		delay: delay,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Read waits one read cycle and returns a random tag from the pool
func (r *SimulatedRFIDReader) Read(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(r.delay):
	}

	if len(r.tags) == 0 {
		return "", ErrNoCode
	}

	r.mu.Lock()
	tag := r.tags[r.rng.Intn(len(r.tags))]
	r.mu.Unlock()

	return tag, nil
}

// TextDecoder treats the uploaded payload as the already-decoded code,
// trimmed of surrounding whitespace. It stands in for an image decoder in
// deployments without one.
type TextDecoder struct {
	// MaxBytes caps how much of the payload is read; zero means 4 KiB
	MaxBytes int64
}

// Decode reads the payload and returns it as the tag
func (d *TextDecoder) Decode(ctx context.Context, image io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	limit := d.MaxBytes
	if limit <= 0 {
		limit = 4 << 10
	}

	raw, err := io.ReadAll(io.LimitReader(image, limit))
	if err != nil {
		return "", err
	}

	code := strings.TrimSpace(string(raw))
	if code == "" {
		return "", ErrNoCode
	}

	return code, nil
}
