package recognize

import (
	"context"
	"errors"
)

// Recognizer turns an image file into raw recognized text. Implementations
// must honor ctx cancellation for any network I/O.
type Recognizer interface {
	Name() string
	Recognize(ctx context.Context, imagePath string) (string, error)
}

// ErrNotConfigured marks a strategy slot that is present for extensibility
// but has nothing behind it; the orchestrator falls through silently.
var ErrNotConfigured = errors.New("recognizer not configured")

// ErrNoText is returned when a recognizer ran but detected no text at all.
var ErrNoText = errors.New("no text detected")

// errNoCandidate signals that text was recognized but no plausible weight
// could be scored from it. Strategies return it to request fallthrough.
var errNoCandidate = errors.New("no plausible weight candidate")
