//go:build !cgo

package recognize

import (
	"context"

	"be04/pkg/scale"
)

// TesseractRecognizer stub for non-cgo builds: gosseract needs cgo, so the
// secondary slot behaves as unconfigured and the chain falls through.
type TesseractRecognizer struct {
	Enabled bool
}

func NewTesseractRecognizer() *TesseractRecognizer {
	return &TesseractRecognizer{}
}

func (t *TesseractRecognizer) Name() string { return scale.SourceSecondary }

func (t *TesseractRecognizer) Recognize(ctx context.Context, imagePath string) (string, error) {
	return "", ErrNotConfigured
}
