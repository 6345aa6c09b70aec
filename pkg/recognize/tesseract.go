//go:build cgo

package recognize

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	"be04/pkg/scale"
)

// TesseractRecognizer fills the secondary strategy slot with a local
// Tesseract pass. It is off unless OCR_LOCAL=1 so that, by default, the slot
// behaves like the unconfigured secondary service of the original deployment
// and simply falls through.
type TesseractRecognizer struct {
	Enabled bool
}

func NewTesseractRecognizer() *TesseractRecognizer {
	return &TesseractRecognizer{Enabled: os.Getenv("OCR_LOCAL") == "1"}
}

func (t *TesseractRecognizer) Name() string { return scale.SourceSecondary }

// Recognize runs Tesseract over a preprocessed copy of the image. The whole
// operation is local; ctx is only checked up front since gosseract calls are
// not interruptible.
func (t *TesseractRecognizer) Recognize(ctx context.Context, imagePath string) (string, error) {
	if !t.Enabled {
		return "", ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	img, err := imaging.Open(imagePath)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	prepared := prepareForTesseract(img)

	tmp, err := os.CreateTemp("", "scale-ocr-*.png")
	if err != nil {
		return "", fmt.Errorf("temp image: %w", err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	defer os.Remove(tmpPath)
	if err := imaging.Save(prepared, tmpPath); err != nil {
		return "", fmt.Errorf("save temp image: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()
	_ = client.SetLanguage("eng")
	// Digits plus the unit/label characters scale displays actually show.
	_ = client.SetWhitelist("0123456789kgKGlbsLBSMaxTARE.,: ")
	_ = client.SetPageSegMode(gosseract.PSM_SPARSE_TEXT)
	if err := client.SetImage(tmpPath); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}
