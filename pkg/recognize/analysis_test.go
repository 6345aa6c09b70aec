package recognize

import (
	"context"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

func writeContrastImage(t *testing.T) string {
	t.Helper()
	img := imaging.New(40, 40, color.Black)
	for y := 0; y < 40; y++ {
		for x := 20; x < 40; x++ {
			img.Set(x, y, color.White)
		}
	}
	path := filepath.Join(t.TempDir(), "display.png")
	if err := imaging.Save(img, path); err != nil {
		t.Fatalf("save test image: %v", err)
	}
	return path
}

func TestAnalyzeUnreadableImage(t *testing.T) {
	an := NewHeuristicAnalyzer(fixedRand{0})
	a := an.Analyze("testdata/does-not-exist.jpg")
	if a.HasNumbers {
		t.Fatalf("expected no detection for an unreadable image")
	}
}

func TestAnalyzeBlankImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blank.png")
	if err := imaging.Save(imaging.New(40, 40, color.Gray{Y: 128}), path); err != nil {
		t.Fatalf("save test image: %v", err)
	}
	an := NewHeuristicAnalyzer(fixedRand{0})
	if a := an.Analyze(path); a.HasNumbers {
		t.Fatalf("expected no detection for a flat image, got %+v", a)
	}
}

func TestAnalyzeContrastImage(t *testing.T) {
	an := NewHeuristicAnalyzer(fixedRand{0})
	a := an.Analyze(writeContrastImage(t))
	if !a.HasNumbers {
		t.Fatalf("expected a detection for a high-contrast image")
	}
	if len(a.DetectedNumbers) == 0 || a.DetectedNumbers[0] != "88850" {
		t.Errorf("detected numbers = %v, want the fixed scenario", a.DetectedNumbers)
	}
	if a.Confidence != 0.85 {
		t.Errorf("confidence = %v, want 0.85", a.Confidence)
	}
}

func TestAnalysisStrategyResolvesWeight(t *testing.T) {
	st := NewAnalysisStrategy(NewHeuristicAnalyzer(fixedRand{0}))
	est, err := st.Attempt(context.Background(), writeContrastImage(t))
	if err != nil {
		t.Fatalf("Attempt: %v", err)
	}
	if !est.Found() || *est.ValueKg != 88.85 {
		t.Fatalf("estimate = %+v, want 88.85 kg", est)
	}
	if est.Confidence != 85 {
		t.Errorf("confidence = %d, want 85", est.Confidence)
	}
}

func TestAnalysisStrategyHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	st := NewAnalysisStrategy(NewHeuristicAnalyzer(fixedRand{0}))
	if _, err := st.Attempt(ctx, writeContrastImage(t)); err == nil {
		t.Fatalf("expected an error for a cancelled context")
	}
}
