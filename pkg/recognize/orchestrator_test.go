package recognize

import (
	"context"
	"errors"
	"testing"
	"time"

	"be04/pkg/scale"
)

// fixedRand makes the heuristic and simulated stages deterministic.
type fixedRand struct{ v int }

func (f fixedRand) Intn(n int) int { return f.v % n }

// stubRecognizer fakes a text recognizer. A positive delay makes it honor
// context cancellation the way a real HTTP call would.
type stubRecognizer struct {
	name  string
	text  string
	err   error
	delay time.Duration
}

func (s *stubRecognizer) Name() string { return s.name }

func (s *stubRecognizer) Recognize(ctx context.Context, imagePath string) (string, error) {
	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(s.delay):
		}
	}
	return s.text, s.err
}

func TestScanImageRemoteSuccess(t *testing.T) {
	o := NewChain(
		NewTextStrategy(&stubRecognizer{name: "stub", text: "Weight: 12.5 kg"}, scale.SourceRemote, 0, true),
		NewSimulated(fixedRand{0}),
	)
	res := o.ScanImage(context.Background(), "ignored.jpg")
	if len(res.Attempts) != 1 {
		t.Fatalf("expected 1 attempt, got %d", len(res.Attempts))
	}
	if !res.Estimate.Found() || *res.Estimate.ValueKg != 12.5 {
		t.Fatalf("estimate = %+v, want 12.5 kg", res.Estimate)
	}
	if res.Estimate.Source != scale.SourceRemote {
		t.Errorf("source = %q, want %q", res.Estimate.Source, scale.SourceRemote)
	}
	if res.Estimate.Method != scale.MethodExplicitPattern {
		t.Errorf("method = %q, want %q", res.Estimate.Method, scale.MethodExplicitPattern)
	}
}

func TestScanImageRemoteTextWithoutWeightIsTerminal(t *testing.T) {
	// The remote stage keeps raw text for manual review instead of letting
	// later stages guess.
	o := NewChain(
		NewTextStrategy(&stubRecognizer{name: "stub", text: "SCALE READY"}, scale.SourceRemote, 0, true),
		NewSimulated(fixedRand{0}),
	)
	res := o.ScanImage(context.Background(), "ignored.jpg")
	if len(res.Attempts) != 1 {
		t.Fatalf("expected early exit after 1 attempt, got %d", len(res.Attempts))
	}
	if res.Estimate.Found() {
		t.Fatalf("expected no value, got %v", *res.Estimate.ValueKg)
	}
	if res.Estimate.Method != scale.MethodNeedsReview {
		t.Errorf("method = %q, want %q", res.Estimate.Method, scale.MethodNeedsReview)
	}
	if res.Estimate.RawText != "SCALE READY" {
		t.Errorf("raw text = %q, want preserved", res.Estimate.RawText)
	}
}

func TestScanImageFallsThroughToSimulated(t *testing.T) {
	o := NewChain(
		NewTextStrategy(&stubRecognizer{name: "remote", err: errors.New("service unreachable")}, scale.SourceRemote, 0, true),
		NewTextStrategy(&stubRecognizer{name: "local", err: ErrNotConfigured}, scale.SourceSecondary, 0, false),
		NewAnalysisStrategy(NewHeuristicAnalyzer(fixedRand{0})),
		NewSimulated(fixedRand{0}),
	)
	// The analyzer cannot open a nonexistent image and must fall through too.
	res := o.ScanImage(context.Background(), "testdata/does-not-exist.jpg")
	if len(res.Attempts) != 4 {
		t.Fatalf("expected 4 attempts, got %d", len(res.Attempts))
	}
	for i, at := range res.Attempts[:3] {
		if at.Succeeded {
			t.Errorf("attempt %d (%s) should have failed", i, at.Method)
		}
	}
	if !res.Estimate.Found() {
		t.Fatalf("simulated stage must always produce a value")
	}
	if res.Estimate.Source != scale.SourceSimulated {
		t.Errorf("source = %q, want %q", res.Estimate.Source, scale.SourceSimulated)
	}
	if res.Estimate.Confidence != simulatedConfidence {
		t.Errorf("confidence = %d, want %d", res.Estimate.Confidence, simulatedConfidence)
	}
	if *res.Estimate.ValueKg != 0.5 {
		t.Errorf("value = %v, want 0.5 for the fixed scenario", *res.Estimate.ValueKg)
	}
}

func TestScanImageExhaustedChainSignalsManual(t *testing.T) {
	o := NewChain(
		NewTextStrategy(&stubRecognizer{name: "remote", err: errors.New("down")}, scale.SourceRemote, 0, true),
	)
	res := o.ScanImage(context.Background(), "ignored.jpg")
	if res.Estimate.Found() {
		t.Fatalf("expected no value from an exhausted chain")
	}
	if res.Estimate.Source != scale.SourceManual {
		t.Errorf("source = %q, want %q", res.Estimate.Source, scale.SourceManual)
	}
}

func TestTextStrategyTimeout(t *testing.T) {
	slow := &stubRecognizer{name: "slow", text: "Weight: 12.5 kg", delay: 200 * time.Millisecond}
	st := NewTextStrategy(slow, scale.SourceRemote, 10*time.Millisecond, true)
	_, err := st.Attempt(context.Background(), "ignored.jpg")
	if err == nil {
		t.Fatalf("expected a timeout error")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want context.DeadlineExceeded", err)
	}
}

func TestTextStrategyEmptyTextFallsThrough(t *testing.T) {
	st := NewTextStrategy(&stubRecognizer{name: "stub", text: ""}, scale.SourceSecondary, 0, false)
	_, err := st.Attempt(context.Background(), "ignored.jpg")
	if err == nil {
		t.Fatalf("expected fallthrough when no candidate was found")
	}
}
