package recognize

import (
	"context"
	"strings"
	"testing"

	"be04/pkg/scale"
)

func TestSimulatedNeverFails(t *testing.T) {
	for v := 0; v < 6; v++ {
		s := NewSimulated(fixedRand{v})
		est, err := s.Attempt(context.Background(), "ignored.jpg")
		if err != nil {
			t.Fatalf("Attempt(%d): %v", v, err)
		}
		if !est.Found() {
			t.Fatalf("Attempt(%d): expected a value", v)
		}
		if est.Confidence != simulatedConfidence {
			t.Errorf("Attempt(%d): confidence = %d, want %d", v, est.Confidence, simulatedConfidence)
		}
		if est.Source != scale.SourceSimulated {
			t.Errorf("Attempt(%d): source = %q", v, est.Source)
		}
		if !strings.Contains(est.RawText, "simulated") {
			t.Errorf("Attempt(%d): raw text %q should mark itself simulated", v, est.RawText)
		}
	}
}

func TestSimulatedFixedScenario(t *testing.T) {
	s := NewSimulated(fixedRand{0})
	est, _ := s.Attempt(context.Background(), "ignored.jpg")
	if *est.ValueKg != 0.5 {
		t.Errorf("value = %v, want 0.5 (first personal-item weight)", *est.ValueKg)
	}
}
