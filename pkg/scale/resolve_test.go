package scale

import "testing"

func TestResolveFromTextExplicitUnit(t *testing.T) {
	est := ResolveFromText("Weight: 12.5 kg")
	if !est.Found() {
		t.Fatalf("expected a weight for explicit-unit text")
	}
	if *est.ValueKg != 12.5 {
		t.Errorf("value = %v, want 12.5", *est.ValueKg)
	}
	if est.Confidence != 100 {
		t.Errorf("confidence = %d, want 100", est.Confidence)
	}
	if est.Method != MethodExplicitPattern {
		t.Errorf("method = %q, want %q", est.Method, MethodExplicitPattern)
	}
}

func TestResolveFromTextScoredReading(t *testing.T) {
	est := ResolveFromText("88850 Max 15 199")
	if !est.Found() {
		t.Fatalf("expected a weight from scored tokens")
	}
	if *est.ValueKg != 88.85 {
		t.Errorf("value = %v, want 88.85", *est.ValueKg)
	}
	if est.Method != MethodSmartScoring {
		t.Errorf("method = %q, want %q", est.Method, MethodSmartScoring)
	}
	if est.Confidence != 90 {
		t.Errorf("confidence = %d, want 90", est.Confidence)
	}
}

func TestResolveFromTextNoCandidate(t *testing.T) {
	for _, raw := range []string{"", "   ", "no digits here", "Since 1995"} {
		est := ResolveFromText(raw)
		if est.Found() {
			t.Errorf("ResolveFromText(%q) found %v, want none", raw, *est.ValueKg)
		}
	}
}

func TestResolveFromTextDeterministic(t *testing.T) {
	raw := "digital scale 5680 kg Max 50"
	a := ResolveFromText(raw)
	b := ResolveFromText(raw)
	if a.Found() != b.Found() || a.Confidence != b.Confidence || a.Method != b.Method {
		t.Fatalf("resolution not deterministic: %+v vs %+v", a, b)
	}
	if a.Found() && *a.ValueKg != *b.ValueKg {
		t.Fatalf("values differ: %v vs %v", *a.ValueKg, *b.ValueKg)
	}
}

func TestResolveFromAnalysisEmpty(t *testing.T) {
	if est := ResolveFromAnalysis(Analysis{}); est.Found() {
		t.Fatalf("expected no weight for empty analysis")
	}
	a := Analysis{HasNumbers: true, DetectedNumbers: nil, Confidence: 0.9}
	if est := ResolveFromAnalysis(a); est.Found() {
		t.Fatalf("expected no weight when detected numbers are empty")
	}
}

func TestResolveFromAnalysisScenario(t *testing.T) {
	a := Analysis{
		HasNumbers:      true,
		DetectedNumbers: []string{"88850", "Max", "15", "199"},
		Confidence:      0.85,
	}
	est := ResolveFromAnalysis(a)
	if !est.Found() {
		t.Fatalf("expected a weight")
	}
	if *est.ValueKg != 88.85 {
		t.Errorf("value = %v, want 88.85", *est.ValueKg)
	}
	if est.Confidence != 85 {
		t.Errorf("confidence = %d, want 85", est.Confidence)
	}
}

func TestResolveFromAnalysisConfidenceClamped(t *testing.T) {
	a := Analysis{HasNumbers: true, DetectedNumbers: []string{"320"}, Confidence: 1.7}
	est := ResolveFromAnalysis(a)
	if !est.Found() {
		t.Fatalf("expected a weight")
	}
	if est.Confidence != 100 {
		t.Errorf("confidence = %d, want clamp to 100", est.Confidence)
	}
}
