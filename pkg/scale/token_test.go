package scale

import "testing"

func TestExtractTokensEmptyInputs(t *testing.T) {
	if toks := ExtractTokens(""); len(toks) != 0 {
		t.Fatalf("expected no tokens for empty text, got %d", len(toks))
	}
	if toks := ExtractTokens("abc"); len(toks) != 0 {
		t.Fatalf("expected no tokens for letters-only text, got %d", len(toks))
	}
}

func TestExtractTokensOrder(t *testing.T) {
	toks := ExtractTokens("88850 Max 15 199")
	want := []string{"88850", "15", "199"}
	if len(toks) != len(want) {
		t.Fatalf("expected %d tokens got %d", len(want), len(toks))
	}
	for i, w := range want {
		if toks[i].Original != w {
			t.Errorf("token %d = %q, want %q", i, toks[i].Original, w)
		}
		if toks[i].Position != i {
			t.Errorf("token %q position = %d, want %d", w, toks[i].Position, i)
		}
	}
}

func TestExtractTokensDecimal(t *testing.T) {
	toks := ExtractTokens("reading 12.5 tare 0.2")
	if len(toks) != 2 {
		t.Fatalf("expected 2 tokens got %d", len(toks))
	}
	if toks[0].Original != "12.5" || toks[0].Value != 12.5 {
		t.Errorf("first token = %q/%v, want 12.5", toks[0].Original, toks[0].Value)
	}
	if toks[1].Value != 0.2 {
		t.Errorf("second token value = %v, want 0.2", toks[1].Value)
	}
}
