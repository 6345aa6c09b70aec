package scale

import (
	"math"
	"strings"
)

// Profile selects the value-range weighting the scorer applies. The broad
// profile is used when ranking tokens straight out of recognized text; the
// narrow profile is used when resolving a final reading for submission, where
// everyday weights deserve a stronger preference.
type Profile int

const (
	// ProfileBroad favors anything in a wide plausible-display range.
	ProfileBroad Profile = iota
	// ProfileNarrow favors everyday weights (0.1-1000 kg) and additionally
	// rewards tokens that already carry an explicit decimal point.
	ProfileNarrow
)

// Score assigns an additive plausibility score to one token. Rules apply in
// a fixed order; callers must discard candidates with a total <= 0 and break
// ties by earliest position.
func Score(tok Token, all []Token, sourceText string, profile Profile) int {
	// Disqualify outright: non-positive or unparseable values.
	if math.IsNaN(tok.Value) || tok.Value <= 0 {
		return -100
	}

	s := 0
	low := strings.ToLower(sourceText)

	// Digit-count weighting: precise scales show 4-6 digits, simple ones 2-3.
	switch n := digitCount(tok.Digits); {
	case n >= 4 && n <= 6:
		s += 50
	case n >= 2 && n <= 3:
		s += 30
	}

	// Value-range weighting, per profile.
	switch profile {
	case ProfileNarrow:
		if tok.Value >= 0.1 && tok.Value <= 1000 {
			s += 40
		} else if tok.Value > 1000 && tok.Value <= 99999 {
			s += 20 // high-precision display, needs decimal formatting
		}
	default:
		if tok.Value >= 1 && tok.Value <= 99999 {
			s += 30
		}
	}

	// The first number on a display is usually the main reading.
	if tok.Position == 0 {
		s += 20
	}

	// Calendar-year guard: "Since 1995" style markings on the scale body.
	if strings.Contains(low, "since") || strings.Contains(low, "year") || strings.Contains(low, "199") {
		if strings.Contains(tok.Digits, "199") {
			s -= 100
		}
	}

	// Scale-context bonus.
	if strings.Contains(low, "digital sca") || strings.Contains(low, "weigh") || strings.Contains(low, "scale") {
		s += 10
	}

	// An explicit decimal point is a strong weight signal when picking the
	// final value.
	if profile == ProfileNarrow && strings.Contains(tok.Original, ".") {
		s += 20
	}

	return s
}

// bestToken returns the highest-scoring token and its score. Ties go to the
// earliest-appearing token. ok is false when no token scores above zero.
func bestToken(toks []Token, sourceText string, profile Profile) (Token, int, bool) {
	best := Token{}
	bestScore := 0
	found := false
	for _, t := range toks {
		sc := Score(t, toks, sourceText, profile)
		if sc <= 0 {
			continue
		}
		if !found || sc > bestScore {
			best = t
			bestScore = sc
			found = true
		}
	}
	return best, bestScore, found
}
