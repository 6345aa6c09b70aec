package scale

import (
	"log"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Recognition sources for an Estimate.
const (
	SourceRemote          = "remote-service"
	SourceSecondary       = "secondary-service"
	SourceClientHeuristic = "client-heuristic"
	SourceSimulated       = "simulated"
	SourceManual          = "manual"
)

// Resolution methods: how the value was obtained from the recognized text.
const (
	MethodExplicitPattern = "explicit-pattern"
	MethodSmartScoring    = "smart-scoring"
	MethodNeedsReview     = "needs-review"
)

// Estimate is the final output of the pipeline for one image. A nil ValueKg
// means no plausible weight was found and the caller must prompt for manual
// entry; it is never an error condition.
type Estimate struct {
	ValueKg    *float64 `json:"value_kg"`
	Confidence int      `json:"confidence"` // 0-100, heuristic, not calibrated
	Source     string   `json:"source,omitempty"`
	Method     string   `json:"method,omitempty"`
	RawText    string   `json:"raw_text,omitempty"`
}

// Found reports whether the estimate carries a usable weight.
func (e Estimate) Found() bool { return e.ValueKg != nil }

// Explicit-unit patterns, tried in order. The first pattern that matches
// wins and bypasses candidate scoring entirely.
var explicitPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)([0-9]+\.?[0-9]*)\s*kg\b`),
	regexp.MustCompile(`(?i)([0-9]+\.?[0-9]*)\s*kilograms?\b`),
	regexp.MustCompile(`(?i)weight[:\s]\s*([0-9]+\.?[0-9]*)`),
	regexp.MustCompile(`(?i)([0-9]+\.?[0-9]*)\s*lbs?\b`),
}

// ResolveFromText turns raw recognized text into a weight estimate.
// Precedence: explicit-unit patterns first ("12.5 kg", "Weight: 12.5"), then
// tokenization plus narrow-profile scoring with decimal-placement formatting
// of the winner. Pure function; identical input yields identical output.
func ResolveFromText(raw string) Estimate {
	text := normalizeText(raw)
	if text == "" {
		return Estimate{Confidence: 0}
	}

	for _, re := range explicitPatterns {
		m := re.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil || math.IsNaN(v) {
			continue
		}
		return Estimate{ValueKg: &v, Confidence: 100, Method: MethodExplicitPattern, RawText: raw}
	}

	toks := ExtractTokens(text)
	if len(toks) == 0 {
		return Estimate{RawText: raw}
	}
	best, score, ok := bestToken(toks, text, ProfileNarrow)
	if !ok {
		log.Printf("scale: no plausible candidate among %d tokens, text=%q", len(toks), snippet(text, 120))
		return Estimate{RawText: raw}
	}
	formatted := FormatReading(best.Digits)
	v, err := strconv.ParseFloat(formatted, 64)
	if err != nil {
		return Estimate{RawText: raw}
	}
	conf := score
	if conf > 100 {
		conf = 100
	}
	return Estimate{ValueKg: &v, Confidence: conf, Method: MethodSmartScoring, RawText: raw}
}

// Analysis is the structured output of the local image-analysis fallback.
type Analysis struct {
	HasNumbers      bool     `json:"has_numbers"`
	DetectedNumbers []string `json:"detected_numbers"`
	Confidence      float64  `json:"confidence"` // 0-1
	SuggestedWeight float64  `json:"suggested_weight,omitempty"`
}

// ResolveFromAnalysis scores the detected number strings of a local image
// analysis using the broad profile and formats the winner. Confidence comes
// from the analysis itself (0-1, reported as a percentage).
func ResolveFromAnalysis(a Analysis) Estimate {
	if !a.HasNumbers || len(a.DetectedNumbers) == 0 {
		return Estimate{}
	}
	ctx := strings.Join(a.DetectedNumbers, " ")
	toks := make([]Token, 0, len(a.DetectedNumbers))
	for i, s := range a.DetectedNumbers {
		cleaned := keepDigitsAndDots(s)
		if cleaned == "" {
			continue
		}
		v, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			continue
		}
		toks = append(toks, Token{Original: s, Digits: cleaned, Value: v, Position: i})
	}
	best, _, ok := bestToken(toks, ctx, ProfileBroad)
	if !ok {
		return Estimate{RawText: ctx}
	}
	formatted := FormatReading(best.Digits)
	v, err := strconv.ParseFloat(formatted, 64)
	if err != nil {
		return Estimate{RawText: ctx}
	}
	conf := int(math.Round(a.Confidence * 100))
	if conf > 100 {
		conf = 100
	}
	if conf < 0 {
		conf = 0
	}
	return Estimate{ValueKg: &v, Confidence: conf, Method: MethodSmartScoring, RawText: ctx}
}
