package scale

import (
	"regexp"
	"strconv"
)

var numberRE = regexp.MustCompile(`[0-9]+(?:\.[0-9]+)?`)

// Token is one numeric substring extracted from recognized text.
type Token struct {
	Original string  // matched substring as it appeared
	Digits   string  // Original with everything but digits and dots removed
	Value    float64 // parsed numeric value
	Position int     // zero-based order of appearance
}

// ExtractTokens scans text left-to-right and returns every maximal numeric
// run (digits with an optional interior decimal point), in order of
// appearance. No semantic filtering happens here; scoring decides which
// token, if any, is a weight. Returns an empty slice when the text contains
// no numbers.
func ExtractTokens(text string) []Token {
	matches := numberRE.FindAllString(text, -1)
	toks := make([]Token, 0, len(matches))
	for i, m := range matches {
		cleaned := keepDigitsAndDots(m)
		v, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			// cleaned is digits and at most benign dots; a parse failure
			// (e.g. trailing dot artifacts) still yields a token so the
			// scorer can disqualify it uniformly.
			v = 0
		}
		toks = append(toks, Token{Original: m, Digits: cleaned, Value: v, Position: i})
	}
	return toks
}
