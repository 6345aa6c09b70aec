package scale

import "strings"

// FormatReading converts a raw digit string from a scale display into a
// decimal string, inferring the decimal point position from the digit count.
// Digital scales report a fixed number of fractional digits correlated with
// display length, so:
//
//	5+ digits: last three are fractional ("88850" -> "88.850")
//	4 digits:  last two are fractional  ("1250"  -> "12.50")
//	3 digits:  last one is fractional   ("125"   -> "12.5")
//	1-2 digits: returned unchanged
//
// Any decimal points already present are stripped first. This is a heuristic,
// not a recovery of the true decimal position, and is deliberately
// deterministic.
func FormatReading(reading string) string {
	digits := strings.ReplaceAll(reading, ".", "")
	switch {
	case len(digits) >= 5:
		return digits[:len(digits)-3] + "." + digits[len(digits)-3:]
	case len(digits) == 4:
		return digits[:2] + "." + digits[2:]
	case len(digits) == 3:
		return digits[:1] + "." + digits[1:]
	default:
		return digits
	}
}
