package scale

import (
	"strings"
	"testing"
)

func TestFormatReadingOffsets(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"125", "12.5"},
		{"1250", "12.50"},
		{"88850", "88.850"},
		{"123456", "123.456"},
		{"5680", "56.80"},
	}
	for _, c := range cases {
		got := FormatReading(c.in)
		if got != c.want {
			t.Errorf("FormatReading(%q) = %q, want %q", c.in, got, c.want)
		}
		if strings.Count(got, ".") != 1 {
			t.Errorf("FormatReading(%q) = %q: expected exactly one decimal point", c.in, got)
		}
		if strings.ReplaceAll(got, ".", "") != c.in {
			t.Errorf("FormatReading(%q) = %q: digits not preserved", c.in, got)
		}
	}
}

func TestFormatReadingShortStringsUnchanged(t *testing.T) {
	for _, in := range []string{"", "5", "12", "99"} {
		if got := FormatReading(in); got != in {
			t.Errorf("FormatReading(%q) = %q, want unchanged", in, got)
		}
	}
}

func TestFormatReadingStripsExistingDots(t *testing.T) {
	if got := FormatReading("88.850"); got != "88.850" {
		t.Errorf("FormatReading(\"88.850\") = %q, want \"88.850\"", got)
	}
	if got := FormatReading("1.250"); got != "12.50" {
		t.Errorf("FormatReading(\"1.250\") = %q, want \"12.50\"", got)
	}
}
