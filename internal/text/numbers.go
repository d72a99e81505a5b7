package text

import (
	"regexp"
	"strconv"
	"strings"
)

// Number is a numeric literal found in body text. Norm is the canonical
// decimal form used for grounding comparisons: separators and currency
// symbols stripped, percent converted to its numeric literal.
type Number struct {
	Raw    string
	Norm   string
	Offset int
}

var (
	numberRe    = regexp.MustCompile(`(?:[€$£]\s?)?\d+(?:,\d{3})*(?:\.\d+)?%?`)
	dateRe      = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	listIndexRe = regexp.MustCompile(`(?m)^[ \t]*\d+[.)]`)
	ordinalRe   = regexp.MustCompile(`^(?i:st|nd|rd|th)\b`)
)

// ScanNumbers extracts every numeric literal from the body: integers,
// decimals, thousands-separated numbers, currency-prefixed amounts,
// percentages. Candidates that fail normalization are dropped.
func ScanNumbers(body string) []Number {
	locs := numberRe.FindAllStringIndex(body, -1)
	numbers := make([]Number, 0, len(locs))

	for _, loc := range locs {
		raw := body[loc[0]:loc[1]]
		norm, ok := Normalize(raw)
		if !ok {
			continue
		}
		numbers = append(numbers, Number{Raw: raw, Norm: norm, Offset: loc[0]})
	}
	return numbers
}

// Normalize converts a raw numeric literal to canonical decimal form.
func Normalize(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	s = strings.TrimRight(s, "%")
	for _, sym := range []string{"€", "$", "£"} {
		s = strings.TrimPrefix(s, sym)
	}
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return "", false
	}
	return strconv.FormatFloat(f, 'f', -1, 64), true
}

// DateSpans returns byte spans of YYYY-MM-DD occurrences. Numbers inside a
// date span are structural, not claims.
func DateSpans(body string) [][]int {
	return dateRe.FindAllStringIndex(body, -1)
}

// ListIndexSpans returns byte spans of line-leading enumeration markers
// ("1.", "2)").
func ListIndexSpans(body string) [][]int {
	return listIndexRe.FindAllStringIndex(body, -1)
}

// IsOrdinal reports whether the literal ending at end is an ordinal ("3rd").
func IsOrdinal(body string, end int) bool {
	return ordinalRe.MatchString(body[end:])
}

// IsYear reports whether a normalized number looks like a calendar year.
func IsYear(norm string) bool {
	n, err := strconv.Atoi(norm)
	if err != nil {
		return false
	}
	return n >= 1900 && n <= 2100
}

// SpanOverlaps reports whether [start,end) intersects any of the spans.
func SpanOverlaps(spans [][]int, start, end int) bool {
	for _, span := range spans {
		if start < span[1] && end > span[0] {
			return true
		}
	}
	return false
}
