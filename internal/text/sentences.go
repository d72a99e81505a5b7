package text

import (
	"strings"
	"unicode"
)

// Sentence is one sentence of a body text with its byte offset.
type Sentence struct {
	Text   string
	Offset int
}

// SplitSentences splits text into sentences on terminal punctuation followed
// by whitespace or end of input. Simple heuristic: abbreviations are not
// special-cased.
func SplitSentences(body string) []Sentence {
	var sentences []Sentence
	start := 0

	flush := func(end int) {
		raw := body[start:end]
		trimmed := strings.TrimSpace(raw)
		if trimmed != "" {
			offset := start + strings.Index(raw, trimmed[:1])
			sentences = append(sentences, Sentence{Text: trimmed, Offset: offset})
		}
		start = end
	}

	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '.' && c != '!' && c != '?' {
			continue
		}
		if i+1 >= len(body) || body[i+1] == ' ' || body[i+1] == '\t' || body[i+1] == '\n' || body[i+1] == '\r' {
			flush(i + 1)
		}
	}
	flush(len(body))

	return sentences
}

// Words tokenizes a sentence on whitespace and punctuation. Hyphens and
// apostrophes stay inside a word.
func Words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return false
		}
		return r != '-' && r != '\'' && r != '_'
	})
}

// HasNumericToken reports whether any word contains a digit.
func HasNumericToken(words []string) bool {
	for _, w := range words {
		for _, r := range w {
			if unicode.IsDigit(r) {
				return true
			}
		}
	}
	return false
}
