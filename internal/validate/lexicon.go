package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ppiankov/factgate/internal/model"
	"github.com/ppiankov/factgate/internal/text"
)

// FactClassifier decides whether a sentence states a fact and is therefore
// held to the tighter token limit. The boundary is domain-specific, so it is
// injectable rather than hard-coded.
type FactClassifier func(words []string, fieldNames map[string]bool) bool

// DefaultFactClassifier treats a sentence as factual when it contains a
// numeric token or mentions a work-product field name.
func DefaultFactClassifier(words []string, fieldNames map[string]bool) bool {
	if text.HasNumericToken(words) {
		return true
	}
	for _, w := range words {
		if fieldNames[strings.ToLower(w)] {
			return true
		}
	}
	return false
}

// Lexicon validates body text against forbidden-language rules and
// sentence-length thresholds.
type Lexicon struct {
	cfg        *model.RuleConfig
	classifier FactClassifier
}

// NewLexicon creates a lexicon validator with the default fact classifier.
func NewLexicon(cfg *model.RuleConfig) *Lexicon {
	return &Lexicon{cfg: cfg, classifier: DefaultFactClassifier}
}

// WithClassifier swaps the fact-sentence classifier.
func (v *Lexicon) WithClassifier(fc FactClassifier) *Lexicon {
	v.classifier = fc
	return v
}

// Validate scans the body and reports every violation: each forbidden-term
// or pattern match is an independent error, each over-long sentence an
// independent warning.
func (v *Lexicon) Validate(body string, fieldNames map[string]bool) []model.Finding {
	findings := v.checkForbidden(body)
	findings = append(findings, v.checkSentences(body, fieldNames)...)
	return findings
}

type forbiddenMatch struct {
	offset  int
	matched string
	rule    string
}

func (v *Lexicon) checkForbidden(body string) []model.Finding {
	var matches []forbiddenMatch

	for _, tp := range v.cfg.TermPatterns() {
		for _, loc := range tp.Re.FindAllStringIndex(body, -1) {
			matches = append(matches, forbiddenMatch{
				offset:  loc[0],
				matched: body[loc[0]:loc[1]],
				rule:    fmt.Sprintf("term %q", tp.Term),
			})
		}
	}

	for i, re := range v.cfg.PatternRegexps() {
		for _, loc := range re.FindAllStringIndex(body, -1) {
			matches = append(matches, forbiddenMatch{
				offset:  loc[0],
				matched: body[loc[0]:loc[1]],
				rule:    fmt.Sprintf("pattern %q", v.cfg.Lexicon.ForbiddenPatterns[i]),
			})
		}
	}

	// Position order keeps reports deterministic no matter how the rule
	// lists are ordered in config.
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].offset != matches[j].offset {
			return matches[i].offset < matches[j].offset
		}
		return matches[i].rule < matches[j].rule
	})

	findings := make([]model.Finding, 0, len(matches))
	for _, m := range matches {
		findings = append(findings, model.Finding{
			Severity: model.SeverityError,
			RuleID:   model.RuleForbiddenLanguage,
			Offset:   m.offset,
			Message:  fmt.Sprintf("forbidden language %q (%s)", m.matched, m.rule),
		})
	}
	return findings
}

func (v *Lexicon) checkSentences(body string, fieldNames map[string]bool) []model.Finding {
	var findings []model.Finding

	for _, s := range text.SplitSentences(body) {
		words := text.Words(s.Text)

		if len(words) > v.cfg.Thresholds.MaxSentenceWords {
			findings = append(findings, model.Finding{
				Severity: model.SeverityWarning,
				RuleID:   model.RuleSentenceTooLong,
				Offset:   s.Offset,
				Message: fmt.Sprintf("sentence too long (%d words, max %d): %s",
					len(words), v.cfg.Thresholds.MaxSentenceWords, truncate(s.Text, 60)),
			})
		}

		if v.classifier(words, fieldNames) && len(words) > v.cfg.Thresholds.MaxFactTokens {
			findings = append(findings, model.Finding{
				Severity: model.SeverityWarning,
				RuleID:   model.RuleFactSentenceLong,
				Offset:   s.Offset,
				Message: fmt.Sprintf("fact sentence too long (%d tokens, max %d): %s",
					len(words), v.cfg.Thresholds.MaxFactTokens, truncate(s.Text, 60)),
			})
		}
	}
	return findings
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
