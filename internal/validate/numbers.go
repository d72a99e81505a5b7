package validate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ppiankov/factgate/internal/model"
	"github.com/ppiankov/factgate/internal/text"
)

// NumberGrounding is the anti-hallucination check: every number claimed in
// the body must be traceable to a value in the work product. Membership is
// exact; false positives are handled by the configured exclusion rules,
// never by tolerant matching.
type NumberGrounding struct {
	cfg *model.RuleConfig
}

// NewNumberGrounding creates a number-grounding validator.
func NewNumberGrounding(cfg *model.RuleConfig) *NumberGrounding {
	return &NumberGrounding{cfg: cfg}
}

// Validate reports every number in the body that is not grounded in the
// work product's factual fields or the configured allow list.
func (v *NumberGrounding) Validate(body string, wp model.WorkProduct) []model.Finding {
	allowed := v.allowedSet(wp)

	var dateSpans, listSpans [][]int
	if v.cfg.ExclusionEnabled("date") {
		dateSpans = text.DateSpans(body)
	}
	if v.cfg.ExclusionEnabled("list_index") {
		listSpans = text.ListIndexSpans(body)
	}

	var findings []model.Finding
	for _, num := range text.ScanNumbers(body) {
		end := num.Offset + len(num.Raw)

		if v.cfg.ExclusionEnabled("date") && text.SpanOverlaps(dateSpans, num.Offset, end) {
			continue
		}
		if v.cfg.ExclusionEnabled("ordinal") && text.IsOrdinal(body, end) {
			continue
		}
		if v.cfg.ExclusionEnabled("list_index") && text.SpanOverlaps(listSpans, num.Offset, end) {
			continue
		}
		if v.cfg.Numbers.IgnoreYears && text.IsYear(num.Norm) {
			continue
		}
		if allowed[num.Norm] || v.cfg.NumberAllowed(num.Norm) {
			continue
		}

		findings = append(findings, model.Finding{
			Severity: model.SeverityError,
			RuleID:   model.RuleHallucinatedNum,
			Offset:   num.Offset,
			Message:  fmt.Sprintf("number %q at offset %d is not grounded in the work product", num.Raw, num.Offset),
		})
	}
	return findings
}

// allowedSet collects every normalized number reachable from the factual
// field values. Declared descriptors bound the walk; when none are declared
// the walk covers all non-reserved fields so an undeclared document still
// gets a grounding baseline.
func (v *NumberGrounding) allowedSet(wp model.WorkProduct) map[string]bool {
	allowed := make(map[string]bool)

	if len(v.cfg.Fields) > 0 {
		for _, desc := range v.cfg.Fields {
			if val, ok := wp[desc.Name]; ok {
				collectNumbers(val, allowed)
			}
		}
		return allowed
	}

	for key, val := range wp {
		if strings.HasPrefix(key, "_") ||
			strings.HasSuffix(key, model.SourceSuffix) ||
			strings.HasSuffix(key, model.VerifiedAtSuffix) {
			continue
		}
		collectNumbers(val, allowed)
	}
	return allowed
}

// collectNumbers walks a field value recursively, normalizing every numeric
// value and every number embedded in a string.
func collectNumbers(val any, into map[string]bool) {
	switch v := val.(type) {
	case float64:
		into[strconv.FormatFloat(v, 'f', -1, 64)] = true
	case int:
		into[strconv.Itoa(v)] = true
	case string:
		for _, num := range text.ScanNumbers(v) {
			into[num.Norm] = true
		}
	case []any:
		for _, item := range v {
			collectNumbers(item, into)
		}
	case map[string]any:
		for _, item := range v {
			collectNumbers(item, into)
		}
	}
}
