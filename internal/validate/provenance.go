package validate

import (
	"fmt"
	"regexp"

	"github.com/ppiankov/factgate/internal/model"
)

var isoDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Provenance checks that a work product carries its extraction metadata and
// that every declared factual field present in the document has a
// verification date and a source. Pure function of its inputs; malformed
// values become findings, never failures.
type Provenance struct {
	cfg *model.RuleConfig
}

// NewProvenance creates a provenance validator.
func NewProvenance(cfg *model.RuleConfig) *Provenance {
	return &Provenance{cfg: cfg}
}

// Validate checks one work product and reports every violation found.
func (v *Provenance) Validate(wp model.WorkProduct) []model.Finding {
	var findings []model.Finding

	findings = append(findings, v.checkMetadata(wp)...)

	for _, desc := range v.cfg.Fields {
		if _, ok := wp[desc.Name]; !ok {
			// Field not used in this document.
			continue
		}
		findings = append(findings, v.checkField(wp, desc)...)
	}

	return findings
}

func (v *Provenance) checkMetadata(wp model.WorkProduct) []model.Finding {
	raw, ok := wp[model.MetadataKey]
	if !ok {
		return []model.Finding{{
			Severity: model.SeverityError,
			RuleID:   model.RuleMissingMetadata,
			Offset:   -1,
			Message:  "missing _metadata block",
		}}
	}

	meta, ok := raw.(map[string]any)
	if !ok {
		return []model.Finding{{
			Severity: model.SeverityError,
			RuleID:   model.RuleInvalidMetadata,
			Offset:   -1,
			Message:  "_metadata is not an object",
		}}
	}

	var findings []model.Finding
	for _, key := range []string{"extraction_date", "model", "extractor_version"} {
		val, ok := meta[key]
		switch {
		case !ok:
			findings = append(findings, model.Finding{
				Severity: model.SeverityError,
				RuleID:   model.RuleInvalidMetadata,
				Offset:   -1,
				Message:  fmt.Sprintf("missing metadata field: %s", key),
			})
		case val == nil || val == "":
			findings = append(findings, model.Finding{
				Severity: model.SeverityError,
				RuleID:   model.RuleInvalidMetadata,
				Offset:   -1,
				Message:  fmt.Sprintf("empty metadata field: %s", key),
			})
		}
	}
	return findings
}

func (v *Provenance) checkField(wp model.WorkProduct, desc model.FieldDescriptor) []model.Finding {
	var findings []model.Finding

	// verified_at presence and format are always errors, regardless of
	// field policy.
	va, ok := wp.VerifiedAt(desc.Name)
	if !ok || va == nil {
		findings = append(findings, model.Finding{
			Severity: model.SeverityError,
			RuleID:   model.RuleMissingVerifiedAt,
			Field:    desc.Name,
			Offset:   -1,
			Message:  fmt.Sprintf("field %q missing verification date (%s%s)", desc.Name, desc.Name, model.VerifiedAtSuffix),
		})
	} else if s, isStr := va.(string); !isStr || !isoDateRe.MatchString(s) {
		findings = append(findings, model.Finding{
			Severity: model.SeverityError,
			RuleID:   model.RuleInvalidDateFormat,
			Field:    desc.Name,
			Offset:   -1,
			Message:  fmt.Sprintf("field %q has invalid verification date %v (expected YYYY-MM-DD)", desc.Name, va),
		})
	}

	if v.cfg.SourceNullable(desc) {
		return findings
	}

	src, ok := wp.Source(desc.Name)
	if !ok || src == nil || src == "" {
		findings = append(findings, model.Finding{
			Severity: v.cfg.FieldPolicy.MissingSourceSeverity,
			RuleID:   model.RuleMissingSource,
			Field:    desc.Name,
			Offset:   -1,
			Message:  fmt.Sprintf("field %q requires a non-empty source (%s%s)", desc.Name, desc.Name, model.SourceSuffix),
		})
	}

	return findings
}
