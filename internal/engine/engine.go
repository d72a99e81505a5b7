// Package engine aggregates the three validators into a single pass/fail
// report. It is stateless and side-effect free: no I/O, no clock reads
// beyond the caller-supplied as-of instant, no mutation of its inputs.
package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/factgate/internal/model"
	"github.com/ppiankov/factgate/internal/validate"
)

// Engine runs the validators against one work product and applies override
// suppression. A single Engine may be shared across goroutines; distinct
// documents validate independently.
type Engine struct {
	cfg        *model.RuleConfig
	provenance *validate.Provenance
	lexicon    *validate.Lexicon
	numbers    *validate.NumberGrounding
}

// New creates an engine for a compiled rule config.
func New(cfg *model.RuleConfig) *Engine {
	return &Engine{
		cfg:        cfg,
		provenance: validate.NewProvenance(cfg),
		lexicon:    validate.NewLexicon(cfg),
		numbers:    validate.NewNumberGrounding(cfg),
	}
}

// WithClassifier swaps the lexicon fact-sentence classifier.
func (e *Engine) WithClassifier(fc validate.FactClassifier) *Engine {
	e.lexicon.WithClassifier(fc)
	return e
}

// Validate checks a work product and its optional text body. Provenance
// always runs; the text validators run only when a body is supplied. The
// as-of instant drives override expiry; zero means now. Findings keep
// validator order: provenance, then lexicon, then number grounding.
func (e *Engine) Validate(wp model.WorkProduct, body string, asOf time.Time) (*model.Report, error) {
	if wp == nil {
		return nil, fmt.Errorf("validate: nil work product")
	}
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}

	findings := e.provenance.Validate(wp)
	if body != "" {
		findings = append(findings, e.lexicon.Validate(body, fieldNameSet(e.cfg, wp))...)
		findings = append(findings, e.numbers.Validate(body, wp)...)
	}

	return e.report(findings, asOf), nil
}

// ValidateText checks a standalone text body against the lexicon rules,
// with no work product. Used by the validate-text surface.
func (e *Engine) ValidateText(body string, asOf time.Time) *model.Report {
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}
	return e.report(e.lexicon.Validate(body, fieldNameSet(e.cfg, nil)), asOf)
}

// report partitions findings by severity, applies active overrides to the
// errors, and computes passed. Overridden errors stay in the report for
// audit; they just stop blocking.
func (e *Engine) report(findings []model.Finding, asOf time.Time) *model.Report {
	errors := make([]model.Finding, 0)
	warnings := make([]model.Finding, 0)

	for _, f := range findings {
		switch f.Severity {
		case model.SeverityError:
			errors = append(errors, f)
		default:
			warnings = append(warnings, f)
		}
	}

	for i := range errors {
		for _, ov := range e.cfg.Overrides {
			if ov.ActiveAt(asOf) && ov.Matches(errors[i]) {
				errors[i].Overridden = true
				errors[i].OverriddenBy = ov.ApprovedBy
				break
			}
		}
	}

	passed := true
	for _, f := range errors {
		if !f.Overridden {
			passed = false
			break
		}
	}

	return &model.Report{
		Passed:   passed,
		AsOf:     asOf,
		Errors:   errors,
		Warnings: warnings,
	}
}

// fieldNameSet builds the lowercase field-name vocabulary the fact
// classifier matches against: declared descriptors plus the document's own
// factual keys.
func fieldNameSet(cfg *model.RuleConfig, wp model.WorkProduct) map[string]bool {
	names := make(map[string]bool)
	for _, desc := range cfg.Fields {
		names[strings.ToLower(desc.Name)] = true
	}
	for key := range wp {
		if strings.HasPrefix(key, "_") ||
			strings.HasSuffix(key, model.SourceSuffix) ||
			strings.HasSuffix(key, model.VerifiedAtSuffix) {
			continue
		}
		names[strings.ToLower(key)] = true
	}
	return names
}
