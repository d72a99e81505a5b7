package validate

import (
	"testing"

	"github.com/ppiankov/factgate/internal/model"
)

func provenanceConfig(t *testing.T) *model.RuleConfig {
	t.Helper()
	cfg := model.DefaultConfig()
	cfg.Fields = []model.FieldDescriptor{
		{Name: "fee_amount", Type: model.FieldNumeric},
		{Name: "office_name", Type: model.FieldText},
		{Name: "status", Type: model.FieldEnum},
	}
	if err := cfg.Compile(); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return cfg
}

func validMetadata() map[string]any {
	return map[string]any{
		"extraction_date":   "2025-01-15T10:00:00Z",
		"model":             "test-model",
		"extractor_version": "1.0",
	}
}

func countRule(findings []model.Finding, rule string) int {
	n := 0
	for _, f := range findings {
		if f.RuleID == rule {
			n++
		}
	}
	return n
}

func TestProvenance_ValidWorkProduct(t *testing.T) {
	v := NewProvenance(provenanceConfig(t))

	wp := model.WorkProduct{
		"_metadata":              validMetadata(),
		"fee_amount":             float64(25),
		"fee_amount_source":      "https://example.gov/fees",
		"fee_amount_verified_at": "2025-01-15",
	}

	findings := v.Validate(wp)
	if len(findings) != 0 {
		t.Fatalf("Expected no findings, got %d: %+v", len(findings), findings)
	}
}

func TestProvenance_MissingMetadata(t *testing.T) {
	v := NewProvenance(provenanceConfig(t))

	findings := v.Validate(model.WorkProduct{})
	if countRule(findings, model.RuleMissingMetadata) != 1 {
		t.Fatalf("Expected exactly one missing_metadata, got %+v", findings)
	}
	if findings[0].Severity != model.SeverityError {
		t.Errorf("Expected error severity, got %s", findings[0].Severity)
	}
}

func TestProvenance_IncompleteMetadata(t *testing.T) {
	v := NewProvenance(provenanceConfig(t))

	wp := model.WorkProduct{
		"_metadata": map[string]any{
			"extraction_date": "2025-01-15T10:00:00Z",
			"model":           "",
		},
	}

	findings := v.Validate(wp)
	// missing extractor_version, empty model
	if countRule(findings, model.RuleInvalidMetadata) != 2 {
		t.Fatalf("Expected 2 invalid_metadata findings, got %+v", findings)
	}
}

func TestProvenance_MissingVerifiedAtIsAlwaysError(t *testing.T) {
	cfg := provenanceConfig(t)
	v := NewProvenance(cfg)

	wp := model.WorkProduct{
		"_metadata":         validMetadata(),
		"fee_amount":        float64(25),
		"fee_amount_source": "https://example.gov/fees",
	}

	findings := v.Validate(wp)
	if countRule(findings, model.RuleMissingVerifiedAt) != 1 {
		t.Fatalf("Expected missing_verified_at, got %+v", findings)
	}
	for _, f := range findings {
		if f.RuleID == model.RuleMissingVerifiedAt {
			if f.Severity != model.SeverityError {
				t.Errorf("missing_verified_at must be an error, got %s", f.Severity)
			}
			if f.Field != "fee_amount" {
				t.Errorf("Expected field fee_amount, got %q", f.Field)
			}
		}
	}
}

func TestProvenance_InvalidDateFormats(t *testing.T) {
	v := NewProvenance(provenanceConfig(t))

	bad := []any{"15-01-2025", "2025/01/15", "2025-1-5", "January 15", "", float64(20250115), nil}
	for _, date := range bad {
		wp := model.WorkProduct{
			"_metadata":              validMetadata(),
			"fee_amount":             float64(25),
			"fee_amount_source":      "https://example.gov/fees",
			"fee_amount_verified_at": date,
		}

		findings := v.Validate(wp)
		want := model.RuleInvalidDateFormat
		if date == nil {
			// JSON null reads as absent.
			want = model.RuleMissingVerifiedAt
		}
		if countRule(findings, want) != 1 {
			t.Errorf("verified_at=%v: expected one %s, got %+v", date, want, findings)
		}
	}
}

func TestProvenance_MissingSourceSeverityPerPolicy(t *testing.T) {
	for _, severity := range []model.Severity{model.SeverityWarning, model.SeverityError} {
		cfg := model.DefaultConfig()
		cfg.Fields = []model.FieldDescriptor{{Name: "fee_amount", Type: model.FieldNumeric}}
		cfg.FieldPolicy.MissingSourceSeverity = severity
		if err := cfg.Compile(); err != nil {
			t.Fatalf("Compile: %v", err)
		}

		wp := model.WorkProduct{
			"_metadata":              validMetadata(),
			"fee_amount":             float64(25),
			"fee_amount_verified_at": "2025-01-15",
		}

		findings := NewProvenance(cfg).Validate(wp)
		if countRule(findings, model.RuleMissingSource) != 1 {
			t.Fatalf("severity=%s: expected missing_source, got %+v", severity, findings)
		}
		for _, f := range findings {
			if f.RuleID == model.RuleMissingSource && f.Severity != severity {
				t.Errorf("Expected severity %s, got %s", severity, f.Severity)
			}
		}
	}
}

func TestProvenance_EmptySourceIsMissing(t *testing.T) {
	v := NewProvenance(provenanceConfig(t))

	wp := model.WorkProduct{
		"_metadata":              validMetadata(),
		"fee_amount":             float64(25),
		"fee_amount_source":      "",
		"fee_amount_verified_at": "2025-01-15",
	}

	if countRule(v.Validate(wp), model.RuleMissingSource) != 1 {
		t.Error("Expected empty source to be reported")
	}
}

func TestProvenance_NullableSourceTypes(t *testing.T) {
	v := NewProvenance(provenanceConfig(t))

	// status is an enum; enum sources are nullable by default config.
	wp := model.WorkProduct{
		"_metadata":          validMetadata(),
		"status":             "open",
		"status_source":      nil,
		"status_verified_at": "2025-01-15",
	}

	if n := countRule(v.Validate(wp), model.RuleMissingSource); n != 0 {
		t.Errorf("Expected no missing_source for nullable type, got %d", n)
	}
}

func TestProvenance_NullableSourceDescriptor(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Fields = []model.FieldDescriptor{{Name: "slogan", Type: model.FieldText, NullableSource: true}}
	if err := cfg.Compile(); err != nil {
		t.Fatalf("Compile: %v", err)
	}

	wp := model.WorkProduct{
		"_metadata":          validMetadata(),
		"slogan":             "we are open",
		"slogan_verified_at": "2025-01-15",
	}

	if n := countRule(NewProvenance(cfg).Validate(wp), model.RuleMissingSource); n != 0 {
		t.Errorf("Expected no missing_source for nullable descriptor, got %d", n)
	}
}

func TestProvenance_UndeclaredFieldSkipped(t *testing.T) {
	v := NewProvenance(provenanceConfig(t))

	// notes is not declared, so it needs no provenance.
	wp := model.WorkProduct{
		"_metadata": validMetadata(),
		"notes":     "free-form commentary",
	}

	if findings := v.Validate(wp); len(findings) != 0 {
		t.Errorf("Expected no findings for undeclared field, got %+v", findings)
	}
}

func TestProvenance_AbsentDeclaredFieldSkipped(t *testing.T) {
	v := NewProvenance(provenanceConfig(t))

	// fee_amount is declared but unused in this document.
	wp := model.WorkProduct{
		"_metadata": validMetadata(),
	}

	if findings := v.Validate(wp); len(findings) != 0 {
		t.Errorf("Expected no findings, got %+v", findings)
	}
}
