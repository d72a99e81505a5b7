package validate

import (
	"strings"
	"testing"

	"github.com/ppiankov/factgate/internal/model"
)

func groundingConfig(t *testing.T, mutate func(*model.RuleConfig)) *model.RuleConfig {
	t.Helper()
	cfg := model.DefaultConfig()
	cfg.Fields = []model.FieldDescriptor{
		{Name: "fee_amount", Type: model.FieldNumeric},
		{Name: "processing_time", Type: model.FieldText},
	}
	if mutate != nil {
		mutate(cfg)
	}
	if err := cfg.Compile(); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return cfg
}

func feeWorkProduct(fee float64) model.WorkProduct {
	return model.WorkProduct{
		"_metadata":              map[string]any{"extraction_date": "2025-01-15T10:00:00Z", "model": "test", "extractor_version": "1.0"},
		"fee_amount":             fee,
		"fee_amount_source":      "https://example.gov/fees",
		"fee_amount_verified_at": "2025-01-15",
	}
}

func TestNumberGrounding_GroundedNumberPasses(t *testing.T) {
	v := NewNumberGrounding(groundingConfig(t, nil))

	findings := v.Validate("The fee is 30 euros.", feeWorkProduct(30))
	if len(findings) != 0 {
		t.Fatalf("Expected no findings, got %+v", findings)
	}
}

func TestNumberGrounding_HallucinatedNumberFails(t *testing.T) {
	v := NewNumberGrounding(groundingConfig(t, nil))

	findings := v.Validate("The fee is 45 euros.", feeWorkProduct(30))
	if len(findings) != 1 {
		t.Fatalf("Expected 1 finding, got %+v", findings)
	}
	f := findings[0]
	if f.RuleID != model.RuleHallucinatedNum {
		t.Errorf("Expected hallucinated_number, got %s", f.RuleID)
	}
	if f.Severity != model.SeverityError {
		t.Errorf("Expected error, got %s", f.Severity)
	}
	if !strings.Contains(f.Message, "45") {
		t.Errorf("Expected message to name the number, got %q", f.Message)
	}
	if f.Offset != 11 {
		t.Errorf("Expected offset 11, got %d", f.Offset)
	}
}

func TestNumberGrounding_EveryHallucinationReported(t *testing.T) {
	v := NewNumberGrounding(groundingConfig(t, nil))

	findings := v.Validate("Pay 45 now and 90 later.", feeWorkProduct(30))
	if len(findings) != 2 {
		t.Fatalf("Expected 2 findings, got %+v", findings)
	}
}

func TestNumberGrounding_NumbersInsideStringValues(t *testing.T) {
	v := NewNumberGrounding(groundingConfig(t, nil))

	wp := feeWorkProduct(30)
	wp["processing_time"] = "approximately 14 days"

	findings := v.Validate("Processing takes about 14 days.", wp)
	if len(findings) != 0 {
		t.Fatalf("Expected no findings, got %+v", findings)
	}
}

func TestNumberGrounding_NestedValues(t *testing.T) {
	v := NewNumberGrounding(groundingConfig(t, nil))

	wp := feeWorkProduct(30)
	wp["fee_amount"] = map[string]any{"regular": float64(30), "reduced": []any{float64(15)}}

	findings := v.Validate("Pay 30 or the reduced 15.", wp)
	if len(findings) != 0 {
		t.Fatalf("Expected no findings, got %+v", findings)
	}
}

func TestNumberGrounding_CurrencyAndPercentNormalization(t *testing.T) {
	v := NewNumberGrounding(groundingConfig(t, nil))

	wp := feeWorkProduct(30)
	findings := v.Validate("The fee of €30 covers 30% of cost.", wp)
	if len(findings) != 0 {
		t.Fatalf("Expected no findings, got %+v", findings)
	}
}

func TestNumberGrounding_DatesExcluded(t *testing.T) {
	v := NewNumberGrounding(groundingConfig(t, nil))

	findings := v.Validate("Verified on 2025-01-15, the fee is 30 euros.", feeWorkProduct(30))
	if len(findings) != 0 {
		t.Fatalf("Expected date components excluded, got %+v", findings)
	}
}

func TestNumberGrounding_OrdinalsExcluded(t *testing.T) {
	v := NewNumberGrounding(groundingConfig(t, nil))

	findings := v.Validate("Take the 3rd entrance; the fee is 30 euros.", feeWorkProduct(30))
	if len(findings) != 0 {
		t.Fatalf("Expected ordinal excluded, got %+v", findings)
	}
}

func TestNumberGrounding_ListIndicesExcluded(t *testing.T) {
	v := NewNumberGrounding(groundingConfig(t, nil))

	body := "1. Bring your passport\n2. Pay the fee of 30 euros\n"
	findings := v.Validate(body, feeWorkProduct(30))
	if len(findings) != 0 {
		t.Fatalf("Expected list indices excluded, got %+v", findings)
	}
}

func TestNumberGrounding_ExclusionsAreConfigurable(t *testing.T) {
	cfg := groundingConfig(t, func(c *model.RuleConfig) {
		c.Numbers.Exclusions = nil
	})
	v := NewNumberGrounding(cfg)

	body := "1. Pay the fee of 30 euros\n"
	findings := v.Validate(body, feeWorkProduct(30))
	if len(findings) != 1 {
		t.Fatalf("Expected the list index flagged without exclusions, got %+v", findings)
	}
}

func TestNumberGrounding_YearsIgnoredByDefault(t *testing.T) {
	v := NewNumberGrounding(groundingConfig(t, nil))

	findings := v.Validate("As of 2025 the fee is 30 euros.", feeWorkProduct(30))
	if len(findings) != 0 {
		t.Fatalf("Expected year ignored, got %+v", findings)
	}
}

func TestNumberGrounding_YearsCheckedWhenConfigured(t *testing.T) {
	cfg := groundingConfig(t, func(c *model.RuleConfig) {
		c.Numbers.IgnoreYears = false
	})
	v := NewNumberGrounding(cfg)

	findings := v.Validate("As of 2025 the fee is 30 euros.", feeWorkProduct(30))
	if len(findings) != 1 {
		t.Fatalf("Expected the year flagged, got %+v", findings)
	}
}

func TestNumberGrounding_AllowedNumbersConfig(t *testing.T) {
	cfg := groundingConfig(t, func(c *model.RuleConfig) {
		c.Numbers.AllowedNumbers = []string{"14"}
	})
	v := NewNumberGrounding(cfg)

	findings := v.Validate("Processing takes 14 days; the fee is 30 euros.", feeWorkProduct(30))
	if len(findings) != 0 {
		t.Fatalf("Expected allowed number accepted, got %+v", findings)
	}
}

func TestNumberGrounding_UndeclaredFallbackWalk(t *testing.T) {
	cfg := model.DefaultConfig()
	if err := cfg.Compile(); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	v := NewNumberGrounding(cfg)

	// No descriptors declared: all non-reserved fields ground numbers.
	wp := model.WorkProduct{
		"_metadata":       map[string]any{},
		"fee":             float64(25),
		"fee_verified_at": "2025-01-15",
		"fee_source":      "https://example.gov",
	}

	findings := v.Validate("The fee is 25 euros.", wp)
	if len(findings) != 0 {
		t.Fatalf("Expected fallback walk to ground 25, got %+v", findings)
	}
}
