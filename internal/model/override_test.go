package model

import (
	"strings"
	"testing"
	"time"
)

func TestOverrideRecord_ActiveAt(t *testing.T) {
	rec := OverrideRecord{Type: "override", Rule: RuleHallucinatedNum, Field: "fee_amount", ExpiresAt: "2025-06-15"}

	tests := []struct {
		asOf   time.Time
		active bool
	}{
		{time.Date(2025, 6, 14, 23, 59, 0, 0, time.UTC), true},
		{time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), false},
		{time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC), false},
		{time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), true},
	}
	for _, tt := range tests {
		if got := rec.ActiveAt(tt.asOf); got != tt.active {
			t.Errorf("ActiveAt(%s): expected %v, got %v", tt.asOf, tt.active, got)
		}
	}
}

func TestOverrideRecord_MalformedExpiryNeverSuppresses(t *testing.T) {
	rec := OverrideRecord{Type: "override", Rule: RuleMissingSource, ExpiresAt: "soon"}
	if rec.ActiveAt(time.Now()) {
		t.Error("Expected malformed expiry to be inactive")
	}
}

func TestOverrideRecord_Matches(t *testing.T) {
	rec := OverrideRecord{Rule: RuleMissingSource, Field: "fee_amount"}

	if !rec.Matches(Finding{RuleID: RuleMissingSource, Field: "fee_amount"}) {
		t.Error("Expected exact (rule, field) match")
	}
	if rec.Matches(Finding{RuleID: RuleMissingSource, Field: "office_name"}) {
		t.Error("Expected field mismatch to fail")
	}
	if rec.Matches(Finding{RuleID: RuleMissingVerifiedAt, Field: "fee_amount"}) {
		t.Error("Expected rule mismatch to fail")
	}
	// Text-scope findings carry no field; the rule alone decides.
	if !rec.Matches(Finding{RuleID: RuleMissingSource}) {
		t.Error("Expected field-less finding to match on rule")
	}
}

func TestReadOverrides_JSONL(t *testing.T) {
	log := `
{"type":"override","rule":"hallucinated_number","field":"fee_amount","reason":"confirmed by phone","approved_by":"rev@example.org","expires_at":"2025-12-31","logged_at":"2025-06-01T10:00:00Z"}

{"type":"correction","field":"fee_amount","old_value":30,"new_value":25}
{"type":"override","rule":"missing_source","field":"office_name","reason":"source offline","approved_by":"rev@example.org","expires_at":"2025-09-01"}
`

	records, err := ReadOverrides(strings.NewReader(log))
	if err != nil {
		t.Fatalf("ReadOverrides: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 override records, got %d", len(records))
	}
	if records[0].Rule != RuleHallucinatedNum || records[0].Field != "fee_amount" {
		t.Errorf("Unexpected first record: %+v", records[0])
	}
	if records[1].ApprovedBy != "rev@example.org" {
		t.Errorf("Unexpected second record: %+v", records[1])
	}
}

func TestReadOverrides_MalformedLine(t *testing.T) {
	if _, err := ReadOverrides(strings.NewReader("not json\n")); err == nil {
		t.Fatal("Expected error for malformed line")
	}
}
