package model

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// OverrideRecord is a time-bounded, justified suppression of one error for
// one field. Records are written by the human review workflow; the engine
// only consumes them. An override never removes a finding from the report,
// it only excludes the matching error from the passed computation.
type OverrideRecord struct {
	Type       string `json:"type"`
	Rule       string `json:"rule"`
	Field      string `json:"field"`
	Reason     string `json:"reason"`
	ApprovedBy string `json:"approved_by"`
	ExpiresAt  string `json:"expires_at"`
	LoggedAt   string `json:"logged_at,omitempty"`
}

// ActiveAt reports whether the override still suppresses at the given
// validation instant. The record covers up to, not including, midnight UTC
// of expires_at. A malformed expiry date never suppresses.
func (o OverrideRecord) ActiveAt(asOf time.Time) bool {
	exp, err := time.ParseInLocation("2006-01-02", o.ExpiresAt, time.UTC)
	if err != nil {
		return false
	}
	return asOf.Before(exp)
}

// Matches reports whether the override applies to a finding. Findings that
// carry a field require an exact (rule, field) match. Document- and
// text-scope findings have no field; for those the rule alone decides and
// the override's field is kept as reviewer annotation.
func (o OverrideRecord) Matches(f Finding) bool {
	if o.Rule != f.RuleID {
		return false
	}
	if f.Field == "" {
		return true
	}
	return o.Field == f.Field
}

// LoadOverrides reads override records from a JSONL log: one JSON object per
// line, blank lines skipped, entries whose type is not "override" ignored.
func LoadOverrides(path string) ([]OverrideRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open override log: %w", err)
	}
	defer func() { _ = f.Close() }()

	records, err := ReadOverrides(f)
	if err != nil {
		return nil, fmt.Errorf("read override log %s: %w", path, err)
	}
	return records, nil
}

// ReadOverrides parses a JSONL override log from a reader.
func ReadOverrides(r io.Reader) ([]OverrideRecord, error) {
	var records []OverrideRecord

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var rec OverrideRecord
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if rec.Type != "override" {
			continue
		}
		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
