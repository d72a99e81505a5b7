package model

// Severity classifies a finding as blocking or advisory.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Rule identifiers. Stable strings: overrides and reports reference them.
const (
	RuleMissingMetadata   = "missing_metadata"
	RuleInvalidMetadata   = "invalid_metadata"
	RuleMissingVerifiedAt = "missing_verified_at"
	RuleInvalidDateFormat = "invalid_date_format"
	RuleMissingSource     = "missing_source"
	RuleForbiddenLanguage = "forbidden_language"
	RuleSentenceTooLong   = "sentence_too_long"
	RuleFactSentenceLong  = "fact_sentence_too_long"
	RuleHallucinatedNum   = "hallucinated_number"
)

// Finding is a single rule violation. Field is set for findings scoped to a
// work-product field; Offset is the byte position for findings scoped to the
// text body (-1 when not applicable). Findings are immutable once produced by
// a validator; only the aggregator sets the override audit flags.
type Finding struct {
	Severity Severity `json:"severity"`
	RuleID   string   `json:"rule_id"`
	Field    string   `json:"field,omitempty"`
	Offset   int      `json:"offset"`
	Message  string   `json:"message"`

	// Overridden marks an error excluded from the passed computation by an
	// active override. The finding stays in the report for audit.
	Overridden   bool   `json:"overridden,omitempty"`
	OverriddenBy string `json:"overridden_by,omitempty"`
}
