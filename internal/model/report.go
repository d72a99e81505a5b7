package model

import "time"

// Report is the outcome of validating one work product. Passed is true iff
// no unsuppressed error remains after override application. Findings are
// partitioned by severity and keep validator order: provenance first, then
// lexicon, then number grounding.
type Report struct {
	Passed   bool      `json:"passed"`
	AsOf     time.Time `json:"as_of"`
	Errors   []Finding `json:"errors"`
	Warnings []Finding `json:"warnings"`
}

// BlockingErrors returns the errors that still count against Passed.
func (r *Report) BlockingErrors() []Finding {
	var out []Finding
	for _, f := range r.Errors {
		if !f.Overridden {
			out = append(out, f)
		}
	}
	return out
}
