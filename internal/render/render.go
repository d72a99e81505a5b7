// Package render turns validation reports into artifacts: a JSON document
// for machines, a terse terminal listing for the human fixing the findings.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ppiankov/factgate/internal/model"
)

// JSON marshals a report with stable indentation.
func JSON(report *model.Report) ([]byte, error) {
	return json.MarshalIndent(report, "", "  ")
}

// WriteJSON writes the JSON artifact to a file.
func WriteJSON(report *model.Report, path string) error {
	data, err := JSON(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Text writes the human listing. Every error and warning is shown, not just
// the first, so one pass fixes everything. Quiet mode drops warnings.
func Text(w io.Writer, label string, report *model.Report, quiet bool) {
	if !quiet {
		fmt.Fprintf(w, "Validating: %s\n\n", label)
	}

	if len(report.Errors) > 0 {
		fmt.Fprintln(w, "ERRORS:")
		for _, f := range report.Errors {
			suffix := ""
			if f.Overridden {
				suffix = fmt.Sprintf(" [overridden by %s]", f.OverriddenBy)
			}
			fmt.Fprintf(w, "  - [%s] %s%s\n", f.RuleID, f.Message, suffix)
		}
	}

	if len(report.Warnings) > 0 && !quiet {
		fmt.Fprintln(w, "WARNINGS:")
		for _, f := range report.Warnings {
			fmt.Fprintf(w, "  - [%s] %s\n", f.RuleID, f.Message)
		}
	}

	if report.Passed {
		if !quiet {
			fmt.Fprintln(w, "\n✓ Validation passed")
		}
	} else {
		fmt.Fprintln(w, "\n✗ Validation failed")
	}
}
