package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/factgate/internal/engine"
	"github.com/ppiankov/factgate/internal/model"
	"github.com/ppiankov/factgate/internal/render"
	"github.com/ppiankov/factgate/internal/text"
	"github.com/spf13/cobra"
)

var (
	bodyFile string
	outJSON  string
	quiet    bool
)

// validateWPCmd represents the validate-work-product command
var validateWPCmd = &cobra.Command{
	Use:   "validate-work-product <file>",
	Short: "Validate a work product JSON file for provenance and grounding",
	Long: `Validate a work product document:
- _metadata block with extraction date, model and extractor version
- every declared factual field carries *_source and *_verified_at
- with --body: forbidden language, sentence length, number grounding

Exit code 0 when the document passes, 1 otherwise.

Example:
  factgate validate-work-product office.json
  factgate validate-work-product office.json --body office.md --config rules.yaml
  factgate validate-work-product office.json --overrides overrides.jsonl --as-of 2025-06-01`,
	Args: cobra.ExactArgs(1),
	RunE: runValidateWorkProduct,
}

func init() {
	rootCmd.AddCommand(validateWPCmd)

	validateWPCmd.Flags().StringVar(&bodyFile, "body", "", "text body published with the work product (md, txt or html)")
	validateWPCmd.Flags().StringVar(&outJSON, "json", "", "write the JSON report to this path")
	validateWPCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "only output errors")
}

func runValidateWorkProduct(cmd *cobra.Command, args []string) error {
	path := args[0]

	cfg, err := loadRuleConfig()
	if err != nil {
		return err
	}
	asOf, err := parseAsOf()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read work product: %w", err)
	}

	wp, err := model.ParseWorkProduct(data)
	if err != nil {
		return err
	}

	body := ""
	if bodyFile != "" {
		body, err = loadBody(bodyFile)
		if err != nil {
			return err
		}
	}

	report, err := engine.New(cfg).Validate(wp, body, asOf)
	if err != nil {
		return err
	}

	render.Text(os.Stdout, path, report, quiet)

	if outJSON != "" {
		if err := render.WriteJSON(report, outJSON); err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Report written to %s\n", outJSON)
		}
	}

	if !report.Passed {
		return fmt.Errorf("validation failed: %d blocking error(s)", len(report.BlockingErrors()))
	}
	return nil
}

// loadBody reads a body file, extracting visible text from HTML.
func loadBody(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".html" || ext == ".htm" {
		return text.FromHTML(string(data))
	}
	return string(data), nil
}
