package cli

import (
	"fmt"
	"os"

	"github.com/ppiankov/factgate/internal/engine"
	"github.com/ppiankov/factgate/internal/render"
	"github.com/spf13/cobra"
)

var (
	textOutJSON string
	textQuiet   bool
)

// validateTextCmd represents the validate-text command
var validateTextCmd = &cobra.Command{
	Use:   "validate-text <file>",
	Short: "Validate a text file against the lexicon rules",
	Long: `Validate standalone text content:
- forbidden verbs, terms and patterns (errors)
- sentence and fact-sentence length limits (warnings)

Exit code 0 when the text passes, 1 otherwise.

Example:
  factgate validate-text draft.md
  factgate validate-text draft.md --config rules.yaml --quiet`,
	Args: cobra.ExactArgs(1),
	RunE: runValidateText,
}

func init() {
	rootCmd.AddCommand(validateTextCmd)

	validateTextCmd.Flags().StringVar(&textOutJSON, "json", "", "write the JSON report to this path")
	validateTextCmd.Flags().BoolVarP(&textQuiet, "quiet", "q", false, "only output errors")
}

func runValidateText(cmd *cobra.Command, args []string) error {
	path := args[0]

	cfg, err := loadRuleConfig()
	if err != nil {
		return err
	}
	asOf, err := parseAsOf()
	if err != nil {
		return err
	}

	body, err := loadBody(path)
	if err != nil {
		return err
	}

	report := engine.New(cfg).ValidateText(body, asOf)

	render.Text(os.Stdout, path, report, textQuiet)

	if textOutJSON != "" {
		if err := render.WriteJSON(report, textOutJSON); err != nil {
			return err
		}
	}

	if !report.Passed {
		return fmt.Errorf("validation failed: %d blocking error(s)", len(report.BlockingErrors()))
	}
	return nil
}
