package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/ppiankov/factgate/internal/cache"
	"github.com/ppiankov/factgate/internal/engine"
	"github.com/ppiankov/factgate/internal/render"
	"github.com/ppiankov/factgate/internal/worker"
	"github.com/spf13/cobra"
)

var (
	concurrency    int
	outputDir      string
	batchTimeout   time.Duration
	filesPerSecond float64
	rateBurst      int
	noCache        bool
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <manifest>",
	Short: "Validate multiple work products from a manifest in parallel",
	Long: `Batch validates many work products concurrently:
- Read work product paths from a manifest file (one per line)
- A text body next to each file (.md, .txt or .html) is validated too
- Reports are written per document to the output directory
- With --as-of, unchanged documents are served from the report cache

Validation of distinct documents shares no state, so workers need no
coordination.

Example:
  factgate batch products.txt
  factgate batch products.txt --concurrency 10 --output-dir ./reports
  factgate batch products.txt --as-of 2025-06-01 --overrides overrides.jsonl`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./factgate-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().Float64Var(&filesPerSecond, "rate", 0, "max documents opened per second (0 = unlimited)")
	batchCmd.Flags().IntVar(&rateBurst, "burst", 5, "rate limiter burst size")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the report cache")
}

func runBatch(cmd *cobra.Command, args []string) error {
	manifest := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg, err := loadRuleConfig()
	if err != nil {
		return err
	}
	asOf, err := parseAsOf()
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Factgate Batch Validation\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Manifest:     %s\n", manifest)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	if !asOf.IsZero() {
		fmt.Fprintf(os.Stderr, "  As of:        %s\n", asOf.Format(time.RFC3339))
	}
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	processor := worker.NewBatchProcessor(engine.New(cfg), cfg, concurrency, filesPerSecond, rateBurst)
	if !asOf.IsZero() {
		processor.WithAsOf(asOf)
		if !noCache {
			if home, err := os.UserHomeDir(); err == nil {
				processor.WithCache(cache.NewLayeredStore(30*time.Minute, filepath.Join(home, ".factgate", "cache"), 7*24*time.Hour))
			}
		}
	}

	results, err := processor.ProcessManifest(ctx, manifest)
	if err != nil {
		return err
	}

	passCount := 0
	failCount := 0
	errCount := 0

	for _, result := range results {
		if result.Err != nil {
			errCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Path, result.Err)
			continue
		}

		slug := strings.TrimSuffix(filepath.Base(result.Path), filepath.Ext(result.Path))
		reportPath := filepath.Join(outputDir, slug+".report.json")
		if err := render.WriteJSON(result.Report, reportPath); err != nil {
			errCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Path, err)
			continue
		}

		cached := ""
		if result.Cached {
			cached = " (cached)"
		}
		if result.Report.Passed {
			passCount++
			fmt.Fprintf(os.Stderr, "✓ %s%s\n", result.Path, cached)
		} else {
			failCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %d error(s), %d warning(s)%s\n",
				result.Path, len(result.Report.Errors), len(result.Report.Warnings), cached)
		}
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d documents\n", len(results))
	fmt.Fprintf(os.Stderr, "  Passed:    %d\n", passCount)
	fmt.Fprintf(os.Stderr, "  Failed:    %d\n", failCount)
	fmt.Fprintf(os.Stderr, "  Errors:    %d\n", errCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	if failCount > 0 || errCount > 0 {
		return fmt.Errorf("batch: %d of %d documents did not pass", failCount+errCount, len(results))
	}
	return nil
}
