package worker

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ppiankov/factgate/internal/cache"
	"github.com/ppiankov/factgate/internal/engine"
	"github.com/ppiankov/factgate/internal/model"
	"github.com/ppiankov/factgate/internal/text"
)

// bodyExtensions are tried, in order, next to each work product file.
var bodyExtensions = []string{".md", ".txt", ".html"}

// FileResult is the outcome of validating one work product file.
type FileResult struct {
	Path   string
	Report *model.Report
	Cached bool
	Err    error
}

// GetError returns the job error, if any.
func (r *FileResult) GetError() error {
	return r.Err
}

// validateJob validates a single file through the shared engine.
type validateJob struct {
	path      string
	processor *BatchProcessor
}

// Execute loads the work product and its sibling body, validates, and
// records the report in the cache.
func (j *validateJob) Execute(ctx context.Context) Result {
	return j.processor.validateFile(ctx, j.path)
}

// BatchProcessor validates many work product files in parallel. The engine
// and config are shared read-only; every document is independent.
type BatchProcessor struct {
	engine      *engine.Engine
	cfg         *model.RuleConfig
	concurrency int
	limiter     *Limiter
	store       cache.Store
	asOf        time.Time
}

// NewBatchProcessor creates a batch processor.
func NewBatchProcessor(eng *engine.Engine, cfg *model.RuleConfig, concurrency int, filesPerSecond float64, burst int) *BatchProcessor {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &BatchProcessor{
		engine:      eng,
		cfg:         cfg,
		concurrency: concurrency,
		limiter:     NewLimiter(filesPerSecond, burst),
	}
}

// WithCache attaches a report cache.
func (p *BatchProcessor) WithCache(store cache.Store) *BatchProcessor {
	p.store = store
	return p
}

// WithAsOf pins the validation instant, for reproducible replays.
func (p *BatchProcessor) WithAsOf(asOf time.Time) *BatchProcessor {
	p.asOf = asOf
	return p
}

// ProcessManifest reads work product paths from a manifest file (one per
// line, blanks and #-comments skipped) and validates them all.
func (p *BatchProcessor) ProcessManifest(ctx context.Context, manifestPath string) ([]*FileResult, error) {
	f, err := os.Open(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer func() { _ = f.Close() }()

	var paths []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !filepath.IsAbs(line) {
			line = filepath.Join(filepath.Dir(manifestPath), line)
		}
		paths = append(paths, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	return p.ProcessPaths(ctx, paths), nil
}

// ProcessPaths validates the given files concurrently. Results come back
// sorted by path so batch output is deterministic.
func (p *BatchProcessor) ProcessPaths(ctx context.Context, paths []string) []*FileResult {
	pool := NewPool(p.concurrency)
	pool.Start()

	go func() {
		<-ctx.Done()
		pool.Shutdown()
	}()

	for _, path := range paths {
		pool.Submit(&validateJob{path: path, processor: p})
	}

	raw := pool.Wait()

	results := make([]*FileResult, 0, len(raw))
	for _, r := range raw {
		results = append(results, r.(*FileResult))
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	return results
}

func (p *BatchProcessor) validateFile(ctx context.Context, path string) *FileResult {
	if err := p.limiter.Wait(ctx); err != nil {
		return &FileResult{Path: path, Err: err}
	}

	key, ok := p.cacheKey(path)
	if ok {
		if data, found := p.store.Get(key); found {
			var report model.Report
			if err := json.Unmarshal(data, &report); err == nil {
				return &FileResult{Path: path, Report: &report, Cached: true}
			}
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return &FileResult{Path: path, Err: fmt.Errorf("read work product: %w", err)}
	}

	wp, err := model.ParseWorkProduct(data)
	if err != nil {
		return &FileResult{Path: path, Err: err}
	}

	body, err := loadSiblingBody(path)
	if err != nil {
		return &FileResult{Path: path, Err: err}
	}

	report, err := p.engine.Validate(wp, body, p.asOf)
	if err != nil {
		return &FileResult{Path: path, Err: err}
	}

	if ok {
		if data, err := json.Marshal(report); err == nil {
			_ = p.store.Set(key, data, 0)
		}
	}

	return &FileResult{Path: path, Report: report}
}

// cacheKey is only usable when a store is attached and the as-of instant is
// pinned: a report keyed to "now" would go stale the moment an override
// expires.
func (p *BatchProcessor) cacheKey(path string) (string, bool) {
	if p.store == nil || p.asOf.IsZero() {
		return "", false
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", false
	}
	return cache.ReportKey(path, info.ModTime(), info.Size(), p.cfg.Fingerprint()), true
}

// loadSiblingBody finds the text body published alongside a work product:
// same basename with a .md, .txt or .html extension. Missing body means the
// text validators are skipped.
func loadSiblingBody(wpPath string) (string, error) {
	base := strings.TrimSuffix(wpPath, filepath.Ext(wpPath))
	for _, ext := range bodyExtensions {
		data, err := os.ReadFile(base + ext)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", fmt.Errorf("read body: %w", err)
		}
		if ext == ".html" {
			return text.FromHTML(string(data))
		}
		return string(data), nil
	}
	return "", nil
}
