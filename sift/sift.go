package sift

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sokinpui/sift/internal/cli"
	"github.com/sokinpui/sift/internal/diff"
	"github.com/sokinpui/sift/internal/fs"
	"github.com/sokinpui/sift/internal/marker"
	"github.com/sokinpui/sift/internal/model"
	"github.com/sokinpui/sift/internal/report"
	"github.com/sokinpui/sift/internal/resolve"
	"github.com/sokinpui/sift/internal/rules"
	"github.com/sokinpui/sift/internal/scan"
	"github.com/sokinpui/sift/internal/source"
	"github.com/sokinpui/sift/internal/ui"
)

// App orchestrates the entire comparison pipeline.
type App struct {
	cfg      *cli.Config
	rules    *rules.Rules
	resolver *fs.PathResolver
	provider *source.Provider
	log      *zap.Logger
}

// DetailedError enhances a standard error with a stack trace.
type DetailedError struct {
	Err   error
	Stack []byte
}

func (e *DetailedError) Error() string {
	return e.Err.Error()
}

func (e *DetailedError) Unwrap() error {
	return e.Err
}

// New creates a new App instance.
func New(cfg *cli.Config) (*App, error) {
	r := rules.Default()
	if cfg.RulesPath != "" {
		loaded, err := rules.Load(cfg.RulesPath)
		if err != nil {
			return nil, err
		}
		r = loaded
	}

	log := zap.NewNop()
	if cfg.Verbose {
		dev, err := zap.NewDevelopment()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
		log = dev
	}

	return &App{
		cfg:      cfg,
		rules:    r,
		resolver: fs.NewPathResolver(cfg.LookupDirs),
		provider: source.New(),
		log:      log,
	}, nil
}

// Execute runs the comparison selected by the parsed flags and returns the
// results in a stable order.
func (a *App) Execute() (results []*model.Result, err error) {
	// Centralized panic recovery.
	defer func() {
		if r := recover(); r != nil {
			err = &DetailedError{
				Err:   fmt.Errorf("internal panic: %v", r),
				Stack: debug.Stack(),
			}
		}
	}()

	ctx, cancel := a.comparisonContext()
	defer cancel()

	if a.cfg.FromMarkdown {
		res, err := a.compareMarkdown(ctx)
		if err != nil {
			return nil, err
		}
		return []*model.Result{res}, nil
	}

	srcPath := a.resolver.Resolve(a.cfg.SourcePath)
	tgtPath := a.resolver.Resolve(a.cfg.TargetPath)
	if srcPath == "" {
		return nil, fmt.Errorf("source path not found: %s", a.cfg.SourcePath)
	}
	if tgtPath == "" {
		return nil, fmt.Errorf("target path not found: %s", a.cfg.TargetPath)
	}

	if isDir(srcPath) && isDir(tgtPath) {
		return a.compareDirs(ctx, srcPath, tgtPath)
	}
	if isDir(srcPath) != isDir(tgtPath) {
		return nil, fmt.Errorf("cannot compare a directory with a file")
	}

	res, err := a.compareFiles(ctx, srcPath, tgtPath)
	if err != nil {
		return nil, err
	}
	return []*model.Result{res}, nil
}

// Report writes all results to w in the configured format.
func (a *App) Report(results []*model.Result) error {
	for _, res := range results {
		if err := report.Write(os.Stdout, res, a.cfg.Format); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) comparisonContext() (context.Context, context.CancelFunc) {
	if a.cfg.TimeoutMs > 0 {
		return context.WithTimeout(context.Background(), time.Duration(a.cfg.TimeoutMs)*time.Millisecond)
	}
	return context.WithCancel(context.Background())
}

// compareFiles runs the pipeline on a single file pair.
func (a *App) compareFiles(ctx context.Context, srcPath, tgtPath string) (*model.Result, error) {
	srcContent, err := a.provider.ReadFile(srcPath)
	if err != nil {
		return nil, err
	}
	tgtContent, err := a.provider.ReadFile(tgtPath)
	if err != nil {
		return nil, err
	}
	return a.comparePair(ctx, srcPath, srcContent, tgtPath, tgtContent)
}

// compareMarkdown extracts the two variants from a markdown document read
// from stdin or the clipboard.
func (a *App) compareMarkdown(ctx context.Context) (*model.Result, error) {
	doc, err := a.provider.GetDocument()
	if err != nil {
		return nil, err
	}
	if doc == "" {
		return nil, fmt.Errorf("no markdown input to compare")
	}
	pair, err := source.VariantsFromMarkdown(doc)
	if err != nil {
		return nil, err
	}
	return a.comparePair(ctx, pair.SourceName, pair.SourceContent, pair.TargetName, pair.TargetContent)
}

// compareDirs pairs the files of two variant trees by relative path and
// compares the pairs concurrently. Each comparison owns its own pipeline
// state, so pairs share nothing but the read-only rule set.
func (a *App) compareDirs(ctx context.Context, srcDir, tgtDir string) ([]*model.Result, error) {
	pairs, err := fs.DiscoverPairs(srcDir, tgtDir, a.cfg.Extensions)
	if err != nil {
		return nil, err
	}
	if len(pairs) == 0 {
		ui.Warning("No file pairs found. Nothing to compare.")
		return nil, nil
	}
	a.log.Debug("discovered pairs", zap.Int("count", len(pairs)))

	results := make([]*model.Result, len(pairs))
	outcomes := make([]ui.PairOutcome, len(pairs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Jobs)
	for i, pair := range pairs {
		g.Go(func() error {
			res, err := a.comparePairFiles(gctx, pair)
			outcomes[i] = ui.PairOutcome{Rel: pair.Rel, Err: err}
			if err != nil {
				return err
			}
			results[i] = res
			outcomes[i].Keep, outcomes[i].Remove, outcomes[i].Filtered = report.Tally(res)
			return nil
		})
	}
	err = g.Wait()
	ui.PrintBatchSummary(outcomes)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// comparePairFiles handles one pair of a directory comparison. A one-sided
// pair is compared against an empty counterpart, so a file only present in
// the target yields all-insert decisions and vice versa.
func (a *App) comparePairFiles(ctx context.Context, pair fs.Pair) (*model.Result, error) {
	var srcContent, tgtContent string
	var err error

	srcName, tgtName := pair.SourcePath, pair.TargetPath
	if pair.SourcePath != "" {
		if srcContent, err = a.provider.ReadFile(pair.SourcePath); err != nil {
			return nil, err
		}
	} else {
		srcName = pair.Rel + " (absent)"
	}
	if pair.TargetPath != "" {
		if tgtContent, err = a.provider.ReadFile(pair.TargetPath); err != nil {
			return nil, err
		}
	} else {
		tgtName = pair.Rel + " (absent)"
	}
	return a.comparePair(ctx, srcName, srcContent, tgtName, tgtContent)
}

// comparePair is the pipeline core: normalize both variants, classify their
// markers, diff, resolve. Each stage consumes the complete output of the
// prior one; the context deadline is checked between stages and inside the
// diff table fill.
func (a *App) comparePair(ctx context.Context, srcName, srcContent, tgtName, tgtContent string) (*model.Result, error) {
	syntax := a.rules.Syntax()

	srcSnap, err := scan.Normalize(srcName, srcContent, syntax)
	if err != nil {
		return nil, err
	}
	tgtSnap, err := scan.Normalize(tgtName, tgtContent, syntax)
	if err != nil {
		return nil, err
	}
	a.log.Debug("normalized",
		zap.Int("sourceLines", srcSnap.Len()),
		zap.Int("targetLines", tgtSnap.Len()))
	if err := stageCheck(ctx, "normalize"); err != nil {
		return nil, err
	}

	srcDirs := marker.Classify(srcSnap, a.rules)
	tgtDirs := marker.Classify(tgtSnap, a.rules)
	a.log.Debug("classified markers",
		zap.Int("sourceDirectives", len(srcDirs)),
		zap.Int("targetDirectives", len(tgtDirs)))
	if err := stageCheck(ctx, "classify"); err != nil {
		return nil, err
	}

	ops, err := diff.Diff(ctx, srcSnap, tgtSnap)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &model.TimeoutError{Stage: "diff"}
		}
		// Cancellation from a sibling comparison is not a timeout.
		return nil, err
	}
	hunks := diff.Hunks(ops, srcDirs, tgtDirs)
	a.log.Debug("diffed", zap.Int("ops", len(ops)), zap.Int("hunks", len(hunks)))
	if err := stageCheck(ctx, "resolve"); err != nil {
		return nil, err
	}

	decisions, warnings := resolve.Resolve(ops, hunks)
	return &model.Result{
		SourcePath: srcName,
		TargetPath: tgtName,
		Decisions:  decisions,
		Warnings:   warnings,
	}, nil
}

func stageCheck(ctx context.Context, stage string) error {
	err := ctx.Err()
	if errors.Is(err, context.DeadlineExceeded) {
		return &model.TimeoutError{Stage: stage}
	}
	return err
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
