// Package engine runs the analysis pipeline: parsing, control flow graph
// construction, symbolic execution and checks, over one source or a set of
// files.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/sourcegraph/conc/iter"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/l3aro/go-symflow/pkg/cache"
	"github.com/l3aro/go-symflow/pkg/cfg"
	"github.com/l3aro/go-symflow/pkg/checks"
	"github.com/l3aro/go-symflow/pkg/complexity"
	"github.com/l3aro/go-symflow/pkg/symbolic"
	"github.com/l3aro/go-symflow/pkg/syntax"
)

// reportVersion is part of every cache key; bump it when analysis output
// changes for the same input.
const reportVersion = "1"

// FunctionResult is the outcome of analyzing one function.
type FunctionResult struct {
	Function *syntax.Function
	Graph    *cfg.Graph
	Result   *symbolic.Result
	// Err is set when the function could not be analyzed. Other functions
	// of the file are unaffected.
	Err error
}

// FileResult is the full analysis of one source file.
type FileResult struct {
	File      *syntax.File
	Functions []FunctionResult
	Issues    []checks.Issue
}

// Function returns the result of the first function with the given name.
func (r *FileResult) Function(name string) (FunctionResult, bool) {
	for _, fr := range r.Functions {
		if fr.Function.Name == name {
			return fr, true
		}
	}
	return FunctionResult{}, false
}

// Errors returns the per-function failures.
func (r *FileResult) Errors() []error {
	var out []error
	for _, fr := range r.Functions {
		if fr.Err != nil {
			out = append(out, fmt.Errorf("function %s: %w", fr.Function.Name, fr.Err))
		}
	}
	return out
}

// Report is the serializable summary of one file, as stored in the cache and
// emitted by the check command.
type Report struct {
	Path      string         `json:"path"`
	Functions int            `json:"functions"`
	Issues    []checks.Issue `json:"issues"`
	Failures  []string       `json:"failures,omitempty"`
	Cached    bool           `json:"cached,omitempty" msgpack:"-"`
}

// Report summarizes the result.
func (r *FileResult) Report() *Report {
	rep := &Report{
		Path:      r.File.Path,
		Functions: len(r.Functions),
		Issues:    r.Issues,
	}
	for _, err := range r.Errors() {
		rep.Failures = append(rep.Failures, err.Error())
	}
	return rep
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithWorkers bounds the number of files analyzed concurrently. Values below
// one select runtime.NumCPU.
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		a.workers = n
	}
}

// WithMaxIterations sets the fixpoint cap per function. Zero derives it from
// the graph size.
func WithMaxIterations(n int) Option {
	return func(a *Analyzer) {
		a.maxIterations = n
	}
}

// WithMaxComplexity sets the expression complexity threshold.
func WithMaxComplexity(n int) Option {
	return func(a *Analyzer) {
		a.maxComplexity = n
	}
}

// WithRules selects the rules run on every file.
func WithRules(rules []checks.Rule) Option {
	return func(a *Analyzer) {
		a.rules = rules
	}
}

// WithCache stores file reports in c, keyed by path, content and settings.
func WithCache(c *cache.LRUCache) Option {
	return func(a *Analyzer) {
		a.cache = c
	}
}

// Analyzer runs the pipeline. It holds no per-run state and is safe for
// concurrent use.
type Analyzer struct {
	logger        *zap.Logger
	workers       int
	maxIterations int
	maxComplexity int
	rules         []checks.Rule
	cache         *cache.LRUCache
}

// New creates an Analyzer running every rule with default settings unless
// options say otherwise.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		logger:        zap.NewNop(),
		maxComplexity: complexity.DefaultMax,
		rules:         checks.All(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.workers < 1 {
		a.workers = runtime.NumCPU()
	}
	a.logger = a.logger.Named("engine")
	return a
}

// AnalyzeSource parses src and analyzes every function in it. Functions are
// analyzed in parallel; results keep source order.
func (a *Analyzer) AnalyzeSource(ctx context.Context, path string, src []byte) (*FileResult, error) {
	file, err := syntax.Parse(ctx, path, src)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return a.analyze(file), nil
}

func (a *Analyzer) analyze(file *syntax.File) *FileResult {
	res := &FileResult{File: file}
	res.Functions = iter.Map(file.Functions, func(fn **syntax.Function) FunctionResult {
		return a.analyzeFunction(*fn)
	})

	cctx := &checks.Context{File: file, MaxComplexity: a.maxComplexity}
	for _, fr := range res.Functions {
		cctx.Results = append(cctx.Results, fr.Result)
		if fr.Err != nil {
			a.logger.Warn("function skipped",
				zap.String("path", file.Path),
				zap.String("function", fr.Function.Name),
				zap.Error(fr.Err))
		}
	}
	res.Issues = checks.Run(cctx, a.rules)

	a.logger.Debug("file analyzed",
		zap.String("path", file.Path),
		zap.Int("functions", len(res.Functions)),
		zap.Int("issues", len(res.Issues)),
		zap.Int("parse_errors", file.Errors))
	return res
}

// AnalyzeFile reads and analyzes one file.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) (*FileResult, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return a.AnalyzeSource(ctx, path, src)
}

func (a *Analyzer) analyzeFunction(fn *syntax.Function) FunctionResult {
	fr := FunctionResult{Function: fn}
	g, err := cfg.Build(fn)
	if err != nil {
		fr.Err = err
		return fr
	}
	fr.Graph = g
	res, err := symbolic.Execute(g,
		symbolic.WithLogger(a.logger),
		symbolic.WithMaxIterations(a.maxIterations))
	if err != nil {
		fr.Err = err
		return fr
	}
	fr.Result = res
	return fr
}

// ProgressFunc is called after each file is processed.
type ProgressFunc func()

// AnalyzeFiles analyzes files concurrently, at most Workers at a time, and
// returns one report per file in input order. Files that fail are left nil
// and their errors are returned as *ProcessingErrors. Cancelling ctx stops
// files that have not started.
func (a *Analyzer) AnalyzeFiles(ctx context.Context, paths []string, onProgress ProgressFunc) ([]*Report, error) {
	reports := make([]*Report, len(paths))
	errs := &ProcessingErrors{}
	var hits atomic.Int64

	p := pool.New().WithContext(ctx).WithMaxGoroutines(a.workers)
	for i, path := range paths {
		i, path := i, path
		p.Go(func(ctx context.Context) error {
			if onProgress != nil {
				defer onProgress()
			}
			if err := ctx.Err(); err != nil {
				errs.Add(path, err)
				return nil
			}
			rep, cached, err := a.report(ctx, path)
			if err != nil {
				errs.Add(path, err)
				return nil
			}
			if cached {
				hits.Add(1)
			}
			reports[i] = rep
			return nil
		})
	}
	_ = p.Wait()

	a.logger.Info("analysis finished",
		zap.Int("files", len(paths)),
		zap.Int("failed", len(errs.Errors)),
		zap.Int64("cache_hits", hits.Load()))

	if err := ctx.Err(); err != nil {
		return reports, err
	}
	if errs.HasErrors() {
		return reports, errs
	}
	return reports, nil
}

// report analyzes one file or returns its cached report.
func (a *Analyzer) report(ctx context.Context, path string) (*Report, bool, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("reading file: %w", err)
	}

	var key string
	if a.cache != nil {
		key = cache.Key(path, string(src), a.fingerprint())
		var rep Report
		switch err := a.cache.GetValue(key, &rep); {
		case err == nil:
			rep.Cached = true
			return &rep, true, nil
		case !errors.Is(err, cache.ErrKeyNotFound):
			a.logger.Debug("cache entry dropped", zap.String("path", path), zap.Error(err))
		}
	}

	res, err := a.AnalyzeSource(ctx, path, src)
	if err != nil {
		return nil, false, err
	}
	rep := res.Report()
	if a.cache != nil {
		if err := a.cache.SetValue(key, rep); err != nil {
			a.logger.Debug("cache store failed", zap.String("path", path), zap.Error(err))
		}
	}
	return rep, false, nil
}

// fingerprint identifies the settings that change a report.
func (a *Analyzer) fingerprint() string {
	keys := make([]string, len(a.rules))
	for i, r := range a.rules {
		keys[i] = r.Key()
	}
	return strings.Join([]string{
		reportVersion,
		strconv.Itoa(a.maxComplexity),
		strconv.Itoa(a.maxIterations),
		strings.Join(keys, ","),
	}, "|")
}
