package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/l3aro/go-symflow/pkg/cache"
	"github.com/l3aro/go-symflow/pkg/checks"
	"github.com/l3aro/go-symflow/pkg/engine"
)

// newAnalyzer builds an analyzer from the loaded settings. rules overrides
// the configured rule keys when non-empty.
func newAnalyzer(rules []string, c *cache.LRUCache) (*engine.Analyzer, error) {
	if len(rules) == 0 {
		rules = settings.Rules
	}
	selected, err := checks.Select(rules)
	if err != nil {
		return nil, err
	}
	opts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithWorkers(settings.Workers),
		engine.WithMaxIterations(settings.MaxIterations),
		engine.WithMaxComplexity(settings.MaxComplexity),
		engine.WithRules(selected),
	}
	if c != nil {
		opts = append(opts, engine.WithCache(c))
	}
	return engine.New(opts...), nil
}

// analyzeFile runs the full pipeline on one file.
func analyzeFile(ctx context.Context, path string) (*engine.FileResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, expected a file: %s", path)
	}
	a, err := newAnalyzer(nil, nil)
	if err != nil {
		return nil, err
	}
	return a.AnalyzeFile(ctx, path)
}

// selectFunctions returns the named function, or every function when name is
// empty.
func selectFunctions(res *engine.FileResult, name string) ([]engine.FunctionResult, error) {
	if name == "" {
		return res.Functions, nil
	}
	fr, ok := res.Function(name)
	if !ok {
		names := make([]string, len(res.Functions))
		for i, f := range res.Functions {
			names[i] = f.Function.Name
		}
		return nil, fmt.Errorf("function %q not found in %s (functions: %v)", name, res.File.Path, names)
	}
	return []engine.FunctionResult{fr}, nil
}

// cacheFile is where the persistent cache lives.
func cacheFile() string {
	return filepath.Join(settings.Cache.Dir, "reports.msgpack")
}

// openCache loads the persistent cache when it is enabled.
func openCache() *cache.LRUCache {
	if !settings.Cache.Enabled {
		return nil
	}
	c := cache.New(cache.Options{MaxEntries: settings.Cache.MaxEntries})
	if err := cache.LoadFromFile(c, cacheFile()); err != nil {
		logger.Warn("ignoring unreadable cache", zap.String("path", cacheFile()), zap.Error(err))
	}
	return c
}

// closeCache writes the cache back to disk.
func closeCache(c *cache.LRUCache) {
	if c == nil {
		return
	}
	if err := cache.PersistToFile(c, cacheFile()); err != nil {
		logger.Warn("saving cache failed", zap.String("path", cacheFile()), zap.Error(err))
		return
	}
	stats := c.Stats()
	logger.Debug("cache saved",
		zap.Int("entries", stats.Entries),
		zap.Int64("hits", stats.Hits),
		zap.Int64("misses", stats.Misses))
}
