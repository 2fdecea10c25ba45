package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/l3aro/go-symflow/internal/output"
	"github.com/l3aro/go-symflow/internal/scanner"
	"github.com/l3aro/go-symflow/pkg/cache"
	"github.com/l3aro/go-symflow/pkg/checks"
	"github.com/l3aro/go-symflow/pkg/engine"
)

type checkResult struct {
	Files    int                      `json:"files"`
	Issues   []checks.Issue           `json:"issues"`
	Failures []engine.ProcessingError `json:"-"`
	Errors   []string                 `json:"errors,omitempty"`
}

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <path>",
	Short: "Run the enabled rules over a file or directory",
	Long: `Analyzes every JavaScript file under path and reports the issues of the
enabled rules. Files listed in .symflowignore are skipped. Reports are cached
by file content unless the cache is disabled.

Rules:
  expression-complexity     Expressions should not be too complex
  null-dereference          Properties of possibly null variables should not be accessed
  counter-updated-in-loop   Loop counters should not be assigned in the loop body
  eval-arguments            "eval" and "arguments" should not be bound or assigned`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rules, _ := cmd.Flags().GetStringSlice("rule")
		noCache, _ := cmd.Flags().GetBool("no-cache")
		jsonOutput, _ := cmd.Flags().GetBool("json")

		files, err := scanner.Scan(args[0])
		if err != nil {
			return err
		}
		paths := make([]string, len(files))
		for i, f := range files {
			paths[i] = f.FullPath
		}

		var c *cache.LRUCache
		if !noCache {
			c = openCache()
		}
		a, err := newAnalyzer(rules, c)
		if err != nil {
			return err
		}

		bar := output.NewProgress(len(paths), !jsonOutput && len(paths) > 1)
		reports, err := a.AnalyzeFiles(cmd.Context(), paths, func() { _ = bar.Add(1) })
		_ = bar.Finish()
		closeCache(c)

		result := checkResult{Files: len(files), Issues: []checks.Issue{}}
		var perrs *engine.ProcessingErrors
		switch {
		case errors.As(err, &perrs):
			result.Failures = perrs.Errors
		case err != nil:
			return err
		}

		for i, rep := range reports {
			if rep == nil {
				continue
			}
			for _, is := range rep.Issues {
				is.Path = files[i].Path
				result.Issues = append(result.Issues, is)
			}
			for _, f := range rep.Failures {
				logger.Warn("function skipped", zap.String("path", files[i].Path), zap.String("reason", f))
			}
		}
		rel := make(map[string]string, len(files))
		for _, f := range files {
			rel[f.FullPath] = f.Path
		}
		for _, f := range result.Failures {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", rel[f.Path], f.Err))
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			if err := output.JSON(out, result); err != nil {
				return err
			}
		} else {
			output.Issues(out, result.Issues)
			for _, e := range result.Errors {
				fmt.Fprintln(cmd.ErrOrStderr(), e)
			}
			output.Summary(out, result.Files, len(result.Issues), len(result.Failures))
		}

		if len(result.Failures) > 0 {
			return perrs
		}
		if len(result.Issues) > 0 {
			return errIssuesFound
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	checkCmd.Flags().StringSliceP("rule", "r", nil, "Rules to run (default from config, all when unset)")
	checkCmd.Flags().Bool("no-cache", false, "Analyze every file even when a cached report exists")
}
