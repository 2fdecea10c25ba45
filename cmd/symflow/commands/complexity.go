package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/l3aro/go-symflow/internal/output"
	"github.com/l3aro/go-symflow/internal/scanner"
	"github.com/l3aro/go-symflow/pkg/complexity"
	"github.com/l3aro/go-symflow/pkg/syntax"
)

// errIssuesFound makes the process exit non-zero when a run reports issues.
var errIssuesFound = errors.New("issues found")

// complexityCmd represents the complexity command
var complexityCmd = &cobra.Command{
	Use:   "complexity <path>",
	Short: "Report expressions with too many conditional operators",
	Long: `Counts the &&, || and ?: operators of every expression in a file or directory.
Function literals, array elements and object property values are counted on
their own. Expressions above the maximum are reported with every operator
location.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		max := settings.MaxComplexity
		if cmd.Flags().Changed("max") {
			max, _ = cmd.Flags().GetInt("max")
		}
		if max < 1 {
			return fmt.Errorf("--max must be at least 1, got %d", max)
		}

		files, err := scanner.Scan(args[0])
		if err != nil {
			return err
		}

		views := []output.VerdictView{}
		for _, f := range files {
			file, err := syntax.ParseFile(cmd.Context(), f.FullPath)
			if err != nil {
				return err
			}
			for _, v := range complexity.AnalyzeFile(file, max) {
				views = append(views, output.VerdictView{Path: f.Path, Message: v.Message(), Verdict: v})
			}
		}

		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			if err := output.JSON(cmd.OutOrStdout(), views); err != nil {
				return err
			}
		} else {
			output.Verdicts(cmd.OutOrStdout(), views)
		}
		if len(views) > 0 {
			return errIssuesFound
		}
		return nil
	},
}

func init() {
	complexityCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	complexityCmd.Flags().Int("max", 0, "Maximum number of conditional operators (default from config)")
}
