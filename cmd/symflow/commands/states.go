package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/l3aro/go-symflow/internal/output"
	"github.com/l3aro/go-symflow/pkg/symbolic"
)

type functionStates struct {
	Function    string                `json:"function"`
	Iterations  int                   `json:"iterations"`
	Converged   bool                  `json:"converged"`
	States      []output.StateView    `json:"states"`
	Diagnostics []symbolic.Diagnostic `json:"diagnostics,omitempty"`
}

// statesCmd represents the states command
var statesCmd = &cobra.Command{
	Use:   "states <file> [function]",
	Short: "Show the symbolic state before each statement",
	Long: `Runs the symbolic execution of a function, or of every function when none is
named, and prints the value of each variable (NULL, TRUTHY, FALSY or a
disjunction of them) observed just before every statement and branch test.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := analyzeFile(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		name := ""
		if len(args) == 2 {
			name = args[1]
		}
		fns, err := selectFunctions(res, name)
		if err != nil {
			return err
		}

		line, _ := cmd.Flags().GetInt("line")
		all := make([]functionStates, 0, len(fns))
		for _, fr := range fns {
			if fr.Err != nil {
				return fmt.Errorf("function %s: %w", fr.Function.Name, fr.Err)
			}
			observations := fr.Result.Observations
			if line > 0 {
				observations = fr.Result.ObservationsAt(line)
			}
			all = append(all, functionStates{
				Function:    fr.Function.Name,
				Iterations:  fr.Result.Iterations,
				Converged:   fr.Result.Converged(),
				States:      output.StateViews(res.File, observations),
				Diagnostics: fr.Result.Diagnostics,
			})
		}

		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			return output.JSON(cmd.OutOrStdout(), all)
		}
		for i, fs := range all {
			if line > 0 && len(fs.States) == 0 {
				continue
			}
			if i > 0 {
				fmt.Fprintln(cmd.OutOrStdout())
			}
			output.States(cmd.OutOrStdout(), fs.Function, fs.States, fs.Diagnostics)
		}
		return nil
	},
}

func init() {
	statesCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	statesCmd.Flags().IntP("line", "l", 0, "Only show states observed on this line")
}
