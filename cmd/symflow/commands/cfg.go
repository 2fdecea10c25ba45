package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/l3aro/go-symflow/internal/output"
	"github.com/l3aro/go-symflow/pkg/cfg"
)

// cfgCmd represents the cfg command
var cfgCmd = &cobra.Command{
	Use:   "cfg <file> [function]",
	Short: "Extract control flow graph for a function",
	Long: `Extracts the Control Flow Graph (CFG) of a function in a JavaScript file, or of
every function when none is named. The script body is called "<program>".
Outputs blocks, edges, and cyclomatic complexity.`,
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

		infos := make([]*cfg.CFGInfo, 0, len(fns))
		for _, fr := range fns {
			if fr.Err != nil {
				return fmt.Errorf("function %s: %w", fr.Function.Name, fr.Err)
			}
			infos = append(infos, fr.Graph.Info(res.File))
		}

		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			if name != "" {
				return output.JSON(cmd.OutOrStdout(), infos[0])
			}
			return output.JSON(cmd.OutOrStdout(), infos)
		}
		for i, info := range infos {
			if i > 0 {
				fmt.Fprintln(cmd.OutOrStdout())
			}
			output.CFG(cmd.OutOrStdout(), info)
		}
		return nil
	},
}

func init() {
	cfgCmd.Flags().BoolP("json", "j", false, "Output as JSON")
}
