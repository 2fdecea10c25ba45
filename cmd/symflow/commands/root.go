// Package commands provides the CLI commands for the symflow tool.
package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/l3aro/go-symflow/internal/config"
	"github.com/l3aro/go-symflow/internal/log"
)

var (
	settings *config.Config
	logger   = zap.NewNop()
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "symflow",
	Short: "symflow - Symbolic null-state analysis for JavaScript",
	Long: `symflow tracks, for every variable of every function, whether it may be
null/undefined, truthy or falsy at each statement, and reports issues built on
those states.

Commands:
  cfg         Show the control flow graph of a function
  states      Show the symbolic states observed before each statement
  complexity  Report expressions with too many conditional operators
  check       Run every enabled rule over files or directories
  init        Create a configuration file interactively

Use "symflow [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if path, _ := cmd.Flags().GetString("config"); path != "" {
			settings, err = config.LoadFromFile(path)
		} else {
			settings, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			settings.Log.Level = "debug"
		}
		logger, err = log.New(log.Config{Level: settings.Log.Level, JSON: settings.Log.JSON})
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	err := RootCmd.Execute()
	if err != nil && !errors.Is(err, errIssuesFound) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

func init() {
	RootCmd.PersistentFlags().String("config", "", "Config file path (default: global then project config)")
	RootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose logging")

	RootCmd.AddCommand(cfgCmd)
	RootCmd.AddCommand(statesCmd)
	RootCmd.AddCommand(complexityCmd)
	RootCmd.AddCommand(checkCmd)
	RootCmd.AddCommand(initCmd)
}
