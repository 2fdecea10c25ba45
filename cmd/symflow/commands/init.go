package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/l3aro/go-symflow/internal/config"
	"github.com/l3aro/go-symflow/pkg/checks"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize symflow configuration interactively",
	Long: `Guides you through setting up symflow step by step and writes the answers to
the project config (.symflow/config.yaml), or to ~/.symflow/config.yaml with
--global.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		global, _ := cmd.Flags().GetBool("global")
		force, _ := cmd.Flags().GetBool("force")

		path := config.ProjectConfigFilePath()
		if global {
			path = config.GlobalConfigFilePath()
		}
		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
		}

		cfg, err := runInit(settings)
		if err != nil {
			return err
		}
		if err := cfg.Save(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", path)
		return nil
	},
}

// runInit asks for every setting, starting from current.
func runInit(current *config.Config) (*config.Config, error) {
	cfg := *current

	maxComplexity := strconv.Itoa(cfg.MaxComplexity)
	workers := strconv.Itoa(cfg.Workers)
	rules := cfg.Rules
	if len(rules) == 0 {
		rules = checks.Keys()
	}

	ruleOptions := make([]huh.Option[string], 0, len(checks.All()))
	for _, r := range checks.All() {
		ruleOptions = append(ruleOptions, huh.NewOption(r.Key()+" - "+r.Description(), r.Key()))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Rules").
				Description("Select the rules `symflow check` runs").
				Options(ruleOptions...).
				Validate(func(keys []string) error {
					if len(keys) == 0 {
						return fmt.Errorf("select at least one rule")
					}
					return nil
				}).
				Value(&rules),
			huh.NewInput().
				Title("Maximum conditional operators per expression").
				Placeholder("3").
				Validate(positiveInt).
				Value(&maxComplexity),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Files analyzed in parallel").
				Validate(positiveInt).
				Value(&workers),
			huh.NewConfirm().
				Title("Cache reports between runs?").
				Affirmative("Yes").
				Negative("No").
				Value(&cfg.Cache.Enabled),
			huh.NewSelect[string]().
				Title("Log level").
				Options(
					huh.NewOption("Errors only", "error"),
					huh.NewOption("Warnings", "warn"),
					huh.NewOption("Info", "info"),
					huh.NewOption("Debug", "debug"),
				).
				Value(&cfg.Log.Level),
		),
	)
	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("interactive prompt failed: %w", err)
	}

	cfg.MaxComplexity, _ = strconv.Atoi(maxComplexity)
	cfg.Workers, _ = strconv.Atoi(workers)
	cfg.Rules = rules
	if len(rules) == len(checks.All()) {
		cfg.Rules = nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func positiveInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fmt.Errorf("enter a whole number of at least 1")
	}
	return nil
}

func init() {
	initCmd.Flags().Bool("global", false, "Write the global config instead of the project config")
	initCmd.Flags().BoolP("force", "f", false, "Overwrite an existing config file")
}
