package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"sales-assistant-be/internal/bootstrap"
	"sales-assistant-be/internal/config"
	"sales-assistant-be/internal/pkg/logger"
)

var (
	userID  string
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "assistant-cli",
	Short: "Talk to the sales assistant from a terminal",
	Long: `assistant-cli runs the product resolution pipeline in-process against the
configured catalog. Logs go to the log file only.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			color.NoColor = true
		}
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&userID, "user", "u", "cli", "session user id")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func newContainer() *bootstrap.Container {
	cfg := config.Load()
	return bootstrap.NewContainerWithLogger(nil, cfg, logger.NewIsolatedLogger(cfg.App.LogFilePath))
}
