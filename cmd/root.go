package cmd

import (
	"fmt"
	"os"

	"sheetflow/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "sheetflow",
	Short: "Tabular data pipeline runner",
	Long: `Sheetflow runs recipe-driven pipelines over tabular data: importing
spreadsheets, transforming rows, reconciling dataset snapshots, and
publishing the results.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console format at debug level: this is a CLI tool, so pretty
		// ISO8601 output beats the production JSON encoding.
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
