package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"sheetflow/core/config"
	"sheetflow/core/dataset"
	"sheetflow/core/logger"
	"sheetflow/core/reconcile"
	"sheetflow/feature/fileops"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	diffKeyColumns     []string
	diffExcludeColumns []string
	diffDeletedRows    string
	diffDuplicates     string
	diffJSONDetails    bool
	diffOutput         string
)

// diffCmd reconciles two snapshot files without a recipe.
var diffCmd = &cobra.Command{
	Use:   "diff <reference-file> <current-file>",
	Short: "Diff two snapshot files",
	Long: `Compares a current snapshot file against a reference snapshot,
classifies every row as NEW, CHANGED, UNCHANGED or DELETED, and
optionally writes the annotated result to a file.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer logg.Sync()

		if len(diffKeyColumns) == 0 {
			return fmt.Errorf("at least one --key is required")
		}

		reference, err := readSnapshot(args[0])
		if err != nil {
			return err
		}
		current, err := readSnapshot(args[1])
		if err != nil {
			return err
		}

		result, err := reconcile.Reconcile(reference, current, reconcile.Config{
			KeyColumns:         diffKeyColumns,
			ExcludeColumns:     diffExcludeColumns,
			DeletedRows:        reconcile.DeletedRowPolicy(diffDeletedRows),
			Duplicates:         reconcile.DuplicatePolicy(diffDuplicates),
			IncludeJSONDetails: diffJSONDetails,
		})
		if err != nil {
			return err
		}
		for _, warning := range result.Warnings {
			logg.Warn(warning)
		}

		logg.Info("Diff complete",
			zap.Int("total", result.Summary.Total),
			zap.Int("new", result.Summary.New),
			zap.Int("changed", result.Summary.Changed),
			zap.Int("unchanged", result.Summary.Unchanged),
			zap.Int("deleted", result.Summary.Deleted),
		)

		if diffOutput == "" {
			return nil
		}
		switch strings.ToLower(filepath.Ext(diffOutput)) {
		case ".csv":
			err = fileops.WriteCSV(result.Dataset, diffOutput)
		case ".xlsx":
			err = fileops.WriteExcel(result.Dataset, diffOutput, "")
		default:
			err = fmt.Errorf("unsupported output type %q (expected .csv or .xlsx)", filepath.Ext(diffOutput))
		}
		if err != nil {
			return err
		}
		logg.Info("Wrote annotated result", zap.String("path", diffOutput))
		return nil
	},
}

func readSnapshot(path string) (*dataset.Dataset, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return fileops.ReadCSV(path)
	case ".xlsx", ".xlsm":
		return fileops.ReadExcel(path, "")
	default:
		return nil, fmt.Errorf("unsupported file type %q (expected .csv or .xlsx)", filepath.Ext(path))
	}
}

func init() {
	diffCmd.Flags().StringSliceVar(&diffKeyColumns, "key", nil, "key column (repeatable)")
	diffCmd.Flags().StringSliceVar(&diffExcludeColumns, "exclude", nil, "column to skip when comparing (repeatable)")
	diffCmd.Flags().StringVar(&diffDeletedRows, "deleted-rows", "include", "deleted-row policy: include, exclude or separate_stage")
	diffCmd.Flags().StringVar(&diffDuplicates, "on-duplicate-keys", "last_wins", "duplicate-key policy: last_wins, first_wins or fail")
	diffCmd.Flags().BoolVar(&diffJSONDetails, "json-details", false, "add the Change_Details_JSON column")
	diffCmd.Flags().StringVar(&diffOutput, "output", "", "write the annotated result to this file")
	RootCmd.AddCommand(diffCmd)
}
