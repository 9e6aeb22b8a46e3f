package transform

import "sheetflow/core/pipeline"

// RegisterSteps adds the row and column transformation steps to the
// registry.
func RegisterSteps(reg *pipeline.Registry) {
	reg.Register("filter_data", newFilterStep)
	reg.Register("sort_data", newSortStep)
	reg.Register("select_columns", newSelectColumnsStep)
	reg.Register("rename_columns", newRenameColumnsStep)
	reg.Register("clean_data", newCleanStep)
	reg.Register("split_column", newSplitColumnStep)
	reg.Register("lookup_data", newLookupStep)
}
