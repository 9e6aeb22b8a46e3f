package fileops

import "sheetflow/core/pipeline"

// RegisterSteps adds the file, storage, and database I/O steps to the
// registry.
func RegisterSteps(reg *pipeline.Registry) {
	reg.Register("import_file", newImportFileStep)
	reg.Register("export_file", newExportFileStep)
	reg.Register("publish_stage", newPublishStageStep)
	reg.Register("import_table", newImportTableStep)
}
