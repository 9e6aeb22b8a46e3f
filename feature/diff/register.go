package diff

import "sheetflow/core/pipeline"

// RegisterSteps adds the reconciliation step to the registry.
func RegisterSteps(reg *pipeline.Registry) {
	reg.Register("diff_data", newDiffStep)
}
