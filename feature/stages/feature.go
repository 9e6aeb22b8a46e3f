package stages

import (
	"sheetflow/core/stage"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature wires the stage inspection API into the feature loader.
type Feature struct {
	store  *stage.Store
	logger *zap.Logger
}

// NewFeature creates the stages feature.
func NewFeature(store *stage.Store, logger *zap.Logger) *Feature {
	return &Feature{store: store, logger: logger}
}

func (f *Feature) Name() string    { return "stages" }
func (f *Feature) IsEnabled() bool { return true }

func (f *Feature) Load(app fiber.Router) error {
	handler := NewHandler(f.store, f.logger)
	handler.RegisterRoutes(app)
	return nil
}
