package diff

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature wires the diff API into the feature loader.
type Feature struct {
	logger *zap.Logger
}

// NewFeature creates the diff feature.
func NewFeature(logger *zap.Logger) *Feature {
	return &Feature{logger: logger}
}

func (f *Feature) Name() string    { return "diff" }
func (f *Feature) IsEnabled() bool { return true }

func (f *Feature) Load(app fiber.Router) error {
	handler := NewHandler(NewService(f.logger))
	handler.RegisterRoutes(app)
	return nil
}
