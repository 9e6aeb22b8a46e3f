package stages

import (
	"errors"

	"sheetflow/core/logger"
	"sheetflow/core/stage"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for stage inspection.
type Handler struct {
	store  *stage.Store
	logger *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(store *stage.Store, log *zap.Logger) *Handler {
	return &Handler{store: store, logger: log}
}

// RegisterRoutes registers the stage routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/stages")
	group.Get("/", h.HandleList)
	group.Get("/:name", h.HandleGet)
}

// HandleList returns the stage listing with metadata.
func (h *Handler) HandleList(c *fiber.Ctx) error {
	infos := h.store.List()
	return c.JSON(fiber.Map{
		"count":  len(infos),
		"stages": infos,
	})
}

// HandleGet returns one stage's rows and columns.
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)
	name := c.Params("name")

	ds, err := h.store.Load(name)
	if err != nil {
		var notFound *stage.NotFoundError
		if errors.As(err, &notFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		l.Error("failed to load stage", zap.String("stage", name), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"name":    name,
		"columns": ds.Columns,
		"rows":    ds.Rows,
	})
}
