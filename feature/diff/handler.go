package diff

import (
	"errors"

	"sheetflow/core/logger"
	"sheetflow/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for one-shot diffs.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the diff routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Post("/diff", h.HandleDiff)
}

// HandleDiff reconciles two inline datasets and returns the annotated
// result with its summary.
func (h *Handler) HandleDiff(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body: " + err.Error(),
		})
	}

	resp, err := h.service.Diff(req)
	if err != nil {
		status := fiber.StatusInternalServerError
		var invalidCfg *reconcile.InvalidConfigError
		var missingKey *reconcile.MissingKeyColumnError
		var dupKey *reconcile.DuplicateKeyError
		switch {
		case errors.As(err, &invalidCfg), errors.As(err, &missingKey):
			status = fiber.StatusBadRequest
		case errors.As(err, &dupKey):
			status = fiber.StatusUnprocessableEntity
		}
		l.Warn("diff request failed", zap.Error(err))
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	l.Info("diff request served",
		zap.Int("total", resp.Summary.Total),
		zap.Int("changed", resp.Summary.Changed),
	)
	return c.JSON(resp)
}
