package api

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Doc-Inf/Finanza/internal/queue"
	"github.com/Doc-Inf/Finanza/internal/repo"
	"github.com/Doc-Inf/Finanza/internal/worker"
	"github.com/Doc-Inf/Finanza/pkg/logger"
	"github.com/Doc-Inf/Finanza/pkg/nats"
)

type Handler struct {
	repo      *repo.QuoteRepo
	refresher *worker.Refresher
	publisher *nats.Publisher
}

func NewHandler(quoteRepo *repo.QuoteRepo, refresher *worker.Refresher, publisher *nats.Publisher) *Handler {
	return &Handler{
		repo:      quoteRepo,
		refresher: refresher,
		publisher: publisher,
	}
}

func (h *Handler) SetupRoutes(app *fiber.App) {
	app.Get("/health", h.handleHealth)
	app.Get("/api/quote/:symbol", h.handleGetQuote)
	app.Post("/api/refresh", h.handleRefresh)
	app.Post("/api/track", h.handleTrack)
	app.Delete("/api/track/:symbol", h.handleUntrack)
}

func (h *Handler) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// handleGetQuote returns the stored record; ?refresh=1 re-scrapes first.
// An all-empty record is reported as 404 so callers can tell "no data yet"
// from a populated quote with stale fields.
func (h *Handler) handleGetQuote(c *fiber.Ctx) error {
	symbol := normalizeSymbol(c.Params("symbol"))
	if symbol == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "symbol is required"})
	}

	if c.QueryBool("refresh") {
		ctx, cancel := context.WithTimeout(c.Context(), 40*time.Second)
		defer cancel()

		result := h.refresher.Refresh(ctx, symbol)
		if !result.Success {
			logger.Log.Warn().Str("symbol", symbol).Str("reason", result.Error).Msg("live refresh failed")
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error":  "could not fetch data, check the symbol",
				"symbol": symbol,
			})
		}
	}

	stored, err := h.repo.FindBySymbol(c.Context(), symbol)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if stored == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":  "no quote stored for symbol",
			"symbol": symbol,
		})
	}

	return c.JSON(stored)
}

type refreshRequest struct {
	Symbol string `json:"symbol"`
}

func (h *Handler) handleRefresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	symbol := normalizeSymbol(req.Symbol)
	if symbol == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "symbol is required"})
	}

	task := queue.RefreshTask{
		ID:        uuid.NewString(),
		Symbol:    symbol,
		Source:    "api",
		CreatedAt: time.Now().UTC(),
	}
	if err := h.publisher.PublishRefreshTask(c.Context(), task); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"task_id": task.ID,
		"symbol":  symbol,
	})
}

type trackRequest struct {
	Symbol        string   `json:"symbol"`
	PurchasePrice *float64 `json:"purchase_price,omitempty"`
}

func (h *Handler) handleTrack(c *fiber.Ctx) error {
	var req trackRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	symbol := normalizeSymbol(req.Symbol)
	if symbol == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "symbol is required"})
	}

	if err := h.repo.SetTracked(c.Context(), symbol, true); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if req.PurchasePrice != nil {
		if err := h.repo.SetPurchasePrice(c.Context(), symbol, *req.PurchasePrice); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
	}
	return c.JSON(fiber.Map{"symbol": symbol, "tracked": true})
}

func (h *Handler) handleUntrack(c *fiber.Ctx) error {
	symbol := normalizeSymbol(c.Params("symbol"))
	if symbol == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "symbol is required"})
	}

	if err := h.repo.SetTracked(c.Context(), symbol, false); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"symbol": symbol, "tracked": false})
}

func normalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
