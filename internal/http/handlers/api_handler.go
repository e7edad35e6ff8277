package handlers

import (
	"github.com/gofiber/fiber/v2"

	"cotizador/internal/catalog"
	"cotizador/internal/domain"
)

type APIHandler struct {
	Catalog *catalog.Service
	Gate    *Gate
}

type apiItem struct {
	Category string  `json:"category"`
	Task     string  `json:"task"`
	Cost     float64 `json:"cost"`
	Sale     float64 `json:"sale,omitempty"`
}

// Items returns the tasks eligible for a client kind as JSON. Sale figures
// only appear for the supervisor view.
func (h *APIHandler) Items(c *fiber.Ctx) error {
	kind, ok := domain.KindFromCode(c.Query("client"))
	if !ok || kind == domain.ClientPrivate {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "client must be one of ssas, hosp, gend",
		})
	}
	supervisor := h.Gate.View(c) == domain.ViewSupervisor

	items, src := h.Catalog.Load()
	out := make([]apiItem, 0)
	for _, li := range catalog.EligibleFor(items, kind) {
		cost, sale := li.Price(kind)
		it := apiItem{Category: li.Category, Task: li.Task, Cost: cost}
		if supervisor {
			it.Sale = sale
		}
		out = append(out, it)
	}
	return c.JSON(fiber.Map{"source": src.String(), "items": out})
}
