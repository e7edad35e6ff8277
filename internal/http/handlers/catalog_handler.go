package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"cotizador/internal/catalog"
	"cotizador/internal/domain"
	"cotizador/internal/log"
	"cotizador/internal/validate"
)

type CatalogHandler struct {
	Catalog *catalog.Service
	Gate    *Gate
}

// SaveItem appends a new flat-rate task to the shared price table. The four
// per-kind price columns derive from the single base cost. Supervisor only.
func (h *CatalogHandler) SaveItem(c *fiber.Ctx) error {
	if h.Gate.View(c) != domain.ViewSupervisor {
		log.Security(c, "catalog.save.denied", nil)
		return c.Status(fiber.StatusForbidden).SendString("supervisor access required")
	}

	cat, okC := validate.Name(c.FormValue("category"))
	task, okT := validate.Desc(c.FormValue("task"))
	base, okB := validate.Money(c.FormValue("cost"))
	if !okC || !okT || !okB {
		log.Security(c, "validation.fail", map[string]any{"field": "catalog_item"})
		return c.Redirect("/?msg=baditem")
	}

	if err := h.Catalog.Save(cat, task, base); err != nil {
		if errors.Is(err, catalog.ErrUnavailable) {
			log.Degraded(c, "catalog.save.offline", err)
			return c.Redirect("/?msg=offline")
		}
		log.Error(c, "catalog.save.fail", err, nil)
		return c.Redirect("/?msg=saveerr")
	}
	log.Audit(c, "catalog.save", map[string]any{"category": cat, "task": task, "cost": base})
	return c.Redirect("/?msg=saved")
}
