package main

import (
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/jmoiron/sqlx"

	"cotizador/internal/config"
	"cotizador/internal/http/handlers"
	applog "cotizador/internal/log"
	"cotizador/internal/repos"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	// The shared pricing store is best-effort: a failed open means the app
	// starts in offline mode on the embedded dataset.
	var db *sqlx.DB
	if d, err := repos.OpenDB(cfg.DBDSN); err != nil {
		log.Printf("[warn] pricing store unreachable, running offline: %v", err)
	} else {
		db = d
	}

	engine := html.New("./web/templates", ".html")

	app := fiber.New(fiber.Config{
		Views: engine,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			if rerr := c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{
				"Message": "Algo salió mal. Intente nuevamente.",
			}); rerr != nil {
				return c.Status(fiber.StatusInternalServerError).SendString("Algo salió mal. Intente nuevamente.")
			}
			return nil
		},
	})
	// Photo uploads are the largest request body.
	app.Server().MaxRequestBodySize = 8 << 20

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			p := string(c.Request().URI().Path())
			return strings.HasPrefix(p, "/static/") || strings.HasPrefix(p, "/media/")
		},
	}))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   false, // set true behind HTTPS
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", nil)
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{
				"Message": "Verificación de seguridad fallida. Recargue la página.",
			})
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok := c.Locals("csrf"); tok != nil {
			c.Locals("CSRFToken", tok.(string))
		}
		return c.Next()
	})

	// ---------- Static assets ----------
	app.Static("/static", "./web/static")
	app.Static("/media", cfg.MediaDir)

	// ---------- Handlers ----------
	deps := handlers.NewDeps(db, cfg)

	app.Get("/", deps.Quote.Form)
	app.Post("/quote/details", deps.Quote.Details)
	app.Post("/quote/items", deps.Quote.SetItem)
	app.Post("/quote/manual", deps.Quote.Manual)
	app.Post("/quote/photos", deps.Quote.Photos)
	app.Post("/quote/reset", deps.Quote.Reset)
	app.Post("/quote/finalize", deps.Quote.Finalize)

	app.Post("/catalog/items", deps.Catalog.SaveItem)

	// Supervisor unlock is throttled like a login.
	app.Post("/supervisor", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.supervisor.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).SendString("Demasiados intentos. Espere unos minutos.")
		},
	}), deps.Supervisor.Unlock)
	app.Post("/supervisor/lock", deps.Supervisor.Lock)

	// JSON API
	api := app.Group("/api/v1")
	api.Get("/catalog", limiter.New(limiter.Config{Max: 30, Expiration: time.Minute}), deps.API.Items)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error {
		_, src := deps.Store.Load()
		return c.JSON(fiber.Map{"ok": true, "store": src.String()})
	})
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Página no encontrada"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}
