// Package api serves the HTTP interface.
package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tesoro-dev/tesoro/internal/accounts"
	"github.com/tesoro-dev/tesoro/internal/categorize"
	"github.com/tesoro-dev/tesoro/internal/importer"
	"github.com/tesoro-dev/tesoro/internal/split"
	"github.com/tesoro-dev/tesoro/internal/transfer"
)

// OwnerHeader carries the calling owner's id.
const OwnerHeader = "X-Owner-ID"

// maxUpload bounds request bodies, statement uploads included.
const maxUpload = 10 << 20

// Services are the domain services behind the API.
type Services struct {
	Accounts   *accounts.Service
	Importer   *importer.Service
	Categories *categorize.Service
	Transfers  *transfer.Service
	Splits     *split.Service
}

type handler struct {
	Services
	log zerolog.Logger
}

// New builds the fiber app. defaultOwner is used when a request carries no
// owner header; uuid.Nil makes the header mandatory.
func New(svc Services, log zerolog.Logger, defaultOwner uuid.UUID) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "tesoro",
		BodyLimit:             maxUpload,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	h := &handler{Services: svc, log: log}

	app.Use(requestLogger(log))
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	r := app.Group("/api", owner(defaultOwner))

	r.Get("/accounts", h.listAccounts)
	r.Post("/accounts", h.createAccount)
	r.Get("/accounts/:id", h.getAccount)
	r.Delete("/accounts/:id", h.deleteAccount)
	r.Put("/accounts/:id/auto-mirror", h.setAutoMirror)
	r.Put("/accounts/:id/template", h.linkTemplate)
	r.Post("/accounts/:id/recompute", h.recompute)
	r.Get("/accounts/:id/transactions", h.listTransactions)
	r.Get("/accounts/:id/statement", h.exportStatement)
	r.Post("/accounts/:id/imports", h.importStatement)
	r.Get("/accounts/:id/imports", h.listImports)
	r.Delete("/imports/:id", h.undoImport)

	r.Get("/templates", h.listTemplates)
	r.Post("/templates", h.createTemplate)
	r.Put("/templates/:id", h.updateTemplate)
	r.Delete("/templates/:id", h.deleteTemplate)

	r.Get("/categories", h.listCategories)
	r.Post("/categories", h.createCategory)
	r.Delete("/categories/:id", h.deleteCategory)

	r.Get("/rules", h.listRules)
	r.Post("/rules", h.createRule)
	r.Delete("/rules/:id", h.deleteRule)
	r.Post("/rules/:id/apply", h.applyRule)

	r.Post("/transactions/:id/mirror", h.mirror)
	r.Get("/transactions/:id/transfer-candidates", h.transferCandidates)
	r.Post("/transfers", h.link)
	r.Delete("/transactions/:id/transfer", h.unlink)

	r.Get("/transactions/:id/splits", h.listSplits)
	r.Put("/transactions/:id/splits", h.setSplits)
	r.Delete("/transactions/:id/splits", h.removeSplits)
	r.Get("/transactions/:id/orphans", h.orphans)
	r.Post("/transactions/:id/children", h.linkOrphans)
	r.Post("/transactions/:id/child", h.createChild)
	r.Get("/transactions/:id/justification", h.justification)

	return app
}
