package handlers

import (
	"github.com/jmoiron/sqlx"

	"cotizador/internal/catalog"
	"cotizador/internal/config"
	"cotizador/internal/correlative"
	"cotizador/internal/pdf"
	"cotizador/internal/quote"
	"cotizador/internal/repos"
)

type Deps struct {
	Quote      *QuoteHandler
	Catalog    *CatalogHandler
	API        *APIHandler
	Supervisor *SupervisorHandler
	Store      *catalog.Service
}

// NewDeps wires repos, services and handlers. db may be nil (shared store
// unreachable at startup); every component degrades instead of failing.
func NewDeps(db *sqlx.DB, cfg config.Config) *Deps {
	var prices *repos.PriceRepo
	var history *repos.HistoryRepo
	if db != nil {
		prices = repos.NewPriceRepo(db)
		history = repos.NewHistoryRepo(db)
	}

	catSvc := catalog.NewService(prices, cfg.CatalogTTL)
	drafts := quote.NewStore(0)
	reg := correlative.NewRegister(history)
	renderer := &pdf.Renderer{MediaDir: cfg.MediaDir}
	gate := NewGate(cfg.SupervisorHash)

	return &Deps{
		Quote: &QuoteHandler{
			Drafts: drafts, Catalog: catSvc, Register: reg, PDF: renderer, Gate: gate,
		},
		Catalog:    &CatalogHandler{Catalog: catSvc, Gate: gate},
		API:        &APIHandler{Catalog: catSvc, Gate: gate},
		Supervisor: &SupervisorHandler{Gate: gate},
		Store:      catSvc,
	}
}
