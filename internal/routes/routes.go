package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mgelashvili/ledger_service/internal/handlers"
	appmw "github.com/mgelashvili/ledger_service/internal/middleware"
)

func NewRoutes(h *handlers.Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(appmw.RequestLogger)

	r.Get("/health", h.Health)

	r.Post("/accounts/{id}/transactions", h.ApplyTransaction)
	r.Get("/accounts/{id}/extract", h.GetExtract)

	return r
}
