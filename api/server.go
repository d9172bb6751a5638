/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the desktop frontend

ROUTE GROUPS:
  /api/clients/*        Client registry
  /api/articles/*       Article catalog (price change cascades)
  /api/products/*       Stocked batches
  /api/equipment/*      Client tooling
  /api/semifinished/*   Intermediate goods
  /api/stock/*          Atomic stock-in / stock-out
  /api/movements/*      Ledger retention
  /api/statistics       Aggregates
  /api/keys             Distinct DDTs / codes
  /api/events           SSE refresh stream
  /api/{entity}         Generic list over the entity set

SECURITY NOTE:
  The server binds for a single local desktop frontend. No
  authentication middleware.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/magazzino/inventory-engine/inventory"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Client routes
		r.Route("/clients", func(r chi.Router) {
			r.Get("/", entityList(h, inventory.EntityClients))
			r.Post("/", h.CreateClient)
			r.Put("/{ddt}", h.UpdateClient)
			r.Delete("/{ddt}", h.DeleteClient)
		})

		// Article routes
		r.Route("/articles", func(r chi.Router) {
			r.Get("/", entityList(h, inventory.EntityArticles))
			r.Post("/", h.CreateArticle)
			r.Put("/{code}", h.UpdateArticle)
			r.Delete("/{code}", h.DeleteArticle)
		})

		// Product routes
		r.Route("/products", func(r chi.Router) {
			r.Get("/", entityList(h, inventory.EntityProducts))
			r.Post("/", h.CreateProduct)
			r.Put("/{id}", h.UpdateProduct)
			r.Delete("/{id}", h.DeleteProduct)
		})

		// Equipment routes
		r.Route("/equipment", func(r chi.Router) {
			r.Get("/", entityList(h, inventory.EntityEquipment))
			r.Post("/", h.CreateEquipment)
			r.Put("/{id}", h.UpdateEquipment)
			r.Delete("/{id}", h.DeleteEquipment)
		})

		// Semi-finished routes
		r.Route("/semifinished", func(r chi.Router) {
			r.Get("/", entityList(h, inventory.EntitySemiFinished))
			r.Post("/", h.CreateSemiFinished)
			r.Put("/{id}", h.UpdateSemiFinished)
			r.Delete("/{id}", h.DeleteSemiFinished)
		})

		// Stock ledger routes
		r.Route("/stock", func(r chi.Router) {
			r.Post("/in", h.StockIn)
			r.Post("/out", h.StockOut)
		})

		// Movement routes
		r.Route("/movements", func(r chi.Router) {
			r.Get("/", entityList(h, inventory.EntityMovements))
			r.Delete("/", h.DeleteAllMovements)
			r.Delete("/before-current-month", h.DeleteMovementsBeforeCurrentMonth)
			r.Delete("/{id}", h.DeleteMovement)
		})

		// Aggregates and lookup keys
		r.Get("/statistics", h.GetStatistics)
		r.Get("/keys", h.GetDistinctKeys)

		// Refresh event stream
		r.Get("/events", h.StreamEvents)

		// Generic entity list; unknown names get a 400
		r.Get("/{entity}", h.GetAll)
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Inventory Engine</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Inventory Engine API</h1>
<ul>
<li><a href="/api/clients">/api/clients</a> - List clients</li>
<li><a href="/api/articles">/api/articles</a> - List articles</li>
<li><a href="/api/products">/api/products</a> - List products</li>
<li><a href="/api/movements">/api/movements</a> - List movements</li>
<li><a href="/api/statistics">/api/statistics</a> - Warehouse aggregates</li>
</ul>
</body>
</html>`))
	})

	return r
}

func entityList(h *Handler, entity inventory.Entity) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.writeEntityList(w, r, entity)
	}
}
