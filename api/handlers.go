/*
handlers.go - HTTP handlers for the warehouse inventory engine

PURPOSE:
  Exposes the inventory core via a local REST API. Handles HTTP
  request/response, JSON serialization, and delegates to the domain
  logic. After a successful mutation the handler publishes an
  entity-scoped refresh event so list views can re-query; the core
  itself never emits UI notifications.

ENDPOINTS:
  Generic queries:
    GET    /api/{entity}            All rows of one entity (closed set)
    GET    /api/statistics          Warehouse-wide aggregates
    GET    /api/keys                Distinct client DDTs / article codes
    GET    /api/events              SSE stream of refresh events

  Entity CRUD:
    POST/PUT/DELETE under /api/clients, /api/articles, /api/products,
    /api/equipment, /api/semifinished

  Stock ledger:
    POST   /api/stock/in            Inbound movement (insert + ledger)
    POST   /api/stock/out           Outbound movement (update/delete + ledger)
    DELETE /api/movements           Empty the ledger
    DELETE /api/movements/before-current-month
    DELETE /api/movements/{id}

ERROR HANDLING:
  Domain errors map onto HTTP status by kind:
  - 400: invalid input, quantity, price, unknown entity
  - 404: row not found
  - 409: duplicate key, blocked deletion (foreign key)
  - 500: persistence failures (raw storage text is logged, not returned)

SEE ALSO:
  - dto.go: request/response data structures
  - server.go: router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/magazzino/inventory-engine/events"
	"github.com/magazzino/inventory-engine/inventory"
	"github.com/magazzino/inventory-engine/store/sqlite"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  *sqlite.Store
	Ledger *inventory.Ledger
	Bus    *events.Bus
	Log    zerolog.Logger
}

// NewHandler creates a handler over the given store.
func NewHandler(store *sqlite.Store, bus *events.Bus, log zerolog.Logger) *Handler {
	return &Handler{
		Store:  store,
		Ledger: inventory.NewLedger(store),
		Bus:    bus,
		Log:    log,
	}
}

// =============================================================================
// GENERIC QUERIES
// =============================================================================

// GetAll returns every row of one entity.
// GET /api/{entity}
func (h *Handler) GetAll(w http.ResponseWriter, r *http.Request) {
	entity, err := inventory.ParseEntity(chi.URLParam(r, "entity"))
	if err != nil {
		h.writeFailure(w, "Unknown entity", err)
		return
	}
	h.writeEntityList(w, r, entity)
}

func (h *Handler) writeEntityList(w http.ResponseWriter, r *http.Request, entity inventory.Entity) {
	ctx := r.Context()

	switch entity {
	case inventory.EntityClients:
		rows, err := h.Store.ListClients(ctx)
		if err != nil {
			h.writeFailure(w, "Failed to list clients", err)
			return
		}
		dtos := make([]ClientDTO, len(rows))
		for i, row := range rows {
			dtos[i] = toClientDTO(row)
		}
		writeJSON(w, http.StatusOK, dtos)

	case inventory.EntityArticles:
		rows, err := h.Store.ListArticles(ctx)
		if err != nil {
			h.writeFailure(w, "Failed to list articles", err)
			return
		}
		dtos := make([]ArticleDTO, len(rows))
		for i, row := range rows {
			dtos[i] = toArticleDTO(row)
		}
		writeJSON(w, http.StatusOK, dtos)

	case inventory.EntityProducts:
		rows, err := h.Store.ListProducts(ctx)
		if err != nil {
			h.writeFailure(w, "Failed to list products", err)
			return
		}
		dtos := make([]ProductDTO, len(rows))
		for i, row := range rows {
			dtos[i] = toProductDTO(row)
		}
		writeJSON(w, http.StatusOK, dtos)

	case inventory.EntityEquipment:
		rows, err := h.Store.ListEquipment(ctx)
		if err != nil {
			h.writeFailure(w, "Failed to list equipment", err)
			return
		}
		dtos := make([]EquipmentDTO, len(rows))
		for i, row := range rows {
			dtos[i] = toEquipmentDTO(row)
		}
		writeJSON(w, http.StatusOK, dtos)

	case inventory.EntitySemiFinished:
		rows, err := h.Store.ListSemiFinished(ctx)
		if err != nil {
			h.writeFailure(w, "Failed to list semifinished", err)
			return
		}
		dtos := make([]SemiFinishedDTO, len(rows))
		for i, row := range rows {
			dtos[i] = toSemiFinishedDTO(row)
		}
		writeJSON(w, http.StatusOK, dtos)

	case inventory.EntityMovements:
		rows, err := h.Store.ListMovements(ctx)
		if err != nil {
			h.writeFailure(w, "Failed to list movements", err)
			return
		}
		dtos := make([]MovementDTO, len(rows))
		for i, row := range rows {
			dtos[i] = toMovementDTO(row)
		}
		writeJSON(w, http.StatusOK, dtos)
	}
}

// GetStatistics returns warehouse-wide aggregates.
// GET /api/statistics
func (h *Handler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Store.Stats(r.Context())
	if err != nil {
		h.writeFailure(w, "Failed to compute statistics", err)
		return
	}
	writeJSON(w, http.StatusOK, StatsDTO{
		ClientCount:       stats.ClientCount,
		ArticleCount:      stats.ArticleCount,
		EquipmentCount:    stats.EquipmentCount,
		TotalProductUnits: stats.TotalProductUnits,
		TotalProductValue: stats.TotalProductValue,
	})
}

// GetDistinctKeys returns the sorted unique client DDTs and article codes.
// GET /api/keys
func (h *Handler) GetDistinctKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := h.Store.DistinctKeys(r.Context())
	if err != nil {
		h.writeFailure(w, "Failed to list keys", err)
		return
	}
	writeJSON(w, http.StatusOK, KeysDTO{
		ClientKeys:  emptyIfNil(keys.ClientDDTs),
		ArticleKeys: emptyIfNil(keys.ArticleCodes),
	})
}

// =============================================================================
// CLIENTS
// =============================================================================

// CreateClient inserts a client.
// POST /api/clients
func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req ClientDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}
	if req.DDT == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "ddt and name are required", inventory.ErrInvalidInput)
		return
	}

	if err := h.Store.InsertClient(r.Context(), req.toModel()); err != nil {
		h.writeFailure(w, "Failed to insert client", err)
		return
	}

	h.Bus.Publish(inventory.EntityClients)
	writeJSON(w, http.StatusCreated, MutationResponse{Success: true})
}

// UpdateClient overwrites a client; changing the DDT renumbers
// dependent rows.
// PUT /api/clients/{ddt}
func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	ddt := chi.URLParam(r, "ddt")

	var req ClientDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}
	if req.DDT == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "ddt and name are required", inventory.ErrInvalidInput)
		return
	}

	changed, err := h.Store.UpdateClient(r.Context(), ddt, req.toModel())
	if err != nil {
		h.writeFailure(w, "Failed to update client", err)
		return
	}
	if changed == 0 {
		writeError(w, http.StatusNotFound, "Client not found", inventory.ErrNotFound)
		return
	}

	h.Bus.Publish(inventory.EntityClients)
	writeJSON(w, http.StatusOK, MutationResponse{Success: true, Changed: &changed})
}

// DeleteClient removes a client with no dependents.
// DELETE /api/clients/{ddt}
func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	changed, err := h.Store.DeleteClient(r.Context(), chi.URLParam(r, "ddt"))
	if err != nil {
		h.writeFailure(w, "Failed to delete client", err)
		return
	}
	if changed == 0 {
		writeError(w, http.StatusNotFound, "Client not found", inventory.ErrNotFound)
		return
	}

	h.Bus.Publish(inventory.EntityClients)
	writeJSON(w, http.StatusOK, MutationResponse{Success: true, Changed: &changed})
}

// =============================================================================
// ARTICLES
// =============================================================================

// CreateArticle inserts a catalog article.
// POST /api/articles
func (h *Handler) CreateArticle(w http.ResponseWriter, r *http.Request) {
	var req ArticleDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "code is required", inventory.ErrInvalidInput)
		return
	}
	if err := inventory.ValidatePrice(req.Code, req.UnitPrice); err != nil {
		h.writeFailure(w, "Invalid unit price", err)
		return
	}

	if err := h.Store.InsertArticle(r.Context(), inventory.Article{
		Code:        req.Code,
		Description: req.Description,
		UnitPrice:   req.UnitPrice,
	}); err != nil {
		h.writeFailure(w, "Failed to insert article", err)
		return
	}

	h.Bus.Publish(inventory.EntityArticles)
	writeJSON(w, http.StatusCreated, MutationResponse{Success: true})
}

// UpdateArticle changes description/price and cascades the new price to
// every dependent product's value.
// PUT /api/articles/{code}
func (h *Handler) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	var req UpdateArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}

	changed, err := h.Ledger.UpdateArticle(r.Context(), code, req.Description, req.UnitPrice)
	if err != nil {
		h.writeFailure(w, "Failed to update article", err)
		return
	}

	h.Bus.Publish(inventory.EntityArticles)
	h.Bus.Publish(inventory.EntityProducts)
	writeJSON(w, http.StatusOK, MutationResponse{Success: true, Changed: &changed})
}

// DeleteArticle removes an article with no dependents.
// DELETE /api/articles/{code}
func (h *Handler) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	changed, err := h.Store.DeleteArticle(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.writeFailure(w, "Failed to delete article", err)
		return
	}
	if changed == 0 {
		writeError(w, http.StatusNotFound, "Article not found", inventory.ErrNotFound)
		return
	}

	h.Bus.Publish(inventory.EntityArticles)
	writeJSON(w, http.StatusOK, MutationResponse{Success: true, Changed: &changed})
}

// =============================================================================
// PRODUCTS
// =============================================================================

// CreateProduct inserts a batch without logging a movement; the value
// is derived from the article price.
// POST /api/products
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}
	productionDate, ok := parseDate(w, req.ProductionDate)
	if !ok {
		return
	}

	id, err := h.Ledger.InsertProduct(r.Context(), inventory.Product{
		ClientDDT:       req.ClientDDT,
		ArticleCode:     req.ArticleCode,
		Quantity:        req.Quantity,
		ProductionDate:  productionDate,
		StorageLocation: req.StorageLocation,
	})
	if err != nil {
		h.writeFailure(w, "Failed to insert product", err)
		return
	}

	h.Bus.Publish(inventory.EntityProducts)
	writeJSON(w, http.StatusCreated, MutationResponse{Success: true, InsertedID: &id})
}

// UpdateProduct overwrites a batch by rowid, re-deriving its value.
// PUT /api/products/{id}
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req ProductDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}
	productionDate, ok := parseDate(w, req.ProductionDate)
	if !ok {
		return
	}

	changed, err := h.Ledger.UpdateProduct(r.Context(), inventory.Product{
		ID:              id,
		ClientDDT:       req.ClientDDT,
		ArticleCode:     req.ArticleCode,
		Quantity:        req.Quantity,
		ProductionDate:  productionDate,
		StorageLocation: req.StorageLocation,
	})
	if err != nil {
		h.writeFailure(w, "Failed to update product", err)
		return
	}

	h.Bus.Publish(inventory.EntityProducts)
	writeJSON(w, http.StatusOK, MutationResponse{Success: true, Changed: &changed})
}

// DeleteProduct removes a batch without logging a movement.
// DELETE /api/products/{id}
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	changed, err := h.Store.DeleteProduct(r.Context(), id)
	if err != nil {
		h.writeFailure(w, "Failed to delete product", err)
		return
	}
	if changed == 0 {
		writeError(w, http.StatusNotFound, "Product not found", inventory.ErrNotFound)
		return
	}

	h.Bus.Publish(inventory.EntityProducts)
	writeJSON(w, http.StatusOK, MutationResponse{Success: true, Changed: &changed})
}

// =============================================================================
// STOCK LEDGER
// =============================================================================

// StockIn records an inbound batch: product insert plus ledger entry,
// atomically.
// POST /api/stock/in
func (h *Handler) StockIn(w http.ResponseWriter, r *http.Request) {
	var req StockInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}
	productionDate, ok := parseDate(w, req.ProductionDate)
	if !ok {
		return
	}

	id, err := h.Ledger.StockIn(r.Context(), inventory.StockInRequest{
		ClientDDT:       req.ClientDDT,
		ArticleCode:     req.ArticleCode,
		Quantity:        req.Quantity,
		ProductionDate:  productionDate,
		StorageLocation: req.StorageLocation,
	})
	if err != nil {
		h.writeFailure(w, "Stock-in failed", err)
		return
	}

	h.Bus.Publish(inventory.EntityProducts)
	h.Bus.Publish(inventory.EntityMovements)
	writeJSON(w, http.StatusCreated, MutationResponse{Success: true, InsertedID: &id})
}

// StockOut withdraws units from a batch: product update-or-delete plus
// ledger entry, atomically.
// POST /api/stock/out
func (h *Handler) StockOut(w http.ResponseWriter, r *http.Request) {
	var req StockOutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}

	err := h.Ledger.StockOut(r.Context(), inventory.StockOutRequest{
		ProductID:       req.ProductID,
		ClientDDT:       req.ClientDDT,
		ArticleCode:     req.ArticleCode,
		CurrentQuantity: req.CurrentQuantity,
		OutQuantity:     req.OutQuantity,
	})
	if err != nil {
		h.writeFailure(w, "Stock-out failed", err)
		return
	}

	h.Bus.Publish(inventory.EntityProducts)
	h.Bus.Publish(inventory.EntityMovements)
	writeJSON(w, http.StatusOK, MutationResponse{Success: true})
}

// =============================================================================
// EQUIPMENT
// =============================================================================

// CreateEquipment inserts an equipment row.
// POST /api/equipment
func (h *Handler) CreateEquipment(w http.ResponseWriter, r *http.Request) {
	var req EquipmentDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}
	if req.ClientDDT == "" || req.ArticleCode == "" {
		writeError(w, http.StatusBadRequest, "clientDdt and articleCode are required", inventory.ErrInvalidInput)
		return
	}

	id, err := h.Store.InsertEquipment(r.Context(), req.toModel())
	if err != nil {
		h.writeFailure(w, "Failed to insert equipment", err)
		return
	}

	h.Bus.Publish(inventory.EntityEquipment)
	writeJSON(w, http.StatusCreated, MutationResponse{Success: true, InsertedID: &id})
}

// UpdateEquipment overwrites an equipment row by rowid.
// PUT /api/equipment/{id}
func (h *Handler) UpdateEquipment(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req EquipmentDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}
	req.ID = id

	changed, err := h.Store.UpdateEquipment(r.Context(), req.toModel())
	if err != nil {
		h.writeFailure(w, "Failed to update equipment", err)
		return
	}
	if changed == 0 {
		writeError(w, http.StatusNotFound, "Equipment not found", inventory.ErrNotFound)
		return
	}

	h.Bus.Publish(inventory.EntityEquipment)
	writeJSON(w, http.StatusOK, MutationResponse{Success: true, Changed: &changed})
}

// DeleteEquipment removes an equipment row.
// DELETE /api/equipment/{id}
func (h *Handler) DeleteEquipment(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	changed, err := h.Store.DeleteEquipment(r.Context(), id)
	if err != nil {
		h.writeFailure(w, "Failed to delete equipment", err)
		return
	}
	if changed == 0 {
		writeError(w, http.StatusNotFound, "Equipment not found", inventory.ErrNotFound)
		return
	}

	h.Bus.Publish(inventory.EntityEquipment)
	writeJSON(w, http.StatusOK, MutationResponse{Success: true, Changed: &changed})
}

// =============================================================================
// SEMI-FINISHED GOODS
// =============================================================================

// CreateSemiFinished inserts a semi-finished row.
// POST /api/semifinished
func (h *Handler) CreateSemiFinished(w http.ResponseWriter, r *http.Request) {
	var req SemiFinishedDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", inventory.ErrInvalidInput)
		return
	}

	id, err := h.Store.InsertSemiFinished(r.Context(), req.toModel())
	if err != nil {
		h.writeFailure(w, "Failed to insert semifinished", err)
		return
	}

	h.Bus.Publish(inventory.EntitySemiFinished)
	writeJSON(w, http.StatusCreated, MutationResponse{Success: true, InsertedID: &id})
}

// UpdateSemiFinished overwrites a semi-finished row by rowid.
// PUT /api/semifinished/{id}
func (h *Handler) UpdateSemiFinished(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req SemiFinishedDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}
	req.ID = id

	changed, err := h.Store.UpdateSemiFinished(r.Context(), req.toModel())
	if err != nil {
		h.writeFailure(w, "Failed to update semifinished", err)
		return
	}
	if changed == 0 {
		writeError(w, http.StatusNotFound, "Semifinished not found", inventory.ErrNotFound)
		return
	}

	h.Bus.Publish(inventory.EntitySemiFinished)
	writeJSON(w, http.StatusOK, MutationResponse{Success: true, Changed: &changed})
}

// DeleteSemiFinished removes a semi-finished row.
// DELETE /api/semifinished/{id}
func (h *Handler) DeleteSemiFinished(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	changed, err := h.Store.DeleteSemiFinished(r.Context(), id)
	if err != nil {
		h.writeFailure(w, "Failed to delete semifinished", err)
		return
	}
	if changed == 0 {
		writeError(w, http.StatusNotFound, "Semifinished not found", inventory.ErrNotFound)
		return
	}

	h.Bus.Publish(inventory.EntitySemiFinished)
	writeJSON(w, http.StatusOK, MutationResponse{Success: true, Changed: &changed})
}

// =============================================================================
// MOVEMENT RETENTION
// =============================================================================

// DeleteMovement removes a single ledger entry.
// DELETE /api/movements/{id}
func (h *Handler) DeleteMovement(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	changed, err := h.Store.DeleteMovement(r.Context(), id)
	if err != nil {
		h.writeFailure(w, "Failed to delete movement", err)
		return
	}
	if changed == 0 {
		writeError(w, http.StatusNotFound, "Movement not found", inventory.ErrNotFound)
		return
	}

	h.Bus.Publish(inventory.EntityMovements)
	writeJSON(w, http.StatusOK, MutationResponse{Success: true, Changed: &changed})
}

// DeleteMovementsBeforeCurrentMonth keeps current-month ledger history
// only. Irreversible; any confirmation dialog is the caller's job.
// DELETE /api/movements/before-current-month
func (h *Handler) DeleteMovementsBeforeCurrentMonth(w http.ResponseWriter, r *http.Request) {
	changed, err := h.Ledger.DeleteMovementsBeforeCurrentMonth(r.Context())
	if err != nil {
		h.writeFailure(w, "Failed to delete old movements", err)
		return
	}

	h.Bus.Publish(inventory.EntityMovements)
	writeJSON(w, http.StatusOK, MutationResponse{Success: true, Changed: &changed})
}

// DeleteAllMovements empties the ledger. Irreversible.
// DELETE /api/movements
func (h *Handler) DeleteAllMovements(w http.ResponseWriter, r *http.Request) {
	changed, err := h.Ledger.DeleteAllMovements(r.Context())
	if err != nil {
		h.writeFailure(w, "Failed to delete movements", err)
		return
	}

	h.Bus.Publish(inventory.EntityMovements)
	writeJSON(w, http.StatusOK, MutationResponse{Success: true, Changed: &changed})
}

// =============================================================================
// EVENT STREAM
// =============================================================================

// StreamEvents streams entity refresh notifications as server-sent
// events until the client disconnects.
// GET /api/events
func (h *Handler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Streaming unsupported", nil)
		return
	}

	ch, cancel := h.Bus.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, open := <-ch:
			if !open {
				return
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil && !errors.Is(err, inventory.ErrPersistence) {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeFailure maps a domain error onto an HTTP status. Persistence
// failures are logged with their storage detail; the response body
// never carries raw engine text.
func (h *Handler) writeFailure(w http.ResponseWriter, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case inventory.IsNotFound(err):
		status = http.StatusNotFound
	case inventory.IsConflict(err):
		status = http.StatusConflict
	case inventory.IsClientError(err):
		status = http.StatusBadRequest
	default:
		h.Log.Error().Err(err).Msg(message)
	}
	writeError(w, status, message, err)
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id", inventory.ErrInvalidInput)
		return 0, false
	}
	return id, true
}

func parseDate(w http.ResponseWriter, raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD", inventory.ErrInvalidInput)
		return time.Time{}, false
	}
	return t, true
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
