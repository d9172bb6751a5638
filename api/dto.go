/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types
  decouple the internal domain model from the external contract.

NAMING CONVENTION:
  - *DTO: response types returned to clients
  - *Request: request body types from clients

MONEY:
  Prices and values use decimal.Decimal, which marshals to a quoted
  decimal string and accepts either a string or a JSON number on input.

VALIDATION:
  Validation is done in handlers and the inventory package, not in
  DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: uses these types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/magazzino/inventory-engine/inventory"
)

// =============================================================================
// ENTITY DTOS
// =============================================================================

// ClientDTO represents a client in API responses.
type ClientDTO struct {
	DDT     string `json:"ddt"`
	Name    string `json:"name"`
	TaxID   string `json:"taxId,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
}

// ArticleDTO represents a catalog article.
type ArticleDTO struct {
	Code        string          `json:"code"`
	Description string          `json:"description,omitempty"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

// ProductDTO represents a stocked batch. Value is derived server-side
// and ignored on input.
type ProductDTO struct {
	ID              int64           `json:"id,omitempty"`
	ClientDDT       string          `json:"clientDdt"`
	ArticleCode     string          `json:"articleCode"`
	Quantity        int64           `json:"quantity"`
	ProductionDate  string          `json:"productionDate,omitempty"`
	Value           decimal.Decimal `json:"value"`
	StorageLocation string          `json:"storageLocation,omitempty"`
}

// EquipmentDTO represents loaned client tooling.
type EquipmentDTO struct {
	ID              int64  `json:"id,omitempty"`
	ClientDDT       string `json:"clientDdt"`
	ArticleCode     string `json:"articleCode"`
	StorageLocation string `json:"storageLocation,omitempty"`
}

// SemiFinishedDTO represents an intermediate good.
type SemiFinishedDTO struct {
	ID              int64  `json:"id,omitempty"`
	Name            string `json:"name"`
	Quantity        string `json:"quantity,omitempty"`
	StorageLocation string `json:"storageLocation,omitempty"`
}

// MovementDTO represents one ledger entry.
type MovementDTO struct {
	ID          int64           `json:"id"`
	ClientDDT   string          `json:"clientDdt"`
	ArticleCode string          `json:"articleCode"`
	Quantity    int64           `json:"quantity"`
	Value       decimal.Decimal `json:"value"`
	Direction   string          `json:"direction"`
	RecordedAt  string          `json:"recordedAt"`
}

// StatsDTO carries the warehouse-wide aggregates.
type StatsDTO struct {
	ClientCount       int64           `json:"clientCount"`
	ArticleCount      int64           `json:"articleCount"`
	EquipmentCount    int64           `json:"equipmentCount"`
	TotalProductUnits int64           `json:"totalProductUnits"`
	TotalProductValue decimal.Decimal `json:"totalProductValue"`
}

// KeysDTO lists the legal foreign-key values for selection inputs.
type KeysDTO struct {
	ClientKeys  []string `json:"clientKeys"`
	ArticleKeys []string `json:"articleKeys"`
}

// =============================================================================
// REQUEST TYPES
// =============================================================================

// StockInRequest is the request body for an inbound stock movement.
type StockInRequest struct {
	ClientDDT       string `json:"clientDdt"`
	ArticleCode     string `json:"articleCode"`
	Quantity        int64  `json:"quantity"`
	ProductionDate  string `json:"productionDate,omitempty"`
	StorageLocation string `json:"storageLocation,omitempty"`
}

// StockOutRequest is the request body for an outbound stock movement.
type StockOutRequest struct {
	ProductID       int64  `json:"productId"`
	ClientDDT       string `json:"clientDdt"`
	ArticleCode     string `json:"articleCode"`
	CurrentQuantity int64  `json:"currentQuantity"`
	OutQuantity     int64  `json:"outQuantity"`
}

// UpdateArticleRequest changes an article's description and price; the
// price change cascades to dependent products.
type UpdateArticleRequest struct {
	Description string          `json:"description"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

// =============================================================================
// RESPONSE WRAPPERS
// =============================================================================

// MutationResponse reports the outcome of a successful write.
type MutationResponse struct {
	Success    bool   `json:"success"`
	InsertedID *int64 `json:"insertedId,omitempty"`
	Changed    *int64 `json:"changed,omitempty"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toClientDTO(c inventory.Client) ClientDTO {
	return ClientDTO{DDT: c.DDT, Name: c.Name, TaxID: c.TaxID, Phone: c.Phone, Email: c.Email, Address: c.Address}
}

func toArticleDTO(a inventory.Article) ArticleDTO {
	return ArticleDTO{Code: a.Code, Description: a.Description, UnitPrice: a.UnitPrice}
}

func toProductDTO(p inventory.Product) ProductDTO {
	dto := ProductDTO{
		ID:              p.ID,
		ClientDDT:       p.ClientDDT,
		ArticleCode:     p.ArticleCode,
		Quantity:        p.Quantity,
		Value:           p.Value,
		StorageLocation: p.StorageLocation,
	}
	if !p.ProductionDate.IsZero() {
		dto.ProductionDate = p.ProductionDate.Format("2006-01-02")
	}
	return dto
}

func toEquipmentDTO(e inventory.Equipment) EquipmentDTO {
	return EquipmentDTO{ID: e.ID, ClientDDT: e.ClientDDT, ArticleCode: e.ArticleCode, StorageLocation: e.StorageLocation}
}

func toSemiFinishedDTO(sf inventory.SemiFinished) SemiFinishedDTO {
	return SemiFinishedDTO{ID: sf.ID, Name: sf.Name, Quantity: sf.Quantity, StorageLocation: sf.StorageLocation}
}

func toMovementDTO(m inventory.Movement) MovementDTO {
	return MovementDTO{
		ID:          m.ID,
		ClientDDT:   m.ClientDDT,
		ArticleCode: m.ArticleCode,
		Quantity:    m.Quantity,
		Value:       m.Value,
		Direction:   string(m.Direction),
		RecordedAt:  m.RecordedAt.UTC().Format(time.RFC3339),
	}
}

func (dto ClientDTO) toModel() inventory.Client {
	return inventory.Client{DDT: dto.DDT, Name: dto.Name, TaxID: dto.TaxID, Phone: dto.Phone, Email: dto.Email, Address: dto.Address}
}

func (dto EquipmentDTO) toModel() inventory.Equipment {
	return inventory.Equipment{ID: dto.ID, ClientDDT: dto.ClientDDT, ArticleCode: dto.ArticleCode, StorageLocation: dto.StorageLocation}
}

func (dto SemiFinishedDTO) toModel() inventory.SemiFinished {
	return inventory.SemiFinished{ID: dto.ID, Name: dto.Name, Quantity: dto.Quantity, StorageLocation: dto.StorageLocation}
}
