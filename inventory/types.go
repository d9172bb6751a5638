/*
Package inventory provides the core warehouse engine.

PURPOSE:
  This package contains the domain types and operations for tracking
  clients, catalog articles, produced goods, loaned equipment and the
  stock-movement ledger. It is storage-backed but UI-agnostic: callers
  (a desktop shell, an HTTP adapter, tests) invoke named operations and
  receive plain results or typed errors.

KEY CONCEPTS IN THIS FILE (types.go):
  - Client:      customer identified by its delivery-note number (DDT)
  - Article:     catalog item with a unit price
  - Product:     a produced batch in stock; its Value is derived from
                 the article price and the batch quantity
  - Equipment:   client-owned tooling held in the warehouse
  - SemiFinished: loose intermediate goods with free-form quantities
  - Movement:    one inbound/outbound ledger entry
  - Entity:      closed enumeration of the queryable entity kinds

DESIGN PRINCIPLES:
  1. Precision: all money uses decimal.Decimal, never float64
  2. Derived data has one owner: Product.Value is only ever written by
     the pricing path (see pricing.go, ledger.go)
  3. Closed entity set: list queries are keyed by Entity constants, a
     caller-supplied string never reaches SQL

SEE ALSO:
  - pricing.go: unit-price resolution and value computation
  - ledger.go: stock-in/stock-out engine and cascades
  - store.go: persistence contract
*/
package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ENTITIES
// =============================================================================

// Client is a customer. The DDT (delivery-note number) is the business
// key; products and equipment reference it.
type Client struct {
	DDT     string
	Name    string
	TaxID   string
	Phone   string
	Email   string
	Address string
}

// Article is a catalog item. UnitPrice is non-negative; a price change
// is propagated to every dependent product (see Ledger.UpdateArticle).
type Article struct {
	Code        string
	Description string
	UnitPrice   decimal.Decimal
}

// Product is a produced batch currently in stock. Value is a cached
// derivation: round(article unit price x Quantity, 2). A product row
// with zero quantity is never stored; a full withdrawal deletes it.
type Product struct {
	ID              int64
	ClientDDT       string
	ArticleCode     string
	Quantity        int64
	ProductionDate  time.Time
	Value           decimal.Decimal
	StorageLocation string
}

// Equipment is client tooling held in the warehouse.
type Equipment struct {
	ID              int64
	ClientDDT       string
	ArticleCode     string
	StorageLocation string
}

// SemiFinished is an intermediate good. Quantity is free-form text
// (pallets, kg, units...) and carries no arithmetic meaning.
type SemiFinished struct {
	ID              int64
	Name            string
	Quantity        string
	StorageLocation string
}

// =============================================================================
// MOVEMENT - one stock ledger entry
// =============================================================================

// Direction of a stock movement.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// Movement records one inbound or outbound stock operation. Movements
// deliberately carry no foreign keys: the ledger must survive deletion
// of the client, article or product it refers to.
type Movement struct {
	ID          int64
	ClientDDT   string
	ArticleCode string
	Quantity    int64
	Value       decimal.Decimal
	Direction   Direction
	RecordedAt  time.Time
}

// =============================================================================
// QUERY/AGGREGATION RESULTS
// =============================================================================

// Stats are the warehouse-wide aggregates. Sums are zero, not null,
// when the underlying tables are empty.
type Stats struct {
	ClientCount       int64
	ArticleCount      int64
	EquipmentCount    int64
	TotalProductUnits int64
	TotalProductValue decimal.Decimal
}

// DistinctKeys lists the foreign-key values a product or equipment row
// may legally reference. Both slices are sorted.
type DistinctKeys struct {
	ClientDDTs   []string
	ArticleCodes []string
}

// =============================================================================
// ENTITY ENUMERATION
// =============================================================================

// Entity names one of the queryable tables. List queries only accept
// these constants; ParseEntity is the sole way in from caller strings.
type Entity string

const (
	EntityClients      Entity = "clients"
	EntityArticles     Entity = "articles"
	EntityProducts     Entity = "products"
	EntityEquipment    Entity = "equipment"
	EntitySemiFinished Entity = "semifinished"
	EntityMovements    Entity = "movements"
)

// ParseEntity maps a caller-supplied name to an Entity constant.
// Unrecognized names fail with ErrUnknownEntity.
func ParseEntity(name string) (Entity, error) {
	switch Entity(name) {
	case EntityClients, EntityArticles, EntityProducts,
		EntityEquipment, EntitySemiFinished, EntityMovements:
		return Entity(name), nil
	}
	return "", &UnknownEntityError{Name: name}
}
