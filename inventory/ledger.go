/*
ledger.go - The stock-movement engine

PURPOSE:
  Implements the state transitions that keep three things mutually
  consistent: a product's on-hand quantity, its derived monetary value,
  and the append-only movement ledger.

STATE MODEL:
  A product batch either exists with quantity > 0 or does not exist.
  Stock-in creates a batch and logs an inbound movement. Stock-out
  shrinks a batch (or deletes it when fully withdrawn) and logs an
  outbound movement. In both cases the inventory write and the ledger
  append are one atomic unit: a failure partway rolls back everything.

CRITICAL INVARIANTS:
  1. Product.Value == ComputeValue(article unit price, quantity), always
  2. No zero-quantity product rows; a full withdrawal deletes the batch
  3. Every movement row is written by this engine, never by plain CRUD
  4. A failed operation leaves no durable partial effect

ROUNDING NOTE:
  On stock-out, the withdrawn value and the remaining value are rounded
  independently from the same unrounded unit price. Their sum may differ
  from the prior total by a cent; this matches the historical behavior
  and is asserted as a non-invariant in tests.

SEE ALSO:
  - pricing.go: value derivation
  - store.go: persistence contract, atomicity
*/
package inventory

import (
	"context"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

func formatID(id int64) string { return strconv.FormatInt(id, 10) }

// Ledger executes stock transitions and cascades against a TxStore.
type Ledger struct {
	store TxStore

	// now is swappable for tests.
	now func() time.Time
}

// NewLedger creates a Ledger backed by the given store.
func NewLedger(store TxStore) *Ledger {
	return &Ledger{store: store, now: time.Now}
}

// =============================================================================
// STOCK-IN
// =============================================================================

// StockInRequest describes an inbound batch.
type StockInRequest struct {
	ClientDDT       string
	ArticleCode     string
	Quantity        int64
	ProductionDate  time.Time
	StorageLocation string
}

// StockIn inserts a new product batch and appends a matching inbound
// movement. Price resolution happens first; if it fails, nothing is
// written. Returns the new product's rowid.
func (l *Ledger) StockIn(ctx context.Context, req StockInRequest) (int64, error) {
	if req.ClientDDT == "" || req.ArticleCode == "" {
		return 0, ErrInvalidInput
	}
	if req.Quantity <= 0 {
		return 0, &QuantityError{Requested: req.Quantity}
	}

	unitPrice, err := resolvePrice(ctx, l.store, req.ArticleCode)
	if err != nil {
		return 0, err
	}
	value := ComputeValue(unitPrice, req.Quantity)

	var productID int64
	err = l.store.WithTx(ctx, func(s Store) error {
		id, err := s.InsertProduct(ctx, Product{
			ClientDDT:       req.ClientDDT,
			ArticleCode:     req.ArticleCode,
			Quantity:        req.Quantity,
			ProductionDate:  req.ProductionDate,
			Value:           value,
			StorageLocation: req.StorageLocation,
		})
		if err != nil {
			return err
		}
		productID = id

		_, err = s.AppendMovement(ctx, Movement{
			ClientDDT:   req.ClientDDT,
			ArticleCode: req.ArticleCode,
			Quantity:    req.Quantity,
			Value:       value,
			Direction:   DirectionIn,
			RecordedAt:  l.now(),
		})
		return err
	})
	if err != nil {
		return 0, err
	}
	return productID, nil
}

// =============================================================================
// STOCK-OUT
// =============================================================================

// StockOutRequest describes a withdrawal from an existing batch.
// CurrentQuantity is the quantity the caller observed; the engine
// subtracts OutQuantity from it.
type StockOutRequest struct {
	ProductID       int64
	ClientDDT       string
	ArticleCode     string
	CurrentQuantity int64
	OutQuantity     int64
}

// StockOut withdraws OutQuantity units from a batch. A partial
// withdrawal shrinks the row and recomputes its value; a full
// withdrawal deletes the row. Either way an outbound movement is
// appended carrying the value of what left, not what remains.
func (l *Ledger) StockOut(ctx context.Context, req StockOutRequest) error {
	if req.ClientDDT == "" || req.ArticleCode == "" {
		return ErrInvalidInput
	}
	if req.OutQuantity <= 0 {
		return &QuantityError{ProductID: req.ProductID, Available: req.CurrentQuantity, Requested: req.OutQuantity}
	}
	remaining := req.CurrentQuantity - req.OutQuantity
	if remaining < 0 {
		return &QuantityError{ProductID: req.ProductID, Available: req.CurrentQuantity, Requested: req.OutQuantity}
	}

	unitPrice, err := resolvePrice(ctx, l.store, req.ArticleCode)
	if err != nil {
		return err
	}

	return l.store.WithTx(ctx, func(s Store) error {
		var changed int64
		var err error
		if remaining > 0 {
			changed, err = s.SetProductQuantity(ctx, req.ProductID, remaining, ComputeValue(unitPrice, remaining))
		} else {
			changed, err = s.DeleteProduct(ctx, req.ProductID)
		}
		if err != nil {
			return err
		}
		if changed == 0 {
			return &NotFoundError{Entity: EntityProducts, Key: formatID(req.ProductID)}
		}

		_, err = s.AppendMovement(ctx, Movement{
			ClientDDT:   req.ClientDDT,
			ArticleCode: req.ArticleCode,
			Quantity:    req.OutQuantity,
			Value:       ComputeValue(unitPrice, req.OutQuantity),
			Direction:   DirectionOut,
			RecordedAt:  l.now(),
		})
		return err
	})
}

// =============================================================================
// PRODUCT CRUD (derived value maintained here, no ledger entries)
// =============================================================================

// InsertProduct inserts a batch without logging a movement. The value
// field of the input is ignored and derived from the article price.
func (l *Ledger) InsertProduct(ctx context.Context, p Product) (int64, error) {
	if p.ClientDDT == "" || p.ArticleCode == "" {
		return 0, ErrInvalidInput
	}
	if p.Quantity <= 0 {
		return 0, &QuantityError{Requested: p.Quantity}
	}
	unitPrice, err := resolvePrice(ctx, l.store, p.ArticleCode)
	if err != nil {
		return 0, err
	}
	p.Value = ComputeValue(unitPrice, p.Quantity)
	return l.store.InsertProduct(ctx, p)
}

// UpdateProduct overwrites a batch by rowid, re-deriving its value from
// the (possibly changed) article and quantity.
func (l *Ledger) UpdateProduct(ctx context.Context, p Product) (int64, error) {
	if p.ClientDDT == "" || p.ArticleCode == "" {
		return 0, ErrInvalidInput
	}
	if p.Quantity <= 0 {
		return 0, &QuantityError{ProductID: p.ID, Requested: p.Quantity}
	}
	unitPrice, err := resolvePrice(ctx, l.store, p.ArticleCode)
	if err != nil {
		return 0, err
	}
	p.Value = ComputeValue(unitPrice, p.Quantity)

	changed, err := l.store.UpdateProduct(ctx, p)
	if err != nil {
		return 0, err
	}
	if changed == 0 {
		return 0, &NotFoundError{Entity: EntityProducts, Key: formatID(p.ID)}
	}
	return changed, nil
}

// =============================================================================
// ARTICLE PRICE CASCADE
// =============================================================================

// UpdateArticle changes an article's description and unit price, then
// bulk-recomputes the value of every dependent product. The article
// update and the cascade commit atomically. Returns the combined
// changed-row count (article + products).
func (l *Ledger) UpdateArticle(ctx context.Context, code, description string, unitPrice decimal.Decimal) (int64, error) {
	if code == "" {
		return 0, ErrInvalidInput
	}
	if err := ValidatePrice(code, unitPrice); err != nil {
		return 0, err
	}

	var total int64
	err := l.store.WithTx(ctx, func(s Store) error {
		changed, err := s.UpdateArticle(ctx, Article{Code: code, Description: description, UnitPrice: unitPrice})
		if err != nil {
			return err
		}
		if changed == 0 {
			return &NotFoundError{Entity: EntityArticles, Key: code}
		}

		repriced, err := s.RepriceProducts(ctx, code, unitPrice)
		if err != nil {
			return err
		}
		total = changed + repriced
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// =============================================================================
// RETENTION
// =============================================================================

// DeleteMovementsBeforeCurrentMonth removes every ledger entry recorded
// before the first instant of the current calendar month, keeping only
// current-month history. Irreversible. Returns the number removed.
func (l *Ledger) DeleteMovementsBeforeCurrentMonth(ctx context.Context) (int64, error) {
	now := l.now()
	cutoff := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return l.store.DeleteMovementsBefore(ctx, cutoff)
}

// DeleteAllMovements empties the ledger. Irreversible.
func (l *Ledger) DeleteAllMovements(ctx context.Context) (int64, error) {
	return l.store.DeleteAllMovements(ctx)
}
