/*
store.go - Persistence contract for the stock ledger engine

PURPOSE:
  Defines the interface between the domain operations in ledger.go and
  the database. The concrete implementation lives in store/sqlite; the
  interface exists so the engine is testable against any store and so
  multi-statement operations can run inside one SQL transaction.

ATOMICITY:
  TxStore.WithTx runs a function against a transactional view of the
  store. Everything written inside the closure commits together or not
  at all. Both stock transitions and the article price cascade rely on
  this: a failure partway must roll back every write of the operation.

CHANGED-ROW COUNTS:
  Update/delete methods return the number of affected rows. The engine
  turns a zero count into NotFound; it is the only signal that a row
  vanished between the caller reading it and the write landing.

SEE ALSO:
  - ledger.go: the consumer of this interface
  - store/sqlite/sqlite.go: concrete implementation
*/
package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Store is the persistence surface required by the Ledger.
type Store interface {
	// GetArticle returns the article with the given code, or nil if absent.
	// A stored price that is missing or unparsable fails with a PriceError.
	GetArticle(ctx context.Context, code string) (*Article, error)

	// UpdateArticle overwrites an article's description and unit price.
	// Returns the changed-row count.
	UpdateArticle(ctx context.Context, a Article) (int64, error)

	// RepriceProducts bulk-recomputes the value of every product that
	// references the article. Returns the number of product rows touched.
	RepriceProducts(ctx context.Context, articleCode string, unitPrice decimal.Decimal) (int64, error)

	// InsertProduct inserts a product row and returns its rowid.
	InsertProduct(ctx context.Context, p Product) (int64, error)

	// UpdateProduct overwrites a product row by ID. Returns the
	// changed-row count.
	UpdateProduct(ctx context.Context, p Product) (int64, error)

	// SetProductQuantity updates only quantity and value of a product.
	// Returns the changed-row count.
	SetProductQuantity(ctx context.Context, id int64, quantity int64, value decimal.Decimal) (int64, error)

	// DeleteProduct removes a product row. Returns the changed-row count.
	DeleteProduct(ctx context.Context, id int64) (int64, error)

	// AppendMovement appends one ledger entry and returns its rowid.
	// A zero RecordedAt defaults to the current time.
	AppendMovement(ctx context.Context, m Movement) (int64, error)

	// DeleteMovementsBefore removes ledger entries recorded strictly
	// before the cutoff. Returns the number removed.
	DeleteMovementsBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteAllMovements empties the ledger. Returns the number removed.
	DeleteAllMovements(ctx context.Context) (int64, error)
}

// TxStore is a Store that can run multi-statement operations atomically.
type TxStore interface {
	Store

	// WithTx executes fn against a transactional store. All writes made
	// through it commit together; any returned error rolls them back.
	WithTx(ctx context.Context, fn func(Store) error) error
}
