/*
Package sqlite provides the SQLite-backed persistence layer.

PURPOSE:
  Implements inventory.TxStore plus the CRUD and aggregation surface the
  API layer consumes. One Store wraps one database connection, opened at
  startup and reused for the process lifetime.

SCHEMA & CONSTRAINTS:
  Referential integrity lives here, not in application code:
  - products/equipment reference clients(ddt) and articles(code) with
    ON UPDATE CASCADE ON DELETE RESTRICT: renaming a key renumbers the
    dependents, deleting a parent with dependents fails
  - movements carry NO foreign keys, so ledger history survives the
    deletion of whatever it refers to
  Foreign keys are switched on per connection via the DSN.

MONEY REPRESENTATION:
  Prices and values are stored as decimal strings (TEXT) and parsed with
  shopspring/decimal on read. Nothing here does monetary arithmetic of
  its own; the inventory package owns the rounding policy.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety around the single connection.
  WithTx holds the write lock for the whole closure, so multi-statement
  operations are serialized and atomic.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging): readers don't block,
  single writer at a time, better crash recovery.

USAGE:
  store, err := sqlite.New("./data/magazzino.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  ledger := inventory.NewLedger(store)

MIGRATION:
  Schema is auto-migrated on New(); creating a table that already exists
  is a no-op, so startup is idempotent.

SEE ALSO:
  - inventory/store.go: interface definitions
  - inventory/ledger.go: the engine driving the transactional methods
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/magazzino/inventory-engine/inventory"
)

// Store implements inventory.TxStore and the query surface using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS clients (
		ddt TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		tax_id TEXT,
		phone TEXT,
		email TEXT,
		address TEXT
	);

	CREATE TABLE IF NOT EXISTS articles (
		code TEXT PRIMARY KEY,
		description TEXT,
		unit_price TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		client_ddt TEXT NOT NULL
			REFERENCES clients(ddt) ON UPDATE CASCADE ON DELETE RESTRICT,
		article_code TEXT NOT NULL
			REFERENCES articles(code) ON UPDATE CASCADE ON DELETE RESTRICT,
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		production_date TEXT,
		value TEXT NOT NULL,
		storage_location TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_products_article ON products(article_code);
	CREATE INDEX IF NOT EXISTS idx_products_client ON products(client_ddt);

	CREATE TABLE IF NOT EXISTS equipment (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		client_ddt TEXT NOT NULL
			REFERENCES clients(ddt) ON UPDATE CASCADE ON DELETE RESTRICT,
		article_code TEXT NOT NULL
			REFERENCES articles(code) ON UPDATE CASCADE ON DELETE RESTRICT,
		storage_location TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_equipment_client ON equipment(client_ddt);

	CREATE TABLE IF NOT EXISTS semifinished (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		quantity TEXT,
		storage_location TEXT
	);

	-- Movement ledger: intentionally no foreign keys.
	CREATE TABLE IF NOT EXISTS movements (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		client_ddt TEXT NOT NULL,
		article_code TEXT NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		value TEXT NOT NULL,
		direction TEXT NOT NULL CHECK (direction IN ('in', 'out')),
		recorded_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_movements_recorded_at ON movements(recorded_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// ERROR MAPPING
// =============================================================================

// mapErr translates driver errors into inventory error kinds so callers
// never need to inspect SQLite error text.
func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var se sqlite3.Error
	if errors.As(err, &se) && se.Code == sqlite3.ErrConstraint {
		switch se.ExtendedCode {
		case sqlite3.ErrConstraintPrimaryKey, sqlite3.ErrConstraintUnique:
			return fmt.Errorf("%s: %w", op, inventory.ErrDuplicateKey)
		case sqlite3.ErrConstraintForeignKey, sqlite3.ErrConstraintTrigger:
			return fmt.Errorf("%s: %w", op, inventory.ErrForeignKeyViolation)
		case sqlite3.ErrConstraintCheck:
			return fmt.Errorf("%s: %w", op, inventory.ErrInvalidQuantity)
		}
	}
	return fmt.Errorf("%s: %v: %w", op, err, inventory.ErrPersistence)
}

// =============================================================================
// TRANSACTIONAL STORE (inventory.TxStore)
// =============================================================================

// WithTx executes a function within a database transaction. All writes
// made through the passed store commit together or roll back together.
func (s *Store) WithTx(ctx context.Context, fn func(inventory.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return mapErr("begin transaction", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx, parent: s}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return mapErr("commit transaction", err)
	}
	return nil
}

type txStore struct {
	tx     *sql.Tx
	parent *Store
}

func (ts *txStore) GetArticle(ctx context.Context, code string) (*inventory.Article, error) {
	return ts.parent.getArticle(ctx, ts.tx, code)
}

func (ts *txStore) UpdateArticle(ctx context.Context, a inventory.Article) (int64, error) {
	return ts.parent.updateArticle(ctx, ts.tx, a)
}

func (ts *txStore) RepriceProducts(ctx context.Context, articleCode string, unitPrice decimal.Decimal) (int64, error) {
	return ts.parent.repriceProducts(ctx, ts.tx, articleCode, unitPrice)
}

func (ts *txStore) InsertProduct(ctx context.Context, p inventory.Product) (int64, error) {
	return ts.parent.insertProduct(ctx, ts.tx, p)
}

func (ts *txStore) UpdateProduct(ctx context.Context, p inventory.Product) (int64, error) {
	return ts.parent.updateProduct(ctx, ts.tx, p)
}

func (ts *txStore) SetProductQuantity(ctx context.Context, id, quantity int64, value decimal.Decimal) (int64, error) {
	return ts.parent.setProductQuantity(ctx, ts.tx, id, quantity, value)
}

func (ts *txStore) DeleteProduct(ctx context.Context, id int64) (int64, error) {
	return ts.parent.deleteProduct(ctx, ts.tx, id)
}

func (ts *txStore) AppendMovement(ctx context.Context, m inventory.Movement) (int64, error) {
	return ts.parent.appendMovement(ctx, ts.tx, m)
}

func (ts *txStore) DeleteMovementsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return ts.parent.deleteMovementsBefore(ctx, ts.tx, cutoff)
}

func (ts *txStore) DeleteAllMovements(ctx context.Context) (int64, error) {
	return ts.parent.deleteAllMovements(ctx, ts.tx)
}

// =============================================================================
// CLIENTS
// =============================================================================

// InsertClient inserts a client keyed by its DDT.
func (s *Store) InsertClient(ctx context.Context, c inventory.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO clients (ddt, name, tax_id, phone, email, address) VALUES (?, ?, ?, ?, ?, ?)`,
		c.DDT, c.Name, c.TaxID, c.Phone, c.Email, c.Address,
	)
	return mapErr("insert client", err)
}

// UpdateClient overwrites the client currently keyed by ddt. Changing
// the DDT renumbers dependent products/equipment via ON UPDATE CASCADE.
func (s *Store) UpdateClient(ctx context.Context, ddt string, c inventory.Client) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE clients SET ddt = ?, name = ?, tax_id = ?, phone = ?, email = ?, address = ? WHERE ddt = ?`,
		c.DDT, c.Name, c.TaxID, c.Phone, c.Email, c.Address, ddt,
	)
	if err != nil {
		return 0, mapErr("update client", err)
	}
	return res.RowsAffected()
}

// DeleteClient removes a client. Fails with ErrForeignKeyViolation
// while products or equipment still reference it.
func (s *Store) DeleteClient(ctx context.Context, ddt string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM clients WHERE ddt = ?`, ddt)
	if err != nil {
		return 0, mapErr("delete client", err)
	}
	return res.RowsAffected()
}

// ListClients returns all clients in insertion order.
func (s *Store) ListClients(ctx context.Context) ([]inventory.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT ddt, name, tax_id, phone, email, address FROM clients ORDER BY rowid`)
	if err != nil {
		return nil, mapErr("list clients", err)
	}
	defer rows.Close()

	var clients []inventory.Client
	for rows.Next() {
		var c inventory.Client
		var taxID, phone, email, address sql.NullString
		if err := rows.Scan(&c.DDT, &c.Name, &taxID, &phone, &email, &address); err != nil {
			return nil, mapErr("scan client", err)
		}
		c.TaxID = taxID.String
		c.Phone = phone.String
		c.Email = email.String
		c.Address = address.String
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// =============================================================================
// ARTICLES
// =============================================================================

// InsertArticle inserts a catalog article.
func (s *Store) InsertArticle(ctx context.Context, a inventory.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO articles (code, description, unit_price) VALUES (?, ?, ?)`,
		a.Code, a.Description, a.UnitPrice.String(),
	)
	return mapErr("insert article", err)
}

// GetArticle returns the article with the given code, or nil if absent.
func (s *Store) GetArticle(ctx context.Context, code string) (*inventory.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getArticle(ctx, s.db, code)
}

func (s *Store) getArticle(ctx context.Context, db dbtx, code string) (*inventory.Article, error) {
	var a inventory.Article
	var description, price sql.NullString

	err := db.QueryRowContext(ctx,
		`SELECT code, description, unit_price FROM articles WHERE code = ?`, code,
	).Scan(&a.Code, &description, &price)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, mapErr("get article", err)
	}

	a.Description = description.String
	if !price.Valid {
		return nil, &inventory.PriceError{ArticleCode: code, Raw: ""}
	}
	a.UnitPrice, err = decimal.NewFromString(price.String)
	if err != nil {
		return nil, &inventory.PriceError{ArticleCode: code, Raw: price.String}
	}
	return &a, nil
}

// UpdateArticle overwrites description and unit price of an article.
func (s *Store) UpdateArticle(ctx context.Context, a inventory.Article) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateArticle(ctx, s.db, a)
}

func (s *Store) updateArticle(ctx context.Context, db dbtx, a inventory.Article) (int64, error) {
	res, err := db.ExecContext(ctx,
		`UPDATE articles SET description = ?, unit_price = ? WHERE code = ?`,
		a.Description, a.UnitPrice.String(), a.Code,
	)
	if err != nil {
		return 0, mapErr("update article", err)
	}
	return res.RowsAffected()
}

// DeleteArticle removes an article. Fails with ErrForeignKeyViolation
// while products or equipment still reference it.
func (s *Store) DeleteArticle(ctx context.Context, code string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM articles WHERE code = ?`, code)
	if err != nil {
		return 0, mapErr("delete article", err)
	}
	return res.RowsAffected()
}

// ListArticles returns all articles in insertion order.
func (s *Store) ListArticles(ctx context.Context) ([]inventory.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT code, description, unit_price FROM articles ORDER BY rowid`)
	if err != nil {
		return nil, mapErr("list articles", err)
	}
	defer rows.Close()

	var articles []inventory.Article
	for rows.Next() {
		var a inventory.Article
		var description, price sql.NullString
		if err := rows.Scan(&a.Code, &description, &price); err != nil {
			return nil, mapErr("scan article", err)
		}
		a.Description = description.String
		if price.Valid {
			a.UnitPrice, _ = decimal.NewFromString(price.String)
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// RepriceProducts recomputes the cached value of every product that
// references the article. Executed as one bulk UPDATE per distinct
// quantity so the arithmetic stays in decimal space; SQLite's ROUND
// works on binary doubles and disagrees with half-up on cent edges.
func (s *Store) RepriceProducts(ctx context.Context, articleCode string, unitPrice decimal.Decimal) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repriceProducts(ctx, s.db, articleCode, unitPrice)
}

func (s *Store) repriceProducts(ctx context.Context, db dbtx, articleCode string, unitPrice decimal.Decimal) (int64, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT DISTINCT quantity FROM products WHERE article_code = ?`, articleCode)
	if err != nil {
		return 0, mapErr("reprice products", err)
	}
	defer rows.Close()

	var quantities []int64
	for rows.Next() {
		var q int64
		if err := rows.Scan(&q); err != nil {
			return 0, mapErr("reprice products", err)
		}
		quantities = append(quantities, q)
	}
	if err := rows.Err(); err != nil {
		return 0, mapErr("reprice products", err)
	}

	var total int64
	for _, q := range quantities {
		res, err := db.ExecContext(ctx,
			`UPDATE products SET value = ? WHERE article_code = ? AND quantity = ?`,
			inventory.ComputeValue(unitPrice, q).String(), articleCode, q,
		)
		if err != nil {
			return 0, mapErr("reprice products", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

// =============================================================================
// PRODUCTS
// =============================================================================

// InsertProduct inserts a product row and returns its rowid.
func (s *Store) InsertProduct(ctx context.Context, p inventory.Product) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertProduct(ctx, s.db, p)
}

func (s *Store) insertProduct(ctx context.Context, db dbtx, p inventory.Product) (int64, error) {
	res, err := db.ExecContext(ctx,
		`INSERT INTO products (client_ddt, article_code, quantity, production_date, value, storage_location)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.ClientDDT, p.ArticleCode, p.Quantity, formatDate(p.ProductionDate),
		p.Value.String(), p.StorageLocation,
	)
	if err != nil {
		return 0, mapErr("insert product", err)
	}
	return res.LastInsertId()
}

// GetProduct returns the product with the given rowid, or nil if absent.
func (s *Store) GetProduct(ctx context.Context, id int64) (*inventory.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, client_ddt, article_code, quantity, production_date, value, storage_location
		 FROM products WHERE id = ?`, id)
	if err != nil {
		return nil, mapErr("get product", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	p, err := scanProduct(rows)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProduct overwrites a product row by rowid.
func (s *Store) UpdateProduct(ctx context.Context, p inventory.Product) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateProduct(ctx, s.db, p)
}

func (s *Store) updateProduct(ctx context.Context, db dbtx, p inventory.Product) (int64, error) {
	res, err := db.ExecContext(ctx,
		`UPDATE products SET client_ddt = ?, article_code = ?, quantity = ?, production_date = ?,
		 value = ?, storage_location = ? WHERE id = ?`,
		p.ClientDDT, p.ArticleCode, p.Quantity, formatDate(p.ProductionDate),
		p.Value.String(), p.StorageLocation, p.ID,
	)
	if err != nil {
		return 0, mapErr("update product", err)
	}
	return res.RowsAffected()
}

// SetProductQuantity updates only quantity and cached value.
func (s *Store) SetProductQuantity(ctx context.Context, id, quantity int64, value decimal.Decimal) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setProductQuantity(ctx, s.db, id, quantity, value)
}

func (s *Store) setProductQuantity(ctx context.Context, db dbtx, id, quantity int64, value decimal.Decimal) (int64, error) {
	res, err := db.ExecContext(ctx,
		`UPDATE products SET quantity = ?, value = ? WHERE id = ?`,
		quantity, value.String(), id,
	)
	if err != nil {
		return 0, mapErr("set product quantity", err)
	}
	return res.RowsAffected()
}

// DeleteProduct removes a product row.
func (s *Store) DeleteProduct(ctx context.Context, id int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteProduct(ctx, s.db, id)
}

func (s *Store) deleteProduct(ctx context.Context, db dbtx, id int64) (int64, error) {
	res, err := db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return 0, mapErr("delete product", err)
	}
	return res.RowsAffected()
}

// ListProducts returns all products in insertion order.
func (s *Store) ListProducts(ctx context.Context) ([]inventory.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, client_ddt, article_code, quantity, production_date, value, storage_location
		 FROM products ORDER BY id`)
	if err != nil {
		return nil, mapErr("list products", err)
	}
	defer rows.Close()

	var products []inventory.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func scanProduct(rows *sql.Rows) (inventory.Product, error) {
	var p inventory.Product
	var productionDate, value, storage sql.NullString

	if err := rows.Scan(&p.ID, &p.ClientDDT, &p.ArticleCode, &p.Quantity,
		&productionDate, &value, &storage); err != nil {
		return p, mapErr("scan product", err)
	}
	p.ProductionDate = parseDate(productionDate.String)
	p.StorageLocation = storage.String
	if value.Valid {
		p.Value, _ = decimal.NewFromString(value.String)
	}
	return p, nil
}

// =============================================================================
// EQUIPMENT
// =============================================================================

// InsertEquipment inserts an equipment row and returns its rowid.
func (s *Store) InsertEquipment(ctx context.Context, e inventory.Equipment) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO equipment (client_ddt, article_code, storage_location) VALUES (?, ?, ?)`,
		e.ClientDDT, e.ArticleCode, e.StorageLocation,
	)
	if err != nil {
		return 0, mapErr("insert equipment", err)
	}
	return res.LastInsertId()
}

// UpdateEquipment overwrites an equipment row by rowid.
func (s *Store) UpdateEquipment(ctx context.Context, e inventory.Equipment) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE equipment SET client_ddt = ?, article_code = ?, storage_location = ? WHERE id = ?`,
		e.ClientDDT, e.ArticleCode, e.StorageLocation, e.ID,
	)
	if err != nil {
		return 0, mapErr("update equipment", err)
	}
	return res.RowsAffected()
}

// DeleteEquipment removes an equipment row.
func (s *Store) DeleteEquipment(ctx context.Context, id int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM equipment WHERE id = ?`, id)
	if err != nil {
		return 0, mapErr("delete equipment", err)
	}
	return res.RowsAffected()
}

// ListEquipment returns all equipment in insertion order.
func (s *Store) ListEquipment(ctx context.Context) ([]inventory.Equipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, client_ddt, article_code, storage_location FROM equipment ORDER BY id`)
	if err != nil {
		return nil, mapErr("list equipment", err)
	}
	defer rows.Close()

	var equipment []inventory.Equipment
	for rows.Next() {
		var e inventory.Equipment
		var storage sql.NullString
		if err := rows.Scan(&e.ID, &e.ClientDDT, &e.ArticleCode, &storage); err != nil {
			return nil, mapErr("scan equipment", err)
		}
		e.StorageLocation = storage.String
		equipment = append(equipment, e)
	}
	return equipment, rows.Err()
}

// =============================================================================
// SEMI-FINISHED GOODS
// =============================================================================

// InsertSemiFinished inserts a semi-finished row and returns its rowid.
func (s *Store) InsertSemiFinished(ctx context.Context, sf inventory.SemiFinished) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO semifinished (name, quantity, storage_location) VALUES (?, ?, ?)`,
		sf.Name, sf.Quantity, sf.StorageLocation,
	)
	if err != nil {
		return 0, mapErr("insert semifinished", err)
	}
	return res.LastInsertId()
}

// UpdateSemiFinished overwrites a semi-finished row by rowid.
func (s *Store) UpdateSemiFinished(ctx context.Context, sf inventory.SemiFinished) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE semifinished SET name = ?, quantity = ?, storage_location = ? WHERE id = ?`,
		sf.Name, sf.Quantity, sf.StorageLocation, sf.ID,
	)
	if err != nil {
		return 0, mapErr("update semifinished", err)
	}
	return res.RowsAffected()
}

// DeleteSemiFinished removes a semi-finished row.
func (s *Store) DeleteSemiFinished(ctx context.Context, id int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM semifinished WHERE id = ?`, id)
	if err != nil {
		return 0, mapErr("delete semifinished", err)
	}
	return res.RowsAffected()
}

// ListSemiFinished returns all semi-finished goods in insertion order.
func (s *Store) ListSemiFinished(ctx context.Context) ([]inventory.SemiFinished, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, quantity, storage_location FROM semifinished ORDER BY id`)
	if err != nil {
		return nil, mapErr("list semifinished", err)
	}
	defer rows.Close()

	var goods []inventory.SemiFinished
	for rows.Next() {
		var sf inventory.SemiFinished
		var quantity, storage sql.NullString
		if err := rows.Scan(&sf.ID, &sf.Name, &quantity, &storage); err != nil {
			return nil, mapErr("scan semifinished", err)
		}
		sf.Quantity = quantity.String
		sf.StorageLocation = storage.String
		goods = append(goods, sf)
	}
	return goods, rows.Err()
}

// =============================================================================
// MOVEMENTS (ledger)
// =============================================================================

// AppendMovement appends one ledger entry and returns its rowid.
func (s *Store) AppendMovement(ctx context.Context, m inventory.Movement) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendMovement(ctx, s.db, m)
}

func (s *Store) appendMovement(ctx context.Context, db dbtx, m inventory.Movement) (int64, error) {
	recordedAt := m.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}
	res, err := db.ExecContext(ctx,
		`INSERT INTO movements (client_ddt, article_code, quantity, value, direction, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.ClientDDT, m.ArticleCode, m.Quantity, m.Value.String(),
		string(m.Direction), recordedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, mapErr("append movement", err)
	}
	return res.LastInsertId()
}

// ListMovements returns the full ledger in insertion order.
func (s *Store) ListMovements(ctx context.Context) ([]inventory.Movement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, client_ddt, article_code, quantity, value, direction, recorded_at
		 FROM movements ORDER BY id`)
	if err != nil {
		return nil, mapErr("list movements", err)
	}
	defer rows.Close()

	var movements []inventory.Movement
	for rows.Next() {
		var m inventory.Movement
		var value, direction, recordedAt string
		if err := rows.Scan(&m.ID, &m.ClientDDT, &m.ArticleCode, &m.Quantity,
			&value, &direction, &recordedAt); err != nil {
			return nil, mapErr("scan movement", err)
		}
		m.Value, _ = decimal.NewFromString(value)
		m.Direction = inventory.Direction(direction)
		m.RecordedAt, _ = time.Parse(time.RFC3339, recordedAt)
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

// DeleteMovement removes a single ledger entry.
func (s *Store) DeleteMovement(ctx context.Context, id int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM movements WHERE id = ?`, id)
	if err != nil {
		return 0, mapErr("delete movement", err)
	}
	return res.RowsAffected()
}

// DeleteMovementsBefore removes ledger entries recorded strictly before
// the cutoff.
func (s *Store) DeleteMovementsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteMovementsBefore(ctx, s.db, cutoff)
}

func (s *Store) deleteMovementsBefore(ctx context.Context, db dbtx, cutoff time.Time) (int64, error) {
	res, err := db.ExecContext(ctx,
		`DELETE FROM movements WHERE recorded_at < ?`,
		cutoff.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, mapErr("delete movements before cutoff", err)
	}
	return res.RowsAffected()
}

// DeleteAllMovements empties the ledger.
func (s *Store) DeleteAllMovements(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteAllMovements(ctx, s.db)
}

func (s *Store) deleteAllMovements(ctx context.Context, db dbtx) (int64, error) {
	res, err := db.ExecContext(ctx, `DELETE FROM movements`)
	if err != nil {
		return 0, mapErr("delete all movements", err)
	}
	return res.RowsAffected()
}

// =============================================================================
// AGGREGATION
// =============================================================================

// Stats computes the warehouse-wide aggregates. Counts and unit sums
// come straight from SQL (COALESCE keeps empty tables at zero); the
// total value is summed in decimal space to stay exact.
func (s *Store) Stats(ctx context.Context) (inventory.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats inventory.Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM clients),
			(SELECT COUNT(*) FROM articles),
			(SELECT COUNT(*) FROM equipment),
			(SELECT COALESCE(SUM(quantity), 0) FROM products)
	`).Scan(&stats.ClientCount, &stats.ArticleCount, &stats.EquipmentCount, &stats.TotalProductUnits)
	if err != nil {
		return stats, mapErr("statistics", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT value FROM products`)
	if err != nil {
		return stats, mapErr("statistics", err)
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return stats, mapErr("statistics", err)
		}
		v, err := decimal.NewFromString(value)
		if err != nil {
			continue
		}
		total = total.Add(v)
	}
	if err := rows.Err(); err != nil {
		return stats, mapErr("statistics", err)
	}
	stats.TotalProductValue = total
	return stats, nil
}

// DistinctKeys returns the sorted unique client DDTs and article codes.
// Selection inputs are constrained to these so a product can never be
// entered against a nonexistent client or article.
func (s *Store) DistinctKeys(ctx context.Context) (inventory.DistinctKeys, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys inventory.DistinctKeys

	ddts, err := s.queryStrings(ctx, `SELECT DISTINCT ddt FROM clients ORDER BY ddt`)
	if err != nil {
		return keys, mapErr("distinct client keys", err)
	}
	codes, err := s.queryStrings(ctx, `SELECT DISTINCT code FROM articles ORDER BY code`)
	if err != nil {
		return keys, mapErr("distinct article keys", err)
	}

	keys.ClientDDTs = ddts
	keys.ArticleCodes = codes
	return keys, nil
}

func (s *Store) queryStrings(ctx context.Context, query string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func formatDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format("2006-01-02")
}

func parseDate(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}
