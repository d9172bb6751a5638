package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magazzino/inventory-engine/inventory"
	"github.com/magazzino/inventory-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestLedger(t *testing.T) (*inventory.Ledger, *sqlite.Store) {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return inventory.NewLedger(store), store
}

// seedCatalog inserts one client and one article so product rows have
// their foreign-key parents in place.
func seedCatalog(t *testing.T, store *sqlite.Store, unitPrice string) {
	ctx := context.Background()
	require.NoError(t, store.InsertClient(ctx, inventory.Client{DDT: "DDT-1", Name: "Rossi SRL"}))
	require.NoError(t, store.InsertArticle(ctx, inventory.Article{
		Code:        "ART-1",
		Description: "flangia",
		UnitPrice:   decimal.RequireFromString(unitPrice),
	}))
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// =============================================================================
// STOCK-IN
// =============================================================================

func TestStockIn_CreatesBatchAndInboundMovement(t *testing.T) {
	// GIVEN: A known client and an article priced at 7.335
	// WHEN: Stocking in 2 units
	// THEN: A product batch exists with the derived value, and a matching
	//       inbound movement is in the ledger

	ledger, store := newTestLedger(t)
	seedCatalog(t, store, "7.335")
	ctx := context.Background()

	id, err := ledger.StockIn(ctx, inventory.StockInRequest{
		ClientDDT:   "DDT-1",
		ArticleCode: "ART-1",
		Quantity:    2,
	})
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	product, err := store.GetProduct(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, product)
	assert.Equal(t, int64(2), product.Quantity)
	assert.True(t, product.Value.Equal(dec("14.67")), "value = %s", product.Value)

	movements, err := store.ListMovements(ctx)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, inventory.DirectionIn, movements[0].Direction)
	assert.Equal(t, int64(2), movements[0].Quantity)
	assert.True(t, movements[0].Value.Equal(dec("14.67")))
	assert.Equal(t, "DDT-1", movements[0].ClientDDT)
	assert.Equal(t, "ART-1", movements[0].ArticleCode)
}

func TestStockIn_UnknownArticle_NothingWritten(t *testing.T) {
	// GIVEN: The article does not exist
	// WHEN: Stocking in against it
	// THEN: Not-found is reported and neither a product nor a movement exists

	ledger, store := newTestLedger(t)
	seedCatalog(t, store, "1.00")
	ctx := context.Background()

	_, err := ledger.StockIn(ctx, inventory.StockInRequest{
		ClientDDT:   "DDT-1",
		ArticleCode: "MISSING",
		Quantity:    5,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, inventory.ErrNotFound)

	products, err := store.ListProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)

	movements, err := store.ListMovements(ctx)
	require.NoError(t, err)
	assert.Empty(t, movements)
}

func TestStockIn_NonPositiveQuantity_Rejected(t *testing.T) {
	ledger, store := newTestLedger(t)
	seedCatalog(t, store, "1.00")
	ctx := context.Background()

	for _, qty := range []int64{0, -3} {
		_, err := ledger.StockIn(ctx, inventory.StockInRequest{
			ClientDDT:   "DDT-1",
			ArticleCode: "ART-1",
			Quantity:    qty,
		})
		assert.ErrorIs(t, err, inventory.ErrInvalidQuantity, "quantity %d", qty)
	}
}

func TestStockIn_MissingIdentifiers_Rejected(t *testing.T) {
	ledger, store := newTestLedger(t)
	seedCatalog(t, store, "1.00")
	ctx := context.Background()

	_, err := ledger.StockIn(ctx, inventory.StockInRequest{ArticleCode: "ART-1", Quantity: 1})
	assert.ErrorIs(t, err, inventory.ErrInvalidInput)

	_, err = ledger.StockIn(ctx, inventory.StockInRequest{ClientDDT: "DDT-1", Quantity: 1})
	assert.ErrorIs(t, err, inventory.ErrInvalidInput)
}

// =============================================================================
// STOCK-OUT
// =============================================================================

func stockInBatch(t *testing.T, ledger *inventory.Ledger, qty int64) int64 {
	id, err := ledger.StockIn(context.Background(), inventory.StockInRequest{
		ClientDDT:   "DDT-1",
		ArticleCode: "ART-1",
		Quantity:    qty,
	})
	require.NoError(t, err)
	return id
}

func TestStockOut_Partial_ShrinksBatch(t *testing.T) {
	// GIVEN: A batch of 10 units at 2.50
	// WHEN: Withdrawing 3 units
	// THEN: 7 remain with a recomputed value, and the outbound movement
	//       carries the value of what left

	ledger, store := newTestLedger(t)
	seedCatalog(t, store, "2.50")
	ctx := context.Background()
	id := stockInBatch(t, ledger, 10)

	err := ledger.StockOut(ctx, inventory.StockOutRequest{
		ProductID:       id,
		ClientDDT:       "DDT-1",
		ArticleCode:     "ART-1",
		CurrentQuantity: 10,
		OutQuantity:     3,
	})
	require.NoError(t, err)

	product, err := store.GetProduct(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, product)
	assert.Equal(t, int64(7), product.Quantity)
	assert.True(t, product.Value.Equal(dec("17.5")), "value = %s", product.Value)

	movements, err := store.ListMovements(ctx)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	out := movements[1]
	assert.Equal(t, inventory.DirectionOut, out.Direction)
	assert.Equal(t, int64(3), out.Quantity)
	assert.True(t, out.Value.Equal(dec("7.5")))
}

func TestStockOut_Full_DeletesBatch(t *testing.T) {
	// GIVEN: A batch of 4 units
	// WHEN: Withdrawing all 4
	// THEN: The product row is gone (no zero-quantity rows) and the
	//       outbound movement is logged

	ledger, store := newTestLedger(t)
	seedCatalog(t, store, "1.10")
	ctx := context.Background()
	id := stockInBatch(t, ledger, 4)

	err := ledger.StockOut(ctx, inventory.StockOutRequest{
		ProductID:       id,
		ClientDDT:       "DDT-1",
		ArticleCode:     "ART-1",
		CurrentQuantity: 4,
		OutQuantity:     4,
	})
	require.NoError(t, err)

	product, err := store.GetProduct(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, product, "fully withdrawn batch must be deleted")

	movements, err := store.ListMovements(ctx)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	assert.Equal(t, inventory.DirectionOut, movements[1].Direction)
	assert.True(t, movements[1].Value.Equal(dec("4.4")))
}

func TestStockOut_OverWithdrawal_LeavesBatchUntouched(t *testing.T) {
	// GIVEN: A batch of 5 units
	// WHEN: Trying to withdraw 6
	// THEN: The request fails with a quantity error; the batch and the
	//       ledger are unchanged

	ledger, store := newTestLedger(t)
	seedCatalog(t, store, "3.00")
	ctx := context.Background()
	id := stockInBatch(t, ledger, 5)

	err := ledger.StockOut(ctx, inventory.StockOutRequest{
		ProductID:       id,
		ClientDDT:       "DDT-1",
		ArticleCode:     "ART-1",
		CurrentQuantity: 5,
		OutQuantity:     6,
	})
	require.Error(t, err)

	var qtyErr *inventory.QuantityError
	require.ErrorAs(t, err, &qtyErr)
	assert.Equal(t, int64(5), qtyErr.Available)
	assert.Equal(t, int64(6), qtyErr.Requested)

	product, err := store.GetProduct(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, product)
	assert.Equal(t, int64(5), product.Quantity)

	movements, err := store.ListMovements(ctx)
	require.NoError(t, err)
	assert.Len(t, movements, 1, "only the original inbound movement")
}

func TestStockOut_MissingBatch_NoMovementPersisted(t *testing.T) {
	// GIVEN: No batch with rowid 999
	// WHEN: Withdrawing from it
	// THEN: Not-found is reported and the transaction rolled back the
	//       movement append

	ledger, store := newTestLedger(t)
	seedCatalog(t, store, "1.00")
	ctx := context.Background()

	err := ledger.StockOut(ctx, inventory.StockOutRequest{
		ProductID:       999,
		ClientDDT:       "DDT-1",
		ArticleCode:     "ART-1",
		CurrentQuantity: 3,
		OutQuantity:     1,
	})
	assert.ErrorIs(t, err, inventory.ErrNotFound)

	movements, err := store.ListMovements(ctx)
	require.NoError(t, err)
	assert.Empty(t, movements)
}

func TestStockOut_IndependentRounding_MayDriftOneCent(t *testing.T) {
	// GIVEN: A 2-unit batch at 0.335 (total value 0.67)
	// WHEN: Withdrawing 1 unit
	// THEN: Withdrawn and remaining values are each rounded from the
	//       unrounded unit price: 0.34 out, 0.34 remaining. Their sum
	//       exceeds the prior total by one cent. That drift is accepted
	//       behavior, not a bug.

	ledger, store := newTestLedger(t)
	seedCatalog(t, store, "0.335")
	ctx := context.Background()
	id := stockInBatch(t, ledger, 2)

	product, err := store.GetProduct(ctx, id)
	require.NoError(t, err)
	require.True(t, product.Value.Equal(dec("0.67")))

	err = ledger.StockOut(ctx, inventory.StockOutRequest{
		ProductID:       id,
		ClientDDT:       "DDT-1",
		ArticleCode:     "ART-1",
		CurrentQuantity: 2,
		OutQuantity:     1,
	})
	require.NoError(t, err)

	product, err = store.GetProduct(ctx, id)
	require.NoError(t, err)
	assert.True(t, product.Value.Equal(dec("0.34")), "remaining value = %s", product.Value)

	movements, err := store.ListMovements(ctx)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	assert.True(t, movements[1].Value.Equal(dec("0.34")), "withdrawn value = %s", movements[1].Value)
}

// =============================================================================
// PRODUCT CRUD (value derivation, no ledger writes)
// =============================================================================

func TestInsertProduct_DerivesValue_NoMovement(t *testing.T) {
	// GIVEN: An article priced at 5.00
	// WHEN: Inserting a batch of 3 via plain CRUD with a bogus value
	// THEN: The stored value is derived server-side and no movement is logged

	ledger, store := newTestLedger(t)
	seedCatalog(t, store, "5.00")
	ctx := context.Background()

	id, err := ledger.InsertProduct(ctx, inventory.Product{
		ClientDDT:   "DDT-1",
		ArticleCode: "ART-1",
		Quantity:    3,
		Value:       dec("999.99"), // ignored
	})
	require.NoError(t, err)

	product, err := store.GetProduct(ctx, id)
	require.NoError(t, err)
	assert.True(t, product.Value.Equal(dec("15")), "value = %s", product.Value)

	movements, err := store.ListMovements(ctx)
	require.NoError(t, err)
	assert.Empty(t, movements)
}

func TestUpdateProduct_RederivesValue(t *testing.T) {
	ledger, store := newTestLedger(t)
	seedCatalog(t, store, "2.00")
	ctx := context.Background()
	id := stockInBatch(t, ledger, 2)

	changed, err := ledger.UpdateProduct(ctx, inventory.Product{
		ID:          id,
		ClientDDT:   "DDT-1",
		ArticleCode: "ART-1",
		Quantity:    9,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), changed)

	product, err := store.GetProduct(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(9), product.Quantity)
	assert.True(t, product.Value.Equal(dec("18")))
}

func TestUpdateProduct_MissingRow_NotFound(t *testing.T) {
	ledger, store := newTestLedger(t)
	seedCatalog(t, store, "2.00")

	_, err := ledger.UpdateProduct(context.Background(), inventory.Product{
		ID:          404,
		ClientDDT:   "DDT-1",
		ArticleCode: "ART-1",
		Quantity:    1,
	})
	assert.ErrorIs(t, err, inventory.ErrNotFound)
}

// =============================================================================
// ARTICLE PRICE CASCADE
// =============================================================================

func TestUpdateArticle_RepricesEveryDependentBatch(t *testing.T) {
	// GIVEN: Two batches of the repriced article (2 and 3 units) and one
	//        batch of an unrelated article
	// WHEN: Changing the article's unit price from 2.00 to 7.335
	// THEN: Both dependent batches carry freshly derived values, the
	//       unrelated batch is untouched, and the ledger gains nothing

	ledger, store := newTestLedger(t)
	seedCatalog(t, store, "2.00")
	ctx := context.Background()
	require.NoError(t, store.InsertArticle(ctx, inventory.Article{Code: "ART-2", UnitPrice: dec("1.00")}))

	idA := stockInBatch(t, ledger, 2)
	idB := stockInBatch(t, ledger, 3)
	idOther, err := ledger.InsertProduct(ctx, inventory.Product{
		ClientDDT: "DDT-1", ArticleCode: "ART-2", Quantity: 4,
	})
	require.NoError(t, err)

	movementsBefore, err := store.ListMovements(ctx)
	require.NoError(t, err)

	changed, err := ledger.UpdateArticle(ctx, "ART-1", "flangia v2", dec("7.335"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), changed, "article row + two product rows")

	a, err := store.GetProduct(ctx, idA)
	require.NoError(t, err)
	assert.True(t, a.Value.Equal(dec("14.67")), "2 x 7.335 = %s", a.Value)

	b, err := store.GetProduct(ctx, idB)
	require.NoError(t, err)
	assert.True(t, b.Value.Equal(dec("22.01")), "3 x 7.335 rounds half-up, got %s", b.Value)

	other, err := store.GetProduct(ctx, idOther)
	require.NoError(t, err)
	assert.True(t, other.Value.Equal(dec("4")), "unrelated batch must keep its value, got %s", other.Value)

	movementsAfter, err := store.ListMovements(ctx)
	require.NoError(t, err)
	assert.Len(t, movementsAfter, len(movementsBefore), "cascade must not write ledger entries")
}

func TestUpdateArticle_NegativePrice_Rejected(t *testing.T) {
	ledger, store := newTestLedger(t)
	seedCatalog(t, store, "2.00")

	_, err := ledger.UpdateArticle(context.Background(), "ART-1", "", dec("-1"))
	assert.ErrorIs(t, err, inventory.ErrInvalidPrice)
}

func TestUpdateArticle_MissingArticle_NotFound(t *testing.T) {
	ledger, store := newTestLedger(t)
	seedCatalog(t, store, "2.00")

	_, err := ledger.UpdateArticle(context.Background(), "MISSING", "", dec("1"))
	assert.ErrorIs(t, err, inventory.ErrNotFound)
}

func TestFullCycle_InOutThenReprice(t *testing.T) {
	// GIVEN: An article at 10.00
	// WHEN: Stocking in 3 units, withdrawing all 3, then repricing to 12.50
	// THEN: Both ledger entries carry value 30; the batch is gone; the
	//       cascade finds nothing to touch and reports the article row only

	ledger, store := newTestLedger(t)
	seedCatalog(t, store, "10.00")
	ctx := context.Background()

	id := stockInBatch(t, ledger, 3)
	err := ledger.StockOut(ctx, inventory.StockOutRequest{
		ProductID:       id,
		ClientDDT:       "DDT-1",
		ArticleCode:     "ART-1",
		CurrentQuantity: 3,
		OutQuantity:     3,
	})
	require.NoError(t, err)

	movements, err := store.ListMovements(ctx)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	assert.True(t, movements[0].Value.Equal(dec("30")))
	assert.True(t, movements[1].Value.Equal(dec("30")))

	changed, err := ledger.UpdateArticle(ctx, "ART-1", "", dec("12.50"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), changed, "no products left to reprice")
}

// =============================================================================
// RETENTION
// =============================================================================

func TestDeleteMovementsBeforeCurrentMonth(t *testing.T) {
	// GIVEN: One movement from a previous month and one from today
	// WHEN: Purging everything before the current month
	// THEN: Only the old movement is removed

	ledger, store := newTestLedger(t)
	ctx := context.Background()

	now := time.Now()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	lastMonth := firstOfMonth.Add(-time.Hour)
	_, err := store.AppendMovement(ctx, inventory.Movement{
		ClientDDT: "DDT-1", ArticleCode: "ART-1", Quantity: 1,
		Value: dec("1"), Direction: inventory.DirectionIn, RecordedAt: lastMonth,
	})
	require.NoError(t, err)
	_, err = store.AppendMovement(ctx, inventory.Movement{
		ClientDDT: "DDT-1", ArticleCode: "ART-1", Quantity: 2,
		Value: dec("2"), Direction: inventory.DirectionOut, RecordedAt: time.Now(),
	})
	require.NoError(t, err)

	removed, err := ledger.DeleteMovementsBeforeCurrentMonth(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	movements, err := store.ListMovements(ctx)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, int64(2), movements[0].Quantity)
}

func TestDeleteAllMovements(t *testing.T) {
	ledger, store := newTestLedger(t)
	seedCatalog(t, store, "1.00")
	ctx := context.Background()
	stockInBatch(t, ledger, 1)
	stockInBatch(t, ledger, 2)

	removed, err := ledger.DeleteAllMovements(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	movements, err := store.ListMovements(ctx)
	require.NoError(t, err)
	assert.Empty(t, movements)

	// Products remain; emptying the ledger does not touch the stock.
	products, err := store.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 2)
}
