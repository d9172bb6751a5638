/*
pricing.go - Unit-price resolution and value derivation

PURPOSE:
  Product.Value is a cached derivation of the article unit price and the
  batch quantity. Every place that writes a value goes through
  ComputeValue so the rounding policy is applied exactly once, the same
  way, everywhere. Repeated price/quantity edits then converge on cent
  boundaries instead of accumulating binary floating-point drift.

ROUNDING POLICY:
  Round half-up on the cent boundary (decimal.Round with 2 places;
  half-away-from-zero equals half-up for this non-negative domain).

SEE ALSO:
  - ledger.go: the only writers of Product.Value
*/
package inventory

import (
	"context"

	"github.com/shopspring/decimal"
)

// ComputeValue derives the monetary value of a quantity at a unit price,
// rounded to 2 decimal places.
func ComputeValue(unitPrice decimal.Decimal, quantity int64) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(quantity)).Round(2)
}

// ValidatePrice rejects negative unit prices.
func ValidatePrice(articleCode string, price decimal.Decimal) error {
	if price.IsNegative() {
		return &PriceError{ArticleCode: articleCode, Raw: price.String()}
	}
	return nil
}

// resolvePrice looks up an article and returns its unit price.
// Pure read: no writes happen if resolution fails.
func resolvePrice(ctx context.Context, store Store, articleCode string) (decimal.Decimal, error) {
	article, err := store.GetArticle(ctx, articleCode)
	if err != nil {
		return decimal.Zero, err
	}
	if article == nil {
		return decimal.Zero, &NotFoundError{Entity: EntityArticles, Key: articleCode}
	}
	if err := ValidatePrice(articleCode, article.UnitPrice); err != nil {
		return decimal.Zero, err
	}
	return article.UnitPrice, nil
}
