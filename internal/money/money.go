// Package money implements exact decimal-string arithmetic for line item and
// document totals. Amounts cross package boundaries as decimal strings fixed
// to 2 places; float64 money never enters or leaves this package, so no binary
// rounding error can accumulate across repeated aggregation.
package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// LineTotals holds the derived amounts for a single line item.
type LineTotals struct {
	Subtotal  string `json:"subtotal"`
	TaxAmount string `json:"tax_amount"`
	Total     string `json:"total"`
}

// Totals holds the aggregate amounts for a whole document.
type Totals struct {
	Subtotal  string `json:"subtotal"`
	TaxAmount string `json:"tax_amount"`
	Total     string `json:"total"`
}

// ItemAmounts is the per-item input to DocumentTotals: the already-derived
// subtotal and tax amount of one line, as decimal strings.
type ItemAmounts struct {
	Subtotal  string
	TaxAmount string
}

// ParseAmount parses a decimal string leniently: empty or malformed input
// resolves to zero and thousands separators are stripped. The lenient policy
// is centralized here; ParseAmountStrict keeps the error for callers that need
// to distinguish an absent value from an actual zero.
func ParseAmount(s string) decimal.Decimal {
	d, err := ParseAmountStrict(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParseAmountStrict parses a decimal string, stripping thousands separators,
// and returns the parse error instead of defaulting.
func ParseAmountStrict(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, errors.New("empty amount")
	}
	s = strings.ReplaceAll(s, ",", "")
	return decimal.NewFromString(s)
}

// Round2 rounds to 2 decimal places, half away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// LineItemTotals derives the amounts for one line item from its quantity,
// unit price and tax rate (a percentage, e.g. "8" for 8%):
//
//	subtotal  = quantity × unitPrice
//	taxAmount = subtotal × taxRate/100
//	total     = subtotal + taxAmount
//
// Each value is rounded to 2 places and returned as a decimal string.
func LineItemTotals(quantity, unitPrice, taxRate string) LineTotals {
	qty := ParseAmount(quantity)
	price := ParseAmount(unitPrice)
	rate := ParseAmount(taxRate)

	subtotal := Round2(qty.Mul(price))
	taxAmount := Round2(subtotal.Mul(rate).Div(hundred))
	total := Round2(subtotal.Add(taxAmount))

	return LineTotals{
		Subtotal:  subtotal.StringFixed(2),
		TaxAmount: taxAmount.StringFixed(2),
		Total:     total.StringFixed(2),
	}
}

// DocumentTotals aggregates item amounts and applies the document discount:
//
//	subtotal  = round2(Σ item.subtotal)
//	taxAmount = round2(Σ item.taxAmount)
//	total     = round2(subtotal + taxAmount − discount)
//
// A discount larger than the sum produces a negative total; that is a product
// decision made upstream, not clamped here.
func DocumentTotals(items []ItemAmounts, discount string) Totals {
	subtotal := decimal.Zero
	taxAmount := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(ParseAmount(it.Subtotal))
		taxAmount = taxAmount.Add(ParseAmount(it.TaxAmount))
	}

	subtotal = Round2(subtotal)
	taxAmount = Round2(taxAmount)
	total := Round2(subtotal.Add(taxAmount).Sub(ParseAmount(discount)))

	return Totals{
		Subtotal:  subtotal.StringFixed(2),
		TaxAmount: taxAmount.StringFixed(2),
		Total:     total.StringFixed(2),
	}
}
