package pricing

import "github.com/shopspring/decimal"

// TaxRate is the flat sales tax applied to the items subtotal.
var TaxRate = decimal.NewFromFloat(0.08)

// FlatShippingFee is charged once per order at checkout. The cart page
// quotes totals without it.
var FlatShippingFee = decimal.NewFromFloat(9.99)

// Summary aggregates the computed pricing components. All values are
// rounded to cents.
type Summary struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	Tax        decimal.Decimal `json:"tax"`
	Shipping   decimal.Decimal `json:"shipping"`
	GrandTotal decimal.Decimal `json:"grandTotal"`
}

// Quote computes order totals for the given items subtotal. Shipping is
// included only when withShipping is set, so the same quote serves both the
// cart page (tax preview) and checkout (grand total).
func Quote(subtotal decimal.Decimal, withShipping bool) Summary {
	if subtotal.IsNegative() {
		subtotal = decimal.Zero
	}
	subtotal = subtotal.Round(2)
	tax := subtotal.Mul(TaxRate).Round(2)
	shipping := decimal.Zero
	if withShipping {
		shipping = FlatShippingFee
	}
	return Summary{
		Subtotal:   subtotal,
		Tax:        tax,
		Shipping:   shipping,
		GrandTotal: subtotal.Add(tax).Add(shipping),
	}
}
