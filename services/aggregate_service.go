package services

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/printvala/printvala-api/models"
)

var two = decimal.NewFromInt(2)

// AggregateInput carries everything BuildPricing needs besides the line items.
// The GST rate and the intra/inter-state split rule come from configuration;
// this component only applies them.
type AggregateInput struct {
	Promotion      *models.Promotion
	Categories     []string
	ProductIDs     []uint
	DeliveryMethod string
	ShippingRate   decimal.Decimal // flat courier rate; ignored for pickup
	GSTRate        decimal.Decimal // percent
	IntraState     bool
	Currency       string
	Now            time.Time
}

// BuildPricing composes the persisted pricing block of an order: subtotal of
// all line items, promotion discount, shipping by delivery method, GST on the
// discounted subtotal, and the grand total. The promotion result is returned
// alongside so callers can report why a code was rejected without failing the
// order.
func BuildPricing(items []models.LineItem, in AggregateInput) (models.PricingBlock, models.GSTBreakdown, PromotionResult, error) {
	var block models.PricingBlock
	var gst models.GSTBreakdown

	subtotal := decimal.Zero
	for _, item := range items {
		if item.TotalPrice.IsNegative() {
			return block, gst, PromotionResult{}, &ValidationError{
				Field:   "items",
				Message: "line item " + item.ProductName + " has a negative price",
			}
		}
		subtotal = subtotal.Add(item.TotalPrice)
	}
	if subtotal.IsNegative() {
		return block, gst, PromotionResult{}, &ValidationError{Field: "subtotal", Message: "subtotal must not be negative"}
	}

	promo := EvaluatePromotion(in.Promotion, subtotal, in.Categories, in.ProductIDs, in.Now)
	discount := decimal.Zero
	if promo.Applicable {
		discount = promo.DiscountAmount
	}

	shipping := decimal.Zero
	if in.DeliveryMethod == models.DeliveryMethodCourier {
		shipping = in.ShippingRate
	}

	taxable := subtotal.Sub(discount)
	tax := taxable.Mul(in.GSTRate).Div(oneHundred).Round(2)
	if in.IntraState {
		gst.CGST = tax.Div(two).Round(2)
		gst.SGST = tax.Sub(gst.CGST)
	} else {
		gst.IGST = tax
	}
	// The persisted tax amount is the sum of the components, so rounding the
	// split can never make the total drift from what is itemized.
	tax = gst.CGST.Add(gst.SGST).Add(gst.IGST)

	block = models.PricingBlock{
		Subtotal:       subtotal.Round(2),
		DiscountAmount: discount,
		ShippingAmount: shipping.Round(2),
		TaxAmount:      tax,
		GrandTotal:     subtotal.Sub(discount).Add(shipping).Add(tax).Round(2),
		Currency:       in.Currency,
	}
	return block, gst, promo, nil
}
