package services

import (
	"github.com/shopspring/decimal"

	"github.com/printvala/printvala-api/models"
)

// Selection is one customer choice for a named product option. Value is used
// by select, boolean and numeric options; Width and Height (in feet) are used
// by dim2 options.
type Selection struct {
	Value  string
	Width  decimal.Decimal
	Height decimal.Decimal
}

// LinePrice is the result of pricing one line item.
type LinePrice struct {
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
}

var oneHundred = decimal.NewFromInt(100)

// ComputeLineItemPrice prices one product configuration. It is a pure
// function: the product snapshot is supplied by the caller and never mutated.
//
// Base price resolution depends on the product's pricing method: flat uses
// basePrice per unit, tier selects the tier with the largest minQty <= quantity
// (falling back to basePrice below the lowest tier), and area charges
// max(pricePerSqFt * area, minCharge) where the area comes from a dim2
// selection. Option price deltas are then applied in the order the options
// appear on the product, so percentage deltas compound reproducibly. The
// result is rounded to 2 decimal places and never negative.
func ComputeLineItemPrice(product *models.Product, quantity int, selections map[string]Selection) (decimal.Decimal, error) {
	price, err := PriceLineItem(product, quantity, selections)
	if err != nil {
		return decimal.Zero, err
	}
	return price.TotalPrice, nil
}

// PriceLineItem computes the same total as ComputeLineItemPrice and also
// reports the resolved unit price for storage on the line item snapshot.
func PriceLineItem(product *models.Product, quantity int, selections map[string]Selection) (*LinePrice, error) {
	if product == nil {
		return nil, &ValidationError{Field: "product", Message: "product is required"}
	}
	if !product.Active {
		return nil, &ValidationError{Field: "product", Message: "product is not active"}
	}
	if quantity <= 0 {
		return nil, &ValidationError{Field: "quantity", Message: "quantity must be a positive integer"}
	}

	if err := validateSelections(product, selections); err != nil {
		return nil, err
	}

	qty := decimal.NewFromInt(int64(quantity))

	var unitPrice, total decimal.Decimal
	switch product.PricingMethod {
	case models.PricingMethodArea:
		total = areaTotal(product, quantity, selections)
	case models.PricingMethodTier:
		unitPrice = product.BasePrice
		if tier := product.TierFor(quantity); tier != nil {
			unitPrice = tier.UnitPrice
		}
		total = unitPrice.Mul(qty)
	default:
		unitPrice = product.BasePrice
		total = unitPrice.Mul(qty)
	}

	// Deltas apply in product option order, not caller order, so percentage
	// deltas compound deterministically.
	for i := range product.Options {
		opt := &product.Options[i]
		sel, ok := selections[opt.Name]
		if !ok {
			continue
		}
		value := opt.ValueFor(sel.Value)
		if value == nil {
			continue
		}
		if value.PriceDeltaType == models.PriceDeltaPercent {
			total = total.Add(total.Mul(value.PriceDelta).Div(oneHundred))
		} else {
			// Flat deltas apply once per line item, not per unit.
			total = total.Add(value.PriceDelta)
		}
	}

	total = total.Round(2)
	if total.IsNegative() {
		total = decimal.Zero
	}

	if product.PricingMethod == models.PricingMethodArea {
		unitPrice = total.Div(qty).Round(2)
	}

	return &LinePrice{UnitPrice: unitPrice, TotalPrice: total}, nil
}

// areaTotal charges by physical area. The area comes from the first dim2
// selection (width * height * quantity, in square feet); without one the
// total is exactly the minimum charge.
func areaTotal(product *models.Product, quantity int, selections map[string]Selection) decimal.Decimal {
	area := decimal.Zero
	for i := range product.Options {
		opt := &product.Options[i]
		if opt.Type != models.OptionTypeDim2 {
			continue
		}
		sel, ok := selections[opt.Name]
		if !ok {
			continue
		}
		area = sel.Width.Mul(sel.Height).Mul(decimal.NewFromInt(int64(quantity)))
		break
	}

	if area.IsZero() {
		return product.AreaPricing.MinCharge
	}

	total := product.AreaPricing.PricePerSqFt.Mul(area)
	if total.LessThan(product.AreaPricing.MinCharge) {
		return product.AreaPricing.MinCharge
	}
	return total
}

// validateSelections checks every selection against its option's type rule and
// that every required option has a legal selection.
func validateSelections(product *models.Product, selections map[string]Selection) error {
	for i := range product.Options {
		opt := &product.Options[i]
		sel, ok := selections[opt.Name]
		if !ok {
			if opt.Required {
				return &ValidationError{Field: opt.Name, Message: "missing required option"}
			}
			continue
		}

		switch opt.Type {
		case models.OptionTypeSelect, models.OptionTypeBoolean:
			if opt.ValueFor(sel.Value) == nil {
				return &ValidationError{Field: opt.Name, Message: "unknown value " + sel.Value}
			}
		case models.OptionTypeNumeric:
			if sel.Value == "" {
				return &ValidationError{Field: opt.Name, Message: "numeric option requires a value"}
			}
			if _, err := decimal.NewFromString(sel.Value); err != nil {
				return &ValidationError{Field: opt.Name, Message: "value " + sel.Value + " is not numeric"}
			}
		case models.OptionTypeDim2:
			if !sel.Width.IsPositive() || !sel.Height.IsPositive() {
				return &ValidationError{Field: opt.Name, Message: "dimensions must be positive"}
			}
		}
	}

	for name := range selections {
		if product.OptionByName(name) == nil {
			return &ValidationError{Field: name, Message: "unknown option"}
		}
	}

	return nil
}

// SelectionsFromSnapshot rebuilds the pricing engine input from a stored line
// item snapshot, used when conversion re-prices a quote.
func SelectionsFromSnapshot(snapshot []models.SelectedOption) map[string]Selection {
	selections := make(map[string]Selection, len(snapshot))
	for _, s := range snapshot {
		selections[s.Name] = Selection{Value: s.Value, Width: s.Width, Height: s.Height}
	}
	return selections
}
