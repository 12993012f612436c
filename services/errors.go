package services

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ValidationError reports malformed or incomplete input, such as a missing
// required option or a negative subtotal. The message names the offending
// field so it can be surfaced to the user verbatim.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}

// InvalidTransitionError reports an illegal lifecycle move. It carries the
// current and attempted target status so the UI can explain why a button is
// disabled.
type InvalidTransitionError struct {
	Current string
	Target  string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %q to %q", e.Current, e.Target)
}

// AlreadyConvertedError reports a duplicate quote conversion attempt.
type AlreadyConvertedError struct {
	QuoteNumber string
	OrderID     uint
}

func (e *AlreadyConvertedError) Error() string {
	return fmt.Sprintf("quote %s has already been converted to order %d", e.QuoteNumber, e.OrderID)
}

// DriftedItem describes one quote line item whose recomputed price no longer
// matches the quoted price.
type DriftedItem struct {
	Index     int
	ProductID uint
	Quoted    decimal.Decimal
	Current   decimal.Decimal
}

// PriceDriftError blocks a quote conversion when catalog pricing changed since
// the quote was created. The caller may retry with an explicit override to
// proceed with the quoted prices.
type PriceDriftError struct {
	Items []DriftedItem
}

func (e *PriceDriftError) Error() string {
	parts := make([]string, len(e.Items))
	for i, item := range e.Items {
		parts[i] = fmt.Sprintf("item %d (product %d): quoted %s, current %s",
			item.Index, item.ProductID, item.Quoted.StringFixed(2), item.Current.StringFixed(2))
	}
	return "quoted prices no longer match catalog pricing: " + strings.Join(parts, "; ")
}
