package services

import (
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/printvala/printvala-api/models"
)

// ConvertOptions tunes a quote-to-order conversion.
type ConvertOptions struct {
	OrderNumberPrefix string
	Tolerance         decimal.Decimal // max absolute per-line price drift allowed
	Override          bool            // proceed with quoted prices despite drift
	Delivery          models.Delivery // defaults to pickup
	PaymentMethod     string          // defaults to cod
	GSTRate           decimal.Decimal // percent
	IntraState        bool
	Currency          string
}

// ConvertQuote turns a quote into an order exactly once. It re-prices every
// line item against the current catalog and refuses with PriceDriftError when
// any quoted price moved beyond the tolerance, unless the admin passes the
// override flag to keep the quoted prices. The order is created and the quote
// flagged converted inside one transaction, guarded by a conditional update on
// converted_to_order_id, so concurrent conversion attempts yield exactly one
// order. Files are copied by storage key; nothing is re-uploaded.
func ConvertQuote(db *gorm.DB, quote *models.Quote, actor string, opts ConvertOptions) (*models.Order, error) {
	if quote.IsConverted() {
		return nil, &AlreadyConvertedError{QuoteNumber: quote.QuoteNumber, OrderID: *quote.ConvertedToOrderID}
	}
	if len(quote.Items) == 0 {
		return nil, &ValidationError{Field: "items", Message: "quote has no line items"}
	}

	if !opts.Override {
		if err := detectPriceDrift(db, quote, opts.Tolerance); err != nil {
			return nil, err
		}
	}

	now := time.Now()

	if opts.OrderNumberPrefix == "" {
		opts.OrderNumberPrefix = "PV"
	}
	orderNumber, err := NextNumber(db, opts.OrderNumberPrefix, now)
	if err != nil {
		return nil, fmt.Errorf("failed to generate order number: %w", err)
	}

	delivery := opts.Delivery
	if delivery.Method == "" {
		delivery.Method = models.DeliveryMethodPickup
	}
	paymentMethod := opts.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = models.PaymentMethodCOD
	}
	currency := opts.Currency
	if currency == "" {
		currency = "INR"
	}

	// Items keep their quoted prices; conversion never silently reprices.
	items := make(models.LineItems, len(quote.Items))
	copy(items, quote.Items)
	if len(quote.Files) > 0 {
		files := make(models.FileRefs, len(quote.Files))
		copy(files, quote.Files)
		items[0].Files = files
	}

	pricing, gst, _, err := BuildPricing(items, AggregateInput{
		DeliveryMethod: delivery.Method,
		GSTRate:        opts.GSTRate,
		IntraState:     opts.IntraState,
		Currency:       currency,
		Now:            now,
	})
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		OrderNumber:   orderNumber,
		CustomerName:  quote.CustomerName,
		CustomerEmail: quote.CustomerEmail,
		CustomerPhone: quote.CustomerPhone,
		Items:         items,
		Pricing:       pricing,
		GST:           gst,
		Delivery:      delivery,
		Payment:       models.Payment{Method: paymentMethod, Status: models.PaymentStatusPending},
		Status:        models.OrderStatusPlaced,
		QuoteID:       &quote.ID,
	}
	order.AuditTrail = order.AuditTrail.Append("converted_from_quote", actor, now, "quote "+quote.QuoteNumber)

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		// Compare-and-set: only the first conversion sees the null value. The
		// loser's order create above rolls back with the transaction.
		res := tx.Model(&models.Quote{}).
			Where("id = ? AND converted_to_order_id IS NULL", quote.ID).
			Update("converted_to_order_id", order.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var current models.Quote
			if err := tx.First(&current, quote.ID).Error; err == nil && current.ConvertedToOrderID != nil {
				return &AlreadyConvertedError{QuoteNumber: quote.QuoteNumber, OrderID: *current.ConvertedToOrderID}
			}
			return &AlreadyConvertedError{QuoteNumber: quote.QuoteNumber}
		}
		quote.ConvertedToOrderID = &order.ID

		if err := TransitionQuote(quote, models.QuoteStatusCompleted, actor, "converted to order "+orderNumber, now); err != nil {
			return err
		}
		quote.AuditTrail = quote.AuditTrail.Append("converted_to_order", actor, now, orderNumber)

		if err := tx.Model(&models.Quote{}).Where("id = ?", quote.ID).Updates(map[string]interface{}{
			"status":      quote.Status,
			"audit_trail": quote.AuditTrail,
		}).Error; err != nil {
			return fmt.Errorf("failed to update quote: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Notification is best effort; the conversion already committed.
	if notifier := GetNotificationService(); notifier != nil {
		intent := NewNotificationIntent(models.NotificationOrderCreated, quote.CustomerEmail,
			orderNumber, quote.QuoteNumber,
			fmt.Sprintf("Your quote %s is now order %s.", quote.QuoteNumber, orderNumber))
		if err := notifier.Notify(intent); err != nil {
			log.Printf("order %s created but notification intent failed: %v", orderNumber, err)
		}
	}

	return order, nil
}

// detectPriceDrift re-runs the pricing engine for every quote line item and
// collects those whose quoted total differs from the recomputed total by more
// than the tolerance. A product that vanished or no longer prices cleanly
// counts as drifted with a current price of zero.
func detectPriceDrift(db *gorm.DB, quote *models.Quote, tolerance decimal.Decimal) error {
	var drifted []DriftedItem
	for i, item := range quote.Items {
		var product models.Product
		current := decimal.Zero
		if err := db.First(&product, item.ProductID).Error; err == nil {
			if total, err := ComputeLineItemPrice(&product, item.Quantity, SelectionsFromSnapshot(item.SelectedOptions)); err == nil {
				current = total
			}
		}
		if current.Sub(item.TotalPrice).Abs().GreaterThan(tolerance) {
			drifted = append(drifted, DriftedItem{
				Index:     i,
				ProductID: item.ProductID,
				Quoted:    item.TotalPrice,
				Current:   current,
			})
		}
	}
	if len(drifted) > 0 {
		return &PriceDriftError{Items: drifted}
	}
	return nil
}
