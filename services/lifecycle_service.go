package services

import (
	"time"

	"github.com/printvala/printvala-api/models"
)

// orderStatusChain is the forward-only order lifecycle. Cancellation is the
// one legal jump, allowed from any non-terminal status.
var orderStatusChain = []string{
	models.OrderStatusPlaced,
	models.OrderStatusPreflight,
	models.OrderStatusProofReady,
	models.OrderStatusApproved,
	models.OrderStatusInProduction,
	models.OrderStatusReadyForPickup,
	models.OrderStatusShipped,
	models.OrderStatusCompleted,
}

var quoteStatusChain = []string{
	models.QuoteStatusNew,
	models.QuoteStatusReviewed,
	models.QuoteStatusReplied,
	models.QuoteStatusCompleted,
}

// TransitionOrder moves an order to the target status, appending exactly one
// audit entry attributed to the acting user. Requesting the current status is
// an idempotent no-op (no audit entry), which keeps duplicate admin clicks
// harmless. Completed and cancelled orders reject every further transition.
func TransitionOrder(order *models.Order, target, actor, notes string, now time.Time) error {
	if order.Status == target {
		return nil
	}
	if order.Status == models.OrderStatusCancelled || order.Status == models.OrderStatusCompleted {
		return &InvalidTransitionError{Current: order.Status, Target: target}
	}
	if target != models.OrderStatusCancelled && !isNextInChain(orderStatusChain, order.Status, target) {
		return &InvalidTransitionError{Current: order.Status, Target: target}
	}

	order.Status = target
	order.AuditTrail = order.AuditTrail.Append("status_changed_to_"+target, actor, now, notes)
	return nil
}

// TransitionQuote moves a quote to the target status with the same audit and
// idempotence rules as TransitionOrder. Completing a quote is terminal and,
// like order cancellation, is allowed from any non-terminal status so that
// conversion can close a quote regardless of how far review progressed.
func TransitionQuote(quote *models.Quote, target, actor, notes string, now time.Time) error {
	if quote.Status == target {
		return nil
	}
	if quote.Status == models.QuoteStatusCompleted {
		return &InvalidTransitionError{Current: quote.Status, Target: target}
	}
	if target != models.QuoteStatusCompleted && !isNextInChain(quoteStatusChain, quote.Status, target) {
		return &InvalidTransitionError{Current: quote.Status, Target: target}
	}

	quote.Status = target
	quote.AuditTrail = quote.AuditTrail.Append("status_changed_to_"+target, actor, now, notes)
	return nil
}

// isNextInChain reports whether target immediately follows current in the
// chain. Skipping states is forbidden.
func isNextInChain(chain []string, current, target string) bool {
	for i, status := range chain {
		if status == current {
			return i+1 < len(chain) && chain[i+1] == target
		}
	}
	return false
}
