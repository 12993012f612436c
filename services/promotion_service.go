package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/printvala/printvala-api/models"
)

// PromotionResult is the outcome of evaluating a promotion against an order.
// When the promotion does not apply, Reason explains why.
type PromotionResult struct {
	Applicable     bool            `json:"applicable"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Reason         string          `json:"reason,omitempty"`
}

func rejected(reason string) PromotionResult {
	return PromotionResult{Applicable: false, DiscountAmount: decimal.Zero, Reason: reason}
}

// EvaluatePromotion decides whether a promotion applies to an order and how
// much it discounts. It never mutates the promotion, so it is safe for dry-run
// price previews; the caller increments the usage count separately when an
// order is actually placed. Fails closed: any unmet condition yields
// applicable=false with a reason.
func EvaluatePromotion(promo *models.Promotion, subtotal decimal.Decimal, categories []string, productIDs []uint, now time.Time) PromotionResult {
	if promo == nil {
		return rejected("no promotion supplied")
	}
	if !promo.Active {
		return rejected("promotion is not active")
	}
	if now.Before(promo.StartDate) || !now.Before(promo.EndDate) {
		return rejected("promotion is not valid at this time")
	}
	if promo.MinOrderAmount != nil && subtotal.LessThan(*promo.MinOrderAmount) {
		return rejected("order subtotal is below the minimum of " + promo.MinOrderAmount.StringFixed(2))
	}
	if promo.UsageLimit != nil && promo.UsedCount >= *promo.UsageLimit {
		return rejected("promotion usage limit reached")
	}
	if len(promo.ApplicableCategories) > 0 && !intersectsStrings(promo.ApplicableCategories, categories) {
		return rejected("promotion does not apply to these product categories")
	}
	if len(promo.ApplicableProducts) > 0 && !intersectsIDs(promo.ApplicableProducts, productIDs) {
		return rejected("promotion does not apply to these products")
	}

	var discount decimal.Decimal
	if promo.DiscountType == models.DiscountTypeFixed {
		discount = promo.Discount
	} else {
		discount = subtotal.Mul(promo.Discount).Div(oneHundred)
		if promo.MaxDiscountAmount != nil && discount.GreaterThan(*promo.MaxDiscountAmount) {
			discount = *promo.MaxDiscountAmount
		}
	}

	// A discount never exceeds what is being discounted.
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}

	return PromotionResult{Applicable: true, DiscountAmount: discount.Round(2)}
}

// IncrementPromotionUsage bumps a promotion's used count with an atomic
// conditional update, so concurrent redemptions of the same code never lose an
// increment or exceed the usage limit.
func IncrementPromotionUsage(db *gorm.DB, promotionID uint) error {
	res := db.Model(&models.Promotion{}).
		Where("id = ? AND (usage_limit IS NULL OR used_count < usage_limit)", promotionID).
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &ValidationError{Field: "promotion", Message: "usage limit reached"}
	}
	return nil
}

func intersectsStrings(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

func intersectsIDs(a, b []uint) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
