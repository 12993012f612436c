package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Discount types
const (
	DiscountTypePercentage = "percentage"
	DiscountTypeFixed      = "fixed"
)

// StringList is stored as a JSON column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return nil, nil
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

// IDList is stored as a JSON column.
type IDList []uint

func (l IDList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return nil, nil
	}
	return json.Marshal(l)
}

func (l *IDList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

// Promotion represents a discount rule redeemable against an order.
// Empty ApplicableCategories/ApplicableProducts means the promotion applies to
// all categories/products. UsedCount only ever increases, via an atomic
// conditional update at the persistence layer.
type Promotion struct {
	ID                   uint             `gorm:"primaryKey" json:"id"`
	Code                 string           `gorm:"uniqueIndex;not null" json:"code"`
	Description          string           `json:"description"`
	Discount             decimal.Decimal  `gorm:"type:decimal(16,2);not null" json:"discount"`
	DiscountType         string           `gorm:"not null" json:"discount_type"` // percentage, fixed
	MinOrderAmount       *decimal.Decimal `gorm:"type:decimal(16,2)" json:"min_order_amount,omitempty"`
	MaxDiscountAmount    *decimal.Decimal `gorm:"type:decimal(16,2)" json:"max_discount_amount,omitempty"`
	StartDate            time.Time        `gorm:"not null" json:"start_date"`
	EndDate              time.Time        `gorm:"not null" json:"end_date"`
	ApplicableCategories StringList       `gorm:"type:jsonb" json:"applicable_categories,omitempty"`
	ApplicableProducts   IDList           `gorm:"type:jsonb" json:"applicable_products,omitempty"`
	UsageLimit           *int             `json:"usage_limit,omitempty"`
	UsedCount            int              `gorm:"not null;default:0" json:"used_count"`
	Active               bool             `gorm:"not null;default:true" json:"active"`
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
	DeletedAt            gorm.DeletedAt   `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Promotion model
func (Promotion) TableName() string {
	return "promotions"
}

// Validate checks the promotion invariants before create or update.
func (p *Promotion) Validate() error {
	if p.Discount.IsNegative() {
		return fmt.Errorf("discount must not be negative")
	}
	switch p.DiscountType {
	case DiscountTypePercentage:
		if p.Discount.GreaterThan(decimal.NewFromInt(100)) {
			return fmt.Errorf("percentage discount must not exceed 100")
		}
	case DiscountTypeFixed:
	default:
		return fmt.Errorf("unknown discount type %q", p.DiscountType)
	}
	if p.MinOrderAmount != nil && p.MinOrderAmount.IsNegative() {
		return fmt.Errorf("minimum order amount must not be negative")
	}
	if p.MaxDiscountAmount != nil && p.MaxDiscountAmount.IsNegative() {
		return fmt.Errorf("maximum discount amount must not be negative")
	}
	if !p.EndDate.After(p.StartDate) {
		return fmt.Errorf("end date must be after start date")
	}
	if p.UsageLimit != nil && p.UsedCount > *p.UsageLimit {
		return fmt.Errorf("used count exceeds usage limit")
	}
	return nil
}
