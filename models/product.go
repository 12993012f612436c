package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product categories
const (
	CategoryDocuments      = "documents"
	CategoryBusinessCards  = "business-cards"
	CategoryPostersBanners = "posters-banners"
	CategoryStickersLabels = "stickers-labels"
	CategoryStationery     = "stationery"
	CategoryCustom         = "custom"
)

// Pricing methods
const (
	PricingMethodFlat = "flat"
	PricingMethodTier = "tier"
	PricingMethodArea = "area"
)

// Option types
const (
	OptionTypeSelect  = "select"
	OptionTypeBoolean = "boolean"
	OptionTypeNumeric = "numeric"
	OptionTypeDim2    = "dim2"
)

// Price delta types
const (
	PriceDeltaFlat    = "flat"
	PriceDeltaPercent = "percent"
)

// PricingTier is a quantity breakpoint in a product's tier pricing table.
type PricingTier struct {
	MinQty    int             `json:"min_qty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// PricingTiers is stored as a JSON column, sorted ascending by MinQty.
type PricingTiers []PricingTier

func (t PricingTiers) Value() (driver.Value, error) {
	if len(t) == 0 {
		return nil, nil
	}
	return json.Marshal(t)
}

func (t *PricingTiers) Scan(value interface{}) error {
	return scanJSON(value, t)
}

// AreaPricing prices a product by physical area instead of per unit.
type AreaPricing struct {
	PricePerSqFt decimal.Decimal `json:"price_per_sq_ft"`
	MinCharge    decimal.Decimal `json:"min_charge"`
}

func (a AreaPricing) Value() (driver.Value, error) {
	return json.Marshal(a)
}

func (a *AreaPricing) Scan(value interface{}) error {
	return scanJSON(value, a)
}

// OptionValue is one selectable value of a product option, carrying its price delta.
type OptionValue struct {
	Value          string          `json:"value"`
	Label          string          `json:"label"`
	PriceDelta     decimal.Decimal `json:"price_delta"`
	PriceDeltaType string          `json:"price_delta_type"` // flat or percent
}

// Option is a configurable attribute of a product. The Type determines how a
// customer selection is validated: select and boolean pick one of Values,
// numeric supplies a number, dim2 supplies width and height in feet.
type Option struct {
	Name     string        `json:"name"`
	Type     string        `json:"type"`
	Required bool          `json:"required"`
	Values   []OptionValue `json:"values,omitempty"`
}

// ValueFor returns the option value entry matching the given value key.
func (o *Option) ValueFor(value string) *OptionValue {
	for i := range o.Values {
		if o.Values[i].Value == value {
			return &o.Values[i]
		}
	}
	return nil
}

// Options is stored as a JSON column.
type Options []Option

func (o Options) Value() (driver.Value, error) {
	if len(o) == 0 {
		return nil, nil
	}
	return json.Marshal(o)
}

func (o *Options) Scan(value interface{}) error {
	return scanJSON(value, o)
}

// Product represents a catalog entry
type Product struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Name          string          `gorm:"not null" json:"name"`
	Slug          string          `gorm:"uniqueIndex;not null" json:"slug"`
	Category      string          `gorm:"not null;index" json:"category"`
	Description   string          `json:"description"`
	BasePrice     decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"base_price"`
	PricingMethod string          `gorm:"not null;default:'flat'" json:"pricing_method"` // flat, tier, area
	PricingTiers  PricingTiers    `gorm:"type:jsonb" json:"pricing_tiers,omitempty"`
	AreaPricing   AreaPricing     `gorm:"type:jsonb" json:"area_pricing"`
	Options       Options         `gorm:"type:jsonb" json:"options,omitempty"`
	Active        bool            `gorm:"not null;default:true" json:"active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// TierFor returns the pricing tier with the largest MinQty that is <= quantity,
// or nil when the quantity falls below every tier.
func (p *Product) TierFor(quantity int) *PricingTier {
	var match *PricingTier
	for i := range p.PricingTiers {
		if p.PricingTiers[i].MinQty <= quantity {
			if match == nil || p.PricingTiers[i].MinQty > match.MinQty {
				match = &p.PricingTiers[i]
			}
		}
	}
	return match
}

// OptionByName finds a product option by name.
func (p *Product) OptionByName(name string) *Option {
	for i := range p.Options {
		if p.Options[i].Name == name {
			return &p.Options[i]
		}
	}
	return nil
}

// Validate checks the catalog invariants before a product is created or updated.
func (p *Product) Validate() error {
	switch p.Category {
	case CategoryDocuments, CategoryBusinessCards, CategoryPostersBanners,
		CategoryStickersLabels, CategoryStationery, CategoryCustom:
	default:
		return fmt.Errorf("unknown category %q", p.Category)
	}

	if p.BasePrice.IsNegative() {
		return fmt.Errorf("base price must not be negative")
	}

	switch p.PricingMethod {
	case PricingMethodFlat:
	case PricingMethodTier:
		if len(p.PricingTiers) == 0 {
			return fmt.Errorf("tier pricing requires at least one tier")
		}
		seen := make(map[int]bool, len(p.PricingTiers))
		for _, tier := range p.PricingTiers {
			if tier.MinQty < 1 {
				return fmt.Errorf("tier min quantity must be at least 1")
			}
			if tier.UnitPrice.IsNegative() {
				return fmt.Errorf("tier unit price must not be negative")
			}
			if seen[tier.MinQty] {
				return fmt.Errorf("duplicate tier min quantity %d", tier.MinQty)
			}
			seen[tier.MinQty] = true
		}
		if !sort.SliceIsSorted(p.PricingTiers, func(i, j int) bool {
			return p.PricingTiers[i].MinQty < p.PricingTiers[j].MinQty
		}) {
			return fmt.Errorf("pricing tiers must be sorted ascending by min quantity")
		}
	case PricingMethodArea:
		if p.AreaPricing.PricePerSqFt.IsNegative() || p.AreaPricing.MinCharge.IsNegative() {
			return fmt.Errorf("area pricing values must not be negative")
		}
	default:
		return fmt.Errorf("unknown pricing method %q", p.PricingMethod)
	}

	for _, opt := range p.Options {
		switch opt.Type {
		case OptionTypeSelect, OptionTypeBoolean, OptionTypeNumeric, OptionTypeDim2:
		default:
			return fmt.Errorf("option %q has unknown type %q", opt.Name, opt.Type)
		}
		seen := make(map[string]bool, len(opt.Values))
		for _, v := range opt.Values {
			if seen[v.Value] {
				return fmt.Errorf("option %q has duplicate value %q", opt.Name, v.Value)
			}
			seen[v.Value] = true
			if v.PriceDeltaType != PriceDeltaFlat && v.PriceDeltaType != PriceDeltaPercent {
				return fmt.Errorf("option %q value %q has unknown price delta type %q", opt.Name, v.Value, v.PriceDeltaType)
			}
		}
	}

	return nil
}

// scanJSON unmarshals a JSON column value into dst, accepting the []byte and
// string representations the postgres and sqlite drivers produce.
func scanJSON(value interface{}, dst interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dst)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported column type %T for JSON field", value)
	}
}
