package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order statuses, in lifecycle sequence. Cancelled is reachable from any
// non-terminal status.
const (
	OrderStatusPlaced         = "placed"
	OrderStatusPreflight      = "preflight"
	OrderStatusProofReady     = "proof_ready"
	OrderStatusApproved       = "approved"
	OrderStatusInProduction   = "in_production"
	OrderStatusReadyForPickup = "ready_for_pickup"
	OrderStatusShipped        = "shipped"
	OrderStatusCompleted      = "completed"
	OrderStatusCancelled      = "cancelled"
)

// Delivery methods
const (
	DeliveryMethodPickup  = "pickup"
	DeliveryMethodCourier = "courier"
)

// Payment methods
const (
	PaymentMethodRazorpay = "razorpay"
	PaymentMethodCOD      = "cod"
)

// Payment statuses
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

// PricingBlock is the persisted price summary of an order.
type PricingBlock struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	ShippingAmount decimal.Decimal `json:"shipping_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	GrandTotal     decimal.Decimal `json:"grand_total"`
	Currency       string          `json:"currency"`
}

func (p PricingBlock) Value() (driver.Value, error) {
	return json.Marshal(p)
}

func (p *PricingBlock) Scan(value interface{}) error {
	return scanJSON(value, p)
}

// GSTBreakdown splits the tax amount into its GST components. Intra-state
// orders carry CGST+SGST, inter-state orders carry IGST.
type GSTBreakdown struct {
	CGST decimal.Decimal `json:"cgst"`
	SGST decimal.Decimal `json:"sgst"`
	IGST decimal.Decimal `json:"igst"`
}

func (g GSTBreakdown) Value() (driver.Value, error) {
	return json.Marshal(g)
}

func (g *GSTBreakdown) Scan(value interface{}) error {
	return scanJSON(value, g)
}

// Delivery describes how the order reaches the customer.
type Delivery struct {
	Method     string `json:"method"` // pickup, courier
	Address    string `json:"address,omitempty"`
	PickupSlot string `json:"pickup_slot,omitempty"`
}

func (d Delivery) Value() (driver.Value, error) {
	return json.Marshal(d)
}

func (d *Delivery) Scan(value interface{}) error {
	return scanJSON(value, d)
}

// Payment carries the payment method, its status and gateway identifiers.
type Payment struct {
	Method           string `json:"method"` // razorpay, cod
	Status           string `json:"status"` // pending, completed, failed, refunded
	GatewayOrderID   string `json:"gateway_order_id,omitempty"`
	GatewayPaymentID string `json:"gateway_payment_id,omitempty"`
}

func (p Payment) Value() (driver.Value, error) {
	return json.Marshal(p)
}

func (p *Payment) Scan(value interface{}) error {
	return scanJSON(value, p)
}

// Order represents a committed, payable unit of print work. Orders are never
// deleted, only status-transitioned; every transition appends an audit entry.
type Order struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	OrderNumber   string         `gorm:"uniqueIndex;not null" json:"order_number"`
	UserID        *uint          `gorm:"index" json:"user_id,omitempty"` // nil for quote-converted guest orders
	User          *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CustomerName  string         `gorm:"not null" json:"customer_name"`
	CustomerEmail string         `gorm:"not null" json:"customer_email"`
	CustomerPhone string         `json:"customer_phone"`
	Items         LineItems      `gorm:"type:jsonb" json:"items"`
	Pricing       PricingBlock   `gorm:"type:jsonb" json:"pricing"`
	GST           GSTBreakdown   `gorm:"type:jsonb" json:"gst"`
	Delivery      Delivery       `gorm:"type:jsonb" json:"delivery"`
	Payment       Payment        `gorm:"type:jsonb" json:"payment"`
	Status        string         `gorm:"not null;default:'placed'" json:"status"`
	AuditTrail    AuditTrail     `gorm:"type:jsonb" json:"audit_trail"`
	QuoteID       *uint          `gorm:"index" json:"quote_id,omitempty"` // set when converted from a quote
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}
