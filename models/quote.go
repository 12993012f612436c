package models

import (
	"time"

	"gorm.io/gorm"
)

// Quote statuses
const (
	QuoteStatusNew       = "new"
	QuoteStatusReviewed  = "reviewed"
	QuoteStatusReplied   = "replied"
	QuoteStatusCompleted = "completed"
)

// Quote represents a pre-order price estimate with an artwork file bundle.
// A quote is created on customer submission and afterwards mutated only via
// admin-triggered status transitions and note edits, each of which appends an
// audit entry. Converted quotes are flagged via ConvertedToOrderID and
// retained, never deleted, so files and history survive conversion.
type Quote struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	QuoteNumber        string         `gorm:"uniqueIndex;not null" json:"quote_number"`
	CustomerName       string         `gorm:"not null" json:"customer_name"`
	CustomerEmail      string         `gorm:"not null" json:"customer_email"`
	CustomerPhone      string         `json:"customer_phone"`
	Items              LineItems      `gorm:"type:jsonb" json:"items"`
	Files              FileRefs       `gorm:"type:jsonb" json:"files,omitempty"`
	Status             string         `gorm:"not null;default:'new'" json:"status"` // new, reviewed, replied, completed
	AdminNotes         string         `json:"admin_notes,omitempty"`
	AuditTrail         AuditTrail     `gorm:"type:jsonb" json:"audit_trail"`
	ConvertedToOrderID *uint          `gorm:"index" json:"converted_to_order_id,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Quote model
func (Quote) TableName() string {
	return "quotes"
}

// IsConverted reports whether the quote has already been turned into an order.
func (q *Quote) IsConverted() bool {
	return q.ConvertedToOrderID != nil
}
