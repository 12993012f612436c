package models

import (
	"time"

	"gorm.io/gorm"
)

// Notification intent kinds
const (
	NotificationOrderCreated       = "order_created"
	NotificationOrderStatusChanged = "order_status_changed"
	NotificationQuoteReplied       = "quote_replied"
)

// NotificationIntent is a persisted request to notify a customer. Delivery
// (email/SMS) is handled by an external worker; this core only records the
// intent so nothing is lost if delivery is down.
type NotificationIntent struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	IntentID    string         `gorm:"uniqueIndex;not null" json:"intent_id"` // uuid, for dedup by the delivery worker
	Kind        string         `gorm:"not null;index" json:"kind"`
	Recipient   string         `gorm:"not null" json:"recipient"` // customer email
	OrderNumber string         `json:"order_number,omitempty"`
	QuoteNumber string         `json:"quote_number,omitempty"`
	Message     string         `gorm:"type:text" json:"message"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the NotificationIntent model
func (NotificationIntent) TableName() string {
	return "notification_intents"
}
