package services

import (
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/printvala/printvala-api/models"
)

// NotificationInterface defines the outbound customer-notification
// collaborator. Implementations record the intent; actual email/SMS delivery
// is an external worker's job.
type NotificationInterface interface {
	Notify(intent models.NotificationIntent) error
}

var notificationInstance NotificationInterface

// InitNotificationService installs the database-backed notification service.
func InitNotificationService(db *gorm.DB) NotificationInterface {
	notificationInstance = &DBNotificationService{db: db}
	return notificationInstance
}

// GetNotificationService returns the installed notification service instance
func GetNotificationService() NotificationInterface {
	return notificationInstance
}

// SetNotificationService sets the notification service instance (primarily for testing)
func SetNotificationService(service NotificationInterface) {
	notificationInstance = service
}

// NewNotificationIntent builds an intent with a fresh dedup id.
func NewNotificationIntent(kind, recipient, orderNumber, quoteNumber, message string) models.NotificationIntent {
	return models.NotificationIntent{
		IntentID:    uuid.NewString(),
		Kind:        kind,
		Recipient:   recipient,
		OrderNumber: orderNumber,
		QuoteNumber: quoteNumber,
		Message:     message,
		CreatedAt:   time.Now(),
	}
}

// DBNotificationService persists notification intents for the delivery worker
// to pick up.
type DBNotificationService struct {
	db *gorm.DB
}

// Notify records the intent. A failure here is logged but must not undo the
// business operation that triggered it, so callers treat it as best effort.
func (s *DBNotificationService) Notify(intent models.NotificationIntent) error {
	if err := s.db.Create(&intent).Error; err != nil {
		log.Printf("failed to record notification intent %s: %v", intent.IntentID, err)
		return err
	}
	return nil
}
