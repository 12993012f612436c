package services

import (
	"sync"

	"github.com/printvala/printvala-api/models"
)

// MockNotificationService is a recording implementation of
// NotificationInterface for testing
type MockNotificationService struct {
	intents []models.NotificationIntent
	mu      sync.RWMutex

	// FailNext makes the next Notify call return an error, for testing that
	// callers treat notification as best effort.
	FailNext error
}

// NewMockNotificationService creates a new mock notification service
func NewMockNotificationService() *MockNotificationService {
	return &MockNotificationService{}
}

// SetAsMockForTesting sets this mock as the global notification service instance for testing
func (m *MockNotificationService) SetAsMockForTesting() {
	SetNotificationService(m)
}

// Notify records the intent in memory
func (m *MockNotificationService) Notify(intent models.NotificationIntent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailNext != nil {
		err := m.FailNext
		m.FailNext = nil
		return err
	}

	m.intents = append(m.intents, intent)
	return nil
}

// Intents returns a copy of the recorded intents
func (m *MockNotificationService) Intents() []models.NotificationIntent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.NotificationIntent, len(m.intents))
	copy(out, m.intents)
	return out
}
