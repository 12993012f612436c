package models

import "time"

// NumberSequence backs the quote/order number generator. One row per prefix
// and day, incremented with an atomic conditional update so concurrent
// placements never hand out the same number.
type NumberSequence struct {
	Key       string    `gorm:"primaryKey" json:"key"` // e.g. "PV260829"
	Counter   int       `gorm:"not null" json:"counter"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the NumberSequence model
func (NumberSequence) TableName() string {
	return "number_sequences"
}
