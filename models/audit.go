package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// AuditEntry records one action taken against a quote or order.
type AuditEntry struct {
	Action      string    `json:"action"`
	PerformedBy string    `json:"performed_by"`
	Timestamp   time.Time `json:"timestamp"`
	Notes       string    `json:"notes,omitempty"`
}

// AuditTrail is an append-only sequence of audit entries, stored as a JSON
// column. Entries are never edited or removed.
type AuditTrail []AuditEntry

func (t AuditTrail) Value() (driver.Value, error) {
	if len(t) == 0 {
		return nil, nil
	}
	return json.Marshal(t)
}

func (t *AuditTrail) Scan(value interface{}) error {
	return scanJSON(value, t)
}

// Append returns the trail with a new entry added. The receiver is not
// modified, which keeps accidental sharing between copies harmless.
func (t AuditTrail) Append(action, performedBy string, timestamp time.Time, notes string) AuditTrail {
	entry := AuditEntry{
		Action:      action,
		PerformedBy: performedBy,
		Timestamp:   timestamp,
		Notes:       notes,
	}
	out := make(AuditTrail, 0, len(t)+1)
	out = append(out, t...)
	return append(out, entry)
}
