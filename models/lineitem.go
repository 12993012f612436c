package models

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// FileRef points at a stored artwork file by its storage key. Conversion from
// quote to order copies these references; the underlying object is never moved.
type FileRef struct {
	OriginalFile string `json:"original_file"` // storage key
	FileName     string `json:"file_name"`
	FileSize     int64  `json:"file_size"`
}

// FileRefs is stored as a JSON column.
type FileRefs []FileRef

func (f FileRefs) Value() (driver.Value, error) {
	if len(f) == 0 {
		return nil, nil
	}
	return json.Marshal(f)
}

func (f *FileRefs) Scan(value interface{}) error {
	return scanJSON(value, f)
}

// SelectedOption is the validated snapshot of one customer choice against a
// product option. The populated fields depend on the option type: select,
// boolean and numeric carry Value; dim2 carries Width and Height in feet.
type SelectedOption struct {
	Name   string          `json:"name"`
	Type   string          `json:"type"`
	Value  string          `json:"value,omitempty"`
	Width  decimal.Decimal `json:"width,omitempty"`
	Height decimal.Decimal `json:"height,omitempty"`
}

// LineItem is one product configuration within a quote or order. Prices are a
// snapshot taken at pricing time; the product may change afterwards without
// affecting stored items.
type LineItem struct {
	ProductID       uint             `json:"product_id"`
	ProductName     string           `json:"product_name"`
	Quantity        int              `json:"quantity"`
	SelectedOptions []SelectedOption `json:"selected_options,omitempty"`
	UnitPrice       decimal.Decimal  `json:"unit_price"`
	TotalPrice      decimal.Decimal  `json:"total_price"`
	Files           FileRefs         `json:"files,omitempty"`
}

// LineItems is stored as a JSON column.
type LineItems []LineItem

func (l LineItems) Value() (driver.Value, error) {
	if len(l) == 0 {
		return nil, nil
	}
	return json.Marshal(l)
}

func (l *LineItems) Scan(value interface{}) error {
	return scanJSON(value, l)
}
