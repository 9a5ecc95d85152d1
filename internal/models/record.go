// internal/models/record.go
package models

import "time"

// RawColumnValue is one column value exactly as the board service supplies it.
// Text is the human-readable rendering; Value may carry a structured payload
// for numeric/date/status columns.
type RawColumnValue struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Text  string `json:"text"`
	Value string `json:"value"`
	Type  string `json:"type"`
}

// RawRecord is one board item before normalization.
type RawRecord struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	ColumnValues []RawColumnValue `json:"columnValues"`
}

// Canonical status values used for comparisons. Display text keeps the
// source casing; Status holds the canonical form when one matched.
const (
	StatusWon       = "Won"
	StatusCompleted = "Completed"
	StatusClosed    = "Closed"
	StatusCancelled = "Cancelled"
	StatusLost      = "Lost"
	StatusActive    = "Active"
)

// SectorUnknown is assigned when a record carries no usable sector value.
const SectorUnknown = "Unknown"

// CanonicalRecord is the normalized, typed representation of one source item.
//
// Amount is nil only when no candidate money column could be parsed.
// Probability, when present, is clamped to [0,1]. Sector is never empty.
// Date is nil rather than an error when the source value is unparseable.
type CanonicalRecord struct {
	EntityType    DataSource `json:"entityType"`
	Name          string     `json:"name"`
	Amount        *float64   `json:"amount"`
	Status        string     `json:"status"`
	StatusDisplay string     `json:"statusDisplay"`
	Sector        string     `json:"sector"`
	Date          *time.Time `json:"date,omitempty"`
	Probability   *float64   `json:"probability,omitempty"`
}
