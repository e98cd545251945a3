package model

import "time"

// Correction is a learned keyword-to-category rule. It is recorded when a
// user manually fixes a line item's ledger category and applied to future
// extractions whose descriptions contain the keyword.
type Correction struct {
	LastUpdated time.Time `json:"lastUpdated"`
	Keyword     string    `json:"keyword"`
	Category    string    `json:"category"`
	UseCount    int       `json:"useCount"`
}
