package model

import "math"

// LineItem is a single purchasable line on a trade document.
type LineItem struct {
	SKU          string  `json:"sku,omitempty"`
	Description  string  `json:"description"`
	GLCategory   string  `json:"glCategory"`
	GLReasoning  string  `json:"glReasoning,omitempty"`
	Quantity     float64 `json:"quantity"`
	UnitPrice    float64 `json:"unitPrice"`
	TotalAmount  float64 `json:"totalAmount"`
	GLConfidence int     `json:"glConfidence,omitempty"`
}

// Variance reports how far the stated line total deviates from
// quantity × unit price. Extraction output and manual edits may disagree;
// the variance is surfaced to the user, never silently corrected.
func (li LineItem) Variance() float64 {
	return li.TotalAmount - li.Quantity*li.UnitPrice
}

// HasVariance reports whether the stated total and the computed total
// disagree by more than a rounding cent.
func (li LineItem) HasVariance() bool {
	return math.Abs(li.Variance()) > 0.01
}
