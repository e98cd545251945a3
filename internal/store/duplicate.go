// Package store implements the session history of extracted records: an
// ordered, newest-first collection supporting lookup, in-place update, and
// duplicate detection.
package store

import (
	"math"
	"strings"

	"github.com/ledgerlens/ledgerlens/internal/model"
)

// AmountTolerance is the absolute difference within which two document totals
// are considered the same for duplicate detection.
const AmountTolerance = 0.01

// IsDuplicate reports whether two records describe the same document: vendor
// names match case-insensitively after trimming, invoice date strings match
// exactly, and totals agree within AmountTolerance. The relation is
// symmetric, so either record may play the candidate role.
func IsDuplicate(a, b model.Record) bool {
	vendorA := strings.ToLower(strings.TrimSpace(a.VendorName))
	vendorB := strings.ToLower(strings.TrimSpace(b.VendorName))
	if vendorA != vendorB {
		return false
	}
	if a.InvoiceDate != b.InvoiceDate {
		return false
	}
	return math.Abs(a.TotalAmount-b.TotalAmount) <= AmountTolerance
}
