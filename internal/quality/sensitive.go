package quality

import (
	"regexp"
	"strings"

	"github.com/ledgerlens/ledgerlens/internal/model"
)

// sensitiveKeywords maps PII-indicative terms to the category reported for a
// hit. Terms match on word boundaries so short ones like "ein" do not fire
// inside ordinary words.
var sensitiveKeywords = []struct {
	pattern  *regexp.Regexp
	category string
}{
	{regexp.MustCompile(`(?i)\bsocial security\b`), "SSN"},
	{regexp.MustCompile(`(?i)\bssn\b`), "SSN"},
	{regexp.MustCompile(`(?i)\btax id\b`), "Tax ID"},
	{regexp.MustCompile(`(?i)\btaxpayer\b`), "Tax ID"},
	{regexp.MustCompile(`(?i)\bein\b`), "Tax ID"},
	{regexp.MustCompile(`(?i)\baccount number\b`), "Bank Account"},
	{regexp.MustCompile(`(?i)\brouting number\b`), "Bank Account"},
	{regexp.MustCompile(`(?i)\biban\b`), "Bank Account"},
	{regexp.MustCompile(`(?i)\bswift\b`), "Bank Account"},
}

var (
	// ssnPattern matches SSN-shaped digit groups (123-45-6789).
	ssnPattern = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)
	// cardPattern matches long digit runs resembling payment card numbers.
	cardPattern = regexp.MustCompile(`\b\d{13,16}\b`)
	// emailPattern matches email addresses.
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
)

// scanSensitiveData scans the vendor name and every line-item description
// for PII indicators. Matched category names are deduplicated.
func scanSensitiveData(record model.Record) (bool, []string) {
	texts := make([]string, 0, len(record.LineItems)+1)
	texts = append(texts, record.VendorName)
	for _, item := range record.LineItems {
		texts = append(texts, item.Description)
	}

	seen := make(map[string]bool)
	var categories []string
	add := func(category string) {
		if !seen[category] {
			seen[category] = true
			categories = append(categories, category)
		}
	}

	for _, text := range texts {
		if strings.TrimSpace(text) == "" {
			continue
		}
		for _, kw := range sensitiveKeywords {
			if kw.pattern.MatchString(text) {
				add(kw.category)
			}
		}
		if ssnPattern.MatchString(text) {
			add("SSN")
		}
		if cardPattern.MatchString(text) {
			add("Card Number")
		}
		if emailPattern.MatchString(text) {
			add("Email Address")
		}
	}

	return len(categories) > 0, categories
}
