package extract

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/ledgerlens/ledgerlens/internal/model"
	"github.com/shopspring/decimal"
)

// DefaultDemoDelay approximates a real extraction call so demo mode
// exercises the same timing behavior as live mode.
const DefaultDemoDelay = 1500 * time.Millisecond

var demoVendors = []string{
	"Meridian Industrial Supply",
	"Pacific Freight Co",
	"Brightline Electronics",
	"Cascade Paper Works",
	"Harbor & Sons Logistics",
	"Summit Office Outfitters",
}

var demoItems = []struct {
	description string
	category    string
	unitPrice   float64
}{
	{"Corrugated shipping boxes, 24x18", "Packaging Supplies", 3.25},
	{"Thermal transfer labels, roll", "Packaging Supplies", 18.50},
	{"Forklift propane cylinder", "Equipment & Fuel", 42.00},
	{"A4 copy paper, case", "Office Supplies", 31.75},
	{"Stretch wrap, 80 gauge", "Packaging Supplies", 22.40},
	{"LED warehouse fixture", "Facilities", 89.99},
	{"Pallet jack service", "Equipment Maintenance", 145.00},
	{"Safety vests, high-vis, 10pk", "Safety Equipment", 54.90},
}

var demoDocTypes = []string{model.DocTypeInvoice, model.DocTypePackingSlip, model.DocTypeBOL}

// Demo is a synthetic extractor for demo mode: no network call, a fixed
// artificial delay, and randomized but internally consistent output (line
// totals really are quantity times unit price, and the document total is
// their sum).
type Demo struct {
	rng   *rand.Rand
	delay time.Duration
	mu    sync.Mutex
}

// NewDemo creates a demo extractor with the given artificial delay.
func NewDemo(delay time.Duration) *Demo {
	return &Demo{
		delay: delay,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Extract generates a synthetic record after the configured delay.
func (d *Demo) Extract(ctx context.Context, name string, _ []byte, _ string) (model.Record, error) {
	select {
	case <-ctx.Done():
		return model.Record{}, ctx.Err()
	case <-time.After(d.delay):
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	itemCount := 2 + d.rng.Intn(4)
	items := make([]model.LineItem, 0, itemCount)
	total := decimal.Zero

	for i := 0; i < itemCount; i++ {
		pick := demoItems[d.rng.Intn(len(demoItems))]
		quantity := float64(1 + d.rng.Intn(12))

		lineTotal := decimal.NewFromFloat(quantity).
			Mul(decimal.NewFromFloat(pick.unitPrice)).
			Round(2)
		lineTotalF, _ := lineTotal.Float64()

		items = append(items, model.LineItem{
			SKU:          fmt.Sprintf("DM-%03d", 100+d.rng.Intn(900)),
			Description:  pick.description,
			GLCategory:   pick.category,
			GLConfidence: 70 + d.rng.Intn(30),
			GLReasoning:  "Synthetic demo categorization",
			Quantity:     quantity,
			UnitPrice:    pick.unitPrice,
			TotalAmount:  lineTotalF,
		})
		total = total.Add(lineTotal)
	}

	// Occasionally include a zero-priced item so data-quality flags get
	// exercised in demo sessions.
	if d.rng.Intn(5) == 0 {
		items = append(items, model.LineItem{
			Description: "Promotional sample",
			GLCategory:  "Marketing",
			Quantity:    1,
		})
	}

	totalF, _ := total.Float64()
	date := time.Now().AddDate(0, 0, -d.rng.Intn(90)).Format("2006-01-02")

	return model.Record{
		DocumentType:       demoDocTypes[d.rng.Intn(len(demoDocTypes))],
		VendorName:         demoVendors[d.rng.Intn(len(demoVendors))],
		InvoiceDate:        date,
		TotalAmount:        totalF,
		CurrencySymbol:     "$",
		Language:           model.LanguageOriginal,
		LanguageConfidence: 100,
		LineItems:          items,
	}, nil
}

// Close is a no-op for the demo extractor.
func (d *Demo) Close() error {
	return nil
}
