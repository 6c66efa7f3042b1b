// Package reconcile joins a primary retailer record with what was found for
// its barcode on the wholesaler's site and judges the price difference.
package reconcile

import (
	"strings"

	"github.com/haku-324897/askul-navilion/pkg/scraper"
	"github.com/haku-324897/askul-navilion/pkg/textnorm"
)

// Lookup is the outcome of searching the wholesaler for one barcode.
type Lookup struct {
	// SearchURL is the search page that was queried.
	SearchURL  string
	Candidates []string
	// Record is nil when no product page was fetched.
	Record *scraper.SecondaryRecord
}

// ReconciledRow is one line of the comparison.
type ReconciledRow struct {
	Primary   scraper.PrimaryRecord
	Secondary scraper.SecondaryRecord
	Status    MatchStatus
	// SecondaryURL is the matched product page, or the search page when no
	// candidate was found.
	SecondaryURL string
	// PriceDelta is wholesaler minus retailer; nil when the prices cannot be
	// compared. Negative means the wholesaler is cheaper.
	PriceDelta *int
	Judgment   Judgment
}

// Reconcile classifies the lookup and computes the price delta.
func Reconcile(primary scraper.PrimaryRecord, lookup Lookup) ReconciledRow {
	row := ReconciledRow{Primary: primary}

	switch {
	case primary.Barcode == "":
		row.Status = StatusNoBarcode
	case len(lookup.Candidates) == 0:
		row.Status = StatusNoCandidate
		row.SecondaryURL = lookup.SearchURL
	default:
		candidate := lookup.Candidates[0]
		if _, ok := scraper.ProductCode(candidate); !ok {
			row.Status = StatusURLPatternMismatch
			break
		}
		if lookup.Record == nil || lookup.Record.Empty() {
			row.Status = StatusExtractionFailed
			break
		}
		row.Status = StatusConfirmedMatch
		row.Secondary = *lookup.Record
		row.SecondaryURL = candidate
	}

	row.PriceDelta, row.Judgment = judge(row)
	return row
}

func judge(row ReconciledRow) (*int, Judgment) {
	if row.Status != StatusConfirmedMatch {
		return nil, Incomparable
	}
	if row.Primary.Price == "" || row.Secondary.Price == "" {
		return nil, Incomparable
	}
	if !textnorm.Equivalent(row.Primary.Unit, row.Secondary.Unit) {
		return nil, Incomparable
	}

	primary, err := textnorm.ParsePrice(row.Primary.Price)
	if err != nil {
		return nil, Incomparable
	}
	secondary, err := textnorm.ParsePrice(row.Secondary.Price)
	if err != nil {
		return nil, Incomparable
	}

	delta := secondary - primary
	switch {
	case delta < 0:
		return &delta, Cheaper
	case delta > 0:
		return &delta, MoreExpensive
	default:
		return &delta, Equal
	}
}

// ExpandQuery turns a bare product identifier into a primary product URL
// using template ("{id}" placeholder). Full URLs pass through.
func ExpandQuery(query, template string) string {
	query = strings.TrimSpace(query)
	if strings.HasPrefix(query, "http") {
		return query
	}
	return strings.ReplaceAll(template, "{id}", query)
}
