package scraper

import (
	"context"
	"strings"

	"github.com/haku-324897/askul-navilion/pkg/session"
)

// Fetcher is the part of a session the extractors need.
type Fetcher interface {
	Get(ctx context.Context, url string) (*session.Page, error)
}

// SecondarySession is a Fetcher whose headers and cookies can be primed.
type SecondarySession interface {
	Fetcher
	SetHeader(key, value string)
	Handshake(ctx context.Context, url string) error
}

// PrimaryRecord is what the primary retailer's product page says about an
// item. Missing fields are empty strings.
type PrimaryRecord struct {
	Name    string
	Unit    string
	Barcode string // digits only
	Price   string // currency-prefixed
	URL     string
	Error   string
}

// SecondaryRecord is what the wholesaler's product page says about an item.
type SecondaryRecord struct {
	Name string
	Unit string
	// MultiUnit holds the selectable pack sizes, smallest first.
	MultiUnit  []string
	Price      string
	Identifier string
	URL        string
	Error      string
}

// MultiUnitDisplay joins the pack sizes for display. A single pack size is
// already carried by Unit, so it yields "".
func (r SecondaryRecord) MultiUnitDisplay() string {
	if len(r.MultiUnit) < 2 {
		return ""
	}
	return strings.Join(r.MultiUnit, ", ")
}

// Empty reports whether the page yielded nothing usable.
func (r SecondaryRecord) Empty() bool {
	return r.Error != "" || (r.Name == "" && r.Price == "" && r.Unit == "")
}
