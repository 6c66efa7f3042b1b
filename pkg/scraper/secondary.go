package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"github.com/haku-324897/askul-navilion/pkg/textnorm"
)

var productPathRegex = regexp.MustCompile(`(/product/(\d+)/)`)

var (
	resultsTableLinkMatcher = cascadia.MustCompile(`td.tano-center a[href*="/product/"]`)
	itemDetailLinkMatcher   = cascadia.MustCompile(`div.tano-item-detail-right a.tano-item-name`)

	productNameMatcher = cascadia.MustCompile(
		`h1#tano-h1 > span, h1.tano-h1-type-01 > span, section.entry-content h1 > span`)
	salePriceMatcher     = cascadia.MustCompile(`span#tano-sale-price > span`)
	stockListMatcher     = cascadia.MustCompile(`dl.tano-product-stock-left`)
	variationCellMatcher = cascadia.MustCompile(`td.tano-d-sh-variation-list`)
)

// ProductCode returns the numeric code in a "/product/<digits>/" URL.
func ProductCode(url string) (string, bool) {
	m := productPathRegex.FindStringSubmatch(url)
	if m == nil {
		return "", false
	}
	return m[2], true
}

// SecondaryConfig holds the wholesaler's URL templates and page labels.
type SecondaryConfig struct {
	BaseURL    string
	LandingURL string
	// SearchURLTemplate contains "{barcode}".
	SearchURLTemplate string
	// ProductURLTemplate contains "{code}".
	ProductURLTemplate string
	UnitLabel          string
	PackKeywords       []string
	UserAgent          string
	Currency           string
}

func (c *SecondaryConfig) defaults() {
	if c.UnitLabel == "" {
		c.UnitLabel = "販売単位"
	}
	if len(c.PackKeywords) == 0 {
		c.PackKeywords = []string{"入数", "販売単位", "個数"}
	}
	if c.Currency == "" {
		c.Currency = textnorm.DefaultCurrency
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
}

// SearchURL is the search-results page for a barcode.
func (c SecondaryConfig) SearchURL(barcode string) string {
	return strings.ReplaceAll(c.SearchURLTemplate, "{barcode}", barcode)
}

// ProductURL is the product page for a product code.
func (c SecondaryConfig) ProductURL(code string) string {
	return strings.ReplaceAll(c.ProductURLTemplate, "{code}", code)
}

// Secondary locates and extracts products on the wholesaler's site. All
// calls share one session, which must have completed Handshake.
type Secondary struct {
	sess   SecondarySession
	cfg    SecondaryConfig
	logger *slog.Logger

	candidates chain
}

// NewSecondary builds the locator and extractor for the wholesaler.
func NewSecondary(sess SecondarySession, cfg SecondaryConfig, logger *slog.Logger) *Secondary {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	s := &Secondary{sess: sess, cfg: cfg, logger: logger}
	s.candidates = chain{
		{"results-table", s.productLink(resultsTableLinkMatcher)},
		{"item-detail", s.productLink(itemDetailLinkMatcher)},
	}
	return s
}

// Config returns the effective configuration.
func (s *Secondary) Config() SecondaryConfig {
	return s.cfg
}

// SearchURL is the search-results page queried for barcode.
func (s *Secondary) SearchURL(barcode string) string {
	return s.cfg.SearchURL(barcode)
}

// Handshake visits the landing page once so later requests carry the
// site's session cookies.
func (s *Secondary) Handshake(ctx context.Context) error {
	s.primeHeaders()
	return s.sess.Handshake(ctx, s.cfg.LandingURL)
}

func (s *Secondary) primeHeaders() {
	if s.cfg.UserAgent != "" {
		s.sess.SetHeader("User-Agent", s.cfg.UserAgent)
	}
}

// FindCandidates searches by barcode and returns the product URLs it found,
// best first. A failed search yields no candidates.
func (s *Secondary) FindCandidates(ctx context.Context, barcode string) []string {
	s.primeHeaders()
	url := s.cfg.SearchURL(barcode)
	page, err := s.sess.Get(ctx, url)
	if err != nil {
		s.logger.Warn("secondary search failed", "barcode", barcode, "url", url, "error", err)
		return nil
	}
	return s.ParseSearchResults(page.Body)
}

// ParseSearchResults extracts candidate product URLs from a search page.
func (s *Secondary) ParseSearchResults(body []byte) []string {
	d, err := parseDocument(body)
	if err != nil {
		return nil
	}
	url, by := s.candidates.apply(d)
	if url == "" {
		return nil
	}
	s.logger.Debug("candidate found", "url", url, "strategy", by)
	return []string{url}
}

func (s *Secondary) productLink(m goquery.Matcher) func(*document) string {
	return func(d *document) string {
		href, ok := d.FindMatcher(m).First().Attr("href")
		if !ok {
			return ""
		}
		path := productPathRegex.FindString(href)
		if path == "" {
			return ""
		}
		return s.cfg.BaseURL + path
	}
}

// ExtractSecondary fetches and parses the product page for code. On fetch
// failure only Error is set.
func (s *Secondary) ExtractSecondary(ctx context.Context, code string) SecondaryRecord {
	s.primeHeaders()
	url := s.cfg.ProductURL(code)
	page, err := s.sess.Get(ctx, url)
	if err != nil {
		s.logger.Warn("secondary fetch failed", "code", code, "url", url, "error", err)
		return SecondaryRecord{Error: err.Error()}
	}
	return s.Parse(page.Body, code, url)
}

// Parse extracts a record from a product page body.
func (s *Secondary) Parse(body []byte, code, url string) SecondaryRecord {
	d, err := parseDocument(body)
	if err != nil {
		return SecondaryRecord{Error: fmt.Sprintf("parse: %v", err)}
	}

	rec := SecondaryRecord{
		Identifier: code,
		URL:        url,
		Name:       collapseWhitespace(selectionText(d.FindMatcher(productNameMatcher).First())),
		Price: textnorm.AddCurrencyPrefix(
			selectionText(d.FindMatcher(salePriceMatcher).First()), s.cfg.Currency),
		MultiUnit: SortPackSizes(s.packSizes(d)),
	}

	unit := chain{
		{"stock-list", s.stockListUnit},
		{"first-pack", func(*document) string {
			if len(rec.MultiUnit) == 0 {
				return ""
			}
			return rec.MultiUnit[0]
		}},
	}
	var by string
	rec.Unit, by = unit.apply(d)
	s.logger.Debug("secondary parsed",
		"code", code,
		"unit_strategy", by,
		"packs", len(rec.MultiUnit),
	)
	return rec
}

// stockListUnit reads the dd next to the "販売単位" dt of the stock list.
func (s *Secondary) stockListUnit(d *document) string {
	dl := d.FindMatcher(stockListMatcher).First()
	dt := dl.Find("dt").FilterFunction(func(_ int, sel *goquery.Selection) bool {
		return strings.TrimSpace(sel.Text()) == s.cfg.UnitLabel
	}).First()
	return selectionText(dt.NextAllFiltered("dd").First())
}

// packSizes collects the variation labels of the first table row whose
// heading names a pack size.
func (s *Secondary) packSizes(d *document) []string {
	var labels []string
	d.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		th := row.Find("th").First()
		if th.Length() == 0 || !containsAny(selectionText(th), s.cfg.PackKeywords) {
			return true
		}
		td := row.FindMatcher(variationCellMatcher).First()
		if td.Length() == 0 {
			return true
		}
		td.Find("label").Each(func(_ int, label *goquery.Selection) {
			if t := selectionText(label); t != "" {
				labels = append(labels, t)
			}
		})
		return false
	})
	return labels
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
