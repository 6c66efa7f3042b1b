package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/antchfx/xpath"

	"github.com/haku-324897/askul-navilion/pkg/textnorm"
)

var primaryPriceMatcher = cascadia.MustCompile("span.item-price-value, span.item-price-taxin")

// PrimaryConfig holds the labels of the primary retailer's page templates.
type PrimaryConfig struct {
	TitleSuffix   string
	NotFoundTitle string
	UnitLabel     string
	BarcodeLabel  string
	Currency      string
}

func (c *PrimaryConfig) defaults() {
	if c.NotFoundTitle == "" {
		c.NotFoundTitle = "Not Found"
	}
	if c.UnitLabel == "" {
		c.UnitLabel = "販売単位"
	}
	if c.BarcodeLabel == "" {
		c.BarcodeLabel = "JANコード"
	}
	if c.Currency == "" {
		c.Currency = textnorm.DefaultCurrency
	}
}

// Primary extracts product records from the primary retailer.
type Primary struct {
	fetcher Fetcher
	cfg     PrimaryConfig
	logger  *slog.Logger

	price   chain
	unit    chain
	barcode chain
}

// NewPrimary builds the extractor and its field strategy chains.
func NewPrimary(fetcher Fetcher, cfg PrimaryConfig, logger *slog.Logger) (*Primary, error) {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	p := &Primary{fetcher: fetcher, cfg: cfg, logger: logger}

	unitText, err := textNodesContaining(cfg.UnitLabel)
	if err != nil {
		return nil, err
	}
	unitHeading, err := headingCellContaining(cfg.UnitLabel)
	if err != nil {
		return nil, err
	}
	barcodeText, err := textNodesContaining(cfg.BarcodeLabel)
	if err != nil {
		return nil, err
	}
	barcodeHeading, err := headingCellContaining(cfg.BarcodeLabel)
	if err != nil {
		return nil, err
	}

	currency := regexp.QuoteMeta(cfg.Currency)
	label := regexp.QuoteMeta(cfg.UnitLabel)
	jan := regexp.QuoteMeta(cfg.BarcodeLabel)

	p.price = chain{
		{"price-element", func(d *document) string {
			return selectionText(d.FindMatcher(primaryPriceMatcher).First())
		}},
		{"price-text", priceTextStrategy(regexp.MustCompile(`^` + currency + `[0-9,]+`))},
	}
	p.unit = chain{
		{"unit-text", labelledTextStrategy(unitText, regexp.MustCompile(label+`[:：]`))},
		{"unit-table", func(d *document) string {
			return strippedText(d.siblingDataCell(unitHeading))
		}},
	}
	p.barcode = chain{
		{"barcode-text", barcodeTextStrategy(
			barcodeText,
			regexp.MustCompile(jan+`[:：]?[\s\x{3000}]*([0-9]+)`),
		)},
		{"barcode-table", func(d *document) string {
			return digitsOnly(strippedText(d.siblingDataCell(barcodeHeading)))
		}},
	}
	return p, nil
}

// ExtractPrimary fetches and parses one product page. Fetch failures are
// reported in the record's Error field.
func (p *Primary) ExtractPrimary(ctx context.Context, url string) PrimaryRecord {
	page, err := p.fetcher.Get(ctx, url)
	if err != nil {
		p.logger.Warn("primary fetch failed", "url", url, "error", err)
		return PrimaryRecord{URL: url, Error: err.Error()}
	}
	return p.Parse(page.Body, url)
}

// Parse extracts a record from a product page body.
func (p *Primary) Parse(body []byte, url string) PrimaryRecord {
	d, err := parseDocument(body)
	if err != nil {
		return PrimaryRecord{URL: url, Error: fmt.Sprintf("parse: %v", err)}
	}

	rec := PrimaryRecord{URL: url, Name: p.name(d)}

	var by string
	rec.Price, by = p.price.apply(d)
	rec.Price = textnorm.AddCurrencyPrefix(rec.Price, p.cfg.Currency)
	p.logField(url, "price", rec.Price, by)

	rec.Unit, by = p.unit.apply(d)
	p.logField(url, "unit", rec.Unit, by)

	rec.Barcode, by = p.barcode.apply(d)
	p.logField(url, "barcode", rec.Barcode, by)

	return rec
}

func (p *Primary) name(d *document) string {
	name := strings.TrimSpace(d.Find("title").First().Text())
	if name == p.cfg.NotFoundTitle {
		return ""
	}
	if p.cfg.TitleSuffix != "" {
		name = strings.TrimSuffix(name, p.cfg.TitleSuffix)
	}
	return name
}

func (p *Primary) logField(url, field, value, by string) {
	if value == "" {
		p.logger.Debug("field not found", "url", url, "field", field)
		return
	}
	p.logger.Debug("field extracted", "url", url, "field", field, "strategy", by)
}

// priceTextStrategy scans visible text for the first "￥1,234"-shaped string.
func priceTextStrategy(pattern *regexp.Regexp) func(*document) string {
	return func(d *document) string {
		for _, n := range d.queryAll(visibleTextXPath) {
			if m := pattern.FindString(strings.TrimSpace(n.Data)); m != "" {
				return m
			}
		}
		return ""
	}
}

// labelledTextStrategy reads "label：value" text nodes and returns value.
func labelledTextStrategy(nodes *xpath.Expr, label *regexp.Regexp) func(*document) string {
	return func(d *document) string {
		for _, n := range d.queryAll(nodes) {
			if label.MatchString(n.Data) {
				return strings.TrimSpace(label.ReplaceAllString(n.Data, ""))
			}
		}
		return ""
	}
}

// barcodeTextStrategy reads "JANコード：4901234567890" text nodes. Nodes
// that mention the label without digits right after it are left to the
// table strategy.
func barcodeTextStrategy(nodes *xpath.Expr, pattern *regexp.Regexp) func(*document) string {
	return func(d *document) string {
		for _, n := range d.queryAll(nodes) {
			if m := pattern.FindStringSubmatch(n.Data); m != nil {
				return m[1]
			}
		}
		return ""
	}
}
