package scraper

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/net/html"
)

var whitespaceRunRegex = regexp.MustCompile(`[\s\x{3000}]+`)

// document is a parsed page queried both by CSS selector (goquery) and by
// XPath text predicates (htmlquery) over the same node tree.
type document struct {
	*goquery.Document
	root *html.Node
}

func parseDocument(body []byte) (*document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	return &document{Document: doc, root: doc.Get(0)}, nil
}

func (d *document) queryAll(expr *xpath.Expr) []*html.Node {
	return htmlquery.QuerySelectorAll(d.root, expr)
}

func (d *document) query(expr *xpath.Expr) *html.Node {
	return htmlquery.QuerySelector(d.root, expr)
}

// strippedText concatenates the trimmed text nodes below n, skipping blank
// ones, so "<span> ￥1,200 <small>税込</small></span>" reads "￥1,200税込".
func strippedText(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(strings.TrimSpace(n.Data))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func selectionText(s *goquery.Selection) string {
	if s.Length() == 0 {
		return ""
	}
	return strippedText(s.Get(0))
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRunRegex.ReplaceAllString(s, " "))
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// xpathLiteral quotes s for use inside an XPath expression.
func xpathLiteral(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, `'`) {
		return `'` + s + `'`
	}
	parts := strings.Split(s, `"`)
	return `concat("` + strings.Join(parts, `", '"', "`) + `")`
}

// textNodesContaining matches visible text nodes that contain label.
func textNodesContaining(label string) (*xpath.Expr, error) {
	return compileXPath(fmt.Sprintf(
		`//text()[contains(., %s)][not(ancestor::script)][not(ancestor::style)]`,
		xpathLiteral(label),
	))
}

// headingCellContaining matches th/dt cells whose text contains label.
func headingCellContaining(label string) (*xpath.Expr, error) {
	return compileXPath(fmt.Sprintf(
		`//*[self::th or self::dt][contains(., %s)]`,
		xpathLiteral(label),
	))
}

var (
	visibleTextXPath     = xpath.MustCompile(`//text()[not(ancestor::script)][not(ancestor::style)]`)
	dataCellSiblingXPath = xpath.MustCompile(`following-sibling::*[self::td or self::dd][1]`)
)

func compileXPath(expr string) (*xpath.Expr, error) {
	e, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compile xpath %q: %w", expr, err)
	}
	return e, nil
}

// siblingDataCell returns the td/dd right after the first heading cell that
// matched heading.
func (d *document) siblingDataCell(heading *xpath.Expr) *html.Node {
	th := d.query(heading)
	if th == nil {
		return nil
	}
	return htmlquery.QuerySelector(th, dataCellSiblingXPath)
}
