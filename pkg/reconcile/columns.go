package reconcile

import (
	"strconv"

	"github.com/haku-324897/askul-navilion/pkg/textnorm"
)

// Column is one named output column.
type Column struct {
	Name  string
	value func(r ReconciledRow, currency string) string
}

func blank(ReconciledRow, string) string { return "" }

// Columns is the output layout shared by the CSV and HTML renderers. The
// quantity, amount and remarks columns are left for buyers to fill in, except
// that remarks carries the primary fetch error when there was one.
var Columns = []Column{
	{"as製品", func(r ReconciledRow, _ string) string { return r.Primary.Name }},
	{"as員数", func(r ReconciledRow, _ string) string { return r.Primary.Unit }},
	{"JANコード", func(r ReconciledRow, _ string) string { return r.Primary.Barcode }},
	{"asURL", func(r ReconciledRow, _ string) string { return r.Primary.URL }},
	{"as価格", func(r ReconciledRow, c string) string { return textnorm.AddCurrencyPrefix(r.Primary.Price, c) }},
	{"as数量", blank},
	{"as購入額", blank},
	{"as種類", func(r ReconciledRow, _ string) string { return r.Status.Label() }},
	{"nv製品", func(r ReconciledRow, _ string) string { return r.Secondary.Name }},
	{"nv員数", func(r ReconciledRow, _ string) string { return r.Secondary.Unit }},
	{"nv員数（複数有）", func(r ReconciledRow, _ string) string { return r.Secondary.MultiUnitDisplay() }},
	{"nv申し込み番号", func(r ReconciledRow, _ string) string { return r.Secondary.Identifier }},
	{"NV小売価格", func(r ReconciledRow, c string) string { return textnorm.AddCurrencyPrefix(r.Secondary.Price, c) }},
	{"nv数量", blank},
	{"nv購入額", blank},
	{"nvURL", func(r ReconciledRow, _ string) string { return r.SecondaryURL }},
	{"備考", func(r ReconciledRow, _ string) string { return r.Primary.Error }},
	{"ナビリオン値差", func(r ReconciledRow, _ string) string { return r.FormattedDelta() }},
	{"価格判定", func(r ReconciledRow, _ string) string { return r.Judgment.Label() }},
}

// Header returns the column names in output order.
func Header() []string {
	names := make([]string, len(Columns))
	for i, c := range Columns {
		names[i] = c.Name
	}
	return names
}

// Values renders the row in Columns order.
func (r ReconciledRow) Values(currency string) []string {
	vals := make([]string, len(Columns))
	for i, c := range Columns {
		vals[i] = c.value(r, currency)
	}
	return vals
}

// FormattedDelta renders the delta with an explicit sign ("+120", "-100",
// "0"), or "" when the prices were not comparable.
func (r ReconciledRow) FormattedDelta() string {
	if r.PriceDelta == nil {
		return ""
	}
	if *r.PriceDelta > 0 {
		return "+" + strconv.Itoa(*r.PriceDelta)
	}
	return strconv.Itoa(*r.PriceDelta)
}
